package xslog

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"
)

func TestWithAttrs(t *testing.T) {
	t.Parallel()

	if got := FromContext(context.Background()); got != slog.Default() {
		t.Error("FromContext() on empty context is not slog.Default")
	}

	var buf bytes.Buffer
	ctx := WithLogger(t.Context(), slog.New(slog.NewTextHandler(&buf, nil)))
	if WithAttrs(ctx) != ctx {
		t.Error("WithAttrs() without attrs returned a new context")
	}

	ctx = WithAttrs(ctx, Topic("products/update"), WebhookID("w-1"))
	FromContext(ctx).InfoContext(ctx, "received")

	out := buf.String()
	for _, want := range []string{"topic=products/update", "webhook_id=w-1", "msg=received"} {
		if !strings.Contains(out, want) {
			t.Errorf("output %q missing %q", out, want)
		}
	}
}
