package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/garrettladley/shopsync/internal/xcontext"
	"github.com/garrettladley/shopsync/internal/xhttp"
	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"
)

func TestChainOrder(t *testing.T) {
	t.Parallel()

	var calls []string
	record := func(name string) func(http.Handler) http.Handler {
		return func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				calls = append(calls, name)
				next.ServeHTTP(w, r)
			})
		}
	}

	middleware := []func(http.Handler) http.Handler{record("a"), record("b"), record("c")}
	h := Chain(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		calls = append(calls, "handler")
	}), middleware...)

	req := httptest.NewRequestWithContext(t.Context(), http.MethodGet, "/", nil)
	h.ServeHTTP(httptest.NewRecorder(), req)

	if diff := cmp.Diff([]string{"a", "b", "c", "handler"}, calls); diff != "" {
		t.Errorf("call order mismatch (-want +got):\n%s", diff)
	}

	// the caller's slice is left untouched
	calls = nil
	middleware[0](http.NotFoundHandler()).ServeHTTP(httptest.NewRecorder(), req)
	if diff := cmp.Diff([]string{"a"}, calls); diff != "" {
		t.Errorf("middleware slice reordered (-want +got):\n%s", diff)
	}
}

func TestRequestID(t *testing.T) {
	t.Parallel()

	incoming := uuid.NewString()

	tests := []struct {
		name     string
		opts     []RequestIDOption
		header   string
		wantSame bool
	}{
		{name: "generated", header: incoming, wantSame: false},
		{name: "trusted valid", opts: []RequestIDOption{WithIDFunc(TrustedRequestID)}, header: incoming, wantSame: true},
		{name: "trusted invalid", opts: []RequestIDOption{WithIDFunc(TrustedRequestID)}, header: "<script>", wantSame: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var fromCtx string
			h := RequestID(tt.opts...)(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
				fromCtx, _ = xcontext.GetRequestID(r.Context())
			}))

			req := httptest.NewRequestWithContext(t.Context(), http.MethodPost, "/", nil)
			req.Header.Set(xhttp.XRequestID, tt.header)
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			got := rec.Header().Get(xhttp.XRequestID)
			if got != fromCtx {
				t.Errorf("header %q != context %q", got, fromCtx)
			}
			if _, err := uuid.Parse(got); err != nil {
				t.Errorf("request id %q is not a uuid: %v", got, err)
			}
			if (got == tt.header) != tt.wantSame {
				t.Errorf("request id = %q, incoming %q, wantSame %v", got, tt.header, tt.wantSame)
			}
		})
	}
}

func TestRecovery(t *testing.T) {
	t.Parallel()

	h := Recovery(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))

	req := httptest.NewRequestWithContext(t.Context(), http.MethodPost, "/webhooks/shopify/products", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusInternalServerError)
	}
	if strings.Contains(rec.Body.String(), "boom") {
		t.Errorf("panic value leaked into response: %q", rec.Body.String())
	}
}
