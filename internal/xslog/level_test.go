package xslog

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
)

func TestParse(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input   string
		want    slog.Level
		wantErr bool
	}{
		{input: "debug", want: slog.LevelDebug},
		{input: "INFO", want: slog.LevelInfo},
		{input: "Warn", want: slog.LevelWarn},
		{input: "error", want: slog.LevelError},
		{input: "verbose", wantErr: true},
		{input: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			t.Parallel()
			got, err := Parse(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Parse(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if !tt.wantErr && got.ToSlog() != tt.want {
				t.Errorf("Parse(%q).ToSlog() = %v, want %v", tt.input, got.ToSlog(), tt.want)
			}
		})
	}
}

func TestParseFormat(t *testing.T) {
	t.Parallel()

	for _, input := range []string{"json", "TEXT"} {
		if _, err := ParseFormat(input); err != nil {
			t.Errorf("ParseFormat(%q) error = %v", input, err)
		}
	}
	if _, err := ParseFormat("xml"); err == nil {
		t.Error("ParseFormat(xml) error = nil, want error")
	}
}

func TestNewLogger(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		format Format
		want   string
	}{
		{name: "json", format: FormatJSON, want: `"msg":"hello"`},
		{name: "text", format: FormatText, want: "msg=hello"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var buf bytes.Buffer
			logger := NewLogger(&buf, LevelWarn, tt.format)
			logger.Info("dropped")
			logger.Warn("hello")

			out := buf.String()
			if strings.Contains(out, "dropped") {
				t.Errorf("output %q contains record below level", out)
			}
			if !strings.Contains(out, tt.want) {
				t.Errorf("output %q missing %q", out, tt.want)
			}
			if !strings.Contains(out, "version") {
				t.Errorf("output %q missing version attribute", out)
			}
		})
	}
}
