package xerrors

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	go_json "github.com/goccy/go-json"
	"github.com/google/go-cmp/cmp"
)

func TestWriteError(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name           string
		err            error
		wantStatus     int
		wantBody       errorResponse
		wantRetryAfter string
	}{
		{
			name:       "validation with fields",
			err:        Validation(map[string]string{"variants": "no-variants"}, WithMessage("invalid payload"), WithCode("no-variants")),
			wantStatus: http.StatusUnprocessableEntity,
			wantBody: errorResponse{
				Message: "invalid payload",
				Code:    "no-variants",
				Fields:  map[string]string{"variants": "no-variants"},
			},
		},
		{
			name:       "cause is not returned",
			err:        ServiceUnavailable(WithMessage("failed to sync product"), WithCause(errors.New("dial tcp 10.0.0.5:5432: connection refused"))),
			wantStatus: http.StatusServiceUnavailable,
			wantBody:   errorResponse{Message: "failed to sync product"},
		},
		{
			name:       "plain error becomes internal",
			err:        errors.New("secret detail"),
			wantStatus: http.StatusInternalServerError,
			wantBody:   errorResponse{Message: "internal server error"},
		},
		{
			name:           "rate limited",
			err:            TooManyRequests(WithRetryAfter(1500*time.Millisecond), WithReason("ip_rate_limit")),
			wantStatus:     http.StatusTooManyRequests,
			wantBody:       errorResponse{Message: "too many requests"},
			wantRetryAfter: "1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			rec := httptest.NewRecorder()
			WriteError(t.Context(), rec, tt.err)

			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			if got := rec.Header().Get("Retry-After"); got != tt.wantRetryAfter {
				t.Errorf("Retry-After = %q, want %q", got, tt.wantRetryAfter)
			}

			raw := rec.Body.String()
			if strings.Contains(raw, "10.0.0.5") || strings.Contains(raw, "secret detail") {
				t.Errorf("cause leaked into body: %s", raw)
			}

			var got errorResponse
			if err := go_json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
				t.Fatalf("failed to decode body: %v", err)
			}
			if diff := cmp.Diff(tt.wantBody, got); diff != "" {
				t.Errorf("body mismatch (-want +got):\n%s", diff)
			}
		})
	}
}
