package middleware

import (
	"net/http"

	"github.com/garrettladley/shopsync/internal/storage"
	"github.com/garrettladley/shopsync/internal/xerrors"
	"github.com/garrettladley/shopsync/internal/xhttp"
	"github.com/garrettladley/shopsync/internal/xslog"
)

const reasonIPRateLimit = "ip_rate_limit"

// RateLimitWithBackend applies IP-based rate limiting keyed by clientIP,
// or by the remote address when clientIP is nil.
func RateLimitWithBackend(backend storage.RateLimiter, clientIP func(*http.Request) string) func(http.Handler) http.Handler {
	if clientIP == nil {
		clientIP = xhttp.GetRequestIP
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			ip := clientIP(r)

			result, err := backend.Allow(ctx, ip)
			if err != nil {
				xslog.FromContext(ctx).ErrorContext(ctx, "rate limit check failed",
					xslog.ErrorGroup(err),
					xslog.IP(ip),
				)
				xerrors.WriteError(ctx, w, xerrors.ServiceUnavailable(xerrors.WithMessage("rate limit check failed")))
				return
			}

			if !result.Allowed {
				xerrors.WriteError(ctx, w, xerrors.TooManyRequests(
					xerrors.WithRetryAfter(result.RetryAfter),
					xerrors.WithReason(reasonIPRateLimit),
				))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
