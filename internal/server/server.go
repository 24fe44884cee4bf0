// Package server assembles the HTTP surface: routes, middleware, and the
// configuration the binary reads at startup.
package server

import (
	"log/slog"
	"net/http"

	"github.com/garrettladley/shopsync/internal/server/handler"
	servermw "github.com/garrettladley/shopsync/internal/server/middleware"
	"github.com/garrettladley/shopsync/internal/service/webhook"
	"github.com/garrettladley/shopsync/internal/storage"
	"github.com/garrettladley/shopsync/internal/xhttp"
	"github.com/garrettladley/shopsync/internal/xhttp/middleware"
)

const (
	WebhookPath = "/webhooks/shopify/products"
	HealthPath  = "/health"
)

type Deps struct {
	Logger       *slog.Logger
	Webhook      webhook.Service
	RateLimiter  storage.RateLimiter
	HealthChecks map[string]handler.Check
	MaxBodyBytes int64
	// TrustedProxies may report the client address in X-Forwarded-For.
	TrustedProxies xhttp.TrustedProxies
}

func NewHandler(d Deps) http.Handler {
	webhookHandler := handler.NewWebhook(d.Webhook, d.MaxBodyBytes)
	healthHandler := handler.NewHealth(d.HealthChecks)

	mux := http.NewServeMux()
	// every method reaches the handler so non-POST gets a 405 from the
	// pipeline rather than the mux
	mux.Handle(WebhookPath, middleware.Chain(
		http.HandlerFunc(webhookHandler.HandleWebhook),
		servermw.RateLimitWithBackend(d.RateLimiter, d.TrustedProxies.ClientIP),
	))
	mux.HandleFunc("GET "+HealthPath, healthHandler.HandleHealth)

	return middleware.Chain(mux,
		middleware.Recovery,
		middleware.RequestID(middleware.WithIDFunc(middleware.TrustedRequestID)),
		middleware.Logger(d.Logger),
		middleware.Logging,
		middleware.SecurityHeaders,
	)
}
