// Package xcontext carries per-delivery identifiers across package
// boundaries without threading them through every signature.
package xcontext

import "context"

type key int

const (
	requestIDKey key = iota
	webhookIDKey
)

func set(ctx context.Context, k key, v string) context.Context {
	if v == "" {
		return ctx
	}
	return context.WithValue(ctx, k, v)
}

func get(ctx context.Context, k key) (string, bool) {
	v, ok := ctx.Value(k).(string)
	return v, ok
}

func SetRequestID(ctx context.Context, requestID string) context.Context {
	return set(ctx, requestIDKey, requestID)
}

func GetRequestID(ctx context.Context) (string, bool) {
	return get(ctx, requestIDKey)
}

// SetWebhookID records the provider's delivery id (X-Shopify-Webhook-Id),
// which stays the same across redeliveries of one notification.
func SetWebhookID(ctx context.Context, webhookID string) context.Context {
	return set(ctx, webhookIDKey, webhookID)
}

func GetWebhookID(ctx context.Context) (string, bool) {
	return get(ctx, webhookIDKey)
}
