package webhook

import "context"

type ProcessRequest struct {
	Method      string
	ContentType string
	// Body is the exact received bytes; the signature covers nothing else.
	Body      []byte
	Signature string

	// Informational provider headers. They are logged and traced only.
	Topic      string
	WebhookID  string
	ShopDomain string
}

type Result struct {
	ProductID     string
	TransactionID string
	Keys          []string
}

type Service interface {
	// ProcessWebhook authenticates the request, normalizes the product,
	// plans its mutations, and commits them as one transaction.
	// Every error is an *apperr.Error: KindAuthentication and KindValidation
	// are permanent, KindStorage is transient.
	ProcessWebhook(ctx context.Context, req ProcessRequest) (Result, error)
}
