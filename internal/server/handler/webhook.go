package handler

import (
	"errors"
	"io"
	"net/http"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"

	"github.com/garrettladley/shopsync/internal/service/webhook"
	"github.com/garrettladley/shopsync/internal/signature"
	"github.com/garrettladley/shopsync/internal/xcontext"
	"github.com/garrettladley/shopsync/internal/xerrors"
	"github.com/garrettladley/shopsync/internal/xhttp"
	"github.com/garrettladley/shopsync/internal/xslog"
)

const (
	headerShopifyTopic      = "X-Shopify-Topic"
	headerShopifyWebhookID  = "X-Shopify-Webhook-Id"
	headerShopifyShopDomain = "X-Shopify-Shop-Domain"
)

type Webhook struct {
	service      webhook.Service
	maxBodyBytes int64
}

func NewWebhook(service webhook.Service, maxBodyBytes int64) *Webhook {
	return &Webhook{service: service, maxBodyBytes: maxBodyBytes}
}

type syncResponse struct {
	TransactionID string   `json:"transactionId"`
	DocumentIDs   []string `json:"documentIds"`
}

// HandleWebhook handles /webhooks/shopify/products requests.
func (h *Webhook) HandleWebhook(w http.ResponseWriter, r *http.Request) {
	ctx := otel.GetTextMapPropagator().Extract(r.Context(), propagation.HeaderCarrier(r.Header))

	topic := r.Header.Get(headerShopifyTopic)
	webhookID := r.Header.Get(headerShopifyWebhookID)
	shopDomain := r.Header.Get(headerShopifyShopDomain)
	ctx = xslog.WithAttrs(ctx, xslog.DeliveryGroup(topic, webhookID, shopDomain))
	ctx = xcontext.SetWebhookID(ctx, webhookID)

	// the body is never read for a method that cannot carry a notification
	if err := signature.CheckMethod(r.Method); err != nil {
		writeError(ctx, w, err)
		return
	}

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, h.maxBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			xerrors.WriteError(ctx, w, xerrors.PayloadTooLarge(
				xerrors.WithMessage("request body too large"),
				xerrors.WithCode("body-too-large"),
			))
			return
		}
		xerrors.WriteError(ctx, w, xerrors.BadRequest(
			xerrors.WithMessage("failed to read request body"),
			xerrors.WithCause(err),
		))
		return
	}

	result, err := h.service.ProcessWebhook(ctx, webhook.ProcessRequest{
		Method:      r.Method,
		ContentType: r.Header.Get(xhttp.ContentType),
		Body:        body,
		Signature:   r.Header.Get(signature.Header),
		Topic:       topic,
		WebhookID:   webhookID,
		ShopDomain:  shopDomain,
	})
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	xhttp.WriteOK(w, syncResponse{
		TransactionID: result.TransactionID,
		DocumentIDs:   result.Keys,
	})
}
