package xslog

import (
	"log/slog"
	"net/http"
	"runtime/debug"
	"time"

	"github.com/garrettladley/shopsync/internal/version"
	"github.com/garrettladley/shopsync/internal/xhttp"
)

const (
	keyError = "error"
)

func Error(err error) slog.Attr {
	return slog.String(keyError, err.Error())
}

func RequestID(requestID string) slog.Attr {
	const requestIDKey = "request_id"
	return slog.String(requestIDKey, requestID)
}

func Stack() slog.Attr {
	const stackKey = "stack"
	return slog.String(stackKey, string(debug.Stack()))
}

func HTTPStatus(status int) slog.Attr {
	const statusKey = "status"
	return slog.Int(statusKey, status)
}

func Duration(duration time.Duration) slog.Attr {
	const durationKey = "duration"
	return slog.Duration(durationKey, duration)
}

func RequestMethod(r *http.Request) slog.Attr {
	const methodKey = "method"
	return slog.String(methodKey, r.Method)
}

func RequestPath(r *http.Request) slog.Attr {
	const pathKey = "path"
	return slog.String(pathKey, r.URL.Path)
}

func IP(ip string) slog.Attr {
	const ipKey = "ip"
	return slog.String(ipKey, ip)
}

func RequestIP(r *http.Request) slog.Attr {
	return IP(xhttp.GetRequestIP(r))
}

func Version() slog.Attr {
	const versionKey = "version"
	return slog.String(versionKey, version.Get())
}

func ProductID(id string) slog.Attr {
	const productIDKey = "product_id"
	return slog.String(productIDKey, id)
}

func VariantCount(n int) slog.Attr {
	const variantCountKey = "variant_count"
	return slog.Int(variantCountKey, n)
}

func DocumentKeys(keys []string) slog.Attr {
	const documentKeysKey = "document_keys"
	return slog.Any(documentKeysKey, keys)
}

func TransactionID(id string) slog.Attr {
	const transactionIDKey = "transaction_id"
	return slog.String(transactionIDKey, id)
}

func Reason(reason string) slog.Attr {
	const reasonKey = "reason"
	return slog.String(reasonKey, reason)
}

func Field(field string) slog.Attr {
	const fieldKey = "field"
	return slog.String(fieldKey, field)
}

func Topic(topic string) slog.Attr {
	const topicKey = "topic"
	return slog.String(topicKey, topic)
}

func WebhookID(id string) slog.Attr {
	const webhookIDKey = "webhook_id"
	return slog.String(webhookIDKey, id)
}

func ShopDomain(domain string) slog.Attr {
	const shopDomainKey = "shop_domain"
	return slog.String(shopDomainKey, domain)
}

func Backend(backend string) slog.Attr {
	const backendKey = "backend"
	return slog.String(backendKey, backend)
}
