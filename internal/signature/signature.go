// Package signature authenticates provider webhooks by a shared-secret
// HMAC-SHA256 over the exact request bytes.
package signature

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"net/http"

	"github.com/garrettladley/shopsync/internal/apperr"
)

// Header carries the provider's base64 HMAC-SHA256 of the raw body.
const Header = "X-Shopify-Hmac-Sha256"

type Verifier struct {
	secret []byte
}

func NewVerifier(secret string) *Verifier {
	return &Verifier{secret: []byte(secret)}
}

// CheckMethod rejects anything but POST. It needs no body, so the HTTP
// boundary calls it before reading the request.
func CheckMethod(method string) error {
	if method != http.MethodPost {
		return apperr.Authentication(apperr.ReasonBadMethod)
	}
	return nil
}

// Verify returns nil when signature is the base64 HMAC-SHA256 of body.
// body must be the bytes as received, never a re-encoded form.
func (v *Verifier) Verify(method string, body []byte, signature string) error {
	if err := CheckMethod(method); err != nil {
		return err
	}
	if signature == "" {
		return apperr.Authentication(apperr.ReasonMissingSignature)
	}

	expected := v.Sign(body)
	if !hmac.Equal([]byte(expected), []byte(signature)) {
		return apperr.Authentication(apperr.ReasonBadSignature)
	}
	return nil
}

// Sign returns base64(HMAC-SHA256(body, secret)).
func (v *Verifier) Sign(body []byte) string {
	mac := hmac.New(sha256.New, v.secret)
	mac.Write(body)
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}
