package signature

import (
	"errors"
	"net/http"
	"testing"

	"github.com/garrettladley/shopsync/internal/apperr"
)

const testSecret = "hush"

var testBody = []byte(`{"id":"42","title":"Shirt","handle":"shirt","variants":[{"id":"99","title":"Default","price":"19.99","sku":"SH-1"}]}`)

func TestVerify(t *testing.T) {
	t.Parallel()

	v := NewVerifier(testSecret)
	valid := v.Sign(testBody)

	tests := []struct {
		name      string
		method    string
		body      []byte
		signature string
		wantErr   error
	}{
		{
			name:      "valid",
			method:    http.MethodPost,
			body:      testBody,
			signature: valid,
		},
		{
			name:      "missing header",
			method:    http.MethodPost,
			body:      testBody,
			signature: "",
			wantErr:   apperr.ErrMissingSignature,
		},
		{
			name:      "wrong secret",
			method:    http.MethodPost,
			body:      testBody,
			signature: NewVerifier("other").Sign(testBody),
			wantErr:   apperr.ErrBadSignature,
		},
		{
			name:      "not base64",
			method:    http.MethodPost,
			body:      testBody,
			signature: "not-a-signature",
			wantErr:   apperr.ErrBadSignature,
		},
		{
			name:      "get with valid signature",
			method:    http.MethodGet,
			body:      testBody,
			signature: valid,
			wantErr:   apperr.ErrBadMethod,
		},
		{
			name:      "put without signature reports method first",
			method:    http.MethodPut,
			body:      testBody,
			signature: "",
			wantErr:   apperr.ErrBadMethod,
		},
		{
			name:      "empty body signed",
			method:    http.MethodPost,
			body:      []byte{},
			signature: v.Sign([]byte{}),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := v.Verify(tt.method, tt.body, tt.signature)
			if tt.wantErr == nil {
				if err != nil {
					t.Fatalf("Verify() error = %v, want nil", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Verify() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestVerifySingleByteMutation(t *testing.T) {
	t.Parallel()

	v := NewVerifier(testSecret)
	signature := v.Sign(testBody)

	for i := range testBody {
		mutated := make([]byte, len(testBody))
		copy(mutated, testBody)
		mutated[i] ^= 0x01

		if err := v.Verify(http.MethodPost, mutated, signature); !errors.Is(err, apperr.ErrBadSignature) {
			t.Fatalf("byte %d flipped: Verify() error = %v, want bad signature", i, err)
		}
	}
}

func TestVerifyReencodedBodyFails(t *testing.T) {
	t.Parallel()

	v := NewVerifier(testSecret)
	signature := v.Sign(testBody)

	// same JSON document, different bytes
	reencoded := []byte(`{"id": "42", "title": "Shirt", "handle": "shirt", "variants": [{"id": "99", "title": "Default", "price": "19.99", "sku": "SH-1"}]}`)
	if err := v.Verify(http.MethodPost, reencoded, signature); !errors.Is(err, apperr.ErrBadSignature) {
		t.Fatalf("Verify() error = %v, want bad signature", err)
	}
}
