package validator

import (
	"errors"
	"testing"
)

type fields map[string]string

func (f fields) Validate() map[string]string { return f }

func TestValidate(t *testing.T) {
	t.Parallel()

	if err := Validate(fields(nil)); err != nil {
		t.Fatalf("Validate() error = %v, want nil", err)
	}

	err := Validate(fields{"REDIS_URL": "required", "DATABASE_URL": "required"})
	var verr *Error
	if !errors.As(err, &verr) {
		t.Fatalf("Validate() error = %v, want *Error", err)
	}
	if got, want := err.Error(), "invalid fields: DATABASE_URL: required; REDIS_URL: required"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
}
