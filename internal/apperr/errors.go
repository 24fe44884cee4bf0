package apperr

import (
	"errors"
	"fmt"
)

// Kind classifies a failure by whether the sender should redeliver.
type Kind string

const (
	KindAuthentication Kind = "authentication"
	KindValidation     Kind = "validation"
	KindStorage        Kind = "storage"
)

// Reason is a stable, machine-readable cause within a Kind.
type Reason string

const (
	ReasonBadMethod              Reason = "bad-method"
	ReasonMissingSignature       Reason = "missing-signature"
	ReasonBadSignature           Reason = "bad-signature"
	ReasonMalformedJSON          Reason = "malformed-json"
	ReasonUnsupportedContentType Reason = "unsupported-content-type"
	ReasonNoVariants             Reason = "no-variants"
	ReasonInvalidField           Reason = "invalid-field"
	ReasonTimeout                Reason = "timeout"
	ReasonUnavailable            Reason = "unavailable"
	ReasonConflict               Reason = "conflict"
	ReasonMalformedMutation      Reason = "malformed-mutation"
)

type Error struct {
	Kind   Kind
	Reason Reason
	// Field is the JSON path of the offending value for validation failures.
	Field string
	Cause error
}

func (e *Error) Error() string {
	msg := string(e.Kind) + ": " + string(e.Reason)
	if e.Field != "" {
		msg += " (" + e.Field + ")"
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Cause }

// Is matches another *Error with the same Kind and Reason, so callers can
// compare against the sentinel values below with errors.Is.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == t.Kind && e.Reason == t.Reason && (t.Field == "" || t.Field == e.Field)
}

// Retryable reports whether redelivery of the same notification can succeed.
func (e *Error) Retryable() bool { return e.Kind == KindStorage }

var (
	ErrBadMethod        = &Error{Kind: KindAuthentication, Reason: ReasonBadMethod}
	ErrMissingSignature = &Error{Kind: KindAuthentication, Reason: ReasonMissingSignature}
	ErrBadSignature     = &Error{Kind: KindAuthentication, Reason: ReasonBadSignature}
	ErrNoVariants       = &Error{Kind: KindValidation, Reason: ReasonNoVariants, Field: "variants"}
)

func Authentication(reason Reason) *Error {
	return &Error{Kind: KindAuthentication, Reason: reason}
}

func Validation(reason Reason, field string, cause error) *Error {
	return &Error{Kind: KindValidation, Reason: reason, Field: field, Cause: cause}
}

// InvalidField reports a required field that is absent, null, or of the wrong type.
func InvalidField(field string, format string, args ...any) *Error {
	return &Error{Kind: KindValidation, Reason: ReasonInvalidField, Field: field, Cause: fmt.Errorf(format, args...)}
}

func Storage(reason Reason, cause error) *Error {
	return &Error{Kind: KindStorage, Reason: reason, Cause: cause}
}

func As(err error) *Error {
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return nil
}

// IsRetryable reports whether err is a transient failure. Errors outside the
// taxonomy are treated as transient so the sender redelivers.
func IsRetryable(err error) bool {
	if e := As(err); e != nil {
		return e.Retryable()
	}
	return err != nil
}
