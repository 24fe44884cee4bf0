package validator

import (
	"maps"
	"slices"
	"strings"
)

type Validator interface {
	// Validate validates the fields of the struct and returns a map of errors.
	// returns nil if no errors are found
	Validate() map[string]string
}

// Error lists every invalid field, keyed by name.
type Error struct {
	Fields map[string]string
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString("invalid fields: ")
	for i, name := range slices.Sorted(maps.Keys(e.Fields)) {
		if i > 0 {
			b.WriteString("; ")
		}
		b.WriteString(name)
		b.WriteString(": ")
		b.WriteString(e.Fields[name])
	}
	return b.String()
}

func Validate(v Validator) error {
	if errs := v.Validate(); len(errs) > 0 {
		return &Error{Fields: errs}
	}
	return nil
}
