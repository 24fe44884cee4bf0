// Package mutation models document writes as three idempotent operation kinds
// collected into an immutable Set that a store applies atomically.
package mutation

import (
	"errors"
	"fmt"
	"maps"

	go_json "github.com/goccy/go-json"
)

var ErrMalformed = errors.New("malformed mutation")

type Kind string

const (
	// KindCreateIfAbsent creates an empty document of Type at Key unless one exists.
	KindCreateIfAbsent Kind = "createIfAbsent"
	// KindSet overwrites Fields on an existing document.
	KindSet Kind = "set"
	// KindSetIfAbsent writes each of Fields only where the document has no value.
	KindSetIfAbsent Kind = "setIfAbsent"
)

type Fields map[string]any

type Mutation struct {
	Kind   Kind   `json:"kind"`
	Key    string `json:"id"`
	Type   string `json:"type,omitempty"`
	Fields Fields `json:"fields,omitempty"`
}

func CreateIfAbsent(key, docType string) Mutation {
	return Mutation{Kind: KindCreateIfAbsent, Key: key, Type: docType}
}

func SetFields(key string, fields Fields) Mutation {
	return Mutation{Kind: KindSet, Key: key, Fields: fields}
}

func SetFieldsIfAbsent(key string, fields Fields) Mutation {
	return Mutation{Kind: KindSetIfAbsent, Key: key, Fields: fields}
}

func (m Mutation) clone() Mutation {
	m.Fields = cloneFields(m.Fields)
	return m
}

// Set is an ordered list of mutations. It is never modified after
// construction; accessors hand out copies.
type Set struct {
	mutations []Mutation
}

func NewSet(mutations ...Mutation) Set {
	s := Set{mutations: make([]Mutation, len(mutations))}
	for i, m := range mutations {
		s.mutations[i] = m.clone()
	}
	return s
}

func (s Set) Len() int { return len(s.mutations) }

func (s Set) Mutations() []Mutation {
	out := make([]Mutation, len(s.mutations))
	for i, m := range s.mutations {
		out[i] = m.clone()
	}
	return out
}

// Keys returns each addressed document key once, in first-touch order.
func (s Set) Keys() []string {
	seen := make(map[string]struct{}, len(s.mutations))
	keys := make([]string, 0)
	for _, m := range s.mutations {
		if _, ok := seen[m.Key]; ok {
			continue
		}
		seen[m.Key] = struct{}{}
		keys = append(keys, m.Key)
	}
	return keys
}

// Validate checks the structural rules every store relies on: keys, types and
// fields are present, and every field write targets a key created earlier in
// the same set.
func (s Set) Validate() error {
	if len(s.mutations) == 0 {
		return fmt.Errorf("%w: empty set", ErrMalformed)
	}

	created := make(map[string]struct{})
	for i, m := range s.mutations {
		if m.Key == "" {
			return fmt.Errorf("%w: mutation %d has no key", ErrMalformed, i)
		}
		switch m.Kind {
		case KindCreateIfAbsent:
			if m.Type == "" {
				return fmt.Errorf("%w: mutation %d (%s) has no document type", ErrMalformed, i, m.Key)
			}
			created[m.Key] = struct{}{}
		case KindSet, KindSetIfAbsent:
			if len(m.Fields) == 0 {
				return fmt.Errorf("%w: mutation %d (%s) has no fields", ErrMalformed, i, m.Key)
			}
			if _, ok := created[m.Key]; !ok {
				return fmt.Errorf("%w: mutation %d patches %s before it is created", ErrMalformed, i, m.Key)
			}
		default:
			return fmt.Errorf("%w: mutation %d has unknown kind %q", ErrMalformed, i, m.Kind)
		}
	}
	return nil
}

// MarshalJSON encodes the set deterministically: equal sets yield equal bytes.
func (s Set) MarshalJSON() ([]byte, error) {
	return go_json.Marshal(s.mutations)
}

func cloneFields(f Fields) Fields {
	if f == nil {
		return nil
	}
	out := make(Fields, len(f))
	for k, v := range f {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		return maps.Clone(t)
	case Fields:
		return cloneFields(t)
	default:
		return v
	}
}
