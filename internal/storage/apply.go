package storage

import (
	"bytes"
	"fmt"
	"reflect"
	"time"

	go_json "github.com/goccy/go-json"
	"github.com/google/uuid"

	"github.com/garrettladley/shopsync/internal/mutation"
)

func newTransactionID() string { return uuid.NewString() }

// decodeJSON decodes with numbers kept as go_json.Number so integers beyond
// 2^53 survive a round trip.
func decodeJSON(data []byte, v any) error {
	dec := go_json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	return dec.Decode(v)
}

// normalizeFields round-trips fields through JSON so every backend compares
// and returns values in the same shape: numbers as go_json.Number, objects
// as map[string]any.
func normalizeFields(fields map[string]any) (map[string]any, error) {
	out := make(map[string]any, len(fields))
	if len(fields) == 0 {
		return out, nil
	}
	data, err := go_json.Marshal(fields)
	if err != nil {
		return nil, fmt.Errorf("%w: encoding fields: %w", mutation.ErrMalformed, err)
	}
	if err := decodeJSON(data, &out); err != nil {
		return nil, fmt.Errorf("%w: decoding fields: %w", mutation.ErrMalformed, err)
	}
	return out, nil
}

// applyFields writes src into dst and reports whether dst changed. When
// overwrite is false only keys missing from dst are written; a key holding
// null is present.
func applyFields(dst, src map[string]any, overwrite bool) bool {
	changed := false
	for k, v := range src {
		cur, ok := dst[k]
		if ok && (!overwrite || reflect.DeepEqual(cur, v)) {
			continue
		}
		dst[k] = v
		changed = true
	}
	return changed
}

type stagedDocument struct {
	doc     Document
	existed bool
	exists  bool
	changed bool
}

type loadFunc func(key string) (Document, bool, error)

// stage evaluates a mutation set against documents fetched through load,
// touching each key's stored state at most once. Nothing is written; the
// caller persists the changed documents.
type stage struct {
	now   time.Time
	load  loadFunc
	docs  map[string]*stagedDocument
	order []string
}

func newStage(now time.Time, load loadFunc) *stage {
	return &stage{
		now:  now,
		load: load,
		docs: make(map[string]*stagedDocument),
	}
}

func (s *stage) get(key string) (*stagedDocument, error) {
	if st, ok := s.docs[key]; ok {
		return st, nil
	}
	doc, found, err := s.load(key)
	if err != nil {
		return nil, err
	}
	st := &stagedDocument{doc: doc, existed: found, exists: found}
	s.docs[key] = st
	s.order = append(s.order, key)
	return st, nil
}

func (s *stage) apply(m mutation.Mutation) error {
	st, err := s.get(m.Key)
	if err != nil {
		return err
	}

	switch m.Kind {
	case mutation.KindCreateIfAbsent:
		if st.exists {
			return nil
		}
		st.doc = Document{
			Key:       m.Key,
			Type:      m.Type,
			Fields:    map[string]any{},
			CreatedAt: s.now,
			UpdatedAt: s.now,
		}
		st.exists = true
		st.changed = true
		return nil
	case mutation.KindSet, mutation.KindSetIfAbsent:
		if !st.exists {
			return fmt.Errorf("%w: %s patches missing document %s", mutation.ErrMalformed, m.Kind, m.Key)
		}
		fields, err := normalizeFields(m.Fields)
		if err != nil {
			return err
		}
		if applyFields(st.doc.Fields, fields, m.Kind == mutation.KindSet) {
			st.doc.UpdatedAt = s.now
			st.changed = true
		}
		return nil
	default:
		return fmt.Errorf("%w: unknown kind %q", mutation.ErrMalformed, m.Kind)
	}
}

// changed returns the staged documents that need writing, in first-touch order.
func (s *stage) changed() []*stagedDocument {
	out := make([]*stagedDocument, 0, len(s.order))
	for _, key := range s.order {
		if st := s.docs[key]; st.changed {
			out = append(out, st)
		}
	}
	return out
}

func applySet(set mutation.Set, now time.Time, load loadFunc) ([]*stagedDocument, error) {
	s := newStage(now, load)
	for _, m := range set.Mutations() {
		if err := s.apply(m); err != nil {
			return nil, err
		}
	}
	return s.changed(), nil
}

func cloneDocument(d Document) Document {
	fields, err := normalizeFields(d.Fields)
	if err != nil {
		// stored fields were normalized on the way in
		panic(err)
	}
	d.Fields = fields
	return d
}
