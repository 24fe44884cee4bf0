package storage

import (
	"errors"
	"testing"
	"time"

	go_json "github.com/goccy/go-json"
	"github.com/google/go-cmp/cmp"

	"github.com/garrettladley/shopsync/internal/mutation"
)

const defaultTestTimeout = 5 * time.Second

func TestApplyFields(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name        string
		dst         map[string]any
		src         map[string]any
		overwrite   bool
		want        map[string]any
		wantChanged bool
	}{
		{
			name:        "set new key",
			dst:         map[string]any{},
			src:         map[string]any{"price": go_json.Number("1999")},
			overwrite:   true,
			want:        map[string]any{"price": go_json.Number("1999")},
			wantChanged: true,
		},
		{
			name:        "set same value",
			dst:         map[string]any{"price": go_json.Number("1999")},
			src:         map[string]any{"price": go_json.Number("1999")},
			overwrite:   true,
			want:        map[string]any{"price": go_json.Number("1999")},
			wantChanged: false,
		},
		{
			name:        "set replaces value",
			dst:         map[string]any{"price": go_json.Number("1999")},
			src:         map[string]any{"price": go_json.Number("2499")},
			overwrite:   true,
			want:        map[string]any{"price": go_json.Number("2499")},
			wantChanged: true,
		},
		{
			name:        "set if absent keeps value",
			dst:         map[string]any{"title": "Edited"},
			src:         map[string]any{"title": "Shirt"},
			overwrite:   false,
			want:        map[string]any{"title": "Edited"},
			wantChanged: false,
		},
		{
			name:        "set if absent treats null as present",
			dst:         map[string]any{"title": nil},
			src:         map[string]any{"title": "Shirt"},
			overwrite:   false,
			want:        map[string]any{"title": nil},
			wantChanged: false,
		},
		{
			name:        "set if absent fills missing",
			dst:         map[string]any{"title": "Edited"},
			src:         map[string]any{"title": "Shirt", "slug": map[string]any{"current": "shirt"}},
			overwrite:   false,
			want:        map[string]any{"title": "Edited", "slug": map[string]any{"current": "shirt"}},
			wantChanged: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			changed := applyFields(tt.dst, tt.src, tt.overwrite)
			if changed != tt.wantChanged {
				t.Errorf("applyFields() changed = %v, want %v", changed, tt.wantChanged)
			}
			if diff := cmp.Diff(tt.want, tt.dst); diff != "" {
				t.Errorf("applyFields() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestNormalizeFields(t *testing.T) {
	t.Parallel()

	got, err := normalizeFields(mutation.Fields{
		"price": int64(1999),
		"slug":  mutation.Fields{"current": "shirt"},
	})
	if err != nil {
		t.Fatalf("normalizeFields() error = %v", err)
	}
	want := map[string]any{
		"price": go_json.Number("1999"),
		"slug":  map[string]any{"current": "shirt"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("normalizeFields() mismatch (-want +got):\n%s", diff)
	}

	if _, err := normalizeFields(map[string]any{"bad": func() {}}); !errors.Is(err, mutation.ErrMalformed) {
		t.Errorf("normalizeFields() error = %v, want ErrMalformed", err)
	}
}

func TestMemoryStoreTimestamps(t *testing.T) {
	t.Parallel()
	ctx := t.Context()

	now := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	store := NewMemoryStore()
	store.now = func() time.Time { return now }

	p := testProduct("42")
	key := mutation.ProductKey(p.ID)
	if _, err := store.Commit(ctx, mutation.Plan(p)); err != nil {
		t.Fatalf("Commit() error = %v", err)
	}

	created := now
	now = now.Add(time.Hour)
	if _, err := store.Commit(ctx, mutation.Plan(p)); err != nil {
		t.Fatalf("Commit() error = %v", err)
	}

	doc, err := store.Get(ctx, key)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if !doc.UpdatedAt.Equal(created) {
		t.Errorf("UpdatedAt = %v after no-op commit, want %v", doc.UpdatedAt, created)
	}

	p.Variants[0].Price = 2499
	if _, err := store.Commit(ctx, mutation.Plan(p)); err != nil {
		t.Fatalf("Commit() error = %v", err)
	}
	doc, err = store.Get(ctx, key)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if !doc.UpdatedAt.Equal(now) {
		t.Errorf("UpdatedAt = %v, want %v", doc.UpdatedAt, now)
	}
	if !doc.CreatedAt.Equal(created) {
		t.Errorf("CreatedAt = %v, want %v", doc.CreatedAt, created)
	}
}

func TestMemoryStoreGetReturnsCopy(t *testing.T) {
	t.Parallel()
	ctx := t.Context()
	store := NewMemoryStore()

	p := testProduct("42")
	if _, err := store.Commit(ctx, mutation.Plan(p)); err != nil {
		t.Fatalf("Commit() error = %v", err)
	}

	doc, err := store.Get(ctx, mutation.ProductKey(p.ID))
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	doc.Fields[mutation.FieldTitle] = "mutated"

	again, err := store.Get(ctx, mutation.ProductKey(p.ID))
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got := again.Fields[mutation.FieldTitle]; got != "Shirt" {
		t.Errorf("stored title = %v, want Shirt", got)
	}
}
