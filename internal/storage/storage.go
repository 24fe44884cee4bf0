// Package storage persists documents behind the DocumentStore interface and
// provides the request rate limiters.
package storage

import (
	"context"
	"errors"
	"time"

	"github.com/garrettladley/shopsync/internal/mutation"
)

var (
	ErrNotFound = errors.New("document not found")
	// ErrConflict reports a transaction aborted by a concurrent writer.
	ErrConflict = errors.New("transaction conflict")
)

type Document struct {
	Key       string         `json:"_id"`
	Type      string         `json:"_type"`
	Fields    map[string]any `json:"fields"`
	CreatedAt time.Time      `json:"_createdAt"`
	UpdatedAt time.Time      `json:"_updatedAt"`
}

type CommitResult struct {
	TransactionID string
	// Keys lists every document the set addressed, in first-touch order.
	Keys []string
}

type DocumentStore interface {
	// Commit applies every mutation of set or none of them.
	Commit(ctx context.Context, set mutation.Set) (CommitResult, error)

	// Get returns ErrNotFound when no document exists at key.
	Get(ctx context.Context, key string) (Document, error)

	Ping(ctx context.Context) error

	Close() error
}

type RateLimitResult struct {
	Allowed    bool
	RetryAfter time.Duration
}

type RateLimiter interface {
	Allow(ctx context.Context, key string) (RateLimitResult, error)
}
