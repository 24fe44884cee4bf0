package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	go_json "github.com/goccy/go-json"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/garrettladley/shopsync/internal/mutation"
)

var _ DocumentStore = (*PostgresStore)(nil)

const (
	pgSerializationFailure = "40001"
	pgDeadlockDetected     = "40P01"
)

const (
	insertDocumentSQL = `INSERT INTO documents (id, doc_type) VALUES ($1, $2) ON CONFLICT (id) DO NOTHING`

	// jsonb || keeps the right operand on duplicate keys.
	setFieldsSQL = `UPDATE documents
		SET fields = fields || $2::jsonb, updated_at = NOW()
		WHERE id = $1 AND fields IS DISTINCT FROM (fields || $2::jsonb)`

	setFieldsIfAbsentSQL = `UPDATE documents
		SET fields = $2::jsonb || fields, updated_at = NOW()
		WHERE id = $1 AND fields IS DISTINCT FROM ($2::jsonb || fields)`

	getDocumentSQL = `SELECT id, doc_type, fields, created_at, updated_at FROM documents WHERE id = $1`
)

type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

func (s *PostgresStore) Commit(ctx context.Context, set mutation.Set) (CommitResult, error) {
	if err := set.Validate(); err != nil {
		return CommitResult{}, err
	}

	err := pgx.BeginTxFunc(ctx, s.pool, pgx.TxOptions{IsoLevel: pgx.ReadCommitted}, func(tx pgx.Tx) error {
		for _, m := range set.Mutations() {
			if err := applyPostgres(ctx, tx, m); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return CommitResult{}, classifyPostgres(err)
	}

	return CommitResult{TransactionID: newTransactionID(), Keys: set.Keys()}, nil
}

func applyPostgres(ctx context.Context, tx pgx.Tx, m mutation.Mutation) error {
	if m.Kind == mutation.KindCreateIfAbsent {
		if _, err := tx.Exec(ctx, insertDocumentSQL, m.Key, m.Type); err != nil {
			return fmt.Errorf("failed to create %s: %w", m.Key, err)
		}
		return nil
	}

	data, err := go_json.Marshal(m.Fields)
	if err != nil {
		return fmt.Errorf("%w: encoding fields for %s: %w", mutation.ErrMalformed, m.Key, err)
	}

	query := setFieldsSQL
	if m.Kind == mutation.KindSetIfAbsent {
		query = setFieldsIfAbsentSQL
	}
	if _, err := tx.Exec(ctx, query, m.Key, string(data)); err != nil {
		return fmt.Errorf("failed to %s %s: %w", m.Kind, m.Key, err)
	}
	return nil
}

func classifyPostgres(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgSerializationFailure, pgDeadlockDetected:
			return fmt.Errorf("%w: %w", ErrConflict, err)
		}
	}
	return err
}

func (s *PostgresStore) Get(ctx context.Context, key string) (Document, error) {
	var (
		doc    Document
		fields []byte
	)
	err := s.pool.QueryRow(ctx, getDocumentSQL, key).Scan(&doc.Key, &doc.Type, &fields, &doc.CreatedAt, &doc.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Document{}, ErrNotFound
	}
	if err != nil {
		return Document{}, fmt.Errorf("failed to get document: %w", err)
	}

	doc.Fields = make(map[string]any)
	if err := decodeJSON(fields, &doc.Fields); err != nil {
		return Document{}, fmt.Errorf("failed to decode document fields: %w", err)
	}
	doc.CreatedAt = doc.CreatedAt.UTC()
	doc.UpdatedAt = doc.UpdatedAt.UTC()
	return doc, nil
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

// OpenPostgres connects a pool and verifies it within timeout.
func OpenPostgres(ctx context.Context, url string, timeout time.Duration) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("failed to create postgres pool: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping postgres: %w", err)
	}
	return pool, nil
}
