package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	go_json "github.com/goccy/go-json"
	"github.com/mattn/go-sqlite3"

	"github.com/garrettladley/shopsync/internal/migrations"
	"github.com/garrettladley/shopsync/internal/mutation"
)

var _ DocumentStore = (*SQLiteStore)(nil)

// _txlock=immediate takes the write lock at BEGIN so two commits never
// interleave their reads and writes.
const sqliteDSNFormat = "file:%s?_busy_timeout=5000&_journal_mode=WAL&_txlock=immediate"

const (
	selectSQLiteDocumentSQL = `SELECT id, doc_type, fields, created_at, updated_at FROM documents WHERE id = ?`

	upsertSQLiteDocumentSQL = `INSERT INTO documents (id, doc_type, fields, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET fields = excluded.fields, updated_at = excluded.updated_at`
)

type SQLiteStore struct {
	db  *sql.DB
	now func() time.Time
}

func NewSQLiteStore(db *sql.DB) *SQLiteStore {
	return &SQLiteStore{db: db, now: time.Now}
}

// OpenSQLite opens the database file at path and brings its schema up to date.
func OpenSQLite(ctx context.Context, path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", fmt.Sprintf(sqliteDSNFormat, path))
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}

	if err := migrations.Apply(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to apply migrations: %w", err)
	}
	return NewSQLiteStore(db), nil
}

func (s *SQLiteStore) Commit(ctx context.Context, set mutation.Set) (CommitResult, error) {
	if err := set.Validate(); err != nil {
		return CommitResult{}, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return CommitResult{}, classifySQLite(fmt.Errorf("failed to begin transaction: %w", err))
	}
	defer func() { _ = tx.Rollback() }()

	changed, err := applySet(set, s.now().UTC(), func(key string) (Document, bool, error) {
		doc, err := scanSQLiteDocument(tx.QueryRowContext(ctx, selectSQLiteDocumentSQL, key))
		if errors.Is(err, ErrNotFound) {
			return Document{}, false, nil
		}
		return doc, err == nil, err
	})
	if err != nil {
		return CommitResult{}, classifySQLite(err)
	}

	for _, st := range changed {
		fields, err := go_json.Marshal(st.doc.Fields)
		if err != nil {
			return CommitResult{}, fmt.Errorf("%w: encoding %s: %w", mutation.ErrMalformed, st.doc.Key, err)
		}
		_, err = tx.ExecContext(ctx, upsertSQLiteDocumentSQL,
			st.doc.Key,
			st.doc.Type,
			string(fields),
			st.doc.CreatedAt.Format(time.RFC3339Nano),
			st.doc.UpdatedAt.Format(time.RFC3339Nano),
		)
		if err != nil {
			return CommitResult{}, classifySQLite(fmt.Errorf("failed to write %s: %w", st.doc.Key, err))
		}
	}

	if err := tx.Commit(); err != nil {
		return CommitResult{}, classifySQLite(fmt.Errorf("failed to commit transaction: %w", err))
	}

	return CommitResult{TransactionID: newTransactionID(), Keys: set.Keys()}, nil
}

func (s *SQLiteStore) Get(ctx context.Context, key string) (Document, error) {
	return scanSQLiteDocument(s.db.QueryRowContext(ctx, selectSQLiteDocumentSQL, key))
}

func scanSQLiteDocument(row *sql.Row) (Document, error) {
	var (
		doc                  Document
		fields               string
		createdAt, updatedAt string
	)
	err := row.Scan(&doc.Key, &doc.Type, &fields, &createdAt, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Document{}, ErrNotFound
	}
	if err != nil {
		return Document{}, fmt.Errorf("failed to get document: %w", err)
	}

	doc.Fields = make(map[string]any)
	if err := decodeJSON([]byte(fields), &doc.Fields); err != nil {
		return Document{}, fmt.Errorf("failed to decode document fields: %w", err)
	}
	if doc.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt); err != nil {
		return Document{}, fmt.Errorf("failed to parse created_at: %w", err)
	}
	if doc.UpdatedAt, err = time.Parse(time.RFC3339Nano, updatedAt); err != nil {
		return Document{}, fmt.Errorf("failed to parse updated_at: %w", err)
	}
	return doc, nil
}

func classifySQLite(err error) error {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		switch sqliteErr.Code {
		case sqlite3.ErrBusy, sqlite3.ErrLocked:
			return fmt.Errorf("%w: %w", ErrConflict, err)
		}
	}
	return err
}

func (s *SQLiteStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
