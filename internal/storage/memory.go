package storage

import (
	"context"
	"sync"
	"time"

	"github.com/garrettladley/shopsync/internal/mutation"
)

var _ DocumentStore = (*MemoryStore)(nil)

// MemoryStore keeps documents in process. Commits are serialized and staged
// against copies, so a failing set leaves the map untouched.
type MemoryStore struct {
	mu   sync.RWMutex
	docs map[string]Document
	now  func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		docs: make(map[string]Document),
		now:  time.Now,
	}
}

func (m *MemoryStore) Commit(ctx context.Context, set mutation.Set) (CommitResult, error) {
	if err := set.Validate(); err != nil {
		return CommitResult{}, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return CommitResult{}, err
	}

	changed, err := applySet(set, m.now().UTC(), func(key string) (Document, bool, error) {
		doc, ok := m.docs[key]
		if !ok {
			return Document{}, false, nil
		}
		return cloneDocument(doc), true, nil
	})
	if err != nil {
		return CommitResult{}, err
	}

	for _, st := range changed {
		m.docs[st.doc.Key] = st.doc
	}

	return CommitResult{TransactionID: newTransactionID(), Keys: set.Keys()}, nil
}

func (m *MemoryStore) Get(_ context.Context, key string) (Document, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	doc, ok := m.docs[key]
	if !ok {
		return Document{}, ErrNotFound
	}
	return cloneDocument(doc), nil
}

func (m *MemoryStore) Ping(_ context.Context) error {
	return nil
}

func (m *MemoryStore) Close() error {
	return nil
}
