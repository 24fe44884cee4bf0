package storage

import (
	"context"
	_ "embed"
	"fmt"
	"sort"
	"strings"
	"time"

	go_json "github.com/goccy/go-json"
	"github.com/redis/go-redis/v9"

	"github.com/garrettladley/shopsync/internal/mutation"
)

var _ DocumentStore = (*RedisStore)(nil)

//go:embed commit.lua
var commitLua string

var commitScript = redis.NewScript(commitLua)

const (
	documentKeyPrefix = "doc:"
	fieldPrefix       = "f:"

	hashType      = "_type"
	hashCreatedAt = "_createdAt"
	hashUpdatedAt = "_updatedAt"
)

// RedisStore keeps each document in a hash: reserved _type, _createdAt and
// _updatedAt entries plus one JSON-encoded entry per field. A commit is one
// script invocation. Scripts do not roll back, so all validation and
// encoding happens before the script runs.
type RedisStore struct {
	client *redis.Client
	now    func() time.Time
}

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client, now: time.Now}
}

func (s *RedisStore) Commit(ctx context.Context, set mutation.Set) (CommitResult, error) {
	if err := set.Validate(); err != nil {
		return CommitResult{}, err
	}

	keys, args, err := commitArgs(set, s.now().UTC())
	if err != nil {
		return CommitResult{}, err
	}

	if err := commitScript.Run(ctx, s.client, keys, args...).Err(); err != nil {
		return CommitResult{}, fmt.Errorf("failed to run commit script: %w", err)
	}

	return CommitResult{TransactionID: newTransactionID(), Keys: set.Keys()}, nil
}

func commitArgs(set mutation.Set, now time.Time) ([]string, []any, error) {
	mutations := set.Mutations()
	keys := make([]string, 0, len(mutations))
	args := []any{now.Format(time.RFC3339Nano)}

	for _, m := range mutations {
		keys = append(keys, documentKeyPrefix+m.Key)
		args = append(args, string(m.Kind), m.Type, len(m.Fields))

		names := make([]string, 0, len(m.Fields))
		for name := range m.Fields {
			names = append(names, name)
		}
		sort.Strings(names)

		fields, err := normalizeFields(m.Fields)
		if err != nil {
			return nil, nil, err
		}
		for _, name := range names {
			value, err := go_json.Marshal(fields[name])
			if err != nil {
				return nil, nil, fmt.Errorf("%w: encoding %s.%s: %w", mutation.ErrMalformed, m.Key, name, err)
			}
			args = append(args, name, string(value))
		}
	}
	return keys, args, nil
}

func (s *RedisStore) Get(ctx context.Context, key string) (Document, error) {
	hash, err := s.client.HGetAll(ctx, documentKeyPrefix+key).Result()
	if err != nil {
		return Document{}, fmt.Errorf("failed to get document: %w", err)
	}
	if len(hash) == 0 {
		return Document{}, ErrNotFound
	}

	doc := Document{
		Key:    key,
		Type:   hash[hashType],
		Fields: make(map[string]any),
	}
	if doc.CreatedAt, err = time.Parse(time.RFC3339Nano, hash[hashCreatedAt]); err != nil {
		return Document{}, fmt.Errorf("failed to parse %s of %s: %w", hashCreatedAt, key, err)
	}
	if doc.UpdatedAt, err = time.Parse(time.RFC3339Nano, hash[hashUpdatedAt]); err != nil {
		return Document{}, fmt.Errorf("failed to parse %s of %s: %w", hashUpdatedAt, key, err)
	}

	for name, raw := range hash {
		field, ok := strings.CutPrefix(name, fieldPrefix)
		if !ok {
			continue
		}
		var value any
		if err := decodeJSON([]byte(raw), &value); err != nil {
			return Document{}, fmt.Errorf("failed to decode %s.%s: %w", key, field, err)
		}
		doc.Fields[field] = value
	}
	return doc, nil
}

func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Close is a no-op; the client is shared with the rate limiter and closed by
// its owner.
func (s *RedisStore) Close() error {
	return nil
}
