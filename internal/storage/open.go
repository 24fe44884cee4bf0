package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/garrettladley/shopsync/internal/config"
	pgmigrations "github.com/garrettladley/shopsync/internal/migrations/postgres"
)

var ErrRedisClientRequired = errors.New("redis backend requires a redis client")

// Open builds the configured backend, applying schema migrations for the SQL
// backends. redisClient is only consulted for config.BackendRedis.
func Open(ctx context.Context, cfg config.Store, redisClient *redis.Client) (DocumentStore, error) {
	switch cfg.Backend {
	case config.BackendPostgres:
		pool, err := OpenPostgres(ctx, cfg.Database.URL, cfg.Timeout)
		if err != nil {
			return nil, err
		}
		if err := pgmigrations.Apply(ctx, pool); err != nil {
			pool.Close()
			return nil, fmt.Errorf("failed to apply migrations: %w", err)
		}
		return NewPostgresStore(pool), nil
	case config.BackendRedis:
		if redisClient == nil {
			return nil, ErrRedisClientRequired
		}
		return NewRedisStore(redisClient), nil
	case config.BackendSQLite:
		return OpenSQLite(ctx, cfg.SQLite.Path)
	case config.BackendMemory:
		return NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.Backend)
	}
}
