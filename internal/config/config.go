// Package config holds the document store settings shared by the server and
// the syncctl CLI.
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

type Backend string

const (
	BackendPostgres Backend = "postgres"
	BackendRedis    Backend = "redis"
	BackendSQLite   Backend = "sqlite"
	BackendMemory   Backend = "memory"
)

type Store struct {
	Backend Backend `env:"STORE_BACKEND" envDefault:"postgres"`
	// Timeout bounds every commit; exceeding it is a transient failure.
	Timeout  time.Duration `env:"STORE_TIMEOUT" envDefault:"10s"`
	Database Database      `envPrefix:"DATABASE_"`
	Redis    Redis         `envPrefix:"REDIS_"`
	SQLite   SQLite        `envPrefix:"SQLITE_"`
}

type Database struct {
	URL string `env:"URL"`
}

type Redis struct {
	URL string `env:"URL"`
}

type SQLite struct {
	Path string `env:"PATH" envDefault:"shopsync.db"`
}

func (s Store) Validate() map[string]string {
	errs := make(map[string]string)

	switch s.Backend {
	case BackendPostgres:
		if s.Database.URL == "" {
			errs["DATABASE_URL"] = "required when STORE_BACKEND=postgres"
		}
	case BackendRedis:
		if s.Redis.URL == "" {
			errs["REDIS_URL"] = "required when STORE_BACKEND=redis"
		}
	case BackendSQLite:
		if s.SQLite.Path == "" {
			errs["SQLITE_PATH"] = "required when STORE_BACKEND=sqlite"
		}
	case BackendMemory:
	default:
		errs["STORE_BACKEND"] = fmt.Sprintf("unknown backend %q (valid: postgres, redis, sqlite, memory)", s.Backend)
	}

	if s.Timeout <= 0 {
		errs["STORE_TIMEOUT"] = "must be positive"
	}

	if len(errs) == 0 {
		return nil
	}
	return errs
}

func ReadStore() (Store, error) {
	return env.ParseAs[Store]()
}
