package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/garrettladley/shopsync/internal/config"
	xredis "github.com/garrettladley/shopsync/internal/redis"
	"github.com/garrettladley/shopsync/internal/storage"
	"github.com/garrettladley/shopsync/internal/validator"
)

// openStore opens the backend named by the environment. The returned close
// func releases the store and any client it was built on.
func openStore(ctx context.Context) (storage.DocumentStore, config.Store, func() error, error) {
	cfg, err := config.ReadStore()
	if err != nil {
		return nil, config.Store{}, nil, fmt.Errorf("failed to read config: %w", err)
	}
	if err := validator.Validate(cfg); err != nil {
		return nil, cfg, nil, err
	}

	var redisClient *redis.Client
	if cfg.Backend == config.BackendRedis {
		redisClient, err = xredis.New(ctx, xredis.Config{URL: cfg.Redis.URL, PingTimeout: cfg.Timeout})
		if err != nil {
			return nil, cfg, nil, err
		}
	}

	store, err := storage.Open(ctx, cfg, redisClient)
	if err != nil {
		if redisClient != nil {
			_ = redisClient.Close()
		}
		return nil, cfg, nil, err
	}

	closeFn := func() error {
		err := store.Close()
		if redisClient != nil {
			err = errors.Join(err, redisClient.Close())
		}
		return err
	}
	return store, cfg, closeFn, nil
}
