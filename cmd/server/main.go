package main

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	xredis "github.com/garrettladley/shopsync/internal/redis"
	"github.com/garrettladley/shopsync/internal/server"
	"github.com/garrettladley/shopsync/internal/server/handler"
	"github.com/garrettladley/shopsync/internal/service/webhook"
	"github.com/garrettladley/shopsync/internal/signature"
	"github.com/garrettladley/shopsync/internal/storage"
	"github.com/garrettladley/shopsync/internal/telemetry"
	"github.com/garrettladley/shopsync/internal/version"
	"github.com/garrettladley/shopsync/internal/xslog"
	"github.com/garrettladley/shopsync/internal/xsync"
)

const (
	keyPort        = "port"
	keyGracePeriod = "grace_period"

	shutdownGracePeriod = 30 * time.Second
)

func main() {
	_ = godotenv.Load()

	logger := xslog.NewLoggerFromEnv(os.Stdout)
	slog.SetDefault(logger)

	ctx := context.Background()
	if err := run(ctx, logger); err != nil {
		logger.ErrorContext(ctx, "fatal error", xslog.Error(err))
		os.Exit(1)
	}
}

func run(ctx context.Context, logger *slog.Logger) error {
	cfg, err := server.ReadConfig()
	if err != nil {
		return fmt.Errorf("failed to read config: %w", err)
	}

	if cfg.Env.IsProduction() && version.IsDevelopment(version.Get()) {
		logger.WarnContext(ctx, "running an untagged build in production")
	}

	shutdownTelemetry, err := telemetry.Setup(ctx, cfg.Telemetry, version.Get())
	if err != nil {
		return fmt.Errorf("failed to initialize telemetry: %w", err)
	}
	defer func() {
		if err := shutdownTelemetry(context.WithoutCancel(ctx)); err != nil {
			logger.ErrorContext(ctx, "failed to shut down telemetry", xslog.Error(err))
		}
	}()

	instruments, err := telemetry.Global()
	if err != nil {
		return fmt.Errorf("failed to create instruments: %w", err)
	}

	redisClient, err := initRedis(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize redis client: %w", err)
	}
	if redisClient != nil {
		defer func() {
			if err := redisClient.Close(); err != nil {
				logger.ErrorContext(ctx, "failed to close redis client", xslog.Error(err))
			}
		}()
	}

	logger.InfoContext(ctx, "initializing document store", xslog.Backend(string(cfg.Store.Backend)))
	store, err := storage.Open(ctx, cfg.Store, redisClient)
	if err != nil {
		return fmt.Errorf("failed to initialize document store: %w", err)
	}
	defer func() {
		if err := store.Close(); err != nil {
			logger.ErrorContext(ctx, "failed to close document store", xslog.Error(err))
		}
	}()

	limiter, closeLimiter := initRateLimiter(ctx, cfg, redisClient, logger)
	defer closeLimiter()

	checks := map[string]handler.Check{"store": store.Ping}
	if redisClient != nil {
		checks["redis"] = func(ctx context.Context) error { return redisClient.Ping(ctx).Err() }
	}

	proxies, err := cfg.RateLimit.Proxies()
	if err != nil {
		return fmt.Errorf("failed to parse trusted proxies: %w", err)
	}

	executor := xsync.NewExecutor(store, cfg.Store.Timeout, instruments)
	processor := webhook.NewProcessor(signature.NewVerifier(cfg.Shopify.WebhookSecret), executor, instruments)

	httpServer := &http.Server{
		Handler: server.NewHandler(server.Deps{
			Logger:         logger,
			Webhook:        processor,
			RateLimiter:    limiter,
			HealthChecks:   checks,
			MaxBodyBytes:   cfg.MaxBodyBytes,
			TrustedProxies: proxies,
		}),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      cfg.Store.Timeout + 10*time.Second,
		IdleTimeout:       60 * time.Second,
	}

	ln, err := net.Listen("tcp", ":"+cfg.Port)
	if err != nil {
		return fmt.Errorf("failed to listen: %w", err)
	}

	sigCtx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.InfoContext(ctx, "starting server", slog.String(keyPort, cfg.Port))

	if err := server.Serve(sigCtx, httpServer, ln, shutdownGracePeriod); err != nil {
		return err
	}

	logger.InfoContext(ctx, "server stopped", slog.Duration(keyGracePeriod, shutdownGracePeriod))
	return nil
}

// initRedis connects when either the store or the shared rate limiter needs
// Redis. It returns nil when REDIS_URL is unset and the store is not Redis.
func initRedis(ctx context.Context, cfg server.Config, logger *slog.Logger) (*redis.Client, error) {
	if cfg.Store.Redis.URL == "" {
		return nil, nil
	}
	logger.InfoContext(ctx, "initializing Redis")
	return xredis.New(ctx, xredis.Config{URL: cfg.Store.Redis.URL})
}

func initRateLimiter(ctx context.Context, cfg server.Config, redisClient *redis.Client, logger *slog.Logger) (storage.RateLimiter, func()) {
	if redisClient != nil {
		logger.InfoContext(ctx, "initializing Redis rate limiter")
		return storage.NewRedisRateLimiter(redisClient, cfg.RateLimit.Limit, cfg.RateLimit.Window), func() {}
	}

	logger.InfoContext(ctx, "initializing in-memory rate limiter")
	limiter := storage.NewMemoryRateLimiter(cfg.RateLimit.Limit, cfg.RateLimit.Window)
	return limiter, func() { _ = limiter.Close() }
}
