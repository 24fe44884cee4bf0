package server

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"

	"github.com/garrettladley/shopsync/internal/config"
	appenv "github.com/garrettladley/shopsync/internal/env"
	"github.com/garrettladley/shopsync/internal/telemetry"
	"github.com/garrettladley/shopsync/internal/validator"
	"github.com/garrettladley/shopsync/internal/xhttp"
)

type Config struct {
	Port         string             `env:"PORT" envDefault:"8080"`
	Env          appenv.Environment `env:"ENV" envDefault:"development"`
	Shopify      Shopify            `envPrefix:"SHOPIFY_"`
	MaxBodyBytes int64              `env:"MAX_BODY_BYTES" envDefault:"1048576"`
	RateLimit    RateLimit          `envPrefix:"RATE_"`
	Telemetry    telemetry.Config   `envPrefix:"OTEL_"`
	Store        config.Store
}

type Shopify struct {
	WebhookSecret string `env:"WEBHOOK_SECRET,required"`
}

// RateLimit allows Limit webhook requests per client IP every Window.
// X-Forwarded-For is honored only from TrustedProxies.
type RateLimit struct {
	Limit          int           `env:"LIMIT" envDefault:"20"`
	Window         time.Duration `env:"WINDOW" envDefault:"1s"`
	TrustedProxies []string      `env:"TRUSTED_PROXIES" envSeparator:","`
}

func (r RateLimit) Proxies() (xhttp.TrustedProxies, error) {
	return xhttp.ParseTrustedProxies(r.TrustedProxies)
}

var _ validator.Validator = Config{}

func (c Config) Validate() map[string]string {
	errs := c.Store.Validate()
	if errs == nil {
		errs = make(map[string]string)
	}

	if !c.Env.Valid() {
		errs["ENV"] = fmt.Sprintf("unknown environment %q (valid: development, production)", c.Env)
	}
	if c.Port == "" {
		errs["PORT"] = "required"
	}
	if c.Shopify.WebhookSecret == "" {
		errs["SHOPIFY_WEBHOOK_SECRET"] = "required"
	}
	if c.MaxBodyBytes <= 0 {
		errs["MAX_BODY_BYTES"] = "must be positive"
	}
	if c.RateLimit.Limit <= 0 {
		errs["RATE_LIMIT"] = "must be positive"
	}
	if c.RateLimit.Window <= 0 {
		errs["RATE_WINDOW"] = "must be positive"
	}
	if _, err := c.RateLimit.Proxies(); err != nil {
		errs["RATE_TRUSTED_PROXIES"] = err.Error()
	}
	if c.Env.IsProduction() && c.Store.Backend == config.BackendMemory {
		errs["STORE_BACKEND"] = "memory backend is not durable and cannot run in production"
	}

	if len(errs) == 0 {
		return nil
	}
	return errs
}

func ReadConfig() (Config, error) {
	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return Config{}, err
	}
	if err := validator.Validate(cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
