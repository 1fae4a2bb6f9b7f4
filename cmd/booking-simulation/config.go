package main

import (
	"errors"
	"flag"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
)

const (
	DefaultRequests        = 10
	DefaultWorkers         = 5
	DefaultShutdownTimeout = 60 * time.Second
	DefaultMaxAttempts     = 3
	DefaultRetryDelay      = 100 * time.Millisecond
	DefaultSeedTable       = "rooms"
	DefaultDBAdapter       = "pgx"

	envSeedFile    = "ROOM_SEED_FILE"
	envPostgresDSN = "POSTGRES_DSN"
	envDBAdapter   = "DB_ADAPTER"
)

// ErrInvalidConfig is returned when flags or environment variables do not form a valid Config.
var ErrInvalidConfig = errors.New("invalid configuration")

// Config holds command-line configuration for the booking simulation.
type Config struct {
	SeedFile        string        `validate:"omitempty,excluded_with=PostgresDSN,endswith=.json|endswith=.yaml|endswith=.yml"`
	PostgresDSN     string
	DBAdapter       string        `validate:"oneof=pgx sql sqlx"`
	SeedTable       string        `validate:"required"`
	Observability   string        `validate:"oneof=none otel prometheus"`
	LogBackend      string        `validate:"oneof=slog zerolog"`
	MetricsAddr     string        `validate:"omitempty,hostname_port"`
	Requests        int           `validate:"gte=1"`
	Workers         int           `validate:"gte=1"`
	ShutdownTimeout time.Duration `validate:"gt=0"`
	MaxAttempts     int           `validate:"gte=1"`
	RetryDelay      time.Duration `validate:"gte=0"`
	FailFast        bool
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// parseConfig parses args with flag defaults taken from getenv where an environment variable exists.
func parseConfig(args []string, getenv func(string) string) (Config, error) {
	var cfg Config

	fs := flag.NewFlagSet("booking-simulation", flag.ContinueOnError)
	fs.StringVar(&cfg.SeedFile, "seed-file", getenv(envSeedFile), "JSON or YAML room seed file (env "+envSeedFile+")")
	fs.StringVar(&cfg.PostgresDSN, "postgres-dsn", getenv(envPostgresDSN), "load the room seed from this database (env "+envPostgresDSN+")")
	fs.StringVar(&cfg.DBAdapter, "db-adapter", envOrDefault(getenv, envDBAdapter, DefaultDBAdapter), "database adapter: pgx, sql or sqlx (env "+envDBAdapter+")")
	fs.StringVar(&cfg.SeedTable, "seed-table", DefaultSeedTable, "table holding the room seed")
	fs.StringVar(&cfg.Observability, "observability", "none", "metrics and tracing backend: none, otel or prometheus")
	fs.StringVar(&cfg.LogBackend, "log-backend", "slog", "log backend: slog or zerolog")
	fs.StringVar(&cfg.MetricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address")
	fs.IntVar(&cfg.Requests, "requests", DefaultRequests, "number of booking requests")
	fs.IntVar(&cfg.Workers, "workers", DefaultWorkers, "number of concurrent workers")
	fs.DurationVar(&cfg.ShutdownTimeout, "shutdown-timeout", DefaultShutdownTimeout, "time the workers get to finish the batch")
	fs.IntVar(&cfg.MaxAttempts, "max-attempts", DefaultMaxAttempts, "booking attempts per request")
	fs.DurationVar(&cfg.RetryDelay, "retry-delay", DefaultRetryDelay, "delay between booking attempts")
	fs.BoolVar(&cfg.FailFast, "fail-fast", false, "do not retry when a room has no units left")

	if err := fs.Parse(args); err != nil {
		return Config{}, errors.Join(ErrInvalidConfig, err)
	}

	if err := validate.Struct(cfg); err != nil {
		return Config{}, errors.Join(ErrInvalidConfig, err)
	}

	return cfg, nil
}

func envOrDefault(getenv func(string) string, key, fallback string) string {
	if value := getenv(key); value != "" {
		return value
	}

	return fallback
}

func (c Config) seedSource() string {
	switch {
	case c.SeedFile != "":
		return "file"
	case c.PostgresDSN != "":
		return "postgres/" + c.DBAdapter
	default:
		return "default"
	}
}

func (c Config) logAttrs() []any {
	return []any{
		"seed_source", c.seedSource(),
		"observability", c.Observability,
		"log_backend", c.LogBackend,
		"requests", strconv.Itoa(c.Requests),
		"workers", strconv.Itoa(c.Workers),
		"max_attempts", strconv.Itoa(c.MaxAttempts),
		"retry_delay", c.RetryDelay.String(),
		"fail_fast", strconv.FormatBool(c.FailFast),
	}
}
