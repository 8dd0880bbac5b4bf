package main

import (
	"fmt"
	"time"

	"github.com/Sternrassler/alert-feed/pkg/logging"
	"github.com/caarlos0/env/v11"
)

// config is loaded from environment variables.
type config struct {
	Port      string `env:"PORT"             envDefault:"8080"`
	RedisURL  string `env:"REDIS_URL"        envDefault:"localhost:6379"`
	Endpoint  string `env:"GRAPHQL_ENDPOINT,notEmpty"`
	APIKey    string `env:"API_KEY"`
	UserAgent string `env:"USER_AGENT"       envDefault:"alert-feed/0.1.0"`

	PageSize     int           `env:"PAGE_SIZE"     envDefault:"25"`
	MaxPages     int           `env:"MAX_PAGES"     envDefault:"20"`
	FetchTimeout time.Duration `env:"FETCH_TIMEOUT" envDefault:"15s"`
	CacheTTL     time.Duration `env:"CACHE_TTL"     envDefault:"30s"`

	LogLevel  logging.LogLevel `env:"LOG_LEVEL"  envDefault:"info"`
	LogPretty bool             `env:"LOG_PRETTY"`
}

func loadConfig() (config, error) {
	var cfg config
	if err := env.Parse(&cfg); err != nil {
		return config{}, fmt.Errorf("parse env: %w", err)
	}

	if cfg.PageSize <= 0 || cfg.PageSize > maxPageSize {
		return config{}, fmt.Errorf("PAGE_SIZE must be between 1 and %d (got %d)", maxPageSize, cfg.PageSize)
	}
	if cfg.MaxPages <= 0 {
		return config{}, fmt.Errorf("MAX_PAGES must be positive (got %d)", cfg.MaxPages)
	}

	return cfg, nil
}
