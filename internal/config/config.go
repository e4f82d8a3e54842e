// Package config defines service configuration and its loader.
package config

import (
	"context"
	"fmt"
	"runtime"
	"slices"
	"strings"
)

// Store and cache drivers.
const (
	DriverMemory   = "memory"
	DriverPostgres = "postgres"
	DriverRedis    = "redis"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`
	// LogFormat is text or json.
	LogFormat string `koanf:"log_format"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// StoreDriver selects the league store: memory or postgres.
	StoreDriver string `koanf:"store_driver"`
	DatabaseURL string `koanf:"database_url"`

	// CacheDriver selects the report cache: memory or redis.
	CacheDriver     string `koanf:"cache_driver"`
	RedisURL        string `koanf:"redis_url"`
	CacheTTLSeconds int    `koanf:"cache_ttl_seconds"`

	// WorkerCount sets the number of progression workers.
	WorkerCount int `koanf:"worker_count"`
	// QueueSize bounds the in-memory progression queue.
	QueueSize int `koanf:"queue_size"`
	// DedupeTTLHours is how long a processed progression key is remembered.
	DedupeTTLHours int `koanf:"dedupe_ttl_hours"`

	// CORSOrigins lists allowed browser origins, comma separated in env.
	CORSOrigins []string `koanf:"cors_origins"`

	// SeasonGames is the default games_played for stadium revenue.
	SeasonGames int `koanf:"season_games"`

	// RefreshIntervalSeconds drives the report refresh job; 0 disables it.
	RefreshIntervalSeconds int `koanf:"refresh_interval_seconds"`
}

// New returns a Config with defaults suitable for local development.
func New() *Config {
	return &Config{
		LogLevel:               "info",
		LogFormat:              "text",
		Addr:                   ":9080",
		StoreDriver:            DriverMemory,
		CacheDriver:            DriverMemory,
		CacheTTLSeconds:        300,
		WorkerCount:            runtime.NumCPU() * 2,
		QueueSize:              10_000,
		DedupeTTLHours:         24 * 7,
		CORSOrigins:            []string{"*"},
		SeasonGames:            38,
		RefreshIntervalSeconds: 600,
	}
}

// Validate checks the configuration for values the service cannot run with.
func (c *Config) Validate(_ context.Context) error {
	switch {
	case strings.TrimSpace(c.Addr) == "":
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	case !slices.Contains([]string{DriverMemory, DriverPostgres}, c.StoreDriver):
		return fmt.Errorf("%w: unknown store_driver %q", ErrInvalidConfig, c.StoreDriver)
	case c.StoreDriver == DriverPostgres && c.DatabaseURL == "":
		return fmt.Errorf("%w: database_url is required for postgres", ErrInvalidConfig)
	case !slices.Contains([]string{DriverMemory, DriverRedis}, c.CacheDriver):
		return fmt.Errorf("%w: unknown cache_driver %q", ErrInvalidConfig, c.CacheDriver)
	case c.CacheDriver == DriverRedis && c.RedisURL == "":
		return fmt.Errorf("%w: redis_url is required for redis", ErrInvalidConfig)
	case c.WorkerCount <= 0:
		return fmt.Errorf("%w: worker_count must be positive", ErrInvalidConfig)
	case c.QueueSize <= 0:
		return fmt.Errorf("%w: queue_size must be positive", ErrInvalidConfig)
	case c.SeasonGames <= 0:
		return fmt.Errorf("%w: season_games must be positive", ErrInvalidConfig)
	case c.CacheTTLSeconds < 0 || c.RefreshIntervalSeconds < 0 || c.DedupeTTLHours < 0:
		return fmt.Errorf("%w: durations must not be negative", ErrInvalidConfig)
	}
	return nil
}
