// Package config provides application configuration management.
// Configuration is loaded from environment variables following 12-factor principles.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v10"
)

// Config holds all application configuration.
// All fields are populated from environment variables.
type Config struct {
	// Application settings
	AppEnv  string `env:"APP_ENV" envDefault:"development"`
	AppPort int    `env:"APP_PORT" envDefault:"8080"`

	// Database (PostgreSQL)
	DatabaseURL string `env:"DATABASE_URL,required"`

	// Cache (Redis)
	RedisURL string `env:"REDIS_URL,required"`

	// API credentials for mutating requests. AuthToken is the expected
	// bearer token in plaintext; AuthTokenHash is an Argon2id PHC string
	// verified instead when set, so the plaintext never reaches the
	// environment. Exactly one of the two must be configured.
	AuthToken     string `env:"AUTH_TOKEN"`
	AuthTokenHash string `env:"AUTH_TOKEN_HASH"`
	ProjectID     string `env:"PROJECT_ID,required"`

	// Base URL of the marketing site hosting the landing pages
	// (e.g., https://example.com/go)
	LandingBaseURL string `env:"LANDING_BASE_URL" envDefault:"http://localhost:3000/go"`

	// Logging
	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"json"`

	// Server timeouts
	ReadTimeout     time.Duration `env:"READ_TIMEOUT" envDefault:"5s"`
	WriteTimeout    time.Duration `env:"WRITE_TIMEOUT" envDefault:"10s"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"30s"`

	// Rate limiting for the public surfaces (redirect + click ingestion)
	RateLimitEnabled bool `env:"RATE_LIMIT_ENABLED" envDefault:"true"`
	RateLimitRPS     int  `env:"RATE_LIMIT_RPS" envDefault:"50"`
	RateLimitBurst   int  `env:"RATE_LIMIT_BURST" envDefault:"20"`

	// Metrics exposition
	MetricsEnabled bool `env:"METRICS_ENABLED" envDefault:"true"`

	// Request body size limit in bytes (default 1MB)
	MaxRequestBodySize int64 `env:"MAX_REQUEST_BODY_SIZE" envDefault:"1048576"`
}

// IsDevelopment returns true if running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.AppEnv == "development"
}

// IsProduction returns true if running in production mode.
func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

// Validate checks invariants that env tags cannot express.
func (c *Config) Validate() error {
	if c.AuthToken == "" && c.AuthTokenHash == "" {
		return errors.New("one of AUTH_TOKEN or AUTH_TOKEN_HASH must be set")
	}
	if c.AuthToken != "" && c.AuthTokenHash != "" {
		return errors.New("AUTH_TOKEN and AUTH_TOKEN_HASH are mutually exclusive")
	}
	if c.AuthTokenHash != "" && !strings.HasPrefix(c.AuthTokenHash, "$argon2id$") {
		return errors.New("AUTH_TOKEN_HASH must be an argon2id PHC string")
	}
	return nil
}

// Load parses environment variables and returns a Config.
// Returns an error if required variables are missing.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}
