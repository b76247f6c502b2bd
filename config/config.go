package config

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/go-playground/validator/v10"
)

type Config struct {
	Env      string `env:"ENV" envDefault:"local" validate:"required,oneof=local staging production"`
	Port     string `env:"PORT" envDefault:"3000" validate:"required"`
	LogLevel string `env:"LOG_LEVEL" envDefault:"info" validate:"oneof=debug info warn error"`

	MetricsPort string `env:"METRICS_PORT" envDefault:"9090"`

	APIHost       string `env:"API_HOST,required" validate:"required,url"`
	APITimeoutSec int    `env:"API_TIMEOUT_SEC" envDefault:"10" validate:"min=1,max=120"`

	// Expiry durations in seconds, mirrored onto the session and its cookie.
	AccessTokenExpiry  int `env:"ACCESS_TOKEN_EXPIRY" envDefault:"3600"   validate:"min=1"`
	RefreshTokenExpiry int `env:"REFRESH_TOKEN_EXPIRY" envDefault:"604800" validate:"min=1,gtefield=AccessTokenExpiry"`
	CookieSecure       bool `env:"COOKIE_SECURE" envDefault:"false"`

	SessionStore     string `env:"SESSION_STORE" envDefault:"memory" validate:"oneof=memory postgres"`
	DatabaseURL      string `env:"DATABASE_URL"                      validate:"required_if=SessionStore postgres"`
	SessionPurgeCron string `env:"SESSION_PURGE_CRON" envDefault:"@every 10m" validate:"required"`

	ResendAPIKey string `env:"RESEND_API_KEY" validate:"required_if=Env production,required_if=Env staging"`
	ResendFrom   string `env:"RESEND_FROM"    validate:"required_if=Env production,required_if=Env staging"`
}

func Load() (*Config, error) {
	cfg := &Config{}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

func (c *Config) SlogLevel() slog.Level {
	return parseLevel(c.LogLevel)
}

func (c *Config) APITimeout() time.Duration {
	return time.Duration(c.APITimeoutSec) * time.Second
}

func (c *Config) AccessTTL() time.Duration {
	return time.Duration(c.AccessTokenExpiry) * time.Second
}

func (c *Config) RefreshTTL() time.Duration {
	return time.Duration(c.RefreshTokenExpiry) * time.Second
}

// MockAPIConfig configures cmd/mockapi, the in-memory backend used for local
// development and end-to-end tests of the console.
type MockAPIConfig struct {
	Env      string `env:"ENV" envDefault:"local" validate:"required,oneof=local staging production"`
	Port     string `env:"MOCKAPI_PORT" envDefault:"8000" validate:"required"`
	LogLevel string `env:"LOG_LEVEL" envDefault:"info" validate:"oneof=debug info warn error"`

	JWTSecret           string `env:"JWT_SECRET,required" validate:"required,min=32"`
	AccessTokenExpiry   int    `env:"ACCESS_TOKEN_EXPIRY" envDefault:"3600"   validate:"min=1"`
	RefreshTokenExpiry  int    `env:"REFRESH_TOKEN_EXPIRY" envDefault:"604800" validate:"min=1"`
	RotateRefreshTokens bool   `env:"ROTATE_REFRESH_TOKENS" envDefault:"true"`

	OverdueSweepCron string `env:"OVERDUE_SWEEP_CRON" envDefault:"@every 1m" validate:"required"`
	MediaBaseURL     string `env:"MEDIA_BASE_URL" envDefault:"http://localhost:8000" validate:"url"`
}

func LoadMockAPI() (*MockAPIConfig, error) {
	cfg := &MockAPIConfig{}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

func (c *MockAPIConfig) SlogLevel() slog.Level {
	return parseLevel(c.LogLevel)
}

func (c *MockAPIConfig) AccessTTL() time.Duration {
	return time.Duration(c.AccessTokenExpiry) * time.Second
}

func (c *MockAPIConfig) RefreshTTL() time.Duration {
	return time.Duration(c.RefreshTokenExpiry) * time.Second
}

func parseLevel(s string) slog.Level {
	switch s {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
