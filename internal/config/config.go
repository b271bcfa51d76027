// Package config loads server settings from the environment.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"
)

// ErrInvalidConfig wraps every validation failure.
var ErrInvalidConfig = errors.New("invalid config")

// Session store backends.
const (
	SessionStoreSQLite = "sqlite"
	SessionStoreRedis  = "redis"
	SessionStoreMemory = "memory"
)

// Config holds everything main needs to wire the server.
type Config struct {
	Port         string `env:"PORT"          envDefault:"3000"`
	DatabasePath string `env:"DATABASE_PATH" envDefault:"otp-lab.db"`

	SessionSecret        string        `env:"SESSION_SECRET"`
	SessionStore         string        `env:"SESSION_STORE"          envDefault:"sqlite"`
	SessionIdleTimeout   time.Duration `env:"SESSION_IDLE_TIMEOUT"   envDefault:"24h"`
	SessionSweepInterval time.Duration `env:"SESSION_SWEEP_INTERVAL" envDefault:"1m"`
	CookieSecure         bool          `env:"COOKIE_SECURE"          envDefault:"false"`

	RedisAddr     string `env:"REDIS_ADDR"`
	RedisPassword string `env:"REDIS_PASSWORD"`
	RedisDB       int    `env:"REDIS_DB" envDefault:"0"`

	BcryptCost       int           `env:"BCRYPT_COST"        envDefault:"10"`
	OTPSweepInterval time.Duration `env:"OTP_SWEEP_INTERVAL" envDefault:"5s"`

	CORSAllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" envDefault:"*" envSeparator:","`
	LogLevel           string   `env:"LOG_LEVEL"            envDefault:"info"`
}

// Load reads an optional .env file, then parses and validates the environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		slog.Debug("no .env file loaded", "error", err)
	}
	return Parse()
}

// Parse reads the process environment without touching .env.
func Parse() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the parsed values.
func (c *Config) Validate() error {
	if c.SessionSecret == "" {
		return fmt.Errorf("%w: SESSION_SECRET is required", ErrInvalidConfig)
	}
	if c.BcryptCost < bcrypt.MinCost || c.BcryptCost > bcrypt.MaxCost {
		return fmt.Errorf("%w: BCRYPT_COST must be between %d and %d, got %d",
			ErrInvalidConfig, bcrypt.MinCost, bcrypt.MaxCost, c.BcryptCost)
	}
	if c.OTPSweepInterval <= 0 {
		return fmt.Errorf("%w: OTP_SWEEP_INTERVAL must be positive", ErrInvalidConfig)
	}
	if c.SessionSweepInterval <= 0 {
		return fmt.Errorf("%w: SESSION_SWEEP_INTERVAL must be positive", ErrInvalidConfig)
	}
	if c.SessionIdleTimeout <= 0 {
		return fmt.Errorf("%w: SESSION_IDLE_TIMEOUT must be positive", ErrInvalidConfig)
	}
	switch c.SessionStore {
	case SessionStoreSQLite, SessionStoreMemory:
	case SessionStoreRedis:
		if c.RedisAddr == "" {
			return fmt.Errorf("%w: SESSION_STORE=redis requires REDIS_ADDR", ErrInvalidConfig)
		}
	default:
		return fmt.Errorf("%w: unknown SESSION_STORE %q", ErrInvalidConfig, c.SessionStore)
	}
	if _, err := c.SlogLevel(); err != nil {
		return err
	}
	return nil
}

// SlogLevel converts LogLevel to a slog.Level.
func (c *Config) SlogLevel() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.ToUpper(c.LogLevel))); err != nil {
		return 0, fmt.Errorf("%w: LOG_LEVEL: %v", ErrInvalidConfig, err)
	}
	return level, nil
}

// UseRedis reports whether OTPs are kept in Redis.
func (c *Config) UseRedis() bool {
	return c.RedisAddr != ""
}
