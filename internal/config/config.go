// Package config provides application configuration management.
// Configuration is loaded from environment variables following 12-factor principles,
// optionally pre-populated from a .env file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
)

// DefaultJWTSecret is the development signing key. Production refuses it.
const DefaultJWTSecret = "dev-jwt-secret-change-in-production"

// Config holds all application configuration.
// All fields are populated from environment variables.
type Config struct {
	// Application settings
	AppEnv  string `env:"APP_ENV" envDefault:"development"`
	AppPort int    `env:"APP_PORT" envDefault:"8080"`

	// Database: postgres://, postgresql:// or sqlite://<path>
	DatabaseURL string `env:"DATABASE_URL" envDefault:"sqlite://apilab.db"`

	// Live request log stream (Redis). Empty disables it.
	RedisURL        string `env:"REDIS_URL"`
	LogStreamMaxLen int64  `env:"LOG_STREAM_MAX_LEN" envDefault:"1000"`

	// Bearer token signing key
	JWTSecretKey string `env:"JWT_SECRET_KEY" envDefault:"dev-jwt-secret-change-in-production"`

	// Logging
	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"json"`

	// Server timeouts. WriteTimeout must exceed ChaosMaxLatency.
	ReadTimeout     time.Duration `env:"READ_TIMEOUT" envDefault:"5s"`
	WriteTimeout    time.Duration `env:"WRITE_TIMEOUT" envDefault:"30s"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"30s"`

	// Comma-separated list of allowed origins; "*" allows all.
	CORSAllowedOrigins string `env:"CORS_ALLOWED_ORIGINS" envDefault:"*"`

	// Request body size limit in bytes (default 1MB)
	MaxRequestBodySize int64 `env:"MAX_REQUEST_BODY_SIZE" envDefault:"1048576"`

	// Error playground
	ChaosMaxLatency time.Duration `env:"CHAOS_MAX_LATENCY" envDefault:"10s"`

	// Admin endpoints
	AdminRoleRequired bool `env:"ADMIN_ROLE_REQUIRED" envDefault:"true"`

	// Seed default data into an empty database on startup
	AutoSeed bool `env:"AUTO_SEED" envDefault:"true"`

	// Directory holding the dashboard (index.html and assets)
	StaticDir string `env:"STATIC_DIR" envDefault:"static"`
}

// IsDevelopment returns true if running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.AppEnv == "development"
}

// IsProduction returns true if running in production mode.
func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

// GetCORSAllowedOrigins parses the comma-separated origins string into a slice.
func (c *Config) GetCORSAllowedOrigins() []string {
	if c.CORSAllowedOrigins == "" {
		return nil
	}

	origins := strings.Split(c.CORSAllowedOrigins, ",")
	result := make([]string, 0, len(origins))

	for _, origin := range origins {
		trimmed := strings.TrimSpace(origin)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}

	return result
}

// Validate checks settings that env tags cannot express.
func (c *Config) Validate() error {
	if c.JWTSecretKey == "" {
		return errors.New("JWT_SECRET_KEY must not be empty")
	}
	if c.IsProduction() && c.JWTSecretKey == DefaultJWTSecret {
		return errors.New("JWT_SECRET_KEY must be changed in production")
	}
	if c.ChaosMaxLatency < 0 {
		return errors.New("CHAOS_MAX_LATENCY must not be negative")
	}
	return nil
}

// Load parses environment variables and returns a validated Config.
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

// LoadDotenv copies variables from the given .env files (default ".env")
// into the process environment without overriding existing values.
// Missing files are ignored.
func LoadDotenv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, file := range files {
		if err := godotenv.Load(file); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("load %s: %w", file, err)
		}
	}
	return nil
}
