package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

var (
	errInvalidPort          = errors.New("config: invalid PORT number")
	errInvalidFetchTimeout  = errors.New("config: FETCH_TIMEOUT must be positive")
	errInvalidMaxPageBytes  = errors.New("config: MAX_PAGE_BYTES must be positive")
	errInvalidShutdownGrace = errors.New("config: SHUTDOWN_TIMEOUT must be positive")
)

// Config holds all application configuration loaded from environment variables.
type Config struct {
	Port     string `envconfig:"PORT" default:"8080"`
	LogLevel string `envconfig:"LOG_LEVEL" default:"ERROR"`

	// FetchTimeout bounds the whole outbound fetch, redirects included.
	FetchTimeout time.Duration `envconfig:"FETCH_TIMEOUT" default:"30s"`
	MaxPageBytes int64         `envconfig:"MAX_PAGE_BYTES" default:"33554432"`

	// AllowPrivateTargets disables the dial-time block on private and
	// reserved addresses. Meant for local development only.
	AllowPrivateTargets bool `envconfig:"ALLOW_PRIVATE_TARGETS" default:"false"`

	CORSAllowedOrigin string        `envconfig:"CORS_ALLOWED_ORIGIN" default:"*"`
	ShutdownTimeout   time.Duration `envconfig:"SHUTDOWN_TIMEOUT" default:"10s"`
}

// Load reads an optional .env file, then configuration from environment
// variables with sensible defaults.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil {
		// A missing .env is the normal case outside local development.
		if _, statErr := os.Stat(".env"); statErr == nil {
			return Config{}, fmt.Errorf("config: load .env: %w", err)
		}
	}

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return Config{}, fmt.Errorf("config: %w", err)
	}

	return cfg, cfg.validate()
}

// Addr returns the listen address for the HTTP server.
func (c Config) Addr() string {
	return ":" + c.Port
}

func (c Config) validate() error {
	port, err := strconv.Atoi(c.Port)
	if err != nil || port < 1 || port > 65535 {
		return fmt.Errorf("%w: %q", errInvalidPort, c.Port)
	}

	if c.FetchTimeout <= 0 {
		return fmt.Errorf("%w: got %s", errInvalidFetchTimeout, c.FetchTimeout)
	}

	if c.MaxPageBytes <= 0 {
		return fmt.Errorf("%w: got %d", errInvalidMaxPageBytes, c.MaxPageBytes)
	}

	if c.ShutdownTimeout <= 0 {
		return fmt.Errorf("%w: got %s", errInvalidShutdownGrace, c.ShutdownTimeout)
	}

	return nil
}
