package config

import (
	"fmt"
	"os"
	"strconv"
	"sync/atomic"
	"time"
)

// Config holds all application configuration
type Config struct {
	// Server configuration
	Server ServerConfig

	// PostgreSQL connection for the key and webhook endpoint stores
	PostgresURL string

	// Redis connection for the usage counter store
	RedisURL string

	// Webhook delivery timeout
	WebhookTimeout time.Duration

	// Logging
	LogLevel string

	// Site state, read at request time by the read-only guard
	State *SiteState
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host            string
	Port            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration
}

// SiteState carries the globally mutable read-only flag. It is injected into
// the gate rather than read from a process-wide singleton so that tests and
// admin tooling can flip it per instance.
type SiteState struct {
	readOnly atomic.Bool
}

// NewSiteState creates site state with the given initial read-only flag
func NewSiteState(readOnly bool) *SiteState {
	s := &SiteState{}
	s.readOnly.Store(readOnly)
	return s
}

// ReadOnly reports whether the site is in read-only mode
func (s *SiteState) ReadOnly() bool {
	return s.readOnly.Load()
}

// SetReadOnly sets the read-only flag
func (s *SiteState) SetReadOnly(v bool) {
	s.readOnly.Store(v)
}

// LoadConfig loads configuration from environment variables
func LoadConfig() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Host:            getEnv("PKGINDEX_HOST", "0.0.0.0"),
			Port:            getEnv("PKGINDEX_PORT", "8080"),
			ReadTimeout:     getEnvDuration("PKGINDEX_READ_TIMEOUT", 15*time.Second),
			WriteTimeout:    getEnvDuration("PKGINDEX_WRITE_TIMEOUT", 15*time.Second),
			IdleTimeout:     getEnvDuration("PKGINDEX_IDLE_TIMEOUT", 60*time.Second),
			ShutdownTimeout: getEnvDuration("PKGINDEX_SHUTDOWN_TIMEOUT", 30*time.Second),
		},
		PostgresURL:    getEnv("PKGINDEX_POSTGRES_URL", ""),
		RedisURL:       getEnv("PKGINDEX_REDIS_URL", "redis://localhost:6379/0"),
		WebhookTimeout: getEnvDuration("PKGINDEX_WEBHOOK_TIMEOUT", 1500*time.Millisecond),
		LogLevel:       getEnv("PKGINDEX_LOG_LEVEL", "info"),
		State:          NewSiteState(getEnvBool("PKGINDEX_READ_ONLY", false)),
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks the configuration for consistency
func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("server port is required")
	}
	if c.PostgresURL == "" {
		return fmt.Errorf("PKGINDEX_POSTGRES_URL is required")
	}
	if c.RedisURL == "" {
		return fmt.Errorf("PKGINDEX_REDIS_URL is required")
	}
	if c.WebhookTimeout <= 0 {
		return fmt.Errorf("webhook timeout must be positive")
	}
	return nil
}

// Addr returns the host:port the server binds to
func (c *ServerConfig) Addr() string {
	return c.Host + ":" + c.Port
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvBool(key string, defaultVal bool) bool {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	parsed, err := strconv.ParseBool(val)
	if err != nil {
		return defaultVal
	}
	return parsed
}

func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	parsed, err := time.ParseDuration(val)
	if err != nil {
		return defaultVal
	}
	return parsed
}
