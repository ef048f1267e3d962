// Package config loads application configuration from environment variables.
// All variables use the SKILLBITE_ prefix.
package config

import (
	"fmt"
	"os"
	"strconv"
)

// Config holds all application configuration.
type Config struct {
	Server      ServerConfig
	Database    DatabaseConfig
	Cache       CacheConfig
	Auth        AuthConfig
	Player      PlayerConfig
	Log         LogConfig
	CatalogPath string
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port int
	Host string
}

// DatabaseConfig holds PostgreSQL connection settings. An empty URL selects
// the in-memory store.
type DatabaseConfig struct {
	URL      string
	MaxConns int
	MinConns int
}

// CacheConfig holds Redis connection settings. An empty URL disables
// progress hints.
type CacheConfig struct {
	URL string
}

// AuthConfig holds API authentication settings.
type AuthConfig struct {
	// TokenHash is a bcrypt hash of the accepted bearer token.
	// Empty leaves the API open.
	TokenHash string
}

// PlayerConfig holds video progress sampling settings.
type PlayerConfig struct {
	SampleIntervalMS int
	Threshold        float64
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string
	Format string
}

// Load reads configuration from environment variables with SKILLBITE_ prefix.
func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Port: envInt("SKILLBITE_SERVER_PORT", 8080),
			Host: envStr("SKILLBITE_SERVER_HOST", "0.0.0.0"),
		},
		Database: DatabaseConfig{
			URL:      envStr("SKILLBITE_DATABASE_URL", ""),
			MaxConns: envInt("SKILLBITE_DATABASE_MAX_CONNS", 25),
			MinConns: envInt("SKILLBITE_DATABASE_MIN_CONNS", 5),
		},
		Cache: CacheConfig{
			URL: envStr("SKILLBITE_CACHE_URL", ""),
		},
		Auth: AuthConfig{
			TokenHash: envStr("SKILLBITE_AUTH_TOKEN_HASH", ""),
		},
		Player: PlayerConfig{
			SampleIntervalMS: envInt("SKILLBITE_PLAYER_SAMPLE_INTERVAL_MS", 1000),
			Threshold:        envFloat("SKILLBITE_PLAYER_THRESHOLD", 0.90),
		},
		Log: LogConfig{
			Level:  envStr("SKILLBITE_LOG_LEVEL", "info"),
			Format: envStr("SKILLBITE_LOG_FORMAT", "json"),
		},
		CatalogPath: envStr("SKILLBITE_CATALOG_PATH", ""),
	}

	return cfg, nil
}

// Validate checks that required configuration is present.
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("SKILLBITE_SERVER_PORT must be a valid port, got %d", c.Server.Port)
	}

	if c.Player.SampleIntervalMS <= 0 {
		return fmt.Errorf("SKILLBITE_PLAYER_SAMPLE_INTERVAL_MS must be positive, got %d", c.Player.SampleIntervalMS)
	}

	if c.Player.Threshold <= 0 || c.Player.Threshold > 1 {
		return fmt.Errorf("SKILLBITE_PLAYER_THRESHOLD must be in (0, 1], got %g", c.Player.Threshold)
	}

	return nil
}

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func envFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}
