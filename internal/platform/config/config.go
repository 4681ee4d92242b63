// Package config loads application configuration from the environment.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Storage selects the repository backend.
type Storage string

const (
	StoragePostgres Storage = "postgres"
	StorageMemory   Storage = "memory"
)

// Config holds application configuration. Values come from environment
// variables, optionally seeded from a .env file.
type Config struct {
	HTTPAddr    string
	DatabaseURL string
	LogLevel    string
	AppEnv      string
	Storage     Storage

	// CORSOrigins allows these origins on the API; empty disables CORS.
	CORSOrigins []string

	// ShutdownTimeout bounds graceful HTTP shutdown.
	ShutdownTimeout time.Duration
}

// IsProduction reports whether the app runs in production mode.
func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

// Load reads configuration, applying defaults for anything unset. A .env
// file in the working directory is honored but never required.
func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetDefault("HTTP_ADDR", ":8080")
	v.SetDefault("DATABASE_URL", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("APP_ENV", "development")
	v.SetDefault("STORAGE", string(StoragePostgres))
	v.SetDefault("CORS_ORIGINS", "")
	v.SetDefault("SHUTDOWN_TIMEOUT", "15s")
	v.AutomaticEnv()

	cfg := &Config{
		HTTPAddr:    v.GetString("HTTP_ADDR"),
		DatabaseURL: v.GetString("DATABASE_URL"),
		LogLevel:    v.GetString("LOG_LEVEL"),
		AppEnv:      v.GetString("APP_ENV"),
		Storage:     Storage(v.GetString("STORAGE")),
	}

	switch cfg.Storage {
	case StoragePostgres, StorageMemory:
	default:
		return nil, fmt.Errorf("unknown STORAGE %q (want postgres or memory)", cfg.Storage)
	}
	if cfg.Storage == StoragePostgres && cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required with postgres storage")
	}

	if raw := v.GetString("CORS_ORIGINS"); raw != "" {
		for _, origin := range strings.Split(raw, ",") {
			if origin = strings.TrimSpace(origin); origin != "" {
				cfg.CORSOrigins = append(cfg.CORSOrigins, origin)
			}
		}
	}

	timeout, err := time.ParseDuration(v.GetString("SHUTDOWN_TIMEOUT"))
	if err != nil {
		return nil, fmt.Errorf("invalid SHUTDOWN_TIMEOUT: %w", err)
	}
	cfg.ShutdownTimeout = timeout

	return cfg, nil
}
