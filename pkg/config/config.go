package config

import (
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Storage backends selectable via STORAGE_BACKEND.
const (
	StorageMemory   = "memory"
	StoragePostgres = "postgres"
)

// Config holds application configuration.
type Config struct {
	Port           string
	DatabaseURL    string
	StorageBackend string
	IsProduction   bool
	LockTimeout    time.Duration
	RateLimit      string // ulule/limiter formatted rate, e.g. "100-S"
	SeedDemoData   bool
}

// LoadConfig loads configuration from environment variables and a .env file
// if present. Defaults favour the in-memory backend so the service runs with
// no external dependencies.
func LoadConfig() (*Config, error) {
	// Attempt to load .env file, ignore error if it doesn't exist
	_ = godotenv.Load()

	viper.SetDefault("PORT", "8080")
	viper.SetDefault("PGSQL_URL", "")
	viper.SetDefault("STORAGE_BACKEND", StorageMemory)
	viper.SetDefault("IS_PRODUCTION", false)
	viper.SetDefault("LOCK_WAIT_TIMEOUT", "3s")
	viper.SetDefault("RATE_LIMIT", "100-S")
	viper.SetDefault("SEED_DEMO_DATA", false)

	viper.AutomaticEnv()

	cfg := &Config{
		Port:           viper.GetString("PORT"),
		DatabaseURL:    viper.GetString("PGSQL_URL"),
		StorageBackend: viper.GetString("STORAGE_BACKEND"),
		IsProduction:   viper.GetBool("IS_PRODUCTION"),
		LockTimeout:    viper.GetDuration("LOCK_WAIT_TIMEOUT"),
		RateLimit:      viper.GetString("RATE_LIMIT"),
		SeedDemoData:   viper.GetBool("SEED_DEMO_DATA"),
	}

	switch cfg.StorageBackend {
	case StorageMemory:
	case StoragePostgres:
		if cfg.DatabaseURL == "" {
			return nil, fmt.Errorf("PGSQL_URL is required when STORAGE_BACKEND is %q", StoragePostgres)
		}
	default:
		return nil, fmt.Errorf("unknown STORAGE_BACKEND %q", cfg.StorageBackend)
	}

	return cfg, nil
}
