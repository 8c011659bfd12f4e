package config

import (
	"fmt"
	"time"
)

const (
	StorageFile   = "file"
	StorageSQLite = "sqlite"
)

// Config holds all application configuration settings.
type Config struct {
	Environment string `envconfig:"TW_ENV" default:"development"`

	HTTPPort    int           `envconfig:"TW_HTTP_PORT" default:"8080"`
	HTTPTimeout time.Duration `envconfig:"TW_HTTP_TIMEOUT" default:"15s"`

	StorageDriver string `envconfig:"TW_STORAGE_DRIVER" default:"file"`
	StateFile     string `envconfig:"TW_STATE_FILE" default:"./data/state.json"`
	DatabasePath  string `envconfig:"TW_DATABASE_PATH" default:"./data/tasks.db"`

	ShutdownTimeout time.Duration `envconfig:"TW_SHUTDOWN_TIMEOUT" default:"30s"`

	LogLevel  string `envconfig:"TW_LOG_LEVEL" default:"info"`
	LogFormat string `envconfig:"TW_LOG_FORMAT" default:"json"`
}

// Validate checks the configuration for invalid or missing values.
// Returns an error describing the first invalid setting found.
func (c *Config) Validate() error {
	if c.HTTPPort <= 0 || c.HTTPPort > 65535 {
		return fmt.Errorf("invalid HTTP port: %d", c.HTTPPort)
	}

	if c.HTTPTimeout <= 0 {
		return fmt.Errorf("HTTP timeout must be positive: %s", c.HTTPTimeout)
	}
	if c.ShutdownTimeout <= 0 {
		return fmt.Errorf("shutdown timeout must be positive: %s", c.ShutdownTimeout)
	}

	switch c.StorageDriver {
	case StorageFile:
		if c.StateFile == "" {
			return fmt.Errorf("state file cannot be empty")
		}
	case StorageSQLite:
		if c.DatabasePath == "" {
			return fmt.Errorf("database path cannot be empty")
		}
	default:
		return fmt.Errorf("unknown storage driver %q, must be %q or %q", c.StorageDriver, StorageFile, StorageSQLite)
	}

	switch c.LogFormat {
	case "json", "text":
	default:
		return fmt.Errorf("unknown log format %q", c.LogFormat)
	}

	return nil
}
