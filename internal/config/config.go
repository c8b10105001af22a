// Package config provides configuration loading for replyhookd.
//
// Configuration comes from an optional YAML file overridden by
// environment variables, with hardcoded defaults underneath.
package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/driftwoodlabs/replyhook/internal/logging"
)

// Config holds the complete replyhookd configuration.
type Config struct {
	Server  ServerConfig   `koanf:"server"`
	Storage StorageConfig  `koanf:"storage"`
	Admin   AdminConfig    `koanf:"admin"`
	Logging logging.Config `koanf:"logging"`
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Host            string        `koanf:"host"`
	Port            int           `koanf:"port"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
}

// StorageConfig holds the record-store directories.
type StorageConfig struct {
	DecisionsDir string `koanf:"decisions_dir"`
	PurchasesDir string `koanf:"purchases_dir"`
	LogsDir      string `koanf:"logs_dir"`
}

// AdminConfig holds the basic-auth credentials for the admin surface.
// When either credential is empty, admin auth is disabled entirely.
type AdminConfig struct {
	User string `koanf:"user"`
	Pass string `koanf:"pass"`
}

// AuthEnabled reports whether the admin surface requires basic auth.
func (a AdminConfig) AuthEnabled() bool {
	return a.User != "" && a.Pass != ""
}

// applyDefaults sets default values for missing configuration fields.
func applyDefaults(cfg *Config) {
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 5000
	}
	if cfg.Server.ShutdownTimeout == 0 {
		cfg.Server.ShutdownTimeout = 10 * time.Second
	}

	if cfg.Storage.DecisionsDir == "" {
		cfg.Storage.DecisionsDir = "decisions"
	}
	if cfg.Storage.PurchasesDir == "" {
		cfg.Storage.PurchasesDir = "purchases"
	}
	if cfg.Storage.LogsDir == "" {
		cfg.Storage.LogsDir = "logs"
	}

	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "json"
	}
	if cfg.Logging.File == "" {
		// The admin log-tail endpoint reads this file back.
		cfg.Logging.File = filepath.Join(cfg.Storage.LogsDir, "server.log")
	}
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d (must be 1-65535)", c.Server.Port)
	}
	if c.Server.ShutdownTimeout <= 0 {
		return errors.New("shutdown timeout must be positive")
	}

	if c.Storage.DecisionsDir == "" || c.Storage.PurchasesDir == "" || c.Storage.LogsDir == "" {
		return errors.New("storage directories must not be empty")
	}

	if err := c.Logging.Validate(); err != nil {
		return fmt.Errorf("logging: %w", err)
	}

	return nil
}
