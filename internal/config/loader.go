package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/knadh/koanf/v2"
)

// Load loads configuration from an optional YAML file, then overrides
// with environment variables, then applies defaults and validates.
//
// Configuration precedence (highest to lowest):
//  1. Environment variables (SERVER_PORT, ADMIN_USER, ...)
//  2. YAML config file (when configPath is non-empty and exists)
//  3. Hardcoded defaults
//
// Environment variables map onto config keys by splitting on the first
// underscore:
//
//	SERVER_PORT          -> server.port
//	SERVER_SHUTDOWN_TIMEOUT -> server.shutdown_timeout
//	STORAGE_DECISIONS_DIR   -> storage.decisions_dir
//	ADMIN_USER           -> admin.user
//	LOGGING_LEVEL        -> logging.level
func Load(configPath string) (*Config, error) {
	k := koanf.New(".")

	if configPath != "" {
		content, err := os.ReadFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("read config file %s: %w", configPath, err)
		}
		if err := k.Load(rawbytes.Provider(content), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("parse config file %s: %w", configPath, err)
		}
	}

	if err := k.Load(env.Provider("", ".", envToKey), nil); err != nil {
		return nil, fmt.Errorf("load environment variables: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	applyDefaults(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

// envToKey maps an environment variable name to a config key: the first
// underscore separates the section from the field, and the field keeps
// its remaining underscores (SERVER_SHUTDOWN_TIMEOUT ->
// server.shutdown_timeout).
func envToKey(s string) string {
	lower := strings.ToLower(s)
	parts := strings.SplitN(lower, "_", 2)
	if len(parts) == 1 {
		return lower
	}
	return parts[0] + "." + parts[1]
}
