package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 5000, cfg.Server.Port)
	assert.Equal(t, 10*time.Second, cfg.Server.ShutdownTimeout)
	assert.Equal(t, "decisions", cfg.Storage.DecisionsDir)
	assert.Equal(t, "purchases", cfg.Storage.PurchasesDir)
	assert.Equal(t, "logs", cfg.Storage.LogsDir)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)
	assert.Equal(t, filepath.Join("logs", "server.log"), cfg.Logging.File)
	assert.False(t, cfg.Admin.AuthEnabled())
}

func TestLoadFromYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
server:
  port: 8080
  shutdown_timeout: 5s
storage:
  decisions_dir: /var/lib/replyhook/decisions
admin:
  user: ops
  pass: hunter2
logging:
  level: debug
  format: console
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 5*time.Second, cfg.Server.ShutdownTimeout)
	assert.Equal(t, "/var/lib/replyhook/decisions", cfg.Storage.DecisionsDir)
	assert.Equal(t, "purchases", cfg.Storage.PurchasesDir) // default kept
	assert.True(t, cfg.Admin.AuthEnabled())
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "console", cfg.Logging.Format)
}

func TestEnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server:\n  port: 8080\n"), 0o600))

	t.Setenv("SERVER_PORT", "9191")
	t.Setenv("ADMIN_USER", "ops")
	t.Setenv("ADMIN_PASS", "hunter2")
	t.Setenv("STORAGE_LOGS_DIR", "/tmp/replyhook-logs")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 9191, cfg.Server.Port)
	assert.True(t, cfg.Admin.AuthEnabled())
	assert.Equal(t, "/tmp/replyhook-logs", cfg.Storage.LogsDir)
	assert.Equal(t, filepath.Join("/tmp/replyhook-logs", "server.log"), cfg.Logging.File)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		cfg := &Config{}
		applyDefaults(cfg)
		return cfg
	}

	t.Run("defaults validate", func(t *testing.T) {
		assert.NoError(t, valid().Validate())
	})

	t.Run("rejects out-of-range port", func(t *testing.T) {
		cfg := valid()
		cfg.Server.Port = 70000
		assert.Error(t, cfg.Validate())
	})

	t.Run("rejects non-positive shutdown timeout", func(t *testing.T) {
		cfg := valid()
		cfg.Server.ShutdownTimeout = 0
		assert.Error(t, cfg.Validate())
	})

	t.Run("rejects empty storage dir", func(t *testing.T) {
		cfg := valid()
		cfg.Storage.DecisionsDir = ""
		assert.Error(t, cfg.Validate())
	})

	t.Run("rejects bad logging config", func(t *testing.T) {
		cfg := valid()
		cfg.Logging.Format = "xml"
		assert.Error(t, cfg.Validate())
	})
}

func TestAuthEnabled(t *testing.T) {
	assert.False(t, AdminConfig{}.AuthEnabled())
	assert.False(t, AdminConfig{User: "ops"}.AuthEnabled())
	assert.False(t, AdminConfig{Pass: "hunter2"}.AuthEnabled())
	assert.True(t, AdminConfig{User: "ops", Pass: "hunter2"}.AuthEnabled())
}
