package logging

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestConfigValidate(t *testing.T) {
	t.Run("defaults are valid", func(t *testing.T) {
		assert.NoError(t, NewDefaultConfig().Validate())
	})

	t.Run("rejects unknown format", func(t *testing.T) {
		cfg := &Config{Level: "info", Format: "xml"}
		assert.Error(t, cfg.Validate())
	})

	t.Run("rejects unknown level", func(t *testing.T) {
		cfg := &Config{Level: "loud", Format: "json"}
		assert.Error(t, cfg.Validate())
	})
}

func TestNewLoggerFileCore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "server.log")

	logger, err := NewLogger(&Config{Level: "info", Format: "json", File: path})
	require.NoError(t, err)

	logger.Info("decision stored", zap.String("token", "deadbeef"), zap.String("decision", "1"))
	_ = logger.Sync()

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 1)

	var entry map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &entry))
	assert.Equal(t, "decision stored", entry["msg"])
	assert.Equal(t, "deadbeef", entry["token"])
	assert.NotEmpty(t, entry["ts"])
}

func TestTail(t *testing.T) {
	t.Run("missing file yields no lines", func(t *testing.T) {
		lines, err := Tail(filepath.Join(t.TempDir(), "absent.log"), 10)
		require.NoError(t, err)
		assert.Empty(t, lines)
	})

	t.Run("returns last n lines oldest first", func(t *testing.T) {
		path := writeLines(t, 10)
		lines, err := Tail(path, 3)
		require.NoError(t, err)
		assert.Equal(t, []string{"line 7", "line 8", "line 9"}, lines)
	})

	t.Run("returns everything when file is shorter than n", func(t *testing.T) {
		path := writeLines(t, 4)
		lines, err := Tail(path, 100)
		require.NoError(t, err)
		assert.Len(t, lines, 4)
		assert.Equal(t, "line 0", lines[0])
	})

	t.Run("reads across block boundaries", func(t *testing.T) {
		// Each line well over the read block size.
		path := filepath.Join(t.TempDir(), "big.log")
		long := strings.Repeat("x", 3*tailBlockSize)
		content := "first " + long + "\nsecond " + long + "\n"
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

		lines, err := Tail(path, 2)
		require.NoError(t, err)
		require.Len(t, lines, 2)
		assert.True(t, strings.HasPrefix(lines[0], "first "))
		assert.True(t, strings.HasPrefix(lines[1], "second "))
	})

	t.Run("non-positive n yields nothing", func(t *testing.T) {
		path := writeLines(t, 2)
		lines, err := Tail(path, 0)
		require.NoError(t, err)
		assert.Empty(t, lines)
	})
}

func writeLines(t *testing.T, n int) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "server.log")
	var b strings.Builder
	for i := 0; i < n; i++ {
		fmt.Fprintf(&b, "line %d\n", i)
	}
	require.NoError(t, os.WriteFile(path, []byte(b.String()), 0o644))
	return path
}
