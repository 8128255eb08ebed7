package config

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.False(t, cfg.Timer.AutoContinue)
	assert.True(t, cfg.Notifications.Enabled)
	assert.Equal(t, "127.0.0.1:7425", cfg.Control.Address)
	assert.Equal(t, "#E74C3C", cfg.Theme.ColorWork)
}

func TestLoadFile_CreatesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.toml")

	cfg, err := LoadFile(path)
	require.NoError(t, err)

	_, statErr := os.Stat(path)
	assert.NoError(t, statErr)
	assert.Equal(t, "127.0.0.1:7425", cfg.Control.Address)
	assert.True(t, filepath.IsAbs(cfg.Storage.DataDir))
}

func TestLoadFile_ReadsValuesAndEnvOverrides(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	cfg := DefaultConfig()
	cfg.Timer.AutoContinue = true
	cfg.Storage.DataDir = filepath.Join(dir, "data")
	cfg.Log.Format = "json"
	require.NoError(t, SaveFile(path, cfg))

	t.Setenv("POMODORE_CONTROL_ADDRESS", "127.0.0.1:9999")

	loaded, err := LoadFile(path)
	require.NoError(t, err)

	assert.True(t, loaded.Timer.AutoContinue)
	assert.Equal(t, filepath.Join(dir, "data"), loaded.Storage.DataDir)
	assert.Equal(t, "json", loaded.Log.Format)
	assert.Equal(t, "127.0.0.1:9999", loaded.Control.Address)
	assert.Equal(t, filepath.Join(dir, "data", "pomodore.db"), GetDBPath(loaded))
	assert.Equal(t, filepath.Join(dir, "data", "pomodore.log"), GetLogPath(loaded))
}

func TestSaveFile_OmitsTimingKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, SaveFile(path, DefaultConfig()))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "tick_interval")
	assert.NotContains(t, string(data), "refresh_interval")
	assert.Contains(t, string(data), "auto_continue")
}

func TestLoadFile_IgnoresStaleTimingKeys(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	stale := "[timer]\nauto_continue = true\ntick_interval = \"50ms\"\n\n[status]\nrefresh_interval = \"10ms\"\n\n[storage]\ndata_dir = \"" +
		filepath.ToSlash(filepath.Join(dir, "data")) + "\"\n"
	require.NoError(t, os.WriteFile(path, []byte(stale), 0o644))

	cfg, err := LoadFile(path)
	require.NoError(t, err)
	assert.True(t, cfg.Timer.AutoContinue)
	assert.Equal(t, TimerConfig{AutoContinue: true}, cfg.Timer)
	assert.Equal(t, StatusConfig{}, cfg.Status)
}

func TestLoadDotEnv_MissingFileIsFine(t *testing.T) {
	assert.NoError(t, LoadDotEnv(filepath.Join(t.TempDir(), ".env")))
}

func TestLoadDotEnv_SetsVariables(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("POMODORE_TEST_DOTENV=loaded\n"), 0o644))
	t.Cleanup(func() { _ = os.Unsetenv("POMODORE_TEST_DOTENV") })

	require.NoError(t, LoadDotEnv(path))
	assert.Equal(t, "loaded", os.Getenv("POMODORE_TEST_DOTENV"))
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer

	logger, err := NewLogger(LogConfig{Level: "warn", Format: "json"}, &buf)
	require.NoError(t, err)
	logger.Info("hidden")
	logger.Warn("shown", "k", 1)

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), `"msg":"shown"`)

	_, err = NewLogger(LogConfig{Level: "loud"}, &buf)
	assert.Error(t, err)
	_, err = NewLogger(LogConfig{Level: "info", Format: "xml"}, &buf)
	assert.Error(t, err)
}
