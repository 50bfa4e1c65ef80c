package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func writeConfigFile(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, "flowengine.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func chdir(t *testing.T, dir string) {
	t.Helper()
	previous, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(previous) })
}

func TestLoadConfigDefaults(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("CONFIG_FILE", "")
	t.Setenv("ENVIRONMENT", "")

	cfg, err := LoadConfig()

	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.ServerAddress)
	assert.Equal(t, 1, cfg.WorkerCount)
	assert.Equal(t, 30*time.Second, cfg.RequestTimeout)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "development", cfg.Environment)
	assert.False(t, cfg.IsProduction())
	assert.Empty(t, cfg.ConfigFile)
}

func TestLoadConfigPrecedence(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)
	path := writeConfigFile(t, dir, `
server_address: ":9000"
worker_count: 3
log_level: debug
request_timeout: 5s
allowed_origins:
  - https://app.example.com
`)
	t.Setenv("CONFIG_FILE", path)
	t.Setenv("WORKER_COUNT", "6")
	t.Setenv("REQUEST_TIMEOUT", "1500")
	t.Setenv("ENVIRONMENT", "production")

	cfg, err := LoadConfig()

	require.NoError(t, err)
	assert.Equal(t, ":9000", cfg.ServerAddress)
	assert.Equal(t, 6, cfg.WorkerCount)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, 1500*time.Millisecond, cfg.RequestTimeout)
	assert.Equal(t, []string{"https://app.example.com"}, cfg.AllowedOrigins)
	assert.Equal(t, path, cfg.ConfigFile)
	assert.True(t, cfg.IsProduction())
}

func TestLoadConfigReadsDotEnv(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("WORKER_QUEUE_SIZE=7\n"), 0o600))
	t.Setenv("CONFIG_FILE", "")
	t.Setenv("WORKER_QUEUE_SIZE", "")
	// godotenv only fills variables that are absent
	require.NoError(t, os.Unsetenv("WORKER_QUEUE_SIZE"))

	cfg, err := LoadConfig()

	require.NoError(t, err)
	assert.Equal(t, 7, cfg.WorkerQueueSize)
}

func TestLoadConfigMissingFile(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("CONFIG_FILE", "/does/not/exist.yaml")

	_, err := LoadConfig()

	assert.Error(t, err)
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero workers", func(c *Config) { c.WorkerCount = 0 }},
		{"zero queue", func(c *Config) { c.WorkerQueueSize = 0 }},
		{"bad log level", func(c *Config) { c.LogLevel = "loud" }},
		{"auth without secret", func(c *Config) { c.EnableAuth = true }},
		{"sample rate above one", func(c *Config) { c.TracingSampleRate = 2 }},
		{"non-positive timeout", func(c *Config) { c.RequestTimeout = 0 }},
	}

	require.NoError(t, Defaults().Validate())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Defaults()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestSplitList(t *testing.T) {
	assert.Equal(t, []string{"a", "b"}, splitList(" a, ,b ,"))
}

func TestConfigWatcherAppliesLogLevel(t *testing.T) {
	dir := t.TempDir()
	path := writeConfigFile(t, dir, "log_level: info\n")

	cfg := Defaults()
	require.NoError(t, cfg.MergeFile(path))

	level := zap.NewAtomicLevelAt(zapcore.InfoLevel)
	w, err := NewConfigWatcher(cfg, zap.NewNop())
	require.NoError(t, err)
	w.OnChange(LogLevelListener(level))
	w.Start()
	defer w.Stop()

	require.NoError(t, os.WriteFile(path, []byte("log_level: debug\n"), 0o600))

	assert.Eventually(t, func() bool {
		return level.Level() == zapcore.DebugLevel
	}, 2*time.Second, 20*time.Millisecond)
	assert.Equal(t, "debug", w.Current().LogLevel)
}

func TestConfigWatcherKeepsConfigOnInvalidReload(t *testing.T) {
	dir := t.TempDir()
	path := writeConfigFile(t, dir, "log_level: warn\n")

	cfg := Defaults()
	require.NoError(t, cfg.MergeFile(path))
	w, err := NewConfigWatcher(cfg, zap.NewNop())
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(path, []byte("worker_count: 0\n"), 0o600))
	w.reload()

	assert.Equal(t, 1, w.Current().WorkerCount)
	w.Stop()
}

func TestNewConfigWatcherRequiresFile(t *testing.T) {
	_, err := NewConfigWatcher(Defaults(), zap.NewNop())

	assert.Error(t, err)
}
