package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func chTempDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) }) //nolint:errcheck
	return dir
}

func TestLoadDefaults(t *testing.T) {
	chTempDir(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "sqlite", cfg.Store.Driver)
	assert.Equal(t, "gympulse.db", cfg.Store.Path)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, 30, cfg.Refresh.IntervalSecs)
	assert.Equal(t, 3, cfg.Refresh.RetryMaxAttempts)
	assert.Equal(t, 5, cfg.Refresh.BreakerThreshold)
	assert.Equal(t, 450, cfg.Sensor.DelayMs)
	assert.Equal(t, 4, cfg.Sensor.FailurePercent)
	assert.Equal(t, 720, cfg.Entitlement.TTLHours)
	assert.Empty(t, cfg.Directory.SeedFile)
}

func TestLoadFromYAML(t *testing.T) {
	dir := chTempDir(t)

	yaml := `
store:
  driver: postgres
  database_url: postgres://localhost/gympulse
log:
  level: debug
  format: console
server:
  port: 9090
refresh:
  interval_secs: 10
sensor:
  failure_percent: 0
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0o644))

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "postgres", cfg.Store.Driver)
	assert.Equal(t, "postgres://localhost/gympulse", cfg.Store.DatabaseURL)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, 10, cfg.Refresh.IntervalSecs)
	assert.Equal(t, 0, cfg.Sensor.FailurePercent)
	// Unset keys keep defaults.
	assert.Equal(t, 450, cfg.Sensor.DelayMs)
}

func TestLoadFromEnv(t *testing.T) {
	chTempDir(t)
	t.Setenv("GYMPULSE_SERVER_PORT", "7070")
	t.Setenv("GYMPULSE_STORE_DRIVER", "postgres")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 7070, cfg.Server.Port)
	assert.Equal(t, "postgres", cfg.Store.Driver)
}

func TestInitLogger(t *testing.T) {
	require.NoError(t, InitLogger(LogConfig{Level: "debug", Format: "console"}))
	assert.NotNil(t, zap.L())

	require.Error(t, InitLogger(LogConfig{Level: "nope", Format: "json"}))
}
