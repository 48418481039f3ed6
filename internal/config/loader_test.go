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
	loader := NewLoader()

	cfg, err := loader.Load()
	require.NoError(t, err)

	assert.Equal(t, 5, cfg.Loop.IterationBudget)
	assert.Equal(t, 30*time.Minute, cfg.Loop.PerIterationTimeout)
	assert.Equal(t, 3, cfg.Loop.HaltOnConsecutiveFailures)
	assert.InDelta(t, 0.5, cfg.Loop.PassRateFloor, 1e-9)
	assert.True(t, cfg.Loop.RequireHealthGate)
	assert.Equal(t, 20, cfg.Loop.LearningWindow)
	assert.Equal(t, 50, cfg.Loop.OvernightIterationBudget)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "claude", cfg.Profile.Harness)
	assert.Contains(t, cfg.DatabasePath(), "trainloop.db")
}

func TestLoadConfigFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	body := `
loop:
  iteration_budget: 12
  pass_rate_floor: 0.8
logging:
  level: debug
profile:
  harness: codex
`
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))

	loader := NewLoader()
	loader.SetConfigFile(path)

	cfg, err := loader.Load()
	require.NoError(t, err)

	assert.Equal(t, 12, cfg.Loop.IterationBudget)
	assert.InDelta(t, 0.8, cfg.Loop.PassRateFloor, 1e-9)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "codex", cfg.Profile.Harness)
	// Untouched keys keep defaults.
	assert.Equal(t, 3, cfg.Loop.HaltOnConsecutiveFailures)
}

func TestLoadMissingExplicitFileFails(t *testing.T) {
	loader := NewLoader()
	loader.SetConfigFile(filepath.Join(t.TempDir(), "nope.yaml"))

	_, err := loader.Load()
	assert.Error(t, err)
}

func TestLoadEnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("loop:\n  iteration_budget: 12\n"), 0o644))

	t.Setenv("TRAINLOOP_LOOP_ITERATION_BUDGET", "7")

	loader := NewLoader()
	loader.SetConfigFile(path)

	cfg, err := loader.Load()
	require.NoError(t, err)
	assert.Equal(t, 7, cfg.Loop.IterationBudget)
}

func TestLoadInvalidConfigRejected(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("loop:\n  pass_rate_floor: 3.0\n"), 0o644))

	loader := NewLoader()
	loader.SetConfigFile(path)

	_, err := loader.Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "pass_rate_floor")
}

func TestExpandTilde(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)

	assert.Equal(t, home, expandTilde("~"))
	assert.Equal(t, filepath.Join(home, "data"), expandTilde("~/data"))
	assert.Equal(t, "/abs/path", expandTilde("/abs/path"))
	assert.Equal(t, "", expandTilde(""))
}

func TestConfigValidate(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())

	cfg.Loop.IterationBudget = 0
	assert.Error(t, cfg.Validate())

	cfg = DefaultConfig()
	cfg.Logging.Format = "xml"
	assert.Error(t, cfg.Validate())

	cfg = DefaultConfig()
	cfg.Global.DataDir = ""
	assert.Error(t, cfg.Validate())
}

func TestDatabasePathOverride(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Database.Path = "/custom/db.sqlite"
	assert.Equal(t, "/custom/db.sqlite", cfg.DatabasePath())
}
