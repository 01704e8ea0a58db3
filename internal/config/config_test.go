package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func reset(t *testing.T) {
	t.Helper()
	viper.Reset()
	t.Cleanup(viper.Reset)
}

func TestDefaultConfig(t *testing.T) {
	reset(t)
	cfg := Default()
	assert.Equal(t, uint(96), cfg.Precision.Bits)
	assert.Equal(t, 100000, cfg.Precision.Cutoff)
	assert.Equal(t, 0.25, cfg.Window.C)
	assert.Equal(t, 2.0, cfg.Window.Kappa)
	assert.Equal(t, 0.125, cfg.Window.R0)
	assert.Equal(t, "current", cfg.Window.Exponent)
	assert.Equal(t, "realistic", cfg.Window.Model)
	assert.Equal(t, int64(42), cfg.Window.Seed)
	assert.Equal(t, "data", cfg.Output.DataDir)
	assert.True(t, cfg.Output.SaveJSON)
	require.NoError(t, cfg.Validate())
}

func TestLoadMissingFileFallsBackToDefaults(t *testing.T) {
	reset(t)
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, 0.25, cfg.Window.C)
}

func TestLoadOverridesFromFile(t *testing.T) {
	reset(t)
	path := filepath.Join(t.TempDir(), "rn.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
window:
  c: 0.35
  kappa: 0.8
  r0: 0.10
precision:
  bits: 160
`), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 0.35, cfg.Window.C)
	assert.Equal(t, 0.8, cfg.Window.Kappa)
	assert.Equal(t, uint(160), cfg.Precision.Bits)
	// Untouched keys keep their defaults.
	assert.Equal(t, 100000, cfg.Precision.Cutoff)
	assert.Equal(t, "realistic", cfg.Window.Model)
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	reset(t)
	path := filepath.Join(t.TempDir(), "rn.yaml")
	require.NoError(t, os.WriteFile(path, []byte("window:\n  r0: 0.9\n"), 0644))
	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "window.r0")
}

func TestValidate(t *testing.T) {
	reset(t)
	cfg := Default()
	cfg.Precision.Bits = 16
	assert.Error(t, cfg.Validate())

	cfg = Default()
	cfg.Precision.Cutoff = 50
	assert.Error(t, cfg.Validate())

	cfg = Default()
	cfg.Window.Kappa = 0
	assert.Error(t, cfg.Validate())

	cfg = Default()
	cfg.Window.T = 1
	assert.Error(t, cfg.Validate())
}

func TestSaveDefaultRoundTrip(t *testing.T) {
	reset(t)
	cfg := Default()
	cfg.Window.C = 0.35
	path := filepath.Join(t.TempDir(), "conf", "rn.yaml")
	require.NoError(t, SaveDefault(path, cfg, "1.0.0"))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "# RN Certificate Configuration v1.0.0"))

	viper.Reset()
	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 0.35, loaded.Window.C)
}
