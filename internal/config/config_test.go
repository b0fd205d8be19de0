package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMissingFileReturnsDefault(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.hcl"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sim.hcl")
	body := `
tick_rate_hz = 60
mode         = "relaxed"
rng_seed     = 42
`
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 60, cfg.TickRateHz)
	assert.Equal(t, "relaxed", cfg.Mode)
	require.NotNil(t, cfg.RNGSeed)
	assert.Equal(t, int64(42), *cfg.RNGSeed)
	assert.Equal(t, int64(16), cfg.DeltaMs())
}

func TestValidateRejectsUnknownMode(t *testing.T) {
	cfg := Default()
	cfg.Mode = "freeform"
	assert.Error(t, cfg.Validate())
}

func TestValidateRejectsNonPositiveTickRate(t *testing.T) {
	cfg := Default()
	cfg.TickRateHz = 0
	assert.Error(t, cfg.Validate())
}
