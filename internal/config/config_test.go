package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/san-kum/animattach/internal/attach"
	"github.com/san-kum/animattach/internal/dynamo"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	require.NoError(t, cfg.Validate())
	assert.True(t, cfg.Enabled)
	assert.Equal(t, 10000.0, cfg.MaximumForce)
	assert.Equal(t, 10000.0, cfg.PositionSpring)
	assert.Equal(t, 1000.0, cfg.PositionDamper)

	s := cfg.Settings()
	assert.True(t, s.Enabled)
	assert.Equal(t, cfg.Drive(), s.Drive)
	assert.Equal(t, attach.DefaultSettings(), s, "engine and config defaults agree")
}

func TestValidateRanges(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"force low", func(c *Config) { c.MaximumForce = 0 }},
		{"force high", func(c *Config) { c.MaximumForce = 100001 }},
		{"spring", func(c *Config) { c.PositionSpring = -5 }},
		{"damper", func(c *Config) { c.PositionDamper = 10001 }},
		{"dt", func(c *Config) { c.Dt = 0 }},
		{"ticks", func(c *Config) { c.Ticks = 0 }},
		{"bootstrap", func(c *Config) { c.BootstrapTick = -1 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			assert.ErrorIs(t, cfg.Validate(), ErrOutOfRange)
		})
	}
}

func TestValidateReportsEveryProblem(t *testing.T) {
	cfg := DefaultConfig()
	cfg.PositionSpring = 0
	cfg.Integrator = "midpoint"
	cfg.LogLevel = "loud"

	err := cfg.Validate()
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrOutOfRange)
	assert.True(t, errors.Is(err, dynamo.ErrUnknownIntegrator))
	assert.Contains(t, err.Error(), "log_level")
}

func TestSaveLoadKeepsDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "cfg.yaml")
	require.NoError(t, os.WriteFile(path, []byte("position_spring: 250\nenabled: false\n"), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.False(t, cfg.Enabled)
	assert.Equal(t, 250.0, cfg.PositionSpring)
	assert.Equal(t, DefaultPositionDamper, cfg.PositionDamper)
	assert.Equal(t, "rk4", cfg.Integrator)

	out := filepath.Join(dir, "out.yaml")
	require.NoError(t, Save(out, cfg))
	again, err := Load(out)
	require.NoError(t, err)
	assert.Equal(t, cfg, again)

	_, err = Load(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)
}

func TestPresets(t *testing.T) {
	assert.Equal(t, []string{"editor", "soft", "stiff"}, ListPresets())

	for _, name := range ListPresets() {
		cfg := GetPreset(name)
		require.NotNil(t, cfg, name)
		assert.NoError(t, cfg.Validate(), name)
	}

	a := GetPreset("soft")
	a.PositionSpring = 1
	assert.Equal(t, 200.0, GetPreset("soft").PositionSpring, "presets are copied")
	assert.Nil(t, GetPreset("nonexistent"))
}
