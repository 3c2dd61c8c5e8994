package app

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConfig_DefaultsAreValid(t *testing.T) {
	cfg := NewConfig()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, ":16784", cfg.Network.Listen)
	assert.Equal(t, "soft", cfg.Device.Kind)
	assert.Equal(t, []string{"copyfilter", "intensity", "pixelformat", "fifo"}, cfg.Sweep.Programs)
	assert.Equal(t, 64, cfg.Sweep.MaxFilterSum)
	assert.Equal(t, "none", cfg.Viewer.Kind)
}

func TestLoadFromFile_CreatesMissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config", "hwtests.json")
	cfg := NewConfig()
	require.NoError(t, cfg.LoadFromFile(path))

	_, err := os.Stat(path)
	require.NoError(t, err)
	assert.False(t, cfg.IsLoaded())
	assert.Equal(t, path, cfg.GetConfigPath())
}

func TestLoadFromFile_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hwtests.json")
	cfg := NewConfig()
	cfg.Network.Listen = "127.0.0.1:9000"
	cfg.Device.Fault = "ignore-gamma"
	cfg.Sweep.Programs = []string{"fifo"}
	cfg.Sweep.AllGammas = true
	require.NoError(t, cfg.SaveToFile(path))

	loaded := NewConfig()
	require.NoError(t, loaded.LoadFromFile(path))
	assert.True(t, loaded.IsLoaded())
	assert.Equal(t, "127.0.0.1:9000", loaded.Network.Listen)
	assert.Equal(t, "ignore-gamma", loaded.Device.Fault)
	assert.Equal(t, []string{"fifo"}, loaded.Sweep.Programs)
	assert.True(t, loaded.Sweep.AllGammas)
}

func TestLoadFromFile_RejectsBadJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hwtests.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0644))
	assert.Error(t, NewConfig().LoadFromFile(path))
}

func TestValidate_Errors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		field  string
	}{
		{"bad listen", func(c *Config) { c.Network.Listen = "no-port" }, "network.listen"},
		{"hardware device", func(c *Config) { c.Device.Kind = "wii" }, "device.kind"},
		{"bad fault", func(c *Config) { c.Device.Fault = "melted" }, "device.fault"},
		{"unknown program", func(c *Config) { c.Sweep.Programs = []string{"tev"} }, "sweep.programs"},
		{"filter sum too big", func(c *Config) { c.Sweep.MaxFilterSum = 190 }, "sweep.max_filter_sum"},
		{"unknown viewer", func(c *Config) { c.Viewer.Kind = "sdl2" }, "viewer.kind"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := NewConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			var ce *ConfigError
			require.True(t, errors.As(err, &ce), "got %v", err)
			assert.Equal(t, tt.field, ce.Field)
		})
	}
}

func TestValidate_RepairsDefaults(t *testing.T) {
	cfg := NewConfig()
	cfg.Sweep.ValueStep = 0
	cfg.Viewer.Kind = ""
	cfg.Viewer.Width = -1
	cfg.Debug.MaxTraces = 0
	require.NoError(t, cfg.Validate())

	assert.Equal(t, 1, cfg.Sweep.ValueStep)
	assert.Equal(t, "none", cfg.Viewer.Kind)
	assert.Equal(t, 640, cfg.Viewer.Width)
	assert.Equal(t, 1000, cfg.Debug.MaxTraces)
}
