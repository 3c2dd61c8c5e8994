// Package app provides configuration management for the conformance harness.
package app

import (
	"encoding/json"
	"fmt"
	"net"
	"os"
	"path/filepath"

	"hwtests/internal/gpu/softgpu"
	"hwtests/internal/graphics"
	"hwtests/internal/model"
	"hwtests/internal/report"
)

// Config holds all application configuration
type Config struct {
	Network NetworkConfig `json:"network"`
	Device  DeviceConfig  `json:"device"`
	Sweep   SweepConfig   `json:"sweep"`
	Viewer  ViewerConfig  `json:"viewer"`
	Debug   DebugConfig   `json:"debug"`

	// Internal state
	configPath string
	loaded     bool
}

// NetworkConfig contains the observer endpoint
type NetworkConfig struct {
	Listen string `json:"listen"` // host:port the harness listens on
}

// DeviceConfig selects the device under test
type DeviceConfig struct {
	Kind  string `json:"kind"`  // "soft"
	Fault string `json:"fault"` // softgpu fault name, "none" for a faithful device
}

// SweepConfig controls which programs run and how much of each sweep
type SweepConfig struct {
	Programs             []string `json:"programs"`       // "copyfilter", "intensity", "pixelformat", "fifo"
	MaxFilterSum         int      `json:"max_filter_sum"` // 64 or up to 189
	AllGammas            bool     `json:"all_gammas"`     // sweep every gamma instead of 1.0 only
	ValueStep            int      `json:"value_step"`     // step through 0..255 input values
	LowConfidenceFormats bool     `json:"low_confidence_formats"`
}

// ViewerConfig contains the EFB display settings
type ViewerConfig struct {
	Kind    string `json:"kind"` // "ebitengine", "headless", "terminal", "none"
	Width   int    `json:"width"`
	Height  int    `json:"height"`
	DumpDir string `json:"dump_dir"` // headless frame dumps
}

// DebugConfig contains debugging options
type DebugConfig struct {
	Verbose    bool   `json:"verbose"`
	TraceDir   string `json:"trace_dir"`   // mismatch traces, one subdirectory per run
	MaxTraces  int    `json:"max_traces"`  // mismatches kept per run
	DumpFrames bool   `json:"dump_frames"` // hex dumps of readback buffers into the trace directory
}

// Programs known to the harness, in default run order.
var knownPrograms = []string{"copyfilter", "intensity", "pixelformat", "fifo"}

// NewConfig creates a new configuration with default values
func NewConfig() *Config {
	return &Config{
		Network: NetworkConfig{
			Listen: fmt.Sprintf(":%d", report.DefaultPort),
		},
		Device: DeviceConfig{
			Kind:  "soft",
			Fault: "none",
		},
		Sweep: SweepConfig{
			Programs:     append([]string(nil), knownPrograms...),
			MaxFilterSum: model.NominalFilterSum,
			AllGammas:    false,
			ValueStep:    1,
		},
		Viewer: ViewerConfig{
			Kind:   string(graphics.ViewerNone),
			Width:  640,
			Height: 480,
		},
		Debug: DebugConfig{
			Verbose:   false,
			TraceDir:  "./traces",
			MaxTraces: 1000,
		},
	}
}

// LoadFromFile loads configuration from a JSON file
func (c *Config) LoadFromFile(path string) error {
	c.configPath = path

	// Check if file exists
	if _, err := os.Stat(path); os.IsNotExist(err) {
		// File doesn't exist - save default config and return
		return c.SaveToFile(path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	if err := json.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := c.validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	c.loaded = true
	return nil
}

// SaveToFile saves configuration to a JSON file
func (c *Config) SaveToFile(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	c.configPath = path
	return nil
}

// Validate checks the configuration and repairs values that have a safe
// default.
func (c *Config) Validate() error {
	return c.validate()
}

// validate validates the configuration values
func (c *Config) validate() error {
	if _, _, err := net.SplitHostPort(c.Network.Listen); err != nil {
		return &ConfigError{Field: "network.listen", Value: c.Network.Listen, Err: err}
	}

	if c.Device.Kind != "soft" {
		return &ConfigError{Field: "device.kind", Value: c.Device.Kind, Err: fmt.Errorf("only the software device is available")}
	}
	if _, err := softgpu.ParseFault(c.Device.Fault); err != nil {
		return &ConfigError{Field: "device.fault", Value: c.Device.Fault, Err: err}
	}

	for _, name := range c.Sweep.Programs {
		if !isKnownProgram(name) {
			return &ConfigError{Field: "sweep.programs", Value: name, Err: fmt.Errorf("unknown program, want one of %v", knownPrograms)}
		}
	}
	if c.Sweep.MaxFilterSum < 0 || c.Sweep.MaxFilterSum > model.MaxFilterSum {
		return &ConfigError{Field: "sweep.max_filter_sum", Value: c.Sweep.MaxFilterSum, Err: fmt.Errorf("must be in [0, %d]", model.MaxFilterSum)}
	}
	if c.Sweep.ValueStep <= 0 || c.Sweep.ValueStep > 255 {
		c.Sweep.ValueStep = 1
	}

	switch graphics.ViewerType(c.Viewer.Kind) {
	case graphics.ViewerEbitengine, graphics.ViewerHeadless, graphics.ViewerTerminal, graphics.ViewerNone:
	case "":
		c.Viewer.Kind = string(graphics.ViewerNone)
	default:
		return &ConfigError{Field: "viewer.kind", Value: c.Viewer.Kind, Err: fmt.Errorf("unknown viewer")}
	}
	if c.Viewer.Width <= 0 || c.Viewer.Height <= 0 {
		c.Viewer.Width, c.Viewer.Height = 640, 480
	}

	if c.Debug.MaxTraces <= 0 {
		c.Debug.MaxTraces = 1000
	}
	return nil
}

func isKnownProgram(name string) bool {
	for _, p := range knownPrograms {
		if p == name {
			return true
		}
	}
	return false
}

// IsLoaded returns whether the configuration was loaded from file
func (c *Config) IsLoaded() bool {
	return c.loaded
}

// GetConfigPath returns the path to the config file
func (c *Config) GetConfigPath() string {
	return c.configPath
}

// GetDefaultConfigPath returns the default configuration file path
func GetDefaultConfigPath() string {
	return "./config/hwtests.json"
}

// ConfigError represents configuration-related errors
type ConfigError struct {
	Field string
	Value interface{}
	Err   error
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("config error in field '%s' with value '%v': %v", e.Field, e.Value, e.Err)
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}
