package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// MaxConfigFileBytes caps how much of a config file Load will read.
const MaxConfigFileBytes = 1 << 20

// CameraConfig selects the capture driver and the default open parameters.
type CameraConfig struct {
	Driver      string `yaml:"driver"`       // "opencv" or "mock"
	Index       int    `yaml:"index"`        // default device index for vision_start
	Width       int    `yaml:"width"`        // requested frame width (px)
	Height      int    `yaml:"height"`       // requested frame height (px)
	FPS         int    `yaml:"fps"`          // requested frame rate
	Backend     string `yaml:"backend"`      // auto, avfoundation, msmf, dshow, v4l2
	MockDevices int    `yaml:"mock_devices"` // number of openable indices for the mock driver
}

// CaptureConfig holds vision_capture defaults.
type CaptureConfig struct {
	SaveDir string `yaml:"save_dir"` // "~" is expanded
	Format  string `yaml:"format"`   // "jpg" or "png"
}

// BurstConfig holds vision_burst defaults.
type BurstConfig struct {
	N          int    `yaml:"n"`
	PeriodMs   int    `yaml:"period_ms"`
	SaveDir    string `yaml:"save_dir"`
	Format     string `yaml:"format"`
	Warmup     int    `yaml:"warmup"`      // frames discarded before the burst
	DurationMs int    `yaml:"duration_ms"` // 0 = use n
}

// ProbeConfig holds list_cameras defaults.
type ProbeConfig struct {
	MaxIndex int `yaml:"max_index"`
}

// DefaultsConfig contains generic parameters.
type DefaultsConfig struct {
	DebugLevel int    `yaml:"debug_level"` // debug level 0-4 (0=off, 1=info, 2=live, 3=verbose, 4=trace)
	LogFormat  string `yaml:"log_format"`  // "text" or "json"
}

// Config aggregates all application configuration.
type Config struct {
	Camera   CameraConfig   `yaml:"camera"`
	Capture  CaptureConfig  `yaml:"capture"`
	Burst    BurstConfig    `yaml:"burst"`
	Probe    ProbeConfig    `yaml:"probe"`
	Defaults DefaultsConfig `yaml:"defaults"`
}

// Default returns the built-in configuration used when no file is given.
func Default() *Config {
	return &Config{
		Camera: CameraConfig{
			Driver:      "opencv",
			Index:       0,
			Width:       640,
			Height:      480,
			FPS:         15,
			Backend:     "auto",
			MockDevices: 1,
		},
		Capture: CaptureConfig{
			SaveDir: "~/.vision_frames",
			Format:  "jpg",
		},
		Burst: BurstConfig{
			N:        8,
			PeriodMs: 150,
			SaveDir:  ".",
			Format:   "jpg",
			Warmup:   3,
		},
		Probe: ProbeConfig{MaxIndex: 10},
		Defaults: DefaultsConfig{
			DebugLevel: 1,
			LogFormat:  "text",
		},
	}
}

// ValidateConfigPath rejects empty paths, non-YAML files and paths that
// climb out of their starting directory.
func ValidateConfigPath(path string) error {
	if path == "" {
		return errors.New("config path is empty")
	}
	for _, part := range strings.FieldsFunc(filepath.ToSlash(path), func(r rune) bool { return r == '/' }) {
		if part == ".." {
			return fmt.Errorf("config path %q must not contain ..", path)
		}
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
	default:
		return fmt.Errorf("config path %q must end in .yaml or .yml", path)
	}
	return nil
}

// Load reads a YAML file on top of Default and validates the result.
// An empty path returns the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	if err := ValidateConfigPath(path); err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, MaxConfigFileBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}
	if len(data) > MaxConfigFileBytes {
		return nil, fmt.Errorf("config file exceeds %d bytes", MaxConfigFileBytes)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("unmarshal yaml: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks value ranges and normalizes enum-like strings.
func (c *Config) Validate() error {
	c.Camera.Driver = strings.ToLower(strings.TrimSpace(c.Camera.Driver))
	switch c.Camera.Driver {
	case "opencv", "mock":
	default:
		return fmt.Errorf("camera.driver must be opencv or mock, got %q", c.Camera.Driver)
	}

	nonNegative := []struct {
		name string
		v    int
	}{
		{"camera.index", c.Camera.Index},
		{"camera.width", c.Camera.Width},
		{"camera.height", c.Camera.Height},
		{"camera.fps", c.Camera.FPS},
		{"camera.mock_devices", c.Camera.MockDevices},
		{"burst.n", c.Burst.N},
		{"burst.period_ms", c.Burst.PeriodMs},
		{"burst.warmup", c.Burst.Warmup},
		{"burst.duration_ms", c.Burst.DurationMs},
		{"probe.max_index", c.Probe.MaxIndex},
	}
	for _, f := range nonNegative {
		if f.v < 0 {
			return fmt.Errorf("%s must be >= 0, got %d", f.name, f.v)
		}
	}
	if c.Burst.DurationMs > 0 && c.Burst.PeriodMs == 0 {
		return errors.New("burst.period_ms must be > 0 when burst.duration_ms is set")
	}

	if c.Defaults.DebugLevel < 0 || c.Defaults.DebugLevel > 4 {
		return fmt.Errorf("defaults.debug_level must be between 0 and 4, got %d", c.Defaults.DebugLevel)
	}
	c.Defaults.LogFormat = strings.ToLower(strings.TrimSpace(c.Defaults.LogFormat))
	switch c.Defaults.LogFormat {
	case "":
		c.Defaults.LogFormat = "text"
	case "text", "json":
	default:
		return fmt.Errorf("defaults.log_format must be text or json, got %q", c.Defaults.LogFormat)
	}

	if c.Camera.Backend == "" {
		c.Camera.Backend = "auto"
	}
	if c.Capture.Format == "" {
		c.Capture.Format = "jpg"
	}
	if c.Burst.Format == "" {
		c.Burst.Format = "jpg"
	}
	return nil
}
