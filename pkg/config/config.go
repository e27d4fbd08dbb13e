// Package config handles loading and saving silsila configuration.
//
// Configuration follows the XDG Base Directory specification:
//   - Config:  ~/.config/silsila/config.yaml
//   - Data:    ~/.local/share/silsila/ (exported snapshots)
//   - State:   ~/.local/state/silsila/ (visit history database)
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Duration is a time.Duration that round-trips through YAML as a string
// like "300ms".
type Duration time.Duration

// Std returns the value as a standard time.Duration.
func (d Duration) Std() time.Duration { return time.Duration(d) }

// Milliseconds returns the duration in whole milliseconds.
func (d Duration) Milliseconds() int64 { return time.Duration(d).Milliseconds() }

func (d Duration) MarshalYAML() (any, error) {
	return time.Duration(d).String(), nil
}

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	parsed, err := time.ParseDuration(value.Value)
	if err != nil {
		return fmt.Errorf("parsing duration %q: %w", value.Value, err)
	}
	*d = Duration(parsed)
	return nil
}

// SimConfig exposes the layout tunables worth overriding.
type SimConfig struct {
	SpringLength float64 `yaml:"spring_length,omitempty"`
	Repulsion    float64 `yaml:"repulsion,omitempty"`
	Gravity      float64 `yaml:"gravity,omitempty"`
}

// Config is the top-level configuration for silsila.
type Config struct {
	// DatasetPath points at an external dataset file (.json or .db).
	// Empty means the embedded dataset.
	DatasetPath string `yaml:"dataset_path,omitempty"`

	HoverLinger  Duration `yaml:"hover_linger,omitempty"`  // detail panel outlives the pointer this long
	ReleaseGrace Duration `yaml:"release_grace,omitempty"` // dropped node stays pinned this long

	DragAlphaTarget float64 `yaml:"drag_alpha_target,omitempty"`
	SettleAlpha     float64 `yaml:"settle_alpha,omitempty"` // centering waits until energy falls below this

	ShowLabels bool `yaml:"show_labels"`

	Sim SimConfig `yaml:"sim,omitempty"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		HoverLinger:     Duration(300 * time.Millisecond),
		ReleaseGrace:    Duration(300 * time.Millisecond),
		DragAlphaTarget: 0.3,
		SettleAlpha:     0.05,
		ShowLabels:      true,
	}
}

// ConfigDir returns the XDG config directory for silsila.
func ConfigDir() string {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, "silsila")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "silsila")
}

// DataDir returns the XDG data directory for silsila.
func DataDir() string {
	if dir := os.Getenv("XDG_DATA_HOME"); dir != "" {
		return filepath.Join(dir, "silsila")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".local", "share", "silsila")
}

// StateDir returns the XDG state directory for silsila.
func StateDir() string {
	if dir := os.Getenv("XDG_STATE_HOME"); dir != "" {
		return filepath.Join(dir, "silsila")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".local", "state", "silsila")
}

// ConfigPath returns the full path to config.yaml.
func ConfigPath() string {
	dir := ConfigDir()
	if dir == "" {
		return ""
	}
	return filepath.Join(dir, "config.yaml")
}

// Load reads the config file from the XDG config directory.
// Returns DefaultConfig if the file doesn't exist.
func Load() (Config, error) {
	path := ConfigPath()
	if path == "" {
		return DefaultConfig(), nil
	}
	return LoadFrom(path)
}

// LoadFrom reads config from a specific path.
// Returns DefaultConfig if the file doesn't exist.
func LoadFrom(path string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config: %w", err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config: %w", err)
	}

	cfg.DatasetPath = expandHome(cfg.DatasetPath)

	// A zero timer would fire a hover end on the same frame it was armed;
	// clamp anything unset or nonsensical back to the defaults.
	d := DefaultConfig()
	if cfg.HoverLinger <= 0 {
		cfg.HoverLinger = d.HoverLinger
	}
	if cfg.ReleaseGrace <= 0 {
		cfg.ReleaseGrace = d.ReleaseGrace
	}
	if cfg.DragAlphaTarget <= 0 || cfg.DragAlphaTarget > 1 {
		cfg.DragAlphaTarget = d.DragAlphaTarget
	}
	if cfg.SettleAlpha <= 0 || cfg.SettleAlpha > 1 {
		cfg.SettleAlpha = d.SettleAlpha
	}

	return cfg, nil
}

// Save writes the config to the XDG config directory.
func Save(cfg Config) error {
	path := ConfigPath()
	if path == "" {
		return fmt.Errorf("cannot determine config directory")
	}
	return SaveTo(cfg, path)
}

// SaveTo writes the config to a specific path.
func SaveTo(cfg Config, path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	return nil
}

func expandHome(path string) string {
	if !strings.HasPrefix(path, "~") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, path[1:])
}
