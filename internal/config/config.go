package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all filefield configuration.
type Config struct {
	// Core settings
	Name    string `yaml:"name"`
	Version string `yaml:"version"`

	// Form fields, rendered in order
	Fields []FieldConfig `yaml:"fields"`

	// Existence rules keyed by field type
	Rules map[string]RuleConfig `yaml:"rules,omitempty"`

	// Host capabilities (local or remote)
	Host HostConfig `yaml:"host"`

	// Disk watcher
	Watch WatchConfig `yaml:"watch"`

	// Recent path history
	History HistoryConfig `yaml:"history"`

	// Where confirmed values are written on submit
	SettingsPath string `yaml:"settings_path"`

	UI UIConfig `yaml:"ui"`

	// Logging
	Logging LoggingConfig `yaml:"logging"`
}

// FieldConfig describes one validated file field.
type FieldConfig struct {
	ID          string `yaml:"id"`
	Label       string `yaml:"label"`
	Value       string `yaml:"value,omitempty"`
	Placeholder string `yaml:"placeholder,omitempty"`
	Overlay     string `yaml:"overlay,omitempty"`
	Placement   string `yaml:"placement,omitempty"` // right, left, top, bottom
	Disabled    bool   `yaml:"disabled,omitempty"`

	// Optional reports that the field may be left empty on submit.
	Optional bool `yaml:"optional,omitempty"`
}

// RuleConfig is the on-disk shape of an existence rule.
type RuleConfig struct {
	Kind       string `yaml:"kind"`                  // exists, file, dir, parent_dir
	Marker     string `yaml:"marker,omitempty"`      // child path that must exist
	Glob       string `yaml:"glob,omitempty"`        // pattern relative to the path
	MinMatches int    `yaml:"min_matches,omitempty"` // glob matches required (default 1)
}

// HostConfig configures the capability provider.
type HostConfig struct {
	// URL of a remote host bridge; empty uses the local filesystem and dialogs.
	URL          string         `yaml:"url,omitempty"`
	CheckTimeout string         `yaml:"check_timeout"`
	DialogTitle  string         `yaml:"dialog_title"`
	StartDir     string         `yaml:"start_dir,omitempty"`
	Filters      []FilterConfig `yaml:"filters,omitempty"`

	// Listen address for `filefield serve`
	ListenAddr string `yaml:"listen_addr"`
}

// FilterConfig is a named set of extensions offered by the picker.
type FilterConfig struct {
	Name       string   `yaml:"name"`
	Extensions []string `yaml:"extensions"`
}

// WatchConfig configures the filesystem watcher.
type WatchConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Debounce string `yaml:"debounce"`
}

// HistoryConfig configures the recent path store.
type HistoryConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
	Limit   int    `yaml:"limit"`
}

var validPlacements = map[string]bool{"": true, "right": true, "left": true, "top": true, "bottom": true}

var validRuleKinds = map[string]bool{"": true, "exists": true, "file": true, "dir": true, "parent_dir": true}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Name:    "filefield",
		Version: "0.3.0",

		Fields: []FieldConfig{
			{
				ID:      "input",
				Label:   "Input file",
				Overlay: "File to read. It must already exist.",
			},
			{
				ID:      "output",
				Label:   "Output file",
				Overlay: "File to write. Its folder must exist.",
			},
		},

		Rules: map[string]RuleConfig{
			"input":  {Kind: "file"},
			"output": {Kind: "parent_dir"},
		},

		Host: HostConfig{
			CheckTimeout: "5s",
			DialogTitle:  "Select a file",
			ListenAddr:   "127.0.0.1:6666",
		},

		Watch: WatchConfig{
			Enabled:  true,
			Debounce: "250ms",
		},

		History: HistoryConfig{
			Enabled: true,
			Path:    "~/.filefield/history.db",
			Limit:   10,
		},

		SettingsPath: "~/.filefield/settings.yaml",

		UI: DefaultUIConfig(),

		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			File:   "~/.filefield/filefield.log",
		},
	}
}

// Load loads configuration from a YAML file.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			// Return defaults if config file doesn't exist
			cfg.applyEnvOverrides()
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.applyEnvOverrides()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save saves configuration to a YAML file.
func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}

// Validate reports configuration mistakes that would make the form unusable.
func (c *Config) Validate() error {
	var errs []error
	seen := make(map[string]bool, len(c.Fields))
	for i, f := range c.Fields {
		if strings.TrimSpace(f.ID) == "" {
			errs = append(errs, fmt.Errorf("fields[%d]: id is required", i))
			continue
		}
		if seen[f.ID] {
			errs = append(errs, fmt.Errorf("fields[%d]: duplicate id %q", i, f.ID))
		}
		seen[f.ID] = true
		if !validPlacements[f.Placement] {
			errs = append(errs, fmt.Errorf("fields[%d]: unknown placement %q", i, f.Placement))
		}
	}
	for name, r := range c.Rules {
		if !validRuleKinds[r.Kind] {
			errs = append(errs, fmt.Errorf("rules.%s: unknown kind %q", name, r.Kind))
		}
		if r.MinMatches < 0 {
			errs = append(errs, fmt.Errorf("rules.%s: min_matches must not be negative", name))
		}
	}
	if c.History.Limit < 0 {
		errs = append(errs, errors.New("history.limit must not be negative"))
	}
	return errors.Join(errs...)
}

// applyEnvOverrides applies environment variable overrides.
func (c *Config) applyEnvOverrides() {
	if url := os.Getenv("FILEFIELD_HOST_URL"); url != "" {
		c.Host.URL = url
	}
	if path := os.Getenv("FILEFIELD_HISTORY_DB"); path != "" {
		c.History.Path = path
	}
	if path := os.Getenv("FILEFIELD_SETTINGS"); path != "" {
		c.SettingsPath = path
	}
	if os.Getenv("FILEFIELD_DARK_MODE") == "1" {
		c.UI.Theme = "dark"
	}
}

// GetCheckTimeout returns the existence check timeout as a duration.
func (c *Config) GetCheckTimeout() time.Duration {
	d, err := time.ParseDuration(c.Host.CheckTimeout)
	if err != nil {
		return 5 * time.Second
	}
	return d
}

// GetWatchDebounce returns the watcher debounce window as a duration.
func (c *Config) GetWatchDebounce() time.Duration {
	d, err := time.ParseDuration(c.Watch.Debounce)
	if err != nil {
		return 250 * time.Millisecond
	}
	return d
}

// ExpandHome replaces a leading "~" with the user's home directory.
func ExpandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}
