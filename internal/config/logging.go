package config

import "filefield/internal/logging"

// LoggingConfig configures logging.
type LoggingConfig struct {
	Level      string          `yaml:"level" json:"level,omitempty"`           // debug, info, warn, error
	Format     string          `yaml:"format" json:"format,omitempty"`         // json, text
	File       string          `yaml:"file" json:"file,omitempty"`             // empty = stderr
	DebugMode  bool            `yaml:"debug_mode" json:"debug_mode,omitempty"` // Master toggle - false = no logging
	Categories map[string]bool `yaml:"categories" json:"categories,omitempty"` // Per-category toggles
}

// IsCategoryEnabled returns whether logging is enabled for a category.
// Returns false if debug_mode is false.
func (c *LoggingConfig) IsCategoryEnabled(category string) bool {
	if !c.DebugMode {
		return false
	}
	if c.Categories == nil {
		return true
	}
	enabled, exists := c.Categories[category]
	if !exists {
		return true
	}
	return enabled
}

// Logging converts the section into the logging package's config.
// verbose forces logging on at debug level.
func (c LoggingConfig) Logging(verbose bool) logging.Config {
	lc := logging.Config{
		Enabled:    c.DebugMode || verbose,
		Level:      c.Level,
		Format:     c.Format,
		File:       ExpandHome(c.File),
		Categories: c.Categories,
	}
	if verbose {
		lc.Level = "debug"
	}
	return lc
}
