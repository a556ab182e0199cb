// Package logging provides config-driven categorized logging for filefield.
// Every category is a named child of one zap logger. When logging is disabled,
// or a category is switched off, Get returns a no-op logger.
package logging

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Category represents a log category/subsystem
type Category string

const (
	CategoryBoot    Category = "boot"    // Startup, config loading
	CategoryField   Category = "field"   // FileField value changes and checks
	CategoryForm    Category = "form"    // Form focus, submit, change events
	CategoryHost    Category = "host"    // Existence rules, picker
	CategoryBridge  Category = "bridge"  // HTTP capability bridge
	CategoryWatch   Category = "watch"   // Filesystem watcher
	CategoryHistory Category = "history" // Recent path store
)

// Config mirrors config.LoggingConfig to avoid an import cycle.
type Config struct {
	Enabled    bool
	Level      string // debug, info, warn, error
	Format     string // json, text
	File       string // empty = stderr
	Categories map[string]bool
}

var (
	base       = zap.NewNop()
	categories map[string]bool
	enabled    bool
	mu         sync.RWMutex
)

// Initialize builds the process logger. It should be called once at startup;
// calling it again replaces the previous logger.
func Initialize(cfg Config) (*zap.Logger, error) {
	mu.Lock()
	defer mu.Unlock()

	if !cfg.Enabled {
		base = zap.NewNop()
		enabled = false
		categories = nil
		return base, nil
	}

	level, err := ParseLevel(cfg.Level)
	if err != nil {
		return nil, err
	}

	zc := zap.NewProductionConfig()
	zc.Level = zap.NewAtomicLevelAt(level)
	zc.Sampling = nil
	if cfg.Format == "text" {
		zc.Encoding = "console"
		zc.EncoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
	}
	zc.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	if cfg.File != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.File), 0755); err != nil {
			return nil, fmt.Errorf("failed to create log directory: %w", err)
		}
		zc.OutputPaths = []string{cfg.File}
		zc.ErrorOutputPaths = []string{cfg.File}
	}

	l, err := zc.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	base = l
	enabled = true
	categories = cfg.Categories
	return base, nil
}

// Use installs an already built logger, e.g. zap.NewNop() or an observer in tests.
func Use(l *zap.Logger) {
	mu.Lock()
	defer mu.Unlock()
	base = l
	enabled = true
	categories = nil
}

// ParseLevel maps a config level string to a zap level. Empty means info.
func ParseLevel(s string) (zapcore.Level, error) {
	switch s {
	case "", "info":
		return zapcore.InfoLevel, nil
	case "debug":
		return zapcore.DebugLevel, nil
	case "warn", "warning":
		return zapcore.WarnLevel, nil
	case "error":
		return zapcore.ErrorLevel, nil
	default:
		return zapcore.InfoLevel, fmt.Errorf("unknown log level %q", s)
	}
}

// IsCategoryEnabled returns whether a specific category is enabled
func IsCategoryEnabled(category Category) bool {
	mu.RLock()
	defer mu.RUnlock()

	if !enabled {
		return false
	}
	if categories == nil {
		return true
	}
	on, exists := categories[string(category)]
	if !exists {
		return true // Enable by default if not specified
	}
	return on
}

// Get returns a logger for the given category.
func Get(category Category) *zap.Logger {
	if !IsCategoryEnabled(category) {
		return zap.NewNop()
	}
	mu.RLock()
	defer mu.RUnlock()
	return base.Named(string(category))
}

// Sync flushes buffered entries. Call at shutdown.
func Sync() {
	mu.RLock()
	l := base
	mu.RUnlock()
	_ = l.Sync()
}
