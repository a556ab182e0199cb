package host

import (
	"context"
	"strings"

	"filefield/internal/config"
	"filefield/internal/logging"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// Local answers capability calls from the local filesystem and a Picker.
type Local struct {
	rules  RuleSet
	picker Picker
	group  singleflight.Group
	logger *zap.Logger
}

// LocalOption configures a Local host.
type LocalOption func(*Local)

// WithPicker sets the file chooser. Without one, PickFile returns ErrCancelled.
func WithPicker(p Picker) LocalOption {
	return func(l *Local) { l.picker = p }
}

// WithLogger overrides the host category logger.
func WithLogger(logger *zap.Logger) LocalOption {
	return func(l *Local) { l.logger = logger }
}

// NewLocal creates a local host using rules to scope existence checks.
func NewLocal(rules RuleSet, opts ...LocalOption) *Local {
	l := &Local{
		rules:  rules,
		logger: logging.Get(logging.CategoryHost),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

type checkResult struct {
	exists bool
}

// FileExists evaluates the rule registered for fieldType. Concurrent calls
// for the same path and type share one filesystem probe.
func (l *Local) FileExists(ctx context.Context, path, fieldType string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	path = config.ExpandHome(strings.TrimSpace(path))
	rule := l.rules.Lookup(fieldType)

	v, err, shared := l.group.Do(fieldType+"\x00"+path, func() (interface{}, error) {
		ok, err := rule.Check(path)
		return checkResult{exists: ok}, err
	})
	if err != nil {
		l.logger.Warn("existence check failed",
			zap.String("path", path), zap.String("type", fieldType), zap.Error(err))
		return false, err
	}
	if err := ctx.Err(); err != nil {
		return false, err
	}

	exists := v.(checkResult).exists
	l.logger.Debug("existence check",
		zap.String("path", path),
		zap.String("type", fieldType),
		zap.String("rule", string(rule.Kind)),
		zap.Bool("exists", exists),
		zap.Bool("shared", shared))
	return exists, nil
}

// PickFile delegates to the configured Picker.
func (l *Local) PickFile(ctx context.Context) (string, error) {
	if l.picker == nil {
		return "", ErrCancelled
	}
	path, err := l.picker.Pick(ctx)
	if err != nil {
		if IsCancelled(err) {
			l.logger.Debug("file selection cancelled")
			return "", ErrCancelled
		}
		l.logger.Error("file selection failed", zap.Error(err))
		return "", err
	}
	if path == "" {
		return "", ErrCancelled
	}
	l.logger.Info("file selected", zap.String("path", path))
	return path, nil
}
