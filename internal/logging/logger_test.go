package logging

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestInitializeDisabledIsNoop(t *testing.T) {
	_, err := Initialize(Config{Enabled: false})
	require.NoError(t, err)

	assert.False(t, IsCategoryEnabled(CategoryField))
	assert.False(t, Get(CategoryField).Core().Enabled(zapcore.ErrorLevel))
}

func TestInitializeWritesToFile(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "logs", "filefield.log")

	_, err := Initialize(Config{
		Enabled: true,
		Level:   "debug",
		Format:  "json",
		File:    logPath,
	})
	require.NoError(t, err)
	defer Use(zap.NewNop())

	Get(CategoryHost).Info("checked path", zap.String("path", "/tmp/a.txt"))
	Sync()

	data, err := os.ReadFile(logPath)
	require.NoError(t, err)
	content := string(data)
	assert.True(t, strings.Contains(content, `"logger":"host"`), "missing category name: %s", content)
	assert.True(t, strings.Contains(content, "/tmp/a.txt"), "missing field: %s", content)
}

func TestCategoryFilter(t *testing.T) {
	_, err := Initialize(Config{
		Enabled:    true,
		Level:      "info",
		File:       filepath.Join(t.TempDir(), "f.log"),
		Categories: map[string]bool{"watch": false, "field": true},
	})
	require.NoError(t, err)
	defer Use(zap.NewNop())

	assert.False(t, IsCategoryEnabled(CategoryWatch))
	assert.True(t, IsCategoryEnabled(CategoryField))
	assert.True(t, IsCategoryEnabled(CategoryBridge), "unlisted categories default to enabled")
}

func TestUseRoutesThroughObserver(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	Use(zap.New(core))
	defer Use(zap.NewNop())

	Get(CategoryForm).Debug("focus moved", zap.Int("index", 2))

	entries := logs.All()
	require.Len(t, entries, 1)
	assert.Equal(t, "form", entries[0].LoggerName)
	assert.Equal(t, "focus moved", entries[0].Message)
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    zapcore.Level
		wantErr bool
	}{
		{"", zapcore.InfoLevel, false},
		{"debug", zapcore.DebugLevel, false},
		{"warning", zapcore.WarnLevel, false},
		{"error", zapcore.ErrorLevel, false},
		{"loud", zapcore.InfoLevel, true},
	}
	for _, tt := range tests {
		got, err := ParseLevel(tt.in)
		if tt.wantErr {
			assert.Error(t, err, tt.in)
			continue
		}
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}
}
