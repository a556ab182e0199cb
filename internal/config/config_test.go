package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	t.Setenv("FILEFIELD_HOST_URL", "")
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "filefield", cfg.Name)
	require.Len(t, cfg.Fields, 2)
	assert.Equal(t, "input", cfg.Fields[0].ID)
	assert.Equal(t, 5*time.Second, cfg.GetCheckTimeout())
	assert.Equal(t, 250*time.Millisecond, cfg.GetWatchDebounce())
}

func TestLoadParsesFieldsAndRules(t *testing.T) {
	path := filepath.Join(t.TempDir(), "filefield.yaml")
	content := `
fields:
  - id: game_dir
    label: Game folder
    placement: bottom
  - id: cemu_dir
    label: Cemu folder
rules:
  game_dir:
    kind: dir
    marker: Pack/Dungeon000.pack
  cemu_dir:
    kind: dir
    glob: "Cemu*.exe"
host:
  check_timeout: 2s
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)

	require.Len(t, cfg.Fields, 2)
	assert.Equal(t, "bottom", cfg.Fields[0].Placement)
	assert.Equal(t, "Pack/Dungeon000.pack", cfg.Rules["game_dir"].Marker)
	assert.Equal(t, "Cemu*.exe", cfg.Rules["cemu_dir"].Glob)
	assert.Equal(t, 2*time.Second, cfg.GetCheckTimeout())
	// Unset sections keep their defaults.
	assert.True(t, cfg.Watch.Enabled)
}

func TestLoadRejectsInvalidConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	content := `
fields:
  - id: a
  - id: a
    placement: diagonal
rules:
  a:
    kind: symlink
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `duplicate id "a"`)
	assert.Contains(t, err.Error(), `unknown placement "diagonal"`)
	assert.Contains(t, err.Error(), `unknown kind "symlink"`)
}

func TestEnvOverrides(t *testing.T) {
	t.Run("host url", func(t *testing.T) {
		t.Setenv("FILEFIELD_HOST_URL", "http://127.0.0.1:9000")
		cfg := DefaultConfig()
		cfg.applyEnvOverrides()
		assert.Equal(t, "http://127.0.0.1:9000", cfg.Host.URL)
	})

	t.Run("dark mode", func(t *testing.T) {
		t.Setenv("FILEFIELD_DARK_MODE", "1")
		cfg := DefaultConfig()
		cfg.applyEnvOverrides()
		assert.True(t, cfg.UI.IsDark())
	})

	t.Run("history and settings paths", func(t *testing.T) {
		t.Setenv("FILEFIELD_HISTORY_DB", "/var/tmp/h.db")
		t.Setenv("FILEFIELD_SETTINGS", "/var/tmp/s.yaml")
		cfg := DefaultConfig()
		cfg.applyEnvOverrides()
		assert.Equal(t, "/var/tmp/h.db", cfg.History.Path)
		assert.Equal(t, "/var/tmp/s.yaml", cfg.SettingsPath)
	})
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "filefield.yaml")
	cfg := DefaultConfig()
	cfg.Fields[0].Placeholder = "Pick the source"

	require.NoError(t, cfg.Save(path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "Pick the source", loaded.Fields[0].Placeholder)
}

func TestSettingsPersistence(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.yaml")

	s, err := LoadSettings(path)
	require.NoError(t, err)
	assert.Empty(t, s.Values)

	s.Values["input"] = "/tmp/a.txt"
	require.NoError(t, SaveSettings(path, s))

	loaded, err := LoadSettings(path)
	require.NoError(t, err)
	assert.Equal(t, "/tmp/a.txt", loaded.Values["input"])

	assert.Equal(t, "/tmp/a.txt", loaded.InitialValue(FieldConfig{ID: "input", Value: "/default"}))
	assert.Equal(t, "/default", loaded.InitialValue(FieldConfig{ID: "output", Value: "/default"}))
}

func TestExpandHome(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(home, "x", "y"), ExpandHome("~/x/y"))
	assert.Equal(t, "/abs/path", ExpandHome("/abs/path"))
	assert.Equal(t, "~user/file", ExpandHome("~user/file"))
}

func TestLoggingSection(t *testing.T) {
	lc := LoggingConfig{Level: "warn", DebugMode: false}
	assert.False(t, lc.Logging(false).Enabled)

	verbose := lc.Logging(true)
	assert.True(t, verbose.Enabled)
	assert.Equal(t, "debug", verbose.Level)

	lc.DebugMode = true
	lc.Categories = map[string]bool{"watch": false}
	assert.False(t, lc.IsCategoryEnabled("watch"))
	assert.True(t, lc.IsCategoryEnabled("host"))
}
