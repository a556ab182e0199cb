package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Settings are the confirmed field values, keyed by field ID.
type Settings struct {
	Values map[string]string `yaml:"values"`
}

// LoadSettings reads saved values. A missing file yields empty settings.
func LoadSettings(path string) (Settings, error) {
	s := Settings{Values: map[string]string{}}

	data, err := os.ReadFile(ExpandHome(path))
	if os.IsNotExist(err) {
		return s, nil
	}
	if err != nil {
		return s, fmt.Errorf("failed to read settings: %w", err)
	}
	if err := yaml.Unmarshal(data, &s); err != nil {
		return s, fmt.Errorf("failed to parse settings: %w", err)
	}
	if s.Values == nil {
		s.Values = map[string]string{}
	}
	return s, nil
}

// SaveSettings writes values atomically (temp file + rename).
func SaveSettings(path string, s Settings) error {
	path = ExpandHome(path)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create settings directory: %w", err)
	}

	data, err := yaml.Marshal(s)
	if err != nil {
		return fmt.Errorf("failed to marshal settings: %w", err)
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("failed to write settings: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("failed to replace settings: %w", err)
	}
	return nil
}

// InitialValue returns the saved value for a field, falling back to the
// configured default.
func (s Settings) InitialValue(f FieldConfig) string {
	if v, ok := s.Values[f.ID]; ok {
		return v
	}
	return f.Value
}
