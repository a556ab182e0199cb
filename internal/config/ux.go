package config

// UIConfig holds user interface configuration.
type UIConfig struct {
	// Theme is "light" or "dark"; empty means detect from the terminal.
	Theme string `json:"theme,omitempty" yaml:"theme,omitempty"`

	// FieldWidth is the width of each path input in cells.
	FieldWidth int `json:"field_width,omitempty" yaml:"field_width,omitempty"`

	// ShowHelp opens the help page on start.
	ShowHelp bool `json:"show_help,omitempty" yaml:"show_help,omitempty"`

	// StaticCursor disables cursor blinking in path inputs.
	StaticCursor bool `json:"static_cursor,omitempty" yaml:"static_cursor,omitempty"`
}

// DefaultUIConfig returns sensible UI defaults.
func DefaultUIConfig() UIConfig {
	return UIConfig{
		FieldWidth: 48,
	}
}

// IsDark reports whether the dark palette was requested explicitly.
func (u UIConfig) IsDark() bool {
	return u.Theme == "dark"
}
