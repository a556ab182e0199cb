package ui

// Layout constants for consistent spacing and dimensions
const (
	FormPaddingH = 2
	FormPaddingV = 1

	// Input box border plus padding, status glyph, and the Browse button
	FieldChrome = 4 + 2
	ButtonWidth = len("Browse...") + 4

	MinFieldWidth     = 16
	DefaultFieldWidth = 48
	HelpWrapWidth     = 80
)

// LayoutConfig provides computed layout dimensions based on terminal size
type LayoutConfig struct {
	TerminalWidth  int
	TerminalHeight int
}

// NewLayoutConfig creates a layout configuration for the given terminal size
func NewLayoutConfig(width, height int) LayoutConfig {
	return LayoutConfig{TerminalWidth: width, TerminalHeight: height}
}

// FieldWidth returns the input width that fits beside the button, capped at
// preferred. An unknown terminal size yields preferred.
func (l LayoutConfig) FieldWidth(preferred int) int {
	if preferred <= 0 {
		preferred = DefaultFieldWidth
	}
	if l.TerminalWidth <= 0 {
		return preferred
	}
	avail := l.TerminalWidth - 2*FormPaddingH - FieldChrome - ButtonWidth
	if avail < MinFieldWidth {
		return MinFieldWidth
	}
	if avail < preferred {
		return avail
	}
	return preferred
}

// HelpWidth returns the word-wrap width for the help page.
func (l LayoutConfig) HelpWidth() int {
	w := l.TerminalWidth - 2*FormPaddingH
	if w <= 0 || w > HelpWrapWidth {
		return HelpWrapWidth
	}
	return w
}
