// Package ui provides the terminal components of filefield: the validated
// file field, the form that hosts it, and a terminal file picker.
package ui

import (
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Color palette
var (
	// Light Mode Colors (Default)
	LightBackground = lipgloss.Color("#f4f5f6")
	LightForeground = lipgloss.Color("#101F38")
	LightPrimary    = lipgloss.Color("#101F38")
	LightAccent     = lipgloss.Color("#8BC34A")
	LightMuted      = lipgloss.Color("#8a93a0")
	LightBorder     = lipgloss.Color("#c4cad2")
	LightCard       = lipgloss.Color("#ffffff")

	// Dark Mode Colors
	DarkBackground = lipgloss.Color("#141d2b")
	DarkForeground = lipgloss.Color("#f2f2f2")
	DarkPrimary    = lipgloss.Color("#8BC34A")
	DarkAccent     = lipgloss.Color("#8BC34A")
	DarkMuted      = lipgloss.Color("#6b7a90")
	DarkBorder     = lipgloss.Color("#2a3850")
	DarkCard       = lipgloss.Color("#1a2536")

	// Semantic Colors (same in both modes)
	Destructive = lipgloss.Color("#e53935")
	Success     = lipgloss.Color("#8BC34A")
	Warning     = lipgloss.Color("#FFC107")
	Info        = lipgloss.Color("#2196F3")
)

// Theme holds the current color scheme
type Theme struct {
	Background lipgloss.Color
	Foreground lipgloss.Color
	Primary    lipgloss.Color
	Accent     lipgloss.Color
	Muted      lipgloss.Color
	Border     lipgloss.Color
	Card       lipgloss.Color
	IsDark     bool
}

// LightTheme returns the light mode theme
func LightTheme() Theme {
	return Theme{
		Background: LightBackground,
		Foreground: LightForeground,
		Primary:    LightPrimary,
		Accent:     LightAccent,
		Muted:      LightMuted,
		Border:     LightBorder,
		Card:       LightCard,
		IsDark:     false,
	}
}

// DarkTheme returns the dark mode theme
func DarkTheme() Theme {
	return Theme{
		Background: DarkBackground,
		Foreground: DarkForeground,
		Primary:    DarkPrimary,
		Accent:     DarkAccent,
		Muted:      DarkMuted,
		Border:     DarkBorder,
		Card:       DarkCard,
		IsDark:     true,
	}
}

// ThemeNamed returns the named theme, detecting from the terminal when name
// is empty or unknown.
func ThemeNamed(name string) Theme {
	switch name {
	case "dark":
		return DarkTheme()
	case "light":
		return LightTheme()
	}
	return DetectTheme()
}

// DetectTheme auto-detects based on terminal or returns light mode
func DetectTheme() Theme {
	if colorTerm := os.Getenv("COLORFGBG"); colorTerm != "" {
		// "foreground;background"; indexes 0-6 and 8 are dark backgrounds
		parts := strings.Split(colorTerm, ";")
		if len(parts) == 2 {
			if bgIdx, err := strconv.Atoi(parts[1]); err == nil {
				if (bgIdx >= 0 && bgIdx <= 6) || bgIdx == 8 {
					return DarkTheme()
				}
			}
		}
	}

	if os.Getenv("FILEFIELD_DARK_MODE") == "1" {
		return DarkTheme()
	}

	return LightTheme()
}

// Styles holds all the styled components
type Styles struct {
	Theme Theme

	// Text
	Title  lipgloss.Style
	Label  lipgloss.Style
	Muted  lipgloss.Style
	Footer lipgloss.Style

	// Field input box, one per status
	Input         lipgloss.Style
	InputFocused  lipgloss.Style
	InputValid    lipgloss.Style
	InputInvalid  lipgloss.Style
	InputChecking lipgloss.Style
	InputDisabled lipgloss.Style

	// Browse button
	Button         lipgloss.Style
	ButtonFocused  lipgloss.Style
	ButtonDisabled lipgloss.Style

	// Hover/focus explanation
	Overlay lipgloss.Style

	// Status
	Success lipgloss.Style
	Error   lipgloss.Style
	Warning lipgloss.Style
	Info    lipgloss.Style
}

// NewStyles creates a new Styles instance with the given theme
func NewStyles(theme Theme) Styles {
	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(theme.Border).
		Padding(0, 1)

	button := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(theme.Border).
		Foreground(theme.Foreground).
		Padding(0, 1)

	return Styles{
		Theme: theme,

		Title: lipgloss.NewStyle().
			Foreground(theme.Primary).
			Bold(true).
			MarginBottom(1),

		Label: lipgloss.NewStyle().
			Foreground(theme.Foreground).
			Bold(true),

		Muted: lipgloss.NewStyle().
			Foreground(theme.Muted),

		Footer: lipgloss.NewStyle().
			Foreground(theme.Muted).
			MarginTop(1),

		Input:         box,
		InputFocused:  box.BorderForeground(theme.Accent),
		InputValid:    box.BorderForeground(Success),
		InputInvalid:  box.BorderForeground(Destructive),
		InputChecking: box.BorderForeground(Warning),
		InputDisabled: box.Foreground(theme.Muted).BorderForeground(theme.Muted),

		Button:        button,
		ButtonFocused: button.BorderForeground(theme.Accent).Foreground(theme.Accent).Bold(true),
		ButtonDisabled: button.
			Foreground(theme.Muted).
			BorderForeground(theme.Muted),

		Overlay: lipgloss.NewStyle().
			Background(theme.Card).
			Foreground(theme.Foreground).
			Border(lipgloss.NormalBorder()).
			BorderForeground(theme.Muted).
			Padding(0, 1).
			MaxWidth(48),

		Success: lipgloss.NewStyle().
			Foreground(Success).
			Bold(true),

		Error: lipgloss.NewStyle().
			Foreground(Destructive).
			Bold(true),

		Warning: lipgloss.NewStyle().
			Foreground(Warning),

		Info: lipgloss.NewStyle().
			Foreground(Info),
	}
}

// DefaultStyles returns styles for the detected theme
func DefaultStyles() Styles {
	return NewStyles(DetectTheme())
}
