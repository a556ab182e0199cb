package ui

import "github.com/charmbracelet/bubbles/key"

// FieldKeyMap are the bindings a FileField handles itself.
type FieldKeyMap struct {
	Browse   key.Binding
	Activate key.Binding
	CopyPath key.Binding
	Paste    key.Binding
}

// DefaultFieldKeyMap returns the standard field bindings.
func DefaultFieldKeyMap() FieldKeyMap {
	return FieldKeyMap{
		Browse: key.NewBinding(
			key.WithKeys("ctrl+o"),
			key.WithHelp("ctrl+o", "browse"),
		),
		Activate: key.NewBinding(
			key.WithKeys("enter", " "),
			key.WithHelp("enter", "press button"),
		),
		CopyPath: key.NewBinding(
			key.WithKeys("ctrl+y"),
			key.WithHelp("ctrl+y", "copy path"),
		),
		Paste: key.NewBinding(
			key.WithKeys("ctrl+v"),
			key.WithHelp("ctrl+v", "paste"),
		),
	}
}

// FormKeyMap are the bindings the Form handles.
type FormKeyMap struct {
	Next   key.Binding
	Prev   key.Binding
	Submit key.Binding
	Help   key.Binding
	Quit   key.Binding

	Field FieldKeyMap
}

// DefaultFormKeyMap returns the standard form bindings.
func DefaultFormKeyMap() FormKeyMap {
	return FormKeyMap{
		Next: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "next"),
		),
		Prev: key.NewBinding(
			key.WithKeys("shift+tab"),
			key.WithHelp("shift+tab", "previous"),
		),
		Submit: key.NewBinding(
			key.WithKeys("ctrl+s"),
			key.WithHelp("ctrl+s", "save"),
		),
		Help: key.NewBinding(
			key.WithKeys("f1"),
			key.WithHelp("f1", "help"),
		),
		Quit: key.NewBinding(
			key.WithKeys("esc", "ctrl+c"),
			key.WithHelp("esc", "quit"),
		),
		Field: DefaultFieldKeyMap(),
	}
}

// ShortHelp implements help.KeyMap.
func (k FormKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Next, k.Field.Browse, k.Submit, k.Help, k.Quit}
}

// FullHelp implements help.KeyMap.
func (k FormKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Next, k.Prev},
		{k.Field.Browse, k.Field.Activate, k.Field.CopyPath, k.Field.Paste},
		{k.Submit, k.Help, k.Quit},
	}
}
