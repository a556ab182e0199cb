package ui

import (
	"context"
	"fmt"
	"io"
	"os"

	"filefield/internal/host"

	"github.com/charmbracelet/bubbles/filepicker"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// PickerOptions configure the terminal file picker.
type PickerOptions struct {
	Title      string
	StartDir   string
	Extensions []string // e.g. ".csv"; empty allows every file
	ShowHidden bool
	Styles     *Styles
}

// Picker is a full-screen file browser used when no native dialog exists.
type Picker struct {
	fp       filepicker.Model
	title    string
	styles   Styles
	cancel   key.Binding
	selected string
	err      error
	done     bool
}

// NewPicker creates a picker rooted at opts.StartDir (the working directory
// when empty).
func NewPicker(opts PickerOptions) Picker {
	styles := DefaultStyles()
	if opts.Styles != nil {
		styles = *opts.Styles
	}
	title := opts.Title
	if title == "" {
		title = DefaultPlaceholder
	}

	fp := filepicker.New()
	fp.CurrentDirectory = opts.StartDir
	if fp.CurrentDirectory == "" {
		if wd, err := os.Getwd(); err == nil {
			fp.CurrentDirectory = wd
		}
	}
	fp.AllowedTypes = opts.Extensions
	fp.ShowHidden = opts.ShowHidden
	fp.AutoHeight = true

	return Picker{
		fp:     fp,
		title:  title,
		styles: styles,
		cancel: key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "cancel")),
	}
}

// Init implements tea.Model.
func (m Picker) Init() tea.Cmd {
	return m.fp.Init()
}

// Update implements tea.Model.
func (m Picker) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if k, ok := msg.(tea.KeyMsg); ok && key.Matches(k, m.cancel) {
		m.done = true
		return m, tea.Quit
	}

	var cmd tea.Cmd
	m.fp, cmd = m.fp.Update(msg)

	if ok, path := m.fp.DidSelectFile(msg); ok {
		m.selected = path
		m.done = true
		return m, tea.Quit
	}
	if ok, path := m.fp.DidSelectDisabledFile(msg); ok {
		m.err = fmt.Errorf("%s is not an allowed file type", path)
		return m, cmd
	}
	if _, isKey := msg.(tea.KeyMsg); isKey {
		m.err = nil
	}
	return m, cmd
}

// View implements tea.Model.
func (m Picker) View() string {
	if m.done {
		return ""
	}
	s := m.styles
	parts := []string{
		s.Title.Render(m.title),
		s.Muted.Render(m.fp.CurrentDirectory),
		m.fp.View(),
	}
	if m.err != nil {
		parts = append(parts, s.Error.Render(m.err.Error()))
	}
	parts = append(parts, s.Footer.Render("enter: select  ←/→: folders  q: cancel"))
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

// Selected returns the chosen path, if any.
func (m Picker) Selected() (string, bool) {
	return m.selected, m.selected != ""
}

// TerminalPicker runs a Picker program to satisfy host.Picker.
type TerminalPicker struct {
	Options PickerOptions

	// Input and Output default to the terminal; the picker draws on stderr
	// so stdout stays free for the chosen path.
	Input  io.Reader
	Output io.Writer
}

// Pick blocks until the user chooses a file or cancels.
func (p TerminalPicker) Pick(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	out := p.Output
	if out == nil {
		out = os.Stderr
	}
	opts := []tea.ProgramOption{tea.WithContext(ctx), tea.WithOutput(out)}
	if p.Input != nil {
		opts = append(opts, tea.WithInput(p.Input))
	}

	final, err := tea.NewProgram(NewPicker(p.Options), opts...).Run()
	if ctx.Err() != nil {
		return "", ctx.Err()
	}
	if err != nil {
		return "", fmt.Errorf("terminal picker: %w", err)
	}

	if m, ok := final.(Picker); ok {
		if path, picked := m.Selected(); picked {
			return path, nil
		}
	}
	return "", host.ErrCancelled
}

var _ host.Picker = TerminalPicker{}
