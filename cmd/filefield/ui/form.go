package ui

import (
	"fmt"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"filefield/internal/config"
	"filefield/internal/host"
	"filefield/internal/logging"
	"filefield/internal/watch"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"
)

// PathWatcher reports changes on disk under the paths it is given.
type PathWatcher interface {
	Events() <-chan watch.Event
	Set(paths []string)
}

// FormOptions configure a Form.
type FormOptions struct {
	Title  string
	Fields []config.FieldConfig

	// Settings are the saved values; fields without one use their configured
	// value.
	Settings config.Settings

	// SettingsPath is watched when a Watcher is set. Values saved there by
	// another process are pushed into the fields.
	SettingsPath string

	// Suggestions are recent paths per field ID.
	Suggestions map[string][]string

	FieldWidth   int
	CheckTimeout time.Duration
	Styles       *Styles
	ShowHelp     bool
	StaticCursor bool

	Watcher PathWatcher

	// OnSubmit receives the values once every field is valid. An error keeps
	// the form open.
	OnSubmit func(values map[string]string) error

	Logger *zap.Logger
}

type watchEventMsg watch.Event

type watchClosedMsg struct{}

// Form hosts a column of FileFields and collects their values.
type Form struct {
	title    string
	configs  []config.FieldConfig
	fields   []FileField
	index    map[string]int
	optional map[string]bool
	values   map[string]string
	focus    int

	keys     FormKeyMap
	help     help.Model
	styles   Styles
	layout   LayoutConfig
	showHelp bool
	helpPage string

	watcher      PathWatcher
	watched      []string
	settingsPath string

	onSubmit  func(map[string]string) error
	notice    string
	noticeErr bool
	submitted bool
	quitting  bool

	startup []tea.Cmd
	logger  *zap.Logger
}

// NewForm builds one FileField per configured field.
func NewForm(caps host.Capabilities, opts FormOptions) Form {
	styles := DefaultStyles()
	if opts.Styles != nil {
		styles = *opts.Styles
	}
	logger := opts.Logger
	if logger == nil {
		logger = logging.Get(logging.CategoryForm)
	}
	title := opts.Title
	if title == "" {
		title = "filefield"
	}

	m := Form{
		title:    title,
		configs:  opts.Fields,
		index:    make(map[string]int, len(opts.Fields)),
		optional: make(map[string]bool),
		values:   make(map[string]string, len(opts.Fields)),
		keys:     DefaultFormKeyMap(),
		help:     help.New(),
		styles:   styles,
		showHelp: opts.ShowHelp,
		watcher:  opts.Watcher,
		onSubmit: opts.OnSubmit,
		logger:   logger,
	}
	if opts.SettingsPath != "" {
		m.settingsPath = normalizePath(opts.SettingsPath)
	}

	values := m.values
	onChange := func(e ChangeEvent) {
		values[e.Target.ID] = e.Target.Value
	}

	width := m.layout.FieldWidth(opts.FieldWidth)
	for _, fc := range opts.Fields {
		value := opts.Settings.InitialValue(fc)
		values[fc.ID] = value
		m.optional[fc.ID] = fc.Optional
		m.index[fc.ID] = len(m.fields)

		field := NewFileField(caps, FieldOptions{
			ID:           fc.ID,
			Label:        fc.Label,
			Value:        value,
			IsValid:      true,
			OnChange:     onChange,
			Placeholder:  fc.Placeholder,
			Disabled:     fc.Disabled,
			Width:        width,
			Styles:       &styles,
			Placement:    Placement(fc.Placement),
			Overlay:      fc.Overlay,
			Suggestions:  opts.Suggestions[fc.ID],
			CheckTimeout: opts.CheckTimeout,
			StaticCursor: opts.StaticCursor,
		})
		m.fields = append(m.fields, field)
		m.startup = append(m.startup, field.Init())
	}

	if len(m.fields) > 0 {
		var cmd tea.Cmd
		m.fields[0], cmd = m.fields[0].Focus()
		m.startup = append(m.startup, cmd)
	}
	m.startup = append(m.startup, m.refreshPreconditions())
	m.syncWatcher()
	if m.watcher != nil {
		m.startup = append(m.startup, waitForWatchEvent(m.watcher.Events()))
	}
	if m.showHelp {
		m.helpPage = renderHelp(m.styles.Theme.IsDark, m.layout.HelpWidth())
	}
	return m
}

// Init runs the mount checks and starts listening to the watcher.
func (m Form) Init() tea.Cmd {
	return tea.Batch(m.startup...)
}

func waitForWatchEvent(events <-chan watch.Event) tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-events
		if !ok {
			return watchClosedMsg{}
		}
		return watchEventMsg(ev)
	}
}

// Update implements tea.Model.
func (m Form) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		return m.resize(msg), nil

	case CheckResultMsg:
		return m.route(msg.FieldID, msg)

	case PickResultMsg:
		return m.route(msg.FieldID, msg)

	case pasteResultMsg:
		return m.route(msg.fieldID, msg)

	case watchEventMsg:
		return m.handleWatchEvent(watch.Event(msg))

	case watchClosedMsg:
		m.watcher = nil
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	return m.routeFocused(msg)
}

func (m Form) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.showHelp {
		switch {
		case key.Matches(msg, m.keys.Help), msg.String() == "esc":
			m.showHelp = false
			return m, nil
		case msg.String() == "ctrl+c":
			return m.quit()
		}
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m.quit()
	case key.Matches(msg, m.keys.Help):
		m.showHelp = true
		if m.helpPage == "" {
			m.helpPage = renderHelp(m.styles.Theme.IsDark, m.layout.HelpWidth())
		}
		return m, nil
	case key.Matches(msg, m.keys.Next):
		return m.focusNext()
	case key.Matches(msg, m.keys.Prev):
		return m.focusPrev()
	case key.Matches(msg, m.keys.Submit):
		return m.submit()
	}

	return m.routeFocused(msg)
}

func (m Form) resize(msg tea.WindowSizeMsg) Form {
	m.layout = NewLayoutConfig(msg.Width, msg.Height)
	m.help.Width = msg.Width
	if m.helpPage != "" {
		m.helpPage = renderHelp(m.styles.Theme.IsDark, m.layout.HelpWidth())
	}
	return m
}

// route delivers a field-addressed message and reacts to value changes.
func (m Form) route(id string, msg tea.Msg) (tea.Model, tea.Cmd) {
	i, ok := m.index[id]
	if !ok {
		m.logger.Debug("message for unknown field", zap.String("field", id))
		return m, nil
	}
	var cmd tea.Cmd
	m.fields[i], cmd = m.fields[i].Update(msg)
	follow := m.afterChange()
	return m, tea.Batch(cmd, follow)
}

func (m Form) routeFocused(msg tea.Msg) (tea.Model, tea.Cmd) {
	if len(m.fields) == 0 {
		return m, nil
	}
	before := m.fields[m.focus].Value()
	var cmd tea.Cmd
	m.fields[m.focus], cmd = m.fields[m.focus].Update(msg)
	_, isKey := msg.(tea.KeyMsg)
	if isKey {
		m.notice = ""
	}
	if !isKey && m.fields[m.focus].Value() == before {
		return m, cmd
	}
	follow := m.afterChange()
	return m, tea.Batch(cmd, follow)
}

// afterChange re-derives preconditions and watched paths from the values.
func (m *Form) afterChange() tea.Cmd {
	cmd := m.refreshPreconditions()
	m.syncWatcher()
	return cmd
}

// refreshPreconditions rejects a value that repeats an earlier field's path.
func (m *Form) refreshPreconditions() tea.Cmd {
	seen := make(map[string]string, len(m.fields))
	var cmds []tea.Cmd
	for i := range m.fields {
		ok := true
		if v := m.fields[i].Value(); strings.TrimSpace(v) != "" {
			p := normalizePath(v)
			if other, dup := seen[p]; dup {
				ok = false
				m.logger.Debug("duplicate path", zap.String("field", m.fields[i].ID()), zap.String("other", other))
			} else {
				seen[p] = m.fields[i].ID()
			}
		}
		var cmd tea.Cmd
		m.fields[i], cmd = m.fields[i].SetValid(ok)
		cmds = append(cmds, cmd)
	}
	return tea.Batch(cmds...)
}

func (m *Form) syncWatcher() {
	if m.watcher == nil {
		return
	}
	paths := make([]string, 0, len(m.fields)+1)
	if m.settingsPath != "" {
		paths = append(paths, m.settingsPath)
	}
	for _, f := range m.fields {
		if strings.TrimSpace(f.Value()) != "" {
			paths = append(paths, normalizePath(f.Value()))
		}
	}
	slices.Sort(paths)
	paths = slices.Compact(paths)
	if slices.Equal(paths, m.watched) {
		return
	}
	m.watched = paths
	m.watcher.Set(paths)
}

func (m Form) handleWatchEvent(ev watch.Event) (tea.Model, tea.Cmd) {
	cmds := []tea.Cmd{}
	if m.watcher != nil {
		cmds = append(cmds, waitForWatchEvent(m.watcher.Events()))
	}
	target := filepath.Clean(ev.Path)
	if m.settingsPath != "" && target == m.settingsPath {
		cmds = append(cmds, m.reloadSettings())
	}
	for i := range m.fields {
		if strings.TrimSpace(m.fields[i].Value()) == "" || normalizePath(m.fields[i].Value()) != target {
			continue
		}
		m.logger.Debug("path changed on disk, rechecking",
			zap.String("field", m.fields[i].ID()), zap.String("op", ev.Op))
		var cmd tea.Cmd
		m.fields[i], cmd = m.fields[i].Recheck()
		cmds = append(cmds, cmd)
	}
	return m, tea.Batch(cmds...)
}

// reloadSettings pushes values saved by another process into the fields.
func (m *Form) reloadSettings() tea.Cmd {
	saved, err := config.LoadSettings(m.settingsPath)
	if err != nil {
		m.logger.Warn("settings reload failed", zap.Error(err))
		return nil
	}
	var cmds []tea.Cmd
	for i, fc := range m.configs {
		var cmd tea.Cmd
		m.fields[i], cmd = m.fields[i].SetValue(saved.InitialValue(fc))
		cmds = append(cmds, cmd)
	}
	cmds = append(cmds, m.afterChange())
	return tea.Batch(cmds...)
}

func (m Form) focusNext() (tea.Model, tea.Cmd) {
	if len(m.fields) == 0 {
		return m, nil
	}
	f, stayed := m.fields[m.focus].FocusNext()
	m.fields[m.focus] = f
	if stayed {
		return m, nil
	}
	m.focus = (m.focus + 1) % len(m.fields)
	var cmd tea.Cmd
	m.fields[m.focus], cmd = m.fields[m.focus].Focus()
	return m, cmd
}

func (m Form) focusPrev() (tea.Model, tea.Cmd) {
	if len(m.fields) == 0 {
		return m, nil
	}
	f, cmd, stayed := m.fields[m.focus].FocusPrev()
	m.fields[m.focus] = f
	if stayed {
		return m, cmd
	}
	m.focus = (m.focus - 1 + len(m.fields)) % len(m.fields)
	m.fields[m.focus], cmd = m.fields[m.focus].FocusEnd()
	return m, cmd
}

func (m Form) submit() (tea.Model, tea.Cmd) {
	var invalid []string
	for _, f := range m.fields {
		if f.Disabled() {
			continue
		}
		if m.optional[f.ID()] && strings.TrimSpace(f.Value()) == "" {
			continue
		}
		if !f.Valid() {
			invalid = append(invalid, f.ID())
		}
	}
	if len(invalid) > 0 {
		m.notice = "cannot save, not valid: " + strings.Join(invalid, ", ")
		m.noticeErr = true
		m.logger.Info("submit rejected", zap.Strings("invalid", invalid))
		return m, nil
	}

	values := m.Values()
	if m.onSubmit != nil {
		if err := m.onSubmit(values); err != nil {
			m.notice = fmt.Sprintf("save failed: %v", err)
			m.noticeErr = true
			m.logger.Error("submit failed", zap.Error(err))
			return m, nil
		}
	}

	m.logger.Info("submitted", zap.Int("fields", len(values)))
	m.submitted = true
	m.notice = "saved"
	m.noticeErr = false
	m.closeFields()
	return m, tea.Quit
}

func (m Form) quit() (tea.Model, tea.Cmd) {
	m.quitting = true
	m.closeFields()
	return m, tea.Quit
}

func (m *Form) closeFields() {
	for i := range m.fields {
		m.fields[i] = m.fields[i].Close()
	}
}

// Values returns a copy of the latest value of every field.
func (m Form) Values() map[string]string {
	out := make(map[string]string, len(m.values))
	for k, v := range m.values {
		out[k] = v
	}
	return out
}

// Field returns the field with the given ID.
func (m Form) Field(id string) (FileField, bool) {
	i, ok := m.index[id]
	if !ok {
		return FileField{}, false
	}
	return m.fields[i], true
}

// Submitted reports whether the values were saved.
func (m Form) Submitted() bool { return m.submitted }

// Notice returns the last status message and whether it is an error.
func (m Form) Notice() (string, bool) { return m.notice, m.noticeErr }

// View implements tea.Model.
func (m Form) View() string {
	if m.quitting {
		return ""
	}
	s := m.styles

	if m.showHelp {
		return lipgloss.NewStyle().Padding(FormPaddingV, FormPaddingH).Render(
			lipgloss.JoinVertical(lipgloss.Left, m.helpPage, s.Footer.Render("f1/esc: back")))
	}

	parts := []string{s.Title.Render(m.title)}
	for i, f := range m.fields {
		if i > 0 {
			parts = append(parts, "")
		}
		parts = append(parts, f.View())
	}
	if m.notice != "" {
		style := s.Success
		if m.noticeErr {
			style = s.Error
		}
		parts = append(parts, "", style.Render(m.notice))
	}
	parts = append(parts, s.Footer.Render(m.help.View(m.keys)))

	return lipgloss.NewStyle().Padding(FormPaddingV, FormPaddingH).Render(
		lipgloss.JoinVertical(lipgloss.Left, parts...))
}

func normalizePath(p string) string {
	return filepath.Clean(config.ExpandHome(strings.TrimSpace(p)))
}
