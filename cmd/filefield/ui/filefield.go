package ui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"filefield/internal/host"
	"filefield/internal/logging"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"
)

// Package-level variables to allow mocking in tests.
var (
	clipboardWriteAll = clipboard.WriteAll
	clipboardReadAll  = clipboard.ReadAll
)

// DefaultPlaceholder is shown in an empty field.
const DefaultPlaceholder = "Select a file"

const defaultCheckTimeout = 5 * time.Second

// Status is the outcome of the latest existence check.
type Status int

const (
	StatusUnchecked Status = iota
	StatusChecking
	StatusExists
	StatusMissing
	StatusCheckFailed
)

func (s Status) String() string {
	switch s {
	case StatusChecking:
		return "checking"
	case StatusExists:
		return "exists"
	case StatusMissing:
		return "missing"
	case StatusCheckFailed:
		return "check failed"
	default:
		return "unchecked"
	}
}

// Placement positions the overlay relative to the input row.
type Placement string

const (
	PlacementRight  Placement = "right"
	PlacementLeft   Placement = "left"
	PlacementTop    Placement = "top"
	PlacementBottom Placement = "bottom"
)

// ChangeTarget identifies the field that changed and its new value.
type ChangeTarget struct {
	ID    string
	Value string
}

// ChangeEvent is delivered to OnChange; it has the shape of a form input
// change event so generic form handlers can consume it.
type ChangeEvent struct {
	Target ChangeTarget
}

// FieldOptions configure a FileField.
type FieldOptions struct {
	// ID is the field identity, used as the type of every existence check.
	ID    string
	Label string

	// Value is the initial path.
	Value string

	// IsValid is the parent's precondition; existence alone does not make
	// the field valid.
	IsValid bool

	// OnChange is called once per value change, from Update.
	OnChange func(ChangeEvent)

	Placeholder string // default DefaultPlaceholder
	Disabled    bool
	Width       int
	Styles      *Styles
	Placement   Placement // default PlacementRight
	Overlay     string

	// Suggestions are offered as completions while typing.
	Suggestions []string

	CheckTimeout time.Duration

	// StaticCursor turns off cursor blinking.
	StaticCursor bool

	Logger *zap.Logger
}

// CheckResultMsg carries a settled existence check back to its field.
type CheckResultMsg struct {
	FieldID string
	Seq     uint64
	Path    string
	Exists  bool
	Err     error
}

// PickResultMsg carries the picker outcome back to its field.
type PickResultMsg struct {
	FieldID string
	Path    string
	Err     error
}

// pasteResultMsg carries clipboard text read for a ctrl+v.
type pasteResultMsg struct {
	fieldID string
	text    string
	err     error
}

type focusTarget int

const (
	focusInput focusTarget = iota
	focusButton
)

// FileField is a text input plus a "Browse..." button whose value is
// validated against the host on every change.
type FileField struct {
	id     string
	label  string
	caps   host.Capabilities
	keys   FieldKeyMap
	styles Styles
	input  textinput.Model

	value    string
	isValid  bool
	valid    bool
	status   Status
	checkErr error
	pickErr  error
	picking  bool

	// seq identifies the latest issued check; results carrying another
	// sequence number are discarded.
	seq          uint64
	cancel       context.CancelFunc
	pickCancel   context.CancelFunc
	checkTimeout time.Duration
	mountCmd     tea.Cmd

	focused bool
	focus   focusTarget

	onChange    func(ChangeEvent)
	placeholder string
	disabled    bool
	placement   Placement
	overlay     string

	logger *zap.Logger
}

// NewFileField creates a field holding opts.Value. The mount check is
// returned by Init.
func NewFileField(caps host.Capabilities, opts FieldOptions) FileField {
	styles := DefaultStyles()
	if opts.Styles != nil {
		styles = *opts.Styles
	}
	placeholder := opts.Placeholder
	if placeholder == "" {
		placeholder = DefaultPlaceholder
	}
	placement := opts.Placement
	if placement == "" {
		placement = PlacementRight
	}
	timeout := opts.CheckTimeout
	if timeout <= 0 {
		timeout = defaultCheckTimeout
	}
	logger := opts.Logger
	if logger == nil {
		logger = logging.Get(logging.CategoryField)
	}
	width := opts.Width
	if width <= 0 {
		width = 40
	}

	ti := textinput.New()
	ti.Prompt = ""
	ti.Placeholder = placeholder
	ti.Width = width
	ti.SetValue(opts.Value)
	ti.KeyMap.AcceptSuggestion = key.NewBinding(key.WithKeys("right"))
	ti.KeyMap.Paste.SetEnabled(false)
	if opts.StaticCursor {
		ti.Cursor.SetMode(cursor.CursorStatic)
	}
	if len(opts.Suggestions) > 0 {
		ti.SetSuggestions(opts.Suggestions)
		ti.ShowSuggestions = true
	}

	m := FileField{
		id:           opts.ID,
		label:        opts.Label,
		caps:         caps,
		keys:         DefaultFieldKeyMap(),
		styles:       styles,
		input:        ti,
		value:        opts.Value,
		isValid:      opts.IsValid,
		checkTimeout: timeout,
		onChange:     opts.OnChange,
		placeholder:  placeholder,
		disabled:     opts.Disabled,
		placement:    placement,
		overlay:      opts.Overlay,
		logger:       logger.With(zap.String("field", opts.ID)),
	}
	m.mountCmd = m.beginCheck()
	return m
}

// Init issues the mount existence check for the initial value.
func (m FileField) Init() tea.Cmd {
	return m.mountCmd
}

// Update handles check results, picker results and keys.
func (m FileField) Update(msg tea.Msg) (FileField, tea.Cmd) {
	switch msg := msg.(type) {
	case CheckResultMsg:
		if msg.FieldID != m.id {
			return m, nil
		}
		return m.applyCheck(msg), nil

	case PickResultMsg:
		if msg.FieldID != m.id {
			return m, nil
		}
		return m.applyPick(msg)

	case pasteResultMsg:
		if msg.fieldID != m.id {
			return m, nil
		}
		return m.applyPaste(msg)

	case tea.KeyMsg:
		if !m.focused || m.disabled {
			return m, nil
		}
		return m.handleKey(msg)
	}

	if m.focused && m.focus == focusInput {
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m.syncInput(cmd)
	}
	return m, nil
}

func (m FileField) handleKey(msg tea.KeyMsg) (FileField, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Browse):
		return m.browse()
	case key.Matches(msg, m.keys.CopyPath):
		m.copyPath()
		return m, nil
	case m.focus == focusButton && key.Matches(msg, m.keys.Activate):
		return m.browse()
	}

	if m.focus == focusButton {
		return m, nil
	}
	if key.Matches(msg, m.keys.Paste) {
		return m, m.paste()
	}

	var inputCmd tea.Cmd
	m.input, inputCmd = m.input.Update(msg)
	return m.syncInput(inputCmd)
}

// syncInput adopts the input's text as the value when an update changed it.
func (m FileField) syncInput(inputCmd tea.Cmd) (FileField, tea.Cmd) {
	typed := m.input.Value()
	if typed == m.value {
		return m, inputCmd
	}
	var checkCmd tea.Cmd
	m, checkCmd = m.setValue(typed)
	return m, tea.Batch(inputCmd, checkCmd)
}

func (m FileField) paste() tea.Cmd {
	id := m.id
	return func() tea.Msg {
		text, err := clipboardReadAll()
		return pasteResultMsg{fieldID: id, text: text, err: err}
	}
}

// applyPaste inserts clipboard text at the cursor. Line breaks are dropped.
func (m FileField) applyPaste(msg pasteResultMsg) (FileField, tea.Cmd) {
	if msg.err != nil {
		m.logger.Warn("paste from clipboard failed", zap.Error(msg.err))
		return m, nil
	}
	text := strings.NewReplacer("\r", "", "\n", "").Replace(msg.text)
	if text == "" || m.disabled {
		return m, nil
	}

	current := []rune(m.input.Value())
	pos := min(max(m.input.Position(), 0), len(current))
	next := string(current[:pos]) + text + string(current[pos:])
	m.input.SetValue(next)
	m.input.SetCursor(pos + len([]rune(text)))
	return m.syncInput(nil)
}

// SetValue adopts a value supplied by the parent. The same value is a no-op.
func (m FileField) SetValue(v string) (FileField, tea.Cmd) {
	if v == m.value {
		return m, nil
	}
	return m.setValue(v)
}

// SetValid updates the parent precondition. false clears validity at once;
// true re-runs the existence check unless one is already in flight, whose
// result is then judged against the new precondition.
func (m FileField) SetValid(ok bool) (FileField, tea.Cmd) {
	if ok == m.isValid {
		return m, nil
	}
	m.isValid = ok
	if !ok {
		m.valid = false
		return m, nil
	}
	if m.status == StatusChecking {
		return m, nil
	}
	cmd := m.beginCheck()
	return m, cmd
}

// Recheck validates the current value again, e.g. after a change on disk.
func (m FileField) Recheck() (FileField, tea.Cmd) {
	cmd := m.beginCheck()
	return m, cmd
}

// Close cancels in-flight work. Results still in flight are ignored.
func (m FileField) Close() FileField {
	if m.cancel != nil {
		m.cancel()
		m.cancel = nil
	}
	if m.pickCancel != nil {
		m.pickCancel()
		m.pickCancel = nil
	}
	m.seq++
	m.picking = false
	return m
}

// setValue is the single path for value changes: one OnChange, one check.
func (m FileField) setValue(v string) (FileField, tea.Cmd) {
	m.value = v
	if m.input.Value() != v {
		m.input.SetValue(v)
		m.input.CursorEnd()
	}
	m.logger.Debug("value changed", zap.String("value", v))
	if m.onChange != nil {
		m.onChange(ChangeEvent{Target: ChangeTarget{ID: m.id, Value: v}})
	}
	cmd := m.beginCheck()
	return m, cmd
}

func (m *FileField) beginCheck() tea.Cmd {
	if m.cancel != nil {
		m.cancel()
	}
	ctx, cancel := context.WithCancel(context.Background())
	m.cancel = cancel
	m.seq++
	m.status = StatusChecking
	m.valid = false
	m.checkErr = nil

	caps, id, seq, path, timeout := m.caps, m.id, m.seq, m.value, m.checkTimeout
	return func() tea.Msg {
		cctx, done := context.WithTimeout(ctx, timeout)
		defer done()
		exists, err := caps.FileExists(cctx, path, id)
		return CheckResultMsg{FieldID: id, Seq: seq, Path: path, Exists: exists, Err: err}
	}
}

func (m FileField) applyCheck(msg CheckResultMsg) FileField {
	if msg.Seq != m.seq {
		m.logger.Debug("stale check dropped", zap.Uint64("seq", msg.Seq), zap.Uint64("latest", m.seq))
		return m
	}
	if m.cancel != nil {
		m.cancel()
		m.cancel = nil
	}

	if msg.Err != nil {
		m.status = StatusCheckFailed
		m.checkErr = msg.Err
		m.valid = false
		m.logger.Warn("existence check failed", zap.String("path", msg.Path), zap.Error(msg.Err))
		return m
	}

	if msg.Exists {
		m.status = StatusExists
	} else {
		m.status = StatusMissing
	}
	m.valid = msg.Exists && m.isValid
	m.logger.Debug("existence checked",
		zap.String("path", msg.Path), zap.Bool("exists", msg.Exists), zap.Bool("valid", m.valid))
	return m
}

func (m FileField) browse() (FileField, tea.Cmd) {
	if m.picking || m.disabled {
		return m, nil
	}
	ctx, cancel := context.WithCancel(context.Background())
	m.pickCancel = cancel
	m.picking = true
	m.pickErr = nil

	caps, id := m.caps, m.id
	return m, func() tea.Msg {
		defer cancel()
		path, err := caps.PickFile(ctx)
		return PickResultMsg{FieldID: id, Path: path, Err: err}
	}
}

func (m FileField) applyPick(msg PickResultMsg) (FileField, tea.Cmd) {
	m.picking = false
	m.pickCancel = nil

	switch {
	case host.IsCancelled(msg.Err), msg.Err == nil && msg.Path == "":
		m.logger.Debug("browse cancelled")
		return m, nil
	case msg.Err != nil:
		m.pickErr = msg.Err
		m.logger.Warn("browse failed", zap.Error(msg.Err))
		return m, nil
	}
	m.pickErr = nil
	return m.setValue(msg.Path)
}

func (m FileField) copyPath() {
	if m.value == "" {
		return
	}
	if err := clipboardWriteAll(m.value); err != nil {
		m.logger.Warn("copy to clipboard failed", zap.Error(err))
	}
}

// Focus gives the field keyboard focus on its text input.
func (m FileField) Focus() (FileField, tea.Cmd) {
	m.focused = true
	m.focus = focusInput
	cmd := m.input.Focus()
	return m, cmd
}

// FocusEnd gives the field focus on its button (entering from below).
// Disabled fields focus their input instead.
func (m FileField) FocusEnd() (FileField, tea.Cmd) {
	if m.disabled {
		return m.Focus()
	}
	m.focused = true
	m.focus = focusButton
	m.input.Blur()
	return m, nil
}

// Blur removes keyboard focus.
func (m FileField) Blur() FileField {
	m.focused = false
	m.focus = focusInput
	m.input.Blur()
	return m
}

// FocusNext moves input -> button. It reports false when focus leaves the field.
func (m FileField) FocusNext() (FileField, bool) {
	if m.focused && m.focus == focusInput && !m.disabled {
		m.focus = focusButton
		m.input.Blur()
		return m, true
	}
	return m.Blur(), false
}

// FocusPrev moves button -> input. It reports false when focus leaves the field.
func (m FileField) FocusPrev() (FileField, tea.Cmd, bool) {
	if m.focused && m.focus == focusButton {
		m.focus = focusInput
		cmd := m.input.Focus()
		return m, cmd, true
	}
	return m.Blur(), nil, false
}

// ID returns the field identity.
func (m FileField) ID() string { return m.id }

// Value returns the current path.
func (m FileField) Value() string { return m.value }

// Valid reports the derived validity.
func (m FileField) Valid() bool { return m.valid }

// IsValid returns the parent precondition.
func (m FileField) IsValid() bool { return m.isValid }

// Status returns the latest check status.
func (m FileField) Status() Status { return m.status }

// Err returns the error of a failed check.
func (m FileField) Err() error { return m.checkErr }

// PickErr returns the error of a failed browse.
func (m FileField) PickErr() error { return m.pickErr }

// Focused reports whether the field has keyboard focus.
func (m FileField) Focused() bool { return m.focused }

// ButtonFocused reports whether focus is on the Browse button.
func (m FileField) ButtonFocused() bool { return m.focused && m.focus == focusButton }

// Picking reports whether a browse is in progress.
func (m FileField) Picking() bool { return m.picking }

// Disabled reports whether the field ignores input.
func (m FileField) Disabled() bool { return m.disabled }

// View renders the label, input row, overlay and status line.
func (m FileField) View() string {
	s := m.styles

	label := m.label
	if label == "" {
		label = m.id
	}

	box := m.inputStyle().Render(lipgloss.JoinHorizontal(lipgloss.Center, m.input.View(), " ", m.indicator()))

	btnStyle := s.Button
	switch {
	case m.disabled:
		btnStyle = s.ButtonDisabled
	case m.ButtonFocused():
		btnStyle = s.ButtonFocused
	}
	row := lipgloss.JoinHorizontal(lipgloss.Center, box, " ", btnStyle.Render("Browse..."))

	if m.focused && m.overlay != "" {
		row = m.placeOverlay(row, s.Overlay.Render(m.overlay))
	}

	parts := []string{s.Label.Render(label), row}
	if line := m.statusLine(); line != "" {
		parts = append(parts, line)
	}
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func (m FileField) inputStyle() lipgloss.Style {
	s := m.styles
	switch {
	case m.disabled:
		return s.InputDisabled
	case m.status == StatusChecking:
		return s.InputChecking
	case m.valid:
		return s.InputValid
	case m.status == StatusMissing, m.status == StatusCheckFailed, m.status == StatusExists:
		return s.InputInvalid
	case m.focused:
		return s.InputFocused
	}
	return s.Input
}

func (m FileField) indicator() string {
	s := m.styles
	switch {
	case m.status == StatusChecking:
		return s.Warning.Render("…")
	case m.valid:
		return s.Success.Render("✓")
	case m.status == StatusCheckFailed:
		return s.Error.Render("!")
	case m.status == StatusMissing, m.status == StatusExists:
		return s.Error.Render("✗")
	}
	return " "
}

func (m FileField) statusLine() string {
	s := m.styles
	switch {
	case m.pickErr != nil:
		return s.Error.Render(fmt.Sprintf("browse failed: %v", m.pickErr))
	case m.status == StatusCheckFailed:
		msg := "check failed"
		if m.checkErr != nil {
			msg = fmt.Sprintf("check failed: %v", m.checkErr)
			if errors.Is(m.checkErr, context.DeadlineExceeded) {
				msg = "check failed: host did not answer in time"
			}
		}
		return s.Error.Render(msg)
	case m.status == StatusMissing && m.value != "":
		return s.Muted.Render("not found")
	case m.status == StatusExists && !m.isValid:
		return s.Muted.Render("not accepted")
	case m.picking:
		return s.Info.Render("waiting for file selection…")
	}
	return ""
}

func (m FileField) placeOverlay(row, tip string) string {
	switch m.placement {
	case PlacementLeft:
		return lipgloss.JoinHorizontal(lipgloss.Top, tip, " ", row)
	case PlacementTop:
		return lipgloss.JoinVertical(lipgloss.Left, tip, row)
	case PlacementBottom:
		return lipgloss.JoinVertical(lipgloss.Left, row, tip)
	default:
		return lipgloss.JoinHorizontal(lipgloss.Top, row, " ", tip)
	}
}
