package ui

import (
	"errors"
	"path/filepath"
	"sync"
	"testing"

	"filefield/internal/config"
	"filefield/internal/watch"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeWatcher struct {
	mu     sync.Mutex
	events chan watch.Event
	sets   [][]string
}

func newFakeWatcher() *fakeWatcher {
	return &fakeWatcher{events: make(chan watch.Event, 4)}
}

func (w *fakeWatcher) Events() <-chan watch.Event { return w.events }

func (w *fakeWatcher) Set(paths []string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.sets = append(w.sets, append([]string(nil), paths...))
}

func (w *fakeWatcher) lastSet() []string {
	w.mu.Lock()
	defer w.mu.Unlock()
	if len(w.sets) == 0 {
		return nil
	}
	return w.sets[len(w.sets)-1]
}

var testFields = []config.FieldConfig{
	{ID: "input", Label: "Input file", Value: "/data/in.csv"},
	{ID: "output", Label: "Output file", Value: "/data/out.csv"},
}

func newTestForm(h *fakeHost, opts FormOptions) Form {
	if opts.Fields == nil {
		opts.Fields = testFields
	}
	opts.Logger = zap.NewNop()
	opts.StaticCursor = true
	return NewForm(h, opts)
}

// settleForm runs cmd and feeds every resulting message back into the form.
func settleForm(f Form, cmd tea.Cmd) (Form, bool) {
	quit := false
	queue := runCmd(cmd)
	for len(queue) > 0 {
		msg := queue[0]
		queue = queue[1:]
		if _, ok := msg.(tea.QuitMsg); ok {
			quit = true
			continue
		}
		model, next := f.Update(msg)
		f = model.(Form)
		queue = append(queue, runCmd(next)...)
	}
	return f, quit
}

func sendKey(f Form, msg tea.KeyMsg) (Form, bool) {
	model, cmd := f.Update(msg)
	return settleForm(model.(Form), cmd)
}

func mustField(t *testing.T, f Form, id string) FileField {
	t.Helper()
	field, ok := f.Field(id)
	require.True(t, ok, "field %q", id)
	return field
}

func TestFormMountChecksEveryField(t *testing.T) {
	h := newFakeHost("/data/in.csv", "/data/out.csv")
	f := newTestForm(h, FormOptions{})

	f, quit := settleForm(f, f.Init())
	require.False(t, quit)

	assert.ElementsMatch(t, []checkCall{
		{Path: "/data/in.csv", Type: "input"},
		{Path: "/data/out.csv", Type: "output"},
	}, h.checks())
	assert.True(t, mustField(t, f, "input").Valid())
	assert.True(t, mustField(t, f, "output").Valid())
	assert.True(t, mustField(t, f, "input").Focused())
	assert.Equal(t, map[string]string{"input": "/data/in.csv", "output": "/data/out.csv"}, f.Values())
}

func TestFormSavedValuesWin(t *testing.T) {
	h := newFakeHost()
	f := newTestForm(h, FormOptions{Settings: config.Settings{Values: map[string]string{"output": "/saved/out.csv"}}})

	assert.Equal(t, "/saved/out.csv", mustField(t, f, "output").Value())
	assert.Equal(t, "/data/in.csv", mustField(t, f, "input").Value())
}

func TestFormCollectsChangeEvents(t *testing.T) {
	h := newFakeHost("/data/in.csv", "/data/out.csv", "/data/in.csv2")
	f := newTestForm(h, FormOptions{})
	f, _ = settleForm(f, f.Init())

	f, _ = sendKey(f, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("2")})

	assert.Equal(t, "/data/in.csv2", f.Values()["input"])
	assert.True(t, mustField(t, f, "input").Valid())
}

func TestFormRejectsDuplicatePaths(t *testing.T) {
	h := newFakeHost("/data/same.csv", "/data/./same.csv")
	fields := []config.FieldConfig{
		{ID: "input", Value: "/data/same.csv"},
		{ID: "output", Value: "/data/./same.csv"},
	}
	f := newTestForm(h, FormOptions{Fields: fields})
	f, _ = settleForm(f, f.Init())

	assert.True(t, mustField(t, f, "input").Valid())
	out := mustField(t, f, "output")
	assert.Equal(t, StatusExists, out.Status())
	assert.False(t, out.Valid())

	f, quit := sendKey(f, tea.KeyMsg{Type: tea.KeyCtrlS})
	assert.False(t, quit)
	notice, isErr := f.Notice()
	assert.True(t, isErr)
	assert.Contains(t, notice, "output")
}

func TestFormSubmit(t *testing.T) {
	h := newFakeHost("/data/in.csv", "/data/out.csv")
	var saved map[string]string
	f := newTestForm(h, FormOptions{OnSubmit: func(values map[string]string) error {
		saved = values
		return nil
	}})
	f, _ = settleForm(f, f.Init())

	f, quit := sendKey(f, tea.KeyMsg{Type: tea.KeyCtrlS})

	assert.True(t, quit)
	assert.True(t, f.Submitted())
	if diff := cmp.Diff(map[string]string{"input": "/data/in.csv", "output": "/data/out.csv"}, saved); diff != "" {
		t.Fatalf("submitted values mismatch (-want +got):\n%s", diff)
	}
}

func TestFormSubmitRejectsInvalidFields(t *testing.T) {
	h := newFakeHost("/data/out.csv")
	called := false
	f := newTestForm(h, FormOptions{OnSubmit: func(map[string]string) error {
		called = true
		return nil
	}})
	f, _ = settleForm(f, f.Init())

	f, quit := sendKey(f, tea.KeyMsg{Type: tea.KeyCtrlS})

	assert.False(t, quit)
	assert.False(t, called)
	assert.False(t, f.Submitted())
	notice, isErr := f.Notice()
	assert.True(t, isErr)
	assert.Equal(t, "cannot save, not valid: input", notice)
	assert.Contains(t, f.View(), "cannot save")
}

func TestFormOptionalEmptyField(t *testing.T) {
	h := newFakeHost("/data/in.csv")
	fields := []config.FieldConfig{
		{ID: "input", Value: "/data/in.csv"},
		{ID: "log", Optional: true},
	}
	f := newTestForm(h, FormOptions{Fields: fields})
	f, _ = settleForm(f, f.Init())

	f, quit := sendKey(f, tea.KeyMsg{Type: tea.KeyCtrlS})
	assert.True(t, quit)
	assert.True(t, f.Submitted())
}

func TestFormSubmitError(t *testing.T) {
	h := newFakeHost("/data/in.csv", "/data/out.csv")
	f := newTestForm(h, FormOptions{OnSubmit: func(map[string]string) error {
		return errors.New("disk full")
	}})
	f, _ = settleForm(f, f.Init())

	f, quit := sendKey(f, tea.KeyMsg{Type: tea.KeyCtrlS})

	assert.False(t, quit)
	assert.False(t, f.Submitted())
	notice, _ := f.Notice()
	assert.Equal(t, "save failed: disk full", notice)
}

func TestFormFocusNavigation(t *testing.T) {
	f := newTestForm(newFakeHost(), FormOptions{})

	f, _ = sendKey(f, tea.KeyMsg{Type: tea.KeyTab})
	assert.True(t, mustField(t, f, "input").ButtonFocused())

	f, _ = sendKey(f, tea.KeyMsg{Type: tea.KeyTab})
	assert.False(t, mustField(t, f, "input").Focused())
	assert.True(t, mustField(t, f, "output").Focused())
	assert.False(t, mustField(t, f, "output").ButtonFocused())

	f, _ = sendKey(f, tea.KeyMsg{Type: tea.KeyShiftTab})
	assert.False(t, mustField(t, f, "output").Focused())
	assert.True(t, mustField(t, f, "input").ButtonFocused())

	f, _ = sendKey(f, tea.KeyMsg{Type: tea.KeyShiftTab})
	assert.True(t, mustField(t, f, "input").Focused())
	assert.False(t, mustField(t, f, "input").ButtonFocused())

	// Wraps around to the last button.
	f, _ = sendKey(f, tea.KeyMsg{Type: tea.KeyShiftTab})
	assert.True(t, mustField(t, f, "output").ButtonFocused())
}

func TestFormBrowseRoutesResultToFocusedField(t *testing.T) {
	h := newFakeHost("/data/in.csv", "/data/out.csv", "/picked.csv")
	h.pickPath = "/picked.csv"
	f := newTestForm(h, FormOptions{})
	f, _ = settleForm(f, f.Init())

	f, _ = sendKey(f, tea.KeyMsg{Type: tea.KeyTab})
	f, _ = sendKey(f, tea.KeyMsg{Type: tea.KeyTab})
	f, _ = sendKey(f, tea.KeyMsg{Type: tea.KeyCtrlO})

	assert.Equal(t, "/picked.csv", f.Values()["output"])
	assert.Equal(t, "/data/in.csv", f.Values()["input"])
	assert.True(t, mustField(t, f, "output").Valid())
}

func TestFormWatcherFollowsValues(t *testing.T) {
	w := newFakeWatcher()
	h := newFakeHost()
	f := newTestForm(h, FormOptions{Watcher: w})

	assert.Equal(t, []string{"/data/in.csv", "/data/out.csv"}, w.lastSet())

	f, _ = sendKey(f, tea.KeyMsg{Type: tea.KeyBackspace})
	assert.Equal(t, []string{"/data/in.cs", "/data/out.csv"}, w.lastSet())
	assert.Equal(t, "/data/in.cs", f.Values()["input"])
}

func TestFormRechecksOnWatchEvent(t *testing.T) {
	w := newFakeWatcher()
	close(w.events)
	h := newFakeHost("/data/out.csv")
	f := newTestForm(h, FormOptions{Watcher: w})
	f, _ = settleForm(f, f.Init())
	require.False(t, mustField(t, f, "input").Valid())

	h.set("/data/in.csv", true)
	model, cmd := f.Update(watchEventMsg{Path: "/data/in.csv", Op: "create"})
	f, _ = settleForm(model.(Form), cmd)

	assert.True(t, mustField(t, f, "input").Valid())
	assert.Len(t, h.checks(), 3, "only the changed path is rechecked")
}

func TestFormHelpPage(t *testing.T) {
	f := newTestForm(newFakeHost(), FormOptions{})
	assert.Contains(t, f.View(), "Browse...")

	f, quit := sendKey(f, tea.KeyMsg{Type: tea.KeyF1})
	require.False(t, quit)
	view := f.View()
	assert.Contains(t, view, "f1/esc: back")
	assert.NotContains(t, view, "Browse...")

	f, quit = sendKey(f, tea.KeyMsg{Type: tea.KeyEsc})
	assert.False(t, quit, "esc leaves the help page first")
	assert.Contains(t, f.View(), "Browse...")
}

func TestFormQuit(t *testing.T) {
	called := false
	f := newTestForm(newFakeHost(), FormOptions{OnSubmit: func(map[string]string) error {
		called = true
		return nil
	}})

	f, quit := sendKey(f, tea.KeyMsg{Type: tea.KeyEsc})

	assert.True(t, quit)
	assert.False(t, called)
	assert.False(t, f.Submitted())
	assert.Empty(t, f.View())
}

func TestFormIgnoresUnknownField(t *testing.T) {
	f := newTestForm(newFakeHost(), FormOptions{})
	model, cmd := f.Update(CheckResultMsg{FieldID: "nope", Exists: true})
	assert.Nil(t, cmd)
	assert.Equal(t, f.Values(), model.(Form).Values())
}

func TestFormPasteThenSave(t *testing.T) {
	stubClipboard(t, "/data/pasted.csv", nil)
	h := newFakeHost("/data/pasted.csv", "/data/out.csv")
	var saved map[string]string
	f := newTestForm(h, FormOptions{
		Fields: []config.FieldConfig{
			{ID: "input", Label: "Input file"},
			{ID: "output", Label: "Output file", Value: "/data/out.csv"},
		},
		OnSubmit: func(values map[string]string) error {
			saved = values
			return nil
		},
	})
	f, _ = settleForm(f, f.Init())

	f, _ = sendKey(f, tea.KeyMsg{Type: tea.KeyCtrlV})
	assert.Equal(t, "/data/pasted.csv", f.Values()["input"])
	assert.True(t, mustField(t, f, "input").Valid())

	f, quit := sendKey(f, tea.KeyMsg{Type: tea.KeyCtrlS})
	require.True(t, quit)
	assert.Equal(t, map[string]string{"input": "/data/pasted.csv", "output": "/data/out.csv"}, saved)
}

func TestFormPastedDuplicateIsRejected(t *testing.T) {
	stubClipboard(t, "/data/out.csv", nil)
	h := newFakeHost("/data/out.csv")
	f := newTestForm(h, FormOptions{
		Fields: []config.FieldConfig{
			{ID: "output", Label: "Output file", Value: "/data/out.csv"},
			{ID: "copy", Label: "Copy"},
		},
	})
	f, _ = settleForm(f, f.Init())
	f, _ = sendKey(f, tea.KeyMsg{Type: tea.KeyTab})
	f, _ = sendKey(f, tea.KeyMsg{Type: tea.KeyTab})
	require.True(t, mustField(t, f, "copy").Focused())

	f, _ = sendKey(f, tea.KeyMsg{Type: tea.KeyCtrlV})

	copyField := mustField(t, f, "copy")
	assert.Equal(t, "/data/out.csv", copyField.Value())
	assert.False(t, copyField.IsValid())
	assert.False(t, copyField.Valid())
	assert.True(t, mustField(t, f, "output").Valid())
}

func TestFormReloadsSettingsSavedElsewhere(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.yaml")
	w := newFakeWatcher()
	h := newFakeHost("/data/new.csv", "/data/out.csv")
	f := newTestForm(h, FormOptions{Watcher: w, SettingsPath: path})
	assert.Contains(t, w.lastSet(), path)
	close(w.events)

	require.NoError(t, config.SaveSettings(path, config.Settings{Values: map[string]string{"input": "/data/new.csv"}}))
	model, cmd := f.Update(watchEventMsg{Path: path, Op: "modify"})
	f, _ = settleForm(model.(Form), cmd)

	assert.Equal(t, "/data/new.csv", mustField(t, f, "input").Value())
	assert.Equal(t, map[string]string{"input": "/data/new.csv", "output": "/data/out.csv"}, f.Values())
	assert.True(t, mustField(t, f, "input").Valid())
	assert.Contains(t, h.checks(), checkCall{Path: "/data/new.csv", Type: "input"})
}
