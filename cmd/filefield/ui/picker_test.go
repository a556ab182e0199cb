package ui

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"filefield/internal/host"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func loadedPicker(t *testing.T, opts PickerOptions) Picker {
	t.Helper()
	p := NewPicker(opts)
	cmd := p.Init()
	require.NotNil(t, cmd)
	model, _ := p.Update(cmd())
	return model.(Picker)
}

func TestPickerSelectsFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.txt"), []byte("x"), 0644))

	p := loadedPicker(t, PickerOptions{StartDir: dir})
	model, cmd := p.Update(tea.KeyMsg{Type: tea.KeyEnter})
	p = model.(Picker)

	path, ok := p.Selected()
	require.True(t, ok)
	assert.Equal(t, filepath.Join(dir, "a.txt"), path)
	require.NotNil(t, cmd)
	assert.Empty(t, p.View())
}

func TestPickerCancel(t *testing.T) {
	p := loadedPicker(t, PickerOptions{StartDir: t.TempDir()})

	model, cmd := p.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	p = model.(Picker)

	_, ok := p.Selected()
	assert.False(t, ok)
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}

func TestPickerRejectsDisallowedType(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0644))

	p := loadedPicker(t, PickerOptions{StartDir: dir, Extensions: []string{".csv"}, Title: "Pick a CSV"})
	model, _ := p.Update(tea.KeyMsg{Type: tea.KeyEnter})
	p = model.(Picker)

	_, ok := p.Selected()
	assert.False(t, ok)
	view := p.View()
	assert.Contains(t, view, "Pick a CSV")
	assert.Contains(t, view, "not an allowed file type")
}

func TestTerminalPickerCancelled(t *testing.T) {
	p := TerminalPicker{
		Options: PickerOptions{StartDir: t.TempDir()},
		Input:   strings.NewReader("q"),
		Output:  io.Discard,
	}

	_, err := p.Pick(context.Background())
	assert.ErrorIs(t, err, host.ErrCancelled)
}

func TestTerminalPickerContextDone(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := TerminalPicker{}.Pick(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}
