// Package host defines the capabilities a form field borrows from the
// surrounding process (existence checks, file dialogs) and the local
// implementation backed by the filesystem and a native dialog.
package host

import (
	"context"
	"errors"
)

// ErrCancelled is returned by PickFile when the user dismisses the dialog
// without choosing a file.
var ErrCancelled = errors.New("host: file selection cancelled")

// Capabilities is the privileged surface a field may call.
type Capabilities interface {
	// FileExists reports whether path satisfies the existence rule for
	// fieldType.
	FileExists(ctx context.Context, path, fieldType string) (bool, error)

	// PickFile opens a file chooser and returns the chosen path.
	PickFile(ctx context.Context) (string, error)
}

// Picker chooses a file. Implementations block until the user decides.
type Picker interface {
	Pick(ctx context.Context) (string, error)
}

// PickerFunc adapts a function to Picker.
type PickerFunc func(ctx context.Context) (string, error)

// Pick calls f(ctx).
func (f PickerFunc) Pick(ctx context.Context) (string, error) { return f(ctx) }

// IsCancelled reports whether err means the user backed out of a picker.
func IsCancelled(err error) bool {
	return errors.Is(err, ErrCancelled) || errors.Is(err, context.Canceled)
}
