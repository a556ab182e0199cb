package host

import (
	"context"
	"errors"

	"github.com/sqweek/dialog"
)

// Filter is a named set of extensions (without dots) offered by the dialog.
type Filter struct {
	Name       string
	Extensions []string
}

// NativePicker opens the operating system's file dialog.
type NativePicker struct {
	Title    string
	StartDir string
	Filters  []Filter
}

// Pick shows the dialog. The dialog blocks its thread, so it runs in a
// goroutine and ctx cancellation abandons the result.
func (p NativePicker) Pick(ctx context.Context) (string, error) {
	type result struct {
		path string
		err  error
	}
	done := make(chan result, 1)

	go func() {
		b := dialog.File()
		if p.Title != "" {
			b = b.Title(p.Title)
		}
		if p.StartDir != "" {
			b = b.SetStartDir(p.StartDir)
		}
		for _, f := range p.Filters {
			b = b.Filter(f.Name, f.Extensions...)
		}
		path, err := b.Load()
		done <- result{path: path, err: err}
	}()

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case r := <-done:
		if errors.Is(r.err, dialog.ErrCancelled) {
			return "", ErrCancelled
		}
		return r.path, r.err
	}
}
