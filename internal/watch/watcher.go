// Package watch re-triggers path validation when the filesystem changes under
// a field's value: a file appears, disappears or its folder is replaced.
package watch

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"filefield/internal/logging"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// Event reports that something changed at or directly under Path.
type Event struct {
	Path string
	Op   string
}

// Watcher tracks a set of paths by watching their parent directories (and
// the paths themselves when they are directories).
type Watcher struct {
	mu        sync.Mutex
	fs        *fsnotify.Watcher
	paths     map[string]struct{}
	dirs      map[string]struct{}
	debouncer *Debouncer
	events    chan Event
	stopCh    chan struct{}
	doneCh    chan struct{}
	closed    bool
	logger    *zap.Logger
}

// New starts a watcher whose events are debounced per path.
func New(debounce time.Duration) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	w := &Watcher{
		fs:        fsw,
		paths:     make(map[string]struct{}),
		dirs:      make(map[string]struct{}),
		debouncer: NewDebouncer(debounce),
		events:    make(chan Event, 64),
		stopCh:    make(chan struct{}),
		doneCh:    make(chan struct{}),
		logger:    logging.Get(logging.CategoryWatch),
	}
	go w.run()
	return w, nil
}

// Events delivers debounced change notifications. The channel is closed by Close.
func (w *Watcher) Events() <-chan Event {
	return w.events
}

// Set replaces the tracked paths. Empty entries are ignored.
func (w *Watcher) Set(paths []string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return
	}

	wantPaths := make(map[string]struct{}, len(paths))
	wantDirs := make(map[string]struct{}, len(paths)*2)
	for _, p := range paths {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		p = filepath.Clean(p)
		wantPaths[p] = struct{}{}
		wantDirs[filepath.Dir(p)] = struct{}{}
		if info, err := os.Stat(p); err == nil && info.IsDir() {
			wantDirs[p] = struct{}{}
		}
	}

	for dir := range w.dirs {
		if _, keep := wantDirs[dir]; !keep {
			_ = w.fs.Remove(dir)
			delete(w.dirs, dir)
		}
	}
	for dir := range wantDirs {
		if _, have := w.dirs[dir]; have {
			continue
		}
		if err := w.fs.Add(dir); err != nil {
			// Folder may not exist yet; the parent's events still cover the path.
			w.logger.Debug("watch add failed", zap.String("dir", dir), zap.Error(err))
			continue
		}
		w.dirs[dir] = struct{}{}
	}
	w.paths = wantPaths
}

// Watched returns the directories currently registered with the OS.
func (w *Watcher) Watched() []string {
	w.mu.Lock()
	defer w.mu.Unlock()
	out := make([]string, 0, len(w.dirs))
	for dir := range w.dirs {
		out = append(out, dir)
	}
	sort.Strings(out)
	return out
}

// Close stops the watcher and closes the Events channel.
func (w *Watcher) Close() error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return nil
	}
	w.closed = true
	w.mu.Unlock()

	close(w.stopCh)
	w.debouncer.Cancel()
	err := w.fs.Close()
	<-w.doneCh

	w.mu.Lock()
	close(w.events)
	w.mu.Unlock()
	return err
}

func (w *Watcher) run() {
	defer close(w.doneCh)

	for {
		select {
		case <-w.stopCh:
			return

		case event, ok := <-w.fs.Events:
			if !ok {
				return
			}
			w.handleEvent(event)

		case err, ok := <-w.fs.Errors:
			if !ok {
				return
			}
			w.logger.Warn("watcher error", zap.Error(err))
		}
	}
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	var op string
	switch {
	case event.Op&fsnotify.Create != 0:
		op = "create"
	case event.Op&fsnotify.Write != 0:
		op = "modify"
	case event.Op&fsnotify.Remove != 0:
		op = "delete"
	case event.Op&fsnotify.Rename != 0:
		op = "rename"
	default:
		return // Ignore chmod
	}

	name := filepath.Clean(event.Name)

	w.mu.Lock()
	var hits []string
	for p := range w.paths {
		if name == p || filepath.Dir(name) == p || strings.HasPrefix(p, name+string(filepath.Separator)) {
			hits = append(hits, p)
		}
	}
	w.mu.Unlock()

	for _, p := range hits {
		path := p
		w.logger.Debug("change", zap.String("path", path), zap.String("event", name), zap.String("op", op))
		w.debouncer.Debounce(path, func() { w.emit(Event{Path: path, Op: op}) })
	}
}

func (w *Watcher) emit(ev Event) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return
	}
	select {
	case w.events <- ev:
	default:
		w.logger.Warn("event dropped, consumer is behind", zap.String("path", ev.Path))
	}
}
