// Package watch reports changes to individual files using fsnotify. It
// watches the parent directory rather than the file itself so that editors
// which save by writing a new file and renaming it over the old one are
// still seen.
package watch

import (
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce is how long a file must stay quiet before a change is
// reported.
const DefaultDebounce = 100 * time.Millisecond

// Change represents a settled change to a watched file.
type Change struct {
	Path    string // Absolute path
	Removed bool   // The file no longer exists
}

// Watcher monitors a set of files for changes.
type Watcher struct {
	Changes <-chan Change // Read-only external channel

	changes  chan Change // Internal write channel
	done     chan struct{}
	files    map[string]bool
	debounce time.Duration
	watcher  *fsnotify.Watcher
	started  bool
	stopOnce sync.Once
}

// Option configures a Watcher.
type Option func(*Watcher)

// WithDebounce overrides DefaultDebounce.
func WithDebounce(d time.Duration) Option {
	return func(w *Watcher) { w.debounce = d }
}

// New creates a watcher for the given files. Nothing is watched until Start.
func New(paths []string, opts ...Option) (*Watcher, error) {
	files := make(map[string]bool, len(paths))
	for _, p := range paths {
		abs, err := filepath.Abs(p)
		if err != nil {
			return nil, fmt.Errorf("watch: resolve %s: %w", p, err)
		}
		files[abs] = true
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("watch: create watcher: %w", err)
	}

	ch := make(chan Change, 16)
	w := &Watcher{
		Changes:  ch,
		changes:  ch,
		done:     make(chan struct{}),
		files:    files,
		debounce: DefaultDebounce,
		watcher:  fw,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w, nil
}

// Start begins watching the parent directory of every file. If a directory
// cannot be watched the underlying fsnotify watcher is released and Changes
// is closed; calling Stop afterwards is still safe.
func (w *Watcher) Start() error {
	dirs := make(map[string]bool)
	for f := range w.files {
		dirs[filepath.Dir(f)] = true
	}
	for dir := range dirs {
		if err := w.watcher.Add(dir); err != nil {
			w.Stop()
			return fmt.Errorf("watch: add %s: %w", dir, err)
		}
	}

	w.started = true
	go w.loop()
	return nil
}

// Stop closes the watcher and the Changes channel. It returns without
// blocking when Start never ran or failed, and later calls do nothing.
func (w *Watcher) Stop() {
	w.stopOnce.Do(func() {
		w.watcher.Close()
		if w.started {
			<-w.done // Wait for loop to exit
		}
		close(w.changes)
	})
}

func (w *Watcher) loop() {
	defer close(w.done)

	// Debounce: track last event time per file.
	pending := make(map[string]time.Time)
	removed := make(map[string]bool)
	ticker := time.NewTicker(w.debounce)
	defer ticker.Stop()

	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if !w.files[filepath.Clean(event.Name)] {
				continue
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) {
				pending[event.Name] = time.Now()
				removed[event.Name] = false
			}
			if event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename) {
				pending[event.Name] = time.Now()
				removed[event.Name] = true
			}

		case now := <-ticker.C:
			for file, t := range pending {
				if now.Sub(t) >= w.debounce {
					w.emit(Change{Path: file, Removed: removed[file]})
					delete(pending, file)
					delete(removed, file)
				}
			}

		case _, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			// Watch errors are non-fatal.
		}
	}
}

// emit never blocks: a change that finds the buffer full is dropped, since
// the consumer already has an unread notification for the same files.
func (w *Watcher) emit(c Change) {
	select {
	case w.changes <- c:
	default:
	}
}
