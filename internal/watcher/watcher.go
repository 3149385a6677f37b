// Package watcher reports changes to the package files of a mods directory.
package watcher

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/leefowlercu/modorder/internal/metrics"
	"github.com/leefowlercu/modorder/internal/walker"
)

// DefaultDebounceWindow is how long the directory must be quiet before a batch is handled.
// Copying a large package produces many write events; the window waits for it to finish.
const DefaultDebounceWindow = time.Second

// HandlerFunc handles one batch of changes.
type HandlerFunc func(ctx context.Context, changes []Change) error

// Stats contains statistics about watcher activity.
type Stats struct {
	EventsReceived int64
	Batches        int64
	Errors         int64
}

// WatcherOption configures the Watcher.
type WatcherOption func(*Watcher)

// WithDebounceWindow sets the quiet window that closes a batch.
func WithDebounceWindow(d time.Duration) WatcherOption {
	return func(w *Watcher) {
		if d > 0 {
			w.debounceWindow = d
		}
	}
}

// WithFilter sets which files count as packages. The default is walker.NewFilter with
// the default skip list.
func WithFilter(f *walker.Filter) WatcherOption {
	return func(w *Watcher) {
		if f != nil {
			w.filter = f
		}
	}
}

// WithLogger sets the logger for the watcher.
func WithLogger(logger *slog.Logger) WatcherOption {
	return func(w *Watcher) {
		if logger != nil {
			w.logger = logger
		}
	}
}

// Watcher watches a single mods directory. Mods directories are flat, so subdirectories
// are not watched.
type Watcher struct {
	dir            string
	filter         *walker.Filter
	logger         *slog.Logger
	debounceWindow time.Duration

	mu    sync.Mutex
	stats Stats
}

// New creates a Watcher for dir.
func New(dir string, opts ...WatcherOption) (*Watcher, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve path; %w", err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("failed to stat path; %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("path is not a directory: %s", abs)
	}

	w := &Watcher{
		dir:            abs,
		filter:         walker.NewFilter(walker.DefaultSkipFiles, false),
		logger:         slog.Default(),
		debounceWindow: DefaultDebounceWindow,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w, nil
}

// Dir returns the watched directory.
func (w *Watcher) Dir() string {
	return w.dir
}

// Stats returns current watcher statistics.
func (w *Watcher) Stats() Stats {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.stats
}

// Run watches the directory until ctx is cancelled, calling fn with each batch of
// changes. Batches are handled one at a time; changes that arrive while fn runs form the
// next batch. An error from fn is logged and watching continues. Run returns nil when ctx
// is cancelled and an error if the underlying notifier fails.
func (w *Watcher) Run(ctx context.Context, fn HandlerFunc) error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create fsnotify watcher; %w", err)
	}
	defer fsw.Close()

	if err := fsw.Add(w.dir); err != nil {
		return fmt.Errorf("failed to watch %s; %w", w.dir, err)
	}

	coalescer := NewCoalescer(w.debounceWindow)
	defer coalescer.Stop()

	w.logger.Info("watching mods directory", "dir", w.dir, "debounce", w.debounceWindow)

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-fsw.Events:
			if !ok {
				return errors.New("fsnotify event channel closed")
			}
			if ch, ok := w.translate(event); ok {
				coalescer.Add(ch)
			}
		case err, ok := <-fsw.Errors:
			if !ok {
				return errors.New("fsnotify error channel closed")
			}
			w.mu.Lock()
			w.stats.Errors++
			w.mu.Unlock()
			return fmt.Errorf("watch failed; %w", err)
		case batch := <-coalescer.Batches():
			w.mu.Lock()
			w.stats.Batches++
			w.mu.Unlock()
			metrics.RecordWatchBatch(len(batch))

			w.logger.Debug("package changes", "dir", w.dir, "changes", len(batch))
			if err := fn(ctx, batch); err != nil {
				w.logger.Warn("failed to handle package changes", "error", err)
			}
		}
	}
}

// translate maps an fsnotify event to a package change. Events for files the filter
// rejects, and chmod-only events, are dropped.
func (w *Watcher) translate(event fsnotify.Event) (Change, bool) {
	w.mu.Lock()
	w.stats.EventsReceived++
	w.mu.Unlock()

	if !w.filter.ShouldProcessFile(event.Name) {
		return Change{}, false
	}

	var t ChangeType
	switch {
	case event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename):
		t = ChangeDelete
	case event.Has(fsnotify.Create):
		t = ChangeCreate
	case event.Has(fsnotify.Write):
		t = ChangeModify
	default:
		return Change{}, false
	}
	return Change{Path: event.Name, Type: t}, true
}
