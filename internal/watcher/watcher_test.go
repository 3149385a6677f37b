package watcher

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/leefowlercu/modorder/internal/walker"
)

// startWatcher runs a watcher on dir and returns the channel its batches arrive on.
func startWatcher(t *testing.T, dir string, opts ...WatcherOption) (*Watcher, <-chan []Change) {
	t.Helper()

	opts = append([]WatcherOption{WithDebounceWindow(50 * time.Millisecond)}, opts...)
	w, err := New(dir, opts...)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	batches := make(chan []Change, 8)
	done := make(chan error, 1)
	go func() {
		done <- w.Run(ctx, func(_ context.Context, changes []Change) error {
			batches <- changes
			return nil
		})
	}()
	t.Cleanup(func() {
		cancel()
		if err := <-done; err != nil {
			t.Errorf("Run() error = %v", err)
		}
	})

	// Give fsnotify time to register the watch
	time.Sleep(100 * time.Millisecond)
	return w, batches
}

func waitBatch(t *testing.T, batches <-chan []Change) []Change {
	t.Helper()
	select {
	case b := <-batches:
		return b
	case <-time.After(5 * time.Second):
		t.Fatal("timeout waiting for batch")
		return nil
	}
}

func TestWatcher_ReportsPackageChanges(t *testing.T) {
	dir := t.TempDir()
	existing := filepath.Join(dir, "Old.pak")
	if err := os.WriteFile(existing, []byte("old"), 0644); err != nil {
		t.Fatal(err)
	}

	w, batches := startWatcher(t, dir)

	added := filepath.Join(dir, "New.pak")
	if err := os.WriteFile(added, []byte("new"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("ignored"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.Remove(existing); err != nil {
		t.Fatal(err)
	}

	batch := waitBatch(t, batches)
	want := []Change{{Path: added, Type: ChangeCreate}, {Path: existing, Type: ChangeDelete}}
	if len(batch) != len(want) {
		t.Fatalf("batch = %+v, want %+v", batch, want)
	}
	for i := range want {
		if batch[i] != want[i] {
			t.Errorf("batch[%d] = %+v, want %+v", i, batch[i], want[i])
		}
	}

	if stats := w.Stats(); stats.Batches != 1 || stats.EventsReceived < 3 {
		t.Errorf("Stats() = %+v", stats)
	}
}

func TestWatcher_FilterSkipsFiles(t *testing.T) {
	dir := t.TempDir()
	_, batches := startWatcher(t, dir, WithFilter(walker.NewFilter([]string{"ModFixer.pak"}, false)))

	for _, name := range []string{"ModFixer.pak", ".hidden.pak", "Real.pak"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("x"), 0644); err != nil {
			t.Fatal(err)
		}
	}

	batch := waitBatch(t, batches)
	if len(batch) != 1 || filepath.Base(batch[0].Path) != "Real.pak" {
		t.Errorf("batch = %+v", batch)
	}
}

func TestWatcher_HandlerErrorKeepsWatching(t *testing.T) {
	dir := t.TempDir()
	w, err := New(dir, WithDebounceWindow(30*time.Millisecond))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	calls := make(chan struct{}, 4)
	done := make(chan error, 1)
	go func() {
		done <- w.Run(ctx, func(context.Context, []Change) error {
			calls <- struct{}{}
			return errors.New("handler failed")
		})
	}()
	time.Sleep(100 * time.Millisecond)

	for i, name := range []string{"A.pak", "B.pak"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("x"), 0644); err != nil {
			t.Fatal(err)
		}
		select {
		case <-calls:
		case <-time.After(5 * time.Second):
			t.Fatalf("handler not called for change %d", i+1)
		}
	}

	cancel()
	if err := <-done; err != nil {
		t.Errorf("Run() error = %v", err)
	}
}

func TestNew_Errors(t *testing.T) {
	file := filepath.Join(t.TempDir(), "file.pak")
	if err := os.WriteFile(file, []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}

	if _, err := New(filepath.Join(t.TempDir(), "absent")); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("New(missing) error = %v, want os.ErrNotExist", err)
	}
	if _, err := New(file); err == nil {
		t.Error("New(file) succeeded")
	}
}

func TestTranslate(t *testing.T) {
	w, err := New(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name   string
		event  fsnotify.Event
		want   ChangeType
		wantOK bool
	}{
		{"create", fsnotify.Event{Name: "/m/A.pak", Op: fsnotify.Create}, ChangeCreate, true},
		{"write", fsnotify.Event{Name: "/m/A.pak", Op: fsnotify.Write}, ChangeModify, true},
		{"remove", fsnotify.Event{Name: "/m/A.pak", Op: fsnotify.Remove}, ChangeDelete, true},
		{"rename", fsnotify.Event{Name: "/m/A.pak", Op: fsnotify.Rename}, ChangeDelete, true},
		{"chmod", fsnotify.Event{Name: "/m/A.pak", Op: fsnotify.Chmod}, 0, false},
		{"not a package", fsnotify.Event{Name: "/m/readme.txt", Op: fsnotify.Create}, 0, false},
		{"skipped", fsnotify.Event{Name: "/m/ModFixer.pak", Op: fsnotify.Create}, 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := w.translate(tt.event)
			if ok != tt.wantOK || (ok && got.Type != tt.want) {
				t.Errorf("translate() = %+v, %v; want %v, %v", got, ok, tt.want, tt.wantOK)
			}
		})
	}
}
