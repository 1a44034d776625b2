package watcher

import (
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"
)

func TestWatcherReportsWrites(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	if err := os.WriteFile(path, []byte("a = 1\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	var (
		mu  sync.Mutex
		got []Event
	)
	w, err := New(func(events []Event) {
		mu.Lock()
		got = append(got, events...)
		mu.Unlock()
	}, WithDebounceDuration(20*time.Millisecond))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer w.Close()

	if err := w.Add(path); err != nil {
		t.Fatalf("Add: %v", err)
	}

	// Writes to sibling files must not be reported.
	if err := os.WriteFile(filepath.Join(dir, "other.txt"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte("a = 2\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	waitFor(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(got) > 0
	})

	mu.Lock()
	defer mu.Unlock()
	for _, ev := range got {
		if ev.Path != path {
			t.Errorf("unexpected event path %q", ev.Path)
		}
	}
}

func TestWatcherAddAfterClose(t *testing.T) {
	w, err := New(nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if err := w.Add(filepath.Join(t.TempDir(), "x")); err != ErrClosed {
		t.Errorf("Add after Close = %v, want ErrClosed", err)
	}
}
