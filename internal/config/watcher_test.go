package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
)

// startWatcher writes an initial config file and watches it
func startWatcher(t *testing.T, debounce time.Duration) (*Watcher, string, context.CancelFunc) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path, []byte(`{}`), 0644); err != nil {
		t.Fatalf("Failed to create config file: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	w, err := NewWatcher(ctx, path)
	if err != nil {
		cancel()
		t.Fatalf("Failed to create watcher: %v", err)
	}
	t.Cleanup(func() {
		cancel()
		_ = w.Stop()
	})
	if err := w.Start(debounce); err != nil {
		t.Fatalf("Failed to start watcher: %v", err)
	}

	// Give fsnotify time to register the directory
	time.Sleep(100 * time.Millisecond)
	return w, path, cancel
}

func TestWatcher_FileChange(t *testing.T) {
	w, path, _ := startWatcher(t, 50*time.Millisecond)

	if err := os.WriteFile(path, []byte(`{"debug": true}`), 0644); err != nil {
		t.Fatalf("Failed to modify config file: %v", err)
	}

	select {
	case <-w.Events():
	case err := <-w.Errors():
		t.Fatalf("Watcher error: %v", err)
	case <-time.After(2 * time.Second):
		t.Fatal("Timeout waiting for file change event")
	}
}

func TestWatcher_IgnoresSiblingFiles(t *testing.T) {
	w, path, _ := startWatcher(t, 50*time.Millisecond)

	sibling := filepath.Join(filepath.Dir(path), "tasks.json")
	if err := os.WriteFile(sibling, []byte(`{}`), 0644); err != nil {
		t.Fatalf("Failed to write sibling file: %v", err)
	}

	select {
	case <-w.Events():
		t.Fatal("Unexpected event for an unwatched file")
	case <-time.After(400 * time.Millisecond):
	}
}

func TestWatcher_DebounceMultipleWrites(t *testing.T) {
	debounce := 200 * time.Millisecond
	w, path, _ := startWatcher(t, debounce)

	for i := 0; i < 5; i++ {
		if err := os.WriteFile(path, []byte(`{"logPath": "x`+string(rune('0'+i))+`"}`), 0644); err != nil {
			t.Fatalf("Failed to write config file: %v", err)
		}
		time.Sleep(20 * time.Millisecond)
	}

	eventCount := 0
	timeout := time.After(debounce + 500*time.Millisecond)
	for {
		select {
		case <-w.Events():
			eventCount++
		case err := <-w.Errors():
			t.Fatalf("Watcher error: %v", err)
		case <-timeout:
			if eventCount != 1 {
				t.Errorf("Expected 1 debounced event, got %d", eventCount)
			}
			return
		}
	}
}

func TestWatcher_ContextCancellation(t *testing.T) {
	w, _, cancel := startWatcher(t, 50*time.Millisecond)

	cancel()

	timeout := time.After(2 * time.Second)
	for {
		select {
		case _, ok := <-w.Events():
			if !ok {
				return
			}
		case <-timeout:
			t.Fatal("Watcher did not stop after context cancellation")
		}
	}
}
