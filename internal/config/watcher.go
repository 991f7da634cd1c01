package config

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Watcher wraps fsnotify to watch files and emit debounced change notifications
type Watcher struct {
	watcher  *fsnotify.Watcher
	paths    map[string]bool
	events   chan struct{}
	errors   chan error
	ctx      context.Context
	cancel   context.CancelFunc
	mu       sync.Mutex
	watching bool
}

// NewWatcher creates a new file watcher for the specified paths
func NewWatcher(ctx context.Context, paths ...string) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}

	watcherCtx, cancel := context.WithCancel(ctx)

	set := make(map[string]bool, len(paths))
	for _, p := range paths {
		set[filepath.Clean(p)] = true
	}

	return &Watcher{
		watcher: fsw,
		paths:   set,
		events:  make(chan struct{}, 1),
		errors:  make(chan error, 1),
		ctx:     watcherCtx,
		cancel:  cancel,
	}, nil
}

// Start begins watching the configured paths with debouncing. Parent
// directories are watched so editors that replace the file by rename are
// still seen.
func (w *Watcher) Start(debounceInterval time.Duration) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.watching {
		return fmt.Errorf("watcher already started")
	}

	for path := range w.paths {
		dir := filepath.Dir(path)
		if err := w.watcher.Add(dir); err != nil {
			return fmt.Errorf("failed to watch %s: %w", dir, err)
		}
	}
	w.watching = true

	go w.processEvents(debounceInterval)

	return nil
}

// processEvents coalesces bursts of writes into one notification per
// debounce interval
func (w *Watcher) processEvents(debounceInterval time.Duration) {
	defer close(w.events)
	defer close(w.errors)

	timer := time.NewTimer(debounceInterval)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-w.ctx.Done():
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if !w.paths[filepath.Clean(event.Name)] {
				continue
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) || event.Has(fsnotify.Rename) {
				timer.Reset(debounceInterval)
			}

		case <-timer.C:
			select {
			case w.events <- struct{}{}:
			default:
				// event already pending
			}

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			select {
			case w.errors <- err:
			case <-w.ctx.Done():
				return
			}
		}
	}
}

// Events returns the channel for receiving debounced file change notifications
func (w *Watcher) Events() <-chan struct{} {
	return w.events
}

// Errors returns the channel for receiving watcher errors
func (w *Watcher) Errors() <-chan error {
	return w.errors
}

// Stop stops the watcher and cleans up resources
func (w *Watcher) Stop() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.watching {
		return w.watcher.Close()
	}
	w.watching = false

	w.cancel()
	return w.watcher.Close()
}
