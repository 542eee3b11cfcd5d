package store

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"formsuggest/internal/logging"

	"github.com/fsnotify/fsnotify"
)

// ContentSink receives main content read from a watched file.
type ContentSink interface {
	SetMainContent(ctx context.Context, content string) error
}

// ContentWatcher copies a text file into the main content setting whenever
// the file settles after an edit.
type ContentWatcher struct {
	mu          sync.Mutex
	watcher     *fsnotify.Watcher
	sink        ContentSink
	path        string
	debounceDur time.Duration
	pendingAt   time.Time
	pending     bool
	stopCh      chan struct{}
	doneCh      chan struct{}
	running     bool

	syncs    int
	failures int
}

// NewContentWatcher watches path. A debounce of zero means 500ms.
func NewContentWatcher(path string, sink ContentSink, debounce time.Duration) (*ContentWatcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", path, err)
	}
	if debounce <= 0 {
		debounce = 500 * time.Millisecond
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	return &ContentWatcher{
		watcher:     w,
		sink:        sink,
		path:        abs,
		debounceDur: debounce,
		stopCh:      make(chan struct{}),
		doneCh:      make(chan struct{}),
	}, nil
}

// Start syncs the file once if it exists and then watches its directory.
// Editors that save by rename are covered because the directory is watched.
func (cw *ContentWatcher) Start(ctx context.Context) error {
	cw.mu.Lock()
	if cw.running {
		cw.mu.Unlock()
		return nil
	}
	cw.running = true
	cw.mu.Unlock()

	if err := cw.watcher.Add(filepath.Dir(cw.path)); err != nil {
		cw.mu.Lock()
		cw.running = false
		cw.mu.Unlock()
		return fmt.Errorf("watch %s: %w", filepath.Dir(cw.path), err)
	}
	logging.Store("ContentWatcher: watching %s", cw.path)

	if _, err := os.Stat(cw.path); err == nil {
		cw.sync(ctx)
	}

	go cw.run(ctx)
	return nil
}

// Stop ends the watch loop and waits for it to exit.
func (cw *ContentWatcher) Stop() {
	cw.mu.Lock()
	if !cw.running {
		cw.mu.Unlock()
		return
	}
	cw.running = false
	cw.mu.Unlock()

	close(cw.stopCh)
	<-cw.doneCh

	if err := cw.watcher.Close(); err != nil {
		logging.StoreError("ContentWatcher: error closing watcher: %v", err)
	}
	logging.Store("ContentWatcher: stopped")
}

// Syncs returns how many times the file was copied into the sink.
func (cw *ContentWatcher) Syncs() int {
	cw.mu.Lock()
	defer cw.mu.Unlock()
	return cw.syncs
}

// Failures returns how many watch or store errors occurred.
func (cw *ContentWatcher) Failures() int {
	cw.mu.Lock()
	defer cw.mu.Unlock()
	return cw.failures
}

func (cw *ContentWatcher) run(ctx context.Context) {
	defer close(cw.doneCh)

	ticker := time.NewTicker(50 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-cw.stopCh:
			return
		case event, ok := <-cw.watcher.Events:
			if !ok {
				return
			}
			cw.handleEvent(event)
		case err, ok := <-cw.watcher.Errors:
			if !ok {
				return
			}
			logging.StoreError("ContentWatcher error: %v", err)
			cw.mu.Lock()
			cw.failures++
			cw.mu.Unlock()
		case <-ticker.C:
			cw.processDebounced(ctx)
		}
	}
}

func (cw *ContentWatcher) handleEvent(event fsnotify.Event) {
	if filepath.Clean(event.Name) != cw.path {
		return
	}
	if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
		return
	}
	logging.StoreDebug("ContentWatcher: %s %s", event.Op, event.Name)

	cw.mu.Lock()
	cw.pending = true
	cw.pendingAt = time.Now()
	cw.mu.Unlock()
}

func (cw *ContentWatcher) processDebounced(ctx context.Context) {
	cw.mu.Lock()
	ready := cw.pending && time.Since(cw.pendingAt) >= cw.debounceDur
	if ready {
		cw.pending = false
	}
	cw.mu.Unlock()

	if ready {
		cw.sync(ctx)
	}
}

func (cw *ContentWatcher) sync(ctx context.Context) {
	data, err := os.ReadFile(cw.path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			logging.StoreError("ContentWatcher: failed to read %s: %v", cw.path, err)
		}
		return
	}
	if err := cw.sink.SetMainContent(ctx, string(data)); err != nil {
		logging.StoreError("ContentWatcher: failed to store content: %v", err)
		cw.mu.Lock()
		cw.failures++
		cw.mu.Unlock()
		return
	}
	cw.mu.Lock()
	cw.syncs++
	cw.mu.Unlock()
	logging.Store("ContentWatcher: synced %d bytes from %s", len(data), cw.path)
}
