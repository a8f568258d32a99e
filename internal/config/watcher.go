package config

import (
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"pixelle/pkg/logging"
)

const (
	// DefaultDebounceInterval is the time to wait after the last change
	// before refreshing, so an editor's write-rename sequence triggers a
	// single refresh.
	DefaultDebounceInterval = 500 * time.Millisecond

	// DefaultPollInterval is used when fsnotify is unavailable.
	DefaultPollInterval = 2 * time.Second
)

// Watcher refreshes a Store whenever its env file changes on disk.
// The parent directory is watched rather than the file because the file
// is replaced by rename on every save.
type Watcher struct {
	mu sync.Mutex

	store        *Store
	debounce     time.Duration
	pollInterval time.Duration

	fsWatcher *fsnotify.Watcher
	stopCh    chan struct{}
	running   bool

	lastModTime time.Time

	debounceTimer *time.Timer
	debounceMu    sync.Mutex
}

// WatcherOption configures a Watcher.
type WatcherOption func(*Watcher)

// WithDebounce overrides DefaultDebounceInterval.
func WithDebounce(d time.Duration) WatcherOption {
	return func(w *Watcher) {
		w.debounce = d
	}
}

// WithPollInterval overrides DefaultPollInterval.
func WithPollInterval(d time.Duration) WatcherOption {
	return func(w *Watcher) {
		w.pollInterval = d
	}
}

// NewWatcher creates a stopped Watcher for store.
func NewWatcher(store *Store, opts ...WatcherOption) *Watcher {
	w := &Watcher{
		store:        store,
		debounce:     DefaultDebounceInterval,
		pollInterval: DefaultPollInterval,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Start begins watching. Calling Start on a running Watcher is a no-op.
func (w *Watcher) Start() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.running {
		return nil
	}

	w.stopCh = make(chan struct{})
	w.running = true

	dir := filepath.Dir(w.store.Env().Path())
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		logging.Warn("Watcher", "fsnotify not available, falling back to polling: %v", err)
		go w.pollForChanges()
		return nil
	}

	if err := watcher.Add(dir); err != nil {
		logging.Warn("Watcher", "Failed to watch directory %s, falling back to polling: %v", dir, err)
		watcher.Close()
		go w.pollForChanges()
		return nil
	}
	w.fsWatcher = watcher

	go w.processEvents(watcher.Events, watcher.Errors)

	logging.Info("Watcher", "Watching %s for configuration changes", w.store.Env().Path())
	return nil
}

func (w *Watcher) processEvents(eventsCh <-chan fsnotify.Event, errorsCh <-chan error) {
	for {
		select {
		case <-w.stopCh:
			return

		case event, ok := <-eventsCh:
			if !ok {
				return
			}
			w.handleEvent(event)

		case err, ok := <-errorsCh:
			if !ok {
				return
			}
			logging.Error("Watcher", err, "fsnotify error")
		}
	}
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	if filepath.Base(event.Name) != filepath.Base(w.store.Env().Path()) {
		return
	}
	if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename|fsnotify.Remove) == 0 {
		return
	}

	logging.Debug("Watcher", "Env file changed: %s (%s)", event.Name, event.Op)
	w.triggerRefreshDebounced()
}

func (w *Watcher) triggerRefreshDebounced() {
	w.debounceMu.Lock()
	defer w.debounceMu.Unlock()

	if w.debounceTimer != nil {
		w.debounceTimer.Stop()
	}

	w.debounceTimer = time.AfterFunc(w.debounce, func() {
		w.mu.Lock()
		running := w.running
		w.mu.Unlock()
		if !running {
			return
		}

		if err := w.store.Refresh(); err != nil {
			logging.Error("Watcher", err, "Failed to refresh settings")
			return
		}
		logging.Info("Watcher", "Configuration reloaded from %s", w.store.Env().Path())
	})
}

func (w *Watcher) pollForChanges() {
	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()

	w.checkForChanges()

	for {
		select {
		case <-w.stopCh:
			return

		case <-ticker.C:
			if w.checkForChanges() {
				logging.Debug("Watcher", "Env file change detected via polling")
				w.triggerRefreshDebounced()
			}
		}
	}
}

// checkForChanges reports whether the file's modification time moved
// since the previous call.
func (w *Watcher) checkForChanges() bool {
	info, err := os.Stat(w.store.Env().Path())
	if err != nil {
		return false
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	changed := !w.lastModTime.IsZero() && info.ModTime().After(w.lastModTime)
	w.lastModTime = info.ModTime()
	return changed
}

// Stop stops watching and cancels any pending refresh.
func (w *Watcher) Stop() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.running {
		return nil
	}

	w.running = false
	close(w.stopCh)

	w.debounceMu.Lock()
	if w.debounceTimer != nil {
		w.debounceTimer.Stop()
		w.debounceTimer = nil
	}
	w.debounceMu.Unlock()

	if w.fsWatcher != nil {
		if err := w.fsWatcher.Close(); err != nil {
			logging.Warn("Watcher", "Error closing fsnotify watcher: %v", err)
		}
		w.fsWatcher = nil
	}

	logging.Info("Watcher", "Stopped configuration watcher")
	return nil
}

// IsRunning returns whether the watcher is active.
func (w *Watcher) IsRunning() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.running
}
