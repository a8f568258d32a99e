package config

import (
	"fmt"
	"os"
	"sync"

	"github.com/joho/godotenv"

	"pixelle/internal/envstore"
	"pixelle/pkg/logging"
)

// Store holds the live Settings snapshot. It is safe for concurrent use:
// the file watcher refreshes it while request handlers read it.
type Store struct {
	env        *envstore.Store
	root       string
	processEnv bool

	// refreshMu serializes Refresh; exported holds the keys it has
	// written to the process environment.
	refreshMu sync.Mutex
	exported  map[string]bool

	mu        sync.RWMutex
	current   Settings
	listeners []func(Settings)
}

// StoreOption configures a Store.
type StoreOption func(*Store)

// WithProcessEnv makes Refresh export the env file into the process
// environment (overriding existing variables) and lets process variables
// supply keys the file does not set.
func WithProcessEnv(enabled bool) StoreOption {
	return func(s *Store) {
		s.processEnv = enabled
	}
}

// NewStore creates a Store for <root>/.env and loads it. A file that
// cannot be read leaves the defaults in place; the error is logged.
func NewStore(root string, opts ...StoreOption) *Store {
	s := &Store{
		env:     envstore.ForRoot(root),
		root:    root,
		current: DefaultSettings(root),
	}
	for _, opt := range opts {
		opt(s)
	}
	if err := s.Refresh(); err != nil {
		logging.Warn("Config", "Using default settings: %v", err)
	}
	return s
}

// Env returns the underlying env file.
func (s *Store) Env() *envstore.Store {
	return s.env
}

// Root returns the project root.
func (s *Store) Root() string {
	return s.root
}

// Status classifies the env file as it is on disk now.
func (s *Store) Status() Status {
	return DetectStatus(s.env)
}

// Get returns the current snapshot.
func (s *Store) Get() Settings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// Reload hot-patches the in-memory configuration without touching disk.
// Fields outside UnifiedConfig are kept.
func (s *Store) Reload(cfg UnifiedConfig) {
	s.mu.Lock()
	s.current.Config = cfg
	s.current.PersistedDefaultModel = cfg.DefaultModel()
	snapshot := s.current
	listeners := append([]func(Settings){}, s.listeners...)
	s.mu.Unlock()

	for _, fn := range listeners {
		fn(snapshot)
	}
}

// Refresh re-reads the env file. A missing file resets to defaults. On a
// read error the previous snapshot is kept.
func (s *Store) Refresh() error {
	s.refreshMu.Lock()
	defer s.refreshMu.Unlock()

	var values map[string]string
	if s.env.Exists() {
		v, err := s.env.Read()
		if err != nil {
			return fmt.Errorf("failed to refresh settings: %w", err)
		}
		values = v
	}
	if s.processEnv {
		s.export(values)
	}

	lookup := func(key string) string {
		if v, ok := values[key]; ok {
			return v
		}
		if s.processEnv {
			return os.Getenv(key)
		}
		return ""
	}
	next := settingsFrom(s.root, lookup)

	s.mu.Lock()
	s.current = next
	listeners := append([]func(Settings){}, s.listeners...)
	s.mu.Unlock()

	logging.Debug("Config", "Settings refreshed from %s (%d providers)", s.env.Path(), next.Config.Providers.Len())
	for _, fn := range listeners {
		fn(next)
	}
	return nil
}

// export mirrors the file into the process environment. Keys exported by
// an earlier refresh that are gone from the file are unset, so they do
// not resurface through the process-env fallback.
func (s *Store) export(values map[string]string) {
	for key := range s.exported {
		if _, ok := values[key]; !ok {
			os.Unsetenv(key)
		}
	}
	if len(values) > 0 {
		if err := godotenv.Overload(s.env.Path()); err != nil {
			logging.Warn("Config", "Failed to export %s to the process environment: %v", s.env.Path(), err)
		}
	}
	s.exported = make(map[string]bool, len(values))
	for key := range values {
		s.exported[key] = true
	}
}

// Subscribe registers fn to be called with every new snapshot.
func (s *Store) Subscribe(fn func(Settings)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, fn)
}
