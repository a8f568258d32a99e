// Package config owns pixelle's configuration model and its lifecycle.
//
// The persisted form is the env file managed by internal/envstore. This
// package classifies it (DetectStatus), loads it into a live Settings
// snapshot (Store), regenerates it from a UnifiedConfig (Persister) and
// refreshes the Store when the file changes on disk (Watcher).
//
// # Status
//
// DetectStatus is a pure function of the file's key presence:
//
//   - first_time: the file does not exist
//   - incomplete: COMFYUI_BASE_URL is empty, or no provider credential key
//     (OPENAI_API_KEY, OLLAMA_BASE_URL, GEMINI_API_KEY, ...) has a value
//   - complete: otherwise
//
// # Persistence
//
// Persister renders the complete file from a template, writes it
// atomically and only then refreshes the Store, so a failure during the
// refresh still leaves a consistent file on disk. The file is always
// rewritten in full; unrelated keys are not preserved.
//
// # Live settings
//
// Store is injected into every consumer instead of being read from
// package-level state. Get returns an immutable snapshot; Reload and
// Refresh replace it.
package config
