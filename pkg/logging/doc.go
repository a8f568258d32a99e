// Package logging provides the structured, subsystem-tagged logger used by
// every pixelle package.
//
// It is a thin layer over log/slog: InitForCLI installs a text handler with
// a minimum level, and the Debug/Info/Warn/Error helpers attach a
// "subsystem" attribute (and an "error" attribute for Error) to every
// record.
//
// # Usage
//
//	logging.InitForCLI(logging.LevelInfo, os.Stderr)
//
//	logging.Info("Launcher", "Starting server on port %d", port)
//	logging.Debug("EnvStore", "Read %d keys from %s", len(values), path)
//	logging.Warn("Resolver", "Port %d is in use but its owner is unknown", port)
//	logging.Error("Persister", err, "Failed to write %s", path)
//
// Log output is kept separate from user-facing console text: commands print
// their prompts and reports to their own writer, while logs go to the
// writer given to InitForCLI (stderr by default, io.Discard in quiet mode).
//
// # Subsystems
//
//   - Bootstrap: application initialization
//   - EnvStore, Config, Watcher: persisted configuration
//   - Wizard: interactive setup
//   - Probe, Status: connectivity checks
//   - Resolver, Launcher, Server: port handling and the managed server
//   - Storage: uploaded files
package logging
