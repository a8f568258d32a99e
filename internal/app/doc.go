// Package app wires the pixelle components into the operations exposed by
// the command line.
//
// An Application is bound to one root directory. It owns the config.Store
// for the env file in that root and hands it to the wizard, the status
// prober, the launcher and the managed server, so a reconfiguration is
// visible to every later operation of the same process.
//
// # Operations
//
//   - Start: refuses to run unless the configuration is complete, then
//     resolves port conflicts and blocks in the managed server.
//   - Reconfigure: runs the setup wizard and persists the result.
//   - Status: probes the local server, the web UI and the workflow engine.
//   - Manual: prints where the env file lives and what to edit.
//   - Serve: runs the managed server without prompts, for supervisors.
//
// RunInteractive combines these into the guided flow used when pixelle is
// started without a subcommand: first-time users go straight into the
// wizard, everyone else gets a menu.
package app
