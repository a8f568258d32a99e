// Package server is the managed HTTP server started by the launcher.
//
// It serves a small landing page at "/", a JSON health document at
// "/health", an MCP streamable HTTP endpoint at "/mcp" and the file
// store at "/api/files". While running it watches the env file and
// refreshes the shared config.Store, so tools answering on "/mcp" see
// edits without a restart.
//
// When started under systemd the server reports READY once its listener
// is bound and STOPPING when it begins to shut down.
package server
