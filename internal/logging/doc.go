// Package logging provides logging utilities for prompt-relay.
//
// This package provides two categories of output:
//   - Debug logging: Structured logs for operators (via slog)
//   - User output: Formatted messages for people running the CLI
//
// # Structured Logging
//
// Logs are written using slog and controlled by verbosity settings:
//
//	logging.Debug("upstream call", "request_id", id, "status", status)
//	logging.Error("relay failure", "request_id", id, "error", err)
//
// Setup also installs the logger as the slog default so libraries that log
// through slog share its handler. RotatingFile returns a lumberjack writer for
// the --log-file option.
//
// # User Output
//
//	logging.UserInfo("Listening on %s", addr)
//	logging.UserSuccess("Relay stopped")
//	logging.UserWarning("Static directory %s has no index.html", dir)
//	logging.UserError("Request failed: %v", err)
//
// Output destinations:
//   - UserInfo, UserSuccess: stdout
//   - UserWarning, UserError: stderr
//
// Status indicators are colored with lipgloss when the terminal supports it.
package logging
