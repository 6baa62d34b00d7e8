// Package logging assembles the structured slog loggers used by the proctrack
// daemon and CLI.
//
// It owns the console and JSON handlers, routes output to stdout and the
// daemon log file, stamps every record with the daemon session ID, and exposes
// helpers for warnings that must carry an event type, a hint and an impact.
// NewNop provides a discarding logger for tests and optional wiring.
package logging
