// Package logging assembles the structured slog loggers used across the
// lookahead tooling.
//
// It owns the console and JSON handlers, level parsing and output routing,
// standardized field keys, and context helpers that tag log lines with the
// encoding session ID. A no-op logger is provided for tests and for wiring
// code that runs without a configured logger.
package logging
