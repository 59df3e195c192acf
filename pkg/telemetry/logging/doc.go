// Package logging configures structured logging for Portico on top of
// log/slog. Components obtain their own loggers via
// slog.Default().With("component", ...) after Setup has installed the
// process-wide default.
package logging
