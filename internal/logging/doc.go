// Package logging assembles the structured slog loggers used by the
// certificate pipeline and the certgen CLI.
//
// It owns the console and JSON handlers, level parsing and output routing,
// and context helpers that tag log lines with the report reference and
// sample being processed. NewNop serves tests and wiring code that must not
// fail.
package logging
