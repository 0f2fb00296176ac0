// Package logging builds the slog loggers used across tierkit.
//
// Loggers are constructed from configuration (level, console/json format,
// optional log-file tee under the configured log directory). The package also
// exports slim Attr constructors and the canonical field names used when
// logging transcripts, tiers, and media paths, so call sites stay consistent
// without importing log/slog everywhere.
package logging
