// Package logging builds the slog loggers gamecal uses.
//
// Console output is a single human readable line per record. When a log
// directory is configured, records are also appended as JSON to the run log,
// which the logs command reads back. The run log takes info records even when
// the console is set to warn or error. Helpers tag records with the run id,
// source and stage carried by a context and describe pool merge decisions
// with a fixed set of keys.
package logging
