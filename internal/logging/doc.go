// Package logging builds the slog loggers used across driftwatch.
//
// Two formats are supported: a compact console format for interactive use
// and JSON for machine consumption. Component loggers carry a "component"
// attribute that the console handler folds into the line prefix.
package logging
