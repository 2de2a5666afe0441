// Package tui renders command output for the autopost CLI.
package tui

import "io"

// Output renders command results on one of the two output surfaces. The TTY
// surface is styled for humans; the JSON surface emits line-delimited objects
// for cron wrappers and log collectors.
type Output interface {
	// Success prints a success message.
	Success(msg string)
	// Error prints an error message, including a suggested fix when the
	// error carries one.
	Error(err error)
	// Warning prints a warning message.
	Warning(msg string)
	// Info prints an informational message.
	Info(msg string)
	// Table prints tabular data with aligned columns.
	Table(headers []string, rows [][]string)
	// JSON outputs a value as formatted JSON.
	JSON(v any) error
}

// NewOutput creates the appropriate output for the requested format.
// Anything other than "json" gets the styled TTY surface.
func NewOutput(w io.Writer, format string) Output {
	if format == "json" {
		return NewJSONOutput(w)
	}
	return NewTTYOutput(w)
}
