// Package tui renders command output for the autopost CLI.
package tui

// ActionableError pairs an error with a suggested next step.
// Output formatters render the suggestion next to the message so failures
// arrive with a fix attached.
//
// Example usage:
//
//	err := NewActionableError(apperrors.ErrLockHeld, "Wait for the active run to finish")
//	output.Error(err)
//	// Outputs: ✗ run lock held by another run
//	//          ▸ Try: Wait for the active run to finish
type ActionableError struct {
	// Err is the underlying error. Unwrap exposes it so sentinel checks
	// with errors.Is keep working through the wrapper.
	Err error

	// Suggestion provides actionable guidance for resolving the error.
	// Should start with a verb (e.g., "Run: autopost init", "Check the path").
	Suggestion string

	// Context provides optional additional information about the error.
	// When present, it is appended to the message in parentheses.
	Context string
}

// NewActionableError creates a new ActionableError with a suggestion.
func NewActionableError(err error, suggestion string) *ActionableError {
	return &ActionableError{
		Err:        err,
		Suggestion: suggestion,
	}
}

// Error implements the error interface.
// Returns the message with context if provided, e.g., "helper script missing (/opt/wp/titles.php)".
func (e *ActionableError) Error() string {
	if e.Context != "" {
		return e.Err.Error() + " (" + e.Context + ")"
	}
	return e.Err.Error()
}

// Unwrap returns the underlying error for errors.Is and errors.As.
func (e *ActionableError) Unwrap() error {
	return e.Err
}

// WithContext adds optional context to the error.
// Returns the same error for method chaining.
//
// Example:
//
//	err := NewActionableError(apperrors.ErrScriptMissing, "Check corpus.script.dir").
//	    WithContext("/opt/wp/titles.php")
func (e *ActionableError) WithContext(ctx string) *ActionableError {
	e.Context = ctx
	return e
}

// GetSuggestion returns the suggestion for this error.
// Used by output formatters to extract the suggestion for display.
func (e *ActionableError) GetSuggestion() string {
	return e.Suggestion
}

// GetContext returns the context for this error.
// Used by output formatters to extract the context for structured output.
func (e *ActionableError) GetContext() string {
	return e.Context
}
