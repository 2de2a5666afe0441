package errors

import "errors"

// ErrorInfo holds user-facing message and suggested action for an error.
type ErrorInfo struct {
	// Message is the user-friendly error description.
	Message string
	// Action is a suggested action to resolve the issue (empty if none).
	Action string
}

// errorEntry pairs a sentinel error with its user-facing info.
type errorEntry struct {
	err  error
	info ErrorInfo
}

// errorInfoEntries is the pre-built mapping of sentinel errors to their user-facing messages.
// This single source of truth ensures UserMessage and Actionable stay in sync.
// Using a slice (not a map) because errors.Is() requires proper error chain traversal.
//
//nolint:gochecknoglobals // Pre-built mapping for efficiency
var errorInfoEntries = []errorEntry{
	// ===================
	// Run coordination
	// ===================
	{
		err: ErrLockHeld,
		info: ErrorInfo{
			Message: "Another run appears to be active; nothing was done.",
			Action:  "If no run is active and this persists, the marker will be evicted once it passes the staleness threshold.",
		},
	},
	{
		err: ErrCommandTimeout,
		info: ErrorInfo{
			Message: "An external command exceeded its timeout and was killed.",
			Action:  "Raise --timeout or check why the collaborator is slow.",
		},
	},
	{
		err: ErrCommandFailed,
		info: ErrorInfo{
			Message: "An external command exited with an error.",
			Action:  "Check the run log for the captured stderr.",
		},
	},

	// ===================
	// Generation
	// ===================
	{
		err: ErrRateLimited,
		info: ErrorInfo{
			Message: "The generation service rate limit held through all retries.",
			Action:  "Wait for the next scheduled run, or raise the retry budget.",
		},
	},
	{
		err: ErrCLINotFound,
		info: ErrorInfo{
			Message: "The agent CLI binary could not be found.",
			Action:  "Install the agent CLI or set ai.bin (or CODEX_BIN / GEMINI_BIN).",
		},
	},
	{
		err: ErrAgentNotFound,
		info: ErrorInfo{
			Message: "No runner is registered for the configured agent.",
			Action:  "Set ai.agent to codex or gemini.",
		},
	},
	{
		err: ErrDraftDecode,
		info: ErrorInfo{
			Message: "The generation service returned output that is not a valid draft.",
			Action:  "Inspect the run log; the raw output is captured there.",
		},
	},

	// ===================
	// Corpus & insertion
	// ===================
	{
		err: ErrCorpusUnavailable,
		info: ErrorInfo{
			Message: "The corpus store could not be read.",
			Action:  "Run 'autopost doctor' to probe the configured backend.",
		},
	},
	{
		err: ErrInsertFailed,
		info: ErrorInfo{
			Message: "The insertion endpoint failed to persist the post.",
			Action:  "Check the insert script and site health; the draft snapshot is retained for replay.",
		},
	},
	{
		err: ErrScriptMissing,
		info: ErrorInfo{
			Message: "A required helper script is missing.",
			Action:  "Check the corpus and publish script paths in config.yaml.",
		},
	},

	// ===================
	// Validation
	// ===================
	{
		err: ErrDraftRejected,
		info: ErrorInfo{
			Message: "The draft failed validation and was not published.",
			Action:  "Review the violation list; the draft snapshot is available for 'autopost validate'.",
		},
	},

	// ===================
	// Configuration & usage
	// ===================
	{
		err: ErrConfigNil,
		info: ErrorInfo{
			Message: "Configuration failed to load.",
			Action:  "Run 'autopost init' to create a starter config.",
		},
	},
	{
		err: ErrInvalidArgument,
		info: ErrorInfo{
			Message: "An invalid argument was provided.",
			Action:  "Check the command help for valid arguments.",
		},
	},
	{
		err: ErrSnapshotNotFound,
		info: ErrorInfo{
			Message: "No draft snapshot was found.",
			Action:  "Snapshots are written under ~/.autopost/snapshots after each generation.",
		},
	},
}

// errorInfoMap provides O(1) lookup for direct sentinel error matches.
// Built once from errorInfoEntries during package initialization.
//
//nolint:gochecknoglobals // Pre-built mapping for O(1) lookup performance
var errorInfoMap = buildErrorInfoMap()

// buildErrorInfoMap creates a map from the errorInfoEntries slice.
// This is called once during package init for O(1) direct lookups.
func buildErrorInfoMap() map[error]ErrorInfo {
	m := make(map[error]ErrorInfo, len(errorInfoEntries))
	for _, entry := range errorInfoEntries {
		m[entry.err] = entry.info
	}
	return m
}

// getErrorInfo looks up the ErrorInfo for a given error.
// It first tries O(1) direct map lookup for unwrapped sentinel errors,
// then falls back to errors.Is() traversal for wrapped errors.
// Returns an ErrorInfo with the original error message if not found.
func getErrorInfo(err error) ErrorInfo {
	// Fast path: O(1) lookup for direct sentinel errors
	if info, ok := errorInfoMap[err]; ok {
		return info
	}

	// Slow path: errors.Is() for wrapped errors
	for _, entry := range errorInfoEntries {
		if errors.Is(err, entry.err) {
			return entry.info
		}
	}

	return ErrorInfo{Message: err.Error()}
}

// UserMessage returns a user-friendly message for common errors.
// This function maps sentinel errors to helpful, actionable messages
// that are suitable for display to end users.
//
// For unrecognized errors, it returns the error's original message.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	return getErrorInfo(err).Message
}

// Actionable returns a user-friendly error message along with a suggested
// action the user can take to resolve or work around the issue.
//
// For errors that are not recoverable or have no clear action, the action
// string will be empty.
func Actionable(err error) (message, action string) {
	if err == nil {
		return "", ""
	}
	info := getErrorInfo(err)
	return info.Message, info.Action
}
