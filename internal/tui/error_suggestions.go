// Package tui renders command output for the autopost CLI.
package tui

import (
	"errors"

	apperrors "github.com/votewire/autopost/internal/errors"
)

// ErrorSuggestion maps a sentinel error to its suggested fix.
// These provide actionable guidance when errors occur.
type ErrorSuggestion struct {
	Error      error
	Suggestion string
}

// errorSuggestions maps common errors to helpful suggestions.
// Each suggestion should be actionable and start with a verb.
//
//nolint:gochecknoglobals // Intentional package-level constant for error suggestions
var errorSuggestions = []ErrorSuggestion{
	// Lock errors
	{apperrors.ErrLockHeld, "Wait for the active run to finish, or lower lock.stale_after if the holder is dead"},
	{apperrors.ErrLockNotStale, "Wait for the active run to finish"},

	// Agent CLI errors
	{apperrors.ErrCLINotFound, "Install the agent CLI or set ai.binary in autopost.yaml"},
	{apperrors.ErrAgentNotFound, "Use: --agent codex or --agent gemini"},
	{apperrors.ErrCodexInvocation, "Check the codex CLI works: codex --version"},
	{apperrors.ErrGeminiInvocation, "Check the gemini CLI works: gemini --version"},
	{apperrors.ErrRateLimited, "Wait a few minutes and try again"},
	{apperrors.ErrCommandTimeout, "Raise ai.timeout in autopost.yaml"},
	{apperrors.ErrDraftDecode, "Inspect the saved payload: autopost validate"},

	// Corpus and publish errors
	{apperrors.ErrScriptMissing, "Check that corpus.script.dir and publish.dir point at the helper scripts"},
	{apperrors.ErrCorpusUnavailable, "Check corpus.db.dsn or set corpus.backend to script"},
	{apperrors.ErrInsertFailed, "Check the publish helper: autopost doctor"},

	// Draft errors
	{apperrors.ErrDraftRejected, "Inspect the violations: autopost validate"},
	{apperrors.ErrSnapshotNotFound, "Produce a snapshot first: autopost run --dry-run"},

	// Configuration errors
	{apperrors.ErrConfigNil, "Run: autopost init"},
	{apperrors.ErrConfigInvalidAI, "Check the ai section of autopost.yaml"},
	{apperrors.ErrConfigInvalidPolicy, "Check the policy section of autopost.yaml"},
	{apperrors.ErrConfigInvalidCorpus, "Check the corpus section of autopost.yaml"},
	{apperrors.ErrConfigInvalidPublish, "Check the publish section of autopost.yaml"},
	{apperrors.ErrConfigInvalidLock, "Check the lock section of autopost.yaml"},
	{apperrors.ErrConfigInvalidLog, "Check the log section of autopost.yaml"},
	{apperrors.ErrConfigInvalidSnapshots, "Check the snapshots section of autopost.yaml"},
}

// SuggestionForError returns a suggestion for the given error.
// Returns empty string if no suggestion is available.
func SuggestionForError(err error) string {
	if err == nil {
		return ""
	}

	for _, es := range errorSuggestions {
		if errors.Is(err, es.Error) {
			return es.Suggestion
		}
	}
	return ""
}

// WrapWithSuggestion attaches a suggestion to an error when one exists.
// Returns the original error unchanged when no suggestion is available.
// The wrapper unwraps to the original, so sentinel checks keep working
// either way.
func WrapWithSuggestion(err error) error {
	if err == nil {
		return nil
	}

	suggestion := SuggestionForError(err)
	if suggestion == "" {
		return err
	}
	return NewActionableError(err, suggestion)
}
