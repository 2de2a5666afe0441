// Package errors provides centralized error handling for autopost.
//
// This package defines sentinel errors used for programmatic error categorization
// throughout the application. All error types can be checked using errors.Is().
//
// The sentinels map onto the run-outcome taxonomy: lock contention is a clean
// no-op, validation rejection has its own exit code, and collaborator failures
// are the only operational errors a healthy deployment should ever log.
//
// IMPORTANT: This package MUST NOT import any other internal packages.
// Only standard library imports are allowed.
package errors

import (
	"errors"
	"fmt"
)

// Sentinel errors for error categorization.
// These allow callers to check error types with errors.Is().
// All errors use lowercase descriptions per Go conventions.
var (
	// ErrLockHeld indicates the run-lock marker exists and is not stale.
	// Another run is (or very recently was) active; the current run exits
	// cleanly without touching the corpus.
	ErrLockHeld = errors.New("run lock held by another run")

	// ErrLockNotStale indicates a stale-lock eviction was requested for a
	// marker that is younger than the staleness threshold.
	ErrLockNotStale = errors.New("lock marker is not stale")

	// ErrCommandFailed indicates an external process exited non-zero.
	ErrCommandFailed = errors.New("command failed")

	// ErrCommandTimeout indicates an external process exceeded its deadline
	// and was forcibly terminated along with its process group.
	ErrCommandTimeout = errors.New("command timed out")

	// ErrRateLimited indicates the generation service signaled a rate limit.
	// This is the only failure class that is retried.
	ErrRateLimited = errors.New("generation rate limited")

	// ErrGenerationFailed indicates the generation call failed for a reason
	// other than rate limiting, or the retry budget was exhausted.
	ErrGenerationFailed = errors.New("generation failed")

	// ErrCodexInvocation indicates the codex CLI failed to execute or
	// returned a non-zero exit code.
	ErrCodexInvocation = errors.New("codex invocation failed")

	// ErrGeminiInvocation indicates the gemini CLI failed to execute or
	// returned a non-zero exit code.
	ErrGeminiInvocation = errors.New("gemini invocation failed")

	// ErrAgentNotFound indicates no runner is registered for the requested agent.
	ErrAgentNotFound = errors.New("agent not found")

	// ErrCLINotFound indicates the agent CLI binary could not be resolved.
	ErrCLINotFound = errors.New("agent cli not found")

	// ErrDraftDecode indicates the generation service returned bytes that do
	// not decode into the draft shape. A contract failure of the
	// collaborator, not a validation rejection.
	ErrDraftDecode = errors.New("draft decode failed")

	// ErrDraftRejected indicates validation produced one or more violations.
	// A routine outcome with its own exit code, not an operational failure.
	ErrDraftRejected = errors.New("draft rejected by validation")

	// ErrCorpusUnavailable indicates the corpus store could not serve a
	// titles or candidates query.
	ErrCorpusUnavailable = errors.New("corpus store unavailable")

	// ErrInsertFailed indicates the insertion endpoint rejected or failed to
	// persist an accepted draft.
	ErrInsertFailed = errors.New("post insertion failed")

	// ErrScriptMissing indicates a required helper script does not exist at
	// its configured path. Caught in preflight before the lock is taken.
	ErrScriptMissing = errors.New("helper script missing")

	// ErrInvalidTransition indicates an attempt to move the run state
	// machine along an edge that does not exist.
	ErrInvalidTransition = errors.New("invalid run state transition")

	// ErrSnapshotNotFound indicates no draft snapshot exists to inspect.
	ErrSnapshotNotFound = errors.New("snapshot not found")

	// ErrMissingRequiredTools indicates environment setup found required CLI
	// tools absent or too old.
	ErrMissingRequiredTools = errors.New("required tools missing")

	// ErrEmptyValue indicates a required value was empty.
	ErrEmptyValue = errors.New("empty value")

	// ErrInvalidArgument indicates an invalid argument was provided.
	ErrInvalidArgument = errors.New("invalid argument")
)

// Configuration validation sentinels.
var (
	// ErrConfigNil indicates that a nil config was passed to validation.
	ErrConfigNil = errors.New("config is nil")

	// ErrConfigInvalidAI indicates an invalid AI configuration value.
	ErrConfigInvalidAI = errors.New("invalid ai configuration")

	// ErrConfigInvalidPolicy indicates an invalid policy threshold value.
	ErrConfigInvalidPolicy = errors.New("invalid policy configuration")

	// ErrConfigInvalidCorpus indicates an invalid corpus configuration value.
	ErrConfigInvalidCorpus = errors.New("invalid corpus configuration")

	// ErrConfigInvalidPublish indicates an invalid publish configuration value.
	ErrConfigInvalidPublish = errors.New("invalid publish configuration")

	// ErrConfigInvalidLock indicates an invalid lock configuration value.
	ErrConfigInvalidLock = errors.New("invalid lock configuration")

	// ErrConfigInvalidLog indicates an invalid logging configuration value.
	ErrConfigInvalidLog = errors.New("invalid log configuration")

	// ErrConfigInvalidSnapshots indicates an invalid snapshot configuration value.
	ErrConfigInvalidSnapshots = errors.New("invalid snapshots configuration")
)

// RejectedError wraps the validation outcome so the CLI can map it to the
// rejected exit code and print the full violation list. It unwraps to
// ErrDraftRejected for errors.Is checks.
type RejectedError struct {
	// Violations holds the formatted violation messages in evaluation order.
	Violations []string
}

// NewRejectedError builds a RejectedError from an ordered violation list.
func NewRejectedError(violations []string) *RejectedError {
	return &RejectedError{Violations: violations}
}

// Error implements the error interface.
func (e *RejectedError) Error() string {
	n := len(e.Violations)
	if n == 1 {
		return fmt.Sprintf("%s: 1 violation", ErrDraftRejected.Error())
	}
	return fmt.Sprintf("%s: %d violations", ErrDraftRejected.Error(), n)
}

// Unwrap returns the sentinel so errors.Is(err, ErrDraftRejected) holds.
func (e *RejectedError) Unwrap() error {
	return ErrDraftRejected
}

// IsRejected checks whether an error represents a validation rejection.
func IsRejected(err error) bool {
	return errors.Is(err, ErrDraftRejected)
}

// RejectedViolations extracts the violation list from an error chain.
// Returns nil when the error is not a rejection.
func RejectedViolations(err error) []string {
	var e *RejectedError
	if errors.As(err, &e) {
		return e.Violations
	}
	return nil
}
