// Package domain provides shared domain types for the autopost pipeline.
package domain

import "github.com/votewire/autopost/internal/constants"

// Re-export RunState and PostStatus from constants package.
// This allows consumers to import domain types and state types together,
// providing a unified API for working with autopost domain objects.
//
// Example usage:
//
//	import "github.com/votewire/autopost/internal/domain"
//
//	outcome := domain.Outcome{
//	    State: domain.RunStateAccepted,
//	}
type (
	// RunState represents the state of a run in the pipeline state machine.
	RunState = constants.RunState

	// PostStatus represents the publication status requested on insert.
	PostStatus = constants.PostStatus
)

// Re-export RunState constants for convenience.
// These mirror the values in internal/constants/status.go.
const (
	// RunStateIdle indicates a run that has not started yet.
	RunStateIdle = constants.RunStateIdle

	// RunStateLockAcquired indicates the run lock is held.
	RunStateLockAcquired = constants.RunStateLockAcquired

	// RunStateCorpusLoaded indicates titles and candidates were loaded.
	RunStateCorpusLoaded = constants.RunStateCorpusLoaded

	// RunStateGenerated indicates the AI CLI returned a decodable draft.
	RunStateGenerated = constants.RunStateGenerated

	// RunStateNormalized indicates SEO normalization was applied.
	RunStateNormalized = constants.RunStateNormalized

	// RunStateValidated indicates the draft passed every validation rule.
	RunStateValidated = constants.RunStateValidated

	// RunStateRejected indicates validation produced violations.
	RunStateRejected = constants.RunStateRejected

	// RunStateSkipped indicates the model explicitly declined.
	RunStateSkipped = constants.RunStateSkipped

	// RunStateAccepted indicates the post was inserted (or dry-run passed).
	RunStateAccepted = constants.RunStateAccepted

	// RunStateAborted indicates an operational failure ended the run.
	RunStateAborted = constants.RunStateAborted

	// RunStateReleased indicates the run lock was released.
	RunStateReleased = constants.RunStateReleased
)

// Re-export PostStatus constants for convenience.
const (
	// PostStatusPublish publishes the post immediately on insert.
	PostStatusPublish = constants.PostStatusPublish

	// PostStatusDraft inserts the post as an unpublished draft.
	PostStatusDraft = constants.PostStatusDraft

	// PostStatusPending inserts the post awaiting editorial review.
	PostStatusPending = constants.PostStatusPending

	// PostStatusFuture schedules the post for later publication.
	PostStatusFuture = constants.PostStatusFuture
)
