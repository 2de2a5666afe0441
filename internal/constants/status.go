// Package constants provides centralized constant values used throughout autopost.
package constants

// RunState represents the state of one coordinator run in the state machine.
// State values use snake_case for JSON serialization compatibility.
type RunState string

// Run state constants define the valid states a run can be in.
// These follow the single-flight run lifecycle:
//
//	Idle → LockAcquired, Aborted
//	LockAcquired → CorpusLoaded, Aborted
//	CorpusLoaded → Generated
//	Generated → Normalized
//	Normalized → Validated
//	Validated → Rejected, Skipped, Accepted
//	Rejected, Skipped, Accepted → Released
const (
	// RunStateIdle indicates a run has been created but has not yet taken the lock.
	RunStateIdle RunState = "idle"

	// RunStateLockAcquired indicates the run holds the exclusive lock marker.
	RunStateLockAcquired RunState = "lock_acquired"

	// RunStateCorpusLoaded indicates existing titles and candidate names have
	// been fetched fresh for this run.
	RunStateCorpusLoaded RunState = "corpus_loaded"

	// RunStateGenerated indicates the generation service returned a decodable draft.
	RunStateGenerated RunState = "generated"

	// RunStateNormalized indicates SEO normalization has been applied to the draft.
	RunStateNormalized RunState = "normalized"

	// RunStateValidated indicates the validation engine has produced its
	// violation list (possibly empty).
	RunStateValidated RunState = "validated"

	// RunStateRejected indicates validation produced one or more violations.
	// The draft is discarded and the run exits with the rejected code.
	RunStateRejected RunState = "rejected"

	// RunStateSkipped indicates the model explicitly declined to produce a
	// profile. A routine outcome, not an error.
	RunStateSkipped RunState = "skipped"

	// RunStateAccepted indicates validation passed. The draft was handed to
	// the insertion endpoint, or deliberately withheld under dry-run.
	RunStateAccepted RunState = "accepted"

	// RunStateAborted indicates the lock was held by another live run.
	// A clean no-op exit reached before any corpus read.
	RunStateAborted RunState = "aborted"

	// RunStateReleased indicates the lock has been released and the run is over.
	RunStateReleased RunState = "released"
)

// String returns the string representation of the RunState.
// This implements fmt.Stringer for convenient logging and debugging.
func (s RunState) String() string {
	return string(s)
}

// PostStatus represents the target status for an inserted post.
type PostStatus string

// Post status constants accepted by the insertion endpoint.
const (
	// PostStatusPublish publishes the post immediately.
	PostStatusPublish PostStatus = "publish"

	// PostStatusDraft saves the post as an unpublished draft.
	PostStatusDraft PostStatus = "draft"

	// PostStatusPending queues the post for editorial review.
	PostStatusPending PostStatus = "pending"

	// PostStatusFuture schedules the post for later publication.
	PostStatusFuture PostStatus = "future"
)

// String returns the string representation of the PostStatus.
func (s PostStatus) String() string {
	return string(s)
}

// ValidPostStatus reports whether s is one of the accepted post statuses.
func ValidPostStatus(s PostStatus) bool {
	switch s {
	case PostStatusPublish, PostStatusDraft, PostStatusPending, PostStatusFuture:
		return true
	default:
		return false
	}
}

// CorpusBackend selects how the corpus store reads existing content.
type CorpusBackend string

// Corpus backend constants.
const (
	// CorpusBackendScript shells out to the PHP helper scripts (default).
	CorpusBackendScript CorpusBackend = "script"

	// CorpusBackendDB queries the site content database directly.
	CorpusBackendDB CorpusBackend = "db"
)

// String returns the string representation of the CorpusBackend.
func (b CorpusBackend) String() string {
	return string(b)
}
