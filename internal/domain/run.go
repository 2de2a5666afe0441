// Package domain provides shared domain types for the autopost pipeline.
package domain

import (
	"time"

	"github.com/votewire/autopost/internal/constants"
)

// Receipt is what the insertion backend reports after a successful insert.
type Receipt struct {
	// PostID is the identifier assigned by the publishing platform.
	PostID int64 `json:"post_id"`

	// URL is the public permalink, when the backend reports one.
	URL string `json:"url,omitempty"`

	// Raw preserves the backend's full response for the run report.
	Raw string `json:"raw,omitempty"`
}

// Outcome is the end-of-run report the pipeline hands back to the CLI.
// Exactly one terminal state is set; the other fields describe how the
// run got there.
type Outcome struct {
	// RunID identifies the run in logs and snapshots.
	RunID string `json:"run_id"`

	// State is the terminal run state (accepted, rejected, skipped, aborted).
	State constants.RunState `json:"state"`

	// Violations holds validation messages when State is rejected.
	Violations []string `json:"violations,omitempty"`

	// SkipReason carries the model's reason when State is skipped.
	SkipReason string `json:"skip_reason,omitempty"`

	// DryRun is true when validation passed but insertion was withheld.
	DryRun bool `json:"dry_run,omitempty"`

	// Receipt is set when State is accepted and the post was inserted.
	Receipt *Receipt `json:"receipt,omitempty"`

	// SnapshotPath is where the normalized draft was written, if anywhere.
	SnapshotPath string `json:"snapshot_path,omitempty"`

	// Title is the final post title, for the run summary.
	Title string `json:"title,omitempty"`

	// Slug is the final post slug, for the run summary.
	Slug string `json:"slug,omitempty"`

	// Attempts is how many generation attempts the run used.
	Attempts int `json:"attempts,omitempty"`

	// Duration is the total wall time of the run.
	Duration time.Duration `json:"duration"`
}

// Accepted reports whether the run ended with a post inserted (or a dry-run
// pass, which reaches the same state without the insert).
func (o *Outcome) Accepted() bool {
	return o.State == constants.RunStateAccepted
}

// Rejected reports whether validation turned the draft away.
func (o *Outcome) Rejected() bool {
	return o.State == constants.RunStateRejected
}
