// Package domain provides shared domain types for the autopost pipeline.
package domain

import "time"

// GenerateRequest contains the parameters for one draft-generation request.
// This is passed to ai.Runner implementations like CodexRunner.
//
// Example JSON representation:
//
//	{
//	    "agent": "codex",
//	    "prompt": "You write candidate profile posts...",
//	    "model": "gpt-5.3-codex",
//	    "timeout": "15m"
//	}
type GenerateRequest struct {
	// Agent specifies which AI CLI to use (codex, gemini).
	// If empty, the registry default applies.
	Agent Agent `json:"agent,omitempty"`

	// Prompt is the full generation prompt, including the published
	// history and the hard rules.
	Prompt string `json:"prompt"`

	// Model specifies which model to use. Empty means the agent default.
	Model string `json:"model,omitempty"`

	// Timeout is the maximum duration for the CLI invocation.
	Timeout time.Duration `json:"timeout"`

	// WorkingDir is the directory the CLI runs in. Empty means the
	// process working directory.
	WorkingDir string `json:"working_dir,omitempty"`
}

// GenerateResult captures the outcome of a draft-generation request.
//
// Example JSON representation:
//
//	{
//	    "draft": {"status": "publish", ...},
//	    "attempts": 2,
//	    "duration_ms": 184000
//	}
type GenerateResult struct {
	// Draft is the decoded draft. Never nil on success.
	Draft *Draft `json:"draft"`

	// Raw is the JSON body the CLI produced, kept verbatim for snapshots.
	Raw []byte `json:"-"`

	// Attempts is how many CLI invocations were made, including retries.
	Attempts int `json:"attempts"`

	// DurationMs is the total wall time across attempts in milliseconds.
	DurationMs int64 `json:"duration_ms"`
}
