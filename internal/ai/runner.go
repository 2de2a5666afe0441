// Package ai invokes the generation CLIs and decodes their draft output.
//
// This package defines the Runner interface for draft generation and
// provides the CodexRunner and GeminiRunner implementations, plus a
// registry-backed MultiRunner that routes by agent.
//
// IMPORTANT: This package may import internal/constants, internal/errors,
// internal/config, internal/domain, and internal/proc. It MUST NOT import
// internal/pipeline or internal/cli.
package ai

import (
	"context"

	"github.com/votewire/autopost/internal/domain"
)

// Runner defines the interface for draft generation.
// Implementations invoke a generation CLI as a bounded subprocess and
// return the decoded draft.
//
// Context should be used to control cancellation; the per-attempt deadline
// comes from the request (or config) timeout.
type Runner interface {
	// Generate executes a generation request and returns the decoded draft.
	// Rate-limited attempts are retried per the configured budget; every
	// other failure propagates immediately. Returns an error wrapped with
	// the agent's invocation sentinel on failure.
	Generate(ctx context.Context, req *domain.GenerateRequest) (*domain.GenerateResult, error)
}
