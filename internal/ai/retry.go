package ai

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/votewire/autopost/internal/domain"
	apperrors "github.com/votewire/autopost/internal/errors"
)

// timeSleep is a wrapper for time.After that can be overridden in tests.
// It returns a channel that receives after the given duration.
//
// The interface type `interface{ Nanoseconds() int64 }` is used instead of
// time.Duration to accept any duration-like type, providing flexibility for
// test mocking while maintaining type safety.
//
//nolint:gochecknoglobals // Required for test mocking
var timeSleep = func(d interface{ Nanoseconds() int64 }) <-chan time.Time {
	return time.After(time.Duration(d.Nanoseconds()))
}

// rateLimitMarkers are the substrings that identify a rate-limit response in
// CLI output. Matching is case-insensitive.
//
//nolint:gochecknoglobals // Constant-like structure
var rateLimitMarkers = []string{
	"429",
	"rate limit",
	"too many requests",
	"quota",
	"resource exhausted",
}

// isRateLimited reports whether a failed attempt hit a provider rate limit.
// Only rate limits are retried; timeouts, decode failures, missing binaries,
// and every other failure propagate immediately.
func isRateLimited(err error, stdout, stderr []byte) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	if errors.Is(err, apperrors.ErrCommandTimeout) {
		return false
	}
	// Structural failures never clear up on their own.
	if errors.Is(err, apperrors.ErrDraftDecode) || errors.Is(err, apperrors.ErrCLINotFound) {
		return false
	}

	text := strings.ToLower(err.Error() + " " + string(stdout) + " " + string(stderr))
	for _, marker := range rateLimitMarkers {
		if strings.Contains(text, marker) {
			return true
		}
	}
	return false
}

// attemptOutput carries the raw CLI output of a failed attempt into the
// rate-limit classifier.
type attemptOutput struct {
	stdout []byte
	stderr []byte
}

// generateWithRetry runs fn up to attempts times, waiting baseWait × N
// before retry N+1 (linear backoff: 30s then 60s for a 30s base). Only
// rate-limited failures are retried. The successful result's Attempts field
// is set to the number of invocations made.
func generateWithRetry(
	ctx context.Context,
	attempts int,
	baseWait time.Duration,
	errType error,
	logger zerolog.Logger,
	fn func(context.Context) (*domain.GenerateResult, attemptOutput, error),
) (*domain.GenerateResult, error) {
	if attempts < 1 {
		attempts = 1
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		result, output, err := fn(ctx)
		if err == nil {
			result.Attempts = attempt
			return result, nil
		}

		if !isRateLimited(err, output.stdout, output.stderr) {
			return nil, err
		}

		lastErr = err
		if attempt < attempts {
			wait := baseWait * time.Duration(attempt)
			logger.Warn().
				Int("attempt", attempt).
				Int("max_attempts", attempts).
				Dur("wait", wait).
				Msg("rate limit hit, backing off before retry")
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-timeSleep(wait):
			}
		}
	}

	return nil, fmt.Errorf("%w: rate limit retries exhausted: %w", errType, lastErr)
}
