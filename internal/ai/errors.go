package ai

import (
	"fmt"
	"strings"

	apperrors "github.com/votewire/autopost/internal/errors"
)

// CLIInfo contains agent-specific information for error messages.
type CLIInfo struct {
	Name        string // CLI command name (e.g., "codex", "gemini")
	InstallHint string // Installation instructions
	ErrType     error  // Sentinel error type for this agent
	EnvVar      string // API key environment variable name
}

// WrapCLIExecutionError wraps an execution error with agent-specific context.
// This is shared logic used by all CLI-based generation runners. The original
// error stays in the chain so errors.Is checks for ErrCommandTimeout and
// friends keep working.
func WrapCLIExecutionError(info CLIInfo, err error, stderr []byte) error {
	stderrStr := strings.TrimSpace(string(stderr))

	// Check for CLI not found
	if strings.Contains(stderrStr, "command not found") ||
		strings.Contains(err.Error(), "executable file not found") {
		return fmt.Errorf("%w: %w: %s CLI not found - %s", info.ErrType, apperrors.ErrCLINotFound, info.Name, info.InstallHint)
	}

	// Check for API key errors
	if strings.Contains(stderrStr, "api key") ||
		strings.Contains(stderrStr, "API key") ||
		strings.Contains(stderrStr, "authentication") ||
		strings.Contains(stderrStr, info.EnvVar) {
		return fmt.Errorf("%w: API key error: %s", info.ErrType, stderrStr)
	}

	// Default wrapping keeps the original chain, so ErrCommandTimeout and
	// ErrCommandFailed stay visible to the run coordinator.
	return fmt.Errorf("%w: %w", info.ErrType, err)
}
