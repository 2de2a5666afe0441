package ai

import (
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/votewire/autopost/internal/domain"
	apperrors "github.com/votewire/autopost/internal/errors"
)

// ResolveBinary locates the CLI binary for an agent. Resolution order:
// the configured path, the agent's binary environment variable (CODEX_BIN,
// GEMINI_BIN), the PATH candidates, and finally the npm global directory on
// Windows (%APPDATA%\npm). A configured or env-provided path is trusted
// as-is; execution will surface a bad value.
func ResolveBinary(agent domain.Agent, configured string) (string, error) {
	if explicit := strings.TrimSpace(configured); explicit != "" {
		return explicit, nil
	}
	if explicit := strings.TrimSpace(os.Getenv(agent.BinEnvVar())); explicit != "" {
		return explicit, nil
	}

	for _, candidate := range agent.BinaryCandidates() {
		if found, err := exec.LookPath(candidate); err == nil {
			return found, nil
		}
	}

	// npm on Windows installs shims outside PATH for some shells.
	if appdata := strings.TrimSpace(os.Getenv("APPDATA")); appdata != "" {
		fallback := filepath.Join(appdata, "npm", agent.ToolName()+".cmd")
		if _, err := os.Stat(fallback); err == nil {
			return fallback, nil
		}
	}

	return "", apperrors.Wrapf(apperrors.ErrCLINotFound, "%s CLI not found - %s (or set %s)", agent.ToolName(), agent.InstallHint(), agent.BinEnvVar())
}

// ResolveModel picks the model for a request. Order: request, config, the
// agent's model environment variable (CODEX_MODEL, GEMINI_MODEL), then the
// agent default.
func ResolveModel(agent domain.Agent, requested, configured string) string {
	if requested != "" {
		return requested
	}
	if configured != "" {
		return configured
	}
	if fromEnv := strings.TrimSpace(os.Getenv(agent.ModelEnvVar())); fromEnv != "" {
		return fromEnv
	}
	return agent.DefaultModel()
}

// noColorEnv returns the extra environment for CLI children. NO_COLOR is
// only injected when the parent does not already set it.
func noColorEnv() []string {
	if _, ok := os.LookupEnv("NO_COLOR"); ok {
		return nil
	}
	return []string{"NO_COLOR=1"}
}
