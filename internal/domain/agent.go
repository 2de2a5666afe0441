// Package domain provides shared domain types for the autopost pipeline.
package domain

// Agent represents an AI CLI agent type (e.g., "codex", "gemini").
// This determines which CLI tool is used to generate drafts.
type Agent string

// Agent constants define the supported AI CLI agents.
const (
	// AgentCodex uses the Codex CLI from OpenAI.
	AgentCodex Agent = "codex"

	// AgentGemini uses the Gemini CLI from Google.
	AgentGemini Agent = "gemini"
)

// String returns the string representation of the Agent.
// This implements fmt.Stringer for convenient logging and debugging.
func (a Agent) String() string {
	return string(a)
}

// IsValid checks if the agent is a recognized type.
func (a Agent) IsValid() bool {
	switch a {
	case AgentCodex, AgentGemini:
		return true
	}
	return false
}

// DefaultModel returns the default model for this agent when the
// configuration does not name one.
func (a Agent) DefaultModel() string {
	switch a {
	case AgentCodex:
		return "gpt-5.3-codex"
	case AgentGemini:
		return "gemini-3-flash-preview"
	default:
		return ""
	}
}

// ToolName returns the CLI command name for this agent.
func (a Agent) ToolName() string {
	switch a {
	case AgentCodex:
		return "codex"
	case AgentGemini:
		return "gemini"
	default:
		return ""
	}
}

// BinaryCandidates returns the executable names probed on PATH, in order.
// Codex installs under platform-specific names depending on the package
// manager, so all three are tried everywhere.
func (a Agent) BinaryCandidates() []string {
	switch a {
	case AgentCodex:
		return []string{"codex", "codex.cmd", "codex.exe"}
	case AgentGemini:
		return []string{"gemini", "gemini.cmd", "gemini.exe"}
	default:
		return nil
	}
}

// ModelEnvVar returns the environment variable that overrides the model
// for this agent.
func (a Agent) ModelEnvVar() string {
	switch a {
	case AgentCodex:
		return "CODEX_MODEL"
	case AgentGemini:
		return "GEMINI_MODEL"
	default:
		return ""
	}
}

// BinEnvVar returns the environment variable that overrides the CLI
// binary path for this agent.
func (a Agent) BinEnvVar() string {
	switch a {
	case AgentCodex:
		return "CODEX_BIN"
	case AgentGemini:
		return "GEMINI_BIN"
	default:
		return ""
	}
}

// InstallHint returns the installation instructions for this agent's CLI.
func (a Agent) InstallHint() string {
	switch a {
	case AgentCodex:
		return "Install Codex CLI: npm install -g @openai/codex"
	case AgentGemini:
		return "Install Gemini CLI: npm install -g @google/gemini-cli"
	default:
		return "Unknown agent"
	}
}
