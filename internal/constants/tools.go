// Package constants provides centralized constant values used throughout autopost.
// This file contains tool-related constants for the tool detection system.
package constants

import "time"

// Tool detection timeout configuration.
const (
	// ToolDetectionTimeout is the maximum duration for detecting all tools.
	// Detection runs in parallel but must complete within this timeout.
	ToolDetectionTimeout = 2 * time.Second
)

// Tool names used by the tool detection system.
const (
	// ToolPHP is the PHP CLI that runs the corpus and publish helper scripts.
	ToolPHP = "php"

	// ToolCodex is the Codex CLI agent.
	ToolCodex = "codex"

	// ToolGemini is the Gemini CLI agent.
	ToolGemini = "gemini"
)

// Minimum version requirements for required tools.
const (
	// MinVersionPHP is the minimum required PHP version. The insert helper
	// bootstraps WordPress, which needs at least this.
	MinVersionPHP = "7.4.0"
)

// Tool version command arguments.
const (
	// VersionFlagStandard is the standard version flag used by most tools.
	VersionFlagStandard = "--version"
)
