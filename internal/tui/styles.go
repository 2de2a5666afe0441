// Package tui renders command output for the autopost CLI.
//
// It provides a styled TTY surface and a structured JSON surface behind one
// Output interface, plus the shared color and icon vocabulary for run states.
// All colors use AdaptiveColor so output stays readable on light and dark
// terminals, and the NO_COLOR convention is honored.
package tui

import (
	"os"
	"strings"
	"unicode/utf8"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"github.com/votewire/autopost/internal/constants"
)

// Semantic colors and text styles shared by all output components.
//
//nolint:gochecknoglobals // Intentional package-level style vocabulary
var (
	// ColorPrimary is blue, used for informational output and in-flight states.
	ColorPrimary = lipgloss.AdaptiveColor{Light: "#0087AF", Dark: "#00D7FF"}

	// ColorSuccess is green, used for accepted drafts and healthy probes.
	ColorSuccess = lipgloss.AdaptiveColor{Light: "#008700", Dark: "#00FF87"}

	// ColorWarning is yellow, used for warnings and attention-required states.
	ColorWarning = lipgloss.AdaptiveColor{Light: "#AF8700", Dark: "#FFD700"}

	// ColorError is red, used for rejections and failed probes.
	ColorError = lipgloss.AdaptiveColor{Light: "#AF0000", Dark: "#FF5F5F"}

	// ColorMuted is gray, used for secondary text and benign no-op states.
	ColorMuted = lipgloss.AdaptiveColor{Light: "#585858", Dark: "#6C6C6C"}

	// StyleBold applies bold formatting to text.
	StyleBold = lipgloss.NewStyle().Bold(true)

	// StyleDim applies dim/faint formatting to text.
	StyleDim = lipgloss.NewStyle().Faint(true)

	// StyleUnderline applies underline formatting to text.
	StyleUnderline = lipgloss.NewStyle().Underline(true)
)

// RunStateColors returns the semantic color for every run state.
func RunStateColors() map[constants.RunState]lipgloss.AdaptiveColor {
	return map[constants.RunState]lipgloss.AdaptiveColor{
		// In-flight states - Blue
		constants.RunStateIdle:         ColorPrimary,
		constants.RunStateLockAcquired: ColorPrimary,
		constants.RunStateCorpusLoaded: ColorPrimary,
		constants.RunStateGenerated:    ColorPrimary,
		constants.RunStateNormalized:   ColorPrimary,
		constants.RunStateValidated:    ColorPrimary,

		// Published - Green
		constants.RunStateAccepted: ColorSuccess,
		constants.RunStateReleased: ColorSuccess,

		// Needs operator attention - Yellow
		constants.RunStateRejected: ColorWarning,

		// Benign no-ops - Gray
		constants.RunStateSkipped: ColorMuted,
		constants.RunStateAborted: ColorMuted,
	}
}

// RunStateIcon returns the icon for a run state, used in run summaries and
// status lines.
func RunStateIcon(state constants.RunState) string {
	icons := map[constants.RunState]string{
		constants.RunStateIdle:         "○", // Waiting for the lock
		constants.RunStateLockAcquired: "●", // Active
		constants.RunStateCorpusLoaded: "●",
		constants.RunStateGenerated:    "⟳", // In progress
		constants.RunStateNormalized:   "⟳",
		constants.RunStateValidated:    "⟳",
		constants.RunStateAccepted:     "✓", // Published
		constants.RunStateReleased:     "✓",
		constants.RunStateRejected:     "✗", // Validation violations
		constants.RunStateSkipped:      "−", // Model declined
		constants.RunStateAborted:      "○", // Another run held the lock
	}
	if icon, ok := icons[state]; ok {
		return icon
	}
	return "?"
}

// IsAttentionState returns true if the run state needs an operator to act.
// A rejected draft sits in the snapshot directory until someone inspects it.
func IsAttentionState(state constants.RunState) bool {
	return state == constants.RunStateRejected
}

// TableStyles holds lipgloss styles for table rendering.
type TableStyles struct {
	Header      lipgloss.Style
	Cell        lipgloss.Style
	Dim         lipgloss.Style
	StateColors map[constants.RunState]lipgloss.AdaptiveColor
}

// NewTableStyles creates styles for table rendering.
func NewTableStyles() *TableStyles {
	return &TableStyles{
		Header: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.AdaptiveColor{Light: "#333333", Dark: "#DDDDDD"}),
		Cell: lipgloss.NewStyle(),
		Dim: lipgloss.NewStyle().
			Foreground(lipgloss.AdaptiveColor{Light: "#666666", Dark: "#888888"}),
		StateColors: RunStateColors(),
	}
}

// OutputStyles holds common output styles.
type OutputStyles struct {
	Success lipgloss.Style
	Error   lipgloss.Style
	Warning lipgloss.Style
	Info    lipgloss.Style
	Dim     lipgloss.Style
}

// NewOutputStyles creates common output styles using AdaptiveColor for
// light/dark terminal support.
func NewOutputStyles() *OutputStyles {
	return &OutputStyles{
		Success: lipgloss.NewStyle().
			Foreground(ColorSuccess).
			Bold(true),
		Error: lipgloss.NewStyle().
			Foreground(ColorError).
			Bold(true),
		Warning: lipgloss.NewStyle().
			Foreground(ColorWarning),
		Info: lipgloss.NewStyle().
			Foreground(ColorPrimary),
		Dim: lipgloss.NewStyle().
			Foreground(ColorMuted),
	}
}

// CheckNoColor respects the NO_COLOR environment variable.
// Call this at the start of commands that output styled text.
func CheckNoColor() {
	if !HasColorSupport() {
		lipgloss.SetColorProfile(termenv.Ascii)
	}
}

// HasColorSupport returns true if the terminal supports colors.
// Returns false if NO_COLOR is set (any value including empty string) or
// TERM=dumb. This follows the NO_COLOR standard: https://no-color.org/
func HasColorSupport() bool {
	// NO_COLOR spec: any value, including empty, disables color.
	if _, exists := os.LookupEnv("NO_COLOR"); exists {
		return false
	}

	if os.Getenv("TERM") == "dumb" {
		return false
	}

	return true
}

// padRight pads a string to the right to reach the target width, counting
// runes rather than bytes. Cells are padded before styling so the count
// never sees escape codes.
func padRight(s string, width int) string {
	runeCount := utf8.RuneCountInString(s)
	if runeCount >= width {
		runes := []rune(s)
		return string(runes[:width])
	}
	return s + strings.Repeat(" ", width-runeCount)
}
