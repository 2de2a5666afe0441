package prompts

import (
	"time"

	"github.com/votewire/autopost/internal/constants"
)

// PromptID identifies a specific prompt template.
type PromptID string

// Prompt identifiers for the generation pipeline.
const (
	// ProfileGenerate is the candidate-profile generation prompt.
	ProfileGenerate PromptID = "profile/generate"
)

// isoDateLayout formats dates the way the prompt presents them.
const isoDateLayout = "2006-01-02"

// ProfileGenerateData contains input data for the candidate-profile prompt.
type ProfileGenerateData struct {
	// Today is the current date in ISO form.
	Today string
	// Topic is the configured primary topic area.
	Topic string
	// ElectionDate is the target election date in ISO form.
	ElectionDate string
	// ElectionDateHuman is the long form of ElectionDate, e.g. "March 5, 2026".
	ElectionDateHuman string
	// MinSources is the minimum number of distinct source domains.
	MinSources int
	// MinConfidence is the minimum key-fact confidence for publishable output.
	MinConfidence int
	// ExistingTitles lists published post titles the draft must not repeat.
	ExistingTitles []string
	// ExistingCandidates lists candidates already profiled.
	ExistingCandidates []string
}

// NewProfileGenerateData assembles the template data for ProfileGenerate.
// Titles and candidates are capped so an oversized corpus cannot blow the
// CLI context window. The human-readable election date falls back to the ISO
// form when the configured date does not parse.
func NewProfileGenerateData(topic, electionDate string, titles, candidates []string, minSources, minConfidence int, today time.Time) ProfileGenerateData {
	human := electionDate
	if parsed, err := time.Parse(isoDateLayout, electionDate); err == nil {
		human = parsed.Format("January 2, 2006")
	}
	return ProfileGenerateData{
		Today:              today.Format(isoDateLayout),
		Topic:              topic,
		ElectionDate:       electionDate,
		ElectionDateHuman:  human,
		MinSources:         minSources,
		MinConfidence:      minConfidence,
		ExistingTitles:     capEntries(titles, constants.MaxPromptTitles),
		ExistingCandidates: capEntries(candidates, constants.MaxPromptCandidates),
	}
}

// capEntries returns at most limit leading entries of items.
func capEntries(items []string, limit int) []string {
	if len(items) <= limit {
		return items
	}
	return items[:limit]
}
