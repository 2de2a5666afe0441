// Package similarity implements the near-duplicate title detection used to
// keep generated posts from re-covering existing topics: token-set Jaccard
// scoring over stopword-filtered title tokens, plus an exact match on
// normalized titles.
package similarity

import (
	"regexp"
	"strings"
)

// stopwords is the fixed set excluded from title tokens. It targets the
// connective words that inflate similarity between unrelated titles.
var stopwords = map[string]struct{}{
	"about": {}, "after": {}, "again": {}, "against": {}, "also": {},
	"and": {}, "are": {}, "been": {}, "before": {}, "being": {},
	"between": {}, "could": {}, "during": {}, "from": {}, "have": {},
	"into": {}, "more": {}, "most": {}, "over": {}, "that": {},
	"their": {}, "them": {}, "then": {}, "there": {}, "these": {},
	"they": {}, "this": {}, "through": {}, "under": {}, "using": {},
	"what": {}, "when": {}, "where": {}, "which": {}, "with": {},
	"your": {},
}

var (
	nonAlnumRe = regexp.MustCompile(`[^a-z0-9]+`)
	alnumRunRe = regexp.MustCompile(`[a-z0-9]+`)
	spaceRunRe = regexp.MustCompile(`\s+`)
)

// NormalizeTitle lower-cases text, replaces non-alphanumeric characters
// with spaces, and collapses whitespace.
func NormalizeTitle(text string) string {
	lowered := nonAlnumRe.ReplaceAllString(strings.ToLower(text), " ")
	return strings.TrimSpace(spaceRunRe.ReplaceAllString(lowered, " "))
}

// NormalizeCandidateName normalizes a candidate name for the
// already-profiled comparison. Shares NormalizeTitle's semantics so the
// check is case- and punctuation-insensitive.
func NormalizeCandidateName(name string) string {
	return NormalizeTitle(name)
}

// Tokens returns the significant tokens of text as a set: alphanumeric runs
// of the lower-cased text, longer than two characters, minus stopwords.
func Tokens(text string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, token := range alnumRunRe.FindAllString(strings.ToLower(text), -1) {
		if len(token) <= 2 {
			continue
		}
		if _, stop := stopwords[token]; stop {
			continue
		}
		set[token] = struct{}{}
	}
	return set
}

// Jaccard computes |a∩b| / |a∪b|. Defined as 0 when either set is empty,
// so two empty titles never count as similar.
func Jaccard(a, b map[string]struct{}) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}

	intersection := 0
	for token := range a {
		if _, ok := b[token]; ok {
			intersection++
		}
	}
	union := len(a) + len(b) - intersection
	if union == 0 {
		return 0
	}
	return float64(intersection) / float64(union)
}

// Detector flags near-duplicate titles against a published corpus.
type Detector struct {
	threshold float64
}

// NewDetector creates a Detector that treats a Jaccard score at or above
// threshold as a near-duplicate.
func NewDetector(threshold float64) *Detector {
	return &Detector{threshold: threshold}
}

// Threshold returns the configured similarity threshold.
func (d *Detector) Threshold() float64 {
	return d.threshold
}

// IsNearDuplicate reports whether newTitle collides with any existing
// title: either the normalized forms match exactly, or the token-set
// Jaccard score reaches the threshold.
func (d *Detector) IsNearDuplicate(newTitle string, existingTitles []string) bool {
	normalizedNew := NormalizeTitle(newTitle)
	newTokens := Tokens(newTitle)

	for _, existing := range existingTitles {
		if normalizedNew == NormalizeTitle(existing) {
			return true
		}
		if Jaccard(newTokens, Tokens(existing)) >= d.threshold {
			return true
		}
	}
	return false
}
