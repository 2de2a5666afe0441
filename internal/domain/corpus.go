// Package domain provides shared domain types for the autopost pipeline.
package domain

// Corpus is the published history loaded before generation: existing post
// titles and the candidate names already profiled. Validation uses it for
// near-duplicate and repeat-candidate checks; the prompt includes it so the
// model avoids both in the first place.
type Corpus struct {
	// Titles holds existing post titles, order preserved, empties dropped.
	Titles []string

	// Candidates holds already-profiled candidate names, order preserved.
	Candidates []string
}

// Empty reports whether the corpus carries no history at all. An empty
// corpus is legal (first run) and simply means nothing to collide with.
func (c Corpus) Empty() bool {
	return len(c.Titles) == 0 && len(c.Candidates) == 0
}
