// Package corpus reads the published history the pipeline validates against:
// existing post titles and the candidate names already profiled.
//
// Two backends exist. The script backend shells out to the PHP helpers that
// live next to the WordPress install and print JSON arrays. The db backend
// reads the same tables directly over sqlx. Both return trimmed values with
// empties dropped, order preserved, and neither caches: the corpus is read
// fresh every run.
package corpus

import (
	"context"
	"strings"

	"github.com/votewire/autopost/internal/domain"
	"github.com/votewire/autopost/internal/errors"
)

// Store serves the two read-only corpus queries.
type Store interface {
	// Titles returns existing published post titles.
	Titles(ctx context.Context) ([]string, error)

	// Candidates returns candidate names that already have a profile.
	Candidates(ctx context.Context) ([]string, error)
}

// Load reads both corpus queries through the store and assembles the corpus
// the pipeline hands to prompt construction and validation.
func Load(ctx context.Context, store Store) (domain.Corpus, error) {
	titles, err := store.Titles(ctx)
	if err != nil {
		return domain.Corpus{}, errors.Wrap(err, "load existing titles")
	}

	candidates, err := store.Candidates(ctx)
	if err != nil {
		return domain.Corpus{}, errors.Wrap(err, "load existing candidates")
	}

	return domain.Corpus{Titles: titles, Candidates: candidates}, nil
}

// cleanStrings trims every value and drops the empties, preserving order.
// Both backends funnel their raw rows through this before returning.
func cleanStrings(values []string) []string {
	cleaned := make([]string, 0, len(values))
	for _, value := range values {
		if trimmed := strings.TrimSpace(value); trimmed != "" {
			cleaned = append(cleaned, trimmed)
		}
	}
	return cleaned
}
