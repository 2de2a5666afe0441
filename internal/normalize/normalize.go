// Package normalize provides text normalization for draft fields: whitespace
// collapsing, bounded trimming and padding, slug canonicalization, and the
// SEO field pass applied to publishable drafts before validation.
//
// All length arithmetic is in runes, not bytes, so multi-byte titles behave
// the same as ASCII ones.
package normalize

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/votewire/autopost/internal/constants"
)

// fillerPhrase pads meta fields that fall short of their minimum length
// after the fallback text has been appended. Prefixes of it are appended
// repeatedly, so it is reused cyclically when the gap exceeds its length.
const fillerPhrase = " Stay informed with verified facts, policy positions, and practical voter guidance."

var (
	whitespaceRe = regexp.MustCompile(`\s+`)
	alnumRunRe   = regexp.MustCompile(`[a-z0-9]+`)
)

// CollapseWhitespace replaces every whitespace run with a single space and
// trims the result.
func CollapseWhitespace(text string) string {
	return strings.TrimSpace(whitespaceRe.ReplaceAllString(text, " "))
}

// TrimToMax collapses whitespace and truncates text to at most maxChars
// runes, cutting at the last word boundary at or before the limit and
// stripping trailing punctuation.
func TrimToMax(text string, maxChars int) string {
	text = CollapseWhitespace(text)
	if maxChars < 0 {
		maxChars = 0
	}

	runes := []rune(text)
	if len(runes) <= maxChars {
		return text
	}

	clipped := strings.TrimRight(string(runes[:maxChars]), " ")
	if idx := strings.LastIndex(clipped, " "); idx >= 0 {
		clipped = clipped[:idx]
	}
	return strings.TrimRight(clipped, " ,;:-")
}

// ExpandToMin grows text to at least minChars runes and at most maxChars.
// Short text first gains the fallback (unless already present
// case-insensitively), then prefixes of the filler phrase sized to the
// remaining gap, and is finally trimmed with TrimToMax.
func ExpandToMin(text string, minChars, maxChars int, fallback string) string {
	text = CollapseWhitespace(text)
	fallback = CollapseWhitespace(fallback)

	if utf8.RuneCountInString(text) >= minChars {
		return TrimToMax(text, maxChars)
	}

	if fallback != "" && !containsFold(text, fallback) {
		sep := ""
		if text != "" {
			sep = " "
		}
		text = strings.TrimSpace(text + sep + fallback)
	}

	filler := []rune(fillerPhrase)
	for {
		current := utf8.RuneCountInString(text)
		if current >= minChars {
			break
		}
		remaining := minChars - current
		if remaining > len(filler) {
			remaining = len(filler)
		}
		chunk := string(filler[:remaining])
		if strings.TrimSpace(chunk) == "" {
			// A whitespace-only chunk would be collapsed away again;
			// include the next rune so each pass makes progress.
			chunk = string(filler[1 : remaining+1])
		}
		text = strings.TrimSpace(text + chunk)
	}

	return TrimToMax(text, maxChars)
}

// CanonicalSlug canonicalizes text into a kebab-case slug of at most
// constants.MaxSlugChars characters.
func CanonicalSlug(text string) string {
	return CanonicalSlugMax(text, constants.MaxSlugChars)
}

// CanonicalSlugMax extracts the alphanumeric runs of the lower-cased text,
// joins them with hyphens, and trims to maxChars at a hyphen boundary. An
// input with no alphanumeric content yields constants.DefaultSlug.
func CanonicalSlugMax(text string, maxChars int) string {
	normalized := SlugJoin(text)
	trimmed := strings.Trim(trimSlug(normalized, maxChars), "-")
	if trimmed == "" {
		return constants.DefaultSlug
	}
	return trimmed
}

// SlugJoin joins the alphanumeric runs of the lower-cased text with hyphens,
// with no length cap and no default. Used where an empty result must stay
// empty, such as deriving the keyphrase's slug form.
func SlugJoin(text string) string {
	return strings.Join(alnumRunRe.FindAllString(strings.ToLower(CollapseWhitespace(text)), -1), "-")
}

// trimSlug cuts a slug to maxChars, backing up to the previous hyphen so a
// token is never split. Slugs are ASCII, so byte indexing is safe.
func trimSlug(slug string, maxChars int) string {
	if maxChars < 0 {
		maxChars = 0
	}
	if len(slug) <= maxChars {
		return slug
	}
	clipped := slug[:maxChars]
	if idx := strings.LastIndex(clipped, "-"); idx >= 0 {
		clipped = clipped[:idx]
	}
	return clipped
}

// significantWords returns up to limit alphanumeric runs of the lower-cased
// text that are longer than two characters, in order.
func significantWords(text string, limit int) []string {
	words := make([]string, 0, limit)
	for _, w := range alnumRunRe.FindAllString(strings.ToLower(text), -1) {
		if len(w) <= 2 {
			continue
		}
		words = append(words, w)
		if len(words) == limit {
			break
		}
	}
	return words
}

// containsFold reports whether sub occurs in s, case-insensitively.
func containsFold(s, sub string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(sub))
}
