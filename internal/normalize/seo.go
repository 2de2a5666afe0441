package normalize

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/votewire/autopost/internal/constants"
	"github.com/votewire/autopost/internal/domain"
)

// SeoPolicy carries the tunable SEO normalization knobs. The character
// windows are policy, not law; the defaults are the historical operating
// points.
type SeoPolicy struct {
	// DefaultKeyphrase backfills focus_keyphrase when the title yields no
	// significant words.
	DefaultKeyphrase string

	// MetaTitleMin and MetaTitleMax bound the meta title length.
	MetaTitleMin int
	MetaTitleMax int

	// MetaDescriptionMin and MetaDescriptionMax bound the meta description
	// length.
	MetaDescriptionMin int
	MetaDescriptionMax int
}

// DefaultSeoPolicy returns the stock policy used when configuration does
// not override the windows.
func DefaultSeoPolicy() SeoPolicy {
	return SeoPolicy{
		DefaultKeyphrase:   constants.DefaultKeyphrase,
		MetaTitleMin:       constants.MetaTitleMin,
		MetaTitleMax:       constants.MetaTitleMax,
		MetaDescriptionMin: constants.MetaDescriptionMin,
		MetaDescriptionMax: constants.MetaDescriptionMax,
	}
}

// Normalizer applies the SEO field pass to publishable drafts.
type Normalizer struct {
	policy SeoPolicy
}

// NewNormalizer creates a Normalizer with the given policy.
func NewNormalizer(policy SeoPolicy) *Normalizer {
	return &Normalizer{policy: policy}
}

// Apply normalizes the draft's SEO fields in place. Skip drafts are left
// untouched. The pass is idempotent: applying it to its own output changes
// nothing.
//
// For publish drafts it:
//   - derives focus_keyphrase from the first four significant title words
//     when absent, falling back to the policy default,
//   - forces meta_title and meta_description to contain the keyphrase
//     (prepending it when missing) and to fit the policy windows,
//   - canonicalizes the slug, prepending the keyphrase's slug form when the
//     slug lacks it,
//   - sets seo_slug_hint to the final slug.
func (n *Normalizer) Apply(draft *domain.Draft) {
	if draft == nil || !draft.IsPublish() {
		return
	}

	title := CollapseWhitespace(draft.Title)
	excerpt := CollapseWhitespace(draft.Excerpt)

	keyphrase := CollapseWhitespace(draft.SEO.FocusKeyphrase)
	if keyphrase == "" {
		keyphrase = strings.Join(significantWords(title, 4), " ")
		if keyphrase == "" {
			keyphrase = n.policy.DefaultKeyphrase
		}
	}
	draft.SEO.FocusKeyphrase = keyphrase

	metaTitle := CollapseWhitespace(draft.SEO.MetaTitle)
	if metaTitle == "" {
		metaTitle = title
	}
	if !containsFold(metaTitle, keyphrase) {
		caser := cases.Title(language.English)
		metaTitle = strings.TrimSpace(caser.String(keyphrase) + ": " + metaTitle)
	}
	draft.SEO.MetaTitle = ExpandToMin(metaTitle, n.policy.MetaTitleMin, n.policy.MetaTitleMax, title)

	metaDescription := CollapseWhitespace(draft.SEO.MetaDescription)
	if metaDescription == "" {
		metaDescription = excerpt
	}
	if !containsFold(metaDescription, keyphrase) {
		metaDescription = strings.Trim(keyphrase+": "+metaDescription, ": ")
	}
	descFallback := excerpt
	if descFallback == "" {
		descFallback = title
	}
	draft.SEO.MetaDescription = ExpandToMin(metaDescription, n.policy.MetaDescriptionMin, n.policy.MetaDescriptionMax, descFallback)

	slugHint := CollapseWhitespace(draft.SEO.SeoSlugHint)
	if slugHint == "" {
		slugHint = SlugJoin(keyphrase)
	}
	draft.SEO.SeoSlugHint = CanonicalSlug(slugHint)

	slug := CanonicalSlug(draft.Slug)
	focusSlug := SlugJoin(keyphrase)
	if focusSlug != "" && !strings.Contains(slug, focusSlug) {
		parts := make([]string, 0, 2)
		for _, p := range []string{focusSlug, slug} {
			if p != "" {
				parts = append(parts, p)
			}
		}
		slug = CanonicalSlug(strings.Join(parts, "-"))
	}
	draft.Slug = slug

	// The hint tracks the final canonical slug.
	draft.SEO.SeoSlugHint = draft.Slug
}
