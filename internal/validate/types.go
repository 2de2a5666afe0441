// Package validate implements the pre-insertion validation engine: a pure,
// deterministic rule evaluation over a normalized draft and the published
// corpus. Identical inputs always yield an identical, identically-ordered
// violation list; all applicable rules run even after one fails.
package validate

import (
	"github.com/votewire/autopost/internal/constants"
)

// Violation codes. Stable identifiers for machine handling; the Message
// carries the human phrasing.
const (
	CodeBadStatus         = "bad_status"
	CodeSkipReasonMissing = "skip_reason_missing"

	CodeTitleMissing = "title_missing"
	CodeTitleShort   = "title_short"
	CodeExcerptShort = "excerpt_short"
	CodeContentShort = "content_short"

	CodeSlugFormat     = "slug_format"
	CodeTitleDuplicate = "title_duplicate"
	CodeKeywordCount   = "keyword_count"
	CodeFaqMissing     = "faq_missing"
	CodeFaqQuestions   = "faq_questions"

	CodeSourceCount   = "source_count"
	CodeSourceDomains = "source_domains"

	CodeProfileCandidateName    = "profile_candidate_name"
	CodeProfileElectionName     = "profile_election_name"
	CodeProfileElectionNepal    = "profile_election_nepal"
	CodeProfileElectionDate     = "profile_election_date"
	CodeProfileParty            = "profile_party"
	CodeProfileConstituency     = "profile_constituency"
	CodeProfilePosition         = "profile_position"
	CodeProfileBio              = "profile_bio"
	CodeProfileSourceURL        = "profile_source_url"
	CodeProfileSourceMembership = "profile_source_membership"
	CodeProfileImageURL         = "profile_image_url"
	CodeProfileImageSourceURL   = "profile_image_source_url"

	CodeCandidateRepeat    = "candidate_repeat"
	CodeCandidateInTitle   = "candidate_in_title"
	CodeCandidateInExcerpt = "candidate_in_excerpt"
	CodeCandidateInContent = "candidate_in_content"

	CodeSeoKeyphraseShort           = "seo_keyphrase_short"
	CodeSeoMetaTitleWindow          = "seo_meta_title_window"
	CodeSeoMetaDescriptionWindow    = "seo_meta_description_window"
	CodeSeoKeyphraseTitle           = "seo_keyphrase_title"
	CodeSeoKeyphraseExcerpt         = "seo_keyphrase_excerpt"
	CodeSeoKeyphraseContent         = "seo_keyphrase_content"
	CodeSeoKeyphraseMetaTitle       = "seo_keyphrase_meta_title"
	CodeSeoKeyphraseMetaDescription = "seo_keyphrase_meta_description"
	CodeSeoKeyphraseSlug            = "seo_keyphrase_slug"
	CodeSeoSlugHint                 = "seo_slug_hint"

	CodeFactsEmpty          = "facts_empty"
	CodeFactConfidenceNaN   = "fact_confidence_nan"
	CodeFactSupportCount    = "fact_support_count"
	CodeFactConfidenceFloor = "fact_confidence_floor"
)

// Violation is one failed rule: a stable code plus the human message.
type Violation struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// String returns the human message.
func (v Violation) String() string {
	return v.Message
}

// Messages extracts the message strings from a violation list, in order.
func Messages(violations []Violation) []string {
	if len(violations) == 0 {
		return nil
	}
	msgs := make([]string, len(violations))
	for i, v := range violations {
		msgs[i] = v.Message
	}
	return msgs
}

// Policy carries the tunable validation thresholds. Field-length floors are
// part of the data model and fixed; everything here is legitimate operator
// configuration.
type Policy struct {
	// MinSources is the floor for both source count and distinct domains.
	MinSources int

	// MinConfidence is the floor for each key fact's confidence score.
	MinConfidence int

	// SimilarityThreshold is the Jaccard score treated as a near-duplicate.
	SimilarityThreshold float64

	// ElectionDate is the exact date a profile must reference, ISO form.
	ElectionDate string

	// MetaTitleMin and MetaTitleMax bound seo.meta_title length.
	MetaTitleMin int
	MetaTitleMax int

	// MetaDescriptionMin and MetaDescriptionMax bound seo.meta_description
	// length.
	MetaDescriptionMin int
	MetaDescriptionMax int
}

// DefaultPolicy returns the stock thresholds.
func DefaultPolicy() Policy {
	return Policy{
		MinSources:          constants.DefaultMinSources,
		MinConfidence:       constants.DefaultMinConfidence,
		SimilarityThreshold: constants.DefaultSimilarityThreshold,
		ElectionDate:        constants.DefaultElectionDate,
		MetaTitleMin:        constants.MetaTitleMin,
		MetaTitleMax:        constants.MetaTitleMax,
		MetaDescriptionMin:  constants.MetaDescriptionMin,
		MetaDescriptionMax:  constants.MetaDescriptionMax,
	}
}
