// Package domain provides shared domain types for the autopost pipeline.
package domain

import (
	"bytes"
	"encoding/json"
	"net/url"
	"strconv"
	"strings"

	apperrors "github.com/votewire/autopost/internal/errors"
)

// DraftStatus discriminates the two draft variants the generation service
// may return. Any other value is caught by the validation status gate, not
// by the decoder, so a bad status is reported as a violation rather than a
// decode failure.
type DraftStatus string

// Draft status constants.
const (
	// DraftStatusPublish marks a draft the model considers publishable.
	DraftStatusPublish DraftStatus = "publish"

	// DraftStatusSkip marks a draft where the model explicitly declined,
	// carrying a reason instead of content.
	DraftStatusSkip DraftStatus = "skip"
)

// String returns the string representation of the DraftStatus.
func (s DraftStatus) String() string {
	return string(s)
}

// Draft is the content record produced by the Generation Service.
// A skip draft carries only Reason; a publish draft carries the full
// profile and must satisfy every validation rule before insertion.
//
// Example JSON representation (publish):
//
//	{
//	  "status": "publish",
//	  "title": "...",
//	  "slug": "...",
//	  "excerpt": "...",
//	  "content_html": "<p>...</p>",
//	  "topic_keywords": ["..."],
//	  "candidate_profile": {...},
//	  "seo": {...},
//	  "sources": [{"url": "https://..."}],
//	  "key_facts": [{"fact": "...", "confidence": 92, "supporting_source_urls": ["...", "..."]}]
//	}
type Draft struct {
	// Status is "publish" or "skip".
	Status DraftStatus `json:"status"`

	// Reason explains a skip; required for skip drafts, ignored otherwise.
	Reason string `json:"reason,omitempty"`

	// Title is the post title.
	Title string `json:"title"`

	// Slug is the kebab-case post identifier.
	Slug string `json:"slug"`

	// Excerpt is the short summary shown in listings.
	Excerpt string `json:"excerpt"`

	// ContentHTML is the full post body as HTML (no markdown fences).
	ContentHTML string `json:"content_html"`

	// TopicKeywords is the keyword set attached to the post.
	TopicKeywords []string `json:"topic_keywords"`

	// CandidateProfile holds the structured profile fields.
	CandidateProfile CandidateProfile `json:"candidate_profile"`

	// SEO holds the search-optimization block.
	SEO SeoBlock `json:"seo"`

	// Sources is the ordered citation list.
	Sources []Source `json:"sources"`

	// KeyFacts is the ordered list of load-bearing claims with support.
	KeyFacts []Fact `json:"key_facts"`
}

// IsSkip reports whether the model explicitly declined to produce a profile.
func (d *Draft) IsSkip() bool {
	return d.Status == DraftStatusSkip
}

// IsPublish reports whether the draft claims to be publishable.
func (d *Draft) IsPublish() bool {
	return d.Status == DraftStatusPublish
}

// Source is one citation: a URL plus optional explicit domain and publisher.
type Source struct {
	URL       string `json:"url"`
	Domain    string `json:"domain,omitempty"`
	Publisher string `json:"publisher,omitempty"`
}

// ResolvedDomain returns the explicit domain (lower-cased, trimmed) when
// present, otherwise the domain derived from the URL host.
func (s Source) ResolvedDomain() string {
	if d := strings.ToLower(strings.TrimSpace(s.Domain)); d != "" {
		return d
	}
	return DomainFromURL(s.URL)
}

// CandidateProfile holds the structured fields describing the candidate.
type CandidateProfile struct {
	CandidateName         string `json:"candidate_name"`
	ElectionName          string `json:"election_name"`
	ElectionDate          string `json:"election_date"`
	Party                 string `json:"party"`
	Constituency          string `json:"constituency"`
	CurrentPosition       string `json:"current_position"`
	ShortBio              string `json:"short_bio"`
	ProfileSourceURL      string `json:"profile_source_url"`
	ProfileImageURL       string `json:"profile_image_url,omitempty"`
	ProfileImageSourceURL string `json:"profile_image_source_url,omitempty"`
	ProfileImageCredit    string `json:"profile_image_credit,omitempty"`
}

// SeoBlock holds the search-optimization fields threaded through the post.
type SeoBlock struct {
	FocusKeyphrase  string `json:"focus_keyphrase"`
	MetaTitle       string `json:"meta_title"`
	MetaDescription string `json:"meta_description"`
	SeoSlugHint     string `json:"seo_slug_hint"`
}

// Fact is one claim with its supporting citations and a confidence score.
type Fact struct {
	// Statement is the claim text, passed through to the insertion payload.
	Statement string `json:"fact,omitempty"`

	// Confidence decodes leniently so a non-numeric value becomes a
	// validation violation instead of a decode failure.
	Confidence Confidence `json:"confidence"`

	// SupportingSourceURLs lists the URLs backing the claim.
	SupportingSourceURLs []string `json:"supporting_source_urls"`
}

// confidenceState tracks how a Confidence value arrived.
type confidenceState int

const (
	confidenceUnset confidenceState = iota
	confidenceNumeric
	confidenceNonNumeric
)

// Confidence is a lenient integer: it accepts a JSON number (floats are
// truncated) or a string holding an integer. Anything else decodes without
// error but reports Numeric() == false, which validation turns into its own
// violation. An absent confidence behaves as -1 so the floor check catches it.
type Confidence struct {
	value int
	state confidenceState
	raw   json.RawMessage
}

// NumericConfidence builds a numeric Confidence, mainly for tests and fixtures.
func NumericConfidence(v int) Confidence {
	return Confidence{value: v, state: confidenceNumeric}
}

// Numeric reports whether the value carries a usable integer.
// Absent values count as numeric (-1) to keep the floor check in charge.
func (c Confidence) Numeric() bool {
	return c.state != confidenceNonNumeric
}

// Int returns the integer value, or -1 when the field was absent.
// Undefined when Numeric() is false.
func (c Confidence) Int() int {
	if c.state == confidenceUnset {
		return -1
	}
	return c.value
}

// UnmarshalJSON implements lenient decoding. It never returns an error for
// a syntactically valid JSON value.
func (c *Confidence) UnmarshalJSON(data []byte) error {
	c.raw = append(json.RawMessage(nil), data...)

	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || string(trimmed) == "null" {
		c.state = confidenceUnset
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(trimmed, &n); err == nil {
		if i, intErr := strconv.ParseInt(n.String(), 10, 64); intErr == nil {
			c.value = int(i)
			c.state = confidenceNumeric
			return nil
		}
		if f, floatErr := strconv.ParseFloat(n.String(), 64); floatErr == nil {
			c.value = int(f)
			c.state = confidenceNumeric
			return nil
		}
	}

	var s string
	if err := json.Unmarshal(trimmed, &s); err == nil {
		if i, intErr := strconv.Atoi(strings.TrimSpace(s)); intErr == nil {
			c.value = i
			c.state = confidenceNumeric
			return nil
		}
	}

	c.state = confidenceNonNumeric
	return nil
}

// MarshalJSON re-emits the original raw value so snapshots and insertion
// payloads round-trip what the model produced.
func (c Confidence) MarshalJSON() ([]byte, error) {
	if len(c.raw) > 0 {
		return c.raw, nil
	}
	if c.state == confidenceNumeric {
		return json.Marshal(c.value)
	}
	return []byte("null"), nil
}

// DecodeDraft decodes generation-service output into a Draft at the
// boundary. Shape errors (wrong types, truncated JSON) surface as a
// structured ErrDraftDecode; field-level wrongness (bad status, short
// fields, non-numeric confidence) is left for the validation engine.
func DecodeDraft(data []byte) (*Draft, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, apperrors.Wrap(apperrors.ErrDraftDecode, "empty response body")
	}

	var d Draft
	if err := json.Unmarshal(data, &d); err != nil {
		return nil, apperrors.Wrapf(apperrors.ErrDraftDecode, "unmarshal draft: %v", err)
	}
	return &d, nil
}

// DomainFromURL derives a comparison domain from a URL: the host,
// lower-cased, with a leading "www." stripped. Returns "" for inputs
// without a parseable host.
func DomainFromURL(raw string) string {
	parsed, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return ""
	}
	host := strings.ToLower(strings.TrimSpace(parsed.Host))
	host = strings.TrimPrefix(host, "www.")
	return host
}

// IsHTTPURL reports whether raw is an absolute http or https URL.
func IsHTTPURL(raw string) bool {
	trimmed := strings.TrimSpace(raw)
	return strings.HasPrefix(trimmed, "http://") || strings.HasPrefix(trimmed, "https://")
}
