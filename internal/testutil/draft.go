package testutil

import (
	"fmt"
	"strings"

	"github.com/votewire/autopost/internal/domain"
)

// ValidDraft returns a publishable draft that passes every validation rule
// against an empty corpus and the default policy: 15 sources across 15
// distinct domains, every field floor met, the keyphrase threaded through
// all required fields, and key facts with strong support. Tests mutate the
// fields they want to break.
func ValidDraft() *domain.Draft {
	sources := SourceList(15)

	return &domain.Draft{
		Status:  domain.DraftStatusPublish,
		Title:   "Ramesh Adhikari Kathmandu Candidate Profile and Record",
		Slug:    "ramesh-adhikari-kathmandu-candidate-profile",
		Excerpt: "Ramesh Adhikari Kathmandu profile: the two-term lawmaker's record, alliances, and 2026 campaign, with twelve independent sources reviewed.",
		ContentHTML: ContentHTML(
			"Ramesh Adhikari Kathmandu candidate profile for the 2026 Nepal general election.",
			"Ramesh Adhikari has represented Kathmandu voters through two terms, building a record on urban infrastructure, budget transparency, and constituency service that this profile reviews in detail against published reporting.",
		),
		TopicKeywords: []string{"nepal election", "kathmandu", "candidate profile"},
		CandidateProfile: domain.CandidateProfile{
			CandidateName:    "Ramesh Adhikari",
			ElectionName:     "Nepal General Election 2026",
			ElectionDate:     "2026-03-05",
			Party:            "Nepali Congress",
			Constituency:     "Kathmandu-4",
			CurrentPosition:  "Member of Parliament",
			ShortBio:         "Ramesh Adhikari is a two-term lawmaker from Kathmandu who has focused on urban infrastructure and budget transparency.",
			ProfileSourceURL: sources[0].URL,
		},
		SEO: domain.SeoBlock{
			FocusKeyphrase:  "ramesh adhikari kathmandu",
			MetaTitle:       "Ramesh Adhikari Kathmandu: Candidate Profile for 2026",
			MetaDescription: "Ramesh Adhikari Kathmandu candidate profile: party history, constituency record, policy positions, and sources for the 2026 Nepal election.",
			SeoSlugHint:     "ramesh-adhikari-kathmandu-candidate-profile",
		},
		Sources: sources,
		KeyFacts: []domain.Fact{
			{
				Statement:            "Won the Kathmandu-4 seat in the 2022 general election.",
				Confidence:           domain.NumericConfidence(92),
				SupportingSourceURLs: []string{sources[0].URL, sources[1].URL},
			},
			{
				Statement:            "Chairs the parliamentary urban development committee.",
				Confidence:           domain.NumericConfidence(88),
				SupportingSourceURLs: []string{sources[2].URL, sources[3].URL},
			},
		},
	}
}

// SourceList returns n sources with distinct derived domains.
func SourceList(n int) []domain.Source {
	sources := make([]domain.Source, n)
	for i := range sources {
		sources[i] = domain.Source{
			URL:       fmt.Sprintf("https://source-%02d.example.org/nepal/ramesh-adhikari", i),
			Publisher: fmt.Sprintf("Outlet %02d", i),
		}
	}
	return sources
}

// ContentHTML builds a post body over the 1800-character depth floor: a
// lead paragraph, repeated body paragraphs, and an FAQ section with three
// question headings.
func ContentHTML(lead, body string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "<p>%s</p>\n", lead)
	for b.Len() < 1800 {
		fmt.Fprintf(&b, "<p>%s</p>\n", body)
	}
	b.WriteString("<h2>FAQ</h2>\n")
	b.WriteString("<h3>Who is Ramesh Adhikari?</h3>\n<p>A two-term lawmaker from Kathmandu standing in the 2026 general election.</p>\n")
	b.WriteString("<h3>Which constituency is contested?</h3>\n<p>Kathmandu-4, a seat Ramesh Adhikari has held since 2022.</p>\n")
	b.WriteString("<h3>When is the election?</h3>\n<p>The vote is scheduled for 2026-03-05.</p>\n")
	return b.String()
}
