package validate

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"

	"github.com/votewire/autopost/internal/domain"
	"github.com/votewire/autopost/internal/normalize"
	"github.com/votewire/autopost/internal/similarity"
)

// Field-length floors. These are part of the draft data model, not
// operator policy.
const (
	minTitleChars        = 24
	minExcerptChars      = 110
	minContentChars      = 1800
	minCandidateChars    = 4
	minElectionNameChars = 8
	minProfileFieldChars = 2
	minBioChars          = 60
	minKeyphraseChars    = 8
	minTopicKeywords     = 3
	minFaqQuestions      = 3
	minFactSupport       = 2
)

var slugRe = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)

// Check evaluates every validation rule against the draft and returns the
// full ordered violation list. An empty list means the draft may be
// inserted. Skip drafts short-circuit after the status gate.
func Check(draft *domain.Draft, corpus domain.Corpus, policy Policy) []Violation {
	if draft == nil {
		draft = &domain.Draft{}
	}

	var violations []Violation
	add := func(code, format string, args ...any) {
		violations = append(violations, Violation{Code: code, Message: fmt.Sprintf(format, args...)})
	}

	// Status gate.
	switch draft.Status {
	case domain.DraftStatusPublish:
	case domain.DraftStatusSkip:
		if strings.TrimSpace(draft.Reason) == "" {
			add(CodeSkipReasonMissing, "skip payload must include a reason.")
		}
		return violations
	default:
		add(CodeBadStatus, "status must be 'publish' or 'skip'.")
		return violations
	}

	title := strings.TrimSpace(draft.Title)
	titleLower := strings.ToLower(title)
	excerpt := strings.TrimSpace(draft.Excerpt)
	excerptLower := strings.ToLower(excerpt)
	contentHTML := strings.TrimSpace(draft.ContentHTML)
	contentLower := strings.ToLower(contentHTML)
	slug := strings.TrimSpace(draft.Slug)

	// Length floors. A missing or short title also suppresses the
	// duplicate check below, which needs a real title to compare.
	titleUsable := false
	switch {
	case title == "":
		add(CodeTitleMissing, "Missing title.")
	case utf8.RuneCountInString(title) < minTitleChars:
		add(CodeTitleShort, "Title is too short.")
	default:
		titleUsable = true
	}
	if utf8.RuneCountInString(excerpt) < minExcerptChars {
		add(CodeExcerptShort, "Excerpt is too short.")
	}
	if utf8.RuneCountInString(contentHTML) < minContentChars {
		add(CodeContentShort, "content_html is too short for the required depth.")
	}

	// Slug shape.
	if !slugRe.MatchString(slug) {
		add(CodeSlugFormat, "Slug must be kebab-case.")
	}

	// Near-duplicate title.
	if titleUsable {
		detector := similarity.NewDetector(policy.SimilarityThreshold)
		if detector.IsNearDuplicate(title, corpus.Titles) {
			add(CodeTitleDuplicate, "Generated title appears to duplicate an existing topic.")
		}
	}

	// Topic keyword set.
	if countDistinctKeywords(draft.TopicKeywords) < minTopicKeywords {
		add(CodeKeywordCount, "Need at least 3 topic_keywords.")
	}

	// FAQ section.
	if !strings.Contains(contentLower, "faq") {
		add(CodeFaqMissing, "content_html must include an FAQ section for SEO.")
	}
	if countFaqQuestions(contentHTML) < minFaqQuestions {
		add(CodeFaqQuestions, "FAQ section should include at least 3 questions in H3 tags.")
	}

	// Sources.
	if len(draft.Sources) < policy.MinSources {
		add(CodeSourceCount, "Need at least %d sources; found %d.", policy.MinSources, len(draft.Sources))
	}

	sourceURLs := make(map[string]struct{})
	uniqueDomains := make(map[string]struct{})
	for _, source := range draft.Sources {
		url := strings.TrimSpace(source.URL)
		if domain.IsHTTPURL(url) {
			sourceURLs[strings.TrimRight(url, "/")] = struct{}{}
		}
		if d := source.ResolvedDomain(); d != "" {
			uniqueDomains[d] = struct{}{}
		}
	}
	if len(uniqueDomains) < policy.MinSources {
		add(CodeSourceDomains, "Need at least %d unique source domains; found %d.", policy.MinSources, len(uniqueDomains))
	}

	// Candidate profile floors.
	profile := draft.CandidateProfile
	candidateName := normalize.CollapseWhitespace(profile.CandidateName)
	electionName := normalize.CollapseWhitespace(profile.ElectionName)
	electionDate := normalize.CollapseWhitespace(profile.ElectionDate)
	party := normalize.CollapseWhitespace(profile.Party)
	constituency := normalize.CollapseWhitespace(profile.Constituency)
	currentPosition := normalize.CollapseWhitespace(profile.CurrentPosition)
	shortBio := normalize.CollapseWhitespace(profile.ShortBio)
	profileSourceURL := normalize.CollapseWhitespace(profile.ProfileSourceURL)
	profileImageURL := normalize.CollapseWhitespace(profile.ProfileImageURL)
	profileImageSourceURL := normalize.CollapseWhitespace(profile.ProfileImageSourceURL)

	if utf8.RuneCountInString(candidateName) < minCandidateChars {
		add(CodeProfileCandidateName, "candidate_profile.candidate_name is too short.")
	}
	if utf8.RuneCountInString(electionName) < minElectionNameChars {
		add(CodeProfileElectionName, "candidate_profile.election_name is too short.")
	}
	if !strings.Contains(strings.ToLower(electionName), "nepal") {
		add(CodeProfileElectionNepal, "candidate_profile.election_name should reference Nepal.")
	}
	if electionDate != policy.ElectionDate {
		add(CodeProfileElectionDate, "candidate_profile.election_date must be %s.", policy.ElectionDate)
	}
	if utf8.RuneCountInString(party) < minProfileFieldChars {
		add(CodeProfileParty, "candidate_profile.party is too short.")
	}
	if utf8.RuneCountInString(constituency) < minProfileFieldChars {
		add(CodeProfileConstituency, "candidate_profile.constituency is too short.")
	}
	if utf8.RuneCountInString(currentPosition) < minProfileFieldChars {
		add(CodeProfilePosition, "candidate_profile.current_position is too short.")
	}
	if utf8.RuneCountInString(shortBio) < minBioChars {
		add(CodeProfileBio, "candidate_profile.short_bio is too short.")
	}
	if !domain.IsHTTPURL(profileSourceURL) {
		add(CodeProfileSourceURL, "candidate_profile.profile_source_url must be a valid URL.")
	}

	if profileSourceURL != "" {
		trimmed := strings.TrimRight(profileSourceURL, "/")
		_, urlListed := sourceURLs[trimmed]
		_, domainListed := uniqueDomains[domain.DomainFromURL(profileSourceURL)]
		if !urlListed && !domainListed {
			add(CodeProfileSourceMembership, "candidate_profile.profile_source_url must be included in sources.")
		}
	}

	if profileImageURL != "" && !domain.IsHTTPURL(profileImageURL) {
		add(CodeProfileImageURL, "candidate_profile.profile_image_url must be a valid URL when provided.")
	}
	if profileImageSourceURL != "" && !domain.IsHTTPURL(profileImageSourceURL) {
		add(CodeProfileImageSourceURL, "candidate_profile.profile_image_source_url must be a valid URL when provided.")
	}

	// Candidate already profiled.
	if candidateName != "" {
		normalized := similarity.NormalizeCandidateName(candidateName)
		for _, existing := range corpus.Candidates {
			if similarity.NormalizeCandidateName(existing) == normalized {
				add(CodeCandidateRepeat, "Candidate has already been profiled in earlier posts.")
				break
			}
		}
	}

	// Candidate name threaded through the content.
	candidateTokens := similarity.Tokens(candidateName)
	if len(candidateTokens) > 0 {
		if countTokensIn(candidateTokens, titleLower) < 1 {
			add(CodeCandidateInTitle, "Title should include candidate name.")
		}
		if countTokensIn(candidateTokens, excerptLower) < 1 {
			add(CodeCandidateInExcerpt, "Excerpt should include candidate name.")
		}
		if countTokensIn(candidateTokens, contentLower) < 2 {
			add(CodeCandidateInContent, "content_html should include candidate context clearly.")
		}
	}

	// SEO block.
	focusKeyphrase := strings.ToLower(strings.TrimSpace(draft.SEO.FocusKeyphrase))
	metaTitle := strings.TrimSpace(draft.SEO.MetaTitle)
	metaDescription := strings.TrimSpace(draft.SEO.MetaDescription)
	slugHint := strings.ToLower(strings.TrimSpace(draft.SEO.SeoSlugHint))

	if utf8.RuneCountInString(focusKeyphrase) < minKeyphraseChars {
		add(CodeSeoKeyphraseShort, "seo.focus_keyphrase is too short.")
	}
	if n := utf8.RuneCountInString(metaTitle); n < policy.MetaTitleMin || n > policy.MetaTitleMax {
		add(CodeSeoMetaTitleWindow, "seo.meta_title should be between %d and %d characters.", policy.MetaTitleMin, policy.MetaTitleMax)
	}
	if n := utf8.RuneCountInString(metaDescription); n < policy.MetaDescriptionMin || n > policy.MetaDescriptionMax {
		add(CodeSeoMetaDescriptionWindow, "seo.meta_description should be between %d and %d characters.", policy.MetaDescriptionMin, policy.MetaDescriptionMax)
	}

	if focusKeyphrase != "" {
		if !strings.Contains(titleLower, focusKeyphrase) {
			add(CodeSeoKeyphraseTitle, "Title should include seo.focus_keyphrase.")
		}
		if !strings.Contains(excerptLower, focusKeyphrase) {
			add(CodeSeoKeyphraseExcerpt, "Excerpt should include seo.focus_keyphrase.")
		}
		if !strings.Contains(contentLower, focusKeyphrase) {
			add(CodeSeoKeyphraseContent, "content_html should include seo.focus_keyphrase.")
		}
		if !strings.Contains(strings.ToLower(metaTitle), focusKeyphrase) {
			add(CodeSeoKeyphraseMetaTitle, "seo.meta_title should include seo.focus_keyphrase.")
		}
		if !strings.Contains(strings.ToLower(metaDescription), focusKeyphrase) {
			add(CodeSeoKeyphraseMetaDescription, "seo.meta_description should include seo.focus_keyphrase.")
		}
		if focusSlug := normalize.SlugJoin(focusKeyphrase); focusSlug != "" && !strings.Contains(slug, focusSlug) {
			add(CodeSeoKeyphraseSlug, "Slug should include the focus keyphrase in kebab-case.")
		}
	}

	if normalizedHint := normalize.SlugJoin(slugHint); normalizedHint != "" && normalizedHint != slug {
		add(CodeSeoSlugHint, "seo.seo_slug_hint should align with the final slug.")
	}

	// Key facts. A non-numeric confidence skips the remaining checks for
	// that fact.
	if len(draft.KeyFacts) == 0 {
		add(CodeFactsEmpty, "key_facts must be a non-empty list.")
	} else {
		for i, fact := range draft.KeyFacts {
			index := i + 1
			if !fact.Confidence.Numeric() {
				add(CodeFactConfidenceNaN, "key_facts[%d] confidence is not numeric.", index)
				continue
			}
			if len(fact.SupportingSourceURLs) < minFactSupport {
				add(CodeFactSupportCount, "key_facts[%d] must have at least 2 supporting_source_urls.", index)
			}
			if confidence := fact.Confidence.Int(); confidence < policy.MinConfidence {
				add(CodeFactConfidenceFloor, "key_facts[%d] confidence %d is below minimum %d.", index, confidence, policy.MinConfidence)
			}
		}
	}

	return violations
}

// countDistinctKeywords counts the distinct non-empty keywords after
// trimming.
func countDistinctKeywords(keywords []string) int {
	seen := make(map[string]struct{}, len(keywords))
	for _, keyword := range keywords {
		keyword = strings.TrimSpace(keyword)
		if keyword == "" {
			continue
		}
		seen[keyword] = struct{}{}
	}
	return len(seen)
}

// countFaqQuestions counts h3 headings whose text ends with a question
// mark. Unparseable HTML counts as zero questions.
func countFaqQuestions(contentHTML string) int {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(contentHTML))
	if err != nil {
		return 0
	}

	count := 0
	doc.Find("h3").Each(func(_ int, sel *goquery.Selection) {
		if strings.HasSuffix(strings.TrimSpace(sel.Text()), "?") {
			count++
		}
	})
	return count
}

// countTokensIn counts how many tokens occur as substrings of haystack.
func countTokensIn(tokens map[string]struct{}, haystack string) int {
	count := 0
	for token := range tokens {
		if strings.Contains(haystack, token) {
			count++
		}
	}
	return count
}
