package domain

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/votewire/autopost/internal/constants"
)

// TestDraft_JSONSerialization verifies Draft marshals to JSON with snake_case keys.
func TestDraft_JSONSerialization(t *testing.T) {
	draft := Draft{
		Status:        DraftStatusPublish,
		Title:         "Sita Gurung: Pokhara-2 Candidate Profile",
		Slug:          "sita-gurung-pokhara-2",
		Excerpt:       "A short summary.",
		ContentHTML:   "<p>Body.</p>",
		TopicKeywords: []string{"nepal election"},
		CandidateProfile: CandidateProfile{
			CandidateName:    "Sita Gurung",
			ElectionName:     "Nepal General Election 2026",
			ElectionDate:     "2026-03-05",
			Party:            "CPN-UML",
			Constituency:     "Pokhara-2",
			CurrentPosition:  "Provincial Assembly Member",
			ShortBio:         "A short bio.",
			ProfileSourceURL: "https://example.org/sita",
		},
		SEO: SeoBlock{
			FocusKeyphrase:  "sita gurung pokhara",
			MetaTitle:       "Sita Gurung Profile",
			MetaDescription: "Meta description.",
			SeoSlugHint:     "sita-gurung-pokhara-2",
		},
		Sources: []Source{
			{URL: "https://ekantipur.com/news/9", Publisher: "Kantipur"},
		},
		KeyFacts: []Fact{
			{Statement: "Elected in 2022.", Confidence: NumericConfidence(90), SupportingSourceURLs: []string{"https://a.example/1", "https://b.example/2"}},
		},
	}

	data, err := json.Marshal(draft)
	require.NoError(t, err)

	jsonStr := string(data)

	// Verify snake_case keys are present
	assert.Contains(t, jsonStr, `"content_html"`)
	assert.Contains(t, jsonStr, `"topic_keywords"`)
	assert.Contains(t, jsonStr, `"candidate_profile"`)
	assert.Contains(t, jsonStr, `"candidate_name"`)
	assert.Contains(t, jsonStr, `"election_date"`)
	assert.Contains(t, jsonStr, `"profile_source_url"`)
	assert.Contains(t, jsonStr, `"focus_keyphrase"`)
	assert.Contains(t, jsonStr, `"meta_title"`)
	assert.Contains(t, jsonStr, `"meta_description"`)
	assert.Contains(t, jsonStr, `"seo_slug_hint"`)
	assert.Contains(t, jsonStr, `"key_facts"`)
	assert.Contains(t, jsonStr, `"supporting_source_urls"`)

	// Verify camelCase keys are NOT present
	assert.NotContains(t, jsonStr, `"contentHtml"`)
	assert.NotContains(t, jsonStr, `"topicKeywords"`)
	assert.NotContains(t, jsonStr, `"candidateProfile"`)
	assert.NotContains(t, jsonStr, `"metaTitle"`)
}

// TestDraft_JSONRoundTrip verifies a Draft survives marshal/unmarshal unchanged.
func TestDraft_JSONRoundTrip(t *testing.T) {
	original := Draft{
		Status:  DraftStatusSkip,
		Reason:  "all strong candidates already profiled",
		Title:   "",
		KeyFacts: []Fact{
			{Statement: "x", Confidence: NumericConfidence(85), SupportingSourceURLs: []string{"https://a.example", "https://b.example"}},
		},
	}

	data, err := json.Marshal(original)
	require.NoError(t, err)

	var decoded Draft
	require.NoError(t, json.Unmarshal(data, &decoded))

	assert.Equal(t, original.Status, decoded.Status)
	assert.Equal(t, original.Reason, decoded.Reason)
	require.Len(t, decoded.KeyFacts, 1)
	assert.Equal(t, 85, decoded.KeyFacts[0].Confidence.Int())
	assert.True(t, decoded.KeyFacts[0].Confidence.Numeric())
}

// TestOutcome_JSONSerialization verifies Outcome marshals with snake_case keys.
func TestOutcome_JSONSerialization(t *testing.T) {
	outcome := Outcome{
		RunID:        "run-550e8400-e29b-41d4-a716-446655440000",
		State:        constants.RunStateAccepted,
		SnapshotPath: "/home/user/.autopost/snapshots/draft_20260305_090000.json",
		Title:        "Sita Gurung: Pokhara-2 Candidate Profile",
		Slug:         "sita-gurung-pokhara-2",
		Attempts:     2,
		Duration:     90 * time.Second,
		Receipt:      &Receipt{PostID: 1042, URL: "https://votewire.example/sita-gurung-pokhara-2"},
	}

	data, err := json.Marshal(outcome)
	require.NoError(t, err)

	jsonStr := string(data)
	assert.Contains(t, jsonStr, `"run_id"`)
	assert.Contains(t, jsonStr, `"snapshot_path"`)
	assert.Contains(t, jsonStr, `"post_id"`)
	assert.NotContains(t, jsonStr, `"runId"`)
	assert.NotContains(t, jsonStr, `"postId"`)
}

// TestOutcome_Predicates verifies the terminal-state helpers.
func TestOutcome_Predicates(t *testing.T) {
	tests := []struct {
		name         string
		state        constants.RunState
		wantAccepted bool
		wantRejected bool
	}{
		{"accepted", constants.RunStateAccepted, true, false},
		{"rejected", constants.RunStateRejected, false, true},
		{"skipped", constants.RunStateSkipped, false, false},
		{"aborted", constants.RunStateAborted, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o := Outcome{State: tt.state}
			assert.Equal(t, tt.wantAccepted, o.Accepted())
			assert.Equal(t, tt.wantRejected, o.Rejected())
		})
	}
}
