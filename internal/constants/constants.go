// Package constants provides centralized constant values used throughout autopost.
// This package is the single source of truth for all shared constants and MUST NOT
// import any other internal packages.
package constants

import "time"

// File names used by autopost for persisted state.
const (
	// LockFileName is the name of the run-lock marker file. Its existence and
	// modification time are its only semantic content.
	LockFileName = "autopost.lock"

	// ConfigFileName is the name of the YAML configuration file searched for
	// in the project and home config directories.
	ConfigFileName = "config.yaml"

	// LogFileName is the default name of the append-only run log.
	LogFileName = "autopost.log"

	// SnapshotFilePrefix is the prefix for timestamped draft snapshot files.
	SnapshotFilePrefix = "draft_"
)

// Directory names and paths used by autopost for organizing data.
const (
	// AppHome is the hidden directory name where autopost stores all its data.
	// This directory is created in the user's home directory.
	AppHome = ".autopost"

	// LogsDir is the directory name where log files are stored.
	LogsDir = "logs"

	// SnapshotsDir is the directory name where draft snapshots are stored.
	SnapshotsDir = "snapshots"
)

// Generation agent selection.
const (
	// DefaultAgent is the CLI agent used when none is configured.
	DefaultAgent = "codex"
)

// Helper-script defaults. The script backend shells out to small PHP
// helpers that live next to the WordPress install; the db backend reads
// the same tables directly. Backend names live in status.go.
const (
	// DefaultPHPBinary is the interpreter used to run the helper scripts.
	DefaultPHPBinary = "php"

	// TitlesScriptName is the helper that prints published post titles as a
	// JSON array on stdout.
	TitlesScriptName = "wp_get_post_titles.php"

	// CandidatesScriptName is the helper that prints known candidate names as
	// a JSON array on stdout.
	CandidatesScriptName = "wp_get_profile_candidates.php"

	// InsertScriptName is the helper that creates the post from a JSON payload
	// on stdin and prints an insertion receipt on stdout.
	InsertScriptName = "wp_insert_post.php"

	// DefaultConnMaxLifetime bounds how long a pooled database connection may
	// be reused by the db corpus backend.
	DefaultConnMaxLifetime = 30 * time.Minute
)

// Publication defaults.
const (
	// DefaultPostStatus is the status inserted posts are created with.
	DefaultPostStatus = "publish"
)

// Logging defaults for the rotating run log.
const (
	// DefaultLogLevel is the minimum level written to the log file.
	DefaultLogLevel = "info"

	// DefaultLogMaxSizeMB is the size at which the log file rotates.
	DefaultLogMaxSizeMB = 10

	// DefaultLogMaxBackups is how many rotated log files are kept.
	DefaultLogMaxBackups = 5

	// DefaultLogMaxAgeDays is the age past which rotated log files are deleted.
	DefaultLogMaxAgeDays = 28
)

// Timeout and staleness defaults for run coordination.
const (
	// DefaultGenerateTimeout is the default maximum duration for one
	// generation-service invocation. Live web research is slow; fifteen
	// minutes matches the historical cron budget.
	DefaultGenerateTimeout = 15 * time.Minute

	// DefaultScriptTimeout is the default maximum duration for corpus and
	// insertion helper-script invocations.
	DefaultScriptTimeout = 2 * time.Minute

	// DefaultLockStaleAfter is the lock age beyond which a marker left by a
	// crashed run is considered abandoned and may be evicted.
	DefaultLockStaleAfter = 2 * time.Hour
)

// Retry configuration defaults for the rate-limited generation call.
// Only the generation service is retried; corpus reads and insertion fail fast.
const (
	// MaxGenerateAttempts is the total attempt budget for the generation call.
	MaxGenerateAttempts = 3

	// GenerateBaseWait is the base backoff unit. The wait before retry N is
	// GenerateBaseWait * N (linear, not exponential).
	GenerateBaseWait = 30 * time.Second
)

// Policy defaults for validation thresholds. All of these are overridable
// through configuration; the values are the historical operating points.
const (
	// DefaultMinSources is the minimum number of sources and distinct source
	// domains a publishable draft must cite.
	DefaultMinSources = 12

	// DefaultMinConfidence is the minimum confidence score for each key fact.
	DefaultMinConfidence = 85

	// DefaultSimilarityThreshold is the Jaccard score at or above which two
	// titles are treated as near-duplicates.
	DefaultSimilarityThreshold = 0.72

	// DefaultElectionDate is the target election date a candidate profile
	// must reference, in ISO form.
	DefaultElectionDate = "2026-03-05"

	// DefaultTopic is the primary topic area injected into the prompt.
	DefaultTopic = "Nepal election candidate profile"

	// DefaultKeyphrase backfills seo.focus_keyphrase when the draft has no
	// usable title words.
	DefaultKeyphrase = "nepal election candidate profile"

	// DefaultSlug is returned by slug canonicalization when the input has no
	// alphanumeric content at all.
	DefaultSlug = "nepal-election-candidate-profile"

	// MaxSlugChars is the canonical slug length ceiling. Trimming happens at
	// a hyphen boundary, never mid-token.
	MaxSlugChars = 120

	// CategoryName is the site category every inserted post is filed under.
	CategoryName = "Nepal Election 2026"
)

// SEO character windows enforced on normalized meta fields.
const (
	// MetaTitleMin and MetaTitleMax bound seo.meta_title length.
	MetaTitleMin = 45
	MetaTitleMax = 65

	// MetaDescriptionMin and MetaDescriptionMax bound seo.meta_description length.
	MetaDescriptionMin = 130
	MetaDescriptionMax = 170
)

// Prompt construction limits.
const (
	// MaxPromptTitles caps how many existing titles are listed in the prompt.
	MaxPromptTitles = 350

	// MaxPromptCandidates caps how many existing candidate names are listed
	// in the prompt.
	MaxPromptCandidates = 350
)

// Snapshot retention.
const (
	// DefaultSnapshotKeep is how many draft snapshots are retained before
	// the oldest are pruned.
	DefaultSnapshotKeep = 20
)
