// Package config provides configuration management for autopost with layered precedence.
//
// Configuration sources are loaded in the following order (highest precedence first):
//  1. CLI flags (passed via LoadWithOverrides)
//  2. Environment variables (AUTOPOST_* prefix)
//  3. Project config (.autopost/config.yaml)
//  4. Global config (~/.autopost/config.yaml)
//  5. Built-in defaults
//
// Each higher level completely overrides the lower level for the same key.
//
// IMPORTANT: This package may import internal/constants and internal/errors,
// but MUST NOT import internal/domain or other internal packages.
package config

import (
	"time"
)

// Config is the root configuration structure for autopost.
type Config struct {
	// AI contains generation agent settings.
	AI AIConfig `yaml:"ai" mapstructure:"ai"`

	// Corpus contains settings for reading published titles and candidate names.
	Corpus CorpusConfig `yaml:"corpus" mapstructure:"corpus"`

	// Publish contains settings for inserting the finished post.
	Publish PublishConfig `yaml:"publish" mapstructure:"publish"`

	// Policy contains editorial acceptance thresholds.
	Policy PolicyConfig `yaml:"policy" mapstructure:"policy"`

	// Lock contains single-instance lock settings.
	Lock LockConfig `yaml:"lock" mapstructure:"lock"`

	// Log contains logging settings.
	Log LogConfig `yaml:"log" mapstructure:"log"`

	// Snapshots contains draft snapshot retention settings.
	Snapshots SnapshotsConfig `yaml:"snapshots" mapstructure:"snapshots"`
}

// AIConfig contains AI agent settings for draft generation.
type AIConfig struct {
	// Agent is the CLI agent used for generation: "codex" or "gemini" (default: "codex").
	Agent string `yaml:"agent" mapstructure:"agent"`

	// Model overrides the agent's default model (default: "" which selects the
	// agent default, e.g. gpt-5.3-codex for codex).
	Model string `yaml:"model" mapstructure:"model"`

	// Binary is an explicit path to the agent CLI binary (default: "" which
	// resolves via <AGENT>_BIN and then PATH).
	Binary string `yaml:"binary" mapstructure:"binary"`

	// WorkingDir is the directory the agent CLI runs in (default: "" for the
	// current directory).
	WorkingDir string `yaml:"working_dir" mapstructure:"working_dir"`

	// Timeout is the maximum duration for a single generation attempt (default: 15m).
	Timeout time.Duration `yaml:"timeout" mapstructure:"timeout"`

	// MaxAttempts is the number of generation attempts before giving up on
	// rate limiting (default: 3).
	MaxAttempts int `yaml:"max_attempts" mapstructure:"max_attempts"`

	// BaseWait is the backoff unit between rate-limited attempts; attempt N
	// waits N*BaseWait (default: 30s).
	BaseWait time.Duration `yaml:"base_wait" mapstructure:"base_wait"`
}

// CorpusConfig selects and configures the corpus backend.
type CorpusConfig struct {
	// Backend selects the corpus source: "script" or "db" (default: "script").
	Backend string `yaml:"backend" mapstructure:"backend"`

	// Script configures the PHP helper script backend.
	Script ScriptConfig `yaml:"script" mapstructure:"script"`

	// DB configures the direct database backend.
	DB DBConfig `yaml:"db" mapstructure:"db"`
}

// ScriptConfig contains settings for the PHP helper script corpus backend.
type ScriptConfig struct {
	// PHPBinary is the PHP interpreter used to run the helpers (default: "php").
	PHPBinary string `yaml:"php_binary" mapstructure:"php_binary"`

	// Dir is the directory containing the helper scripts (default: "" for the
	// current directory).
	Dir string `yaml:"dir" mapstructure:"dir"`

	// TitlesScript is the helper that prints published post titles as a JSON
	// array (default: "wp_get_post_titles.php").
	TitlesScript string `yaml:"titles_script" mapstructure:"titles_script"`

	// CandidatesScript is the helper that prints known candidate names as a
	// JSON array (default: "wp_get_profile_candidates.php").
	CandidatesScript string `yaml:"candidates_script" mapstructure:"candidates_script"`

	// Timeout is the maximum duration for one helper invocation (default: 2m).
	Timeout time.Duration `yaml:"timeout" mapstructure:"timeout"`
}

// DBConfig contains settings for the direct database corpus backend.
type DBConfig struct {
	// DSN is the database connection string. Required when the corpus backend
	// is "db".
	DSN string `yaml:"dsn" mapstructure:"dsn"`

	// MaxOpenConns caps open connections in the pool (default: 4).
	MaxOpenConns int `yaml:"max_open_conns" mapstructure:"max_open_conns"`

	// MaxIdleConns caps idle connections in the pool (default: 2).
	MaxIdleConns int `yaml:"max_idle_conns" mapstructure:"max_idle_conns"`

	// ConnMaxLifetime bounds how long a pooled connection may be reused
	// (default: 30m).
	ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime" mapstructure:"conn_max_lifetime"`
}

// PublishConfig contains settings for inserting the finished post.
type PublishConfig struct {
	// PHPBinary is the PHP interpreter used to run the insert helper (default: "php").
	PHPBinary string `yaml:"php_binary" mapstructure:"php_binary"`

	// Dir is the directory containing the insert helper (default: "" for the
	// current directory).
	Dir string `yaml:"dir" mapstructure:"dir"`

	// InsertScript is the helper that creates the post from a JSON payload on
	// stdin (default: "wp_insert_post.php").
	InsertScript string `yaml:"insert_script" mapstructure:"insert_script"`

	// Timeout is the maximum duration for the insert helper (default: 2m).
	Timeout time.Duration `yaml:"timeout" mapstructure:"timeout"`

	// PostStatus is the status the post is created with: "publish", "draft",
	// "pending" or "future" (default: "publish").
	PostStatus string `yaml:"post_status" mapstructure:"post_status"`

	// CategoryName is the category the post is filed under (default:
	// "Nepal Election 2026").
	CategoryName string `yaml:"category_name" mapstructure:"category_name"`
}

// PolicyConfig contains editorial acceptance thresholds for generated drafts.
type PolicyConfig struct {
	// Topic is the standing assignment given to the agent (default: the Nepal
	// 2026 election candidate profile brief).
	Topic string `yaml:"topic" mapstructure:"topic"`

	// ElectionDate is the election day anchor in YYYY-MM-DD form used in
	// prompts and draft validation (default: "2026-03-05").
	ElectionDate string `yaml:"election_date" mapstructure:"election_date"`

	// MinSources is the minimum number of cited sources a draft must carry
	// (default: 12).
	MinSources int `yaml:"min_sources" mapstructure:"min_sources"`

	// MinConfidence is the minimum key-fact confidence score, 0-100 (default: 85).
	MinConfidence int `yaml:"min_confidence" mapstructure:"min_confidence"`

	// SimilarityThreshold is the title similarity above which a draft counts
	// as a duplicate of an existing post, 0-1 (default: 0.72).
	SimilarityThreshold float64 `yaml:"similarity_threshold" mapstructure:"similarity_threshold"`

	// Keyphrase is the fallback SEO focus keyphrase (default: "nepal election 2026").
	Keyphrase string `yaml:"keyphrase" mapstructure:"keyphrase"`

	// MetaTitleMin and MetaTitleMax bound the SEO meta title length
	// (defaults: 45 and 65).
	MetaTitleMin int `yaml:"meta_title_min" mapstructure:"meta_title_min"`
	MetaTitleMax int `yaml:"meta_title_max" mapstructure:"meta_title_max"`

	// MetaDescriptionMin and MetaDescriptionMax bound the SEO meta description
	// length (defaults: 130 and 170).
	MetaDescriptionMin int `yaml:"meta_description_min" mapstructure:"meta_description_min"`
	MetaDescriptionMax int `yaml:"meta_description_max" mapstructure:"meta_description_max"`
}

// LockConfig contains single-instance lock settings.
type LockConfig struct {
	// Path is the lock marker file (default: "" which resolves to
	// ~/.autopost/autopost.lock).
	Path string `yaml:"path" mapstructure:"path"`

	// StaleAfter is the age past which a leftover lock from a dead run is
	// reclaimed (default: 2h).
	StaleAfter time.Duration `yaml:"stale_after" mapstructure:"stale_after"`
}

// LogConfig contains logging settings.
type LogConfig struct {
	// File is the log file path (default: "" which resolves to
	// ~/.autopost/logs/autopost.log).
	File string `yaml:"file" mapstructure:"file"`

	// Level is the minimum log level: trace, debug, info, warn or error
	// (default: "info").
	Level string `yaml:"level" mapstructure:"level"`

	// MaxSizeMB is the size at which the log file rotates (default: 10).
	MaxSizeMB int `yaml:"max_size_mb" mapstructure:"max_size_mb"`

	// MaxBackups is the number of rotated files kept (default: 5).
	MaxBackups int `yaml:"max_backups" mapstructure:"max_backups"`

	// MaxAgeDays is the age in days past which rotated files are deleted
	// (default: 28).
	MaxAgeDays int `yaml:"max_age_days" mapstructure:"max_age_days"`

	// Compress gzips rotated files (default: false).
	Compress bool `yaml:"compress" mapstructure:"compress"`
}

// SnapshotsConfig contains draft snapshot retention settings.
type SnapshotsConfig struct {
	// Dir is the snapshot directory (default: "" which resolves to
	// ~/.autopost/snapshots).
	Dir string `yaml:"dir" mapstructure:"dir"`

	// Keep is the number of snapshot files retained after pruning (default: 20).
	Keep int `yaml:"keep" mapstructure:"keep"`
}
