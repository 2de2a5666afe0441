// Package config provides configuration management for autopost.
package config

import (
	"context"
	stderrors "errors"
	"os"
	"strings"

	"github.com/go-viper/mapstructure/v2"
	"github.com/rs/zerolog"
	"github.com/spf13/viper"

	"github.com/votewire/autopost/internal/errors"
)

// newViperInstance creates a new Viper instance with standard autopost configuration.
// This includes environment variable prefix (AUTOPOST_), key replacer, and defaults.
func newViperInstance() *viper.Viper {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix("AUTOPOST")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// isConfigNotFoundError returns true if the error is a viper config file not found error.
// This helps consolidate the common pattern of checking for missing config files.
func isConfigNotFoundError(err error) bool {
	if err == nil {
		return false
	}
	var configNotFoundErr viper.ConfigFileNotFoundError
	return stderrors.As(err, &configNotFoundErr)
}

// unmarshalAndValidate unmarshals viper config into Config struct and validates it.
func unmarshalAndValidate(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg, viperDecoderOption()); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal config")
	}
	if err := Validate(&cfg); err != nil {
		return nil, errors.Wrap(err, "invalid configuration")
	}
	return &cfg, nil
}

// Load reads configuration from all available sources with proper precedence.
// Configuration is loaded in the following order (highest precedence first):
//  1. Environment variables (AUTOPOST_* prefix)
//  2. Project config (.autopost/config.yaml)
//  3. Global config (~/.autopost/config.yaml)
//  4. Built-in defaults
//
// For CLI flag overrides, use LoadWithOverrides instead. For an explicit
// config file path, use LoadFromFile.
//
// The function returns an error only for actual configuration problems,
// not for missing config files (which are expected in many scenarios).
func Load(ctx context.Context) (*Config, error) {
	v := newViperInstance()

	// Load global config first (lower precedence)
	if err := loadGlobalConfig(v); err != nil {
		return nil, err
	}

	// Load project config (higher precedence, merges over global)
	if err := loadProjectConfig(v); err != nil {
		return nil, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg, viperDecoderOption()); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal config")
	}

	logger := zerolog.Ctx(ctx).With().Str("component", "config").Logger()
	logger.Debug().
		Str("ai.agent", cfg.AI.Agent).
		Str("corpus.backend", cfg.Corpus.Backend).
		Dur("ai.timeout", cfg.AI.Timeout).
		Int("policy.min_sources", cfg.Policy.MinSources).
		Msg("configuration loaded and unmarshaled")

	if err := Validate(&cfg); err != nil {
		return nil, errors.Wrap(err, "invalid configuration")
	}

	return &cfg, nil
}

// loadGlobalConfig attempts to load the global config file (~/.autopost/config.yaml).
// Returns nil if the file doesn't exist or home directory cannot be determined.
func loadGlobalConfig(v *viper.Viper) error {
	globalConfigPath, ok := getGlobalConfigPathIfExists()
	if !ok {
		// Global config doesn't exist or home dir unavailable, skip silently
		return nil
	}

	v.SetConfigFile(globalConfigPath)
	if err := v.ReadInConfig(); err != nil && !isConfigNotFoundError(err) {
		return errors.Wrap(err, "failed to read global config file")
	}
	return nil
}

// getGlobalConfigPathIfExists returns the global config path if it exists.
// Returns empty string and false if the home directory cannot be determined
// or the config file does not exist.
func getGlobalConfigPathIfExists() (string, bool) {
	globalConfigPath, err := GlobalConfigPath()
	if err != nil {
		return "", false
	}

	if _, err := os.Stat(globalConfigPath); err != nil {
		return "", false
	}

	return globalConfigPath, true
}

// loadProjectConfig attempts to load the project config file (.autopost/config.yaml).
// Returns nil if the file doesn't exist.
func loadProjectConfig(v *viper.Viper) error {
	projectConfigPath := ProjectConfigPath()
	if !fileExists(projectConfigPath) {
		// Project config doesn't exist, skip silently
		return nil
	}

	v.SetConfigFile(projectConfigPath)
	if err := v.MergeInConfig(); err != nil && !isConfigNotFoundError(err) {
		return errors.Wrap(err, "failed to read project config file")
	}
	return nil
}

// fileExists returns true if the file at path exists.
func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// LoadWithOverrides loads configuration and applies CLI flag overrides.
// The overrides parameter contains values from CLI flags which have the
// highest precedence in the configuration hierarchy.
//
// Only non-zero values in overrides are applied. Zero values are ignored
// to allow partial overrides.
func LoadWithOverrides(ctx context.Context, overrides *Config) (*Config, error) {
	// Load base configuration first
	cfg, err := Load(ctx)
	if err != nil {
		return nil, err
	}

	// Apply overrides if provided
	if overrides != nil {
		applyOverrides(cfg, overrides)
	}

	// Re-validate after applying overrides
	if err := Validate(cfg); err != nil {
		return nil, errors.Wrap(err, "invalid configuration after overrides")
	}

	return cfg, nil
}

// LoadFromFile loads configuration from a single explicit config file,
// skipping the project and global search paths entirely. Environment
// variables and built-in defaults still apply.
//
// Unlike the search paths, an explicit path that does not exist is an error.
func LoadFromFile(_ context.Context, path string) (*Config, error) {
	v := newViperInstance()

	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, errors.Wrapf(err, "failed to read config file: %s", path)
	}

	return unmarshalAndValidate(v)
}

// LoadFromFileWithOverrides loads configuration from a single explicit
// config file and applies CLI flag overrides on top, with the same
// non-zero-only merge rules as LoadWithOverrides.
func LoadFromFileWithOverrides(ctx context.Context, path string, overrides *Config) (*Config, error) {
	cfg, err := LoadFromFile(ctx, path)
	if err != nil {
		return nil, err
	}

	if overrides != nil {
		applyOverrides(cfg, overrides)
	}

	if err := Validate(cfg); err != nil {
		return nil, errors.Wrap(err, "invalid configuration after overrides")
	}

	return cfg, nil
}

// LoadFromPaths loads configuration from specific file paths for testing.
// This function allows precise control over which config files are loaded.
//
// projectConfigPath is the path to project-level config (higher priority).
// globalConfigPath is the path to global config (lower priority).
// Either path can be empty to skip that level.
func LoadFromPaths(_ context.Context, projectConfigPath, globalConfigPath string) (*Config, error) {
	v := newViperInstance()

	// Load global config first (lower precedence)
	if globalConfigPath != "" {
		v.SetConfigFile(globalConfigPath)
		if err := v.ReadInConfig(); err != nil && !isConfigNotFoundError(err) && !os.IsNotExist(err) {
			return nil, errors.Wrapf(err, "failed to read global config: %s", globalConfigPath)
		}
	}

	// Load project config (higher precedence, merges over global)
	if projectConfigPath != "" {
		v.SetConfigFile(projectConfigPath)
		if err := v.MergeInConfig(); err != nil && !isConfigNotFoundError(err) && !os.IsNotExist(err) {
			return nil, errors.Wrapf(err, "failed to read project config: %s", projectConfigPath)
		}
	}

	return unmarshalAndValidate(v)
}

// setDefaults configures all default values on the Viper instance.
// These defaults match the values from DefaultConfig().
// IMPORTANT: Keys must match the YAML tag names exactly for proper mapping.
func setDefaults(v *viper.Viper) {
	// AI defaults
	v.SetDefault("ai.agent", "codex")
	v.SetDefault("ai.model", "")
	v.SetDefault("ai.binary", "")
	v.SetDefault("ai.working_dir", "")
	v.SetDefault("ai.timeout", "15m")
	v.SetDefault("ai.max_attempts", 3)
	v.SetDefault("ai.base_wait", "30s")

	// Corpus defaults
	v.SetDefault("corpus.backend", "script")
	v.SetDefault("corpus.script.php_binary", "php")
	v.SetDefault("corpus.script.dir", "")
	v.SetDefault("corpus.script.titles_script", "wp_get_post_titles.php")
	v.SetDefault("corpus.script.candidates_script", "wp_get_profile_candidates.php")
	v.SetDefault("corpus.script.timeout", "2m")
	v.SetDefault("corpus.db.dsn", "")
	v.SetDefault("corpus.db.max_open_conns", 4)
	v.SetDefault("corpus.db.max_idle_conns", 2)
	v.SetDefault("corpus.db.conn_max_lifetime", "30m")

	// Publish defaults
	v.SetDefault("publish.php_binary", "php")
	v.SetDefault("publish.dir", "")
	v.SetDefault("publish.insert_script", "wp_insert_post.php")
	v.SetDefault("publish.timeout", "2m")
	v.SetDefault("publish.post_status", "publish")
	v.SetDefault("publish.category_name", "Nepal Election 2026")

	// Policy defaults
	v.SetDefault("policy.topic", "Nepal election candidate profile")
	v.SetDefault("policy.election_date", "2026-03-05")
	v.SetDefault("policy.min_sources", 12)
	v.SetDefault("policy.min_confidence", 85)
	v.SetDefault("policy.similarity_threshold", 0.72)
	v.SetDefault("policy.keyphrase", "nepal election candidate profile")
	v.SetDefault("policy.meta_title_min", 45)
	v.SetDefault("policy.meta_title_max", 65)
	v.SetDefault("policy.meta_description_min", 130)
	v.SetDefault("policy.meta_description_max", 170)

	// Lock defaults
	v.SetDefault("lock.path", "")
	v.SetDefault("lock.stale_after", "2h")

	// Log defaults
	v.SetDefault("log.file", "")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.max_size_mb", 10)
	v.SetDefault("log.max_backups", 5)
	v.SetDefault("log.max_age_days", 28)
	v.SetDefault("log.compress", false)

	// Snapshots defaults
	v.SetDefault("snapshots.dir", "")
	v.SetDefault("snapshots.keep", 20)
}

// applyOverrides merges non-zero override values into the config.
// Only non-zero values are applied to allow partial overrides.
//
// IMPORTANT: The boolean field Log.Compress cannot be overridden to false
// using this function because Go's zero value for bool is false, making it
// impossible to distinguish "explicitly set to false" from "not set". CLI
// implementations should handle boolean flags separately:
//
//	// Example CLI handling for bool flags:
//	if cmd.Flags().Changed("log-compress") {
//	    cfg.Log.Compress = compressFlag  // Use flag value directly
//	}
func applyOverrides(cfg, overrides *Config) {
	applyAIOverrides(cfg, overrides)
	applyCorpusOverrides(cfg, overrides)
	applyPublishOverrides(cfg, overrides)
	applyPolicyOverrides(cfg, overrides)

	// Lock overrides
	if overrides.Lock.Path != "" {
		cfg.Lock.Path = overrides.Lock.Path
	}
	if overrides.Lock.StaleAfter != 0 {
		cfg.Lock.StaleAfter = overrides.Lock.StaleAfter
	}

	// Log overrides (Compress is a bool - see the caveat above)
	if overrides.Log.File != "" {
		cfg.Log.File = overrides.Log.File
	}
	if overrides.Log.Level != "" {
		cfg.Log.Level = overrides.Log.Level
	}
	if overrides.Log.MaxSizeMB != 0 {
		cfg.Log.MaxSizeMB = overrides.Log.MaxSizeMB
	}
	if overrides.Log.MaxBackups != 0 {
		cfg.Log.MaxBackups = overrides.Log.MaxBackups
	}
	if overrides.Log.MaxAgeDays != 0 {
		cfg.Log.MaxAgeDays = overrides.Log.MaxAgeDays
	}

	// Snapshots overrides
	if overrides.Snapshots.Dir != "" {
		cfg.Snapshots.Dir = overrides.Snapshots.Dir
	}
	if overrides.Snapshots.Keep != 0 {
		cfg.Snapshots.Keep = overrides.Snapshots.Keep
	}
}

// applyAIOverrides applies AI-related overrides to the config.
// This is extracted from applyOverrides to reduce cognitive complexity.
func applyAIOverrides(cfg, overrides *Config) {
	if overrides.AI.Agent != "" {
		cfg.AI.Agent = overrides.AI.Agent
	}
	if overrides.AI.Model != "" {
		cfg.AI.Model = overrides.AI.Model
	}
	if overrides.AI.Binary != "" {
		cfg.AI.Binary = overrides.AI.Binary
	}
	if overrides.AI.WorkingDir != "" {
		cfg.AI.WorkingDir = overrides.AI.WorkingDir
	}
	if overrides.AI.Timeout != 0 {
		cfg.AI.Timeout = overrides.AI.Timeout
	}
	if overrides.AI.MaxAttempts != 0 {
		cfg.AI.MaxAttempts = overrides.AI.MaxAttempts
	}
	if overrides.AI.BaseWait != 0 {
		cfg.AI.BaseWait = overrides.AI.BaseWait
	}
}

// applyCorpusOverrides applies corpus-related overrides to the config.
// This is extracted from applyOverrides to reduce cognitive complexity.
func applyCorpusOverrides(cfg, overrides *Config) {
	if overrides.Corpus.Backend != "" {
		cfg.Corpus.Backend = overrides.Corpus.Backend
	}
	if overrides.Corpus.Script.PHPBinary != "" {
		cfg.Corpus.Script.PHPBinary = overrides.Corpus.Script.PHPBinary
	}
	if overrides.Corpus.Script.Dir != "" {
		cfg.Corpus.Script.Dir = overrides.Corpus.Script.Dir
	}
	if overrides.Corpus.Script.TitlesScript != "" {
		cfg.Corpus.Script.TitlesScript = overrides.Corpus.Script.TitlesScript
	}
	if overrides.Corpus.Script.CandidatesScript != "" {
		cfg.Corpus.Script.CandidatesScript = overrides.Corpus.Script.CandidatesScript
	}
	if overrides.Corpus.Script.Timeout != 0 {
		cfg.Corpus.Script.Timeout = overrides.Corpus.Script.Timeout
	}
	if overrides.Corpus.DB.DSN != "" {
		cfg.Corpus.DB.DSN = overrides.Corpus.DB.DSN
	}
	if overrides.Corpus.DB.MaxOpenConns != 0 {
		cfg.Corpus.DB.MaxOpenConns = overrides.Corpus.DB.MaxOpenConns
	}
	if overrides.Corpus.DB.MaxIdleConns != 0 {
		cfg.Corpus.DB.MaxIdleConns = overrides.Corpus.DB.MaxIdleConns
	}
	if overrides.Corpus.DB.ConnMaxLifetime != 0 {
		cfg.Corpus.DB.ConnMaxLifetime = overrides.Corpus.DB.ConnMaxLifetime
	}
}

// applyPublishOverrides applies publish-related overrides to the config.
// This is extracted from applyOverrides to reduce cognitive complexity.
func applyPublishOverrides(cfg, overrides *Config) {
	if overrides.Publish.PHPBinary != "" {
		cfg.Publish.PHPBinary = overrides.Publish.PHPBinary
	}
	if overrides.Publish.Dir != "" {
		cfg.Publish.Dir = overrides.Publish.Dir
	}
	if overrides.Publish.InsertScript != "" {
		cfg.Publish.InsertScript = overrides.Publish.InsertScript
	}
	if overrides.Publish.Timeout != 0 {
		cfg.Publish.Timeout = overrides.Publish.Timeout
	}
	if overrides.Publish.PostStatus != "" {
		cfg.Publish.PostStatus = overrides.Publish.PostStatus
	}
	if overrides.Publish.CategoryName != "" {
		cfg.Publish.CategoryName = overrides.Publish.CategoryName
	}
}

// applyPolicyOverrides applies policy-related overrides to the config.
// This is extracted from applyOverrides to reduce cognitive complexity.
func applyPolicyOverrides(cfg, overrides *Config) {
	if overrides.Policy.Topic != "" {
		cfg.Policy.Topic = overrides.Policy.Topic
	}
	if overrides.Policy.ElectionDate != "" {
		cfg.Policy.ElectionDate = overrides.Policy.ElectionDate
	}
	if overrides.Policy.MinSources != 0 {
		cfg.Policy.MinSources = overrides.Policy.MinSources
	}
	if overrides.Policy.MinConfidence != 0 {
		cfg.Policy.MinConfidence = overrides.Policy.MinConfidence
	}
	if overrides.Policy.SimilarityThreshold != 0 {
		cfg.Policy.SimilarityThreshold = overrides.Policy.SimilarityThreshold
	}
	if overrides.Policy.Keyphrase != "" {
		cfg.Policy.Keyphrase = overrides.Policy.Keyphrase
	}
	if overrides.Policy.MetaTitleMin != 0 {
		cfg.Policy.MetaTitleMin = overrides.Policy.MetaTitleMin
	}
	if overrides.Policy.MetaTitleMax != 0 {
		cfg.Policy.MetaTitleMax = overrides.Policy.MetaTitleMax
	}
	if overrides.Policy.MetaDescriptionMin != 0 {
		cfg.Policy.MetaDescriptionMin = overrides.Policy.MetaDescriptionMin
	}
	if overrides.Policy.MetaDescriptionMax != 0 {
		cfg.Policy.MetaDescriptionMax = overrides.Policy.MetaDescriptionMax
	}
}

// viperDecoderOption returns the decoder options for Viper unmarshal.
// This configures mapstructure to handle time.Duration conversion from strings.
func viperDecoderOption() viper.DecoderConfigOption {
	return viper.DecodeHook(
		mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
		),
	)
}
