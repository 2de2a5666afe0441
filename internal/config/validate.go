// Package config provides configuration management for autopost.
package config

import (
	"time"

	"github.com/votewire/autopost/internal/errors"
)

// Validate checks the configuration for invalid or inconsistent values.
// It returns an error describing the first validation failure found.
//
// Validation rules:
//   - AI agent must be "codex" or "gemini"
//   - AI timeout and base wait must be positive, attempts between 1 and 10
//   - Corpus backend must be "script" or "db", with its backend settings complete
//   - Publish post status must be a WordPress status the insert helper accepts
//   - Policy thresholds must fall inside their meaningful ranges
//   - Lock stale age must be positive
func Validate(cfg *Config) error {
	if cfg == nil {
		return errors.ErrConfigNil
	}

	if err := validateAIConfig(&cfg.AI); err != nil {
		return err
	}

	if err := validateCorpusConfig(&cfg.Corpus); err != nil {
		return err
	}

	if err := validatePublishConfig(&cfg.Publish); err != nil {
		return err
	}

	if err := validatePolicyConfig(&cfg.Policy); err != nil {
		return err
	}

	if err := validateLockConfig(&cfg.Lock); err != nil {
		return err
	}

	if err := validateLogConfig(&cfg.Log); err != nil {
		return err
	}

	if err := validateSnapshotsConfig(&cfg.Snapshots); err != nil {
		return err
	}

	return nil
}

// validateAIConfig checks AI-specific configuration values.
func validateAIConfig(cfg *AIConfig) error {
	switch cfg.Agent {
	case "codex", "gemini":
	default:
		return errors.Wrapf(errors.ErrConfigInvalidAI,
			"ai.agent must be codex or gemini, got %q", cfg.Agent)
	}

	if cfg.Timeout <= 0 {
		return errors.Wrapf(errors.ErrConfigInvalidAI,
			"ai.timeout must be positive, got %s", cfg.Timeout)
	}

	if cfg.MaxAttempts < 1 || cfg.MaxAttempts > 10 {
		return errors.Wrapf(errors.ErrConfigInvalidAI,
			"ai.max_attempts must be between 1 and 10, got %d", cfg.MaxAttempts)
	}

	if cfg.BaseWait <= 0 {
		return errors.Wrapf(errors.ErrConfigInvalidAI,
			"ai.base_wait must be positive, got %s", cfg.BaseWait)
	}

	return nil
}

// validateCorpusConfig checks corpus-specific configuration values.
// Only the selected backend's settings are validated; the inactive backend
// may be left unconfigured.
func validateCorpusConfig(cfg *CorpusConfig) error {
	switch cfg.Backend {
	case "script":
		return validateScriptConfig(&cfg.Script)
	case "db":
		return validateDBConfig(&cfg.DB)
	default:
		return errors.Wrapf(errors.ErrConfigInvalidCorpus,
			"corpus.backend must be script or db, got %q", cfg.Backend)
	}
}

// validateScriptConfig checks the PHP helper script backend settings.
func validateScriptConfig(cfg *ScriptConfig) error {
	if cfg.PHPBinary == "" {
		return errors.Wrap(errors.ErrConfigInvalidCorpus,
			"corpus.script.php_binary must not be empty")
	}

	if cfg.TitlesScript == "" {
		return errors.Wrap(errors.ErrConfigInvalidCorpus,
			"corpus.script.titles_script must not be empty")
	}

	if cfg.CandidatesScript == "" {
		return errors.Wrap(errors.ErrConfigInvalidCorpus,
			"corpus.script.candidates_script must not be empty")
	}

	if cfg.Timeout <= 0 {
		return errors.Wrapf(errors.ErrConfigInvalidCorpus,
			"corpus.script.timeout must be positive, got %s", cfg.Timeout)
	}

	return nil
}

// validateDBConfig checks the direct database backend settings.
func validateDBConfig(cfg *DBConfig) error {
	if cfg.DSN == "" {
		return errors.Wrap(errors.ErrConfigInvalidCorpus,
			"corpus.db.dsn must not be empty when the db backend is selected")
	}

	if cfg.MaxOpenConns < 1 {
		return errors.Wrapf(errors.ErrConfigInvalidCorpus,
			"corpus.db.max_open_conns must be at least 1, got %d", cfg.MaxOpenConns)
	}

	if cfg.MaxIdleConns < 0 {
		return errors.Wrapf(errors.ErrConfigInvalidCorpus,
			"corpus.db.max_idle_conns cannot be negative, got %d", cfg.MaxIdleConns)
	}

	if cfg.ConnMaxLifetime <= 0 {
		return errors.Wrapf(errors.ErrConfigInvalidCorpus,
			"corpus.db.conn_max_lifetime must be positive, got %s", cfg.ConnMaxLifetime)
	}

	return nil
}

// validatePublishConfig checks publish-specific configuration values.
func validatePublishConfig(cfg *PublishConfig) error {
	if cfg.PHPBinary == "" {
		return errors.Wrap(errors.ErrConfigInvalidPublish,
			"publish.php_binary must not be empty")
	}

	if cfg.InsertScript == "" {
		return errors.Wrap(errors.ErrConfigInvalidPublish,
			"publish.insert_script must not be empty")
	}

	if cfg.Timeout <= 0 {
		return errors.Wrapf(errors.ErrConfigInvalidPublish,
			"publish.timeout must be positive, got %s", cfg.Timeout)
	}

	switch cfg.PostStatus {
	case "publish", "draft", "pending", "future":
	default:
		return errors.Wrapf(errors.ErrConfigInvalidPublish,
			"publish.post_status must be publish, draft, pending or future, got %q", cfg.PostStatus)
	}

	if cfg.CategoryName == "" {
		return errors.Wrap(errors.ErrConfigInvalidPublish,
			"publish.category_name must not be empty")
	}

	return nil
}

// validatePolicyConfig checks policy-specific configuration values.
func validatePolicyConfig(cfg *PolicyConfig) error {
	if _, err := time.Parse("2006-01-02", cfg.ElectionDate); err != nil {
		return errors.Wrapf(errors.ErrConfigInvalidPolicy,
			"policy.election_date must be YYYY-MM-DD, got %q", cfg.ElectionDate)
	}

	if cfg.MinSources < 1 {
		return errors.Wrapf(errors.ErrConfigInvalidPolicy,
			"policy.min_sources must be at least 1, got %d", cfg.MinSources)
	}

	if cfg.MinConfidence < 0 || cfg.MinConfidence > 100 {
		return errors.Wrapf(errors.ErrConfigInvalidPolicy,
			"policy.min_confidence must be between 0 and 100, got %d", cfg.MinConfidence)
	}

	if cfg.SimilarityThreshold <= 0 || cfg.SimilarityThreshold > 1 {
		return errors.Wrapf(errors.ErrConfigInvalidPolicy,
			"policy.similarity_threshold must be in (0, 1], got %v", cfg.SimilarityThreshold)
	}

	if cfg.Keyphrase == "" {
		return errors.Wrap(errors.ErrConfigInvalidPolicy,
			"policy.keyphrase must not be empty")
	}

	if cfg.MetaTitleMin < 1 || cfg.MetaTitleMax < cfg.MetaTitleMin {
		return errors.Wrapf(errors.ErrConfigInvalidPolicy,
			"policy meta title window must satisfy 1 <= min <= max, got %d..%d",
			cfg.MetaTitleMin, cfg.MetaTitleMax)
	}

	if cfg.MetaDescriptionMin < 1 || cfg.MetaDescriptionMax < cfg.MetaDescriptionMin {
		return errors.Wrapf(errors.ErrConfigInvalidPolicy,
			"policy meta description window must satisfy 1 <= min <= max, got %d..%d",
			cfg.MetaDescriptionMin, cfg.MetaDescriptionMax)
	}

	return nil
}

// validateLockConfig checks lock-specific configuration values.
func validateLockConfig(cfg *LockConfig) error {
	if cfg.StaleAfter <= 0 {
		return errors.Wrapf(errors.ErrConfigInvalidLock,
			"lock.stale_after must be positive, got %s", cfg.StaleAfter)
	}

	return nil
}

// validateLogConfig checks log-specific configuration values.
func validateLogConfig(cfg *LogConfig) error {
	switch cfg.Level {
	case "trace", "debug", "info", "warn", "error":
	default:
		return errors.Wrapf(errors.ErrConfigInvalidLog,
			"log.level must be trace, debug, info, warn or error, got %q", cfg.Level)
	}

	if cfg.MaxSizeMB < 1 {
		return errors.Wrapf(errors.ErrConfigInvalidLog,
			"log.max_size_mb must be at least 1, got %d", cfg.MaxSizeMB)
	}

	if cfg.MaxBackups < 0 {
		return errors.Wrapf(errors.ErrConfigInvalidLog,
			"log.max_backups cannot be negative, got %d", cfg.MaxBackups)
	}

	if cfg.MaxAgeDays < 0 {
		return errors.Wrapf(errors.ErrConfigInvalidLog,
			"log.max_age_days cannot be negative, got %d", cfg.MaxAgeDays)
	}

	return nil
}

// validateSnapshotsConfig checks snapshot-specific configuration values.
func validateSnapshotsConfig(cfg *SnapshotsConfig) error {
	if cfg.Keep < 1 {
		return errors.Wrapf(errors.ErrConfigInvalidSnapshots,
			"snapshots.keep must be at least 1, got %d", cfg.Keep)
	}

	return nil
}
