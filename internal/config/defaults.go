// Package config provides configuration management for autopost.
package config

import (
	"github.com/votewire/autopost/internal/constants"
)

// DefaultConfig returns a new Config with sensible default values.
// These defaults are used as the base layer that can be overridden by
// config files, environment variables, and CLI flags.
//
// Keep this in sync with setDefaults in load.go, which registers the same
// values with viper so partially-specified config files fill in correctly.
func DefaultConfig() *Config {
	return &Config{
		AI: AIConfig{
			Agent:       constants.DefaultAgent,
			Model:       "", // empty selects the agent's own default model
			Binary:      "", // empty resolves via <AGENT>_BIN and PATH
			WorkingDir:  "",
			Timeout:     constants.DefaultGenerateTimeout,
			MaxAttempts: constants.MaxGenerateAttempts,
			BaseWait:    constants.GenerateBaseWait,
		},
		Corpus: CorpusConfig{
			Backend: constants.CorpusBackendScript.String(),
			Script: ScriptConfig{
				PHPBinary:        constants.DefaultPHPBinary,
				Dir:              "",
				TitlesScript:     constants.TitlesScriptName,
				CandidatesScript: constants.CandidatesScriptName,
				Timeout:          constants.DefaultScriptTimeout,
			},
			DB: DBConfig{
				DSN:             "",
				MaxOpenConns:    4,
				MaxIdleConns:    2,
				ConnMaxLifetime: constants.DefaultConnMaxLifetime,
			},
		},
		Publish: PublishConfig{
			PHPBinary:    constants.DefaultPHPBinary,
			Dir:          "",
			InsertScript: constants.InsertScriptName,
			Timeout:      constants.DefaultScriptTimeout,
			PostStatus:   constants.DefaultPostStatus,
			CategoryName: constants.CategoryName,
		},
		Policy: PolicyConfig{
			Topic:               constants.DefaultTopic,
			ElectionDate:        constants.DefaultElectionDate,
			MinSources:          constants.DefaultMinSources,
			MinConfidence:       constants.DefaultMinConfidence,
			SimilarityThreshold: constants.DefaultSimilarityThreshold,
			Keyphrase:           constants.DefaultKeyphrase,
			MetaTitleMin:        constants.MetaTitleMin,
			MetaTitleMax:        constants.MetaTitleMax,
			MetaDescriptionMin:  constants.MetaDescriptionMin,
			MetaDescriptionMax:  constants.MetaDescriptionMax,
		},
		Lock: LockConfig{
			Path:       "", // empty resolves to ~/.autopost/autopost.lock
			StaleAfter: constants.DefaultLockStaleAfter,
		},
		Log: LogConfig{
			File:       "", // empty resolves to ~/.autopost/logs/autopost.log
			Level:      constants.DefaultLogLevel,
			MaxSizeMB:  constants.DefaultLogMaxSizeMB,
			MaxBackups: constants.DefaultLogMaxBackups,
			MaxAgeDays: constants.DefaultLogMaxAgeDays,
			Compress:   false,
		},
		Snapshots: SnapshotsConfig{
			Dir:  "", // empty resolves to ~/.autopost/snapshots
			Keep: constants.DefaultSnapshotKeep,
		},
	}
}
