// Package config provides configuration management for autopost.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/votewire/autopost/internal/constants"
	"github.com/votewire/autopost/internal/errors"
)

// GlobalConfigDir returns the path to the global autopost configuration directory.
// This is typically ~/.autopost on Unix systems.
//
// Returns an error if the home directory cannot be determined.
func GlobalConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", errors.Wrap(err, "failed to get home directory")
	}
	return filepath.Join(home, constants.AppHome), nil
}

// ProjectConfigDir returns the relative path to the project configuration directory.
// This is always .autopost relative to the working directory.
func ProjectConfigDir() string {
	return constants.AppHome
}

// GlobalConfigPath returns the full path to the global configuration file.
// This is typically ~/.autopost/config.yaml on Unix systems.
//
// Returns an error if the home directory cannot be determined.
func GlobalConfigPath() (string, error) {
	dir, err := GlobalConfigDir()
	if err != nil {
		return "", fmt.Errorf("get global config path: %w", err)
	}
	return filepath.Join(dir, constants.ConfigFileName), nil
}

// ProjectConfigPath returns the relative path to the project configuration file.
// This is always .autopost/config.yaml relative to the working directory.
func ProjectConfigPath() string {
	return filepath.Join(ProjectConfigDir(), constants.ConfigFileName)
}

// ResolvePath returns the configured lock path, falling back to
// ~/.autopost/autopost.lock when unset.
func (c *LockConfig) ResolvePath() (string, error) {
	if c.Path != "" {
		return c.Path, nil
	}
	dir, err := GlobalConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, constants.LockFileName), nil
}

// ResolveFile returns the configured log file, falling back to
// ~/.autopost/logs/autopost.log when unset.
func (c *LogConfig) ResolveFile() (string, error) {
	if c.File != "" {
		return c.File, nil
	}
	dir, err := GlobalConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, constants.LogsDir, constants.LogFileName), nil
}

// ResolveDir returns the configured snapshot directory, falling back to
// ~/.autopost/snapshots when unset.
func (c *SnapshotsConfig) ResolveDir() (string, error) {
	if c.Dir != "" {
		return c.Dir, nil
	}
	dir, err := GlobalConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, constants.SnapshotsDir), nil
}
