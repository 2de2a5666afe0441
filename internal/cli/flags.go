// Package cli provides the command-line interface for autopost.
package cli

import (
	"context"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/votewire/autopost/internal/config"
	apperrors "github.com/votewire/autopost/internal/errors"
)

// Exit codes for the CLI. Cron wrappers key off these: 2 means the run
// completed but validation turned the draft away, which is worth a
// different alert than an operational failure.
const (
	// ExitSuccess indicates successful execution, including skip and
	// dry-run outcomes.
	ExitSuccess = 0
	// ExitError indicates an operational error.
	ExitError = 1
	// ExitRejected indicates the generated draft failed validation.
	ExitRejected = 2
)

// Output format constants.
const (
	// OutputText is the default human-readable output format.
	OutputText = "text"
	// OutputJSON is the machine-readable JSON output format.
	OutputJSON = "json"
)

// GlobalFlags holds flags available to all commands.
type GlobalFlags struct {
	// Output specifies the output format (text or json).
	Output string
	// Verbose enables debug-level logging.
	Verbose bool
	// Quiet suppresses non-essential output (warn level only).
	Quiet bool
	// Config is an explicit config file path. When set, the global and
	// project search paths are skipped entirely.
	Config string
	// LogFile overrides the log destination from configuration.
	LogFile string
}

// AddGlobalFlags adds global flags to a command.
// These flags are available to all subcommands via PersistentFlags.
func AddGlobalFlags(cmd *cobra.Command, flags *GlobalFlags) {
	cmd.PersistentFlags().StringVarP(&flags.Output, "output", "o", OutputText, "output format (text|json)")
	cmd.PersistentFlags().BoolVarP(&flags.Verbose, "verbose", "v", false, "enable verbose output")
	cmd.PersistentFlags().BoolVarP(&flags.Quiet, "quiet", "q", false, "suppress non-essential output")
	cmd.PersistentFlags().StringVar(&flags.Config, "config", "", "config file (default: ~/.autopost/config.yaml, then ./.autopost/config.yaml)")
	cmd.PersistentFlags().StringVar(&flags.LogFile, "log-file", "", "log file path (overrides the configured destination)")
	cmd.MarkFlagsMutuallyExclusive("verbose", "quiet")
}

// BindGlobalFlags binds global flags to Viper for configuration file and
// environment variable support. The AUTOPOST_ prefix is used for environment
// variables (e.g., AUTOPOST_OUTPUT, AUTOPOST_VERBOSE).
func BindGlobalFlags(v *viper.Viper, cmd *cobra.Command) error {
	// Use Root().PersistentFlags() to find flags defined on the root command,
	// even when called from a subcommand's PersistentPreRunE.
	rootFlags := cmd.Root().PersistentFlags()

	if err := v.BindPFlag("output", rootFlags.Lookup("output")); err != nil {
		return err
	}
	if err := v.BindPFlag("verbose", rootFlags.Lookup("verbose")); err != nil {
		return err
	}
	if err := v.BindPFlag("quiet", rootFlags.Lookup("quiet")); err != nil {
		return err
	}
	if err := v.BindPFlag("config", rootFlags.Lookup("config")); err != nil {
		return err
	}
	if err := v.BindPFlag("log_file", rootFlags.Lookup("log-file")); err != nil {
		return err
	}

	v.SetEnvPrefix("AUTOPOST")
	v.AutomaticEnv()

	return nil
}

// loadConfig resolves configuration for a subcommand. The global --config
// flag, when set, names an explicit file and replaces the search paths.
// Non-zero fields of overrides, when non-nil, apply on top either way.
func loadConfig(ctx context.Context, cmd *cobra.Command, overrides *config.Config) (*config.Config, error) {
	if path := configFlagPath(cmd); path != "" {
		return config.LoadFromFileWithOverrides(ctx, path, overrides)
	}
	return config.LoadWithOverrides(ctx, overrides)
}

// configFlagPath returns the value of the global --config flag, or "" when
// the flag is not registered on the command tree.
func configFlagPath(cmd *cobra.Command) string {
	flag := cmd.Flag("config")
	if flag == nil {
		return ""
	}
	return flag.Value.String()
}

// ValidOutputFormats returns the list of valid output format values.
func ValidOutputFormats() []string {
	return []string{OutputText, OutputJSON}
}

// IsValidOutputFormat checks if the given format is a valid output format.
func IsValidOutputFormat(format string) bool {
	for _, valid := range ValidOutputFormats() {
		if format == valid {
			return true
		}
	}
	return false
}

// ExitCodeForError returns the exit code for the given error.
// Returns ExitSuccess (0) for nil errors, ExitRejected (2) when the draft
// failed validation, and ExitError (1) for everything else.
func ExitCodeForError(err error) int {
	if err == nil {
		return ExitSuccess
	}

	if apperrors.IsRejected(err) {
		return ExitRejected
	}

	return ExitError
}
