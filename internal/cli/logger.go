// Package cli provides the command-line interface for autopost.
package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/term"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/votewire/autopost/internal/config"
	apperrors "github.com/votewire/autopost/internal/errors"
	"github.com/votewire/autopost/internal/logging"
)

// logFileWriter holds the log file writer for cleanup purposes.
// This is package-level to enable cleanup during shutdown.
var logFileWriter io.WriteCloser //nolint:gochecknoglobals // Needed for cleanup

// zerologConfigOnce ensures zerolog global settings are configured exactly once.
var zerologConfigOnce sync.Once //nolint:gochecknoglobals // One-time configuration

// zerologGlobalMu protects concurrent writes to the zerolog global logger.
// This is separate from globalLoggerMu to avoid deadlocks.
var zerologGlobalMu sync.Mutex //nolint:gochecknoglobals // Protects zerolog global

// configureZerologGlobals sets zerolog global field names to match our log
// entry structure. This is called once before any logger is created and is
// safe for concurrent use.
func configureZerologGlobals() {
	zerologConfigOnce.Do(func() {
		zerolog.TimestampFieldName = "ts"
		zerolog.MessageFieldName = "event"
	})
}

// InitLogger creates and configures a zerolog.Logger from the log config and
// verbosity flags.
//
// Log levels are set as follows:
//   - verbose=true: Debug level (most detailed)
//   - quiet=true: Warn level (errors and warnings only)
//   - default: the configured log.level, falling back to Info
//
// Output format is determined by the terminal:
//   - TTY with colors enabled: Console writer with timestamps
//   - Non-TTY or NO_COLOR set: JSON output to stderr
//
// The logger also writes to the configured log file with rotation enabled and
// secrets redacted; if that file stops accepting writes mid-run, a dated
// fallback file in the same directory takes over. If the log file cannot be
// created at all, the logger continues with console-only output.
func InitLogger(cfg *config.LogConfig, verbose, quiet bool) zerolog.Logger {
	configureZerologGlobals()

	level := selectLevel(cfg, verbose, quiet)
	hook := logging.NewSensitiveDataHook()
	console := selectOutput()

	var writer io.Writer
	fileWriter, err := createLogFileWriter(cfg)
	if err != nil {
		// Log file creation failed; continue with console-only output
		writer = console
	} else {
		// Store file writer for cleanup
		logFileWriter = fileWriter
		// Multi-writer: console + file
		writer = zerolog.MultiLevelWriter(console, fileWriter)
	}

	logger := zerolog.New(writer).Level(level).Hook(hook).With().Timestamp().Logger()
	setGlobalLogger(logger)
	return logger
}

// InitLoggerWithWriter creates and configures a zerolog.Logger with a custom
// writer. This is primarily intended for testing purposes.
func InitLoggerWithWriter(cfg *config.LogConfig, verbose, quiet bool, w io.Writer) zerolog.Logger {
	configureZerologGlobals()

	level := selectLevel(cfg, verbose, quiet)
	hook := logging.NewSensitiveDataHook()
	logger := zerolog.New(w).Level(level).Hook(hook).With().Timestamp().Logger()

	setGlobalLogger(logger)
	return logger
}

// setGlobalLogger configures the global zerolog logger to match our CLI
// logger config, so any code using log.Debug(), log.Info(), etc. from the
// github.com/rs/zerolog/log package uses the same formatting.
// This function is safe for concurrent use.
func setGlobalLogger(cliLogger zerolog.Logger) {
	zerologGlobalMu.Lock()
	defer zerologGlobalMu.Unlock()
	log.Logger = cliLogger
}

// CloseLogFile closes the global log file writer if it was opened.
// This should be called during application shutdown for clean cleanup.
func CloseLogFile() {
	if logFileWriter != nil {
		_ = logFileWriter.Close()
		logFileWriter = nil
	}
}

// selectLevel determines the appropriate log level. The verbosity flags win
// over the configured level.
func selectLevel(cfg *config.LogConfig, verbose, quiet bool) zerolog.Level {
	switch {
	case verbose:
		return zerolog.DebugLevel
	case quiet:
		return zerolog.WarnLevel
	}

	if cfg != nil && cfg.Level != "" {
		if level, err := zerolog.ParseLevel(cfg.Level); err == nil {
			return level
		}
	}
	return zerolog.InfoLevel
}

// selectOutput determines the appropriate output writer based on
// terminal capabilities and environment settings.
func selectOutput() io.Writer {
	// Use console writer for TTY without NO_COLOR
	if term.IsTerminal(int(os.Stderr.Fd())) && os.Getenv("NO_COLOR") == "" {
		return zerolog.ConsoleWriter{
			Out:        os.Stderr,
			TimeFormat: time.Kitchen,
		}
	}

	// Default to JSON output for non-TTY or when NO_COLOR is set
	return os.Stderr
}

// filteringWriteCloser wraps the file sink chain with sensitive data
// filtering. It implements io.WriteCloser so it can be used as a drop-in
// replacement.
type filteringWriteCloser struct {
	filter   *logging.FilteringWriter
	failover *logging.FailoverWriter
	file     io.Closer
}

// Write implements io.Writer by delegating to the filtering writer.
func (fwc *filteringWriteCloser) Write(p []byte) (n int, err error) {
	return fwc.filter.Write(p)
}

// Close implements io.Closer by closing the fallback file and then the
// rotating log file.
func (fwc *filteringWriteCloser) Close() error {
	_ = fwc.failover.Close()
	return fwc.file.Close()
}

// createLogFileWriter creates a rotating file writer for the run log.
// The chain is filter -> failover -> lumberjack: secrets are redacted before
// any byte reaches disk, and a dated fallback file in the log directory takes
// over if the rotating file stops accepting writes.
func createLogFileWriter(cfg *config.LogConfig) (io.WriteCloser, error) {
	if cfg == nil {
		return nil, apperrors.ErrConfigNil
	}

	logPath, err := cfg.ResolveFile()
	if err != nil {
		return nil, err
	}
	logDir := filepath.Dir(logPath)

	// Ensure log directory exists
	if err := os.MkdirAll(logDir, 0o750); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	// Create rotating log file writer
	lj := &lumberjack.Logger{
		Filename:   logPath,
		MaxSize:    cfg.MaxSizeMB,
		MaxBackups: cfg.MaxBackups,
		MaxAge:     cfg.MaxAgeDays,
		Compress:   cfg.Compress,
	}

	failover := logging.NewFailoverWriter(lj, logDir)

	return &filteringWriteCloser{
		filter:   logging.NewFilteringWriter(failover),
		failover: failover,
		file:     lj,
	}, nil
}
