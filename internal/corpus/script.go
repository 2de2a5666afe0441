// Package corpus reads the published history the pipeline validates against.
package corpus

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"

	"github.com/votewire/autopost/internal/config"
	"github.com/votewire/autopost/internal/ctxutil"
	"github.com/votewire/autopost/internal/errors"
	"github.com/votewire/autopost/internal/proc"
)

// ScriptStore reads the corpus by running the PHP helper scripts that live
// next to the WordPress install. Each helper prints a JSON array on stdout.
type ScriptStore struct {
	config *config.ScriptConfig
	proc   proc.Runner
	logger zerolog.Logger
}

// ScriptOption configures a ScriptStore.
type ScriptOption func(*ScriptStore)

// WithScriptLogger sets the logger used for helper invocations.
func WithScriptLogger(logger zerolog.Logger) ScriptOption {
	return func(s *ScriptStore) {
		s.logger = logger
	}
}

// NewScriptStore creates a corpus store backed by the PHP helper scripts.
// If runner is nil, a real process executor is used.
func NewScriptStore(cfg *config.ScriptConfig, runner proc.Runner, opts ...ScriptOption) *ScriptStore {
	if runner == nil {
		runner = proc.NewExecRunner()
	}

	s := &ScriptStore{
		config: cfg,
		proc:   runner,
		logger: zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Titles returns existing published post titles.
func (s *ScriptStore) Titles(ctx context.Context) ([]string, error) {
	return s.run(ctx, s.config.TitlesScript)
}

// Candidates returns candidate names that already have a profile.
func (s *ScriptStore) Candidates(ctx context.Context) ([]string, error) {
	return s.run(ctx, s.config.CandidatesScript)
}

// Preflight verifies both helper scripts exist on disk. The pipeline probes
// this before taking the run lock so a missing helper is a clean early exit.
func (s *ScriptStore) Preflight(_ context.Context) error {
	for _, script := range []string{s.config.TitlesScript, s.config.CandidatesScript} {
		path := s.scriptPath(script)
		if _, err := os.Stat(path); err != nil {
			return errors.Wrap(errors.ErrScriptMissing, path)
		}
	}
	return nil
}

// run invokes one helper script and decodes its stdout as a JSON array.
func (s *ScriptStore) run(ctx context.Context, script string) ([]string, error) {
	if err := ctxutil.Canceled(ctx); err != nil {
		return nil, err
	}

	path := s.scriptPath(script)
	if _, err := os.Stat(path); err != nil {
		return nil, errors.Wrap(errors.ErrScriptMissing, path)
	}

	command := proc.Command{
		Name:    s.config.PHPBinary,
		Args:    []string{path},
		Timeout: s.config.Timeout,
	}

	s.logger.Debug().
		Str("php", s.config.PHPBinary).
		Str("script", path).
		Msg("reading corpus helper")

	output, err := s.proc.Run(ctx, command)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("%w: %s: %w", errors.ErrCorpusUnavailable, script, err)
	}

	values, err := decodeStringArray(output.Stdout)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", errors.ErrCorpusUnavailable, script, err)
	}
	return values, nil
}

// scriptPath joins the configured directory with the script name. Absolute
// script names are used as-is.
func (s *ScriptStore) scriptPath(script string) string {
	if filepath.IsAbs(script) || s.config.Dir == "" {
		return script
	}
	return filepath.Join(s.config.Dir, script)
}

// decodeStringArray parses a JSON array of scalars into strings. Anything
// but an array is rejected; the helpers print nothing else.
func decodeStringArray(data []byte) ([]string, error) {
	var items []any
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, errors.Wrap(err, "helper returned unexpected data")
	}

	values := make([]string, 0, len(items))
	for _, item := range items {
		switch v := item.(type) {
		case string:
			values = append(values, v)
		case nil:
			// Skip nulls rather than rendering them as text.
		default:
			values = append(values, fmt.Sprint(v))
		}
	}
	return cleanStrings(values), nil
}

// Ensure ScriptStore implements Store.
var _ Store = (*ScriptStore)(nil)
