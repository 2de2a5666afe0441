// Package cli provides the command-line interface for autopost.
package cli

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/votewire/autopost/internal/ai"
	"github.com/votewire/autopost/internal/config"
	"github.com/votewire/autopost/internal/constants"
	"github.com/votewire/autopost/internal/corpus"
	"github.com/votewire/autopost/internal/domain"
	apperrors "github.com/votewire/autopost/internal/errors"
	"github.com/votewire/autopost/internal/pipeline"
	"github.com/votewire/autopost/internal/proc"
	"github.com/votewire/autopost/internal/publish"
	"github.com/votewire/autopost/internal/runlock"
	"github.com/votewire/autopost/internal/signal"
	"github.com/votewire/autopost/internal/snapshot"
	"github.com/votewire/autopost/internal/tui"
)

// AddRunCommand adds the run command to the root command.
func AddRunCommand(root *cobra.Command) {
	root.AddCommand(newRunCmd())
}

// runOptions contains all options for the run command.
type runOptions struct {
	agent          string
	model          string
	topic          string
	postStatus     string
	minSources     int
	minConfidence  int
	timeout        time.Duration
	staleLockAfter time.Duration
	dryRun         bool
}

// newRunCmd creates the run command.
func newRunCmd() *cobra.Command {
	var (
		agent          string
		model          string
		topic          string
		postStatus     string
		minSources     int
		minConfidence  int
		timeout        time.Duration
		staleLockAfter time.Duration
		dryRun         bool
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Execute one publishing run",
		Long: `Execute one publishing run: load existing titles, generate a draft with
the configured agent CLI, normalize and validate it, and insert the post.

The run takes a lock so overlapping cron invocations do not double-post.
If another run holds a fresh lock, this invocation exits cleanly without
doing anything.

Exit codes: 0 on success (including skip and dry-run), 1 on operational
failure, 2 when the draft was generated but failed validation.

Examples:
  autopost run
  autopost run --dry-run
  autopost run --agent gemini --model gemini-2.0-flash
  autopost run --post-status draft --min-sources 3
  autopost run --timeout 10m --stale-lock-after 2h`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			err := runRun(cmd.Context(), cmd, cmd.OutOrStdout(), runOptions{
				agent:          agent,
				model:          model,
				topic:          topic,
				postStatus:     postStatus,
				minSources:     minSources,
				minConfidence:  minConfidence,
				timeout:        timeout,
				staleLockAfter: staleLockAfter,
				dryRun:         dryRun,
			})
			// The run output already describes the failure; silence cobra's
			// error printing but keep the error for the exit code.
			if err != nil {
				cmd.SilenceErrors = true
			}
			return err
		},
	}

	cmd.Flags().StringVarP(&agent, "agent", "a", "",
		"AI agent CLI to use (codex, gemini)")
	cmd.Flags().StringVarP(&model, "model", "m", "",
		"Model identifier passed to the agent CLI")
	cmd.Flags().StringVar(&topic, "topic", "",
		"Editorial topic for the generated article")
	cmd.Flags().StringVar(&postStatus, "post-status", "",
		"WordPress status for the inserted post (publish, draft, pending, future)")
	cmd.Flags().IntVar(&minSources, "min-sources", 0,
		"Minimum number of cited sources a draft must carry")
	cmd.Flags().IntVar(&minConfidence, "min-confidence", 0,
		"Minimum confidence score a draft must report")
	cmd.Flags().DurationVar(&timeout, "timeout", 0,
		"Generation timeout for the agent CLI (e.g. 10m)")
	cmd.Flags().DurationVar(&staleLockAfter, "stale-lock-after", 0,
		"Age after which a leftover run lock is considered stale (e.g. 2h)")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false,
		"Generate and validate but do not insert the post")

	return cmd
}

// runRun executes the run command.
func runRun(ctx context.Context, cmd *cobra.Command, w io.Writer, opts runOptions) error {
	// Check context cancellation at entry
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	// Create signal handler for graceful shutdown on Ctrl+C
	sigHandler := signal.NewHandler(ctx)
	defer sigHandler.Stop()
	ctx = sigHandler.Context()

	logger := GetLogger()
	outputFormat := cmd.Flag("output").Value.String()

	// Respect NO_COLOR environment variable
	tui.CheckNoColor()

	out := tui.NewOutput(w, outputFormat)

	if err := validateRunOptions(opts); err != nil {
		return reportError(out, err)
	}

	cfg, err := loadRunConfig(ctx, cmd, opts) //nolint:contextcheck // context is properly checked and used
	if err != nil {
		return reportError(out, err)
	}

	coord, cleanup, err := buildCoordinator(ctx, cfg, logger) //nolint:contextcheck // context is properly checked and used
	if err != nil {
		return reportError(out, err)
	}
	defer cleanup()

	outcome, err := coord.Run(ctx, pipeline.Request{DryRun: opts.dryRun}) //nolint:contextcheck // context is properly checked and used
	if sig := sigHandler.Cause(); sig != nil {
		logger.Warn().Str("signal", sig.String()).Msg("Run interrupted.")
	}
	if err != nil && !apperrors.IsRejected(err) {
		return reportError(out, err)
	}

	if displayErr := displayOutcome(out, outputFormat, outcome); displayErr != nil {
		return displayErr
	}

	// A rejected draft still exits non-zero so cron wrappers notice.
	return err
}

// validateRunOptions validates the run command flags.
func validateRunOptions(opts runOptions) error {
	if opts.agent != "" && !domain.Agent(opts.agent).IsValid() {
		return fmt.Errorf("%w: %q (must be codex or gemini)", apperrors.ErrAgentNotFound, opts.agent)
	}
	if opts.postStatus != "" && !constants.ValidPostStatus(constants.PostStatus(opts.postStatus)) {
		return fmt.Errorf("%w: post status %q (must be publish, draft, pending or future)", apperrors.ErrInvalidArgument, opts.postStatus)
	}
	return nil
}

// loadRunConfig loads configuration with the run flag overrides applied.
func loadRunConfig(ctx context.Context, cmd *cobra.Command, opts runOptions) (*config.Config, error) {
	overrides := &config.Config{}
	overrides.AI.Agent = opts.agent
	overrides.AI.Model = opts.model
	overrides.AI.Timeout = opts.timeout
	overrides.Policy.Topic = opts.topic
	overrides.Policy.MinSources = opts.minSources
	overrides.Policy.MinConfidence = opts.minConfidence
	overrides.Publish.PostStatus = opts.postStatus
	overrides.Lock.StaleAfter = opts.staleLockAfter

	return loadConfig(ctx, cmd, overrides)
}

// buildCoordinator wires the pipeline from configuration. The returned
// cleanup func releases any resources the corpus store holds.
func buildCoordinator(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (*pipeline.Coordinator, func(), error) {
	procRunner := proc.NewExecRunner()

	store, cleanup, err := buildCorpusStore(ctx, cfg, procRunner)
	if err != nil {
		return nil, nil, err
	}

	lockPath, err := cfg.Lock.ResolvePath()
	if err != nil {
		cleanup()
		return nil, nil, apperrors.Wrap(err, "resolve lock path")
	}

	snapshotDir, err := cfg.Snapshots.ResolveDir()
	if err != nil {
		cleanup()
		return nil, nil, apperrors.Wrap(err, "resolve snapshot directory")
	}

	coord, err := pipeline.New(pipeline.Deps{
		Config:    cfg,
		Lock:      runlock.NewManager(lockPath, cfg.Lock.StaleAfter),
		Corpus:    store,
		Generator: ai.NewMultiRunner(buildRunnerRegistry(cfg, procRunner)),
		Inserter:  publish.NewScriptInserter(&cfg.Publish, procRunner),
		Snapshots: snapshot.New(snapshotDir, cfg.Snapshots.Keep),
		Logger:    logger,
	})
	if err != nil {
		cleanup()
		return nil, nil, err
	}

	return coord, cleanup, nil
}

// buildCorpusStore creates the configured corpus backend. The script backend
// holds no resources; the db backend returns its Close as the cleanup func.
func buildCorpusStore(ctx context.Context, cfg *config.Config, procRunner proc.Runner) (corpus.Store, func(), error) {
	switch constants.CorpusBackend(cfg.Corpus.Backend) {
	case constants.CorpusBackendDB:
		store, err := corpus.NewDBStore(ctx, &cfg.Corpus.DB)
		if err != nil {
			return nil, nil, err
		}
		return store, func() { _ = store.Close() }, nil
	case constants.CorpusBackendScript:
		return corpus.NewScriptStore(&cfg.Corpus.Script, procRunner), func() {}, nil
	default:
		return nil, nil, apperrors.Wrapf(apperrors.ErrCorpusUnavailable, "unknown corpus backend %q", cfg.Corpus.Backend)
	}
}

// buildRunnerRegistry registers both agent CLIs so cfg.AI.Agent picks the
// runner at generation time.
func buildRunnerRegistry(cfg *config.Config, procRunner proc.Runner) *ai.RunnerRegistry {
	registry := ai.NewRunnerRegistry()
	registry.Register(domain.AgentCodex, ai.NewCodexRunner(&cfg.AI, procRunner))
	registry.Register(domain.AgentGemini, ai.NewGeminiRunner(&cfg.AI, procRunner))
	return registry
}

// displayOutcome renders the end-of-run report.
func displayOutcome(out tui.Output, format string, outcome *domain.Outcome) error {
	if outcome == nil {
		return nil
	}

	if format == OutputJSON {
		return out.JSON(outcome)
	}

	icon := tui.RunStateIcon(outcome.State)
	summary := fmt.Sprintf("%s run %s: %s", icon, outcome.RunID, outcome.State)

	switch outcome.State {
	case constants.RunStateAccepted:
		out.Success(summary)
		displayAcceptedDetails(out, outcome)
	case constants.RunStateSkipped:
		out.Info(summary)
		if outcome.SkipReason != "" {
			out.Info(fmt.Sprintf("  Reason: %s", outcome.SkipReason))
		}
	case constants.RunStateRejected:
		out.Warning(summary)
		displayViolations(out, outcome.Violations)
		if outcome.SnapshotPath != "" {
			out.Info(fmt.Sprintf("  Draft kept at: %s", outcome.SnapshotPath))
		}
	case constants.RunStateAborted:
		out.Info(summary)
		out.Info("  Another run holds the lock; nothing to do.")
	default:
		out.Info(summary)
	}

	out.Info(fmt.Sprintf("  Duration: %s", outcome.Duration.Round(time.Millisecond)))
	return nil
}

// displayAcceptedDetails renders the post details for an accepted run.
func displayAcceptedDetails(out tui.Output, outcome *domain.Outcome) {
	if outcome.Title != "" {
		out.Info(fmt.Sprintf("  Title: %s", outcome.Title))
	}
	if outcome.Slug != "" {
		out.Info(fmt.Sprintf("  Slug:  %s", outcome.Slug))
	}
	if outcome.Attempts > 1 {
		out.Info(fmt.Sprintf("  Attempts: %d", outcome.Attempts))
	}
	if outcome.DryRun {
		out.Info("  Dry-run: post was not inserted.")
		return
	}
	if outcome.Receipt != nil {
		out.Info(fmt.Sprintf("  Post ID: %d", outcome.Receipt.PostID))
		if outcome.Receipt.URL != "" {
			out.Info(fmt.Sprintf("  URL: %s", outcome.Receipt.URL))
		}
	}
}

// displayViolations renders validation failures as an indented list.
func displayViolations(out tui.Output, violations []string) {
	if len(violations) == 0 {
		return
	}
	out.Info(fmt.Sprintf("  Violations (%d):", len(violations)))
	for _, v := range violations {
		out.Info("    - " + strings.TrimSpace(v))
	}
}

// reportError renders err with a remediation hint and returns it unchanged
// so the caller maps it to an exit code.
func reportError(out tui.Output, err error) error {
	out.Error(tui.WrapWithSuggestion(err))
	return err
}
