// Package pipeline drives one end-to-end posting run: take the single-run
// lock, read the corpus, generate a draft, normalize and snapshot it,
// validate, then publish or stop. Every step logs a structured event
// carrying the run id, and the lock is released on every exit path.
//
// Lock contention is not a failure. When another live run holds the lock,
// Run returns an Aborted outcome with a nil error so overlapping cron
// schedules stay quiet.
package pipeline

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/votewire/autopost/internal/ai"
	"github.com/votewire/autopost/internal/clock"
	"github.com/votewire/autopost/internal/config"
	"github.com/votewire/autopost/internal/constants"
	"github.com/votewire/autopost/internal/corpus"
	"github.com/votewire/autopost/internal/ctxutil"
	"github.com/votewire/autopost/internal/domain"
	apperrors "github.com/votewire/autopost/internal/errors"
	"github.com/votewire/autopost/internal/normalize"
	"github.com/votewire/autopost/internal/prompts"
	"github.com/votewire/autopost/internal/publish"
	"github.com/votewire/autopost/internal/runlock"
	"github.com/votewire/autopost/internal/snapshot"
	"github.com/votewire/autopost/internal/validate"
)

// preflighter is implemented by collaborators that can verify their external
// pieces before the run takes the lock.
type preflighter interface {
	Preflight(ctx context.Context) error
}

// Deps carries the collaborators a Coordinator needs. All fields except
// Clock are required.
type Deps struct {
	Config    *config.Config
	Lock      *runlock.Manager
	Corpus    corpus.Store
	Generator ai.Runner
	Inserter  publish.Inserter
	Snapshots *snapshot.Store
	Clock     clock.Clock
	Logger    zerolog.Logger
}

// Request carries the per-invocation settings for one run.
type Request struct {
	// DryRun runs generation, normalization and validation but never
	// inserts the post.
	DryRun bool
}

// Coordinator executes posting runs.
type Coordinator struct {
	deps     Deps
	newRunID func() string
}

// New creates a Coordinator. The clock defaults to the wall clock.
func New(deps Deps) (*Coordinator, error) {
	if deps.Config == nil {
		return nil, apperrors.ErrConfigNil
	}
	if deps.Lock == nil {
		return nil, apperrors.Wrap(apperrors.ErrInvalidArgument, "lock manager is required")
	}
	if deps.Corpus == nil {
		return nil, apperrors.Wrap(apperrors.ErrInvalidArgument, "corpus store is required")
	}
	if deps.Generator == nil {
		return nil, apperrors.Wrap(apperrors.ErrInvalidArgument, "generator is required")
	}
	if deps.Inserter == nil {
		return nil, apperrors.Wrap(apperrors.ErrInvalidArgument, "inserter is required")
	}
	if deps.Snapshots == nil {
		return nil, apperrors.Wrap(apperrors.ErrInvalidArgument, "snapshot store is required")
	}
	if deps.Clock == nil {
		deps.Clock = clock.RealClock{}
	}

	return &Coordinator{
		deps:     deps,
		newRunID: uuid.NewString,
	}, nil
}

// Run executes one posting run end to end and reports how it ended.
//
// The outcome's state tells the caller what happened: Accepted, Skipped,
// Rejected or Aborted. A rejection returns the outcome together with a
// RejectedError carrying the violations. Operational failures return a nil
// outcome and the error.
func (c *Coordinator) Run(ctx context.Context, req Request) (*domain.Outcome, error) {
	if err := ctxutil.Canceled(ctx); err != nil {
		return nil, err
	}

	runID := c.newRunID()
	logger := c.deps.Logger.With().Str("run_id", runID).Logger()
	started := c.deps.Clock.Now()

	logger.Info().
		Str("agent", c.deps.Config.AI.Agent).
		Bool("dry_run", req.DryRun).
		Msg("Job started.")

	outcome, err := c.run(ctx, runID, req, logger)
	if outcome != nil {
		outcome.RunID = runID
		outcome.DryRun = req.DryRun
		outcome.Duration = c.deps.Clock.Since(started)
	}
	if err != nil && !apperrors.IsRejected(err) {
		logger.Error().Err(err).Msg("Job failed.")
	}

	logger.Info().
		Dur("duration", c.deps.Clock.Since(started)).
		Msg("Job finished.")

	return outcome, err
}

// run walks the state machine from Idle to a terminal decision.
func (c *Coordinator) run(ctx context.Context, runID string, req Request, logger zerolog.Logger) (*domain.Outcome, error) {
	cfg := c.deps.Config
	state := newRunState(logger)

	if err := c.preflight(ctx, req); err != nil {
		return nil, err
	}

	lock, err := c.deps.Lock.Acquire(ctx, runID)
	if err != nil {
		if errors.Is(err, apperrors.ErrLockHeld) {
			logger.Info().Err(err).Msg("Skipping run: lock is held.")
			_ = state.to(constants.RunStateAborted)
			return &domain.Outcome{State: constants.RunStateAborted}, nil
		}
		return nil, apperrors.Wrap(err, "acquire run lock")
	}

	defer func() {
		if releaseErr := lock.Release(); releaseErr != nil {
			logger.Warn().Err(releaseErr).Msg("failed to release run lock")
			return
		}
		if IsValidTransition(state.current, constants.RunStateReleased) {
			_ = state.to(constants.RunStateReleased)
		}
	}()

	if err := state.to(constants.RunStateLockAcquired); err != nil {
		return nil, err
	}

	existing, err := corpus.Load(ctx, c.deps.Corpus)
	if err != nil {
		return nil, err
	}
	logger.Info().
		Int("titles", len(existing.Titles)).
		Int("candidates", len(existing.Candidates)).
		Msg("corpus loaded")
	if err := state.to(constants.RunStateCorpusLoaded); err != nil {
		return nil, err
	}

	prompt, err := prompts.Render(prompts.ProfileGenerate, prompts.NewProfileGenerateData(
		cfg.Policy.Topic,
		cfg.Policy.ElectionDate,
		existing.Titles,
		existing.Candidates,
		cfg.Policy.MinSources,
		cfg.Policy.MinConfidence,
		c.deps.Clock.Now(),
	))
	if err != nil {
		return nil, apperrors.Wrap(err, "build generation prompt")
	}

	logger.Info().
		Str("agent", cfg.AI.Agent).
		Str("model", cfg.AI.Model).
		Msg("generation started")

	result, err := c.deps.Generator.Generate(ctx, &domain.GenerateRequest{
		Agent:      domain.Agent(cfg.AI.Agent),
		Prompt:     prompt,
		Model:      cfg.AI.Model,
		Timeout:    cfg.AI.Timeout,
		WorkingDir: cfg.AI.WorkingDir,
	})
	if err != nil {
		return nil, err
	}
	draft := result.Draft

	logger.Info().
		Int("attempts", result.Attempts).
		Int64("duration_ms", result.DurationMs).
		Msg("generation finished")
	if err := state.to(constants.RunStateGenerated); err != nil {
		return nil, err
	}

	normalize.NewNormalizer(normalize.SeoPolicy{
		DefaultKeyphrase:   cfg.Policy.Keyphrase,
		MetaTitleMin:       cfg.Policy.MetaTitleMin,
		MetaTitleMax:       cfg.Policy.MetaTitleMax,
		MetaDescriptionMin: cfg.Policy.MetaDescriptionMin,
		MetaDescriptionMax: cfg.Policy.MetaDescriptionMax,
	}).Apply(draft)
	if err := state.to(constants.RunStateNormalized); err != nil {
		return nil, err
	}

	snapshotPath, err := c.deps.Snapshots.Save(ctx, draft)
	if err != nil {
		return nil, err
	}
	logger.Info().Str("path", snapshotPath).Msg("draft snapshot saved")
	if _, pruneErr := c.deps.Snapshots.Prune(ctx); pruneErr != nil {
		logger.Warn().Err(pruneErr).Msg("failed to prune snapshots")
	}

	violations := validate.Check(draft, existing, validate.Policy{
		MinSources:          cfg.Policy.MinSources,
		MinConfidence:       cfg.Policy.MinConfidence,
		SimilarityThreshold: cfg.Policy.SimilarityThreshold,
		ElectionDate:        cfg.Policy.ElectionDate,
		MetaTitleMin:        cfg.Policy.MetaTitleMin,
		MetaTitleMax:        cfg.Policy.MetaTitleMax,
		MetaDescriptionMin:  cfg.Policy.MetaDescriptionMin,
		MetaDescriptionMax:  cfg.Policy.MetaDescriptionMax,
	})
	if err := state.to(constants.RunStateValidated); err != nil {
		return nil, err
	}

	outcome := &domain.Outcome{
		Title:        draft.Title,
		Slug:         draft.Slug,
		Attempts:     result.Attempts,
		SnapshotPath: snapshotPath,
	}

	if len(violations) > 0 {
		messages := validate.Messages(violations)
		logger.Warn().
			Strs("violations", messages).
			Msg("Validation failed; skipping publish.")
		if err := state.to(constants.RunStateRejected); err != nil {
			return nil, err
		}
		outcome.State = constants.RunStateRejected
		outcome.Violations = messages
		return outcome, apperrors.NewRejectedError(messages)
	}

	if draft.IsSkip() {
		logger.Info().
			Str("reason", draft.Reason).
			Msg("Model returned skip.")
		if err := state.to(constants.RunStateSkipped); err != nil {
			return nil, err
		}
		outcome.State = constants.RunStateSkipped
		outcome.SkipReason = draft.Reason
		return outcome, nil
	}

	if req.DryRun {
		logger.Info().Msg("Dry-run enabled; not publishing post.")
		if err := state.to(constants.RunStateAccepted); err != nil {
			return nil, err
		}
		outcome.State = constants.RunStateAccepted
		return outcome, nil
	}

	receipt, err := c.deps.Inserter.Insert(ctx, draft, cfg.Publish.PostStatus)
	if err != nil {
		return nil, err
	}
	if err := state.to(constants.RunStateAccepted); err != nil {
		return nil, err
	}
	outcome.State = constants.RunStateAccepted
	outcome.Receipt = receipt
	return outcome, nil
}

// preflight verifies the run's external pieces before the lock is taken:
// the helper scripts on disk and the agent binary on PATH. Failing here
// never leaves a lock behind.
func (c *Coordinator) preflight(ctx context.Context, req Request) error {
	if p, ok := c.deps.Corpus.(preflighter); ok {
		if err := p.Preflight(ctx); err != nil {
			return err
		}
	}

	if !req.DryRun {
		if p, ok := c.deps.Inserter.(preflighter); ok {
			if err := p.Preflight(ctx); err != nil {
				return err
			}
		}
	}

	cfg := c.deps.Config
	if _, err := ai.ResolveBinary(domain.Agent(cfg.AI.Agent), cfg.AI.Binary); err != nil {
		return err
	}
	return nil
}
