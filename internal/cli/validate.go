// Package cli provides the command-line interface for autopost.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/votewire/autopost/internal/config"
	"github.com/votewire/autopost/internal/corpus"
	"github.com/votewire/autopost/internal/domain"
	apperrors "github.com/votewire/autopost/internal/errors"
	"github.com/votewire/autopost/internal/normalize"
	"github.com/votewire/autopost/internal/proc"
	"github.com/votewire/autopost/internal/signal"
	"github.com/votewire/autopost/internal/snapshot"
	"github.com/votewire/autopost/internal/tui"
	"github.com/votewire/autopost/internal/validate"
)

// AddValidateCommand adds the validate command to the root command.
func AddValidateCommand(root *cobra.Command) {
	root.AddCommand(newValidateCmd())
}

// validateOptions contains all options for the validate command.
type validateOptions struct {
	skipCorpus bool
}

// newValidateCmd creates the validate command.
func newValidateCmd() *cobra.Command {
	var skipCorpus bool

	cmd := &cobra.Command{
		Use:   "validate [draft-file]",
		Short: "Validate a saved draft against editorial policy",
		Long: `Validate a draft file the way a run would: normalize it, then check it
against the configured editorial policy (source count, confidence,
duplicate titles, SEO limits).

Without an argument the newest snapshot from the last run is used.
Pass --skip-corpus to validate without loading existing titles, for
example when the site is unreachable; the duplicate check is skipped.

Exit codes: 0 when the draft passes, 2 when it is rejected, 1 on
operational failure.

Examples:
  autopost validate
  autopost validate ~/.autopost/snapshots/draft-20250301-120000.json
  autopost validate --skip-corpus --output json`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			draftPath := ""
			if len(args) > 0 {
				draftPath = args[0]
			}
			err := runValidate(cmd.Context(), cmd, cmd.OutOrStdout(), draftPath, validateOptions{
				skipCorpus: skipCorpus,
			})
			if err != nil {
				cmd.SilenceErrors = true
			}
			return err
		},
	}

	cmd.Flags().BoolVar(&skipCorpus, "skip-corpus", false,
		"Skip loading existing titles (disables the duplicate-title check)")

	return cmd
}

// runValidate executes the validate command.
func runValidate(ctx context.Context, cmd *cobra.Command, w io.Writer, draftPath string, opts validateOptions) error {
	// Check context cancellation at entry
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	sigHandler := signal.NewHandler(ctx)
	defer sigHandler.Stop()
	ctx = sigHandler.Context()

	logger := GetLogger()
	outputFormat := cmd.Flag("output").Value.String()

	tui.CheckNoColor()
	out := tui.NewOutput(w, outputFormat)

	cfg, err := loadConfig(ctx, cmd, nil) //nolint:contextcheck // context is properly checked and used
	if err != nil {
		return reportError(out, err)
	}

	draftPath, draft, err := loadDraft(ctx, cfg, draftPath) //nolint:contextcheck // context is properly checked and used
	if err != nil {
		return reportError(out, err)
	}

	existing, err := loadValidationCorpus(ctx, cfg, opts) //nolint:contextcheck // context is properly checked and used
	if err != nil {
		return reportError(out, err)
	}

	normalize.NewNormalizer(normalize.SeoPolicy{
		DefaultKeyphrase:   cfg.Policy.Keyphrase,
		MetaTitleMin:       cfg.Policy.MetaTitleMin,
		MetaTitleMax:       cfg.Policy.MetaTitleMax,
		MetaDescriptionMin: cfg.Policy.MetaDescriptionMin,
		MetaDescriptionMax: cfg.Policy.MetaDescriptionMax,
	}).Apply(draft)

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

	logger.Info().
		Str("draft", draftPath).
		Bool("skip_corpus", opts.skipCorpus).
		Int("violations", len(violations)).
		Msg("draft validated")

	return displayValidation(out, outputFormat, draftPath, draft, validate.Messages(violations))
}

// loadDraft reads and decodes the draft file, falling back to the newest
// snapshot when no path was given.
func loadDraft(ctx context.Context, cfg *config.Config, draftPath string) (string, *domain.Draft, error) {
	if draftPath == "" {
		snapshotDir, err := cfg.Snapshots.ResolveDir()
		if err != nil {
			return "", nil, apperrors.Wrap(err, "resolve snapshot directory")
		}
		draftPath, err = snapshot.New(snapshotDir, cfg.Snapshots.Keep).Latest(ctx)
		if err != nil {
			return "", nil, err
		}
	}

	data, err := os.ReadFile(draftPath) //nolint:gosec // Path comes from the operator
	if err != nil {
		return "", nil, apperrors.Wrap(err, "read draft file")
	}

	draft, err := domain.DecodeDraft(data)
	if err != nil {
		return "", nil, err
	}
	return draftPath, draft, nil
}

// loadValidationCorpus loads existing titles unless --skip-corpus was given.
func loadValidationCorpus(ctx context.Context, cfg *config.Config, opts validateOptions) (domain.Corpus, error) {
	if opts.skipCorpus {
		return domain.Corpus{}, nil
	}

	store, cleanup, err := buildCorpusStore(ctx, cfg, proc.NewExecRunner())
	if err != nil {
		return domain.Corpus{}, err
	}
	defer cleanup()

	return corpus.Load(ctx, store)
}

// validateResponse represents the JSON output for validate operations.
type validateResponse struct {
	File       string   `json:"file"`
	Title      string   `json:"title,omitempty"`
	Slug       string   `json:"slug,omitempty"`
	Valid      bool     `json:"valid"`
	Violations []string `json:"violations,omitempty"`
}

// displayValidation outputs the validation verdict in the appropriate format.
// A rejected draft is reported and returned as an error so the exit code
// reflects the verdict.
func displayValidation(out tui.Output, format, draftPath string, draft *domain.Draft, violations []string) error {
	if format == OutputJSON {
		if err := out.JSON(validateResponse{
			File:       draftPath,
			Title:      draft.Title,
			Slug:       draft.Slug,
			Valid:      len(violations) == 0,
			Violations: violations,
		}); err != nil {
			return err
		}
		if len(violations) > 0 {
			return apperrors.NewRejectedError(violations)
		}
		return nil
	}

	out.Info(fmt.Sprintf("Draft: %s", draftPath))
	if draft.Title != "" {
		out.Info(fmt.Sprintf("Title: %s", draft.Title))
	}

	if len(violations) == 0 {
		out.Success("Draft passes validation.")
		return nil
	}

	out.Warning(fmt.Sprintf("Draft rejected (%d violations):", len(violations)))
	displayViolations(out, violations)
	return apperrors.NewRejectedError(violations)
}
