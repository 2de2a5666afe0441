// Package cli provides the command-line interface for autopost.
package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/votewire/autopost/internal/corpus"
	"github.com/votewire/autopost/internal/proc"
	"github.com/votewire/autopost/internal/signal"
	"github.com/votewire/autopost/internal/tui"
)

// AddCorpusCommand adds the corpus command group to the root command.
func AddCorpusCommand(root *cobra.Command) {
	corpusCmd := &cobra.Command{
		Use:   "corpus",
		Short: "Inspect the content corpus the generator sees",
		Long: `Commands for inspecting the content corpus.

The corpus is what grounds each run: the titles already published on the
site (used for duplicate detection) and the candidate topics the site
offers for new articles. These commands read it through the configured
backend, so they double as a connectivity check.

Examples:
  autopost corpus titles              # List existing post titles
  autopost corpus candidates          # List candidate topics
  autopost corpus titles --output json`,
	}

	corpusCmd.AddCommand(newCorpusTitlesCmd())
	corpusCmd.AddCommand(newCorpusCandidatesCmd())

	root.AddCommand(corpusCmd)
}

// newCorpusTitlesCmd creates the corpus titles command.
func newCorpusTitlesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "titles",
		Short: "List titles already published on the site",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			err := runCorpusList(cmd.Context(), cmd, cmd.OutOrStdout(), "titles")
			if err != nil {
				cmd.SilenceErrors = true
			}
			return err
		},
	}
}

// newCorpusCandidatesCmd creates the corpus candidates command.
func newCorpusCandidatesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "candidates",
		Short: "List candidate topics offered by the site",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			err := runCorpusList(cmd.Context(), cmd, cmd.OutOrStdout(), "candidates")
			if err != nil {
				cmd.SilenceErrors = true
			}
			return err
		},
	}
}

// corpusResponse represents the JSON output for corpus list operations.
type corpusResponse struct {
	Kind    string   `json:"kind"`
	Backend string   `json:"backend"`
	Count   int      `json:"count"`
	Entries []string `json:"entries"`
}

// runCorpusList fetches one corpus listing and displays it.
func runCorpusList(ctx context.Context, cmd *cobra.Command, w io.Writer, kind string) error {
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

	store, cleanup, err := buildCorpusStore(ctx, cfg, proc.NewExecRunner()) //nolint:contextcheck // context is properly checked and used
	if err != nil {
		return reportError(out, err)
	}
	defer cleanup()

	entries, err := fetchCorpusEntries(ctx, store, kind) //nolint:contextcheck // context is properly checked and used
	if err != nil {
		return reportError(out, err)
	}

	logger.Debug().
		Str("kind", kind).
		Str("backend", cfg.Corpus.Backend).
		Int("count", len(entries)).
		Msg("corpus listed")

	if outputFormat == OutputJSON {
		return out.JSON(corpusResponse{
			Kind:    kind,
			Backend: cfg.Corpus.Backend,
			Count:   len(entries),
			Entries: entries,
		})
	}

	displayCorpusEntries(out, kind, entries)
	return nil
}

// fetchCorpusEntries reads one listing from the store.
func fetchCorpusEntries(ctx context.Context, store corpus.Store, kind string) ([]string, error) {
	if kind == "candidates" {
		return store.Candidates(ctx)
	}
	return store.Titles(ctx)
}

// displayCorpusEntries displays the listing for terminal output.
func displayCorpusEntries(out tui.Output, kind string, entries []string) {
	if len(entries) == 0 {
		out.Info(fmt.Sprintf("No %s found.", kind))
		return
	}

	for _, entry := range entries {
		out.Info(entry)
	}
	out.Info("")
	out.Info(fmt.Sprintf("%d %s", len(entries), kind))
}
