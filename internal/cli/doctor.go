// Package cli provides the command-line interface for autopost.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/votewire/autopost/internal/config"
	"github.com/votewire/autopost/internal/constants"
	"github.com/votewire/autopost/internal/corpus"
	"github.com/votewire/autopost/internal/proc"
	"github.com/votewire/autopost/internal/publish"
	"github.com/votewire/autopost/internal/runlock"
	"github.com/votewire/autopost/internal/signal"
	"github.com/votewire/autopost/internal/tui"
)

// Doctor check statuses.
const (
	checkOK   = "ok"
	checkWarn = "warn"
	checkFail = "fail"
)

// AddDoctorCommand adds the doctor command to the root command.
func AddDoctorCommand(root *cobra.Command) {
	root.AddCommand(newDoctorCmd())
}

// newDoctorCmd creates the doctor command.
func newDoctorCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Check that the environment is ready for unattended runs",
		Long: `Check everything a run needs before cron finds out the hard way: the
required CLI tools, the helper scripts or database the corpus comes from,
the publish helper, the run lock, and the snapshot and log directories.

Warnings (an active lock, a missing optional agent) do not fail the
check; only conditions that would break the next run do.

Examples:
  autopost doctor
  autopost doctor --output json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			err := runDoctor(cmd.Context(), cmd, cmd.OutOrStdout())
			if err != nil {
				cmd.SilenceErrors = true
			}
			return err
		},
	}

	return cmd
}

// doctorCheck is one row of the diagnostics report.
type doctorCheck struct {
	Name   string `json:"name"`
	Status string `json:"status"`
	Detail string `json:"detail,omitempty"`
}

// doctorResponse represents the JSON output for doctor operations.
type doctorResponse struct {
	Healthy bool          `json:"healthy"`
	Checks  []doctorCheck `json:"checks"`
}

// runDoctor executes the doctor command.
func runDoctor(ctx context.Context, cmd *cobra.Command, w io.Writer) error {
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

	cfg, configCheck := loadDoctorConfig(ctx, cmd) //nolint:contextcheck // context is properly checked and used

	checks, err := runDoctorProbes(ctx, cfg) //nolint:contextcheck // context is properly checked and used
	if err != nil {
		return reportError(out, err)
	}
	checks = append([]doctorCheck{configCheck}, checks...)

	failed := 0
	for _, check := range checks {
		if check.Status == checkFail {
			failed++
		}
	}

	logger.Info().
		Int("checks", len(checks)).
		Int("failed", failed).
		Msg("doctor finished")

	if displayErr := displayDoctorReport(out, outputFormat, checks, failed); displayErr != nil {
		return displayErr
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d checks failed", failed, len(checks))
	}
	return nil
}

// loadDoctorConfig loads configuration for probing. A broken config is
// itself a finding, and the probes continue against the defaults.
func loadDoctorConfig(ctx context.Context, cmd *cobra.Command) (*config.Config, doctorCheck) {
	cfg, err := loadConfig(ctx, cmd, nil)
	if err != nil {
		return config.DefaultConfig(), doctorCheck{
			Name:   "config",
			Status: checkFail,
			Detail: err.Error(),
		}
	}
	detail := describeConfigSources()
	if path := configFlagPath(cmd); path != "" {
		detail = path
	}
	return cfg, doctorCheck{
		Name:   "config",
		Status: checkOK,
		Detail: fmt.Sprintf("loaded (%s)", detail),
	}
}

// describeConfigSources reports which config files are present.
func describeConfigSources() string {
	sources := ""
	if path, err := config.GlobalConfigPath(); err == nil {
		if _, statErr := os.Stat(path); statErr == nil {
			sources = "global"
		}
	}
	if _, err := os.Stat(config.ProjectConfigPath()); err == nil {
		if sources != "" {
			sources += ", project"
		} else {
			sources = "project"
		}
	}
	if sources == "" {
		return "defaults only"
	}
	return sources
}

// runDoctorProbes runs the independent environment probes concurrently and
// returns their rows in a fixed order.
func runDoctorProbes(ctx context.Context, cfg *config.Config) ([]doctorCheck, error) {
	var (
		toolChecks   []doctorCheck
		corpusCheck  doctorCheck
		publishCheck doctorCheck
		lockCheck    doctorCheck
		snapCheck    doctorCheck
		logCheck     doctorCheck
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		toolChecks, err = probeTools(gctx, cfg)
		return err
	})
	g.Go(func() error {
		corpusCheck = probeCorpus(gctx, cfg)
		return nil
	})
	g.Go(func() error {
		publishCheck = probePublish(gctx, cfg)
		return nil
	})
	g.Go(func() error {
		lockCheck = probeLock(cfg)
		return nil
	})
	g.Go(func() error {
		snapCheck = probeSnapshotsDir(cfg)
		return nil
	})
	g.Go(func() error {
		logCheck = probeLogDir(cfg)
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	checks := make([]doctorCheck, 0, len(toolChecks)+5)
	checks = append(checks, toolChecks...)
	checks = append(checks, corpusCheck, publishCheck, lockCheck, snapCheck, logCheck)
	return checks, nil
}

// probeTools detects the CLI tools and grades each against the configured
// agent: the agent's CLI missing is a failure, the other agent's is not.
func probeTools(ctx context.Context, cfg *config.Config) ([]doctorCheck, error) {
	result, err := config.NewToolDetector().Detect(ctx)
	if err != nil {
		return nil, err
	}

	agentTool := config.AgentTool(cfg.AI.Agent)
	order := []string{constants.ToolPHP, constants.ToolCodex, constants.ToolGemini}
	checks := make([]doctorCheck, 0, len(order))
	for _, name := range order {
		for _, tool := range result.Tools {
			if tool.Name == name {
				checks = append(checks, gradeTool(tool, agentTool))
				break
			}
		}
	}
	return checks, nil
}

// gradeTool turns one detected tool into a report row.
func gradeTool(tool config.Tool, agentTool string) doctorCheck {
	needed := tool.Required || tool.Name == agentTool

	switch tool.Status {
	case config.ToolStatusInstalled:
		detail := tool.CurrentVersion
		if !needed {
			detail += " (optional)"
		}
		return doctorCheck{Name: tool.Name, Status: checkOK, Detail: detail}
	case config.ToolStatusOutdated:
		detail := fmt.Sprintf("have %s, need %s", tool.CurrentVersion, tool.MinVersion)
		status := checkWarn
		if needed {
			status = checkFail
		}
		return doctorCheck{Name: tool.Name, Status: status, Detail: detail}
	case config.ToolStatusMissing:
		if needed {
			return doctorCheck{Name: tool.Name, Status: checkFail, Detail: "not installed; " + tool.InstallHint}
		}
		return doctorCheck{Name: tool.Name, Status: checkOK, Detail: "not installed (optional)"}
	default:
		return doctorCheck{Name: tool.Name, Status: checkWarn, Detail: "unknown status"}
	}
}

// probeCorpus checks the configured corpus backend is reachable.
func probeCorpus(ctx context.Context, cfg *config.Config) doctorCheck {
	switch constants.CorpusBackend(cfg.Corpus.Backend) {
	case constants.CorpusBackendDB:
		store, err := corpus.NewDBStore(ctx, &cfg.Corpus.DB)
		if err != nil {
			return doctorCheck{Name: "corpus", Status: checkFail, Detail: err.Error()}
		}
		_ = store.Close()
		return doctorCheck{Name: "corpus", Status: checkOK, Detail: "db backend reachable"}
	case constants.CorpusBackendScript:
		store := corpus.NewScriptStore(&cfg.Corpus.Script, proc.NewExecRunner())
		if err := store.Preflight(ctx); err != nil {
			return doctorCheck{Name: "corpus", Status: checkFail, Detail: err.Error()}
		}
		return doctorCheck{Name: "corpus", Status: checkOK, Detail: "helper scripts present"}
	default:
		return doctorCheck{Name: "corpus", Status: checkFail, Detail: fmt.Sprintf("unknown backend %q", cfg.Corpus.Backend)}
	}
}

// probePublish checks the insert helper script is present.
func probePublish(ctx context.Context, cfg *config.Config) doctorCheck {
	inserter := publish.NewScriptInserter(&cfg.Publish, proc.NewExecRunner())
	if err := inserter.Preflight(ctx); err != nil {
		return doctorCheck{Name: "publish", Status: checkFail, Detail: err.Error()}
	}
	return doctorCheck{Name: "publish", Status: checkOK, Detail: "insert helper present"}
}

// probeLock inspects the run lock marker without touching it.
func probeLock(cfg *config.Config) doctorCheck {
	lockPath, err := cfg.Lock.ResolvePath()
	if err != nil {
		return doctorCheck{Name: "lock", Status: checkFail, Detail: err.Error()}
	}

	state, err := runlock.NewManager(lockPath, cfg.Lock.StaleAfter).Inspect()
	if err != nil {
		return doctorCheck{Name: "lock", Status: checkFail, Detail: err.Error()}
	}

	switch {
	case !state.Exists:
		return doctorCheck{Name: "lock", Status: checkOK, Detail: "no active run"}
	case state.Stale:
		return doctorCheck{Name: "lock", Status: checkWarn,
			Detail: fmt.Sprintf("stale marker (age %s); next run will evict it", state.Age.Round(time.Second))}
	default:
		return doctorCheck{Name: "lock", Status: checkWarn,
			Detail: fmt.Sprintf("held by an active run (age %s)", state.Age.Round(time.Second))}
	}
}

// probeSnapshotsDir checks the snapshot directory is writable.
func probeSnapshotsDir(cfg *config.Config) doctorCheck {
	dir, err := cfg.Snapshots.ResolveDir()
	if err != nil {
		return doctorCheck{Name: "snapshots", Status: checkFail, Detail: err.Error()}
	}
	if err := checkWritableDir(dir); err != nil {
		return doctorCheck{Name: "snapshots", Status: checkFail, Detail: err.Error()}
	}
	return doctorCheck{Name: "snapshots", Status: checkOK, Detail: dir}
}

// probeLogDir checks the log directory is writable.
func probeLogDir(cfg *config.Config) doctorCheck {
	logPath, err := cfg.Log.ResolveFile()
	if err != nil {
		return doctorCheck{Name: "logs", Status: checkFail, Detail: err.Error()}
	}
	dir := filepath.Dir(logPath)
	if err := checkWritableDir(dir); err != nil {
		return doctorCheck{Name: "logs", Status: checkFail, Detail: err.Error()}
	}
	return doctorCheck{Name: "logs", Status: checkOK, Detail: dir}
}

// checkWritableDir verifies dir exists (creating it if needed) and accepts
// a write.
func checkWritableDir(dir string) error {
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return err
	}
	f, err := os.CreateTemp(dir, ".doctor-*")
	if err != nil {
		return err
	}
	_ = f.Close()
	return os.Remove(f.Name())
}

// displayDoctorReport renders the diagnostics report.
func displayDoctorReport(out tui.Output, format string, checks []doctorCheck, failed int) error {
	if format == OutputJSON {
		return out.JSON(doctorResponse{
			Healthy: failed == 0,
			Checks:  checks,
		})
	}

	rows := make([][]string, 0, len(checks))
	for _, check := range checks {
		rows = append(rows, []string{check.Name, check.Status, check.Detail})
	}
	out.Table([]string{"CHECK", "STATUS", "DETAIL"}, rows)

	if failed > 0 {
		out.Error(fmt.Errorf("%d of %d checks failed", failed, len(checks)))
		return nil
	}
	out.Success("Environment is ready.")
	return nil
}
