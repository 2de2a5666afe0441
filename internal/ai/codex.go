package ai

import (
	"context"
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"

	"github.com/votewire/autopost/internal/config"
	"github.com/votewire/autopost/internal/constants"
	"github.com/votewire/autopost/internal/ctxutil"
	"github.com/votewire/autopost/internal/domain"
	apperrors "github.com/votewire/autopost/internal/errors"
	"github.com/votewire/autopost/internal/proc"
)

// draftSchema is the JSON schema the Codex CLI enforces on its output.
//
//go:embed schema/draft_schema.json
var draftSchema []byte

// codexCLIInfo contains Codex-specific CLI metadata for error messages.
//
//nolint:gochecknoglobals // Constant-like structure
var codexCLIInfo = CLIInfo{
	Name:        "codex",
	InstallHint: "install with: npm install -g @openai/codex",
	ErrType:     apperrors.ErrCodexInvocation,
	EnvVar:      "OPENAI_API_KEY",
}

// CodexRunner implements Runner for the Codex CLI. The prompt travels on
// stdin and the draft comes back through an output file, so CLI progress
// noise on stdout cannot corrupt it. The draft schema ships embedded in the
// binary and is materialized to a scratch directory per call.
type CodexRunner struct {
	config *config.AIConfig
	proc   proc.Runner
	logger zerolog.Logger
}

// CodexOption configures a CodexRunner.
type CodexOption func(*CodexRunner)

// WithCodexLogger attaches a logger for invocation events.
func WithCodexLogger(logger zerolog.Logger) CodexOption {
	return func(r *CodexRunner) {
		r.logger = logger
	}
}

// NewCodexRunner creates a CodexRunner with the given configuration.
// If runner is nil, a production ExecRunner is used.
func NewCodexRunner(cfg *config.AIConfig, runner proc.Runner, opts ...CodexOption) *CodexRunner {
	if runner == nil {
		runner = proc.NewExecRunner()
	}
	r := &CodexRunner{
		config: cfg,
		proc:   runner,
		logger: zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Generate executes a generation request using the Codex CLI. Rate-limited
// attempts are retried with linear backoff; every other failure propagates
// immediately.
func (r *CodexRunner) Generate(ctx context.Context, req *domain.GenerateRequest) (*domain.GenerateResult, error) {
	if err := ctxutil.Canceled(ctx); err != nil {
		return nil, err
	}

	start := time.Now()
	result, err := generateWithRetry(ctx, r.maxAttempts(), r.baseWait(), apperrors.ErrCodexInvocation, r.logger,
		func(ctx context.Context) (*domain.GenerateResult, attemptOutput, error) {
			return r.execute(ctx, req)
		})
	if err != nil {
		return nil, err
	}
	result.DurationMs = time.Since(start).Milliseconds()
	return result, nil
}

// execute performs a single Codex invocation.
func (r *CodexRunner) execute(ctx context.Context, req *domain.GenerateRequest) (*domain.GenerateResult, attemptOutput, error) {
	bin, err := ResolveBinary(domain.AgentCodex, r.binary())
	if err != nil {
		return nil, attemptOutput{}, err
	}

	scratch, err := os.MkdirTemp("", "autopost-codex-*")
	if err != nil {
		return nil, attemptOutput{}, fmt.Errorf("create codex scratch dir: %w", err)
	}
	defer func() { _ = os.RemoveAll(scratch) }()

	schemaPath := filepath.Join(scratch, "draft_schema.json")
	if err := os.WriteFile(schemaPath, draftSchema, 0o600); err != nil {
		return nil, attemptOutput{}, fmt.Errorf("materialize draft schema: %w", err)
	}
	outPath := filepath.Join(scratch, "draft.json")

	command := proc.Command{
		Name:    bin,
		Args:    r.buildArgs(req, schemaPath, outPath),
		Stdin:   req.Prompt,
		Env:     noColorEnv(),
		Dir:     r.workingDir(req),
		Timeout: r.resolveTimeout(req),
	}

	r.logger.Debug().
		Str("cli", "codex").
		Str("binary", bin).
		Str("model", ResolveModel(domain.AgentCodex, req.Model, r.model())).
		Int("prompt_length", len(req.Prompt)).
		Msg("executing codex CLI")

	procResult, runErr := r.proc.Run(ctx, command)
	output := attemptOutput{}
	if procResult != nil {
		output = attemptOutput{stdout: procResult.Stdout, stderr: procResult.Stderr}
	}
	if runErr != nil {
		if ctx.Err() != nil {
			return nil, output, ctx.Err()
		}
		return nil, output, WrapCLIExecutionError(codexCLIInfo, runErr, output.stderr)
	}

	raw, err := os.ReadFile(outPath) //#nosec G304 -- path is inside our scratch dir
	if err != nil {
		return nil, output, apperrors.Wrapf(apperrors.ErrCodexInvocation, "draft output file not written: %v", err)
	}

	draft, err := domain.DecodeDraft(raw)
	if err != nil {
		return nil, output, fmt.Errorf("%w: %w", apperrors.ErrCodexInvocation, err)
	}

	return &domain.GenerateResult{Draft: draft, Raw: raw}, output, nil
}

// buildArgs constructs the codex CLI arguments: model flag first, then the
// exec invocation with schema enforcement and file output, then "-" to read
// the prompt from stdin.
func (r *CodexRunner) buildArgs(req *domain.GenerateRequest, schemaPath, outPath string) []string {
	var args []string
	if model := ResolveModel(domain.AgentCodex, req.Model, r.model()); model != "" {
		args = append(args, "--model", model)
	}
	args = append(args,
		"--search",
		"exec",
		"--skip-git-repo-check",
		"--output-schema", schemaPath,
		"-o", outPath,
		"-",
	)
	return args
}

// resolveTimeout resolves the per-attempt deadline: request > config > default.
func (r *CodexRunner) resolveTimeout(req *domain.GenerateRequest) time.Duration {
	if req.Timeout > 0 {
		return req.Timeout
	}
	if r.config != nil && r.config.Timeout > 0 {
		return r.config.Timeout
	}
	return constants.DefaultGenerateTimeout
}

func (r *CodexRunner) maxAttempts() int {
	if r.config != nil && r.config.MaxAttempts > 0 {
		return r.config.MaxAttempts
	}
	return constants.MaxGenerateAttempts
}

func (r *CodexRunner) baseWait() time.Duration {
	if r.config != nil && r.config.BaseWait > 0 {
		return r.config.BaseWait
	}
	return constants.GenerateBaseWait
}

func (r *CodexRunner) binary() string {
	if r.config != nil {
		return r.config.Binary
	}
	return ""
}

func (r *CodexRunner) model() string {
	if r.config != nil {
		return r.config.Model
	}
	return ""
}

func (r *CodexRunner) workingDir(req *domain.GenerateRequest) string {
	if req.WorkingDir != "" {
		return req.WorkingDir
	}
	if r.config != nil {
		return r.config.WorkingDir
	}
	return ""
}

// Compile-time check that CodexRunner implements Runner.
var _ Runner = (*CodexRunner)(nil)
