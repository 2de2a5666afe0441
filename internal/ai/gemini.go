package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/votewire/autopost/internal/config"
	"github.com/votewire/autopost/internal/constants"
	"github.com/votewire/autopost/internal/ctxutil"
	"github.com/votewire/autopost/internal/domain"
	apperrors "github.com/votewire/autopost/internal/errors"
	"github.com/votewire/autopost/internal/proc"
)

// geminiCLIInfo contains Gemini-specific CLI metadata for error messages.
//
//nolint:gochecknoglobals // Constant-like structure
var geminiCLIInfo = CLIInfo{
	Name:        "gemini",
	InstallHint: "install with: npm install -g @google/gemini-cli",
	ErrType:     apperrors.ErrGeminiInvocation,
	EnvVar:      "GEMINI_API_KEY",
}

// geminiEnvelope is the JSON envelope emitted by gemini --output-format
// json. The draft JSON travels in Response, optionally wrapped in a
// markdown fence.
type geminiEnvelope struct {
	Response string          `json:"response"`
	Stats    json.RawMessage `json:"stats,omitempty"`
	Error    *geminiError    `json:"error,omitempty"`
}

// geminiError is the structured error block inside a failed envelope.
type geminiError struct {
	Type    string `json:"type"`
	Message string `json:"message"`
	Code    int    `json:"code"`
}

// GeminiRunner implements Runner for the Gemini CLI. The prompt is passed
// as the positional argument; the stdout envelope carries the draft.
type GeminiRunner struct {
	config *config.AIConfig
	proc   proc.Runner
	logger zerolog.Logger
}

// GeminiOption configures a GeminiRunner.
type GeminiOption func(*GeminiRunner)

// WithGeminiLogger attaches a logger for invocation events.
func WithGeminiLogger(logger zerolog.Logger) GeminiOption {
	return func(r *GeminiRunner) {
		r.logger = logger
	}
}

// NewGeminiRunner creates a GeminiRunner with the given configuration.
// If runner is nil, a production ExecRunner is used.
func NewGeminiRunner(cfg *config.AIConfig, runner proc.Runner, opts ...GeminiOption) *GeminiRunner {
	if runner == nil {
		runner = proc.NewExecRunner()
	}
	r := &GeminiRunner{
		config: cfg,
		proc:   runner,
		logger: zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Generate executes a generation request using the Gemini CLI. Rate-limited
// attempts are retried with linear backoff; every other failure propagates
// immediately.
func (r *GeminiRunner) Generate(ctx context.Context, req *domain.GenerateRequest) (*domain.GenerateResult, error) {
	if err := ctxutil.Canceled(ctx); err != nil {
		return nil, err
	}

	start := time.Now()
	result, err := generateWithRetry(ctx, r.maxAttempts(), r.baseWait(), apperrors.ErrGeminiInvocation, r.logger,
		func(ctx context.Context) (*domain.GenerateResult, attemptOutput, error) {
			return r.execute(ctx, req)
		})
	if err != nil {
		return nil, err
	}
	result.DurationMs = time.Since(start).Milliseconds()
	return result, nil
}

// execute performs a single Gemini invocation.
func (r *GeminiRunner) execute(ctx context.Context, req *domain.GenerateRequest) (*domain.GenerateResult, attemptOutput, error) {
	bin, err := ResolveBinary(domain.AgentGemini, r.binary())
	if err != nil {
		return nil, attemptOutput{}, err
	}

	command := proc.Command{
		Name:    bin,
		Args:    r.buildArgs(req),
		Env:     noColorEnv(),
		Dir:     r.workingDir(req),
		Timeout: r.resolveTimeout(req),
	}

	r.logger.Debug().
		Str("cli", "gemini").
		Str("binary", bin).
		Str("model", ResolveModel(domain.AgentGemini, req.Model, r.model())).
		Int("prompt_length", len(req.Prompt)).
		Msg("executing gemini CLI")

	procResult, runErr := r.proc.Run(ctx, command)
	output := attemptOutput{}
	if procResult != nil {
		output = attemptOutput{stdout: procResult.Stdout, stderr: procResult.Stderr}
	}
	if runErr != nil {
		if ctx.Err() != nil {
			return nil, output, ctx.Err()
		}
		// A failed CLI may still emit a structured envelope error; surface
		// its message so the rate-limit classifier sees the code.
		if envErr := envelopeError(output.stdout); envErr != nil {
			return nil, output, envErr
		}
		return nil, output, WrapCLIExecutionError(geminiCLIInfo, runErr, output.stderr)
	}

	raw, err := draftFromEnvelope(output.stdout)
	if err != nil {
		return nil, output, err
	}

	draft, err := domain.DecodeDraft(raw)
	if err != nil {
		return nil, output, fmt.Errorf("%w: %w", apperrors.ErrGeminiInvocation, err)
	}

	return &domain.GenerateResult{Draft: draft, Raw: raw}, output, nil
}

// buildArgs constructs the gemini CLI arguments. The prompt rides as the
// positional argument (the -p flag is deprecated in one-shot mode).
func (r *GeminiRunner) buildArgs(req *domain.GenerateRequest) []string {
	args := []string{"--output-format", "json"}
	if model := ResolveModel(domain.AgentGemini, req.Model, r.model()); model != "" {
		args = append(args, "-m", model)
	}
	return append(args, req.Prompt)
}

// envelopeError extracts the structured error from a failed envelope, or
// nil when stdout carries none.
func envelopeError(stdout []byte) error {
	trimmed := bytes.TrimSpace(stdout)
	if len(trimmed) == 0 {
		return nil
	}
	var env geminiEnvelope
	if err := json.Unmarshal(trimmed, &env); err != nil || env.Error == nil {
		return nil
	}
	return apperrors.Wrapf(apperrors.ErrGeminiInvocation, "%s (code %d)", env.Error.Message, env.Error.Code)
}

// draftFromEnvelope extracts the draft JSON bytes from CLI stdout. The
// normal shape is the envelope with the draft in Response; older builds
// print the draft directly. Markdown fences are stripped either way.
func draftFromEnvelope(stdout []byte) ([]byte, error) {
	trimmed := bytes.TrimSpace(stdout)
	if len(trimmed) == 0 {
		return nil, apperrors.Wrap(apperrors.ErrGeminiInvocation, "empty response body")
	}

	var env geminiEnvelope
	if err := json.Unmarshal(trimmed, &env); err == nil {
		if env.Error != nil {
			return nil, apperrors.Wrapf(apperrors.ErrGeminiInvocation, "%s (code %d)", env.Error.Message, env.Error.Code)
		}
		if text := strings.TrimSpace(env.Response); text != "" {
			return []byte(stripJSONFence(text)), nil
		}
		if env.Stats != nil {
			// A real envelope with no text is a blocked or empty turn, not
			// a draft printed without the envelope.
			return nil, apperrors.Wrap(apperrors.ErrGeminiInvocation, "envelope carries no response text")
		}
	}

	return []byte(stripJSONFence(string(trimmed))), nil
}

// stripJSONFence removes a surrounding markdown code fence, with or without
// a language tag.
func stripJSONFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}

	idx := strings.IndexByte(s, '\n')
	if idx < 0 {
		s = strings.TrimPrefix(s, "```json")
		s = strings.TrimPrefix(s, "```")
		return strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(s), "```"))
	}

	s = s[idx+1:]
	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}

// resolveTimeout resolves the per-attempt deadline: request > config > default.
func (r *GeminiRunner) resolveTimeout(req *domain.GenerateRequest) time.Duration {
	if req.Timeout > 0 {
		return req.Timeout
	}
	if r.config != nil && r.config.Timeout > 0 {
		return r.config.Timeout
	}
	return constants.DefaultGenerateTimeout
}

func (r *GeminiRunner) maxAttempts() int {
	if r.config != nil && r.config.MaxAttempts > 0 {
		return r.config.MaxAttempts
	}
	return constants.MaxGenerateAttempts
}

func (r *GeminiRunner) baseWait() time.Duration {
	if r.config != nil && r.config.BaseWait > 0 {
		return r.config.BaseWait
	}
	return constants.GenerateBaseWait
}

func (r *GeminiRunner) binary() string {
	if r.config != nil {
		return r.config.Binary
	}
	return ""
}

func (r *GeminiRunner) model() string {
	if r.config != nil {
		return r.config.Model
	}
	return ""
}

func (r *GeminiRunner) workingDir(req *domain.GenerateRequest) string {
	if req.WorkingDir != "" {
		return req.WorkingDir
	}
	if r.config != nil {
		return r.config.WorkingDir
	}
	return ""
}

// Compile-time check that GeminiRunner implements Runner.
var _ Runner = (*GeminiRunner)(nil)
