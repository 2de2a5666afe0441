package ai

// This test suite uses fakeProcRunner to simulate Codex CLI subprocess
// execution. Tests NEVER invoke the real codex binary or make API calls;
// all responses are pre-configured mock data.

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/votewire/autopost/internal/config"
	"github.com/votewire/autopost/internal/domain"
	apperrors "github.com/votewire/autopost/internal/errors"
	"github.com/votewire/autopost/internal/proc"
)

// writeDraft is an OnRun body that writes the publish draft fixture to the
// command's -o path, the way a successful codex run would.
func writeDraft(t *testing.T) func(int, proc.Command) (*proc.Result, error) {
	t.Helper()
	return func(_ int, cmd proc.Command) (*proc.Result, error) {
		out := outPathFromArgs(t, cmd.Args)
		if err := os.WriteFile(out, []byte(publishDraftJSON), 0o600); err != nil {
			t.Fatalf("write draft fixture: %v", err)
		}
		return &proc.Result{Stdout: []byte("tokens used: 5321")}, nil
	}
}

func TestNewCodexRunner(t *testing.T) {
	t.Run("creates runner with provided proc runner", func(t *testing.T) {
		cfg := &config.AIConfig{Timeout: 15 * time.Minute}
		fake := &fakeProcRunner{}

		runner := NewCodexRunner(cfg, fake)

		require.NotNil(t, runner)
		assert.Equal(t, cfg, runner.config)
		assert.Equal(t, fake, runner.proc)
	})

	t.Run("creates runner with default exec runner when nil provided", func(t *testing.T) {
		runner := NewCodexRunner(&config.AIConfig{}, nil)

		require.NotNil(t, runner)
		assert.IsType(t, &proc.ExecRunner{}, runner.proc)
	})
}

func TestCodexRunner_Generate_ContextCancellation(t *testing.T) {
	clearResolutionEnv(t)

	fake := &fakeProcRunner{}
	runner := NewCodexRunner(&config.AIConfig{Binary: "/opt/fake/codex"}, fake)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result, err := runner.Generate(ctx, &domain.GenerateRequest{Prompt: "test prompt"})

	require.ErrorIs(t, err, context.Canceled)
	assert.Nil(t, result)
	assert.Empty(t, fake.Commands)
}

func TestCodexRunner_Generate_Success(t *testing.T) {
	clearResolutionEnv(t)
	unsetNoColor(t)

	var schemaSeen []byte
	fake := &fakeProcRunner{}
	fake.OnRun = func(call int, cmd proc.Command) (*proc.Result, error) {
		// The schema file only exists while the scratch dir is alive, so it
		// has to be read here, not after Generate returns.
		schemaSeen, _ = os.ReadFile(cmd.Args[6])
		return writeDraft(t)(call, cmd)
	}

	cfg := &config.AIConfig{Binary: "/opt/fake/codex", Timeout: 20 * time.Minute}
	runner := NewCodexRunner(cfg, fake)

	result, err := runner.Generate(context.Background(), &domain.GenerateRequest{Prompt: "write a profile"})

	require.NoError(t, err)
	require.NotNil(t, result)
	require.NotNil(t, result.Draft)
	assert.Equal(t, domain.DraftStatusPublish, result.Draft.Status)
	assert.Equal(t, "ram-chandra-poudel-profile", result.Draft.Slug)
	assert.Equal(t, 1, result.Attempts)
	assert.GreaterOrEqual(t, result.DurationMs, int64(0))
	assert.JSONEq(t, publishDraftJSON, string(result.Raw))

	require.Len(t, fake.Commands, 1)
	cmd := fake.Commands[0]
	assert.Equal(t, "/opt/fake/codex", cmd.Name)
	assert.Equal(t, "write a profile", cmd.Stdin)
	assert.Equal(t, []string{"NO_COLOR=1"}, cmd.Env)
	assert.Equal(t, 20*time.Minute, cmd.Timeout)

	require.Len(t, cmd.Args, 10)
	assert.Equal(t, []string{"--model", "gpt-5.3-codex", "--search", "exec", "--skip-git-repo-check", "--output-schema"}, cmd.Args[:6])
	assert.Equal(t, "-o", cmd.Args[7])
	assert.Equal(t, "-", cmd.Args[9])

	assert.Equal(t, draftSchema, schemaSeen, "schema file must carry the embedded draft schema")
}

func TestCodexRunner_Generate_ModelAndTimeoutPrecedence(t *testing.T) {
	clearResolutionEnv(t)

	t.Run("request model and timeout win over config", func(t *testing.T) {
		fake := &fakeProcRunner{OnRun: writeDraft(t)}
		cfg := &config.AIConfig{Binary: "/opt/fake/codex", Model: "gpt-5.3-codex-mini", Timeout: 20 * time.Minute}
		runner := NewCodexRunner(cfg, fake)

		_, err := runner.Generate(context.Background(), &domain.GenerateRequest{
			Prompt:  "p",
			Model:   "gpt-5.3-codex-max",
			Timeout: 5 * time.Minute,
		})

		require.NoError(t, err)
		require.Len(t, fake.Commands, 1)
		assert.Equal(t, []string{"--model", "gpt-5.3-codex-max"}, fake.Commands[0].Args[:2])
		assert.Equal(t, 5*time.Minute, fake.Commands[0].Timeout)
	})

	t.Run("model env var beats the agent default", func(t *testing.T) {
		t.Setenv("CODEX_MODEL", "gpt-5.3-codex-experimental")

		fake := &fakeProcRunner{OnRun: writeDraft(t)}
		runner := NewCodexRunner(&config.AIConfig{Binary: "/opt/fake/codex"}, fake)

		_, err := runner.Generate(context.Background(), &domain.GenerateRequest{Prompt: "p"})

		require.NoError(t, err)
		require.Len(t, fake.Commands, 1)
		assert.Equal(t, []string{"--model", "gpt-5.3-codex-experimental"}, fake.Commands[0].Args[:2])
	})

	t.Run("working dir falls back to config", func(t *testing.T) {
		fake := &fakeProcRunner{OnRun: writeDraft(t)}
		runner := NewCodexRunner(&config.AIConfig{Binary: "/opt/fake/codex", WorkingDir: "/srv/autopost"}, fake)

		_, err := runner.Generate(context.Background(), &domain.GenerateRequest{Prompt: "p"})

		require.NoError(t, err)
		require.Len(t, fake.Commands, 1)
		assert.Equal(t, "/srv/autopost", fake.Commands[0].Dir)
	})
}

func TestCodexRunner_Generate_RateLimitRetry(t *testing.T) {
	clearResolutionEnv(t)
	waits := stubSleep(t)

	fake := &fakeProcRunner{}
	fake.OnRun = func(call int, cmd proc.Command) (*proc.Result, error) {
		if call < 3 {
			return &proc.Result{Stderr: []byte("stream error: 429 Too Many Requests"), ExitCode: 1},
				apperrors.Wrap(apperrors.ErrCommandFailed, "codex: exit code 1")
		}
		return writeDraft(t)(call, cmd)
	}

	cfg := &config.AIConfig{Binary: "/opt/fake/codex", MaxAttempts: 3, BaseWait: 30 * time.Second}
	runner := NewCodexRunner(cfg, fake)

	result, err := runner.Generate(context.Background(), &domain.GenerateRequest{Prompt: "p"})

	require.NoError(t, err)
	require.NotNil(t, result)
	assert.Equal(t, 3, result.Attempts)
	assert.Len(t, fake.Commands, 3)
	assert.Equal(t, []time.Duration{30 * time.Second, 60 * time.Second}, *waits)
}

func TestCodexRunner_Generate_RateLimitExhausted(t *testing.T) {
	clearResolutionEnv(t)
	waits := stubSleep(t)

	fake := &fakeProcRunner{
		StderrData: []byte("quota exceeded for this project"),
		Err:        apperrors.Wrap(apperrors.ErrCommandFailed, "codex: exit code 1"),
	}

	cfg := &config.AIConfig{Binary: "/opt/fake/codex", MaxAttempts: 2, BaseWait: 30 * time.Second}
	runner := NewCodexRunner(cfg, fake)

	result, err := runner.Generate(context.Background(), &domain.GenerateRequest{Prompt: "p"})

	require.Error(t, err)
	assert.Nil(t, result)
	require.ErrorIs(t, err, apperrors.ErrCodexInvocation)
	assert.Contains(t, err.Error(), "rate limit retries exhausted")
	assert.Len(t, fake.Commands, 2)
	assert.Equal(t, []time.Duration{30 * time.Second}, *waits)
}

func TestCodexRunner_Generate_NonRetryableFailure(t *testing.T) {
	clearResolutionEnv(t)

	fake := &fakeProcRunner{
		StderrData: []byte("model refused the request"),
		Err:        apperrors.Wrap(apperrors.ErrCommandFailed, "codex: exit code 2"),
	}
	runner := NewCodexRunner(&config.AIConfig{Binary: "/opt/fake/codex", MaxAttempts: 3}, fake)

	result, err := runner.Generate(context.Background(), &domain.GenerateRequest{Prompt: "p"})

	require.Error(t, err)
	assert.Nil(t, result)
	require.ErrorIs(t, err, apperrors.ErrCodexInvocation)
	require.ErrorIs(t, err, apperrors.ErrCommandFailed)
	assert.Len(t, fake.Commands, 1, "non-rate-limit failures must not be retried")
}

func TestCodexRunner_Generate_TimeoutNotRetried(t *testing.T) {
	clearResolutionEnv(t)

	fake := &fakeProcRunner{
		StdoutData: []byte("partial output"),
		Err:        apperrors.Wrapf(apperrors.ErrCommandTimeout, "codex timed out after %s", 15*time.Minute),
	}
	runner := NewCodexRunner(&config.AIConfig{Binary: "/opt/fake/codex", MaxAttempts: 3}, fake)

	result, err := runner.Generate(context.Background(), &domain.GenerateRequest{Prompt: "p"})

	require.Error(t, err)
	assert.Nil(t, result)
	require.ErrorIs(t, err, apperrors.ErrCommandTimeout)
	require.ErrorIs(t, err, apperrors.ErrCodexInvocation)
	assert.Len(t, fake.Commands, 1, "timeouts must not be retried")
}

func TestCodexRunner_Generate_DraftDecodeFailure(t *testing.T) {
	clearResolutionEnv(t)

	fake := &fakeProcRunner{}
	fake.OnRun = func(_ int, cmd proc.Command) (*proc.Result, error) {
		out := outPathFromArgs(t, cmd.Args)
		if err := os.WriteFile(out, []byte("not json at all"), 0o600); err != nil {
			t.Fatalf("write fixture: %v", err)
		}
		return &proc.Result{}, nil
	}
	runner := NewCodexRunner(&config.AIConfig{Binary: "/opt/fake/codex", MaxAttempts: 3}, fake)

	result, err := runner.Generate(context.Background(), &domain.GenerateRequest{Prompt: "p"})

	require.Error(t, err)
	assert.Nil(t, result)
	require.ErrorIs(t, err, apperrors.ErrDraftDecode)
	require.ErrorIs(t, err, apperrors.ErrCodexInvocation)
	assert.Len(t, fake.Commands, 1)
}

func TestCodexRunner_Generate_MissingOutputFile(t *testing.T) {
	clearResolutionEnv(t)

	fake := &fakeProcRunner{StdoutData: []byte("ran but wrote nothing")}
	runner := NewCodexRunner(&config.AIConfig{Binary: "/opt/fake/codex"}, fake)

	result, err := runner.Generate(context.Background(), &domain.GenerateRequest{Prompt: "p"})

	require.Error(t, err)
	assert.Nil(t, result)
	require.ErrorIs(t, err, apperrors.ErrCodexInvocation)
	assert.Contains(t, err.Error(), "draft output file not written")
}

func TestCodexRunner_Generate_CLINotFound(t *testing.T) {
	clearResolutionEnv(t)
	t.Setenv("PATH", t.TempDir())

	fake := &fakeProcRunner{}
	runner := NewCodexRunner(&config.AIConfig{}, fake)

	result, err := runner.Generate(context.Background(), &domain.GenerateRequest{Prompt: "p"})

	require.Error(t, err)
	assert.Nil(t, result)
	require.ErrorIs(t, err, apperrors.ErrCLINotFound)
	assert.Contains(t, err.Error(), "npm install -g @openai/codex")
	assert.Empty(t, fake.Commands)
}
