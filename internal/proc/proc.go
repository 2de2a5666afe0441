package proc

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/votewire/autopost/internal/ctxutil"
	apperrors "github.com/votewire/autopost/internal/errors"
)

// killWaitDelay bounds how long Wait blocks on inherited pipes after the
// process tree has been killed.
const killWaitDelay = 5 * time.Second

// Command describes a single external process invocation.
type Command struct {
	// Name is the binary name or path. Resolution follows exec.LookPath
	// semantics when Name carries no path separator.
	Name string

	// Args are passed verbatim to the process.
	Args []string

	// Stdin is piped to the process when non-empty.
	Stdin string

	// Env holds KEY=VALUE pairs appended to the inherited environment.
	Env []string

	// Dir is the working directory. The parent's is inherited when empty.
	Dir string

	// Timeout is the hard deadline for the process tree. Zero means no
	// per-command deadline; the context still applies.
	Timeout time.Duration
}

// Result captures the observable outcome of a finished process. Stdout and
// Stderr are populated even when the process failed or was killed so callers
// can surface partial output. ExitCode is -1 when the process died from a
// signal or never started.
type Result struct {
	Stdout   []byte
	Stderr   []byte
	ExitCode int
	Duration time.Duration
}

// Runner executes external commands. Implementations must honor the command
// timeout and context cancellation.
type Runner interface {
	// Run executes the command and waits for it to finish. A non-nil Result
	// is returned alongside the error whenever the process produced output.
	Run(ctx context.Context, command Command) (*Result, error)
}

// ExecRunner implements Runner using os/exec. Each child is placed in its
// own process group so a timeout kill reaches descendants spawned by CLI
// wrappers.
type ExecRunner struct{}

// NewExecRunner returns a Runner backed by os/exec.
func NewExecRunner() *ExecRunner {
	return &ExecRunner{}
}

// Run executes the command. A cancellation of the parent context is returned
// as-is; expiry of the per-command timeout is reported as ErrCommandTimeout.
// A non-zero exit or a failure to start is reported as ErrCommandFailed.
func (r *ExecRunner) Run(ctx context.Context, command Command) (*Result, error) {
	if err := ctxutil.Canceled(ctx); err != nil {
		return nil, err
	}
	if strings.TrimSpace(command.Name) == "" {
		return nil, apperrors.Wrap(apperrors.ErrInvalidArgument, "command name is empty")
	}

	runCtx := ctx
	if command.Timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, command.Timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(runCtx, command.Name, command.Args...) //#nosec G204 -- name and args come from local configuration, not remote input
	if command.Dir != "" {
		cmd.Dir = command.Dir
	}
	if command.Stdin != "" {
		cmd.Stdin = strings.NewReader(command.Stdin)
	}
	if len(command.Env) > 0 {
		cmd.Env = append(os.Environ(), command.Env...)
	}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	isolateProcessGroup(cmd)
	cmd.Cancel = func() error { return killProcessTree(cmd) }
	cmd.WaitDelay = killWaitDelay

	start := time.Now()
	runErr := cmd.Run()

	result := &Result{
		Stdout:   stdout.Bytes(),
		Stderr:   stderr.Bytes(),
		ExitCode: exitCode(cmd, runErr),
		Duration: time.Since(start),
	}

	switch {
	case runErr == nil:
		return result, nil
	case ctx.Err() != nil:
		return result, ctx.Err()
	case errors.Is(runCtx.Err(), context.DeadlineExceeded):
		return result, apperrors.Wrapf(apperrors.ErrCommandTimeout, "%s timed out after %s", command.Name, command.Timeout)
	default:
		return result, apperrors.Wrapf(apperrors.ErrCommandFailed, "%s: %s", command.Name, failureDetail(runErr, result))
	}
}

// exitCode extracts the process exit code from a finished command.
func exitCode(cmd *exec.Cmd, runErr error) int {
	if runErr == nil {
		if cmd.ProcessState != nil {
			return cmd.ProcessState.ExitCode()
		}
		return 0
	}
	var exitErr *exec.ExitError
	if errors.As(runErr, &exitErr) {
		return exitErr.ExitCode()
	}
	return -1
}

// failureDetail renders a one-line description of a failed run. Stderr is
// preferred over the raw error text because CLI tools report the actionable
// message there.
func failureDetail(runErr error, result *Result) string {
	var exitErr *exec.ExitError
	if errors.As(runErr, &exitErr) {
		if line := firstLine(result.Stderr); line != "" {
			return fmt.Sprintf("exit code %d: %s", result.ExitCode, line)
		}
		return fmt.Sprintf("exit code %d", result.ExitCode)
	}
	return runErr.Error()
}

// firstLine returns the first non-blank trimmed line of b.
func firstLine(b []byte) string {
	for _, line := range strings.Split(string(b), "\n") {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			return trimmed
		}
	}
	return ""
}

// Ensure ExecRunner implements Runner.
var _ Runner = (*ExecRunner)(nil)
