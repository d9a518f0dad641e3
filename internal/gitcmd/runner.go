// pattern: Imperative Shell

package gitcmd

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"

	"repomirror/internal/logging"
)

// Result is what a finished git process produced.
type Result struct {
	Stdout   string
	Stderr   string
	ExitCode int
}

// ExitError reports a git process that ran and exited nonzero.
// Failures to start the process at all are returned as ordinary errors.
type ExitError struct {
	Dir    string
	Args   []string
	Result Result
}

func (e *ExitError) Error() string {
	msg := fmt.Sprintf("git %s: exit status %d", strings.Join(e.Args, " "), e.Result.ExitCode)
	if stderr := strings.TrimSpace(e.Result.Stderr); stderr != "" {
		msg += ": " + stderr
	}
	return msg
}

// AsExitError reports whether err wraps an *ExitError.
func AsExitError(err error) (*ExitError, bool) {
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr, true
	}
	return nil, false
}

// Executor runs name with args in dir. A nonzero exit must be reported with a
// populated Result and a nil error; only start failures return an error.
type Executor func(ctx context.Context, dir, name string, args ...string) (Result, error)

// Runner invokes a configured git binary.
type Runner struct {
	binary string
	exec   Executor
	logger *logging.ScopedLogger
}

// NewRunner creates a Runner for the git binary at binary.
func NewRunner(binary string, logger *logging.ScopedLogger) *Runner {
	return NewRunnerWithExecutor(binary, DefaultExecutor, logger)
}

// NewRunnerWithExecutor creates a Runner with a custom executor for testing.
func NewRunnerWithExecutor(binary string, exec Executor, logger *logging.ScopedLogger) *Runner {
	if logger == nil {
		logger = logging.NopLogger()
	}
	return &Runner{binary: binary, exec: exec, logger: logger}
}

// Binary returns the git executable path.
func (r *Runner) Binary() string {
	return r.binary
}

// Run executes `git <args...>` in dir. A nonzero exit is returned as *ExitError
// together with the Result.
func (r *Runner) Run(ctx context.Context, dir string, args ...string) (Result, error) {
	start := time.Now()
	res, err := r.exec(ctx, dir, r.binary, args...)
	elapsed := time.Since(start)

	if err != nil {
		r.logger.Error("git failed to run", "args", args, "dir", dir, "error", err)
		return res, fmt.Errorf("running %s %s: %w", r.binary, firstArg(args), err)
	}

	if res.ExitCode != 0 {
		r.logger.Debug("git exited nonzero", "args", args, "dir", dir, "exit_code", res.ExitCode, "duration", elapsed)
		return res, &ExitError{Dir: dir, Args: args, Result: res}
	}

	r.logger.Debug("git finished", "args", args, "dir", dir, "duration", elapsed)
	return res, nil
}

// Output runs git and returns its stdout.
func (r *Runner) Output(ctx context.Context, dir string, args ...string) (string, error) {
	res, err := r.Run(ctx, dir, args...)
	if err != nil {
		return "", err
	}
	return res.Stdout, nil
}

// DefaultExecutor runs commands using os/exec. On context cancellation the
// whole process group is killed so helpers spawned by git (ssh, remote-https)
// do not outlive the call.
func DefaultExecutor(ctx context.Context, dir, name string, args ...string) (Result, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = dir
	cmd.Env = append(os.Environ(), "GIT_TERMINAL_PROMPT=0")
	configureProcessGroup(cmd)
	cmd.WaitDelay = 5 * time.Second

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	res := Result{Stdout: stdout.String(), Stderr: stderr.String()}
	if err == nil {
		return res, nil
	}

	if ctxErr := ctx.Err(); ctxErr != nil {
		res.ExitCode = -1
		return res, ctxErr
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		res.ExitCode = exitErr.ExitCode()
		return res, nil
	}
	return res, err
}

func firstArg(args []string) string {
	if len(args) == 0 {
		return ""
	}
	return args[0]
}
