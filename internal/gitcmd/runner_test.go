package gitcmd

import (
	"context"
	"errors"
	"os/exec"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"

	"repomirror/internal/logging"
)

func TestRunner_PassesBinaryDirAndArgs(t *testing.T) {
	var gotDir, gotName string
	var gotArgs []string
	fake := func(_ context.Context, dir, name string, args ...string) (Result, error) {
		gotDir, gotName, gotArgs = dir, name, args
		return Result{Stdout: "abc123\n"}, nil
	}

	r := NewRunnerWithExecutor("/opt/git/bin/git", fake, nil)
	out, err := r.Output(context.Background(), "/srv/repo", "rev-parse", "--verify", "HEAD")
	if err != nil {
		t.Fatalf("Output() error = %v", err)
	}
	if out != "abc123\n" {
		t.Errorf("Output() = %q", out)
	}
	if gotDir != "/srv/repo" || gotName != "/opt/git/bin/git" {
		t.Errorf("dir=%q name=%q", gotDir, gotName)
	}
	if !reflect.DeepEqual(gotArgs, []string{"rev-parse", "--verify", "HEAD"}) {
		t.Errorf("args = %v", gotArgs)
	}
}

func TestRunner_NonzeroExitIsExitError(t *testing.T) {
	fake := func(context.Context, string, string, ...string) (Result, error) {
		return Result{Stderr: "fatal: repository not found\n", ExitCode: 128}, nil
	}
	lm := logging.NewTestLogManager()
	r := NewRunnerWithExecutor("git", fake, lm.For("gitcmd"))

	res, err := r.Run(context.Background(), "/tmp", "clone", "https://example.com/missing.git", "/tmp/x")
	exitErr, ok := AsExitError(err)
	if !ok {
		t.Fatalf("expected *ExitError, got %v", err)
	}
	if exitErr.Result.ExitCode != 128 || res.ExitCode != 128 {
		t.Errorf("exit code = %d / %d", exitErr.Result.ExitCode, res.ExitCode)
	}
	if !strings.Contains(err.Error(), "fatal: repository not found") {
		t.Errorf("error should carry stderr: %v", err)
	}
	if len(lm.Find("git exited nonzero")) != 1 {
		t.Error("nonzero exit should be logged")
	}
}

func TestRunner_StartFailureIsNotExitError(t *testing.T) {
	boom := errors.New("permission denied")
	fake := func(context.Context, string, string, ...string) (Result, error) {
		return Result{}, boom
	}
	r := NewRunnerWithExecutor("git", fake, nil)

	_, err := r.Run(context.Background(), "/tmp", "status")
	if err == nil {
		t.Fatal("expected error")
	}
	if _, ok := AsExitError(err); ok {
		t.Error("start failure must not be reported as *ExitError")
	}
	if !errors.Is(err, boom) {
		t.Errorf("error should wrap cause: %v", err)
	}
}

func TestDefaultExecutor_ExitCode(t *testing.T) {
	sh, err := exec.LookPath("sh")
	if err != nil {
		t.Skip("sh not available")
	}

	res, err := DefaultExecutor(context.Background(), t.TempDir(), sh, "-c", "echo out; echo err >&2; exit 3")
	if err != nil {
		t.Fatalf("DefaultExecutor() error = %v", err)
	}
	if res.ExitCode != 3 {
		t.Errorf("ExitCode = %d, want 3", res.ExitCode)
	}
	if strings.TrimSpace(res.Stdout) != "out" || strings.TrimSpace(res.Stderr) != "err" {
		t.Errorf("stdout=%q stderr=%q", res.Stdout, res.Stderr)
	}
}

func TestDefaultExecutor_MissingBinary(t *testing.T) {
	_, err := DefaultExecutor(context.Background(), t.TempDir(), filepath.Join(t.TempDir(), "no-such-git"))
	if err == nil {
		t.Fatal("expected error for missing binary")
	}
}

func TestDefaultExecutor_Cancellation(t *testing.T) {
	sh, err := exec.LookPath("sh")
	if err != nil {
		t.Skip("sh not available")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	start := time.Now()
	_, err = DefaultExecutor(ctx, t.TempDir(), sh, "-c", "sleep 10")
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded, got %v", err)
	}
	if time.Since(start) > 5*time.Second {
		t.Errorf("cancellation took too long: %v", time.Since(start))
	}
}
