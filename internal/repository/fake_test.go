package repository

import (
	"context"
	"strings"
	"sync"
	"testing"

	"repomirror/internal/gitcmd"
	"repomirror/internal/location"
	"repomirror/internal/logging"
)

const testURL = "https://example.com/org/project.git"

type gitCall struct {
	dir  string
	args []string
}

func (c gitCall) String() string {
	return strings.Join(c.args, " ")
}

// fakeGit records invocations and answers them from a handler keyed on the
// joined argument list.
type fakeGit struct {
	mu      sync.Mutex
	calls   []gitCall
	handler func(dir string, args []string) gitcmd.Result
}

func (f *fakeGit) exec(_ context.Context, dir, _ string, args ...string) (gitcmd.Result, error) {
	f.mu.Lock()
	f.calls = append(f.calls, gitCall{dir: dir, args: append([]string(nil), args...)})
	f.mu.Unlock()
	if f.handler == nil {
		return gitcmd.Result{}, nil
	}
	return f.handler(dir, args), nil
}

func (f *fakeGit) commands() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.calls))
	for i, c := range f.calls {
		out[i] = c.String()
	}
	return out
}

func newFakeRepo(t *testing.T, fake *fakeGit, opts Options) (*Repository, *logging.TestLogManager) {
	t.Helper()
	loc, err := location.Resolve(t.TempDir(), testURL)
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	lm := logging.NewTestLogManager()
	t.Cleanup(func() {
		if t.Failed() {
			for _, e := range lm.Entries() {
				t.Log(e.String())
			}
		}
	})
	opts.Binary = "git"
	opts.Executor = fake.exec
	opts.Logger = lm.For("repository")
	r, err := New(loc, opts)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return r, lm
}

func ok(stdout string) gitcmd.Result {
	return gitcmd.Result{Stdout: stdout}
}

func fail(code int, stderr string) gitcmd.Result {
	return gitcmd.Result{Stderr: stderr, ExitCode: code}
}
