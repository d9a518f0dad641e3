// pattern: Imperative Shell
package cli

import (
	"context"
	"encoding/json"
	"io"
	"os"

	"repomirror/internal/config"
	"repomirror/internal/discovery"
	"repomirror/internal/gitcmd"
	"repomirror/internal/location"
	"repomirror/internal/logging"
	"repomirror/internal/repository"
)

// Env carries what every command needs to open a repository and report results.
type Env struct {
	Config config.Config

	// GitBinary is the resolved git executable.
	GitBinary string

	Logs logging.LoggerProvider

	// Stdout receives JSON results. Defaults to os.Stdout.
	Stdout io.Writer

	// Executor overrides how git is run. Nil runs the real binary.
	Executor gitcmd.Executor
}

// Resolve computes the location for url without touching disk.
func (e *Env) Resolve(url string) (location.Location, error) {
	return location.Resolve(e.Config.WorkingDirectory, url)
}

// Open returns the repository for url. With clone set, and auto_clone
// enabled in the configuration, a missing clone is created first.
func (e *Env) Open(ctx context.Context, url string, clone bool) (*repository.Repository, error) {
	var logger *logging.ScopedLogger
	if e.Logs != nil {
		logger = e.Logs.For("repository")
	}
	return repository.Setup(ctx, e.Config.WorkingDirectory, url, repository.Options{
		Binary:      e.GitBinary,
		Bare:        e.Config.Bare,
		AutoClone:   clone && e.Config.AutoClone,
		Remote:      e.Config.Remote,
		Lock:        e.Config.Lock,
		LockTimeout: e.Config.LockTimeout,
		Logger:      logger,
		Executor:    e.Executor,
	})
}

// Scanner returns a discovery scanner sharing the git configuration.
func (e *Env) Scanner() *discovery.Scanner {
	exec := e.Executor
	if exec == nil {
		exec = gitcmd.DefaultExecutor
	}
	var logger *logging.ScopedLogger
	if e.Logs != nil {
		logger = e.Logs.For("discovery")
	}
	return discovery.NewScanner(gitcmd.NewRunnerWithExecutor(e.GitBinary, exec, logger), e.Config.Remote, logger)
}

// PrintJSON writes v as JSON to Stdout, indented when Stdout is a terminal.
func (e *Env) PrintJSON(v any) error {
	w := e.Stdout
	if w == nil {
		w = os.Stdout
	}

	encoder := json.NewEncoder(w)
	if isTerminal(w) {
		encoder.SetIndent("", "  ")
	}
	return encoder.Encode(v)
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	fi, err := f.Stat()
	if err != nil {
		return false
	}
	return fi.Mode()&os.ModeCharDevice != 0
}
