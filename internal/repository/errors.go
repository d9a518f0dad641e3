// pattern: Functional Core

package repository

import (
	"fmt"
	"strings"

	"repomirror/internal/gitcmd"
)

// RepositoryError reports a git subcommand that failed during a repository
// operation. Stderr carries git's diagnostic output verbatim.
type RepositoryError struct {
	Op     string
	Args   []string
	Stderr string
	Err    error
}

func (e *RepositoryError) Error() string {
	if msg := strings.TrimSpace(e.Stderr); msg != "" {
		return fmt.Sprintf("%s failed: %s", e.Op, msg)
	}
	return fmt.Sprintf("%s failed: %v", e.Op, e.Err)
}

func (e *RepositoryError) Unwrap() error {
	return e.Err
}

// ExitCode returns git's exit status, or -1 if git never ran.
func (e *RepositoryError) ExitCode() int {
	if exitErr, ok := gitcmd.AsExitError(e.Err); ok {
		return exitErr.Result.ExitCode
	}
	return -1
}

func newRepositoryError(op string, args []string, err error) *RepositoryError {
	re := &RepositoryError{Op: op, Args: args, Err: err}
	if exitErr, ok := gitcmd.AsExitError(err); ok {
		re.Stderr = exitErr.Result.Stderr
	}
	return re
}
