// pattern: Imperative Shell

package repository

import (
	"context"
	"strings"

	"repomirror/internal/gitcmd"
	"repomirror/internal/refs"
)

// ListBranches returns the remote's branch names in the order git prints them.
func (r *Repository) ListBranches(ctx context.Context) ([]string, error) {
	out, err := r.output(ctx, "ls-remote", r.loc.Path, "ls-remote", "--heads")
	if err != nil {
		return nil, err
	}
	return refs.ParseRefList(out, refs.KindBranch)
}

// ListTags returns the remote's tag names in the order git prints them.
func (r *Repository) ListTags(ctx context.Context) ([]string, error) {
	out, err := r.output(ctx, "ls-remote", r.loc.Path, "ls-remote", "--tags")
	if err != nil {
		return nil, err
	}
	return refs.ParseRefList(out, refs.KindTag)
}

// ListLocalBranches returns the branches that exist in the local clone.
func (r *Repository) ListLocalBranches(ctx context.Context) ([]string, error) {
	out, err := r.output(ctx, "for-each-ref", r.loc.Path, "for-each-ref", "--format=%(refname)", "refs/heads/")
	if err != nil {
		return nil, err
	}
	return refs.ParseRefList(out, refs.KindBranch)
}

// ActiveBranch returns the branch HEAD points at, or "" when HEAD is detached.
func (r *Repository) ActiveBranch(ctx context.Context) (string, error) {
	args := []string{"symbolic-ref", "-q", "HEAD"}
	out, err := r.git.Output(ctx, r.loc.Path, args...)
	if err != nil {
		// -q makes a detached HEAD exit 1 without output.
		if exitErr, ok := gitcmd.AsExitError(err); ok && exitErr.Result.ExitCode == 1 && strings.TrimSpace(exitErr.Result.Stdout) == "" {
			return "", nil
		}
		return "", newRepositoryError("symbolic-ref", args, err)
	}
	if strings.TrimSpace(out) == "" {
		return "", nil
	}
	return refs.BranchName(out)
}
