// pattern: Imperative Shell

package repository

import (
	"context"
	"errors"
	"io/fs"
	"os"

	"repomirror/internal/location"
)

// Worktree is an additional checkout of the canonical clone bound to one branch.
type Worktree struct {
	Path   string `json:"path"`
	Head   string `json:"head"`
	Branch string `json:"branch"`
}

// ListWorktrees returns every worktree git knows about, including the
// canonical clone when it is not bare.
func (r *Repository) ListWorktrees(ctx context.Context) ([]Worktree, error) {
	out, err := r.output(ctx, "worktree list", r.loc.Path, "worktree", "list", "--porcelain")
	if err != nil {
		return nil, err
	}
	return parseWorktreeList(out)
}

// FindWorktree returns the worktree tracking branch, if any.
func (r *Repository) FindWorktree(ctx context.Context, branch string) (Worktree, bool, error) {
	worktrees, err := r.ListWorktrees(ctx)
	if err != nil {
		return Worktree{}, false, err
	}
	for _, wt := range worktrees {
		if wt.Branch == branch {
			return wt, true, nil
		}
	}
	return Worktree{}, false, nil
}

// AddWorktree creates a local branch tracking <remote>/<branch> checked out
// at the branch's deterministic worktree path.
func (r *Repository) AddWorktree(ctx context.Context, branch string) (Worktree, error) {
	if branch == "" {
		return Worktree{}, errors.New("branch name is required")
	}
	path := r.loc.WorktreePath(branch)

	var wt Worktree
	err := r.withLock(ctx, func() error {
		if err := r.run(ctx, "worktree add", r.loc.Path, "worktree", "add", "-b", branch, path, r.opts.Remote+"/"+branch); err != nil {
			return err
		}
		head, err := r.LatestCommit(ctx, path)
		if err != nil {
			return err
		}
		wt = Worktree{Path: path, Head: head, Branch: branch}
		return nil
	})
	if err != nil {
		return Worktree{}, err
	}
	r.logger.Info("worktree added", "branch", branch, "path", path, "head", wt.Head)
	return wt, nil
}

// RemoveWorktree deletes the worktree directory, prunes git's worktree
// bookkeeping and deletes the local branch. The directory must be gone
// before prune, otherwise git keeps the entry.
func (r *Repository) RemoveWorktree(ctx context.Context, branch string) error {
	if branch == "" {
		return errors.New("branch name is required")
	}
	path := r.loc.WorktreePath(branch)

	err := r.withLock(ctx, func() error {
		if err := os.RemoveAll(path); err != nil {
			return &location.LocationError{Op: "remove worktree", Path: path, Err: err}
		}
		if err := r.run(ctx, "worktree prune", r.loc.Path, "worktree", "prune"); err != nil {
			return err
		}
		return r.run(ctx, "branch delete", r.loc.Path, "branch", "-d", branch)
	})
	if err != nil {
		return err
	}
	r.logger.Info("worktree removed", "branch", branch, "path", path)
	return nil
}

// UpdateWorktree pulls upstream changes into the branch's worktree.
func (r *Repository) UpdateWorktree(ctx context.Context, branch string) error {
	path := r.loc.WorktreePath(branch)
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return &location.LocationError{Op: "update worktree", Path: path, Err: err}
		}
		return err
	}
	return r.run(ctx, "pull", path, "pull")
}
