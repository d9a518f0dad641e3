// pattern: Imperative Shell

// Package repository manages the lifecycle of a local clone at a resolved
// location: readiness, clone with rollback, synchronization, reference
// enumeration and branch-bound worktrees.
package repository

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"repomirror/internal/gitcmd"
	"repomirror/internal/location"
	"repomirror/internal/lock"
	"repomirror/internal/logging"
)

// DefaultRemote is the remote new worktrees track when Options.Remote is empty.
const DefaultRemote = "origin"

// Options configures a Repository.
type Options struct {
	Binary    string // git executable, required
	Bare      bool
	AutoClone bool
	Remote    string

	// Lock serializes mutating operations across processes with an
	// advisory lock keyed by the resolved location.
	Lock           bool
	LockTimeout    time.Duration
	LockRetryDelay time.Duration

	Logger   *logging.ScopedLogger
	Executor gitcmd.Executor // nil uses gitcmd.DefaultExecutor
}

// Repository owns one location. It is not safe for concurrent use; callers
// drive operations sequentially.
type Repository struct {
	loc    location.Location
	git    *gitcmd.Runner
	opts   Options
	logger *logging.ScopedLogger
}

// Setup resolves the location for url under workingDirectory and returns its
// Repository, cloning first when opts.AutoClone is set.
func Setup(ctx context.Context, workingDirectory, url string, opts Options) (*Repository, error) {
	loc, err := location.Resolve(workingDirectory, url)
	if err != nil {
		return nil, err
	}
	r, err := New(loc, opts)
	if err != nil {
		return nil, err
	}
	if opts.AutoClone {
		if err := r.EnsureCloned(ctx); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// New creates a Repository for an already resolved location.
func New(loc location.Location, opts Options) (*Repository, error) {
	if opts.Binary == "" {
		return nil, errors.New("git binary path is required")
	}
	if opts.Remote == "" {
		opts.Remote = DefaultRemote
	}
	logger := opts.Logger
	if logger == nil {
		logger = logging.NopLogger()
	}
	logger = logger.With("url", loc.URL)

	exec := opts.Executor
	if exec == nil {
		exec = gitcmd.DefaultExecutor
	}

	return &Repository{
		loc:    loc,
		git:    gitcmd.NewRunnerWithExecutor(opts.Binary, exec, logger),
		opts:   opts,
		logger: logger,
	}, nil
}

// Location returns the resolved layout.
func (r *Repository) Location() location.Location {
	return r.loc
}

// Bare reports whether the canonical clone is bare.
func (r *Repository) Bare() bool {
	return r.opts.Bare
}

// Ready reports whether the location holds a usable clone. A missing
// location is never ready. Non-bare clones need a .git entry; bare clones
// must answer `rev-parse --is-bare-repository` with true, which also keeps an
// empty directory nested in some other checkout from counting as ready.
func (r *Repository) Ready(ctx context.Context) (bool, error) {
	if !r.loc.Exists() {
		return false, nil
	}
	if !r.opts.Bare {
		return r.loc.PathExists(".git"), nil
	}

	out, err := r.git.Output(ctx, r.loc.Path, "rev-parse", "--is-bare-repository")
	if err != nil {
		if _, ok := gitcmd.AsExitError(err); ok {
			return false, nil
		}
		return false, err
	}
	return strings.TrimSpace(out) == "true", nil
}

// State reports StateReady or StateUnready for the location as it is on disk.
func (r *Repository) State(ctx context.Context) (State, error) {
	ready, err := r.Ready(ctx)
	if err != nil {
		return StateUnready, err
	}
	if ready {
		return StateReady, nil
	}
	return StateUnready, nil
}

// cloneTarget is the outcome of preparing the clone directory. created
// records whether this attempt made the directory, which bounds rollback.
type cloneTarget struct {
	path    string
	created bool
}

// EnsureCloned clones the repository unless the location is already ready.
// When the clone fails, the directory is removed only if this call created it.
func (r *Repository) EnsureCloned(ctx context.Context) error {
	ready, err := r.Ready(ctx)
	if err != nil || ready {
		return err
	}

	return r.withLock(ctx, func() error {
		// Another process may have finished cloning while we waited.
		if ready, err := r.Ready(ctx); err != nil || ready {
			return err
		}

		r.transition(StateUnready, StateCreating)
		target, err := r.prepareTarget()
		if err != nil {
			return err
		}
		r.transition(StateCreating, StateCloning)
		return r.clone(ctx, target)
	})
}

func (r *Repository) prepareTarget() (cloneTarget, error) {
	created, err := r.loc.Create()
	if err != nil {
		return cloneTarget{}, err
	}
	return cloneTarget{path: r.loc.Path, created: created}, nil
}

func (r *Repository) clone(ctx context.Context, target cloneTarget) error {
	args := []string{"clone"}
	if r.opts.Bare {
		args = append(args, "--bare")
	}
	args = append(args, r.loc.URL, target.path)

	if _, err := r.git.Run(ctx, target.path, args...); err != nil {
		r.transition(StateCloning, StateFailed)
		repoErr := newRepositoryError("clone", args, err)
		if target.created {
			if rmErr := r.loc.Remove(); rmErr != nil {
				r.logger.Error("rollback after failed clone", "path", target.path, "error", rmErr)
				repoErr.Err = errors.Join(err, rmErr)
			} else {
				r.logger.Info("rolled back clone directory", "path", target.path)
			}
		} else {
			r.logger.Info("keeping pre-existing clone directory", "path", target.path)
		}
		r.transition(StateFailed, StateUnready)
		return repoErr
	}

	r.transition(StateCloning, StateReady)
	return nil
}

// Update pulls upstream changes into the canonical clone.
func (r *Repository) Update(ctx context.Context) error {
	return r.withLock(ctx, func() error {
		return r.run(ctx, "pull", r.loc.Path, "pull")
	})
}

// UpdateTo checks out reference (branch, tag or commit) and then pulls.
// A pull failure after a successful checkout is returned as is; the
// checkout is not undone.
func (r *Repository) UpdateTo(ctx context.Context, reference string) error {
	return r.withLock(ctx, func() error {
		if err := r.run(ctx, "checkout", r.loc.Path, "checkout", reference); err != nil {
			return err
		}
		return r.run(ctx, "pull", r.loc.Path, "pull")
	})
}

// Export writes the tracked files, without git metadata, below destination.
func (r *Repository) Export(ctx context.Context, destination string) error {
	prefix, err := exportPrefix(destination)
	if err != nil {
		return err
	}
	return r.run(ctx, "export", r.loc.Path, "checkout-index", "-a", "-f", "--prefix="+prefix)
}

// exportPrefix makes destination absolute, since git resolves --prefix
// against the repository, and guarantees exactly one trailing separator so
// git treats it as a directory.
func exportPrefix(destination string) (string, error) {
	if destination == "" {
		return "", errors.New("export destination is required")
	}
	abs, err := filepath.Abs(destination)
	if err != nil {
		return "", fmt.Errorf("resolving export destination: %w", err)
	}
	sep := string(filepath.Separator)
	if !strings.HasSuffix(abs, sep) {
		abs += sep
	}
	return abs, nil
}

// Clean discards local changes with a hard reset to HEAD. With thorough it
// deletes the whole location instead, leaving the repository unready.
func (r *Repository) Clean(ctx context.Context, thorough bool) error {
	if !thorough {
		return r.withLock(ctx, func() error {
			return r.run(ctx, "reset", r.loc.Path, "reset", "--hard", "HEAD")
		})
	}
	return r.withLock(ctx, func() error {
		if err := r.loc.Remove(); err != nil {
			return err
		}
		r.transition(StateReady, StateUnready)
		return nil
	})
}

// LatestCommit resolves HEAD to a commit id. An empty cwd means the
// canonical clone; pass a worktree path to inspect that worktree instead.
func (r *Repository) LatestCommit(ctx context.Context, cwd string) (string, error) {
	if cwd == "" {
		cwd = r.loc.Path
	}
	out, err := r.output(ctx, "rev-parse", cwd, "rev-parse", "--verify", "HEAD")
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(out), nil
}

// ResolvePath returns the absolute path for a path relative to the clone.
func (r *Repository) ResolvePath(relative string) string {
	return r.loc.ResolvePath(relative)
}

// PathExists reports whether a path relative to the clone exists.
func (r *Repository) PathExists(relative string) bool {
	return r.loc.PathExists(relative)
}

// Search returns paths under the clone matching a glob pattern.
func (r *Repository) Search(pattern string) ([]string, error) {
	return r.loc.Search(pattern)
}

func (r *Repository) run(ctx context.Context, op, dir string, args ...string) error {
	_, err := r.output(ctx, op, dir, args...)
	return err
}

func (r *Repository) output(ctx context.Context, op, dir string, args ...string) (string, error) {
	out, err := r.git.Output(ctx, dir, args...)
	if err != nil {
		return "", newRepositoryError(op, args, err)
	}
	return out, nil
}

func (r *Repository) transition(from, to State) {
	if to == StateFailed {
		r.logger.Warn("repository state", "from", from.String(), "to", to.String(), "path", r.loc.Path)
		return
	}
	r.logger.Info("repository state", "from", from.String(), "to", to.String(), "path", r.loc.Path)
}

// withLock runs fn while holding the location's advisory lock when locking
// is enabled. Calls must not nest: the lock is not reentrant.
func (r *Repository) withLock(ctx context.Context, fn func() error) error {
	if !r.opts.Lock {
		return fn()
	}

	lockCtx := ctx
	if r.opts.LockTimeout > 0 {
		var cancel context.CancelFunc
		lockCtx, cancel = context.WithTimeout(ctx, r.opts.LockTimeout)
		defer cancel()
	}

	l, err := lock.Acquire(lockCtx, r.loc.LockPath(), r.opts.LockRetryDelay)
	if err != nil {
		return err
	}
	defer func() {
		if err := l.Release(); err != nil {
			r.logger.Warn("releasing location lock", "path", l.Path(), "error", err)
		}
	}()
	r.logger.Debug("location lock held", "path", l.Path())
	return fn()
}
