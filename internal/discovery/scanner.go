// pattern: Imperative Shell

// Package discovery inventories the clones stored under a working directory.
package discovery

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"repomirror/internal/gitcmd"
	"repomirror/internal/location"
	"repomirror/internal/logging"
)

// Scanner discovers mirrors by walking the hash-sharded layout.
type Scanner struct {
	git    *gitcmd.Runner
	remote string
	logger *logging.ScopedLogger
}

// NewScanner creates a scanner that reads each clone's URL from remote.
func NewScanner(git *gitcmd.Runner, remote string, logger *logging.ScopedLogger) *Scanner {
	if remote == "" {
		remote = "origin"
	}
	if logger == nil {
		logger = logging.NopLogger()
	}
	return &Scanner{git: git, remote: remote, logger: logger}
}

// ScanAll walks <wd>/<hash[0:2]>/<hash[2:]>/<hash> and returns one Mirror per
// canonical clone found. Directories that do not fit the layout are skipped.
// A missing working directory yields no mirrors.
func (s *Scanner) ScanAll(ctx context.Context, workingDirectory string) ([]Mirror, error) {
	mirrors := []Mirror{}

	// Paths are compared against location.Resolve, which is absolute.
	abs, err := filepath.Abs(workingDirectory)
	if err != nil {
		return nil, &location.LocationError{Op: "scan", Path: workingDirectory, Err: err}
	}
	workingDirectory = abs

	shards, err := os.ReadDir(workingDirectory)
	if err != nil {
		if os.IsNotExist(err) {
			return mirrors, nil
		}
		return nil, &location.LocationError{Op: "scan", Path: workingDirectory, Err: err}
	}

	for _, shard := range shards {
		if !shard.IsDir() || !isHex(shard.Name(), 2) {
			continue
		}
		shardPath := filepath.Join(workingDirectory, shard.Name())
		roots, err := os.ReadDir(shardPath)
		if err != nil {
			s.logger.Warn("skipping unreadable shard", "path", shardPath, "error", err)
			continue
		}

		for _, root := range roots {
			if !root.IsDir() || !isHex(root.Name(), 30) {
				continue
			}
			hash := shard.Name() + root.Name()
			rootPath := filepath.Join(shardPath, root.Name())
			mirror, ok := s.inspect(ctx, workingDirectory, rootPath, hash)
			if ok {
				mirrors = append(mirrors, mirror)
			}
		}
	}

	return mirrors, nil
}

// inspect reads one root directory. ok is false when it holds no canonical clone.
func (s *Scanner) inspect(ctx context.Context, workingDirectory, rootPath, hash string) (Mirror, bool) {
	entries, err := os.ReadDir(rootPath)
	if err != nil {
		s.logger.Warn("skipping unreadable root", "path", rootPath, "error", err)
		return Mirror{}, false
	}

	mirror := Mirror{Path: filepath.Join(rootPath, hash), Worktrees: []string{}}
	found := false
	for _, entry := range entries {
		if !entry.IsDir() || !isHex(entry.Name(), 32) {
			continue
		}
		if entry.Name() == hash {
			found = true
			continue
		}
		mirror.Worktrees = append(mirror.Worktrees, filepath.Join(rootPath, entry.Name()))
	}
	if !found {
		return Mirror{}, false
	}

	out, err := s.git.Output(ctx, mirror.Path, "config", "--get", "remote."+s.remote+".url")
	if err != nil {
		mirror.Problem = "no " + s.remote + " remote configured"
		return mirror, true
	}
	mirror.URL = strings.TrimSpace(out)

	if bare, err := s.git.Output(ctx, mirror.Path, "rev-parse", "--is-bare-repository"); err == nil {
		mirror.Bare = strings.TrimSpace(bare) == "true"
	}

	if loc, err := location.Resolve(workingDirectory, mirror.URL); err != nil || loc.Path != mirror.Path {
		mirror.Problem = "remote url does not hash to this location"
	}
	return mirror, true
}

func isHex(s string, n int) bool {
	if len(s) != n {
		return false
	}
	for _, c := range s {
		if (c < '0' || c > '9') && (c < 'a' || c > 'f') {
			return false
		}
	}
	return true
}
