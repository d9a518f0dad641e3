// pattern: Imperative Shell

package location

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/gobwas/glob"
)

// LocationError reports a failed filesystem operation on a location.
type LocationError struct {
	Op   string
	Path string
	Err  error
}

func (e *LocationError) Error() string {
	return fmt.Sprintf("location %s %s: %v", e.Op, e.Path, e.Err)
}

func (e *LocationError) Unwrap() error {
	return e.Err
}

// Exists reports whether the canonical clone directory exists.
func (l Location) Exists() bool {
	_, err := os.Stat(l.Path)
	return err == nil
}

// PathExists reports whether a path relative to the canonical clone exists.
func (l Location) PathExists(relative string) bool {
	_, err := os.Stat(l.ResolvePath(relative))
	return err == nil
}

// Create makes the canonical clone directory if absent and reports whether
// this call created it. Concurrent callers race safely: exactly one of them
// observes created == true.
func (l Location) Create() (bool, error) {
	if err := os.MkdirAll(l.RootPath, 0o755); err != nil {
		return false, &LocationError{Op: "create", Path: l.RootPath, Err: err}
	}

	err := os.Mkdir(l.Path, 0o755)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, fs.ErrExist) {
		info, statErr := os.Stat(l.Path)
		if statErr == nil && info.IsDir() {
			return false, nil
		}
		return false, &LocationError{Op: "create", Path: l.Path, Err: errors.New("exists and is not a directory")}
	}
	return false, &LocationError{Op: "create", Path: l.Path, Err: err}
}

// Remove deletes RootPath, including the canonical clone and any worktrees,
// then removes the shard directory if nothing else lives in it.
func (l Location) Remove() error {
	if err := os.RemoveAll(l.RootPath); err != nil {
		return &LocationError{Op: "remove", Path: l.RootPath, Err: err}
	}

	shard := l.ShardPath()
	err := os.Remove(shard)
	if err == nil || errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	// Another repository still shards into this directory.
	if entries, readErr := os.ReadDir(shard); readErr == nil && len(entries) > 0 {
		return nil
	}
	return &LocationError{Op: "remove", Path: shard, Err: err}
}

// Search returns the paths under the canonical clone whose slash-separated
// relative path matches pattern. `*` stays within one path segment, `**`
// crosses segments. Results are in lexical walk order.
func (l Location) Search(pattern string) ([]string, error) {
	g, err := glob.Compile(pattern, '/')
	if err != nil {
		return nil, fmt.Errorf("invalid pattern %q: %w", pattern, err)
	}

	var matches []string
	err = filepath.WalkDir(l.Path, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			if path == l.Path && errors.Is(walkErr, fs.ErrNotExist) {
				return fs.SkipAll
			}
			return walkErr
		}
		if path == l.Path {
			return nil
		}
		rel, err := filepath.Rel(l.Path, path)
		if err != nil {
			return err
		}
		if g.Match(filepath.ToSlash(rel)) {
			matches = append(matches, path)
		}
		return nil
	})
	if err != nil {
		return nil, &LocationError{Op: "search", Path: l.Path, Err: err}
	}
	return matches, nil
}
