// pattern: Functional Core

// Package location maps a repository URL to its on-disk layout under a
// working directory:
//
//	<workdir>/<hash[0:2]>/<hash[2:]>/             root, shared by clone and worktrees
//	<workdir>/<hash[0:2]>/<hash[2:]>/<hash>/      canonical clone
//	<workdir>/<hash[0:2]>/<hash[2:]>/<md5(branch)>/ worktree per branch
//
// where hash is the hex MD5 of the URL bytes. URLs are hashed verbatim.
package location

import (
	"crypto/md5"
	"encoding/hex"
	"errors"
	"fmt"
	"path/filepath"
)

const lockDirName = ".locks"

// Location is the resolved layout for one repository URL.
// All fields are derived from WorkingDirectory and URL and never change.
type Location struct {
	WorkingDirectory string
	URL              string
	RootPath         string
	Path             string
	hash             string
}

// Hash returns the hex MD5 digest of s. Used for bucketing only.
func Hash(s string) string {
	sum := md5.Sum([]byte(s))
	return hex.EncodeToString(sum[:])
}

// Resolve computes the location for url under workingDirectory without touching
// the filesystem. A relative workingDirectory is made absolute against the
// process's current directory.
func Resolve(workingDirectory, url string) (Location, error) {
	if workingDirectory == "" {
		return Location{}, errors.New("working directory is required")
	}
	if url == "" {
		return Location{}, errors.New("repository url is required")
	}

	// git runs with its cwd inside the clone, so every derived path must
	// stay valid from there.
	abs, err := filepath.Abs(workingDirectory)
	if err != nil {
		return Location{}, fmt.Errorf("resolving working directory %q: %w", workingDirectory, err)
	}

	h := Hash(url)
	root := filepath.Join(abs, h[:2], h[2:])
	return Location{
		WorkingDirectory: abs,
		URL:              url,
		RootPath:         root,
		Path:             filepath.Join(root, h),
		hash:             h,
	}, nil
}

// URLHash returns the full hash of the location's URL.
func (l Location) URLHash() string {
	return l.hash
}

// ShardPath is the first-level bucket directory holding RootPath.
func (l Location) ShardPath() string {
	return filepath.Dir(l.RootPath)
}

// WorktreePath returns the directory for the worktree of branch.
func (l Location) WorktreePath(branch string) string {
	return filepath.Join(l.RootPath, Hash(branch))
}

// ResolvePath returns the absolute form of a path relative to the canonical clone.
func (l Location) ResolvePath(relative string) string {
	return filepath.Join(l.Path, relative)
}

// LockPath is the advisory lock file for this location. It lives outside
// RootPath so removing the location never deletes a held lock.
func (l Location) LockPath() string {
	return filepath.Join(l.WorkingDirectory, lockDirName, l.hash+".lock")
}
