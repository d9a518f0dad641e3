// pattern: Imperative Shell

// Package lock provides advisory, cross-process file locks keyed by path.
package lock

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
)

// DefaultRetryDelay is how often Acquire polls a contended lock.
const DefaultRetryDelay = 100 * time.Millisecond

// ErrLocked is returned by TryAcquire when another process holds the lock.
var ErrLocked = errors.New("lock is held by another process")

// Lock is a held advisory lock.
type Lock struct {
	fl *flock.Flock
}

// TryAcquire takes the lock at path without waiting.
func TryAcquire(path string) (*Lock, error) {
	fl, err := newFlock(path)
	if err != nil {
		return nil, err
	}
	locked, err := fl.TryLock()
	if err != nil {
		return nil, fmt.Errorf("failed to acquire lock %s: %w", path, err)
	}
	if !locked {
		return nil, fmt.Errorf("%s: %w", path, ErrLocked)
	}
	return &Lock{fl: fl}, nil
}

// Acquire waits for the lock at path until ctx is done, polling every retryDelay.
func Acquire(ctx context.Context, path string, retryDelay time.Duration) (*Lock, error) {
	if retryDelay <= 0 {
		retryDelay = DefaultRetryDelay
	}
	fl, err := newFlock(path)
	if err != nil {
		return nil, err
	}
	locked, err := fl.TryLockContext(ctx, retryDelay)
	if err != nil {
		return nil, fmt.Errorf("failed to acquire lock %s: %w", path, err)
	}
	if !locked {
		return nil, fmt.Errorf("%s: %w", path, ErrLocked)
	}
	return &Lock{fl: fl}, nil
}

// Path returns the lock file path.
func (l *Lock) Path() string {
	return l.fl.Path()
}

// Release drops the lock. The lock file itself is left in place so other
// processes waiting on it keep a stable inode.
func (l *Lock) Release() error {
	if l == nil || l.fl == nil {
		return nil
	}
	return l.fl.Unlock()
}

func newFlock(path string) (*flock.Flock, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("creating lock directory: %w", err)
	}
	return flock.New(path), nil
}
