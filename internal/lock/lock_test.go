package lock

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"
)

func TestTryAcquireAndRelease(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".locks", "abc.lock")

	l, err := TryAcquire(path)
	if err != nil {
		t.Fatalf("TryAcquire() failed: %v", err)
	}
	if l.Path() != path {
		t.Errorf("Path() = %q, want %q", l.Path(), path)
	}

	// A second handle on the same file must see the lock as held.
	if _, err := TryAcquire(path); !errors.Is(err, ErrLocked) {
		t.Fatalf("second TryAcquire() error = %v, want ErrLocked", err)
	}

	if err := l.Release(); err != nil {
		t.Fatalf("Release() failed: %v", err)
	}

	l2, err := TryAcquire(path)
	if err != nil {
		t.Fatalf("TryAcquire() after Release should succeed: %v", err)
	}
	_ = l2.Release()
}

func TestAcquire_WaitsForRelease(t *testing.T) {
	path := filepath.Join(t.TempDir(), "wait.lock")

	held, err := TryAcquire(path)
	if err != nil {
		t.Fatal(err)
	}
	go func() {
		time.Sleep(150 * time.Millisecond)
		_ = held.Release()
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	l, err := Acquire(ctx, path, 20*time.Millisecond)
	if err != nil {
		t.Fatalf("Acquire() failed: %v", err)
	}
	_ = l.Release()
}

func TestAcquire_ContextCancelled(t *testing.T) {
	path := filepath.Join(t.TempDir(), "busy.lock")

	held, err := TryAcquire(path)
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = held.Release() }()

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	if _, err := Acquire(ctx, path, 10*time.Millisecond); err == nil {
		t.Fatal("Acquire() should fail when the context expires")
	}
}

func TestRelease_Nil(t *testing.T) {
	var l *Lock
	if err := l.Release(); err != nil {
		t.Errorf("Release() on nil lock = %v", err)
	}
}
