package locking

import (
	"os"
	"path/filepath"
	"testing"
)

// TestAcquireRelease verifies the basic acquire/release cycle leaves no lock
// file behind.
func TestAcquireRelease(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lock")

	lock, err := Acquire(path)
	if err != nil {
		t.Fatal("unable to acquire lock:", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatal("lock file not created:", err)
	}
	if err := lock.Release(); err != nil {
		t.Fatal("unable to release lock:", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("expected lock file to be removed after Release")
	}
}

// TestAcquireContentionFailsFast verifies that a second Acquire against an
// already-locked path fails immediately with ErrLocked rather than
// blocking, per the archive's fail-fast locking model.
func TestAcquireContentionFailsFast(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lock")

	first, err := Acquire(path)
	if err != nil {
		t.Fatal("unable to acquire first lock:", err)
	}
	defer first.Release()

	if _, err := Acquire(path); err != ErrLocked {
		t.Errorf("got error %v, expected %v", err, ErrLocked)
	}
}

// TestAcquireAfterRelease verifies that the lock path becomes acquirable
// again once released.
func TestAcquireAfterRelease(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lock")

	first, err := Acquire(path)
	if err != nil {
		t.Fatal("unable to acquire lock:", err)
	}
	if err := first.Release(); err != nil {
		t.Fatal("unable to release lock:", err)
	}

	second, err := Acquire(path)
	if err != nil {
		t.Fatal("expected to reacquire lock after release, got:", err)
	}
	if err := second.Release(); err != nil {
		t.Fatal("unable to release second lock:", err)
	}
}

// TestReleaseToleratesMissingFile verifies that Release does not error if
// the lock file has already been removed out from under it.
func TestReleaseToleratesMissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lock")

	lock, err := Acquire(path)
	if err != nil {
		t.Fatal("unable to acquire lock:", err)
	}
	if err := os.Remove(path); err != nil {
		t.Fatal("unable to remove lock file out of band:", err)
	}
	if err := lock.Release(); err != nil {
		t.Errorf("expected Release to tolerate a missing lock file, got: %v", err)
	}
}
