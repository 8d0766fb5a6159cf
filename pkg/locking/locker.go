// Package locking provides the archive's exclusive lock, built on atomic
// create-new-file semantics rather than advisory flock: a second
// concurrent Acquire must fail immediately rather than block, since the
// archive tolerates no concurrent writers at all.
package locking

import (
	"os"

	"github.com/pkg/errors"
)

// ErrLocked is returned by Acquire when the lock file already exists.
var ErrLocked = errors.New("archive locked")

// Lock represents an acquired exclusive lock on an archive. Release must be
// called exactly once; it is safe to call even if the underlying file has
// already been removed out from under it (e.g. by manual recovery), in
// which case the caller is expected to log the error rather than fail.
type Lock struct {
	path string
}

// Acquire atomically creates the lock file at path, failing with ErrLocked
// if it already exists.
func Acquire(path string) (*Lock, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o600)
	if err != nil {
		if os.IsExist(err) {
			return nil, ErrLocked
		}
		return nil, errors.Wrap(err, "unable to create lock file")
	}
	if err := f.Close(); err != nil {
		return nil, errors.Wrap(err, "unable to close lock file")
	}
	return &Lock{path: path}, nil
}

// Release removes the lock file. Any error is returned to the caller, who
// is expected to log it rather than fail; Release never panics.
func (l *Lock) Release() error {
	if err := os.Remove(l.path); err != nil && !os.IsNotExist(err) {
		return errors.Wrap(err, "unable to remove lock file")
	}
	return nil
}
