// Package archivefs provides the archive's low-level filesystem primitives:
// atomic file writes and the content store's create-new-or-rename blob
// placement, both built on a write-to-temporary-file-then-rename pattern,
// adapted here to tolerate a pre-existing blob rather than assuming a
// single writer.
package archivefs

import (
	"io"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// temporaryNamePrefix marks intermediate files so a crash leaves an
// unambiguous artifact behind rather than a file indistinguishable from
// archive content.
const temporaryNamePrefix = ".kiln-temporary-"

func temporaryPath(dir string) string {
	return filepath.Join(dir, temporaryNamePrefix+uuid.New().String())
}

// WriteFileAtomic writes data to path via an intermediate temporary file
// swapped into place with a rename, so a concurrent reader never observes a
// partially written file.
func WriteFileAtomic(path string, data []byte, permissions os.FileMode) error {
	temporary := temporaryPath(filepath.Dir(path))

	f, err := os.OpenFile(temporary, os.O_CREATE|os.O_EXCL|os.O_WRONLY, permissions)
	if err != nil {
		return errors.Wrap(err, "unable to create temporary file")
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		os.Remove(temporary)
		return errors.Wrap(err, "unable to write temporary file")
	}
	if err := f.Close(); err != nil {
		os.Remove(temporary)
		return errors.Wrap(err, "unable to close temporary file")
	}
	if err := os.Rename(temporary, path); err != nil {
		os.Remove(temporary)
		return errors.Wrap(err, "unable to rename temporary file into place")
	}
	return nil
}

// PutBlobNoReplace writes the bytes produced by write to a temporary file
// and renames it into finalPath without replacing an existing file there.
// If finalPath already exists, the rename is skipped and the temporary file
// is discarded: per the content store's dedup invariant, a blob's name is
// the hash of its own plaintext, so a pre-existing file at finalPath is
// necessarily identical content written by a concurrent worker, not a
// conflict to resolve.
func PutBlobNoReplace(finalPath string, write func(io.Writer) error) error {
	temporary := temporaryPath(filepath.Dir(finalPath))

	f, err := os.OpenFile(temporary, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o600)
	if err != nil {
		return errors.Wrap(err, "unable to create temporary blob file")
	}
	if err := write(f); err != nil {
		f.Close()
		os.Remove(temporary)
		return err
	}
	if err := f.Close(); err != nil {
		os.Remove(temporary)
		return errors.Wrap(err, "unable to close temporary blob file")
	}

	if err := renameNoReplace(temporary, finalPath); err != nil {
		os.Remove(temporary)
		if isExist(err) {
			return nil
		}
		return errors.Wrap(err, "unable to rename blob into place")
	}
	return nil
}
