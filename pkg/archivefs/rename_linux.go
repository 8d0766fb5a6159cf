//go:build linux

package archivefs

import (
	"errors"

	"golang.org/x/sys/unix"
)

// renameNoReplace performs an atomic rename that fails rather than
// replacing an existing file at newpath, using the kernel's native
// RENAME_NOREPLACE support.
func renameNoReplace(oldpath, newpath string) error {
	return unix.Renameat2(unix.AT_FDCWD, oldpath, unix.AT_FDCWD, newpath, unix.RENAME_NOREPLACE)
}

func isExist(err error) bool {
	return errors.Is(err, unix.EEXIST)
}
