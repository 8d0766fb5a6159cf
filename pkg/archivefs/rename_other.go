//go:build !linux

package archivefs

import "os"

// renameNoReplace approximates RENAME_NOREPLACE on platforms without a
// native no-replace rename syscall available through golang.org/x/sys. The
// existence check and the rename are not atomic with each other, but the
// only consequence of losing the race is an overwrite of one blob with
// identical bytes (same content hash), which is harmless.
func renameNoReplace(oldpath, newpath string) error {
	if _, err := os.Stat(newpath); err == nil {
		return os.ErrExist
	} else if !os.IsNotExist(err) {
		return err
	}
	return os.Rename(oldpath, newpath)
}

func isExist(err error) bool {
	return os.IsExist(err)
}
