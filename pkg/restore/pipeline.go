// Package restore implements sequential materialization of one revision's
// items into a destination directory.
package restore

import (
	"os"
	"path/filepath"

	"github.com/pkg/errors"

	"github.com/kiln-archive/kiln/pkg/channel"
	"github.com/kiln-archive/kiln/pkg/codec"
	"github.com/kiln-archive/kiln/pkg/logging"
)

// Options configures one Run.
type Options struct {
	DestinationDir string
	Compression    codec.Compression
	Logger         *logging.Logger
}

// Stats summarizes one completed run.
type Stats struct {
	FilesWritten uint64
	FilesSkipped uint64
	DirsCreated  uint64
}

// Run iterates r to exhaustion, materializing each file item under
// options.DestinationDir and creating a directory for each dir item. A
// destination that already exists is left untouched (logged, not
// overwritten); per-item errors are logged and iteration continues. The
// overall run fails only if r.Err reports a manifest-format error.
func Run(r *channel.Reader, options Options) (Stats, error) {
	var stats Stats
	logger := options.Logger

	for r.Scan() {
		item := r.Item()
		dest := filepath.Join(options.DestinationDir, filepath.FromSlash(item.RelativePath))

		switch item.Kind {
		case channel.ItemKindDir:
			if err := os.MkdirAll(dest, 0o755); err != nil {
				logger.Warn(errors.Wrapf(err, "unable to create directory %s", item.RelativePath))
				continue
			}
			stats.DirsCreated++

		case channel.ItemKindFile:
			wrote, err := restoreFile(r, item, dest, options.Compression)
			if err != nil {
				logger.Warn(err)
				continue
			}
			if wrote {
				stats.FilesWritten++
			} else {
				stats.FilesSkipped++
			}
		}
	}

	if err := r.Err(); err != nil {
		return stats, errors.Wrap(err, "unable to read revision manifest")
	}
	return stats, nil
}

// restoreFile materializes one file item, reporting wrote=false (no error)
// when the destination already existed and was left untouched.
func restoreFile(r *channel.Reader, item channel.Item, dest string, compression codec.Compression) (wrote bool, err error) {
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return false, errors.Wrapf(err, "unable to create parent directory for %s", item.RelativePath)
	}

	if _, statErr := os.Stat(dest); statErr == nil {
		return false, nil // destination exists: skip without error
	} else if !os.IsNotExist(statErr) {
		return false, errors.Wrapf(statErr, "unable to stat %s", dest)
	}

	src, err := os.Open(r.ContentPath(item))
	if err != nil {
		return false, errors.Wrapf(err, "unable to open content for %s", item.RelativePath)
	}
	defer src.Close()

	out, err := os.Create(dest)
	if err != nil {
		return false, errors.Wrapf(err, "unable to create %s", dest)
	}
	if err := codec.DecompressCopy(out, src, compression); err != nil {
		out.Close()
		os.Remove(dest)
		return false, errors.Wrapf(err, "unable to restore %s", item.RelativePath)
	}
	if err := out.Close(); err != nil {
		return false, errors.Wrapf(err, "unable to close %s", dest)
	}
	return true, nil
}
