// Package backup implements the parallel producer/consumer pipeline that
// walks a source tree, hashes and deduplicates its files against the
// content store, and serializes manifest entries through a single,
// mutex-guarded channel writer.
package backup

import (
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/dustin/go-humanize"
	"github.com/pkg/errors"

	"github.com/kiln-archive/kiln/pkg/archivefs"
	"github.com/kiln-archive/kiln/pkg/channel"
	"github.com/kiln-archive/kiln/pkg/codec"
	"github.com/kiln-archive/kiln/pkg/hash"
	"github.com/kiln-archive/kiln/pkg/logging"
	"github.com/kiln-archive/kiln/pkg/walk"
)

// DefaultWorkerCount is the default size of the worker pool.
const DefaultWorkerCount = 4

// Options configures one Run.
type Options struct {
	SourceDir   string
	Compression codec.Compression
	HashAlgo    hash.Algorithm
	Workers     int
	Logger      *logging.Logger
}

// Stats summarizes one completed run, logged with human-readable byte
// counts once the pipeline finishes.
type Stats struct {
	FilesWritten uint64
	FilesDeduped uint64
	BytesWritten uint64
}

// Run walks options.SourceDir and records every file and directory it finds
// into w, writing any not-yet-seen blob into the archive's content store.
// One producer goroutine enumerates the tree onto a capacity-1 channel;
// options.Workers (default DefaultWorkerCount) worker goroutines consume it
// concurrently, serializing their calls into w through a mutex. Closing the
// channel once the walk finishes wakes every blocked worker at once, the
// idiomatic Go stand-in for broadcasting N shutdown sentinels.
func Run(w *channel.Writer, options Options) (Stats, error) {
	workers := options.Workers
	if workers <= 0 {
		workers = DefaultWorkerCount
	}
	logger := options.Logger

	paths := make(chan string, 1)

	var producerErr error
	go func() {
		defer close(paths)
		walker, err := walk.New(options.SourceDir, true, nil)
		if err != nil {
			producerErr = errors.Wrap(err, "unable to walk source directory")
			return
		}
		for {
			path, ok := walker.Next()
			if !ok {
				break
			}
			paths <- path
		}
	}()

	var (
		writerMu sync.Mutex
		statsMu  sync.Mutex
		stats    Stats
		wg       sync.WaitGroup
	)

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for path := range paths {
				processOne(w, &writerMu, options, path, logger, &statsMu, &stats)
			}
		}()
	}

	wg.Wait()

	if producerErr != nil {
		return stats, producerErr
	}
	if logger != nil {
		logger.Infof("backup complete: %d written, %d deduped, %s", stats.FilesWritten, stats.FilesDeduped, humanize.Bytes(stats.BytesWritten))
	}
	return stats, nil
}

func processOne(w *channel.Writer, writerMu *sync.Mutex, options Options, path string, logger *logging.Logger, statsMu *sync.Mutex, stats *Stats) {
	info, err := os.Lstat(path)
	if err != nil {
		logger.Warn(errors.Wrapf(err, "unable to stat %s", path))
		return
	}

	relative, err := filepath.Rel(options.SourceDir, path)
	if err != nil {
		logger.Warn(errors.Wrapf(err, "unable to relativize %s", path))
		return
	}

	switch {
	case info.Mode().IsRegular():
		processFile(w, writerMu, options, path, relative, logger, statsMu, stats)
	case info.IsDir():
		writerMu.Lock()
		err := w.AddDir(relative)
		writerMu.Unlock()
		if err != nil {
			logger.Warn(errors.Wrapf(err, "unable to record directory %s", relative))
		}
	default:
		logger.Warn(errors.Errorf("skipping %s: not a regular file or directory", path))
	}
}

func processFile(w *channel.Writer, writerMu *sync.Mutex, options Options, path, relative string, logger *logging.Logger, statsMu *sync.Mutex, stats *Stats) {
	f, err := os.Open(path)
	if err != nil {
		logger.Warn(errors.Wrapf(err, "unable to open %s", path))
		return
	}
	sum, err := hash.Stream(options.HashAlgo, f)
	f.Close()
	if err != nil {
		logger.Warn(errors.Wrapf(err, "unable to hash %s", path))
		return
	}

	writerMu.Lock()
	decision, target, err := w.AddFile(relative, sum)
	writerMu.Unlock()
	if err != nil {
		logger.Warn(errors.Wrapf(err, "unable to record %s", relative))
		return
	}

	if decision == channel.AlreadyPresent {
		logger.Debugf("skip file %s %s", sum.ShortString(), relative)
		statsMu.Lock()
		stats.FilesDeduped++
		statsMu.Unlock()
		return
	}

	logger.Debugf("new file %s %s", sum.ShortString(), relative)
	if err := writeBlob(path, target, options.Compression); err != nil {
		logger.Warn(errors.Wrapf(err, "unable to write blob for %s", relative))
		return
	}

	statsMu.Lock()
	stats.FilesWritten++
	if info, statErr := os.Stat(path); statErr == nil {
		stats.BytesWritten += uint64(info.Size())
	}
	statsMu.Unlock()
}

func writeBlob(sourcePath, targetPath string, compression codec.Compression) error {
	return archivefs.PutBlobNoReplace(targetPath, func(w io.Writer) error {
		src, err := os.Open(sourcePath)
		if err != nil {
			return errors.Wrapf(err, "unable to open %s", sourcePath)
		}
		defer src.Close()
		return codec.CompressCopy(w, src, compression)
	})
}
