package channel

import (
	"io"
	"os"

	"github.com/kiln-archive/kiln/pkg/hash"
	"github.com/kiln-archive/kiln/pkg/manifest"
)

// Writer appends revision manifest entries for one backup run. Its own
// point of view is single-producer; concurrent callers must serialize
// access externally (the backup pipeline does this with a mutex around the
// channel writer).
type Writer struct {
	m          *manifest.Writer
	contentDir string
}

// NewWriter constructs a Writer over the revision file's underlying stream.
// contentDir is the archive's content store directory, used by AddFile to
// resolve a file's target blob path.
func NewWriter(w io.Writer, algorithm hash.Algorithm, contentDir string) *Writer {
	return &Writer{m: manifest.NewWriter(w, algorithm), contentDir: contentDir}
}

// AddFile appends a file group (`file:<relativePath>` then `hash:<hex>` one
// level deeper) and reports whether the caller must still write the blob:
// if a file already exists at the content store's target path for this
// hash, the decision is AlreadyPresent and targetPath is returned only for
// reference; otherwise it is NeedBlob and targetPath is where the caller
// must place the blob.
func (w *Writer) AddFile(relativePath string, h hash.Result) (decision Decision, targetPath string, err error) {
	if err := w.m.AddEntry(keyFile, relativePath); err != nil {
		return 0, "", err
	}
	w.m.IncreaseDepth()
	if err := w.m.AddEntry(keyHash, h.String()); err != nil {
		w.m.DecreaseDepth()
		return 0, "", err
	}
	w.m.DecreaseDepth()

	targetPath = blobPath(w.contentDir, h.String())
	if _, statErr := os.Stat(targetPath); statErr == nil {
		return AlreadyPresent, targetPath, nil
	}
	return NeedBlob, targetPath, nil
}

// AddDir appends a `dir:<relativePath>` entry recording a directory, empty
// or not, so that it is recreated on restore even when no file lies in it.
func (w *Writer) AddDir(relativePath string) error {
	return w.m.AddEntry(keyDir, relativePath)
}

// Close emits the manifest's integrity trailer.
func (w *Writer) Close() error {
	return w.m.Close()
}
