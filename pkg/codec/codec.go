// Package codec streams bytes between a source and a sink through the
// archive's configured compression, for writing and reading content blobs.
package codec

import (
	"io"

	"github.com/dsnet/compress/bzip2"
	"github.com/pkg/errors"
)

// bufferSize is the I/O buffer size used for both compressed and
// uncompressed copies.
const bufferSize = 1 << 20

// bzip2WriterLevel clamps a 0..=9 archive-level compression level into the
// range the underlying encoder accepts (1..=9); level 0 ("no compression,
// but still bzip2-framed") maps to the encoder's fastest setting since
// dsnet/compress/bzip2 has no notion of a level-0 passthrough.
func bzip2WriterLevel(level int) int {
	if level < 1 {
		return 1
	}
	return level
}

// CompressCopy moves all bytes from src to dst through the compression
// scheme named by c.
func CompressCopy(dst io.Writer, src io.Reader, c Compression) error {
	switch c.Kind {
	case KindNone:
		if _, err := io.CopyBuffer(dst, src, make([]byte, bufferSize)); err != nil {
			return errors.Wrap(err, "unable to copy content")
		}
		return nil
	case KindBzip2:
		w, err := bzip2.NewWriter(dst, &bzip2.WriterConfig{Level: bzip2WriterLevel(c.Level)})
		if err != nil {
			return errors.Wrap(err, "unable to create bzip2 encoder")
		}
		if _, err := io.CopyBuffer(w, src, make([]byte, bufferSize)); err != nil {
			w.Close()
			return errors.Wrap(err, "unable to compress content")
		}
		if err := w.Close(); err != nil {
			return errors.Wrap(err, "unable to finalize bzip2 stream")
		}
		return nil
	default:
		return errors.Errorf("unsupported compression kind %q", c.Kind)
	}
}

// DecompressCopy moves all bytes from src to dst, reversing the compression
// scheme named by c.
func DecompressCopy(dst io.Writer, src io.Reader, c Compression) error {
	switch c.Kind {
	case KindNone:
		if _, err := io.CopyBuffer(dst, src, make([]byte, bufferSize)); err != nil {
			return errors.Wrap(err, "unable to copy content")
		}
		return nil
	case KindBzip2:
		r, err := bzip2.NewReader(src, nil)
		if err != nil {
			return errors.Wrap(err, "unable to create bzip2 decoder")
		}
		defer r.Close()
		if _, err := io.CopyBuffer(dst, r, make([]byte, bufferSize)); err != nil {
			return errors.Wrap(err, "unable to decompress content")
		}
		return nil
	default:
		return errors.Errorf("unsupported compression kind %q", c.Kind)
	}
}
