// Package manifest implements the revision manifest's on-disk format: an
// indented key:value line format closed by an integrity trailer.
//
// Grounded on original_source/src/meta_format.rs: the running hash covers
// exactly the bytes of each line's text (no trailing newline), and the
// trailer line itself is excluded from that hash. The reader side (Verify)
// must compute the identical hash over the identical bytes, which is why
// both this writer and the Reader/Verify below go through a line-oriented
// read/write path rather than hashing raw byte ranges.
package manifest

import (
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/pkg/errors"

	"github.com/kiln-archive/kiln/pkg/hash"
)

// endMarker prefixes the manifest's integrity trailer line.
const endMarker = "__end"

// Writer appends indented key:value entries to an underlying stream and
// emits the trailer on Close.
type Writer struct {
	w         io.Writer
	algorithm hash.Algorithm
	hasher    *hash.Hasher
	depth     int
	anyWrites bool
	closed    bool
}

// NewWriter constructs a Writer that hashes its body with algorithm, the
// archive's configured hash algorithm.
func NewWriter(w io.Writer, algorithm hash.Algorithm) *Writer {
	return &Writer{
		w:         w,
		algorithm: algorithm,
		hasher:    hash.New(algorithm),
	}
}

// writeLine writes one full line (without its trailing newline in the
// argument) to the stream, hashing the line text but not the newline that
// follows it.
func (w *Writer) writeLine(text string) error {
	w.hasher.Write([]byte(text))
	if _, err := io.WriteString(w.w, text); err != nil {
		return err
	}
	if _, err := io.WriteString(w.w, "\n"); err != nil {
		return err
	}
	w.anyWrites = true
	return nil
}

// AddEntry appends "<tabs>key:value" at the writer's current depth. Keys
// must not contain ':' and values must not contain '\n'; both must be valid
// UTF-8.
func (w *Writer) AddEntry(key, value string) error {
	if strings.Contains(key, ":") {
		return errors.Errorf("manifest key %q must not contain ':'", key)
	}
	if strings.Contains(value, "\n") {
		return errors.New("manifest value must not contain a newline")
	}
	if !utf8.ValidString(key) || !utf8.ValidString(value) {
		return errors.New("manifest entry must be valid UTF-8")
	}
	indent := strings.Repeat("\t", w.depth)
	return w.writeLine(fmt.Sprintf("%s%s:%s", indent, key, value))
}

// IncreaseDepth nests subsequent entries one level deeper.
func (w *Writer) IncreaseDepth() {
	w.depth++
}

// DecreaseDepth un-nests subsequent entries one level. Decreasing below
// depth 0 is a programmer error and panics rather than silently clamping.
func (w *Writer) DecreaseDepth() {
	if w.depth == 0 {
		panic("manifest.Writer: DecreaseDepth called at depth 0")
	}
	w.depth--
}

// Close appends the integrity trailer, if any entries were written, and
// marks the writer closed. It is safe to call more than once; only the
// first call has effect. A manifest with zero entries is left empty (no
// trailer), so an unused revision file stays distinguishable from a
// zero-item one.
func (w *Writer) Close() error {
	if w.closed {
		return nil
	}
	w.closed = true
	if !w.anyWrites {
		return nil
	}
	sum := w.hasher.Sum()
	_, err := io.WriteString(w.w, fmt.Sprintf("%s:%s\n", endMarker, sum.String()))
	return err
}
