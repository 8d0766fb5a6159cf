package manifest

import (
	"bufio"
	"io"
	"strings"

	"github.com/pkg/errors"
)

// maxLineSize bounds a single manifest line (path plus hash hex); generous
// enough for any realistic relative path while still catching a corrupt
// file that never terminates a line.
const maxLineSize = 1 << 20

// Entry is one parsed manifest record.
type Entry struct {
	Key   string
	Value string
	Depth int
}

// Reader iterates the entries of a revision manifest, following the
// bufio.Scanner idiom: call Scan in a loop, read Entry after each true
// return, and check Err once Scan returns false.
type Reader struct {
	scanner   *bufio.Scanner
	entry     Entry
	err       error
	done      bool
	haveDepth bool
	prevDepth int
}

// NewReader constructs a Reader over r.
func NewReader(r io.Reader) *Reader {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	return &Reader{scanner: scanner}
}

// parseLine splits one manifest line into an Entry. A line lacking ':' is
// malformed.
func parseLine(line string) (Entry, error) {
	depth := 0
	i := 0
	for i < len(line) && line[i] == '\t' {
		depth++
		i++
	}
	rest := line[i:]
	sep := strings.IndexByte(rest, ':')
	if sep == -1 {
		return Entry{}, errors.Errorf("malformed manifest line (missing ':'): %q", line)
	}
	return Entry{Key: rest[:sep], Value: rest[sep+1:], Depth: depth}, nil
}

// Scan advances to the next entry, returning false at the manifest's
// trailer line, at EOF, or on a parse/format error (distinguishable via
// Err).
func (r *Reader) Scan() bool {
	if r.done {
		return false
	}
	if !r.scanner.Scan() {
		if err := r.scanner.Err(); err != nil {
			r.err = errors.Wrap(err, "unable to read manifest")
		}
		r.done = true
		return false
	}

	line := r.scanner.Text()
	if strings.HasPrefix(line, endMarker+":") {
		r.done = true
		return false
	}

	entry, err := parseLine(line)
	if err != nil {
		r.err = err
		r.done = true
		return false
	}

	if r.haveDepth {
		diff := entry.Depth - r.prevDepth
		if diff < 0 {
			diff = -diff
		}
		if diff > 1 {
			r.err = errors.Errorf("manifest depth jumps from %d to %d", r.prevDepth, entry.Depth)
			r.done = true
			return false
		}
	}
	r.haveDepth = true
	r.prevDepth = entry.Depth
	r.entry = entry
	return true
}

// Entry returns the entry produced by the most recent successful Scan.
func (r *Reader) Entry() Entry {
	return r.entry
}

// Err returns the first error encountered, if iteration stopped early for
// that reason rather than reaching the trailer or EOF.
func (r *Reader) Err() error {
	return r.err
}
