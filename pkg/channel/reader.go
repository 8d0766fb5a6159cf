package channel

import (
	"io"

	"github.com/kiln-archive/kiln/pkg/hash"
	"github.com/kiln-archive/kiln/pkg/manifest"
)

// Reader iterates a revision manifest, grouping a top-level `file:` entry
// with its depth-1 `hash:` child into one Item, and surfacing each
// top-level `dir:` entry as its own Item. Follows the bufio.Scanner idiom:
// call Scan in a loop, read Item after each true return, check Err once
// Scan returns false.
//
// Grouping is grounded on original_source/src/archive/channel_reader.rs's
// seen/unseen buffering, simplified: that implementation only closes a
// group on the next top-level `file:` entry, which (harmlessly, since it
// never surfaced dir entries) folds any intervening `dir:` into the
// preceding file's group. This reader instead closes the current group on
// *any* top-level entry, so a `dir:` is never merged into a file group. A
// file group missing its hash child is skipped — that group fails but
// iteration continues with subsequent groups — rather than ending
// iteration entirely.
type Reader struct {
	r          *manifest.Reader
	contentDir string
	algorithm  hash.Algorithm

	item Item
	err  error
	done bool

	// pending holds a top-level entry already read from r but not yet
	// consumed by the current Scan call, left over from looking ahead for
	// a file group's hash child.
	pending     manifest.Entry
	havePending bool
}

// NewReader constructs a Reader over a revision manifest stream. contentDir
// is used to resolve each file item's content-store blob path.
func NewReader(r io.Reader, algorithm hash.Algorithm, contentDir string) *Reader {
	return &Reader{r: manifest.NewReader(r), contentDir: contentDir, algorithm: algorithm}
}

// nextTopLevel returns the next depth-0 entry, either from the lookahead
// buffer or freshly scanned, and whether one was available.
func (r *Reader) nextTopLevel() (manifest.Entry, bool) {
	if r.havePending {
		r.havePending = false
		return r.pending, true
	}
	if !r.r.Scan() {
		return manifest.Entry{}, false
	}
	return r.r.Entry(), true
}

// Scan advances to the next item. It returns false at EOF or on a
// manifest-format error, distinguishable via Err.
func (r *Reader) Scan() bool {
	if r.done {
		return false
	}

	for {
		top, ok := r.nextTopLevel()
		if !ok {
			r.err = r.r.Err()
			r.done = true
			return false
		}

		switch top.Key {
		case keyDir:
			r.item = Item{Kind: ItemKindDir, RelativePath: top.Value}
			return true

		case keyFile:
			relativePath := top.Value
			var h hash.Result
			haveHash := false

			for r.r.Scan() {
				entry := r.r.Entry()
				if entry.Depth == 0 {
					r.pending = entry
					r.havePending = true
					break
				}
				if entry.Key == keyHash {
					if parsed, err := hash.FromHex(r.algorithm, entry.Value); err == nil {
						h = parsed
						haveHash = true
					}
				}
			}
			if err := r.r.Err(); err != nil {
				r.err = err
				r.done = true
				return false
			}

			if !haveHash {
				continue // malformed group: skip, try the next one
			}
			r.item = Item{Kind: ItemKindFile, RelativePath: relativePath, Hash: h}
			return true

		default:
			continue // unrecognized top-level key: ignore
		}
	}
}

// Item returns the item produced by the most recent successful Scan.
func (r *Reader) Item() Item {
	return r.item
}

// ContentPath returns item's blob path in the content store. Only
// meaningful for ItemKindFile items.
func (r *Reader) ContentPath(item Item) string {
	return blobPath(r.contentDir, item.Hash.String())
}

// Err returns the first error encountered, if iteration stopped early for
// that reason rather than reaching EOF.
func (r *Reader) Err() error {
	return r.err
}
