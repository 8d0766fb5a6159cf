// Package walk provides a lazy, non-restartable, depth-first directory
// traversal with deterministic (lexicographic) sibling ordering, used by
// the backup pipeline to enumerate a source tree.
package walk

import (
	"os"
	"path/filepath"
	"sort"

	"github.com/pkg/errors"
)

// Entry is one traversal step: a path plus whether it names a directory.
type Entry struct {
	Path  string
	IsDir bool
}

// Filter decides whether a path should be yielded by the walker. It is
// applied after the traversal decision for a directory has already been
// made, so a filtered-out directory is still descended into when the
// walker is recursive.
type Filter func(path string) bool

// frame tracks the remaining, sorted siblings of one directory level.
type frame struct {
	entries []Entry
	next    int
}

// Walker is a finite, non-restartable iterator of paths under a root
// directory, depth-first in pre-order: each directory's direct children
// are sorted lexicographically, and a directory is yielded and then its
// whole subtree walked before its next sibling.
type Walker struct {
	recursive bool
	filter    Filter
	stack     []frame
}

// New constructs a Walker rooted at dir. A missing or unreadable root
// directory fails the constructor; once constructed, a read or metadata
// error for some descendant only terminates traversal of that descendant's
// subtree, not of the walk as a whole.
func New(dir string, recursive bool, filter Filter) (*Walker, error) {
	entries, err := readSortedDir(dir)
	if err != nil {
		return nil, errors.Wrapf(err, "unable to read directory %s", dir)
	}
	return &Walker{
		recursive: recursive,
		filter:    filter,
		stack:     []frame{{entries: entries}},
	}, nil
}

// readSortedDir lists dir's direct children and sorts them by full path
// string. os.ReadDir already returns entries sorted by name, but we sort
// explicitly since that is the invariant this package promises, not an
// incidental property of the standard library.
func readSortedDir(dir string) ([]Entry, error) {
	descriptors, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	entries := make([]Entry, 0, len(descriptors))
	for _, d := range descriptors {
		entries = append(entries, Entry{
			Path:  filepath.Join(dir, d.Name()),
			IsDir: d.IsDir(),
		})
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Path < entries[j].Path
	})
	return entries, nil
}

// Next returns the next path in the traversal and true, or ("", false) once
// the walk is exhausted.
func (w *Walker) Next() (string, bool) {
	for len(w.stack) > 0 {
		top := &w.stack[len(w.stack)-1]
		if top.next >= len(top.entries) {
			w.stack = w.stack[:len(w.stack)-1]
			continue
		}
		entry := top.entries[top.next]
		top.next++

		if entry.IsDir && w.recursive {
			if children, err := readSortedDir(entry.Path); err == nil {
				w.stack = append(w.stack, frame{entries: children})
			}
			// A read error here terminates this subtree only; the frame
			// simply isn't pushed and iteration continues with siblings
			// already queued above.
		}

		if w.filter != nil && !w.filter(entry.Path) {
			continue
		}

		return entry.Path, true
	}
	return "", false
}
