// Package channel implements the per-channel revision manifest as a
// sequence of file/dir entries addressed into the content store, on top of
// the manifest package's generic key:value format.
package channel

import (
	"path/filepath"

	"github.com/kiln-archive/kiln/pkg/hash"
)

func blobPath(contentDir, hexHash string) string {
	return filepath.Join(contentDir, hexHash)
}

// manifest key names, grounded on original_source/src/archive/defs.rs.
const (
	keyFile = "file"
	keyDir  = "dir"
	keyHash = "hash"
)

// ItemKind distinguishes the two kinds of entry a revision manifest can
// hold.
type ItemKind int

const (
	// ItemKindFile is a regular file backed by a content-store blob.
	ItemKindFile ItemKind = iota
	// ItemKindDir is a directory entry. Every directory is recorded, so an
	// empty leaf directory round-trips through backup and restore even
	// though it holds no content of its own (resolves spec's open question
	// on directory entries: surfaced rather than silently discarded).
	ItemKindDir
)

// Item is one materialized entry read back from a revision manifest.
type Item struct {
	Kind         ItemKind
	RelativePath string
	// Hash is set only for ItemKindFile.
	Hash hash.Result
}

// Decision reports what AddFile's caller must do with a file's content.
type Decision int

const (
	// NeedBlob means the content store has no blob for this hash yet; the
	// caller must write one before the revision is considered complete.
	NeedBlob Decision = iota
	// AlreadyPresent means a blob for this hash already exists in the
	// content store; the caller may skip reading/writing the file's bytes
	// entirely.
	AlreadyPresent
)
