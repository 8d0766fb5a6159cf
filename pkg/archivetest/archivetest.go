// Package archivetest provides test-only helpers for building a temporary,
// freshly initialized archive: a small, narrowly scoped helper package
// that only test code imports.
package archivetest

import (
	"testing"

	"github.com/kiln-archive/kiln/pkg/archive"
	"github.com/kiln-archive/kiln/pkg/codec"
	"github.com/kiln-archive/kiln/pkg/hash"
)

// NewSettings returns the default settings used by New: SHA-256 hashing, no
// compression. Tests exercising compression or a different algorithm should
// build their own Settings and call archive.Init directly.
func NewSettings() archive.Settings {
	return archive.Settings{
		HashAlgorithm: hash.AlgorithmSHA256,
		Compression:   codec.Compression{Kind: codec.KindNone},
	}
}

// New initializes a fresh archive in a t.TempDir() and opens it, registering
// a cleanup that releases its lock. Callers needing non-default settings or
// direct control over Init/Open should use archive.Init/archive.Open
// instead.
func New(t *testing.T) *archive.Session {
	t.Helper()
	dir := t.TempDir()
	if err := archive.Init(dir, NewSettings()); err != nil {
		t.Fatal("unable to init archive fixture:", err)
	}
	session, err := archive.Open(dir)
	if err != nil {
		t.Fatal("unable to open archive fixture:", err)
	}
	t.Cleanup(func() {
		session.Close()
	})
	return session
}
