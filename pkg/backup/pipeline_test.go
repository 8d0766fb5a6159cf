package backup

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/kiln-archive/kiln/pkg/channel"
	"github.com/kiln-archive/kiln/pkg/codec"
	"github.com/kiln-archive/kiln/pkg/hash"
)

func mustWriteFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal("unable to create parent directory:", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal("unable to write file:", err)
	}
}

// TestRunBacksUpFilesAndDirs verifies that a simple tree's files and
// directories (one holding a file, one empty) all end up recorded, with
// blobs landing in the content store.
func TestRunBacksUpFilesAndDirs(t *testing.T) {
	source := t.TempDir()
	contentDir := t.TempDir()

	mustWriteFile(t, filepath.Join(source, "a.txt"), "hello")
	mustWriteFile(t, filepath.Join(source, "sub", "b.txt"), "world")
	if err := os.MkdirAll(filepath.Join(source, "empty"), 0o755); err != nil {
		t.Fatal("unable to create empty dir:", err)
	}

	var buf strings.Builder
	w := channel.NewWriter(&buf, hash.AlgorithmSHA256, contentDir)

	stats, err := Run(w, Options{
		SourceDir:   source,
		Compression: codec.Compression{Kind: codec.KindNone},
		HashAlgo:    hash.AlgorithmSHA256,
		Workers:     2,
	})
	if err != nil {
		t.Fatal("unable to run backup:", err)
	}
	if err := w.Close(); err != nil {
		t.Fatal("unable to close writer:", err)
	}

	if stats.FilesWritten != 2 {
		t.Errorf("expected 2 files written, got %d", stats.FilesWritten)
	}

	r := channel.NewReader(strings.NewReader(buf.String()), hash.AlgorithmSHA256, contentDir)
	var files, dirs int
	for r.Scan() {
		switch r.Item().Kind {
		case channel.ItemKindFile:
			files++
		case channel.ItemKindDir:
			dirs++
		}
	}
	if err := r.Err(); err != nil {
		t.Fatal("unexpected reader error:", err)
	}
	if files != 2 {
		t.Errorf("expected 2 file items in the manifest, got %d", files)
	}
	if dirs != 2 {
		t.Errorf("expected 2 dir items in the manifest, got %d", dirs)
	}
}

// TestRunDeduplicatesIdenticalContent verifies that two files with
// identical bytes at different paths produce one blob in the content store
// but two manifest entries, with the second counted as deduped.
func TestRunDeduplicatesIdenticalContent(t *testing.T) {
	source := t.TempDir()
	contentDir := t.TempDir()

	mustWriteFile(t, filepath.Join(source, "a.txt"), "duplicate content")
	mustWriteFile(t, filepath.Join(source, "b.txt"), "duplicate content")

	var buf strings.Builder
	w := channel.NewWriter(&buf, hash.AlgorithmSHA256, contentDir)

	stats, err := Run(w, Options{
		SourceDir:   source,
		Compression: codec.Compression{Kind: codec.KindNone},
		HashAlgo:    hash.AlgorithmSHA256,
		Workers:     1,
	})
	if err != nil {
		t.Fatal("unable to run backup:", err)
	}
	if err := w.Close(); err != nil {
		t.Fatal("unable to close writer:", err)
	}

	if stats.FilesWritten != 1 {
		t.Errorf("expected 1 blob written, got %d", stats.FilesWritten)
	}
	if stats.FilesDeduped != 1 {
		t.Errorf("expected 1 file deduped, got %d", stats.FilesDeduped)
	}

	entries, err := os.ReadDir(contentDir)
	if err != nil {
		t.Fatal("unable to list content dir:", err)
	}
	if len(entries) != 1 {
		t.Errorf("expected exactly 1 blob in the content store, got %d", len(entries))
	}
}

// TestRunAppliesCompression verifies that a bzip2-configured run produces a
// blob distinct from the plaintext, and that the manifest still references
// it by the plaintext's hash.
func TestRunAppliesCompression(t *testing.T) {
	source := t.TempDir()
	contentDir := t.TempDir()
	content := strings.Repeat("compressible data ", 50)
	mustWriteFile(t, filepath.Join(source, "a.txt"), content)

	var buf strings.Builder
	w := channel.NewWriter(&buf, hash.AlgorithmSHA256, contentDir)

	_, err := Run(w, Options{
		SourceDir:   source,
		Compression: codec.Compression{Kind: codec.KindBzip2, Level: 6},
		HashAlgo:    hash.AlgorithmSHA256,
		Workers:     1,
	})
	if err != nil {
		t.Fatal("unable to run backup:", err)
	}
	if err := w.Close(); err != nil {
		t.Fatal("unable to close writer:", err)
	}

	expectedHash, err := hash.Stream(hash.AlgorithmSHA256, strings.NewReader(content))
	if err != nil {
		t.Fatal("unable to hash content:", err)
	}
	blobPath := filepath.Join(contentDir, expectedHash.String())
	data, err := os.ReadFile(blobPath)
	if err != nil {
		t.Fatal("unable to read blob:", err)
	}
	if string(data) == content {
		t.Error("expected the stored blob to be bzip2-compressed, found plaintext")
	}
}
