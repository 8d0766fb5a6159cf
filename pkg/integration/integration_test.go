// Package integration exercises the archive, backup, channel, and restore
// packages together against the format's end-to-end scenarios, rather than
// any one package's unit behavior in isolation.
package integration

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/kiln-archive/kiln/pkg/archive"
	"github.com/kiln-archive/kiln/pkg/archivetest"
	"github.com/kiln-archive/kiln/pkg/backup"
	"github.com/kiln-archive/kiln/pkg/channel"
	"github.com/kiln-archive/kiln/pkg/hash"
	"github.com/kiln-archive/kiln/pkg/locking"
	"github.com/kiln-archive/kiln/pkg/manifest"
	"github.com/kiln-archive/kiln/pkg/restore"
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

func runBackup(t *testing.T, session *archive.Session, sourceDir, channelName string) {
	t.Helper()
	path, _, err := session.NewRevisionPath(channelName)
	if err != nil {
		t.Fatal("unable to allocate revision path:", err)
	}
	f, err := os.Create(path)
	if err != nil {
		t.Fatal("unable to create revision file:", err)
	}
	w := channel.NewWriter(f, session.Settings().HashAlgorithm, session.ContentDir())
	if _, err := backup.Run(w, backup.Options{
		SourceDir:   sourceDir,
		Compression: session.Settings().Compression,
		HashAlgo:    session.Settings().HashAlgorithm,
		Workers:     2,
	}); err != nil {
		t.Fatal("unable to run backup:", err)
	}
	if err := w.Close(); err != nil {
		t.Fatal("unable to close channel writer:", err)
	}
	if err := f.Close(); err != nil {
		t.Fatal("unable to close revision file:", err)
	}
}

// TestEmptyChannelSelectFails verifies that selecting the latest
// revision of a channel with no revisions reports that none exists, and
// that the destination stays untouched.
func TestEmptyChannelSelectFails(t *testing.T) {
	session := archivetest.New(t)

	_, ok, err := session.LatestRevision("main")
	if err != nil {
		t.Fatal("unexpected error:", err)
	}
	if ok {
		t.Fatal("expected no latest revision in a freshly initialized archive")
	}

	destination := t.TempDir()
	entries, err := os.ReadDir(destination)
	if err != nil {
		t.Fatal("unable to list destination:", err)
	}
	if len(entries) != 0 {
		t.Error("expected the destination to remain untouched")
	}
}

// TestSingleFileBackup verifies the exact blob name and manifest
// body shape for a one-file backup.
func TestSingleFileBackup(t *testing.T) {
	session := archivetest.New(t)
	source := t.TempDir()
	mustWriteFile(t, filepath.Join(source, "a.txt"), "hello\n")

	runBackup(t, session, source, "main")

	revision, ok, err := session.LatestRevision("main")
	if err != nil || !ok {
		t.Fatal("expected a latest revision after backup:", err)
	}

	expectedHash, err := hash.Stream(hash.AlgorithmSHA256, strings.NewReader("hello\n"))
	if err != nil {
		t.Fatal("unable to hash expected content:", err)
	}

	blobEntries, err := os.ReadDir(session.ContentDir())
	if err != nil {
		t.Fatal("unable to list content dir:", err)
	}
	if len(blobEntries) != 1 || blobEntries[0].Name() != expectedHash.String() {
		t.Fatalf("got blobs %v, expected exactly %q", blobEntries, expectedHash.String())
	}

	manifestPath := archive.RevisionPath(session.ArchiveDir(), "main", revision)
	raw, err := os.ReadFile(manifestPath)
	if err != nil {
		t.Fatal("unable to read revision manifest:", err)
	}
	lines := strings.Split(string(raw), "\n")
	if len(lines) < 2 || lines[0] != "file:a.txt" || lines[1] != "\thash:"+expectedHash.String() {
		t.Errorf("unexpected manifest body: %q", raw)
	}
}

// TestDedupAcrossPaths verifies that two files with identical
// content produce exactly one blob and two manifest entries sharing a hash.
func TestDedupAcrossPaths(t *testing.T) {
	session := archivetest.New(t)
	source := t.TempDir()
	mustWriteFile(t, filepath.Join(source, "x", "a"), "same")
	mustWriteFile(t, filepath.Join(source, "y", "b"), "same")

	runBackup(t, session, source, "main")

	blobEntries, err := os.ReadDir(session.ContentDir())
	if err != nil {
		t.Fatal("unable to list content dir:", err)
	}
	if len(blobEntries) != 1 {
		t.Errorf("expected exactly 1 blob, got %d", len(blobEntries))
	}

	revision, ok, err := session.LatestRevision("main")
	if err != nil || !ok {
		t.Fatal("expected a latest revision after backup:", err)
	}
	f, err := os.Open(archive.RevisionPath(session.ArchiveDir(), "main", revision))
	if err != nil {
		t.Fatal("unable to open revision manifest:", err)
	}
	defer f.Close()

	r := channel.NewReader(f, session.Settings().HashAlgorithm, session.ContentDir())
	var hashes []string
	for r.Scan() {
		if item := r.Item(); item.Kind == channel.ItemKindFile {
			hashes = append(hashes, item.Hash.String())
		}
	}
	if err := r.Err(); err != nil {
		t.Fatal("unexpected reader error:", err)
	}
	if len(hashes) != 2 || hashes[0] != hashes[1] {
		t.Errorf("expected two matching file hashes, got %v", hashes)
	}
}

// TestRoundTripWithDirectories verifies that a tree containing a
// subdirectory restores identically, with the directory entry preserved.
func TestRoundTripWithDirectories(t *testing.T) {
	session := archivetest.New(t)
	source := t.TempDir()
	if err := os.MkdirAll(filepath.Join(source, "d"), 0o755); err != nil {
		t.Fatal("unable to create directory:", err)
	}
	mustWriteFile(t, filepath.Join(source, "d", "f1"), "1")
	mustWriteFile(t, filepath.Join(source, "f2"), "22")

	runBackup(t, session, source, "main")

	revision, ok, err := session.LatestRevision("main")
	if err != nil || !ok {
		t.Fatal("expected a latest revision after backup:", err)
	}
	f, err := os.Open(archive.RevisionPath(session.ArchiveDir(), "main", revision))
	if err != nil {
		t.Fatal("unable to open revision manifest:", err)
	}
	defer f.Close()

	destination := t.TempDir()
	r := channel.NewReader(f, session.Settings().HashAlgorithm, session.ContentDir())
	stats, err := restore.Run(r, restore.Options{
		DestinationDir: destination,
		Compression:    session.Settings().Compression,
	})
	if err != nil {
		t.Fatal("unable to run restore:", err)
	}
	if stats.DirsCreated != 1 {
		t.Errorf("expected 1 directory recorded, got %d", stats.DirsCreated)
	}

	f1, err := os.ReadFile(filepath.Join(destination, "d", "f1"))
	if err != nil || string(f1) != "1" {
		t.Errorf("got d/f1=%q err=%v, expected %q", f1, err, "1")
	}
	f2, err := os.ReadFile(filepath.Join(destination, "f2"))
	if err != nil || string(f2) != "22" {
		t.Errorf("got f2=%q err=%v, expected %q", f2, err, "22")
	}
}

// TestLockContentionAndRecovery verifies that a concurrent open fails fast
// and that the lock becomes available again once the first session closes.
func TestLockContentionAndRecovery(t *testing.T) {
	dir := t.TempDir()
	if err := archive.Init(dir, archivetest.NewSettings()); err != nil {
		t.Fatal("unable to init archive:", err)
	}

	first, err := archive.Open(dir)
	if err != nil {
		t.Fatal("unable to open first session:", err)
	}

	if _, err := archive.Open(dir); err != locking.ErrLocked {
		t.Errorf("got error %v, expected %v", err, locking.ErrLocked)
	}

	if err := first.Close(); err != nil {
		t.Fatal("unable to close first session:", err)
	}

	second, err := archive.Open(dir)
	if err != nil {
		t.Fatal("expected retry to succeed once the first session closed:", err)
	}
	defer second.Close()
}

// TestCorruptionDetection verifies that flipping one byte in a
// revision manifest body causes verification to fail with the exact
// historical diagnostic.
func TestCorruptionDetection(t *testing.T) {
	session := archivetest.New(t)
	source := t.TempDir()
	mustWriteFile(t, filepath.Join(source, "a.txt"), "hello\n")
	runBackup(t, session, source, "main")

	revision, ok, err := session.LatestRevision("main")
	if err != nil || !ok {
		t.Fatal("expected a latest revision after backup:", err)
	}
	path := archive.RevisionPath(session.ArchiveDir(), "main", revision)

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatal("unable to read revision manifest:", err)
	}
	raw[0] ^= 0xFF
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		t.Fatal("unable to write corrupted manifest:", err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatal("unable to reopen corrupted manifest:", err)
	}
	defer f.Close()

	err = manifest.Verify(f, session.Settings().HashAlgorithm)
	if err == nil || err.Error() != "hashsum mismatch" {
		t.Errorf("got error %v, expected %q", err, "hashsum mismatch")
	}
}
