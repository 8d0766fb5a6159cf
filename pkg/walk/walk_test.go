package walk

import (
	"os"
	"path/filepath"
	"testing"
)

func mustMkdirAll(t *testing.T, path string) {
	t.Helper()
	if err := os.MkdirAll(path, 0o755); err != nil {
		t.Fatal("unable to create directory:", err)
	}
}

func mustWriteFile(t *testing.T, path string, data string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal("unable to write file:", err)
	}
}

// TestWalkOrderingIsLexicographic verifies that siblings are visited in
// sorted order and that directories are visited before their children.
func TestWalkOrderingIsLexicographic(t *testing.T) {
	root := t.TempDir()
	mustMkdirAll(t, filepath.Join(root, "b"))
	mustWriteFile(t, filepath.Join(root, "a"), "a")
	mustWriteFile(t, filepath.Join(root, "b", "c"), "c")
	mustWriteFile(t, filepath.Join(root, "z"), "z")

	walker, err := New(root, true, nil)
	if err != nil {
		t.Fatal("unable to construct walker:", err)
	}

	var got []string
	for {
		path, ok := walker.Next()
		if !ok {
			break
		}
		relative, _ := filepath.Rel(root, path)
		got = append(got, relative)
	}

	expected := []string{"a", "b", filepath.Join("b", "c"), "z"}
	if len(got) != len(expected) {
		t.Fatalf("got %v, expected %v", got, expected)
	}
	for i := range expected {
		if got[i] != expected[i] {
			t.Errorf("entry %d: got %q, expected %q", i, got[i], expected[i])
		}
	}
}

// TestWalkNonRecursive verifies that non-recursive mode only yields direct
// children.
func TestWalkNonRecursive(t *testing.T) {
	root := t.TempDir()
	mustMkdirAll(t, filepath.Join(root, "d"))
	mustWriteFile(t, filepath.Join(root, "d", "nested"), "x")
	mustWriteFile(t, filepath.Join(root, "top"), "x")

	walker, err := New(root, false, nil)
	if err != nil {
		t.Fatal("unable to construct walker:", err)
	}

	var count int
	for {
		_, ok := walker.Next()
		if !ok {
			break
		}
		count++
	}
	if count != 2 {
		t.Errorf("expected 2 top-level entries, got %d", count)
	}
}

// TestWalkConstructorFailsOnMissingRoot verifies that a missing root
// directory fails New rather than producing an empty walker.
func TestWalkConstructorFailsOnMissingRoot(t *testing.T) {
	if _, err := New(filepath.Join(t.TempDir(), "missing"), true, nil); err == nil {
		t.Error("expected an error constructing a walker over a missing root")
	}
}

// TestWalkFilterAppliedAfterRecursion verifies that a directory failing the
// filter is still descended into, so a matching file nested under a
// non-matching directory is still yielded.
func TestWalkFilterAppliedAfterRecursion(t *testing.T) {
	root := t.TempDir()
	mustMkdirAll(t, filepath.Join(root, "skip"))
	mustWriteFile(t, filepath.Join(root, "skip", "keep.txt"), "x")
	mustWriteFile(t, filepath.Join(root, "skip", "ignore.bin"), "x")

	filter := GlobFilter([]string{"**/*.txt"})
	walker, err := New(root, true, filter)
	if err != nil {
		t.Fatal("unable to construct walker:", err)
	}

	var got []string
	for {
		path, ok := walker.Next()
		if !ok {
			break
		}
		relative, _ := filepath.Rel(root, path)
		got = append(got, filepath.ToSlash(relative))
	}

	found := false
	for _, path := range got {
		if path == "skip/ignore.bin" {
			t.Errorf("non-matching file %q was yielded despite the filter", path)
		}
		if path == "skip/keep.txt" {
			found = true
		}
	}
	if !found {
		t.Errorf("matching nested file was not yielded; got %v", got)
	}
}

// TestGlobFilterEmptyAcceptsEverything verifies that an empty pattern list
// disables filtering entirely.
func TestGlobFilterEmptyAcceptsEverything(t *testing.T) {
	if GlobFilter(nil) != nil {
		t.Error("expected a nil Filter for an empty pattern list")
	}
}
