package archive

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"
)

func writeFile(t *testing.T, root, rel, content string) {
	t.Helper()
	p := filepath.Join(root, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		t.Fatalf("Failed to create dir: %v", err)
	}
	if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
		t.Fatalf("Failed to write %s: %v", rel, err)
	}
}

func TestScanCollectsSortedFilesAndDirs(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "b/two.c", "two")
	writeFile(t, root, "a/one.c", "one")
	writeFile(t, root, "top.c", "top")

	tree, err := Scan(root)
	if err != nil {
		t.Fatalf("Scan failed: %v", err)
	}

	var rels []string
	for _, f := range tree.Files {
		rels = append(rels, f.RelPath)
	}
	if !sort.StringsAreSorted(rels) {
		t.Errorf("Files not sorted: %v", rels)
	}
	if len(rels) != 3 {
		t.Fatalf("Expected 3 files, got %v", rels)
	}
	if rels[0] != "a/one.c" || rels[2] != "top.c" {
		t.Errorf("Unexpected file set: %v", rels)
	}
	if len(tree.Dirs) != 2 || tree.Dirs[0] != "a" || tree.Dirs[1] != "b" {
		t.Errorf("Unexpected dir set: %v", tree.Dirs)
	}
}

func TestScanExcludesGitMetadata(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, ".git/config", "gitstuff")
	writeFile(t, root, ".git/objects/ab/cdef", "blob")
	writeFile(t, root, "real.c", "code")

	tree, err := Scan(root)
	if err != nil {
		t.Fatalf("Scan failed: %v", err)
	}

	if len(tree.Files) != 1 || tree.Files[0].RelPath != "real.c" {
		t.Errorf("Expected only real.c, got %v", tree.Files)
	}
	for _, d := range tree.Dirs {
		if d == ".git" || strings.HasPrefix(d, ".git/") {
			t.Errorf("Git metadata directory leaked into scan: %s", d)
		}
	}
}

func TestFilterRestrictsToGivenPaths(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "a/keep.c", "k")
	writeFile(t, root, "a/drop.c", "d")
	writeFile(t, root, "b/drop.c", "d")

	tree, err := Scan(root)
	if err != nil {
		t.Fatalf("Scan failed: %v", err)
	}

	filtered := tree.Filter([]string{"a/keep.c"})
	if len(filtered.Files) != 1 || filtered.Files[0].RelPath != "a/keep.c" {
		t.Errorf("Expected only a/keep.c, got %v", filtered.Files)
	}
	if len(filtered.Dirs) != 1 || filtered.Dirs[0] != "a" {
		t.Errorf("Expected only dir 'a', got %v", filtered.Dirs)
	}
}

func TestHashBytes(t *testing.T) {
	a := []byte("same content")
	b := []byte("same content")
	c := []byte("other content")

	if HashBytes(a) != HashBytes(b) {
		t.Error("Identical content must hash identically")
	}
	if HashBytes(a) == HashBytes(c) {
		t.Error("Different content must hash differently")
	}
}

func TestIsBinary(t *testing.T) {
	if IsBinary([]byte("plain text\nwith lines\n")) {
		t.Error("Text content misclassified as binary")
	}
	if !IsBinary([]byte{0x7f, 'E', 'L', 'F', 0x00, 0x01, 0x02}) {
		t.Error("NUL-bearing content must classify as binary")
	}
}

func TestEntryRead(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "f.c", "content")

	tree, err := Scan(root)
	if err != nil {
		t.Fatalf("Scan failed: %v", err)
	}

	data, err := tree.Files[0].Read()
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	if string(data) != "content" {
		t.Errorf("Expected 'content', got %q", data)
	}
}
