package copymode

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/reliquary/relic/internal/archive"
	"github.com/reliquary/relic/internal/treediff"
)

func TestCopyAllCreatesParentsAndReports(t *testing.T) {
	archiveRoot := t.TempDir()
	targetRoot := t.TempDir()

	src := filepath.Join(archiveRoot, "deep", "nested")
	if err := os.MkdirAll(src, 0o755); err != nil {
		t.Fatalf("Failed to create source dir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(src, "f.c"), []byte("content"), 0o644); err != nil {
		t.Fatalf("Failed to write source file: %v", err)
	}

	var out bytes.Buffer
	if err := CopyAll(archiveRoot, targetRoot, []string{"deep/nested/f.c"}, &out); err != nil {
		t.Fatalf("CopyAll failed: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(targetRoot, "deep", "nested", "f.c"))
	if err != nil {
		t.Fatalf("Copied file unreadable: %v", err)
	}
	if string(data) != "content" {
		t.Errorf("Expected 'content', got %q", data)
	}
	if !strings.Contains(out.String(), " --> ") {
		t.Errorf("Expected a transfer report line, got %q", out.String())
	}
}

func TestCopyAllIsIdempotent(t *testing.T) {
	archiveRoot := t.TempDir()
	targetRoot := t.TempDir()

	if err := os.WriteFile(filepath.Join(archiveRoot, "f.c"), []byte("v2"), 0o644); err != nil {
		t.Fatalf("Failed to write archive file: %v", err)
	}
	if err := os.WriteFile(filepath.Join(targetRoot, "f.c"), []byte("v1"), 0o644); err != nil {
		t.Fatalf("Failed to write target file: %v", err)
	}

	var out bytes.Buffer
	if err := CopyAll(archiveRoot, targetRoot, []string{"f.c"}, &out); err != nil {
		t.Fatalf("First copy failed: %v", err)
	}
	if err := CopyAll(archiveRoot, targetRoot, []string{"f.c"}, &out); err != nil {
		t.Fatalf("Second copy failed: %v", err)
	}

	// after copying, a re-scan reports no missing files and equal content
	tree, err := archive.Scan(archiveRoot)
	if err != nil {
		t.Fatalf("Scan failed: %v", err)
	}
	report := treediff.Diff(tree, targetRoot)
	if len(report.MissingFiles) != 0 {
		t.Errorf("Copied files must not be missing on re-scan: %v", report.MissingFiles)
	}

	data, _ := os.ReadFile(filepath.Join(targetRoot, "f.c"))
	if archive.HashBytes(data) != archive.HashBytes([]byte("v2")) {
		t.Errorf("Target content must equal archive content after copy, got %q", data)
	}
}
