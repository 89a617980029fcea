package match

import (
	"context"
	"testing"
	"time"

	"github.com/reliquary/relic/internal/archive"
	"github.com/reliquary/relic/internal/gitrepo"
)

// fakeBlobs serves blob content by commit id and counts fetches, so the
// cost bound of the newest-first scan is assertable
type fakeBlobs struct {
	blobs   map[string][]byte
	fetches int
}

func (f *fakeBlobs) BlobContent(c gitrepo.CommitRef, path string) ([]byte, error) {
	f.fetches++
	b, ok := f.blobs[c.ID]
	if !ok {
		return nil, gitrepo.ErrBlobAbsent
	}
	return b, nil
}

func refs(ids ...string) []gitrepo.CommitRef {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	history := make([]gitrepo.CommitRef, len(ids))
	for i, id := range ids {
		// newest first: timestamps decrease down the list
		history[i] = gitrepo.CommitRef{ID: id, When: base.Add(-time.Duration(i) * time.Hour)}
	}
	return history
}

func TestFindExactStopsAtNewestMatch(t *testing.T) {
	target := []byte("archive content\n")
	blobs := &fakeBlobs{blobs: map[string][]byte{
		"c1": []byte("newest\n"),
		"c2": []byte("middle\n"),
		"c3": target,
		"c4": target, // older duplicate must never be reached
	}}
	history := refs("c1", "c2", "c3", "c4")

	commit, pos, found, err := FindExact(context.Background(), blobs, "file.c", archive.HashBytes(target), history)
	if err != nil {
		t.Fatalf("FindExact failed: %v", err)
	}
	if !found {
		t.Fatal("Expected a match")
	}
	if commit.ID != "c3" {
		t.Errorf("Expected newest matching commit c3, got %s", commit.ID)
	}
	if pos != 3 {
		t.Errorf("Expected scan position 3, got %d", pos)
	}
	if blobs.fetches != 3 {
		t.Errorf("Match at position 3 must cost exactly 3 blob fetches, got %d", blobs.fetches)
	}
}

func TestFindExactNoMatchScansFullHistory(t *testing.T) {
	blobs := &fakeBlobs{blobs: map[string][]byte{
		"c1": []byte("a\n"),
		"c2": []byte("b\n"),
	}}
	history := refs("c1", "c2")

	_, _, found, err := FindExact(context.Background(), blobs, "file.c", archive.HashBytes([]byte("z\n")), history)
	if err != nil {
		t.Fatalf("FindExact failed: %v", err)
	}
	if found {
		t.Fatal("Expected no match")
	}
	if blobs.fetches != 2 {
		t.Errorf("No match must cost one fetch per history entry, got %d fetches for 2 entries", blobs.fetches)
	}
}

func TestFindExactCountsAbsentRevisions(t *testing.T) {
	target := []byte("content\n")
	blobs := &fakeBlobs{blobs: map[string][]byte{
		"c1": []byte("other\n"),
		// c2 absent: path removed at that revision
		"c3": target,
	}}
	history := refs("c1", "c2", "c3")

	commit, pos, found, err := FindExact(context.Background(), blobs, "file.c", archive.HashBytes(target), history)
	if err != nil {
		t.Fatalf("FindExact failed: %v", err)
	}
	if !found || commit.ID != "c3" {
		t.Fatalf("Expected match at c3, got found=%v commit=%s", found, commit.ID)
	}
	if pos != 3 {
		t.Errorf("Absent revisions still count as inspected; expected position 3, got %d", pos)
	}
}

func TestFindExactEmptyHistory(t *testing.T) {
	blobs := &fakeBlobs{blobs: map[string][]byte{}}

	_, _, found, err := FindExact(context.Background(), blobs, "file.c", archive.HashBytes([]byte("x")), nil)
	if err != nil {
		t.Fatalf("FindExact failed: %v", err)
	}
	if found {
		t.Error("Empty history must yield no match")
	}
	if blobs.fetches != 0 {
		t.Errorf("Empty history must cost zero fetches, got %d", blobs.fetches)
	}
}
