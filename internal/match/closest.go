package match

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"

	"github.com/reliquary/relic/internal/archive"
	"github.com/reliquary/relic/internal/gitrepo"
)

// DiffDistance computes the line-level edit distance between two text
// contents: the count of added plus removed lines under go-diff's
// deterministic line-mode alignment. Identical content yields 0.
func DiffDistance(a, b []byte) int {
	dmp := diffmatchpatch.New()
	// The default 1s DiffTimeout makes DiffMain abandon the optimal diff
	// under load and return a cruder edit script, so the distance would
	// depend on machine speed. Zero disables the deadline.
	dmp.DiffTimeout = 0
	ca, cb, lines := dmp.DiffLinesToChars(string(a), string(b))
	diffs := dmp.DiffCharsToLines(dmp.DiffMain(ca, cb, false), lines)

	total := 0
	for _, d := range diffs {
		if d.Type == diffmatchpatch.DiffEqual {
			continue
		}
		total += lineCount(d.Text)
	}
	return total
}

func lineCount(text string) int {
	if text == "" {
		return 0
	}
	n := strings.Count(text, "\n")
	if !strings.HasSuffix(text, "\n") {
		n++
	}
	return n
}

// FindClosest scans the path's full history and returns the commit whose
// blob has the minimal line-diff distance to content. Ties keep the commit
// closer to HEAD, i.e. the one encountered first in the newest-first scan.
// Binary blobs and revisions where the path is absent are skipped.
//
// The returned position is the 1-based scan position of the winning commit.
// ok is false when the history is empty or no blob could be diffed.
//
// stopAtZero enables the single-file query behavior: the scan halts early
// when a distance of 0 is reached, since no commit can do better.
func FindClosest(ctx context.Context, blobs BlobReader, repoPath string, content []byte, history []gitrepo.CommitRef, stopAtZero bool) (gitrepo.CommitRef, int, int, bool, error) {
	var (
		best     gitrepo.CommitRef
		bestDist int
		bestPos  int
		found    bool
	)

	for i, commit := range history {
		if err := ctx.Err(); err != nil {
			return gitrepo.CommitRef{}, 0, 0, false, err
		}

		blob, err := blobs.BlobContent(commit, repoPath)
		if err != nil {
			if errors.Is(err, gitrepo.ErrBlobAbsent) {
				continue
			}
			return gitrepo.CommitRef{}, 0, 0, false, fmt.Errorf("failed to fetch '%s' at %s: %w", repoPath, commit.ID, err)
		}
		if archive.IsBinary(blob) {
			continue
		}

		dist := DiffDistance(blob, content)
		if !found || dist < bestDist {
			best, bestDist, bestPos, found = commit, dist, i+1, true
		}
		if stopAtZero && found && bestDist == 0 {
			break
		}
	}

	return best, bestDist, bestPos, found, nil
}
