package match

import (
	"context"
	"errors"
	"fmt"

	"github.com/reliquary/relic/internal/archive"
	"github.com/reliquary/relic/internal/gitrepo"
)

// FindExact scans the path's history newest-first and stops at the first
// commit whose blob content hashes equal to contentHash. Because the scan is
// newest-first and halts at the first hit, the returned commit is the newest
// whose content equals the archive version.
//
// The returned position is 1-based: the number of historical revisions
// inspected before the search stopped. A match at position k costs exactly k
// blob fetches; no match costs one fetch per history entry.
func FindExact(ctx context.Context, blobs BlobReader, repoPath, contentHash string, history []gitrepo.CommitRef) (gitrepo.CommitRef, int, bool, error) {
	for i, commit := range history {
		if err := ctx.Err(); err != nil {
			return gitrepo.CommitRef{}, 0, false, err
		}

		content, err := blobs.BlobContent(commit, repoPath)
		if err != nil {
			if errors.Is(err, gitrepo.ErrBlobAbsent) {
				// removed at this revision; still counts as inspected
				continue
			}
			return gitrepo.CommitRef{}, 0, false, fmt.Errorf("failed to fetch '%s' at %s: %w", repoPath, commit.ID, err)
		}

		if archive.HashBytes(content) == contentHash {
			return commit, i + 1, true, nil
		}
	}
	return gitrepo.CommitRef{}, 0, false, nil
}
