package match

import "github.com/reliquary/relic/internal/gitrepo"

// Summary holds the two repository-wide anchors derived from the complete
// per-file result set
type Summary struct {
	// NewestExact is the newest commit among all exact-match results
	NewestExact gitrepo.CommitRef
	// NewestClosest is the newest commit among all closest-match results
	NewestClosest gitrepo.CommitRef
}

// Summarize folds per-file results into the run summary. It is a pure
// reduction over the full result set, executed once after all per-file
// classification has completed; "newest" compares commit timestamps and is
// independent of processing order.
func Summarize(results []Result) Summary {
	var s Summary
	for _, r := range results {
		switch r.Kind {
		case Exact:
			if s.NewestExact.IsZero() || r.Commit.NewerThan(s.NewestExact) {
				s.NewestExact = r.Commit
			}
		case Closest:
			if s.NewestClosest.IsZero() || r.Commit.NewerThan(s.NewestClosest) {
				s.NewestClosest = r.Commit
			}
		}
	}
	return s
}
