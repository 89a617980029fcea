// Package mergescript synthesizes and executes the per-file merge procedure
// for archive files that have no exact historical twin: check out the base
// commit, overwrite with the archive version, commit, merge the original
// HEAD back in, export the merged result, and restore HEAD.
package mergescript

import (
	"context"
	"fmt"

	"github.com/reliquary/relic/internal/gitrepo"
	"github.com/reliquary/relic/internal/match"
)

// Step is one pending merge procedure: the archive file and the historical
// commit to base the synthesized merge on
type Step struct {
	Path     string // archive-relative
	RepoPath string
	Base     gitrepo.CommitRef
}

// BaseResolver finds a base commit for a file whose classification did not
// produce one (closest-match mode was off). It is the single-file query form
// of the closest-commit finder.
type BaseResolver func(ctx context.Context, res match.Result) (gitrepo.CommitRef, bool, error)

// Generate builds the ordered step list from the completed classification.
// Base commits are reused from the classification, never re-derived: a
// closest-match result supplies its commit directly, and only NoMatch
// results (with the finder disabled during classification) fall back to
// resolve. Files with no usable base commit are skipped.
func Generate(ctx context.Context, results []match.Result, resolve BaseResolver) ([]Step, error) {
	var steps []Step
	for _, r := range results {
		var base gitrepo.CommitRef

		switch r.Kind {
		case match.Closest:
			base = r.Commit
		case match.NoMatch:
			if resolve == nil {
				continue
			}
			commit, ok, err := resolve(ctx, r)
			if err != nil {
				return nil, fmt.Errorf("failed to resolve base commit for '%s': %w", r.Path, err)
			}
			if !ok {
				continue
			}
			base = commit
		default:
			continue
		}

		steps = append(steps, Step{Path: r.Path, RepoPath: r.RepoPath, Base: base})
	}
	return steps, nil
}
