package match

import (
	"github.com/reliquary/relic/internal/gitrepo"
)

// Kind classifies one archive file against the repository and its history.
// Exactly one kind applies per file per run.
type Kind int

const (
	// Unchanged means archive and working-tree content are byte-identical
	Unchanged Kind = iota
	// Exact means a historical blob hashes equal to the archive content
	Exact
	// Closest means no exact historical match exists but a minimal
	// line-diff commit was found
	Closest
	// NoMatch means the full history was scanned without any usable match
	NoMatch
)

// Result is the classification of one archive file
type Result struct {
	Path     string // archive-relative
	RepoPath string // repository path used for history queries
	Kind     Kind

	// Commit is the matched commit for Exact and Closest
	Commit gitrepo.CommitRef

	// Distance is the 1-based scan position at which the exact match was
	// found, interpreted as "changes from head". It counts every inspected
	// historical revision, including commits where the path was absent.
	Distance int

	// DiffLines is the added+removed line count for Closest
	DiffLines int
}

// BlobReader is the read-only slice of the history provider the matchers
// need: content of a path as recorded at a commit
type BlobReader interface {
	BlobContent(commit gitrepo.CommitRef, path string) ([]byte, error)
}
