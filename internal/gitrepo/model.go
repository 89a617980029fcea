package gitrepo

import "time"

// CommitRef identifies a commit and carries the committer timestamp used
// for "newer than" comparisons between commits
type CommitRef struct {
	ID   string    `json:"id"`
	When time.Time `json:"when"`
}

// IsZero reports whether the ref identifies no commit
func (c CommitRef) IsZero() bool {
	return c.ID == ""
}

// NewerThan compares commits by committer timestamp
func (c CommitRef) NewerThan(other CommitRef) bool {
	return c.When.After(other.When)
}

// Short returns the first 8 chars of the commit id for display
func (c CommitRef) Short() string {
	if len(c.ID) < 8 {
		return c.ID
	}
	return c.ID[:8]
}
