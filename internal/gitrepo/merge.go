package gitrepo

import (
	"fmt"
	"os/exec"
	"strings"
)

// Merge operations shell out to the git CLI: go-git does not implement a
// conflict-producing three-way merge, and the merge step is the one place
// this tool mutates repository state through git's own machinery.

// Merge merges the given commit into the current HEAD. A clean merge returns
// (nil, nil). A conflicted merge returns the list of conflicted repository
// paths and no error; the repository is left mid-merge for manual resolution.
func (r *Repository) Merge(commit CommitRef) ([]string, error) {
	out, err := r.git("merge", "--no-edit", commit.ID)
	if err == nil {
		return nil, nil
	}

	conflicts, cerr := r.ConflictedPaths()
	if cerr != nil || len(conflicts) == 0 {
		return nil, fmt.Errorf("merge of %s failed: %s: %w", commit.ID, strings.TrimSpace(out), err)
	}
	return conflicts, nil
}

// ConflictedPaths lists the unmerged paths of an in-progress merge
func (r *Repository) ConflictedPaths() ([]string, error) {
	out, err := r.git("diff", "--name-only", "--diff-filter=U")
	if err != nil {
		return nil, fmt.Errorf("failed to list conflicted paths: %w", err)
	}

	var paths []string
	for _, line := range strings.Split(out, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			paths = append(paths, line)
		}
	}
	return paths, nil
}

// FinishMerge commits an in-progress merge after conflicts were resolved in
// the working tree
func (r *Repository) FinishMerge() error {
	if _, err := r.git("commit", "-a", "--no-edit"); err != nil {
		return fmt.Errorf("failed to finish merge: %w", err)
	}
	return nil
}

// AbortMerge abandons an in-progress merge and resets the working tree
func (r *Repository) AbortMerge() error {
	if _, err := r.git("merge", "--abort"); err != nil {
		return fmt.Errorf("failed to abort merge: %w", err)
	}
	return nil
}

func (r *Repository) git(args ...string) (string, error) {
	cmd := exec.Command("git", append([]string{"-C", r.root}, args...)...)
	out, err := cmd.CombinedOutput()
	return string(out), err
}
