// Package report builds the output lines consumed by downstream tooling.
// The shapes here are a parsed contract and must not change.
package report

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"

	"github.com/reliquary/relic/internal/match"
)

var headerStyle = lipgloss.NewStyle().Bold(true)

// Header styles a section header for display; content is unstyled when the
// output is not a terminal
func Header(text string) string {
	return headerStyle.Render(text)
}

// MissingDirectory reports an archive directory absent from the target tree
func MissingDirectory(path string) string {
	return "Missing directory: " + path
}

// MissingFile reports an archive file absent from the target tree
func MissingFile(path string) string {
	return "Missing file: " + path
}

// OlderFile reports an exact historical match at scan position n
func OlderFile(path, commitID string, n int) string {
	return fmt.Sprintf("Older file: %s -- matching commit: %s (%d changes from head)", path, commitID, n)
}

// WithoutMatch reports a differing file that matched no historical revision
func WithoutMatch(path string) string {
	return "Differing file without match: " + path
}

// ClosestMatch reports a differing file together with its minimal-distance commit
func ClosestMatch(path, commitID string, lines int) string {
	return fmt.Sprintf("Differing file without match: %s -- closest commit: %s (lines changed %d)", path, commitID, lines)
}

// NewestExact is the summary anchor over all exact-match results
func NewestExact(commitID string) string {
	if commitID == "" {
		commitID = "None"
	}
	return "Newest commit with matching files: " + commitID
}

// NewestClosest is the summary anchor over all closest-match results
func NewestClosest(commitID string) string {
	if commitID == "" {
		commitID = "None"
	}
	return "Newest commit with smallest differences for non-matching files: " + commitID
}

// Progress is the periodic line emitted during long closest-match scans
func Progress(filesLeft, minutes int) string {
	return fmt.Sprintf("-- Files left to compare %d; estimated amount of minutes till the end: %d minutes", filesLeft, minutes)
}

// Copy reports one file transfer in copy mode
func Copy(src, dst string) string {
	return fmt.Sprintf("%s --> %s", src, dst)
}

// ForResult renders the classification line for a single file, or "" when
// the result produces no output (unchanged content)
func ForResult(r match.Result) string {
	switch r.Kind {
	case match.Exact:
		return OlderFile(r.Path, r.Commit.ID, r.Distance)
	case match.Closest:
		return ClosestMatch(r.Path, r.Commit.ID, r.DiffLines)
	case match.NoMatch:
		return WithoutMatch(r.Path)
	default:
		return ""
	}
}
