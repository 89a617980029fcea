// Package treediff reports archive paths that have no counterpart in the
// target tree. It is a pure read: nothing is modified on either side.
package treediff

import (
	"os"
	"path/filepath"
	"sort"

	"github.com/reliquary/relic/internal/archive"
)

// Report lists archive paths missing from the target tree, sorted
// lexicographically
type Report struct {
	MissingDirs  []string
	MissingFiles []string
}

// Diff walks the scanned archive tree against targetRoot. A directory is
// missing when the target path is not a directory; a file is missing when
// the target path does not exist or is not a regular file (any type
// mismatch counts as missing).
func Diff(tree *archive.Tree, targetRoot string) Report {
	var report Report

	for _, dir := range tree.Dirs {
		info, err := os.Stat(filepath.Join(targetRoot, filepath.FromSlash(dir)))
		if err != nil || !info.IsDir() {
			report.MissingDirs = append(report.MissingDirs, dir)
		}
	}

	for _, f := range tree.Files {
		info, err := os.Stat(filepath.Join(targetRoot, filepath.FromSlash(f.RelPath)))
		if err != nil || !info.Mode().IsRegular() {
			report.MissingFiles = append(report.MissingFiles, f.RelPath)
		}
	}

	sort.Strings(report.MissingDirs)
	sort.Strings(report.MissingFiles)
	return report
}

// IsMissing reports whether the given archive-relative file path appears in
// the missing-files set
func (r Report) IsMissing(relPath string) bool {
	i := sort.SearchStrings(r.MissingFiles, relPath)
	return i < len(r.MissingFiles) && r.MissingFiles[i] == relPath
}
