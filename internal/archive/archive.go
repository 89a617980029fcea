package archive

import (
	"bytes"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"github.com/go-git/go-git/v6/utils/binary"
	"github.com/zeebo/xxh3"
)

// Entry is one file read from the vendor archive
type Entry struct {
	RelPath string // slash-separated, relative to the archive root
	AbsPath string
}

// Read loads the file content from disk
func (e Entry) Read() ([]byte, error) {
	data, err := os.ReadFile(e.AbsPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read '%s': %w", e.RelPath, err)
	}
	return data, nil
}

// Tree is the enumerated content of an archive directory, sorted
// lexicographically by relative path
type Tree struct {
	Root  string
	Dirs  []string
	Files []Entry
}

// Scan walks the archive root and collects directories and regular files,
// excluding version-control metadata directories
func Scan(root string) (*Tree, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve '%s': %w", root, err)
	}

	tree := &Tree{Root: abs}
	err = filepath.WalkDir(abs, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if p == abs {
			return nil
		}

		rel, err := filepath.Rel(abs, p)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)

		if d.IsDir() {
			if d.Name() == ".git" {
				return filepath.SkipDir
			}
			tree.Dirs = append(tree.Dirs, rel)
			return nil
		}
		if d.Type().IsRegular() {
			tree.Files = append(tree.Files, Entry{RelPath: rel, AbsPath: p})
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk archive '%s': %w", root, err)
	}

	sort.Strings(tree.Dirs)
	sort.Slice(tree.Files, func(i, j int) bool { return tree.Files[i].RelPath < tree.Files[j].RelPath })
	return tree, nil
}

// Filter returns a copy of the tree restricted to the given relative file
// paths; directories are kept only when they contain a selected file
func (t *Tree) Filter(paths []string) *Tree {
	keep := make(map[string]bool, len(paths))
	for _, p := range paths {
		keep[filepath.ToSlash(p)] = true
	}

	filtered := &Tree{Root: t.Root}
	dirs := make(map[string]bool)
	for _, f := range t.Files {
		if !keep[f.RelPath] {
			continue
		}
		filtered.Files = append(filtered.Files, f)
		for dir := filepath.ToSlash(filepath.Dir(f.RelPath)); dir != "." && !dirs[dir]; dir = filepath.ToSlash(filepath.Dir(dir)) {
			dirs[dir] = true
		}
	}
	for _, d := range t.Dirs {
		if dirs[d] {
			filtered.Dirs = append(filtered.Dirs, d)
		}
	}
	return filtered
}

// HashBytes computes the xxh3-128 content digest used for byte-exact
// equality checks
func HashBytes(data []byte) string {
	return fmt.Sprintf("%x", xxh3.Hash128(data).Bytes())
}

// IsBinary reports whether the content looks like non-text data; binary
// files are compared by hash only and never line-diffed
func IsBinary(data []byte) bool {
	isBin, err := binary.IsBinary(bytes.NewReader(data))
	return err == nil && isBin
}
