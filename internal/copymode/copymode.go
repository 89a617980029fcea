// Package copymode bulk-copies archive files over their target paths.
// Filesystem writes only; the repository itself is never touched, so
// running it twice converges to zero reported differences.
package copymode

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"

	cp "github.com/otiai10/copy"

	"github.com/reliquary/relic/internal/report"
)

// CopyAll copies each relative path from archiveRoot to targetRoot, creating
// missing parent directories, and reports every transfer. Paths are
// processed in lexicographic order.
func CopyAll(archiveRoot, targetRoot string, relPaths []string, out io.Writer) error {
	paths := append([]string(nil), relPaths...)
	sort.Strings(paths)

	for _, rel := range paths {
		src := filepath.Join(archiveRoot, filepath.FromSlash(rel))
		dst := filepath.Join(targetRoot, filepath.FromSlash(rel))

		if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
			return fmt.Errorf("failed to create parent of '%s': %w", rel, err)
		}
		if err := cp.Copy(src, dst); err != nil {
			return fmt.Errorf("failed to copy '%s': %w", rel, err)
		}

		fmt.Fprintln(out, report.Copy(src, dst))
	}
	return nil
}
