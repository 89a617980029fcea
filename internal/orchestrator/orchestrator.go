// Package orchestrator drives a reconciliation run: enumerate the archive,
// report missing paths, classify every differing file against repository
// history in parallel, fold the run summary, and hand off to the optional
// copy and merge-script modes.
package orchestrator

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/reliquary/relic/internal/archive"
	"github.com/reliquary/relic/internal/copymode"
	"github.com/reliquary/relic/internal/gitrepo"
	"github.com/reliquary/relic/internal/match"
	"github.com/reliquary/relic/internal/mergescript"
	"github.com/reliquary/relic/internal/progress"
	"github.com/reliquary/relic/internal/report"
	"github.com/reliquary/relic/internal/treediff"
)

// Options configures a reconciliation run
type Options struct {
	ArchivePath string
	GitPath     string

	// Files restricts the run to the given archive-relative paths
	Files []string

	// Diff enables the closest-commit finder for files without an exact match
	Diff bool

	// CopyFiles copies missing and differing archive files onto the target tree
	CopyFiles bool

	// MakeMergeScript generates and executes the per-file merge procedure,
	// exporting merged files into ExportDir
	MakeMergeScript bool
	ExportDir       string

	// Workers bounds the classification pool; defaults to runtime.NumCPU()
	Workers int

	// ProgressInterval overrides the progress reporting period (diff mode)
	ProgressInterval time.Duration

	Resolver mergescript.ConflictResolver

	Out    io.Writer
	ErrOut io.Writer
}

// Run performs one full reconciliation. Invalid archive or repository roots
// fail before any output is produced.
func Run(ctx context.Context, opts Options) error {
	if opts.Out == nil {
		opts.Out = os.Stdout
	}
	if opts.ErrOut == nil {
		opts.ErrOut = os.Stderr
	}
	if opts.Workers <= 0 {
		opts.Workers = runtime.NumCPU()
	}
	if opts.ProgressInterval <= 0 {
		opts.ProgressInterval = progress.DefaultInterval
	}

	info, err := os.Stat(opts.ArchivePath)
	if err != nil || !info.IsDir() {
		return fmt.Errorf("archive path '%s' is not a directory", opts.ArchivePath)
	}

	repo, err := gitrepo.Open(opts.GitPath)
	if err != nil {
		return err
	}

	tree, err := archive.Scan(opts.ArchivePath)
	if err != nil {
		return err
	}
	if len(opts.Files) > 0 {
		tree = tree.Filter(opts.Files)
	}

	fmt.Fprintf(opts.Out, "\nGit repository root: %s\n\n", repo.Root())

	targetRoot := filepath.Join(repo.Root(), filepath.FromSlash(repo.Subfolder()))

	// missing paths first; pure read, already sorted
	fmt.Fprintln(opts.Out, report.Header("=== Files/Directories in Archive Not in Git Repository ==="))
	missing := treediff.Diff(tree, targetRoot)
	for _, dir := range missing.MissingDirs {
		fmt.Fprintln(opts.Out, report.MissingDirectory(dir))
	}
	for _, f := range missing.MissingFiles {
		fmt.Fprintln(opts.Out, report.MissingFile(f))
	}

	fmt.Fprintf(opts.Out, "\n")
	fmt.Fprintln(opts.Out, report.Header("=== File Version Comparisons ==="))

	results, classified := classifyAll(ctx, repo, tree, missing, opts)
	if err := ctx.Err(); err != nil {
		return err
	}

	// tree.Files is sorted, so lines come out in lexicographic path order
	for i := range results {
		if !classified[i] {
			continue
		}
		if line := report.ForResult(results[i]); line != "" {
			fmt.Fprintln(opts.Out, line)
		}
	}

	summary := match.Summarize(results)
	fmt.Fprintf(opts.Out, "\n")
	fmt.Fprintln(opts.Out, report.NewestExact(summary.NewestExact.ID))
	fmt.Fprintln(opts.Out, report.NewestClosest(summary.NewestClosest.ID))
	if !summary.NewestExact.IsZero() && !summary.NewestClosest.IsZero() {
		newest := summary.NewestExact
		if summary.NewestClosest.NewerThan(newest) {
			newest = summary.NewestClosest
		}
		fmt.Fprintf(opts.Out, "%s is newer\n", newest.ID)
	}

	if opts.CopyFiles {
		if err := runCopyMode(tree, missing, results, classified, targetRoot, opts); err != nil {
			return err
		}
	}

	if opts.MakeMergeScript {
		if err := runMergeScript(ctx, repo, tree, results, classified, opts); err != nil {
			return err
		}
	}

	return nil
}

// classifyAll runs per-file classification on a bounded worker pool. Each
// file is independent and read-only with respect to the repository, so the
// pool imposes no ordering; results land in pre-allocated slots and the
// returned slices are only read after the pool has drained (the barrier
// before aggregation).
func classifyAll(ctx context.Context, repo *gitrepo.Repository, tree *archive.Tree, missing treediff.Report, opts Options) ([]match.Result, []bool) {
	results := make([]match.Result, len(tree.Files))
	classified := make([]bool, len(tree.Files))

	var tracker *progress.Tracker
	if opts.Diff {
		tracker = progress.New(len(tree.Files), opts.ProgressInterval, opts.Out)
		defer tracker.Finish()
	}

	targetRoot := filepath.Join(repo.Root(), filepath.FromSlash(repo.Subfolder()))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.Workers)

	for i, entry := range tree.Files {
		if missing.IsMissing(entry.RelPath) {
			if tracker != nil {
				tracker.Increment()
			}
			continue
		}

		g.Go(func() error {
			defer func() {
				if tracker != nil {
					tracker.Increment()
				}
			}()

			res, ok, err := classifyFile(gctx, repo, entry, targetRoot, opts.Diff)
			if err != nil {
				// unreadable or unlistable files do not stop the run
				fmt.Fprintf(opts.ErrOut, "Warning: skipping %s: %v\n", entry.RelPath, err)
				return nil
			}
			results[i], classified[i] = res, ok
			return nil
		})
	}

	_ = g.Wait()
	return results, classified
}

// classifyFile produces exactly one classification for an archive file whose
// path exists in the target tree
func classifyFile(ctx context.Context, repo *gitrepo.Repository, entry archive.Entry, targetRoot string, diffMode bool) (match.Result, bool, error) {
	data, err := entry.Read()
	if err != nil {
		return match.Result{}, false, err
	}

	target := filepath.Join(targetRoot, filepath.FromSlash(entry.RelPath))
	targetData, err := os.ReadFile(target)
	if err != nil {
		return match.Result{}, false, fmt.Errorf("failed to read target '%s': %w", entry.RelPath, err)
	}

	res := match.Result{
		Path:     entry.RelPath,
		RepoPath: repo.RepoPath(entry.RelPath),
	}

	contentHash := archive.HashBytes(data)
	if contentHash == archive.HashBytes(targetData) {
		res.Kind = match.Unchanged
		return res, true, nil
	}

	history, err := repo.PathHistory(ctx, res.RepoPath)
	if err != nil {
		return match.Result{}, false, err
	}

	commit, pos, found, err := match.FindExact(ctx, repo, res.RepoPath, contentHash, history)
	if err != nil {
		return match.Result{}, false, err
	}
	if found {
		res.Kind = match.Exact
		res.Commit = commit
		res.Distance = pos
		return res, true, nil
	}

	if diffMode && !archive.IsBinary(data) {
		commit, dist, _, ok, err := match.FindClosest(ctx, repo, res.RepoPath, data, history, false)
		if err != nil {
			return match.Result{}, false, err
		}
		if ok {
			res.Kind = match.Closest
			res.Commit = commit
			res.DiffLines = dist
			return res, true, nil
		}
	}

	res.Kind = match.NoMatch
	return res, true, nil
}

// runCopyMode copies every missing or differing archive file onto the target
func runCopyMode(tree *archive.Tree, missing treediff.Report, results []match.Result, classified []bool, targetRoot string, opts Options) error {
	paths := append([]string(nil), missing.MissingFiles...)
	for i := range results {
		if classified[i] && results[i].Kind != match.Unchanged {
			paths = append(paths, results[i].Path)
		}
	}

	fmt.Fprintf(opts.Out, "\nCopy files\n\n")
	return copymode.CopyAll(tree.Root, targetRoot, paths, opts.Out)
}

// runMergeScript generates the merge steps from the classification and
// executes them strictly one file at a time against the live repository
func runMergeScript(ctx context.Context, repo *gitrepo.Repository, tree *archive.Tree, results []match.Result, classified []bool, opts Options) error {
	entries := make(map[string]archive.Entry, len(tree.Files))
	for _, e := range tree.Files {
		entries[e.RelPath] = e
	}

	// single-file query form of the closest-commit finder, only consulted
	// when classification ran without diff mode
	resolve := func(ctx context.Context, r match.Result) (gitrepo.CommitRef, bool, error) {
		entry, ok := entries[r.Path]
		if !ok {
			return gitrepo.CommitRef{}, false, nil
		}
		data, err := entry.Read()
		if err != nil {
			return gitrepo.CommitRef{}, false, err
		}
		if archive.IsBinary(data) {
			return gitrepo.CommitRef{}, false, nil
		}
		history, err := repo.PathHistory(ctx, r.RepoPath)
		if err != nil {
			return gitrepo.CommitRef{}, false, err
		}
		commit, _, _, ok, err := match.FindClosest(ctx, repo, r.RepoPath, data, history, true)
		return commit, ok, err
	}

	var candidates []match.Result
	for i := range results {
		if classified[i] {
			candidates = append(candidates, results[i])
		}
	}

	steps, err := mergescript.Generate(ctx, candidates, resolve)
	if err != nil {
		return err
	}
	if len(steps) == 0 {
		fmt.Fprintf(opts.Out, "\nNo files need a synthesized merge\n")
		return nil
	}

	fmt.Fprintf(opts.Out, "\nExecuting merge procedure for %d files\n", len(steps))
	executor := mergescript.NewExecutor(repo, repo.Root(), tree.Root, opts.ExportDir, opts.Resolver, opts.Out)
	return executor.Run(ctx, steps)
}
