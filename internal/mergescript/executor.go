package mergescript

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	cp "github.com/otiai10/copy"

	"github.com/reliquary/relic/internal/gitrepo"
)

// Mutator is the repository-mutating slice of the history provider used
// during execution. All calls run against one shared working tree and are
// therefore strictly serialized by the executor.
type Mutator interface {
	HeadRef() (string, gitrepo.CommitRef, error)
	Checkout(commit gitrepo.CommitRef) error
	CheckoutRef(name string) error
	CommitAll(repoPath, message string) (gitrepo.CommitRef, error)
	Merge(commit gitrepo.CommitRef) ([]string, error)
	FinishMerge() error
	AbortMerge() error
}

// ConflictResolver is the suspension point entered when a merge conflicts.
// It blocks until the conflict is dealt with and reports whether the merge
// was resolved (continue to export) or abandoned.
type ConflictResolver interface {
	Resolve(path string, conflicts []string) (bool, error)
}

// Executor runs merge steps one file at a time against the live repository.
// Whatever the per-file outcome, the repository is returned to the original
// HEAD before the next file starts.
type Executor struct {
	repo        Mutator
	repoRoot    string
	archiveRoot string
	exportDir   string
	resolver    ConflictResolver
	out         io.Writer
}

// NewExecutor builds an executor exporting merged files into exportDir
func NewExecutor(repo Mutator, repoRoot, archiveRoot, exportDir string, resolver ConflictResolver, out io.Writer) *Executor {
	return &Executor{
		repo:        repo,
		repoRoot:    repoRoot,
		archiveRoot: archiveRoot,
		exportDir:   exportDir,
		resolver:    resolver,
		out:         out,
	}
}

// Run executes the steps sequentially. Per-file failures are reported and do
// not stop the remaining steps; the first failure to restore HEAD aborts the
// run, since isolation between files can no longer be guaranteed.
func (e *Executor) Run(ctx context.Context, steps []Step) error {
	refName, head, err := e.repo.HeadRef()
	if err != nil {
		return fmt.Errorf("failed to record original HEAD: %w", err)
	}

	if err := os.MkdirAll(e.exportDir, 0o755); err != nil {
		return fmt.Errorf("failed to create export dir: %w", err)
	}

	for _, step := range steps {
		if err := ctx.Err(); err != nil {
			return err
		}

		if err := e.runStep(ctx, step, head); err != nil {
			fmt.Fprintf(e.out, "Merge procedure failed for %s: %v\n", step.Path, err)
		}

		if err := e.restoreHead(refName, head); err != nil {
			return fmt.Errorf("failed to restore HEAD after '%s': %w", step.Path, err)
		}
	}
	return nil
}

func (e *Executor) runStep(ctx context.Context, step Step, head gitrepo.CommitRef) error {
	fmt.Fprintf(e.out, "Merging %s on top of %s\n", step.Path, step.Base.ID)

	if err := e.repo.Checkout(step.Base); err != nil {
		return err
	}

	if err := e.overwriteWithArchive(step); err != nil {
		return err
	}

	if _, err := e.repo.CommitAll(step.RepoPath, "Apply vendor changes"); err != nil {
		return err
	}

	conflicts, err := e.repo.Merge(head)
	if err != nil {
		return err
	}

	if len(conflicts) > 0 {
		resolved, rerr := e.resolver.Resolve(step.Path, conflicts)
		if rerr != nil {
			_ = e.repo.AbortMerge()
			return fmt.Errorf("conflict resolution failed: %w", rerr)
		}
		if !resolved {
			if aerr := e.repo.AbortMerge(); aerr != nil {
				return aerr
			}
			return fmt.Errorf("merge conflict left unresolved")
		}
		if err := e.repo.FinishMerge(); err != nil {
			return err
		}
	}

	return e.export(step)
}

func (e *Executor) overwriteWithArchive(step Step) error {
	data, err := os.ReadFile(filepath.Join(e.archiveRoot, filepath.FromSlash(step.Path)))
	if err != nil {
		return fmt.Errorf("failed to read archive version of '%s': %w", step.Path, err)
	}

	dst := filepath.Join(e.repoRoot, filepath.FromSlash(step.RepoPath))
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return fmt.Errorf("failed to create parent of '%s': %w", step.RepoPath, err)
	}
	if err := os.WriteFile(dst, data, 0o644); err != nil {
		return fmt.Errorf("failed to overwrite '%s': %w", step.RepoPath, err)
	}
	return nil
}

func (e *Executor) export(step Step) error {
	src := filepath.Join(e.repoRoot, filepath.FromSlash(step.RepoPath))
	dst := filepath.Join(e.exportDir, filepath.FromSlash(step.Path))

	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return fmt.Errorf("failed to create export parent for '%s': %w", step.Path, err)
	}
	if err := cp.Copy(src, dst); err != nil {
		return fmt.Errorf("failed to export '%s': %w", step.Path, err)
	}

	fmt.Fprintf(e.out, "Exported merged %s\n", step.Path)
	return nil
}

func (e *Executor) restoreHead(refName string, head gitrepo.CommitRef) error {
	if refName != "" {
		return e.repo.CheckoutRef(refName)
	}
	return e.repo.Checkout(head)
}
