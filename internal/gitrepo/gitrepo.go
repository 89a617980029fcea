package gitrepo

import (
	"context"
	"errors"
	"fmt"
	"path"
	"path/filepath"
	"time"

	"github.com/go-git/go-git/v6"
	"github.com/go-git/go-git/v6/config"
	"github.com/go-git/go-git/v6/plumbing"
	"github.com/go-git/go-git/v6/plumbing/object"
)

// ErrBlobAbsent is returned by BlobContent when the path does not exist in
// the tree of the requested commit (typically removed at that revision)
var ErrBlobAbsent = errors.New("path not present at commit")

// Repository wraps a local Git repository and exposes the operations the
// matching engine and the merge executor need: per-path history listing,
// blob fetches, checkout, commit and merge.
//
// History listing and blob fetches are read-only and safe to call
// concurrently. Checkout, CommitAll, Merge and friends mutate the single
// shared working tree and must be serialized by the caller.
type Repository struct {
	repo *git.Repository
	root string // absolute working tree root
	sub  string // slash-separated subfolder under root, "" when opened at root
}

// Open opens the Git repository at or above path. The path may point at a
// subfolder of the working tree; the repository root is discovered by
// walking upward, and the subfolder is remembered so that archive-relative
// paths can be translated to repository paths.
func Open(p string) (*Repository, error) {
	repo, err := git.PlainOpenWithOptions(p, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return nil, fmt.Errorf("failed to open repository at '%s': %w", p, err)
	}

	wt, err := repo.Worktree()
	if err != nil {
		return nil, fmt.Errorf("failed to get worktree: %w", err)
	}
	root := wt.Filesystem.Root()

	abs, err := filepath.Abs(p)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve '%s': %w", p, err)
	}

	rel, err := filepath.Rel(root, abs)
	if err != nil {
		return nil, fmt.Errorf("'%s' is outside repository root '%s': %w", abs, root, err)
	}
	sub := filepath.ToSlash(rel)
	if sub == "." {
		sub = ""
	}

	return &Repository{repo: repo, root: root, sub: sub}, nil
}

// Root returns the absolute path of the working tree root
func (r *Repository) Root() string {
	return r.root
}

// Subfolder returns the slash-separated subfolder the repository was opened
// at, relative to the root; empty when opened at the root itself
func (r *Repository) Subfolder() string {
	return r.sub
}

// RepoPath translates an archive-relative path to a repository path
func (r *Repository) RepoPath(rel string) string {
	if r.sub == "" {
		return rel
	}
	return path.Join(r.sub, rel)
}

// WorktreePath returns the absolute working tree location of a repository path
func (r *Repository) WorktreePath(repoPath string) string {
	return filepath.Join(r.root, filepath.FromSlash(repoPath))
}

// PathHistory lists the commits that touch repoPath, newest first. The
// ordering is stable across calls within one run (committer-time order).
// An empty slice means no commit touches the path.
func (r *Repository) PathHistory(ctx context.Context, repoPath string) ([]CommitRef, error) {
	head, err := r.repo.Head()
	if err != nil {
		return nil, fmt.Errorf("failed to get HEAD: %w", err)
	}

	iter, err := r.repo.Log(&git.LogOptions{
		From:       head.Hash(),
		Order:      git.LogOrderCommitterTime,
		PathFilter: func(p string) bool { return p == repoPath },
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get log for '%s': %w", repoPath, err)
	}

	var history []CommitRef
	err = iter.ForEach(func(c *object.Commit) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		history = append(history, CommitRef{
			ID:   c.Hash.String(),
			When: c.Committer.When,
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to iterate history of '%s': %w", repoPath, err)
	}

	return history, nil
}

// BlobContent fetches the content of repoPath as recorded at the given
// commit. Returns ErrBlobAbsent when the commit's tree has no such path.
func (r *Repository) BlobContent(commit CommitRef, repoPath string) ([]byte, error) {
	c, err := r.repo.CommitObject(plumbing.NewHash(commit.ID))
	if err != nil {
		return nil, fmt.Errorf("failed to load commit %s: %w", commit.ID, err)
	}

	f, err := c.File(repoPath)
	if err != nil {
		if errors.Is(err, object.ErrFileNotFound) {
			return nil, ErrBlobAbsent
		}
		return nil, fmt.Errorf("failed to open '%s' at %s: %w", repoPath, commit.ID, err)
	}

	contents, err := f.Contents()
	if err != nil {
		return nil, fmt.Errorf("failed to read '%s' at %s: %w", repoPath, commit.ID, err)
	}
	return []byte(contents), nil
}

// HeadRef returns the current HEAD: the branch reference name (empty when
// detached) and the commit it points at
func (r *Repository) HeadRef() (string, CommitRef, error) {
	ref, err := r.repo.Head()
	if err != nil {
		return "", CommitRef{}, fmt.Errorf("failed to get HEAD: %w", err)
	}

	c, err := r.repo.CommitObject(ref.Hash())
	if err != nil {
		return "", CommitRef{}, fmt.Errorf("failed to load HEAD commit: %w", err)
	}

	name := ""
	if ref.Name().IsBranch() {
		name = ref.Name().String()
	}
	return name, CommitRef{ID: ref.Hash().String(), When: c.Committer.When}, nil
}

// Checkout detaches the working tree at the given commit
func (r *Repository) Checkout(commit CommitRef) error {
	wt, err := r.repo.Worktree()
	if err != nil {
		return fmt.Errorf("failed to get worktree: %w", err)
	}
	if err := wt.Checkout(&git.CheckoutOptions{
		Hash:  plumbing.NewHash(commit.ID),
		Force: true,
	}); err != nil {
		return fmt.Errorf("failed to checkout %s: %w", commit.ID, err)
	}
	return nil
}

// CheckoutRef checks the working tree out at a branch reference name,
// discarding local modifications
func (r *Repository) CheckoutRef(name string) error {
	wt, err := r.repo.Worktree()
	if err != nil {
		return fmt.Errorf("failed to get worktree: %w", err)
	}
	if err := wt.Checkout(&git.CheckoutOptions{
		Branch: plumbing.ReferenceName(name),
		Force:  true,
	}); err != nil {
		return fmt.Errorf("failed to checkout '%s': %w", name, err)
	}
	return nil
}

// CommitAll stages repoPath and commits it with the given message
func (r *Repository) CommitAll(repoPath, message string) (CommitRef, error) {
	wt, err := r.repo.Worktree()
	if err != nil {
		return CommitRef{}, fmt.Errorf("failed to get worktree: %w", err)
	}

	if _, err := wt.Add(repoPath); err != nil {
		return CommitRef{}, fmt.Errorf("failed to stage '%s': %w", repoPath, err)
	}

	sig := r.signature()
	h, err := wt.Commit(message, &git.CommitOptions{Author: sig, Committer: sig})
	if err != nil {
		return CommitRef{}, fmt.Errorf("failed to commit '%s': %w", repoPath, err)
	}

	return CommitRef{ID: h.String(), When: sig.When}, nil
}

// signature builds the commit signature from git configuration, with a
// fallback identity when no user is configured
func (r *Repository) signature() *object.Signature {
	name, email := "relic", "relic@localhost"
	if cfg, err := r.repo.ConfigScoped(config.GlobalScope); err == nil {
		if cfg.User.Name != "" {
			name = cfg.User.Name
		}
		if cfg.User.Email != "" {
			email = cfg.User.Email
		}
	}
	return &object.Signature{Name: name, Email: email, When: time.Now()}
}
