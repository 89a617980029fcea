package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/reliquary/relic/internal/archive"
	"github.com/reliquary/relic/internal/gitrepo"
	"github.com/reliquary/relic/internal/match"
	"github.com/reliquary/relic/internal/report"
)

var closestCmd = &cobra.Command{
	Use:   "closest <archive_file> <git_file>",
	Short: "Find the closest commit to a single archive file",
	Long: `Scan the history of one repository file for the commit whose recorded
content is closest to the given archive file by line-diff distance. The scan
stops early when an exact match (distance 0) is reached.

Example:
  relic closest ./vendor-drop/drivers/foo.c /src/kernel/drivers/foo.c`,
	Args: cobra.ExactArgs(2),
	RunE: runClosest,
}

func init() {
	rootCmd.AddCommand(closestCmd)
}

func runClosest(cmd *cobra.Command, args []string) error {
	archiveFile, gitFile := args[0], args[1]
	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	data, err := os.ReadFile(archiveFile)
	if err != nil {
		return fmt.Errorf("failed to read archive file '%s': %w", archiveFile, err)
	}
	if archive.IsBinary(data) {
		return fmt.Errorf("'%s' is binary content; line diffing is only defined for text", archiveFile)
	}

	repo, err := gitrepo.Open(filepath.Dir(gitFile))
	if err != nil {
		return err
	}

	absGitFile, err := filepath.Abs(gitFile)
	if err != nil {
		return fmt.Errorf("failed to resolve '%s': %w", gitFile, err)
	}
	rel, err := filepath.Rel(repo.Root(), absGitFile)
	if err != nil {
		return fmt.Errorf("'%s' is outside repository root '%s': %w", gitFile, repo.Root(), err)
	}
	repoPath := filepath.ToSlash(rel)

	fmt.Fprintf(out, "\nGit repository root: %s\n\n", repo.Root())
	fmt.Fprintf(out, "Checking file: %s\n\n", repoPath)

	history, err := repo.PathHistory(ctx, repoPath)
	if err != nil {
		return err
	}
	if len(history) == 0 {
		fmt.Fprintf(out, "No commits touch %s\n", repoPath)
		return nil
	}

	commit, dist, pos, ok, err := match.FindClosest(ctx, repo, repoPath, data, history, true)
	if err != nil {
		return err
	}
	if !ok {
		fmt.Fprintf(out, "No comparable revision of %s found\n", repoPath)
		return nil
	}

	if dist == 0 {
		fmt.Fprintln(out, report.OlderFile(repoPath, commit.ID, pos))
		return nil
	}

	fmt.Fprintln(out, report.WithoutMatch(repoPath))
	fmt.Fprintf(out, "Closest commit: %s\n", commit.ID)
	fmt.Fprintf(out, "Difference in lines: %d\n", dist)
	fmt.Fprintf(out, "Commits from current checkout: %d\n", pos)
	return nil
}
