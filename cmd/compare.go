package cmd

import (
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/reliquary/relic/internal/orchestrator"
)

var (
	compareFiles     []string
	compareDiff      bool
	compareNoDiff    bool
	compareCopyFiles bool
	compareMakeMerge bool
	compareExportDir string
	compareWorkers   int
)

var compareCmd = &cobra.Command{
	Use:   "compare <archive_path> <git_path>",
	Short: "Compare an archive against a repository and its history",
	Long: `Compare files and directories between a vendor archive and a Git
repository. Files missing from the repository are reported first; for every
differing file the full commit history of its path is searched for the newest
exact content match, and optionally (--diff) for the closest version by
line-diff distance.

Examples:
  relic compare ./vendor-drop /src/kernel
  relic compare ./vendor-drop /src/kernel --diff
  relic compare ./vendor-drop /src/kernel --files drivers/foo.c --files drivers/bar.c
  relic compare ./vendor-drop /src/kernel --copy-files
  relic compare ./vendor-drop /src/kernel --diff --make-merge-script --merge-script-export-dir ./merged`,
	Args: cobra.ExactArgs(2),
	RunE: runCompare,
}

func init() {
	rootCmd.AddCommand(compareCmd)

	compareCmd.Flags().StringSliceVar(&compareFiles, "files", nil, "Restrict the run to these archive-relative paths")
	compareCmd.Flags().BoolVar(&compareDiff, "diff", false, "Find the closest commit by line diff when no exact match exists")
	compareCmd.Flags().BoolVar(&compareNoDiff, "no-diff", false, "Disable closest-commit search (default)")
	compareCmd.Flags().BoolVar(&compareCopyFiles, "copy-files", false, "Copy missing and differing archive files onto the target tree")
	compareCmd.Flags().BoolVar(&compareMakeMerge, "make-merge-script", false, "Execute the checkout/apply/commit/merge/export procedure for unmatched files")
	compareCmd.Flags().StringVar(&compareExportDir, "merge-script-export-dir", "", "Directory merged files are exported into")
	compareCmd.Flags().IntVar(&compareWorkers, "workers", 0, "Classification worker count (default: CPU count, RELIC_WORKERS overrides)")

	compareCmd.MarkFlagsMutuallyExclusive("diff", "no-diff")
	compareCmd.MarkFlagsRequiredTogether("make-merge-script", "merge-script-export-dir")
}

func runCompare(cmd *cobra.Command, args []string) error {
	workers := compareWorkers
	if workers == 0 {
		if env := os.Getenv("RELIC_WORKERS"); env != "" {
			n, err := strconv.Atoi(env)
			if err != nil {
				return fmt.Errorf("invalid RELIC_WORKERS value '%s': %w", env, err)
			}
			workers = n
		}
	}

	return orchestrator.Run(cmd.Context(), orchestrator.Options{
		ArchivePath:     args[0],
		GitPath:         args[1],
		Files:           compareFiles,
		Diff:            compareDiff && !compareNoDiff,
		CopyFiles:       compareCopyFiles,
		MakeMergeScript: compareMakeMerge,
		ExportDir:       compareExportDir,
		Workers:         workers,
		Resolver:        newPromptResolver(),
		Out:             cmd.OutOrStdout(),
		ErrOut:          cmd.ErrOrStderr(),
	})
}
