package cmd

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "relic",
	Short: "Relic - archive-vs-history reconciliation tool",
	Long: `Relic reconciles a vendor-supplied source archive against a tracked
repository's history. For each file that differs between archive and working
tree it locates the historical revision the vendor likely started from:
either the newest commit with byte-identical content, or the commit with the
smallest line-diff distance.`,

	SilenceUsage: true,
}

// Execute runs the root command
func Execute() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
