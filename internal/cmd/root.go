package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "renovate",
	Short: "A tool that reconciles automation artifacts on a Git hosting platform",
	Long: `Renovate keeps locally-desired automation artifacts (pull requests, issues,
comments, labels, commit statuses) synchronized with their counterparts on a
Git hosting service, idempotently and with session-scoped caching.

Configure the platform endpoint and token in ~/.renovate/config.yaml, the
RENOVATE_TOKEN environment variable, or ~/.renovate/credentials.ini.`,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(whoamiCmd)
	rootCmd.AddCommand(reposCmd)
	rootCmd.AddCommand(ensureIssueCmd)
}
