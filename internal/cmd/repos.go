package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
)

var reposCmd = &cobra.Command{
	Use:   "repos <owner>",
	Short: "Discover reconcilable repositories belonging to an owner",
	Long: `Discover repositories belonging to an owner that are usable for
reconciliation. Archived and mirrored repositories are skipped.`,
	Args: cobra.ExactArgs(1),
	RunE: runRepos,
}

func runRepos(cmd *cobra.Command, args []string) error {
	owner := args[0]

	p, err := initPlatform(cmd.Context())
	if err != nil {
		return err
	}

	repos, err := p.GetRepos(cmd.Context(), owner)
	if err != nil {
		return err
	}
	if len(repos) == 0 {
		fmt.Printf("No usable repositories found for %s\n", owner)
		return nil
	}

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Owner", "Repository"})
	for _, repo := range repos {
		repoOwner, name, _ := strings.Cut(repo, "/")
		table.Append([]string{repoOwner, name})
	}
	table.Render()
	return nil
}
