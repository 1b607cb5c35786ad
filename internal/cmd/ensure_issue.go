package cmd

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/strowk/renovate/pkg/platform"
)

var (
	ensureIssueRepo   string
	ensureIssueBody   string
	ensureIssueLabels []string
	ensureIssueReuse  string
	ensureIssueReopen bool
	ensureIssueOnce   bool
)

var ensureIssueCmd = &cobra.Command{
	Use:   "ensure-issue <title>",
	Short: "Converge a repository on exactly one issue with the given title",
	Long: `Converge the repository on exactly one open issue with the given title,
body and labels. Duplicate open issues under the same title are closed; a
closed issue is reopened when --reopen is set and left closed with --once.

Examples:
  renovate ensure-issue "Dependency Dashboard" --repo myorg/myrepo --body "..."
  renovate ensure-issue "Update Available" --repo myorg/myrepo --reopen`,
	Args: cobra.ExactArgs(1),
	RunE: runEnsureIssue,
}

func init() {
	ensureIssueCmd.Flags().StringVar(&ensureIssueRepo, "repo", "", "Target repository as owner/name (required)")
	ensureIssueCmd.Flags().StringVar(&ensureIssueBody, "body", "", "Desired issue body")
	ensureIssueCmd.Flags().StringSliceVar(&ensureIssueLabels, "labels", nil, "Label names to apply")
	ensureIssueCmd.Flags().StringVar(&ensureIssueReuse, "reuse-title", "", "Previous title to adopt when no issue matches the new one")
	ensureIssueCmd.Flags().BoolVar(&ensureIssueReopen, "reopen", false, "Reopen a closed matching issue")
	ensureIssueCmd.Flags().BoolVar(&ensureIssueOnce, "once", false, "Never reopen: leave a closed matching issue closed")
	_ = ensureIssueCmd.MarkFlagRequired("repo")
}

func runEnsureIssue(cmd *cobra.Command, args []string) error {
	title := args[0]

	p, err := initPlatform(cmd.Context())
	if err != nil {
		return err
	}
	session, err := p.InitRepo(cmd.Context(), ensureIssueRepo, platform.RepoOptions{})
	if err != nil {
		return err
	}

	outcome := session.EnsureIssue(cmd.Context(), platform.EnsureIssueOptions{
		Title:        title,
		ReuseTitle:   ensureIssueReuse,
		Body:         ensureIssueBody,
		Labels:       ensureIssueLabels,
		ShouldReOpen: ensureIssueReopen,
		Once:         ensureIssueOnce,
	})

	switch outcome {
	case platform.IssueCreated:
		fmt.Printf("%s issue created\n", color.GreenString("✓"))
	case platform.IssueUpdated:
		fmt.Printf("%s issue updated\n", color.GreenString("✓"))
	default:
		fmt.Println("nothing to do")
	}
	return nil
}
