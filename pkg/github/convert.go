package github

import (
	"github.com/google/go-github/v66/github"

	"github.com/strowk/renovate/pkg/platform"
)

// convertRepo converts a GitHub API repository to the platform type. GitHub
// never offers a distinct rebase-with-merge-commit method, so that
// capability is always absent.
func convertRepo(r *github.Repository) *platform.Repo {
	perms := r.GetPermissions()
	return &platform.Repo{
		FullName:      r.GetFullName(),
		DefaultBranch: r.GetDefaultBranch(),
		CloneURL:      r.GetCloneURL(),
		Archived:      r.GetArchived(),
		Mirror:        r.GetMirrorURL() != "",
		Empty:         r.GetSize() == 0,
		Permissions: platform.RepoPermissions{
			Pull: perms["pull"],
			Push: perms["push"],
		},
		MergeMethods: platform.MergeCapabilities{
			Rebase: r.GetAllowRebaseMerge(),
			Squash: r.GetAllowSquashMerge(),
			Merge:  r.GetAllowMergeCommit(),
		},
	}
}

// convertPr converts a GitHub API pull request to the platform type, folding
// the remote state vocabulary to open/closed/merged.
func convertPr(pr *github.PullRequest) *platform.Pr {
	state := platform.PrState(pr.GetState())
	if pr.MergedAt != nil {
		state = platform.PrStateMerged
	}
	return &platform.Pr{
		Number:       pr.GetNumber(),
		State:        state,
		Title:        pr.GetTitle(),
		Body:         pr.GetBody(),
		SourceBranch: pr.GetHead().GetRef(),
		SourceRepo:   pr.GetHead().GetRepo().GetFullName(),
		TargetBranch: pr.GetBase().GetRef(),
		Sha:          pr.GetHead().GetSHA(),
		Author:       pr.GetUser().GetLogin(),
		CreatedAt:    pr.GetCreatedAt().Time,
		Mergeable:    pr.GetMergeable(),
		HasAssignees: len(pr.Assignees) > 0,
	}
}

// convertIssue converts a GitHub API issue to the platform type.
func convertIssue(issue *github.Issue) *platform.Issue {
	labels := make([]*platform.Label, 0, len(issue.Labels))
	for _, label := range issue.Labels {
		labels = append(labels, &platform.Label{
			ID:   label.GetID(),
			Name: label.GetName(),
		})
	}
	return &platform.Issue{
		Number:    issue.GetNumber(),
		State:     issue.GetState(),
		Title:     issue.GetTitle(),
		Body:      issue.GetBody(),
		Labels:    labels,
		CreatedAt: issue.GetCreatedAt().Time,
	}
}
