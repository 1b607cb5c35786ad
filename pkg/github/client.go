package github

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/google/go-github/v66/github"
	"golang.org/x/oauth2"

	"github.com/strowk/renovate/pkg/platform"
)

// Client implements platform.APIClient using the GitHub REST API.
type Client struct {
	client *github.Client
}

// NewClient creates a new GitHub API client with the provided token. An
// empty endpoint targets github.com; anything else is treated as a GitHub
// Enterprise base URL.
func NewClient(endpoint, token string) (*Client, error) {
	ts := oauth2.StaticTokenSource(
		&oauth2.Token{AccessToken: token},
	)
	tc := oauth2.NewClient(context.Background(), ts)

	gh := github.NewClient(tc)
	if endpoint != "" {
		var err error
		gh, err = gh.WithEnterpriseURLs(endpoint, endpoint)
		if err != nil {
			return nil, fmt.Errorf("configuring endpoint %s: %w", endpoint, err)
		}
	}
	return &Client{client: gh}, nil
}

// GetUser retrieves the authenticated user.
func (c *Client) GetUser(ctx context.Context) (*platform.User, error) {
	var user *github.User

	err := WithRetry(func() error {
		var err error
		user, _, err = c.client.Users.Get(ctx, "")
		return wrapErr(err, "authenticated user")
	}, DefaultRetryConfig())
	if err != nil {
		return nil, err
	}

	return &platform.User{ID: user.GetID(), Login: user.GetLogin()}, nil
}

// GetVersion reports the remote API version. Hosted github.com does not
// expose one, so it falls back to a fixed identifier.
func (c *Client) GetVersion(ctx context.Context) (string, error) {
	var version string

	err := WithRetry(func() error {
		_, resp, err := c.client.Meta.Get(ctx)
		if err != nil {
			return wrapErr(err, "api metadata")
		}
		version = resp.Header.Get("X-GitHub-Enterprise-Version")
		if version == "" {
			version = "github.com"
		}
		return nil
	}, DefaultRetryConfig())

	return version, err
}

// SearchRepos discovers repositories belonging to an owner.
func (c *Client) SearchRepos(ctx context.Context, owner string) ([]*platform.Repo, error) {
	opts := &github.SearchOptions{
		ListOptions: github.ListOptions{PerPage: 100},
	}
	query := fmt.Sprintf("user:%s", owner)

	var all []*platform.Repo

	err := WithRetry(func() error {
		all = nil
		opts.Page = 0

		for {
			result, resp, err := c.client.Search.Repositories(ctx, query, opts)
			if err != nil {
				return wrapErr(err, fmt.Sprintf("repositories of %s", owner))
			}
			for _, repo := range result.Repositories {
				all = append(all, convertRepo(repo))
			}
			if resp.NextPage == 0 {
				break
			}
			opts.Page = resp.NextPage
		}
		return nil
	}, DefaultRetryConfig())

	return all, err
}

// GetRepo retrieves a repository by its owner/name identifier.
func (c *Client) GetRepo(ctx context.Context, repo string) (*platform.Repo, error) {
	owner, name, err := splitRepo(repo)
	if err != nil {
		return nil, err
	}

	var r *github.Repository
	err = WithRetry(func() error {
		var err error
		r, _, err = c.client.Repositories.Get(ctx, owner, name)
		return wrapErr(err, fmt.Sprintf("repository %s", repo))
	}, DefaultRetryConfig())
	if err != nil {
		return nil, err
	}

	return convertRepo(r), nil
}

// ListPrs fetches every pull request of the repository, all states.
func (c *Client) ListPrs(ctx context.Context, repo string) ([]*platform.Pr, error) {
	owner, name, err := splitRepo(repo)
	if err != nil {
		return nil, err
	}

	opts := &github.PullRequestListOptions{
		State:       "all",
		ListOptions: github.ListOptions{PerPage: 100},
	}

	var all []*platform.Pr

	err = WithRetry(func() error {
		all = nil
		opts.Page = 0

		for {
			prs, resp, err := c.client.PullRequests.List(ctx, owner, name, opts)
			if err != nil {
				return wrapErr(err, fmt.Sprintf("pull requests of %s", repo))
			}
			for _, pr := range prs {
				all = append(all, convertPr(pr))
			}
			if resp.NextPage == 0 {
				break
			}
			opts.Page = resp.NextPage
		}
		return nil
	}, DefaultRetryConfig())

	return all, err
}

// GetPr fetches a single pull request.
func (c *Client) GetPr(ctx context.Context, repo string, number int) (*platform.Pr, error) {
	owner, name, err := splitRepo(repo)
	if err != nil {
		return nil, err
	}

	var pr *github.PullRequest
	err = WithRetry(func() error {
		var err error
		pr, _, err = c.client.PullRequests.Get(ctx, owner, name, number)
		return wrapErr(err, fmt.Sprintf("pull request %s#%d", repo, number))
	}, DefaultRetryConfig())
	if err != nil {
		return nil, err
	}

	return convertPr(pr), nil
}

// CreatePr creates a pull request and assigns the requested labels. A remote
// "already exists" rejection for the branch pairing is normalized to a 409
// so the reconciliation layer's conflict recovery can branch on it.
func (c *Client) CreatePr(ctx context.Context, repo string, req platform.PrCreateRequest) (*platform.Pr, error) {
	owner, name, err := splitRepo(repo)
	if err != nil {
		return nil, err
	}

	var pr *github.PullRequest
	err = WithRetry(func() error {
		var err error
		pr, _, err = c.client.PullRequests.Create(ctx, owner, name, &github.NewPullRequest{
			Title: github.String(req.Title),
			Head:  github.String(req.SourceBranch),
			Base:  github.String(req.TargetBranch),
			Body:  github.String(req.Body),
		})
		return normalizeCreateConflict(wrapErr(err, fmt.Sprintf("pull request for %s", req.SourceBranch)))
	}, DefaultRetryConfig())
	if err != nil {
		return nil, err
	}

	if len(req.Labels) > 0 {
		labels := labelNames(req.Labels)
		err = WithRetry(func() error {
			_, _, err := c.client.Issues.AddLabelsToIssue(ctx, owner, name, pr.GetNumber(), labels)
			return wrapErr(err, fmt.Sprintf("labels on %s#%d", repo, pr.GetNumber()))
		}, DefaultRetryConfig())
		if err != nil {
			return nil, err
		}
	}

	return convertPr(pr), nil
}

// UpdatePr issues a partial pull request update; nil fields stay untouched.
func (c *Client) UpdatePr(ctx context.Context, repo string, number int, req platform.PrUpdateRequest) (*platform.Pr, error) {
	owner, name, err := splitRepo(repo)
	if err != nil {
		return nil, err
	}

	patch := &github.PullRequest{
		Title: req.Title,
		Body:  req.Body,
	}
	if req.State != nil {
		patch.State = github.String(string(*req.State))
	}

	var pr *github.PullRequest
	err = WithRetry(func() error {
		var err error
		pr, _, err = c.client.PullRequests.Edit(ctx, owner, name, number, patch)
		return wrapErr(err, fmt.Sprintf("pull request %s#%d", repo, number))
	}, DefaultRetryConfig())
	if err != nil {
		return nil, err
	}

	return convertPr(pr), nil
}

// MergePr merges a pull request with the given method.
func (c *Client) MergePr(ctx context.Context, repo string, number int, method platform.MergeMethod) error {
	owner, name, err := splitRepo(repo)
	if err != nil {
		return err
	}

	opts := &github.PullRequestOptions{MergeMethod: mergeMethodValue(method)}
	return WithRetry(func() error {
		_, _, err := c.client.PullRequests.Merge(ctx, owner, name, number, "", opts)
		return wrapErr(err, fmt.Sprintf("merge of %s#%d", repo, number))
	}, DefaultRetryConfig())
}

// ListIssues fetches every issue of the repository, all states, excluding
// pull requests surfaced through the issues endpoint.
func (c *Client) ListIssues(ctx context.Context, repo string) ([]*platform.Issue, error) {
	owner, name, err := splitRepo(repo)
	if err != nil {
		return nil, err
	}

	opts := &github.IssueListByRepoOptions{
		State:       "all",
		ListOptions: github.ListOptions{PerPage: 100},
	}

	var all []*platform.Issue

	err = WithRetry(func() error {
		all = nil
		opts.Page = 0

		for {
			issues, resp, err := c.client.Issues.ListByRepo(ctx, owner, name, opts)
			if err != nil {
				return wrapErr(err, fmt.Sprintf("issues of %s", repo))
			}
			for _, issue := range issues {
				if issue.IsPullRequest() {
					continue
				}
				all = append(all, convertIssue(issue))
			}
			if resp.NextPage == 0 {
				break
			}
			opts.Page = resp.NextPage
		}
		return nil
	}, DefaultRetryConfig())

	return all, err
}

// GetIssue fetches a single issue.
func (c *Client) GetIssue(ctx context.Context, repo string, number int) (*platform.Issue, error) {
	owner, name, err := splitRepo(repo)
	if err != nil {
		return nil, err
	}

	var issue *github.Issue
	err = WithRetry(func() error {
		var err error
		issue, _, err = c.client.Issues.Get(ctx, owner, name, number)
		return wrapErr(err, fmt.Sprintf("issue %s#%d", repo, number))
	}, DefaultRetryConfig())
	if err != nil {
		return nil, err
	}

	return convertIssue(issue), nil
}

// CreateIssue creates an issue with the requested labels.
func (c *Client) CreateIssue(ctx context.Context, repo string, req platform.IssueCreateRequest) (*platform.Issue, error) {
	owner, name, err := splitRepo(repo)
	if err != nil {
		return nil, err
	}

	request := &github.IssueRequest{
		Title: github.String(req.Title),
		Body:  github.String(req.Body),
	}
	if len(req.Labels) > 0 {
		labels := labelNames(req.Labels)
		request.Labels = &labels
	}

	var issue *github.Issue
	err = WithRetry(func() error {
		var err error
		issue, _, err = c.client.Issues.Create(ctx, owner, name, request)
		return wrapErr(err, fmt.Sprintf("issue %q in %s", req.Title, repo))
	}, DefaultRetryConfig())
	if err != nil {
		return nil, err
	}

	return convertIssue(issue), nil
}

// UpdateIssue issues a partial issue update; nil fields stay untouched.
func (c *Client) UpdateIssue(ctx context.Context, repo string, number int, req platform.IssueUpdateRequest) (*platform.Issue, error) {
	owner, name, err := splitRepo(repo)
	if err != nil {
		return nil, err
	}

	var issue *github.Issue
	err = WithRetry(func() error {
		var err error
		issue, _, err = c.client.Issues.Edit(ctx, owner, name, number, &github.IssueRequest{
			Title: req.Title,
			Body:  req.Body,
			State: req.State,
		})
		return wrapErr(err, fmt.Sprintf("issue %s#%d", repo, number))
	}, DefaultRetryConfig())
	if err != nil {
		return nil, err
	}

	return convertIssue(issue), nil
}

// ListRepoLabels fetches the repository-scope label set.
func (c *Client) ListRepoLabels(ctx context.Context, repo string) ([]*platform.Label, error) {
	owner, name, err := splitRepo(repo)
	if err != nil {
		return nil, err
	}

	opts := &github.ListOptions{PerPage: 100}

	var all []*platform.Label

	err = WithRetry(func() error {
		all = nil
		opts.Page = 0

		for {
			labels, resp, err := c.client.Issues.ListLabels(ctx, owner, name, opts)
			if err != nil {
				return wrapErr(err, fmt.Sprintf("labels of %s", repo))
			}
			for _, label := range labels {
				all = append(all, &platform.Label{
					ID:   label.GetID(),
					Name: label.GetName(),
				})
			}
			if resp.NextPage == 0 {
				break
			}
			opts.Page = resp.NextPage
		}
		return nil
	}, DefaultRetryConfig())

	return all, err
}

// ListOrgLabels fetches the organization-scope label set. GitHub has no
// organization labels, so the lookup is reported as unsupported; the
// reconciliation layer degrades this to an empty set.
func (c *Client) ListOrgLabels(_ context.Context, owner string) ([]*platform.Label, error) {
	return nil, &platform.RemoteError{
		StatusCode: http.StatusNotFound,
		Resource:   fmt.Sprintf("organization labels of %s", owner),
		Message:    "organization labels are not supported",
	}
}

// SetIssueLabels replaces the full label set of an issue.
func (c *Client) SetIssueLabels(ctx context.Context, repo string, number int, labels []*platform.Label) error {
	owner, name, err := splitRepo(repo)
	if err != nil {
		return err
	}

	names := labelNames(labels)
	return WithRetry(func() error {
		_, _, err := c.client.Issues.ReplaceLabelsForIssue(ctx, owner, name, number, names)
		return wrapErr(err, fmt.Sprintf("labels on %s#%d", repo, number))
	}, DefaultRetryConfig())
}

// UnassignLabel removes a label from an issue or pull request.
func (c *Client) UnassignLabel(ctx context.Context, repo string, number int, label string) error {
	owner, name, err := splitRepo(repo)
	if err != nil {
		return err
	}

	return WithRetry(func() error {
		_, err := c.client.Issues.RemoveLabelForIssue(ctx, owner, name, number, label)
		return wrapErr(err, fmt.Sprintf("label %q on %s#%d", label, repo, number))
	}, DefaultRetryConfig())
}

// ListComments fetches every comment on an issue or pull request.
func (c *Client) ListComments(ctx context.Context, repo string, number int) ([]*platform.Comment, error) {
	owner, name, err := splitRepo(repo)
	if err != nil {
		return nil, err
	}

	opts := &github.IssueListCommentsOptions{
		ListOptions: github.ListOptions{PerPage: 100},
	}

	var all []*platform.Comment

	err = WithRetry(func() error {
		all = nil
		opts.Page = 0

		for {
			comments, resp, err := c.client.Issues.ListComments(ctx, owner, name, number, opts)
			if err != nil {
				return wrapErr(err, fmt.Sprintf("comments on %s#%d", repo, number))
			}
			for _, comment := range comments {
				all = append(all, &platform.Comment{
					ID:   comment.GetID(),
					Body: comment.GetBody(),
				})
			}
			if resp.NextPage == 0 {
				break
			}
			opts.Page = resp.NextPage
		}
		return nil
	}, DefaultRetryConfig())

	return all, err
}

// CreateComment adds a comment to an issue or pull request.
func (c *Client) CreateComment(ctx context.Context, repo string, number int, body string) (*platform.Comment, error) {
	owner, name, err := splitRepo(repo)
	if err != nil {
		return nil, err
	}

	var comment *github.IssueComment
	err = WithRetry(func() error {
		var err error
		comment, _, err = c.client.Issues.CreateComment(ctx, owner, name, number, &github.IssueComment{
			Body: github.String(body),
		})
		return wrapErr(err, fmt.Sprintf("comment on %s#%d", repo, number))
	}, DefaultRetryConfig())
	if err != nil {
		return nil, err
	}

	return &platform.Comment{ID: comment.GetID(), Body: comment.GetBody()}, nil
}

// UpdateComment replaces a comment body.
func (c *Client) UpdateComment(ctx context.Context, repo string, id int64, body string) (*platform.Comment, error) {
	owner, name, err := splitRepo(repo)
	if err != nil {
		return nil, err
	}

	var comment *github.IssueComment
	err = WithRetry(func() error {
		var err error
		comment, _, err = c.client.Issues.EditComment(ctx, owner, name, id, &github.IssueComment{
			Body: github.String(body),
		})
		return wrapErr(err, fmt.Sprintf("comment %d in %s", id, repo))
	}, DefaultRetryConfig())
	if err != nil {
		return nil, err
	}

	return &platform.Comment{ID: comment.GetID(), Body: comment.GetBody()}, nil
}

// DeleteComment removes a comment.
func (c *Client) DeleteComment(ctx context.Context, repo string, id int64) error {
	owner, name, err := splitRepo(repo)
	if err != nil {
		return err
	}

	return WithRetry(func() error {
		_, err := c.client.Issues.DeleteComment(ctx, owner, name, id)
		return wrapErr(err, fmt.Sprintf("comment %d in %s", id, repo))
	}, DefaultRetryConfig())
}

// CreateCommitStatus creates a named status check on a commit.
func (c *Client) CreateCommitStatus(ctx context.Context, repo, sha string, status platform.CommitStatus) error {
	owner, name, err := splitRepo(repo)
	if err != nil {
		return err
	}

	repoStatus := &github.RepoStatus{
		State:       github.String(status.State),
		Context:     github.String(status.Context),
		Description: github.String(status.Description),
	}
	if status.TargetURL != "" {
		repoStatus.TargetURL = github.String(status.TargetURL)
	}

	return WithRetry(func() error {
		_, _, err := c.client.Repositories.CreateStatus(ctx, owner, name, sha, repoStatus)
		return wrapErr(err, fmt.Sprintf("status %q on %s@%s", status.Context, repo, sha))
	}, DefaultRetryConfig())
}

// GetCombinedStatus fetches the remote-computed aggregate status of a branch.
func (c *Client) GetCombinedStatus(ctx context.Context, repo, branch string) (*platform.CombinedStatus, error) {
	owner, name, err := splitRepo(repo)
	if err != nil {
		return nil, err
	}

	opts := &github.ListOptions{PerPage: 100}

	var combined *platform.CombinedStatus

	err = WithRetry(func() error {
		combined = nil
		opts.Page = 0

		for {
			status, resp, err := c.client.Repositories.GetCombinedStatus(ctx, owner, name, branch, opts)
			if err != nil {
				return wrapErr(err, fmt.Sprintf("combined status of %s@%s", repo, branch))
			}
			if combined == nil {
				combined = &platform.CombinedStatus{
					State: status.GetState(),
					Sha:   status.GetSHA(),
				}
			}
			for _, s := range status.Statuses {
				combined.Statuses = append(combined.Statuses, platform.CommitStatus{
					Context:     s.GetContext(),
					State:       s.GetState(),
					Description: s.GetDescription(),
					TargetURL:   s.GetTargetURL(),
				})
			}
			if resp.NextPage == 0 {
				break
			}
			opts.Page = resp.NextPage
		}
		return nil
	}, DefaultRetryConfig())
	if err != nil {
		return nil, err
	}

	return combined, nil
}

// AddAssignees assigns users to an issue or pull request.
func (c *Client) AddAssignees(ctx context.Context, repo string, number int, assignees []string) error {
	owner, name, err := splitRepo(repo)
	if err != nil {
		return err
	}

	return WithRetry(func() error {
		_, _, err := c.client.Issues.AddAssignees(ctx, owner, name, number, assignees)
		return wrapErr(err, fmt.Sprintf("assignees on %s#%d", repo, number))
	}, DefaultRetryConfig())
}

// AddReviewers requests reviews on a pull request.
func (c *Client) AddReviewers(ctx context.Context, repo string, number int, reviewers []string) error {
	owner, name, err := splitRepo(repo)
	if err != nil {
		return err
	}

	return WithRetry(func() error {
		_, _, err := c.client.PullRequests.RequestReviewers(ctx, owner, name, number, github.ReviewersRequest{
			Reviewers: reviewers,
		})
		return wrapErr(err, fmt.Sprintf("reviewers on %s#%d", repo, number))
	}, DefaultRetryConfig())
}

// splitRepo splits an owner/name repository identifier.
func splitRepo(repo string) (string, string, error) {
	owner, name, ok := strings.Cut(repo, "/")
	if !ok || owner == "" || name == "" {
		return "", "", fmt.Errorf("invalid repository identifier %q, expected owner/name", repo)
	}
	return owner, name, nil
}

// labelNames extracts the names of a resolved label set for the wire call.
func labelNames(labels []*platform.Label) []string {
	names := make([]string, 0, len(labels))
	for _, l := range labels {
		names = append(names, l.Name)
	}
	return names
}

// mergeMethodValue translates the internal merge vocabulary into GitHub's.
// GitHub offers no distinct rebase-with-merge-commit method, so it degrades
// to rebase.
func mergeMethodValue(method platform.MergeMethod) string {
	switch method {
	case platform.MergeRebase, platform.MergeRebaseMerge:
		return "rebase"
	case platform.MergeSquash:
		return "squash"
	default:
		return "merge"
	}
}

// wrapErr translates a go-github error into a platform.RemoteError carrying
// the HTTP status code, so callers can branch on not-found and conflict.
func wrapErr(err error, resource string) error {
	if err == nil {
		return nil
	}

	var ghErr *github.ErrorResponse
	if errors.As(err, &ghErr) && ghErr.Response != nil {
		return &platform.RemoteError{
			StatusCode: ghErr.Response.StatusCode,
			Resource:   resource,
			Message:    ghErr.Message,
			Cause:      err,
		}
	}

	var rateErr *github.RateLimitError
	if errors.As(err, &rateErr) {
		return &platform.RemoteError{
			StatusCode: http.StatusTooManyRequests,
			Resource:   resource,
			Message:    fmt.Sprintf("rate limit exceeded, resets at %v", rateErr.Rate.Reset.Time),
			Cause:      err,
		}
	}

	return fmt.Errorf("%s: %w", resource, err)
}

// normalizeCreateConflict rewrites the remote's "already exists" rejection of
// a pull request creation (a 422 here) to a 409, the status the
// reconciliation layer's conflict recovery branches on.
func normalizeCreateConflict(err error) error {
	var re *platform.RemoteError
	if errors.As(err, &re) &&
		re.StatusCode == http.StatusUnprocessableEntity &&
		strings.Contains(strings.ToLower(re.Message+errText(re.Cause)), "already exists") {
		re.StatusCode = http.StatusConflict
	}
	return err
}

func errText(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
