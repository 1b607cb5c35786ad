package platform

import "context"

// APIClient defines the stateless request/response surface the reconciliation
// layer consumes from the remote platform. Implementations own transport
// concerns: authentication, retries, pagination and rate limiting. Calls that
// fail remotely return a *RemoteError carrying the HTTP status code so that
// callers can branch on not-found (404) and conflict (409).
type APIClient interface {
	// Platform operations
	GetUser(ctx context.Context) (*User, error)
	GetVersion(ctx context.Context) (string, error)
	SearchRepos(ctx context.Context, owner string) ([]*Repo, error)
	GetRepo(ctx context.Context, repo string) (*Repo, error)

	// Pull request operations
	ListPrs(ctx context.Context, repo string) ([]*Pr, error)
	GetPr(ctx context.Context, repo string, number int) (*Pr, error)
	CreatePr(ctx context.Context, repo string, req PrCreateRequest) (*Pr, error)
	UpdatePr(ctx context.Context, repo string, number int, req PrUpdateRequest) (*Pr, error)
	MergePr(ctx context.Context, repo string, number int, method MergeMethod) error

	// Issue operations
	ListIssues(ctx context.Context, repo string) ([]*Issue, error)
	GetIssue(ctx context.Context, repo string, number int) (*Issue, error)
	CreateIssue(ctx context.Context, repo string, req IssueCreateRequest) (*Issue, error)
	UpdateIssue(ctx context.Context, repo string, number int, req IssueUpdateRequest) (*Issue, error)

	// Label operations
	ListRepoLabels(ctx context.Context, repo string) ([]*Label, error)
	ListOrgLabels(ctx context.Context, owner string) ([]*Label, error)
	SetIssueLabels(ctx context.Context, repo string, number int, labels []*Label) error
	UnassignLabel(ctx context.Context, repo string, number int, label string) error

	// Comment operations
	ListComments(ctx context.Context, repo string, number int) ([]*Comment, error)
	CreateComment(ctx context.Context, repo string, number int, body string) (*Comment, error)
	UpdateComment(ctx context.Context, repo string, id int64, body string) (*Comment, error)
	DeleteComment(ctx context.Context, repo string, id int64) error

	// Commit status operations
	CreateCommitStatus(ctx context.Context, repo, sha string, status CommitStatus) error
	GetCombinedStatus(ctx context.Context, repo, branch string) (*CombinedStatus, error)

	// Assignee and reviewer operations
	AddAssignees(ctx context.Context, repo string, number int, assignees []string) error
	AddReviewers(ctx context.Context, repo string, number int, reviewers []string) error
}

// GitClient is the local storage collaborator: it resolves branch names to
// commit ids and initializes working copies. The reconciliation layer never
// manipulates git objects itself.
type GitClient interface {
	BranchCommit(branch string) (string, error)
	InitClone(url string, submodules bool) error
}
