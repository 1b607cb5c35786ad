package platform

import "time"

// PrState represents the lifecycle state of a pull request. Queries may also
// use the "all" wildcard or a "!state" negation, see MatchesState.
type PrState string

const (
	PrStateOpen   PrState = "open"
	PrStateClosed PrState = "closed"
	PrStateMerged PrState = "merged"
	PrStateAll    PrState = "all"
)

// MergeMethod is the internal merge-capability vocabulary. The remote
// platform's vocabulary is mapped onto it during repository initialization.
type MergeMethod string

const (
	MergeRebase      MergeMethod = "rebase"
	MergeRebaseMerge MergeMethod = "rebase-merge"
	MergeSquash      MergeMethod = "squash"
	MergeMerge       MergeMethod = "merge"
)

// BranchState is the reduced three-valued outcome of a branch's combined
// commit status. The zero value means "no status known".
type BranchState string

const (
	BranchStateGreen  BranchState = "green"
	BranchStateYellow BranchState = "yellow"
	BranchStateRed    BranchState = "red"
)

// User is the automation's own identity on the remote platform.
type User struct {
	ID    int64
	Login string
}

// Repo is the remote repository metadata relevant to session initialization.
type Repo struct {
	FullName      string
	DefaultBranch string
	CloneURL      string
	Archived      bool
	Mirror        bool
	Empty         bool
	Permissions   RepoPermissions
	MergeMethods  MergeCapabilities
}

// RepoPermissions is the access the automation identity holds on a repository.
type RepoPermissions struct {
	Pull bool
	Push bool
}

// MergeCapabilities records which merge methods the remote permits.
type MergeCapabilities struct {
	Rebase      bool
	RebaseMerge bool
	Squash      bool
	Merge       bool
}

// Pr is the local representation of a remote pull request.
type Pr struct {
	Number       int
	State        PrState
	Title        string
	Body         string
	SourceBranch string
	SourceRepo   string
	TargetBranch string
	Sha          string
	Author       string
	CreatedAt    time.Time
	Mergeable    bool
	HasAssignees bool
}

// Issue is the local representation of a remote issue.
type Issue struct {
	Number    int
	State     string // "open" or "closed"
	Title     string
	Body      string
	Labels    []*Label
	CreatedAt time.Time
}

// Comment is an issue or pull request comment.
type Comment struct {
	ID   int64
	Body string
}

// Label is a repository- or organization-scope label. The effective label set
// for a repository is the union of both scopes.
type Label struct {
	ID   int64
	Name string
	Org  bool
}

// CommitStatus is one named status check on a commit.
type CommitStatus struct {
	Context     string
	State       string
	Description string
	TargetURL   string
}

// CombinedStatus is the remote-computed aggregate of all status checks on a
// branch head.
type CombinedStatus struct {
	State    string
	Sha      string
	Statuses []CommitStatus
}

// VulnerabilityAlert is a security alert on a repository dependency. The
// layer does not support fetching these; GetVulnerabilityAlerts always
// reports an empty set.
type VulnerabilityAlert struct {
	PackageName        string
	VulnerableVersions string
	FixedVersion       string
}

// EnsureIssueOutcome reports what EnsureIssue did. The zero value means no
// remote mutation happened, either because none was needed or because a
// remote error was logged and swallowed.
type EnsureIssueOutcome string

const (
	IssueNoop    EnsureIssueOutcome = ""
	IssueCreated EnsureIssueOutcome = "created"
	IssueUpdated EnsureIssueOutcome = "updated"
)

// PrCreateRequest is the payload for creating a pull request.
type PrCreateRequest struct {
	SourceBranch string
	TargetBranch string
	Title        string
	Body         string
	Labels       []*Label
}

// PrUpdateRequest is a partial update; nil fields are left unspecified on the
// remote side rather than cleared.
type PrUpdateRequest struct {
	Title *string
	Body  *string
	State *PrState
}

// IssueCreateRequest is the payload for creating an issue.
type IssueCreateRequest struct {
	Title  string
	Body   string
	Labels []*Label
}

// IssueUpdateRequest is a partial update; nil fields are left unspecified.
type IssueUpdateRequest struct {
	Title *string
	Body  *string
	State *string
}
