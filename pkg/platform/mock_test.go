package platform

import (
	"context"
	"testing"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockAPIClient is a mock implementation of APIClient for testing.
type MockAPIClient struct {
	mock.Mock
}

func (m *MockAPIClient) GetUser(ctx context.Context) (*User, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*User), args.Error(1)
}

func (m *MockAPIClient) GetVersion(ctx context.Context) (string, error) {
	args := m.Called(ctx)
	return args.String(0), args.Error(1)
}

func (m *MockAPIClient) SearchRepos(ctx context.Context, owner string) ([]*Repo, error) {
	args := m.Called(ctx, owner)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*Repo), args.Error(1)
}

func (m *MockAPIClient) GetRepo(ctx context.Context, repo string) (*Repo, error) {
	args := m.Called(ctx, repo)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Repo), args.Error(1)
}

func (m *MockAPIClient) ListPrs(ctx context.Context, repo string) ([]*Pr, error) {
	args := m.Called(ctx, repo)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*Pr), args.Error(1)
}

func (m *MockAPIClient) GetPr(ctx context.Context, repo string, number int) (*Pr, error) {
	args := m.Called(ctx, repo, number)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Pr), args.Error(1)
}

func (m *MockAPIClient) CreatePr(ctx context.Context, repo string, req PrCreateRequest) (*Pr, error) {
	args := m.Called(ctx, repo, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Pr), args.Error(1)
}

func (m *MockAPIClient) UpdatePr(ctx context.Context, repo string, number int, req PrUpdateRequest) (*Pr, error) {
	args := m.Called(ctx, repo, number, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Pr), args.Error(1)
}

func (m *MockAPIClient) MergePr(ctx context.Context, repo string, number int, method MergeMethod) error {
	args := m.Called(ctx, repo, number, method)
	return args.Error(0)
}

func (m *MockAPIClient) ListIssues(ctx context.Context, repo string) ([]*Issue, error) {
	args := m.Called(ctx, repo)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*Issue), args.Error(1)
}

func (m *MockAPIClient) GetIssue(ctx context.Context, repo string, number int) (*Issue, error) {
	args := m.Called(ctx, repo, number)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Issue), args.Error(1)
}

func (m *MockAPIClient) CreateIssue(ctx context.Context, repo string, req IssueCreateRequest) (*Issue, error) {
	args := m.Called(ctx, repo, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Issue), args.Error(1)
}

func (m *MockAPIClient) UpdateIssue(ctx context.Context, repo string, number int, req IssueUpdateRequest) (*Issue, error) {
	args := m.Called(ctx, repo, number, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Issue), args.Error(1)
}

func (m *MockAPIClient) ListRepoLabels(ctx context.Context, repo string) ([]*Label, error) {
	args := m.Called(ctx, repo)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*Label), args.Error(1)
}

func (m *MockAPIClient) ListOrgLabels(ctx context.Context, owner string) ([]*Label, error) {
	args := m.Called(ctx, owner)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*Label), args.Error(1)
}

func (m *MockAPIClient) SetIssueLabels(ctx context.Context, repo string, number int, labels []*Label) error {
	args := m.Called(ctx, repo, number, labels)
	return args.Error(0)
}

func (m *MockAPIClient) UnassignLabel(ctx context.Context, repo string, number int, label string) error {
	args := m.Called(ctx, repo, number, label)
	return args.Error(0)
}

func (m *MockAPIClient) ListComments(ctx context.Context, repo string, number int) ([]*Comment, error) {
	args := m.Called(ctx, repo, number)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*Comment), args.Error(1)
}

func (m *MockAPIClient) CreateComment(ctx context.Context, repo string, number int, body string) (*Comment, error) {
	args := m.Called(ctx, repo, number, body)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Comment), args.Error(1)
}

func (m *MockAPIClient) UpdateComment(ctx context.Context, repo string, id int64, body string) (*Comment, error) {
	args := m.Called(ctx, repo, id, body)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Comment), args.Error(1)
}

func (m *MockAPIClient) DeleteComment(ctx context.Context, repo string, id int64) error {
	args := m.Called(ctx, repo, id)
	return args.Error(0)
}

func (m *MockAPIClient) CreateCommitStatus(ctx context.Context, repo, sha string, status CommitStatus) error {
	args := m.Called(ctx, repo, sha, status)
	return args.Error(0)
}

func (m *MockAPIClient) GetCombinedStatus(ctx context.Context, repo, branch string) (*CombinedStatus, error) {
	args := m.Called(ctx, repo, branch)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*CombinedStatus), args.Error(1)
}

func (m *MockAPIClient) AddAssignees(ctx context.Context, repo string, number int, assignees []string) error {
	args := m.Called(ctx, repo, number, assignees)
	return args.Error(0)
}

func (m *MockAPIClient) AddReviewers(ctx context.Context, repo string, number int, reviewers []string) error {
	args := m.Called(ctx, repo, number, reviewers)
	return args.Error(0)
}

// MockGitClient is a mock implementation of GitClient for testing.
type MockGitClient struct {
	mock.Mock
}

func (m *MockGitClient) BranchCommit(branch string) (string, error) {
	args := m.Called(branch)
	return args.String(0), args.Error(1)
}

func (m *MockGitClient) InitClone(url string, submodules bool) error {
	args := m.Called(url, submodules)
	return args.Error(0)
}

// usableRepo returns repository metadata that passes session validation.
func usableRepo() *Repo {
	return &Repo{
		FullName:      "test-org/test-repo",
		DefaultBranch: "main",
		CloneURL:      "https://git.example.com/test-org/test-repo.git",
		Permissions:   RepoPermissions{Pull: true, Push: true},
		MergeMethods:  MergeCapabilities{Rebase: true, Squash: true, Merge: true},
	}
}

// newTestPlatform initializes a Platform against the mock client with a
// fixed automation identity.
func newTestPlatform(t *testing.T, client *MockAPIClient) *Platform {
	t.Helper()
	client.On("GetUser", mock.Anything).Return(&User{ID: 7, Login: "renovate-bot"}, nil).Once()
	client.On("GetVersion", mock.Anything).Return("1.22.0", nil).Once()

	p, err := InitPlatform(context.Background(), client, Options{
		Endpoint: "https://git.example.com",
		Token:    "test-token",
	})
	require.NoError(t, err)
	return p
}

// newTestSession initializes a session for test-org/test-repo.
func newTestSession(t *testing.T, client *MockAPIClient) *Session {
	t.Helper()
	p := newTestPlatform(t, client)
	client.On("GetRepo", mock.Anything, "test-org/test-repo").Return(usableRepo(), nil).Once()

	s, err := p.InitRepo(context.Background(), "test-org/test-repo", RepoOptions{})
	require.NoError(t, err)
	return s
}
