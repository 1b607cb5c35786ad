package platform

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func testPrs() []*Pr {
	return []*Pr{
		{
			Number:       1,
			State:        PrStateOpen,
			Title:        "Update dependency foo to v2",
			SourceBranch: "renovate/foo-2.x",
			SourceRepo:   "test-org/test-repo",
			TargetBranch: "main",
			Author:       "renovate-bot",
			CreatedAt:    time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		},
		{
			Number:       2,
			State:        PrStateClosed,
			Title:        "Update dependency bar to v3",
			SourceBranch: "renovate/bar-3.x",
			SourceRepo:   "test-org/test-repo",
			TargetBranch: "main",
			Author:       "renovate-bot",
			CreatedAt:    time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC),
		},
		{
			Number:       3,
			State:        PrStateOpen,
			Title:        "A human's pull request",
			SourceBranch: "feature/human",
			SourceRepo:   "test-org/test-repo",
			TargetBranch: "main",
			Author:       "some-human",
			CreatedAt:    time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
		},
	}
}

func TestFindPrByBranch(t *testing.T) {
	client := &MockAPIClient{}
	s := newTestSession(t, client)
	client.On("ListPrs", mock.Anything, "test-org/test-repo").Return(testPrs(), nil).Once()

	pr, err := s.FindPr(context.Background(), FindPrOptions{Branch: "renovate/foo-2.x"})

	require.NoError(t, err)
	require.NotNil(t, pr)
	assert.Equal(t, 1, pr.Number)
}

func TestFindPrStateMatching(t *testing.T) {
	client := &MockAPIClient{}
	s := newTestSession(t, client)
	client.On("ListPrs", mock.Anything, "test-org/test-repo").Return(testPrs(), nil).Once()

	pr, err := s.FindPr(context.Background(), FindPrOptions{
		Branch: "renovate/bar-3.x",
		State:  PrStateOpen,
	})
	require.NoError(t, err)
	assert.Nil(t, pr)

	pr, err = s.FindPr(context.Background(), FindPrOptions{
		Branch: "renovate/bar-3.x",
		State:  "!open",
	})
	require.NoError(t, err)
	require.NotNil(t, pr)
	assert.Equal(t, 2, pr.Number)
}

func TestFindPrTitleMismatch(t *testing.T) {
	client := &MockAPIClient{}
	s := newTestSession(t, client)
	client.On("ListPrs", mock.Anything, "test-org/test-repo").Return(testPrs(), nil).Once()

	pr, err := s.FindPr(context.Background(), FindPrOptions{
		Branch: "renovate/foo-2.x",
		Title:  "Some other title",
	})

	require.NoError(t, err)
	assert.Nil(t, pr)
}

func TestPrCacheHidesForeignAuthors(t *testing.T) {
	client := &MockAPIClient{}
	s := newTestSession(t, client)
	client.On("ListPrs", mock.Anything, "test-org/test-repo").Return(testPrs(), nil).Once()

	pr, err := s.FindPr(context.Background(), FindPrOptions{Branch: "feature/human"})

	require.NoError(t, err)
	assert.Nil(t, pr)
}

func TestGetPrFetchesDirectlyBeforePopulation(t *testing.T) {
	client := &MockAPIClient{}
	s := newTestSession(t, client)
	client.On("GetPr", mock.Anything, "test-org/test-repo", 1).Return(testPrs()[0], nil).Once()

	pr, err := s.GetPr(context.Background(), 1)

	require.NoError(t, err)
	require.NotNil(t, pr)
	assert.Equal(t, 1, pr.Number)
	client.AssertNotCalled(t, "ListPrs", mock.Anything, mock.Anything)
}

func TestGetPrUsesPopulatedCache(t *testing.T) {
	client := &MockAPIClient{}
	s := newTestSession(t, client)
	client.On("ListPrs", mock.Anything, "test-org/test-repo").Return(testPrs(), nil).Once()

	_, err := s.prs(context.Background())
	require.NoError(t, err)

	pr, err := s.GetPr(context.Background(), 2)

	require.NoError(t, err)
	require.NotNil(t, pr)
	assert.Equal(t, 2, pr.Number)
	client.AssertNotCalled(t, "GetPr", mock.Anything, mock.Anything, mock.Anything)
}

func TestGetPrNotFoundYieldsNil(t *testing.T) {
	client := &MockAPIClient{}
	s := newTestSession(t, client)
	client.On("GetPr", mock.Anything, "test-org/test-repo", 404).
		Return(nil, &RemoteError{StatusCode: 404, Message: "no such pull request"}).Once()

	pr, err := s.GetPr(context.Background(), 404)

	require.NoError(t, err)
	assert.Nil(t, pr)
}

func TestCreatePrAppendsToPopulatedCache(t *testing.T) {
	client := &MockAPIClient{}
	s := newTestSession(t, client)
	client.On("ListPrs", mock.Anything, "test-org/test-repo").Return(testPrs(), nil).Once()

	_, err := s.prs(context.Background())
	require.NoError(t, err)

	created := &Pr{
		Number:       10,
		State:        PrStateOpen,
		Title:        "Update dependency baz to v4",
		SourceBranch: "renovate/baz-4.x",
		SourceRepo:   "test-org/test-repo",
		TargetBranch: "main",
		Author:       "renovate-bot",
	}
	client.On("CreatePr", mock.Anything, "test-org/test-repo", mock.Anything).Return(created, nil).Once()

	pr, err := s.CreatePr(context.Background(), CreatePrOptions{
		SourceBranch: "renovate/baz-4.x",
		Title:        "Update dependency baz to v4",
		Body:         "bumps baz",
	})
	require.NoError(t, err)
	assert.Equal(t, 10, pr.Number)

	// Cache coherence: the new PR is findable without another fetch.
	found, err := s.FindPr(context.Background(), FindPrOptions{Branch: "renovate/baz-4.x"})
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, 10, found.Number)
	client.AssertNumberOfCalls(t, "ListPrs", 1)
}

func TestCreatePrDefaultsTargetBranch(t *testing.T) {
	client := &MockAPIClient{}
	s := newTestSession(t, client)

	created := &Pr{Number: 11, State: PrStateOpen, SourceBranch: "renovate/x", SourceRepo: "test-org/test-repo", TargetBranch: "main"}
	client.On("CreatePr", mock.Anything, "test-org/test-repo",
		mock.MatchedBy(func(req PrCreateRequest) bool { return req.TargetBranch == "main" })).
		Return(created, nil).Once()

	_, err := s.CreatePr(context.Background(), CreatePrOptions{SourceBranch: "renovate/x", Title: "x"})

	require.NoError(t, err)
	client.AssertExpectations(t)
}

func TestCreatePrDropsUnresolvableLabels(t *testing.T) {
	client := &MockAPIClient{}
	s := newTestSession(t, client)
	client.On("ListRepoLabels", mock.Anything, "test-org/test-repo").
		Return([]*Label{{ID: 1, Name: "dependencies"}}, nil).Once()
	client.On("ListOrgLabels", mock.Anything, "test-org").
		Return([]*Label{{ID: 2, Name: "security", Org: true}}, nil).Once()

	created := &Pr{Number: 12, State: PrStateOpen, SourceBranch: "renovate/y", SourceRepo: "test-org/test-repo", TargetBranch: "main"}
	client.On("CreatePr", mock.Anything, "test-org/test-repo",
		mock.MatchedBy(func(req PrCreateRequest) bool {
			return len(req.Labels) == 2 && req.Labels[0].ID == 1 && req.Labels[1].ID == 2
		})).
		Return(created, nil).Once()

	_, err := s.CreatePr(context.Background(), CreatePrOptions{
		SourceBranch: "renovate/y",
		Title:        "y",
		Labels:       []string{"dependencies", "security", "no-such-label"},
	})

	require.NoError(t, err)
	client.AssertExpectations(t)
}

func TestCreatePrConflictRecovery(t *testing.T) {
	client := &MockAPIClient{}
	s := newTestSession(t, client)

	conflict := &RemoteError{StatusCode: 409, Message: "pull request already exists"}
	client.On("CreatePr", mock.Anything, "test-org/test-repo", mock.Anything).Return(nil, conflict).Once()

	stale := &Pr{
		Number:       20,
		State:        PrStateOpen,
		Title:        "Old title",
		Body:         "old body",
		SourceBranch: "renovate/foo-2.x",
		SourceRepo:   "test-org/test-repo",
		TargetBranch: "main",
		Author:       "renovate-bot",
	}
	client.On("ListPrs", mock.Anything, "test-org/test-repo").Return([]*Pr{stale}, nil).Once()
	client.On("UpdatePr", mock.Anything, "test-org/test-repo", 20, mock.Anything).Return(stale, nil).Once()

	pr, err := s.CreatePr(context.Background(), CreatePrOptions{
		SourceBranch: "renovate/foo-2.x",
		Title:        "New title",
		Body:         "new body",
	})

	require.NoError(t, err)
	require.NotNil(t, pr)
	assert.Equal(t, 20, pr.Number)
	assert.Equal(t, "New title", pr.Title)
	assert.Equal(t, "new body", pr.Body)
	client.AssertNumberOfCalls(t, "UpdatePr", 1)
}

func TestCreatePrConflictRecoverySkipsUpdateWhenIdentical(t *testing.T) {
	client := &MockAPIClient{}
	s := newTestSession(t, client)

	conflict := &RemoteError{StatusCode: 409, Message: "pull request already exists"}
	client.On("CreatePr", mock.Anything, "test-org/test-repo", mock.Anything).Return(nil, conflict).Once()

	existing := &Pr{
		Number:       21,
		State:        PrStateOpen,
		Title:        "Same title",
		Body:         "same body",
		SourceBranch: "renovate/foo-2.x",
		SourceRepo:   "test-org/test-repo",
		TargetBranch: "main",
		Author:       "renovate-bot",
	}
	client.On("ListPrs", mock.Anything, "test-org/test-repo").Return([]*Pr{existing}, nil).Once()

	pr, err := s.CreatePr(context.Background(), CreatePrOptions{
		SourceBranch: "renovate/foo-2.x",
		Title:        "Same title",
		Body:         "same body",
	})

	require.NoError(t, err)
	assert.Equal(t, 21, pr.Number)
	client.AssertNotCalled(t, "UpdatePr", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestCreatePrConflictWithoutMatchPropagates(t *testing.T) {
	client := &MockAPIClient{}
	s := newTestSession(t, client)

	conflict := &RemoteError{StatusCode: 409, Message: "pull request already exists"}
	client.On("CreatePr", mock.Anything, "test-org/test-repo", mock.Anything).Return(nil, conflict).Once()
	client.On("ListPrs", mock.Anything, "test-org/test-repo").Return([]*Pr{}, nil).Once()

	_, err := s.CreatePr(context.Background(), CreatePrOptions{
		SourceBranch: "renovate/gone",
		Title:        "whatever",
	})

	require.Error(t, err)
	assert.True(t, IsConflict(err))
	// Recovery runs exactly once: no second create attempt.
	client.AssertNumberOfCalls(t, "CreatePr", 1)
}

func TestCreatePrNonConflictErrorPropagates(t *testing.T) {
	client := &MockAPIClient{}
	s := newTestSession(t, client)

	remoteErr := &RemoteError{StatusCode: 500, Message: "server error"}
	client.On("CreatePr", mock.Anything, "test-org/test-repo", mock.Anything).Return(nil, remoteErr).Once()

	_, err := s.CreatePr(context.Background(), CreatePrOptions{SourceBranch: "renovate/z", Title: "z"})

	require.Error(t, err)
	client.AssertNotCalled(t, "ListPrs", mock.Anything, mock.Anything)
}

func TestUpdatePrPatchesCache(t *testing.T) {
	client := &MockAPIClient{}
	s := newTestSession(t, client)
	client.On("ListPrs", mock.Anything, "test-org/test-repo").Return(testPrs(), nil).Once()

	_, err := s.prs(context.Background())
	require.NoError(t, err)

	client.On("UpdatePr", mock.Anything, "test-org/test-repo", 1, mock.Anything).
		Return(&Pr{Number: 1}, nil).Once()

	body := "fresh body"
	err = s.UpdatePr(context.Background(), 1, UpdatePrOptions{
		Title: "Fresh title",
		Body:  &body,
		State: PrStateClosed,
	})
	require.NoError(t, err)

	pr, err := s.GetPr(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, "Fresh title", pr.Title)
	assert.Equal(t, "fresh body", pr.Body)
	assert.Equal(t, PrStateClosed, pr.State)
}

func TestMergePrReportsOutcome(t *testing.T) {
	client := &MockAPIClient{}
	s := newTestSession(t, client)

	client.On("MergePr", mock.Anything, "test-org/test-repo", 1, MergeRebase).Return(nil).Once()
	assert.True(t, s.MergePr(context.Background(), 1))

	client.On("MergePr", mock.Anything, "test-org/test-repo", 2, MergeRebase).
		Return(&RemoteError{StatusCode: 405, Message: "not mergeable"}).Once()
	assert.False(t, s.MergePr(context.Background(), 2))
}
