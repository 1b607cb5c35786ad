package platform

import (
	"context"
	"fmt"
)

// BranchStatusOptions describes one named status check to publish on a
// branch head.
type BranchStatusOptions struct {
	Branch      string
	Context     string
	Description string
	State       BranchState
	TargetURL   string
}

// SetBranchStatus resolves the branch's current commit, creates a status
// entry under the given context and force-refreshes the combined-status
// cache so subsequent reads are consistent. Status signaling is best-effort:
// failures are logged and swallowed.
func (s *Session) SetBranchStatus(ctx context.Context, opts BranchStatusOptions) {
	if s.git == nil {
		s.logger.Warn("no git client configured, cannot set branch status", "branch", opts.Branch)
		return
	}
	sha, err := s.git.BranchCommit(opts.Branch)
	if err != nil {
		s.logger.Warn("could not resolve branch commit", "branch", opts.Branch, "error", err)
		return
	}
	err = s.client.CreateCommitStatus(ctx, s.repo, sha, CommitStatus{
		Context:     opts.Context,
		State:       remoteStatusValue(opts.State),
		Description: opts.Description,
		TargetURL:   opts.TargetURL,
	})
	if err != nil {
		s.logger.Warn("could not set branch status", "branch", opts.Branch, "error", err)
		return
	}

	s.statusMu.Lock()
	delete(s.statuses, opts.Branch)
	s.statusMu.Unlock()
	if _, err := s.combinedStatus(ctx, opts.Branch); err != nil {
		s.logger.Debug("could not refresh combined status", "branch", opts.Branch, "error", err)
	}
}

// GetBranchStatus fetches the combined commit status of a branch, reduced to
// green/yellow/red. A remote 404 signals that the branch was deleted or
// force-updated away and is reclassified as ErrRepositoryChanged.
func (s *Session) GetBranchStatus(ctx context.Context, branch string) (BranchState, error) {
	combined, err := s.combinedStatus(ctx, branch)
	if err != nil {
		if IsNotFound(err) {
			return "", fmt.Errorf("combined status for branch %s: %w", branch, ErrRepositoryChanged)
		}
		return "", fmt.Errorf("combined status for branch %s: %w", branch, err)
	}
	return mapBranchState(combined.State, s.logger), nil
}

// GetBranchStatusCheck returns the state of the named status check on a
// branch, or the zero BranchState when no check exists for that context. An
// unrecognized remote status value maps to yellow rather than failing.
func (s *Session) GetBranchStatusCheck(ctx context.Context, branch, statusContext string) (BranchState, error) {
	combined, err := s.combinedStatus(ctx, branch)
	if err != nil {
		return "", fmt.Errorf("combined status for branch %s: %w", branch, err)
	}
	for _, status := range combined.Statuses {
		if status.Context == statusContext {
			return mapBranchState(status.State, s.logger), nil
		}
	}
	return "", nil
}

// combinedStatus returns the memoized combined status for a branch, fetching
// it when absent.
func (s *Session) combinedStatus(ctx context.Context, branch string) (*CombinedStatus, error) {
	s.statusMu.Lock()
	cached, ok := s.statuses[branch]
	s.statusMu.Unlock()
	if ok {
		return cached, nil
	}

	combined, err := s.client.GetCombinedStatus(ctx, s.repo, branch)
	if err != nil {
		return nil, err
	}
	s.statusMu.Lock()
	s.statuses[branch] = combined
	s.statusMu.Unlock()
	return combined, nil
}
