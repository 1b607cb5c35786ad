package platform

import (
	"context"
	"fmt"
)

// prs returns the session's pull request collection, populating the PR cache
// on first use with every PR of the repository reduced to its local
// representation.
func (s *Session) prs(ctx context.Context) ([]*Pr, error) {
	return s.prCache.get(ctx, func(ctx context.Context) ([]*Pr, error) {
		all, err := s.client.ListPrs(ctx, s.repo)
		if err != nil {
			return nil, fmt.Errorf("fetching pull requests for %s: %w", s.repo, err)
		}
		visible := make([]*Pr, 0, len(all))
		for _, pr := range all {
			if s.visiblePr(pr) {
				visible = append(visible, pr)
			}
		}
		return visible, nil
	})
}

// visiblePr applies the local-representation rule: a PR whose base or head
// branch reference is missing, or whose author does not match the automation
// identity when that identity is known, is invisible to all reconciliation
// operations.
func (s *Session) visiblePr(pr *Pr) bool {
	if pr.SourceBranch == "" || pr.TargetBranch == "" {
		return false
	}
	if u := s.platform.user; u != nil && pr.Author != "" && pr.Author != u.Login {
		return false
	}
	return true
}

// FindPrOptions selects a pull request by source branch, optional title and
// desired state expression (exact, "all" or "!state"; defaults to "all").
type FindPrOptions struct {
	Branch string
	Title  string
	State  PrState
}

// FindPr scans the PR cache for the first pull request originating from the
// session repository that matches the given branch, state and optional
// title. Zero matches is not an error; the result is simply nil.
func (s *Session) FindPr(ctx context.Context, opts FindPrOptions) (*Pr, error) {
	state := opts.State
	if state == "" {
		state = PrStateAll
	}
	prs, err := s.prs(ctx)
	if err != nil {
		return nil, err
	}
	for _, pr := range prs {
		if pr.SourceRepo != s.repo {
			continue
		}
		if pr.SourceBranch != opts.Branch {
			continue
		}
		if !MatchesState(pr.State, state) {
			continue
		}
		if opts.Title != "" && pr.Title != opts.Title {
			continue
		}
		return pr, nil
	}
	return nil, nil
}

// GetPr returns a pull request by number, from cache when present, otherwise
// by a direct fetch appended to an already-populated cache. A remote 404 or
// a PR failing the visibility rule yields nil, not an error.
func (s *Session) GetPr(ctx context.Context, number int) (*Pr, error) {
	if s.prCache.isPopulated() {
		prs, err := s.prs(ctx)
		if err != nil {
			return nil, err
		}
		for _, pr := range prs {
			if pr.Number == number {
				return pr, nil
			}
		}
	}
	pr, err := s.client.GetPr(ctx, s.repo, number)
	if err != nil {
		if IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("fetching pull request #%d: %w", number, err)
	}
	if !s.visiblePr(pr) {
		return nil, nil
	}
	s.prCache.add(pr)
	return pr, nil
}

// CreatePrOptions is the desired state for a new pull request.
type CreatePrOptions struct {
	SourceBranch string
	TargetBranch string
	Title        string
	Body         string
	Labels       []string
}

// CreatePr creates a pull request and appends it to a populated PR cache.
//
// If the create call reports a conflict, the remote already has a
// non-deletable PR object for that branch pairing (typically a PR that was
// never properly closed when its branch was deleted). Recovery runs exactly
// once: invalidate the PR cache, re-find the open PR for the branch, sync
// title and body if they differ, and return it. When recovery finds nothing
// the original conflict error propagates unchanged.
func (s *Session) CreatePr(ctx context.Context, opts CreatePrOptions) (*Pr, error) {
	target := opts.TargetBranch
	if target == "" {
		target = s.defaultBranch
	}
	labels := s.resolveLabels(ctx, opts.Labels)

	pr, err := s.client.CreatePr(ctx, s.repo, PrCreateRequest{
		SourceBranch: opts.SourceBranch,
		TargetBranch: target,
		Title:        opts.Title,
		Body:         opts.Body,
		Labels:       labels,
	})
	if err == nil {
		s.prCache.add(pr)
		s.logger.Info("pull request created", "pr", pr.Number, "branch", opts.SourceBranch)
		return pr, nil
	}
	if !IsConflict(err) {
		return nil, fmt.Errorf("creating pull request for %s: %w", opts.SourceBranch, err)
	}

	s.logger.Warn("pull request already exists for branch, attempting recovery",
		"branch", opts.SourceBranch)
	s.prCache.invalidate()
	existing, findErr := s.FindPr(ctx, FindPrOptions{Branch: opts.SourceBranch, State: PrStateOpen})
	if findErr != nil || existing == nil {
		return nil, fmt.Errorf("creating pull request for %s: %w", opts.SourceBranch, err)
	}
	if existing.Title != opts.Title || existing.Body != opts.Body {
		if err := s.UpdatePr(ctx, existing.Number, UpdatePrOptions{
			Title: opts.Title,
			Body:  &opts.Body,
		}); err != nil {
			return nil, err
		}
	}
	return existing, nil
}

// UpdatePrOptions is a partial pull request update. Body and State are left
// unspecified on the remote side when nil/empty.
type UpdatePrOptions struct {
	Title string
	Body  *string
	State PrState
}

// UpdatePr issues a partial update and mirrors it into the cached entry.
func (s *Session) UpdatePr(ctx context.Context, number int, opts UpdatePrOptions) error {
	req := PrUpdateRequest{Title: &opts.Title, Body: opts.Body}
	if opts.State != "" {
		state := opts.State
		req.State = &state
	}
	if _, err := s.client.UpdatePr(ctx, s.repo, number, req); err != nil {
		return fmt.Errorf("updating pull request #%d: %w", number, err)
	}
	s.patchCachedPr(number, func(pr *Pr) {
		pr.Title = opts.Title
		if opts.Body != nil {
			pr.Body = *opts.Body
		}
		if opts.State != "" {
			pr.State = opts.State
		}
	})
	return nil
}

// MergePr merges a pull request using the session's configured merge method.
// Merge failure is an expected, recoverable outcome (conflicts, branch
// protection), so it reports false rather than an error.
func (s *Session) MergePr(ctx context.Context, number int) bool {
	if err := s.client.MergePr(ctx, s.repo, number, s.mergeMethod); err != nil {
		s.logger.Warn("could not merge pull request", "pr", number, "error", err)
		return false
	}
	s.patchCachedPr(number, func(pr *Pr) {
		pr.State = PrStateMerged
	})
	return true
}

// AddAssignees assigns users to a pull request or issue.
func (s *Session) AddAssignees(ctx context.Context, number int, assignees []string) error {
	if err := s.client.AddAssignees(ctx, s.repo, number, assignees); err != nil {
		return fmt.Errorf("adding assignees to #%d: %w", number, err)
	}
	s.patchCachedPr(number, func(pr *Pr) {
		pr.HasAssignees = true
	})
	return nil
}

// AddReviewers requests reviews on a pull request.
func (s *Session) AddReviewers(ctx context.Context, number int, reviewers []string) error {
	if err := s.client.AddReviewers(ctx, s.repo, number, reviewers); err != nil {
		return fmt.Errorf("adding reviewers to #%d: %w", number, err)
	}
	return nil
}

// patchCachedPr applies a mutation to the cached PR entry so the cache
// reflects every change this layer itself has performed since population.
func (s *Session) patchCachedPr(number int, patch func(*Pr)) {
	s.prCache.mu.Lock()
	defer s.prCache.mu.Unlock()
	if !s.prCache.populated {
		return
	}
	for _, pr := range s.prCache.items {
		if pr.Number == number {
			patch(pr)
			return
		}
	}
}
