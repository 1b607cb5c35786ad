package platform

import (
	"context"
	"fmt"
)

// issues returns the session's issue collection, populating the issue cache
// on first use.
func (s *Session) issues(ctx context.Context) ([]*Issue, error) {
	return s.issueCache.get(ctx, func(ctx context.Context) ([]*Issue, error) {
		issues, err := s.client.ListIssues(ctx, s.repo)
		if err != nil {
			return nil, fmt.Errorf("fetching issues for %s: %w", s.repo, err)
		}
		return issues, nil
	})
}

// EnsureIssueOptions is the desired state for one logical issue, identified
// by title. ReuseTitle supports title migrations: when no issue matches
// Title, issues matching ReuseTitle are adopted instead of duplicated.
type EnsureIssueOptions struct {
	Title      string
	ReuseTitle string
	Body       string
	Labels     []string

	// ShouldReOpen reopens a closed match; Once leaves closed matches
	// closed and reports a no-op instead.
	ShouldReOpen bool
	Once         bool
}

// EnsureIssue converges the repository on exactly one issue with the desired
// title, body, labels and state. It never returns an error: remote failures
// are logged and surface as IssueNoop, so the only observable outcomes are
// created, updated or nothing.
func (s *Session) EnsureIssue(ctx context.Context, opts EnsureIssueOptions) EnsureIssueOutcome {
	outcome, err := s.ensureIssue(ctx, opts)
	if err != nil {
		s.logger.Warn("could not ensure issue", "title", opts.Title, "error", err)
		return IssueNoop
	}
	return outcome
}

func (s *Session) ensureIssue(ctx context.Context, opts EnsureIssueOptions) (EnsureIssueOutcome, error) {
	body := MassageMarkdown(opts.Body)

	all, err := s.issues(ctx)
	if err != nil {
		return IssueNoop, err
	}
	matches := issuesByTitle(all, opts.Title)
	if len(matches) == 0 && opts.ReuseTitle != "" {
		matches = issuesByTitle(all, opts.ReuseTitle)
		if len(matches) > 0 {
			s.logger.Debug("reusing issue under previous title", "reuseTitle", opts.ReuseTitle)
		}
	}

	if len(matches) == 0 {
		created, err := s.client.CreateIssue(ctx, s.repo, IssueCreateRequest{
			Title:  opts.Title,
			Body:   body,
			Labels: s.resolveLabels(ctx, opts.Labels),
		})
		if err != nil {
			return IssueNoop, fmt.Errorf("creating issue %q: %w", opts.Title, err)
		}
		s.logger.Info("issue created", "issue", created.Number, "title", opts.Title)
		// The created object's label expansion may differ from what was
		// requested, so force a full refetch on next access.
		s.issueCache.invalidate()
		return IssueCreated, nil
	}

	active := pickActiveIssue(matches)
	if active.State != "open" && opts.Once {
		s.logger.Debug("issue already closed, skipping", "title", opts.Title)
		return IssueNoop, nil
	}

	// Duplicate suppression: at most one open issue per logical title may
	// remain after this operation.
	for _, issue := range matches {
		if issue.Number != active.Number && issue.State == "open" {
			s.logger.Warn("closing duplicate issue", "issue", issue.Number)
			if err := s.closeIssue(ctx, issue); err != nil {
				return IssueNoop, err
			}
		}
	}

	if active.Title == opts.Title && active.Body == body && active.State == "open" {
		s.logger.Debug("issue already up to date", "issue", active.Number)
		return IssueNoop, nil
	}

	state := active.State
	if opts.ShouldReOpen {
		state = "open"
	}
	if _, err := s.client.UpdateIssue(ctx, s.repo, active.Number, IssueUpdateRequest{
		Title: &opts.Title,
		Body:  &body,
		State: &state,
	}); err != nil {
		return IssueNoop, fmt.Errorf("updating issue #%d: %w", active.Number, err)
	}

	desiredLabels := s.resolveLabels(ctx, opts.Labels)
	if !sameLabelIDs(desiredLabels, active.Labels) {
		if err := s.client.SetIssueLabels(ctx, s.repo, active.Number, desiredLabels); err != nil {
			return IssueNoop, fmt.Errorf("replacing labels on issue #%d: %w", active.Number, err)
		}
		active.Labels = desiredLabels
	}

	active.Title = opts.Title
	active.Body = body
	active.State = state
	s.logger.Info("issue updated", "issue", active.Number, "title", opts.Title)
	return IssueUpdated, nil
}

// pickActiveIssue chooses the issue the operation converges on: the open one
// if any, otherwise the most recently created match.
func pickActiveIssue(matches []*Issue) *Issue {
	active := matches[0]
	for _, issue := range matches[1:] {
		if issue.State == "open" && active.State != "open" {
			active = issue
			continue
		}
		if active.State != "open" && issue.CreatedAt.After(active.CreatedAt) {
			active = issue
		}
	}
	return active
}

func issuesByTitle(issues []*Issue, title string) []*Issue {
	var matches []*Issue
	for _, issue := range issues {
		if issue.Title == title {
			matches = append(matches, issue)
		}
	}
	return matches
}

// closeIssue closes an issue remotely and mirrors the state into the cache.
func (s *Session) closeIssue(ctx context.Context, issue *Issue) error {
	state := "closed"
	if _, err := s.client.UpdateIssue(ctx, s.repo, issue.Number, IssueUpdateRequest{
		State: &state,
	}); err != nil {
		return fmt.Errorf("closing issue #%d: %w", issue.Number, err)
	}
	issue.State = "closed"
	return nil
}

// EnsureIssueClosing closes every open issue matching title. It is a no-op
// when none are found.
func (s *Session) EnsureIssueClosing(ctx context.Context, title string) error {
	all, err := s.issues(ctx)
	if err != nil {
		return err
	}
	for _, issue := range all {
		if issue.State == "open" && issue.Title == title {
			if err := s.closeIssue(ctx, issue); err != nil {
				return err
			}
			s.logger.Debug("issue closed", "issue", issue.Number)
		}
	}
	return nil
}

// FindIssue returns the open issue with the given title, or nil.
func (s *Session) FindIssue(ctx context.Context, title string) (*Issue, error) {
	all, err := s.issues(ctx)
	if err != nil {
		return nil, err
	}
	for _, issue := range all {
		if issue.State == "open" && issue.Title == title {
			return issue, nil
		}
	}
	return nil, nil
}

// GetIssue returns an issue by number. Issue bodies are best-effort reads:
// not-found and remote errors are logged and yield nil.
func (s *Session) GetIssue(ctx context.Context, number int, useCache bool) *Issue {
	if useCache && s.issueCache.isPopulated() {
		all, err := s.issues(ctx)
		if err == nil {
			for _, issue := range all {
				if issue.Number == number {
					return issue
				}
			}
		}
	}
	issue, err := s.client.GetIssue(ctx, s.repo, number)
	if err != nil {
		s.logger.Debug("could not fetch issue", "issue", number, "error", err)
		return nil
	}
	return issue
}
