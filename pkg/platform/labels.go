package platform

import (
	"context"
	"fmt"
)

// labels returns the effective label set for the session repository: the
// union of repository-scope and organization-scope labels. A failing
// organization lookup degrades to "no organization labels" rather than
// propagating, since not every platform supports the scope.
func (s *Session) labels(ctx context.Context) ([]*Label, error) {
	return s.labelCache.get(ctx, func(ctx context.Context) ([]*Label, error) {
		repoLabels, err := s.client.ListRepoLabels(ctx, s.repo)
		if err != nil {
			return nil, fmt.Errorf("fetching labels for %s: %w", s.repo, err)
		}
		orgLabels, err := s.client.ListOrgLabels(ctx, s.owner)
		if err != nil {
			s.logger.Debug("organization labels unavailable", "owner", s.owner, "error", err)
			orgLabels = nil
		}
		return append(repoLabels, orgLabels...), nil
	})
}

// resolveLabels maps label names to labels via the label cache. Unresolvable
// names are dropped with a warning, not fatal.
func (s *Session) resolveLabels(ctx context.Context, names []string) []*Label {
	if len(names) == 0 {
		return nil
	}
	all, err := s.labels(ctx)
	if err != nil {
		s.logger.Warn("could not resolve labels", "error", err)
		return nil
	}
	resolved := make([]*Label, 0, len(names))
	for _, name := range names {
		label := findLabelByName(all, name)
		if label == nil {
			s.logger.Warn("label not found in repository or organization", "label", name)
			continue
		}
		resolved = append(resolved, label)
	}
	return resolved
}

func findLabelByName(labels []*Label, name string) *Label {
	for _, l := range labels {
		if l.Name == name {
			return l
		}
	}
	return nil
}

// DeleteLabel unassigns a label from an issue or pull request.
func (s *Session) DeleteLabel(ctx context.Context, number int, label string) error {
	if err := s.client.UnassignLabel(ctx, s.repo, number, label); err != nil {
		return fmt.Errorf("unassigning label %q from #%d: %w", label, number, err)
	}
	return nil
}

// sameLabelIDs compares two label sets by id-set equality, order-independent.
func sameLabelIDs(a, b []*Label) bool {
	if len(a) != len(b) {
		return false
	}
	ids := make(map[int64]bool, len(a))
	for _, l := range a {
		ids[l.ID] = true
	}
	for _, l := range b {
		if !ids[l.ID] {
			return false
		}
	}
	return true
}
