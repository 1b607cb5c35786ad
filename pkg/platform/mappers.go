package platform

import (
	"log/slog"
	"strings"
)

// commitStatusStates translates the remote status vocabulary into the
// internal three-valued one. Lookups fall back to yellow so an unrecognized
// remote value can never fail a status read.
var commitStatusStates = map[string]BranchState{
	"success": BranchStateGreen,
	"pending": BranchStateYellow,
	"warning": BranchStateYellow,
	"unknown": BranchStateYellow,
	"failure": BranchStateRed,
	"error":   BranchStateRed,
}

// mapBranchState reduces a remote status value to a BranchState, defaulting
// to yellow with a warning for values absent from the mapping table.
func mapBranchState(remote string, logger *slog.Logger) BranchState {
	if state, ok := commitStatusStates[strings.ToLower(remote)]; ok {
		return state
	}
	logger.Warn("unknown remote status value, defaulting to yellow", "status", remote)
	return BranchStateYellow
}

// remoteStatusValue translates a BranchState back into the remote vocabulary
// for status creation.
func remoteStatusValue(state BranchState) string {
	switch state {
	case BranchStateGreen:
		return "success"
	case BranchStateRed:
		return "failure"
	default:
		return "pending"
	}
}

// MatchesState reports whether a pull request state satisfies a desired
// state expression: an exact match, the "all" wildcard, or a negated match
// expressed as "!state".
func MatchesState(actual, desired PrState) bool {
	if desired == PrStateAll {
		return true
	}
	if neg, ok := strings.CutPrefix(string(desired), "!"); ok {
		return actual != PrState(neg)
	}
	return actual == desired
}

// preferredMergeMethod picks the merge method for a repository by preference
// order: rebase > rebase-merge > squash > merge.
func preferredMergeMethod(caps MergeCapabilities) (MergeMethod, bool) {
	switch {
	case caps.Rebase:
		return MergeRebase, true
	case caps.RebaseMerge:
		return MergeRebaseMerge, true
	case caps.Squash:
		return MergeSquash, true
	case caps.Merge:
		return MergeMerge, true
	default:
		return "", false
	}
}
