package model

import (
	"fmt"
	"strings"
)

// State is a review lifecycle state. The set of states is closed; anything
// else is rejected at the boundary by ParseState.
type State string

const (
	// StateNeedsReview indicates the review is waiting for reviewer attention.
	StateNeedsReview State = "needsReview"
	// StateNeedsRevision indicates reviewers have requested changes.
	StateNeedsRevision State = "needsRevision"
	// StateApproved indicates the review has been approved.
	StateApproved State = "approved"
	// StateApprovedCommit is the approve-and-commit pseudo-state: approving
	// the review and committing the underlying change in one step. It is a
	// transition target, never a resting state.
	StateApprovedCommit State = "approved:commit"
	// StateRejected indicates the review has been rejected.
	StateRejected State = "rejected"
	// StateArchived indicates the review has been archived.
	StateArchived State = "archived"
)

// ParseState validates a raw state string against the closed state set.
func ParseState(s string) (State, error) {
	switch State(s) {
	case StateNeedsReview, StateNeedsRevision, StateApproved,
		StateApprovedCommit, StateRejected, StateArchived:
		return State(s), nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownState, s)
}

// IsApprovedVariant reports whether the state is approved or approved:commit.
func (s State) IsApprovedVariant() bool {
	return strings.HasPrefix(string(s), string(StateApproved))
}

// Resting maps a transition target to the state a review actually rests in:
// approved:commit resolves to approved, every other state maps to itself.
func (s State) Resting() State {
	if s == StateApprovedCommit {
		return StateApproved
	}
	return s
}

// Transition is one entry of the transition table: presentation metadata for
// a single permitted target state.
type Transition struct {
	// Label is the human-readable action name for the target state.
	Label string `json:"label"`
}

// TransitionTable maps each resting state to its generally-allowed following
// states. The table is static configuration supplied to the calculator; the
// calculator only ever removes entries from it.
type TransitionTable map[State]map[State]Transition

// DefaultTransitionTable returns the canonical transition table. Every
// resting state may move to any other state; approved:commit is reachable
// from everywhere but is never a source.
func DefaultTransitionTable() TransitionTable {
	labels := map[State]Transition{
		StateNeedsReview:    {Label: "Needs Review"},
		StateNeedsRevision:  {Label: "Needs Revision"},
		StateApproved:       {Label: "Approve"},
		StateApprovedCommit: {Label: "Approve and Commit"},
		StateRejected:       {Label: "Reject"},
		StateArchived:       {Label: "Archive"},
	}

	targets := func(from State) map[State]Transition {
		out := make(map[State]Transition, len(labels)-1)
		for to, tr := range labels {
			if to == from {
				continue
			}
			out[to] = tr
		}
		return out
	}

	table := TransitionTable{
		StateNeedsReview:   targets(StateNeedsReview),
		StateNeedsRevision: targets(StateNeedsRevision),
		StateApproved:      targets(StateApproved),
		StateRejected:      targets(StateRejected),
		StateArchived:      targets(StateArchived),
	}
	return table
}

// Clone returns a copy of the target set for one state, safe for the
// calculator to narrow without mutating the shared table.
func (t TransitionTable) Clone(from State) (map[State]Transition, bool) {
	entry, ok := t[from]
	if !ok {
		return nil, false
	}
	out := make(map[State]Transition, len(entry))
	for to, tr := range entry {
		out[to] = tr
	}
	return out, true
}
