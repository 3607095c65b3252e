package model

// TransitionRequest is the input to a transition call. It is constructed per
// call and never persisted.
type TransitionRequest struct {
	// State is the raw target state string.
	State string `json:"transition" binding:"required"`
	// Jobs carries job ids to attach to the commit. Nil means "carry over
	// the fixes already attached to the change".
	Jobs []string `json:"jobs,omitempty"`
	// FixStatus is the job fix status to apply on commit.
	FixStatus string `json:"fix_status,omitempty"`
	// Text is a free-text payload: the new description for a commit
	// transition, a comment for any other transition.
	Text string `json:"text,omitempty"`
	// Cleanup requests post-commit cleanup of pending work. Nil falls back
	// to the configured default.
	Cleanup *bool `json:"cleanup,omitempty"`
}

// TransitionOptions tune the allowed-transitions calculation.
type TransitionOptions struct {
	// ExtraUpVotes lists user ids assumed to have cast an up-vote on the
	// head version when evaluating approval feasibility.
	ExtraUpVotes []string `json:"extra_up_votes,omitempty"`
}

// TransitionsResponse is the wire form of an allowed-transitions query.
type TransitionsResponse struct {
	// Disallowed distinguishes "this user may not transition at all" from an
	// empty-but-allowed set.
	Disallowed bool `json:"disallowed"`
	// Transitions maps permitted target states to their table entries.
	Transitions map[State]Transition `json:"transitions"`
}

// ValidateReviewersRequest is the input to reviewer policy validation.
type ValidateReviewersRequest struct {
	// Reviewers maps user or group ids to their requested requirement.
	Reviewers map[string]ReviewerEntry `json:"reviewers" binding:"required"`
}

// ValidateReviewersResponse reports reviewer policy validation results.
type ValidateReviewersResponse struct {
	Valid bool `json:"valid"`
	// Messages carries one user-facing message per violation.
	Messages []string `json:"messages,omitempty"`
	// FailedIDs lists the reviewer ids behind the violations so the caller
	// can re-inject them.
	FailedIDs []string `json:"failed_ids,omitempty"`
}
