// Package engine implements the review transition engine: role
// classification, approval evaluation, reviewer policy validation, the
// transition state machine, and the locked commit protocol.
package engine

import (
	"context"

	commentModel "github.com/codecollab/reviewd/internal/comment/model"
	projectModel "github.com/codecollab/reviewd/internal/project/model"
	"github.com/codecollab/reviewd/internal/review/model"
	"github.com/codecollab/reviewd/internal/workflow"
)

// ProjectDirectory supplies the projects a review impacts.
type ProjectDirectory interface {
	FetchProjects(ctx context.Context, ids []string) ([]projectModel.Project, error)
}

// UserDirectory supplies user and group facts.
type UserDirectory interface {
	UserExists(ctx context.Context, userID string) (bool, error)
	GroupExists(ctx context.Context, groupName string) (bool, error)
	GroupMembers(ctx context.Context, groupName string) ([]string, error)
	IsSuper(ctx context.Context, userID string) (bool, error)
}

// WorkflowPolicy supplies workflow enablement and default-reviewer merging.
type WorkflowPolicy interface {
	StatusFor(ctx context.Context, userID string) (workflow.Status, error)
	MergeDefaultReviewers(projects []projectModel.Project, opts workflow.MergeOptions) map[string]projectModel.Retention
}

// TaskSource supplies open task comments for the open-task approval gate.
type TaskSource interface {
	FetchOpenTasks(ctx context.Context, reviewID string) ([]commentModel.Comment, error)
}

// ReviewStore persists review mutations for the transition and commit
// protocol.
type ReviewStore interface {
	Save(ctx context.Context, review *model.Review) (*model.Review, error)
	RevertState(ctx context.Context, review *model.Review, state model.State) (*model.Review, error)
	UpdateDescription(ctx context.Context, review *model.Review, description, userID string) error
}

// TransitionSet is the tagged result of a transition calculation: either an
// allowed (possibly empty) target set, or the disallowed sentinel. Empty
// means "no transition currently available but the caller's UI should stay
// active"; disallowed means the UI should be inert for this user.
type TransitionSet struct {
	disallowed bool
	states     map[model.State]model.Transition
}

// AllowedSet wraps a target set as an allowed result.
func AllowedSet(states map[model.State]model.Transition) TransitionSet {
	if states == nil {
		states = make(map[model.State]model.Transition)
	}
	return TransitionSet{states: states}
}

// DisallowedSet returns the disallowed sentinel.
func DisallowedSet() TransitionSet {
	return TransitionSet{disallowed: true}
}

// Disallowed reports whether the user may not transition this review at all.
func (s TransitionSet) Disallowed() bool {
	return s.disallowed
}

// Has reports whether the target state is currently permitted.
func (s TransitionSet) Has(target model.State) bool {
	if s.disallowed {
		return false
	}
	_, ok := s.states[target]
	return ok
}

// Empty reports whether the set is allowed but has no targets.
func (s TransitionSet) Empty() bool {
	return !s.disallowed && len(s.states) == 0
}

// States returns the permitted target states with their table entries. Nil
// for a disallowed set.
func (s TransitionSet) States() map[model.State]model.Transition {
	if s.disallowed {
		return nil
	}
	return s.states
}

// remove drops targets from an allowed set.
func (s TransitionSet) remove(targets ...model.State) {
	for _, t := range targets {
		delete(s.states, t)
	}
}

// NarrowContext carries the facts a narrowing rule may consult.
type NarrowContext struct {
	Review *model.Review
	UserID string
	Roles  Roles
}

// Narrower is one additional transition-narrowing rule. Rules are pure: they
// return the narrowed set and never widen it.
type Narrower func(set TransitionSet, nc *NarrowContext) TransitionSet
