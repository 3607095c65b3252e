package engine

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	appConfig "github.com/codecollab/reviewd/internal/config"
	projectModel "github.com/codecollab/reviewd/internal/project/model"
	"github.com/codecollab/reviewd/internal/review/model"
)

// Calculator decides which transitions are currently legal for a review and
// acting user. It starts from the full transition table for the review's
// current state and only ever removes entries: configuration gates first,
// then approval feasibility, then role narrowing. Ambiguity resolves by
// removing (fail closed).
type Calculator struct {
	table     model.TransitionTable
	cfg       appConfig.EngineConfig
	projects  ProjectDirectory
	users     UserDirectory
	workflow  WorkflowPolicy
	tasks     TaskSource
	narrowers []Narrower

	classifier *Classifier
	evaluator  *Evaluator
	logger     *zap.SugaredLogger
}

// NewCalculator creates a transition calculator over the given static table
// and collaborators. Extra narrowing rules run last, in order.
func NewCalculator(
	table model.TransitionTable,
	cfg appConfig.EngineConfig,
	projects ProjectDirectory,
	users UserDirectory,
	wf WorkflowPolicy,
	tasks TaskSource,
	logger *zap.SugaredLogger,
	narrowers ...Narrower,
) *Calculator {
	return &Calculator{
		table:      table,
		cfg:        cfg,
		projects:   projects,
		users:      users,
		workflow:   wf,
		tasks:      tasks,
		narrowers:  narrowers,
		classifier: NewClassifier(users),
		evaluator:  NewEvaluator(users),
		logger:     logger,
	}
}

// AllowedTransitions computes the transitions currently legal for the user.
// The calculation is read-only and idempotent.
func (c *Calculator) AllowedTransitions(
	ctx context.Context,
	review *model.Review,
	userID string,
	opts model.TransitionOptions,
) (TransitionSet, error) {
	states, ok := c.table.Clone(review.State)
	if !ok {
		return TransitionSet{}, fmt.Errorf("%w: %q", model.ErrUnknownState, review.State)
	}
	set := AllowedSet(states)

	// Excluded users bypass every gate below and see the unmodified table.
	status, err := c.workflow.StatusFor(ctx, userID)
	if err != nil {
		return TransitionSet{}, err
	}
	if !status.Enabled || status.Excluded {
		return set, nil
	}

	if c.cfg.DisableCommit {
		set.remove(model.StateApprovedCommit)
	}

	if c.cfg.DisableSelfApprove && review.IsAuthor(userID) && review.State != model.StateApproved {
		set.remove(model.StateApproved, model.StateApprovedCommit)
	}

	projects, err := c.projects.FetchProjects(ctx, review.ProjectIDs())
	if err != nil {
		return TransitionSet{}, err
	}

	if set.Has(model.StateApproved) || set.Has(model.StateApprovedCommit) {
		extra := append([]string{review.Author, userID}, opts.ExtraUpVotes...)
		achievable, err := c.evaluator.CanApprove(ctx, review, extra)
		if err != nil {
			return TransitionSet{}, err
		}
		if !achievable {
			set.remove(model.StateApproved, model.StateApprovedCommit)
		}
	}

	if c.cfg.BlockOnOpenTasks &&
		(set.Has(model.StateApproved) || set.Has(model.StateApprovedCommit)) {
		tasks, err := c.tasks.FetchOpenTasks(ctx, review.ReviewID)
		if err != nil {
			return TransitionSet{}, err
		}
		if len(tasks) > 0 {
			set.remove(model.StateApproved, model.StateApprovedCommit)
		}
	}

	set, roles, err := c.narrowByRole(ctx, review, userID, projects, set)
	if err != nil {
		return TransitionSet{}, err
	}
	if set.Disallowed() {
		return set, nil
	}

	nc := &NarrowContext{Review: review, UserID: userID, Roles: roles}
	for _, narrow := range c.narrowers {
		set = narrow(set, nc)
	}
	return set, nil
}

// narrowByRole applies the role-based narrowing rules. It only runs when the
// review touches a moderated branch or any project at all.
func (c *Calculator) narrowByRole(
	ctx context.Context,
	review *model.Review,
	userID string,
	projects []projectModel.Project,
	set TransitionSet,
) (TransitionSet, Roles, error) {
	moderated := moderatedBranches(review, projects)
	if len(moderated) == 0 && len(review.Projects) == 0 {
		return set, Roles{}, nil
	}

	roles, err := c.classifier.Classify(ctx, review, userID, projects)
	if err != nil {
		return TransitionSet{}, Roles{}, err
	}

	if len(moderated) == 0 {
		// Project-only reviews: outsiders may not transition at all.
		if !roles.IsMember && !roles.IsAuthor && !roles.IsSuper {
			return DisallowedSet(), roles, nil
		}
		return set, roles, nil
	}

	if roles.IsSuper {
		return set, roles, nil
	}

	switch {
	case roles.IsModerator:
		// Moderators keep whatever the earlier gates left.

	case roles.IsAuthor:
		set = restrictToRoleStates(review, set, true)

	case roles.IsMember:
		set = restrictToRoleStates(review, set, false)

	default:
		return DisallowedSet(), roles, nil
	}

	if c.cfg.ModeratorMode == appConfig.ModeratorModeEach {
		if roles.HasApprovedHead {
			set.remove(model.StateApproved)
		}
		if set.Has(model.StateApprovedCommit) {
			feasible, err := c.evaluator.CanCommit(ctx, review, userID, projects)
			if err != nil {
				return TransitionSet{}, Roles{}, err
			}
			if !feasible {
				set.remove(model.StateApprovedCommit)
			}
		}
	}

	return set, roles, nil
}

// restrictToRoleStates narrows the set to the states an author (or member,
// without archive rights) may reach. A review resting outside those states
// yields an empty-but-allowed set, so the caller's UI can still offer
// actions like attaching a commit.
func restrictToRoleStates(review *model.Review, set TransitionSet, canArchive bool) TransitionSet {
	allowed := map[model.State]struct{}{
		model.StateNeedsReview:   {},
		model.StateNeedsRevision: {},
	}
	if canArchive {
		allowed[model.StateArchived] = struct{}{}
	}
	if review.State == model.StateApproved {
		allowed[model.StateApproved] = struct{}{}
		allowed[model.StateApprovedCommit] = struct{}{}
	}

	if _, ok := allowed[review.State]; !ok {
		return AllowedSet(nil)
	}

	out := make(map[model.State]model.Transition)
	for target, tr := range set.States() {
		if _, ok := allowed[target]; ok {
			out[target] = tr
		}
	}
	return AllowedSet(out)
}

// IsValid checks a raw target state against the user's current transition
// set, distinguishing unknown states from known-but-not-allowed ones.
func (c *Calculator) IsValid(
	ctx context.Context,
	review *model.Review,
	userID string,
	rawTarget string,
) (model.State, error) {
	target, err := model.ParseState(rawTarget)
	if err != nil {
		return "", err
	}

	set, err := c.AllowedTransitions(ctx, review, userID, model.TransitionOptions{})
	if err != nil {
		return "", err
	}
	if set.Disallowed() {
		return "", fmt.Errorf("%w: user %q", model.ErrTransitionsDisallowed, userID)
	}
	if !set.Has(target) {
		return "", fmt.Errorf("%w: %q from state %q", model.ErrTransitionNotAllowed, target, review.State)
	}
	return target, nil
}

// StateAllowed re-checks, after votes and approvals have been recorded,
// whether the review may actually rest in the target state. Under the "each"
// moderator mode an approval target needs a real head-version approval from
// every moderator of every moderated branch; the "any" mode has no extra
// gate.
func (c *Calculator) StateAllowed(
	ctx context.Context,
	review *model.Review,
	target model.State,
) (bool, error) {
	if !target.IsApprovedVariant() {
		return true, nil
	}
	if c.cfg.ModeratorMode != appConfig.ModeratorModeEach {
		return true, nil
	}

	projects, err := c.projects.FetchProjects(ctx, review.ProjectIDs())
	if err != nil {
		return false, err
	}
	return c.evaluator.CanCommit(ctx, review, "", projects)
}
