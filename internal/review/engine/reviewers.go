package engine

import (
	"context"
	"fmt"
	"sort"
	"strconv"

	projectModel "github.com/codecollab/reviewd/internal/project/model"
	"github.com/codecollab/reviewd/internal/review/model"
	userModel "github.com/codecollab/reviewd/internal/user/model"
	"github.com/codecollab/reviewd/internal/workflow"
)

// quorumMessage is the user-facing message for unsupported quorum values.
const quorumMessage = "Quorum value must be 1"

// Validator checks a proposed reviewer set against user/group existence,
// quorum constraints, and project default-reviewer retention. All checks are
// evaluated; messages accumulate from every failure.
type Validator struct {
	users    UserDirectory
	projects ProjectDirectory
	workflow WorkflowPolicy
}

// NewValidator creates a reviewer policy validator.
func NewValidator(users UserDirectory, projects ProjectDirectory, wf WorkflowPolicy) *Validator {
	return &Validator{users: users, projects: projects, workflow: wf}
}

// Validate checks the submitted reviewer map for the given review.
func (v *Validator) Validate(
	ctx context.Context,
	review *model.Review,
	submitted map[string]model.ReviewerEntry,
) (model.ValidateReviewersResponse, error) {
	var messages []string
	failed := make(map[string]struct{})

	fail := func(id, message string) {
		messages = append(messages, message)
		failed[id] = struct{}{}
	}

	for _, id := range sortedKeys(submitted) {
		entry := submitted[id]
		if userModel.IsGroup(id) {
			exists, err := v.users.GroupExists(ctx, userModel.GroupKey(id))
			if err != nil {
				return model.ValidateReviewersResponse{}, err
			}
			if !exists {
				fail(id, fmt.Sprintf("Group %q does not exist", userModel.GroupKey(id)))
			}
			if msg, ok := quorumViolation(entry.Required); ok {
				fail(id, msg)
			}
			continue
		}

		exists, err := v.users.UserExists(ctx, id)
		if err != nil {
			return model.ValidateReviewersResponse{}, err
		}
		if !exists {
			fail(id, fmt.Sprintf("Reviewer %q does not exist", id))
		}
		if entry.Required != model.RequireNone && entry.Required != model.RequireAll {
			fail(id, fmt.Sprintf("Invalid required flag for reviewer %q", id))
		}
	}

	retained, err := v.retainedReviewers(ctx, review)
	if err != nil {
		return model.ValidateReviewersResponse{}, err
	}

	for _, id := range sortedRetentionKeys(retained) {
		retention := retained[id]
		entry, present := submitted[id]
		if !present {
			fail(id, fmt.Sprintf("Default reviewer %q cannot be removed from this review", id))
			continue
		}
		if !retention.Requires() {
			continue
		}
		if entry.Required == model.RequireNone {
			fail(id, fmt.Sprintf("Default reviewer %q must remain a required reviewer", id))
			continue
		}
		if userModel.IsGroup(id) && string(entry.Required) != retention.Required {
			fail(id, fmt.Sprintf(
				"Default reviewer group %q must keep its required quorum", userModel.GroupKey(id),
			))
		}
	}

	return model.ValidateReviewersResponse{
		Valid:     len(messages) == 0,
		Messages:  messages,
		FailedIDs: sortedSet(failed),
	}, nil
}

// retainedReviewers computes the default reviewers the review must keep,
// merged across all impacted projects, excluding the author.
func (v *Validator) retainedReviewers(
	ctx context.Context,
	review *model.Review,
) (map[string]projectModel.Retention, error) {
	projects, err := v.projects.FetchProjects(ctx, review.ProjectIDs())
	if err != nil {
		return nil, err
	}
	return v.workflow.MergeDefaultReviewers(projects, workflow.MergeOptions{
		ExcludeAuthor: review.Author,
		Branches:      review.Projects,
	}), nil
}

// quorumViolation checks a group requirement value: empty, require-all, and
// a quorum of exactly one are supported; any other quorum fails.
func quorumViolation(required model.Requirement) (string, bool) {
	switch required {
	case model.RequireNone, model.RequireAll, model.RequireOne:
		return "", false
	}
	if _, err := strconv.Atoi(string(required)); err == nil {
		return quorumMessage, true
	}
	return fmt.Sprintf("Invalid required flag for group reviewer: %q", string(required)), true
}

func sortedRetentionKeys(m map[string]projectModel.Retention) []string {
	out := make([]string, 0, len(m))
	for id := range m {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

func sortedKeys(m map[string]model.ReviewerEntry) []string {
	out := make([]string, 0, len(m))
	for id := range m {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

func sortedSet(m map[string]struct{}) []string {
	if len(m) == 0 {
		return nil
	}
	out := make([]string, 0, len(m))
	for id := range m {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}
