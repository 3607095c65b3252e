package engine

import (
	"context"
	"errors"

	projectModel "github.com/codecollab/reviewd/internal/project/model"
	"github.com/codecollab/reviewd/internal/review/model"
	userModel "github.com/codecollab/reviewd/internal/user/model"
)

// Evaluator decides whether approval and commit are currently achievable
// under the review's reviewer requirements and the project moderation
// policy.
type Evaluator struct {
	users UserDirectory
}

// NewEvaluator creates an approval evaluator.
func NewEvaluator(users UserDirectory) *Evaluator {
	return &Evaluator{users: users}
}

// CanApprove reports whether approval is achievable once every id in
// extraUpVotes is treated as having cast an up-vote on the head version: no
// required reviewer may remain without an up-vote. Adding ids to
// extraUpVotes can only keep a true result true.
func (e *Evaluator) CanApprove(
	ctx context.Context,
	review *model.Review,
	extraUpVotes []string,
) (bool, error) {
	up := make(map[string]struct{})
	for userID := range review.Votes {
		if review.HasUpVoted(userID, review.HeadVersion) {
			up[userID] = struct{}{}
		}
	}
	for _, userID := range extraUpVotes {
		up[userID] = struct{}{}
	}

	for id, entry := range review.Participants {
		satisfied, err := e.entrySatisfied(ctx, id, entry, up)
		if err != nil {
			return false, err
		}
		if !satisfied {
			return false, nil
		}
	}
	return true, nil
}

// entrySatisfied reports whether one reviewer entry's requirement is met by
// the up-voter set.
func (e *Evaluator) entrySatisfied(
	ctx context.Context,
	id string,
	entry model.ReviewerEntry,
	up map[string]struct{},
) (bool, error) {
	switch entry.Required {
	case model.RequireAll:
		if !userModel.IsGroup(id) {
			_, ok := up[id]
			return ok, nil
		}
		members, err := e.groupMembers(ctx, id)
		if err != nil {
			return false, err
		}
		for _, member := range members {
			if _, ok := up[member]; !ok {
				return false, nil
			}
		}
		return true, nil

	case model.RequireOne:
		if !userModel.IsGroup(id) {
			_, ok := up[id]
			return ok, nil
		}
		members, err := e.groupMembers(ctx, id)
		if err != nil {
			return false, err
		}
		if len(members) == 0 {
			return true, nil
		}
		for _, member := range members {
			if _, ok := up[member]; ok {
				return true, nil
			}
		}
		return false, nil

	default:
		return true, nil
	}
}

// CanCommit reports whether commit is permitted: every individual moderator
// of every moderated branch the review touches must be among the users who
// approved the head version, with moderator groups expanded into their
// members. When actingUser is non-empty it is counted as a synthetic
// head-version approval, so a user sees approve-and-commit as available when
// their own approval would complete the requirement. No moderated branches
// trivially permits commit.
func (e *Evaluator) CanCommit(
	ctx context.Context,
	review *model.Review,
	actingUser string,
	projects []projectModel.Project,
) (bool, error) {
	approved := review.ApproversOf(review.HeadVersion)
	if actingUser != "" {
		approved[actingUser] = struct{}{}
	}

	for _, mb := range moderatedBranches(review, projects) {
		moderators, err := e.expandModerators(ctx, mb.Moderators)
		if err != nil {
			return false, err
		}
		for moderator := range moderators {
			if _, ok := approved[moderator]; !ok {
				return false, nil
			}
		}
	}
	return true, nil
}

// expandModerators resolves a mixed user/group moderator list into the set
// of individual moderator user ids.
func (e *Evaluator) expandModerators(ctx context.Context, ids []string) (map[string]struct{}, error) {
	out := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if !userModel.IsGroup(id) {
			out[id] = struct{}{}
			continue
		}
		members, err := e.groupMembers(ctx, id)
		if err != nil {
			return nil, err
		}
		for _, member := range members {
			out[member] = struct{}{}
		}
	}
	return out, nil
}

// groupMembers resolves a prefixed group id into member user ids. Unknown
// groups expand to no members.
func (e *Evaluator) groupMembers(ctx context.Context, id string) ([]string, error) {
	members, err := e.users.GroupMembers(ctx, userModel.GroupKey(id))
	if err != nil {
		if errors.Is(err, userModel.ErrGroupNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return members, nil
}
