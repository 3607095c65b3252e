package engine

import (
	"context"
	"errors"

	projectModel "github.com/codecollab/reviewd/internal/project/model"
	"github.com/codecollab/reviewd/internal/review/model"
	userModel "github.com/codecollab/reviewd/internal/user/model"
)

// Roles are the boolean role facts for one user against one review. A user
// who is both author and moderator is treated purely as moderator.
type Roles struct {
	IsAuthor        bool
	IsMember        bool
	IsModerator     bool
	IsSuper         bool
	HasApprovedHead bool
}

// Classifier computes role facts from a review, its impacted projects, and a
// user id.
type Classifier struct {
	users UserDirectory
}

// NewClassifier creates a role classifier.
func NewClassifier(users UserDirectory) *Classifier {
	return &Classifier{users: users}
}

// Classify computes the role facts for the user.
func (c *Classifier) Classify(
	ctx context.Context,
	review *model.Review,
	userID string,
	projects []projectModel.Project,
) (Roles, error) {
	roles := Roles{
		IsAuthor:        review.IsAuthor(userID),
		HasApprovedHead: review.HasApproved(userID, review.HeadVersion),
	}

	super, err := c.users.IsSuper(ctx, userID)
	if err != nil {
		return Roles{}, err
	}
	roles.IsSuper = super

	for _, project := range projects {
		member, err := c.contains(ctx, project.Members, userID)
		if err != nil {
			return Roles{}, err
		}
		if member {
			roles.IsMember = true
			break
		}
	}

	for _, mb := range moderatedBranches(review, projects) {
		moderator, err := c.contains(ctx, mb.Moderators, userID)
		if err != nil {
			return Roles{}, err
		}
		if moderator {
			roles.IsModerator = true
			break
		}
	}

	return roles, nil
}

// contains reports whether the user appears in a list of user and group ids,
// expanding group entries into their members.
func (c *Classifier) contains(ctx context.Context, ids []string, userID string) (bool, error) {
	expanded, err := c.expand(ctx, ids)
	if err != nil {
		return false, err
	}
	_, ok := expanded[userID]
	return ok, nil
}

// expand resolves a mixed list of user and group ids into a user set.
// Unknown groups are skipped.
func (c *Classifier) expand(ctx context.Context, ids []string) (map[string]struct{}, error) {
	out := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if !userModel.IsGroup(id) {
			out[id] = struct{}{}
			continue
		}
		members, err := c.users.GroupMembers(ctx, userModel.GroupKey(id))
		if err != nil {
			if errors.Is(err, userModel.ErrGroupNotFound) {
				continue
			}
			return nil, err
		}
		for _, member := range members {
			out[member] = struct{}{}
		}
	}
	return out, nil
}

// moderatedBranch is one impacted, moderated branch of a project.
type moderatedBranch struct {
	ProjectID  string
	Branch     string
	Moderators []string
}

// moderatedBranches returns the moderated branches the review touches.
func moderatedBranches(review *model.Review, projects []projectModel.Project) []moderatedBranch {
	var out []moderatedBranch
	for _, project := range projects {
		for _, name := range review.Projects[project.ProjectID] {
			branch, ok := project.BranchByName(name)
			if !ok || !branch.IsModerated() {
				continue
			}
			out = append(out, moderatedBranch{
				ProjectID:  project.ProjectID,
				Branch:     branch.Name,
				Moderators: branch.Moderators,
			})
		}
	}
	return out
}
