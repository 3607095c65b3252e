// Package workflow provides workflow enforcement policy: who is subject to
// transition rules and which default reviewers reviews must retain.
package workflow

import (
	"context"

	"go.uber.org/zap"

	appConfig "github.com/codecollab/reviewd/internal/config"
	projectModel "github.com/codecollab/reviewd/internal/project/model"
)

// Status reports whether workflow rules apply to a user. It is a plain
// query; exclusion is never signalled as an error.
type Status struct {
	// Enabled reports whether workflow enforcement is on at all.
	Enabled bool
	// Excluded reports whether this user bypasses workflow enforcement.
	Excluded bool
}

// MergeOptions tune default-reviewer merging.
type MergeOptions struct {
	// ExcludeAuthor removes the review author from the merged result.
	ExcludeAuthor string
	// Branches restricts branch-level rules to the branches the review
	// impacts, keyed by project id. A project with no entry contributes
	// only project-level rules.
	Branches map[string][]string
}

// Service defines the workflow policy interface.
type Service interface {
	// StatusFor returns the workflow status for a user.
	StatusFor(ctx context.Context, userID string) (Status, error)

	// MergeDefaultReviewers merges reviewer retention rules across the
	// given projects and their impacted branches. Stronger retention wins
	// when the same id appears more than once.
	MergeDefaultReviewers(projects []projectModel.Project, opts MergeOptions) map[string]projectModel.Retention
}

type service struct {
	cfg    appConfig.WorkflowConfig
	logger *zap.SugaredLogger
}

// New creates a new workflow service instance.
func New(cfg appConfig.WorkflowConfig, logger *zap.SugaredLogger) Service {
	return &service{cfg: cfg, logger: logger}
}

// StatusFor returns the workflow status for a user.
func (s *service) StatusFor(ctx context.Context, userID string) (Status, error) {
	status := Status{Enabled: s.cfg.Enabled}
	for _, excluded := range s.cfg.ExcludedUsers {
		if excluded == userID {
			status.Excluded = true
			break
		}
	}
	return status, nil
}

// MergeDefaultReviewers merges reviewer retention rules across projects.
func (s *service) MergeDefaultReviewers(
	projects []projectModel.Project,
	opts MergeOptions,
) map[string]projectModel.Retention {
	merged := make(map[string]projectModel.Retention)

	add := func(id string, ret projectModel.Retention) {
		if id == opts.ExcludeAuthor {
			return
		}
		existing, ok := merged[id]
		if !ok || stronger(ret, existing) {
			merged[id] = ret
		}
	}

	for _, project := range projects {
		for id, ret := range project.DefaultReviewers {
			add(id, ret)
		}

		impacted := opts.Branches[project.ProjectID]
		for _, name := range impacted {
			branch, ok := project.BranchByName(name)
			if !ok {
				continue
			}
			for id, ret := range branch.DefaultReviewers {
				add(id, ret)
			}
		}
	}
	return merged
}

// stronger reports whether a beats b: required-all beats required-one beats
// optional.
func stronger(a, b projectModel.Retention) bool {
	rank := func(r projectModel.Retention) int {
		switch r.Required {
		case "true":
			return 2
		case "1":
			return 1
		default:
			return 0
		}
	}
	return rank(a) > rank(b)
}
