// Package service provides business logic layer for review module.
package service

import (
	"context"

	"go.uber.org/zap"

	commentModel "github.com/codecollab/reviewd/internal/comment/model"
	"github.com/codecollab/reviewd/internal/review/engine"
	reviewModel "github.com/codecollab/reviewd/internal/review/model"
	"github.com/codecollab/reviewd/internal/review/repository"
)

// CommentQueue queues fire-and-forget comments on review topics.
type CommentQueue interface {
	Enqueue(topic, userID, body string)
}

// Service defines the interface for review transition operations.
type Service interface {
	// GetReview loads a review by id.
	GetReview(ctx context.Context, reviewID string) (*reviewModel.Review, error)

	// GetAllowedTransitions computes the transitions currently legal for
	// the user. Read-only.
	GetAllowedTransitions(
		ctx context.Context,
		reviewID, userID string,
		opts reviewModel.TransitionOptions,
	) (engine.TransitionSet, error)

	// Transition executes a state change, including the locked commit
	// protocol for approve-and-commit.
	Transition(
		ctx context.Context,
		reviewID, userID string,
		req reviewModel.TransitionRequest,
	) (*reviewModel.Review, error)

	// ValidateReviewers checks a proposed reviewer set against reviewer
	// retention policy and quorum constraints.
	ValidateReviewers(
		ctx context.Context,
		reviewID string,
		reviewers map[string]reviewModel.ReviewerEntry,
	) (reviewModel.ValidateReviewersResponse, error)
}

type service struct {
	repo        repository.Repository
	calculator  *engine.Calculator
	validator   *engine.Validator
	coordinator *engine.Coordinator
	comments    CommentQueue
	logger      *zap.SugaredLogger
}

// New creates a new review service instance.
func New(
	repo repository.Repository,
	calculator *engine.Calculator,
	validator *engine.Validator,
	coordinator *engine.Coordinator,
	comments CommentQueue,
	logger *zap.SugaredLogger,
) Service {
	return &service{
		repo:        repo,
		calculator:  calculator,
		validator:   validator,
		coordinator: coordinator,
		comments:    comments,
		logger:      logger,
	}
}

// GetReview loads a review by id.
func (s *service) GetReview(ctx context.Context, reviewID string) (*reviewModel.Review, error) {
	if reviewID == "" {
		return nil, reviewModel.ErrInvalidReviewID
	}
	return s.repo.GetByID(ctx, reviewID)
}

// GetAllowedTransitions computes the transitions currently legal for the user.
func (s *service) GetAllowedTransitions(
	ctx context.Context,
	reviewID, userID string,
	opts reviewModel.TransitionOptions,
) (engine.TransitionSet, error) {
	if reviewID == "" {
		return engine.TransitionSet{}, reviewModel.ErrInvalidReviewID
	}
	if userID == "" {
		return engine.TransitionSet{}, reviewModel.ErrInvalidUserID
	}

	review, err := s.repo.GetByID(ctx, reviewID)
	if err != nil {
		return engine.TransitionSet{}, err
	}
	return s.calculator.AllowedTransitions(ctx, review, userID, opts)
}

// Transition executes a state change on a review.
func (s *service) Transition(
	ctx context.Context,
	reviewID, userID string,
	req reviewModel.TransitionRequest,
) (*reviewModel.Review, error) {
	if reviewID == "" {
		return nil, reviewModel.ErrInvalidReviewID
	}
	if userID == "" {
		return nil, reviewModel.ErrInvalidUserID
	}

	review, err := s.repo.GetByID(ctx, reviewID)
	if err != nil {
		return nil, err
	}

	// Never trust a previously-read transition set: re-validate the target
	// against the current review and user.
	target, err := s.calculator.IsValid(ctx, review, userID, req.State)
	if err != nil {
		return nil, err
	}

	originalState := review.State
	review.CommitStatus = ""

	text := req.Text
	if target == reviewModel.StateApprovedCommit && text == "" {
		text = review.Description
	}

	// Any state-changing action implies participation.
	review.AddParticipant(userID)

	switch {
	case target.IsApprovedVariant():
		review.AddVote(userID, reviewModel.VoteUp, review.HeadVersion)
		review.AddApproval(userID, review.HeadVersion)

		allowed, stateErr := s.calculator.StateAllowed(ctx, review, target)
		if stateErr != nil {
			return nil, stateErr
		}
		if allowed {
			review.State = target.Resting()
		} else {
			// Votes and approvals stay recorded; the state does not move
			// until the moderation policy is satisfied.
			review.State = originalState
			s.logger.Infow("approval recorded without state change",
				"review_id", review.ReviewID,
				"user_id", userID,
				"target", target,
			)
		}

	case target == reviewModel.StateRejected:
		review.AddVote(userID, reviewModel.VoteDown, review.HeadVersion)
		review.State = target

	default:
		review.State = target
	}

	if text != "" {
		if target == reviewModel.StateApprovedCommit {
			review.Description = text
			if err := s.repo.UpdateDescription(ctx, review, text, userID); err != nil {
				return nil, err
			}
		} else {
			s.comments.Enqueue(commentModel.ReviewTopic(review.ReviewID), userID, text)
		}
	}

	saved, err := s.repo.Save(ctx, review)
	if err != nil {
		return nil, err
	}

	s.logger.Infow("review transitioned",
		"review_id", saved.ReviewID,
		"user_id", userID,
		"from", originalState,
		"to", saved.State,
		"target", target,
	)

	// The commit only runs once the review actually rests in approved; a
	// moderation-gated approval records votes without committing anything.
	if target == reviewModel.StateApprovedCommit && saved.State == reviewModel.StateApproved {
		if err := s.coordinator.Commit(ctx, saved, userID, req, originalState); err != nil {
			return nil, err
		}
	}

	return saved, nil
}

// ValidateReviewers checks a proposed reviewer set.
func (s *service) ValidateReviewers(
	ctx context.Context,
	reviewID string,
	reviewers map[string]reviewModel.ReviewerEntry,
) (reviewModel.ValidateReviewersResponse, error) {
	if reviewID == "" {
		return reviewModel.ValidateReviewersResponse{}, reviewModel.ErrInvalidReviewID
	}

	review, err := s.repo.GetByID(ctx, reviewID)
	if err != nil {
		return reviewModel.ValidateReviewersResponse{}, err
	}
	return s.validator.Validate(ctx, review, reviewers)
}
