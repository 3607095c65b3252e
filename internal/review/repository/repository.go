// Package repository provides data access layer for review module.
package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	reviewModel "github.com/codecollab/reviewd/internal/review/model"
)

// Repository defines the interface for review data access operations.
type Repository interface {
	// Create stores a new review.
	Create(ctx context.Context, review *reviewModel.Review) (*reviewModel.Review, error)

	// GetByID finds a review by review_id.
	GetByID(ctx context.Context, reviewID string) (*reviewModel.Review, error)

	// Save persists the full review aggregate and returns the saved copy.
	Save(ctx context.Context, review *reviewModel.Review) (*reviewModel.Review, error)

	// RevertState rewinds only the review's persisted state, leaving votes
	// and approvals as recorded.
	RevertState(ctx context.Context, review *reviewModel.Review, state reviewModel.State) (*reviewModel.Review, error)

	// UpdateDescription persists a description change on behalf of a user.
	UpdateDescription(ctx context.Context, review *reviewModel.Review, description, userID string) error
}

type repository struct {
	db *gorm.DB
}

// New creates a new review repository instance.
func New(db *gorm.DB) Repository {
	return &repository{db: db}
}

// Create stores a new review.
func (r *repository) Create(ctx context.Context, review *reviewModel.Review) (*reviewModel.Review, error) {
	if err := r.db.WithContext(ctx).Create(review).Error; err != nil {
		return nil, err
	}
	return review, nil
}

// GetByID finds a review by review_id.
func (r *repository) GetByID(ctx context.Context, reviewID string) (*reviewModel.Review, error) {
	var review reviewModel.Review
	err := r.db.WithContext(ctx).
		Where("review_id = ?", reviewID).
		First(&review).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, reviewModel.ErrReviewNotFound
		}
		return nil, err
	}
	return &review, nil
}

// Save persists the full review aggregate.
func (r *repository) Save(ctx context.Context, review *reviewModel.Review) (*reviewModel.Review, error) {
	if err := r.db.WithContext(ctx).Save(review).Error; err != nil {
		return nil, err
	}
	return review, nil
}

// RevertState rewinds only the review's persisted state.
func (r *repository) RevertState(
	ctx context.Context,
	review *reviewModel.Review,
	state reviewModel.State,
) (*reviewModel.Review, error) {
	err := r.db.WithContext(ctx).
		Model(&reviewModel.Review{}).
		Where("review_id = ?", review.ReviewID).
		Update("state", state).Error
	if err != nil {
		return nil, err
	}
	review.State = state
	return review, nil
}

// UpdateDescription persists a description change on behalf of a user.
func (r *repository) UpdateDescription(
	ctx context.Context,
	review *reviewModel.Review,
	description, userID string,
) error {
	err := r.db.WithContext(ctx).
		Model(&reviewModel.Review{}).
		Where("review_id = ?", review.ReviewID).
		Update("description", description).Error
	if err != nil {
		return err
	}
	review.Description = description
	return nil
}
