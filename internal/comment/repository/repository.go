// Package repository provides data access layer for review comments.
package repository

import (
	"context"

	"gorm.io/gorm"

	commentModel "github.com/codecollab/reviewd/internal/comment/model"
)

// Repository defines the interface for comment data access operations.
type Repository interface {
	// Create stores a new comment.
	Create(ctx context.Context, comment *commentModel.Comment) error

	// FetchOpenTasks returns open, non-archived task comments on the
	// review's topic.
	FetchOpenTasks(ctx context.Context, reviewID string) ([]commentModel.Comment, error)
}

type repository struct {
	db *gorm.DB
}

// New creates a new comment repository instance.
func New(db *gorm.DB) Repository {
	return &repository{db: db}
}

// Create stores a new comment.
func (r *repository) Create(ctx context.Context, comment *commentModel.Comment) error {
	return r.db.WithContext(ctx).Create(comment).Error
}

// FetchOpenTasks returns open, non-archived task comments for a review.
func (r *repository) FetchOpenTasks(ctx context.Context, reviewID string) ([]commentModel.Comment, error) {
	var comments []commentModel.Comment
	err := r.db.WithContext(ctx).
		Where("topic = ?", commentModel.ReviewTopic(reviewID)).
		Where("task_state = ?", commentModel.TaskStateOpen).
		Where("archived = ?", false).
		Find(&comments).Error
	if err != nil {
		return nil, err
	}
	return comments, nil
}
