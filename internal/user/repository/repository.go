// Package repository provides data access layer for the user directory.
package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	userModel "github.com/codecollab/reviewd/internal/user/model"
)

// Repository defines the interface for user directory lookups.
type Repository interface {
	// UserExists reports whether a user with the given id exists.
	UserExists(ctx context.Context, userID string) (bool, error)

	// GroupExists reports whether a group with the given name exists. The
	// name is taken without the group id marker.
	GroupExists(ctx context.Context, groupName string) (bool, error)

	// GroupMembers returns the member user ids of a group.
	GroupMembers(ctx context.Context, groupName string) ([]string, error)

	// IsSuper reports whether the user has super privileges. Unknown users
	// are not super.
	IsSuper(ctx context.Context, userID string) (bool, error)
}

type repository struct {
	db *gorm.DB
}

// New creates a new user directory repository instance.
func New(db *gorm.DB) Repository {
	return &repository{db: db}
}

// UserExists reports whether a user with the given id exists.
func (r *repository) UserExists(ctx context.Context, userID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&userModel.User{}).
		Where("user_id = ?", userID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// GroupExists reports whether a group with the given name exists.
func (r *repository) GroupExists(ctx context.Context, groupName string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&userModel.Group{}).
		Where("group_name = ?", groupName).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// GroupMembers returns the member user ids of a group.
func (r *repository) GroupMembers(ctx context.Context, groupName string) ([]string, error) {
	var group userModel.Group
	err := r.db.WithContext(ctx).
		Where("group_name = ?", groupName).
		First(&group).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, userModel.ErrGroupNotFound
		}
		return nil, err
	}
	return group.Members, nil
}

// IsSuper reports whether the user has super privileges.
func (r *repository) IsSuper(ctx context.Context, userID string) (bool, error) {
	var user userModel.User
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, err
	}
	return user.IsSuper, nil
}
