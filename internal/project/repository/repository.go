// Package repository provides data access layer for the project directory.
package repository

import (
	"context"

	"gorm.io/gorm"

	projectModel "github.com/codecollab/reviewd/internal/project/model"
)

// Repository defines the interface for project directory lookups.
type Repository interface {
	// FetchProjects loads the given projects with their branches. Unknown
	// ids are skipped rather than failing the whole fetch.
	FetchProjects(ctx context.Context, ids []string) ([]projectModel.Project, error)
}

type repository struct {
	db *gorm.DB
}

// New creates a new project directory repository instance.
func New(db *gorm.DB) Repository {
	return &repository{db: db}
}

// FetchProjects loads the given projects with their branches.
func (r *repository) FetchProjects(ctx context.Context, ids []string) ([]projectModel.Project, error) {
	if len(ids) == 0 {
		return []projectModel.Project{}, nil
	}

	var projects []projectModel.Project
	err := r.db.WithContext(ctx).
		Preload("Branches").
		Where("project_id IN ?", ids).
		Find(&projects).Error
	if err != nil {
		return nil, err
	}
	return projects, nil
}
