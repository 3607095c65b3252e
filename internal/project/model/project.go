package model

import (
	"time"

	"gorm.io/gorm"
)

// Retention is one default-reviewer retention rule: how strongly a retained
// reviewer must remain on reviews touching the project or branch. The value
// follows the reviewer requirement encoding: "" optional, "1" one-of-group,
// "true" required (all members for groups).
type Retention struct {
	Required string `json:"required,omitempty"`
}

// Requires reports whether the rule demands a non-optional reviewer.
func (r Retention) Requires() bool {
	return r.Required == "true" || r.Required == "1"
}

// Project represents a project entity in the system.
// Matches the projects table schema; list and map fields are stored as JSON.
type Project struct {
	ProjectID string `gorm:"primaryKey;column:project_id;type:varchar(255)" json:"project_id"`
	Name      string `gorm:"column:name;type:varchar(255);not null"         json:"name"`
	// Members lists member user ids and group ids (group-marker prefixed).
	Members []string `gorm:"column:members;serializer:json" json:"members"`
	// Owners lists owner user ids.
	Owners []string `gorm:"column:owners;serializer:json" json:"owners"`
	// DefaultReviewers maps reviewer ids to project-level retention rules.
	DefaultReviewers map[string]Retention `gorm:"column:default_reviewers;serializer:json" json:"default_reviewers"`
	// Branches are loaded alongside the project by the repository.
	Branches  []Branch  `gorm:"foreignKey:ProjectID;references:ProjectID"                 json:"branches"`
	CreatedAt time.Time `gorm:"column:created_at;type:timestamptz;not null;default:now()" json:"-"`
	UpdatedAt time.Time `gorm:"column:updated_at;type:timestamptz;not null;default:now()" json:"-"`
}

// TableName specifies the table name for GORM.
func (Project) TableName() string {
	return "projects"
}

// BeforeUpdate updates the UpdatedAt timestamp before saving.
func (p *Project) BeforeUpdate(tx *gorm.DB) error {
	p.UpdatedAt = time.Now()
	return nil
}

// Branch represents one named branch of a project.
// Matches the branches table schema.
type Branch struct {
	ID        int64  `gorm:"primaryKey;column:id;type:bigserial"                                      json:"id"`
	ProjectID string `gorm:"column:project_id;type:varchar(255);not null;index:idx_branches_project"  json:"project_id"`
	Name      string `gorm:"column:name;type:varchar(255);not null"                                   json:"name"`
	// Moderators lists moderator user ids and group ids for this branch. A
	// branch with a non-empty list is a moderated branch.
	Moderators []string `gorm:"column:moderators;serializer:json" json:"moderators"`
	// DefaultReviewers maps reviewer ids to branch-level retention rules.
	DefaultReviewers map[string]Retention `gorm:"column:default_reviewers;serializer:json"                  json:"default_reviewers"`
	CreatedAt        time.Time            `gorm:"column:created_at;type:timestamptz;not null;default:now()" json:"-"`
}

// TableName specifies the table name for GORM.
func (Branch) TableName() string {
	return "branches"
}

// IsModerated reports whether the branch has any moderators.
func (b Branch) IsModerated() bool {
	return len(b.Moderators) > 0
}

// BranchByName returns the named branch of the project, if present.
func (p *Project) BranchByName(name string) (Branch, bool) {
	for _, b := range p.Branches {
		if b.Name == name {
			return b, true
		}
	}
	return Branch{}, false
}
