package model

import (
	"strings"
	"time"

	"gorm.io/gorm"
)

// GroupPrefix marks an id as referring to a group rather than a user.
const GroupPrefix = "group-"

// IsGroup reports whether the id carries the group marker.
func IsGroup(id string) bool {
	return strings.HasPrefix(id, GroupPrefix)
}

// GroupKey strips the group marker from an id.
func GroupKey(id string) string {
	return strings.TrimPrefix(id, GroupPrefix)
}

// User represents a user entity in the system.
// Matches the users table schema.
type User struct {
	UserID    string    `gorm:"primaryKey;column:user_id;type:varchar(255)"               json:"user_id"`
	Username  string    `gorm:"column:username;type:varchar(255);not null"                json:"username"`
	IsSuper   bool      `gorm:"column:is_super;type:boolean;not null;default:false"       json:"is_super"`
	IsActive  bool      `gorm:"column:is_active;type:boolean;not null;default:true"       json:"is_active"`
	CreatedAt time.Time `gorm:"column:created_at;type:timestamptz;not null;default:now()" json:"-"`
	UpdatedAt time.Time `gorm:"column:updated_at;type:timestamptz;not null;default:now()" json:"-"`
}

// TableName specifies the table name for GORM.
func (User) TableName() string {
	return "users"
}

// BeforeUpdate updates the UpdatedAt timestamp before saving.
func (u *User) BeforeUpdate(tx *gorm.DB) error {
	u.UpdatedAt = time.Now()
	return nil
}

// Group represents a named set of users.
// Matches the groups table schema; the member list is stored as JSON.
type Group struct {
	GroupName string    `gorm:"primaryKey;column:group_name;type:varchar(255)"            json:"group_name"`
	Members   []string  `gorm:"column:members;serializer:json"                            json:"members"`
	CreatedAt time.Time `gorm:"column:created_at;type:timestamptz;not null;default:now()" json:"-"`
	UpdatedAt time.Time `gorm:"column:updated_at;type:timestamptz;not null;default:now()" json:"-"`
}

// TableName specifies the table name for GORM.
func (Group) TableName() string {
	return "groups"
}

// BeforeUpdate updates the UpdatedAt timestamp before saving.
func (g *Group) BeforeUpdate(tx *gorm.DB) error {
	g.UpdatedAt = time.Now()
	return nil
}
