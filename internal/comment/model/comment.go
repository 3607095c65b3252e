package model

import (
	"fmt"
	"time"
)

// Task states a comment can carry. A plain comment is not a task.
const (
	TaskStateNone      = ""
	TaskStateOpen      = "open"
	TaskStateAddressed = "addressed"
	TaskStateVerified  = "verified"
)

// Comment represents a comment on a review topic.
// Matches the comments table schema.
type Comment struct {
	CommentID string `gorm:"primaryKey;column:comment_id;type:varchar(36)"                      json:"comment_id"`
	Topic     string `gorm:"column:topic;type:varchar(255);not null;index:idx_comments_topic"   json:"topic"`
	UserID    string `gorm:"column:user_id;type:varchar(255);not null"                          json:"user_id"`
	Body      string `gorm:"column:body;type:text;not null"                                     json:"body"`
	TaskState string `gorm:"column:task_state;type:varchar(32)"                                 json:"task_state,omitempty"`
	Archived  bool   `gorm:"column:archived;type:boolean;not null;default:false"                json:"archived"`
	// Silenced suppresses downstream notification fan-out for this comment.
	Silenced  bool      `gorm:"column:silenced;type:boolean;not null;default:false"       json:"silenced"`
	CreatedAt time.Time `gorm:"column:created_at;type:timestamptz;not null;default:now()" json:"-"`
}

// TableName specifies the table name for GORM.
func (Comment) TableName() string {
	return "comments"
}

// ReviewTopic returns the comment topic for a review id.
func ReviewTopic(reviewID string) string {
	return fmt.Sprintf("reviews/%s", reviewID)
}
