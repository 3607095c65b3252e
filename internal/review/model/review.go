package model

import (
	"time"

	"gorm.io/gorm"
)

// Vote values recorded against a review version.
const (
	VoteUp   = 1
	VoteDown = -1
)

// Vote is a single user's vote on a review at a specific version.
type Vote struct {
	Value   int `json:"value"`
	Version int `json:"version"`
}

// IsUp reports whether the vote is an up-vote.
func (v Vote) IsUp() bool {
	return v.Value > 0
}

// Requirement describes how strongly a reviewer entry is required.
type Requirement string

const (
	// RequireNone marks an optional reviewer.
	RequireNone Requirement = ""
	// RequireOne marks a group entry satisfied once any one member votes up.
	RequireOne Requirement = "1"
	// RequireAll marks an entry whose every member (or the individual user)
	// must vote up.
	RequireAll Requirement = "true"
)

// ReviewerEntry is one reviewer or group reference on a review.
type ReviewerEntry struct {
	Required Requirement `json:"required,omitempty"`
}

// Review represents a code review aggregate.
// Matches the reviews table schema; map-valued fields are stored as JSON.
type Review struct {
	ReviewID     string                   `gorm:"primaryKey;column:review_id;type:varchar(255)"                             json:"review_id"`
	ChangeID     string                   `gorm:"column:change_id;type:varchar(255);not null;index:idx_reviews_change_id"  json:"change_id"`
	Author       string                   `gorm:"column:author;type:varchar(255);not null;index:idx_reviews_author"        json:"author"`
	State        State                    `gorm:"column:state;type:varchar(32);not null"                                   json:"state"`
	Description  string                   `gorm:"column:description;type:text"                                             json:"description"`
	HeadVersion  int                      `gorm:"column:head_version;type:integer;not null;default:1"                      json:"head_version"`
	TestStatus   string                   `gorm:"column:test_status;type:varchar(32)"                                      json:"test_status,omitempty"`
	CommitStatus string                   `gorm:"column:commit_status;type:varchar(255)"                                   json:"commit_status,omitempty"`
	Approvals    map[string][]int         `gorm:"column:approvals;serializer:json"                                         json:"approvals"`
	Votes        map[string]Vote          `gorm:"column:votes;serializer:json"                                             json:"votes"`
	Participants map[string]ReviewerEntry `gorm:"column:participants;serializer:json"                                      json:"participants"`
	Projects     map[string][]string      `gorm:"column:projects;serializer:json"                                          json:"projects"`
	CreatedAt    time.Time                `gorm:"column:created_at;type:timestamptz;not null;default:now()"                json:"-"`
	UpdatedAt    time.Time                `gorm:"column:updated_at;type:timestamptz;not null;default:now()"                json:"-"`
}

// TableName specifies the table name for GORM.
func (Review) TableName() string {
	return "reviews"
}

// BeforeUpdate updates the UpdatedAt timestamp before saving.
func (r *Review) BeforeUpdate(tx *gorm.DB) error {
	r.UpdatedAt = time.Now()
	return nil
}

// IsAuthor reports whether the given user authored the review.
func (r *Review) IsAuthor(userID string) bool {
	return userID != "" && r.Author == userID
}

// AddParticipant records the user as a review participant. Existing entries
// keep their required flag.
func (r *Review) AddParticipant(userID string) {
	if r.Participants == nil {
		r.Participants = make(map[string]ReviewerEntry)
	}
	if _, ok := r.Participants[userID]; !ok {
		r.Participants[userID] = ReviewerEntry{}
	}
}

// AddVote records the user's vote at the given version, replacing any
// previous vote by the same user.
func (r *Review) AddVote(userID string, value, version int) {
	if r.Votes == nil {
		r.Votes = make(map[string]Vote)
	}
	r.Votes[userID] = Vote{Value: value, Version: version}
}

// HasUpVoted reports whether the user has an up-vote at the given version.
func (r *Review) HasUpVoted(userID string, version int) bool {
	v, ok := r.Votes[userID]
	return ok && v.IsUp() && v.Version == version
}

// AddApproval records an approval of the given version by the user. The
// approval set only ever grows.
func (r *Review) AddApproval(userID string, version int) {
	if r.Approvals == nil {
		r.Approvals = make(map[string][]int)
	}
	for _, v := range r.Approvals[userID] {
		if v == version {
			return
		}
	}
	r.Approvals[userID] = append(r.Approvals[userID], version)
}

// HasApproved reports whether the user has approved the given version.
func (r *Review) HasApproved(userID string, version int) bool {
	for _, v := range r.Approvals[userID] {
		if v == version {
			return true
		}
	}
	return false
}

// ApproversOf returns the set of users that approved the given version.
func (r *Review) ApproversOf(version int) map[string]struct{} {
	out := make(map[string]struct{})
	for userID := range r.Approvals {
		if r.HasApproved(userID, version) {
			out[userID] = struct{}{}
		}
	}
	return out
}

// ProjectIDs returns the ids of all projects the review impacts.
func (r *Review) ProjectIDs() []string {
	out := make([]string, 0, len(r.Projects))
	for id := range r.Projects {
		out = append(out, id)
	}
	return out
}
