package models

import (
	"time"
)

// Challenge requirement type constants.
const (
	RequirementCompletions = "completions"
	RequirementStreak      = "streak"
	RequirementCategory    = "category"
)

// Challenge defines a time-boxed goal: a number of completions, a streak
// length, or a count of completions within a category.
type Challenge struct {
	ID                uint      `gorm:"primaryKey" json:"id"`
	Title             string    `gorm:"not null;size:200" json:"title"`
	Description       string    `gorm:"type:text" json:"description"`
	RequirementType   string    `gorm:"size:20;not null" json:"requirement_type"`
	RequirementTarget int       `gorm:"not null" json:"requirement_target"`
	Category          string    `gorm:"size:100" json:"category"` // only for category requirements
	StartsAt          time.Time `gorm:"not null;index" json:"starts_at"`
	EndsAt            time.Time `gorm:"not null;index" json:"ends_at"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// TableName specifies the table name for Challenge model.
func (Challenge) TableName() string {
	return "challenges"
}

// WindowContains reports whether t falls inside the challenge window.
func (c *Challenge) WindowContains(t time.Time) bool {
	return !t.Before(c.StartsAt) && t.Before(c.EndsAt)
}

// ChallengeParticipant tracks a single user's progress within a challenge.
type ChallengeParticipant struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	ChallengeID uint       `gorm:"not null;uniqueIndex:idx_challenge_user" json:"challenge_id"`
	Challenge   Challenge  `gorm:"foreignKey:ChallengeID" json:"challenge,omitempty"`
	UserID      uint       `gorm:"not null;uniqueIndex:idx_challenge_user" json:"user_id"`
	Progress    int        `gorm:"default:0" json:"progress"`
	Completed   bool       `gorm:"default:false" json:"completed"`
	CompletedAt *time.Time `json:"completed_at"`
	JoinedAt    time.Time  `gorm:"not null" json:"joined_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// TableName specifies the table name for ChallengeParticipant model.
func (ChallengeParticipant) TableName() string {
	return "challenge_participants"
}
