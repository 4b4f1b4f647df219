// Package models defines domain models for the habit reward engine.
package models

import (
	"time"
)

// Habit frequency constants.
const (
	FrequencyDaily  = "daily"
	FrequencyWeekly = "weekly"
)

// Habit difficulty constants.
const (
	DifficultyEasy   = "easy"
	DifficultyMedium = "medium"
	DifficultyHard   = "hard"
)

// Habit represents a recurring habit owned by a user.
// Streak counters are mutated only by a successfully validated completion.
type Habit struct {
	ID               uint       `gorm:"primaryKey" json:"id"`
	UserID           uint       `gorm:"not null;index" json:"user_id"`
	Title            string     `gorm:"not null;size:200" json:"title"`
	Description      string     `gorm:"type:text" json:"description"`
	Category         string     `gorm:"size:100;index" json:"category"`
	Frequency        string     `gorm:"size:20;default:daily" json:"frequency"`
	Difficulty       string     `gorm:"size:20;default:medium" json:"difficulty"`
	Streak           int        `gorm:"default:0" json:"streak"`
	LongestStreak    int        `gorm:"default:0" json:"longest_streak"`
	TotalCompletions int        `gorm:"default:0" json:"total_completions"`
	LastCompletedAt  *time.Time `json:"last_completed_at"`
	IsActive         bool       `gorm:"default:true;index" json:"is_active"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}

// TableName specifies the table name for Habit model.
func (Habit) TableName() string {
	return "habits"
}

// ValidDifficulty reports whether d is a known difficulty.
func ValidDifficulty(d string) bool {
	return d == DifficultyEasy || d == DifficultyMedium || d == DifficultyHard
}

// ValidFrequency reports whether f is a known frequency.
func ValidFrequency(f string) bool {
	return f == FrequencyDaily || f == FrequencyWeekly
}
