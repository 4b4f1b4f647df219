package models

import (
	"time"
)

// Avatar mood constants.
const (
	MoodExcited   = "excited"
	MoodMotivated = "motivated"
	MoodHappy     = "happy"
	MoodTired     = "tired"
)

// UserProfile is the per-user gamification aggregate. It is the single
// mutation target for every reward calculation; Level is always recomputed
// from TotalXP, never incremented ad hoc.
type UserProfile struct {
	ID      uint `gorm:"primaryKey" json:"id"`
	UserID  uint `gorm:"uniqueIndex;not null" json:"user_id"`
	TotalXP int  `gorm:"default:0" json:"total_xp"`
	Level   int  `gorm:"default:1" json:"level"`
	Coins   int  `gorm:"default:0" json:"coins"`

	// Avatar snapshot, recomputed after every settlement.
	AvatarMood        string     `gorm:"size:20;default:tired" json:"avatar_mood"`
	AvatarTier        int        `gorm:"default:1" json:"avatar_tier"`
	AvatarSkin        string     `gorm:"size:100" json:"avatar_skin"`
	AvatarAccessories StringList `gorm:"type:jsonb" json:"avatar_accessories"`

	// Aggregate stats inspected by badge predicates.
	TotalHabitsCompleted int `gorm:"default:0" json:"total_habits_completed"`
	EarlyBirdCount       int `gorm:"default:0" json:"early_bird_count"`

	// Optimistic concurrency guard for the reward pipeline.
	Version uint `gorm:"default:0" json:"-"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Badges    []BadgeAward    `gorm:"foreignKey:UserID;references:UserID" json:"badges,omitempty"`
	Inventory []InventoryItem `gorm:"foreignKey:UserID;references:UserID" json:"inventory,omitempty"`
}

// TableName specifies the table name for UserProfile model.
func (UserProfile) TableName() string {
	return "user_profiles"
}

// HasBadge reports whether the profile already holds the given badge.
func (p *UserProfile) HasBadge(badgeID string) bool {
	for _, b := range p.Badges {
		if b.BadgeID == badgeID {
			return true
		}
	}
	return false
}

// BadgeAward represents a badge earned by a user. The composite unique index
// enforces at most one copy of each badge per user.
type BadgeAward struct {
	ID       uint      `gorm:"primaryKey" json:"id"`
	UserID   uint      `gorm:"not null;uniqueIndex:idx_user_badge" json:"user_id"`
	BadgeID  string    `gorm:"size:50;not null;uniqueIndex:idx_user_badge" json:"badge_id"`
	Name     string    `gorm:"size:100" json:"name"`
	Rarity   string    `gorm:"size:20" json:"rarity"`
	EarnedAt time.Time `gorm:"not null" json:"earned_at"`
}

// TableName specifies the table name for BadgeAward model.
func (BadgeAward) TableName() string {
	return "badge_awards"
}
