package repository

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/habitloop/habitloop/internal/models"
)

// ErrVersionConflict is returned when an optimistic-version save loses a race
// with a concurrent writer.
var ErrVersionConflict = errors.New("profile version conflict")

// ProfileRepository handles user gamification profile database operations.
type ProfileRepository struct {
	db *DB
}

// NewProfileRepository creates a new profile repository.
func NewProfileRepository(db *DB) *ProfileRepository {
	return &ProfileRepository{db: db}
}

// WithTx returns a copy of the repository bound to the given transaction.
func (r *ProfileRepository) WithTx(tx *gorm.DB) *ProfileRepository {
	return &ProfileRepository{db: &DB{tx}}
}

// GetOrCreate retrieves a user's profile, creating a fresh one on first use.
func (r *ProfileRepository) GetOrCreate(userID uint) (*models.UserProfile, error) {
	var profile models.UserProfile
	err := r.db.Where("user_id = ?", userID).First(&profile).Error
	if err == nil {
		return &profile, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	profile = models.UserProfile{
		UserID:     userID,
		Level:      1,
		AvatarMood: models.MoodTired,
		AvatarTier: 1,
	}
	if err := r.db.Create(&profile).Error; err != nil {
		return nil, err
	}
	return &profile, nil
}

// GetWithBadges retrieves a profile with badges and inventory preloaded.
func (r *ProfileRepository) GetWithBadges(userID uint) (*models.UserProfile, error) {
	var profile models.UserProfile
	err := r.db.
		Where("user_id = ?", userID).
		Preload("Badges").
		Preload("Inventory.ShopItem").
		First(&profile).Error
	if err != nil {
		return nil, err
	}
	return &profile, nil
}

// SaveWithVersion persists profile mutations guarded by the optimistic
// version column. Returns ErrVersionConflict when a concurrent writer has
// advanced the row since it was read.
func (r *ProfileRepository) SaveWithVersion(profile *models.UserProfile) error {
	currentVersion := profile.Version
	profile.Version++

	result := r.db.Model(&models.UserProfile{}).
		Where("user_id = ? AND version = ?", profile.UserID, currentVersion).
		Updates(map[string]interface{}{
			"total_xp":               profile.TotalXP,
			"level":                  profile.Level,
			"coins":                  profile.Coins,
			"avatar_mood":            profile.AvatarMood,
			"avatar_tier":            profile.AvatarTier,
			"avatar_skin":            profile.AvatarSkin,
			"avatar_accessories":     profile.AvatarAccessories,
			"total_habits_completed": profile.TotalHabitsCompleted,
			"early_bird_count":       profile.EarlyBirdCount,
			"version":                profile.Version,
			"updated_at":             time.Now(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		profile.Version = currentVersion
		return ErrVersionConflict
	}
	return nil
}

// AwardBadge records a badge award for a user. Awarding is idempotent: a
// badge already held is not duplicated.
func (r *ProfileRepository) AwardBadge(userID uint, badgeID, name, rarity string) error {
	exists, err := r.HasBadge(userID, badgeID)
	if err != nil {
		return err
	}
	if exists {
		// Idempotent: already awarded, return success
		return nil
	}

	award := &models.BadgeAward{
		UserID:   userID,
		BadgeID:  badgeID,
		Name:     name,
		Rarity:   rarity,
		EarnedAt: time.Now(),
	}
	return r.db.Create(award).Error
}

// HasBadge checks if a user already holds a specific badge.
func (r *ProfileRepository) HasBadge(userID uint, badgeID string) (bool, error) {
	var count int64
	err := r.db.Model(&models.BadgeAward{}).
		Where("user_id = ? AND badge_id = ?", userID, badgeID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// GetBadges retrieves all badges earned by a user, most recent first.
func (r *ProfileRepository) GetBadges(userID uint) ([]models.BadgeAward, error) {
	var awards []models.BadgeAward
	err := r.db.
		Where("user_id = ?", userID).
		Order("earned_at DESC").
		Find(&awards).Error
	return awards, err
}

// TopByXP returns the highest-XP profiles, for the dashboard leaderboard.
func (r *ProfileRepository) TopByXP(limit int) ([]models.UserProfile, error) {
	var profiles []models.UserProfile
	err := r.db.
		Order("total_xp DESC").
		Limit(limit).
		Find(&profiles).Error
	return profiles, err
}
