// Package repository provides data access layer for the application.
package repository

import (
	"gorm.io/gorm"

	"github.com/habitloop/habitloop/internal/models"
)

// HabitRepository handles habit-related database operations.
type HabitRepository struct {
	db *DB
}

// NewHabitRepository creates a new habit repository.
func NewHabitRepository(db *DB) *HabitRepository {
	return &HabitRepository{db: db}
}

// WithTx returns a copy of the repository bound to the given transaction.
func (r *HabitRepository) WithTx(tx *gorm.DB) *HabitRepository {
	return &HabitRepository{db: &DB{tx}}
}

// Create creates a new habit in the database.
func (r *HabitRepository) Create(habit *models.Habit) error {
	return r.db.Create(habit).Error
}

// GetByID retrieves a habit by its ID.
func (r *HabitRepository) GetByID(id uint) (*models.Habit, error) {
	var habit models.Habit
	err := r.db.First(&habit, id).Error
	if err != nil {
		return nil, err
	}
	return &habit, nil
}

// ListByUser retrieves habits for a user. When activeOnly is true only
// active habits are returned.
func (r *HabitRepository) ListByUser(userID uint, activeOnly bool) ([]models.Habit, error) {
	var habits []models.Habit
	q := r.db.Where("user_id = ?", userID)
	if activeOnly {
		q = q.Where("is_active = ?", true)
	}
	err := q.Order("created_at ASC").Find(&habits).Error
	return habits, err
}

// Update saves an existing habit.
func (r *HabitRepository) Update(habit *models.Habit) error {
	return r.db.Save(habit).Error
}

// Deactivate soft-deletes a habit by clearing its active flag.
func (r *HabitRepository) Deactivate(id uint) error {
	return r.db.Model(&models.Habit{}).
		Where("id = ?", id).
		Update("is_active", false).Error
}

// CountActiveWithStreakAtLeast counts a user's active habits whose current
// streak is at least minStreak. Used by badge predicates.
func (r *HabitRepository) CountActiveWithStreakAtLeast(userID uint, minStreak int) (int64, error) {
	var count int64
	err := r.db.Model(&models.Habit{}).
		Where("user_id = ? AND is_active = ? AND streak >= ?", userID, true, minStreak).
		Count(&count).Error
	return count, err
}
