package repository

import (
	"time"

	"gorm.io/gorm"

	"github.com/habitloop/habitloop/internal/models"
)

// AttemptRepository handles completion attempt database operations.
type AttemptRepository struct {
	db *DB
}

// NewAttemptRepository creates a new attempt repository.
func NewAttemptRepository(db *DB) *AttemptRepository {
	return &AttemptRepository{db: db}
}

// WithTx returns a copy of the repository bound to the given transaction.
func (r *AttemptRepository) WithTx(tx *gorm.DB) *AttemptRepository {
	return &AttemptRepository{db: &DB{tx}}
}

// Create creates a new completion attempt.
func (r *AttemptRepository) Create(attempt *models.CompletionAttempt) error {
	return r.db.Create(attempt).Error
}

// GetByID retrieves an attempt by its ID.
func (r *AttemptRepository) GetByID(id uint) (*models.CompletionAttempt, error) {
	var attempt models.CompletionAttempt
	err := r.db.First(&attempt, id).Error
	if err != nil {
		return nil, err
	}
	return &attempt, nil
}

// Update saves an existing attempt.
func (r *AttemptRepository) Update(attempt *models.CompletionAttempt) error {
	return r.db.Save(attempt).Error
}

// HasValidatedInWindow reports whether the habit already has a validated
// completion inside [start, end). This is the once-per-day gate query.
func (r *AttemptRepository) HasValidatedInWindow(habitID uint, start, end time.Time) (bool, error) {
	var count int64
	err := r.db.Model(&models.CompletionAttempt{}).
		Where("habit_id = ? AND is_validated = ? AND settled_at >= ? AND settled_at < ?",
			habitID, true, start, end).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// FindPendingInWindow returns an unsettled attempt for the habit created
// inside [start, end), if one exists. Lets a claim retry resume the pending
// interview instead of opening a second one.
func (r *AttemptRepository) FindPendingInWindow(habitID uint, start, end time.Time) (*models.CompletionAttempt, error) {
	var attempt models.CompletionAttempt
	err := r.db.
		Where("habit_id = ? AND state <> ? AND created_at >= ? AND created_at < ?",
			habitID, models.AttemptStateSettled, start, end).
		Order("created_at DESC").
		First(&attempt).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &attempt, nil
}

// ListByHabit retrieves attempts for a habit, most recent first.
func (r *AttemptRepository) ListByHabit(habitID uint, limit int) ([]models.CompletionAttempt, error) {
	var attempts []models.CompletionAttempt
	q := r.db.Where("habit_id = ?", habitID).Order("created_at DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	err := q.Find(&attempts).Error
	return attempts, err
}
