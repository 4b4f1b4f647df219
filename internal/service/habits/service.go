// Package habits provides habit lifecycle operations: create, list, get,
// and soft-delete. Streak counters are never mutated here; only a validated
// completion settlement touches them.
package habits

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/habitloop/habitloop/internal/models"
	"github.com/habitloop/habitloop/internal/repository"
	"github.com/habitloop/habitloop/pkg/logger"
)

// ErrHabitNotFound is returned when a habit does not exist or is not owned
// by the requesting user.
var ErrHabitNotFound = errors.New("habit not found")

// CreateInput carries the fields for a new habit.
type CreateInput struct {
	Title       string `json:"title" binding:"required"`
	Description string `json:"description"`
	Category    string `json:"category"`
	Frequency   string `json:"frequency"`
	Difficulty  string `json:"difficulty"`
}

// Service handles habit CRUD.
type Service struct {
	habits *repository.HabitRepository
	log    *logger.Logger
}

// NewService creates a new habit service.
func NewService(habits *repository.HabitRepository, log *logger.Logger) *Service {
	return &Service{habits: habits, log: log}
}

// Create creates a habit for the user.
//
//nolint:revive // ctx reserved for future context-aware operations
func (s *Service) Create(ctx context.Context, userID uint, input CreateInput) (*models.Habit, error) {
	if input.Frequency == "" {
		input.Frequency = models.FrequencyDaily
	}
	if input.Difficulty == "" {
		input.Difficulty = models.DifficultyMedium
	}
	if !models.ValidFrequency(input.Frequency) {
		return nil, fmt.Errorf("invalid frequency: %s", input.Frequency)
	}
	if !models.ValidDifficulty(input.Difficulty) {
		return nil, fmt.Errorf("invalid difficulty: %s", input.Difficulty)
	}

	habit := &models.Habit{
		UserID:      userID,
		Title:       input.Title,
		Description: input.Description,
		Category:    input.Category,
		Frequency:   input.Frequency,
		Difficulty:  input.Difficulty,
		IsActive:    true,
	}
	if err := s.habits.Create(habit); err != nil {
		return nil, err
	}

	s.log.Info().
		Uint("user_id", userID).
		Uint("habit_id", habit.ID).
		Str("title", habit.Title).
		Msg("Habit created")

	return habit, nil
}

// List returns the user's habits.
//
//nolint:revive // ctx reserved for future context-aware operations
func (s *Service) List(ctx context.Context, userID uint, activeOnly bool) ([]models.Habit, error) {
	return s.habits.ListByUser(userID, activeOnly)
}

// Get returns one of the user's habits by id.
//
//nolint:revive // ctx reserved for future context-aware operations
func (s *Service) Get(ctx context.Context, userID, habitID uint) (*models.Habit, error) {
	habit, err := s.habits.GetByID(habitID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrHabitNotFound
		}
		return nil, err
	}
	if habit.UserID != userID {
		return nil, ErrHabitNotFound
	}
	return habit, nil
}

// Deactivate soft-deletes one of the user's habits.
func (s *Service) Deactivate(ctx context.Context, userID, habitID uint) error {
	habit, err := s.Get(ctx, userID, habitID)
	if err != nil {
		return err
	}
	return s.habits.Deactivate(habit.ID)
}
