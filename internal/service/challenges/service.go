// Package challenges tracks per-participant progress toward time-boxed
// challenge requirements.
package challenges

import (
	"time"

	"gorm.io/gorm"

	"github.com/habitloop/habitloop/internal/models"
	"github.com/habitloop/habitloop/internal/repository"
	"github.com/habitloop/habitloop/pkg/logger"
)

// Service updates challenge progress when completions settle.
type Service struct {
	challenges *repository.ChallengeRepository
	log        *logger.Logger
}

// NewService creates a new challenge progress service.
func NewService(challenges *repository.ChallengeRepository, log *logger.Logger) *Service {
	return &Service{challenges: challenges, log: log}
}

// OnCompletion advances the user's active participations after a validated
// completion of habit at completedAt. Runs inside the settlement
// transaction so challenge progress commits with the rest of the reward.
func (s *Service) OnCompletion(tx *gorm.DB, userID uint, habit *models.Habit, completedAt time.Time) error {
	repo := s.challenges.WithTx(tx)

	participations, err := repo.ActiveParticipations(userID, completedAt)
	if err != nil {
		return err
	}

	for i := range participations {
		p := &participations[i]
		if !p.Challenge.WindowContains(completedAt) {
			continue
		}

		switch p.Challenge.RequirementType {
		case models.RequirementCompletions:
			p.Progress++
		case models.RequirementCategory:
			if habit.Category == p.Challenge.Category {
				p.Progress++
			} else {
				continue
			}
		case models.RequirementStreak:
			if habit.Streak > p.Progress {
				p.Progress = habit.Streak
			} else {
				continue
			}
		default:
			continue
		}

		if !p.Completed && p.Progress >= p.Challenge.RequirementTarget {
			p.Completed = true
			now := completedAt
			p.CompletedAt = &now
			s.log.Info().
				Uint("user_id", userID).
				Uint("challenge_id", p.ChallengeID).
				Msg("Challenge completed")
		}

		if err := repo.UpdateParticipant(p); err != nil {
			return err
		}
	}

	return nil
}
