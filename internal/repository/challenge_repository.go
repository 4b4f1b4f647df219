package repository

import (
	"time"

	"gorm.io/gorm"

	"github.com/habitloop/habitloop/internal/models"
)

// ChallengeRepository handles challenge and participant database operations.
type ChallengeRepository struct {
	db *DB
}

// NewChallengeRepository creates a new challenge repository.
func NewChallengeRepository(db *DB) *ChallengeRepository {
	return &ChallengeRepository{db: db}
}

// WithTx returns a copy of the repository bound to the given transaction.
func (r *ChallengeRepository) WithTx(tx *gorm.DB) *ChallengeRepository {
	return &ChallengeRepository{db: &DB{tx}}
}

// Create adds a challenge.
func (r *ChallengeRepository) Create(challenge *models.Challenge) error {
	return r.db.Create(challenge).Error
}

// Join registers a user as a participant.
func (r *ChallengeRepository) Join(challengeID, userID uint) error {
	participant := &models.ChallengeParticipant{
		ChallengeID: challengeID,
		UserID:      userID,
		JoinedAt:    time.Now(),
	}
	return r.db.Create(participant).Error
}

// ActiveParticipations returns a user's incomplete participations whose
// challenge window contains the given instant, challenges preloaded.
func (r *ChallengeRepository) ActiveParticipations(userID uint, at time.Time) ([]models.ChallengeParticipant, error) {
	var participants []models.ChallengeParticipant
	err := r.db.
		Joins("JOIN challenges ON challenges.id = challenge_participants.challenge_id").
		Where("challenge_participants.user_id = ? AND challenge_participants.completed = ?", userID, false).
		Where("challenges.starts_at <= ? AND challenges.ends_at > ?", at, at).
		Preload("Challenge").
		Find(&participants).Error
	return participants, err
}

// UpdateParticipant saves participant progress.
func (r *ChallengeRepository) UpdateParticipant(participant *models.ChallengeParticipant) error {
	return r.db.Save(participant).Error
}
