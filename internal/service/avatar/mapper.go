// Package avatar derives the cosmetic avatar state from streak and level.
package avatar

import (
	"github.com/habitloop/habitloop/internal/models"
)

// State is the derived avatar snapshot. It is a pure projection of
// (streak, level) and is recomputed rather than incrementally updated, so it
// can never drift.
type State struct {
	Mood          string `json:"mood"`
	EvolutionTier int    `json:"evolution_tier"`
}

// Map computes the avatar state for a streak length and user level.
func Map(streak, level int) State {
	return State{
		Mood:          moodForStreak(streak),
		EvolutionTier: tierForLevel(level),
	}
}

// ApplyTo stores the computed snapshot on the profile.
func ApplyTo(profile *models.UserProfile, streak int) {
	state := Map(streak, profile.Level)
	profile.AvatarMood = state.Mood
	profile.AvatarTier = state.EvolutionTier
}

func moodForStreak(streak int) string {
	switch {
	case streak >= 30:
		return models.MoodExcited
	case streak >= 14:
		return models.MoodMotivated
	case streak >= 3:
		return models.MoodHappy
	default:
		return models.MoodTired
	}
}

func tierForLevel(level int) int {
	switch {
	case level >= 50:
		return 5
	case level >= 30:
		return 4
	case level >= 20:
		return 3
	case level >= 10:
		return 2
	default:
		return 1
	}
}
