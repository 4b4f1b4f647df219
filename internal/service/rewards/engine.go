// Package rewards converts completion outcomes into XP, level, and coin
// state transitions on the user profile.
package rewards

import (
	"time"

	"github.com/habitloop/habitloop/internal/models"
)

// Base XP per difficulty.
const (
	XPEasy   = 10
	XPMedium = 15
	XPHard   = 25

	// EarlyBirdBonus is added when the completion lands before the
	// configured local hour.
	EarlyBirdBonus = 5

	// Consolation XP for attempts that were not validated.
	ConsolationHigh = 3 // confidence >= 60
	ConsolationLow  = 1

	xpPerLevel = 100
	xpPerCoin  = 5

	// confidence threshold for the higher consolation grant
	consolationThreshold = 60
)

// Outcome describes the profile delta produced by one reward event.
type Outcome struct {
	XPGained    int  `json:"xp_gained"`
	TotalXP     int  `json:"total_xp"`
	OldLevel    int  `json:"old_level"`
	NewLevel    int  `json:"new_level"`
	LeveledUp   bool `json:"leveled_up"`
	CoinsGained int  `json:"coins_gained"`
	Coins       int  `json:"coins"`
	EarlyBird   bool `json:"early_bird"`
}

// Engine computes and applies reward state transitions.
type Engine struct {
	earlyBirdHour int
	loc           *time.Location
}

// NewEngine creates a reward engine. earlyBirdHour is the local hour before
// which the early-completion bonus applies.
func NewEngine(earlyBirdHour int, loc *time.Location) *Engine {
	if loc == nil {
		loc = time.Local
	}
	return &Engine{earlyBirdHour: earlyBirdHour, loc: loc}
}

// LevelForXP derives the level from cumulative XP. Recomputed everywhere so
// the level self-heals if totalXP is ever corrected.
func LevelForXP(totalXP int) int {
	if totalXP < 0 {
		totalXP = 0
	}
	return totalXP/xpPerLevel + 1
}

// CoinsForXP derives the coin reward from an XP gain (ceil of xp/5).
func CoinsForXP(xp int) int {
	if xp <= 0 {
		return 0
	}
	return (xp + xpPerCoin - 1) / xpPerCoin
}

// SuccessXP returns the XP for a validated completion of the given
// difficulty at completedAt, and whether the early-bird bonus applied.
func (e *Engine) SuccessXP(difficulty string, completedAt time.Time) (int, bool) {
	var xp int
	switch difficulty {
	case models.DifficultyEasy:
		xp = XPEasy
	case models.DifficultyHard:
		xp = XPHard
	default:
		xp = XPMedium
	}

	early := completedAt.In(e.loc).Hour() < e.earlyBirdHour
	if early {
		xp += EarlyBirdBonus
	}
	return xp, early
}

// ConsolationXP returns the small grant for an attempt that failed
// validation. Keeps engagement without rewarding failure as success.
func ConsolationXP(confidence int) int {
	if confidence >= consolationThreshold {
		return ConsolationHigh
	}
	return ConsolationLow
}

// Apply mutates the profile with an XP grant and derives level and coins.
func (e *Engine) Apply(profile *models.UserProfile, xp int) Outcome {
	out := Outcome{
		XPGained: xp,
		OldLevel: LevelForXP(profile.TotalXP),
	}

	profile.TotalXP += xp
	profile.Level = LevelForXP(profile.TotalXP)

	out.TotalXP = profile.TotalXP
	out.NewLevel = profile.Level
	out.LeveledUp = out.NewLevel > out.OldLevel

	out.CoinsGained = CoinsForXP(xp)
	profile.Coins += out.CoinsGained
	out.Coins = profile.Coins

	return out
}
