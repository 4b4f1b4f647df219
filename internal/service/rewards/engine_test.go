package rewards

import (
	"math/rand"
	"testing"
	"time"

	"github.com/habitloop/habitloop/internal/models"
)

func TestSuccessXP_Difficulty(t *testing.T) {
	engine := NewEngine(8, time.UTC)
	midday := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		difficulty string
		want       int
	}{
		{models.DifficultyEasy, 10},
		{models.DifficultyMedium, 15},
		{models.DifficultyHard, 25},
		{"unknown", 15}, // defaults to medium
	}

	for _, tt := range tests {
		xp, early := engine.SuccessXP(tt.difficulty, midday)
		if xp != tt.want {
			t.Errorf("SuccessXP(%q) = %d, want %d", tt.difficulty, xp, tt.want)
		}
		if early {
			t.Errorf("Midday completion should not be early-bird for %q", tt.difficulty)
		}
	}
}

func TestSuccessXP_EarlyBird(t *testing.T) {
	engine := NewEngine(8, time.UTC)

	early := time.Date(2025, 3, 10, 6, 30, 0, 0, time.UTC)
	xp, isEarly := engine.SuccessXP(models.DifficultyMedium, early)
	if xp != 20 {
		t.Errorf("Expected 15+5 early-bird XP, got %d", xp)
	}
	if !isEarly {
		t.Error("Expected early-bird flag before 08:00")
	}

	// 08:00 exactly is not early.
	boundary := time.Date(2025, 3, 10, 8, 0, 0, 0, time.UTC)
	xp, isEarly = engine.SuccessXP(models.DifficultyMedium, boundary)
	if xp != 15 || isEarly {
		t.Errorf("08:00 should not qualify, got xp=%d early=%v", xp, isEarly)
	}
}

func TestConsolationXP(t *testing.T) {
	tests := []struct {
		confidence int
		want       int
	}{
		{0, 1},
		{59, 1},
		{60, 3},
		{79, 3},
	}

	for _, tt := range tests {
		if got := ConsolationXP(tt.confidence); got != tt.want {
			t.Errorf("ConsolationXP(%d) = %d, want %d", tt.confidence, got, tt.want)
		}
	}
}

func TestLevelForXP(t *testing.T) {
	tests := []struct {
		xp   int
		want int
	}{
		{0, 1},
		{99, 1},
		{100, 2},
		{250, 3},
		{-5, 1},
	}

	for _, tt := range tests {
		if got := LevelForXP(tt.xp); got != tt.want {
			t.Errorf("LevelForXP(%d) = %d, want %d", tt.xp, got, tt.want)
		}
	}
}

func TestCoinsForXP(t *testing.T) {
	tests := []struct {
		xp   int
		want int
	}{
		{0, 0},
		{1, 1},
		{5, 1},
		{6, 2},
		{20, 4},
		{25, 5},
	}

	for _, tt := range tests {
		if got := CoinsForXP(tt.xp); got != tt.want {
			t.Errorf("CoinsForXP(%d) = %d, want %d", tt.xp, got, tt.want)
		}
	}
}

func TestApply_LevelUp(t *testing.T) {
	engine := NewEngine(8, time.UTC)
	profile := &models.UserProfile{UserID: 1, TotalXP: 95, Level: 1}

	out := engine.Apply(profile, 20)

	if out.TotalXP != 115 {
		t.Errorf("Expected total XP 115, got %d", out.TotalXP)
	}
	if !out.LeveledUp || out.NewLevel != 2 {
		t.Errorf("Expected level-up to 2, got leveledUp=%v level=%d", out.LeveledUp, out.NewLevel)
	}
	if out.CoinsGained != 4 {
		t.Errorf("Expected 4 coins for 20 XP, got %d", out.CoinsGained)
	}
	if profile.Level != 2 || profile.Coins != 4 {
		t.Errorf("Profile not mutated as expected: level=%d coins=%d", profile.Level, profile.Coins)
	}
}

func TestApply_LevelDerivedFromTotal(t *testing.T) {
	engine := NewEngine(8, time.UTC)
	profile := &models.UserProfile{UserID: 1}

	// Level is recomputed from cumulative XP on every grant, never
	// incremented, so any grant sequence lands on the same level.
	grants := []int{10, 15, 25, 3, 1, 20, 30, 15}
	total := 0
	for _, g := range grants {
		engine.Apply(profile, g)
		total += g
	}

	if profile.TotalXP != total {
		t.Errorf("Expected total XP %d, got %d", total, profile.TotalXP)
	}
	if profile.Level != LevelForXP(total) {
		t.Errorf("Expected level %d, got %d", LevelForXP(total), profile.Level)
	}
}

func TestApply_LevelInvariantUnderRandomGrants(t *testing.T) {
	engine := NewEngine(8, time.UTC)
	rng := rand.New(rand.NewSource(1))

	// The level must equal totalXP/100+1 after every single grant, not just
	// at the end of a sequence.
	for trial := 0; trial < 20; trial++ {
		profile := &models.UserProfile{UserID: uint(trial + 1), Level: 1}
		for i := 0; i < 200; i++ {
			grant := rng.Intn(31)
			engine.Apply(profile, grant)
			if want := profile.TotalXP/100 + 1; profile.Level != want {
				t.Fatalf("Trial %d, grant %d of %d XP: total=%d level=%d, want %d",
					trial, i, grant, profile.TotalXP, profile.Level, want)
			}
		}
	}
}
