package avatar

import (
	"testing"

	"github.com/habitloop/habitloop/internal/models"
)

func TestMap_MoodBuckets(t *testing.T) {
	tests := []struct {
		streak int
		want   string
	}{
		{0, models.MoodTired},
		{2, models.MoodTired},
		{3, models.MoodHappy},
		{13, models.MoodHappy},
		{14, models.MoodMotivated},
		{29, models.MoodMotivated},
		{30, models.MoodExcited},
		{365, models.MoodExcited},
	}

	for _, tt := range tests {
		if got := Map(tt.streak, 1).Mood; got != tt.want {
			t.Errorf("Map(streak=%d).Mood = %q, want %q", tt.streak, got, tt.want)
		}
	}
}

func TestMap_TierBuckets(t *testing.T) {
	tests := []struct {
		level int
		want  int
	}{
		{1, 1},
		{9, 1},
		{10, 2},
		{19, 2},
		{20, 3},
		{30, 4},
		{49, 4},
		{50, 5},
	}

	for _, tt := range tests {
		if got := Map(0, tt.level).EvolutionTier; got != tt.want {
			t.Errorf("Map(level=%d).EvolutionTier = %d, want %d", tt.level, got, tt.want)
		}
	}
}

func TestApplyTo(t *testing.T) {
	profile := &models.UserProfile{UserID: 1, Level: 12}

	ApplyTo(profile, 15)

	if profile.AvatarMood != models.MoodMotivated {
		t.Errorf("Expected motivated mood, got %q", profile.AvatarMood)
	}
	if profile.AvatarTier != 2 {
		t.Errorf("Expected tier 2, got %d", profile.AvatarTier)
	}
}
