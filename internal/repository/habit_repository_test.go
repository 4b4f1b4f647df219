package repository

import (
	"testing"

	"github.com/habitloop/habitloop/internal/models"
)

func TestHabitRepository_CreateAndGet(t *testing.T) {
	db := setupTestDB(t)
	repo := NewHabitRepository(db)

	habit := &models.Habit{
		UserID:     1,
		Title:      "Morning run",
		Category:   "fitness",
		Frequency:  models.FrequencyDaily,
		Difficulty: models.DifficultyHard,
		IsActive:   true,
	}
	if err := repo.Create(habit); err != nil {
		t.Fatalf("Create() failed: %v", err)
	}
	if habit.ID == 0 {
		t.Fatal("Expected habit ID to be set after creation")
	}

	got, err := repo.GetByID(habit.ID)
	if err != nil {
		t.Fatalf("GetByID() failed: %v", err)
	}
	if got.Title != "Morning run" || got.Difficulty != models.DifficultyHard {
		t.Errorf("Habit did not round-trip: %+v", got)
	}
}

func TestHabitRepository_ListByUser(t *testing.T) {
	db := setupTestDB(t)
	repo := NewHabitRepository(db)

	createTestHabit(t, db, 1, "Run")
	second := createTestHabit(t, db, 1, "Read")
	createTestHabit(t, db, 2, "Meditate")

	if err := repo.Deactivate(second.ID); err != nil {
		t.Fatalf("Deactivate() failed: %v", err)
	}

	active, err := repo.ListByUser(1, true)
	if err != nil {
		t.Fatalf("ListByUser() failed: %v", err)
	}
	if len(active) != 1 || active[0].Title != "Run" {
		t.Errorf("Expected only the active habit, got %+v", active)
	}

	all, err := repo.ListByUser(1, false)
	if err != nil {
		t.Fatalf("ListByUser() failed: %v", err)
	}
	if len(all) != 2 {
		t.Errorf("Expected 2 habits including inactive, got %d", len(all))
	}
}

func TestHabitRepository_CountActiveWithStreakAtLeast(t *testing.T) {
	db := setupTestDB(t)
	repo := NewHabitRepository(db)

	streaks := []int{10, 7, 3}
	for i, s := range streaks {
		habit := createTestHabit(t, db, 1, "Habit")
		habit.Streak = s
		if err := repo.Update(habit); err != nil {
			t.Fatalf("Update(%d) failed: %v", i, err)
		}
	}

	// An inactive habit with a long streak does not count.
	inactive := createTestHabit(t, db, 1, "Stale")
	inactive.Streak = 30
	inactive.IsActive = false
	if err := repo.Update(inactive); err != nil {
		t.Fatalf("Update() failed: %v", err)
	}

	count, err := repo.CountActiveWithStreakAtLeast(1, 7)
	if err != nil {
		t.Fatalf("CountActiveWithStreakAtLeast() failed: %v", err)
	}
	if count != 2 {
		t.Errorf("Expected 2 active habits with streak >= 7, got %d", count)
	}
}
