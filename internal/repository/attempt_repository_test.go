package repository

import (
	"testing"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/habitloop/habitloop/internal/models"
)

// setupTestDB creates an in-memory SQLite database for testing.
func setupTestDB(t *testing.T) *DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("Failed to open in-memory database: %v", err)
	}

	// Enable foreign key constraints (SQLite default is off)
	db.Exec("PRAGMA foreign_keys = ON")

	err = db.AutoMigrate(
		&models.Habit{},
		&models.CompletionAttempt{},
		&models.UserProfile{},
		&models.BadgeAward{},
		&models.ShopItem{},
		&models.InventoryItem{},
		&models.Challenge{},
		&models.ChallengeParticipant{},
	)
	if err != nil {
		t.Fatalf("Failed to auto-migrate tables: %v", err)
	}

	return &DB{db}
}

// createTestHabit creates a test habit in the database.
func createTestHabit(t *testing.T, db *DB, userID uint, title string) *models.Habit {
	t.Helper()

	habit := &models.Habit{
		UserID:     userID,
		Title:      title,
		Category:   "fitness",
		Frequency:  models.FrequencyDaily,
		Difficulty: models.DifficultyMedium,
		IsActive:   true,
	}
	if err := db.Create(habit).Error; err != nil {
		t.Fatalf("Failed to create test habit: %v", err)
	}
	return habit
}

func createTestAttempt(t *testing.T, repo *AttemptRepository, habitID, userID uint, state string, settledAt *time.Time, validated bool) *models.CompletionAttempt {
	t.Helper()

	attempt := &models.CompletionAttempt{
		HabitID:     habitID,
		UserID:      userID,
		State:       state,
		Questions:   models.StringList{"q1", "q2", "q3"},
		Answers:     models.StringList{"", "", ""},
		IsValidated: validated,
		SettledAt:   settledAt,
	}
	if err := repo.Create(attempt); err != nil {
		t.Fatalf("Failed to create test attempt: %v", err)
	}
	return attempt
}

func TestAttemptRepository_CreateAndGet(t *testing.T) {
	db := setupTestDB(t)
	repo := NewAttemptRepository(db)
	habit := createTestHabit(t, db, 1, "Run")

	attempt := createTestAttempt(t, repo, habit.ID, 1, models.AttemptStateQuestioning, nil, false)
	if attempt.ID == 0 {
		t.Fatal("Expected attempt ID to be set after creation")
	}

	got, err := repo.GetByID(attempt.ID)
	if err != nil {
		t.Fatalf("GetByID() failed: %v", err)
	}
	if got.State != models.AttemptStateQuestioning {
		t.Errorf("Expected questioning state, got %q", got.State)
	}
	if len(got.Questions) != 3 || got.Questions[0] != "q1" {
		t.Errorf("Questions did not round-trip: %v", got.Questions)
	}
	if got.AnsweredCount() != 0 {
		t.Errorf("Expected 0 answered, got %d", got.AnsweredCount())
	}
}

func TestAttemptRepository_HasValidatedInWindow(t *testing.T) {
	db := setupTestDB(t)
	repo := NewAttemptRepository(db)
	habit := createTestHabit(t, db, 1, "Run")

	dayStart := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	dayEnd := dayStart.AddDate(0, 0, 1)

	// No completions yet.
	has, err := repo.HasValidatedInWindow(habit.ID, dayStart, dayEnd)
	if err != nil {
		t.Fatalf("HasValidatedInWindow() failed: %v", err)
	}
	if has {
		t.Error("Expected no validated completion in empty window")
	}

	// A validated settlement inside the window.
	settled := dayStart.Add(9 * time.Hour)
	createTestAttempt(t, repo, habit.ID, 1, models.AttemptStateSettled, &settled, true)

	has, err = repo.HasValidatedInWindow(habit.ID, dayStart, dayEnd)
	if err != nil {
		t.Fatalf("HasValidatedInWindow() failed: %v", err)
	}
	if !has {
		t.Error("Expected validated completion to be found in window")
	}

	// The next day's window does not see it.
	has, err = repo.HasValidatedInWindow(habit.ID, dayEnd, dayEnd.AddDate(0, 0, 1))
	if err != nil {
		t.Fatalf("HasValidatedInWindow() failed: %v", err)
	}
	if has {
		t.Error("Validated completion leaked into the next day's window")
	}
}

func TestAttemptRepository_FailedSettlementDoesNotGate(t *testing.T) {
	db := setupTestDB(t)
	repo := NewAttemptRepository(db)
	habit := createTestHabit(t, db, 1, "Run")

	dayStart := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	dayEnd := dayStart.AddDate(0, 0, 1)

	// Settled but not validated: the user may try again today.
	settled := dayStart.Add(9 * time.Hour)
	createTestAttempt(t, repo, habit.ID, 1, models.AttemptStateSettled, &settled, false)

	has, err := repo.HasValidatedInWindow(habit.ID, dayStart, dayEnd)
	if err != nil {
		t.Fatalf("HasValidatedInWindow() failed: %v", err)
	}
	if has {
		t.Error("Unvalidated settlement must not trip the once-per-day gate")
	}
}

func TestAttemptRepository_FindPendingInWindow(t *testing.T) {
	db := setupTestDB(t)
	repo := NewAttemptRepository(db)
	habit := createTestHabit(t, db, 1, "Run")

	now := time.Now()
	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	dayEnd := dayStart.AddDate(0, 0, 1)

	// Nothing pending.
	pending, err := repo.FindPendingInWindow(habit.ID, dayStart, dayEnd)
	if err != nil {
		t.Fatalf("FindPendingInWindow() failed: %v", err)
	}
	if pending != nil {
		t.Errorf("Expected no pending attempt, got %+v", pending)
	}

	created := createTestAttempt(t, repo, habit.ID, 1, models.AttemptStateQuestioning, nil, false)

	pending, err = repo.FindPendingInWindow(habit.ID, dayStart, dayEnd)
	if err != nil {
		t.Fatalf("FindPendingInWindow() failed: %v", err)
	}
	if pending == nil || pending.ID != created.ID {
		t.Errorf("Expected pending attempt %d, got %+v", created.ID, pending)
	}

	// Settle it: no longer pending.
	settled := time.Now()
	created.State = models.AttemptStateSettled
	created.SettledAt = &settled
	if err := repo.Update(created); err != nil {
		t.Fatalf("Update() failed: %v", err)
	}

	pending, err = repo.FindPendingInWindow(habit.ID, dayStart, dayEnd)
	if err != nil {
		t.Fatalf("FindPendingInWindow() failed: %v", err)
	}
	if pending != nil {
		t.Errorf("Settled attempt should not be pending, got %+v", pending)
	}
}

func TestAttemptRepository_ListByHabit(t *testing.T) {
	db := setupTestDB(t)
	repo := NewAttemptRepository(db)
	habit := createTestHabit(t, db, 1, "Run")
	other := createTestHabit(t, db, 1, "Read")

	createTestAttempt(t, repo, habit.ID, 1, models.AttemptStateQuestioning, nil, false)
	createTestAttempt(t, repo, habit.ID, 1, models.AttemptStateQuestioning, nil, false)
	createTestAttempt(t, repo, other.ID, 1, models.AttemptStateQuestioning, nil, false)

	attempts, err := repo.ListByHabit(habit.ID, 10)
	if err != nil {
		t.Fatalf("ListByHabit() failed: %v", err)
	}
	if len(attempts) != 2 {
		t.Errorf("Expected 2 attempts for habit, got %d", len(attempts))
	}
}
