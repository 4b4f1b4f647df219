package completion

import "errors"

// Completion flow sentinels, mapped to HTTP statuses at the API layer.
var (
	// ErrHabitNotFound covers missing habits and habits owned by someone else.
	ErrHabitNotFound = errors.New("habit not found")

	// ErrHabitInactive is returned when claiming a deactivated habit.
	ErrHabitInactive = errors.New("habit is inactive")

	// ErrAttemptNotFound covers missing attempts and attempts owned by
	// someone else.
	ErrAttemptNotFound = errors.New("completion attempt not found")

	// ErrAlreadyCompletedToday trips the once-per-day gate. Recoverable by
	// waiting for the next day, no retry needed.
	ErrAlreadyCompletedToday = errors.New("habit already completed today")

	// ErrInvalidAttemptState is returned for answers against settled
	// attempts or out-of-sequence question indexes. Indicates a stale
	// client, not a retryable condition.
	ErrInvalidAttemptState = errors.New("invalid attempt state")

	// ErrEmptyAnswer rejects blank interview answers.
	ErrEmptyAnswer = errors.New("answer must not be empty")

	// ErrClaimConflict is returned when another claim for the same habit
	// and day is in flight.
	ErrClaimConflict = errors.New("another claim is in progress")

	// ErrPersistenceConflict is surfaced only after internal retries of
	// the reward pipeline are exhausted.
	ErrPersistenceConflict = errors.New("concurrent update conflict")
)
