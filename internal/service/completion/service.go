// Package completion orchestrates a habit completion attempt through its
// state machine: Claimed -> Questioning -> Scoring -> Settled. Settlement
// commits habit counters, rewards, badges, and challenge progress atomically.
package completion

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/habitloop/habitloop/internal/metrics"
	"github.com/habitloop/habitloop/internal/models"
	"github.com/habitloop/habitloop/internal/repository"
	"github.com/habitloop/habitloop/internal/service/avatar"
	"github.com/habitloop/habitloop/internal/service/badges"
	"github.com/habitloop/habitloop/internal/service/challenges"
	"github.com/habitloop/habitloop/internal/service/questions"
	"github.com/habitloop/habitloop/internal/service/rewards"
	"github.com/habitloop/habitloop/internal/service/scoring"
	"github.com/habitloop/habitloop/internal/service/streak"
	"github.com/habitloop/habitloop/pkg/logger"
)

const (
	claimLockTTL  = 10 * time.Second
	rewardLockTTL = 30 * time.Second

	// Retries for lock acquisition and optimistic-version conflicts
	// before ErrPersistenceConflict surfaces.
	conflictRetries = 3
)

// Locker serializes settlements per user and claims per (user, habit, day).
// Lock returns a holder token, empty when the lock is already held; Unlock
// releases only while the token still owns the lock.
type Locker interface {
	Lock(ctx context.Context, key string, ttl time.Duration) (string, error)
	Unlock(ctx context.Context, key, token string) error
}

// ClaimResult is returned when a completion claim opens an interview.
type ClaimResult struct {
	AttemptID uint     `json:"attempt_id"`
	Questions []string `json:"questions"`
	Resumed   bool     `json:"resumed"`
}

// AnswerResult reports interview progress after one submitted answer.
type AnswerResult struct {
	Done              bool           `json:"done"`
	NextQuestionIndex int            `json:"next_question_index,omitempty"`
	Summary           *RewardSummary `json:"summary,omitempty"`
}

// BadgeSummary is the reward-summary view of a newly earned badge.
type BadgeSummary struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Rarity string `json:"rarity"`
}

// RewardSummary is the terminal outcome of one completion attempt.
type RewardSummary struct {
	Validated            bool           `json:"validated"`
	Confidence           int            `json:"confidence"`
	Reasoning            string         `json:"reasoning"`
	XPEarned             int            `json:"xp_earned"`
	CoinsEarned          int            `json:"coins_earned"`
	NewStreak            int            `json:"new_streak"`
	StreakBroken         bool           `json:"streak_broken"`
	LeveledUp            bool           `json:"leveled_up"`
	NewBadges            []BadgeSummary `json:"new_badges"`
	EncouragementMessage string         `json:"encouragement_message"`
}

// Service drives completion attempts end to end.
type Service struct {
	db         *repository.DB
	habits     *repository.HabitRepository
	attempts   *repository.AttemptRepository
	profiles   *repository.ProfileRepository
	generator  *questions.Generator
	scorer     *scoring.Scorer
	badges     *badges.Evaluator
	challenges *challenges.Service
	rewards    *rewards.Engine
	locker     Locker
	loc        *time.Location
	log        *logger.Logger

	// now is swappable for tests.
	now func() time.Time
}

// NewService creates a completion orchestrator.
func NewService(
	db *repository.DB,
	habitRepo *repository.HabitRepository,
	attemptRepo *repository.AttemptRepository,
	profileRepo *repository.ProfileRepository,
	generator *questions.Generator,
	scorer *scoring.Scorer,
	badgeEval *badges.Evaluator,
	challengeSvc *challenges.Service,
	rewardEngine *rewards.Engine,
	locker Locker,
	loc *time.Location,
	log *logger.Logger,
) *Service {
	if loc == nil {
		loc = time.Local
	}
	return &Service{
		db:         db,
		habits:     habitRepo,
		attempts:   attemptRepo,
		profiles:   profileRepo,
		generator:  generator,
		scorer:     scorer,
		badges:     badgeEval,
		challenges: challengeSvc,
		rewards:    rewardEngine,
		locker:     locker,
		loc:        loc,
		log:        log,
		now:        time.Now,
	}
}

// SetNow overrides the clock. Intended for tests.
func (s *Service) SetNow(now func() time.Time) {
	s.now = now
}

// ClaimCompletion opens a completion attempt for the habit, generating the
// validation interview. Fails with ErrAlreadyCompletedToday if the habit
// already has a validated completion in the current calendar day; a pending
// attempt from the same day is resumed instead of duplicated.
func (s *Service) ClaimCompletion(ctx context.Context, userID, habitID uint) (*ClaimResult, error) {
	habit, err := s.ownedHabit(userID, habitID)
	if err != nil {
		metrics.CompletionClaimsTotal.WithLabelValues("rejected").Inc()
		return nil, err
	}

	now := s.now()
	dayStart, dayEnd := streak.DayWindow(now, s.loc)

	// Serialize the gate check and attempt creation per (user, habit, day).
	lockKey := fmt.Sprintf("claim:%d:%d:%s", userID, habitID, dayStart.Format("2006-01-02"))
	lockToken, err := s.locker.Lock(ctx, lockKey, claimLockTTL)
	if err != nil {
		return nil, fmt.Errorf("failed to acquire claim lock: %w", err)
	}
	if lockToken == "" {
		metrics.CompletionClaimsTotal.WithLabelValues("conflict").Inc()
		return nil, ErrClaimConflict
	}
	defer func() {
		if err := s.locker.Unlock(ctx, lockKey, lockToken); err != nil {
			s.log.Warn().Err(err).Str("key", lockKey).Msg("Failed to release claim lock")
		}
	}()

	completed, err := s.attempts.HasValidatedInWindow(habitID, dayStart, dayEnd)
	if err != nil {
		return nil, fmt.Errorf("failed to check daily gate: %w", err)
	}
	if completed {
		metrics.CompletionClaimsTotal.WithLabelValues("already_completed").Inc()
		return nil, ErrAlreadyCompletedToday
	}

	if pending, err := s.attempts.FindPendingInWindow(habitID, dayStart, dayEnd); err != nil {
		return nil, fmt.Errorf("failed to look up pending attempt: %w", err)
	} else if pending != nil {
		metrics.CompletionClaimsTotal.WithLabelValues("resumed").Inc()
		return &ClaimResult{
			AttemptID: pending.ID,
			Questions: pending.Questions,
			Resumed:   true,
		}, nil
	}

	qs := s.generator.Generate(ctx, habit)
	// CreatedAt uses the service clock so the resume window and the day
	// gate agree on what "today" means.
	attempt := &models.CompletionAttempt{
		HabitID:   habitID,
		UserID:    userID,
		State:     models.AttemptStateQuestioning,
		Questions: qs,
		Answers:   make(models.StringList, len(qs)),
		CreatedAt: now,
	}
	if err := s.attempts.Create(attempt); err != nil {
		return nil, fmt.Errorf("failed to create attempt: %w", err)
	}

	metrics.CompletionClaimsTotal.WithLabelValues("opened").Inc()
	s.log.Info().
		Uint("user_id", userID).
		Uint("habit_id", habitID).
		Uint("attempt_id", attempt.ID).
		Int("questions", len(qs)).
		Msg("Completion claimed")

	return &ClaimResult{AttemptID: attempt.ID, Questions: qs}, nil
}

// SubmitAnswer records the answer for the attempt's current question. Once
// every question is answered the attempt is scored exactly once and settled;
// the reward summary is returned with Done set.
func (s *Service) SubmitAnswer(ctx context.Context, userID, attemptID uint, questionIndex int, answer string) (*AnswerResult, error) {
	attempt, err := s.ownedAttempt(userID, attemptID)
	if err != nil {
		return nil, err
	}

	switch attempt.State {
	case models.AttemptStateSettled:
		return nil, ErrInvalidAttemptState
	case models.AttemptStateScoring:
		// A previous settlement failed mid-flight. Resubmitting the last
		// answer retries the scoring pass without mutating the interview.
		if questionIndex != attempt.QuestionCount()-1 {
			return nil, ErrInvalidAttemptState
		}
		summary, err := s.settle(ctx, attempt)
		if err != nil {
			return nil, err
		}
		return &AnswerResult{Done: true, Summary: summary}, nil
	}

	if questionIndex != attempt.CurrentQuestionIndex || questionIndex >= attempt.QuestionCount() {
		return nil, ErrInvalidAttemptState
	}
	if strings.TrimSpace(answer) == "" {
		return nil, ErrEmptyAnswer
	}

	attempt.Answers[questionIndex] = answer
	attempt.CurrentQuestionIndex++
	if attempt.AllAnswered() {
		attempt.State = models.AttemptStateScoring
	}
	if err := s.attempts.Update(attempt); err != nil {
		return nil, fmt.Errorf("failed to store answer: %w", err)
	}

	if attempt.State != models.AttemptStateScoring {
		return &AnswerResult{NextQuestionIndex: attempt.CurrentQuestionIndex}, nil
	}

	summary, err := s.settle(ctx, attempt)
	if err != nil {
		return nil, err
	}
	return &AnswerResult{Done: true, Summary: summary}, nil
}

// GetRewardSummary returns the terminal summary of a settled attempt.
//
//nolint:revive // ctx reserved for future context-aware operations
func (s *Service) GetRewardSummary(ctx context.Context, userID, attemptID uint) (*RewardSummary, error) {
	attempt, err := s.ownedAttempt(userID, attemptID)
	if err != nil {
		return nil, err
	}
	if !attempt.IsSettled() {
		return nil, ErrInvalidAttemptState
	}
	return summaryFrom(attempt), nil
}

// settle runs the single scoring pass and commits every resulting state
// transition in one transaction. Safe to retry: a concurrently settled
// attempt short-circuits to its stored summary.
func (s *Service) settle(ctx context.Context, attempt *models.CompletionAttempt) (*RewardSummary, error) {
	habit, err := s.habits.GetByID(attempt.HabitID)
	if err != nil {
		return nil, fmt.Errorf("failed to load habit: %w", err)
	}

	// The scorer is the only suspension point; it is bounded and never
	// fails (evaluator outages degrade to the deterministic heuristic).
	judgment := s.scorer.Score(ctx, habit, attempt.Questions, attempt.Answers)
	accepted := judgment.Accepted()
	now := s.now()

	// Per-user exclusion around the reward pipeline: two concurrent
	// settlements must not read the same XP baseline.
	lockKey := fmt.Sprintf("reward:%d", attempt.UserID)
	lockToken, err := s.acquireRewardLock(ctx, lockKey)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := s.locker.Unlock(ctx, lockKey, lockToken); err != nil {
			s.log.Warn().Err(err).Str("key", lockKey).Msg("Failed to release reward lock")
		}
	}()

	var summary *RewardSummary
	for retry := 0; ; retry++ {
		summary, err = s.settleTx(attempt.ID, judgment, accepted, now)
		if err == nil {
			break
		}
		if !errors.Is(err, repository.ErrVersionConflict) || retry >= conflictRetries {
			if errors.Is(err, repository.ErrVersionConflict) {
				return nil, ErrPersistenceConflict
			}
			return nil, err
		}
		s.log.Warn().
			Uint("attempt_id", attempt.ID).
			Int("retry", retry+1).
			Msg("Settlement hit a version conflict, retrying")
	}

	metrics.RecordSettlement(summary.Validated, summary.Confidence)
	metrics.RecordReward(summary.XPEarned, summary.CoinsEarned, summary.LeveledUp)
	if summary.StreakBroken {
		metrics.StreaksBrokenTotal.Inc()
	}

	s.log.Info().
		Uint("attempt_id", attempt.ID).
		Uint("habit_id", attempt.HabitID).
		Bool("validated", summary.Validated).
		Int("confidence", summary.Confidence).
		Int("xp", summary.XPEarned).
		Int("streak", summary.NewStreak).
		Msg("Completion settled")

	return summary, nil
}

// settleTx applies one settlement inside a transaction. Attempt terminal
// fields, habit counters, profile rewards, badge awards, and challenge
// progress commit together or not at all.
func (s *Service) settleTx(attemptID uint, judgment scoring.Judgment, accepted bool, now time.Time) (*RewardSummary, error) {
	var summary *RewardSummary

	err := s.db.Transaction(func(tx *gorm.DB) error {
		attemptRepo := s.attempts.WithTx(tx)
		habitRepo := s.habits.WithTx(tx)
		profileRepo := s.profiles.WithTx(tx)

		attempt, err := attemptRepo.GetByID(attemptID)
		if err != nil {
			return err
		}
		if attempt.IsSettled() {
			// A concurrent retry won the race; the stored outcome stands.
			summary = summaryFrom(attempt)
			return nil
		}

		habit, err := habitRepo.GetByID(attempt.HabitID)
		if err != nil {
			return err
		}

		if accepted {
			// The claim-time gate does not cover a stale attempt from an
			// earlier day settling after today's completion. Re-check inside
			// the transaction; a habit already credited today downgrades the
			// attempt to the consolation path so nothing is rewarded twice.
			dayStart, dayEnd := streak.DayWindow(now, s.loc)
			credited, err := attemptRepo.HasValidatedInWindow(attempt.HabitID, dayStart, dayEnd)
			if err != nil {
				return err
			}
			if credited {
				accepted = false
			}
		}

		profile, err := profileRepo.GetOrCreate(attempt.UserID)
		if err != nil {
			return err
		}

		weekStreaksBefore, err := habitRepo.CountActiveWithStreakAtLeast(attempt.UserID, 7)
		if err != nil {
			return err
		}
		before := badges.Snapshot{
			Level:                profile.Level,
			TotalXP:              profile.TotalXP,
			TotalHabitsCompleted: profile.TotalHabitsCompleted,
			EarlyBirdCount:       profile.EarlyBirdCount,
			HabitStreak:          habit.Streak,
			WeekStreakHabits:     int(weekStreaksBefore),
		}

		var (
			xp           int
			earlyBird    bool
			streakBroken bool
		)
		if accepted {
			res := streak.Advance(habit.LastCompletedAt, now, habit.Streak, habit.LongestStreak, s.loc)
			streakBroken = res.Broken
			habit.Streak = res.Streak
			habit.LongestStreak = res.LongestStreak
			habit.TotalCompletions++
			completedAt := now
			habit.LastCompletedAt = &completedAt
			if err := habitRepo.Update(habit); err != nil {
				return err
			}

			xp, earlyBird = s.rewards.SuccessXP(habit.Difficulty, now)
			profile.TotalHabitsCompleted++
			if earlyBird {
				profile.EarlyBirdCount++
			}
		} else {
			xp = rewards.ConsolationXP(judgment.Confidence)
		}

		outcome := s.rewards.Apply(profile, xp)
		avatar.ApplyTo(profile, habit.Streak)

		weekStreaksAfter, err := habitRepo.CountActiveWithStreakAtLeast(attempt.UserID, 7)
		if err != nil {
			return err
		}
		after := badges.Snapshot{
			Level:                profile.Level,
			TotalXP:              profile.TotalXP,
			TotalHabitsCompleted: profile.TotalHabitsCompleted,
			EarlyBirdCount:       profile.EarlyBirdCount,
			HabitStreak:          habit.Streak,
			WeekStreakHabits:     int(weekStreaksAfter),
		}

		earned, err := s.badges.Evaluate(profileRepo, attempt.UserID, before, after)
		if err != nil {
			return err
		}

		if accepted && s.challenges != nil {
			if err := s.challenges.OnCompletion(tx, attempt.UserID, habit, now); err != nil {
				return err
			}
		}

		if err := profileRepo.SaveWithVersion(profile); err != nil {
			return err
		}

		newBadgeIDs := make(models.StringList, 0, len(earned))
		for _, b := range earned {
			newBadgeIDs = append(newBadgeIDs, b.ID)
		}

		settledAt := now
		attempt.State = models.AttemptStateSettled
		attempt.SettledAt = &settledAt
		attempt.Confidence = judgment.Confidence
		attempt.Reasoning = judgment.Reasoning
		attempt.IsValidated = accepted
		attempt.XPAwarded = outcome.XPGained
		attempt.CoinsAwarded = outcome.CoinsGained
		attempt.StreakAfter = habit.Streak
		attempt.StreakBroken = streakBroken
		attempt.LeveledUp = outcome.LeveledUp
		attempt.NewBadges = newBadgeIDs
		if err := attemptRepo.Update(attempt); err != nil {
			return err
		}

		summary = summaryFrom(attempt)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return summary, nil
}

// acquireRewardLock takes the per-user reward lock and returns its holder
// token, retrying briefly before giving up with ErrPersistenceConflict.
func (s *Service) acquireRewardLock(ctx context.Context, key string) (string, error) {
	for retry := 0; retry <= conflictRetries; retry++ {
		token, err := s.locker.Lock(ctx, key, rewardLockTTL)
		if err != nil {
			return "", fmt.Errorf("failed to acquire reward lock: %w", err)
		}
		if token != "" {
			return token, nil
		}
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(50 * time.Millisecond):
		}
	}
	return "", ErrPersistenceConflict
}

// summaryFrom rebuilds the reward summary from an attempt's stored terminal
// fields, so a re-fetched summary matches the one returned at settlement.
func summaryFrom(attempt *models.CompletionAttempt) *RewardSummary {
	newBadges := make([]BadgeSummary, 0, len(attempt.NewBadges))
	for _, id := range attempt.NewBadges {
		if b := badges.ByID(id); b != nil {
			newBadges = append(newBadges, BadgeSummary{ID: b.ID, Name: b.Name, Rarity: b.Rarity})
		}
	}

	return &RewardSummary{
		Validated:            attempt.IsValidated,
		Confidence:           attempt.Confidence,
		Reasoning:            attempt.Reasoning,
		XPEarned:             attempt.XPAwarded,
		CoinsEarned:          attempt.CoinsAwarded,
		NewStreak:            attempt.StreakAfter,
		StreakBroken:         attempt.StreakBroken,
		LeveledUp:            attempt.LeveledUp,
		NewBadges:            newBadges,
		EncouragementMessage: encouragementFor(attempt.ID, attempt.IsValidated, attempt.StreakBroken),
	}
}

func (s *Service) ownedHabit(userID, habitID uint) (*models.Habit, error) {
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
	if !habit.IsActive {
		return nil, ErrHabitInactive
	}
	return habit, nil
}

func (s *Service) ownedAttempt(userID, attemptID uint) (*models.CompletionAttempt, error) {
	attempt, err := s.attempts.GetByID(attemptID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAttemptNotFound
		}
		return nil, err
	}
	if attempt.UserID != userID {
		return nil, ErrAttemptNotFound
	}
	return attempt, nil
}
