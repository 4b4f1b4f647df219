// Package scoring produces the validated/not-validated judgment for a
// completed interview, with a 0-100 confidence score.
package scoring

import (
	"context"
	"errors"
	"strings"

	"github.com/habitloop/habitloop/internal/evaluator"
	"github.com/habitloop/habitloop/internal/metrics"
	"github.com/habitloop/habitloop/internal/models"
	"github.com/habitloop/habitloop/pkg/logger"
)

// AcceptanceThreshold is the minimum confidence required for acceptance.
// Both the threshold and the scorer's own validated flag are required: the
// evaluator can flag low-quality but nominally validated text.
const AcceptanceThreshold = 80

// Fallback heuristic constants. Lower fidelity than the external evaluator
// but deterministic; used whenever the evaluator is unavailable.
const (
	fallbackMinLength      = 20
	fallbackConfidenceHigh = 70
	fallbackConfidenceLow  = 30
)

// Judgment is the scoring verdict for one attempt.
type Judgment struct {
	Validated  bool   `json:"validated"`
	Confidence int    `json:"confidence"`
	Reasoning  string `json:"reasoning"`
}

// Accepted reports whether the judgment passes the downstream acceptance
// rule: confidence >= 80 AND validated.
func (j Judgment) Accepted() bool {
	return j.Validated && j.Confidence >= AcceptanceThreshold
}

// Evaluator is the external text-evaluation contract.
type Evaluator interface {
	EvaluateAnswers(ctx context.Context, habitTitle, habitDescription string, questions, answers []string) (*evaluator.Judgment, error)
}

// Scorer judges interview answers, delegating to the external evaluator and
// falling back to a deterministic heuristic when it is unavailable. The
// fallback path never fails: a broken evaluator degrades to the
// low-confidence branch instead of stalling the settlement.
type Scorer struct {
	evaluator Evaluator
	log       *logger.Logger
}

// NewScorer creates a scorer. evaluator may be nil, in which case every
// attempt is scored by the heuristic.
func NewScorer(ev Evaluator, log *logger.Logger) *Scorer {
	return &Scorer{evaluator: ev, log: log}
}

// Score produces exactly one judgment for the attempt's answers.
func (s *Scorer) Score(ctx context.Context, habit *models.Habit, questions, answers []string) Judgment {
	if s.evaluator != nil {
		j, err := s.evaluator.EvaluateAnswers(ctx, habit.Title, habit.Description, questions, answers)
		if err == nil {
			return Judgment{
				Validated:  j.Validated,
				Confidence: clamp(j.Confidence),
				Reasoning:  j.Reasoning,
			}
		}
		if !errors.Is(err, evaluator.ErrUnavailable) {
			s.log.Error().Err(err).Uint("habit_id", habit.ID).Msg("Evaluator call failed")
		}
	}

	metrics.EvaluatorFallbacksTotal.Inc()
	s.log.Debug().Uint("habit_id", habit.ID).Msg("Scoring with deterministic fallback")
	return fallbackJudgment(answers)
}

// fallbackJudgment scores by total answer length: substantive answers pass
// with moderate confidence, terse ones fail.
func fallbackJudgment(answers []string) Judgment {
	total := len(strings.TrimSpace(strings.Join(answers, "")))
	if total >= fallbackMinLength {
		return Judgment{
			Validated:  true,
			Confidence: fallbackConfidenceHigh,
			Reasoning:  "Answers look substantive (heuristic check, evaluator unavailable)",
		}
	}
	return Judgment{
		Validated:  false,
		Confidence: fallbackConfidenceLow,
		Reasoning:  "Answers too short to verify (heuristic check, evaluator unavailable)",
	}
}

func clamp(confidence int) int {
	if confidence < 0 {
		return 0
	}
	if confidence > 100 {
		return 100
	}
	return confidence
}
