package scoring

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/habitloop/habitloop/internal/evaluator"
	"github.com/habitloop/habitloop/internal/models"
	"github.com/habitloop/habitloop/pkg/logger"
)

type stubEvaluator struct {
	judgment *evaluator.Judgment
	err      error
}

func (s *stubEvaluator) EvaluateAnswers(ctx context.Context, habitTitle, habitDescription string, questions, answers []string) (*evaluator.Judgment, error) {
	return s.judgment, s.err
}

func testHabit() *models.Habit {
	return &models.Habit{Title: "Morning run", Description: "5k before work", Category: "fitness"}
}

func testLogger() *logger.Logger {
	return logger.New("error", "console")
}

func TestScore_UsesEvaluator(t *testing.T) {
	scorer := NewScorer(&stubEvaluator{
		judgment: &evaluator.Judgment{Validated: true, Confidence: 92, Reasoning: "specific detail"},
	}, testLogger())

	j := scorer.Score(context.Background(), testHabit(), []string{"q"}, []string{"ran 5k along the river"})

	if !j.Validated || j.Confidence != 92 {
		t.Errorf("Expected evaluator judgment passed through, got %+v", j)
	}
	if !j.Accepted() {
		t.Error("Validated judgment at confidence 92 should be accepted")
	}
}

func TestScore_ClampsConfidence(t *testing.T) {
	scorer := NewScorer(&stubEvaluator{
		judgment: &evaluator.Judgment{Validated: true, Confidence: 140},
	}, testLogger())

	j := scorer.Score(context.Background(), testHabit(), []string{"q"}, []string{"a"})
	if j.Confidence != 100 {
		t.Errorf("Expected confidence clamped to 100, got %d", j.Confidence)
	}

	scorer = NewScorer(&stubEvaluator{
		judgment: &evaluator.Judgment{Validated: false, Confidence: -10},
	}, testLogger())

	j = scorer.Score(context.Background(), testHabit(), []string{"q"}, []string{"a"})
	if j.Confidence != 0 {
		t.Errorf("Expected confidence clamped to 0, got %d", j.Confidence)
	}
}

func TestScore_FallbackWhenUnavailable(t *testing.T) {
	scorer := NewScorer(&stubEvaluator{err: fmt.Errorf("judging answers: %w", evaluator.ErrUnavailable)}, testLogger())

	// 24 chars total: substantive enough for the heuristic.
	j := scorer.Score(context.Background(), testHabit(), []string{"q"}, []string{"I ran the full five km today"})

	if !j.Validated || j.Confidence != 70 {
		t.Errorf("Expected heuristic pass (validated, 70), got %+v", j)
	}
	if j.Accepted() {
		t.Error("Heuristic confidence 70 must never clear the acceptance threshold")
	}
}

func TestScore_FallbackShortAnswers(t *testing.T) {
	scorer := NewScorer(&stubEvaluator{err: errors.New("connection refused")}, testLogger())

	j := scorer.Score(context.Background(), testHabit(), []string{"q1", "q2"}, []string{"yes", "done"})

	if j.Validated || j.Confidence != 30 {
		t.Errorf("Expected heuristic fail (not validated, 30), got %+v", j)
	}
}

func TestScore_FallbackLengthBoundary(t *testing.T) {
	scorer := NewScorer(nil, testLogger())

	// 19 chars concatenated: below the threshold.
	j := scorer.Score(context.Background(), testHabit(), []string{"q"}, []string{"nineteen chars here"})
	if j.Validated {
		t.Errorf("19 chars should fail the heuristic, got %+v", j)
	}

	// 20 chars: at the threshold.
	j = scorer.Score(context.Background(), testHabit(), []string{"q"}, []string{"exactly twenty chars"})
	if !j.Validated {
		t.Errorf("20 chars should pass the heuristic, got %+v", j)
	}
}

func TestAccepted_Threshold(t *testing.T) {
	tests := []struct {
		validated  bool
		confidence int
		want       bool
	}{
		{true, 80, true},
		{true, 79, false},
		{false, 95, false},
		{true, 100, true},
	}

	for _, tt := range tests {
		j := Judgment{Validated: tt.validated, Confidence: tt.confidence}
		if j.Accepted() != tt.want {
			t.Errorf("Accepted() with validated=%v confidence=%d = %v, want %v",
				tt.validated, tt.confidence, j.Accepted(), tt.want)
		}
	}
}
