package mocks

import (
	"context"
	"time"

	"github.com/habitloop/habitloop/internal/evaluator"
)

// MockEvaluator is a simple mock for the external evaluator client. It
// satisfies both the scoring and question-generation contracts.
type MockEvaluator struct {
	EvaluateAnswersFunc   func(ctx context.Context, habitTitle, habitDescription string, questions, answers []string) (*evaluator.Judgment, error)
	GenerateQuestionsFunc func(ctx context.Context, habitTitle, habitDescription, category string, count int) ([]string, error)
}

func (m *MockEvaluator) EvaluateAnswers(ctx context.Context, habitTitle, habitDescription string, questions, answers []string) (*evaluator.Judgment, error) {
	if m.EvaluateAnswersFunc != nil {
		return m.EvaluateAnswersFunc(ctx, habitTitle, habitDescription, questions, answers)
	}
	return nil, evaluator.ErrUnavailable
}

func (m *MockEvaluator) GenerateQuestions(ctx context.Context, habitTitle, habitDescription, category string, count int) ([]string, error) {
	if m.GenerateQuestionsFunc != nil {
		return m.GenerateQuestionsFunc(ctx, habitTitle, habitDescription, category, count)
	}
	return nil, evaluator.ErrUnavailable
}

// FailingLocker is a Locker whose Lock always reports contention. Useful for
// exercising lock-conflict error paths.
type FailingLocker struct{}

func (FailingLocker) Lock(ctx context.Context, key string, ttl time.Duration) (string, error) {
	return "", nil
}

func (FailingLocker) Unlock(ctx context.Context, key, token string) error {
	return nil
}
