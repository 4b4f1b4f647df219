package questions

import (
	"context"
	"errors"
	"testing"

	"github.com/habitloop/habitloop/internal/models"
	"github.com/habitloop/habitloop/pkg/logger"
)

type stubGenerative struct {
	questions []string
	err       error
}

func (s *stubGenerative) GenerateQuestions(ctx context.Context, habitTitle, habitDescription, category string, count int) ([]string, error) {
	return s.questions, s.err
}

func testLogger() *logger.Logger {
	return logger.New("error", "console")
}

func newTestGenerator(t *testing.T, generative Generative) *Generator {
	t.Helper()

	gen, err := NewGenerator("", 3, generative, testLogger())
	if err != nil {
		t.Fatalf("NewGenerator() failed: %v", err)
	}
	return gen
}

func TestGenerate_FromEmbeddedTemplates(t *testing.T) {
	gen := newTestGenerator(t, nil)

	questions := gen.Generate(context.Background(), &models.Habit{Title: "Run", Category: "fitness"})

	if len(questions) != 3 {
		t.Fatalf("Expected 3 questions, got %d", len(questions))
	}
	seen := make(map[string]bool)
	for _, q := range questions {
		if q == "" {
			t.Error("Generated an empty question")
		}
		if seen[q] {
			t.Errorf("Duplicate question %q", q)
		}
		seen[q] = true
	}
}

func TestGenerate_UnknownCategoryFallsBackToDefaults(t *testing.T) {
	gen := newTestGenerator(t, nil)

	questions := gen.Generate(context.Background(), &models.Habit{Title: "X", Category: "underwater-basket-weaving"})

	if len(questions) != 3 {
		t.Fatalf("Expected 3 default questions, got %d", len(questions))
	}
}

func TestGenerate_PrefersGenerative(t *testing.T) {
	gen := newTestGenerator(t, &stubGenerative{
		questions: []string{"How far did you run?", "What route did you take?", "How did it feel?"},
	})

	questions := gen.Generate(context.Background(), &models.Habit{Title: "Run", Category: "fitness"})

	if len(questions) != 3 || questions[0] != "How far did you run?" {
		t.Errorf("Expected generative questions, got %v", questions)
	}
}

func TestGenerate_GenerativeErrorFallsBack(t *testing.T) {
	gen := newTestGenerator(t, &stubGenerative{err: errors.New("service down")})

	questions := gen.Generate(context.Background(), &models.Habit{Title: "Run", Category: "fitness"})

	if len(questions) != 3 {
		t.Fatalf("Expected template fallback, got %v", questions)
	}
}

func TestGenerate_TopsUpShortGenerativeList(t *testing.T) {
	gen := newTestGenerator(t, &stubGenerative{questions: []string{"Only one question?"}})

	questions := gen.Generate(context.Background(), &models.Habit{Title: "Run", Category: "fitness"})

	if len(questions) != 3 {
		t.Fatalf("Expected top-up to 3, got %v", questions)
	}
	if questions[0] != "Only one question?" {
		t.Errorf("Generative question should come first, got %v", questions)
	}
}

func TestNewGenerator_ClampsPerAttempt(t *testing.T) {
	gen, err := NewGenerator("", 99, nil, testLogger())
	if err != nil {
		t.Fatalf("NewGenerator() failed: %v", err)
	}

	questions := gen.Generate(context.Background(), &models.Habit{Category: "fitness"})
	if len(questions) != 3 {
		t.Errorf("perAttempt out of range should clamp to 3, got %d questions", len(questions))
	}
}

func TestNewGenerator_MissingTemplatesFile(t *testing.T) {
	if _, err := NewGenerator("/nonexistent/templates.yaml", 3, nil, testLogger()); err == nil {
		t.Error("Expected error for missing templates file")
	}
}
