// Package questions generates the validation interview for a completion
// claim: habit-specific questions from the external evaluator when
// available, otherwise from a category-keyed template catalog.
package questions

import (
	"context"
	_ "embed"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/habitloop/habitloop/internal/models"
	"github.com/habitloop/habitloop/pkg/logger"
)

//go:embed templates.yaml
var defaultTemplates []byte

// Catalog is the question template catalog.
type Catalog struct {
	Categories map[string][]string `yaml:"categories"`
	Defaults   []string            `yaml:"defaults"`
}

// Generative produces habit-specific questions from an external service.
type Generative interface {
	GenerateQuestions(ctx context.Context, habitTitle, habitDescription, category string, count int) ([]string, error)
}

// Generator builds the question set for one completion attempt.
type Generator struct {
	catalog    *Catalog
	generative Generative
	perAttempt int
	log        *logger.Logger
}

// NewGenerator creates a generator. templatesPath optionally overrides the
// embedded catalog; generative may be nil.
func NewGenerator(templatesPath string, perAttempt int, generative Generative, log *logger.Logger) (*Generator, error) {
	catalog, err := loadCatalog(templatesPath)
	if err != nil {
		return nil, err
	}
	if perAttempt < 1 || perAttempt > 3 {
		perAttempt = 3
	}
	return &Generator{
		catalog:    catalog,
		generative: generative,
		perAttempt: perAttempt,
		log:        log,
	}, nil
}

func loadCatalog(path string) (*Catalog, error) {
	data := defaultTemplates
	if path != "" {
		fileData, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read question templates: %w", err)
		}
		data = fileData
	}

	var catalog Catalog
	if err := yaml.Unmarshal(data, &catalog); err != nil {
		return nil, fmt.Errorf("failed to parse question templates: %w", err)
	}
	if len(catalog.Defaults) == 0 {
		return nil, fmt.Errorf("question template catalog has no default questions")
	}
	return &catalog, nil
}

// Generate returns the validation questions for a claim on the given habit.
func (g *Generator) Generate(ctx context.Context, habit *models.Habit) []string {
	if g.generative != nil {
		generated, err := g.generative.GenerateQuestions(ctx, habit.Title, habit.Description, habit.Category, g.perAttempt)
		if err == nil && len(generated) > 0 {
			return trim(generated, g.perAttempt, g.catalog.Defaults)
		}
		g.log.Debug().Err(err).Uint("habit_id", habit.ID).Msg("Falling back to template questions")
	}

	return g.fromTemplates(habit.Category)
}

// fromTemplates picks questions from the habit's category pool, topping up
// from the defaults when the category pool is short or unknown.
func (g *Generator) fromTemplates(category string) []string {
	pool := g.catalog.Categories[strings.ToLower(category)]
	questions := make([]string, 0, g.perAttempt)
	for _, q := range pool {
		if len(questions) == g.perAttempt {
			break
		}
		questions = append(questions, q)
	}
	for _, q := range g.catalog.Defaults {
		if len(questions) == g.perAttempt {
			break
		}
		if !contains(questions, q) {
			questions = append(questions, q)
		}
	}
	return questions
}

// trim caps a generated list at count, topping up from defaults if the
// service returned fewer than requested.
func trim(generated []string, count int, defaults []string) []string {
	if len(generated) > count {
		generated = generated[:count]
	}
	for _, q := range defaults {
		if len(generated) == count {
			break
		}
		if !contains(generated, q) {
			generated = append(generated, q)
		}
	}
	return generated
}

func contains(list []string, s string) bool {
	for _, item := range list {
		if item == s {
			return true
		}
	}
	return false
}
