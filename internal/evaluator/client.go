// Package evaluator provides the HTTP client for the external text-evaluation
// service that judges completion interview answers.
package evaluator

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/habitloop/habitloop/internal/config"
	"github.com/habitloop/habitloop/internal/metrics"
	"github.com/habitloop/habitloop/pkg/logger"
)

// ErrUnavailable signals that the external evaluator cannot serve the call.
// Callers recover by falling back to the deterministic heuristic.
var ErrUnavailable = errors.New("evaluator unavailable")

// Client handles requests to the text-evaluation service.
type Client struct {
	url     string
	timeout time.Duration
	enabled bool
	http    *http.Client
	log     *logger.Logger
}

// NewClient creates a new evaluator client.
func NewClient(cfg *config.EvaluatorConfig, log *logger.Logger) *Client {
	return &Client{
		url:     cfg.URL,
		timeout: cfg.EvaluatorTimeout(),
		enabled: cfg.Enabled,
		http:    &http.Client{},
		log:     log,
	}
}

// judgeRequest is the payload sent for answer evaluation.
type judgeRequest struct {
	HabitTitle       string   `json:"habit_title"`
	HabitDescription string   `json:"habit_description"`
	Questions        []string `json:"questions"`
	Answers          []string `json:"answers"`
}

// Judgment is the evaluation verdict returned by the service.
type Judgment struct {
	Validated  bool   `json:"validated"`
	Confidence int    `json:"confidence"`
	Reasoning  string `json:"reasoning"`
}

// EvaluateAnswers asks the service to judge interview answers against the
// habit description. The call is bounded by the configured timeout.
func (c *Client) EvaluateAnswers(ctx context.Context, habitTitle, habitDescription string, questions, answers []string) (*Judgment, error) {
	if !c.enabled {
		return nil, ErrUnavailable
	}

	payload, err := json.Marshal(judgeRequest{
		HabitTitle:       habitTitle,
		HabitDescription: habitDescription,
		Questions:        questions,
		Answers:          answers,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal evaluation request: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url+"/v1/judgments", bytes.NewBuffer(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.http.Do(req)
	metrics.EvaluatorRequestSeconds.Observe(time.Since(start).Seconds())
	if err != nil {
		c.log.Warn().Err(err).Msg("Evaluator request failed")
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.log.Warn().Int("status", resp.StatusCode).Msg("Evaluator returned non-OK status")
		return nil, fmt.Errorf("%w: status %d", ErrUnavailable, resp.StatusCode)
	}

	var judgment Judgment
	if err := json.NewDecoder(resp.Body).Decode(&judgment); err != nil {
		return nil, fmt.Errorf("%w: decode response: %v", ErrUnavailable, err)
	}

	c.log.Debug().
		Int("confidence", judgment.Confidence).
		Bool("validated", judgment.Validated).
		Msg("Received evaluator judgment")

	return &judgment, nil
}

// questionRequest is the payload sent for question generation.
type questionRequest struct {
	HabitTitle       string `json:"habit_title"`
	HabitDescription string `json:"habit_description"`
	Category         string `json:"category"`
	Count            int    `json:"count"`
}

// questionResponse carries generated validation questions.
type questionResponse struct {
	Questions []string `json:"questions"`
}

// GenerateQuestions asks the service for habit-specific validation questions.
// Callers fall back to the template catalog when this fails.
func (c *Client) GenerateQuestions(ctx context.Context, habitTitle, habitDescription, category string, count int) ([]string, error) {
	if !c.enabled {
		return nil, ErrUnavailable
	}

	payload, err := json.Marshal(questionRequest{
		HabitTitle:       habitTitle,
		HabitDescription: habitDescription,
		Category:         category,
		Count:            count,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal question request: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url+"/v1/questions", bytes.NewBuffer(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: status %d", ErrUnavailable, resp.StatusCode)
	}

	var out questionResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("%w: decode response: %v", ErrUnavailable, err)
	}
	if len(out.Questions) == 0 {
		return nil, fmt.Errorf("%w: empty question list", ErrUnavailable)
	}

	return out.Questions, nil
}
