// Package habits provides REST API handlers for habit management and the
// completion validation flow.
package habits

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/habitloop/habitloop/internal/api/middleware"
	"github.com/habitloop/habitloop/internal/models"
	"github.com/habitloop/habitloop/internal/service/completion"
	habitsvc "github.com/habitloop/habitloop/internal/service/habits"
	"github.com/habitloop/habitloop/pkg/logger"
)

// HabitService interface for habit lifecycle operations.
type HabitService interface {
	Create(ctx context.Context, userID uint, input habitsvc.CreateInput) (*models.Habit, error)
	List(ctx context.Context, userID uint, activeOnly bool) ([]models.Habit, error)
	Get(ctx context.Context, userID, habitID uint) (*models.Habit, error)
	Deactivate(ctx context.Context, userID, habitID uint) error
}

// CompletionService interface for the completion flow.
type CompletionService interface {
	ClaimCompletion(ctx context.Context, userID, habitID uint) (*completion.ClaimResult, error)
	SubmitAnswer(ctx context.Context, userID, attemptID uint, questionIndex int, answer string) (*completion.AnswerResult, error)
	GetRewardSummary(ctx context.Context, userID, attemptID uint) (*completion.RewardSummary, error)
}

// Handler handles habit API requests.
type Handler struct {
	habitService      HabitService
	completionService CompletionService
	log               *logger.Logger
}

// NewHandler creates a new habits handler.
func NewHandler(habitService HabitService, completionService CompletionService, log *logger.Logger) *Handler {
	return &Handler{
		habitService:      habitService,
		completionService: completionService,
		log:               log,
	}
}

// RegisterRoutes registers the habit and completion routes.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/habits", h.CreateHabit)
	rg.GET("/habits", h.ListHabits)
	rg.GET("/habits/:id", h.GetHabit)
	rg.DELETE("/habits/:id", h.DeactivateHabit)
	rg.POST("/habits/:id/claim", h.ClaimCompletion)
	rg.POST("/attempts/:id/answers", h.SubmitAnswer)
	rg.GET("/attempts/:id/summary", h.GetRewardSummary)
}

// CreateHabit creates a new habit.
// POST /api/v1/habits.
func (h *Handler) CreateHabit(c *gin.Context) {
	var input habitsvc.CreateInput
	if err := c.ShouldBindJSON(&input); err != nil {
		h.errorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	habit, err := h.habitService.Create(c.Request.Context(), middleware.UserID(c), input)
	if err != nil {
		h.errorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	c.JSON(http.StatusCreated, habit)
}

// ListHabits lists the user's habits.
// GET /api/v1/habits?active=true.
func (h *Handler) ListHabits(c *gin.Context) {
	activeOnly := c.DefaultQuery("active", "true") == "true"

	habits, err := h.habitService.List(c.Request.Context(), middleware.UserID(c), activeOnly)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to list habits")
		h.errorResponse(c, http.StatusInternalServerError, "Failed to retrieve habits")
		return
	}

	c.JSON(http.StatusOK, gin.H{"habits": habits, "total": len(habits)})
}

// GetHabit returns a single habit.
// GET /api/v1/habits/:id.
func (h *Handler) GetHabit(c *gin.Context) {
	habitID, ok := h.parseID(c)
	if !ok {
		return
	}

	habit, err := h.habitService.Get(c.Request.Context(), middleware.UserID(c), habitID)
	if err != nil {
		h.completionError(c, err)
		return
	}

	c.JSON(http.StatusOK, habit)
}

// DeactivateHabit soft-deletes a habit.
// DELETE /api/v1/habits/:id.
func (h *Handler) DeactivateHabit(c *gin.Context) {
	habitID, ok := h.parseID(c)
	if !ok {
		return
	}

	if err := h.habitService.Deactivate(c.Request.Context(), middleware.UserID(c), habitID); err != nil {
		h.completionError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"deactivated": true})
}

// ClaimCompletion opens a completion attempt and returns its interview.
// POST /api/v1/habits/:id/claim.
func (h *Handler) ClaimCompletion(c *gin.Context) {
	habitID, ok := h.parseID(c)
	if !ok {
		return
	}

	result, err := h.completionService.ClaimCompletion(c.Request.Context(), middleware.UserID(c), habitID)
	if err != nil {
		h.completionError(c, err)
		return
	}

	c.JSON(http.StatusCreated, result)
}

// submitAnswerRequest is the body for SubmitAnswer.
type submitAnswerRequest struct {
	QuestionIndex *int   `json:"question_index" binding:"required"`
	Answer        string `json:"answer" binding:"required"`
}

// SubmitAnswer records one interview answer.
// POST /api/v1/attempts/:id/answers.
func (h *Handler) SubmitAnswer(c *gin.Context) {
	attemptID, ok := h.parseID(c)
	if !ok {
		return
	}

	var req submitAnswerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.errorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	result, err := h.completionService.SubmitAnswer(c.Request.Context(), middleware.UserID(c), attemptID, *req.QuestionIndex, req.Answer)
	if err != nil {
		h.completionError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetRewardSummary returns the outcome of a settled attempt.
// GET /api/v1/attempts/:id/summary.
func (h *Handler) GetRewardSummary(c *gin.Context) {
	attemptID, ok := h.parseID(c)
	if !ok {
		return
	}

	summary, err := h.completionService.GetRewardSummary(c.Request.Context(), middleware.UserID(c), attemptID)
	if err != nil {
		h.completionError(c, err)
		return
	}

	c.JSON(http.StatusOK, summary)
}

// completionError maps completion flow sentinels to HTTP statuses.
func (h *Handler) completionError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, completion.ErrHabitNotFound),
		errors.Is(err, completion.ErrAttemptNotFound),
		errors.Is(err, habitsvc.ErrHabitNotFound):
		h.errorResponse(c, http.StatusNotFound, err.Error())
	case errors.Is(err, completion.ErrAlreadyCompletedToday),
		errors.Is(err, completion.ErrClaimConflict),
		errors.Is(err, completion.ErrHabitInactive):
		h.errorResponse(c, http.StatusConflict, err.Error())
	case errors.Is(err, completion.ErrInvalidAttemptState):
		h.errorResponse(c, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, completion.ErrEmptyAnswer):
		h.errorResponse(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, completion.ErrPersistenceConflict):
		h.errorResponse(c, http.StatusConflict, err.Error())
	default:
		h.log.Error().Err(err).Msg("Completion request failed")
		h.errorResponse(c, http.StatusInternalServerError, "Internal error")
	}
}

func (h *Handler) parseID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil || id == 0 {
		h.errorResponse(c, http.StatusBadRequest, "invalid id")
		return 0, false
	}
	return uint(id), true
}

func (h *Handler) errorResponse(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{"error": message})
}
