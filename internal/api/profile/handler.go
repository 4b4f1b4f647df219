// Package profile provides REST API handlers for the gamification dashboard:
// the user's profile, badges, and the XP leaderboard.
package profile

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/habitloop/habitloop/internal/api/middleware"
	"github.com/habitloop/habitloop/internal/models"
	"github.com/habitloop/habitloop/internal/service/badges"
	"github.com/habitloop/habitloop/pkg/logger"
)

// ProfileRepository interface for profile reads.
type ProfileRepository interface {
	GetOrCreate(userID uint) (*models.UserProfile, error)
	GetWithBadges(userID uint) (*models.UserProfile, error)
	GetBadges(userID uint) ([]models.BadgeAward, error)
	TopByXP(limit int) ([]models.UserProfile, error)
}

// Handler handles profile API requests.
type Handler struct {
	profiles ProfileRepository
	log      *logger.Logger
}

// NewHandler creates a new profile handler.
func NewHandler(profiles ProfileRepository, log *logger.Logger) *Handler {
	return &Handler{profiles: profiles, log: log}
}

// RegisterRoutes registers the profile routes.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/profile", h.GetProfile)
	rg.GET("/profile/badges", h.GetBadges)
	rg.GET("/badges", h.GetBadgeCatalog)
	rg.GET("/leaderboard", h.GetLeaderboard)
}

// GetProfile returns the user's gamification state.
// GET /api/v1/profile.
func (h *Handler) GetProfile(c *gin.Context) {
	userID := middleware.UserID(c)

	profile, err := h.profiles.GetWithBadges(userID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		profile, err = h.profiles.GetOrCreate(userID)
	}
	if err != nil {
		h.log.Error().Err(err).Uint("user_id", userID).Msg("Failed to load profile")
		h.errorResponse(c, http.StatusInternalServerError, "Failed to retrieve profile")
		return
	}

	c.JSON(http.StatusOK, profile)
}

// GetBadges returns the user's earned badges.
// GET /api/v1/profile/badges.
func (h *Handler) GetBadges(c *gin.Context) {
	userID := middleware.UserID(c)

	awards, err := h.profiles.GetBadges(userID)
	if err != nil {
		h.log.Error().Err(err).Uint("user_id", userID).Msg("Failed to load badges")
		h.errorResponse(c, http.StatusInternalServerError, "Failed to retrieve badges")
		return
	}

	c.JSON(http.StatusOK, gin.H{"badges": awards, "total": len(awards)})
}

// GetBadgeCatalog returns all earnable badges.
// GET /api/v1/badges.
func (h *Handler) GetBadgeCatalog(c *gin.Context) {
	catalog := make([]gin.H, 0, len(badges.Catalog))
	for _, b := range badges.Catalog {
		catalog = append(catalog, gin.H{
			"id":          b.ID,
			"name":        b.Name,
			"description": b.Description,
			"rarity":      b.Rarity,
		})
	}

	c.JSON(http.StatusOK, gin.H{"badges": catalog, "total": len(catalog)})
}

// GetLeaderboard returns the top profiles by XP. Ranking is best-effort and
// makes no fairness guarantees.
// GET /api/v1/leaderboard?limit=10.
func (h *Handler) GetLeaderboard(c *gin.Context) {
	limit := 10
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 || parsed > 100 {
			h.errorResponse(c, http.StatusBadRequest, "limit must be between 1 and 100")
			return
		}
		limit = parsed
	}

	profiles, err := h.profiles.TopByXP(limit)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to load leaderboard")
		h.errorResponse(c, http.StatusInternalServerError, "Failed to retrieve leaderboard")
		return
	}

	entries := make([]gin.H, 0, len(profiles))
	for i, p := range profiles {
		entries = append(entries, gin.H{
			"rank":     i + 1,
			"user_id":  p.UserID,
			"total_xp": p.TotalXP,
			"level":    p.Level,
		})
	}

	c.JSON(http.StatusOK, gin.H{"leaderboard": entries, "total_entries": len(entries)})
}

func (h *Handler) errorResponse(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{"error": message})
}
