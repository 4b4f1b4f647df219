// Package shop provides REST API handlers for the cosmetic item shop.
package shop

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/habitloop/habitloop/internal/api/middleware"
	"github.com/habitloop/habitloop/internal/models"
	shopsvc "github.com/habitloop/habitloop/internal/service/shop"
	"github.com/habitloop/habitloop/pkg/logger"
)

// ShopService interface for shop operations.
type ShopService interface {
	Catalog(ctx context.Context) ([]models.ShopItem, error)
	Purchase(ctx context.Context, userID, itemID uint) (*shopsvc.PurchaseResult, error)
}

// Handler handles shop API requests.
type Handler struct {
	shopService ShopService
	log         *logger.Logger
}

// NewHandler creates a new shop handler.
func NewHandler(shopService ShopService, log *logger.Logger) *Handler {
	return &Handler{shopService: shopService, log: log}
}

// RegisterRoutes registers the shop routes.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/shop/items", h.ListItems)
	rg.POST("/shop/items/:id/purchase", h.PurchaseItem)
}

// ListItems lists the available catalog.
// GET /api/v1/shop/items.
func (h *Handler) ListItems(c *gin.Context) {
	items, err := h.shopService.Catalog(c.Request.Context())
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to list shop items")
		h.errorResponse(c, http.StatusInternalServerError, "Failed to retrieve catalog")
		return
	}

	c.JSON(http.StatusOK, gin.H{"items": items, "total": len(items)})
}

// PurchaseItem buys an item with coins.
// POST /api/v1/shop/items/:id/purchase.
func (h *Handler) PurchaseItem(c *gin.Context) {
	itemID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil || itemID == 0 {
		h.errorResponse(c, http.StatusBadRequest, "invalid item id")
		return
	}

	result, err := h.shopService.Purchase(c.Request.Context(), middleware.UserID(c), uint(itemID))
	if err != nil {
		h.purchaseError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// purchaseError maps purchase sentinels to HTTP statuses.
func (h *Handler) purchaseError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, shopsvc.ErrItemNotFound):
		h.errorResponse(c, http.StatusNotFound, err.Error())
	case errors.Is(err, shopsvc.ErrItemUnavailable),
		errors.Is(err, shopsvc.ErrAlreadyOwned):
		h.errorResponse(c, http.StatusConflict, err.Error())
	case errors.Is(err, shopsvc.ErrLevelTooLow),
		errors.Is(err, shopsvc.ErrInsufficientFunds):
		h.errorResponse(c, http.StatusForbidden, err.Error())
	default:
		h.log.Error().Err(err).Msg("Purchase failed")
		h.errorResponse(c, http.StatusInternalServerError, "Internal error")
	}
}

func (h *Handler) errorResponse(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{"error": message})
}
