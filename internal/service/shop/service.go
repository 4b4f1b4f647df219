// Package shop handles catalog listing and item purchases with the internal
// coin currency.
package shop

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/habitloop/habitloop/internal/metrics"
	"github.com/habitloop/habitloop/internal/models"
	"github.com/habitloop/habitloop/internal/repository"
	"github.com/habitloop/habitloop/pkg/logger"
)

// Purchase failure sentinels. None of these leave any state mutated.
var (
	ErrItemNotFound      = errors.New("shop item not found")
	ErrItemUnavailable   = errors.New("shop item is not available")
	ErrAlreadyOwned      = errors.New("item already owned")
	ErrLevelTooLow       = errors.New("user level below item requirement")
	ErrInsufficientFunds = errors.New("insufficient coins")
)

// PurchaseResult describes a successful purchase.
type PurchaseResult struct {
	Item           models.ShopItem        `json:"item"`
	RemainingCoins int                    `json:"remaining_coins"`
	Inventory      []models.InventoryItem `json:"inventory"`
	AutoEquipped   bool                   `json:"auto_equipped"`
}

// Service handles shop operations.
type Service struct {
	db       *repository.DB
	items    *repository.ShopRepository
	profiles *repository.ProfileRepository
	log      *logger.Logger
}

// NewService creates a new shop service.
func NewService(
	db *repository.DB,
	items *repository.ShopRepository,
	profiles *repository.ProfileRepository,
	log *logger.Logger,
) *Service {
	return &Service{
		db:       db,
		items:    items,
		profiles: profiles,
		log:      log,
	}
}

// Catalog lists all available shop items.
//
//nolint:revive // ctx reserved for future context-aware operations
func (s *Service) Catalog(ctx context.Context) ([]models.ShopItem, error) {
	return s.items.ListAvailable()
}

// Purchase buys an item for the user. Checks run in order: item not already
// owned, user level at or above the requirement, enough coins. Any failing
// check aborts with no mutation. Skins and accessories are equipped onto
// the avatar automatically on success.
//
//nolint:revive // ctx reserved for future context-aware operations
func (s *Service) Purchase(ctx context.Context, userID, itemID uint) (*PurchaseResult, error) {
	var result *PurchaseResult

	err := s.db.Transaction(func(tx *gorm.DB) error {
		items := s.items.WithTx(tx)
		profiles := s.profiles.WithTx(tx)

		item, err := items.GetItemByID(itemID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrItemNotFound
			}
			return err
		}
		if !item.Available {
			return ErrItemUnavailable
		}

		owned, err := items.UserOwnsItem(userID, itemID)
		if err != nil {
			return err
		}
		if owned {
			return ErrAlreadyOwned
		}

		profile, err := profiles.GetOrCreate(userID)
		if err != nil {
			return err
		}
		if profile.Level < item.LevelRequirement {
			return ErrLevelTooLow
		}
		if profile.Coins < item.Price {
			return ErrInsufficientFunds
		}

		profile.Coins -= item.Price
		equipped := equip(profile, item)

		if err := profiles.SaveWithVersion(profile); err != nil {
			return err
		}
		if err := items.AddToInventory(userID, itemID); err != nil {
			return err
		}

		inventory, err := items.GetInventory(userID)
		if err != nil {
			return err
		}

		result = &PurchaseResult{
			Item:           *item,
			RemainingCoins: profile.Coins,
			Inventory:      inventory,
			AutoEquipped:   equipped,
		}
		return nil
	})
	if err != nil {
		metrics.PurchasesTotal.WithLabelValues("failed").Inc()
		return nil, err
	}

	metrics.PurchasesTotal.WithLabelValues("success").Inc()
	s.log.Info().
		Uint("user_id", userID).
		Uint("item_id", itemID).
		Int("remaining_coins", result.RemainingCoins).
		Msg("Shop purchase completed")

	return result, nil
}

// equip applies skins and accessories to the avatar at purchase time. This
// auto-equip behavior is observable to the user and must be preserved.
func equip(profile *models.UserProfile, item *models.ShopItem) bool {
	switch item.Type {
	case models.ItemTypeSkin:
		profile.AvatarSkin = item.Name
		return true
	case models.ItemTypeAccessory:
		profile.AvatarAccessories = append(profile.AvatarAccessories, item.Name)
		return true
	default:
		return false
	}
}
