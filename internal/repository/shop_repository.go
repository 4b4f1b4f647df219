package repository

import (
	"time"

	"gorm.io/gorm"

	"github.com/habitloop/habitloop/internal/models"
)

// ShopRepository handles shop catalog and inventory database operations.
type ShopRepository struct {
	db *DB
}

// NewShopRepository creates a new shop repository.
func NewShopRepository(db *DB) *ShopRepository {
	return &ShopRepository{db: db}
}

// WithTx returns a copy of the repository bound to the given transaction.
func (r *ShopRepository) WithTx(tx *gorm.DB) *ShopRepository {
	return &ShopRepository{db: &DB{tx}}
}

// CreateItem adds an item to the catalog.
func (r *ShopRepository) CreateItem(item *models.ShopItem) error {
	return r.db.Create(item).Error
}

// GetItemByID retrieves a shop item by its ID.
func (r *ShopRepository) GetItemByID(id uint) (*models.ShopItem, error) {
	var item models.ShopItem
	err := r.db.First(&item, id).Error
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// ListAvailable retrieves all available catalog items.
func (r *ShopRepository) ListAvailable() ([]models.ShopItem, error) {
	var items []models.ShopItem
	err := r.db.
		Where("available = ?", true).
		Order("price ASC").
		Find(&items).Error
	return items, err
}

// UpdateItem saves catalog item changes, e.g. toggling availability.
func (r *ShopRepository) UpdateItem(item *models.ShopItem) error {
	return r.db.Save(item).Error
}

// UserOwnsItem checks if a user already owns a specific item.
func (r *ShopRepository) UserOwnsItem(userID, itemID uint) (bool, error) {
	var count int64
	err := r.db.Model(&models.InventoryItem{}).
		Where("user_id = ? AND shop_item_id = ?", userID, itemID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// AddToInventory records ownership of an item.
func (r *ShopRepository) AddToInventory(userID, itemID uint) error {
	entry := &models.InventoryItem{
		UserID:     userID,
		ShopItemID: itemID,
		AcquiredAt: time.Now(),
	}
	return r.db.Create(entry).Error
}

// GetInventory retrieves a user's inventory with item details preloaded.
func (r *ShopRepository) GetInventory(userID uint) ([]models.InventoryItem, error) {
	var items []models.InventoryItem
	err := r.db.
		Where("user_id = ?", userID).
		Preload("ShopItem").
		Order("acquired_at DESC").
		Find(&items).Error
	return items, err
}
