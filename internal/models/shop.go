package models

import (
	"time"
)

// Shop item type constants.
const (
	ItemTypeTheme     = "theme"
	ItemTypeSkin      = "skin"
	ItemTypeAccessory = "accessory"
	ItemTypeEffect    = "effect"
)

// ShopItem represents a purchasable cosmetic item. Catalog data is immutable
// except for the availability flag.
type ShopItem struct {
	ID               uint      `gorm:"primaryKey" json:"id"`
	Name             string    `gorm:"uniqueIndex;not null;size:100" json:"name"`
	Description      string    `gorm:"type:text" json:"description"`
	Type             string    `gorm:"size:20;not null" json:"type"`
	Rarity           string    `gorm:"size:20" json:"rarity"`
	Price            int       `gorm:"not null" json:"price"`
	LevelRequirement int       `gorm:"default:1" json:"level_requirement"`
	Available        bool      `gorm:"default:true;index" json:"available"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// TableName specifies the table name for ShopItem model.
func (ShopItem) TableName() string {
	return "shop_items"
}

// InventoryItem represents a shop item owned by a user.
type InventoryItem struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	UserID     uint      `gorm:"not null;uniqueIndex:idx_user_item" json:"user_id"`
	ShopItemID uint      `gorm:"not null;uniqueIndex:idx_user_item" json:"shop_item_id"`
	ShopItem   ShopItem  `gorm:"foreignKey:ShopItemID" json:"shop_item,omitempty"`
	AcquiredAt time.Time `gorm:"not null" json:"acquired_at"`
}

// TableName specifies the table name for InventoryItem model.
func (InventoryItem) TableName() string {
	return "inventory_items"
}
