package shop

import (
	"context"
	"errors"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/habitloop/habitloop/internal/models"
	"github.com/habitloop/habitloop/internal/repository"
	"github.com/habitloop/habitloop/pkg/logger"
)

func setupShopService(t *testing.T) (*Service, *repository.ShopRepository, *repository.ProfileRepository) {
	t.Helper()

	gdb, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("Failed to open in-memory database: %v", err)
	}
	err = gdb.AutoMigrate(
		&models.UserProfile{},
		&models.BadgeAward{},
		&models.ShopItem{},
		&models.InventoryItem{},
	)
	if err != nil {
		t.Fatalf("Failed to auto-migrate tables: %v", err)
	}

	db := &repository.DB{DB: gdb}
	shopRepo := repository.NewShopRepository(db)
	profileRepo := repository.NewProfileRepository(db)
	svc := NewService(db, shopRepo, profileRepo, logger.New("error", "console"))
	return svc, shopRepo, profileRepo
}

func createTestItem(t *testing.T, repo *repository.ShopRepository, name, itemType string, price, levelReq int) *models.ShopItem {
	t.Helper()

	item := &models.ShopItem{
		Name:             name,
		Type:             itemType,
		Rarity:           "common",
		Price:            price,
		LevelRequirement: levelReq,
		Available:        true,
	}
	if err := repo.CreateItem(item); err != nil {
		t.Fatalf("Failed to create test item: %v", err)
	}
	return item
}

func fundProfile(t *testing.T, repo *repository.ProfileRepository, userID uint, coins, totalXP int) {
	t.Helper()

	profile, err := repo.GetOrCreate(userID)
	if err != nil {
		t.Fatalf("GetOrCreate() failed: %v", err)
	}
	profile.Coins = coins
	profile.TotalXP = totalXP
	profile.Level = totalXP/100 + 1
	if err := repo.SaveWithVersion(profile); err != nil {
		t.Fatalf("SaveWithVersion() failed: %v", err)
	}
}

func TestPurchase_Success(t *testing.T) {
	svc, shopRepo, profileRepo := setupShopService(t)
	item := createTestItem(t, shopRepo, "forest_theme", models.ItemTypeTheme, 30, 1)
	fundProfile(t, profileRepo, 1, 50, 0)

	result, err := svc.Purchase(context.Background(), 1, item.ID)
	if err != nil {
		t.Fatalf("Purchase() failed: %v", err)
	}

	if result.RemainingCoins != 20 {
		t.Errorf("Expected 20 coins remaining, got %d", result.RemainingCoins)
	}
	if len(result.Inventory) != 1 {
		t.Errorf("Expected 1 inventory item, got %d", len(result.Inventory))
	}
	if result.AutoEquipped {
		t.Error("Themes should not auto-equip")
	}

	owned, err := shopRepo.UserOwnsItem(1, item.ID)
	if err != nil || !owned {
		t.Errorf("UserOwnsItem() = %v, %v; want true, nil", owned, err)
	}
}

func TestPurchase_CheckOrder(t *testing.T) {
	svc, shopRepo, profileRepo := setupShopService(t)
	ctx := context.Background()

	// Pricey item with a level gate; the user fails both checks, but the
	// level check is reported first.
	item := createTestItem(t, shopRepo, "dragon_skin", models.ItemTypeSkin, 500, 10)
	fundProfile(t, profileRepo, 1, 10, 0)

	_, err := svc.Purchase(ctx, 1, item.ID)
	if !errors.Is(err, ErrLevelTooLow) {
		t.Errorf("Expected ErrLevelTooLow before funds check, got %v", err)
	}

	// Meet the level, still short on coins.
	fundProfile(t, profileRepo, 2, 10, 1000)
	_, err = svc.Purchase(ctx, 2, item.ID)
	if !errors.Is(err, ErrInsufficientFunds) {
		t.Errorf("Expected ErrInsufficientFunds, got %v", err)
	}

	// Buy it, then buy it again: already-owned wins over everything.
	fundProfile(t, profileRepo, 3, 1000, 1000)
	if _, err := svc.Purchase(ctx, 3, item.ID); err != nil {
		t.Fatalf("Purchase() failed: %v", err)
	}
	_, err = svc.Purchase(ctx, 3, item.ID)
	if !errors.Is(err, ErrAlreadyOwned) {
		t.Errorf("Expected ErrAlreadyOwned, got %v", err)
	}
}

func TestPurchase_FailureLeavesNoState(t *testing.T) {
	svc, shopRepo, profileRepo := setupShopService(t)
	item := createTestItem(t, shopRepo, "dragon_skin", models.ItemTypeSkin, 500, 10)
	fundProfile(t, profileRepo, 1, 100, 0)

	if _, err := svc.Purchase(context.Background(), 1, item.ID); err == nil {
		t.Fatal("Expected purchase to fail")
	}

	profile, _ := profileRepo.GetOrCreate(1)
	if profile.Coins != 100 {
		t.Errorf("Failed purchase must not spend coins, got %d", profile.Coins)
	}
	owned, _ := shopRepo.UserOwnsItem(1, item.ID)
	if owned {
		t.Error("Failed purchase must not add to inventory")
	}
}

func TestPurchase_UnknownAndUnavailable(t *testing.T) {
	svc, shopRepo, profileRepo := setupShopService(t)
	ctx := context.Background()
	fundProfile(t, profileRepo, 1, 1000, 1000)

	_, err := svc.Purchase(ctx, 1, 9999)
	if !errors.Is(err, ErrItemNotFound) {
		t.Errorf("Expected ErrItemNotFound, got %v", err)
	}

	item := createTestItem(t, shopRepo, "retired_theme", models.ItemTypeTheme, 10, 1)
	item.Available = false
	if err := shopRepo.UpdateItem(item); err != nil {
		t.Fatalf("UpdateItem() failed: %v", err)
	}

	_, err = svc.Purchase(ctx, 1, item.ID)
	if !errors.Is(err, ErrItemUnavailable) {
		t.Errorf("Expected ErrItemUnavailable, got %v", err)
	}
}

func TestPurchase_AutoEquip(t *testing.T) {
	svc, shopRepo, profileRepo := setupShopService(t)
	ctx := context.Background()
	fundProfile(t, profileRepo, 1, 100, 0)

	skin := createTestItem(t, shopRepo, "ocean_skin", models.ItemTypeSkin, 20, 1)
	result, err := svc.Purchase(ctx, 1, skin.ID)
	if err != nil {
		t.Fatalf("Purchase() failed: %v", err)
	}
	if !result.AutoEquipped {
		t.Error("Skins should auto-equip")
	}

	profile, _ := profileRepo.GetOrCreate(1)
	if profile.AvatarSkin != "ocean_skin" {
		t.Errorf("Expected skin equipped, got %q", profile.AvatarSkin)
	}

	hat := createTestItem(t, shopRepo, "party_hat", models.ItemTypeAccessory, 10, 1)
	result, err = svc.Purchase(ctx, 1, hat.ID)
	if err != nil {
		t.Fatalf("Purchase() failed: %v", err)
	}
	if !result.AutoEquipped {
		t.Error("Accessories should auto-equip")
	}

	profile, _ = profileRepo.GetOrCreate(1)
	if len(profile.AvatarAccessories) != 1 || profile.AvatarAccessories[0] != "party_hat" {
		t.Errorf("Expected party_hat accessory, got %v", profile.AvatarAccessories)
	}
}

func TestCatalog_ListsOnlyAvailable(t *testing.T) {
	svc, shopRepo, _ := setupShopService(t)

	createTestItem(t, shopRepo, "a_theme", models.ItemTypeTheme, 10, 1)
	retired := createTestItem(t, shopRepo, "b_theme", models.ItemTypeTheme, 10, 1)
	retired.Available = false
	if err := shopRepo.UpdateItem(retired); err != nil {
		t.Fatalf("UpdateItem() failed: %v", err)
	}

	items, err := svc.Catalog(context.Background())
	if err != nil {
		t.Fatalf("Catalog() failed: %v", err)
	}
	if len(items) != 1 || items[0].Name != "a_theme" {
		t.Errorf("Expected only the available item, got %+v", items)
	}
}
