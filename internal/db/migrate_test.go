package db

import (
	"testing"

	"github.com/quickoil/kiosk/internal/config"
	"github.com/quickoil/kiosk/internal/models"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	gdb, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	if err := AutoMigrate(gdb); err != nil {
		t.Fatalf("auto migrate: %v", err)
	}
	return gdb
}

func TestSeedReferenceData(t *testing.T) {
	gdb := openTestDB(t)
	if err := SeedReferenceData(gdb); err != nil {
		t.Fatalf("SeedReferenceData: %v", err)
	}

	var fuels []models.FuelType
	gdb.Order("sort_order").Find(&fuels)
	if len(fuels) != 3 {
		t.Fatalf("fuel types = %d, want 3", len(fuels))
	}
	if fuels[0].Name != "휘발유" || fuels[1].Name != "경유" || fuels[2].Name != "하이브리드" {
		t.Errorf("fuel order = %s/%s/%s", fuels[0].Name, fuels[1].Name, fuels[2].Name)
	}

	var tiers []models.Tier
	gdb.Order("sort_order").Find(&tiers)
	if len(tiers) != 6 {
		t.Fatalf("tiers = %d, want 6", len(tiers))
	}

	var hybrid models.Tier
	gdb.Where("code = ?", "premium_hybrid").First(&hybrid)
	if hybrid.Visible {
		t.Error("premium_hybrid is visible, want hidden")
	}
	if hybrid.Name != "프리미엄" {
		t.Errorf("premium_hybrid display name = %q, want 프리미엄", hybrid.Name)
	}

	var economy models.Tier
	gdb.Where("code = ?", "economy").First(&economy)
	if economy.BasePrice != 50000 || economy.MileageInterval != 6000 {
		t.Errorf("economy = %d원/%dkm, want 50000/6000", economy.BasePrice, economy.MileageInterval)
	}
}

func TestSeedReferenceData_Rerun(t *testing.T) {
	gdb := openTestDB(t)
	if err := SeedReferenceData(gdb); err != nil {
		t.Fatalf("first seed: %v", err)
	}

	// A locally edited tier is reset to the shipped line-up on reseed,
	// without duplicating rows.
	gdb.Model(&models.Tier{}).Where("code = ?", "economy").Update("base_price", 1)

	if err := SeedReferenceData(gdb); err != nil {
		t.Fatalf("second seed: %v", err)
	}

	var count int64
	gdb.Model(&models.Tier{}).Count(&count)
	if count != 6 {
		t.Errorf("tiers = %d after reseed, want 6", count)
	}
	var economy models.Tier
	gdb.Where("code = ?", "economy").First(&economy)
	if economy.BasePrice != 50000 {
		t.Errorf("economy base price = %d after reseed, want 50000", economy.BasePrice)
	}
}

func TestSeedStoreSettings(t *testing.T) {
	gdb := openTestDB(t)
	store := config.StoreConfig{Name: "퀵오일 강남점", Phone: "02-123-4567", EstimatedMinutes: 25}

	if err := SeedStoreSettings(gdb, store); err != nil {
		t.Fatalf("SeedStoreSettings: %v", err)
	}

	s, err := GetStoreSettings(gdb)
	if err != nil {
		t.Fatalf("GetStoreSettings: %v", err)
	}
	if s.StoreName != "퀵오일 강남점" || s.EstimatedMinutes != 25 {
		t.Errorf("settings = %+v", s)
	}

	// Reseeding with a new profile updates the singleton row in place.
	store.Name = "퀵오일 서초점"
	if err := SeedStoreSettings(gdb, store); err != nil {
		t.Fatalf("reseed: %v", err)
	}
	var count int64
	gdb.Model(&models.StoreSettings{}).Count(&count)
	if count != 1 {
		t.Errorf("settings rows = %d, want 1", count)
	}
	s, _ = GetStoreSettings(gdb)
	if s.StoreName != "퀵오일 서초점" {
		t.Errorf("StoreName = %q after reseed", s.StoreName)
	}
}

func TestSaveStoreSettings(t *testing.T) {
	gdb := openTestDB(t)
	s, err := GetStoreSettings(gdb)
	if err != nil {
		t.Fatalf("GetStoreSettings: %v", err)
	}

	s.StoreName = "퀵오일"
	s.EstimatedMinutes = 40
	if err := SaveStoreSettings(gdb, s); err != nil {
		t.Fatalf("SaveStoreSettings: %v", err)
	}

	got, _ := GetStoreSettings(gdb)
	if got.StoreName != "퀵오일" || got.EstimatedMinutes != 40 {
		t.Errorf("settings = %+v", got)
	}
}
