package db

import (
	"fmt"

	"github.com/quickoil/kiosk/internal/config"
	"github.com/quickoil/kiosk/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// AllModels returns the list of all GORM models for migration.
func AllModels() []interface{} {
	return []interface{}{
		&models.Brand{},
		&models.CarModel{},
		&models.FuelType{},
		&models.Tier{},
		&models.Price{},
		&models.ExtraService{},
		&models.Order{},
		&models.OrderItem{},
		&models.Customer{},
		&models.Reservation{},
		&models.StoreSettings{},
	}
}

// AutoMigrate creates or updates all tables.
func AutoMigrate(db *gorm.DB) error {
	if err := db.AutoMigrate(AllModels()...); err != nil {
		return fmt.Errorf("db: auto-migrate: %w", err)
	}
	return nil
}

// seedFuelTypes is the fixed fuel reference data, in kiosk display order.
var seedFuelTypes = []models.FuelType{
	{Name: "휘발유", SortOrder: 1},
	{Name: "경유", SortOrder: 2},
	{Name: "하이브리드", SortOrder: 3},
}

// seedTiers is the oil product line-up. premium_hybrid is invisible: the
// price resolver substitutes it at the premium menu position for hybrid
// vehicles instead of listing it directly.
var seedTiers = []models.Tier{
	{Code: "economy", Name: "이코노미", ProductName: "킥스 GX5/DX5", OilKind: "합성유",
		Tagline: "경제적인 선택, 일반 주행에 적합", MileageInterval: 6000, BasePrice: 50000,
		Visible: true, Active: true, SortOrder: 1},
	{Code: "standard", Name: "스탠다드", ProductName: "킥스 GX7/토탈쿼츠", OilKind: "고급 합성유",
		Tagline: "균형 잡힌 성능과 보호", MileageInterval: 8000, BasePrice: 70000,
		Visible: true, Active: true, SortOrder: 2},
	{Code: "premium", Name: "프리미엄", ProductName: "킥스 PAO", OilKind: "PAO 합성유",
		Tagline: "고급 합성유, 향상된 엔진 보호와 연비", Badge: "추천", BadgeType: "recommended",
		MileageInterval: 10000, BasePrice: 90000, Visible: true, Active: true, SortOrder: 3},
	{Code: "premium_hybrid", Name: "프리미엄", ProductName: "벤졸 0w20", OilKind: "PAO 합성유",
		Tagline: "하이브리드 전용 프리미엄 오일", MileageInterval: 10000, BasePrice: 90000,
		Visible: false, Active: true, SortOrder: 4},
	{Code: "hyperformance", Name: "하이퍼포먼스", ProductName: "리스타 슈퍼노멀", OilKind: "에스터 합성유",
		Tagline: "최고급 전합성유, 고출력 엔진에 최적화", Badge: "인기", BadgeType: "popular",
		MileageInterval: 12000, BasePrice: 120000, Visible: true, Active: true, SortOrder: 5},
	{Code: "racing", Name: "레이싱", ProductName: "리스타 메탈로센", OilKind: "최고급 에스터",
		Tagline: "극한 성능, 스포츠카 및 튜닝카 전용", Badge: "최고급", BadgeType: "premium",
		MileageInterval: 15000, BasePrice: 150000, Visible: true, Active: true, SortOrder: 6},
}

// SeedReferenceData upserts fuel types and tiers. Safe to rerun.
func SeedReferenceData(db *gorm.DB) error {
	for _, ft := range seedFuelTypes {
		result := db.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "name"}},
			DoUpdates: clause.AssignmentColumns([]string{"sort_order"}),
		}).Create(&models.FuelType{Name: ft.Name, SortOrder: ft.SortOrder})
		if result.Error != nil {
			return fmt.Errorf("db: seed fuel type %q: %w", ft.Name, result.Error)
		}
	}

	for _, tier := range seedTiers {
		t := tier
		result := db.Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "code"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"name", "product_name", "oil_kind", "tagline", "badge", "badge_type",
				"mileage_interval", "base_price", "visible", "active", "sort_order",
			}),
		}).Create(&t)
		if result.Error != nil {
			return fmt.Errorf("db: seed tier %q: %w", tier.Code, result.Error)
		}
	}
	return nil
}

// SeedStoreSettings writes the singleton StoreSettings row from config,
// creating it if missing and updating the profile fields otherwise.
func SeedStoreSettings(db *gorm.DB, store config.StoreConfig) error {
	settings := models.StoreSettings{
		ID:               1,
		StoreName:        store.Name,
		Phone:            store.Phone,
		Address:          store.Address,
		EstimatedMinutes: store.EstimatedMinutes,
	}
	result := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"store_name", "phone", "address", "estimated_minutes"}),
	}).Create(&settings)
	if result.Error != nil {
		return fmt.Errorf("db: seed store settings: %w", result.Error)
	}
	return nil
}
