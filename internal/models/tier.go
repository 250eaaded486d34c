package models

import "time"

// Tier is an oil product line (economy ... racing). Visible tiers are
// customer-selectable on the kiosk; invisible ones (premium_hybrid) are
// substituted in by the price resolver or kept staff-only. BasePrice is the
// fixed reference price used when a vehicle has no catalog prices at all.
type Tier struct {
	ID              uint   `gorm:"primaryKey"`
	Code            string `gorm:"size:20;uniqueIndex;not null"`
	Name            string `gorm:"size:50;not null"`
	ProductName     string `gorm:"size:100"`
	OilKind         string `gorm:"size:50"`
	Tagline         string `gorm:"size:200"`
	Badge           string `gorm:"size:20"`
	BadgeType       string `gorm:"size:20"`
	MileageInterval int    `gorm:"default:10000"`
	BasePrice       int    `gorm:"default:0"`
	Visible         bool   `gorm:"default:true"`
	Active          bool   `gorm:"default:true"`
	SortOrder       int    `gorm:"default:0"`
}

// Price is one cell of the sparse price matrix: exactly one amount per
// (vehicle, tier, fuel) triple. Absence of a row means the tier is not
// offered for that vehicle and fuel, never a zero price.
type Price struct {
	ID         uint `gorm:"primaryKey"`
	CarModelID uint `gorm:"not null;uniqueIndex:idx_model_tier_fuel"`
	TierID     uint `gorm:"not null;uniqueIndex:idx_model_tier_fuel"`
	FuelTypeID uint `gorm:"not null;uniqueIndex:idx_model_tier_fuel"`
	Amount     int  `gorm:"not null"`
	CreatedAt  time.Time
	UpdatedAt  time.Time

	CarModel CarModel `gorm:"foreignKey:CarModelID"`
	Tier     Tier     `gorm:"foreignKey:TierID"`
	FuelType FuelType `gorm:"foreignKey:FuelTypeID"`
}
