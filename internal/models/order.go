package models

import "time"

// Order is a service order created from the kiosk estimate screen. Tier and
// service details are snapshotted at order time so later catalog edits do
// not rewrite history.
type Order struct {
	ID            uint   `gorm:"primaryKey"`
	CarNumber     string `gorm:"size:20"`
	CustomerPhone string `gorm:"size:20"`
	BrandID       *uint
	CarModelID    *uint
	FuelTypeID    *uint

	TierCode    string `gorm:"size:20;not null"`
	TierName    string `gorm:"size:50;not null"`
	ProductName string `gorm:"size:100"`
	OilPrice    int    `gorm:"not null"`
	Fallback    bool   `gorm:"default:false"`

	MileageCurrent *int
	MileageNext    *int

	Status string `gorm:"size:20;default:pending;index"`
	Notes  string `gorm:"type:text"`

	ErpSlipNo string `gorm:"size:30"`

	CreatedAt   time.Time `gorm:"index"`
	UpdatedAt   time.Time
	CompletedAt *time.Time

	Brand    *Brand      `gorm:"foreignKey:BrandID"`
	CarModel *CarModel   `gorm:"foreignKey:CarModelID"`
	FuelType *FuelType   `gorm:"foreignKey:FuelTypeID"`
	Items    []OrderItem `gorm:"foreignKey:OrderID"`
}

// OrderItem is an extra service attached to an order, snapshotted by
// name and price.
type OrderItem struct {
	ID             uint `gorm:"primaryKey"`
	OrderID        uint `gorm:"not null;index"`
	ExtraServiceID *uint
	Name           string `gorm:"size:100;not null"`
	Price          int    `gorm:"not null"`
}

// ExtraService is an add-on the kiosk offers alongside the oil change
// (에어컨 필터, 와이퍼, ...).
type ExtraService struct {
	ID          uint   `gorm:"primaryKey"`
	Name        string `gorm:"size:100;not null"`
	Description string `gorm:"type:text"`
	Price       int    `gorm:"not null"`
	Active      bool   `gorm:"default:true"`
	SortOrder   int    `gorm:"default:0"`
}
