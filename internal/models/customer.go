package models

import "time"

// Customer is a returning customer keyed by phone number.
type Customer struct {
	ID         uint   `gorm:"primaryKey"`
	Phone      string `gorm:"size:20;uniqueIndex;not null"`
	Name       string `gorm:"size:50"`
	CarNumber  string `gorm:"size:20"`
	BrandID    *uint
	CarModelID *uint
	FuelTypeID *uint
	Memo       string `gorm:"type:text"`
	CreatedAt  time.Time
	UpdatedAt  time.Time

	Brand    *Brand    `gorm:"foreignKey:BrandID"`
	CarModel *CarModel `gorm:"foreignKey:CarModelID"`
	FuelType *FuelType `gorm:"foreignKey:FuelTypeID"`
}

// Reservation is a booked visit, optionally linked to a customer record and,
// once the car arrives, to the resulting order.
type Reservation struct {
	ID         uint      `gorm:"primaryKey"`
	Date       time.Time `gorm:"index;not null"`
	Time       string    `gorm:"size:5;not null"` // "14:30"
	CustomerID *uint

	CustomerName  string `gorm:"size:50"`
	CustomerPhone string `gorm:"size:20;not null"`
	CarNumber     string `gorm:"size:20"`
	BrandID       *uint
	CarModelID    *uint

	ExpectedTier     string `gorm:"size:20"`
	ExpectedServices string `gorm:"type:text"`

	Status  string `gorm:"size:20;default:reserved"`
	Source  string `gorm:"size:20;default:phone"`
	OrderID *uint
	Memo    string `gorm:"type:text"`

	CreatedAt time.Time
	UpdatedAt time.Time

	Customer *Customer `gorm:"foreignKey:CustomerID"`
	Order    *Order    `gorm:"foreignKey:OrderID"`
}
