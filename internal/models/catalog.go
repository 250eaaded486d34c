// Package models defines the GORM entities shared across the kiosk.
package models

import "time"

// Brand is a vehicle manufacturer (현대, 기아, 쉐보레, ...). Brands are
// created lazily by price-sheet reconciliation and never auto-deleted.
type Brand struct {
	ID        uint   `gorm:"primaryKey"`
	Name      string `gorm:"size:50;uniqueIndex;not null"`
	SortOrder int    `gorm:"default:0"`
	CreatedAt time.Time
	UpdatedAt time.Time

	Models []CarModel `gorm:"foreignKey:BrandID"`
}

// CarModel is a vehicle model. A row with ParentID nil is a base model
// (쏘나타); a row with ParentID set is a named generation of that base
// model (DN8). Generations nest exactly one level deep; the resolver
// refuses to attach a generation to another generation.
type CarModel struct {
	ID        uint    `gorm:"primaryKey"`
	BrandID   uint    `gorm:"not null;uniqueIndex:idx_brand_name_parent"`
	Name      string  `gorm:"size:100;not null;uniqueIndex:idx_brand_name_parent"`
	ParentID  *uint   `gorm:"uniqueIndex:idx_brand_name_parent"`
	SortOrder int     `gorm:"default:0"`
	CreatedAt time.Time
	UpdatedAt time.Time

	Brand    Brand      `gorm:"foreignKey:BrandID"`
	Parent   *CarModel  `gorm:"foreignKey:ParentID"`
	Children []CarModel `gorm:"foreignKey:ParentID"`
}

// FullName renders "쏘나타 DN8" for a generation and the plain name for a
// base model. Parent must be preloaded for generations.
func (m *CarModel) FullName() string {
	if m.Parent != nil {
		return m.Parent.Name + " " + m.Name
	}
	return m.Name
}

// FuelType is stable reference data (휘발유, 경유, 하이브리드).
type FuelType struct {
	ID        uint   `gorm:"primaryKey"`
	Name      string `gorm:"size:20;uniqueIndex;not null"`
	SortOrder int    `gorm:"default:0"`
}
