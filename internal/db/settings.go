package db

import (
	"fmt"

	"github.com/quickoil/kiosk/internal/models"
	"gorm.io/gorm"
)

// GetStoreSettings returns the singleton settings row, creating it with
// defaults when missing.
func GetStoreSettings(db *gorm.DB) (*models.StoreSettings, error) {
	var s models.StoreSettings
	if err := db.Where("id = ?", 1).FirstOrCreate(&s, models.StoreSettings{ID: 1}).Error; err != nil {
		return nil, fmt.Errorf("db: get store settings: %w", err)
	}
	return &s, nil
}

// SaveStoreSettings writes the singleton settings row.
func SaveStoreSettings(db *gorm.DB, s *models.StoreSettings) error {
	s.ID = 1
	if err := db.Save(s).Error; err != nil {
		return fmt.Errorf("db: save store settings: %w", err)
	}
	return nil
}
