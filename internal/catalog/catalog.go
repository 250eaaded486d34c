package catalog

import (
	"errors"
	"fmt"

	"github.com/quickoil/kiosk/internal/models"
	"gorm.io/gorm"
)

// ErrModelInUse is returned when deleting a model that orders still reference.
var ErrModelInUse = errors.New("catalog: model is referenced by orders")

// BrandsWithModels returns all brands in display order, each with its base
// models and their generations preloaded, for the kiosk vehicle picker.
func BrandsWithModels(db *gorm.DB) ([]models.Brand, error) {
	var brands []models.Brand
	err := db.Preload("Models", "parent_id IS NULL", func(tx *gorm.DB) *gorm.DB {
		return tx.Order("sort_order ASC, name ASC")
	}).Preload("Models.Children", func(tx *gorm.DB) *gorm.DB {
		return tx.Order("sort_order ASC, name ASC")
	}).Order("sort_order ASC, name ASC").Find(&brands).Error
	if err != nil {
		return nil, fmt.Errorf("catalog: list brands: %w", err)
	}
	return brands, nil
}

// FuelTypes returns all fuel types in display order.
func FuelTypes(db *gorm.DB) ([]models.FuelType, error) {
	var fuels []models.FuelType
	if err := db.Order("sort_order ASC").Find(&fuels).Error; err != nil {
		return nil, fmt.Errorf("catalog: list fuel types: %w", err)
	}
	return fuels, nil
}

// DeleteModel removes a model, its prices and, for a base model, its
// generations with their prices. Deletion is refused while any order
// references the model or one of its generations.
func DeleteModel(db *gorm.DB, id uint) error {
	var m models.CarModel
	if err := db.Where("id = ?", id).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("catalog: model not found: %d", id)
		}
		return fmt.Errorf("catalog: get model %d: %w", id, err)
	}

	ids := []uint{m.ID}
	if m.ParentID == nil {
		var children []models.CarModel
		if err := db.Where("parent_id = ?", m.ID).Find(&children).Error; err != nil {
			return fmt.Errorf("catalog: load generations of %d: %w", m.ID, err)
		}
		for _, c := range children {
			ids = append(ids, c.ID)
		}
	}

	var refs int64
	if err := db.Model(&models.Order{}).Where("car_model_id IN ?", ids).Count(&refs).Error; err != nil {
		return fmt.Errorf("catalog: count order references for model %d: %w", id, err)
	}
	if refs > 0 {
		return fmt.Errorf("%w: model %d has %d order(s)", ErrModelInUse, id, refs)
	}

	return db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("car_model_id IN ?", ids).Delete(&models.Price{}).Error; err != nil {
			return fmt.Errorf("catalog: delete prices of model %d: %w", id, err)
		}
		if err := tx.Where("id IN ?", ids).Delete(&models.CarModel{}).Error; err != nil {
			return fmt.Errorf("catalog: delete model %d: %w", id, err)
		}
		return nil
	})
}
