package catalog

import (
	"errors"
	"fmt"

	"github.com/quickoil/kiosk/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GenerationFix names a base model whose prices must live on one of its
// generations instead of on the base node itself.
type GenerationFix struct {
	Brand      string
	BaseModel  string
	Generation string
}

// GenerationFixes is the list of structural corrections applied before every
// reconciliation run. 아반떼 entered the catalog as a flat model before the
// CN7 generation existed; its prices belong on the generation node.
var GenerationFixes = []GenerationFix{
	{Brand: "현대", BaseModel: "아반떼", Generation: "CN7"},
}

// FixResult reports what one fix did.
type FixResult struct {
	GenerationCreated bool
	PricesMoved       int
}

// ApplyGenerationFixes runs every configured fix. Idempotent: a second
// invocation moves nothing.
func ApplyGenerationFixes(db *gorm.DB) (FixResult, error) {
	var total FixResult
	for _, fix := range GenerationFixes {
		res, err := MovePricesToGeneration(db, fix.Brand, fix.BaseModel, fix.Generation)
		if err != nil {
			return total, err
		}
		if res.GenerationCreated {
			total.GenerationCreated = true
		}
		total.PricesMoved += res.PricesMoved
	}
	return total, nil
}

// MovePricesToGeneration ensures the generation node exists under the base
// model, re-keys every price attached directly to the base model onto the
// generation with the same (tier, fuel, amount), then deletes the base rows.
// Missing brand or base model is not an error: there is nothing to fix.
func MovePricesToGeneration(db *gorm.DB, brandName, baseName, genName string) (FixResult, error) {
	var res FixResult

	var brand models.Brand
	if err := db.Where("name = ?", brandName).First(&brand).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return res, nil
		}
		return res, fmt.Errorf("catalog: fix %s/%s: find brand: %w", brandName, baseName, err)
	}

	var base models.CarModel
	if err := db.Where("brand_id = ? AND name = ? AND parent_id IS NULL", brand.ID, baseName).
		First(&base).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return res, nil
		}
		return res, fmt.Errorf("catalog: fix %s/%s: find base model: %w", brandName, baseName, err)
	}

	var gen models.CarModel
	err := db.Where("brand_id = ? AND name = ? AND parent_id = ?", brand.ID, genName, base.ID).
		First(&gen).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		gen = models.CarModel{BrandID: brand.ID, Name: genName, ParentID: &base.ID}
		if err := db.Create(&gen).Error; err != nil {
			return res, fmt.Errorf("catalog: fix %s/%s: create generation %s: %w", brandName, baseName, genName, err)
		}
		res.GenerationCreated = true
	case err != nil:
		return res, fmt.Errorf("catalog: fix %s/%s: find generation %s: %w", brandName, baseName, genName, err)
	}

	var basePrices []models.Price
	if err := db.Where("car_model_id = ?", base.ID).Find(&basePrices).Error; err != nil {
		return res, fmt.Errorf("catalog: fix %s/%s: load base prices: %w", brandName, baseName, err)
	}

	for _, p := range basePrices {
		moved := models.Price{CarModelID: gen.ID, TierID: p.TierID, FuelTypeID: p.FuelTypeID, Amount: p.Amount}
		result := db.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "car_model_id"}, {Name: "tier_id"}, {Name: "fuel_type_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"amount"}),
		}).Create(&moved)
		if result.Error != nil {
			return res, fmt.Errorf("catalog: fix %s/%s: move price %d: %w", brandName, baseName, p.ID, result.Error)
		}
		res.PricesMoved++
	}

	if len(basePrices) > 0 {
		if err := db.Where("car_model_id = ?", base.ID).Delete(&models.Price{}).Error; err != nil {
			return res, fmt.Errorf("catalog: fix %s/%s: delete base prices: %w", brandName, baseName, err)
		}
	}

	return res, nil
}
