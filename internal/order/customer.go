package order

import (
	"errors"
	"fmt"
	"strings"

	"github.com/quickoil/kiosk/internal/models"
	"gorm.io/gorm"
)

// FindCustomerByPhone returns the customer record for a phone number, with
// vehicle references preloaded for kiosk prefill. Nil when unknown.
func FindCustomerByPhone(db *gorm.DB, phone string) (*models.Customer, error) {
	phone = strings.TrimSpace(phone)
	if phone == "" {
		return nil, nil
	}

	var c models.Customer
	err := db.Preload("Brand").Preload("CarModel.Parent").Preload("FuelType").
		Where("phone = ?", phone).First(&c).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("order: find customer %s: %w", phone, err)
	}
	return &c, nil
}

// rememberCustomer upserts the customer record from a completed order so
// the next visit prefills the vehicle. Best effort.
func rememberCustomer(db *gorm.DB, o *models.Order) {
	if o.CustomerPhone == "" {
		return
	}

	var c models.Customer
	err := db.Where("phone = ?", o.CustomerPhone).First(&c).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		c = models.Customer{
			Phone:      o.CustomerPhone,
			CarNumber:  o.CarNumber,
			BrandID:    o.BrandID,
			CarModelID: o.CarModelID,
			FuelTypeID: o.FuelTypeID,
		}
		db.Create(&c)
	case err == nil:
		db.Model(&c).Updates(map[string]interface{}{
			"car_number":   o.CarNumber,
			"brand_id":     o.BrandID,
			"car_model_id": o.CarModelID,
			"fuel_type_id": o.FuelTypeID,
		})
	}
}
