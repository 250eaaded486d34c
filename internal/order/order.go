// Package order manages the service-order lifecycle: creation from a kiosk
// estimate, staff progress updates, and completion bookkeeping.
package order

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/quickoil/kiosk/internal/models"
	"github.com/quickoil/kiosk/internal/pricing"
	"gorm.io/gorm"
)

// ErrNotFound marks an unknown order ID.
var ErrNotFound = errors.New("order: not found")

// ValidTransitions maps each status to its valid next statuses.
var ValidTransitions = map[string][]string{
	"pending":     {"in_progress", "completed", "cancelled"},
	"in_progress": {"completed", "cancelled"},
	"completed":   {},
	"cancelled":   {},
}

// isValidTransition checks whether a status transition is allowed.
func isValidTransition(from, to string) bool {
	for _, v := range ValidTransitions[from] {
		if v == to {
			return true
		}
	}
	return false
}

// CreateInput is everything the kiosk submits when placing an order.
type CreateInput struct {
	CarNumber       string
	CustomerPhone   string
	CarModelID      uint
	FuelTypeID      uint
	TierCode        string
	MileageCurrent  *int
	Notes           string
	ExtraServiceIDs []uint
}

// Create places a new order. The tier's display name, product and price are
// resolved through the live menu and snapshotted, so later catalog edits do
// not rewrite the order.
func Create(db *gorm.DB, in CreateInput) (*models.Order, error) {
	menu, err := pricing.MenuFor(db, in.CarModelID, in.FuelTypeID)
	if err != nil {
		return nil, fmt.Errorf("order: create: %w", err)
	}

	var quote *pricing.TierQuote
	for i := range menu.Tiers {
		if menu.Tiers[i].Code == in.TierCode {
			quote = &menu.Tiers[i]
			break
		}
	}
	if quote == nil {
		return nil, fmt.Errorf("order: create: tier %q not offered for this vehicle", in.TierCode)
	}

	var carModel models.CarModel
	if err := db.Where("id = ?", in.CarModelID).First(&carModel).Error; err != nil {
		return nil, fmt.Errorf("order: create: get vehicle %d: %w", in.CarModelID, err)
	}

	o := &models.Order{
		CarNumber:      strings.TrimSpace(in.CarNumber),
		CustomerPhone:  strings.TrimSpace(in.CustomerPhone),
		BrandID:        &carModel.BrandID,
		CarModelID:     &in.CarModelID,
		FuelTypeID:     &in.FuelTypeID,
		TierCode:       quote.Code,
		TierName:       quote.Name,
		ProductName:    quote.ProductName,
		OilPrice:       quote.Amount,
		Fallback:       !menu.Catalogued,
		MileageCurrent: in.MileageCurrent,
		Status:         "pending",
		Notes:          in.Notes,
	}

	if len(in.ExtraServiceIDs) > 0 {
		var services []models.ExtraService
		if err := db.Where("id IN ? AND active = ?", in.ExtraServiceIDs, true).Find(&services).Error; err != nil {
			return nil, fmt.Errorf("order: create: load extra services: %w", err)
		}
		if len(services) != len(in.ExtraServiceIDs) {
			return nil, fmt.Errorf("order: create: %d of %d extra services unknown or inactive",
				len(in.ExtraServiceIDs)-len(services), len(in.ExtraServiceIDs))
		}
		for _, s := range services {
			id := s.ID
			o.Items = append(o.Items, models.OrderItem{
				ExtraServiceID: &id,
				Name:           s.Name,
				Price:          s.Price,
			})
		}
	}

	if err := db.Create(o).Error; err != nil {
		return nil, fmt.Errorf("order: create: %w", err)
	}

	linkReservation(db, o)
	return o, nil
}

// Get loads an order with its items and vehicle references.
func Get(db *gorm.DB, id uint) (*models.Order, error) {
	var o models.Order
	err := db.Preload("Items").Preload("Brand").Preload("CarModel.Parent").Preload("FuelType").
		Where("id = ?", id).First(&o).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: %d", ErrNotFound, id)
		}
		return nil, fmt.Errorf("order: get %d: %w", id, err)
	}
	return &o, nil
}

// ListOptions filters List. Zero values mean "no filter".
type ListOptions struct {
	Status    string
	CarNumber string
	Since     time.Time
}

// List returns orders newest first.
func List(db *gorm.DB, opts ListOptions) ([]models.Order, error) {
	q := db.Preload("Items").Preload("CarModel").Preload("FuelType")
	if opts.Status != "" {
		q = q.Where("status = ?", opts.Status)
	}
	if opts.CarNumber != "" {
		q = q.Where("car_number LIKE ?", "%"+opts.CarNumber+"%")
	}
	if !opts.Since.IsZero() {
		q = q.Where("created_at >= ?", opts.Since)
	}

	var orders []models.Order
	if err := q.Order("created_at DESC").Find(&orders).Error; err != nil {
		return nil, fmt.Errorf("order: list: %w", err)
	}
	return orders, nil
}

// UpdateStatus moves an order along the lifecycle, validating the transition.
func UpdateStatus(db *gorm.DB, id uint, status string) (*models.Order, error) {
	o, err := Get(db, id)
	if err != nil {
		return nil, err
	}
	if !isValidTransition(o.Status, status) {
		return nil, fmt.Errorf("order: invalid status transition from %q to %q; valid transitions: %v",
			o.Status, status, ValidTransitions[o.Status])
	}

	o.Status = status
	if err := db.Model(o).Update("status", status).Error; err != nil {
		return nil, fmt.Errorf("order: update %d: %w", id, err)
	}
	return o, nil
}

// Complete finishes an order: sets completed_at and, when the current mileage
// is known, the recommended next-service mileage from the tier's interval.
func Complete(db *gorm.DB, id uint) (*models.Order, error) {
	o, err := Get(db, id)
	if err != nil {
		return nil, err
	}
	if !isValidTransition(o.Status, "completed") {
		return nil, fmt.Errorf("order: invalid status transition from %q to %q; valid transitions: %v",
			o.Status, "completed", ValidTransitions[o.Status])
	}

	now := time.Now()
	updates := map[string]interface{}{
		"status":       "completed",
		"completed_at": now,
	}
	if o.MileageCurrent != nil {
		var tier models.Tier
		if err := db.Where("code = ?", o.TierCode).First(&tier).Error; err == nil && tier.MileageInterval > 0 {
			next := *o.MileageCurrent + tier.MileageInterval
			updates["mileage_next"] = next
			o.MileageNext = &next
		}
	}

	if err := db.Model(o).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("order: complete %d: %w", id, err)
	}
	o.Status = "completed"
	o.CompletedAt = &now

	rememberCustomer(db, o)
	return o, nil
}

// Total is the order's oil price plus every extra-service item.
func Total(o *models.Order) int {
	total := o.OilPrice
	for _, it := range o.Items {
		total += it.Price
	}
	return total
}
