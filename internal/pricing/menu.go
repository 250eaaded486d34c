// Package pricing builds the priced tier menu a customer chooses from at
// order time.
package pricing

import (
	"errors"
	"fmt"

	"github.com/quickoil/kiosk/internal/models"
	"gorm.io/gorm"
)

// ErrNotFound marks an unknown vehicle or fuel reference. "No price found"
// is never an error: it yields fallback pricing or an omitted tier.
var ErrNotFound = errors.New("pricing: not found")

// hybridFuelName is the fuel whose premium-tier product is swapped for the
// dedicated hybrid oil when one is priced.
const hybridFuelName = "하이브리드"

// TierQuote is one selectable line of the price menu.
type TierQuote struct {
	Code            string `json:"code"`
	Name            string `json:"name"`
	ProductName     string `json:"product_name"`
	OilKind         string `json:"oil_kind"`
	Tagline         string `json:"tagline"`
	Badge           string `json:"badge,omitempty"`
	BadgeType       string `json:"badge_type,omitempty"`
	MileageInterval int    `json:"mileage_interval"`
	Amount          int    `json:"amount"`
}

// Menu is the ordered, priced tier list for one (vehicle, fuel) pair.
// Catalogued is false when the vehicle has no price rows at all for the
// fuel and every amount is the tier's fixed reference price.
type Menu struct {
	Tiers      []TierQuote `json:"tiers"`
	Catalogued bool        `json:"catalogued"`
}

// MenuFor resolves the tier menu for a vehicle and fuel.
//
// Tiers with a catalog price are listed at that price; tiers without one are
// omitted while any price exists for the pair (import vehicles priced from
// premium upward fall out of the cheaper tiers this way). A vehicle with no
// prices at all gets every visible tier at its reference price, flagged
// uncatalogued so the kiosk can render the estimate differently.
func MenuFor(db *gorm.DB, carModelID, fuelTypeID uint) (*Menu, error) {
	var vehicle models.CarModel
	if err := db.Where("id = ?", carModelID).First(&vehicle).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: vehicle %d", ErrNotFound, carModelID)
		}
		return nil, fmt.Errorf("pricing: get vehicle %d: %w", carModelID, err)
	}
	var fuel models.FuelType
	if err := db.Where("id = ?", fuelTypeID).First(&fuel).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: fuel %d", ErrNotFound, fuelTypeID)
		}
		return nil, fmt.Errorf("pricing: get fuel %d: %w", fuelTypeID, err)
	}

	var tiers []models.Tier
	if err := db.Where("active = ?", true).Order("sort_order ASC").Find(&tiers).Error; err != nil {
		return nil, fmt.Errorf("pricing: load tiers: %w", err)
	}
	tierByID := make(map[uint]*models.Tier, len(tiers))
	tierByCode := make(map[string]*models.Tier, len(tiers))
	for i := range tiers {
		tierByID[tiers[i].ID] = &tiers[i]
		tierByCode[tiers[i].Code] = &tiers[i]
	}

	var prices []models.Price
	if err := db.Where("car_model_id = ? AND fuel_type_id = ?", vehicle.ID, fuel.ID).Find(&prices).Error; err != nil {
		return nil, fmt.Errorf("pricing: load prices for vehicle %d fuel %d: %w", vehicle.ID, fuel.ID, err)
	}

	amounts := make(map[string]int, len(prices))
	for _, p := range prices {
		if t, ok := tierByID[p.TierID]; ok {
			amounts[t.Code] = p.Amount
		}
	}

	// Hybrid vehicles get the dedicated hybrid oil at the premium menu
	// position when one is priced.
	product := make(map[string]*models.Tier)
	if fuel.Name == hybridFuelName {
		if amt, ok := amounts["premium_hybrid"]; ok {
			amounts["premium"] = amt
			if hp, ok := tierByCode["premium_hybrid"]; ok {
				product["premium"] = hp
			}
		}
	}

	// Catalogued derives from the raw price rows, not the amounts map: a
	// vehicle whose only prices sit on a retired tier keeps an empty
	// catalogued menu instead of falling back to reference prices.
	menu := &Menu{Catalogued: len(prices) > 0}
	for i := range tiers {
		t := &tiers[i]
		if !t.Visible {
			continue
		}

		quote := TierQuote{
			Code:            t.Code,
			Name:            t.Name,
			ProductName:     t.ProductName,
			OilKind:         t.OilKind,
			Tagline:         t.Tagline,
			Badge:           t.Badge,
			BadgeType:       t.BadgeType,
			MileageInterval: t.MileageInterval,
		}
		if sub, ok := product[t.Code]; ok {
			quote.ProductName = sub.ProductName
			quote.OilKind = sub.OilKind
			quote.Tagline = sub.Tagline
			quote.MileageInterval = sub.MileageInterval
		}

		if menu.Catalogued {
			amt, ok := amounts[t.Code]
			if !ok {
				continue
			}
			quote.Amount = amt
		} else {
			quote.Amount = t.BasePrice
		}
		menu.Tiers = append(menu.Tiers, quote)
	}

	return menu, nil
}
