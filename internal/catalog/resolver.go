// Package catalog maintains the brand → model → generation hierarchy and the
// sparse price matrix keyed by (vehicle, tier, fuel).
package catalog

import (
	"errors"
	"fmt"

	"github.com/quickoil/kiosk/internal/models"
	"gorm.io/gorm"
)

// syntheticBase marks IDs handed out for records that a dry run would have
// created. They exist only in the resolver's caches, never in the store, so
// any triple probe against them is a guaranteed miss.
const syntheticBase uint = 1 << 30

// Stats counts the effects of one reconciliation run.
type Stats struct {
	ModelsCreated int
	PricesCreated int
	PricesUpdated int
	PricesCleared int
	Skipped       int
}

type modelKey struct {
	BrandID  uint
	Name     string
	ParentID uint // 0 = base model
}

// Resolver turns spreadsheet-sourced names into catalog records, creating
// them on first sight. All lookups are memoized for the duration of one
// reconciliation run; a Resolver must not be shared across runs.
//
// In dry-run mode every create/upsert short-circuits to a counter increment
// while reads still hit the store, so the run reports the same
// create/update/skip counts a real run would.
type Resolver struct {
	db     *gorm.DB
	dryRun bool

	brands map[string]*models.Brand
	mdls   map[modelKey]*models.CarModel
	fuels  map[string]*models.FuelType
	tiers  map[string]*models.Tier

	// written tracks triples upserted during this run, so a repeated key
	// counts as an update in dry-run mode exactly as it would for real.
	written map[[3]uint]bool

	// cleared is set once ClearPrices has run: from then on the triple
	// probe treats the store as holding no price rows, in dry-run mode too.
	cleared bool

	nextSynthetic uint

	Stats Stats
}

// NewResolver loads the caches from the store and returns a run-scoped
// Resolver.
func NewResolver(db *gorm.DB, dryRun bool) (*Resolver, error) {
	r := &Resolver{
		db:            db,
		dryRun:        dryRun,
		brands:        make(map[string]*models.Brand),
		mdls:          make(map[modelKey]*models.CarModel),
		fuels:         make(map[string]*models.FuelType),
		tiers:         make(map[string]*models.Tier),
		written:       make(map[[3]uint]bool),
		nextSynthetic: syntheticBase,
	}

	var brands []models.Brand
	if err := db.Find(&brands).Error; err != nil {
		return nil, fmt.Errorf("catalog: load brands: %w", err)
	}
	for i := range brands {
		r.brands[brands[i].Name] = &brands[i]
	}

	var mdls []models.CarModel
	if err := db.Find(&mdls).Error; err != nil {
		return nil, fmt.Errorf("catalog: load models: %w", err)
	}
	for i := range mdls {
		r.mdls[keyOf(&mdls[i])] = &mdls[i]
	}

	var fuels []models.FuelType
	if err := db.Find(&fuels).Error; err != nil {
		return nil, fmt.Errorf("catalog: load fuel types: %w", err)
	}
	for i := range fuels {
		r.fuels[fuels[i].Name] = &fuels[i]
	}

	var tiers []models.Tier
	if err := db.Find(&tiers).Error; err != nil {
		return nil, fmt.Errorf("catalog: load tiers: %w", err)
	}
	for i := range tiers {
		r.tiers[tiers[i].Code] = &tiers[i]
	}

	return r, nil
}

func keyOf(m *models.CarModel) modelKey {
	k := modelKey{BrandID: m.BrandID, Name: m.Name}
	if m.ParentID != nil {
		k.ParentID = *m.ParentID
	}
	return k
}

// Tier returns the cached tier for a code, or nil.
func (r *Resolver) Tier(code string) *models.Tier {
	return r.tiers[code]
}

// synthesizeID hands out a unique in-memory ID for a dry-run creation.
func (r *Resolver) synthesizeID() uint {
	id := r.nextSynthetic
	r.nextSynthetic++
	return id
}

func isSynthetic(id uint) bool { return id >= syntheticBase }

// ResolveBrand returns the brand for a name, creating it with the next
// display order on first sight.
func (r *Resolver) ResolveBrand(name string) (*models.Brand, error) {
	if b, ok := r.brands[name]; ok {
		return b, nil
	}

	b := &models.Brand{Name: name, SortOrder: len(r.brands) + 1}
	if r.dryRun {
		b.ID = r.synthesizeID()
	} else if err := r.db.Create(b).Error; err != nil {
		return nil, fmt.Errorf("catalog: create brand %q: %w", name, err)
	}
	r.brands[name] = b
	return b, nil
}

// ResolveModel returns the catalog node for (brand, model, generation),
// creating missing nodes. With an empty generation it resolves a base model;
// otherwise it resolves the base model first, then the generation under it.
func (r *Resolver) ResolveModel(brand *models.Brand, name, generation string) (*models.CarModel, error) {
	base, err := r.resolveNode(brand, name, nil)
	if err != nil {
		return nil, err
	}
	if generation == "" {
		return base, nil
	}
	return r.resolveNode(brand, generation, base)
}

// resolveNode resolves or creates one hierarchy node. Generation depth is
// exactly one: a parent that is itself a generation is refused here rather
// than left to schema constraints.
func (r *Resolver) resolveNode(brand *models.Brand, name string, parent *models.CarModel) (*models.CarModel, error) {
	if parent != nil && parent.ParentID != nil {
		return nil, fmt.Errorf("catalog: %q cannot be a generation of %q: parent is already a generation", name, parent.Name)
	}

	k := modelKey{BrandID: brand.ID, Name: name}
	if parent != nil {
		k.ParentID = parent.ID
	}
	if m, ok := r.mdls[k]; ok {
		return m, nil
	}

	m := &models.CarModel{BrandID: brand.ID, Name: name}
	if parent != nil {
		pid := parent.ID
		m.ParentID = &pid
	}
	if r.dryRun || isSynthetic(brand.ID) || (parent != nil && isSynthetic(parent.ID)) {
		m.ID = r.synthesizeID()
	} else if err := r.db.Create(m).Error; err != nil {
		return nil, fmt.Errorf("catalog: create model %s/%s: %w", brand.Name, name, err)
	}
	r.mdls[k] = m
	r.Stats.ModelsCreated++
	return m, nil
}

// SavePrice upserts the (model, tier, fuel) price cell. A fuel name missing
// from the reference table is a validation failure: counted as skipped, the
// run continues.
func (r *Resolver) SavePrice(m *models.CarModel, tier *models.Tier, fuelName string, amount int) error {
	fuel, ok := r.fuels[fuelName]
	if !ok || m == nil {
		r.Stats.Skipped++
		return nil
	}

	triple := [3]uint{m.ID, tier.ID, fuel.ID}
	exists := r.dryRun && r.written[triple]
	var existing models.Price
	if !exists && !r.cleared && !isSynthetic(m.ID) {
		err := r.db.Where("car_model_id = ? AND tier_id = ? AND fuel_type_id = ?", m.ID, tier.ID, fuel.ID).
			First(&existing).Error
		switch {
		case err == nil:
			exists = true
		case errors.Is(err, gorm.ErrRecordNotFound):
		default:
			return fmt.Errorf("catalog: look up price for model %d tier %s fuel %s: %w", m.ID, tier.Code, fuel.Name, err)
		}
	}

	r.written[triple] = true

	if exists {
		if !r.dryRun {
			if err := r.db.Model(&existing).Update("amount", amount).Error; err != nil {
				return fmt.Errorf("catalog: update price for model %d tier %s fuel %s: %w", m.ID, tier.Code, fuel.Name, err)
			}
		}
		r.Stats.PricesUpdated++
		return nil
	}

	if !r.dryRun {
		p := models.Price{CarModelID: m.ID, TierID: tier.ID, FuelTypeID: fuel.ID, Amount: amount}
		if err := r.db.Create(&p).Error; err != nil {
			return fmt.Errorf("catalog: create price for model %d tier %s fuel %s: %w", m.ID, tier.Code, fuel.Name, err)
		}
	}
	r.Stats.PricesCreated++
	return nil
}

// ClearPrices removes every price row ahead of a full rebuild. In dry-run
// mode it only counts what would be removed, but still marks the store
// cleared so the rest of the run predicts creates, not updates.
func (r *Resolver) ClearPrices() error {
	var count int64
	if err := r.db.Model(&models.Price{}).Count(&count).Error; err != nil {
		return fmt.Errorf("catalog: count prices: %w", err)
	}
	if !r.dryRun {
		if err := r.db.Where("1 = 1").Delete(&models.Price{}).Error; err != nil {
			return fmt.Errorf("catalog: clear prices: %w", err)
		}
	}
	r.cleared = true
	r.Stats.PricesCleared = int(count)
	return nil
}
