package catalog

import (
	"strings"
	"testing"

	"github.com/quickoil/kiosk/internal/db"
	"github.com/quickoil/kiosk/internal/models"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// openTestDB opens an in-memory SQLite store with the full schema and the
// fuel/tier reference data seeded.
func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	gdb, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	if err := db.AutoMigrate(gdb); err != nil {
		t.Fatalf("auto migrate: %v", err)
	}
	if err := db.SeedReferenceData(gdb); err != nil {
		t.Fatalf("seed reference data: %v", err)
	}
	return gdb
}

func newTestResolver(t *testing.T, gdb *gorm.DB, dryRun bool) *Resolver {
	t.Helper()
	r, err := NewResolver(gdb, dryRun)
	if err != nil {
		t.Fatalf("NewResolver: %v", err)
	}
	return r
}

func TestResolveBrand_CreatesOnce(t *testing.T) {
	gdb := openTestDB(t)
	r := newTestResolver(t, gdb, false)

	b1, err := r.ResolveBrand("현대")
	if err != nil {
		t.Fatalf("ResolveBrand: %v", err)
	}
	b2, err := r.ResolveBrand("현대")
	if err != nil {
		t.Fatalf("ResolveBrand again: %v", err)
	}
	if b1 != b2 {
		t.Error("repeated ResolveBrand returned a different instance")
	}

	var count int64
	gdb.Model(&models.Brand{}).Count(&count)
	if count != 1 {
		t.Errorf("brand rows = %d, want 1", count)
	}
}

func TestResolveBrand_SortOrderAdvances(t *testing.T) {
	gdb := openTestDB(t)
	r := newTestResolver(t, gdb, false)

	first, _ := r.ResolveBrand("현대")
	second, _ := r.ResolveBrand("기아")
	if first.SortOrder != 1 || second.SortOrder != 2 {
		t.Errorf("sort orders = %d, %d, want 1, 2", first.SortOrder, second.SortOrder)
	}
}

func TestResolveModel_BaseAndGeneration(t *testing.T) {
	gdb := openTestDB(t)
	r := newTestResolver(t, gdb, false)

	brand, _ := r.ResolveBrand("현대")
	gen, err := r.ResolveModel(brand, "쏘나타", "DN8")
	if err != nil {
		t.Fatalf("ResolveModel: %v", err)
	}
	if gen.ParentID == nil {
		t.Fatal("generation node has no parent")
	}
	if r.Stats.ModelsCreated != 2 {
		t.Errorf("ModelsCreated = %d, want 2 (base + generation)", r.Stats.ModelsCreated)
	}

	// Same name under the same brand resolves to the cached nodes.
	again, err := r.ResolveModel(brand, "쏘나타", "DN8")
	if err != nil {
		t.Fatalf("ResolveModel again: %v", err)
	}
	if again != gen {
		t.Error("repeated ResolveModel returned a different instance")
	}
	if r.Stats.ModelsCreated != 2 {
		t.Errorf("ModelsCreated after repeat = %d, want 2", r.Stats.ModelsCreated)
	}
}

func TestResolveModel_RefusesNestedGeneration(t *testing.T) {
	gdb := openTestDB(t)
	r := newTestResolver(t, gdb, false)

	brand, _ := r.ResolveBrand("현대")
	gen, err := r.ResolveModel(brand, "쏘나타", "DN8")
	if err != nil {
		t.Fatalf("ResolveModel: %v", err)
	}

	_, err = r.resolveNode(brand, "페이스리프트", gen)
	if err == nil {
		t.Fatal("expected error attaching a generation to a generation")
	}
	if !strings.Contains(err.Error(), "already a generation") {
		t.Errorf("error = %q, want mention of nested generation", err)
	}
}

func TestSavePrice_CreateThenUpdate(t *testing.T) {
	gdb := openTestDB(t)
	r := newTestResolver(t, gdb, false)

	brand, _ := r.ResolveBrand("현대")
	m, _ := r.ResolveModel(brand, "그랜져", "GN7")
	tier := r.Tier("economy")
	if tier == nil {
		t.Fatal("economy tier missing from seed data")
	}

	if err := r.SavePrice(m, tier, "휘발유", 65000); err != nil {
		t.Fatalf("SavePrice: %v", err)
	}
	if r.Stats.PricesCreated != 1 || r.Stats.PricesUpdated != 0 {
		t.Fatalf("stats after create = %+v", r.Stats)
	}

	if err := r.SavePrice(m, tier, "휘발유", 68000); err != nil {
		t.Fatalf("SavePrice update: %v", err)
	}
	if r.Stats.PricesCreated != 1 || r.Stats.PricesUpdated != 1 {
		t.Fatalf("stats after update = %+v", r.Stats)
	}

	var p models.Price
	if err := gdb.Where("car_model_id = ?", m.ID).First(&p).Error; err != nil {
		t.Fatalf("load price: %v", err)
	}
	if p.Amount != 68000 {
		t.Errorf("amount = %d, want 68000", p.Amount)
	}
	var count int64
	gdb.Model(&models.Price{}).Count(&count)
	if count != 1 {
		t.Errorf("price rows = %d, want 1", count)
	}
}

func TestSavePrice_UnknownFuelSkipped(t *testing.T) {
	gdb := openTestDB(t)
	r := newTestResolver(t, gdb, false)

	brand, _ := r.ResolveBrand("현대")
	m, _ := r.ResolveModel(brand, "쏘나타", "")
	tier := r.Tier("economy")

	if err := r.SavePrice(m, tier, "수소", 65000); err != nil {
		t.Fatalf("SavePrice: %v", err)
	}
	if r.Stats.Skipped != 1 {
		t.Errorf("Skipped = %d, want 1", r.Stats.Skipped)
	}
	var count int64
	gdb.Model(&models.Price{}).Count(&count)
	if count != 0 {
		t.Errorf("price rows = %d, want 0", count)
	}
}

func TestDryRun_WritesNothingCountsEverything(t *testing.T) {
	gdb := openTestDB(t)
	r := newTestResolver(t, gdb, true)

	brand, _ := r.ResolveBrand("현대")
	m, err := r.ResolveModel(brand, "쏘나타", "DN8")
	if err != nil {
		t.Fatalf("ResolveModel: %v", err)
	}
	tier := r.Tier("economy")

	if err := r.SavePrice(m, tier, "휘발유", 65000); err != nil {
		t.Fatalf("SavePrice: %v", err)
	}
	// The same triple again counts as an update, as a real run would.
	if err := r.SavePrice(m, tier, "휘발유", 66000); err != nil {
		t.Fatalf("SavePrice repeat: %v", err)
	}

	if r.Stats.ModelsCreated != 2 || r.Stats.PricesCreated != 1 || r.Stats.PricesUpdated != 1 {
		t.Errorf("dry-run stats = %+v, want 2 models, 1 created, 1 updated", r.Stats)
	}

	var brands, mdls, prices int64
	gdb.Model(&models.Brand{}).Count(&brands)
	gdb.Model(&models.CarModel{}).Count(&mdls)
	gdb.Model(&models.Price{}).Count(&prices)
	if brands != 0 || mdls != 0 || prices != 0 {
		t.Errorf("dry run wrote rows: %d brands, %d models, %d prices", brands, mdls, prices)
	}
}

func TestDryRun_DetectsExistingPriceAsUpdate(t *testing.T) {
	gdb := openTestDB(t)

	// Seed a real price.
	r := newTestResolver(t, gdb, false)
	brand, _ := r.ResolveBrand("현대")
	m, _ := r.ResolveModel(brand, "쏘나타", "")
	if err := r.SavePrice(m, r.Tier("economy"), "휘발유", 65000); err != nil {
		t.Fatalf("seed price: %v", err)
	}

	// A fresh dry-run resolver must classify the same triple as an update.
	dry := newTestResolver(t, gdb, true)
	dryBrand, _ := dry.ResolveBrand("현대")
	dryModel, _ := dry.ResolveModel(dryBrand, "쏘나타", "")
	if err := dry.SavePrice(dryModel, dry.Tier("economy"), "휘발유", 70000); err != nil {
		t.Fatalf("dry SavePrice: %v", err)
	}
	if dry.Stats.PricesUpdated != 1 || dry.Stats.PricesCreated != 0 {
		t.Errorf("dry stats = %+v, want 1 update, 0 created", dry.Stats)
	}

	// And the stored amount is untouched.
	var p models.Price
	gdb.First(&p)
	if p.Amount != 65000 {
		t.Errorf("stored amount = %d, want 65000", p.Amount)
	}
}

func TestClearPrices(t *testing.T) {
	gdb := openTestDB(t)
	r := newTestResolver(t, gdb, false)

	brand, _ := r.ResolveBrand("현대")
	m, _ := r.ResolveModel(brand, "쏘나타", "")
	r.SavePrice(m, r.Tier("economy"), "휘발유", 65000)
	r.SavePrice(m, r.Tier("economy"), "경유", 70000)

	clearing := newTestResolver(t, gdb, false)
	if err := clearing.ClearPrices(); err != nil {
		t.Fatalf("ClearPrices: %v", err)
	}
	if clearing.Stats.PricesCleared != 2 {
		t.Errorf("PricesCleared = %d, want 2", clearing.Stats.PricesCleared)
	}
	var count int64
	gdb.Model(&models.Price{}).Count(&count)
	if count != 0 {
		t.Errorf("price rows after clear = %d, want 0", count)
	}

	// Dry-run clear counts without deleting.
	r2 := newTestResolver(t, gdb, false)
	m2, _ := r2.ResolveModel(brand, "쏘나타", "")
	r2.SavePrice(m2, r2.Tier("economy"), "휘발유", 65000)

	dry := newTestResolver(t, gdb, true)
	if err := dry.ClearPrices(); err != nil {
		t.Fatalf("dry ClearPrices: %v", err)
	}
	if dry.Stats.PricesCleared != 1 {
		t.Errorf("dry PricesCleared = %d, want 1", dry.Stats.PricesCleared)
	}
	gdb.Model(&models.Price{}).Count(&count)
	if count != 1 {
		t.Errorf("price rows after dry clear = %d, want 1", count)
	}
}

func TestClearPrices_DryRunPredictsCreates(t *testing.T) {
	gdb := openTestDB(t)

	seed := newTestResolver(t, gdb, false)
	brand, _ := seed.ResolveBrand("현대")
	m, _ := seed.ResolveModel(brand, "쏘나타", "")
	if err := seed.SavePrice(m, seed.Tier("economy"), "휘발유", 65000); err != nil {
		t.Fatalf("seed price: %v", err)
	}

	// After a dry-run clear the store must read as empty, so re-saving the
	// existing triple counts as a create, exactly as a real clear run would.
	dry := newTestResolver(t, gdb, true)
	if err := dry.ClearPrices(); err != nil {
		t.Fatalf("dry ClearPrices: %v", err)
	}
	dryModel, _ := dry.ResolveModel(brand, "쏘나타", "")
	if err := dry.SavePrice(dryModel, dry.Tier("economy"), "휘발유", 68000); err != nil {
		t.Fatalf("dry SavePrice: %v", err)
	}
	if dry.Stats.PricesCreated != 1 || dry.Stats.PricesUpdated != 0 {
		t.Errorf("dry stats after clear = %+v, want 1 created, 0 updated", dry.Stats)
	}
	// A repeated triple is still an update within the run.
	if err := dry.SavePrice(dryModel, dry.Tier("economy"), "휘발유", 69000); err != nil {
		t.Fatalf("dry SavePrice repeat: %v", err)
	}
	if dry.Stats.PricesCreated != 1 || dry.Stats.PricesUpdated != 1 {
		t.Errorf("dry stats after repeat = %+v, want 1 created, 1 updated", dry.Stats)
	}

	// The store keeps its row and amount.
	var p models.Price
	if err := gdb.First(&p).Error; err != nil {
		t.Fatalf("load price: %v", err)
	}
	if p.Amount != 65000 {
		t.Errorf("stored amount = %d, want 65000", p.Amount)
	}
}
