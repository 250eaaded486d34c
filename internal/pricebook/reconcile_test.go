package pricebook

import (
	"io"
	"path/filepath"
	"testing"

	"github.com/quickoil/kiosk/internal/db"
	"github.com/quickoil/kiosk/internal/models"
	"github.com/xuri/excelize/v2"
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

// setCell writes one cell using the scanner's zero-based coordinates.
func setCell(t *testing.T, f *excelize.File, sheet string, row, col int, value interface{}) {
	t.Helper()
	axis, err := excelize.CoordinatesToCellName(col+1, row+1)
	if err != nil {
		t.Fatalf("cell name for (%d,%d): %v", row, col, err)
	}
	if err := f.SetCellValue(sheet, axis, value); err != nil {
		t.Fatalf("set cell %s!%s: %v", sheet, axis, err)
	}
}

// writeEconomySheet fills the standard test layout for one sheet: 현대 and
// its KGM sub-brand block, 기아, 제네시스 and 르노코리아 groups.
func writeEconomySheet(t *testing.T, f *excelize.File, sheet string) {
	t.Helper()

	// 현대 group: vehicle col 1, gas col 2, diesel col 3.
	setCell(t, f, sheet, 4, 1, "쏘나타 DN8")
	setCell(t, f, sheet, 4, 2, 65000)
	setCell(t, f, sheet, 4, 3, 70000)
	setCell(t, f, sheet, 5, 1, "아반떼")
	setCell(t, f, sheet, 5, 2, 55000)
	setCell(t, f, sheet, 6, 1, "차종") // header noise
	setCell(t, f, sheet, 7, 1, "-")
	setCell(t, f, sheet, 8, 1, "판촉 행사 안내") // memo row, no prices
	setCell(t, f, sheet, 9, 1, "KGM(쌍용)")
	setCell(t, f, sheet, 10, 1, "토레스")
	setCell(t, f, sheet, 10, 2, 60000)
	setCell(t, f, sheet, 10, 3, 66000)
	setCell(t, f, sheet, 11, 1, "KGM") // repeated header, must not re-fire
	setCell(t, f, sheet, 12, 1, "렉스턴")
	setCell(t, f, sheet, 12, 2, 50000)
	setCell(t, f, sheet, 12, 3, 54000)

	// 기아 group: cols 5/6/7.
	setCell(t, f, sheet, 4, 5, "K5")
	setCell(t, f, sheet, 4, 6, "58,000원")
	setCell(t, f, sheet, 4, 7, "-")

	// 제네시스 group: cols 9/10, no diesel.
	setCell(t, f, sheet, 4, 9, "G80")
	setCell(t, f, sheet, 4, 10, 90000)

	// 르노코리아 group: cols 12/13/14.
	setCell(t, f, sheet, 4, 12, "QM6")
	setCell(t, f, sheet, 4, 13, 62000)
	setCell(t, f, sheet, 4, 14, 64000)
}

// buildWorkbook writes a single-sheet test workbook and returns its path.
func buildWorkbook(t *testing.T, sheet string) string {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()

	if _, err := f.NewSheet(sheet); err != nil {
		t.Fatalf("new sheet: %v", err)
	}
	if err := f.DeleteSheet("Sheet1"); err != nil {
		t.Fatalf("delete default sheet: %v", err)
	}
	writeEconomySheet(t, f, sheet)

	path := filepath.Join(t.TempDir(), "pricebook.xlsx")
	if err := f.SaveAs(path); err != nil {
		t.Fatalf("save workbook: %v", err)
	}
	return path
}

// The standard workbook yields 9 catalog nodes (쏘나타+DN8, 아반떼+CN7,
// 토레스, 렉스턴, K5, G80, QM6) and 18 price rows: gasoline prices land
// under both 휘발유 and 하이브리드.
const (
	wantModels = 9
	wantPrices = 18
)

func TestReconcile_FreshImport(t *testing.T) {
	gdb := openTestDB(t)
	path := buildWorkbook(t, "킥스 GX5 가격표")

	stats, err := Reconcile(gdb, Options{Path: path, Out: io.Discard})
	if err != nil {
		t.Fatalf("Reconcile() error: %v", err)
	}

	if stats.ModelsCreated != wantModels {
		t.Errorf("ModelsCreated = %d, want %d", stats.ModelsCreated, wantModels)
	}
	if stats.PricesCreated != wantPrices {
		t.Errorf("PricesCreated = %d, want %d", stats.PricesCreated, wantPrices)
	}
	if stats.PricesUpdated != 0 {
		t.Errorf("PricesUpdated = %d, want 0", stats.PricesUpdated)
	}

	var priceCount int64
	gdb.Model(&models.Price{}).Count(&priceCount)
	if priceCount != wantPrices {
		t.Errorf("price rows = %d, want %d", priceCount, wantPrices)
	}

	// 아반떼 without a generation token resolves to the CN7 node.
	var brand models.Brand
	if err := gdb.Where("name = ?", "현대").First(&brand).Error; err != nil {
		t.Fatalf("brand 현대 missing: %v", err)
	}
	var base models.CarModel
	if err := gdb.Where("brand_id = ? AND name = ? AND parent_id IS NULL", brand.ID, "아반떼").First(&base).Error; err != nil {
		t.Fatalf("base 아반떼 missing: %v", err)
	}
	var gen models.CarModel
	if err := gdb.Where("brand_id = ? AND name = ? AND parent_id = ?", brand.ID, "CN7", base.ID).First(&gen).Error; err != nil {
		t.Fatalf("generation CN7 missing: %v", err)
	}
	var baseCount, genCount int64
	gdb.Model(&models.Price{}).Where("car_model_id = ?", base.ID).Count(&baseCount)
	gdb.Model(&models.Price{}).Where("car_model_id = ?", gen.ID).Count(&genCount)
	if baseCount != 0 {
		t.Errorf("base 아반떼 has %d prices, want 0", baseCount)
	}
	if genCount != 2 {
		t.Errorf("generation CN7 has %d prices, want 2", genCount)
	}
}

func TestReconcile_SubBrandIsolation(t *testing.T) {
	gdb := openTestDB(t)
	path := buildWorkbook(t, "킥스 GX5")

	if _, err := Reconcile(gdb, Options{Path: path, Out: io.Discard}); err != nil {
		t.Fatalf("Reconcile() error: %v", err)
	}

	// 토레스 and 렉스턴 belong to KG모빌리티, not 현대, and the repeated
	// KGM header must not have spawned anything extra.
	var kg models.Brand
	if err := gdb.Where("name = ?", "KG모빌리티").First(&kg).Error; err != nil {
		t.Fatalf("brand KG모빌리티 missing: %v", err)
	}
	var names []string
	gdb.Model(&models.CarModel{}).Where("brand_id = ?", kg.ID).Order("name").Pluck("name", &names)
	if len(names) != 2 || names[0] != "렉스턴" || names[1] != "토레스" {
		t.Errorf("KG모빌리티 models = %v, want [렉스턴 토레스]", names)
	}

	var hyundai models.Brand
	if err := gdb.Where("name = ?", "현대").First(&hyundai).Error; err != nil {
		t.Fatalf("brand 현대 missing: %v", err)
	}
	var crossed int64
	gdb.Model(&models.CarModel{}).Where("brand_id = ? AND name IN ?", hyundai.ID, []string{"토레스", "렉스턴"}).Count(&crossed)
	if crossed != 0 {
		t.Errorf("%d sub-brand vehicles attributed to 현대, want 0", crossed)
	}
}

func TestReconcile_Idempotent(t *testing.T) {
	gdb := openTestDB(t)
	path := buildWorkbook(t, "킥스 GX5")

	if _, err := Reconcile(gdb, Options{Path: path, Out: io.Discard}); err != nil {
		t.Fatalf("first run: %v", err)
	}
	stats, err := Reconcile(gdb, Options{Path: path, Out: io.Discard})
	if err != nil {
		t.Fatalf("second run: %v", err)
	}

	if stats.ModelsCreated != 0 {
		t.Errorf("second run ModelsCreated = %d, want 0", stats.ModelsCreated)
	}
	if stats.PricesCreated != 0 {
		t.Errorf("second run PricesCreated = %d, want 0", stats.PricesCreated)
	}
	if stats.PricesUpdated != wantPrices {
		t.Errorf("second run PricesUpdated = %d, want %d", stats.PricesUpdated, wantPrices)
	}

	var priceCount int64
	gdb.Model(&models.Price{}).Count(&priceCount)
	if priceCount != wantPrices {
		t.Errorf("price rows after rerun = %d, want %d", priceCount, wantPrices)
	}
}

func TestReconcile_DryRunParity(t *testing.T) {
	gdb := openTestDB(t)
	path := buildWorkbook(t, "킥스 GX5")

	dry, err := Reconcile(gdb, Options{Path: path, DryRun: true, Out: io.Discard})
	if err != nil {
		t.Fatalf("dry run: %v", err)
	}

	// Nothing written.
	var modelCount, priceCount int64
	gdb.Model(&models.CarModel{}).Count(&modelCount)
	gdb.Model(&models.Price{}).Count(&priceCount)
	if modelCount != 0 || priceCount != 0 {
		t.Fatalf("dry run wrote %d models, %d prices", modelCount, priceCount)
	}

	applied, err := Reconcile(gdb, Options{Path: path, Out: io.Discard})
	if err != nil {
		t.Fatalf("applied run: %v", err)
	}

	if dry != applied {
		t.Errorf("dry-run stats %+v differ from applied-run stats %+v", dry, applied)
	}

	// From a populated store, dry-run must predict the rerun's updates too.
	dry2, err := Reconcile(gdb, Options{Path: path, DryRun: true, Out: io.Discard})
	if err != nil {
		t.Fatalf("second dry run: %v", err)
	}
	applied2, err := Reconcile(gdb, Options{Path: path, Out: io.Discard})
	if err != nil {
		t.Fatalf("second applied run: %v", err)
	}
	if dry2 != applied2 {
		t.Errorf("rerun dry stats %+v differ from applied stats %+v", dry2, applied2)
	}
}

func TestReconcile_DryRunClearParity(t *testing.T) {
	gdb := openTestDB(t)
	path := buildWorkbook(t, "킥스 GX5")

	if _, err := Reconcile(gdb, Options{Path: path, Out: io.Discard}); err != nil {
		t.Fatalf("populate run: %v", err)
	}

	dry, err := Reconcile(gdb, Options{Path: path, DryRun: true, Clear: true, Out: io.Discard})
	if err != nil {
		t.Fatalf("dry clear run: %v", err)
	}

	// The dry run left the store alone.
	var priceCount int64
	gdb.Model(&models.Price{}).Count(&priceCount)
	if priceCount != wantPrices {
		t.Fatalf("price rows after dry clear run = %d, want %d", priceCount, wantPrices)
	}

	applied, err := Reconcile(gdb, Options{Path: path, Clear: true, Out: io.Discard})
	if err != nil {
		t.Fatalf("applied clear run: %v", err)
	}
	if dry != applied {
		t.Errorf("dry clear stats %+v differ from applied clear stats %+v", dry, applied)
	}
	if applied.PricesCreated != wantPrices || applied.PricesUpdated != 0 {
		t.Errorf("clear run stats = %+v, want %d creates and no updates", applied, wantPrices)
	}
}

func TestReconcile_Clear(t *testing.T) {
	gdb := openTestDB(t)
	path := buildWorkbook(t, "킥스 GX5")

	if _, err := Reconcile(gdb, Options{Path: path, Out: io.Discard}); err != nil {
		t.Fatalf("first run: %v", err)
	}

	stats, err := Reconcile(gdb, Options{Path: path, Clear: true, Out: io.Discard})
	if err != nil {
		t.Fatalf("clear run: %v", err)
	}
	if stats.PricesCleared != wantPrices {
		t.Errorf("PricesCleared = %d, want %d", stats.PricesCleared, wantPrices)
	}
	if stats.PricesCreated != wantPrices {
		t.Errorf("PricesCreated after clear = %d, want %d", stats.PricesCreated, wantPrices)
	}

	var priceCount int64
	gdb.Model(&models.Price{}).Count(&priceCount)
	if priceCount != wantPrices {
		t.Errorf("price rows after clear run = %d, want %d", priceCount, wantPrices)
	}
}

func TestReconcile_UnclassifiedSheetSkipped(t *testing.T) {
	gdb := openTestDB(t)

	f := excelize.NewFile()
	if _, err := f.NewSheet("안내사항"); err != nil {
		t.Fatalf("new sheet: %v", err)
	}
	if err := f.DeleteSheet("Sheet1"); err != nil {
		t.Fatalf("delete default sheet: %v", err)
	}
	setCell(t, f, "안내사항", 4, 1, "쏘나타 DN8")
	setCell(t, f, "안내사항", 4, 2, 65000)
	path := filepath.Join(t.TempDir(), "pricebook.xlsx")
	if err := f.SaveAs(path); err != nil {
		t.Fatalf("save workbook: %v", err)
	}
	f.Close()

	stats, err := Reconcile(gdb, Options{Path: path, Out: io.Discard})
	if err != nil {
		t.Fatalf("Reconcile() error: %v", err)
	}
	if stats.ModelsCreated != 0 || stats.PricesCreated != 0 {
		t.Errorf("unclassified sheet produced stats %+v, want zero", stats)
	}
}

func TestReconcile_MissingWorkbook(t *testing.T) {
	gdb := openTestDB(t)
	_, err := Reconcile(gdb, Options{Path: filepath.Join(t.TempDir(), "nope.xlsx"), Out: io.Discard})
	if err == nil {
		t.Fatal("expected error for missing workbook")
	}
}
