package catalog

import (
	"errors"
	"testing"

	"github.com/quickoil/kiosk/internal/models"
	"gorm.io/gorm"
)

func seedHierarchy(t *testing.T, gdb *gorm.DB) (models.Brand, models.CarModel, models.CarModel) {
	t.Helper()
	brand := models.Brand{Name: "현대", SortOrder: 1}
	if err := gdb.Create(&brand).Error; err != nil {
		t.Fatalf("create brand: %v", err)
	}
	base := models.CarModel{BrandID: brand.ID, Name: "쏘나타"}
	if err := gdb.Create(&base).Error; err != nil {
		t.Fatalf("create base: %v", err)
	}
	gen := models.CarModel{BrandID: brand.ID, Name: "DN8", ParentID: &base.ID}
	if err := gdb.Create(&gen).Error; err != nil {
		t.Fatalf("create generation: %v", err)
	}
	return brand, base, gen
}

func TestBrandsWithModels(t *testing.T) {
	gdb := openTestDB(t)
	_, base, gen := seedHierarchy(t, gdb)

	brands, err := BrandsWithModels(gdb)
	if err != nil {
		t.Fatalf("BrandsWithModels: %v", err)
	}
	if len(brands) != 1 {
		t.Fatalf("brands = %d, want 1", len(brands))
	}
	if len(brands[0].Models) != 1 {
		t.Fatalf("base models = %d, want 1 (generations must not appear at top level)", len(brands[0].Models))
	}
	got := brands[0].Models[0]
	if got.ID != base.ID {
		t.Errorf("top-level model = %d, want base %d", got.ID, base.ID)
	}
	if len(got.Children) != 1 || got.Children[0].ID != gen.ID {
		t.Errorf("children = %v, want [%d]", got.Children, gen.ID)
	}
}

func TestDeleteModel_CascadesGenerationsAndPrices(t *testing.T) {
	gdb := openTestDB(t)
	_, base, gen := seedHierarchy(t, gdb)

	var tier models.Tier
	gdb.Where("code = ?", "economy").First(&tier)
	var gas models.FuelType
	gdb.Where("name = ?", "휘발유").First(&gas)
	gdb.Create(&models.Price{CarModelID: gen.ID, TierID: tier.ID, FuelTypeID: gas.ID, Amount: 65000})

	if err := DeleteModel(gdb, base.ID); err != nil {
		t.Fatalf("DeleteModel: %v", err)
	}

	var mdls, prices int64
	gdb.Model(&models.CarModel{}).Count(&mdls)
	gdb.Model(&models.Price{}).Count(&prices)
	if mdls != 0 || prices != 0 {
		t.Errorf("after delete: %d models, %d prices, want 0, 0", mdls, prices)
	}
}

func TestDeleteModel_RefusedWhileOrdersReference(t *testing.T) {
	gdb := openTestDB(t)
	_, base, gen := seedHierarchy(t, gdb)

	genID := gen.ID
	o := models.Order{CarModelID: &genID, TierCode: "economy", TierName: "이코노미", OilPrice: 65000}
	if err := gdb.Create(&o).Error; err != nil {
		t.Fatalf("create order: %v", err)
	}

	err := DeleteModel(gdb, base.ID)
	if !errors.Is(err, ErrModelInUse) {
		t.Fatalf("DeleteModel error = %v, want ErrModelInUse", err)
	}

	var mdls int64
	gdb.Model(&models.CarModel{}).Count(&mdls)
	if mdls != 2 {
		t.Errorf("models after refused delete = %d, want 2", mdls)
	}
}

func TestDeleteModel_Unknown(t *testing.T) {
	gdb := openTestDB(t)
	if err := DeleteModel(gdb, 9999); err == nil {
		t.Fatal("expected error for unknown model")
	}
}
