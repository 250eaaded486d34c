package main

import (
	"fmt"

	"github.com/quickoil/kiosk/internal/krw"
	"github.com/quickoil/kiosk/internal/models"
	"github.com/quickoil/kiosk/internal/pricing"
	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

func newMenuCmd() *cobra.Command {
	var (
		configPath string
		fuelName   string
	)

	cmd := &cobra.Command{
		Use:   "menu <brand> <model> [generation]",
		Short: "Print a vehicle's priced tier menu",
		Args:  cobra.RangeArgs(2, 3),
		RunE: func(cmd *cobra.Command, args []string) error {
			gen := ""
			if len(args) == 3 {
				gen = args[2]
			}
			return runMenu(cmd, configPath, args[0], args[1], gen, fuelName)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "kiosk.yaml", "path to kiosk config file")
	cmd.Flags().StringVarP(&fuelName, "fuel", "f", "휘발유", "fuel type name")
	return cmd
}

func runMenu(cmd *cobra.Command, configPath, brandName, modelName, genName, fuelName string) error {
	out := cmd.OutOrStdout()

	_, gormDB, err := connectFromConfig(configPath)
	if err != nil {
		return err
	}

	carModel, err := findModel(gormDB, brandName, modelName, genName)
	if err != nil {
		return err
	}

	var fuel models.FuelType
	if err := gormDB.Where("name = ?", fuelName).First(&fuel).Error; err != nil {
		return fmt.Errorf("fuel type %q not found", fuelName)
	}

	menu, err := pricing.MenuFor(gormDB, carModel.ID, fuel.ID)
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "%s %s (%s)\n", brandName, carModel.FullName(), fuelName)
	if !menu.Catalogued {
		fmt.Fprintln(out, "No catalog prices: showing reference prices")
	}
	for _, t := range menu.Tiers {
		line := fmt.Sprintf("  %-8s %-14s %8s원", t.Code, t.ProductName, krw.Format(t.Amount))
		if t.Badge != "" {
			line += "  [" + t.Badge + "]"
		}
		fmt.Fprintln(out, line)
	}
	return nil
}

// findModel resolves brand/model/generation names to the catalog node.
func findModel(db *gorm.DB, brandName, modelName, genName string) (*models.CarModel, error) {
	var brand models.Brand
	if err := db.Where("name = ?", brandName).First(&brand).Error; err != nil {
		return nil, fmt.Errorf("brand %q not found", brandName)
	}

	var base models.CarModel
	if err := db.Where("brand_id = ? AND name = ? AND parent_id IS NULL", brand.ID, modelName).First(&base).Error; err != nil {
		return nil, fmt.Errorf("model %q not found under %q", modelName, brandName)
	}
	if genName == "" {
		return &base, nil
	}

	var gen models.CarModel
	if err := db.Preload("Parent").Where("brand_id = ? AND name = ? AND parent_id = ?", brand.ID, genName, base.ID).First(&gen).Error; err != nil {
		return nil, fmt.Errorf("generation %q not found under %q", genName, modelName)
	}
	return &gen, nil
}
