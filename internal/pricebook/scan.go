package pricebook

import (
	"fmt"
	"strings"

	"github.com/quickoil/kiosk/internal/catalog"
	"github.com/quickoil/kiosk/internal/models"
)

// A blockLayout fixes the columns of one top-level brand group within a
// sheet. Columns are zero-based; DieselCol is -1 for brands without a diesel
// price column.
type blockLayout struct {
	Brand     string
	CarCol    int
	GasCol    int
	DieselCol int
}

// blockLayouts is the fixed column arrangement of every price sheet.
var blockLayouts = []blockLayout{
	{Brand: "현대", CarCol: 1, GasCol: 2, DieselCol: 3},
	{Brand: "기아", CarCol: 5, GasCol: 6, DieselCol: 7},
	{Brand: "제네시스", CarCol: 9, GasCol: 10, DieselCol: -1},
	{Brand: "르노코리아", CarCol: 12, GasCol: 13, DieselCol: 14},
}

// dataStartRow is the zero-based index of the first data row; rows above it
// are the sheet banner and column headers.
const dataStartRow = 4

// cellAt reads a cell from the row grid, tolerating ragged rows: excelize
// trims trailing empty cells, so out-of-range reads are empty, not errors.
func cellAt(rows [][]string, row, col int) string {
	if row < 0 || row >= len(rows) {
		return ""
	}
	r := rows[row]
	if col < 0 || col >= len(r) {
		return ""
	}
	return r[col]
}

// scanBlock walks one brand column group from startRow to the end of the
// sheet and hands every usable row to the resolver.
//
// A sub-brand header row ends the current block: the remaining rows form a
// new block attributed to the sub-brand. The switch is modeled as an
// explicit brand reassignment inside one loop rather than recursion, and a
// header repeating the block's current brand is skipped as a plain row, so
// the scan is bounded by the row count no matter how headers repeat.
func scanBlock(r *catalog.Resolver, sheet string, rows [][]string, layout blockLayout, tier *models.Tier) error {
	brandName := layout.Brand
	var brand *models.Brand // resolved lazily: header-only blocks create no brand

	for row := dataStartRow; row < len(rows); row++ {
		raw := strings.TrimSpace(cellAt(rows, row, layout.CarCol))
		if raw == "" || raw == "-" {
			continue
		}
		if skipValues[raw] {
			continue
		}

		if sub, ok := DetectSubBrand(raw); ok {
			if sub == brandName {
				continue
			}
			brandName = sub
			brand = nil
			continue
		}

		// Memo rows (판촉 안내 등) have a vehicle-name cell but no prices.
		gasRaw := cellAt(rows, row, layout.GasCol)
		dieselRaw := ""
		if layout.DieselCol >= 0 {
			dieselRaw = cellAt(rows, row, layout.DieselCol)
		}
		if strings.TrimSpace(gasRaw) == "" && strings.TrimSpace(dieselRaw) == "" {
			continue
		}

		modelName, genName := ParseVehicleName(raw)
		if modelName == "" {
			continue
		}

		if brand == nil {
			b, err := r.ResolveBrand(brandName)
			if err != nil {
				return fmt.Errorf("pricebook: sheet %q brand %q row %d: %w", sheet, brandName, row+1, err)
			}
			brand = b
		}

		carModel, err := r.ResolveModel(brand, modelName, genName)
		if err != nil {
			return fmt.Errorf("pricebook: sheet %q brand %q row %d: %w", sheet, brandName, row+1, err)
		}

		if gasPrice, ok := ParsePrice(gasRaw); ok {
			// Hybrids have no dedicated column; the gasoline price stands in
			// unless a dedicated sheet overrides it later.
			if err := r.SavePrice(carModel, tier, "휘발유", gasPrice); err != nil {
				return fmt.Errorf("pricebook: sheet %q brand %q row %d: %w", sheet, brandName, row+1, err)
			}
			if err := r.SavePrice(carModel, tier, "하이브리드", gasPrice); err != nil {
				return fmt.Errorf("pricebook: sheet %q brand %q row %d: %w", sheet, brandName, row+1, err)
			}
		}

		if layout.DieselCol >= 0 {
			if dieselPrice, ok := ParsePrice(dieselRaw); ok {
				if err := r.SavePrice(carModel, tier, "경유", dieselPrice); err != nil {
					return fmt.Errorf("pricebook: sheet %q brand %q row %d: %w", sheet, brandName, row+1, err)
				}
			}
		}
	}

	return nil
}
