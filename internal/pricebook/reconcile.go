package pricebook

import (
	"fmt"
	"io"

	"github.com/quickoil/kiosk/internal/catalog"
	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"
)

// Options controls one reconciliation run.
type Options struct {
	Path   string
	DryRun bool // classify, parse and count, but write nothing
	Clear  bool // delete all existing prices before merging
	Out    io.Writer
}

// Reconcile merges the workbook at opts.Path into the catalog and price
// matrix. All writes are idempotent upserts keyed by the natural
// (vehicle, tier, fuel) triple, so a rerun converges to the same state.
// Any store or workbook failure aborts the run; prior upserts stay
// committed.
func Reconcile(db *gorm.DB, opts Options) (catalog.Stats, error) {
	out := opts.Out
	if out == nil {
		out = io.Discard
	}

	f, err := excelize.OpenFile(opts.Path)
	if err != nil {
		return catalog.Stats{}, fmt.Errorf("pricebook: open workbook %s: %w", opts.Path, err)
	}
	defer f.Close()

	r, err := catalog.NewResolver(db, opts.DryRun)
	if err != nil {
		return catalog.Stats{}, err
	}

	if opts.Clear {
		if err := r.ClearPrices(); err != nil {
			return r.Stats, err
		}
		fmt.Fprintf(out, "Cleared %d existing price(s)\n", r.Stats.PricesCleared)
	}

	// Structural corrections must land before scanning so a sheet pass that
	// writes to the generation node is not shadowed by stale base rows.
	if !opts.DryRun {
		fix, err := catalog.ApplyGenerationFixes(db)
		if err != nil {
			return r.Stats, err
		}
		if fix.GenerationCreated {
			r.Stats.ModelsCreated++
		}
		if fix.PricesMoved > 0 {
			fmt.Fprintf(out, "Moved %d price(s) onto generation nodes\n", fix.PricesMoved)
		}
	}

	for _, sheet := range f.GetSheetList() {
		tierCode, ok := TierForSheet(sheet)
		if !ok {
			continue
		}
		tier := r.Tier(tierCode)
		if tier == nil {
			fmt.Fprintf(out, "Skipping sheet %q: tier %q missing from reference data\n", sheet, tierCode)
			continue
		}

		rows, err := f.GetRows(sheet)
		if err != nil {
			return r.Stats, fmt.Errorf("pricebook: read sheet %q: %w", sheet, err)
		}

		fmt.Fprintf(out, "Processing %q → %s\n", sheet, tierCode)
		for _, layout := range blockLayouts {
			if err := scanBlock(r, sheet, rows, layout, tier); err != nil {
				return r.Stats, err
			}
		}
	}

	return r.Stats, nil
}
