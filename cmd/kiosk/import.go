package main

import (
	"fmt"

	"github.com/quickoil/kiosk/internal/pricebook"
	"github.com/spf13/cobra"
)

func newImportCmd() *cobra.Command {
	var (
		configPath string
		dryRun     bool
		clear      bool
	)

	cmd := &cobra.Command{
		Use:   "import <pricebook.xlsx>",
		Short: "Reconcile the catalog from a supplier price sheet",
		Long:  "Reads the supplier's XLSX price workbook and merges vehicles and prices into the catalog. Reruns are idempotent.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runImport(cmd, configPath, args[0], dryRun, clear)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "kiosk.yaml", "path to kiosk config file")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "report what would change without writing")
	cmd.Flags().BoolVar(&clear, "clear", false, "delete all existing prices before merging")
	return cmd
}

func runImport(cmd *cobra.Command, configPath, path string, dryRun, clear bool) error {
	out := cmd.OutOrStdout()

	_, gormDB, err := connectFromConfig(configPath)
	if err != nil {
		return err
	}

	if dryRun {
		fmt.Fprintln(out, "Dry run: no changes will be written")
	}

	stats, err := pricebook.Reconcile(gormDB, pricebook.Options{
		Path:   path,
		DryRun: dryRun,
		Clear:  clear,
		Out:    out,
	})
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "Models created:  %d\n", stats.ModelsCreated)
	fmt.Fprintf(out, "Prices created:  %d\n", stats.PricesCreated)
	fmt.Fprintf(out, "Prices updated:  %d\n", stats.PricesUpdated)
	if clear {
		fmt.Fprintf(out, "Prices cleared:  %d\n", stats.PricesCleared)
	}
	if stats.Skipped > 0 {
		fmt.Fprintf(out, "Skipped:         %d\n", stats.Skipped)
	}
	return nil
}
