package main

import (
	"fmt"

	"github.com/quickoil/kiosk/internal/db"
	"github.com/spf13/cobra"
)

func newDBCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "db",
		Short: "Database management commands",
	}

	cmd.AddCommand(newDBInitCmd())
	cmd.AddCommand(newDBSeedCmd())
	return cmd
}

func newDBInitCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize the kiosk database",
		Long:  "Migrates all tables and seeds fuel types, oil tiers, and the store profile.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDBInit(cmd, configPath)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "kiosk.yaml", "path to kiosk config file")
	return cmd
}

func runDBInit(cmd *cobra.Command, configPath string) error {
	out := cmd.OutOrStdout()

	cfg, gormDB, err := connectFromConfig(configPath)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Connected to %s store\n", cfg.DB.Driver)

	if err := db.AutoMigrate(gormDB); err != nil {
		return err
	}
	fmt.Fprintf(out, "Migrated %d tables\n", len(db.AllModels()))

	if err := db.SeedReferenceData(gormDB); err != nil {
		return err
	}
	fmt.Fprintln(out, "Seeded fuel types and oil tiers")

	if err := db.SeedStoreSettings(gormDB, cfg.Store); err != nil {
		return err
	}
	fmt.Fprintf(out, "Store profile: %s\n", cfg.Store.Name)

	return nil
}

func newDBSeedCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Re-seed reference data",
		Long:  "Upserts fuel types and oil tiers without touching the catalog or orders.",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, gormDB, err := connectFromConfig(configPath)
			if err != nil {
				return err
			}
			if err := db.SeedReferenceData(gormDB); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Seeded fuel types and oil tiers")
			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "kiosk.yaml", "path to kiosk config file")
	return cmd
}
