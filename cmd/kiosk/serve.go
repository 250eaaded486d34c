package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/quickoil/kiosk/internal/dashboard"
	"github.com/quickoil/kiosk/internal/erp"
	"github.com/quickoil/kiosk/internal/messenger"
	"github.com/spf13/cobra"
)

func newServeCmd() *cobra.Command {
	var (
		configPath string
		port       int
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the kiosk API server",
		Long:  "Serves the kiosk and staff JSON API and, when configured, schedules the daily staff digest.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd, configPath, port)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "kiosk.yaml", "path to kiosk config file")
	cmd.Flags().IntVarP(&port, "port", "p", 0, "port to listen on (overrides config)")
	return cmd
}

func runServe(cmd *cobra.Command, configPath string, port int) error {
	out := cmd.OutOrStdout()

	cfg, gormDB, err := connectFromConfig(configPath)
	if err != nil {
		return err
	}
	if port <= 0 {
		port = cfg.Server.Port
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		fmt.Fprintf(out, "\nReceived %s, shutting down...\n", sig)
		cancel()
	}()

	opts := dashboard.StartOpts{
		DB:   gormDB,
		Port: port,
		Out:  out,
	}

	var sender messenger.Sender
	if cfg.Ppurio.Account != "" && cfg.Ppurio.APIKey != "" {
		sender = messenger.NewPpurio(cfg.Ppurio)
		opts.Sender = sender
	}
	if cfg.Ecount.ComCode != "" && cfg.Ecount.APIKey != "" {
		opts.ERP = erp.NewClient(cfg.Ecount)
	}

	if sender != nil && cfg.Ppurio.DigestCron != "" {
		digest, err := messenger.NewDigest(gormDB, sender, cfg.Store.Name, cfg.Ppurio.StaffPhone, cfg.Ppurio.DigestCron)
		if err != nil {
			return err
		}
		go digest.Run(ctx)
		fmt.Fprintf(out, "Daily digest scheduled (%s) to %s\n", cfg.Ppurio.DigestCron, cfg.Ppurio.StaffPhone)
	}

	return dashboard.Start(ctx, opts)
}
