package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/mattepiu/cortex/internal/engine"
)

var serveMaintenanceSecs int

// serveCmd starts the background maintenance loop (decay sweep +
// adaptive consolidation) and blocks until signaled. Grounded on the
// teacher's cmd_service.go startCmd, trimmed to this module's scope: no
// REST API and no MCP stdio loop (network transport is a spec Non-goal —
// the engine is consumed as a Go library), just the long-running engine
// and its periodic passes.
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the engine's background maintenance loop",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe(cmd)
	},
}

func init() {
	serveCmd.Flags().IntVar(&serveMaintenanceSecs, "maintenance_interval_secs", 3600, "interval between maintenance passes")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	e, err := engine.New(cfg)
	if err != nil {
		return fmt.Errorf("construct engine: %w", err)
	}
	defer e.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		cancel()
	}()

	interval := time.Duration(serveMaintenanceSecs) * time.Second
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case now := <-ticker.C:
			if err := e.RunMaintenancePass(ctx, now, 0); err != nil {
				fmt.Fprintf(os.Stderr, "maintenance pass error: %v\n", err)
			}
		}
	}
}
