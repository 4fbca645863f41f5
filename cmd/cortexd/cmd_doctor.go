package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mattepiu/cortex/internal/coretypes"
	"github.com/mattepiu/cortex/internal/engine"
)

// doctorCmd prints the engine's aggregated health report. Grounded on
// the teacher's cmd_doctor.go (load config, open the store, print a
// per-component OK/ERROR line), narrowed to what Engine.Health exposes.
var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check storage and subsystem health",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runDoctor(cmd)
	},
}

func init() {
	rootCmd.AddCommand(doctorCmd)
}

func runDoctor(cmd *cobra.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	fmt.Println("cortex system check")
	fmt.Println("====================")

	e, err := engine.New(cfg)
	if err != nil {
		fmt.Printf("engine construction... ERROR: %v\n", err)
		os.Exit(1)
	}
	defer e.Close()

	health := e.Health(context.Background())
	for _, c := range health.Components {
		status := "OK"
		switch c.Status {
		case coretypes.HealthDegraded:
			status = "DEGRADED"
		case coretypes.HealthDown:
			status = "DOWN"
		}
		fmt.Printf("%-12s %s", c.Component, status)
		if c.Detail != "" {
			fmt.Printf(" (%s)", c.Detail)
		}
		fmt.Println()
	}

	if health.Overall() == coretypes.HealthDown {
		os.Exit(1)
	}
	return nil
}
