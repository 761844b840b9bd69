// Command bee-report measures how fast tracked bees move and plots the
// distribution of their per-bee summary speeds.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/banshee-data/bee.report/internal/monitoring"
)

func newRootCmd() *cobra.Command {
	var logLevel, logFormat string

	root := &cobra.Command{
		Use:   "bee-report",
		Short: "Bee trajectory speed analysis",
		Long: `bee-report reads bee trajectories (entity, timestamp, x, y) from Parquet
or CSV, estimates per-step speeds, summarizes each bee with its mean or
median speed, keeps the bees at or below a threshold and plots the result.

Examples:
  bee-report count hive.parquet
  bee-report speeds hive.parquet --method median --threshold 2 --out hist.png
  bee-report speeds hive.parquet --db runs.db --no-plot
  bee-report serve --db runs.db --listen :8080
  bee-report frame beedio.mp4 --out first_frame.jpg
  bee-report annotate --image first_frame.jpg --points "310,220;402,231;356,290" --out circle_crop.jpg`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := monitoring.Init(logLevel, logFormat); err != nil {
				return fmt.Errorf("failed to initialize logger: %w", err)
			}
			return nil
		},
	}
	root.PersistentFlags().StringVar(&logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	root.PersistentFlags().StringVar(&logFormat, "log-format", "console", "Log encoding (console or json)")

	root.AddCommand(
		newSpeedsCmd(),
		newCountCmd(),
		newFrameCmd(),
		newAnnotateCmd(),
		newMigrateCmd(),
		newServeCmd(),
		newVersionCmd(),
	)
	return root
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		_ = monitoring.Logger().Sync()
		os.Exit(1)
	}
	_ = monitoring.Logger().Sync()
}
