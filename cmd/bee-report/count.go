package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/banshee-data/bee.report/internal/loader"
	"github.com/banshee-data/bee.report/internal/track"
)

func newCountCmd() *cobra.Command {
	var configPath string
	cmd := &cobra.Command{
		Use:   "count DATA",
		Short: "Count the unique bee IDs in a trajectory file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(configPath)
			if err != nil {
				return err
			}
			l, err := loader.ForPath(args[0], cfg.GetColumns())
			if err != nil {
				return err
			}
			samples, err := l.Load(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Number of unique bee IDs: %d\n", track.CountEntities(samples))
			return nil
		},
	}
	cmd.Flags().StringVar(&configPath, "config", "", "Analysis config JSON providing the column mapping")
	return cmd
}
