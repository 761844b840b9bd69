package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/banshee-data/bee.report/internal/frame"
	"github.com/banshee-data/bee.report/internal/monitoring"
)

func newFrameCmd() *cobra.Command {
	var out, ffmpeg string
	cmd := &cobra.Command{
		Use:   "frame VIDEO",
		Short: "Save the first frame of a hive recording",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e := frame.NewExtractor(ffmpeg, monitoring.Logger())
			if err := e.ExtractFirstFrame(cmd.Context(), args[0], out); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "First frame saved to: %s\n", out)
			return nil
		},
	}
	cmd.Flags().StringVar(&out, "out", "first_frame.jpg", "Output image path")
	cmd.Flags().StringVar(&ffmpeg, "ffmpeg", "ffmpeg", "Path to the ffmpeg binary")
	return cmd
}
