package main

import (
	"fmt"
	"image"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/banshee-data/bee.report/internal/annotate"
)

// parsePoints reads "x,y;x,y;x,y".
func parsePoints(s string) ([]image.Point, error) {
	var pts []image.Point
	for _, pair := range strings.Split(s, ";") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		xs, ys, ok := strings.Cut(pair, ",")
		if !ok {
			return nil, fmt.Errorf("invalid point %q: want x,y", pair)
		}
		x, err := strconv.Atoi(strings.TrimSpace(xs))
		if err != nil {
			return nil, fmt.Errorf("invalid point %q: %w", pair, err)
		}
		y, err := strconv.Atoi(strings.TrimSpace(ys))
		if err != nil {
			return nil, fmt.Errorf("invalid point %q: %w", pair, err)
		}
		pts = append(pts, image.Pt(x, y))
	}
	if len(pts) != 3 {
		return nil, fmt.Errorf("need exactly 3 points, got %d", len(pts))
	}
	return pts, nil
}

func newAnnotateCmd() *cobra.Command {
	var imagePath, points, out, annotated string
	var size int
	cmd := &cobra.Command{
		Use:   "annotate",
		Short: "Fit a circle through three points on a still and save a crop around it",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			pts, err := parsePoints(points)
			if err != nil {
				return err
			}
			img, err := annotate.LoadImage(imagePath)
			if err != nil {
				return err
			}

			s := annotate.NewState(img)
			for _, p := range pts {
				if s, err = s.Click(p); err != nil {
					return err
				}
			}
			crop, err := s.Crop(size)
			if err != nil {
				return err
			}
			if err := annotate.SaveJPEG(out, crop); err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "Circle center (%.1f, %.1f) radius %.1f\n", s.Circle.X, s.Circle.Y, s.Circle.Radius)
			fmt.Fprintf(w, "Cropped image saved at %s\n", out)

			if annotated != "" {
				if err := annotate.SaveJPEG(annotated, s.Canvas); err != nil {
					return err
				}
				fmt.Fprintf(w, "Annotated image saved at %s\n", annotated)
			}
			return nil
		},
	}
	fl := cmd.Flags()
	fl.StringVar(&imagePath, "image", "first_frame.jpg", "Input still (JPEG or PNG)")
	fl.StringVar(&points, "points", "", `Three points as "x,y;x,y;x,y"`)
	fl.StringVar(&out, "out", "circle_crop.jpg", "Cropped output image")
	fl.StringVar(&annotated, "annotated", "", "Also save the full annotated image here")
	fl.IntVar(&size, "size", annotate.DefaultCropSize, "Crop side in pixels")
	_ = cmd.MarkFlagRequired("points")
	return cmd
}
