// Package histogram renders the distribution of per-entity summary speeds
// as a static image (gonum/plot) or an interactive page (go-echarts).
package histogram

import (
	"fmt"
	"image/color"
	"path/filepath"
	"strconv"
	"strings"

	"golang.org/x/image/colornames"
	"gonum.org/v1/plot/plotter"

	"github.com/banshee-data/bee.report/internal/summary"
	"github.com/banshee-data/bee.report/internal/units"
)

// Defaults follow the original hive plots.
const (
	DefaultBins   = 50
	DefaultColor  = "#3366cc"
	DefaultEntity = "Bee"
	DefaultAlpha  = 0.85
)

// Request is everything a renderer needs. Zero fields take the defaults.
type Request struct {
	Values []float64
	Method summary.Method
	// Entity is the singular noun used in titles, e.g. "Bee".
	Entity string
	// Units is the coordinate length unit, e.g. "cm".
	Units string
	Color string
	Bins  int
}

func (r Request) withDefaults() Request {
	if r.Entity == "" {
		r.Entity = DefaultEntity
	}
	if r.Units == "" {
		r.Units = units.CM
	}
	if r.Color == "" {
		r.Color = DefaultColor
	}
	if r.Bins <= 0 {
		r.Bins = DefaultBins
	}
	return r
}

// Title is e.g. "Distribution of Mean Bee Speeds".
func (r Request) Title() string {
	r = r.withDefaults()
	return fmt.Sprintf("Distribution of %s %s Speeds", r.Method.Title(), r.Entity)
}

// XLabel is e.g. "Speed (cm/s)".
func (r Request) XLabel() string {
	r = r.withDefaults()
	return fmt.Sprintf("Speed (%s)", units.SpeedLabel(r.Units))
}

// YLabel is e.g. "Number of Bees".
func (r Request) YLabel() string {
	r = r.withDefaults()
	return fmt.Sprintf("Number of %ss", r.Entity)
}

// Bin is one equal-width histogram bucket covering [Min, Max).
type Bin struct {
	Min   float64 `json:"min"`
	Max   float64 `json:"max"`
	Count int     `json:"count"`
}

// Bins sorts the finite values into n equal-width buckets spanning their
// range. It returns nil when there are no finite values.
func Bins(values []float64, n int) ([]Bin, error) {
	finite := summary.Finite(values)
	if len(finite) == 0 {
		return nil, nil
	}
	h, err := plotter.NewHist(plotter.Values(finite), n)
	if err != nil {
		return nil, err
	}
	out := make([]Bin, len(h.Bins))
	for i, b := range h.Bins {
		out[i] = Bin{Min: b.Min, Max: b.Max, Count: int(b.Weight)}
	}
	return out, nil
}

// ParseColor accepts "#rgb", "#rrggbb" or an SVG color name.
func ParseColor(s string) (color.RGBA, error) {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "#") {
		hex := s[1:]
		if len(hex) == 3 {
			hex = string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]})
		}
		if len(hex) != 6 {
			return color.RGBA{}, fmt.Errorf("invalid hex color %q", s)
		}
		v, err := strconv.ParseUint(hex, 16, 32)
		if err != nil {
			return color.RGBA{}, fmt.Errorf("invalid hex color %q", s)
		}
		return color.RGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 0xff}, nil
	}
	if c, ok := colornames.Map[strings.ToLower(s)]; ok {
		return c, nil
	}
	return color.RGBA{}, fmt.Errorf("unknown color %q", s)
}

// Renderer writes a histogram to a file.
type Renderer interface {
	Render(req Request, path string) error
}

// ForPath picks a renderer from the output extension.
func ForPath(path string) (Renderer, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".html", ".htm":
		return HTMLRenderer{}, nil
	case ".png", ".jpg", ".jpeg", ".svg", ".pdf", ".tif", ".tiff", ".eps":
		return PlotRenderer{}, nil
	default:
		return nil, fmt.Errorf("unsupported histogram output %q", path)
	}
}

// Render writes req to path with the renderer for its extension.
func Render(req Request, path string) error {
	r, err := ForPath(path)
	if err != nil {
		return err
	}
	return r.Render(req, path)
}
