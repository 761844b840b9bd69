package histogram

import (
	"fmt"
	"image/color"
	"math"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/banshee-data/bee.report/internal/summary"
)

// PlotRenderer draws with gonum/plot. The format comes from the file
// extension.
type PlotRenderer struct {
	Width  vg.Length
	Height vg.Length
}

// Plot builds the histogram plot without saving it.
func (r PlotRenderer) Plot(req Request) (*plot.Plot, error) {
	req = req.withDefaults()
	fill, err := ParseColor(req.Color)
	if err != nil {
		return nil, err
	}

	p := plot.New()
	p.Title.Text = req.Title()
	p.Title.TextStyle.Font.Size = vg.Points(16)
	p.Title.Padding = vg.Points(10)
	p.X.Label.Text = req.XLabel()
	p.X.Label.TextStyle.Font.Size = vg.Points(14)
	p.Y.Label.Text = req.YLabel()
	p.Y.Label.TextStyle.Font.Size = vg.Points(14)

	grid := plotter.NewGrid()
	grid.Vertical.Dashes = []vg.Length{vg.Points(1), vg.Points(3)}
	grid.Horizontal.Dashes = []vg.Length{vg.Points(1), vg.Points(3)}
	grid.Vertical.Color = color.Gray{Y: 160}
	grid.Horizontal.Color = color.Gray{Y: 160}
	p.Add(grid)

	finite := summary.Finite(req.Values)
	if len(finite) == 0 {
		return p, nil
	}
	h, err := plotter.NewHist(plotter.Values(finite), req.Bins)
	if err != nil {
		return nil, fmt.Errorf("bin values: %w", err)
	}
	h.FillColor = color.NRGBA{R: fill.R, G: fill.G, B: fill.B, A: uint8(math.Round(DefaultAlpha * 255))}
	h.LineStyle.Color = color.Black
	h.LineStyle.Width = vg.Points(0.5)
	p.Add(h)
	return p, nil
}

// Render implements Renderer.
func (r PlotRenderer) Render(req Request, path string) error {
	p, err := r.Plot(req)
	if err != nil {
		return err
	}
	w, h := r.Width, r.Height
	if w == 0 {
		w = 12 * vg.Inch
	}
	if h == 0 {
		h = 7 * vg.Inch
	}
	if err := p.Save(w, h, path); err != nil {
		return fmt.Errorf("save histogram %s: %w", path, err)
	}
	return nil
}
