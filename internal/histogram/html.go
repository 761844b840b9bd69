package histogram

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
)

// HTMLRenderer renders an interactive go-echarts bar chart.
type HTMLRenderer struct {
	// AssetsHost overrides where the echarts script is loaded from.
	AssetsHost string
	Width      string
	Height     string
}

// Chart builds the bar chart for req.
func (r HTMLRenderer) Chart(req Request) (*charts.Bar, error) {
	req = req.withDefaults()
	if _, err := ParseColor(req.Color); err != nil {
		return nil, err
	}
	bins, err := Bins(req.Values, req.Bins)
	if err != nil {
		return nil, err
	}

	init := opts.Initialization{
		PageTitle: req.Title(),
		Width:     r.Width,
		Height:    r.Height,
	}
	if init.Width == "" {
		init.Width = "1200px"
	}
	if init.Height == "" {
		init.Height = "700px"
	}
	if r.AssetsHost != "" {
		init.AssetsHost = r.AssetsHost
	}
	dotted := &opts.SplitLine{
		Show:      opts.Bool(true),
		LineStyle: &opts.LineStyle{Type: "dotted", Opacity: opts.Float(0.7)},
	}

	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithInitializationOpts(init),
		charts.WithTitleOpts(opts.Title{Title: req.Title(), Subtitle: fmt.Sprintf("%d entities", countValues(bins))}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithXAxisOpts(opts.XAxis{
			Name:         req.XLabel(),
			NameLocation: "middle",
			NameGap:      35,
			SplitLine:    dotted,
		}),
		charts.WithYAxisOpts(opts.YAxis{
			Name:         req.YLabel(),
			NameLocation: "middle",
			NameGap:      40,
			SplitLine:    dotted,
		}),
	)

	labels := make([]string, len(bins))
	data := make([]opts.BarData, len(bins))
	for i, b := range bins {
		labels[i] = fmt.Sprintf("%.2f", (b.Min+b.Max)/2)
		data[i] = opts.BarData{
			Name:  fmt.Sprintf("%.2f to %.2f", b.Min, b.Max),
			Value: b.Count,
		}
	}
	bar.SetXAxis(labels).AddSeries(req.YLabel(), data,
		charts.WithBarChartOpts(opts.BarChart{BarCategoryGap: "0%"}),
		charts.WithItemStyleOpts(opts.ItemStyle{
			Color:       req.Color,
			BorderColor: "#000000",
			BorderWidth: 1,
			Opacity:     opts.Float(float32(DefaultAlpha)),
		}),
	)
	return bar, nil
}

func countValues(bins []Bin) int {
	n := 0
	for _, b := range bins {
		n += b.Count
	}
	return n
}

// Write renders the chart page to w.
func (r HTMLRenderer) Write(w io.Writer, req Request) error {
	bar, err := r.Chart(req)
	if err != nil {
		return err
	}
	var buf bytes.Buffer
	if err := bar.Render(&buf); err != nil {
		return fmt.Errorf("render histogram: %w", err)
	}
	_, err = w.Write(buf.Bytes())
	return err
}

// Render implements Renderer.
func (r HTMLRenderer) Render(req Request, path string) error {
	var buf bytes.Buffer
	if err := r.Write(&buf, req); err != nil {
		return err
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write histogram %s: %w", path, err)
	}
	return nil
}
