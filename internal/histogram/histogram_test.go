package histogram

import (
	"bytes"
	"image/color"
	"image/png"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/bee.report/internal/monitoring"
	"github.com/banshee-data/bee.report/internal/summary"
)

func TestMain(m *testing.M) {
	monitoring.SetLogger(nil)
	os.Exit(m.Run())
}

func TestRequestLabels(t *testing.T) {
	req := Request{Method: summary.Mean}
	assert.Equal(t, "Distribution of Mean Bee Speeds", req.Title())
	assert.Equal(t, "Speed (cm/s)", req.XLabel())
	assert.Equal(t, "Number of Bees", req.YLabel())

	req = Request{Method: summary.Median, Entity: "Wasp", Units: "mm"}
	assert.Equal(t, "Distribution of Median Wasp Speeds", req.Title())
	assert.Equal(t, "Speed (mm/s)", req.XLabel())
	assert.Equal(t, "Number of Wasps", req.YLabel())
}

func TestBins(t *testing.T) {
	bins, err := Bins([]float64{0, 1, 2, 3, 4, math.Inf(1), math.NaN()}, 4)
	require.NoError(t, err)
	require.Len(t, bins, 4)

	assert.Equal(t, Bin{Min: 0, Max: 1, Count: 1}, bins[0])
	assert.Equal(t, Bin{Min: 3, Max: 4, Count: 2}, bins[3], "max value lands in the last bin")
	total := 0
	for _, b := range bins {
		total += b.Count
	}
	assert.Equal(t, 5, total)
}

func TestBins_Degenerate(t *testing.T) {
	bins, err := Bins(nil, 10)
	require.NoError(t, err)
	assert.Nil(t, bins)

	bins, err = Bins([]float64{2, 2, 2}, 10)
	require.NoError(t, err)
	require.Len(t, bins, 1)
	assert.Equal(t, 3, bins[0].Count)

	_, err = Bins([]float64{1, 2}, 0)
	assert.Error(t, err)
}

func TestParseColor(t *testing.T) {
	tests := []struct {
		in      string
		want    color.RGBA
		wantErr bool
	}{
		{in: "#3366cc", want: color.RGBA{R: 0x33, G: 0x66, B: 0xcc, A: 0xff}},
		{in: "#36C", want: color.RGBA{R: 0x33, G: 0x66, B: 0xcc, A: 0xff}},
		{in: "red", want: color.RGBA{R: 0xff, A: 0xff}},
		{in: " Black ", want: color.RGBA{A: 0xff}},
		{in: "#12345", wantErr: true},
		{in: "#gggggg", wantErr: true},
		{in: "blurple", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseColor(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestForPath(t *testing.T) {
	for _, p := range []string{"a.png", "a.SVG", "a.pdf", "a.jpg"} {
		r, err := ForPath(p)
		require.NoError(t, err)
		assert.IsType(t, PlotRenderer{}, r)
	}
	r, err := ForPath("out/a.html")
	require.NoError(t, err)
	assert.IsType(t, HTMLRenderer{}, r)

	_, err = ForPath("a.txt")
	assert.Error(t, err)
}

func values() []float64 {
	return []float64{0.5, 1.2, 1.9, 2.5, 2.6, 3.1, 4.8, 5.0, 7.7, 9.9}
}

func TestPlotRenderer_PNG(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hist.png")
	err := Render(Request{Values: values(), Method: summary.Mean, Bins: 5}, path)
	require.NoError(t, err)

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	img, err := png.Decode(f)
	require.NoError(t, err)
	// 12x7 inches at the default 96 dpi
	assert.Equal(t, 1152, img.Bounds().Dx())
	assert.Equal(t, 672, img.Bounds().Dy())
}

func TestPlotRenderer_EmptyAndBadColor(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, Render(Request{Method: summary.Median}, filepath.Join(dir, "empty.svg")))

	err := Render(Request{Values: values(), Method: summary.Mean, Color: "nope"}, filepath.Join(dir, "bad.png"))
	assert.Error(t, err)
}

func TestHTMLRenderer(t *testing.T) {
	var buf bytes.Buffer
	err := HTMLRenderer{AssetsHost: "/static/"}.Write(&buf, Request{Values: values(), Method: summary.Mean, Color: "red", Bins: 5})
	require.NoError(t, err)

	html := buf.String()
	assert.Contains(t, html, "Distribution of Mean Bee Speeds")
	assert.Contains(t, html, "Number of Bees")
	assert.Contains(t, html, `"red"`)
	assert.Contains(t, html, "/static/echarts.min.js")
	assert.True(t, strings.Contains(html, "dotted"))
}

func TestHTMLRenderer_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hist.html")
	require.NoError(t, Render(Request{Values: values(), Method: summary.Median}, path))
	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(b), "Distribution of Median Bee Speeds")
}

func TestDisplay(t *testing.T) {
	orig := openBrowser
	defer func() { openBrowser = orig }()

	var opened string
	openBrowser = func(target string) error {
		opened = target
		return nil
	}
	path, err := Display(Request{Values: values(), Method: summary.Mean})
	require.NoError(t, err)
	defer os.Remove(path)

	assert.Equal(t, path, opened)
	assert.Equal(t, ".html", filepath.Ext(path))
	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(b), "echarts")
}
