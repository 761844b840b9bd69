package annotate

import (
	"image"
	"image/color"
	"image/draw"
	"math"

	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/vgimg"
)

// Marker styling, in pixels.
const (
	PointRadius  = 4
	CenterRadius = 5
	CircleWidth  = 2
)

var (
	PointColor  = color.RGBA{R: 255, A: 255}
	CircleColor = color.RGBA{G: 255, A: 255}
	CenterColor = color.RGBA{B: 255, A: 255}
)

// overlay is a transparent vgimg canvas the size of the target image. At 72
// DPI one vg point is one pixel.
type overlay struct {
	c *vgimg.Canvas
	h float64
}

func newOverlay(b image.Rectangle) *overlay {
	c := vgimg.NewWith(
		vgimg.UseWH(vg.Length(b.Dx()), vg.Length(b.Dy())),
		vgimg.UseDPI(72),
		vgimg.UseBackgroundColor(color.Transparent),
	)
	return &overlay{c: c, h: float64(b.Dy())}
}

// pt maps the center of pixel (x, y) into canvas space, whose Y axis
// points up.
func (o *overlay) pt(x, y int) vg.Point {
	return vg.Point{X: vg.Length(float64(x) + 0.5), Y: vg.Length(o.h - float64(y) - 0.5)}
}

func (o *overlay) circlePath(center image.Point, r int) vg.Path {
	c := o.pt(center.X, center.Y)
	var p vg.Path
	p.Move(vg.Point{X: c.X + vg.Length(r), Y: c.Y})
	p.Arc(c, vg.Length(r), 0, 2*math.Pi)
	p.Close()
	return p
}

func (o *overlay) disc(center image.Point, r int, col color.Color) {
	o.c.SetColor(col)
	o.c.Fill(o.circlePath(center, r))
}

func (o *overlay) ring(center image.Point, r, width int, col color.Color) {
	if r <= 0 {
		return
	}
	o.c.SetColor(col)
	o.c.SetLineWidth(vg.Length(width))
	o.c.Stroke(o.circlePath(center, r))
}

// composite blends the overlay onto dst.
func (o *overlay) composite(dst draw.Image) {
	draw.Draw(dst, dst.Bounds(), o.c.Image(), image.Point{}, draw.Over)
}
