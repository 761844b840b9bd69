// Package annotate marks the hive entrance on a video still. Three clicks
// place points, the smallest circle through them is fitted and drawn, and a
// square crop around its center can then be saved.
package annotate

import (
	"errors"
	"fmt"
	"image"
	"image/draw"
)

// DefaultCropSize is the side of the square saved around the circle center.
const DefaultCropSize = 200

var (
	// ErrIncomplete is returned when cropping before three points are placed.
	ErrIncomplete = errors.New("annotation needs three points")
	// ErrOutside is returned for clicks that miss the image.
	ErrOutside = errors.New("point outside image")
)

type Phase int

const (
	NoPoints Phase = iota
	OnePoint
	TwoPoints
	Done
)

func (p Phase) String() string {
	switch p {
	case NoPoints:
		return "no points"
	case OnePoint:
		return "one point"
	case TwoPoints:
		return "two points"
	case Done:
		return "done"
	}
	return fmt.Sprintf("Phase(%d)", int(p))
}

// State is an annotation in progress. Click returns a new State and never
// modifies the receiver's canvas.
type State struct {
	Points []image.Point
	Canvas *image.RGBA
	// Circle is set once the third point is placed.
	Circle *Circle
}

// NewState starts an annotation on a copy of img, re-based at the origin.
func NewState(img image.Image) State {
	b := img.Bounds()
	canvas := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(canvas, canvas.Bounds(), img, b.Min, draw.Src)
	return State{Canvas: canvas}
}

func (s State) Phase() Phase {
	if len(s.Points) >= 3 {
		return Done
	}
	return Phase(len(s.Points))
}

func (s State) Done() bool { return s.Phase() == Done }

// Click places a point. The third point also fits and draws the circle.
// Clicks after that are ignored.
func (s State) Click(p image.Point) (State, error) {
	if s.Done() {
		return s, nil
	}
	if !p.In(s.Canvas.Bounds()) {
		return s, fmt.Errorf("%w: %v not in %v", ErrOutside, p, s.Canvas.Bounds())
	}

	next := State{
		Points: append(append([]image.Point(nil), s.Points...), p),
		Canvas: cloneRGBA(s.Canvas),
	}
	o := newOverlay(next.Canvas.Bounds())
	o.disc(p, PointRadius, PointColor)

	if len(next.Points) == 3 {
		c, err := MinEnclosingCircle(next.Points)
		if err != nil {
			return s, err
		}
		next.Circle = &c
		o.ring(c.Center(), int(c.Radius), CircleWidth, CircleColor)
		o.disc(c.Center(), CenterRadius, CenterColor)
	}
	o.composite(next.Canvas)
	return next, nil
}

// Crop returns a size×size image whose top-left corner sits size/2 up and
// left of the circle center, clamped at zero. Parts beyond the image stay
// black.
func (s State) Crop(size int) (*image.RGBA, error) {
	if !s.Done() || s.Circle == nil {
		return nil, ErrIncomplete
	}
	if size <= 0 {
		return nil, fmt.Errorf("invalid crop size %d", size)
	}
	c := s.Circle.Center()
	x0 := max(c.X-size/2, 0)
	y0 := max(c.Y-size/2, 0)
	region := image.Rect(x0, y0, x0+size, y0+size).Intersect(s.Canvas.Bounds())

	out := image.NewRGBA(image.Rect(0, 0, size, size))
	draw.Draw(out, image.Rect(0, 0, region.Dx(), region.Dy()), s.Canvas, region.Min, draw.Src)
	return out, nil
}

func cloneRGBA(src *image.RGBA) *image.RGBA {
	dst := image.NewRGBA(src.Bounds())
	copy(dst.Pix, src.Pix)
	return dst
}
