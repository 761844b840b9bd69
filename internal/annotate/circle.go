package annotate

import (
	"errors"
	"image"
	"math"
)

// Circle is a circle in image pixel coordinates.
type Circle struct {
	X, Y   float64
	Radius float64
}

// Center is the circle center truncated to whole pixels.
func (c Circle) Center() image.Point {
	return image.Pt(int(c.X), int(c.Y))
}

// Contains reports whether p lies inside or on c, allowing for rounding.
func (c Circle) Contains(p image.Point) bool {
	return math.Hypot(float64(p.X)-c.X, float64(p.Y)-c.Y) <= c.Radius*(1+1e-9)+1e-9
}

var errPointCount = errors.New("minimum enclosing circle needs 1 to 3 points")

// MinEnclosingCircle returns the smallest circle containing every point.
func MinEnclosingCircle(points []image.Point) (Circle, error) {
	switch len(points) {
	case 1:
		return Circle{X: float64(points[0].X), Y: float64(points[0].Y)}, nil
	case 2:
		return diameterCircle(points[0], points[1]), nil
	case 3:
	default:
		return Circle{}, errPointCount
	}

	// A circle on two of the points wins when it also covers the third;
	// otherwise all three lie on the boundary.
	best, found := Circle{}, false
	pairs := [3][3]int{{0, 1, 2}, {0, 2, 1}, {1, 2, 0}}
	for _, pr := range pairs {
		c := diameterCircle(points[pr[0]], points[pr[1]])
		if c.Contains(points[pr[2]]) && (!found || c.Radius < best.Radius) {
			best, found = c, true
		}
	}
	if found {
		return best, nil
	}
	return circumcircle(points[0], points[1], points[2]), nil
}

func diameterCircle(a, b image.Point) Circle {
	return Circle{
		X:      float64(a.X+b.X) / 2,
		Y:      float64(a.Y+b.Y) / 2,
		Radius: math.Hypot(float64(a.X-b.X), float64(a.Y-b.Y)) / 2,
	}
}

// circumcircle assumes a, b and c are not collinear; collinear points are
// always covered by one of the diameter circles.
func circumcircle(a, b, c image.Point) Circle {
	ax, ay := float64(a.X), float64(a.Y)
	bx, by := float64(b.X), float64(b.Y)
	cx, cy := float64(c.X), float64(c.Y)

	d := 2 * (ax*(by-cy) + bx*(cy-ay) + cx*(ay-by))
	a2, b2, c2 := ax*ax+ay*ay, bx*bx+by*by, cx*cx+cy*cy
	x := (a2*(by-cy) + b2*(cy-ay) + c2*(ay-by)) / d
	y := (a2*(cx-bx) + b2*(ax-cx) + c2*(bx-ax)) / d
	return Circle{X: x, Y: y, Radius: math.Hypot(ax-x, ay-y)}
}
