package curve

import (
	"fmt"
	"math"
)

// Epsilon is the tolerance used for approximate point and coordinate
// comparison throughout the package.
const Epsilon = 1e-9

// Point is a 2D point with both coordinates in [-1, 1].
type Point struct {
	X float64
	Y float64
}

// Pt returns the point (x, y).
func Pt(x, y float64) Point {
	return Point{X: x, Y: y}
}

func (pt Point) String() string {
	return fmt.Sprintf("(%g, %g)", pt.X, pt.Y)
}

// Add returns the point translated by o.
func (pt Point) Add(o Point) Point {
	return Point{X: pt.X + o.X, Y: pt.Y + o.Y}
}

// Sub returns the componentwise difference pt-o.
func (pt Point) Sub(o Point) Point {
	return Point{X: pt.X - o.X, Y: pt.Y - o.Y}
}

// Neg returns the point mirrored through the origin.
func (pt Point) Neg() Point {
	return Point{X: -pt.X, Y: -pt.Y}
}

// NearlyEqual reports whether the two points coincide within Epsilon.
func (pt Point) NearlyEqual(o Point) bool {
	return math.Abs(pt.X-o.X) < Epsilon && math.Abs(pt.Y-o.Y) < Epsilon
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
