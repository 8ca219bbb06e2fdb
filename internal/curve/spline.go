package curve

import (
	"errors"
	"fmt"
	"sort"
)

var (
	// ErrInsufficientPoints is returned when too few points remain to
	// build a curve of the requested kind.
	ErrInsufficientPoints = errors.New("insufficient control points")

	// ErrInvalidPoint is returned for duplicate-x, out-of-range or
	// pinned-point violations. The mutation that caused it is rejected
	// and the prior state retained.
	ErrInvalidPoint = errors.New("invalid control point")

	// ErrInvalidCurveType is returned for an unknown mapping type. This
	// indicates a corrupt profile and is fatal at construction.
	ErrInvalidCurveType = errors.New("invalid curve type")
)

// Func evaluates a response curve at a single input value. Implementations
// are pure: identical inputs always yield identical outputs.
type Func func(x float64) float64

// CubicSpline builds a natural cubic spline passing exactly through each of
// the given points. Points must be sorted strictly increasing by x and there
// must be at least two of them. Evaluation outside [minX, maxX] clamps to
// the nearest endpoint's y.
func CubicSpline(points []Point) (Func, error) {
	n := len(points)
	if n < 2 {
		return nil, fmt.Errorf("cubic spline needs 2 points, have %d: %w", n, ErrInsufficientPoints)
	}
	for i := 1; i < n; i++ {
		if points[i].X-points[i-1].X < Epsilon {
			return nil, fmt.Errorf("x values not strictly increasing at index %d: %w", i, ErrInvalidPoint)
		}
	}

	xs := make([]float64, n)
	ys := make([]float64, n)
	for i, p := range points {
		xs[i], ys[i] = p.X, p.Y
	}

	// Second derivatives at the knots, natural boundary conditions.
	// Solved with the Thomas algorithm.
	m := make([]float64, n)
	if n > 2 {
		sub := make([]float64, n)
		diag := make([]float64, n)
		sup := make([]float64, n)
		rhs := make([]float64, n)
		for i := 1; i < n-1; i++ {
			h0 := xs[i] - xs[i-1]
			h1 := xs[i+1] - xs[i]
			sub[i] = h0
			diag[i] = 2 * (h0 + h1)
			sup[i] = h1
			rhs[i] = 6 * ((ys[i+1]-ys[i])/h1 - (ys[i]-ys[i-1])/h0)
		}
		for i := 2; i < n-1; i++ {
			f := sub[i] / diag[i-1]
			diag[i] -= f * sup[i-1]
			rhs[i] -= f * rhs[i-1]
		}
		for i := n - 2; i >= 1; i-- {
			m[i] = (rhs[i] - sup[i]*m[i+1]) / diag[i]
		}
	}

	return func(x float64) float64 {
		if x <= xs[0] {
			return ys[0]
		}
		if x >= xs[n-1] {
			return ys[n-1]
		}
		i := sort.SearchFloat64s(xs, x)
		if i > 0 {
			i--
		}
		h := xs[i+1] - xs[i]
		a := xs[i+1] - x
		b := x - xs[i]
		return m[i]*a*a*a/(6*h) + m[i+1]*b*b*b/(6*h) +
			(ys[i]/h-m[i]*h/6)*a + (ys[i+1]/h-m[i+1]*h/6)*b
	}, nil
}

// bezierSegment is one cubic Bézier arc of a concatenated spline.
type bezierSegment struct {
	p0, p1, p2, p3 Point
}

func (s bezierSegment) evalX(t float64) float64 {
	mt := 1 - t
	return mt*mt*mt*s.p0.X + 3*mt*mt*t*s.p1.X + 3*mt*t*t*s.p2.X + t*t*t*s.p3.X
}

func (s bezierSegment) evalY(t float64) float64 {
	mt := 1 - t
	return mt*mt*mt*s.p0.Y + 3*mt*mt*t*s.p1.Y + 3*mt*t*t*s.p2.Y + t*t*t*s.p3.Y
}

// solveT inverts the x parametrization of the segment by bisection.
// The caller guarantees p0.X <= x <= p3.X, so the bracket [0, 1] always
// contains a sign change of evalX(t) - x.
func (s bezierSegment) solveT(x float64) float64 {
	lo, hi := 0.0, 1.0
	for range 64 {
		mid := 0.5 * (lo + hi)
		if s.evalX(mid) < x {
			lo = mid
		} else {
			hi = mid
		}
		if hi-lo < 1e-12 {
			break
		}
	}
	return 0.5 * (lo + hi)
}

// BezierSpline builds a concatenated cubic Bézier spline from a flattened
// point sequence p0, h0, h1, p1, h2, h3, p2, ... where the first and last
// control points carry a single handle and interior points carry two. At
// least four entries (one full segment pair) are required. Segments must be
// ordered left to right without overlapping in x.
func BezierSpline(flat []Point) (Func, error) {
	n := len(flat)
	if n < 4 {
		return nil, fmt.Errorf("bezier spline needs 4 flattened points, have %d: %w", n, ErrInsufficientPoints)
	}
	if (n-4)%3 != 0 {
		return nil, fmt.Errorf("flattened sequence of length %d is not point/handle aligned: %w", n, ErrInvalidPoint)
	}

	segs := make([]bezierSegment, 0, (n-1)/3)
	for i := 0; i+3 < n; i += 3 {
		s := bezierSegment{p0: flat[i], p1: flat[i+1], p2: flat[i+2], p3: flat[i+3]}
		if s.p3.X-s.p0.X < Epsilon {
			return nil, fmt.Errorf("segment endpoints not increasing in x: %w", ErrInvalidPoint)
		}
		segs = append(segs, s)
	}

	first := segs[0].p0
	last := segs[len(segs)-1].p3

	return func(x float64) float64 {
		if x <= first.X {
			return first.Y
		}
		if x >= last.X {
			return last.Y
		}
		i := sort.Search(len(segs), func(i int) bool { return segs[i].p3.X >= x })
		if i == len(segs) {
			i--
		}
		s := segs[i]
		return s.evalY(s.solveT(x))
	}, nil
}
