package curve

import (
	"fmt"
	"math"
	"sort"
)

// Kind selects the interpolation used by a control point model.
type Kind int

const (
	KindCubic Kind = iota
	KindBezier
)

func (k Kind) String() string {
	switch k {
	case KindCubic:
		return "cubic-spline"
	case KindBezier:
		return "cubic-bezier-spline"
	default:
		return "unknown"
	}
}

// ParseKind parses the serialized mapping type name.
func ParseKind(s string) (Kind, error) {
	switch s {
	case "cubic-spline":
		return KindCubic, nil
	case "cubic-bezier-spline":
		return KindBezier, nil
	default:
		return 0, fmt.Errorf("mapping type %q: %w", s, ErrInvalidCurveType)
	}
}

// SymmetryMode controls whether edits are mirrored through the origin.
type SymmetryMode int

const (
	NoSymmetry SymmetryMode = iota
	DiagonalSymmetry
)

func (m SymmetryMode) String() string {
	if m == DiagonalSymmetry {
		return "diagonal"
	}
	return "none"
}

// ParseSymmetryMode parses the serialized symmetry mode name. Unknown
// values fall back to NoSymmetry.
func ParseSymmetryMode(s string) SymmetryMode {
	if s == "diagonal" {
		return DiagonalSymmetry
	}
	return NoSymmetry
}

// PointID identifies a control point for the lifetime of its model.
// Identifiers are never reused.
type PointID int

// ControlPoint is one editable anchor of a response curve, owned
// exclusively by its Model. Cubic points carry no handles, Bézier interior
// points carry two and the two pinned endpoints carry one.
type ControlPoint struct {
	id      PointID
	center  Point
	handles []Point
	modSeq  uint64
}

// ID returns the point's stable identifier.
func (c *ControlPoint) ID() PointID { return c.id }

// Center returns the anchor position.
func (c *ControlPoint) Center() Point { return c.center }

// Handles returns a copy of the point's handle positions.
func (c *ControlPoint) Handles() []Point {
	out := make([]Point, len(c.handles))
	copy(out, c.handles)
	return out
}

// Change describes the outcome of one model mutation. The GUI layer
// subscribes to these instead of the model knowing about any widget.
type Change struct {
	Added    []PointID
	Modified []PointID
	Removed  []PointID
}

// Model owns the editable control points of one axis response curve and
// keeps them valid: at least two points always exist, cubic points have
// distinct x coordinates, and Bézier extremes stay pinned at x = ±1.
type Model struct {
	kind           Kind
	points         []*ControlPoint
	nextID         PointID
	editSeq        uint64
	symmetry       SymmetryMode
	handleSymmetry bool
	notify         func(Change)
}

// NewCubicModel returns a cubic spline model with the identity preset
// points (-1,-1) and (1,1).
func NewCubicModel() *Model {
	m := &Model{kind: KindCubic}
	m.addRaw(Pt(-1, -1), nil)
	m.addRaw(Pt(1, 1), nil)
	return m
}

// NewBezierModel returns a Bézier spline model with the identity preset:
// pinned endpoints at (-1,-1) and (1,1), each with one handle.
func NewBezierModel() *Model {
	m := &Model{kind: KindBezier}
	m.addRaw(Pt(-1, -1), []Point{Pt(-0.95, -0.95)})
	m.addRaw(Pt(1, 1), []Point{Pt(0.95, 0.95)})
	return m
}

// NewModel returns the preset model for the given kind.
func NewModel(kind Kind) (*Model, error) {
	switch kind {
	case KindCubic:
		return NewCubicModel(), nil
	case KindBezier:
		return NewBezierModel(), nil
	default:
		return nil, fmt.Errorf("kind %d: %w", kind, ErrInvalidCurveType)
	}
}

// Kind returns the model's interpolation kind.
func (m *Model) Kind() Kind { return m.kind }

// Len returns the number of control points.
func (m *Model) Len() int { return len(m.points) }

// SymmetryMode returns the active symmetry mode.
func (m *Model) SymmetryMode() SymmetryMode { return m.symmetry }

// Points returns the control points in creation order.
func (m *Model) Points() []*ControlPoint {
	out := make([]*ControlPoint, len(m.points))
	copy(out, m.points)
	return out
}

// Point returns the control point with the given id.
func (m *Model) Point(id PointID) (*ControlPoint, bool) {
	for _, p := range m.points {
		if p.id == id {
			return p, true
		}
	}
	return nil, false
}

// OnChange registers the observer invoked after every successful mutation.
func (m *Model) OnChange(fn func(Change)) {
	m.notify = fn
}

// SetHandleSymmetry toggles C1 handle mirroring for Bézier points with two
// handles: moving one handle reflects the opposite one through the center.
func (m *Model) SetHandleSymmetry(enabled bool) {
	m.handleSymmetry = enabled
}

// SetSymmetryMode switches the symmetry mode. Entering diagonal symmetry
// immediately reconciles all existing points.
func (m *Model) SetSymmetryMode(mode SymmetryMode) {
	m.symmetry = mode
	if mode == DiagonalSymmetry {
		modified := m.enforceSymmetry()
		if len(modified) > 0 {
			m.emit(Change{Modified: modified})
		}
	}
}

func (m *Model) emit(c Change) {
	if m.notify != nil {
		m.notify(c)
	}
}

func (m *Model) nextSeq() uint64 {
	m.editSeq++
	return m.editSeq
}

// addRaw appends a point without validation or symmetry handling.
func (m *Model) addRaw(center Point, handles []Point) *ControlPoint {
	m.nextID++
	p := &ControlPoint{
		id:      m.nextID,
		center:  center,
		handles: handles,
		modSeq:  m.nextSeq(),
	}
	m.points = append(m.points, p)
	return p
}

// pinned reports whether the point is a Bézier extreme that may only move
// along y.
func (m *Model) pinned(p *ControlPoint) bool {
	return m.kind == KindBezier && math.Abs(math.Abs(p.center.X)-1) < Epsilon
}

func (m *Model) duplicateX(x float64, exclude PointID) bool {
	for _, p := range m.points {
		if p.id != exclude && math.Abs(p.center.X-x) < Epsilon {
			return true
		}
	}
	return false
}

// AddControlPoint inserts a new point. Cubic points must not duplicate an
// existing x; Bézier points must lie strictly inside (-1, 1) since the
// extremes are pinned. With diagonal symmetry active the mirrored point is
// inserted as well.
func (m *Model) AddControlPoint(center Point, handles []Point) (PointID, error) {
	switch m.kind {
	case KindCubic:
		if len(handles) != 0 {
			return 0, fmt.Errorf("cubic points carry no handles: %w", ErrInvalidPoint)
		}
		if math.Abs(center.X) > 1 || math.Abs(center.Y) > 1 {
			return 0, fmt.Errorf("point %v outside [-1, 1]: %w", center, ErrInvalidPoint)
		}
		if m.duplicateX(center.X, 0) {
			return 0, fmt.Errorf("duplicate x %g: %w", center.X, ErrInvalidPoint)
		}
		if m.symmetry == DiagonalSymmetry && math.Abs(center.X) > Epsilon &&
			m.duplicateX(-center.X, 0) {
			return 0, fmt.Errorf("mirror of x %g collides: %w", center.X, ErrInvalidPoint)
		}
	case KindBezier:
		if math.Abs(center.X) >= 1-Epsilon {
			return 0, fmt.Errorf("point %v not strictly inside (-1, 1): %w", center, ErrInvalidPoint)
		}
		switch len(handles) {
		case 2:
		case 0:
			handles = []Point{
				Pt(center.X-0.05, center.Y),
				Pt(center.X+0.05, center.Y),
			}
		default:
			return 0, fmt.Errorf("interior points need two handles, got %d: %w", len(handles), ErrInvalidPoint)
		}
	}

	p := m.addRaw(center, handles)
	change := Change{Added: []PointID{p.id}}

	if m.symmetry == DiagonalSymmetry && math.Abs(center.X) > Epsilon {
		mirror := m.addRaw(center.Neg(), mirrorHandles(handles))
		// The original point stays authoritative for later enforcement.
		mirror.modSeq = p.modSeq - 1
		change.Added = append(change.Added, mirror.id)
	}
	change.Modified = m.enforceSymmetry()
	m.emit(change)
	return p.id, nil
}

// RemoveControlPoint deletes a point. It is rejected when the model would
// drop below two points or the point is a pinned Bézier endpoint. Under
// diagonal symmetry the paired point is removed as well.
func (m *Model) RemoveControlPoint(id PointID) error {
	p, ok := m.Point(id)
	if !ok {
		return fmt.Errorf("no point %d: %w", id, ErrInvalidPoint)
	}
	if m.pinned(p) {
		return fmt.Errorf("point %d is pinned: %w", id, ErrInvalidPoint)
	}

	removing := []*ControlPoint{p}
	if m.symmetry == DiagonalSymmetry {
		if pair := m.pairOf(p); pair != nil && !m.pinned(pair) {
			removing = append(removing, pair)
		}
	}
	if len(m.points)-len(removing) < 2 {
		return fmt.Errorf("model must keep 2 points: %w", ErrInsufficientPoints)
	}

	change := Change{}
	for _, victim := range removing {
		for i, q := range m.points {
			if q.id == victim.id {
				m.points = append(m.points[:i], m.points[i+1:]...)
				change.Removed = append(change.Removed, victim.id)
				break
			}
		}
	}
	change.Modified = m.enforceSymmetry()
	m.emit(change)
	return nil
}

// SetCenter moves a point's anchor, translating its handles by the same
// delta so their offsets are preserved. Pinned Bézier endpoints only move
// along y. Under diagonal symmetry the paired point is re-derived from
// this one, since it is now the most recently modified of the pair.
func (m *Model) SetCenter(id PointID, center Point) error {
	p, ok := m.Point(id)
	if !ok {
		return fmt.Errorf("no point %d: %w", id, ErrInvalidPoint)
	}

	switch m.kind {
	case KindCubic:
		if math.Abs(center.X) > 1 || math.Abs(center.Y) > 1 {
			return fmt.Errorf("point %v outside [-1, 1]: %w", center, ErrInvalidPoint)
		}
		if m.duplicateX(center.X, id) {
			return fmt.Errorf("duplicate x %g: %w", center.X, ErrInvalidPoint)
		}
	case KindBezier:
		if m.pinned(p) {
			center.X = math.Copysign(1, p.center.X)
		} else if math.Abs(center.X) >= 1-Epsilon {
			return fmt.Errorf("point %v not strictly inside (-1, 1): %w", center, ErrInvalidPoint)
		}
	}

	delta := center.Sub(p.center)
	for i := range p.handles {
		p.handles[i] = p.handles[i].Add(delta)
	}
	p.center = center
	p.modSeq = m.nextSeq()

	change := Change{Modified: []PointID{id}}
	change.Modified = append(change.Modified, m.enforceSymmetry()...)
	m.emit(change)
	return nil
}

// SetHandle moves one Bézier handle. With handle symmetry enabled on a
// two-handle point, the opposite handle is reflected through the center to
// keep the curve C1 continuous there.
func (m *Model) SetHandle(id PointID, index int, handle Point) error {
	if m.kind != KindBezier {
		return fmt.Errorf("cubic points carry no handles: %w", ErrInvalidPoint)
	}
	p, ok := m.Point(id)
	if !ok {
		return fmt.Errorf("no point %d: %w", id, ErrInvalidPoint)
	}
	if index < 0 || index >= len(p.handles) {
		return fmt.Errorf("handle index %d out of range: %w", index, ErrInvalidPoint)
	}

	p.handles[index] = handle
	if m.handleSymmetry && len(p.handles) == 2 {
		opposite := p.center.Add(p.center.Sub(handle))
		p.handles[1-index] = opposite
	}
	p.modSeq = m.nextSeq()

	change := Change{Modified: []PointID{id}}
	change.Modified = append(change.Modified, m.enforceSymmetry()...)
	m.emit(change)
	return nil
}

// Invert negates every point's and handle's y coordinate. This is a
// structural transform, not a symmetry operation.
func (m *Model) Invert() {
	change := Change{}
	for _, p := range m.points {
		p.center.Y = -p.center.Y
		for i := range p.handles {
			p.handles[i].Y = -p.handles[i].Y
		}
		change.Modified = append(change.Modified, p.id)
	}
	m.emit(change)
}

// sortedByX returns the points ordered by anchor x.
func (m *Model) sortedByX() []*ControlPoint {
	out := make([]*ControlPoint, len(m.points))
	copy(out, m.points)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].center.X < out[j].center.X
	})
	return out
}

// pairOf returns the diagonal symmetry partner of p, pairing first with
// last by sorted x. The middle point of an odd count has no partner.
func (m *Model) pairOf(p *ControlPoint) *ControlPoint {
	sorted := m.sortedByX()
	for i, q := range sorted {
		if q.id == p.id {
			j := len(sorted) - 1 - i
			if j == i {
				return nil
			}
			return sorted[j]
		}
	}
	return nil
}

func mirrorHandles(handles []Point) []Point {
	out := make([]Point, len(handles))
	for i, h := range handles {
		out[len(handles)-1-i] = h.Neg()
	}
	return out
}

// enforceSymmetry reconciles all symmetry pairs. Targets are computed in a
// first pass and applied in a second so mutation never interleaves with
// the pairing order. Within a pair the later-modified point dictates the
// other's mirrored position; the middle point of an odd count is forced to
// the origin. Returns the ids of points that actually moved.
func (m *Model) enforceSymmetry() []PointID {
	if m.symmetry != DiagonalSymmetry {
		return nil
	}

	type target struct {
		point   *ControlPoint
		center  Point
		handles []Point
	}
	sorted := m.sortedByX()
	n := len(sorted)
	var plan []target

	for i := 0; i < n/2; i++ {
		a, b := sorted[i], sorted[n-1-i]
		auth, mirror := a, b
		if b.modSeq > a.modSeq {
			auth, mirror = b, a
		}
		plan = append(plan, target{
			point:   mirror,
			center:  auth.center.Neg(),
			handles: mirrorHandles(auth.handles),
		})
	}
	if n%2 == 1 {
		mid := sorted[n/2]
		delta := Pt(0, 0).Sub(mid.center)
		handles := make([]Point, len(mid.handles))
		for i, h := range mid.handles {
			handles[i] = h.Add(delta)
		}
		plan = append(plan, target{point: mid, center: Pt(0, 0), handles: handles})
	}

	var modified []PointID
	for _, t := range plan {
		if t.point.center.NearlyEqual(t.center) && handlesNearlyEqual(t.point.handles, t.handles) {
			continue
		}
		t.point.center = t.center
		t.point.handles = t.handles
		modified = append(modified, t.point.id)
	}
	return modified
}

func handlesNearlyEqual(a, b []Point) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !a[i].NearlyEqual(b[i]) {
			return false
		}
	}
	return true
}

// Func builds the evaluation function from the current points. Points are
// x-sorted first; Bézier models are flattened with the endpoint handles
// collapsed to a single coordinate each.
func (m *Model) Func() (Func, error) {
	sorted := m.sortedByX()
	switch m.kind {
	case KindCubic:
		pts := make([]Point, len(sorted))
		for i, p := range sorted {
			pts[i] = p.center
		}
		return CubicSpline(pts)
	case KindBezier:
		return BezierSpline(m.Flatten())
	default:
		return nil, fmt.Errorf("kind %d: %w", m.kind, ErrInvalidCurveType)
	}
}

// Flatten returns the x-sorted flattened point/handle sequence used for
// Bézier evaluation and serialization: anchor, outgoing handle, incoming
// handle, anchor, and so on, with one handle at each extreme.
func (m *Model) Flatten() []Point {
	sorted := m.sortedByX()
	var flat []Point
	for i, p := range sorted {
		switch {
		case i == 0:
			flat = append(flat, p.center)
			if len(p.handles) > 0 {
				flat = append(flat, p.handles[len(p.handles)-1])
			}
		case i == len(sorted)-1:
			if len(p.handles) > 0 {
				flat = append(flat, p.handles[0])
			}
			flat = append(flat, p.center)
		default:
			in, out := p.center, p.center
			if len(p.handles) == 2 {
				in, out = p.handles[0], p.handles[1]
			}
			flat = append(flat, in, p.center, out)
		}
	}
	return flat
}
