package curve

import (
	"sync/atomic"
)

// evalState is one immutable evaluation snapshot. A nil curve means the
// model currently has no valid curve and raw values pass through.
type evalState struct {
	deadzone Func
	curve    Func
}

// AxisCurve is the combined per-input transform: deadzone followed by the
// response curve built from its control point model. Edits happen from a
// single actor while Value may be called from an input-polling context, so
// every successful mutation swaps in a freshly built snapshot instead of
// mutating one in place.
type AxisCurve struct {
	model    *Model
	deadzone Deadzone
	state    atomic.Pointer[evalState]
	observer func(Change)
}

// NewAxisCurve returns an axis transform with the preset model for the
// given kind and the identity deadzone.
func NewAxisCurve(kind Kind) (*AxisCurve, error) {
	model, err := NewModel(kind)
	if err != nil {
		return nil, err
	}
	return newAxisCurve(model, DefaultDeadzone()), nil
}

func newAxisCurve(model *Model, dz Deadzone) *AxisCurve {
	a := &AxisCurve{model: model, deadzone: dz}
	model.OnChange(a.onModelChange)
	a.Rebuild()
	return a
}

func (a *AxisCurve) onModelChange(c Change) {
	a.Rebuild()
	if a.observer != nil {
		a.observer(c)
	}
}

// OnChange registers an observer for control point changes. The snapshot
// rebuild has already happened when the observer runs.
func (a *AxisCurve) OnChange(fn func(Change)) {
	a.observer = fn
}

// Model returns the editable control point model. All mutations through it
// rebuild the evaluation snapshot before returning.
func (a *AxisCurve) Model() *Model { return a.model }

// Deadzone returns the current deadzone boundaries.
func (a *AxisCurve) Deadzone() Deadzone { return a.deadzone }

// SetDeadzone installs new deadzone boundaries, clamped into their
// required ordering low <= centerLow <= 0 <= centerHigh <= high.
func (a *AxisCurve) SetDeadzone(d Deadzone) {
	d.Low = clamp(d.Low, -1, 0)
	d.CenterLow = clamp(d.CenterLow, d.Low, 0)
	d.CenterHigh = clamp(d.CenterHigh, 0, 1)
	d.High = clamp(d.High, d.CenterHigh, 1)
	a.deadzone = d
	a.Rebuild()
}

// Rebuild derives a fresh evaluation snapshot from the current control
// points and deadzone and swaps it in atomically. A model without a valid
// curve yields a pass-through snapshot.
func (a *AxisCurve) Rebuild() {
	s := &evalState{deadzone: a.deadzone.Func()}
	if fn, err := a.model.Func(); err == nil {
		s.curve = fn
	}
	a.state.Store(s)
}

// Value transforms one raw axis sample: deadzone first, then the response
// curve, clamped to [-1, 1].
func (a *AxisCurve) Value(raw float64) float64 {
	s := a.state.Load()
	if s == nil {
		a.Rebuild()
		s = a.state.Load()
	}
	v := s.deadzone(raw)
	if s.curve != nil {
		v = s.curve(v)
	}
	return clamp(v, -1, 1)
}
