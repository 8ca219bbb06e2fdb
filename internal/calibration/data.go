// Package calibration normalizes raw device axis values into [-1, 1]
// using per-(device, input) calibration: range mapping, inversion and an
// independent deadzone.
package calibration

import (
	"math"
	"sync/atomic"

	"github.com/muchimi/axispipe/internal/curve"
)

const (
	// Raw device unit range as reported by the joystick API.
	rawMin = -32768
	rawMax = 32767

	// Calibration endpoints may never cross; setters keep at least this
	// much separation to avoid division by zero.
	minSeparation = 0.001
)

// NormalizeRaw converts a raw axis value (-32768..32767) to [-1, 1].
func NormalizeRaw(raw float64) float64 {
	v := raw / rawMax
	if v < -1 {
		v = -1
	}
	return v
}

// Data holds the hardware calibration of one (device, input) axis. A
// centered axis maps its two halves independently so an off-center stick
// still reaches the full output range; a slider maps min..max linearly.
//
// Setters run from the edit context; Value may run from a polling context,
// so each mutation swaps in a freshly built evaluation snapshot.
type Data struct {
	centered bool
	inverted bool

	// Raw device units.
	min    float64
	center float64
	max    float64

	// Normalized units.
	deadzone curve.Deadzone

	fn atomic.Pointer[curve.Func]
}

// New returns identity calibration for a centered axis.
func New() *Data {
	d := &Data{
		centered: true,
		min:      rawMin,
		center:   0,
		max:      rawMax,
		deadzone: curve.DefaultDeadzone(),
	}
	d.rebuild()
	return d
}

// Centered reports whether the axis has a meaningful neutral position.
func (d *Data) Centered() bool { return d.centered }

// Inverted reports whether the axis direction is reversed.
func (d *Data) Inverted() bool { return d.inverted }

// Range returns the raw calibration endpoints.
func (d *Data) Range() (min, center, max float64) {
	return d.min, d.center, d.max
}

// Deadzone returns the normalized deadzone boundaries.
func (d *Data) Deadzone() curve.Deadzone { return d.deadzone }

// HasData reports whether any field deviates from the identity defaults.
// Upstream uses this to show a "calibration present" indicator.
func (d *Data) HasData() bool {
	return !d.centered || d.inverted ||
		d.min != rawMin || d.center != 0 || d.max != rawMax ||
		!d.deadzone.IsDefault()
}

// SetCentered switches between centered and slider topology.
func (d *Data) SetCentered(centered bool) {
	d.centered = centered
	d.clampRange()
	d.rebuild()
}

// SetInverted sets the axis inversion flag.
func (d *Data) SetInverted(inverted bool) {
	d.inverted = inverted
	d.rebuild()
}

// SetRange installs new raw calibration endpoints. Crossing endpoints are
// clamped apart rather than rejected: calibration is driven interactively
// while the hardware moves and must never freeze.
func (d *Data) SetRange(min, center, max float64) {
	d.min, d.center, d.max = min, center, max
	d.clampRange()
	d.rebuild()
}

// SetMin updates the raw minimum, keeping min < center < max.
func (d *Data) SetMin(v float64) { d.SetRange(v, d.center, d.max) }

// SetCenter updates the raw center, keeping min < center < max.
func (d *Data) SetCenter(v float64) { d.SetRange(d.min, v, d.max) }

// SetMax updates the raw maximum, keeping min < center < max.
func (d *Data) SetMax(v float64) { d.SetRange(d.min, d.center, v) }

// SetDeadzone installs new normalized deadzone boundaries.
func (d *Data) SetDeadzone(dz curve.Deadzone) {
	dz.Low = clamp(dz.Low, -1, 0)
	dz.CenterLow = clamp(dz.CenterLow, dz.Low, 0)
	dz.CenterHigh = clamp(dz.CenterHigh, 0, 1)
	dz.High = clamp(dz.High, dz.CenterHigh, 1)
	d.deadzone = dz
	d.rebuild()
}

func (d *Data) clampRange() {
	if d.centered {
		if d.max < d.min+2*minSeparation {
			d.max = d.min + 2*minSeparation
		}
		d.center = clamp(d.center, d.min+minSeparation, d.max-minSeparation)
		return
	}
	if d.max < d.min+minSeparation {
		d.max = d.min + minSeparation
	}
}

// rebuild derives the calibration transform for the current settings and
// swaps it in atomically. The transform operates on normalized input.
func (d *Data) rebuild() {
	nMin := NormalizeRaw(d.min)
	nCenter := NormalizeRaw(d.center)
	nMax := NormalizeRaw(d.max)
	// Normalization clamps at the raw extremes, which can collapse a span
	// that was distinct in raw units.
	lowSpan := math.Max(nCenter-nMin, 1e-9)
	highSpan := math.Max(nMax-nCenter, 1e-9)
	fullSpan := math.Max(nMax-nMin, 1e-9)
	centered := d.centered
	dz := d.deadzone
	dzFn := dz.Func()

	fn := curve.Func(func(v float64) float64 {
		if centered {
			if v <= nCenter {
				v = (v-nMin)/lowSpan - 1
			} else {
				v = (v - nCenter) / highSpan
			}
		} else {
			v = 2*(v-nMin)/fullSpan - 1
		}
		v = clamp(v, -1, 1)
		if centered {
			return dzFn(v)
		}
		return sliderDeadzone(v, dz.Low, dz.High)
	})
	d.fn.Store(&fn)
}

// sliderDeadzone clamps beyond the outer boundaries and stretches the
// surviving range back over [-1, 1]. Sliders have no center band.
func sliderDeadzone(v, low, high float64) float64 {
	if v <= low {
		return -1
	}
	if v >= high {
		return 1
	}
	if high-low < minSeparation {
		return math.Copysign(1, v)
	}
	return 2*(v-low)/(high-low) - 1
}

// Value converts one raw sample to [-1, 1]. With normalize set the input
// is rescaled from raw device units first; otherwise it is treated as
// already normalized. Inversion applies in both cases.
func (d *Data) Value(raw float64, normalize bool) float64 {
	v := raw
	if normalize {
		v = NormalizeRaw(raw)
	}
	if d.inverted {
		v = -v
	}
	fn := d.fn.Load()
	if fn == nil {
		d.rebuild()
		fn = d.fn.Load()
	}
	return (*fn)(v)
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
