package curve

// Deadzone holds the four deadzone boundaries of an axis, in normalized
// units: low <= centerLow <= 0 <= centerHigh <= high.
type Deadzone struct {
	Low        float64
	CenterLow  float64
	CenterHigh float64
	High       float64
}

// DefaultDeadzone is the identity deadzone covering the full axis range.
func DefaultDeadzone() Deadzone {
	return Deadzone{Low: -1, CenterLow: 0, CenterHigh: 0, High: 1}
}

// IsDefault reports whether the deadzone leaves the input untouched.
func (d Deadzone) IsDefault() bool {
	return d == DefaultDeadzone()
}

// Func returns the deadzone transform. Input beyond Low/High clamps to
// -1 or 1, input inside the center band maps to 0, and the surviving range on
// each side is stretched linearly so the output still spans [-1, 0] and
// [0, 1] without a discontinuity. The returned function is idempotent.
func (d Deadzone) Func() Func {
	return func(v float64) float64 {
		switch {
		case v <= d.Low:
			return -1
		case v >= d.High:
			return 1
		case v >= d.CenterLow && v <= d.CenterHigh:
			return 0
		case v < d.CenterLow:
			if d.CenterLow-d.Low < Epsilon {
				return -1
			}
			return -(d.CenterLow - v) / (d.CenterLow - d.Low)
		default:
			if d.High-d.CenterHigh < Epsilon {
				return 1
			}
			return (v - d.CenterHigh) / (d.High - d.CenterHigh)
		}
	}
}
