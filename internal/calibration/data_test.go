package calibration

import (
	"math"
	"testing"

	"github.com/muchimi/axispipe/internal/curve"
)

const testEpsilon = 1e-6

func closeTo(t *testing.T, got, want float64) {
	t.Helper()
	if math.Abs(got-want) > testEpsilon {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestCenteredIdentityCalibration(t *testing.T) {
	d := New()
	closeTo(t, d.Value(0, true), 0)
	closeTo(t, d.Value(32767, true), 1)
	closeTo(t, d.Value(-32768, true), -1)
}

func TestCenteredOffCenterCalibration(t *testing.T) {
	// Stick resting off center: both halves still reach full deflection.
	d := New()
	d.SetRange(-32767, 8000, 32767)
	closeTo(t, d.Value(8000, true), 0)
	closeTo(t, d.Value(32767, true), 1)
	closeTo(t, d.Value(-32767, true), -1)

	// Midpoint of the lower half maps to -0.5.
	closeTo(t, d.Value((8000-32767)/2.0, true), -0.5)
}

func TestCenteredCalibrationMonotonic(t *testing.T) {
	d := New()
	d.SetRange(-30000, 5000, 28000)
	prev := d.Value(-32768, true)
	for raw := -32768.0; raw <= 32767; raw += 500 {
		cur := d.Value(raw, true)
		if cur < prev-testEpsilon {
			t.Fatalf("decreasing at raw=%v: %v -> %v", raw, prev, cur)
		}
		prev = cur
	}
}

func TestSliderCalibration(t *testing.T) {
	d := New()
	d.SetCentered(false)
	closeTo(t, d.Value(0, true), 0)
	closeTo(t, d.Value(32767, true), 1)

	d.SetRange(0, 0, 32767)
	closeTo(t, d.Value(0, true), -1)
	closeTo(t, d.Value(32767, true), 1)
	closeTo(t, d.Value(16383.5, true), 0)
}

func TestInvertedCalibration(t *testing.T) {
	d := New()
	d.SetInverted(true)
	closeTo(t, d.Value(32767, true), -1)
	closeTo(t, d.Value(-32768, true), 1)
	closeTo(t, d.Value(0, true), 0)
}

func TestValueWithoutNormalize(t *testing.T) {
	d := New()
	closeTo(t, d.Value(0.5, false), 0.5)
	closeTo(t, d.Value(-1, false), -1)
}

func TestCalibrationDeadzone(t *testing.T) {
	d := New()
	d.SetDeadzone(curve.Deadzone{Low: -0.9, CenterLow: -0.1, CenterHigh: 0.1, High: 0.9})
	closeTo(t, d.Value(0.05, false), 0)
	closeTo(t, d.Value(0.95, false), 1)
	closeTo(t, d.Value(0.5, false), 0.5)
}

func TestSliderDeadzoneHasNoCenterBand(t *testing.T) {
	d := New()
	d.SetCentered(false)
	d.SetDeadzone(curve.Deadzone{Low: -0.8, CenterLow: 0, CenterHigh: 0, High: 0.8})
	closeTo(t, d.Value(-1, false), -1)
	closeTo(t, d.Value(1, false), 1)
	closeTo(t, d.Value(0, false), 0)
}

func TestRangeEndpointsNeverCross(t *testing.T) {
	d := New()
	d.SetRange(100, 100, 100)
	min, center, max := d.Range()
	if !(min < center && center < max) {
		t.Errorf("range not separated: min=%v center=%v max=%v", min, center, max)
	}

	d.SetMax(min - 500)
	min, center, max = d.Range()
	if !(min < center && center < max) {
		t.Errorf("range not separated after SetMax: min=%v center=%v max=%v", min, center, max)
	}

	// Evaluation stays finite through any interactive setter sequence.
	if v := d.Value(0, true); math.IsNaN(v) || math.IsInf(v, 0) {
		t.Errorf("Value not finite: %v", v)
	}
}

func TestHasData(t *testing.T) {
	d := New()
	if d.HasData() {
		t.Error("identity calibration reports data")
	}
	d.SetMin(-20000)
	if !d.HasData() {
		t.Error("modified calibration reports no data")
	}
}
