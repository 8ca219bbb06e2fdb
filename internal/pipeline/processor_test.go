package pipeline

import (
	"math"
	"path/filepath"
	"testing"

	"github.com/muchimi/axispipe/internal/calibration"
	"github.com/muchimi/axispipe/internal/curve"
	"github.com/muchimi/axispipe/internal/merged"
)

const testEpsilon = 1e-6

func closeTo(t *testing.T, got, want float64) {
	t.Helper()
	if math.Abs(got-want) > testEpsilon {
		t.Errorf("got %v, want %v", got, want)
	}
}

func newTestProcessor(t *testing.T) *Processor {
	t.Helper()
	cal := calibration.NewManager(filepath.Join(t.TempDir(), "calibration.xml"))
	return NewProcessor(cal)
}

func testCurve(t *testing.T) *curve.AxisCurve {
	t.Helper()
	c, err := curve.NewAxisCurve(curve.KindCubic)
	if err != nil {
		t.Fatalf("NewAxisCurve: %v", err)
	}
	return c
}

func findOutput(f Frame, guid string, input int, isMerged bool) (AxisOutput, bool) {
	for _, a := range f.Axes {
		if a.DeviceGUID == guid && a.InputID == input && a.Merged == isMerged {
			return a, true
		}
	}
	return AxisOutput{}, false
}

func TestProcessorPassThroughAxis(t *testing.T) {
	p := newTestProcessor(t)
	p.SetActive(true)

	p.HandleSample("a", 1, 32767)
	out, ok := findOutput(p.Snapshot(), "a", 1, false)
	if !ok {
		t.Fatal("no output for sampled axis")
	}
	closeTo(t, out.Value, 1)
}

func TestProcessorAppliesCurve(t *testing.T) {
	p := newTestProcessor(t)
	c := testCurve(t)
	c.Model().Invert()
	p.Apply(&Profile{Axes: []AxisEntry{{DeviceGUID: "a", InputID: 1, Curve: c}}})
	p.SetActive(true)

	p.HandleSample("a", 1, 32767)
	out, ok := findOutput(p.Snapshot(), "a", 1, false)
	if !ok {
		t.Fatal("no output for curved axis")
	}
	closeTo(t, out.Value, -1)
}

func TestProcessorMergedAxis(t *testing.T) {
	p := newTestProcessor(t)
	p.Apply(&Profile{Merged: []merged.Config{{
		Axis1:     merged.AxisRef{DeviceGUID: "a", InputID: 1},
		Axis2:     merged.AxisRef{DeviceGUID: "a", InputID: 2},
		Operation: merged.Maximum,
	}}})
	p.SetActive(true)

	p.HandleSample("a", 1, 9830)   // ~0.3
	p.HandleSample("a", 2, -16384) // ~-0.5
	out, ok := findOutput(p.Snapshot(), "a", 0, true)
	if !ok {
		t.Fatal("no merged output")
	}
	if math.Abs(out.Value-0.3) > 0.01 {
		t.Errorf("merged value = %v, want ~0.3", out.Value)
	}
}

func TestProcessorSkipsInvalidMerge(t *testing.T) {
	p := newTestProcessor(t)
	ref := merged.AxisRef{DeviceGUID: "a", InputID: 1}
	p.Apply(&Profile{Merged: []merged.Config{{Axis1: ref, Axis2: ref, Operation: merged.Sum}}})
	p.SetActive(true)

	p.HandleSample("a", 1, 32767)
	if _, ok := findOutput(p.Snapshot(), "a", 0, true); ok {
		t.Error("invalid merge produced output")
	}
}

func TestProcessorSuppressedWhileInactive(t *testing.T) {
	p := newTestProcessor(t)
	p.HandleSample("a", 1, 32767)
	if got := len(p.Snapshot().Axes); got != 0 {
		t.Errorf("inactive processor produced %d outputs", got)
	}
}

func TestProfileRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "profile.xml")
	c := testCurve(t)
	profile := &Profile{
		Axes: []AxisEntry{{DeviceGUID: "a", InputID: 1, Curve: c}},
		Merged: []merged.Config{{
			Axis1:     merged.AxisRef{DeviceGUID: "a", InputID: 1},
			Axis2:     merged.AxisRef{DeviceGUID: "b", InputID: 1},
			Operation: merged.Average,
		}},
	}
	if err := SaveProfile(path, profile); err != nil {
		t.Fatalf("SaveProfile: %v", err)
	}

	loaded, err := LoadProfile(path)
	if err != nil {
		t.Fatalf("LoadProfile: %v", err)
	}
	if len(loaded.Axes) != 1 || len(loaded.Merged) != 1 {
		t.Fatalf("loaded %d axes, %d merged", len(loaded.Axes), len(loaded.Merged))
	}
	if loaded.Axes[0].DeviceGUID != "a" || loaded.Axes[0].InputID != 1 {
		t.Errorf("axis binding = %+v", loaded.Axes[0])
	}
	if loaded.Axes[0].Curve == nil {
		t.Fatal("axis curve not loaded")
	}
	closeTo(t, loaded.Axes[0].Curve.Value(0.5), 0.5)
	if loaded.Merged[0].Operation != merged.Average {
		t.Errorf("merged operation = %v", loaded.Merged[0].Operation)
	}
}
