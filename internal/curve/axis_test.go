package curve

import (
	"encoding/xml"
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestAxisCurveIdentityScenario(t *testing.T) {
	a, err := NewAxisCurve(KindCubic)
	if err != nil {
		t.Fatalf("NewAxisCurve: %v", err)
	}
	closeTo(t, a.Value(0), 0)
	closeTo(t, a.Value(1), 1)
	closeTo(t, a.Value(-0.5), -0.5)
}

func TestAxisCurveAppliesDeadzoneBeforeCurve(t *testing.T) {
	a, err := NewAxisCurve(KindCubic)
	if err != nil {
		t.Fatalf("NewAxisCurve: %v", err)
	}
	a.SetDeadzone(Deadzone{Low: -1, CenterLow: -0.2, CenterHigh: 0.2, High: 1})
	closeTo(t, a.Value(0.1), 0)
	closeTo(t, a.Value(0.6), 0.5)
	closeTo(t, a.Value(1), 1)
}

func TestAxisCurveSetDeadzoneClampsOrdering(t *testing.T) {
	a, err := NewAxisCurve(KindCubic)
	if err != nil {
		t.Fatalf("NewAxisCurve: %v", err)
	}
	a.SetDeadzone(Deadzone{Low: 0.5, CenterLow: -2, CenterHigh: 2, High: -3})
	d := a.Deadzone()
	if d.Low > d.CenterLow || d.CenterLow > 0 || d.CenterHigh < 0 || d.High < d.CenterHigh {
		t.Errorf("deadzone ordering violated: %+v", d)
	}
}

func TestAxisCurveReflectsModelEdits(t *testing.T) {
	a, err := NewAxisCurve(KindCubic)
	if err != nil {
		t.Fatalf("NewAxisCurve: %v", err)
	}
	closeTo(t, a.Value(1), 1)
	a.Model().Invert()
	closeTo(t, a.Value(1), -1)
	closeTo(t, a.Value(-1), 1)
}

func pointComparer() cmp.Option {
	return cmp.Comparer(func(a, b Point) bool { return a.NearlyEqual(b) })
}

func roundTrip(t *testing.T, a *AxisCurve) *AxisCurve {
	t.Helper()
	out, err := xml.Marshal(a)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	parsed := &AxisCurve{}
	if err := xml.Unmarshal(out, parsed); err != nil {
		t.Fatalf("unmarshal %s: %v", out, err)
	}
	return parsed
}

func TestResponseCurveRoundTripCubic(t *testing.T) {
	a, err := NewAxisCurve(KindCubic)
	if err != nil {
		t.Fatalf("NewAxisCurve: %v", err)
	}
	a.Model().SetSymmetryMode(DiagonalSymmetry)
	if _, err := a.Model().AddControlPoint(Pt(0.5, 0.3), nil); err != nil {
		t.Fatalf("AddControlPoint: %v", err)
	}
	a.SetDeadzone(Deadzone{Low: -0.9, CenterLow: -0.1, CenterHigh: 0.1, High: 0.9})

	parsed := roundTrip(t, a)
	if parsed.Model().Kind() != KindCubic {
		t.Errorf("kind = %v, want cubic", parsed.Model().Kind())
	}
	if parsed.Model().SymmetryMode() != DiagonalSymmetry {
		t.Errorf("symmetry mode not preserved")
	}
	if diff := cmp.Diff(a.Deadzone(), parsed.Deadzone()); diff != "" {
		t.Errorf("deadzone mismatch (-want +got):\n%s", diff)
	}
	want := centersByX(a.Model())
	got := centersByX(parsed.Model())
	if diff := cmp.Diff(want, got, pointComparer()); diff != "" {
		t.Errorf("points mismatch (-want +got):\n%s", diff)
	}
}

func TestResponseCurveRoundTripBezier(t *testing.T) {
	a, err := NewAxisCurve(KindBezier)
	if err != nil {
		t.Fatalf("NewAxisCurve: %v", err)
	}
	if _, err := a.Model().AddControlPoint(Pt(0.25, 0.4), []Point{Pt(0.1, 0.3), Pt(0.4, 0.5)}); err != nil {
		t.Fatalf("AddControlPoint: %v", err)
	}

	parsed := roundTrip(t, a)
	if diff := cmp.Diff(a.Model().Flatten(), parsed.Model().Flatten(), pointComparer()); diff != "" {
		t.Errorf("flattened points mismatch (-want +got):\n%s", diff)
	}
}

func centersByX(m *Model) []Point {
	var out []Point
	for _, p := range m.sortedByX() {
		out = append(out, p.Center())
	}
	return out
}

func TestResponseCurveUnknownTypeFatal(t *testing.T) {
	doc := `<response-curve mode="none"><mapping type="quintic-spline"/></response-curve>`
	parsed := &AxisCurve{}
	err := xml.Unmarshal([]byte(doc), parsed)
	if !errors.Is(err, ErrInvalidCurveType) {
		t.Errorf("got %v, want ErrInvalidCurveType", err)
	}
}

func TestResponseCurveDegradedFallsBackToPreset(t *testing.T) {
	doc := `<response-curve mode="none">
		<mapping type="cubic-bezier-spline">
			<control-point x="-1" y="-1"/>
			<control-point x="1" y="1"/>
		</mapping>
	</response-curve>`
	parsed := &AxisCurve{}
	if err := xml.Unmarshal([]byte(doc), parsed); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	preset, _ := NewModel(KindBezier)
	if diff := cmp.Diff(preset.Flatten(), parsed.Model().Flatten(), pointComparer()); diff != "" {
		t.Errorf("expected preset fallback (-want +got):\n%s", diff)
	}
	// Missing deadzone element falls back to the identity deadzone.
	if !parsed.Deadzone().IsDefault() {
		t.Errorf("deadzone = %+v, want default", parsed.Deadzone())
	}
}

func TestResponseCurveSchemaShape(t *testing.T) {
	a, err := NewAxisCurve(KindCubic)
	if err != nil {
		t.Fatalf("NewAxisCurve: %v", err)
	}
	out, err := xml.Marshal(a)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	s := string(out)
	for _, want := range []string{"<response-curve", `mode="none"`, `type="cubic-spline"`, "<control-point", "<deadzone"} {
		if !strings.Contains(s, want) {
			t.Errorf("serialized curve missing %q in %s", want, s)
		}
	}
}
