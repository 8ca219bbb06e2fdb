package merged

import (
	"encoding/xml"
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestCompute(t *testing.T) {
	tests := []struct {
		name   string
		op     Operation
		v1, v2 float64
		invert bool
		want   float64
	}{
		{"maximum", Maximum, 0.3, -0.5, false, 0.3},
		{"minimum", Minimum, 0.3, -0.5, false, -0.5},
		{"sum", Sum, 0.4, 0.3, false, 0.7},
		{"sum clamps high", Sum, 0.8, 0.5, false, 1},
		{"sum clamps low", Sum, -0.8, -0.5, false, -1},
		{"average subtracts", Average, 0.5, 0.1, false, 0.2},
		{"average of equal inputs", Average, 0.6, 0.6, false, 0},
		{"inverted maximum", Maximum, 0.3, -0.5, true, -0.3},
		{"inverted zero", Average, 0.2, 0.2, true, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Compute(tt.op, tt.v1, tt.v2, tt.invert)
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("Compute(%v, %v, %v, %v) = %v, want %v",
					tt.op, tt.v1, tt.v2, tt.invert, got, tt.want)
			}
		})
	}
}

func TestSelfMergeInvalid(t *testing.T) {
	ref := AxisRef{DeviceGUID: "045e:028e:0", InputID: 1}
	c := Config{Axis1: ref, Axis2: ref, Operation: Maximum}
	if c.IsValid() {
		t.Error("self merge reported valid")
	}

	c.Axis2.InputID = 2
	if !c.IsValid() {
		t.Errorf("distinct axes reported invalid: %v", c.Validate())
	}
}

func TestOperationNames(t *testing.T) {
	for _, op := range []Operation{Average, Minimum, Maximum, Sum} {
		parsed, err := ParseOperation(op.String())
		if err != nil {
			t.Errorf("ParseOperation(%q): %v", op.String(), err)
		}
		if parsed != op {
			t.Errorf("ParseOperation(%q) = %v, want %v", op.String(), parsed, op)
		}
	}
	if _, err := ParseOperation("median"); err == nil {
		t.Error("unknown operation accepted")
	}
}

func TestEntryRoundTrip(t *testing.T) {
	c := Config{
		Axis1:        AxisRef{DeviceGUID: "045e:028e:0", InputID: 1},
		Axis2:        AxisRef{DeviceGUID: "046d:c215:0", InputID: 3},
		Operation:    Sum,
		InvertOutput: true,
	}
	out, err := xml.Marshal(c)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var parsed Config
	if err := xml.Unmarshal(out, &parsed); err != nil {
		t.Fatalf("unmarshal %s: %v", out, err)
	}
	if diff := cmp.Diff(c, parsed); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestEntryUnknownOperationRejected(t *testing.T) {
	doc := `<entry operation="median" joy1_device_id="a" joy1_axis_id="1" joy2_device_id="b" joy2_axis_id="2" reverse="false"/>`
	var parsed Config
	if err := xml.Unmarshal([]byte(doc), &parsed); err == nil {
		t.Error("unknown operation accepted")
	}
}
