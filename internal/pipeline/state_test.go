package pipeline

import "testing"

func TestComputeDelta(t *testing.T) {
	prev := Frame{
		Active: true,
		Axes: []AxisOutput{
			{DeviceGUID: "a", InputID: 1, Value: 0.5},
			{DeviceGUID: "a", InputID: 2, Value: -0.2},
		},
	}
	next := Frame{
		Active: true,
		Axes: []AxisOutput{
			{DeviceGUID: "a", InputID: 1, Value: 0.5},
			{DeviceGUID: "a", InputID: 2, Value: 0.8},
		},
	}

	changed, flipped := ComputeDelta(prev, next)
	if flipped {
		t.Error("active flagged as flipped")
	}
	if len(changed) != 1 || changed[0].InputID != 2 {
		t.Errorf("changed = %+v, want only input 2", changed)
	}
}

func TestComputeDeltaThreshold(t *testing.T) {
	prev := Frame{Axes: []AxisOutput{{DeviceGUID: "a", InputID: 1, Value: 0.5}}}
	next := Frame{Axes: []AxisOutput{{DeviceGUID: "a", InputID: 1, Value: 0.505}}}

	changed, _ := ComputeDelta(prev, next)
	if len(changed) != 0 {
		t.Errorf("sub-threshold move reported: %+v", changed)
	}
}

func TestComputeDeltaNewAxisAndActiveFlip(t *testing.T) {
	prev := Frame{Active: true}
	next := Frame{
		Active: false,
		Axes:   []AxisOutput{{DeviceGUID: "a", InputID: 1, Merged: true, Value: 0.1}},
	}

	changed, flipped := ComputeDelta(prev, next)
	if !flipped {
		t.Error("active flip not reported")
	}
	if len(changed) != 1 || !changed[0].Merged {
		t.Errorf("changed = %+v, want the new merged axis", changed)
	}
}
