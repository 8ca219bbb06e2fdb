package pipeline

import "math"

// Axis values below this delta are considered unchanged and not rebroadcast.
const analogThreshold = 0.01

func floatEqual(a, b float64) bool {
	return math.Abs(a-b) < analogThreshold
}

// AxisOutput is the processed value of one output axis.
type AxisOutput struct {
	DeviceGUID string  `json:"deviceGuid"`
	InputID    int     `json:"inputId"`
	Merged     bool    `json:"merged,omitempty"`
	Value      float64 `json:"value"`
}

// Frame is a full snapshot of every output axis.
type Frame struct {
	Active bool         `json:"active"`
	Axes   []AxisOutput `json:"axes"`
}

// ComputeDelta returns the outputs of next that differ from prev beyond
// the analog threshold, plus whether the active flag flipped.
func ComputeDelta(prev, next Frame) (changed []AxisOutput, activeFlipped bool) {
	activeFlipped = prev.Active != next.Active

	prevVals := make(map[axisKey]float64, len(prev.Axes))
	for _, a := range prev.Axes {
		prevVals[axisKey{a.DeviceGUID, a.InputID, a.Merged}] = a.Value
	}
	for _, a := range next.Axes {
		old, ok := prevVals[axisKey{a.DeviceGUID, a.InputID, a.Merged}]
		if !ok || !floatEqual(old, a.Value) {
			changed = append(changed, a)
		}
	}
	return changed, activeFlipped
}

type axisKey struct {
	deviceGUID string
	inputID    int
	merged     bool
}
