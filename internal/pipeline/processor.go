// Package pipeline converts raw hardware axis samples into processed
// output values: calibration, response curve or merged-axis synthesis,
// and change broadcasting.
package pipeline

import (
	"log"
	"sort"
	"sync"

	"github.com/muchimi/axispipe/internal/calibration"
	"github.com/muchimi/axispipe/internal/curve"
	"github.com/muchimi/axispipe/internal/merged"
)

// Processor drives the per-sample chain
// raw -> calibration -> (curve | merge) -> output frame.
// Samples arrive from the polling goroutine; profile activation and
// suppression happen from the edit context.
type Processor struct {
	cal *calibration.Manager

	mu      sync.RWMutex
	active  bool
	curves  map[calibration.Key]*curve.AxisCurve
	merges  []merged.Config
	latest  map[calibration.Key]float64
	outputs map[axisKey]float64

	changes chan Frame
}

// NewProcessor returns a processor using the given calibration registry.
func NewProcessor(cal *calibration.Manager) *Processor {
	return &Processor{
		cal:     cal,
		curves:  make(map[calibration.Key]*curve.AxisCurve),
		latest:  make(map[calibration.Key]float64),
		outputs: make(map[axisKey]float64),
		changes: make(chan Frame, 64),
	}
}

// Changes returns the channel on which output frames are sent.
func (p *Processor) Changes() <-chan Frame {
	return p.changes
}

// Apply installs a profile: every response curve is rebuilt eagerly so the
// first sample never sees a stale evaluation function, and merged axes are
// registered only when valid.
func (p *Processor) Apply(profile *Profile) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.curves = make(map[calibration.Key]*curve.AxisCurve, len(profile.Axes))
	for _, a := range profile.Axes {
		a.Curve.Rebuild()
		p.curves[calibration.Key{DeviceGUID: a.DeviceGUID, InputID: a.InputID}] = a.Curve
	}

	p.merges = p.merges[:0]
	for _, m := range profile.Merged {
		if err := m.Validate(); err != nil {
			log.Printf("Skipping merged axis: %v", err)
			continue
		}
		p.merges = append(p.merges, m)
	}
	p.latest = make(map[calibration.Key]float64)
	p.outputs = make(map[axisKey]float64)
}

// SetActive enables or disables live evaluation. While inactive, samples
// are dropped; the editor drives curves directly instead.
func (p *Processor) SetActive(active bool) {
	p.mu.Lock()
	p.active = active
	p.mu.Unlock()
	p.emit()
}

// Active reports whether live evaluation is enabled.
func (p *Processor) Active() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.active
}

// HandleSample processes one raw axis sample. It returns immediately; any
// resulting output changes are published on the Changes channel.
func (p *Processor) HandleSample(deviceGUID string, inputID int, raw float64) {
	cal := p.cal.Get(deviceGUID, inputID)
	v := cal.Value(raw, true)

	p.mu.Lock()
	if !p.active {
		p.mu.Unlock()
		return
	}
	key := calibration.Key{DeviceGUID: deviceGUID, InputID: inputID}
	p.latest[key] = v

	changed := false

	out := v
	if c, ok := p.curves[key]; ok {
		out = c.Value(v)
	}
	ok := p.store(axisKey{deviceGUID, inputID, false}, out)
	changed = changed || ok

	for i, m := range p.merges {
		k1 := calibration.Key{DeviceGUID: m.Axis1.DeviceGUID, InputID: m.Axis1.InputID}
		k2 := calibration.Key{DeviceGUID: m.Axis2.DeviceGUID, InputID: m.Axis2.InputID}
		if key != k1 && key != k2 {
			continue
		}
		mv := m.Value(p.latest[k1], p.latest[k2])
		ok := p.store(axisKey{m.Axis1.DeviceGUID, i, true}, mv)
		changed = changed || ok
	}
	p.mu.Unlock()

	if changed {
		p.emit()
	}
}

// store records an output value, reporting whether it moved beyond the
// analog threshold. Caller holds the lock.
func (p *Processor) store(k axisKey, v float64) bool {
	old, ok := p.outputs[k]
	if ok && floatEqual(old, v) {
		return false
	}
	p.outputs[k] = v
	return true
}

// Snapshot returns the current full output frame, ordered for stable
// serialization.
func (p *Processor) Snapshot() Frame {
	p.mu.RLock()
	defer p.mu.RUnlock()
	f := Frame{Active: p.active}
	for k, v := range p.outputs {
		f.Axes = append(f.Axes, AxisOutput{
			DeviceGUID: k.deviceGUID,
			InputID:    k.inputID,
			Merged:     k.merged,
			Value:      v,
		})
	}
	sort.Slice(f.Axes, func(i, j int) bool {
		a, b := f.Axes[i], f.Axes[j]
		if a.DeviceGUID != b.DeviceGUID {
			return a.DeviceGUID < b.DeviceGUID
		}
		if a.Merged != b.Merged {
			return !a.Merged
		}
		return a.InputID < b.InputID
	})
	return f
}

func (p *Processor) emit() {
	select {
	case p.changes <- p.Snapshot():
	default:
		// Drop if the channel is full to avoid blocking the polling loop.
	}
}
