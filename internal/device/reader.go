// Package device enumerates joysticks through the SDL3 Joystick API and
// feeds raw axis samples into the processing pipeline.
package device

import (
	"context"
	"fmt"
	"log"
	"runtime"
	"sync"
	"time"

	"github.com/jupiterrider/purego-sdl3/sdl"
)

// Sink receives raw axis samples. Axis input ids are 1-based.
type Sink interface {
	HandleSample(deviceGUID string, inputID int, raw float64)
}

// Info describes one connected joystick.
type Info struct {
	GUID string `json:"guid"`
	Name string `json:"name"`
	Axes int    `json:"axes"`
}

type joystickInfo struct {
	joystick *sdl.Joystick
	guid     string
	name     string
	axes     int32
	prev     []int16
}

// Reader polls every connected joystick and pushes raw axis values to the
// sink whenever they move.
type Reader struct {
	sink         Sink
	pollInterval time.Duration
	joysticks    map[sdl.JoystickID]*joystickInfo
	mu           sync.RWMutex
}

// NewReader returns a reader delivering samples to sink at the given poll
// interval.
func NewReader(sink Sink, pollInterval time.Duration) *Reader {
	return &Reader{
		sink:         sink,
		pollInterval: pollInterval,
		joysticks:    make(map[sdl.JoystickID]*joystickInfo),
	}
}

// Devices returns a snapshot of the connected joysticks.
func (r *Reader) Devices() []Info {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Info, 0, len(r.joysticks))
	for _, info := range r.joysticks {
		out = append(out, Info{GUID: info.guid, Name: info.name, Axes: int(info.axes)})
	}
	return out
}

// Run initializes SDL and runs the event and polling loop until ctx is
// done. The calling goroutine is locked to its OS thread for the duration.
func (r *Reader) Run(ctx context.Context) {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	if !sdl.Init(sdl.InitJoystick) {
		log.Fatalf("SDL Init failed: %s", sdl.GetError())
	}
	defer sdl.Quit()

	log.Println("SDL3 Joystick subsystem initialized")

	for _, id := range sdl.GetJoysticks() {
		r.openJoystick(id)
	}

	for {
		select {
		case <-ctx.Done():
			r.closeAll()
			return
		default:
		}

		r.processEvents()
		r.pollAxes()
		time.Sleep(r.pollInterval)
	}
}

func (r *Reader) processEvents() {
	var event sdl.Event
	for sdl.PollEvent(&event) {
		switch event.Type() {
		case sdl.EventJoystickAdded:
			r.openJoystick(event.JDevice().Which)
		case sdl.EventJoystickRemoved:
			r.removeJoystick(event.JDevice().Which)
		}
	}
}

func (r *Reader) openJoystick(instanceID sdl.JoystickID) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.joysticks[instanceID]; exists {
		return
	}

	js := sdl.OpenJoystick(instanceID)
	if js == nil {
		log.Printf("Failed to open joystick %d: %s", instanceID, sdl.GetError())
		return
	}

	jsID := sdl.GetJoystickID(js)
	vendorID := sdl.GetJoystickVendor(js)
	productID := sdl.GetJoystickProduct(js)
	name := sdl.GetJoystickName(js)
	axes := sdl.GetNumJoystickAxes(js)

	// Stable per-session identifier: vendor/product plus an ordinal so two
	// identical sticks stay distinguishable.
	ordinal := 0
	prefix := fmt.Sprintf("%04x:%04x", vendorID, productID)
	for _, other := range r.joysticks {
		if len(other.guid) >= len(prefix) && other.guid[:len(prefix)] == prefix {
			ordinal++
		}
	}
	guid := fmt.Sprintf("%s:%d", prefix, ordinal)

	r.joysticks[jsID] = &joystickInfo{
		joystick: js,
		guid:     guid,
		name:     name,
		axes:     axes,
		prev:     make([]int16, axes),
	}

	log.Printf("Joystick connected: %s (guid=%s axes=%d)", name, guid, axes)

	// Push the rest position so downstream state starts populated.
	for a := int32(0); a < axes; a++ {
		r.sink.HandleSample(guid, int(a)+1, float64(sdl.GetJoystickAxis(js, a)))
	}
}

func (r *Reader) removeJoystick(instanceID sdl.JoystickID) {
	r.mu.Lock()
	defer r.mu.Unlock()

	info, exists := r.joysticks[instanceID]
	if !exists {
		return
	}
	log.Printf("Joystick disconnected: %s", info.name)
	sdl.CloseJoystick(info.joystick)
	delete(r.joysticks, instanceID)
}

func (r *Reader) closeAll() {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, info := range r.joysticks {
		sdl.CloseJoystick(info.joystick)
		delete(r.joysticks, id)
	}
}

func (r *Reader) pollAxes() {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, info := range r.joysticks {
		if !sdl.JoystickConnected(info.joystick) {
			continue
		}
		for a := int32(0); a < info.axes; a++ {
			raw := sdl.GetJoystickAxis(info.joystick, a)
			if raw == info.prev[a] {
				continue
			}
			info.prev[a] = raw
			r.sink.HandleSample(info.guid, int(a)+1, float64(raw))
		}
	}
}
