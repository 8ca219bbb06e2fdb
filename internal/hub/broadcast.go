package hub

import (
	"encoding/json"
	"log"
	"time"

	"github.com/muchimi/axispipe/internal/pipeline"
)

const (
	fullSyncInterval = 5 * time.Second
	deltaCountSync   = 100
)

// Broadcaster listens for pipeline output frames and broadcasts them to
// the hub.
type Broadcaster struct {
	hub       *Hub
	changes   <-chan pipeline.Frame
	lastFrame pipeline.Frame
	seq       int64
}

func NewBroadcaster(h *Hub, changes <-chan pipeline.Frame) *Broadcaster {
	return &Broadcaster{
		hub:     h,
		changes: changes,
	}
}

// Run starts the broadcaster loop. Should be run in a goroutine.
func (b *Broadcaster) Run() {
	ticker := time.NewTicker(fullSyncInterval)
	defer ticker.Stop()

	var deltaCount int64

	for {
		select {
		case frame, ok := <-b.changes:
			if !ok {
				return
			}

			changed, activeFlipped := pipeline.ComputeDelta(b.lastFrame, frame)
			b.lastFrame = frame

			if len(changed) == 0 && !activeFlipped {
				continue
			}

			b.seq++
			deltaCount++

			// Send full sync periodically and on activation flips
			if activeFlipped || deltaCount >= deltaCountSync {
				b.sendFull(frame)
				deltaCount = 0
			} else {
				b.sendDelta(changed)
			}

		case <-ticker.C:
			if len(b.lastFrame.Axes) > 0 {
				b.seq++
				b.sendFull(b.lastFrame)
			}
		}
	}
}

// SendInitialState sends the current full frame to a newly connected client.
func (b *Broadcaster) SendInitialState(c *Client) {
	b.seq++
	msg := NewFullMessage(b.seq, &b.lastFrame)
	data, err := json.Marshal(msg)
	if err != nil {
		log.Printf("Error marshaling initial state: %v", err)
		return
	}
	select {
	case c.send <- data:
	default:
	}
}

func (b *Broadcaster) sendFull(frame pipeline.Frame) {
	msg := NewFullMessage(b.seq, &frame)
	data, err := json.Marshal(msg)
	if err != nil {
		log.Printf("Error marshaling full message: %v", err)
		return
	}
	b.hub.Broadcast(data)
}

func (b *Broadcaster) sendDelta(changes []pipeline.AxisOutput) {
	msg := NewDeltaMessage(b.seq, changes)
	data, err := json.Marshal(msg)
	if err != nil {
		log.Printf("Error marshaling delta message: %v", err)
		return
	}
	b.hub.Broadcast(data)
}
