package hub

import (
	"time"

	"github.com/muchimi/axispipe/internal/pipeline"
)

// WSMessage represents a WebSocket message sent from server to client.
type WSMessage struct {
	Type      string                `json:"type"`      // Message type: "full", "delta", "active"
	Seq       int64                 `json:"seq"`       // Sequence number for ordering
	Timestamp int64                 `json:"timestamp"` // Unix timestamp in milliseconds
	Data      *pipeline.Frame       `json:"data,omitempty"`    // Full output frame for type "full"
	Changes   []pipeline.AxisOutput `json:"changes,omitempty"` // Changed outputs for type "delta"
	Active    *bool                 `json:"active,omitempty"`  // Evaluation state for type "active"
}

// NewFullMessage creates a "full" type message containing a complete
// output frame.
func NewFullMessage(seq int64, frame *pipeline.Frame) *WSMessage {
	return &WSMessage{
		Type:      "full",
		Seq:       seq,
		Timestamp: time.Now().UnixMilli(),
		Data:      frame,
	}
}

// NewDeltaMessage creates a "delta" type message containing only changed
// axis outputs.
func NewDeltaMessage(seq int64, changes []pipeline.AxisOutput) *WSMessage {
	return &WSMessage{
		Type:      "delta",
		Seq:       seq,
		Timestamp: time.Now().UnixMilli(),
		Changes:   changes,
	}
}

// NewActiveMessage creates an "active" message confirming an evaluation
// state switch.
func NewActiveMessage(active bool) *WSMessage {
	return &WSMessage{
		Type:      "active",
		Seq:       0,
		Timestamp: time.Now().UnixMilli(),
		Active:    &active,
	}
}

// ClientMessage represents a message sent from the client to the server.
type ClientMessage struct {
	Type string `json:"type"` // "activate" or "deactivate"
}
