package hub

import (
	"encoding/json"
	"log"

	"github.com/gorilla/websocket"
)

// ActivationSwitch is the notification surface clients use to start or
// stop live curve evaluation, e.g. while a profile is being edited.
type ActivationSwitch interface {
	SetActive(bool)
	Active() bool
}

// Client represents a connected WebSocket client.
type Client struct {
	hub  *Hub
	conn *websocket.Conn
	send chan []byte
}

// NewClient creates a new Client attached to the hub.
func NewClient(hub *Hub, conn *websocket.Conn) *Client {
	return &Client{
		hub:  hub,
		conn: conn,
		send: make(chan []byte, 256),
	}
}

// WritePump sends messages from the send channel to the WebSocket connection.
func (c *Client) WritePump() {
	defer func() {
		c.conn.Close()
	}()

	for msg := range c.send {
		err := c.conn.WriteMessage(websocket.TextMessage, msg)
		if err != nil {
			break
		}
	}
}

// ReadPump reads messages from the WebSocket and handles client commands.
func (c *Client) ReadPump(sw ActivationSwitch) {
	defer func() {
		c.hub.Unregister(c)
		c.conn.Close()
	}()

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			break
		}

		var clientMsg ClientMessage
		if err := json.Unmarshal(message, &clientMsg); err != nil {
			log.Printf("Error parsing client message: %v", err)
			continue
		}

		switch clientMsg.Type {
		case "activate", "deactivate":
			sw.SetActive(clientMsg.Type == "activate")
			msg := NewActiveMessage(sw.Active())
			data, _ := json.Marshal(msg)
			c.send <- data
			log.Printf("Evaluation switched: active=%v", sw.Active())
		}
	}
}
