package server

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/muchimi/axispipe/internal/device"
	"github.com/muchimi/axispipe/internal/hub"
	"github.com/muchimi/axispipe/internal/pipeline"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins for local use
	},
}

func handleWebSocket(h *hub.Hub, b *hub.Broadcaster, p *pipeline.Processor) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			log.Printf("WebSocket upgrade failed: %v", err)
			return
		}

		client := hub.NewClient(h, conn)
		h.Register(client)

		// Send current state to the new client
		b.SendInitialState(client)

		go client.WritePump()
		go client.ReadPump(p)
	}
}

func handleStatus(p *pipeline.Processor, r *device.Reader) http.HandlerFunc {
	type status struct {
		Devices []device.Info  `json:"devices"`
		Outputs pipeline.Frame `json:"outputs"`
	}
	return func(w http.ResponseWriter, req *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(status{
			Devices: r.Devices(),
			Outputs: p.Snapshot(),
		}); err != nil {
			log.Printf("Error encoding status: %v", err)
		}
	}
}
