package server

import (
	"context"
	"log"
	"net/http"

	"github.com/muchimi/axispipe/internal/device"
	"github.com/muchimi/axispipe/internal/hub"
	"github.com/muchimi/axispipe/internal/pipeline"
)

type Server struct {
	hub         *hub.Hub
	broadcaster *hub.Broadcaster
	processor   *pipeline.Processor
	reader      *device.Reader
	addr        string
	httpServer  *http.Server
}

func New(h *hub.Hub, b *hub.Broadcaster, p *pipeline.Processor, r *device.Reader, addr string) *Server {
	return &Server{
		hub:         h,
		broadcaster: b,
		processor:   p,
		reader:      r,
		addr:        addr,
	}
}

func (s *Server) ListenAndServe() error {
	mux := http.NewServeMux()

	// WebSocket endpoint
	mux.HandleFunc("/ws", handleWebSocket(s.hub, s.broadcaster, s.processor))

	// Device and output state for plain HTTP consumers
	mux.HandleFunc("/status", handleStatus(s.processor, s.reader))

	s.httpServer = &http.Server{
		Addr:    s.addr,
		Handler: mux,
	}

	log.Printf("HTTP server listening on %s", s.addr)
	return s.httpServer.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer != nil {
		log.Println("Shutting down HTTP server...")
		return s.httpServer.Shutdown(ctx)
	}
	return nil
}
