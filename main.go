package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/muchimi/axispipe/internal/calibration"
	"github.com/muchimi/axispipe/internal/config"
	"github.com/muchimi/axispipe/internal/device"
	"github.com/muchimi/axispipe/internal/hub"
	"github.com/muchimi/axispipe/internal/pipeline"
	"github.com/muchimi/axispipe/internal/server"
	"github.com/muchimi/axispipe/internal/tray"
)

// Cross-platform signal handling: use os.Interrupt on all platforms
// On Windows: os.Interrupt is sent when Ctrl+C is pressed
// On Unix: os.Interrupt is equivalent to syscall.SIGINT
var shutdownSignals = []os.Signal{os.Interrupt, syscall.SIGTERM}

func main() {
	cfg, err := config.Load(os.Args[1:])
	if err != nil {
		log.Fatalf("Configuration error: %v", err)
	}

	// Create cancellable context
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Channel to wait for reader completion
	readerDone := make(chan struct{})

	// Handle shutdown signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, shutdownSignals...)

	// Calibration registry and processing pipeline
	cal := calibration.NewManager(cfg.CalibrationPath)
	if err := cal.Load(); err != nil {
		log.Printf("Calibration load error: %v", err)
	}
	processor := pipeline.NewProcessor(cal)

	if profile, err := pipeline.LoadProfile(cfg.ProfilePath); err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			log.Printf("Profile load error: %v", err)
		}
	} else {
		processor.Apply(profile)
		log.Printf("Profile loaded: %d axes, %d merged", len(profile.Axes), len(profile.Merged))
	}
	processor.SetActive(true)

	// Raw axis sampling
	reader := device.NewReader(processor, cfg.PollInterval)

	// Create and start hub
	h := hub.NewHub()
	go h.Run()

	// Create broadcaster
	broadcaster := hub.NewBroadcaster(h, processor.Changes())
	go broadcaster.Run()

	// Create and start HTTP server
	srv := server.New(h, broadcaster, processor, reader, cfg.ListenAddr)
	serverErrCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrCh <- err
		}
	}()

	statusURL := "http://localhost" + cfg.ListenAddr + "/status"
	log.Printf("axispipe started: %s", statusURL)

	// Channel for tray-triggered shutdown
	shutdownRequested := make(chan struct{})

	// Initialize system tray on Windows only
	if runtime.GOOS == "windows" {
		go func() {
			t := tray.New(statusURL, func() {
				close(shutdownRequested)
			})
			t.Run(nil)
		}()
	} else {
		log.Println("Press Ctrl+C to exit")
	}

	// Run reader in goroutine (SDL main thread handling is inside)
	go func() {
		reader.Run(ctx)
		close(readerDone)
	}()

	// Wait for shutdown signal, tray request, or server error
	select {
	case <-sigCh:
		log.Println("Shutting down...")
		cancel()
	case <-shutdownRequested:
		log.Println("Shutdown requested from tray")
		cancel()
	case err := <-serverErrCh:
		log.Printf("HTTP server error: %v", err)
		cancel()
	}

	// Wait for reader to finish
	<-readerDone

	if err := cal.Save(); err != nil {
		log.Printf("Calibration save error: %v", err)
	}

	// Shutdown the HTTP server gracefully
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("HTTP server shutdown error: %v", err)
	}

	log.Println("axispipe stopped")
}
