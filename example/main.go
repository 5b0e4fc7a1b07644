package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/camwatch/camwatch"
)

func main() {
	// start mock media server (see mock_server.go)
	go StartMockMediaMTX(":9999")
	time.Sleep(100 * time.Millisecond)

	// grid API: 2 floors × 2 channels = 4 cameras from one declaration
	cameras, err := camwatch.NewCameraGrid("floor",
		camwatch.WithSourceTemplate("rtsp://10.0.{{.floor}}.5:554/ch{{.ch}}"),
		camwatch.WithNameTemplate("floor{{.floor}}-cam{{.ch}}"),
		camwatch.WithDimensions(map[string][]string{
			"floor": {"1", "2"},
			"ch":    {"1", "2"},
		}),
		camwatch.WithGridMetadata("building", "hq"),
	)
	if err != nil {
		slog.Error("failed to create camera grid", "error", err)
		os.Exit(1)
	}

	// add a single camera with its own metadata
	gate, _ := camwatch.NewCameraSpec("gate", "rtsp://10.0.0.10:554/stream1",
		camwatch.WithMetadata("location", "front gate"),
	)
	cameras = append(cameras, gate)

	// create the monitor against the mock server
	m, err := camwatch.New(
		camwatch.WithMediaMTXURL("http://localhost:9999/v3"),
		camwatch.WithPlaybackURL("http://localhost:9999"),
		camwatch.WithWebRTCURL("http://localhost:9999"),
		camwatch.WithCameras(cameras...),
		camwatch.WithPort(8093),
		camwatch.WithProbeInterval(5*time.Second),
		camwatch.WithRefreshInterval(15*time.Second),
		camwatch.WithFailureThreshold(2),
	)
	if err != nil {
		slog.Error("failed to create monitor", "error", err)
		os.Exit(1)
	}

	// print a one-line summary whenever camera state changes
	m.Subscribe(func() {
		stats := m.Stats()
		fmt.Printf("  state change: %d cameras, %d online, %d in error\n",
			stats.Total, stats.Online, stats.Errors)
	})

	fmt.Println()
	fmt.Println("  ╔═══════════════════════════════════════════════════════╗")
	fmt.Println("  ║                                                       ║")
	fmt.Println("  ║   camwatch Demo                                       ║")
	fmt.Println("  ║                                                       ║")
	fmt.Println("  ║   Camera API:  http://localhost:8093/api/v1/cameras   ║")
	fmt.Println("  ║   Live events: http://localhost:8093/api/v1/events    ║")
	fmt.Println("  ║   Metrics:     http://localhost:8093/metrics          ║")
	fmt.Println("  ║                                                       ║")
	fmt.Println("  ║   Cameras:                                            ║")
	fmt.Println("  ║   • 4 mock (2 floors × 2 channels via Grid)           ║")
	fmt.Println("  ║   • 1 single (gate)                                   ║")
	fmt.Println("  ║                                                       ║")
	fmt.Println("  ║   Mock streams cycle healthy → stalled → broken       ║")
	fmt.Println("  ║   Press Ctrl+C to stop                                ║")
	fmt.Println("  ║                                                       ║")
	fmt.Println("  ╚═══════════════════════════════════════════════════════╝")
	fmt.Println()

	// set up context with signal handling for graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := m.Start(ctx); err != nil {
		slog.Error("monitor error", "error", err)
		os.Exit(1)
	}
}
