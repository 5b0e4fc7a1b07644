package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/camwatch/camwatch"
	"github.com/camwatch/camwatch/config"
	"github.com/spf13/cobra"
)

const (
	shutdownTimeout = 10 * time.Second
)

// serveCmd starts the camwatch monitor.
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the monitor",
	Long: `Start the camwatch monitor.

The monitor will:
  - Load configuration from the specified YAML file
  - Ensure all declared cameras exist on the media server
  - Probe camera health at the configured interval
  - Serve health state over HTTP on the configured listen address

The monitor runs until interrupted (Ctrl+C) or receives SIGTERM.

Example:
  camwatch serve -c config.yaml
  camwatch serve --config /etc/camwatch/config.yaml`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringP("config", "c", "", "path to config file (required)")
	_ = serveCmd.MarkFlagRequired("config")
}

func runServe(cmd *cobra.Command, args []string) error {
	configFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(configFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logger := config.BuildLogger(cfg)

	logger.Info("config loaded",
		"cameras", len(cfg.Cameras),
		"grids", len(cfg.CameraGrids),
	)
	logger.Info("starting monitor",
		"listen", cfg.Listen,
		"mediamtx_url", cfg.MediaMTX.APIURL,
		"probe_interval", cfg.Monitor.ProbeInterval.Duration().String(),
	)

	// convert config to SDK options
	opts, err := config.BuildOptions(cfg)
	if err != nil {
		return fmt.Errorf("failed to build options: %w", err)
	}
	opts = append(opts, camwatch.WithLogger(logger))

	m, err := camwatch.New(opts...)
	if err != nil {
		return fmt.Errorf("failed to create monitor: %w", err)
	}

	// set up context with signal handling - cancel on SIGINT/SIGTERM
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// start monitor - blocks until context cancelled
	errChan := make(chan error, 1)
	go func() {
		errChan <- m.Start(ctx)
	}()

	// wait for monitor to finish
	select {
	case err := <-errChan:
		if err != nil {
			return fmt.Errorf("monitor error: %w", err)
		}
		logger.Info("shutdown complete")
		return nil

	case <-ctx.Done():
		// signal received, wait for graceful shutdown with timeout
		select {
		case err := <-errChan:
			if err != nil {
				return fmt.Errorf("monitor error: %w", err)
			}
			logger.Info("shutdown complete")
			return nil
		case <-time.After(shutdownTimeout):
			logger.Warn("shutdown timed out",
				"timeout", shutdownTimeout.String(),
				"action", "forcing exit",
			)
			return nil
		}
	}
}
