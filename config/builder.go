package config

import (
	"fmt"
	"log/slog"
	"os"
	"sort"

	"github.com/camwatch/camwatch"
)

// BuildOptions converts parsed configuration into SDK options.
//
// The returned options cover the server port, media server connection,
// monitoring cycles, and declared cameras (both direct cameras and
// expanded grids). The logger is not included; build one with
// [BuildLogger] and append [camwatch.WithLogger] alongside these.
func BuildOptions(cfg *Config) ([]camwatch.Option, error) {
	port, err := ListenPort(cfg.Listen)
	if err != nil {
		return nil, fmt.Errorf("listen: %w", err)
	}

	opts := []camwatch.Option{
		camwatch.WithPort(port),
		camwatch.WithMediaMTXURL(cfg.MediaMTX.APIURL),
		camwatch.WithPlaybackURL(cfg.MediaMTX.PlaybackURL),
		camwatch.WithWebRTCURL(cfg.MediaMTX.WebRTCURL),
		camwatch.WithRequestTimeout(cfg.MediaMTX.RequestTimeout.Duration()),
		camwatch.WithRetry(cfg.MediaMTX.RetryAttempts, cfg.MediaMTX.RetryDelay.Duration()),
		camwatch.WithConfigBatchSize(cfg.MediaMTX.ConfigBatchSize),
		camwatch.WithProbeInterval(cfg.Monitor.ProbeInterval.Duration()),
		camwatch.WithProbeTimeout(cfg.Monitor.ProbeTimeout.Duration()),
		camwatch.WithRefreshInterval(cfg.Monitor.RefreshInterval.Duration()),
		camwatch.WithCacheTTL(cfg.Monitor.CacheTTL.Duration()),
		camwatch.WithFailureThreshold(cfg.Monitor.FailureThreshold),
		camwatch.WithNotifyDelay(cfg.Monitor.NotifyDelay.Duration()),
	}

	specs, err := BuildCameraSpecs(cfg)
	if err != nil {
		return nil, err
	}
	if len(specs) > 0 {
		opts = append(opts, camwatch.WithCameras(specs...))
	}

	return opts, nil
}

// BuildCameraSpecs converts parsed configuration into SDK CameraSpec objects.
//
// It processes both direct cameras and grids, returning a combined slice.
// Grid dimensions are expanded via cartesian product.
func BuildCameraSpecs(cfg *Config) ([]camwatch.CameraSpec, error) {
	var specs []camwatch.CameraSpec

	// convert direct cameras
	for _, cc := range cfg.Cameras {
		spec, err := buildCameraSpec(cc)
		if err != nil {
			return nil, err
		}
		specs = append(specs, spec)
	}

	// convert grids (cartesian product expansion)
	for _, gc := range cfg.CameraGrids {
		gridSpecs, err := buildGridSpecs(gc)
		if err != nil {
			return nil, err
		}
		specs = append(specs, gridSpecs...)
	}

	return specs, nil
}

// buildCameraSpec converts a single CameraConfig to an SDK CameraSpec.
func buildCameraSpec(cc CameraConfig) (camwatch.CameraSpec, error) {
	var opts []camwatch.CameraSpecOption

	if cc.RTSPTransport != "" {
		opts = append(opts, camwatch.WithTransport(cc.RTSPTransport))
	}

	if cc.OnDemand {
		opts = append(opts, camwatch.WithOnDemand(true))
	}

	if len(cc.Metadata) > 0 {
		opts = append(opts, camwatch.WithMetadata(mapToKeyValuePairs(cc.Metadata)...))
	}

	return camwatch.NewCameraSpec(cc.Name, cc.Source, opts...)
}

// buildGridSpecs expands a GridConfig into multiple camera specs.
func buildGridSpecs(gc GridConfig) ([]camwatch.CameraSpec, error) {
	opts := []camwatch.GridOption{
		camwatch.WithSourceTemplate(gc.SourcePattern),
		camwatch.WithDimensions(gc.Dimensions),
	}

	if gc.NamePattern != "" {
		opts = append(opts, camwatch.WithNameTemplate(gc.NamePattern))
	}

	if gc.RTSPTransport != "" {
		opts = append(opts, camwatch.WithGridTransport(gc.RTSPTransport))
	}

	if gc.OnDemand {
		opts = append(opts, camwatch.WithGridOnDemand(true))
	}

	if len(gc.Metadata) > 0 {
		opts = append(opts, camwatch.WithGridMetadata(mapToKeyValuePairs(gc.Metadata)...))
	}

	specs, err := camwatch.NewCameraGrid(gc.Name, opts...)
	if err != nil {
		return nil, fmt.Errorf("camera grid (%s): %w", gc.Name, err)
	}
	return specs, nil
}

// mapToKeyValuePairs converts a map to a sorted slice of key-value pairs.
func mapToKeyValuePairs(m map[string]string) []string {
	// sort keys for deterministic ordering
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	pairs := make([]string, 0, len(m)*2)
	for _, k := range keys {
		pairs = append(pairs, k, m[k])
	}
	return pairs
}

// BuildLogger creates a slog.Logger from the configured level and format.
//
// Logs are written to stderr so stdout stays clean for command output.
func BuildLogger(cfg *Config) *slog.Logger {
	var level slog.Level
	switch cfg.LogLevel {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	handlerOpts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if cfg.LogFormat == "text" {
		handler = slog.NewTextHandler(os.Stderr, handlerOpts)
	} else {
		handler = slog.NewJSONHandler(os.Stderr, handlerOpts)
	}

	return slog.New(handler)
}
