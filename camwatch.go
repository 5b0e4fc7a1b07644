package camwatch

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/camwatch/camwatch/internal/mediamtx"
	"github.com/camwatch/camwatch/internal/metrics"
	"github.com/camwatch/camwatch/internal/probe"
	"github.com/camwatch/camwatch/internal/server"
	"github.com/camwatch/camwatch/internal/store"
)

const (
	// DefaultMediaMTXURL is the MediaMTX control API base URL used unless
	// overridden with [WithMediaMTXURL].
	DefaultMediaMTXURL = "http://127.0.0.1:9997/v3"

	// DefaultPlaybackURL is the MediaMTX HLS server base URL used unless
	// overridden with [WithPlaybackURL].
	DefaultPlaybackURL = "http://127.0.0.1:8888"

	// DefaultWebRTCURL is the MediaMTX WebRTC server base URL used unless
	// overridden with [WithWebRTCURL].
	DefaultWebRTCURL = "http://127.0.0.1:8889"

	// DefaultPort is the port the embedded HTTP server listens on.
	DefaultPort = 8093

	// DefaultProbeInterval is how often camera health probes run.
	DefaultProbeInterval = 10 * time.Second

	// DefaultProbeTimeout bounds a single health probe.
	DefaultProbeTimeout = 5 * time.Second

	// DefaultRefreshInterval is how often the camera list is re-read from
	// the control API.
	DefaultRefreshInterval = 30 * time.Second

	// DefaultCacheTTL is how long a refreshed camera list is served from
	// cache.
	DefaultCacheTTL = 30 * time.Second

	// DefaultFailureThreshold is the number of consecutive hard probe
	// failures before a camera is declared offline.
	DefaultFailureThreshold = 3

	// DefaultNotifyDelay is the debounce window for change notifications.
	DefaultNotifyDelay = 50 * time.Millisecond

	// DefaultRequestTimeout bounds a single control API request.
	DefaultRequestTimeout = 5 * time.Second

	// DefaultRetryAttempts is the number of retries for control API reads.
	DefaultRetryAttempts = 2

	// DefaultRetryDelay is the wait between control API retries.
	DefaultRetryDelay = 500 * time.Millisecond

	// DefaultConfigBatchSize caps concurrent per-path config requests
	// during a refresh.
	DefaultConfigBatchSize = 5
)

// Monitor watches the cameras served by a MediaMTX instance and keeps a
// reconciled view of their health.
//
// A Monitor is created with [New] and runs with [Start], which blocks until
// the given context is cancelled. While running it periodically re-reads the
// camera list from the MediaMTX control API, probes every camera's playback
// endpoint, and serves the resulting state over a REST API, an SSE event
// stream, and Prometheus metrics. All accessors and operations on Monitor
// are safe for concurrent use, both before and during Start.
type Monitor struct {
	mediamtxURL     string
	port            int
	serverDisabled  bool
	probeInterval   time.Duration
	refreshInterval time.Duration
	cameras         []CameraSpec
	logger          *slog.Logger

	client  *mediamtx.Client
	prober  *probe.Prober
	metrics *metrics.Metrics
	store   *store.Store
}

// New creates a Monitor with the given options.
//
// Returns an error if any option fails validation or if two declared
// cameras share a name. A Monitor with no options watches a MediaMTX
// instance on localhost at its standard ports.
//
// Example:
//
//	m, err := camwatch.New(
//	    camwatch.WithMediaMTXURL("http://nvr.local:9997/v3"),
//	    camwatch.WithPort(9000),
//	    camwatch.WithFailureThreshold(5),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if err := m.Start(ctx); err != nil {
//	    log.Fatal(err)
//	}
func New(opts ...Option) (*Monitor, error) {
	cfg := &monitorConfig{
		mediamtxURL:      DefaultMediaMTXURL,
		playbackURL:      DefaultPlaybackURL,
		webrtcURL:        DefaultWebRTCURL,
		port:             DefaultPort,
		probeInterval:    DefaultProbeInterval,
		probeTimeout:     DefaultProbeTimeout,
		refreshInterval:  DefaultRefreshInterval,
		cacheTTL:         DefaultCacheTTL,
		notifyDelay:      DefaultNotifyDelay,
		failureThreshold: DefaultFailureThreshold,
		requestTimeout:   DefaultRequestTimeout,
		retryAttempts:    DefaultRetryAttempts,
		retryDelay:       DefaultRetryDelay,
		configBatchSize:  DefaultConfigBatchSize,
	}

	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			return nil, err
		}
	}

	seen := make(map[string]bool, len(cfg.cameras))
	for _, spec := range cfg.cameras {
		if seen[spec.Name()] {
			return nil, fmt.Errorf("duplicate camera name: %q", spec.Name())
		}
		seen[spec.Name()] = true
	}

	logger := cfg.logger
	if logger == nil {
		logger = slog.Default()
	}

	m := metrics.New()
	client := mediamtx.New(cfg.mediamtxURL, cfg.requestTimeout, cfg.retryAttempts, cfg.retryDelay, cfg.configBatchSize, logger)
	prober := probe.New(cfg.probeTimeout)
	st := store.New(client, prober, m, store.Config{
		PlaybackURL:      cfg.playbackURL,
		WebRTCURL:        cfg.webrtcURL,
		FailureThreshold: cfg.failureThreshold,
		CacheTTL:         cfg.cacheTTL,
		NotifyDelay:      cfg.notifyDelay,
	}, logger)

	for _, fn := range cfg.onChange {
		st.Subscribe(fn)
	}

	return &Monitor{
		mediamtxURL:     cfg.mediamtxURL,
		port:            cfg.port,
		serverDisabled:  cfg.serverDisabled,
		probeInterval:   cfg.probeInterval,
		refreshInterval: cfg.refreshInterval,
		cameras:         cfg.cameras,
		logger:          logger,
		client:          client,
		prober:          prober,
		metrics:         m,
		store:           st,
	}, nil
}

// Start runs the monitor until ctx is cancelled.
//
// Start first declares any cameras from [WithCameras] that do not yet exist
// on the media server, then performs an initial refresh and probe cycle so
// state is populated before the first tick. It then starts the periodic
// refresh and probe loops and, unless [WithServerDisabled] was given, the
// embedded HTTP server.
//
// Start blocks until ctx is cancelled and shuts down cleanly: the loops
// stop, pending notifications are flushed, and the HTTP server drains
// in-flight requests.
func (m *Monitor) Start(ctx context.Context) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}

	m.logger.Info("camwatch starting",
		"mediamtx_url", m.mediamtxURL,
		"declared_cameras", len(m.cameras),
		"probe_interval", m.probeInterval,
		"refresh_interval", m.refreshInterval,
	)

	defer m.prober.Close()
	defer m.store.Close()

	m.ensureCameras(ctx)

	// Populate state before the first tick so the API never serves an
	// empty list just because the process is young.
	if err := m.store.Refresh(ctx, true); err != nil {
		m.logger.Warn("initial refresh failed", "error", err)
	}
	m.store.ProbeHealth(ctx)

	if !m.serverDisabled {
		srv := server.NewServer(m.store, fmt.Sprintf(":%d", m.port), m.metrics.Handler(), m.logger)
		if err := srv.Start(ctx); err != nil {
			return fmt.Errorf("failed to start HTTP server: %w", err)
		}
		m.logger.Info("http server listening", "addr", srv.Addr())
	}

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		m.refreshLoop(ctx)
	}()
	go func() {
		defer wg.Done()
		m.probeLoop(ctx)
	}()

	<-ctx.Done()
	wg.Wait()

	m.logger.Info("camwatch stopped")
	return nil
}

// ensureCameras declares every configured camera that does not already
// exist as a path on the media server, then seeds the local store so
// declared metadata is in place before the first refresh.
func (m *Monitor) ensureCameras(ctx context.Context) {
	if len(m.cameras) == 0 {
		return
	}

	known := make(map[string]bool)
	items, err := m.client.ListPaths(ctx)
	if err != nil {
		m.logger.Warn("could not list existing paths, declaring all cameras", "error", err)
	}
	for _, item := range items {
		known[item.Name] = true
	}

	for _, spec := range m.cameras {
		if !known[spec.Name()] {
			if !m.client.AddPath(ctx, spec.Name(), addRequestFromSpec(spec)) {
				m.logger.Warn("failed to declare camera", "camera", spec.Name())
				continue
			}
			m.logger.Info("declared camera", "camera", spec.Name(), "source", spec.Source())
		}
		m.store.Declare(spec.Name(), spec.Source(), spec.Metadata())
	}
}

// refreshLoop re-reads the camera list on a fixed interval until ctx is
// cancelled. Refresh failures keep the last known camera list.
func (m *Monitor) refreshLoop(ctx context.Context) {
	ticker := time.NewTicker(m.refreshInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			_ = m.store.Refresh(ctx, false)
		case <-ctx.Done():
			return
		}
	}
}

// probeLoop probes every camera's playback endpoint on a fixed interval
// until ctx is cancelled.
func (m *Monitor) probeLoop(ctx context.Context) {
	ticker := time.NewTicker(m.probeInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			m.store.ProbeHealth(ctx)
		case <-ctx.Done():
			return
		}
	}
}

// Refresh re-reads the camera list from the MediaMTX control API. With
// force set, any cached list is bypassed and a refresh already in flight is
// superseded. Without force, a fresh cache satisfies the call without any
// network traffic and concurrent calls coalesce into one round trip.
func (m *Monitor) Refresh(ctx context.Context, force bool) error {
	return m.store.Refresh(ctx, force)
}

// ProbeHealth probes every camera's playback endpoint once and reconciles
// the outcomes into camera statuses. It blocks until all probes settle.
func (m *Monitor) ProbeHealth(ctx context.Context) {
	m.store.ProbeHealth(ctx)
}

// ForceRefreshStatus discards all accumulated health state, re-reads the
// camera list, and probes every camera from scratch. Cameras report
// checking until fresh evidence arrives.
func (m *Monitor) ForceRefreshStatus(ctx context.Context) error {
	return m.store.ForceRefreshStatus(ctx)
}

// Cameras returns a snapshot of every known camera, sorted by ID.
func (m *Monitor) Cameras() []Camera {
	return storeCamerasToPublic(m.store.Cameras())
}

// ActiveCameras returns the cameras an operator has marked active, sorted
// by ID.
func (m *Monitor) ActiveCameras() []Camera {
	return storeCamerasToPublic(m.store.ActiveCameras())
}

// OnlineCameras returns the cameras currently confirmed online, sorted by ID.
func (m *Monitor) OnlineCameras() []Camera {
	return storeCamerasToPublic(m.store.OnlineCameras())
}

// CameraByID returns a snapshot of a single camera. The second return value
// is false if no camera with that ID is known.
func (m *Monitor) CameraByID(id string) (Camera, bool) {
	c, ok := m.store.CameraByID(id)
	if !ok {
		return Camera{}, false
	}
	return storeCameraToPublic(c), true
}

// Stats returns aggregate counts over the camera population.
func (m *Monitor) Stats() Stats {
	return storeStatsToPublic(m.store.Stats())
}

// SetActive sets operator intent for a camera. Returns false if the camera
// is unknown.
func (m *Monitor) SetActive(id string, active bool) bool {
	return m.store.SetActive(id, active)
}

// ToggleActive flips operator intent for a camera. The first return value
// is the new state; the second is false if the camera is unknown.
func (m *Monitor) ToggleActive(id string) (bool, bool) {
	return m.store.ToggleActive(id)
}

// StopAll clears operator intent on every camera and returns how many were
// active.
func (m *Monitor) StopAll() int {
	return m.store.StopAll()
}

// ActivateAllOnline marks every online camera active and returns how many
// changed.
func (m *Monitor) ActivateAllOnline() int {
	return m.store.ActivateAllOnline()
}

// AddCamera declares a new camera on the media server and starts monitoring
// it immediately. Returns false if the media server rejected the path.
func (m *Monitor) AddCamera(ctx context.Context, spec CameraSpec) bool {
	return m.store.AddCamera(ctx, spec.Name(), addRequestFromSpec(spec), spec.Metadata())
}

// RemoveCamera deletes the camera's path from the media server and stops
// monitoring it. Returns false if the media server rejected the deletion.
func (m *Monitor) RemoveCamera(ctx context.Context, id string) bool {
	return m.store.RemoveCamera(ctx, id)
}

// Subscribe registers fn to run after camera state changes have settled,
// debounced by the configured notify delay. The returned function removes
// the subscription; calling it more than once is safe.
func (m *Monitor) Subscribe(fn func()) func() {
	return m.store.Subscribe(fn)
}

// Port returns the configured HTTP server port.
func (m *Monitor) Port() int {
	return m.port
}

// ProbeInterval returns the configured interval between health probe cycles.
func (m *Monitor) ProbeInterval() time.Duration {
	return m.probeInterval
}

// RefreshInterval returns the configured interval between camera list
// refreshes.
func (m *Monitor) RefreshInterval() time.Duration {
	return m.refreshInterval
}

// DeclaredCameras returns a copy of the camera specs declared with
// [WithCameras].
func (m *Monitor) DeclaredCameras() []CameraSpec {
	out := make([]CameraSpec, len(m.cameras))
	copy(out, m.cameras)
	return out
}

// addRequestFromSpec converts a declared CameraSpec into the path
// configuration it should be created with on the media server.
func addRequestFromSpec(spec CameraSpec) mediamtx.AddPathRequest {
	req := mediamtx.AddPathRequest{
		Source:         spec.Source(),
		RTSPTransport:  spec.Transport(),
		SourceOnDemand: spec.OnDemand(),
	}
	if spec.OnDemand() {
		req.SourceOnDemandStartTimeout = spec.OnDemandStartTimeout().String()
		req.SourceOnDemandCloseAfter = spec.OnDemandCloseAfter().String()
	}
	if n := spec.UDPReadBuffer(); n > 0 {
		req.RTSPUDPReadBufferSize = n
	}
	return req
}

// storeCameraToPublic converts the store's snapshot type to the public API
// type. All mutable data is copied so callers never alias store state.
func storeCameraToPublic(c store.Camera) Camera {
	return Camera{
		ID:         c.ID,
		Name:       c.Name,
		Source:     c.Source,
		IsActive:   c.IsActive,
		Status:     Status(c.Status),
		LastSeen:   c.LastSeen,
		LastCheck:  c.LastCheck,
		ErrorCount: c.ErrorCount,
		HLSURL:     c.HLSURL,
		WebRTCURL:  c.WebRTCURL,
		Metadata:   copyMap(c.Metadata),
	}
}

func storeCamerasToPublic(cams []store.Camera) []Camera {
	out := make([]Camera, len(cams))
	for i, c := range cams {
		out[i] = storeCameraToPublic(c)
	}
	return out
}

func storeStatsToPublic(s store.Stats) Stats {
	return Stats{
		Total:  s.Total,
		Online: s.Online,
		Active: s.Active,
		Errors: s.Errors,
	}
}
