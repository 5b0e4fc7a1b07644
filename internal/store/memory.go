package store

import (
	"context"
	"errors"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/camwatch/camwatch/internal/mediamtx"
	"github.com/camwatch/camwatch/internal/metrics"
	"github.com/camwatch/camwatch/internal/notify"
	"github.com/camwatch/camwatch/internal/probe"
)

// cacheKeyCameraList guards the paths-list round trip. A live entry means
// the camera set was reconciled with MediaMTX within the TTL.
const cacheKeyCameraList = "camera_list"

// Refresh cycle results as recorded in metrics.
const (
	refreshResultOK         = "ok"
	refreshResultError      = "error"
	refreshResultCached     = "cached"
	refreshResultCoalesced  = "coalesced"
	refreshResultSuperseded = "superseded"
)

// Config carries the store's tunables.
type Config struct {
	// PlaybackURL is the base URL for HLS playback (and health probes).
	PlaybackURL string

	// WebRTCURL is the base URL for WHEP playback.
	WebRTCURL string

	// FailureThreshold is the number of consecutive hard failures before a
	// camera commits to offline or error.
	FailureThreshold int

	// CacheTTL is how long a reconciled camera list stays fresh. Within
	// the TTL, non-forced refreshes skip the network.
	CacheTTL time.Duration

	// NotifyDelay is the debounce window for change notifications.
	NotifyDelay time.Duration
}

// Store is the in-memory camera state, safe for concurrent access.
//
// The store does not run its own loops. Callers drive it: Refresh and
// ProbeHealth are invoked by the monitor's tickers (or by API handlers)
// and block until their cycle settles. Concurrent refreshes collapse into
// a single upstream round trip; see [Store.Refresh].
//
// Change notifications are debounced through a coalescer and fanned out to
// subscribers registered via [Store.Subscribe].
type Store struct {
	client  *mediamtx.Client
	prober  *probe.Prober
	hub     *notify.Hub
	metrics *metrics.Metrics
	logger  *slog.Logger
	cfg     Config

	coalescer *notify.Coalescer

	mu      sync.RWMutex
	cameras map[string]*camera
	health  map[string]healthRecord
	current *refreshCycle

	cache *cache
}

// refreshCycle identifies one in-flight refresh so a forced refresh can
// cancel and supersede it.
type refreshCycle struct {
	id     string
	cancel context.CancelFunc
}

// New creates a camera store wired to the given MediaMTX client and
// prober. A nil logger falls back to [slog.Default]; a nil metrics
// instance gets a private registry of its own.
//
// Callers must call [Store.Close] when done to flush and stop the
// notification debounce timer.
func New(client *mediamtx.Client, prober *probe.Prober, m *metrics.Metrics, cfg Config, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	if m == nil {
		m = metrics.New()
	}

	s := &Store{
		client:  client,
		prober:  prober,
		metrics: m,
		logger:  logger,
		cfg:     cfg,
		cameras: make(map[string]*camera),
		health:  make(map[string]healthRecord),
		cache:   newCache(),
	}
	s.hub = notify.NewHub(logger, m.CountListenerPanic)
	s.coalescer = notify.NewCoalescer(cfg.NotifyDelay, s.broadcast)
	return s
}

// broadcast is the coalescer callback: one debounced notification fanned
// out to every subscriber.
func (s *Store) broadcast() {
	s.metrics.CountNotification()
	s.hub.Broadcast()
}

// Subscribe registers fn to run after state changes. Notifications are
// debounced: subscribers get one callback per burst of changes, not one
// per change. The returned function removes the subscription and is safe
// to call more than once.
func (s *Store) Subscribe(fn func()) func() {
	return s.hub.Subscribe(fn)
}

// Close flushes any pending notification and stops the debounce timer.
// The store stays readable after Close; cycles and mutations should have
// stopped first.
func (s *Store) Close() {
	s.coalescer.Flush()
	s.coalescer.Stop()
}

// Refresh reconciles the camera set with MediaMTX.
//
// Without force, a refresh is skipped when a live cache entry exists (no
// network at all) and collapses to a no-op when another refresh is already
// in flight. With force, the cache is bypassed and any in-flight cycle is
// cancelled and superseded; the superseded cycle's partial results are
// discarded.
//
// A refresh that fails upstream keeps the last known camera list and
// returns the error. Stale data beats an empty fleet.
func (s *Store) Refresh(ctx context.Context, force bool) error {
	s.mu.Lock()
	if !force {
		if _, ok := s.cache.get(cacheKeyCameraList, time.Now()); ok {
			s.mu.Unlock()
			s.metrics.CountRefresh(refreshResultCached)
			return nil
		}
		if s.current != nil {
			s.mu.Unlock()
			s.metrics.CountRefresh(refreshResultCoalesced)
			return nil
		}
	} else if s.current != nil {
		s.logger.Debug("superseding in-flight refresh", "cycle_id", s.current.id)
		s.current.cancel()
	}

	cycleCtx, cancel := context.WithCancel(ctx)
	cyc := &refreshCycle{id: uuid.NewString(), cancel: cancel}
	s.current = cyc
	s.mu.Unlock()

	defer func() {
		cancel()
		s.mu.Lock()
		if s.current == cyc {
			s.current = nil
		}
		s.mu.Unlock()
	}()

	err := s.fetch(cycleCtx, cyc.id)
	switch {
	case err == nil:
		s.metrics.CountRefresh(refreshResultOK)
		return nil
	case errors.Is(err, context.Canceled):
		s.metrics.CountRefresh(refreshResultSuperseded)
		s.logger.Debug("refresh cycle cancelled", "cycle_id", cyc.id)
		return nil
	default:
		s.metrics.CountRefresh(refreshResultError)
		s.logger.Warn("refresh failed, keeping last known cameras",
			"cycle_id", cyc.id,
			"error", err,
		)
		return err
	}
}

// fetch performs one refresh cycle: list paths, fetch their configurations
// in batches, then merge into the camera set under lock.
func (s *Store) fetch(ctx context.Context, cycleID string) error {
	start := time.Now()

	items, err := s.client.ListPaths(ctx)
	if err != nil {
		return err
	}

	names := make([]string, len(items))
	for i, item := range items {
		names[i] = item.Name
	}

	configs := s.client.GetPathConfigs(ctx, names)
	if err := ctx.Err(); err != nil {
		// superseded or shut down mid-cycle: discard partial results
		return err
	}

	s.mu.Lock()
	changed := s.merge(configs)
	s.cache.set(cacheKeyCameraList, names, s.cfg.CacheTTL, time.Now())
	if changed {
		s.scheduleNotifyLocked()
	}
	s.publishStatsLocked()
	s.mu.Unlock()

	s.logger.Debug("refresh cycle complete",
		"cycle_id", cycleID,
		"cameras", len(names),
		"changed", changed,
		"duration", time.Since(start),
	)
	return nil
}

// merge reconciles fetched path configurations with the camera set.
// Existing cameras keep their operator state, metadata and last-seen
// timestamp; cameras that disappeared upstream are pruned together with
// their health records. Reports whether anything changed.
//
// Must be called with s.mu held.
func (s *Store) merge(configs []mediamtx.PathConfig) bool {
	changed := false
	seen := make(map[string]struct{}, len(configs))

	for _, conf := range configs {
		seen[conf.Name] = struct{}{}

		if cam, ok := s.cameras[conf.Name]; ok {
			// keep the last known source when this config fetch failed
			if !conf.Failed && cam.source != conf.Source {
				cam.source = conf.Source
				changed = true
			}
			continue
		}

		s.cameras[conf.Name] = &camera{
			id:        conf.Name,
			name:      conf.Name,
			source:    conf.Source,
			isActive:  true,
			hlsURL:    mediamtx.HLSManifestURL(s.cfg.PlaybackURL, conf.Name),
			webrtcURL: mediamtx.WHEPURL(s.cfg.WebRTCURL, conf.Name),
		}
		changed = true
	}

	for id := range s.cameras {
		if _, ok := seen[id]; !ok {
			delete(s.cameras, id)
			delete(s.health, id)
			changed = true
		}
	}
	return changed
}

// ProbeHealth probes every known camera once, concurrently, and folds the
// settled outcomes into the health records.
//
// All probes run to completion regardless of individual failures. Outcomes
// for cameras removed while their probe was in flight are discarded rather
// than resurrecting the camera; aborted probes leave their camera
// untouched. Status and error-count changes schedule a debounced
// notification.
func (s *Store) ProbeHealth(ctx context.Context) {
	s.mu.RLock()
	targets := make([]probe.Target, 0, len(s.cameras))
	for id, cam := range s.cameras {
		targets = append(targets, probe.Target{ID: id, URL: cam.hlsURL})
	}
	s.mu.RUnlock()

	if len(targets) == 0 {
		return
	}

	results := s.prober.ProbeAll(ctx, targets)

	s.mu.Lock()
	changed := false
	for _, res := range results {
		s.metrics.ObserveProbe(string(res.Outcome), res.Latency.Seconds())
		s.logger.Debug("probe settled",
			"camera", res.ID,
			"outcome", res.Outcome,
			"status_code", res.StatusCode,
			"latency", res.Latency,
		)

		if res.Outcome == probe.OutcomeAborted {
			continue
		}
		cam, ok := s.cameras[res.ID]
		if !ok {
			// removed while the probe was in flight
			continue
		}

		prev := s.health[res.ID].normalized()
		next := reconcile(prev, res.Outcome, !cam.lastSeen.IsZero(), s.cfg.FailureThreshold, res.CheckedAt)
		if res.Outcome == probe.OutcomeSuccess {
			cam.lastSeen = res.CheckedAt
		}
		s.health[res.ID] = next

		if next.status != prev.status || next.errorCount != prev.errorCount {
			changed = true
		}
		if next.status != prev.status {
			s.logger.Info("camera status changed",
				"camera", res.ID,
				"from", prev.status,
				"to", next.status,
				"error_count", next.errorCount,
			)
		}
	}
	if changed {
		s.scheduleNotifyLocked()
	}
	s.publishStatsLocked()
	s.mu.Unlock()
}

// SetActive marks a camera as selected (or deselected) for display.
// Returns false if the camera is unknown. Health is unaffected; inactive
// cameras keep being probed.
func (s *Store) SetActive(id string, active bool) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	cam, ok := s.cameras[id]
	if !ok {
		return false
	}
	if cam.isActive != active {
		cam.isActive = active
		s.mutatedLocked()
	}
	return true
}

// ToggleActive flips a camera's display selection and returns the new
// value. The second return is false if the camera is unknown.
func (s *Store) ToggleActive(id string) (bool, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cam, ok := s.cameras[id]
	if !ok {
		return false, false
	}
	cam.isActive = !cam.isActive
	s.mutatedLocked()
	return cam.isActive, true
}

// StopAll deselects every camera and returns how many were active.
func (s *Store) StopAll() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	stopped := 0
	for _, cam := range s.cameras {
		if cam.isActive {
			cam.isActive = false
			stopped++
		}
	}
	if stopped > 0 {
		s.mutatedLocked()
	}
	return stopped
}

// ActivateAllOnline selects every camera currently reconciled as online.
// Cameras in other states are left alone. Returns the number of cameras
// newly selected.
func (s *Store) ActivateAllOnline() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	activated := 0
	for id, cam := range s.cameras {
		if cam.isActive || s.health[id].status != StatusOnline {
			continue
		}
		cam.isActive = true
		activated++
	}
	if activated > 0 {
		s.mutatedLocked()
	}
	return activated
}

// Declare registers a camera locally without contacting MediaMTX. It is
// used at startup to seed cameras declared in configuration, so their
// metadata is in place before the first refresh merges upstream state.
// Cameras that already exist are left untouched.
func (s *Store) Declare(id, source string, metadata map[string]string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.cameras[id]; ok {
		return
	}
	s.cameras[id] = &camera{
		id:        id,
		name:      displayName(id, metadata),
		source:    source,
		isActive:  true,
		hlsURL:    mediamtx.HLSManifestURL(s.cfg.PlaybackURL, id),
		webrtcURL: mediamtx.WHEPURL(s.cfg.WebRTCURL, id),
		metadata:  copyStringMap(metadata),
	}
	s.mutatedLocked()
}

// AddCamera declares a new path in MediaMTX and registers the camera
// locally with the given metadata. Returns false if MediaMTX rejected the
// path. On success a forced refresh runs so the camera is visible
// immediately; a refresh failure at that point is logged but does not undo
// the addition.
func (s *Store) AddCamera(ctx context.Context, id string, req mediamtx.AddPathRequest, metadata map[string]string) bool {
	if !s.client.AddPath(ctx, id, req) {
		return false
	}

	s.mu.Lock()
	if _, ok := s.cameras[id]; !ok {
		s.cameras[id] = &camera{
			id:        id,
			name:      displayName(id, metadata),
			source:    req.Source,
			isActive:  true,
			hlsURL:    mediamtx.HLSManifestURL(s.cfg.PlaybackURL, id),
			webrtcURL: mediamtx.WHEPURL(s.cfg.WebRTCURL, id),
			metadata:  copyStringMap(metadata),
		}
	}
	s.mutatedLocked()
	s.mu.Unlock()

	if err := s.Refresh(ctx, true); err != nil {
		s.logger.Warn("refresh after adding camera failed", "camera", id, "error", err)
	}
	return true
}

// RemoveCamera deletes the path from MediaMTX and drops the camera and its
// health record. Returns false if MediaMTX rejected the deletion. Probe
// outcomes still in flight for the removed camera are discarded when they
// settle.
func (s *Store) RemoveCamera(ctx context.Context, id string) bool {
	if !s.client.DeletePath(ctx, id) {
		return false
	}

	s.mu.Lock()
	if _, ok := s.cameras[id]; ok {
		delete(s.cameras, id)
		delete(s.health, id)
		s.mutatedLocked()
	}
	s.mu.Unlock()
	return true
}

// ForceRefreshStatus clears every health record, putting the whole fleet
// back to checking, then runs a forced refresh followed by an immediate
// probe cycle so statuses repopulate from live evidence. The returned
// error is the refresh error, if any; probing proceeds regardless.
func (s *Store) ForceRefreshStatus(ctx context.Context) error {
	s.mu.Lock()
	if len(s.health) > 0 {
		clear(s.health)
		s.scheduleNotifyLocked()
	}
	s.cache.invalidate()
	s.publishStatsLocked()
	s.mu.Unlock()

	err := s.Refresh(ctx, true)
	s.ProbeHealth(ctx)
	return err
}

// Cameras returns a snapshot of every known camera, sorted by ID.
// The returned slice is a copy; modifications do not affect the store.
func (s *Store) Cameras() []Camera {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Camera, 0, len(s.cameras))
	for _, cam := range s.cameras {
		out = append(out, s.snapshotLocked(cam))
	}
	sortByID(out)
	return out
}

// ActiveCameras returns the cameras currently selected for display,
// sorted by ID.
func (s *Store) ActiveCameras() []Camera {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []Camera
	for _, cam := range s.cameras {
		if cam.isActive {
			out = append(out, s.snapshotLocked(cam))
		}
	}
	sortByID(out)
	return out
}

// OnlineCameras returns the cameras currently reconciled as online,
// sorted by ID.
func (s *Store) OnlineCameras() []Camera {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []Camera
	for id, cam := range s.cameras {
		if s.health[id].status == StatusOnline {
			out = append(out, s.snapshotLocked(cam))
		}
	}
	sortByID(out)
	return out
}

// CameraByID returns a snapshot of one camera. The second return is false
// if the camera is unknown.
func (s *Store) CameraByID(id string) (Camera, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	cam, ok := s.cameras[id]
	if !ok {
		return Camera{}, false
	}
	return s.snapshotLocked(cam), true
}

// Stats returns current fleet counts.
func (s *Store) Stats() Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.statsLocked()
}

// snapshotLocked joins a camera with its health record.
// Must be called with s.mu held (read or write).
func (s *Store) snapshotLocked(cam *camera) Camera {
	rec := s.health[cam.id].normalized()
	return Camera{
		ID:         cam.id,
		Name:       cam.name,
		Source:     cam.source,
		IsActive:   cam.isActive,
		Status:     rec.status,
		LastSeen:   cam.lastSeen,
		LastCheck:  rec.lastCheck,
		ErrorCount: rec.errorCount,
		HLSURL:     cam.hlsURL,
		WebRTCURL:  cam.webrtcURL,
		Metadata:   copyStringMap(cam.metadata),
	}
}

// statsLocked computes fleet counts. Must be called with s.mu held.
func (s *Store) statsLocked() Stats {
	st := Stats{Total: len(s.cameras)}
	for id, cam := range s.cameras {
		if cam.isActive {
			st.Active++
		}
		switch s.health[id].status {
		case StatusOnline:
			st.Online++
		case StatusOffline, StatusError:
			st.Errors++
		}
	}
	return st
}

// publishStatsLocked pushes fleet counts to the gauges.
// Must be called with s.mu held.
func (s *Store) publishStatsLocked() {
	st := s.statsLocked()
	s.metrics.SetCameraStats(st.Total, st.Online, st.Active, st.Errors)
}

// mutatedLocked records a local mutation: the cache is invalidated, a
// debounced notification is scheduled and the fleet gauges refresh.
// Must be called with s.mu held.
func (s *Store) mutatedLocked() {
	s.cache.invalidate()
	s.scheduleNotifyLocked()
	s.publishStatsLocked()
}

// scheduleNotifyLocked arms the debounced notification. The coalescer
// fires on its own goroutine, so listeners never run under the store lock.
func (s *Store) scheduleNotifyLocked() {
	s.coalescer.Trigger()
}

func sortByID(cams []Camera) {
	sort.Slice(cams, func(i, j int) bool { return cams[i].ID < cams[j].ID })
}

// displayName resolves a camera's display name: a "name" metadata key
// overrides the default of using the ID.
func displayName(id string, metadata map[string]string) string {
	if n := metadata["name"]; n != "" {
		return n
	}
	return id
}

func copyStringMap(m map[string]string) map[string]string {
	if len(m) == 0 {
		return nil
	}
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
