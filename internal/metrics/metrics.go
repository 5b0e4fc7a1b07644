// Package metrics exposes Prometheus instrumentation for the monitor.
//
// This package is internal to camwatch. All collectors are registered on a
// private registry, so embedding applications and tests can create as many
// monitor instances as they like without duplicate-registration panics on
// the global registry.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all monitor metrics.
type Metrics struct {
	registry *prometheus.Registry

	probes         *prometheus.CounterVec
	probeDuration  prometheus.Histogram
	refreshes      *prometheus.CounterVec
	notifications  prometheus.Counter
	listenerPanics prometheus.Counter

	cameras        prometheus.Gauge
	camerasOnline  prometheus.Gauge
	camerasActive  prometheus.Gauge
	camerasErrored prometheus.Gauge
}

// New creates a Metrics instance with all collectors registered on a
// private registry.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),

		probes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "camwatch_probes_total",
			Help: "Settled liveness probes by outcome",
		}, []string{"outcome"}),

		probeDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "camwatch_probe_duration_seconds",
			Help:    "Latency of settled liveness probes",
			Buckets: prometheus.DefBuckets,
		}),

		refreshes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "camwatch_refresh_cycles_total",
			Help: "Refresh calls by disposition (ok, error, cached, coalesced, superseded)",
		}, []string{"result"}),

		notifications: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "camwatch_notifications_total",
			Help: "Coalesced change notifications broadcast to subscribers",
		}),

		listenerPanics: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "camwatch_listener_panics_total",
			Help: "Recovered panics in subscriber callbacks",
		}),

		cameras: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "camwatch_cameras",
			Help: "Known cameras",
		}),

		camerasOnline: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "camwatch_cameras_online",
			Help: "Cameras currently online",
		}),

		camerasActive: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "camwatch_cameras_active",
			Help: "Cameras with operator intent enabled",
		}),

		camerasErrored: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "camwatch_cameras_error",
			Help: "Cameras in error or offline state",
		}),
	}

	m.registry.MustRegister(
		m.probes,
		m.probeDuration,
		m.refreshes,
		m.notifications,
		m.listenerPanics,
		m.cameras,
		m.camerasOnline,
		m.camerasActive,
		m.camerasErrored,
	)

	return m
}

// ObserveProbe records a settled probe with its outcome and latency.
func (m *Metrics) ObserveProbe(outcome string, seconds float64) {
	m.probes.WithLabelValues(outcome).Inc()
	m.probeDuration.Observe(seconds)
}

// CountRefresh records the disposition of a refresh call.
func (m *Metrics) CountRefresh(result string) {
	m.refreshes.WithLabelValues(result).Inc()
}

// CountNotification records one coalesced broadcast.
func (m *Metrics) CountNotification() {
	m.notifications.Inc()
}

// CountListenerPanic records one recovered subscriber panic.
func (m *Metrics) CountListenerPanic() {
	m.listenerPanics.Inc()
}

// SetCameraStats updates the camera population gauges.
func (m *Metrics) SetCameraStats(total, online, active, errored int) {
	m.cameras.Set(float64(total))
	m.camerasOnline.Set(float64(online))
	m.camerasActive.Set(float64(active))
	m.camerasErrored.Set(float64(errored))
}

// Handler returns the Prometheus HTTP handler for the /metrics endpoint.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
