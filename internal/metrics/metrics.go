package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the host
type Metrics struct {
	registry *prometheus.Registry

	// Capability dispatch metrics
	CapabilityCallsTotal   *prometheus.CounterVec
	CapabilityCallDuration *prometheus.HistogramVec
	AccessDeniedTotal      *prometheus.CounterVec

	// Plugin metrics
	PluginsLoaded       prometheus.Gauge
	LifecycleCallsTotal *prometheus.CounterVec

	// Event metrics
	SubscriptionsActive  prometheus.Gauge
	EventsPublishedTotal *prometheus.CounterVec

	// Boot and locale metrics
	BootItemsRunTotal  *prometheus.CounterVec
	LocaleReloadsTotal *prometheus.CounterVec
}

// NewMetrics creates and registers all metrics
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()

	m := &Metrics{
		registry: registry,

		CapabilityCallsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "phobos_capability_calls_total",
				Help: "Total number of capability calls handled by the host",
			},
			[]string{"capability", "status"},
		),
		CapabilityCallDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "phobos_capability_call_duration_seconds",
				Help:    "Duration of capability calls in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"capability"},
		),
		AccessDeniedTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "phobos_access_denied_total",
				Help: "Total number of capability calls refused by the trust policy",
			},
			[]string{"capability"},
		),

		PluginsLoaded: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "phobos_plugins_loaded",
				Help: "Number of plugins currently installed in the host",
			},
		),
		LifecycleCallsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "phobos_lifecycle_calls_total",
				Help: "Total number of lifecycle callbacks invoked on plugins",
			},
			[]string{"stage", "status"},
		),

		SubscriptionsActive: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "phobos_subscriptions_active",
				Help: "Number of event subscriptions held by the host",
			},
		),
		EventsPublishedTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "phobos_events_published_total",
				Help: "Total number of events published by category",
			},
			[]string{"category"},
		),

		BootItemsRunTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "phobos_boot_items_run_total",
				Help: "Total number of boot items executed at startup",
			},
			[]string{"status"},
		),
		LocaleReloadsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "phobos_locale_reloads_total",
				Help: "Total number of locale catalog reloads",
			},
			[]string{"status"},
		),
	}

	m.registerMetrics()

	return m
}

// registerMetrics registers all metrics with the registry
func (m *Metrics) registerMetrics() {
	m.registry.MustRegister(m.CapabilityCallsTotal)
	m.registry.MustRegister(m.CapabilityCallDuration)
	m.registry.MustRegister(m.AccessDeniedTotal)

	m.registry.MustRegister(m.PluginsLoaded)
	m.registry.MustRegister(m.LifecycleCallsTotal)

	m.registry.MustRegister(m.SubscriptionsActive)
	m.registry.MustRegister(m.EventsPublishedTotal)

	m.registry.MustRegister(m.BootItemsRunTotal)
	m.registry.MustRegister(m.LocaleReloadsTotal)
}

// ObserveCall records one capability call. A nil receiver is a no-op so
// callers can run without metrics.
func (m *Metrics) ObserveCall(capability, status string, d time.Duration) {
	if m == nil {
		return
	}
	m.CapabilityCallsTotal.WithLabelValues(capability, status).Inc()
	m.CapabilityCallDuration.WithLabelValues(capability).Observe(d.Seconds())
	if status == StatusDenied {
		m.AccessDeniedTotal.WithLabelValues(capability).Inc()
	}
}

// ObserveLifecycle records one lifecycle callback
func (m *Metrics) ObserveLifecycle(stage, status string) {
	if m == nil {
		return
	}
	m.LifecycleCallsTotal.WithLabelValues(stage, status).Inc()
}

// Call statuses
const (
	StatusSuccess = "success"
	StatusFailure = "failure"
	StatusError   = "error"
	StatusDenied  = "denied"
)

// Handler returns an HTTP handler for the metrics endpoint
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{
		EnableOpenMetrics: true,
	})
}

// Registry returns the Prometheus registry
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}
