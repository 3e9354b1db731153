package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Manager owns the service's collectors. A nil or disabled Manager accepts
// every Record call and does nothing.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	enabled          bool
	registry         *prometheus.Registry

	// HTTP
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// Layout
	layoutsBuilt   *prometheus.CounterVec
	layoutTracks   *prometheus.HistogramVec
	layoutRejected *prometheus.CounterVec
	viewCache      *prometheus.CounterVec

	// Export
	exports *prometheus.CounterVec

	// Catalog
	catalogReloads    *prometheus.CounterVec
	catalogEvents     prometheus.Gauge
	catalogLastReload prometheus.Gauge
}

// NewManager creates a metrics manager registering on a fresh registry
// unless WithRegistry is given.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "udhayam",
		subsystem:        "schedule",
		histogramBuckets: []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000},
		enabled:          true,
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.registry == nil {
		m.registry = prometheus.NewRegistry()
		m.registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
	}
	m.initializeMetrics()
	return m
}

func (m *Manager) initializeMetrics() {
	auto := promauto.With(m.registry)

	m.httpRequests = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests by endpoint and method",
		},
		[]string{"endpoint", "method", "status_code"},
	)

	m.httpRequestDuration = auto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "http_request_duration_milliseconds",
			Help:      "HTTP request duration in milliseconds",
			Buckets:   m.histogramBuckets,
		},
		[]string{"endpoint", "method", "status_code"},
	)

	m.layoutsBuilt = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "layouts_built_total",
			Help:      "Number of day layouts computed, by category",
		},
		[]string{"category"},
	)

	m.layoutTracks = auto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "layout_tracks",
			Help:      "Tracks needed per computed layout",
			Buckets:   []float64{0, 1, 2, 3, 4, 6, 8},
		},
		[]string{"category"},
	)

	m.layoutRejected = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "layout_rejected_events_total",
			Help:      "Events left out of a layout because of unusable times",
		},
		[]string{"category"},
	)

	m.viewCache = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "view_cache_lookups_total",
			Help:      "View cache lookups by result (hit or miss)",
		},
		[]string{"result"},
	)

	m.exports = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "exports_total",
			Help:      "Schedule downloads by format",
		},
		[]string{"format"},
	)

	m.catalogReloads = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: "catalog",
			Name:      "reloads_total",
			Help:      "Catalog reload attempts by source and result",
		},
		[]string{"source", "result"},
	)

	m.catalogEvents = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: "catalog",
		Name:      "events",
		Help:      "Events in the active catalog",
	})

	m.catalogLastReload = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: "catalog",
		Name:      "last_reload_unix",
		Help:      "Unix time of the last successful catalog reload",
	})
}

func (m *Manager) on() bool {
	return m != nil && m.enabled
}

// Registry returns the registry the collectors live on.
func (m *Manager) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Manager) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// RecordHTTPRequest records one served request.
func (m *Manager) RecordHTTPRequest(endpoint, method string, statusCode int, d time.Duration) {
	if !m.on() {
		return
	}
	code := strconv.Itoa(statusCode)
	m.httpRequests.WithLabelValues(endpoint, method, code).Inc()
	m.httpRequestDuration.WithLabelValues(endpoint, method, code).Observe(float64(d.Milliseconds()))
}

// RecordLayout records a computed day layout.
func (m *Manager) RecordLayout(category string, tracks, rejected int) {
	if !m.on() {
		return
	}
	m.layoutsBuilt.WithLabelValues(category).Inc()
	m.layoutTracks.WithLabelValues(category).Observe(float64(tracks))
	if rejected > 0 {
		m.layoutRejected.WithLabelValues(category).Add(float64(rejected))
	}
}

// RecordViewCache records a view cache lookup.
func (m *Manager) RecordViewCache(hit bool) {
	if !m.on() {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	m.viewCache.WithLabelValues(result).Inc()
}

// RecordExport records a download in the given format ("csv", "ics", "svg").
func (m *Manager) RecordExport(format string) {
	if !m.on() {
		return
	}
	m.exports.WithLabelValues(format).Inc()
}

// RecordCatalogReload records a reload attempt. events is the size of the
// active catalog afterwards.
func (m *Manager) RecordCatalogReload(source string, err error, events int) {
	if !m.on() {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	} else {
		m.catalogLastReload.SetToCurrentTime()
	}
	m.catalogReloads.WithLabelValues(source, result).Inc()
	m.catalogEvents.Set(float64(events))
}
