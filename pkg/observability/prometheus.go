package observability

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Prometheus implements ResolveHooks, CacheHooks and HTTPHooks by recording
// Prometheus metrics.
type Prometheus struct {
	// Resolution metrics
	ResolveTotal     *prometheus.CounterVec
	ResolveDuration  *prometheus.HistogramVec
	ResolveArtifacts *prometheus.HistogramVec
	ArtifactsTotal   prometheus.Counter
	MergeConflicts   prometheus.Counter

	// Cache metrics
	CacheHitsTotal   *prometheus.CounterVec
	CacheMissesTotal *prometheus.CounterVec
	CacheSetBytes    *prometheus.CounterVec

	// HTTP metrics
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec
	HTTPErrorsTotal     *prometheus.CounterVec
}

// NewPrometheus creates the metrics and registers them with registry.
func NewPrometheus(registry *prometheus.Registry) *Prometheus {
	m := &Prometheus{
		ResolveTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "buildpath_resolve_total",
				Help: "Total number of path resolutions",
			},
			[]string{"path", "status"},
		),
		ResolveDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "buildpath_resolve_duration_seconds",
				Help:    "Path resolution duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"path"},
		),
		ResolveArtifacts: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "buildpath_resolve_artifacts",
				Help:    "Number of artifacts in a resolved path",
				Buckets: prometheus.ExponentialBuckets(1, 2, 12),
			},
			[]string{"path"},
		),
		ArtifactsTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "buildpath_artifacts_added_total",
				Help: "Total number of artifacts added to resolved paths",
			},
		),
		MergeConflicts: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "buildpath_merge_conflicts_total",
				Help: "Total number of version conflicts found while merging paths",
			},
		),

		CacheHitsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "buildpath_cache_hits_total",
				Help: "Total number of cache hits",
			},
			[]string{"key_type"},
		),
		CacheMissesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "buildpath_cache_misses_total",
				Help: "Total number of cache misses",
			},
			[]string{"key_type"},
		),
		CacheSetBytes: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "buildpath_cache_set_bytes_total",
				Help: "Total bytes written to the cache",
			},
			[]string{"key_type"},
		),

		HTTPRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "buildpath_http_requests_total",
				Help: "Total number of outgoing HTTP requests",
			},
			[]string{"method", "host", "status"},
		),
		HTTPRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "buildpath_http_request_duration_seconds",
				Help:    "Outgoing HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "host"},
		),
		HTTPErrorsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "buildpath_http_errors_total",
				Help: "Total number of failed outgoing HTTP requests",
			},
			[]string{"method", "host"},
		),
	}

	registry.MustRegister(
		m.ResolveTotal,
		m.ResolveDuration,
		m.ResolveArtifacts,
		m.ArtifactsTotal,
		m.MergeConflicts,
		m.CacheHitsTotal,
		m.CacheMissesTotal,
		m.CacheSetBytes,
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.HTTPErrorsTotal,
	)
	return m
}

func (m *Prometheus) OnResolveStart(context.Context, string, string) {}

func (m *Prometheus) OnArtifact(context.Context, string, string) {
	m.ArtifactsTotal.Inc()
}

func (m *Prometheus) OnResolveComplete(_ context.Context, _, path string, artifacts int, d time.Duration, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	m.ResolveTotal.WithLabelValues(path, status).Inc()
	m.ResolveDuration.WithLabelValues(path).Observe(d.Seconds())
	if err == nil {
		m.ResolveArtifacts.WithLabelValues(path).Observe(float64(artifacts))
	}
}

func (m *Prometheus) OnMerge(_ context.Context, _ int, conflicts int) {
	m.MergeConflicts.Add(float64(conflicts))
}

func (m *Prometheus) OnCacheHit(_ context.Context, keyType string) {
	m.CacheHitsTotal.WithLabelValues(keyType).Inc()
}

func (m *Prometheus) OnCacheMiss(_ context.Context, keyType string) {
	m.CacheMissesTotal.WithLabelValues(keyType).Inc()
}

func (m *Prometheus) OnCacheSet(_ context.Context, keyType string, size int) {
	m.CacheSetBytes.WithLabelValues(keyType).Add(float64(size))
}

func (m *Prometheus) OnRequest(context.Context, string, string, string) {}

func (m *Prometheus) OnResponse(_ context.Context, method, host, _ string, statusCode int, d time.Duration) {
	m.HTTPRequestsTotal.WithLabelValues(method, host, statusClass(statusCode)).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, host).Observe(d.Seconds())
}

func (m *Prometheus) OnError(_ context.Context, method, host, _ string, _ error) {
	m.HTTPErrorsTotal.WithLabelValues(method, host).Inc()
}

// WriteTextfile writes the current state of registry in the node-exporter
// textfile format.
func WriteTextfile(path string, registry *prometheus.Registry) error {
	return prometheus.WriteToTextfile(path, registry)
}

func statusClass(code int) string {
	switch {
	case code >= 500:
		return "5xx"
	case code >= 400:
		return "4xx"
	case code >= 300:
		return "3xx"
	default:
		return "2xx"
	}
}
