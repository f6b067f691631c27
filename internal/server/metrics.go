package server

import (
	"context"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/matzehuels/netdiag/pkg/observability"
)

const namespace = "netdiag"

// Metrics exports pipeline, cache and HTTP events to Prometheus. It
// implements the observability hook interfaces.
type Metrics struct {
	Parses         *prometheus.CounterVec
	ParseDuration  prometheus.Histogram
	Devices        prometheus.Histogram
	Renders        *prometheus.CounterVec
	RenderDuration *prometheus.HistogramVec
	RenderBytes    *prometheus.CounterVec
	CacheEvents    *prometheus.CounterVec
	Requests       *prometheus.CounterVec
	RequestLatency *prometheus.HistogramVec
	RequestErrors  *prometheus.CounterVec
	InFlight       prometheus.Gauge
}

// NewMetrics registers the netdiag metrics with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		Parses: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "pipeline",
			Name:      "parses_total",
			Help:      "Tables parsed, by result",
		}, []string{"result"}),
		ParseDuration: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "pipeline",
			Name:      "parse_duration_seconds",
			Help:      "Time to build a topology from a table",
			Buckets:   prometheus.ExponentialBuckets(0.0005, 4, 8),
		}),
		Devices: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "pipeline",
			Name:      "topology_devices",
			Help:      "Devices per parsed topology",
			Buckets:   prometheus.ExponentialBuckets(1, 2, 10),
		}),
		Renders: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "pipeline",
			Name:      "renders_total",
			Help:      "Diagrams rendered, by renderer, format and result",
		}, []string{"renderer", "format", "result"}),
		RenderDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "pipeline",
			Name:      "render_duration_seconds",
			Help:      "Time to render one output format",
			Buckets:   prometheus.ExponentialBuckets(0.001, 4, 8),
		}, []string{"renderer", "format"}),
		RenderBytes: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "pipeline",
			Name:      "render_bytes_total",
			Help:      "Bytes of rendered output",
		}, []string{"format"}),
		CacheEvents: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "cache",
			Name:      "events_total",
			Help:      "Cache hits, misses and sets by key type",
		}, []string{"type", "event"}),
		Requests: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "HTTP requests by route and status",
		}, []string{"method", "route", "status"}),
		RequestLatency: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
		RequestErrors: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "errors_total",
			Help:      "Failed HTTP requests by error code",
		}, []string{"route", "code"}),
		InFlight: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "in_flight_requests",
			Help:      "Requests currently being served",
		}),
	}
}

// Install registers m as the global pipeline, cache and HTTP hooks.
func (m *Metrics) Install() {
	observability.SetPipelineHooks(m)
	observability.SetCacheHooks(m)
	observability.SetHTTPHooks(m)
}

func result(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

// OnParseStart implements observability.PipelineHooks.
func (m *Metrics) OnParseStart(context.Context, string) {}

// OnParseComplete implements observability.PipelineHooks.
func (m *Metrics) OnParseComplete(_ context.Context, _ string, devices, _ int, d time.Duration, err error) {
	m.Parses.WithLabelValues(result(err)).Inc()
	if err == nil {
		m.ParseDuration.Observe(d.Seconds())
		m.Devices.Observe(float64(devices))
	}
}

// OnRenderStart implements observability.PipelineHooks.
func (m *Metrics) OnRenderStart(context.Context, string, string) {}

// OnRenderComplete implements observability.PipelineHooks.
func (m *Metrics) OnRenderComplete(_ context.Context, renderer, format string, size int, d time.Duration, err error) {
	m.Renders.WithLabelValues(renderer, format, result(err)).Inc()
	if err == nil {
		m.RenderDuration.WithLabelValues(renderer, format).Observe(d.Seconds())
		m.RenderBytes.WithLabelValues(format).Add(float64(size))
	}
}

// OnCacheHit implements observability.CacheHooks.
func (m *Metrics) OnCacheHit(_ context.Context, keyType string) {
	m.CacheEvents.WithLabelValues(keyType, "hit").Inc()
}

// OnCacheMiss implements observability.CacheHooks.
func (m *Metrics) OnCacheMiss(_ context.Context, keyType string) {
	m.CacheEvents.WithLabelValues(keyType, "miss").Inc()
}

// OnCacheSet implements observability.CacheHooks.
func (m *Metrics) OnCacheSet(_ context.Context, keyType string, _ int) {
	m.CacheEvents.WithLabelValues(keyType, "set").Inc()
}

// OnRequest implements observability.HTTPHooks.
func (m *Metrics) OnRequest(context.Context, string, string) {
	m.InFlight.Inc()
}

// OnResponse implements observability.HTTPHooks.
func (m *Metrics) OnResponse(_ context.Context, method, route string, status int, d time.Duration) {
	m.InFlight.Dec()
	m.Requests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.RequestLatency.WithLabelValues(method, route).Observe(d.Seconds())
}

// OnError implements observability.HTTPHooks.
func (m *Metrics) OnError(_ context.Context, _, route, code string) {
	m.RequestErrors.WithLabelValues(route, code).Inc()
}

var (
	_ observability.PipelineHooks = (*Metrics)(nil)
	_ observability.CacheHooks    = (*Metrics)(nil)
	_ observability.HTTPHooks     = (*Metrics)(nil)
)
