package observability

import (
	"context"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "netplot"

// PrometheusHooks implements every hook interface by updating Prometheus
// collectors.
type PrometheusHooks struct {
	synthesisTotal    *prometheus.CounterVec
	synthesisDuration *prometheus.HistogramVec
	renderTotal       *prometheus.CounterVec
	renderDuration    *prometheus.HistogramVec
	renderBytes       *prometheus.HistogramVec
	cacheOps          *prometheus.CounterVec
	requests          *prometheus.CounterVec
	requestDuration   *prometheus.HistogramVec
}

// NewPrometheusHooks creates the collectors and registers them with reg.
// It panics if registration fails, like [prometheus.MustRegister].
func NewPrometheusHooks(reg prometheus.Registerer) *PrometheusHooks {
	h := &PrometheusHooks{
		synthesisTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "synthesis_total",
			Help:      "Coordinate synthesis runs by engine and result.",
		}, []string{"engine", "result"}),
		synthesisDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "synthesis_duration_seconds",
			Help:      "Time spent synthesizing bus coordinates.",
			Buckets:   prometheus.ExponentialBuckets(0.001, 4, 10),
		}, []string{"engine"}),
		renderTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "render_total",
			Help:      "Rendered canvases by format and result.",
		}, []string{"format", "result"}),
		renderDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "render_duration_seconds",
			Help:      "Time spent rendering a canvas.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"format"}),
		renderBytes: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "render_bytes",
			Help:      "Size of rendered canvases.",
			Buckets:   prometheus.ExponentialBuckets(1024, 4, 8),
		}, []string{"format"}),
		cacheOps: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_operations_total",
			Help:      "Cache lookups and writes by key type and outcome.",
		}, []string{"key_type", "op"}),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Served HTTP requests by method, route and status.",
		}, []string{"method", "route", "status"}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}
	reg.MustRegister(
		h.synthesisTotal, h.synthesisDuration,
		h.renderTotal, h.renderDuration, h.renderBytes,
		h.cacheOps,
		h.requests, h.requestDuration,
	)
	return h
}

func result(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

func (h *PrometheusHooks) OnSynthesisStart(context.Context, string, int) {}

func (h *PrometheusHooks) OnSynthesisComplete(_ context.Context, engine string, _ int, d time.Duration, err error) {
	h.synthesisTotal.WithLabelValues(engine, result(err)).Inc()
	h.synthesisDuration.WithLabelValues(engine).Observe(d.Seconds())
}

func (h *PrometheusHooks) OnRenderComplete(_ context.Context, format string, size int, d time.Duration, err error) {
	h.renderTotal.WithLabelValues(format, result(err)).Inc()
	h.renderDuration.WithLabelValues(format).Observe(d.Seconds())
	if err == nil {
		h.renderBytes.WithLabelValues(format).Observe(float64(size))
	}
}

func (h *PrometheusHooks) OnCacheHit(_ context.Context, keyType string) {
	h.cacheOps.WithLabelValues(keyType, "hit").Inc()
}

func (h *PrometheusHooks) OnCacheMiss(_ context.Context, keyType string) {
	h.cacheOps.WithLabelValues(keyType, "miss").Inc()
}

func (h *PrometheusHooks) OnCacheSet(_ context.Context, keyType string, _ int) {
	h.cacheOps.WithLabelValues(keyType, "set").Inc()
}

func (h *PrometheusHooks) OnRequest(_ context.Context, method, route string, status int, d time.Duration) {
	h.requests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	h.requestDuration.WithLabelValues(method, route).Observe(d.Seconds())
}

var (
	_ PlotHooks   = (*PrometheusHooks)(nil)
	_ CacheHooks  = (*PrometheusHooks)(nil)
	_ ServerHooks = (*PrometheusHooks)(nil)
)
