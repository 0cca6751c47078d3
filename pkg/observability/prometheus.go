package observability

import (
	"context"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// PrometheusHooks records hook events as Prometheus metrics.
// It implements MergeHooks, CacheHooks and HTTPHooks.
type PrometheusHooks struct {
	DecodesTotal        *prometheus.CounterVec
	MalformedLinesTotal prometheus.Counter
	MergesTotal         *prometheus.CounterVec
	MergeDuration       prometheus.Histogram
	MergedNodes         *prometheus.GaugeVec
	CacheEventsTotal    *prometheus.CounterVec
	CacheBytesWritten   *prometheus.CounterVec
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec
}

// NewPrometheusHooks creates the metrics and registers them on reg.
func NewPrometheusHooks(reg prometheus.Registerer) *PrometheusHooks {
	h := &PrometheusHooks{
		DecodesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "depmerge_manifest_decodes_total",
				Help: "Number of external manifest decodes by outcome.",
			},
			[]string{"outcome"},
		),
		MalformedLinesTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "depmerge_manifest_malformed_lines_total",
				Help: "Number of malformed manifest lines reported.",
			},
		),
		MergesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "depmerge_merges_total",
				Help: "Number of merge runs by status.",
			},
			[]string{"status"},
		),
		MergeDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "depmerge_merge_duration_seconds",
				Help:    "Time taken to merge dependency graphs.",
				Buckets: prometheus.DefBuckets,
			},
		),
		MergedNodes: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "depmerge_last_merge_nodes",
				Help: "Node counts observed in the last merge, by kind.",
			},
			[]string{"kind"},
		),
		CacheEventsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "depmerge_cache_events_total",
				Help: "Cache hits, misses and writes by backend.",
			},
			[]string{"backend", "event"},
		),
		CacheBytesWritten: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "depmerge_cache_written_bytes_total",
				Help: "Bytes written to the cache by backend.",
			},
			[]string{"backend"},
		),
		HTTPRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "depmerge_http_requests_total",
				Help: "Total number of HTTP requests.",
			},
			[]string{"method", "route", "status"},
		),
		HTTPRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "depmerge_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
	}

	reg.MustRegister(
		h.DecodesTotal,
		h.MalformedLinesTotal,
		h.MergesTotal,
		h.MergeDuration,
		h.MergedNodes,
		h.CacheEventsTotal,
		h.CacheBytesWritten,
		h.HTTPRequestsTotal,
		h.HTTPRequestDuration,
	)
	return h
}

func (h *PrometheusHooks) OnDecode(_ context.Context, _, malformed int) {
	outcome := "ok"
	if malformed > 0 {
		outcome = "malformed"
	}
	h.DecodesTotal.WithLabelValues(outcome).Inc()
}

func (h *PrometheusHooks) OnMalformedLine(context.Context, int) {
	h.MalformedLinesTotal.Inc()
}

func (h *PrometheusHooks) OnMergeComplete(_ context.Context, stats MergeStats, d time.Duration, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	h.MergesTotal.WithLabelValues(status).Inc()
	h.MergeDuration.Observe(d.Seconds())
	if err != nil {
		return
	}
	h.MergedNodes.WithLabelValues("external").Set(float64(stats.External))
	h.MergedNodes.WithLabelValues("internal").Set(float64(stats.Internal))
	h.MergedNodes.WithLabelValues("split").Set(float64(stats.Split))
	h.MergedNodes.WithLabelValues("added").Set(float64(stats.Added))
}

func (h *PrometheusHooks) OnCacheHit(_ context.Context, backend string) {
	h.CacheEventsTotal.WithLabelValues(backend, "hit").Inc()
}

func (h *PrometheusHooks) OnCacheMiss(_ context.Context, backend string) {
	h.CacheEventsTotal.WithLabelValues(backend, "miss").Inc()
}

func (h *PrometheusHooks) OnCacheSet(_ context.Context, backend string, size int) {
	h.CacheEventsTotal.WithLabelValues(backend, "set").Inc()
	h.CacheBytesWritten.WithLabelValues(backend).Add(float64(size))
}

func (h *PrometheusHooks) OnResponse(_ context.Context, method, route string, status int, d time.Duration) {
	h.HTTPRequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	h.HTTPRequestDuration.WithLabelValues(method, route).Observe(d.Seconds())
}

var (
	_ MergeHooks = (*PrometheusHooks)(nil)
	_ CacheHooks = (*PrometheusHooks)(nil)
	_ HTTPHooks  = (*PrometheusHooks)(nil)
)
