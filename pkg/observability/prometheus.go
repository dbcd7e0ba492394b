package observability

import (
	"context"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	stageDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "componentscope_stage_duration_seconds",
		Help:    "Pipeline stage duration in seconds",
		Buckets: prometheus.ExponentialBuckets(0.0005, 2, 14), // 0.5ms to ~4s
	}, []string{"stage"})

	stageTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "componentscope_stage_total",
		Help: "Pipeline stages run by stage and result",
	}, []string{"stage", "result"})

	cyclesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "componentscope_cycles_total",
		Help: "Component containment cycles detected",
	})

	runComponents = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "componentscope_run_components",
		Help:    "Components per analysis run",
		Buckets: []float64{1, 10, 50, 100, 250, 500, 1000, 5000},
	})

	runTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "componentscope_runs_total",
		Help: "Analysis runs by result",
	}, []string{"result"})

	cacheEvents = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "componentscope_cache_events_total",
		Help: "Cache events by key type and event",
	}, []string{"key_type", "event"})

	cacheBytes = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "componentscope_cache_written_bytes_total",
		Help: "Bytes written to the cache by key type",
	}, []string{"key_type"})

	httpRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "componentscope_http_client_requests_total",
		Help: "Outgoing HTTP requests by host and status",
	}, []string{"host", "status"})

	httpDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "componentscope_http_client_duration_seconds",
		Help:    "Outgoing HTTP request duration in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"host"})
)

// PrometheusHooks records pipeline, cache and HTTP events as Prometheus
// metrics. All instances share the same collectors.
type PrometheusHooks struct{}

// NewPrometheusHooks returns hooks backed by the default Prometheus registry.
func NewPrometheusHooks() *PrometheusHooks { return &PrometheusHooks{} }

// Install registers h for every hook category.
func (h *PrometheusHooks) Install() {
	SetPipelineHooks(h)
	SetCacheHooks(h)
	SetHTTPHooks(h)
}

func result(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

func (*PrometheusHooks) OnStageStart(context.Context, string) {}

func (*PrometheusHooks) OnStageComplete(_ context.Context, stage string, d time.Duration, err error) {
	stageDuration.WithLabelValues(stage).Observe(d.Seconds())
	stageTotal.WithLabelValues(stage, result(err)).Inc()
}

func (*PrometheusHooks) OnCycle(context.Context, []string) {
	cyclesTotal.Inc()
}

func (*PrometheusHooks) OnRunComplete(_ context.Context, components int, _ time.Duration, err error) {
	runTotal.WithLabelValues(result(err)).Inc()
	if err == nil {
		runComponents.Observe(float64(components))
	}
}

func (*PrometheusHooks) OnCacheHit(_ context.Context, keyType string) {
	cacheEvents.WithLabelValues(keyType, "hit").Inc()
}

func (*PrometheusHooks) OnCacheMiss(_ context.Context, keyType string) {
	cacheEvents.WithLabelValues(keyType, "miss").Inc()
}

func (*PrometheusHooks) OnCacheSet(_ context.Context, keyType string, size int) {
	cacheEvents.WithLabelValues(keyType, "set").Inc()
	cacheBytes.WithLabelValues(keyType).Add(float64(size))
}

func (*PrometheusHooks) OnRequest(context.Context, string, string, string) {}

func (*PrometheusHooks) OnResponse(_ context.Context, _, host, _ string, status int, d time.Duration) {
	httpRequests.WithLabelValues(host, strconv.Itoa(status)).Inc()
	httpDuration.WithLabelValues(host).Observe(d.Seconds())
}

func (*PrometheusHooks) OnError(_ context.Context, _, host, _ string, _ error) {
	httpRequests.WithLabelValues(host, "error").Inc()
}
