package server

import (
	"context"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/matzehuels/deploygraph/pkg/observability"
)

// Metrics records build, compile and request events as Prometheus metrics.
// It implements the observability hook interfaces; call [Metrics.Install] to
// receive events.
type Metrics struct {
	builds        *prometheus.CounterVec
	buildDuration prometheus.Histogram
	graphNodes    prometheus.Histogram
	batches       prometheus.Counter

	compiles         *prometheus.CounterVec
	compileDuration  prometheus.Histogram
	compileDocuments prometheus.Histogram

	requests        *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
}

var (
	_ observability.BuildHooks   = (*Metrics)(nil)
	_ observability.CompileHooks = (*Metrics)(nil)
	_ observability.HTTPHooks    = (*Metrics)(nil)
)

// NewMetrics creates the collectors and registers them with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		builds: f.NewCounterVec(prometheus.CounterOpts{
			Name: "deploygraph_builds_total",
			Help: "Graph builds by result",
		}, []string{"result"}),
		buildDuration: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "deploygraph_build_duration_seconds",
			Help:    "Graph build duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.0001, 2, 14), // 0.1ms to ~800ms
		}),
		graphNodes: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "deploygraph_graph_nodes",
			Help:    "Number of nodes per built graph",
			Buckets: []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000},
		}),
		batches: f.NewCounter(prometheus.CounterOpts{
			Name: "deploygraph_batches_total",
			Help: "Models processed by graph builds",
		}),
		compiles: f.NewCounterVec(prometheus.CounterOpts{
			Name: "deploygraph_compiles_total",
			Help: "Document compilations by result",
		}, []string{"result"}),
		compileDuration: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "deploygraph_compile_duration_seconds",
			Help:    "Compilation duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.0005, 2, 12), // 0.5ms to ~1s
		}),
		compileDocuments: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "deploygraph_compile_documents",
			Help:    "Documents per compilation",
			Buckets: []float64{1, 2, 5, 10, 20, 50},
		}),
		requests: f.NewCounterVec(prometheus.CounterOpts{
			Name: "deploygraph_http_requests_total",
			Help: "HTTP requests by method, route and status code",
		}, []string{"method", "route", "code"}),
		requestDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "deploygraph_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"route"}),
	}
}

// Install registers m as the process-wide build, compile and HTTP hooks.
func (m *Metrics) Install() {
	observability.SetBuildHooks(m)
	observability.SetCompileHooks(m)
	observability.SetHTTPHooks(m)
}

func (m *Metrics) OnBuildStart(context.Context, string) {}

func (m *Metrics) OnBatch(context.Context, string, int, int, int) {
	m.batches.Inc()
}

func (m *Metrics) OnBuildComplete(_ context.Context, _ string, stats observability.BuildStats, d time.Duration, err error) {
	m.builds.WithLabelValues(result(err)).Inc()
	m.buildDuration.Observe(d.Seconds())
	if err == nil {
		m.graphNodes.Observe(float64(stats.Nodes))
	}
}

func (m *Metrics) OnCompile(_ context.Context, _ string, documents, _ int, d time.Duration, err error) {
	m.compiles.WithLabelValues(result(err)).Inc()
	m.compileDuration.Observe(d.Seconds())
	if err == nil {
		m.compileDocuments.Observe(float64(documents))
	}
}

func (m *Metrics) OnResponse(_ context.Context, method, route string, status int, d time.Duration) {
	m.requests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.requestDuration.WithLabelValues(route).Observe(d.Seconds())
}

func result(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
