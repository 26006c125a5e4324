// Package telemetry wires the pipeline's operational signals: Prometheus
// counters/histograms for run-level metrics, and the OpenTelemetry tracer
// provider that pkg/engine's per-node spans attach to.
package telemetry

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds every Prometheus collector the pipeline reports against. A
// process registers exactly one Metrics and shares it across the engine,
// the LLM gateway, and the retrieval layer.
type Metrics struct {
	registry *prometheus.Registry

	RunsTotal       *prometheus.CounterVec
	NodeDuration    *prometheus.HistogramVec
	LLMCallsTotal   *prometheus.CounterVec
	ArticlesFetched *prometheus.CounterVec
	ReviewScore     *prometheus.HistogramVec
}

// NewMetrics registers a fresh collector set against its own registry
// (rather than the global default) so repeated test runs in the same
// process never collide on duplicate registration.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		registry: reg,
		RunsTotal: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Namespace: "newsletter",
			Name:      "runs_total",
			Help:      "Total pipeline runs, labeled by terminal outcome.",
		}, []string{"outcome"}),
		NodeDuration: promauto.With(reg).NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "newsletter",
			Name:      "node_duration_seconds",
			Help:      "Wall-clock duration of each engine node execution.",
			Buckets:   prometheus.ExponentialBuckets(0.1, 2, 12),
		}, []string{"node"}),
		LLMCallsTotal: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Namespace: "newsletter",
			Name:      "llm_calls_total",
			Help:      "LLM completion calls, labeled by provider and outcome.",
		}, []string{"provider", "outcome"}),
		ArticlesFetched: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Namespace: "newsletter",
			Name:      "articles_fetched_total",
			Help:      "Articles returned by retrieval, labeled by topic.",
		}, []string{"topic"}),
		ReviewScore: promauto.With(reg).NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "newsletter",
			Name:      "review_score",
			Help:      "Review verdict scores, labeled by topic.",
			Buckets:   prometheus.LinearBuckets(0, 0.1, 11),
		}, []string{"topic"}),
	}
	return m
}

// ObserveNodeDuration records one node execution's wall-clock time.
func (m *Metrics) ObserveNodeDuration(node string, d time.Duration) {
	m.NodeDuration.WithLabelValues(node).Observe(d.Seconds())
}

// IncLLMCall records one gateway completion attempt against a single
// provider. outcome is "ok" or "error".
func (m *Metrics) IncLLMCall(provider, outcome string) {
	m.LLMCallsTotal.WithLabelValues(provider, outcome).Inc()
}

// AddArticlesFetched records how many articles one topic's retrieval round
// returned.
func (m *Metrics) AddArticlesFetched(topic string, n int) {
	if n <= 0 {
		return
	}
	m.ArticlesFetched.WithLabelValues(topic).Add(float64(n))
}

// ObserveReviewScore records one topic's review verdict score.
func (m *Metrics) ObserveReviewScore(topic string, score float64) {
	m.ReviewScore.WithLabelValues(topic).Observe(score)
}

// IncRun records one run's terminal outcome ("completed", "failed").
func (m *Metrics) IncRun(outcome string) {
	m.RunsTotal.WithLabelValues(outcome).Inc()
}

// Handler exposes the registry in Prometheus exposition format, suitable
// for mounting at /metrics.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
