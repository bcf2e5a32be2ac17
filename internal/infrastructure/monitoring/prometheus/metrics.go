// Package prometheus defines the analysis core's metric instruments.  A
// single Metrics value is created at startup and injected into the pipeline,
// cache, and HTTP layers.
package prometheus

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Namespace prefixes every metric exported by the analysis core.
const Namespace = "alfaia"

// Default histogram buckets.
var (
	DefaultAnalyzeDurationBuckets = []float64{.01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10}
	DefaultHTTPDurationBuckets    = []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5}
	DefaultIssueCountBuckets      = []float64{0, 1, 2, 3, 5, 8, 13, 21, 34}
)

// Metrics holds all metric instruments of the analysis core.
type Metrics struct {
	// Pipeline
	AnalyzeTotal        *prometheus.CounterVec // outcome: "ok" | "input_error" | "partial"
	AnalyzeDuration     prometheus.Histogram
	AnalyzerDuration    *prometheus.HistogramVec // analyzer: "morphology" | "rules" | "heuristics"
	AnalyzerFailures    *prometheus.CounterVec   // analyzer, code
	IssuesSurfaced      *prometheus.CounterVec   // category
	IssuesPerSubmission prometheus.Histogram
	SessionScore        prometheus.Histogram

	// Cache
	CacheHitsTotal   *prometheus.CounterVec // analyzer
	CacheMissesTotal *prometheus.CounterVec // analyzer
	CacheEvictions   *prometheus.CounterVec // analyzer

	// HTTP
	HTTPRequestsTotal   *prometheus.CounterVec // method, path, status
	HTTPRequestDuration *prometheus.HistogramVec

	// Outbound
	ScoreRecordsPersisted *prometheus.CounterVec // sink: "postgres" | "kafka", outcome
}

// NewMetrics constructs and registers all instruments on reg.  Passing
// prometheus.NewRegistry() gives an isolated set for tests; production code
// passes prometheus.DefaultRegisterer.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := func(name, help string, labels ...string) *prometheus.CounterVec {
		c := prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace, Name: name, Help: help,
		}, labels)
		reg.MustRegister(c)
		return c
	}

	m := &Metrics{}

	m.AnalyzeTotal = factory("analyze_total", "Analyze calls by outcome", "outcome")
	m.AnalyzeDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: Namespace, Name: "analyze_duration_seconds",
		Help: "Wall time of the full analyze pipeline", Buckets: DefaultAnalyzeDurationBuckets,
	})
	reg.MustRegister(m.AnalyzeDuration)

	m.AnalyzerDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: Namespace, Name: "analyzer_duration_seconds",
		Help: "Wall time per analyzer invocation", Buckets: DefaultAnalyzeDurationBuckets,
	}, []string{"analyzer"})
	reg.MustRegister(m.AnalyzerDuration)

	m.AnalyzerFailures = factory("analyzer_failures_total", "Analyzer failures by code", "analyzer", "code")
	m.IssuesSurfaced = factory("issues_surfaced_total", "Reconciled issues surfaced by category", "category")

	m.IssuesPerSubmission = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: Namespace, Name: "issues_per_submission",
		Help: "Reconciled issue count per submission", Buckets: DefaultIssueCountBuckets,
	})
	reg.MustRegister(m.IssuesPerSubmission)

	m.SessionScore = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: Namespace, Name: "session_score",
		Help: "Session score distribution", Buckets: prometheus.LinearBuckets(0, 10, 11),
	})
	reg.MustRegister(m.SessionScore)

	m.CacheHitsTotal = factory("cache_hits_total", "Analysis cache hits", "analyzer")
	m.CacheMissesTotal = factory("cache_misses_total", "Analysis cache misses", "analyzer")
	m.CacheEvictions = factory("cache_evictions_total", "Analysis cache evictions", "analyzer")

	m.HTTPRequestsTotal = factory("http_requests_total", "HTTP requests", "method", "path", "status")
	m.HTTPRequestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: Namespace, Name: "http_request_duration_seconds",
		Help: "HTTP request duration", Buckets: DefaultHTTPDurationBuckets,
	}, []string{"method", "path"})
	reg.MustRegister(m.HTTPRequestDuration)

	m.ScoreRecordsPersisted = factory("score_records_total", "Score records handed to sinks", "sink", "outcome")

	return m
}

// NewNopMetrics returns a Metrics instance registered on a throwaway
// registry.  Handy for tests and for components constructed without a
// metrics pipeline.
func NewNopMetrics() *Metrics {
	return NewMetrics(prometheus.NewRegistry())
}

// ObserveAnalyzer records one analyzer invocation.
func (m *Metrics) ObserveAnalyzer(analyzer string, d time.Duration, err error) {
	m.AnalyzerDuration.WithLabelValues(analyzer).Observe(d.Seconds())
	if err != nil {
		m.AnalyzerFailures.WithLabelValues(analyzer, "error").Inc()
	}
}
