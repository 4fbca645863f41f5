package telemetry

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics is the process's Prometheus metric set, one instance per
// engine. Field names mirror the operations named in spec.md §6
// ("expose storage op counts, decay run counts, consolidation quality,
// validation pass rate, retrieval latency").
type Metrics struct {
	registry *prometheus.Registry

	StorageOpsTotal       *prometheus.CounterVec
	StorageOpDuration     *prometheus.HistogramVec
	DecayRunsTotal        prometheus.Counter
	DecayRunDuration      prometheus.Histogram
	ConsolidationRuns     *prometheus.CounterVec
	ConsolidationQuality  prometheus.Gauge
	ValidationPassRate    prometheus.Gauge
	ValidationRunsTotal   *prometheus.CounterVec
	RetrievalLatency      prometheus.Histogram
	RetrievalResultsTotal prometheus.Counter
	SyncQueueDepth        *prometheus.GaugeVec
	SessionsActive        prometheus.Gauge
}

// NewMetrics builds a fresh metric set registered on its own registry.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()

	m := &Metrics{
		registry: reg,
		StorageOpsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "cortex_storage_ops_total",
			Help: "Total number of storage operations by kind and outcome.",
		}, []string{"op", "outcome"}),
		StorageOpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "cortex_storage_op_duration_seconds",
			Help:    "Storage operation duration in seconds.",
			Buckets: prometheus.DefBuckets,
		}, []string{"op"}),
		DecayRunsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "cortex_decay_runs_total",
			Help: "Total number of decay sweeps completed.",
		}),
		DecayRunDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "cortex_decay_run_duration_seconds",
			Help:    "Decay sweep duration in seconds.",
			Buckets: prometheus.DefBuckets,
		}),
		ConsolidationRuns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "cortex_consolidation_runs_total",
			Help: "Total number of consolidation pipeline runs by outcome.",
		}, []string{"outcome"}),
		ConsolidationQuality: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "cortex_consolidation_quality_score",
			Help: "Most recent consolidation run's quality score.",
		}),
		ValidationPassRate: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "cortex_validation_pass_rate",
			Help: "Fraction of validated memories that passed on the most recent sweep.",
		}),
		ValidationRunsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "cortex_validation_runs_total",
			Help: "Total number of memory validations by outcome.",
		}, []string{"outcome"}),
		RetrievalLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "cortex_retrieval_latency_seconds",
			Help:    "End-to-end retrieval pipeline latency in seconds.",
			Buckets: prometheus.DefBuckets,
		}),
		RetrievalResultsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "cortex_retrieval_results_total",
			Help: "Total number of memories returned across every retrieval call.",
		}),
		SyncQueueDepth: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "cortex_sync_queue_depth",
			Help: "Number of field deltas queued for an agent, awaiting drain.",
		}, []string{"agent_id"}),
		SessionsActive: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "cortex_sessions_active",
			Help: "Number of currently registered agent sessions.",
		}),
	}

	reg.MustRegister(
		m.StorageOpsTotal, m.StorageOpDuration,
		m.DecayRunsTotal, m.DecayRunDuration,
		m.ConsolidationRuns, m.ConsolidationQuality,
		m.ValidationPassRate, m.ValidationRunsTotal,
		m.RetrievalLatency, m.RetrievalResultsTotal,
		m.SyncQueueDepth, m.SessionsActive,
	)

	return m
}

// Handler returns the Prometheus scrape handler for this metric set's
// registry.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Timer times one operation and records its duration on Stop. Ported
// structurally from cuemby-warren's pkg/metrics.Timer.
type Timer struct {
	start time.Time
}

// NewTimer starts a timer.
func NewTimer() Timer {
	return Timer{start: time.Now()}
}

// ObserveSeconds records the elapsed duration, in seconds, to histogram.
func (t Timer) ObserveSeconds(histogram prometheus.Observer) {
	histogram.Observe(time.Since(t.start).Seconds())
}
