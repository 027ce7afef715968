package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics. It implements
// usecase.MetricsRecorder.
type Metrics struct {
	// Pipeline metrics
	PipelineRuns  *prometheus.CounterVec
	StageRowsIn   *prometheus.CounterVec
	StageRowsOut  *prometheus.CounterVec
	StageWarnings *prometheus.CounterVec

	// Lookup metrics
	LookupFailures *prometheus.CounterVec

	// ID generator metrics
	IDsIssued prometheus.Counter
}

// New creates and registers all Prometheus metrics.
func New() *Metrics {
	return &Metrics{
		PipelineRuns: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "vestflow_pipeline_runs_total",
				Help: "Total pipeline runs by outcome",
			},
			[]string{"status"},
		),
		StageRowsIn: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "vestflow_stage_rows_in_total",
				Help: "Rows consumed per stage",
			},
			[]string{"stage"},
		),
		StageRowsOut: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "vestflow_stage_rows_out_total",
				Help: "Rows produced per stage",
			},
			[]string{"stage"},
		),
		StageWarnings: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "vestflow_stage_warnings_total",
				Help: "Non-fatal warnings per stage",
			},
			[]string{"stage"},
		),
		LookupFailures: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "vestflow_lookup_failures_total",
				Help: "Reference-table lookup failures by kind",
			},
			[]string{"kind"},
		),
		IDsIssued: promauto.NewCounter(prometheus.CounterOpts{
			Name: "vestflow_ids_issued_total",
			Help: "Total transaction ids issued",
		}),
	}
}

// StageProcessed records one stage execution.
func (m *Metrics) StageProcessed(stage string, rowsIn, rowsOut, warnings int) {
	m.StageRowsIn.WithLabelValues(stage).Add(float64(rowsIn))
	m.StageRowsOut.WithLabelValues(stage).Add(float64(rowsOut))
	m.StageWarnings.WithLabelValues(stage).Add(float64(warnings))
}

// RunCompleted records one pipeline run outcome.
func (m *Metrics) RunCompleted(status string) {
	m.PipelineRuns.WithLabelValues(status).Inc()
}

// IDIssued records one id issuance.
func (m *Metrics) IDIssued() {
	m.IDsIssued.Inc()
}

// LookupFailed records one reference-table lookup failure.
func (m *Metrics) LookupFailed(kind string) {
	m.LookupFailures.WithLabelValues(kind).Inc()
}
