package migration

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics exposes the migration counters the legacy pipeline reported, so
// the existing dashboards keep working during the cut-over.
type Metrics struct {
	RecordsProcessed *prometheus.CounterVec
	RecordsFailed    *prometheus.CounterVec
	StepDuration     *prometheus.HistogramVec
	Runs             *prometheus.CounterVec
}

// NewMetrics registers the migration metrics with the given registerer.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		RecordsProcessed: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "kgv_migration_records_processed_total",
			Help: "Total number of records migrated per target table.",
		}, []string{"table"}),
		RecordsFailed: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "kgv_migration_records_failed_total",
			Help: "Total number of records that failed transformation or load.",
		}, []string{"table"}),
		StepDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "kgv_migration_step_duration_seconds",
			Help:    "Duration of each migration step.",
			Buckets: prometheus.DefBuckets,
		}, []string{"table"}),
		Runs: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "kgv_migration_runs_total",
			Help: "Total number of migration runs by outcome.",
		}, []string{"status"}),
	}
}

func (m *Metrics) observeStep(table string, count int, start time.Time) {
	if m == nil {
		return
	}
	m.RecordsProcessed.WithLabelValues(table).Add(float64(count))
	m.StepDuration.WithLabelValues(table).Observe(time.Since(start).Seconds())
}

func (m *Metrics) recordFailure(table string) {
	if m == nil {
		return
	}
	m.RecordsFailed.WithLabelValues(table).Inc()
}

func (m *Metrics) recordRun(status string) {
	if m == nil {
		return
	}
	m.Runs.WithLabelValues(status).Inc()
}
