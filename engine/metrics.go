package engine

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	metricsNamespace = "dagflow"
	engineSubsystem  = "engine"
)

// Metrics holds Prometheus instrumentation for engine runs. Create one per
// registry and share it across engines via WithMetrics; all operations are
// thread-safe through Prometheus's internal locking.
type Metrics struct {
	// RunsTotal counts finished runs. Labels: status (SUCCESS, FAILED).
	RunsTotal *prometheus.CounterVec

	// TasksTotal counts finished task executions. Labels: status.
	TasksTotal *prometheus.CounterVec

	// RunDurationSeconds measures wall-clock run duration. Labels: status.
	RunDurationSeconds *prometheus.HistogramVec

	// TaskDurationSeconds measures wall-clock task duration. Labels: status.
	TaskDurationSeconds *prometheus.HistogramVec
}

// NewMetrics creates engine metrics registered against reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		RunsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: engineSubsystem,
			Name:      "runs_total",
			Help:      "Finished workflow runs by terminal status.",
		}, []string{"status"}),
		TasksTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: engineSubsystem,
			Name:      "tasks_total",
			Help:      "Finished task executions by terminal status.",
		}, []string{"status"}),
		RunDurationSeconds: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Subsystem: engineSubsystem,
			Name:      "run_duration_seconds",
			Help:      "Wall-clock duration of workflow runs.",
			Buckets:   prometheus.ExponentialBuckets(0.1, 2, 14),
		}, []string{"status"}),
		TaskDurationSeconds: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Subsystem: engineSubsystem,
			Name:      "task_duration_seconds",
			Help:      "Wall-clock duration of task executions.",
			Buckets:   prometheus.ExponentialBuckets(0.05, 2, 14),
		}, []string{"status"}),
	}
}
