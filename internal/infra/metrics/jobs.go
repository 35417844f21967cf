package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

func init() { register(scheduledJobRunsTotal, scheduledJobDuration) }

var (
	scheduledJobRunsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scheduled_job_runs_total",
			Help: "Scheduled job executions, labeled by job name and status.",
		},
		[]string{"job", "status"}, // 'completed', 'failed'
	)

	scheduledJobDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "scheduled_job_duration_seconds",
			Help:    "Wall time of scheduled job executions.",
			Buckets: []float64{0.1, 0.5, 1, 5, 15, 30, 60, 120, 300, 600},
		},
		[]string{"job"},
	)
)

func ObserveJob(job, status string, d time.Duration) {
	scheduledJobRunsTotal.WithLabelValues(job, norm(status)).Inc()
	scheduledJobDuration.WithLabelValues(job).Observe(d.Seconds())
}
