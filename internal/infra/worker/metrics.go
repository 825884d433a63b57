package worker

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"kudos-dispatch/internal/pkg/config"
)

// WorkerMetrics provides Prometheus metrics for the worker component.
// It embeds the standard ConfigMetrics for configuration monitoring and adds
// worker-specific metrics for cron job execution tracking.
//
// Embedded metrics (from ConfigMetrics):
//   - worker_config_load_timestamp: Unix timestamp of last configuration load
//   - worker_config_validation_errors_total: Total validation errors by field
//   - worker_config_fallbacks_total: Total fallback operations by field
//   - worker_config_fallback_active: 1 if any fallback active, 0 otherwise
//
// Worker-specific metrics:
//   - worker_cron_job_runs_total: Total cron job runs by job and status
//   - worker_cron_job_duration_seconds: Duration histogram of cron job execution
//   - worker_cron_job_notifications_processed_total: Notifications processed per tick
//   - worker_cron_job_last_success_timestamp: Unix timestamp of last successful run
type WorkerMetrics struct {
	*config.ConfigMetrics

	// CronJobRunsTotal counts cron job runs per job name and status.
	// Labels: job (dispatch, reminders), status (success, failure)
	CronJobRunsTotal *prometheus.CounterVec

	// CronJobDurationSeconds measures the duration of cron job execution.
	// Labels: job
	CronJobDurationSeconds *prometheus.HistogramVec

	// CronJobNotificationsProcessedTotal counts notifications processed
	// across all dispatch ticks.
	CronJobNotificationsProcessedTotal prometheus.Counter

	// CronJobLastSuccessTimestamp records the Unix timestamp of the last
	// successful run per job.
	// Labels: job
	CronJobLastSuccessTimestamp *prometheus.GaugeVec
}

// NewWorkerMetrics creates a new WorkerMetrics instance with all metrics
// initialized. Registration happens automatically via promauto.
func NewWorkerMetrics() *WorkerMetrics {
	return &WorkerMetrics{
		ConfigMetrics: config.NewConfigMetrics("worker"),

		CronJobRunsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "worker_cron_job_runs_total",
			Help: "Total number of cron job runs by job and status",
		}, []string{"job", "status"}),

		CronJobDurationSeconds: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "worker_cron_job_duration_seconds",
			Help:    "Duration of cron job execution in seconds",
			Buckets: []float64{0.1, 0.5, 1, 5, 30, 60, 300}, // 100ms to 5m
		}, []string{"job"}),

		CronJobNotificationsProcessedTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "worker_cron_job_notifications_processed_total",
			Help: "Total number of notifications processed across dispatch ticks",
		}),

		CronJobLastSuccessTimestamp: promauto.NewGaugeVec(prometheus.GaugeOpts{
			Name: "worker_cron_job_last_success_timestamp",
			Help: "Unix timestamp of the last successful cron job run",
		}, []string{"job"}),
	}
}

// MustRegister is a no-op kept for API symmetry with the expected metrics
// initialization pattern; promauto already registered everything.
func (m *WorkerMetrics) MustRegister() {}

// RecordJobRun increments the job run counter for the given job and status.
// Status should be either "success" or "failure".
func (m *WorkerMetrics) RecordJobRun(job, status string) {
	m.CronJobRunsTotal.WithLabelValues(job, status).Inc()
}

// RecordJobDuration observes the duration of a cron job execution in seconds.
func (m *WorkerMetrics) RecordJobDuration(job string, seconds float64) {
	m.CronJobDurationSeconds.WithLabelValues(job).Observe(seconds)
}

// RecordNotificationsProcessed adds to the processed notifications total.
func (m *WorkerMetrics) RecordNotificationsProcessed(count int) {
	m.CronJobNotificationsProcessedTotal.Add(float64(count))
}

// RecordLastSuccess records the current time as the job's last successful
// completion.
func (m *WorkerMetrics) RecordLastSuccess(job string) {
	m.CronJobLastSuccessTimestamp.WithLabelValues(job).SetToCurrentTime()
}
