package dispatch

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus metrics for dispatch loop monitoring
var (
	// batchClaimedTotal tracks how many notifications have been claimed
	batchClaimedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "dispatch_notifications_claimed_total",
			Help: "Total number of notifications claimed from the queue",
		},
	)

	// batchClaimSize tracks claimed batch sizes, including empty claims
	batchClaimSize = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "dispatch_batch_claim_size",
			Help:    "Number of notifications claimed per invocation",
			Buckets: []float64{0, 1, 2, 5, 10, 25, 50},
		},
	)

	// claimFailuresTotal tracks failures of the claim step itself
	claimFailuresTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "dispatch_claim_failures_total",
			Help: "Total number of failed batch claim attempts",
		},
	)

	// notificationSentTotal tracks delivery results per channel
	notificationSentTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dispatch_notification_sent_total",
			Help: "Total number of processed notifications",
		},
		[]string{"channel", "status"}, // status: success|failure
	)

	// notificationDuration tracks per-record delivery duration
	notificationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "dispatch_notification_duration_seconds",
			Help:    "Notification delivery duration in seconds",
			Buckets: []float64{0.1, 0.5, 1, 5, 10, 30}, // 100ms to 30s
		},
		[]string{"channel"},
	)

	// emailPacingWaitSeconds tracks time spent pacing email sends
	emailPacingWaitSeconds = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "dispatch_email_pacing_wait_seconds",
			Help:    "Time spent waiting between email sends in seconds",
			Buckets: []float64{0.1, 0.5, 1, 2, 5},
		},
	)
)

// RecordBatchClaimed records the outcome of a successful claim step.
//
// Parameters:
//   - count: The number of notifications claimed (may be zero)
func RecordBatchClaimed(count int) {
	batchClaimedTotal.Add(float64(count))
	batchClaimSize.Observe(float64(count))
}

// RecordClaimFailure records a failed batch claim attempt.
func RecordClaimFailure() {
	claimFailuresTotal.Inc()
}

// RecordSuccess records a successfully delivered notification.
//
// Parameters:
//   - channel: The delivery channel ("email" or "slack")
//   - duration: The time it took to deliver the notification
func RecordSuccess(channel string, duration time.Duration) {
	notificationSentTotal.WithLabelValues(channel, "success").Inc()
	notificationDuration.WithLabelValues(channel).Observe(duration.Seconds())
}

// RecordFailure records a failed notification delivery.
//
// Parameters:
//   - channel: The delivery channel
//   - duration: The time it took before the delivery failed
func RecordFailure(channel string, duration time.Duration) {
	notificationSentTotal.WithLabelValues(channel, "failure").Inc()
	notificationDuration.WithLabelValues(channel).Observe(duration.Seconds())
}

// RecordPacingWait records time spent pacing between email sends.
//
// Parameters:
//   - waitDuration: The configured pacing delay applied before the send
func RecordPacingWait(waitDuration time.Duration) {
	emailPacingWaitSeconds.Observe(waitDuration.Seconds())
}
