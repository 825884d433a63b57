// Package metrics provides Prometheus metrics registry and recording utilities.
//
// This package centralizes all application metrics including:
//   - HTTP request metrics (duration, count)
//   - Business metrics (notification queue depth)
//   - Database query and connection pool metrics
//
// All metrics are automatically registered with the Prometheus default registry
// and exposed via the /metrics endpoint.
//
// Example usage:
//
//	import "kudos-dispatch/internal/observability/metrics"
//
//	func claimBatch(ctx context.Context) {
//	    start := time.Now()
//	    // ... claim notifications ...
//	    metrics.RecordDBQuery("claim_pending", time.Since(start))
//	}
package metrics
