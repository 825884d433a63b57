// Package observability provides observability infrastructure for the
// dispatch service: structured logging and Prometheus metrics.
//
// Subpackages:
//   - logging: Structured logging utilities with slog
//   - metrics: Prometheus metrics registry and recorders
//
// Example usage:
//
//	import (
//	    "kudos-dispatch/internal/observability/logging"
//	    "kudos-dispatch/internal/observability/metrics"
//	)
//
//	func main() {
//	    logger := logging.NewLogger()
//	    logger.Info("application started")
//
//	    metrics.SetQueueDepth("pending", 12)
//	}
package observability
