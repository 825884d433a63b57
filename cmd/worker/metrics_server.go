package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"kudos-dispatch/internal/infra/sender"
	"kudos-dispatch/internal/observability/metrics"
	"kudos-dispatch/internal/repository"
)

// HealthResponse represents a simple health check response.
type HealthResponse struct {
	Status string `json:"status"`
}

// ChannelHealthResponse represents the health status of all delivery channels.
type ChannelHealthResponse struct {
	Healthy  bool                   `json:"healthy"`
	Channels []sender.ChannelHealth `json:"channels"`
}

// healthReporter is the part of a sender the health endpoint needs.
type healthReporter interface {
	Health() sender.ChannelHealth
}

// startMetricsServer starts the Prometheus metrics HTTP server.
//
// Endpoints:
//   - GET /metrics - Prometheus metrics (scraped by the Prometheus server)
//   - GET /health - Simple liveness probe (always 200 OK)
//   - GET /health/channels - Channel health with circuit breaker state
//
// Environment variables:
//   - METRICS_PORT: Port to listen on (default: 9090)
//
// A background loop refreshes the queue depth and connection pool gauges
// every 30 seconds. When ctx is cancelled, the server shuts down gracefully
// within 5 seconds.
func startMetricsServer(
	ctx context.Context,
	logger *slog.Logger,
	database *sql.DB,
	inspector repository.QueueInspector,
	senders ...any,
) *http.Server {
	port := getMetricsPort()

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/health", healthHandler)
	mux.HandleFunc("/health/channels", channelHealthHandler(senders))

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", port),
		Handler:      mux,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		logger.Info("metrics server starting", slog.Int("port", port))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("metrics server error", slog.Any("error", err))
		}
	}()

	go refreshGauges(ctx, logger, database, inspector)

	go func() {
		<-ctx.Done()
		logger.Info("metrics server shutdown initiated")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("metrics server shutdown error", slog.Any("error", err))
		} else {
			logger.Info("metrics server stopped")
		}
	}()

	return server
}

// refreshGauges periodically publishes queue depth and connection pool
// statistics until the context ends.
func refreshGauges(ctx context.Context, logger *slog.Logger, database *sql.DB, inspector repository.QueueInspector) {
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		metrics.UpdateDBStats(database.Stats())

		queryCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		counts, err := inspector.CountByStatus(queryCtx)
		cancel()
		if err != nil {
			logger.Warn("failed to refresh queue depth", slog.Any("error", err))
			continue
		}
		// Publish zero for statuses with no rows so stale values clear.
		for _, status := range []string{"pending", "processing", "sent", "failed"} {
			metrics.SetQueueDepth(status, counts[status])
		}
	}
}

// getMetricsPort retrieves the metrics server port from environment variable.
// Defaults to 9090 if not set or invalid.
func getMetricsPort() int {
	portStr := os.Getenv("METRICS_PORT")
	if portStr == "" {
		return 9090
	}

	port, err := strconv.Atoi(portStr)
	if err != nil || port <= 0 || port > 65535 {
		return 9090
	}

	return port
}

// healthHandler handles GET /health requests (liveness probe).
func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(HealthResponse{Status: "healthy"})
}

// channelHealthHandler creates a handler for GET /health/channels.
// Returns 200 OK when every enabled channel's circuit breaker is closed,
// 503 Service Unavailable otherwise.
func channelHealthHandler(senders []any) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		channels := make([]sender.ChannelHealth, 0, len(senders))
		healthy := true

		for _, s := range senders {
			reporter, ok := s.(healthReporter)
			if !ok {
				continue
			}
			health := reporter.Health()
			channels = append(channels, health)
			if health.Enabled && health.CircuitBreakerOpen {
				healthy = false
			}
		}

		statusCode := http.StatusOK
		if !healthy {
			statusCode = http.StatusServiceUnavailable
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(statusCode)
		_ = json.NewEncoder(w).Encode(ChannelHealthResponse{
			Healthy:  healthy,
			Channels: channels,
		})
	}
}
