// Package functions exposes the dispatch pipeline over HTTP. The routes
// mirror the scheduler-invoked function surface: one endpoint drains a batch
// of the notification queue, the other enqueues the weekly reminder fan-out.
package functions

import (
	"log/slog"
	"net/http"

	"kudos-dispatch/internal/handler/http/respond"
	"kudos-dispatch/internal/observability/logging"
	"kudos-dispatch/internal/usecase/dispatch"
)

// DispatchHandler drives one dispatch invocation per request.
type DispatchHandler struct{ Svc dispatch.Service }

// ServeHTTP claims and processes one batch of pending notifications.
// Per-record failures are absorbed into the summary; only a failure of the
// claim step itself produces an error response, and in that case nothing
// was mutated so the caller may simply retry.
func (h DispatchHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	summary, err := h.Svc.ProcessBatch(r.Context())
	if err != nil {
		logger := logging.WithRequestID(r.Context(), slog.Default())
		logger.Error("batch dispatch failed", slog.Any("error", err))
		respond.JSON(w, http.StatusBadRequest, map[string]any{
			"success": false,
			"error":   "failed to claim notifications",
		})
		return
	}

	respond.JSON(w, http.StatusOK, map[string]any{
		"success":   true,
		"processed": summary.Processed,
	})
}
