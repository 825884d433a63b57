package functions

import (
	"log/slog"
	"net/http"

	"kudos-dispatch/internal/handler/http/respond"
	"kudos-dispatch/internal/observability/logging"
	"kudos-dispatch/internal/repository"
)

// SchedulerHandler triggers the weekly reminder fan-out. The database
// procedure owns recipient selection and idempotency; this handler only
// invokes it and reports the outcome.
type SchedulerHandler struct{ Repo repository.NotificationRepository }

func (h SchedulerHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if err := h.Repo.ScheduleWeeklyReminders(r.Context()); err != nil {
		logger := logging.WithRequestID(r.Context(), slog.Default())
		logger.Error("weekly reminder scheduling failed", slog.Any("error", err))
		respond.JSON(w, http.StatusBadRequest, map[string]any{
			"success": false,
			"error":   "failed to schedule weekly reminders",
		})
		return
	}

	respond.JSON(w, http.StatusOK, map[string]any{"success": true})
}
