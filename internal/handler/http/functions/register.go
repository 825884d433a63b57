package functions

import (
	"net/http"

	"kudos-dispatch/internal/handler/http/auth"
	"kudos-dispatch/internal/repository"
	"kudos-dispatch/internal/usecase/dispatch"
)

// Register registers the function endpoints with the given mux. Both routes
// require the shared service token and accept any method: OPTIONS preflight
// is answered by the CORS middleware applied around the whole mux and never
// reaches these handlers, and every other method runs the function.
func Register(mux *http.ServeMux, svc dispatch.Service, repo repository.NotificationRepository, serviceToken string) {
	guard := auth.ServiceToken(serviceToken)

	mux.Handle("/functions/process-notifications", guard(DispatchHandler{Svc: svc}))
	mux.Handle("/functions/schedule-reminders", guard(SchedulerHandler{Repo: repo}))
}
