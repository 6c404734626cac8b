package routes

import (
	"net/http"

	"ordermind/ordermind/controllers"

	"github.com/go-chi/chi/v5"
)

// HealthRoutes serves readiness at / (database reachable) and liveness at
// /live (process serving).
func HealthRoutes(ctrl *controllers.HealthController) chi.Router {
	r := chi.NewRouter()
	r.Get("/", ctrl.HealthCheck)
	r.Head("/", ctrl.HealthCheck)
	r.Get("/live", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "alive"})
	})
	return r
}
