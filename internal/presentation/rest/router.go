package rest

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// NewRouter mounts health, metrics and report routes. api middlewares apply
// to the /api/v1 routes only.
func NewRouter(health *HealthHandler, reports *ReportHandler, metrics http.Handler, api ...func(http.Handler) http.Handler) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))

	r.Get("/healthz", health.Liveness)
	r.Get("/readyz", health.Readiness)
	if metrics != nil {
		r.Method(http.MethodGet, "/metrics", metrics)
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(api...)
		r.Get("/contracts/{id}/statements/{year}", reports.Statement)
		r.Route("/reports", func(r chi.Router) {
			r.Get("/transfer-list", reports.TransferList)
			r.Get("/average-rate", reports.AverageRate)
			r.Get("/remaining", reports.RemainingDuration)
			r.Get("/expiring", reports.ExpiringContracts)
		})
	})
	return r
}
