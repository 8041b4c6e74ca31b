package handler

import (
	"net/http"

	"github.com/complegal/comprate/internal/api/response"
	"github.com/complegal/comprate/internal/domain"
)

// HealthCheck returns a simple health check response
func HealthCheck(w http.ResponseWriter, r *http.Request) {
	response.OK(w, map[string]string{
		"status": "ok",
	})
}

// ReadyCheck returns readiness status including history store connectivity
func ReadyCheck(repo domain.HistoryRepository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := repo.Ping(r.Context()); err != nil {
			response.Error(w, http.StatusServiceUnavailable, "history store not ready")
			return
		}

		response.OK(w, map[string]string{
			"status": "ready",
		})
	}
}
