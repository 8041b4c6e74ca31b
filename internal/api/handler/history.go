package handler

import (
	"net/http"

	"github.com/complegal/comprate/internal/api/response"
	"github.com/complegal/comprate/internal/service"
)

// HistoryHandler serves the persisted analysis log.
type HistoryHandler struct {
	svc *service.AnalyzerService
}

// NewHistoryHandler creates a new history handler
func NewHistoryHandler(svc *service.AnalyzerService) *HistoryHandler {
	return &HistoryHandler{svc: svc}
}

// List returns every stored entry, oldest first
func (h *HistoryHandler) List(w http.ResponseWriter, r *http.Request) {
	entries, err := h.svc.ListHistory(r.Context())
	if err != nil {
		response.InternalError(w, "failed to load history")
		return
	}
	response.OK(w, entries)
}
