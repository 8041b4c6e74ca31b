package handler

import (
	"net/http"

	"github.com/complegal/comprate/internal/api/response"
	"github.com/complegal/comprate/internal/service"
)

// PromptHandler exposes the predefined prompt catalog.
type PromptHandler struct {
	svc *service.AnalyzerService
}

// NewPromptHandler creates a new prompt handler
func NewPromptHandler(svc *service.AnalyzerService) *PromptHandler {
	return &PromptHandler{svc: svc}
}

// List returns the catalog in display order
func (h *PromptHandler) List(w http.ResponseWriter, r *http.Request) {
	response.OK(w, h.svc.Prompts().Templates())
}
