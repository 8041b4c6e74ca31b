package handler

import (
	"net/http"

	"github.com/complegal/comprate/internal/api/response"
	"github.com/complegal/comprate/internal/service"
)

// SessionHandler exposes session state and reset.
type SessionHandler struct {
	svc *service.AnalyzerService
}

// NewSessionHandler creates a new session handler
func NewSessionHandler(svc *service.AnalyzerService) *SessionHandler {
	return &SessionHandler{svc: svc}
}

// Get returns the current session snapshot including the transcript
func (h *SessionHandler) Get(w http.ResponseWriter, r *http.Request) {
	response.OK(w, h.svc.State())
}

// Reset clears the conversation and transcript. History and the
// reference-document cache survive.
func (h *SessionHandler) Reset(w http.ResponseWriter, r *http.Request) {
	h.svc.Reset()
	response.OK(w, map[string]string{"message": "session reset"})
}
