package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/complegal/comprate/internal/api/response"
	"github.com/complegal/comprate/internal/domain"
	"github.com/complegal/comprate/internal/service"
	"github.com/go-playground/validator/v10"
)

// ChatHandler handles message and catalog-prompt sends.
type ChatHandler struct {
	svc      *service.AnalyzerService
	validate *validator.Validate
}

// NewChatHandler creates a new chat handler
func NewChatHandler(svc *service.AnalyzerService) *ChatHandler {
	return &ChatHandler{svc: svc, validate: validator.New()}
}

type sendMessageRequest struct {
	Message string `json:"message" validate:"required,max=8000"`
}

type sendPromptRequest struct {
	Label string `json:"label" validate:"required"`
}

type sendResponse struct {
	Prompt string `json:"prompt"`
	Reply  string `json:"reply"`
}

// SendMessage forwards a free-form message to the open conversation
func (h *ChatHandler) SendMessage(w http.ResponseWriter, r *http.Request) {
	var req sendMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		response.BadRequest(w, err.Error())
		return
	}

	reply, err := h.svc.SendMessage(r.Context(), req.Message)
	if err != nil {
		h.writeSendError(w, err)
		return
	}

	response.OK(w, sendResponse{Prompt: req.Message, Reply: reply})
}

// SendPrompt resolves a catalog label and sends its instruction text
func (h *ChatHandler) SendPrompt(w http.ResponseWriter, r *http.Request) {
	var req sendPromptRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		response.BadRequest(w, err.Error())
		return
	}

	if _, ok := h.svc.Prompts().Get(req.Label); !ok {
		response.NotFound(w, "unknown prompt label")
		return
	}

	text, reply, err := h.svc.SendCatalogPrompt(r.Context(), req.Label)
	if err != nil {
		h.writeSendError(w, err)
		return
	}

	response.OK(w, sendResponse{Prompt: text, Reply: reply})
}

func (h *ChatHandler) writeSendError(w http.ResponseWriter, err error) {
	if errors.Is(err, domain.ErrNoSession) {
		response.Conflict(w, "no active session, process medical reports first")
		return
	}
	response.BadGateway(w, "failed to get a response from the model")
}
