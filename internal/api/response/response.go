package response

import (
	"encoding/json"
	"net/http"
)

// Envelope is the standard API response shape.
type Envelope struct {
	Success bool `json:"success"`
	Data    any  `json:"data,omitempty"`
	Error   any  `json:"error,omitempty"`
}

// JSON sends a success envelope with the given status
func JSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(Envelope{Success: status >= 200 && status < 300, Data: data})
}

// Error sends an error envelope with the given status
func Error(w http.ResponseWriter, status int, message any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(Envelope{Success: false, Error: message})
}

// OK sends a 200 response with data
func OK(w http.ResponseWriter, data any) { JSON(w, http.StatusOK, data) }

// Created sends a 201 response with data
func Created(w http.ResponseWriter, data any) { JSON(w, http.StatusCreated, data) }

// BadRequest sends a 400 error
func BadRequest(w http.ResponseWriter, message any) { Error(w, http.StatusBadRequest, message) }

// Unauthorized sends a 401 error
func Unauthorized(w http.ResponseWriter, message any) { Error(w, http.StatusUnauthorized, message) }

// NotFound sends a 404 error
func NotFound(w http.ResponseWriter, message any) { Error(w, http.StatusNotFound, message) }

// Conflict sends a 409 error
func Conflict(w http.ResponseWriter, message any) { Error(w, http.StatusConflict, message) }

// BadGateway sends a 502 error for failed upstream calls
func BadGateway(w http.ResponseWriter, message any) { Error(w, http.StatusBadGateway, message) }

// InternalError sends a 500 error
func InternalError(w http.ResponseWriter, message any) { Error(w, http.StatusInternalServerError, message) }
