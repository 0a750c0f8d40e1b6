// Package handler provides HTTP request handlers.
package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/quickai/quickai/internal/service"
)

// validate checks request DTO struct tags.
var validate = validator.New()

// Handler wraps application dependencies for basic HTTP handlers.
type Handler struct{}

// New creates a new Handler instance.
func New() *Handler {
	return &Handler{}
}

// Hello is a simple info endpoint for the root route.
// GET /
func (h *Handler) Hello(w http.ResponseWriter, r *http.Request) {
	response := map[string]any{
		"success": true,
		"message": "Hello from QuickAI!",
		"version": "0.1.0",
	}
	writeJSON(w, http.StatusOK, response)
}

// NotFound handles 404 responses.
func (h *Handler) NotFound(w http.ResponseWriter, r *http.Request) {
	writeFailure(w, http.StatusNotFound, "resource not found")
}

// MethodNotAllowed handles 405 responses.
func (h *Handler) MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	writeFailure(w, http.StatusMethodNotAllowed, "method not allowed")
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		// Headers are already written; nothing useful left to do.
		_ = err
	}
}

// failureResponse is the envelope for every failed request.
type failureResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// writeFailure writes a failure envelope. Every failure carries a non-2xx
// status and {"success":false,"message":...}.
func writeFailure(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, failureResponse{Success: false, Message: message})
}

// writeServiceError maps service errors to HTTP failure responses.
// Internal details never leak; unknown errors get a generic message.
func writeServiceError(w http.ResponseWriter, logger *slog.Logger, err error) {
	switch {
	case errors.Is(err, service.ErrUnauthenticated):
		writeFailure(w, http.StatusUnauthorized, "Authentication required.")
	case errors.Is(err, service.ErrQuotaExceeded):
		writeFailure(w, http.StatusForbidden, "Limit reached. Upgrade to continue.")
	case errors.Is(err, service.ErrInvalidInput):
		writeFailure(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrMalformedResponse):
		writeFailure(w, http.StatusBadGateway, "The AI service returned an unexpected answer. Please try again.")
	case errors.Is(err, service.ErrProviderFailure):
		writeFailure(w, http.StatusBadGateway, "The AI service is unavailable right now. Please try again.")
	case errors.Is(err, service.ErrCreationNotFound):
		writeFailure(w, http.StatusNotFound, "Creation not found.")
	case errors.Is(err, service.ErrNotOwner):
		writeFailure(w, http.StatusForbidden, "You do not own this creation.")
	default:
		logger.Error("internal_error", "error", err)
		writeFailure(w, http.StatusInternalServerError, "An internal error occurred.")
	}
}
