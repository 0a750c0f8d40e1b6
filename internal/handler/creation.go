package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/quickai/quickai/internal/service"
)

// CreationHandler handles the feed and social endpoints.
type CreationHandler struct {
	svc    *service.CreationService
	logger *slog.Logger
}

// NewCreationHandler creates a new CreationHandler.
func NewCreationHandler(svc *service.CreationService, logger *slog.Logger) *CreationHandler {
	return &CreationHandler{svc: svc, logger: logger}
}

// GetUserCreations handles GET /api/user/get-user-creations.
// Returns the caller's full history, newest first.
func (h *CreationHandler) GetUserCreations(w http.ResponseWriter, r *http.Request) {
	creations, err := h.svc.ListOwnCreations(r.Context())
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success":   true,
		"creations": creations,
	})
}

// GetPublishedCreations handles GET /api/user/get-published-creations.
// Public community feed; no authentication required.
func (h *CreationHandler) GetPublishedCreations(w http.ResponseWriter, r *http.Request) {
	creations, err := h.svc.ListPublicFeed(r.Context())
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success":   true,
		"creations": creations,
	})
}

// togglePublishRequest is the body for visibility toggles.
type togglePublishRequest struct {
	ID      string `json:"id" validate:"required"`
	Publish bool   `json:"publish"`
}

// TogglePublish handles POST /api/user/toggle-publish.
func (h *CreationHandler) TogglePublish(w http.ResponseWriter, r *http.Request) {
	var req togglePublishRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	creation, err := h.svc.TogglePublish(r.Context(), req.ID, req.Publish)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	h.logger.Info("publish_toggled",
		"creation_id", creation.ID,
		"publish", creation.Publish,
	)

	writeJSON(w, http.StatusOK, map[string]any{
		"success":  true,
		"creation": creation,
	})
}

// toggleLikeRequest is the body for like toggles.
type toggleLikeRequest struct {
	ID string `json:"id" validate:"required"`
}

// ToggleLike handles POST /api/user/toggle-like-creations.
func (h *CreationHandler) ToggleLike(w http.ResponseWriter, r *http.Request) {
	var req toggleLikeRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	result, err := h.svc.ToggleLike(r.Context(), req.ID)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	message := "Creation unliked."
	if result.Liked {
		message = "Creation liked."
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success":  true,
		"message":  message,
		"creation": result.Creation,
	})
}

// validationMessage turns a validator error into a short field-level message.
func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		field := strings.ToLower(verrs[0].Field())
		switch verrs[0].Tag() {
		case "required":
			return "invalid input: " + field + " is required"
		case "gt":
			return "invalid input: " + field + " must be positive"
		default:
			return "invalid input: " + field + " is invalid"
		}
	}
	return "Invalid request body."
}
