package handler

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"

	"github.com/quickai/quickai/internal/model"
	"github.com/quickai/quickai/internal/service"
)

// maxUploadBytes bounds multipart request bodies. Larger than the per-file
// limits so that an oversized resume is reported as invalid input instead of
// a connection reset.
const maxUploadBytes = 16 << 20 // 16 MiB

// multipartMemory is how much of a parsed multipart body is kept in memory.
const multipartMemory = 8 << 20 // 8 MiB

// AIHandler handles the content-producing endpoints.
type AIHandler struct {
	svc    *service.GatewayService
	logger *slog.Logger
}

// NewAIHandler creates a new AIHandler.
func NewAIHandler(svc *service.GatewayService, logger *slog.Logger) *AIHandler {
	return &AIHandler{svc: svc, logger: logger}
}

// generateArticleRequest is the body for article generation.
type generateArticleRequest struct {
	Prompt  string `json:"prompt" validate:"required"`
	Length  int    `json:"length" validate:"omitempty,gt=0"`
	Publish bool   `json:"publish"`
}

// GenerateArticle handles POST /api/ai/generate-article.
func (h *AIHandler) GenerateArticle(w http.ResponseWriter, r *http.Request) {
	var req generateArticleRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	creation, err := h.svc.GenerateArticle(r.Context(), service.GenerateArticleInput{
		Prompt:  req.Prompt,
		Length:  req.Length,
		Publish: req.Publish,
	})
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"content": creation.Content,
	})
}

// generateBlogTitleRequest is the body for blog title generation.
type generateBlogTitleRequest struct {
	Prompt  string `json:"prompt" validate:"required"`
	Publish bool   `json:"publish"`
}

// GenerateBlogTitle handles POST /api/ai/generate-blog-title.
func (h *AIHandler) GenerateBlogTitle(w http.ResponseWriter, r *http.Request) {
	var req generateBlogTitleRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	creation, err := h.svc.GenerateBlogTitles(r.Context(), service.GenerateBlogTitlesInput{
		Prompt:  req.Prompt,
		Publish: req.Publish,
	})
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"content": creation.Content,
	})
}

// generateImageRequest is the body for image synthesis.
type generateImageRequest struct {
	Prompt   string `json:"prompt" validate:"required"`
	IsPublic bool   `json:"isPublic"`
}

// GenerateImage handles POST /api/ai/generate-image.
func (h *AIHandler) GenerateImage(w http.ResponseWriter, r *http.Request) {
	var req generateImageRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	creation, err := h.svc.GenerateImage(r.Context(), service.GenerateImageInput{
		Prompt:  req.Prompt,
		Publish: req.IsPublic,
	})
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	writeImageResult(w, creation)
}

// RemoveImageBackground handles POST /api/ai/remove-image-background.
// Multipart form: image (file), publish (optional bool).
func (h *AIHandler) RemoveImageBackground(w http.ResponseWriter, r *http.Request) {
	form, ok := parseMultipart(w, r)
	if !ok {
		return
	}

	image, ok := readFormFile(w, r, "image")
	if !ok {
		return
	}

	creation, err := h.svc.RemoveBackground(r.Context(), service.RemoveBackgroundInput{
		Image:   image,
		Publish: form.publish,
	})
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	writeImageResult(w, creation)
}

// RemoveImageObject handles POST /api/ai/remove-image-object.
// Multipart form: image (file), object (text), publish (optional bool).
func (h *AIHandler) RemoveImageObject(w http.ResponseWriter, r *http.Request) {
	form, ok := parseMultipart(w, r)
	if !ok {
		return
	}

	image, ok := readFormFile(w, r, "image")
	if !ok {
		return
	}

	creation, err := h.svc.RemoveObject(r.Context(), service.RemoveObjectInput{
		Image:   image,
		Object:  r.FormValue("object"),
		Publish: form.publish,
	})
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	writeImageResult(w, creation)
}

// ResumeReview handles POST /api/ai/resume-review.
// Multipart form: resume (file), publish (optional bool).
func (h *AIHandler) ResumeReview(w http.ResponseWriter, r *http.Request) {
	form, ok := parseMultipart(w, r)
	if !ok {
		return
	}

	document, ok := readFormFile(w, r, "resume")
	if !ok {
		return
	}

	result, err := h.svc.ReviewResume(r.Context(), service.ReviewResumeInput{
		Document: document,
		Publish:  form.publish,
	})
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success":  true,
		"analysis": result.Analysis,
	})
}

// multipartForm carries the common non-file fields of upload endpoints.
type multipartForm struct {
	publish bool
}

// parseMultipart parses a bounded multipart body and the shared fields.
func parseMultipart(w http.ResponseWriter, r *http.Request) (multipartForm, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)

	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		writeFailure(w, http.StatusBadRequest, "Invalid multipart body.")
		return multipartForm{}, false
	}

	publish := r.FormValue("publish")
	return multipartForm{
		publish: publish == "true" || publish == "1",
	}, true
}

// readFormFile reads a named upload into memory.
// A missing file is reported against the field name.
func readFormFile(w http.ResponseWriter, r *http.Request, field string) ([]byte, bool) {
	file, _, err := r.FormFile(field)
	if err != nil {
		writeFailure(w, http.StatusBadRequest, "invalid input: "+field+" is required")
		return nil, false
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		writeFailure(w, http.StatusBadRequest, "invalid input: "+field+" could not be read")
		return nil, false
	}

	return data, true
}

// writeImageResult writes the envelope for image-producing operations.
// The stored URL always travels under secure_url.
func writeImageResult(w http.ResponseWriter, creation *model.Creation) {
	writeJSON(w, http.StatusOK, map[string]any{
		"success":    true,
		"secure_url": creation.Content,
	})
}

// decodeAndValidate decodes a JSON body into dst and checks its struct tags.
func decodeAndValidate(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeFailure(w, http.StatusBadRequest, "Invalid request body.")
		return false
	}

	if err := validate.Struct(dst); err != nil {
		writeFailure(w, http.StatusBadRequest, validationMessage(err))
		return false
	}

	return true
}
