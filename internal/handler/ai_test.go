package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/quickai/quickai/internal/auth"
	"github.com/quickai/quickai/internal/model"
	"github.com/quickai/quickai/internal/service"
)

// stubWriter accepts every insert.
type stubWriter struct{}

func (stubWriter) CreateCreation(ctx context.Context, c *model.Creation) error { return nil }

// stubQuota rejects once the fixed usage reaches the limit.
type stubQuota struct {
	usage int64
}

func (q *stubQuota) Usage(ctx context.Context, userID string) (int64, error) {
	return q.usage, nil
}

func (q *stubQuota) IncrementIfBelow(ctx context.Context, userID string, limit int64) (bool, error) {
	if q.usage >= limit {
		return false, nil
	}
	q.usage++
	return true, nil
}

func (q *stubQuota) DecrementUsage(ctx context.Context, userID string) error {
	q.usage--
	return nil
}

// stubProducer returns fixed content for every operation.
type stubProducer struct{}

func (stubProducer) GenerateArticle(ctx context.Context, prompt string, targetLength int) (string, error) {
	return "article text", nil
}

func (stubProducer) GenerateBlogTitles(ctx context.Context, prompt string) (string, error) {
	return "1. Title", nil
}

func (stubProducer) GenerateImage(ctx context.Context, prompt string) ([]byte, error) {
	return []byte{1, 2, 3}, nil
}

func (stubProducer) RemoveBackground(ctx context.Context, image []byte) ([]byte, error) {
	return []byte{4, 5, 6}, nil
}

func (stubProducer) RemoveObject(ctx context.Context, image []byte, object string) ([]byte, error) {
	return []byte{7, 8, 9}, nil
}

func (stubProducer) ReviewResume(ctx context.Context, document []byte) (*model.ResumeAnalysis, error) {
	return &model.ResumeAnalysis{Score: 70, Summary: "fine"}, nil
}

// stubBlobs returns a fixed URL.
type stubBlobs struct{}

func (stubBlobs) Upload(ctx context.Context, key, contentType string, data []byte) (string, error) {
	return "https://cdn.test/" + key, nil
}

func newTestAIHandler(quota *stubQuota) *AIHandler {
	svc := service.NewGatewayService(stubWriter{}, quota, stubProducer{}, stubBlobs{}, 10, testLogger(), nil)
	return NewAIHandler(svc, testLogger())
}

func TestGenerateArticleHandler(t *testing.T) {
	t.Parallel()

	h := newTestAIHandler(&stubQuota{})

	req := authedRequest("POST", "/api/ai/generate-article", []byte(`{"prompt":"go concurrency","length":600}`), "user-1")
	rec := httptest.NewRecorder()
	h.GenerateArticle(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}

	var body struct {
		Success bool   `json:"success"`
		Content string `json:"content"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !body.Success || body.Content != "article text" {
		t.Errorf("body = %+v, want success with article text", body)
	}
}

func TestGenerateArticleHandler_MissingPrompt(t *testing.T) {
	t.Parallel()

	h := newTestAIHandler(&stubQuota{})

	req := authedRequest("POST", "/api/ai/generate-article", []byte(`{"length":600}`), "user-1")
	rec := httptest.NewRecorder()
	h.GenerateArticle(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "prompt") {
		t.Errorf("body = %q, want mention of the missing field", rec.Body.String())
	}
}

func TestGenerateArticleHandler_QuotaExceeded(t *testing.T) {
	t.Parallel()

	h := newTestAIHandler(&stubQuota{usage: 10})

	req := authedRequest("POST", "/api/ai/generate-article", []byte(`{"prompt":"p"}`), "user-1")
	rec := httptest.NewRecorder()
	h.GenerateArticle(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want 403", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "Limit reached. Upgrade to continue.") {
		t.Errorf("body = %q, want the upgrade message", rec.Body.String())
	}
}

func TestGenerateImageHandler_SecureURL(t *testing.T) {
	t.Parallel()

	h := newTestAIHandler(&stubQuota{})

	req := authedRequest("POST", "/api/ai/generate-image", []byte(`{"prompt":"a sunset","isPublic":true}`), "user-1")
	rec := httptest.NewRecorder()
	h.GenerateImage(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}

	var body struct {
		Success   bool   `json:"success"`
		SecureURL string `json:"secure_url"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !strings.HasPrefix(body.SecureURL, "https://cdn.test/creations/") {
		t.Errorf("secure_url = %q, want stored URL", body.SecureURL)
	}
}

// authedMultipartRequest builds an authenticated multipart upload with one
// file part plus any extra form fields.
func authedMultipartRequest(t *testing.T, target, fileField string, fileContent []byte, fields map[string]string) *http.Request {
	t.Helper()

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	part, err := w.CreateFormFile(fileField, "upload.bin")
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	if _, err := part.Write(fileContent); err != nil {
		t.Fatalf("write form file: %v", err)
	}

	for k, v := range fields {
		if err := w.WriteField(k, v); err != nil {
			t.Fatalf("write field: %v", err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}

	req := httptest.NewRequest("POST", target, &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	ctx := auth.ContextWithClaims(req.Context(), &model.Claims{UserID: "user-1", Plan: model.PlanFree})
	return req.WithContext(ctx)
}

func TestRemoveImageObjectHandler(t *testing.T) {
	t.Parallel()

	h := newTestAIHandler(&stubQuota{})

	req := authedMultipartRequest(t, "/api/ai/remove-image-object", "image", []byte{1, 2, 3}, map[string]string{
		"object": "lamp post",
	})

	rec := httptest.NewRecorder()
	h.RemoveImageObject(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), "secure_url") {
		t.Errorf("body = %q, want secure_url", rec.Body.String())
	}
}

func TestRemoveImageObjectHandler_MissingObject(t *testing.T) {
	t.Parallel()

	h := newTestAIHandler(&stubQuota{})

	req := authedMultipartRequest(t, "/api/ai/remove-image-object", "image", []byte{1, 2, 3}, nil)

	rec := httptest.NewRecorder()
	h.RemoveImageObject(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400 (body %s)", rec.Code, rec.Body.String())
	}
}

func TestResumeReviewHandler(t *testing.T) {
	t.Parallel()

	h := newTestAIHandler(&stubQuota{})

	req := authedMultipartRequest(t, "/api/ai/resume-review", "resume", []byte("resume content"), nil)

	rec := httptest.NewRecorder()
	h.ResumeReview(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		Success  bool                  `json:"success"`
		Analysis *model.ResumeAnalysis `json:"analysis"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Analysis == nil || resp.Analysis.Score != 70 {
		t.Errorf("analysis = %+v, want score 70", resp.Analysis)
	}
}

func TestResumeReviewHandler_MissingFile(t *testing.T) {
	t.Parallel()

	h := newTestAIHandler(&stubQuota{})

	req := authedMultipartRequest(t, "/api/ai/resume-review", "image", []byte("x"), nil)

	rec := httptest.NewRecorder()
	h.ResumeReview(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "resume") {
		t.Errorf("body = %q, want mention of the resume field", rec.Body.String())
	}
}
