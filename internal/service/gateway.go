package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/quickai/quickai/internal/auth"
	"github.com/quickai/quickai/internal/metrics"
	"github.com/quickai/quickai/internal/model"
	"github.com/quickai/quickai/internal/provider"
)

// CreationWriter persists new creations.
type CreationWriter interface {
	CreateCreation(ctx context.Context, c *model.Creation) error
}

// QuotaStore meters free-plan usage. IncrementIfBelow must be atomic:
// two concurrent reservations at limit-1 must never both succeed.
type QuotaStore interface {
	Usage(ctx context.Context, userID string) (int64, error)
	IncrementIfBelow(ctx context.Context, userID string, limit int64) (bool, error)
	DecrementUsage(ctx context.Context, userID string) error
}

// BlobStore persists media bytes and returns their public URL.
type BlobStore interface {
	Upload(ctx context.Context, key, contentType string, data []byte) (string, error)
}

// GatewayService orchestrates every content-producing operation:
// claims, quota, provider call, persistence, usage accounting.
type GatewayService struct {
	store    CreationWriter
	quota    QuotaStore
	producer provider.Producer
	blobs    BlobStore
	limit    int64
	logger   *slog.Logger
	metrics  metrics.Recorder
}

// NewGatewayService creates a GatewayService.
func NewGatewayService(
	store CreationWriter,
	quota QuotaStore,
	producer provider.Producer,
	blobs BlobStore,
	freeLimit int64,
	logger *slog.Logger,
	recorder metrics.Recorder,
) *GatewayService {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	return &GatewayService{
		store:    store,
		quota:    quota,
		producer: producer,
		blobs:    blobs,
		limit:    freeLimit,
		logger:   logger,
		metrics:  recorder,
	}
}

// GenerateArticleInput defines input for article generation.
type GenerateArticleInput struct {
	Prompt  string
	Length  int
	Publish bool
}

// GenerateArticle produces long-form text and records a creation.
func (s *GatewayService) GenerateArticle(ctx context.Context, input GenerateArticleInput) (*model.Creation, error) {
	if input.Prompt == "" {
		return nil, invalidInput("prompt", "is required")
	}

	return s.produce(ctx, model.TypeArticle, input.Prompt, input.Publish, func(ctx context.Context) (string, error) {
		return s.producer.GenerateArticle(ctx, input.Prompt, input.Length)
	})
}

// GenerateBlogTitlesInput defines input for blog title generation.
type GenerateBlogTitlesInput struct {
	Prompt  string
	Publish bool
}

// GenerateBlogTitles produces newline-delimited title candidates and records
// a creation.
func (s *GatewayService) GenerateBlogTitles(ctx context.Context, input GenerateBlogTitlesInput) (*model.Creation, error) {
	if input.Prompt == "" {
		return nil, invalidInput("prompt", "is required")
	}

	return s.produce(ctx, model.TypeTitle, input.Prompt, input.Publish, func(ctx context.Context) (string, error) {
		return s.producer.GenerateBlogTitles(ctx, input.Prompt)
	})
}

// GenerateImageInput defines input for image synthesis.
type GenerateImageInput struct {
	Prompt  string
	Publish bool
}

// GenerateImage synthesizes an image, stores it, and records a creation
// whose content is the stored image URL.
func (s *GatewayService) GenerateImage(ctx context.Context, input GenerateImageInput) (*model.Creation, error) {
	if input.Prompt == "" {
		return nil, invalidInput("prompt", "is required")
	}

	return s.produce(ctx, model.TypeImage, input.Prompt, input.Publish, func(ctx context.Context) (string, error) {
		image, err := s.producer.GenerateImage(ctx, input.Prompt)
		if err != nil {
			return "", err
		}
		return s.uploadImage(ctx, image)
	})
}

// RemoveBackgroundInput defines input for background removal.
type RemoveBackgroundInput struct {
	Image   []byte
	Publish bool
}

// RemoveBackground strips the background from an uploaded image.
func (s *GatewayService) RemoveBackground(ctx context.Context, input RemoveBackgroundInput) (*model.Creation, error) {
	if len(input.Image) == 0 {
		return nil, invalidInput("image", "is required")
	}

	return s.produce(ctx, model.TypeImage, "Remove background from image", input.Publish, func(ctx context.Context) (string, error) {
		image, err := s.producer.RemoveBackground(ctx, input.Image)
		if err != nil {
			return "", err
		}
		return s.uploadImage(ctx, image)
	})
}

// RemoveObjectInput defines input for object removal.
type RemoveObjectInput struct {
	Image   []byte
	Object  string
	Publish bool
}

// RemoveObject in-paints the described object out of an uploaded image.
func (s *GatewayService) RemoveObject(ctx context.Context, input RemoveObjectInput) (*model.Creation, error) {
	if len(input.Image) == 0 {
		return nil, invalidInput("image", "is required")
	}
	if input.Object == "" {
		return nil, invalidInput("object", "is required")
	}

	prompt := fmt.Sprintf("Removed %s from image", input.Object)
	return s.produce(ctx, model.TypeImage, prompt, input.Publish, func(ctx context.Context) (string, error) {
		image, err := s.producer.RemoveObject(ctx, input.Image, input.Object)
		if err != nil {
			return "", err
		}
		return s.uploadImage(ctx, image)
	})
}

// MaxResumeSize is the upper bound for uploaded resume documents.
const MaxResumeSize = 5 << 20 // 5 MiB

// ReviewResumeInput defines input for resume review.
type ReviewResumeInput struct {
	Document []byte
	Publish  bool
}

// ReviewResumeOutput bundles the structured analysis with the recorded creation.
type ReviewResumeOutput struct {
	Creation *model.Creation
	Analysis *model.ResumeAnalysis
}

// ReviewResume analyzes an uploaded resume and records the summary as a
// creation. The full analysis is returned to the caller but only the summary
// text is persisted.
func (s *GatewayService) ReviewResume(ctx context.Context, input ReviewResumeInput) (*ReviewResumeOutput, error) {
	if len(input.Document) == 0 {
		return nil, invalidInput("resume", "is required")
	}
	if len(input.Document) > MaxResumeSize {
		return nil, invalidInput("resume", "exceeds allowed size")
	}

	var analysis *model.ResumeAnalysis
	creation, err := s.produce(ctx, model.TypeResume, "Review the uploaded resume", input.Publish, func(ctx context.Context) (string, error) {
		result, err := s.producer.ReviewResume(ctx, input.Document)
		if err != nil {
			return "", err
		}
		analysis = result
		return result.Summary, nil
	})
	if err != nil {
		return nil, err
	}

	return &ReviewResumeOutput{Creation: creation, Analysis: analysis}, nil
}

// produce runs the fixed gateway sequence: claims, quota check, usage
// reservation, provider call, persistence. A reserved usage unit is refunded
// whenever a later step fails, so a request either fully completes or leaves
// no state behind.
func (s *GatewayService) produce(
	ctx context.Context,
	typ model.CreationType,
	prompt string,
	publish bool,
	invoke func(ctx context.Context) (string, error),
) (*model.Creation, error) {
	claims := auth.ClaimsFromContext(ctx)
	if claims == nil {
		return nil, ErrUnauthenticated
	}

	start := time.Now()

	// Reserve a usage unit before spending provider budget. The conditional
	// increment is atomic, so concurrent requests cannot slip past the limit.
	reserved := false
	if !claims.IsPremium() {
		ok, err := s.quota.IncrementIfBelow(ctx, claims.UserID, s.limit)
		if err != nil {
			return nil, fmt.Errorf("quota check failed: %w", err)
		}
		if !ok {
			s.metrics.IncQuotaRejected()
			return nil, ErrQuotaExceeded
		}
		reserved = true
	}

	providerStart := time.Now()
	content, err := invoke(ctx)
	s.metrics.ObserveProviderDuration(time.Since(providerStart))
	if err != nil {
		s.refund(ctx, claims, reserved)
		s.metrics.IncProviderFailure(string(typ))
		return nil, mapProviderError(err)
	}

	creation := &model.Creation{
		ID:        ulid.Make().String(),
		UserID:    claims.UserID,
		Prompt:    prompt,
		Content:   content,
		Type:      typ,
		Publish:   publish,
		Likes:     []string{},
		CreatedAt: time.Now().UTC(),
	}

	if err := s.store.CreateCreation(ctx, creation); err != nil {
		s.refund(ctx, claims, reserved)
		return nil, fmt.Errorf("failed to persist creation: %w", err)
	}

	s.metrics.IncCreation(string(typ))

	s.logger.Info("creation_recorded",
		slog.String("creation_id", creation.ID),
		slog.String("user_id", claims.UserID),
		slog.String("type", string(typ)),
		slog.String("plan", string(claims.Plan)),
		slog.Float64("duration_ms", float64(time.Since(start).Microseconds())/1000),
	)

	return creation, nil
}

// refund returns a reserved usage unit after a failed request.
// Best effort: a failed refund is logged, not surfaced, since the caller
// already has a more useful error in hand.
func (s *GatewayService) refund(ctx context.Context, claims *model.Claims, reserved bool) {
	if !reserved {
		return
	}
	if err := s.quota.DecrementUsage(ctx, claims.UserID); err != nil {
		s.logger.Error("usage refund failed",
			slog.String("user_id", claims.UserID),
			slog.String("error", err.Error()),
		)
	}
}

// uploadImage stores produced image bytes and returns their public URL.
func (s *GatewayService) uploadImage(ctx context.Context, image []byte) (string, error) {
	key := "creations/" + ulid.Make().String() + ".png"
	url, err := s.blobs.Upload(ctx, key, "image/png", image)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrProviderFailure, err)
	}
	return url, nil
}

// mapProviderError converts provider-package errors to service errors.
func mapProviderError(err error) error {
	if errors.Is(err, provider.ErrMalformedResponse) {
		return fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	return fmt.Errorf("%w: %v", ErrProviderFailure, err)
}
