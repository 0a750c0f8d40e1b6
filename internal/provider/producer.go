// Package provider wraps the external content-producing APIs behind one
// interface: text completion, image synthesis, and image transformation.
package provider

import (
	"context"
	"errors"

	"github.com/quickai/quickai/internal/model"
)

// Common errors for provider operations.
var (
	// ErrProviderFailure covers network errors and non-2xx provider responses.
	ErrProviderFailure = errors.New("content provider request failed")
	// ErrMalformedResponse means the provider answered but the payload does
	// not parse as the expected structured shape.
	ErrMalformedResponse = errors.New("malformed provider response")
)

// Producer is the uniform interface over all content-producing operations.
// Image-producing variants return raw bytes; the caller decides where the
// bytes are stored.
type Producer interface {
	GenerateArticle(ctx context.Context, prompt string, targetLength int) (string, error)
	GenerateBlogTitles(ctx context.Context, prompt string) (string, error)
	GenerateImage(ctx context.Context, prompt string) ([]byte, error)
	RemoveBackground(ctx context.Context, image []byte) ([]byte, error)
	RemoveObject(ctx context.Context, image []byte, object string) ([]byte, error)
	ReviewResume(ctx context.Context, document []byte) (*model.ResumeAnalysis, error)
}

// producer composes the text and image clients into a single Producer.
type producer struct {
	text  *TextClient
	image *ImageClient
}

// NewProducer creates a Producer backed by the given clients.
func NewProducer(text *TextClient, image *ImageClient) Producer {
	return &producer{text: text, image: image}
}

func (p *producer) GenerateArticle(ctx context.Context, prompt string, targetLength int) (string, error) {
	return p.text.GenerateArticle(ctx, prompt, targetLength)
}

func (p *producer) GenerateBlogTitles(ctx context.Context, prompt string) (string, error) {
	return p.text.GenerateBlogTitles(ctx, prompt)
}

func (p *producer) GenerateImage(ctx context.Context, prompt string) ([]byte, error) {
	return p.image.Generate(ctx, prompt)
}

func (p *producer) RemoveBackground(ctx context.Context, image []byte) ([]byte, error) {
	return p.image.RemoveBackground(ctx, image)
}

func (p *producer) RemoveObject(ctx context.Context, image []byte, object string) ([]byte, error) {
	return p.image.RemoveObject(ctx, image, object)
}

func (p *producer) ReviewResume(ctx context.Context, document []byte) (*model.ResumeAnalysis, error) {
	return p.text.ReviewResume(ctx, document)
}
