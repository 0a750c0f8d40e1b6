package provider

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"time"

	"github.com/go-resty/resty/v2"
)

// ImageClient talks to the image synthesis / transformation provider.
// The provider exposes ClipDrop-style multipart endpoints that return raw
// image bytes.
type ImageClient struct {
	http *resty.Client
}

// ImageConfig holds image provider configuration.
type ImageConfig struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
}

// NewImageClient creates an image provider client.
func NewImageClient(cfg ImageConfig) *ImageClient {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 90 * time.Second
	}

	client := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetHeader("x-api-key", cfg.APIKey).
		SetTimeout(timeout)

	return &ImageClient{http: client}
}

// Generate synthesizes an image from a text prompt.
func (c *ImageClient) Generate(ctx context.Context, prompt string) ([]byte, error) {
	resp, err := c.http.R().
		SetContext(ctx).
		SetMultipartFormData(map[string]string{"prompt": prompt}).
		Post("/text-to-image/v1")

	return imageBytes(resp, err)
}

// RemoveBackground strips the background from an image.
func (c *ImageClient) RemoveBackground(ctx context.Context, image []byte) ([]byte, error) {
	resp, err := c.http.R().
		SetContext(ctx).
		SetFileReader("image_file", "image.png", bytesReader(image)).
		Post("/remove-background/v1")

	return imageBytes(resp, err)
}

// RemoveObject in-paints the region described by object out of an image.
func (c *ImageClient) RemoveObject(ctx context.Context, image []byte, object string) ([]byte, error) {
	resp, err := c.http.R().
		SetContext(ctx).
		SetFileReader("image_file", "image.png", bytesReader(image)).
		SetMultipartFormData(map[string]string{"prompt": object}).
		Post("/cleanup/v1")

	return imageBytes(resp, err)
}

// imageBytes normalizes an image provider response into raw bytes.
func imageBytes(resp *resty.Response, err error) ([]byte, error) {
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrProviderFailure, err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("%w: status %d", ErrProviderFailure, resp.StatusCode())
	}

	body := resp.Body()
	if len(body) == 0 {
		return nil, fmt.Errorf("%w: empty image body", ErrMalformedResponse)
	}

	return body, nil
}

// bytesReader adapts a byte slice for resty's SetFileReader.
func bytesReader(b []byte) io.Reader {
	return bytes.NewReader(b)
}
