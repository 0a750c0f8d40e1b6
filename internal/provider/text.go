package provider

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/quickai/quickai/internal/model"
)

const (
	defaultArticleTokens = 1000
	titleMaxTokens       = 200
	resumeMaxTokens      = 1200
	completionTemp       = 0.7
)

// TextClient talks to an OpenAI-compatible chat completions endpoint.
type TextClient struct {
	http  *resty.Client
	model string
}

// TextConfig holds text provider configuration.
type TextConfig struct {
	BaseURL string
	APIKey  string
	Model   string
	Timeout time.Duration
}

// NewTextClient creates a text generation client.
func NewTextClient(cfg TextConfig) *TextClient {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 90 * time.Second
	}

	client := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetAuthToken(cfg.APIKey).
		SetTimeout(timeout)

	return &TextClient{
		http:  client,
		model: cfg.Model,
	}
}

// chatRequest is the OpenAI-compatible completion request body.
type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// chatResponse is the completion response body.
type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// complete sends a single-turn chat completion and returns the text.
func (c *TextClient) complete(ctx context.Context, prompt string, maxTokens int) (string, error) {
	var out chatResponse

	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(chatRequest{
			Model:       c.model,
			Messages:    []chatMessage{{Role: "user", Content: prompt}},
			Temperature: completionTemp,
			MaxTokens:   maxTokens,
		}).
		SetResult(&out).
		Post("/chat/completions")
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrProviderFailure, err)
	}
	if resp.IsError() {
		return "", fmt.Errorf("%w: status %d", ErrProviderFailure, resp.StatusCode())
	}

	if len(out.Choices) == 0 || out.Choices[0].Message.Content == "" {
		return "", fmt.Errorf("%w: empty completion", ErrMalformedResponse)
	}

	return out.Choices[0].Message.Content, nil
}

// GenerateArticle produces long-form text for a prompt.
// targetLength caps the completion size in tokens.
func (c *TextClient) GenerateArticle(ctx context.Context, prompt string, targetLength int) (string, error) {
	if targetLength <= 0 {
		targetLength = defaultArticleTokens
	}
	return c.complete(ctx, prompt, targetLength)
}

// GenerateBlogTitles produces newline-delimited title candidates.
func (c *TextClient) GenerateBlogTitles(ctx context.Context, prompt string) (string, error) {
	wrapped := fmt.Sprintf(
		"Generate a list of blog title candidates for the following topic, one per line, without numbering: %s",
		prompt,
	)
	return c.complete(ctx, wrapped, titleMaxTokens)
}

// resumeReviewPrompt asks for strict JSON so the answer can be parsed into
// a ResumeAnalysis. Models still like to wrap JSON in markdown fences, so
// parsing stays tolerant of that.
const resumeReviewPrompt = `Review the following resume and respond with ONLY a JSON object of this exact shape:
{"score": <integer 0-100>, "summary": "<one paragraph>", "strengths": ["<item>", ...], "improvements": ["<item>", ...]}

Resume:
%s`

// ReviewResume analyzes a resume document and returns a structured review.
func (c *TextClient) ReviewResume(ctx context.Context, document []byte) (*model.ResumeAnalysis, error) {
	raw, err := c.complete(ctx, fmt.Sprintf(resumeReviewPrompt, document), resumeMaxTokens)
	if err != nil {
		return nil, err
	}

	return ParseResumeAnalysis(raw)
}
