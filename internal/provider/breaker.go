package provider

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/sony/gobreaker"

	"github.com/quickai/quickai/internal/model"
)

// BreakerConfig tunes the circuit breaker around provider calls.
type BreakerConfig struct {
	Name        string
	MaxRequests uint32
	Interval    time.Duration
	Timeout     time.Duration
	// FailureThreshold is the failure ratio that trips the breaker once
	// MinRequests calls have been observed in the interval.
	FailureThreshold float64
	MinRequests      uint32
}

// DefaultBreakerConfig returns conservative defaults. Generative providers
// are slow and flaky enough that tripping too eagerly hurts more than the
// occasional wasted call.
func DefaultBreakerConfig(name string) BreakerConfig {
	return BreakerConfig{
		Name:             name,
		MaxRequests:      3,
		Interval:         30 * time.Second,
		Timeout:          60 * time.Second,
		FailureThreshold: 0.8,
		MinRequests:      5,
	}
}

// breakerProducer wraps a Producer with a shared circuit breaker.
// When upstream keeps failing, requests are rejected immediately instead of
// burning provider budget on calls that will not succeed.
type breakerProducer struct {
	next   Producer
	cb     *gobreaker.CircuitBreaker
	logger *slog.Logger
}

// WithBreaker wraps a Producer with a circuit breaker.
func WithBreaker(next Producer, cfg BreakerConfig, logger *slog.Logger) Producer {
	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        cfg.Name,
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < cfg.MinRequests {
				return false
			}
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return failureRatio >= cfg.FailureThreshold
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			logger.Warn("circuit breaker state change",
				slog.String("breaker", name),
				slog.String("from", from.String()),
				slog.String("to", to.String()),
			)
		},
		IsSuccessful: func(err error) bool {
			// Malformed responses are the provider misbehaving on one
			// prompt, not an availability problem.
			return err == nil || errors.Is(err, ErrMalformedResponse)
		},
	})

	return &breakerProducer{next: next, cb: cb, logger: logger}
}

// execute runs fn through the breaker and maps open-circuit rejections to
// ErrProviderFailure so callers see one error taxonomy.
func (b *breakerProducer) execute(fn func() (any, error)) (any, error) {
	result, err := b.cb.Execute(fn)
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, fmt.Errorf("%w: provider temporarily unavailable", ErrProviderFailure)
		}
		return nil, err
	}
	return result, nil
}

func (b *breakerProducer) GenerateArticle(ctx context.Context, prompt string, targetLength int) (string, error) {
	result, err := b.execute(func() (any, error) {
		return b.next.GenerateArticle(ctx, prompt, targetLength)
	})
	if err != nil {
		return "", err
	}
	return result.(string), nil
}

func (b *breakerProducer) GenerateBlogTitles(ctx context.Context, prompt string) (string, error) {
	result, err := b.execute(func() (any, error) {
		return b.next.GenerateBlogTitles(ctx, prompt)
	})
	if err != nil {
		return "", err
	}
	return result.(string), nil
}

func (b *breakerProducer) GenerateImage(ctx context.Context, prompt string) ([]byte, error) {
	result, err := b.execute(func() (any, error) {
		return b.next.GenerateImage(ctx, prompt)
	})
	if err != nil {
		return nil, err
	}
	return result.([]byte), nil
}

func (b *breakerProducer) RemoveBackground(ctx context.Context, image []byte) ([]byte, error) {
	result, err := b.execute(func() (any, error) {
		return b.next.RemoveBackground(ctx, image)
	})
	if err != nil {
		return nil, err
	}
	return result.([]byte), nil
}

func (b *breakerProducer) RemoveObject(ctx context.Context, image []byte, object string) ([]byte, error) {
	result, err := b.execute(func() (any, error) {
		return b.next.RemoveObject(ctx, image, object)
	})
	if err != nil {
		return nil, err
	}
	return result.([]byte), nil
}

func (b *breakerProducer) ReviewResume(ctx context.Context, document []byte) (*model.ResumeAnalysis, error) {
	result, err := b.execute(func() (any, error) {
		return b.next.ReviewResume(ctx, document)
	})
	if err != nil {
		return nil, err
	}
	return result.(*model.ResumeAnalysis), nil
}
