package llm

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"
)

const (
	// DefaultMaxRetries bounds the retry budget for transient provider errors.
	DefaultMaxRetries = 3
	// DefaultInitialInterval seeds the exponential backoff.
	DefaultInitialInterval = 500 * time.Millisecond
)

type retryEmbedder struct {
	next       Embedder
	maxRetries uint64
	interval   time.Duration
}

type retryGenerator struct {
	next       Generator
	maxRetries uint64
	interval   time.Duration
}

// WithRetry wraps an embedder with bounded exponential backoff. Only errors
// classified transient by IsTransient are retried.
func WithRetry(next Embedder, maxRetries uint64, initialInterval time.Duration) Embedder {
	if maxRetries == 0 {
		maxRetries = DefaultMaxRetries
	}
	if initialInterval <= 0 {
		initialInterval = DefaultInitialInterval
	}
	return &retryEmbedder{next: next, maxRetries: maxRetries, interval: initialInterval}
}

// WithGenerateRetry wraps a generator the same way. Generation is not retried
// by default unless the error is classified transient.
func WithGenerateRetry(next Generator, maxRetries uint64, initialInterval time.Duration) Generator {
	if maxRetries == 0 {
		maxRetries = DefaultMaxRetries
	}
	if initialInterval <= 0 {
		initialInterval = DefaultInitialInterval
	}
	return &retryGenerator{next: next, maxRetries: maxRetries, interval: initialInterval}
}

func (r *retryEmbedder) newBackoff(ctx context.Context) backoff.BackOff {
	return newBackoff(ctx, r.maxRetries, r.interval)
}

func (r *retryEmbedder) Embed(ctx context.Context, text string, task TaskType) ([]float32, error) {
	return backoff.RetryWithData(func() ([]float32, error) {
		vec, err := r.next.Embed(ctx, text, task)
		if err != nil && !IsTransient(err) {
			return nil, backoff.Permanent(err)
		}
		return vec, err
	}, r.newBackoff(ctx))
}

func (r *retryEmbedder) EmbedBatch(ctx context.Context, texts []string, task TaskType) ([][]float32, error) {
	return backoff.RetryWithData(func() ([][]float32, error) {
		vecs, err := r.next.EmbedBatch(ctx, texts, task)
		if err != nil && !IsTransient(err) {
			return nil, backoff.Permanent(err)
		}
		return vecs, err
	}, r.newBackoff(ctx))
}

func (r *retryEmbedder) ModelName() string {
	return r.next.ModelName()
}

func (r *retryGenerator) Generate(ctx context.Context, req GenerateRequest) (*GenerateResult, error) {
	return backoff.RetryWithData(func() (*GenerateResult, error) {
		res, err := r.next.Generate(ctx, req)
		if err != nil && !IsTransient(err) {
			return nil, backoff.Permanent(err)
		}
		return res, err
	}, newBackoff(ctx, r.maxRetries, r.interval))
}

func (r *retryGenerator) ModelName() string {
	return r.next.ModelName()
}

func newBackoff(ctx context.Context, maxRetries uint64, initialInterval time.Duration) backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = initialInterval
	return backoff.WithContext(backoff.WithMaxRetries(b, maxRetries), ctx)
}
