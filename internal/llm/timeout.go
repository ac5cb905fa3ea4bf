package llm

import (
	"context"
	"time"
)

type timeoutEmbedder struct {
	next    Embedder
	timeout time.Duration
}

type timeoutGenerator struct {
	next    Generator
	timeout time.Duration
}

// WithTimeout bounds each provider call with its own deadline, shorter than
// any user-facing request timeout, so a provider hang degrades to an error
// instead of stalling the whole request chain.
func WithTimeout(next Embedder, timeout time.Duration) Embedder {
	if timeout <= 0 {
		return next
	}
	return &timeoutEmbedder{next: next, timeout: timeout}
}

// WithGenerateTimeout bounds each generation call the same way.
func WithGenerateTimeout(next Generator, timeout time.Duration) Generator {
	if timeout <= 0 {
		return next
	}
	return &timeoutGenerator{next: next, timeout: timeout}
}

func (t *timeoutEmbedder) Embed(ctx context.Context, text string, task TaskType) ([]float32, error) {
	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()
	return t.next.Embed(ctx, text, task)
}

func (t *timeoutEmbedder) EmbedBatch(ctx context.Context, texts []string, task TaskType) ([][]float32, error) {
	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()
	return t.next.EmbedBatch(ctx, texts, task)
}

func (t *timeoutEmbedder) ModelName() string {
	return t.next.ModelName()
}

func (t *timeoutGenerator) Generate(ctx context.Context, req GenerateRequest) (*GenerateResult, error) {
	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()
	return t.next.Generate(ctx, req)
}

func (t *timeoutGenerator) ModelName() string {
	return t.next.ModelName()
}
