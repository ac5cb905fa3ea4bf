// Package llm defines the embedding and generation provider contracts and the
// cross-cutting decorators (retry, cache, timeout) applied uniformly to every
// provider implementation.
package llm

import "context"

// TaskType hints the embedding provider about the retrieval role of the text.
// Providers that do not support task types ignore it.
type TaskType string

const (
	TaskRetrievalDocument TaskType = "retrieval_document"
	TaskRetrievalQuery    TaskType = "retrieval_query"
)

// Embedder produces fixed-dimension vectors for text.
type Embedder interface {
	// Embed returns one normalized vector for the given text.
	Embed(ctx context.Context, text string, task TaskType) ([]float32, error)

	// EmbedBatch returns one vector per input text, preserving input order.
	EmbedBatch(ctx context.Context, texts []string, task TaskType) ([][]float32, error)

	// ModelName identifies the provider model, used for cache keying.
	ModelName() string
}

// GenerateRequest carries the fully assembled prompt and sampling parameters.
type GenerateRequest struct {
	Prompt          string
	MaxOutputTokens int
	Temperature     float64
}

// GenerateResult is the provider response plus usage metadata.
type GenerateResult struct {
	Text         string
	Model        string
	PromptTokens int
	OutputTokens int
}

// Generator produces a text completion for a prompt.
type Generator interface {
	Generate(ctx context.Context, req GenerateRequest) (*GenerateResult, error)
	ModelName() string
}
