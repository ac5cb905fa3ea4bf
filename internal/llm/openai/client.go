package openai

import (
	"context"
	"fmt"

	openai "github.com/sashabaranov/go-openai"

	"github.com/inkwell-labs/inkwell/internal/domain"
	"github.com/inkwell-labs/inkwell/internal/llm"
)

const (
	// DefaultEmbeddingModel supports reduced output dimensions, which keeps
	// vectors compatible with the fixed 768-dim store schema.
	DefaultEmbeddingModel = openai.SmallEmbedding3
	// DefaultGenerationModel is the chat model used for grounded answers.
	DefaultGenerationModel = openai.GPT4oMini
)

// EmbeddingAPI is the provider surface for embedding calls.
type EmbeddingAPI interface {
	CreateEmbeddings(ctx context.Context, req openai.EmbeddingRequestConverter) (openai.EmbeddingResponse, error)
}

// ChatAPI is the provider surface for completion calls.
type ChatAPI interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// Client wraps the OpenAI API behind the llm.Embedder and llm.Generator
// contracts.
type Client struct {
	embedAPI   EmbeddingAPI
	chatAPI    ChatAPI
	embedModel openai.EmbeddingModel
	genModel   string
}

type Config struct {
	APIKey          string
	EmbeddingModel  openai.EmbeddingModel
	GenerationModel string
}

// NewClient creates an OpenAI-backed client with default models.
func NewClient(apiKey string) *Client {
	return NewClientWithConfig(Config{APIKey: apiKey})
}

// NewClientWithConfig creates an OpenAI-backed client with explicit models.
func NewClientWithConfig(cfg Config) *Client {
	if cfg.EmbeddingModel == "" {
		cfg.EmbeddingModel = DefaultEmbeddingModel
	}
	if cfg.GenerationModel == "" {
		cfg.GenerationModel = DefaultGenerationModel
	}
	api := openai.NewClient(cfg.APIKey)
	return &Client{
		embedAPI:   api,
		chatAPI:    api,
		embedModel: cfg.EmbeddingModel,
		genModel:   cfg.GenerationModel,
	}
}

// Embed generates one normalized vector for the given text.
func (c *Client) Embed(ctx context.Context, text string, task llm.TaskType) ([]float32, error) {
	vecs, err := c.EmbedBatch(ctx, []string{text}, task)
	if err != nil {
		return nil, err
	}
	return vecs[0], nil
}

// EmbedBatch generates vectors for all texts in one request, preserving input
// order. The OpenAI API has no task-type parameter, so the hint is ignored.
func (c *Client) EmbedBatch(ctx context.Context, texts []string, _ llm.TaskType) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}
	for _, text := range texts {
		if text == "" {
			return nil, llm.ErrEmptyText
		}
	}

	resp, err := c.embedAPI.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Input:      texts,
		Model:      c.embedModel,
		Dimensions: domain.EmbeddingDimensions,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create embeddings: %w", err)
	}
	if len(resp.Data) != len(texts) {
		return nil, llm.ErrNoEmbeddingData
	}

	vecs := make([][]float32, len(texts))
	for _, d := range resp.Data {
		if len(d.Embedding) != domain.EmbeddingDimensions {
			return nil, llm.ErrWrongDimensions
		}
		if d.Index < 0 || d.Index >= len(vecs) {
			return nil, llm.ErrNoEmbeddingData
		}
		vecs[d.Index] = llm.Normalize(d.Embedding)
	}
	return vecs, nil
}

// Generate runs a chat completion for the assembled prompt.
func (c *Client) Generate(ctx context.Context, req llm.GenerateRequest) (*llm.GenerateResult, error) {
	resp, err := c.chatAPI.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.genModel,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: req.Prompt},
		},
		MaxTokens:   req.MaxOutputTokens,
		Temperature: float32(req.Temperature),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("no completion choices returned")
	}

	return &llm.GenerateResult{
		Text:         resp.Choices[0].Message.Content,
		Model:        resp.Model,
		PromptTokens: resp.Usage.PromptTokens,
		OutputTokens: resp.Usage.CompletionTokens,
	}, nil
}

// ModelName identifies the embedding model for cache keying.
func (c *Client) ModelName() string {
	return string(c.embedModel)
}
