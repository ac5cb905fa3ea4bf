package gemini

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"github.com/inkwell-labs/inkwell/internal/domain"
	"github.com/inkwell-labs/inkwell/internal/llm"
)

const (
	// DefaultEmbeddingModel produces 768-dim vectors natively.
	DefaultEmbeddingModel = "text-embedding-004"
	// DefaultGenerationModel is the chat model used for grounded answers.
	DefaultGenerationModel = "gemini-2.0-flash"
)

// Client wraps the Gemini API behind the llm.Embedder and llm.Generator
// contracts.
type Client struct {
	api        *genai.Client
	embedModel string
	genModel   string
}

type Config struct {
	APIKey          string
	EmbeddingModel  string
	GenerationModel string
}

// NewClient creates a Gemini-backed client with default models.
func NewClient(ctx context.Context, apiKey string) (*Client, error) {
	return NewClientWithConfig(ctx, Config{APIKey: apiKey})
}

// NewClientWithConfig creates a Gemini-backed client with explicit models.
func NewClientWithConfig(ctx context.Context, cfg Config) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, llm.ErrNoProvider
	}
	if cfg.EmbeddingModel == "" {
		cfg.EmbeddingModel = DefaultEmbeddingModel
	}
	if cfg.GenerationModel == "" {
		cfg.GenerationModel = DefaultGenerationModel
	}
	api, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}
	return &Client{
		api:        api,
		embedModel: cfg.EmbeddingModel,
		genModel:   cfg.GenerationModel,
	}, nil
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
// order.
func (c *Client) EmbedBatch(ctx context.Context, texts []string, task llm.TaskType) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}
	contents := make([]*genai.Content, len(texts))
	for i, text := range texts {
		if text == "" {
			return nil, llm.ErrEmptyText
		}
		contents[i] = &genai.Content{Parts: []*genai.Part{{Text: text}}}
	}

	resp, err := c.api.Models.EmbedContent(ctx, c.embedModel, contents, &genai.EmbedContentConfig{
		TaskType: taskTypeName(task),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to embed content: %w", err)
	}
	if resp == nil || len(resp.Embeddings) != len(texts) {
		return nil, llm.ErrNoEmbeddingData
	}

	vecs := make([][]float32, len(texts))
	for i, emb := range resp.Embeddings {
		if emb == nil || len(emb.Values) != domain.EmbeddingDimensions {
			return nil, llm.ErrWrongDimensions
		}
		vecs[i] = llm.Normalize(emb.Values)
	}
	return vecs, nil
}

// Generate runs a content generation call for the assembled prompt.
func (c *Client) Generate(ctx context.Context, req llm.GenerateRequest) (*llm.GenerateResult, error) {
	var config *genai.GenerateContentConfig
	if req.MaxOutputTokens > 0 || req.Temperature > 0 {
		config = &genai.GenerateContentConfig{}
		if req.MaxOutputTokens > 0 {
			config.MaxOutputTokens = int32(req.MaxOutputTokens)
		}
		if req.Temperature > 0 {
			config.Temperature = genai.Ptr(float32(req.Temperature))
		}
	}

	resp, err := c.api.Models.GenerateContent(
		ctx,
		c.genModel,
		[]*genai.Content{{Parts: []*genai.Part{{Text: req.Prompt}}}},
		config,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to generate content: %w", err)
	}

	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return nil, fmt.Errorf("no generation text returned")
	}

	result := &llm.GenerateResult{
		Text:  text,
		Model: c.genModel,
	}
	if resp.UsageMetadata != nil {
		result.PromptTokens = int(resp.UsageMetadata.PromptTokenCount)
		result.OutputTokens = int(resp.UsageMetadata.CandidatesTokenCount)
	}
	return result, nil
}

// ModelName identifies the embedding model for cache keying.
func (c *Client) ModelName() string {
	return c.embedModel
}

func taskTypeName(task llm.TaskType) string {
	switch task {
	case llm.TaskRetrievalQuery:
		return "RETRIEVAL_QUERY"
	case llm.TaskRetrievalDocument:
		return "RETRIEVAL_DOCUMENT"
	default:
		return ""
	}
}
