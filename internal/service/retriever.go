package service

import (
	"context"
	"errors"
	"strings"

	"github.com/inkwell-labs/inkwell/internal/domain"
	"github.com/inkwell-labs/inkwell/internal/llm"
	"github.com/inkwell-labs/inkwell/internal/telemetry"
)

// QueryEmbedderInterface is the embedding provider surface retrieval needs.
type QueryEmbedderInterface interface {
	Embed(ctx context.Context, text string, task llm.TaskType) ([]float32, error)
}

// RetrieverConfig carries the default similarity gate and result cap.
type RetrieverConfig struct {
	Threshold float64
	TopK      int
}

// DefaultRetrieverConfig provides the standard retrieval parameters.
func DefaultRetrieverConfig() RetrieverConfig {
	return RetrieverConfig{Threshold: 0.7, TopK: 5}
}

// RetrieveInput describes one retrieval request. DocumentIDs, when set,
// narrows the search to those documents; it must already be validated against
// the notebook.
type RetrieveInput struct {
	UserID      string
	NotebookID  string
	Query       string
	DocumentIDs []string
	Threshold   *float64
	TopK        *int
}

// RetrieverService embeds a query and runs the scoped vector search.
type RetrieverService struct {
	embedder QueryEmbedderInterface
	store    EmbeddingRepositoryInterface
	cfg      RetrieverConfig
}

// NewRetrieverService creates a new RetrieverService instance
func NewRetrieverService(
	embedder QueryEmbedderInterface,
	store EmbeddingRepositoryInterface,
	cfg RetrieverConfig,
) *RetrieverService {
	if cfg.TopK <= 0 {
		cfg = DefaultRetrieverConfig()
	}
	return &RetrieverService{embedder: embedder, store: store, cfg: cfg}
}

// Retrieve embeds the query text and returns the ranked matches inside the
// notebook boundary. An empty result is a valid outcome, not an error.
// Retrieval fails closed: any embedding or store failure surfaces as an error
// and never degrades to fabricated context.
func (s *RetrieverService) Retrieve(ctx context.Context, input RetrieveInput) (*domain.RetrievalResult, error) {
	ctx, span := telemetry.StartSpan(ctx, "RetrieverService.Retrieve", telemetry.SpanAttributes{
		UserID:     input.UserID,
		NotebookID: input.NotebookID,
		Operation:  "retrieve",
	})
	defer span.End()

	if strings.TrimSpace(input.Query) == "" {
		return nil, domain.ErrEmptyQuery
	}

	threshold := s.cfg.Threshold
	if input.Threshold != nil {
		threshold = *input.Threshold
	}
	topK := s.cfg.TopK
	if input.TopK != nil && *input.TopK > 0 {
		topK = *input.TopK
	}

	vector, err := s.embedder.Embed(ctx, input.Query, llm.TaskRetrievalQuery)
	if err != nil {
		span.SetError(err)
		return nil, domain.NewRetrievalError(err)
	}

	chunks, err := s.store.SearchChunks(ctx, domain.SearchQuery{
		NotebookID:  input.NotebookID,
		UserID:      input.UserID,
		Vector:      vector,
		Threshold:   threshold,
		TopK:        topK,
		DocumentIDs: input.DocumentIDs,
	})
	if err != nil {
		span.SetError(err)
		var derr *domain.DomainError
		if errors.As(err, &derr) {
			return nil, err
		}
		return nil, domain.NewRetrievalError(err)
	}

	return &domain.RetrievalResult{Chunks: chunks}, nil
}
