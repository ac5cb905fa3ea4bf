package service

import (
	"context"

	"github.com/inkwell-labs/inkwell/internal/telemetry"
)

// SnippetMaxChars bounds search result snippets.
const SnippetMaxChars = 500

// SearchInput describes one semantic search request against a notebook.
type SearchInput struct {
	UserID     string
	NotebookID string
	Query      string
	Threshold  *float64
	TopK       *int
}

// SearchResult is one match with its source document resolved.
type SearchResult struct {
	DocumentID string  `json:"document_id"`
	Filename   string  `json:"filename"`
	ChunkIndex int     `json:"chunk_index"`
	Snippet    string  `json:"snippet"`
	Similarity float64 `json:"similarity"`
}

// SearchService exposes scoped semantic search directly, without generation.
type SearchService struct {
	notebookRepo NotebookRepositoryInterface
	documentRepo DocumentRepositoryInterface
	retriever    RetrieverInterface
}

// NewSearchService creates a new SearchService instance
func NewSearchService(
	notebookRepo NotebookRepositoryInterface,
	documentRepo DocumentRepositoryInterface,
	retriever RetrieverInterface,
) *SearchService {
	return &SearchService{
		notebookRepo: notebookRepo,
		documentRepo: documentRepo,
		retriever:    retriever,
	}
}

// Search runs a semantic search over a notebook's documents and returns
// ranked snippets.
func (s *SearchService) Search(ctx context.Context, input SearchInput) ([]SearchResult, error) {
	ctx, span := telemetry.StartSpan(ctx, "SearchService.Search", telemetry.SpanAttributes{
		UserID:     input.UserID,
		NotebookID: input.NotebookID,
		Operation:  "search",
	})
	defer span.End()

	if _, err := s.notebookRepo.GetByIDForUser(ctx, input.NotebookID, input.UserID); err != nil {
		return nil, err
	}

	result, err := s.retriever.Retrieve(ctx, RetrieveInput{
		UserID:     input.UserID,
		NotebookID: input.NotebookID,
		Query:      input.Query,
		Threshold:  input.Threshold,
		TopK:       input.TopK,
	})
	if err != nil {
		span.SetError(err)
		return nil, err
	}

	names, err := s.documentRepo.GetNames(ctx, input.NotebookID)
	if err != nil {
		return nil, err
	}

	results := make([]SearchResult, 0, len(result.Chunks))
	for _, c := range result.Chunks {
		name := names[c.DocumentID]
		if name == "" {
			name = c.DocumentID
		}
		results = append(results, SearchResult{
			DocumentID: c.DocumentID,
			Filename:   name,
			ChunkIndex: c.ChunkIndex,
			Snippet:    snippet(c.Content, SnippetMaxChars),
			Similarity: c.Similarity,
		})
	}
	return results, nil
}

func snippet(content string, maxChars int) string {
	runes := []rune(content)
	if len(runes) <= maxChars {
		return content
	}
	return string(runes[:maxChars]) + "…"
}
