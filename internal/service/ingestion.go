package service

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/inkwell-labs/inkwell/internal/domain"
	"github.com/inkwell-labs/inkwell/internal/llm"
	"github.com/inkwell-labs/inkwell/internal/telemetry"
)

// EmbeddingRepositoryInterface defines the repository interface for embedding persistence
type EmbeddingRepositoryInterface interface {
	ReplaceDocumentChunks(ctx context.Context, documentID string, records []*domain.EmbeddingRecord) error
	DeleteByDocument(ctx context.Context, documentID string) error
	SearchChunks(ctx context.Context, query domain.SearchQuery) ([]domain.RetrievedChunk, error)
}

// DocumentEmbedderInterface is the embedding provider surface ingestion needs.
type DocumentEmbedderInterface interface {
	EmbedBatch(ctx context.Context, texts []string, task llm.TaskType) ([][]float32, error)
	ModelName() string
}

// IngestionService chunks document text, embeds every chunk, and replaces the
// document's stored vectors in one atomic step.
type IngestionService struct {
	embedder      DocumentEmbedderInterface
	embeddingRepo EmbeddingRepositoryInterface
	chunkCfg      ChunkConfig
	concurrency   int

	// Serializes re-ingestion per document so concurrent runs cannot
	// interleave partial chunk sets.
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewIngestionService creates a new IngestionService instance
func NewIngestionService(
	embedder DocumentEmbedderInterface,
	embeddingRepo EmbeddingRepositoryInterface,
	chunkCfg ChunkConfig,
	concurrency int,
) *IngestionService {
	if chunkCfg.MaxChars <= 0 {
		chunkCfg = DefaultChunkConfig()
	}
	if concurrency <= 0 {
		concurrency = 4
	}
	return &IngestionService{
		embedder:      embedder,
		embeddingRepo: embeddingRepo,
		chunkCfg:      chunkCfg,
		concurrency:   concurrency,
		locks:         make(map[string]*sync.Mutex),
	}
}

// IngestDocument chunks and embeds one document, replacing whatever vectors
// were previously stored for it. Returns the number of chunks stored. A
// document whose text yields no chunks ends up with zero stored vectors,
// which is not an error.
func (s *IngestionService) IngestDocument(ctx context.Context, doc *domain.Document) (int, error) {
	ctx, span := telemetry.StartSpan(ctx, "IngestionService.IngestDocument", telemetry.SpanAttributes{
		NotebookID: doc.NotebookID,
		DocumentID: doc.ID,
		Operation:  "ingest",
	})
	defer span.End()

	lock := s.docLock(doc.ID)
	lock.Lock()
	defer lock.Unlock()

	chunks := ChunkText(doc.Content, s.chunkCfg)
	if len(chunks) == 0 {
		if err := s.embeddingRepo.DeleteByDocument(ctx, doc.ID); err != nil {
			return 0, domain.NewIngestionError(err)
		}
		return 0, nil
	}

	texts := make([]string, 0, len(chunks))
	kept := make([]TextChunk, 0, len(chunks))
	for _, c := range chunks {
		if strings.TrimSpace(c.Content) == "" {
			continue
		}
		texts = append(texts, c.Content)
		kept = append(kept, c)
	}
	if len(texts) == 0 {
		if err := s.embeddingRepo.DeleteByDocument(ctx, doc.ID); err != nil {
			return 0, domain.NewIngestionError(err)
		}
		return 0, nil
	}

	vectors, err := s.embedder.EmbedBatch(ctx, texts, llm.TaskRetrievalDocument)
	if err != nil {
		span.SetError(err)
		return 0, domain.NewEmbeddingError(err)
	}
	if len(vectors) != len(texts) {
		return 0, domain.NewEmbeddingError(llm.ErrNoEmbeddingData)
	}

	now := time.Now().UTC()
	// One embedding id per ingestion run groups all chunks of this pass.
	embeddingID := uuid.NewString()
	records := make([]*domain.EmbeddingRecord, len(kept))
	for i, c := range kept {
		records[i] = &domain.EmbeddingRecord{
			ID:          uuid.NewString(),
			EmbeddingID: embeddingID,
			DocumentID:  doc.ID,
			ChunkIndex:  i,
			Content:     c.Content,
			SpanStart:   c.Start,
			SpanEnd:     c.End,
			Embedding:   vectors[i],
			CreatedAt:   now,
		}
		if err := domain.ValidateEmbeddingRecord(records[i]); err != nil {
			return 0, err
		}
	}

	if err := s.embeddingRepo.ReplaceDocumentChunks(ctx, doc.ID, records); err != nil {
		span.SetError(err)
		return 0, domain.NewIngestionError(err)
	}
	return len(records), nil
}

// IngestAll embeds a batch of documents with bounded parallelism. The first
// failure cancels the remaining work.
func (s *IngestionService) IngestAll(ctx context.Context, docs []*domain.Document) error {
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)
	for _, doc := range docs {
		doc := doc
		g.Go(func() error {
			_, err := s.IngestDocument(ctx, doc)
			return err
		})
	}
	return g.Wait()
}

// RemoveDocument drops all stored vectors for a document.
func (s *IngestionService) RemoveDocument(ctx context.Context, documentID string) error {
	if err := s.embeddingRepo.DeleteByDocument(ctx, documentID); err != nil {
		return domain.NewIngestionError(err)
	}
	return nil
}

func (s *IngestionService) docLock(documentID string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	lock, ok := s.locks[documentID]
	if !ok {
		lock = &sync.Mutex{}
		s.locks[documentID] = lock
	}
	return lock
}
