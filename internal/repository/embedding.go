package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"

	"github.com/inkwell-labs/inkwell/internal/domain"
)

// EmbeddingRepository handles persistence and search of chunk embeddings.
type EmbeddingRepository struct {
	db   dbtx
	pool *pgxpool.Pool
}

func NewEmbeddingRepository(pool *pgxpool.Pool) *EmbeddingRepository {
	return &EmbeddingRepository{db: pool, pool: pool}
}

func NewEmbeddingRepositoryWithTx(tx pgx.Tx) *EmbeddingRepository {
	return &EmbeddingRepository{db: tx}
}

// ReplaceDocumentChunks deletes existing chunks for a document and inserts
// the new set in one transaction, so readers never observe a partial chunk
// set. Records must already carry valid 768-dim vectors.
func (r *EmbeddingRepository) ReplaceDocumentChunks(ctx context.Context, documentID string, records []*domain.EmbeddingRecord) error {
	for _, rec := range records {
		if err := domain.ValidateEmbeddingRecord(rec); err != nil {
			return err
		}
	}

	if r.pool == nil {
		return r.replaceChunks(ctx, r.db, documentID, records)
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return domain.NewStoreUnavailableError(err)
	}
	if err := r.replaceChunks(ctx, tx, documentID, records); err != nil {
		_ = tx.Rollback(ctx)
		return err
	}
	return tx.Commit(ctx)
}

func (r *EmbeddingRepository) replaceChunks(ctx context.Context, db dbtx, documentID string, records []*domain.EmbeddingRecord) error {
	if _, err := db.Exec(ctx, `DELETE FROM document_embeddings WHERE document_id = $1`, documentID); err != nil {
		return err
	}

	for _, rec := range records {
		_, err := db.Exec(ctx,
			`INSERT INTO document_embeddings
				(id, embedding_id, document_id, chunk_index, content, span_start, span_end, embedding, created_at)
			 VALUES
				($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
			rec.ID,
			rec.EmbeddingID,
			rec.DocumentID,
			rec.ChunkIndex,
			rec.Content,
			rec.SpanStart,
			rec.SpanEnd,
			pgvector.NewVector(rec.Embedding),
			rec.CreatedAt,
		)
		if err != nil {
			return err
		}
	}
	return nil
}

// SearchChunks runs the scoped cosine search as one server-side query: the
// distance computation, the notebook and owner boundary, the optional
// document filter, the similarity gate, and the ranked cut all happen inside
// the store. Similarity is 1 - cosine distance, in [0, 1] for normalized
// vectors. Ties break by chunk index, then document id, so results are
// stable across runs.
func (r *EmbeddingRepository) SearchChunks(ctx context.Context, query domain.SearchQuery) ([]domain.RetrievedChunk, error) {
	if len(query.Vector) != domain.EmbeddingDimensions {
		return nil, domain.ErrEmbeddingDimension
	}
	topK := query.TopK
	if topK <= 0 {
		topK = 5
	}

	var docIDs []string
	if len(query.DocumentIDs) > 0 {
		docIDs = query.DocumentIDs
	}

	rows, err := r.db.Query(ctx,
		`SELECT e.document_id, e.chunk_index, e.content,
		        1 - (e.embedding <=> $1) AS similarity
		 FROM document_embeddings e
		 JOIN documents d ON d.id = e.document_id
		 JOIN notebooks n ON n.id = d.notebook_id
		 WHERE d.notebook_id = $2
		   AND n.user_id = $3
		   AND ($4::uuid[] IS NULL OR e.document_id = ANY($4::uuid[]))
		   AND 1 - (e.embedding <=> $1) > $5
		 ORDER BY similarity DESC, e.chunk_index ASC, e.document_id ASC
		 LIMIT $6`,
		pgvector.NewVector(query.Vector),
		query.NotebookID,
		query.UserID,
		docIDs,
		query.Threshold,
		topK,
	)
	if err != nil {
		return nil, domain.NewStoreUnavailableError(err)
	}
	defer rows.Close()

	var chunks []domain.RetrievedChunk
	for rows.Next() {
		var c domain.RetrievedChunk
		if err := rows.Scan(&c.DocumentID, &c.ChunkIndex, &c.Content, &c.Similarity); err != nil {
			return nil, err
		}
		chunks = append(chunks, c)
	}
	return chunks, rows.Err()
}

// DeleteByDocument drops all stored chunks for a document.
func (r *EmbeddingRepository) DeleteByDocument(ctx context.Context, documentID string) error {
	_, err := r.db.Exec(ctx, `DELETE FROM document_embeddings WHERE document_id = $1`, documentID)
	return err
}
