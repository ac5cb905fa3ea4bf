package domain

import "time"

// EmbeddingDimensions is the fixed dimension of every stored vector.
// Validated at write time; a mismatch is a fatal input error.
const EmbeddingDimensions = 768

// EmbeddingRecord holds one chunk's vector along with a denormalized copy of
// the chunk text, so retrieval never has to re-fetch the source document.
// Exactly one record exists per (document_id, chunk_index).
type EmbeddingRecord struct {
	ID          string
	EmbeddingID string
	DocumentID  string
	ChunkIndex  int
	Content     string
	SpanStart   int
	SpanEnd     int
	Embedding   []float32
	CreatedAt   time.Time
}

// ValidateEmbeddingRecord checks identity fields and the vector dimension.
func ValidateEmbeddingRecord(r *EmbeddingRecord) error {
	if r.DocumentID == "" || r.Content == "" {
		return ErrMissingRequiredField
	}
	if r.ChunkIndex < 0 {
		return ErrMissingRequiredField
	}
	if len(r.Embedding) != EmbeddingDimensions {
		return ErrEmbeddingDimension
	}
	return nil
}
