package domain

// SearchQuery is the scope and shape of one vector search. The notebook and
// user together form the hard retrieval boundary; DocumentIDs optionally
// narrows the search further and must be a subset of the notebook.
type SearchQuery struct {
	NotebookID  string
	UserID      string
	Vector      []float32
	Threshold   float64
	TopK        int
	DocumentIDs []string
}

// RetrievedChunk is one ranked vector-search match.
type RetrievedChunk struct {
	DocumentID string
	ChunkIndex int
	Content    string
	Similarity float64
}

// RetrievalResult is a ranked list of matches, ordered by similarity
// descending, truncated to top-k and filtered to similarity > threshold.
// Ties break by ascending chunk index, then ascending document id.
type RetrievalResult struct {
	Chunks []RetrievedChunk
}

// Empty reports whether retrieval found no grounding context.
func (r *RetrievalResult) Empty() bool {
	return r == nil || len(r.Chunks) == 0
}

// DocumentIDs returns the distinct document ids present in the result,
// in first-seen (rank) order.
func (r *RetrievalResult) DocumentIDs() []string {
	if r == nil {
		return nil
	}
	seen := make(map[string]struct{}, len(r.Chunks))
	var ids []string
	for _, c := range r.Chunks {
		if _, ok := seen[c.DocumentID]; ok {
			continue
		}
		seen[c.DocumentID] = struct{}{}
		ids = append(ids, c.DocumentID)
	}
	return ids
}
