package service

import (
	"fmt"
	"sort"
	"strings"

	"github.com/inkwell-labs/inkwell/internal/domain"
)

// AssembledContext is the grounding block handed to the generator, plus the
// citation set for exactly the documents whose text made it in.
type AssembledContext struct {
	Text           string
	Citations      []domain.Citation
	IncludedChunks int
	Documents      []string
}

// Empty reports whether no retrieved content fit the context.
func (a *AssembledContext) Empty() bool {
	return a == nil || a.IncludedChunks == 0
}

// ContextAssembler turns ranked chunks into a bounded prompt context.
// Adjacent chunks of the same document merge into one segment so the overlap
// regions are not repeated. Segments are included greedily by rank until the
// character budget runs out; a segment is never split.
type ContextAssembler struct {
	maxChars int
}

// NewContextAssembler creates a new ContextAssembler instance
func NewContextAssembler(maxChars int) *ContextAssembler {
	if maxChars <= 0 {
		maxChars = 6000
	}
	return &ContextAssembler{maxChars: maxChars}
}

type contextSegment struct {
	documentID string
	firstIndex int
	content    string
	similarity float64
}

// Assemble builds the context text from a retrieval result. docNames maps
// document id to filename for the source headers; unknown ids fall back to
// the id itself. Output is deterministic for a given result.
func (a *ContextAssembler) Assemble(result *domain.RetrievalResult, docNames map[string]string) *AssembledContext {
	if result.Empty() {
		return &AssembledContext{}
	}

	segments := mergeAdjacent(result.Chunks)
	sort.SliceStable(segments, func(i, j int) bool {
		if segments[i].similarity != segments[j].similarity {
			return segments[i].similarity > segments[j].similarity
		}
		if segments[i].documentID != segments[j].documentID {
			return segments[i].documentID < segments[j].documentID
		}
		return segments[i].firstIndex < segments[j].firstIndex
	})

	var b strings.Builder
	var included int
	var chunkCount int
	docSeen := make(map[string]struct{})
	var docs []string
	var citations []domain.Citation

	for _, seg := range segments {
		name, ok := docNames[seg.documentID]
		if !ok || name == "" {
			name = seg.documentID
		}
		block := fmt.Sprintf("[Document: %s]\n%s", name, seg.content)
		cost := len([]rune(block))
		if included > 0 {
			cost += 2 // separating blank line
		}
		if included > 0 && len([]rune(b.String()))+cost > a.maxChars {
			continue
		}
		if included == 0 && cost > a.maxChars {
			continue
		}

		if included > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString(block)
		included++
		chunkCount += seg.chunkCount()

		if _, ok := docSeen[seg.documentID]; !ok {
			docSeen[seg.documentID] = struct{}{}
			docs = append(docs, seg.documentID)
			citations = append(citations, domain.Citation{Type: "document", Reference: name})
		}
	}

	return &AssembledContext{
		Text:           b.String(),
		Citations:      citations,
		IncludedChunks: chunkCount,
		Documents:      docs,
	}
}

type mergedSegment struct {
	contextSegment
	chunks int
}

func (s *mergedSegment) chunkCount() int { return s.chunks }

// mergeAdjacent collapses runs of consecutive chunk indexes per document into
// single segments. The merged similarity is the best similarity in the run.
func mergeAdjacent(chunks []domain.RetrievedChunk) []*mergedSegment {
	byDoc := make(map[string][]domain.RetrievedChunk)
	var order []string
	for _, c := range chunks {
		if _, ok := byDoc[c.DocumentID]; !ok {
			order = append(order, c.DocumentID)
		}
		byDoc[c.DocumentID] = append(byDoc[c.DocumentID], c)
	}

	var segments []*mergedSegment
	for _, docID := range order {
		docChunks := byDoc[docID]
		sort.Slice(docChunks, func(i, j int) bool {
			return docChunks[i].ChunkIndex < docChunks[j].ChunkIndex
		})

		var current *mergedSegment
		lastIndex := -2
		for _, c := range docChunks {
			if current != nil && c.ChunkIndex == lastIndex+1 {
				current.content += "\n" + c.Content
				current.chunks++
				if c.Similarity > current.similarity {
					current.similarity = c.Similarity
				}
			} else {
				current = &mergedSegment{
					contextSegment: contextSegment{
						documentID: docID,
						firstIndex: c.ChunkIndex,
						content:    c.Content,
						similarity: c.Similarity,
					},
					chunks: 1,
				}
				segments = append(segments, current)
			}
			lastIndex = c.ChunkIndex
		}
	}
	return segments
}
