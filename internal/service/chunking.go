package service

import (
	"strings"
	"unicode"
)

// ChunkConfig controls how document text is split before embedding.
type ChunkConfig struct {
	MaxChars  int
	MinChars  int
	Overlap   int
	MaxChunks int
}

// DefaultChunkConfig provides sane defaults for chunking.
func DefaultChunkConfig() ChunkConfig {
	return ChunkConfig{
		MaxChars:  512,
		MinChars:  128,
		Overlap:   50,
		MaxChunks: 0,
	}
}

// TextChunk is one chunk with its exact rune span [Start, End) in the
// original text. Spans are kept verbatim, without trimming, so consecutive
// chunks overlap by exactly the configured amount and together cover the
// whole document.
type TextChunk struct {
	Content string
	Start   int
	End     int
}

// ChunkText splits text into overlapping chunks. Splitting is deterministic:
// the same text and config always produce the same chunks. Boundaries prefer
// a sentence end, then any whitespace, scanning back from the size limit but
// never past MinChars into the chunk.
func ChunkText(text string, cfg ChunkConfig) []TextChunk {
	if strings.TrimSpace(text) == "" {
		return nil
	}
	if cfg.MaxChars <= 0 {
		cfg = DefaultChunkConfig()
	}
	if cfg.Overlap >= cfg.MaxChars {
		cfg.Overlap = cfg.MaxChars / 2
	}
	runes := []rune(text)
	if len(runes) <= cfg.MaxChars {
		return []TextChunk{{Content: text, Start: 0, End: len(runes)}}
	}

	chunks := make([]TextChunk, 0, 8)
	start := 0
	for start < len(runes) {
		if cfg.MaxChunks > 0 && len(chunks) >= cfg.MaxChunks {
			break
		}

		end := start + cfg.MaxChars
		if end >= len(runes) {
			end = len(runes)
		} else {
			end = cutPoint(runes, start, end, cfg.MinChars)
		}

		if end <= start {
			break
		}

		chunks = append(chunks, TextChunk{
			Content: string(runes[start:end]),
			Start:   start,
			End:     end,
		})

		if end >= len(runes) {
			break
		}

		nextStart := end
		if cfg.Overlap > 0 && end-start > cfg.Overlap {
			nextStart = end - cfg.Overlap
		}
		if nextStart <= start {
			nextStart = end
		}
		start = nextStart
	}

	return chunks
}

// cutPoint scans back from the size limit for a sentence boundary, then for
// any whitespace, and falls back to the hard limit when the chunk has no
// usable boundary.
func cutPoint(runes []rune, start, end, minChars int) int {
	minCut := start + minChars
	if minChars <= 0 || minCut >= end {
		minCut = start
	}

	for i := end; i > minCut; i-- {
		if isSentenceEnd(runes[i-1]) {
			return i
		}
	}
	for i := end; i > minCut; i-- {
		if unicode.IsSpace(runes[i-1]) {
			return i
		}
	}
	return end
}

func isSentenceEnd(r rune) bool {
	switch r {
	case '.', '!', '?', '\n':
		return true
	}
	return false
}
