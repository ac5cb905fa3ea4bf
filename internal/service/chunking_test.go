package service

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChunkText_EmptyText(t *testing.T) {
	assert.Nil(t, ChunkText("", DefaultChunkConfig()))
	assert.Nil(t, ChunkText("   \n\t  ", DefaultChunkConfig()))
}

func TestChunkText_ShortTextSingleChunk(t *testing.T) {
	text := "A short paragraph that fits in one chunk."
	chunks := ChunkText(text, DefaultChunkConfig())

	require.Len(t, chunks, 1)
	assert.Equal(t, text, chunks[0].Content)
	assert.Equal(t, 0, chunks[0].Start)
	assert.Equal(t, len([]rune(text)), chunks[0].End)
}

func TestChunkText_ExactlyMaxCharsSingleChunk(t *testing.T) {
	cfg := DefaultChunkConfig()
	text := strings.Repeat("a", cfg.MaxChars)
	chunks := ChunkText(text, cfg)

	require.Len(t, chunks, 1)
	assert.Equal(t, text, chunks[0].Content)
}

func TestChunkText_LongTextSplits(t *testing.T) {
	sentence := "The quick brown fox jumps over the lazy dog. "
	text := strings.Repeat(sentence, 70) // ~3150 chars
	cfg := DefaultChunkConfig()
	chunks := ChunkText(text, cfg)

	require.Greater(t, len(chunks), 1)

	runes := []rune(text)
	assert.Equal(t, 0, chunks[0].Start)
	assert.Equal(t, len(runes), chunks[len(chunks)-1].End)

	for i, c := range chunks {
		assert.LessOrEqual(t, len([]rune(c.Content)), cfg.MaxChars, "chunk %d exceeds max size", i)
		assert.Equal(t, string(runes[c.Start:c.End]), c.Content, "chunk %d content does not match its span", i)
		if i > 0 {
			prev := chunks[i-1]
			assert.LessOrEqual(t, c.Start, prev.End, "chunk %d leaves a gap", i)
			assert.Greater(t, c.End, prev.End, "chunk %d does not advance", i)
		}
	}
}

func TestChunkText_OverlapBetweenChunks(t *testing.T) {
	// Uniform text with no boundaries forces hard cuts at MaxChars, so the
	// overlap is exact.
	cfg := ChunkConfig{MaxChars: 100, MinChars: 0, Overlap: 20}
	text := strings.Repeat("x", 300)
	chunks := ChunkText(text, cfg)

	require.Greater(t, len(chunks), 1)
	for i := 1; i < len(chunks); i++ {
		assert.Equal(t, chunks[i-1].End-cfg.Overlap, chunks[i].Start)
	}
}

func TestChunkText_PrefersSentenceBoundary(t *testing.T) {
	cfg := ChunkConfig{MaxChars: 50, MinChars: 10, Overlap: 0}
	text := "First sentence ends here. Second sentence keeps going for a while after that."
	chunks := ChunkText(text, cfg)

	require.Greater(t, len(chunks), 1)
	assert.True(t, strings.HasSuffix(chunks[0].Content, "."),
		"first chunk should cut after the sentence end, got %q", chunks[0].Content)
}

func TestChunkText_NoTrimming(t *testing.T) {
	cfg := ChunkConfig{MaxChars: 40, MinChars: 5, Overlap: 10}
	text := "Alpha beta gamma.   Delta epsilon zeta eta theta iota kappa lambda mu nu xi."
	chunks := ChunkText(text, cfg)

	runes := []rune(text)
	for i, c := range chunks {
		assert.Equal(t, string(runes[c.Start:c.End]), c.Content, "chunk %d was altered", i)
	}
}

func TestChunkText_Deterministic(t *testing.T) {
	text := strings.Repeat("Some content with several words in it. ", 40)
	cfg := DefaultChunkConfig()

	first := ChunkText(text, cfg)
	second := ChunkText(text, cfg)
	assert.Equal(t, first, second)
}

func TestChunkText_OverlapClampedWhenTooLarge(t *testing.T) {
	cfg := ChunkConfig{MaxChars: 50, MinChars: 0, Overlap: 50}
	text := strings.Repeat("y", 200)
	chunks := ChunkText(text, cfg)

	// Overlap >= MaxChars would never advance; it is clamped instead.
	require.Greater(t, len(chunks), 1)
	for i := 1; i < len(chunks); i++ {
		assert.Greater(t, chunks[i].Start, chunks[i-1].Start)
	}
	assert.Equal(t, len([]rune(text)), chunks[len(chunks)-1].End)
}

func TestChunkText_MaxChunksCap(t *testing.T) {
	cfg := ChunkConfig{MaxChars: 50, MinChars: 0, Overlap: 0, MaxChunks: 2}
	text := strings.Repeat("z", 500)
	chunks := ChunkText(text, cfg)

	assert.Len(t, chunks, 2)
}

func TestChunkText_MultibyteRunes(t *testing.T) {
	cfg := ChunkConfig{MaxChars: 10, MinChars: 0, Overlap: 2}
	text := strings.Repeat("héllo wörld ", 10)
	chunks := ChunkText(text, cfg)

	require.NotEmpty(t, chunks)
	runes := []rune(text)
	for _, c := range chunks {
		assert.LessOrEqual(t, len([]rune(c.Content)), cfg.MaxChars)
		assert.Equal(t, string(runes[c.Start:c.End]), c.Content)
	}
	assert.Equal(t, len(runes), chunks[len(chunks)-1].End)
}
