package llm

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

type cachedEmbedder struct {
	next  Embedder
	cache *expirable.LRU[string, []float32]
}

// WithCache wraps an embedder with an expiring LRU keyed by
// (model, task, text). Entries are invalid across model versions because the
// model name is part of the key; callers must not assume embeddings are
// cacheable beyond that.
func WithCache(next Embedder, size int, ttl time.Duration) Embedder {
	if size <= 0 || ttl <= 0 {
		return next
	}
	return &cachedEmbedder{
		next:  next,
		cache: expirable.NewLRU[string, []float32](size, nil, ttl),
	}
}

func (c *cachedEmbedder) Embed(ctx context.Context, text string, task TaskType) ([]float32, error) {
	key := cacheKey(c.next.ModelName(), task, text)
	if cached, ok := c.cache.Get(key); ok {
		return cloneVector(cached), nil
	}
	vec, err := c.next.Embed(ctx, text, task)
	if err != nil {
		return nil, err
	}
	c.cache.Add(key, cloneVector(vec))
	return vec, nil
}

func (c *cachedEmbedder) EmbedBatch(ctx context.Context, texts []string, task TaskType) ([][]float32, error) {
	out := make([][]float32, len(texts))
	var missing []string
	var missingIdx []int
	for i, text := range texts {
		if cached, ok := c.cache.Get(cacheKey(c.next.ModelName(), task, text)); ok {
			out[i] = cloneVector(cached)
			continue
		}
		missing = append(missing, text)
		missingIdx = append(missingIdx, i)
	}
	if len(missing) == 0 {
		return out, nil
	}

	vecs, err := c.next.EmbedBatch(ctx, missing, task)
	if err != nil {
		return nil, err
	}
	for j, vec := range vecs {
		i := missingIdx[j]
		out[i] = vec
		c.cache.Add(cacheKey(c.next.ModelName(), task, texts[i]), cloneVector(vec))
	}
	return out, nil
}

func (c *cachedEmbedder) ModelName() string {
	return c.next.ModelName()
}

func cacheKey(model string, task TaskType, text string) string {
	h := sha256.Sum256([]byte(model + "|" + string(task) + "|" + text))
	return hex.EncodeToString(h[:])
}

func cloneVector(values []float32) []float32 {
	if len(values) == 0 {
		return nil
	}
	clone := make([]float32, len(values))
	copy(clone, values)
	return clone
}
