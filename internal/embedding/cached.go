package embedding

import (
	"context"

	"golang.org/x/sync/errgroup"
)

const defaultBatchWorkers = 4

// CachedEmbedder memoizes another Embedder and embeds batch misses concurrently.
type CachedEmbedder struct {
	inner   Embedder
	cache   *EmbeddingCache
	workers int
}

// NewCachedEmbedder wraps inner with an LRU cache of cacheSize entries. workers bounds the
// number of concurrent Embed calls issued by EmbedBatch.
func NewCachedEmbedder(inner Embedder, cacheSize, workers int) *CachedEmbedder {
	if workers <= 0 {
		workers = defaultBatchWorkers
	}
	return &CachedEmbedder{
		inner:   inner,
		cache:   NewEmbeddingCache(cacheSize),
		workers: workers,
	}
}

// Embed returns the cached embedding for text, computing it on a miss.
func (e *CachedEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if cached, ok := e.cache.Get(text); ok {
		return cached, nil
	}
	emb, err := e.inner.Embed(ctx, text)
	if err != nil {
		return nil, err
	}
	e.cache.Set(text, emb)
	return emb, nil
}

// EmbedBatch embeds texts in order. Cache misses run in parallel; the first failure cancels
// the remaining calls and is returned.
func (e *CachedEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	embeddings := make([][]float32, len(texts))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.workers)
	for i, text := range texts {
		if cached, ok := e.cache.Get(text); ok {
			embeddings[i] = cached
			continue
		}
		i, text := i, text
		g.Go(func() error {
			emb, err := e.Embed(gctx, text)
			if err != nil {
				return err
			}
			embeddings[i] = emb
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return embeddings, nil
}

// Dimensions returns the wrapped embedder's dimension.
func (e *CachedEmbedder) Dimensions() int {
	return e.inner.Dimensions()
}

// Close closes the wrapped embedder.
func (e *CachedEmbedder) Close() error {
	return e.inner.Close()
}
