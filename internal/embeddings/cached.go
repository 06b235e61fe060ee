package embeddings

import (
	"context"
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/sync/singleflight"
)

// CachedClient wraps a Client with an in-memory LRU keyed by the exact input
// text, so an embedding is never computed twice for the same text within a
// process. Concurrent requests for the same text are collapsed to a single
// provider call.
type CachedClient struct {
	inner     Client
	cache     *lru.Cache[string, []float32]
	loadGroup singleflight.Group
}

// Ensure CachedClient implements Client interface
var _ Client = (*CachedClient)(nil)

// NewCachedClient creates a caching decorator around inner with the given
// cache size.
func NewCachedClient(inner Client, size int) (*CachedClient, error) {
	cache, err := lru.New[string, []float32](size)
	if err != nil {
		return nil, fmt.Errorf("embedding cache: %w", err)
	}

	return &CachedClient{inner: inner, cache: cache}, nil
}

// GetEmbedding returns the cached vector for text, computing and caching it on miss.
func (c *CachedClient) GetEmbedding(ctx context.Context, text string) ([]float32, error) {
	if cached, ok := c.cache.Get(text); ok {
		return cached, nil
	}

	result, err, _ := c.loadGroup.Do(text, func() (any, error) {
		if cached, ok := c.cache.Get(text); ok {
			return cached, nil
		}

		vector, err := c.inner.GetEmbedding(ctx, text)
		if err != nil {
			return nil, err
		}

		c.cache.Add(text, vector)

		return vector, nil
	})
	if err != nil {
		return nil, err
	}

	vector, ok := result.([]float32)
	if !ok {
		return nil, fmt.Errorf("embedding cache: unexpected result type %T", result)
	}

	return vector, nil
}

// GetEmbeddings returns one vector per input text in input order, computing
// only the texts not already cached. A provider error for the uncached subset
// fails the whole call; cached entries are unaffected.
func (c *CachedClient) GetEmbeddings(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, ErrEmptyInput
	}

	vectors := make([][]float32, len(texts))

	var (
		missing    []string
		missingIdx []int
	)

	for i, text := range texts {
		if cached, ok := c.cache.Get(text); ok {
			vectors[i] = cached
			continue
		}

		missing = append(missing, text)
		missingIdx = append(missingIdx, i)
	}

	if len(missing) == 0 {
		return vectors, nil
	}

	computed, err := c.inner.GetEmbeddings(ctx, missing)
	if err != nil {
		return nil, err
	}

	if len(computed) != len(missing) {
		return nil, fmt.Errorf("%w: got %d, want %d", ErrCountMismatch, len(computed), len(missing))
	}

	for j, vector := range computed {
		c.cache.Add(missing[j], vector)
		vectors[missingIdx[j]] = vector
	}

	return vectors, nil
}
