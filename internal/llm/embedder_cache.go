package llm

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/elyx-health/journey-backend/internal/cache/redis"
	"github.com/elyx-health/journey-backend/internal/metrics"
	"github.com/elyx-health/journey-backend/pkg/logger"
	"github.com/elyx-health/journey-backend/pkg/utils"
)

// CachedEmbedder fronts the client's query embeddings with redis. Cache
// trouble degrades to a direct provider call, never a failure. Batch
// embedding is a one-time corpus build and bypasses the cache.
type CachedEmbedder struct {
	client *Client
	cache  *redis.Client
	ttl    time.Duration
}

func NewCachedEmbedder(client *Client, cache *redis.Client, ttl time.Duration) *CachedEmbedder {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &CachedEmbedder{
		client: client,
		cache:  cache,
		ttl:    ttl,
	}
}

func (e *CachedEmbedder) GenerateEmbedding(ctx context.Context, text string) ([]float32, error) {
	if e.cache == nil {
		return e.client.GenerateEmbedding(ctx, text)
	}

	textHash := utils.HashString(text)

	cached, hit, err := e.cache.GetEmbedding(ctx, textHash)
	if err != nil {
		logger.Warn("Embedding cache lookup failed", zap.Error(err))
	}
	if hit {
		metrics.CacheHits.WithLabelValues("embedding").Inc()
		return cached, nil
	}
	metrics.CacheMisses.WithLabelValues("embedding").Inc()

	embedding, err := e.client.GenerateEmbedding(ctx, text)
	if err != nil {
		return nil, err
	}

	if err := e.cache.SetEmbedding(ctx, textHash, embedding, e.ttl); err != nil {
		logger.Warn("Failed to cache embedding", zap.Error(err))
	}

	return embedding, nil
}

func (e *CachedEmbedder) GenerateBatchEmbeddings(ctx context.Context, texts []string) ([][]float32, error) {
	return e.client.GenerateBatchEmbeddings(ctx, texts)
}
