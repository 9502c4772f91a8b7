package index

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"

	"go.uber.org/zap"

	"github.com/elyx-health/journey-backend/internal/corpus"
	"github.com/elyx-health/journey-backend/pkg/logger"
)

var ErrEmptyCorpus = errors.New("corpus is empty after filtering")

// Embedder is the slice of the LLM client the index needs.
type Embedder interface {
	GenerateEmbedding(ctx context.Context, text string) ([]float32, error)
	GenerateBatchEmbeddings(ctx context.Context, texts []string) ([][]float32, error)
}

// Result is one ranked retrieval hit. Rank order is significant: the top
// result drives persona selection downstream.
type Result struct {
	Document corpus.Document
	Score    float32
}

// Index holds one vector per corpus document. It is immutable once built
// and safe for concurrent Search calls.
type Index struct {
	docs     []corpus.Document
	vectors  [][]float32
	embedder Embedder
}

// Build embeds the whole corpus in one batched pass. An empty corpus or an
// unavailable embedder fails the build; callers treat that as fatal for chat.
func Build(ctx context.Context, docs []corpus.Document, embedder Embedder) (*Index, error) {
	if len(docs) == 0 {
		return nil, ErrEmptyCorpus
	}

	texts := make([]string, len(docs))
	for i, doc := range docs {
		texts[i] = doc.Content
	}

	vectors, err := embedder.GenerateBatchEmbeddings(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("failed to embed corpus: %w", err)
	}
	if len(vectors) != len(docs) {
		return nil, fmt.Errorf("embedding count mismatch: got %d, expected %d", len(vectors), len(docs))
	}

	logger.Info("Embedding index built", zap.Int("documents", len(docs)))

	return &Index{
		docs:     docs,
		vectors:  vectors,
		embedder: embedder,
	}, nil
}

// Size returns the number of indexed documents.
func (idx *Index) Size() int {
	return len(idx.docs)
}

// Search embeds the query and returns the k most similar documents, highest
// similarity first. Ties keep corpus insertion order. Fewer than k documents
// returns all of them.
func (idx *Index) Search(ctx context.Context, query string, k int) ([]Result, error) {
	if k <= 0 {
		return nil, nil
	}

	embedding, err := idx.embedder.GenerateEmbedding(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}

	results := make([]Result, len(idx.docs))
	for i := range idx.docs {
		results[i] = Result{
			Document: idx.docs[i],
			Score:    cosineSimilarity(embedding, idx.vectors[i]),
		}
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})

	if k < len(results) {
		results = results[:k]
	}

	logger.Debug("Vector search completed",
		zap.Int("top_k", k),
		zap.Int("results", len(results)),
	)

	return results, nil
}

func cosineSimilarity(a, b []float32) float32 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}

	if normA == 0 || normB == 0 {
		return 0
	}

	return float32(dot / (math.Sqrt(normA) * math.Sqrt(normB)))
}
