package index

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/elyx-health/journey-backend/internal/corpus"
)

// fakeEmbedder maps each known text to a fixed vector, so similarity
// ordering in tests is fully predetermined.
type fakeEmbedder struct {
	vectors  map[string][]float32
	err      error
	batchErr error
}

func (f *fakeEmbedder) GenerateEmbedding(_ context.Context, text string) ([]float32, error) {
	if f.err != nil {
		return nil, f.err
	}
	if v, ok := f.vectors[text]; ok {
		return v, nil
	}
	return []float32{1, 0, 0}, nil
}

func (f *fakeEmbedder) GenerateBatchEmbeddings(ctx context.Context, texts []string) ([][]float32, error) {
	if f.batchErr != nil {
		return nil, f.batchErr
	}
	out := make([][]float32, len(texts))
	for i, text := range texts {
		v, err := f.GenerateEmbedding(ctx, text)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

func docNamed(content string) corpus.Document {
	return corpus.Document{Content: content, Metadata: corpus.Metadata{Source: corpus.SourceEventLog}}
}

func testCorpus() ([]corpus.Document, *fakeEmbedder) {
	docs := []corpus.Document{
		docNamed("alpha"),
		docNamed("beta"),
		docNamed("gamma"),
	}
	embedder := &fakeEmbedder{vectors: map[string][]float32{
		"alpha": {1, 0, 0},
		"beta":  {0, 1, 0},
		"gamma": {0.5, 0.5, 0},
		"query": {0, 1, 0},
	}}
	return docs, embedder
}

func TestBuildEmptyCorpus(t *testing.T) {
	_, err := Build(context.Background(), nil, &fakeEmbedder{})
	assert.ErrorIs(t, err, ErrEmptyCorpus)
}

func TestBuildEmbedderFailure(t *testing.T) {
	docs, embedder := testCorpus()
	embedder.batchErr = errors.New("provider down")

	_, err := Build(context.Background(), docs, embedder)
	assert.ErrorContains(t, err, "failed to embed corpus")
}

func TestBuildCountMismatch(t *testing.T) {
	docs, _ := testCorpus()
	short := &shortBatchEmbedder{}

	_, err := Build(context.Background(), docs, short)
	assert.ErrorContains(t, err, "embedding count mismatch")
}

type shortBatchEmbedder struct{}

func (s *shortBatchEmbedder) GenerateEmbedding(context.Context, string) ([]float32, error) {
	return []float32{1}, nil
}

func (s *shortBatchEmbedder) GenerateBatchEmbeddings(_ context.Context, texts []string) ([][]float32, error) {
	return make([][]float32, len(texts)-1), nil
}

func TestSearchOrdering(t *testing.T) {
	docs, embedder := testCorpus()
	idx, err := Build(context.Background(), docs, embedder)
	require.NoError(t, err)
	assert.Equal(t, 3, idx.Size())

	results, err := idx.Search(context.Background(), "query", 3)
	require.NoError(t, err)
	require.Len(t, results, 3)

	// Query vector matches beta exactly, gamma at 45 degrees, alpha not at all.
	assert.Equal(t, "beta", results[0].Document.Content)
	assert.Equal(t, "gamma", results[1].Document.Content)
	assert.Equal(t, "alpha", results[2].Document.Content)
	assert.InDelta(t, 1.0, float64(results[0].Score), 1e-6)
	assert.Greater(t, results[0].Score, results[1].Score)
	assert.Greater(t, results[1].Score, results[2].Score)
}

func TestSearchCapsAtK(t *testing.T) {
	docs, embedder := testCorpus()
	idx, err := Build(context.Background(), docs, embedder)
	require.NoError(t, err)

	results, err := idx.Search(context.Background(), "query", 2)
	require.NoError(t, err)
	assert.Len(t, results, 2)

	results, err = idx.Search(context.Background(), "query", 100)
	require.NoError(t, err)
	assert.Len(t, results, 3)
}

func TestSearchNonPositiveK(t *testing.T) {
	docs, embedder := testCorpus()
	idx, err := Build(context.Background(), docs, embedder)
	require.NoError(t, err)

	for _, k := range []int{0, -1} {
		results, err := idx.Search(context.Background(), "query", k)
		assert.NoError(t, err)
		assert.Nil(t, results)
	}
}

func TestSearchTiesKeepInsertionOrder(t *testing.T) {
	docs := []corpus.Document{docNamed("first"), docNamed("second"), docNamed("third")}
	embedder := &fakeEmbedder{vectors: map[string][]float32{
		"first":  {1, 0, 0},
		"second": {1, 0, 0},
		"third":  {1, 0, 0},
		"query":  {1, 0, 0},
	}}

	idx, err := Build(context.Background(), docs, embedder)
	require.NoError(t, err)

	results, err := idx.Search(context.Background(), "query", 3)
	require.NoError(t, err)
	assert.Equal(t, "first", results[0].Document.Content)
	assert.Equal(t, "second", results[1].Document.Content)
	assert.Equal(t, "third", results[2].Document.Content)
}

func TestSearchQueryEmbeddingFailure(t *testing.T) {
	docs, embedder := testCorpus()
	idx, err := Build(context.Background(), docs, embedder)
	require.NoError(t, err)

	embedder.err = errors.New("provider down")
	_, err = idx.Search(context.Background(), "query", 3)
	assert.ErrorContains(t, err, "failed to embed query")
}

func TestCosineSimilarity(t *testing.T) {
	tests := []struct {
		name string
		a, b []float32
		want float32
	}{
		{"identical", []float32{1, 2, 3}, []float32{1, 2, 3}, 1},
		{"orthogonal", []float32{1, 0}, []float32{0, 1}, 0},
		{"opposite", []float32{1, 0}, []float32{-1, 0}, -1},
		{"length mismatch", []float32{1, 0}, []float32{1}, 0},
		{"zero vector", []float32{0, 0}, []float32{1, 1}, 0},
		{"empty", nil, nil, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, float64(tt.want), float64(cosineSimilarity(tt.a, tt.b)), 1e-6)
		})
	}
}
