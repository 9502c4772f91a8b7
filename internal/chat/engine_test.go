package chat

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/elyx-health/journey-backend/internal/citation"
	"github.com/elyx-health/journey-backend/internal/corpus"
	"github.com/elyx-health/journey-backend/internal/index"
)

type stubEmbedder struct {
	vectors map[string][]float32
}

func (s *stubEmbedder) GenerateEmbedding(_ context.Context, text string) ([]float32, error) {
	if v, ok := s.vectors[text]; ok {
		return v, nil
	}
	return []float32{0, 0, 1}, nil
}

func (s *stubEmbedder) GenerateBatchEmbeddings(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, text := range texts {
		out[i], _ = s.GenerateEmbedding(ctx, text)
	}
	return out, nil
}

type stubGenerator struct {
	answer     string
	err        error
	calls      atomic.Int32
	lastPrompt string
}

func (s *stubGenerator) Generate(_ context.Context, prompt string) (string, error) {
	s.calls.Add(1)
	s.lastPrompt = prompt
	if s.err != nil {
		return "", s.err
	}
	return s.answer, nil
}

func eventDoc(eventID, sender, content string) corpus.Document {
	return corpus.Document{
		Content: content,
		Metadata: corpus.Metadata{
			Source:     corpus.SourceEventLog,
			Type:       corpus.TypeRawEvent,
			EventID:    eventID,
			Sender:     sender,
			SenderRole: "Care Team",
		},
	}
}

func testProvider(docs []corpus.Document, embedder index.Embedder) *index.Provider {
	return index.NewProvider(func(ctx context.Context) (*index.Index, error) {
		return index.Build(ctx, docs, embedder)
	})
}

func TestProcessQueryFullPipeline(t *testing.T) {
	docs := []corpus.Document{
		eventDoc("evt-001", "Dr. Warren", "Dr. Warren reviewed the lipid panel."),
		eventDoc("evt-002", "Ruby", "Ruby rescheduled the session."),
	}
	embedder := &stubEmbedder{vectors: map[string][]float32{
		"Dr. Warren reviewed the lipid panel.": {1, 0, 0},
		"Ruby rescheduled the session.":        {0, 1, 0},
		"What did the labs show?":              {1, 0, 0},
	}}
	generator := &stubGenerator{answer: "Your ApoB is trending down [1]."}

	engine := NewEngine(testProvider(docs, embedder), generator, Options{TopK: 2})

	response, err := engine.ProcessQuery(context.Background(), Request{Query: "What did the labs show?"})
	require.NoError(t, err)

	assert.Equal(t, "What did the labs show?", response.Query)
	assert.Equal(t, "Dr. Warren", response.Persona)
	assert.Equal(t, "Your ApoB is trending down [1].", response.Response)
	assert.Equal(t, []citation.Source{{Citation: 1, EventID: "evt-001"}}, response.Sources)
	assert.GreaterOrEqual(t, response.LatencyMS, 0)

	_, err = uuid.Parse(response.ID)
	assert.NoError(t, err)

	// Both retrieved documents were citable, so the prompt carries two markers.
	assert.Contains(t, generator.lastPrompt, "[1] Dr. Warren reviewed the lipid panel.")
	assert.Contains(t, generator.lastPrompt, "[2] Ruby rescheduled the session.")
}

func TestProcessQueryRenumbersAndDropsHallucinations(t *testing.T) {
	docs := []corpus.Document{
		eventDoc("evt-001", "Ruby", "Ruby confirmed the booking."),
		eventDoc("evt-002", "Carla", "Carla adjusted the meal plan."),
	}
	embedder := &stubEmbedder{vectors: map[string][]float32{
		"Ruby confirmed the booking.":  {1, 0, 0},
		"Carla adjusted the meal plan.": {0, 1, 0},
		"q":                            {1, 0, 0},
	}}
	generator := &stubGenerator{answer: "Meals changed [2], booking held [2], and this is invented [9]."}

	engine := NewEngine(testProvider(docs, embedder), generator, Options{TopK: 2})

	response, err := engine.ProcessQuery(context.Background(), Request{Query: "q"})
	require.NoError(t, err)

	assert.Equal(t, "Meals changed [1], booking held [1], and this is invented .", response.Response)
	assert.Equal(t, []citation.Source{{Citation: 1, EventID: "evt-002"}}, response.Sources)
}

func TestProcessQueryEmptyQuery(t *testing.T) {
	generator := &stubGenerator{answer: "unused"}
	provider := testProvider([]corpus.Document{eventDoc("evt-001", "Ruby", "x")}, &stubEmbedder{})

	engine := NewEngine(provider, generator, Options{})

	response, err := engine.ProcessQuery(context.Background(), Request{})
	assert.ErrorIs(t, err, ErrEmptyQuery)
	assert.Nil(t, response)
	assert.Equal(t, int32(0), generator.calls.Load(), "empty query must not reach generation")
}

func TestProcessQueryIndexBuildFailure(t *testing.T) {
	buildErr := errors.New("embedding unavailable")
	provider := index.NewProvider(func(context.Context) (*index.Index, error) {
		return nil, buildErr
	})
	generator := &stubGenerator{answer: "unused"}

	engine := NewEngine(provider, generator, Options{})

	_, err := engine.ProcessQuery(context.Background(), Request{Query: "q"})
	assert.ErrorIs(t, err, buildErr)
	assert.Equal(t, int32(0), generator.calls.Load())

	// The failure is cached; a second request fails the same way without a rebuild.
	_, err = engine.ProcessQuery(context.Background(), Request{Query: "q"})
	assert.ErrorIs(t, err, buildErr)
}

func TestProcessQueryGenerationFailure(t *testing.T) {
	docs := []corpus.Document{eventDoc("evt-001", "Ruby", "Ruby confirmed the booking.")}
	generator := &stubGenerator{err: errors.New("model overloaded")}

	engine := NewEngine(testProvider(docs, &stubEmbedder{}), generator, Options{})

	_, err := engine.ProcessQuery(context.Background(), Request{Query: "q"})
	assert.ErrorContains(t, err, "model overloaded")
}

func TestProcessQueryDefaultPersonaForUnknownSender(t *testing.T) {
	docs := []corpus.Document{eventDoc("evt-001", "Nonexistent Person", "A doc from an unknown sender.")}
	generator := &stubGenerator{answer: "General guidance."}

	engine := NewEngine(testProvider(docs, &stubEmbedder{}), generator, Options{})

	response, err := engine.ProcessQuery(context.Background(), Request{Query: "q"})
	require.NoError(t, err)
	assert.Equal(t, "Neel", response.Persona)
}

func TestProcessQueryFreshIDPerRequest(t *testing.T) {
	docs := []corpus.Document{eventDoc("evt-001", "Ruby", "Ruby confirmed the booking.")}
	generator := &stubGenerator{answer: "Done."}

	engine := NewEngine(testProvider(docs, &stubEmbedder{}), generator, Options{})

	first, err := engine.ProcessQuery(context.Background(), Request{Query: "q"})
	require.NoError(t, err)
	second, err := engine.ProcessQuery(context.Background(), Request{Query: "q"})
	require.NoError(t, err)

	assert.NotEqual(t, first.ID, second.ID)
}

func TestHistoryWithoutStore(t *testing.T) {
	engine := NewEngine(testProvider([]corpus.Document{eventDoc("e", "Ruby", "x")}, &stubEmbedder{}), &stubGenerator{}, Options{})

	entries, err := engine.History(10)
	assert.NoError(t, err)
	assert.Nil(t, entries)
}
