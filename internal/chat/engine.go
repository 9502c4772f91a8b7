package chat

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/elyx-health/journey-backend/internal/cache/redis"
	"github.com/elyx-health/journey-backend/internal/citation"
	"github.com/elyx-health/journey-backend/internal/corpus"
	"github.com/elyx-health/journey-backend/internal/index"
	"github.com/elyx-health/journey-backend/internal/metrics"
	"github.com/elyx-health/journey-backend/internal/persona"
	"github.com/elyx-health/journey-backend/internal/prompt"
	"github.com/elyx-health/journey-backend/internal/storage/models"
	"github.com/elyx-health/journey-backend/internal/storage/sqlite"
	"github.com/elyx-health/journey-backend/pkg/logger"
	"github.com/elyx-health/journey-backend/pkg/utils"
)

// ErrEmptyQuery rejects a request before any retrieval or generation work.
var ErrEmptyQuery = errors.New("query is required")

// Generator is the slice of the LLM client the pipeline needs.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

type Request struct {
	Query string
}

type Response struct {
	ID        string            `json:"id"`
	Query     string            `json:"query"`
	Response  string            `json:"response"`
	Persona   string            `json:"persona"`
	Sources   []citation.Source `json:"sources"`
	LatencyMS int               `json:"latency_ms"`
}

// Engine runs one chat request through the linear pipeline: retrieve, select
// persona, assemble prompt, generate, post-process citations. Requests are
// independent; a failure affects only its own request, never the shared index.
type Engine struct {
	provider  *index.Provider
	generator Generator
	db        *sqlite.Client
	cache     *redis.Client
	topK      int
	cacheTTL  time.Duration
}

type Options struct {
	TopK     int
	History  *sqlite.Client
	Cache    *redis.Client
	CacheTTL time.Duration
}

func NewEngine(provider *index.Provider, generator Generator, opts Options) *Engine {
	if opts.TopK <= 0 {
		opts.TopK = 5
	}
	if opts.CacheTTL <= 0 {
		opts.CacheTTL = time.Hour
	}

	return &Engine{
		provider:  provider,
		generator: generator,
		db:        opts.History,
		cache:     opts.Cache,
		topK:      opts.TopK,
		cacheTTL:  opts.CacheTTL,
	}
}

func (e *Engine) ProcessQuery(ctx context.Context, req Request) (*Response, error) {
	if req.Query == "" {
		return nil, ErrEmptyQuery
	}

	startTime := time.Now()
	chatID := uuid.New().String()
	queryHash := utils.HashString(req.Query)

	if cached := e.cachedResponse(ctx, queryHash); cached != nil {
		metrics.CacheHits.WithLabelValues("chat").Inc()
		return cached, nil
	}
	metrics.CacheMisses.WithLabelValues("chat").Inc()

	logger.Info("Processing chat query",
		zap.String("chat_id", chatID),
		zap.String("query", req.Query),
	)

	idx, err := e.provider.Get(ctx)
	if err != nil {
		return nil, err
	}
	metrics.IndexDocuments.Set(float64(idx.Size()))

	results, err := idx.Search(ctx, req.Query, e.topK)
	if err != nil {
		return nil, err
	}
	metrics.RetrievalResults.Observe(float64(len(results)))

	var topDocument *corpus.Document
	if len(results) > 0 {
		topDocument = &results[0].Document
	}
	selected := persona.Select(topDocument)
	metrics.PersonaSelected.WithLabelValues(string(selected)).Inc()

	assembly := prompt.Assemble(selected, results, req.Query)

	rawAnswer, err := e.generator.Generate(ctx, assembly.Prompt)
	if err != nil {
		return nil, err
	}

	processed := citation.PostProcess(rawAnswer, assembly.Citations)
	metrics.CitationsReturned.Observe(float64(len(processed.Sources)))

	latency := int(time.Since(startTime).Milliseconds())

	response := &Response{
		ID:        chatID,
		Query:     req.Query,
		Response:  processed.Answer,
		Persona:   string(selected),
		Sources:   processed.Sources,
		LatencyMS: latency,
	}

	e.recordHistory(response, len(results), latency)
	e.cacheResponse(ctx, queryHash, response)

	logger.Info("Chat query processed",
		zap.String("chat_id", chatID),
		zap.String("persona", response.Persona),
		zap.Int("sources", len(response.Sources)),
		zap.Int("latency_ms", latency),
	)

	return response, nil
}

func (e *Engine) cachedResponse(ctx context.Context, queryHash string) *Response {
	if e.cache == nil {
		return nil
	}

	var cached Response
	hit, err := e.cache.GetResponse(ctx, queryHash, &cached)
	if err != nil {
		logger.Warn("Response cache lookup failed", zap.Error(err))
		return nil
	}
	if !hit {
		return nil
	}
	return &cached
}

func (e *Engine) cacheResponse(ctx context.Context, queryHash string, response *Response) {
	if e.cache == nil {
		return
	}
	if err := e.cache.SetResponse(ctx, queryHash, response, e.cacheTTL); err != nil {
		logger.Warn("Failed to cache response", zap.Error(err))
	}
}

// recordHistory persists the exchange; storage problems are logged, never
// surfaced to the requester.
func (e *Engine) recordHistory(response *Response, resultsCount int, latency int) {
	if e.db == nil {
		return
	}

	record := &models.ChatRecord{
		ID:           response.ID,
		Query:        response.Query,
		Response:     response.Response,
		Persona:      response.Persona,
		ResultsCount: resultsCount,
		SourcesCount: len(response.Sources),
		LatencyMS:    latency,
		CreatedAt:    time.Now(),
	}

	if err := e.db.InsertChatRecord(record); err != nil {
		logger.Warn("Failed to record chat history", zap.Error(err))
		return
	}

	for _, source := range response.Sources {
		err := e.db.InsertChatSource(&models.ChatSource{
			ChatID:   response.ID,
			Citation: source.Citation,
			EventID:  source.EventID,
		})
		if err != nil {
			logger.Warn("Failed to record chat source", zap.Error(err))
		}
	}
}

// History returns recent exchanges with their cited events.
func (e *Engine) History(limit int) ([]HistoryEntry, error) {
	if e.db == nil {
		return nil, nil
	}

	records, err := e.db.ListRecentChats(limit)
	if err != nil {
		return nil, err
	}

	entries := make([]HistoryEntry, 0, len(records))
	for _, record := range records {
		entry := HistoryEntry{Record: record}
		sources, err := e.db.SourcesForChat(record.ID)
		if err != nil {
			logger.Warn("Failed to load chat sources", zap.String("chat_id", record.ID), zap.Error(err))
		} else {
			entry.Sources = sources
		}
		entries = append(entries, entry)
	}

	return entries, nil
}

type HistoryEntry struct {
	Record  models.ChatRecord
	Sources []models.ChatSource
}
