package handlers

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/elyx-health/journey-backend/internal/chat"
	"github.com/elyx-health/journey-backend/internal/metrics"
	"github.com/elyx-health/journey-backend/pkg/logger"
)

// Pipeline internals never reach the client; any stage failure collapses to
// this generic message.
const genericFailureMessage = "Failed to process query"

var suggestedPrompts = []string{
	"Summarize the key outcomes of the journey.",
	"What were the main friction points and their resolutions?",
	"Explain the rationale for introducing Zone 2 cardio.",
	"How was the member's travel schedule accommodated?",
}

type ChatHandler struct {
	engine *chat.Engine
}

func NewChatHandler(engine *chat.Engine) *ChatHandler {
	return &ChatHandler{
		engine: engine,
	}
}

func (h *ChatHandler) HandleChat(c *fiber.Ctx) error {
	var req struct {
		Query string `json:"query"`
	}

	if err := c.BodyParser(&req); err != nil {
		logger.Error("Failed to parse request body", zap.Error(err))
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	if req.Query == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Query is required",
		})
	}

	start := time.Now()
	response, err := h.engine.ProcessQuery(c.Context(), chat.Request{Query: req.Query})
	metrics.ChatDuration.WithLabelValues("http").Observe(time.Since(start).Seconds())
	if err != nil {
		if errors.Is(err, chat.ErrEmptyQuery) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Query is required",
			})
		}
		metrics.ChatTotal.WithLabelValues("error").Inc()
		logger.Error("Failed to process chat query", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": genericFailureMessage,
		})
	}
	metrics.ChatTotal.WithLabelValues("success").Inc()

	return c.JSON(response)
}

func (h *ChatHandler) GetChatHistory(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", 20)

	entries, err := h.engine.History(limit)
	if err != nil {
		logger.Error("Failed to load chat history", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to load chat history",
		})
	}

	history := make([]fiber.Map, 0, len(entries))
	for _, entry := range entries {
		sources := make([]fiber.Map, 0, len(entry.Sources))
		for _, source := range entry.Sources {
			sources = append(sources, fiber.Map{
				"citation": source.Citation,
				"eventId":  source.EventID,
			})
		}
		history = append(history, fiber.Map{
			"id":         entry.Record.ID,
			"query":      entry.Record.Query,
			"response":   entry.Record.Response,
			"persona":    entry.Record.Persona,
			"sources":    sources,
			"latency_ms": entry.Record.LatencyMS,
			"created_at": entry.Record.CreatedAt.Unix(),
		})
	}

	return c.JSON(fiber.Map{
		"history": history,
	})
}

func (h *ChatHandler) GetSuggestions(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"suggestions": suggestedPrompts,
	})
}
