package handlers

import (
	"context"
	"time"

	"github.com/gofiber/websocket/v2"
	"go.uber.org/zap"

	"github.com/elyx-health/journey-backend/internal/chat"
	"github.com/elyx-health/journey-backend/internal/metrics"
	"github.com/elyx-health/journey-backend/pkg/logger"
)

type WebSocketHandler struct {
	engine *chat.Engine
}

func NewWebSocketHandler(engine *chat.Engine) *WebSocketHandler {
	return &WebSocketHandler{
		engine: engine,
	}
}

func (h *WebSocketHandler) HandleConnection(c *websocket.Conn) {
	logger.Info("WebSocket connection established")

	defer func() {
		c.Close()
		logger.Info("WebSocket connection closed")
	}()

	for {
		var msg struct {
			Type    string `json:"type"`
			Content string `json:"content"`
		}

		if err := c.ReadJSON(&msg); err != nil {
			logger.Debug("WebSocket read ended", zap.Error(err))
			break
		}

		if msg.Type != "query" {
			continue
		}

		if msg.Content == "" {
			h.sendError(c, "Query is required")
			continue
		}

		logger.Info("Processing WebSocket query", zap.String("query", msg.Content))

		if err := h.streamResponse(c, msg.Content); err != nil {
			logger.Error("Failed to stream response", zap.Error(err))
			h.sendError(c, genericFailureMessage)
		}
	}
}

// streamResponse runs the pipeline, then replays the final answer to the
// client in word-sized chunks followed by a completion frame carrying the
// persona and source list.
func (h *WebSocketHandler) streamResponse(c *websocket.Conn, queryText string) error {
	h.sendChunk(c, "status", "Processing query...")

	start := time.Now()
	response, err := h.engine.ProcessQuery(context.Background(), chat.Request{Query: queryText})
	metrics.ChatDuration.WithLabelValues("websocket").Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.ChatTotal.WithLabelValues("error").Inc()
		return err
	}
	metrics.ChatTotal.WithLabelValues("success").Inc()

	words := splitIntoWords(response.Response)
	for i, word := range words {
		chunk := word
		if i < len(words)-1 {
			chunk += " "
		}
		if err := h.sendChunk(c, "chunk", chunk); err != nil {
			return err
		}
	}

	return c.WriteJSON(map[string]any{
		"type":       "complete",
		"message_id": response.ID,
		"persona":    response.Persona,
		"sources":    response.Sources,
		"latency_ms": response.LatencyMS,
	})
}

func (h *WebSocketHandler) sendChunk(c *websocket.Conn, msgType, content string) error {
	return c.WriteJSON(map[string]any{
		"type":    msgType,
		"content": content,
	})
}

func (h *WebSocketHandler) sendError(c *websocket.Conn, errorMsg string) {
	c.WriteJSON(map[string]any{
		"type":  "error",
		"error": errorMsg,
	})
}

func splitIntoWords(text string) []string {
	words := []string{}
	currentWord := ""

	for _, char := range text {
		if char == ' ' || char == '\n' {
			if currentWord != "" {
				words = append(words, currentWord)
				currentWord = ""
			}
			if char == '\n' {
				words = append(words, "\n")
			}
		} else {
			currentWord += string(char)
		}
	}

	if currentWord != "" {
		words = append(words, currentWord)
	}

	return words
}
