package llm

import (
	"context"
	"errors"
	"fmt"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/elyx-health/journey-backend/pkg/circuitbreaker"
	"github.com/elyx-health/journey-backend/pkg/logger"
	"github.com/elyx-health/journey-backend/pkg/retry"
)

// ErrEmptyCompletion marks a provider response that carried no content; the
// caller must see an explicit failure rather than a silently empty answer.
var ErrEmptyCompletion = errors.New("model returned an empty response")

// ErrNoAPIKey is returned before any provider call when no credential is
// configured; it makes the first index build fail fast.
var ErrNoAPIKey = errors.New("llm api key is not configured")

const embeddingBatchSize = 100

type Client struct {
	client         *openai.Client
	model          string
	embeddingModel string
	temperature    float32
	maxTokens      int
	configured     bool
	cb             *circuitbreaker.CircuitBreaker
	retryConfig    retry.Config
}

func NewClient(apiKey, model, embeddingModel string, temperature float32, maxTokens int) *Client {
	cb := circuitbreaker.New("llm", circuitbreaker.Config{
		MaxRequests:      5,
		Interval:         time.Minute,
		Timeout:          30 * time.Second,
		FailureThreshold: 5,
		SuccessThreshold: 2,
		Logger:           logger.GetLogger(),
	})

	retryConfig := retry.Config{
		MaxAttempts:    3,
		InitialDelay:   500 * time.Millisecond,
		MaxDelay:       5 * time.Second,
		Multiplier:     2.0,
		JitterFraction: 0.1,
		Logger:         logger.GetLogger(),
	}

	logger.Info("LLM client initialized",
		zap.String("model", model),
		zap.String("embedding_model", embeddingModel),
		zap.Bool("configured", apiKey != ""),
	)

	return &Client{
		client:         openai.NewClient(apiKey),
		model:          model,
		embeddingModel: embeddingModel,
		temperature:    temperature,
		maxTokens:      maxTokens,
		configured:     apiKey != "",
		cb:             cb,
		retryConfig:    retryConfig,
	}
}

// Generate produces the answer text for an assembled prompt.
func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	if !c.configured {
		return "", ErrNoAPIKey
	}

	ctx, cancel := context.WithTimeout(ctx, 60*time.Second)
	defer cancel()

	var content string
	err := c.cb.Execute(ctx, func() error {
		var retryErr error
		content, retryErr = retry.DoWithResult(ctx, c.retryConfig, func() (string, error) {
			resp, err := c.client.CreateChatCompletion(
				ctx,
				openai.ChatCompletionRequest{
					Model: c.model,
					Messages: []openai.ChatCompletionMessage{
						{
							Role:    openai.ChatMessageRoleUser,
							Content: prompt,
						},
					},
					Temperature: c.temperature,
					MaxTokens:   c.maxTokens,
				},
			)
			if err != nil {
				return "", fmt.Errorf("failed to create completion: %w", err)
			}

			logger.Debug("Completion generated",
				zap.Int("prompt_tokens", resp.Usage.PromptTokens),
				zap.Int("completion_tokens", resp.Usage.CompletionTokens),
			)

			if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
				return "", ErrEmptyCompletion
			}

			return resp.Choices[0].Message.Content, nil
		})
		return retryErr
	})
	if err != nil {
		return "", err
	}

	return content, nil
}

func (c *Client) GenerateEmbedding(ctx context.Context, text string) ([]float32, error) {
	if !c.configured {
		return nil, ErrNoAPIKey
	}

	ctx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()

	var embedding []float32
	err := c.cb.Execute(ctx, func() error {
		var retryErr error
		embedding, retryErr = retry.DoWithResult(ctx, c.retryConfig, func() ([]float32, error) {
			resp, err := c.client.CreateEmbeddings(
				ctx,
				openai.EmbeddingRequest{
					Input: []string{text},
					Model: openai.EmbeddingModel(c.embeddingModel),
				},
			)
			if err != nil {
				return nil, fmt.Errorf("failed to generate embedding: %w", err)
			}
			if len(resp.Data) == 0 {
				return nil, fmt.Errorf("embedding response carried no data")
			}

			return append([]float32(nil), resp.Data[0].Embedding...), nil
		})
		return retryErr
	})
	if err != nil {
		return nil, err
	}

	return embedding, nil
}

// GenerateBatchEmbeddings embeds texts in provider-sized batches, preserving
// input order.
func (c *Client) GenerateBatchEmbeddings(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}
	if !c.configured {
		return nil, ErrNoAPIKey
	}

	ctx, cancel := context.WithTimeout(ctx, 2*time.Minute)
	defer cancel()

	embeddings := make([][]float32, 0, len(texts))

	for start := 0; start < len(texts); start += embeddingBatchSize {
		end := start + embeddingBatchSize
		if end > len(texts) {
			end = len(texts)
		}
		batch := texts[start:end]

		err := c.cb.Execute(ctx, func() error {
			return retry.Do(ctx, c.retryConfig, func() error {
				resp, err := c.client.CreateEmbeddings(
					ctx,
					openai.EmbeddingRequest{
						Input: batch,
						Model: openai.EmbeddingModel(c.embeddingModel),
					},
				)
				if err != nil {
					return fmt.Errorf("failed to generate batch embeddings: %w", err)
				}
				if len(resp.Data) != len(batch) {
					return fmt.Errorf("embedding batch mismatch: got %d, expected %d", len(resp.Data), len(batch))
				}

				for _, data := range resp.Data {
					embeddings = append(embeddings, append([]float32(nil), data.Embedding...))
				}
				return nil
			})
		})
		if err != nil {
			return nil, err
		}
	}

	logger.Debug("Batch embeddings generated", zap.Int("count", len(embeddings)))

	return embeddings, nil
}
