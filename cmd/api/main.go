package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/websocket/v2"
	"go.uber.org/zap"

	"github.com/elyx-health/journey-backend/internal/api/handlers"
	"github.com/elyx-health/journey-backend/internal/cache/redis"
	"github.com/elyx-health/journey-backend/internal/chat"
	"github.com/elyx-health/journey-backend/internal/corpus"
	"github.com/elyx-health/journey-backend/internal/index"
	"github.com/elyx-health/journey-backend/internal/journey"
	"github.com/elyx-health/journey-backend/internal/llm"
	"github.com/elyx-health/journey-backend/internal/metrics"
	"github.com/elyx-health/journey-backend/internal/middleware/ratelimit"
	"github.com/elyx-health/journey-backend/internal/middleware/security"
	"github.com/elyx-health/journey-backend/internal/middleware/validation"
	"github.com/elyx-health/journey-backend/internal/storage/sqlite"
	"github.com/elyx-health/journey-backend/pkg/config"
	appLogger "github.com/elyx-health/journey-backend/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	err = appLogger.Init(cfg.Logging.Level, cfg.Logging.Format, cfg.Logging.OutputPath)
	if err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer appLogger.Sync()

	appLogger.Info("Starting Journey Copilot API Server")

	metrics.Init()

	sqliteClient, err := sqlite.NewClient(cfg.SQLite.Path)
	if err != nil {
		appLogger.Fatal("Failed to create SQLite client", zap.Error(err))
	}
	defer sqliteClient.Close()

	if err := sqliteClient.InitSchema(); err != nil {
		appLogger.Fatal("Failed to initialize schema", zap.Error(err))
	}

	var cacheClient *redis.Client
	if cfg.Redis.Enabled {
		cacheClient, err = redis.NewClient(cfg.Redis.Host, cfg.Redis.Port, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			appLogger.Warn("Redis unavailable, continuing without cache", zap.Error(err))
		} else {
			defer cacheClient.Close()
		}
	}

	llmClient := llm.NewClient(
		cfg.LLM.APIKey,
		cfg.LLM.Model,
		cfg.LLM.EmbeddingModel,
		cfg.LLM.Temperature,
		cfg.LLM.MaxTokens,
	)

	// The corpus is loaded eagerly so a broken fixture fails the process at
	// startup; embedding it is deferred to first query via the provider.
	events, err := journey.LoadEvents(cfg.Data.EventLogPath)
	if err != nil {
		appLogger.Fatal("Failed to load event log", zap.Error(err))
	}

	analysis, err := journey.LoadAnalysis(cfg.Data.AnalysisPath)
	if err != nil {
		appLogger.Fatal("Failed to load analysis report", zap.Error(err))
	}

	documents := corpus.NewBuilder(cfg.Retrieval.MinDocLength).Build(events, analysis)

	embedder := llm.NewCachedEmbedder(llmClient, cacheClient, time.Duration(cfg.Redis.TTLSec)*time.Second)

	provider := index.NewProvider(func(ctx context.Context) (*index.Index, error) {
		return index.Build(ctx, documents, embedder)
	})

	engine := chat.NewEngine(provider, llmClient, chat.Options{
		TopK:     cfg.Retrieval.TopK,
		History:  sqliteClient,
		Cache:    cacheClient,
		CacheTTL: time.Duration(cfg.Redis.TTLSec) * time.Second,
	})

	app := fiber.New(fiber.Config{
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		BodyLimit:    cfg.Server.BodyLimit,
	})

	app.Use(recover.New())
	app.Use(fiberlogger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		AllowMethods: "GET, POST, OPTIONS",
	}))
	app.Use(security.HeadersMiddleware(security.HeadersConfig{
		IsDevelopment: cfg.Logging.Level == "debug",
	}))

	limiter := ratelimit.New(ratelimit.Config{
		MaxRequestsPerMinute: 60,
		Logger:               appLogger.GetLogger(),
	})
	defer limiter.Stop()

	chatHandler := handlers.NewChatHandler(engine)
	wsHandler := handlers.NewWebSocketHandler(engine)

	app.Get("/metrics", metrics.MetricsHandler())

	api := app.Group("/api/v1")
	api.Use(limiter.Middleware())
	api.Use(validation.Middleware(validation.Config{
		Logger: appLogger.GetLogger(),
	}))

	api.Post("/chat", chatHandler.HandleChat)
	api.Get("/chat/history", chatHandler.GetChatHistory)
	api.Get("/chat/suggestions", chatHandler.GetSuggestions)

	api.Use("/chat/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	api.Get("/chat/ws", websocket.New(wsHandler.HandleConnection))

	api.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status": "healthy",
			"time":   time.Now().Unix(),
		})
	})

	api.Get("/ready", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":    "ready",
			"documents": len(documents),
		})
	})

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	appLogger.Info("Server starting", zap.String("address", addr))

	go func() {
		if err := app.Listen(addr); err != nil {
			appLogger.Fatal("Server failed to start", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	appLogger.Info("Server shutting down gracefully...")
	app.Shutdown()
	appLogger.Info("Server stopped")
}
