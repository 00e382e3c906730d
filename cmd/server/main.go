package main

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
	avquote "github.com/set-night/avquote"
	"github.com/set-night/avquote/internal/config"
	"github.com/set-night/avquote/internal/handler"
	"github.com/set-night/avquote/internal/metrics"
	"github.com/set-night/avquote/internal/middleware"
	"github.com/set-night/avquote/internal/notify"
	"github.com/set-night/avquote/internal/repository"
	"github.com/set-night/avquote/internal/service"
	"github.com/set-night/avquote/internal/transcript"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	// Setup structured logging
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.SlogLevel(),
	}))
	slog.SetDefault(logger)

	// Setup context with graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Open store and run migrations
	migrationsFS, err := fs.Sub(avquote.MigrationsFS, "migrations")
	if err != nil {
		slog.Error("failed to load embedded migrations", "error", err)
		os.Exit(1)
	}
	store, err := repository.Open(ctx, cfg, migrationsFS)
	if err != nil {
		slog.Error("failed to open store", "driver", cfg.StoreDriver, "error", err)
		os.Exit(1)
	}
	defer store.Close()

	// In-flight reply gate
	var gate transcript.Gate = transcript.NewMemoryGate(config.GateLease)
	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			slog.Error("invalid REDIS_URL", "error", err)
			os.Exit(1)
		}
		rdb := redis.NewClient(opts)
		defer rdb.Close()
		if err := rdb.Ping(ctx).Err(); err != nil {
			slog.Error("failed to connect to redis", "error", err)
			os.Exit(1)
		}
		gate = transcript.NewRedisGate(rdb, config.GateLease)
	}

	// Initialize services
	catalog := service.NewCatalogService(store)
	transcripts := service.NewTranscriptService(store)

	var ranker service.Ranker
	if cfg.GeminiAPIKey != "" {
		g, err := service.NewGeminiRanker(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
		if err != nil {
			slog.Error("failed to create gemini ranker", "error", err)
			os.Exit(1)
		}
		ranker = g
	} else {
		slog.Info("GEMINI_API_KEY not set, using keyword recommendations")
	}
	recommendations := service.NewRecommendationService(catalog, ranker)

	var notifier service.QuoteNotifier
	if cfg.TelegramEnabled() {
		tg, err := notify.NewTelegram(cfg.TelegramBotToken, cfg.TelegramChatID, cfg.TelegramTopicQuotes)
		if err != nil {
			slog.Error("failed to create telegram notifier", "error", err)
			os.Exit(1)
		}
		notifier = tg
	}
	quotes := service.NewQuoteService(store, catalog, transcripts, notifier)

	if cfg.OpenRouterKey == "" {
		slog.Warn("OPENROUTER_API_KEY not set, consultation replies will fail")
	}
	openRouter := service.NewOpenRouterService(cfg.OpenRouterKey, cfg.OpenRouterBaseURL, cfg.ChatModel, cfg.ChatTemperature)
	replies := service.NewReplyService(transcripts, openRouter, recommendations, gate,
		transcript.KeywordTrigger(cfg.TriggerKeywords()...))

	// Metrics
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	// HTTP server
	app := fiber.New(fiber.Config{
		AppName:               "avquote",
		DisableStartupMessage: true,
	})
	app.Use(
		middleware.Recover(),
		middleware.Logging(),
		middleware.Metrics(m),
		middleware.RateLimit(cfg.RateLimitPerMinute),
	)
	if len(cfg.AllowedOrigins) > 0 {
		app.Use(cors.New(cors.Config{
			AllowOrigins: strings.Join(cfg.AllowedOrigins, ","),
			AllowMethods: "GET,POST,PATCH,DELETE,OPTIONS",
		}))
	}

	h := handler.New(handler.Deps{
		Store:           store,
		Catalog:         catalog,
		Quotes:          quotes,
		Transcripts:     transcripts,
		Recommendations: recommendations,
		Provider:        openRouter,
		Replies:         replies,
		Metrics:         m,
		Gatherer:        reg,
	})
	h.Register(app)

	go func() {
		<-ctx.Done()
		slog.Info("shutting down")
		if err := app.ShutdownWithTimeout(config.ShutdownTimeout); err != nil {
			slog.Error("shutdown", "error", err)
		}
	}()

	addr := fmt.Sprintf(":%d", cfg.Port)
	slog.Info("starting server", "addr", addr, "store", cfg.StoreDriver)
	if err := app.Listen(addr); err != nil {
		slog.Error("server stopped", "error", err)
		os.Exit(1)
	}

	slog.Info("server stopped gracefully")
}
