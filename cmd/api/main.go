// Package main is the entry point for the concierge API server.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/gifco-ai/restaurant-concierge/internal/config"
	"github.com/gifco-ai/restaurant-concierge/internal/events"
	"github.com/gifco-ai/restaurant-concierge/internal/handler"
	"github.com/gifco-ai/restaurant-concierge/internal/intent"
	"github.com/gifco-ai/restaurant-concierge/internal/llm"
	"github.com/gifco-ai/restaurant-concierge/internal/memory"
	"github.com/gifco-ai/restaurant-concierge/internal/middleware"
	"github.com/gifco-ai/restaurant-concierge/internal/parser"
	"github.com/gifco-ai/restaurant-concierge/internal/restaurantapi"
	"github.com/gifco-ai/restaurant-concierge/internal/service"
	"github.com/gifco-ai/restaurant-concierge/pkg/logger"
	"github.com/gifco-ai/restaurant-concierge/pkg/tracing"
)

func main() {
	cfg := config.Load()

	log, err := logger.New(cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()
	logger.SetGlobal(log)

	log.Info("starting concierge API server")

	ctx := context.Background()
	if cfg.TracingEnabled {
		tp, err := tracing.InitTracer(ctx, "restaurant-concierge", cfg.TracingEndpoint)
		if err != nil {
			log.Warn("failed to initialize tracing", zap.Error(err))
		} else {
			defer tracing.Shutdown(ctx, tp)
		}
	}

	// Event publishing is optional; the service runs without a broker.
	var publisher *events.Publisher
	if cfg.NATSURL != "" {
		publisher, err = events.Connect(ctx, events.Config{
			URL:      cfg.NATSURL,
			CAFile:   cfg.NATSCAFile,
			CertFile: cfg.NATSCertFile,
			KeyFile:  cfg.NATSKeyFile,
			Token:    cfg.NATSToken,
		}, log)
		if err != nil {
			log.Warn("failed to connect to NATS, event publishing disabled", zap.Error(err))
		} else {
			defer publisher.Close()
		}
	}

	// Thread memory: Redis when configured, in-process otherwise.
	var store memory.Store
	var pinger handler.Pinger
	if cfg.RedisURL != "" {
		redisStore, err := memory.NewRedisStore(cfg.RedisURL, cfg.SessionTTL)
		if err != nil {
			log.Error("failed to connect to Redis", zap.Error(err))
			os.Exit(1)
		}
		defer redisStore.Close()
		store = redisStore
		pinger = redisStore
		log.Info("using Redis thread store")
	} else {
		store = memory.NewInMemoryStore()
		log.Info("using in-memory thread store")
	}

	var llmClient llm.Client
	switch {
	case cfg.OpenAIAPIKey != "":
		llmClient, err = llm.NewOpenAIClient(cfg.OpenAIAPIKey, cfg.OpenAIBaseURL, cfg.OpenAIModelName)
	case cfg.AnthropicAPIKey != "":
		llmClient, err = llm.NewAnthropicClient(cfg.AnthropicAPIKey)
	default:
		log.Error("no LLM API key configured")
		os.Exit(1)
	}
	if err != nil {
		log.Error("failed to create LLM client", zap.Error(err))
		os.Exit(1)
	}
	log.Info("LLM client ready", zap.String("provider", llmClient.Name()))

	classifier, err := intent.NewOpenAIClassifier(cfg.OpenAIAPIKey, cfg.OpenAIBaseURL, cfg.OpenAIModelName, llmClient, log)
	if err != nil {
		log.Error("failed to create intent classifier", zap.Error(err))
		os.Exit(1)
	}
	apiClient := restaurantapi.NewClient(cfg.RestaurantServerURL, cfg.RestaurantTimeout, log)
	mem := memory.NewManager(store, log)
	cmdParser := parser.New(classifier, apiClient, cfg.DefaultLocation, log)
	svc := service.New(cmdParser, classifier, llmClient, mem, apiClient, publisher, log)

	healthHandler := handler.NewHealthHandler(pinger)
	queryHandler := handler.NewQueryHandler(svc, cfg.QueryTimeout, log)

	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.TokenPassthrough())
	r.Use(middleware.Logging(log))
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.CORS())

	r.Get("/health", healthHandler.Health)
	r.Get("/ready", healthHandler.Ready)
	r.Handle("/metrics", promhttp.Handler())

	r.Group(func(r chi.Router) {
		r.Use(middleware.RateLimit(cfg.RateLimitRequests, cfg.RateLimitWindow))
		r.Post("/query", queryHandler.Query)
	})

	server := &http.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      r,
		ReadTimeout:  cfg.ServerReadTimeout,
		WriteTimeout: cfg.ServerWriteTimeout,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		log.Info("server listening", zap.String("port", cfg.ServerPort))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server error", zap.Error(err))
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("server forced to shutdown", zap.Error(err))
	}

	log.Info("server stopped")
}
