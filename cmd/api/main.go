// Package main is the entry point for the API server.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/neighborjob/marketplace/internal/advisor"
	"github.com/neighborjob/marketplace/internal/cache"
	"github.com/neighborjob/marketplace/internal/config"
	"github.com/neighborjob/marketplace/internal/handler"
	"github.com/neighborjob/marketplace/internal/llm"
	"github.com/neighborjob/marketplace/internal/model"
	natsclient "github.com/neighborjob/marketplace/internal/nats"
	"github.com/neighborjob/marketplace/internal/service"
	"github.com/neighborjob/marketplace/internal/store"
	"github.com/neighborjob/marketplace/pkg/logger"
	"github.com/neighborjob/marketplace/pkg/tracing"
)

func main() {
	// Load configuration
	if err := config.LoadDotEnv(); err != nil {
		fmt.Fprintf(os.Stderr, "failed to load .env: %v\n", err)
		os.Exit(1)
	}
	cfg := config.Load()

	// Initialize logger
	log, err := logger.New(logger.Options{
		Level:       cfg.LogLevel,
		Service:     cfg.ServiceName,
		Development: cfg.Environment == "development",
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()
	logger.SetGlobal(log)

	log.Info("starting API server")

	// Initialize tracing if enabled
	ctx := context.Background()
	if cfg.TracingEnabled {
		tp, err := tracing.InitTracer(ctx, cfg.ServiceName, cfg.TracingEndpoint)
		if err != nil {
			log.Warn("failed to initialize tracing", zap.Error(err))
		} else {
			defer tracing.Shutdown(ctx, tp)
		}
	}

	// Advice cache: Redis when configured, in-process otherwise
	var adviceCache cache.Cache = cache.NewMemory()
	if cfg.RedisURL != "" {
		rdb, err := cache.Connect(ctx, cfg.RedisURL)
		if err != nil {
			log.Warn("failed to connect to Redis, using in-memory advice cache", zap.Error(err))
		} else {
			defer rdb.Close()
			adviceCache = cache.NewRedis(rdb, "nbj:")
			log.Info("connected to Redis")
		}
	}

	// Initialize LLM client
	var llmClient llm.Client
	if key := cfg.APIKey(cfg.DefaultLLM); key != "" {
		llmClient, err = llm.NewClient(llm.Provider(cfg.DefaultLLM), key)
		if err != nil {
			log.Warn("failed to create LLM client, advisor uses fallbacks", zap.String("provider", cfg.DefaultLLM), zap.Error(err))
			llmClient = nil
		}
	} else {
		log.Warn("no API key for LLM provider, advisor uses fallbacks", zap.String("provider", cfg.DefaultLLM))
	}

	jobAdvisor := advisor.New(llmClient, adviceCache, advisor.Config{
		Model:    cfg.LLMModel,
		Timeout:  cfg.AdvisorTimeout,
		CacheTTL: cfg.AdviceCacheTTL,
	}, log)

	// Connect to NATS when enabled
	var (
		events    service.EventPublisher
		readiness handler.ReadinessChecker
	)
	if cfg.NATSEnabled {
		natsClient, err := natsclient.Connect(ctx, natsclient.Config{
			URL:      cfg.NATSURL,
			Name:     cfg.ServiceName,
			CAFile:   cfg.NATSCAFile,
			CertFile: cfg.NATSCertFile,
			KeyFile:  cfg.NATSKeyFile,
			Token:    cfg.NATSToken,
		}, log)
		if err != nil {
			log.Error("failed to connect to NATS", zap.Error(err))
			os.Exit(1)
		}
		defer natsClient.Close()

		// Ensure JetStream stream exists
		streamManager := natsclient.NewStreamManager(natsClient)
		if err := streamManager.EnsureStream(ctx); err != nil {
			log.Error("failed to ensure stream", zap.Error(err))
			os.Exit(1)
		}
		events = streamManager
		readiness = natsClient
	}

	// Initialize services
	var seed []model.Job
	if cfg.SeedDemoJobs {
		seed = service.DemoJobs(time.Now())
	}
	marketplace := service.NewMarketplace(service.Options{
		Jobs:    store.NewJobStore(seed...),
		Advisor: jobAdvisor,
		Events:  events,
	}, log)

	// Create router
	r := handler.NewRouter(handler.RouterConfig{
		Marketplace:       marketplace,
		Logger:            log,
		Events:            readiness,
		JWTSecret:         cfg.JWTSecret,
		AllowedOrigins:    cfg.AllowedOrigins,
		RateLimitRequests: cfg.RateLimitRequests,
		RateLimitWindow:   cfg.RateLimitWindow,
	})

	// Create HTTP server
	server := &http.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      r,
		ReadTimeout:  cfg.ServerReadTimeout,
		WriteTimeout: cfg.ServerWriteTimeout,
		IdleTimeout:  120 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Info("server listening", zap.String("port", cfg.ServerPort))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server error", zap.Error(err))
			os.Exit(1)
		}
	}()

	// Wait for shutdown signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server")

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("server forced to shutdown", zap.Error(err))
	}

	log.Info("server stopped")
}
