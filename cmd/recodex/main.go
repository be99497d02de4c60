package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/kailas-cloud/recodex/internal/app"
	"github.com/kailas-cloud/recodex/internal/config"
	logpkg "github.com/kailas-cloud/recodex/internal/logger"
	"github.com/kailas-cloud/recodex/internal/metrics"
	chiTransport "github.com/kailas-cloud/recodex/internal/transport/chi"
	mcpTransport "github.com/kailas-cloud/recodex/internal/transport/mcp"
	"github.com/kailas-cloud/recodex/internal/version"
)

func main() {
	// .env is optional; real environment variables win
	_ = godotenv.Load()

	env := config.GetEnv()

	cfg, err := config.Load(env)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	logger, err := logpkg.NewLogger(env, cfg.Logging.Level)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()
	defer zap.ReplaceGlobals(logger)()

	logger.Info("Starting recodex API server",
		zap.String("build", version.String()),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.String("corpus_path", cfg.Corpus.Path),
		zap.String("cache_driver", cfg.Cache.Driver),
	)

	// Register metrics explicitly (no init())
	metrics.Register()

	application, err := app.New(context.Background(), cfg, logger)
	if err != nil {
		logger.Fatal("Failed to start", zap.Error(err))
	}
	defer application.Close()

	server := chiTransport.NewServer(application.Recommend, application.Health, cfg.Search.DefaultTopK, logger)
	mcpServer := mcpTransport.NewServer(application.Recommend, cfg.Search.DefaultTopK, logger)

	handler := chiTransport.NewRouter(server, chiTransport.RouterConfig{
		APIKeys: cfg.Auth.APIKeys,
		MCP:     mcpTransport.NewHandler(mcpServer),
		Logger:  logger,
	})

	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
	}

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("Starting HTTP server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	<-quit
	logger.Info("Received shutdown signal")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.HTTP.ShutdownSec)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error during shutdown", zap.Error(err))
	}

	logger.Info("Server stopped gracefully")
}
