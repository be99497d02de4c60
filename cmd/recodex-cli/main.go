package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/kailas-cloud/recodex/internal/app"
	"github.com/kailas-cloud/recodex/internal/config"
	logpkg "github.com/kailas-cloud/recodex/internal/logger"
	"github.com/kailas-cloud/recodex/internal/session"
	"github.com/kailas-cloud/recodex/internal/version"
)

func main() {
	// .env is optional; real environment variables win
	_ = godotenv.Load()

	cfg, err := config.Load(config.GetEnv())
	if err != nil {
		fmt.Fprintln(os.Stderr, "failed to load config:", err)
		os.Exit(1)
	}

	// The menu owns stdout; logs go to stderr at warn level unless overridden.
	logger, err := logpkg.NewLogger("cli", cfg.Logging.Level)
	if err != nil {
		fmt.Fprintln(os.Stderr, "failed to create logger:", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()
	defer zap.ReplaceGlobals(logger)()
	logger.Debug("Starting recodex CLI", zap.String("build", version.String()))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	application, err := app.New(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("Failed to start", zap.Error(err))
	}
	defer application.Close()

	// Scan does not watch ctx; closing stdin unblocks it on a signal.
	go func() {
		<-ctx.Done()
		_ = os.Stdin.Close()
	}()

	s := session.New(application.Recommend, os.Stdin, os.Stdout, cfg.Search.DefaultTopK, logger)
	if err := s.Run(ctx); err != nil {
		logger.Error("Session ended with error", zap.Error(err))
	}
}
