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

	"github.com/kailas-cloud/foundmatch/internal/bootstrap"
	"github.com/kailas-cloud/foundmatch/internal/config"
	logpkg "github.com/kailas-cloud/foundmatch/internal/logger"
	"github.com/kailas-cloud/foundmatch/internal/metrics"
	founditemrepo "github.com/kailas-cloud/foundmatch/internal/repository/founditem"
	lostreportrepo "github.com/kailas-cloud/foundmatch/internal/repository/lostreport"
	matchrepo "github.com/kailas-cloud/foundmatch/internal/repository/match"
	chiTransport "github.com/kailas-cloud/foundmatch/internal/transport/chi"
	healthuc "github.com/kailas-cloud/foundmatch/internal/usecase/health"
	"github.com/kailas-cloud/foundmatch/internal/usecase/matching"
	"github.com/kailas-cloud/foundmatch/internal/version"
)

func main() {
	// Load configuration based on ENV
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

	logger.Info("Starting foundmatch API server",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.Strings("db_addrs", cfg.Database.Addrs),
	)

	ctx := context.Background()
	store, err := bootstrap.Store(ctx, cfg.Database)
	if err != nil {
		logger.Fatal("Database unavailable", zap.Error(err))
	}
	defer store.Close()
	logger.Info("Connected to database")

	// Register metrics explicitly (no init())
	metrics.RegisterEmbeddingMetrics()
	metrics.RegisterMatchMetrics()
	metrics.RegisterHTTPMetrics()

	// The model loads on first use; startup never blocks on it.
	embedder := bootstrap.Embedder(cfg.Embedding, store, logger)
	logger.Info("Embedding provider configured",
		zap.String("provider", cfg.Embedding.Provider),
		zap.String("model", cfg.Embedding.Model),
		zap.Int("dimensions", cfg.Embedding.Dimensions),
	)

	reports := lostreportrepo.New(store)
	items := founditemrepo.New(store)
	matches := matchrepo.New(store)

	matchSvc, err := matching.New(reports, matches, embedder, bootstrap.MatchingConfig(cfg.Matching), logger)
	if err != nil {
		logger.Fatal("Invalid matching configuration", zap.Error(err))
	}
	healthSvc := healthuc.New(store, embedder)

	server := chiTransport.NewServer(matchSvc, reports, items, healthSvc, logger)

	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      server.Router(),
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
	}

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("Starting HTTP server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
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
