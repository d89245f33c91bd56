package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/couchcryptid/fews-explorer/internal/adapter/fews"
	httpadapter "github.com/couchcryptid/fews-explorer/internal/adapter/http"
	kafkaadapter "github.com/couchcryptid/fews-explorer/internal/adapter/kafka"
	"github.com/couchcryptid/fews-explorer/internal/config"
	"github.com/couchcryptid/fews-explorer/internal/domain"
	"github.com/couchcryptid/fews-explorer/internal/observability"
	"github.com/couchcryptid/fews-explorer/internal/pipeline"
	"github.com/joho/godotenv"
)

func main() {
	// A missing .env file is fine; the environment may already be set.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()

	resolver := domain.NewResolver(cfg.Deployments)

	var fetcher domain.Fetcher = fews.NewClient(resolver, cfg.FEWSTimeout, metrics, logger)
	if cfg.FEWSRateLimit > 0 {
		fetcher = fews.NewRateLimitedFetcher(fetcher, cfg.FEWSRateLimit, cfg.FEWSRateBurst)
		logger.Info("fews rate limiting enabled", "rps", cfg.FEWSRateLimit, "burst", cfg.FEWSRateBurst)
	}

	// Observation publishing is feature-flagged via KAFKA_ENABLED.
	var (
		loader pipeline.BatchLoader
		writer *kafkaadapter.Writer
	)
	if cfg.KafkaEnabled {
		writer = kafkaadapter.NewWriter(cfg, logger)
		loader = writer
		logger.Info("observation publishing enabled", "topic", cfg.KafkaTopic, "brokers", cfg.KafkaBrokers)
	} else {
		logger.Info("observation publishing disabled")
	}

	p := pipeline.New(fetcher, resolver, loader, logger, metrics, pipeline.Options{
		DefaultAPIURL: cfg.FEWSAPIURL,
		SelectorLimit: cfg.SelectorLimit,
	})

	srv := httpadapter.NewServer(cfg.HTTPAddr, p, cfg.CORSOrigins, cfg.HTTPWriteTimeout(), logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	if writer != nil {
		if err := writer.Close(); err != nil {
			logger.Error("kafka writer close error", "error", err)
		}
	}

	logger.Info("shutdown complete")
}
