package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/couchcryptid/climate-risk-engine/internal/adapter/httpapi"
	kafkaadapter "github.com/couchcryptid/climate-risk-engine/internal/adapter/kafka"
	"github.com/couchcryptid/climate-risk-engine/internal/adapter/upstream"
	"github.com/couchcryptid/climate-risk-engine/internal/config"
	"github.com/couchcryptid/climate-risk-engine/internal/domain"
	"github.com/couchcryptid/climate-risk-engine/internal/model"
	"github.com/couchcryptid/climate-risk-engine/internal/observability"
	"github.com/couchcryptid/climate-risk-engine/internal/pipeline"
	"github.com/couchcryptid/climate-risk-engine/internal/predict"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()

	// Sample source (feature-flagged via UPSTREAM_URL). Without it, API
	// predictions degrade to empty series and the Kafka path carries its own
	// samples.
	var source domain.SampleSource
	if cfg.UpstreamURL != "" {
		client := upstream.NewClient(cfg.UpstreamURL, cfg.UpstreamTimeout, logger, metrics)
		source, err = upstream.NewCachedSource(client, cfg.UpstreamCacheSize, metrics)
		if err != nil {
			logger.Error("failed to build upstream cache", "error", err)
			os.Exit(1)
		}
		logger.Info("upstream sample source enabled",
			"url", cfg.UpstreamURL, "cache_size", cfg.UpstreamCacheSize, "timeout", cfg.UpstreamTimeout)
	} else {
		logger.Info("upstream sample source disabled")
	}

	models := model.NewManager(logger, metrics, cfg.TrainingSeed)
	orchestrator := predict.NewOrchestrator(logger, metrics, source, models)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Batch scoring pipeline (feature-flagged via KAFKA_ENABLED).
	var ready httpapi.ReadinessChecker
	var reader *kafkaadapter.Reader
	var writer *kafkaadapter.Writer
	if cfg.KafkaEnabled {
		reader = kafkaadapter.NewReader(cfg, logger)
		writer = kafkaadapter.NewWriter(cfg, logger)
		scorer := pipeline.NewRequestScorer(orchestrator, logger)
		p := pipeline.New(reader, scorer, writer, logger, metrics, cfg.BatchSize)
		ready = p

		go func() {
			if err := p.Run(ctx); err != nil {
				logger.Error("pipeline error", "error", err)
			}
		}()
	} else {
		logger.Info("kafka scoring pipeline disabled")
	}

	srv := httpapi.NewServer(httpapi.Options{
		Addr:           cfg.HTTPAddr,
		RateLimitRPS:   cfg.RateLimitRPS,
		RateLimitBurst: cfg.RateLimitBurst,
	}, orchestrator, ready, logger, metrics)

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	if reader != nil {
		if err := reader.Close(); err != nil {
			logger.Error("kafka reader close error", "error", err)
		}
	}
	if writer != nil {
		if err := writer.Close(); err != nil {
			logger.Error("kafka writer close error", "error", err)
		}
	}

	logger.Info("shutdown complete")
}
