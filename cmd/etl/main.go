package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
	"github.com/prometheus/client_golang/prometheus"

	httpadapter "github.com/couchcryptid/sea-ice-etl/internal/adapter/http"
	kafkaadapter "github.com/couchcryptid/sea-ice-etl/internal/adapter/kafka"
	"github.com/couchcryptid/sea-ice-etl/internal/app"
	"github.com/couchcryptid/sea-ice-etl/internal/config"
	"github.com/couchcryptid/sea-ice-etl/internal/fsutil"
	"github.com/couchcryptid/sea-ice-etl/internal/observability"
	"github.com/couchcryptid/sea-ice-etl/internal/pipeline"
)

func main() {
	cfg, err := config.Load(os.Getenv("SEAICE_CONFIG"))
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := sharedobs.NewLogger(cfg.Service.LogLevel, cfg.Service.LogFormat)
	metrics := observability.NewMetrics()

	// Requests without explicit output paths land in OutputDir; two services
	// sharing it would overwrite each other's artifacts.
	dirLock, err := fsutil.LockDir(cfg.Dataset.OutputDir)
	if err != nil {
		logger.Error("failed to lock output directory", "dir", cfg.Dataset.OutputDir, "error", err)
		os.Exit(1)
	}
	defer func() {
		if err := dirLock.Unlock(); err != nil {
			logger.Warn("failed to release output directory lock", "error", err)
		}
	}()

	pipelines := app.NewPipelines(cfg, logger, metrics)
	converter := pipeline.NewConverter(pipelines.Exporter, pipelines.Renderer, cfg.Dataset.OutputDir, logger)

	reader := kafkaadapter.NewReader(cfg, logger)
	writer := kafkaadapter.NewWriter(cfg, logger)

	p := pipeline.New(reader, converter, writer, logger, metrics, cfg.Service.BatchSize)

	srv := httpadapter.NewServer(cfg.Service.HTTPAddr, p, prometheus.DefaultGatherer, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger.Info("sea-ice etl starting",
		"source_topic", cfg.Kafka.SourceTopic,
		"sink_topic", cfg.Kafka.SinkTopic,
		"output_dir", cfg.Dataset.OutputDir,
		"batch_size", cfg.Service.BatchSize,
	)

	// Start HTTP server.
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	// Start ETL pipeline.
	done := make(chan struct{})
	go func() {
		defer close(done)
		if err := p.Run(ctx); err != nil {
			logger.Error("pipeline error", "error", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Service.ShutdownTimeout)
	defer cancel()

	select {
	case <-done:
	case <-shutdownCtx.Done():
		logger.Warn("pipeline did not stop before the shutdown timeout")
	}

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	if err := reader.Close(); err != nil {
		logger.Error("kafka reader close error", "error", err)
	}
	if err := writer.Close(); err != nil {
		logger.Error("kafka writer close error", "error", err)
	}

	logger.Info("shutdown complete")
}
