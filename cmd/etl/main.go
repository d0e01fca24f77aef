package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"

	sharedobs "github.com/couchcryptid/storm-data-shared/observability"

	httpadapter "github.com/couchcryptid/adcirc-etl/internal/adapter/http"
	kafkaadapter "github.com/couchcryptid/adcirc-etl/internal/adapter/kafka"
	"github.com/couchcryptid/adcirc-etl/internal/adapter/vdatum"
	"github.com/couchcryptid/adcirc-etl/internal/config"
	"github.com/couchcryptid/adcirc-etl/internal/domain"
	"github.com/couchcryptid/adcirc-etl/internal/observability"
	"github.com/couchcryptid/adcirc-etl/internal/pipeline"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := sharedobs.NewLogger(cfg.LogLevel, cfg.LogFormat)
	metrics := observability.NewMetrics()

	// Initialize datum converter (feature-flagged via VDATUM_ENABLED).
	var converter domain.DatumConverter
	if cfg.VDatumEnabled {
		client := vdatum.NewClient(cfg.VDatumBaseURL, cfg.VDatumTimeout, metrics, logger)
		converter = vdatum.NewCachedConverter(client, cfg.VDatumCacheSize, metrics)
		metrics.DatumEnabled.Set(1)
		logger.Info("vdatum conversion enabled",
			"source", cfg.VDatumSourceVertical,
			"target", cfg.VDatumTargetVertical,
			"cache_size", cfg.VDatumCacheSize,
			"timeout", cfg.VDatumTimeout,
		)
	} else {
		logger.Info("vdatum conversion disabled")
	}

	extractor := pipeline.NewFileExtractor(cfg.GridFile, cfg.FieldFile, metrics, logger)
	transformer := pipeline.NewTransformer(converter, cfg.DatumFrames(), logger)
	writer := kafkaadapter.NewWriter(cfg, logger)

	p := pipeline.New(extractor, transformer, writer, cfg.Stations, logger, metrics)

	srv := httpadapter.NewServer(cfg.HTTPAddr, p, p, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Start HTTP server.
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	// Run the ETL pass once; the server keeps serving its results until shutdown.
	var failed atomic.Bool
	go func() {
		if err := p.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			logger.Error("pipeline error", "error", err)
			failed.Store(true)
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
	if err := writer.Close(); err != nil {
		logger.Error("kafka writer close error", "error", err)
	}

	logger.Info("shutdown complete")
	if failed.Load() {
		os.Exit(1)
	}
}
