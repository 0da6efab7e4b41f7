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

	httpadapter "github.com/couchcryptid/aloft-etl/internal/adapter/http"
	kafkaadapter "github.com/couchcryptid/aloft-etl/internal/adapter/kafka"
	"github.com/couchcryptid/aloft-etl/internal/adapter/openmeteo"
	"github.com/couchcryptid/aloft-etl/internal/adapter/reportcache"
	"github.com/couchcryptid/aloft-etl/internal/adapter/soundings"
	"github.com/couchcryptid/aloft-etl/internal/config"
	"github.com/couchcryptid/aloft-etl/internal/observability"
	"github.com/couchcryptid/aloft-etl/internal/pipeline"
	"github.com/couchcryptid/aloft-etl/internal/windsaloft"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := sharedobs.NewLogger(cfg.LogLevel, cfg.LogFormat)
	metrics := observability.NewMetrics()

	profile, err := config.LoadProfile(cfg.ModelProfileFile)
	if err != nil {
		logger.Error("failed to load model profile", "error", err)
		os.Exit(1)
	}
	logger.Info("model profile loaded",
		"model", profile.Model,
		"pressure_levels", len(profile.PressureLevels),
		"height_levels", len(profile.HeightLevels),
	)

	gridded := openmeteo.NewClient(cfg.OpenMeteoBaseURL, cfg.OpenMeteoTimeout, metrics, logger)

	// Sounding source is optional (SOUNDING_BASE_URL). Without it sounding
	// reports cannot be fetched and stale envelopes are never extended.
	var soundingFetcher windsaloft.SoundingFetcher
	if cfg.SoundingsEnabled() {
		soundingFetcher = soundings.NewClient(cfg.SoundingBaseURL, cfg.SoundingTimeout, metrics, logger)
		logger.Info("sounding source enabled", "base_url", cfg.SoundingBaseURL, "timeout", cfg.SoundingTimeout)
	} else {
		logger.Info("sounding source disabled")
	}

	assembler := windsaloft.New(gridded, soundingFetcher, profile, logger, metrics,
		windsaloft.WithCache(reportcache.New(cfg.ReportCacheSize)),
		windsaloft.WithGriddedMaxAge(cfg.GriddedMaxAge),
	)

	reader := kafkaadapter.NewReader(cfg, logger)
	writer := kafkaadapter.NewWriter(cfg, logger)
	transformer := pipeline.NewTransformer(assembler, logger, metrics)

	p := pipeline.New(reader, transformer, writer, logger, metrics, cfg.BatchSize)

	srv := httpadapter.NewServer(cfg.HTTPAddr, p, assembler, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Start HTTP server.
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	// Start ETL pipeline.
	go func() {
		if err := p.Run(ctx); err != nil {
			logger.Error("pipeline error", "error", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

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
