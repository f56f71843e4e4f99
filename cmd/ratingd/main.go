// ratingd serves dynamic line rating, N-1 contingency, and sensitivity
// sweeps over HTTP, optionally publishing contingency results to Kafka.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/couchcryptid/line-rating-service/internal/adapter/catalogcsv"
	"github.com/couchcryptid/line-rating-service/internal/adapter/gridcsv"
	"github.com/couchcryptid/line-rating-service/internal/adapter/httpadapter"
	kafkaadapter "github.com/couchcryptid/line-rating-service/internal/adapter/kafka"
	"github.com/couchcryptid/line-rating-service/internal/config"
	"github.com/couchcryptid/line-rating-service/internal/domain"
	"github.com/couchcryptid/line-rating-service/internal/observability"
	"github.com/couchcryptid/line-rating-service/internal/pipeline"
	"github.com/couchcryptid/line-rating-service/internal/powerflow"
	"github.com/couchcryptid/line-rating-service/internal/sweep"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg.LogLevel, cfg.LogFormat)
	metrics := observability.NewMetrics()

	catalog, err := catalogcsv.LoadFiles(cfg.ConductorLibraryCSV, cfg.ConductorRatingsCSV)
	if err != nil {
		logger.Error("failed to load conductor catalog", "error", err)
		os.Exit(1)
	}
	network, err := gridcsv.LoadDir(cfg.NetworkDir)
	if err != nil {
		logger.Error("failed to load network snapshot", "error", err)
		os.Exit(1)
	}

	shape, err := domain.NewLoadShape(cfg.MinLoadHour, cfg.MaxLoadHour, cfg.LoadVariance)
	if err != nil {
		logger.Error("invalid load shape configuration", "error", err)
		os.Exit(1)
	}

	evaluator := pipeline.New(catalog, powerflow.DCSolver{}, shape, logger, metrics)
	contingency := sweep.NewContingency(evaluator, logger, metrics, cfg.SweepWorkers)
	sensitivity := sweep.NewSensitivity(evaluator, logger, metrics, cfg.SweepWorkers, cfg.SensitivityStepFloor)

	var publisher httpadapter.ReportPublisher
	var kafkaWriter *kafkaadapter.Writer
	if cfg.KafkaEnabled {
		kafkaWriter = kafkaadapter.NewWriter(cfg.KafkaBrokers, cfg.KafkaResultsTopic, logger)
		publisher = kafkaWriter
		logger.Info("kafka publishing enabled", "topic", cfg.KafkaResultsTopic)
	} else {
		logger.Info("kafka publishing disabled")
	}

	srv := httpadapter.NewServer(
		cfg.HTTPAddr, catalog, network, cfg.BaseConditions,
		contingency, sensitivity, publisher, logger,
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	logger.Info("ratingd started",
		"buses", len(network.Buses),
		"lines", len(network.Lines),
		"workers", cfg.SweepWorkers,
	)

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	if kafkaWriter != nil {
		if err := kafkaWriter.Close(); err != nil {
			logger.Error("kafka writer close error", "error", err)
		}
	}

	logger.Info("shutdown complete")
}
