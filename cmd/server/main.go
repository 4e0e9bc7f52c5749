package main

import (
	"context"
	"errors"
	"log/slog"
	"math/rand"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	httpadapter "github.com/couchcryptid/coastal-threat-service/internal/adapter/http"
	kafkaadapter "github.com/couchcryptid/coastal-threat-service/internal/adapter/kafka"
	"github.com/couchcryptid/coastal-threat-service/internal/config"
	"github.com/couchcryptid/coastal-threat-service/internal/domain"
	"github.com/couchcryptid/coastal-threat-service/internal/engine"
	"github.com/couchcryptid/coastal-threat-service/internal/model"
	"github.com/couchcryptid/coastal-threat-service/internal/monitor"
	"github.com/couchcryptid/coastal-threat-service/internal/observability"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg.LogLevel, cfg.LogFormat)
	metrics := observability.NewMetrics()

	// Load the statistical model (feature-flagged via MODEL_PATH). Without
	// one the scorer runs on the rule-based fallback.
	var threatModel domain.ThreatModel
	if cfg.ModelPath != "" {
		m, err := model.Load(cfg.ModelPath)
		if err != nil {
			logger.Error("failed to load model, continuing with fallback", "path", cfg.ModelPath, "error", err)
		} else {
			threatModel = m
			logger.Info("model loaded", "path", cfg.ModelPath, "version", m.Version)
		}
	} else {
		logger.Info("no model configured, running rule-based fallback")
	}

	scorer := domain.NewScorer(threatModel, logger)

	var rng *rand.Rand
	if cfg.RouteSeed != 0 {
		rng = rand.New(rand.NewSource(cfg.RouteSeed))
	}
	routes := domain.NewRouteSynthesizer(rng)

	eng := engine.New(scorer, routes, metrics, logger, nil)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Start the monitor loop (feature-flagged via MONITOR_ENABLED).
	var ready httpadapter.ReadinessChecker
	var reader *kafkaadapter.Reader
	var writer *kafkaadapter.Writer
	if cfg.MonitorEnabled {
		reader = kafkaadapter.NewReader(cfg, logger)
		writer = kafkaadapter.NewWriter(cfg, logger)

		mon := monitor.New(reader, writer, scorer, logger, metrics, cfg.MonitorInterval, cfg.MonitorErrorBackoff)
		ready = mon

		go func() {
			if err := mon.Run(ctx); err != nil {
				logger.Error("monitor error", "error", err)
			}
		}()
	} else {
		logger.Info("monitor disabled")
	}

	srv := httpadapter.NewServer(cfg, eng, ready, logger)

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
