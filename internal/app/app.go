// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

package app

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/lavapop/lifecycle-analytics/internal/config"
	"github.com/lavapop/lifecycle-analytics/internal/server"
	"github.com/lavapop/lifecycle-analytics/pkg/engine"
	"github.com/lavapop/lifecycle-analytics/pkg/metrics"
	"github.com/lavapop/lifecycle-analytics/pkg/snapshot"
	"github.com/lavapop/lifecycle-analytics/pkg/store"
	"github.com/sirupsen/logrus"
)

const metricsEndpoint = "/metrics"

// App holds all application dependencies and manages the service
// lifecycle: load the POS snapshot, re-feed it through the analytics
// engine on a fixed interval, cache the report for the dashboard.
type App struct {
	cfg               *config.Config
	engine            *engine.Engine
	source            snapshot.Source
	redisClient       *redis.Client
	reportStore       *store.Store
	cacheHealth       *store.HealthChecker
	metricsServer     *server.MetricsServer
	shutdownTelemetry func(context.Context) error

	closeSource func() error
}

// New creates and initializes a new application instance. Components are
// initialized in dependency order: report cache, engine thresholds,
// engine, snapshot source, servers, telemetry.
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	logrus.Info("initializing application...")

	app := &App{cfg: cfg}

	// ============================================================
	// Step 1: Report cache (Redis)
	// ============================================================
	redisClient, err := store.InitRedisClient(ctx, store.RedisConfig{
		Host:       cfg.RedisHost,
		Port:       cfg.RedisPort,
		Password:   cfg.RedisPassword,
		MaxRetries: cfg.RedisMaxRetries,
		RetryDelay: time.Duration(cfg.RedisRetryDelayMs) * time.Millisecond,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to init Redis: %w", err)
	}
	app.redisClient = redisClient
	app.reportStore = store.New(redisClient, 0)
	app.cacheHealth = store.NewHealthChecker(redisClient)

	// ============================================================
	// Step 2: Engine thresholds + engine
	// ============================================================
	engineConfig, err := engine.LoadConfig(cfg.ThresholdsPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load thresholds from %s: %w", cfg.ThresholdsPath, err)
	}
	logrus.Infof("loaded analytics thresholds from %s", cfg.ThresholdsPath)

	app.engine, err = engine.New(engineConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to init engine: %w", err)
	}

	// ============================================================
	// Step 3: Snapshot source
	// ============================================================
	switch cfg.SnapshotSource {
	case "mysql":
		src, err := snapshot.OpenMySQL(cfg.MySQLDSN, cfg.MySQLTable)
		if err != nil {
			return nil, fmt.Errorf("failed to open mysql snapshot source: %w", err)
		}
		app.source = src
		app.closeSource = src.Close
	default:
		app.source = snapshot.NewCSVSource(cfg.SalesCSVPath)
	}
	logrus.Infof("using %s snapshot source", cfg.SnapshotSource)

	// ============================================================
	// Step 4: Metrics server
	// ============================================================
	app.metricsServer = server.NewMetricsServer(cfg.MetricsPort, metricsEndpoint)
	if err := app.metricsServer.Setup(); err != nil {
		return nil, fmt.Errorf("failed to setup metrics server: %w", err)
	}

	// ============================================================
	// Step 5: Telemetry
	// ============================================================
	if cfg.OtelEnabled {
		shutdownTelemetry, err := server.SetupTelemetry(ctx, cfg.OtelServiceName, cfg.Environment, 0)
		if err != nil {
			return nil, fmt.Errorf("failed to setup telemetry: %w", err)
		}
		app.shutdownTelemetry = shutdownTelemetry
	}

	logrus.Info("application initialized")
	return app, nil
}

// refreshOnce performs one full snapshot → engine → cache cycle. The
// wall clock is injected here, at the service boundary; everything below
// it is deterministic.
func (a *App) refreshOnce(ctx context.Context) error {
	started := time.Now()

	// An unreachable cache means the report has nowhere to go; skip the
	// whole cycle instead of computing a report we cannot publish.
	if err := a.cacheHealth.Check(ctx); err != nil {
		metrics.EngineRunsTotal.WithLabelValues("error").Inc()
		return fmt.Errorf("report cache unavailable: %w", err)
	}

	snap, err := a.source.Load(ctx)
	if err != nil {
		metrics.EngineRunsTotal.WithLabelValues("error").Inc()
		return fmt.Errorf("snapshot load failed: %w", err)
	}

	snap.Segments, err = a.reportStore.RFMSegments(ctx)
	if err != nil {
		logrus.Warnf("continuing without RFM segments: %v", err)
	}
	snap.Welcome, err = a.reportStore.WelcomeSet(ctx)
	if err != nil {
		logrus.Warnf("continuing without welcome attribution: %v", err)
	}

	report, err := a.engine.Run(ctx, snap, started)
	if err != nil {
		metrics.EngineRunsTotal.WithLabelValues("error").Inc()
		return fmt.Errorf("engine run failed: %w", err)
	}

	if err := a.reportStore.SaveReport(ctx, report); err != nil {
		metrics.EngineRunsTotal.WithLabelValues("error").Inc()
		return fmt.Errorf("report caching failed: %w", err)
	}

	metrics.EngineRunsTotal.WithLabelValues("success").Inc()
	metrics.EngineRunDuration.Observe(time.Since(started).Seconds())
	metrics.ObserveReport(report)

	logrus.Infof("refresh complete in %v", time.Since(started))
	return nil
}
