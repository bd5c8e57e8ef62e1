// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

package config

// Config holds all service configuration loaded from environment
// variables via github.com/caarlos0/env struct tags. Analytic cutoffs
// (risk ladder days, cohort windows, rate bands) live in the thresholds
// YAML file instead, so operators can tune them without a redeploy.
type Config struct {
	// ============================================================
	// Service configuration
	// ============================================================
	MetricsPort int    `env:"METRICS_PORT" envDefault:"8080"`
	Environment string `env:"ENVIRONMENT" envDefault:"dev"`
	ServiceName string `env:"SERVICE_NAME" envDefault:"LifecycleAnalytics"`

	// RefreshIntervalMinutes is how often the snapshot is re-fed through
	// the engine.
	RefreshIntervalMinutes int `env:"REFRESH_INTERVAL_MINUTES" envDefault:"60"`

	// ============================================================
	// Snapshot source configuration
	// ============================================================
	// SnapshotSource selects where transaction exports come from:
	// "csv" (scraped POS export files) or "mysql" (mirrored warehouse).
	SnapshotSource string `env:"SNAPSHOT_SOURCE" envDefault:"csv"`
	SalesCSVPath   string `env:"SALES_CSV_PATH" envDefault:"downloads/sales.csv"`
	MySQLDSN       string `env:"MYSQL_DSN"`
	MySQLTable     string `env:"MYSQL_TABLE" envDefault:"transactions"`

	// ============================================================
	// Redis configuration (report cache)
	// ============================================================
	RedisHost         string `env:"REDIS_HOST" envDefault:"localhost"`
	RedisPort         string `env:"REDIS_PORT" envDefault:"6379"`
	RedisPassword     string `env:"REDIS_PASSWORD"`
	RedisMaxRetries   int    `env:"REDIS_MAX_RETRIES" envDefault:"5"`
	RedisRetryDelayMs int    `env:"REDIS_RETRY_DELAY_MS" envDefault:"1000"`

	// ============================================================
	// Engine configuration
	// ============================================================
	ThresholdsPath string `env:"THRESHOLDS_PATH" envDefault:"config/thresholds.yaml"`

	// ============================================================
	// Telemetry configuration
	// ============================================================
	OtelEnabled     bool   `env:"OTEL_ENABLED" envDefault:"true"`
	OtelServiceName string `env:"OTEL_SERVICE_NAME" envDefault:"lifecycle-analytics"`
}
