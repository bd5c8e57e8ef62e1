// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

package metrics

import (
	"github.com/lavapop/lifecycle-analytics/pkg/engine"
	"github.com/lavapop/lifecycle-analytics/pkg/risk"
	"github.com/prometheus/client_golang/prometheus"
)

var (
	// EngineRunsTotal counts refresh runs by outcome.
	EngineRunsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lifecycle_engine_runs_total",
			Help: "Total number of analytics engine runs",
		},
		[]string{"status"},
	)

	// EngineRunDuration observes full-pipeline run time.
	EngineRunDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "lifecycle_engine_run_duration_seconds",
			Help:    "Duration of a full analytics engine run",
			Buckets: prometheus.DefBuckets,
		},
	)

	// SnapshotRows tracks the size of the last loaded snapshot.
	SnapshotRows = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "lifecycle_snapshot_rows",
			Help: "Raw rows in the last loaded snapshot",
		},
	)

	// RowsSkipped tracks malformed rows dropped by the normalizer in the
	// last run.
	RowsSkipped = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "lifecycle_snapshot_rows_skipped",
			Help: "Rows skipped by the normalizer in the last run",
		},
	)

	// CustomersByRisk tracks the current risk-ladder distribution.
	CustomersByRisk = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "lifecycle_customers_by_risk",
			Help: "Customers per risk level from the last run",
		},
		[]string{"level"},
	)
)

// Register adds all engine collectors to the registry served by the
// metrics endpoint.
func Register(registry *prometheus.Registry) {
	registry.MustRegister(
		EngineRunsTotal,
		EngineRunDuration,
		SnapshotRows,
		RowsSkipped,
		CustomersByRisk,
	)
}

// ObserveReport updates the gauges from one completed run.
func ObserveReport(report *engine.Report) {
	SnapshotRows.Set(float64(report.Normalization.TotalRows))
	RowsSkipped.Set(float64(report.Normalization.SkippedCount))

	for _, level := range []risk.Level{
		risk.LevelNew, risk.LevelHealthy, risk.LevelAtRisk, risk.LevelChurning, risk.LevelLost,
	} {
		CustomersByRisk.WithLabelValues(string(level)).Set(float64(report.RiskCounts[level]))
	}
}
