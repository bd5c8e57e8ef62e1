// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/lavapop/lifecycle-analytics/pkg/aggregate"
	"github.com/lavapop/lifecycle-analytics/pkg/conversion"
	"github.com/lavapop/lifecycle-analytics/pkg/normalize"
	"github.com/lavapop/lifecycle-analytics/pkg/projection"
	"github.com/lavapop/lifecycle-analytics/pkg/retention"
	"github.com/lavapop/lifecycle-analytics/pkg/risk"
	"github.com/lavapop/lifecycle-analytics/pkg/timewindow"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	oteltrace "go.opentelemetry.io/otel/trace"
)

const tracerName = "lifecycle-engine"

// Snapshot is one immutable transaction/customer export fed through the
// engine. Segments maps normalized documents to externally computed RFM
// segments; Welcome holds the documents that received a welcome outreach.
type Snapshot struct {
	Rows     []normalize.RawRow
	Segments map[string]string
	Welcome  map[string]bool
}

// Report is the full derived analytics structure the dashboard consumes.
// Every field is recreated from scratch on each run; the engine keeps no
// state between invocations.
type Report struct {
	GeneratedAt time.Time `json:"generatedAt"`

	Normalization normalize.Result `json:"normalization"`

	CurrentWeek      aggregate.Rollup           `json:"currentWeek"`
	LastCompleteWeek aggregate.Rollup           `json:"lastCompleteWeek"`
	PreviousWeek     aggregate.Rollup           `json:"previousWeek"`
	Lookbacks        map[int]aggregate.Rollup   `json:"lookbacks"`
	Projection       projection.Result          `json:"projection"`

	Customers  []*risk.Customer   `json:"customers"`
	RiskCounts map[risk.Level]int `json:"riskCounts"`

	Retention  []retention.Cohort `json:"retention"`
	Conversion conversion.Cohort  `json:"conversion"`
}

// Engine re-feeds a full snapshot through every analytics component on
// each run. It is a pure batch computation: given the same snapshot and
// reference time it produces identical output, with no I/O inside a run.
type Engine struct {
	cfg        Config
	resolver   *timewindow.Resolver
	normalizer *normalize.Normalizer
	classifier *risk.Classifier
	retention  *retention.Tracker
	conversion *conversion.Tracker
}

// New wires the engine components from one validated config.
func New(cfg Config) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	resolver, err := timewindow.NewResolver(cfg.Timezone)
	if err != nil {
		return nil, err
	}
	loc := resolver.Location()

	classifier, err := risk.NewClassifier(cfg.Risk, loc)
	if err != nil {
		return nil, err
	}
	retentionTracker, err := retention.NewTracker(cfg.Retention, loc)
	if err != nil {
		return nil, err
	}
	conversionTracker, err := conversion.NewTracker(cfg.Conversion, loc)
	if err != nil {
		return nil, err
	}

	return &Engine{
		cfg:        cfg,
		resolver:   resolver,
		normalizer: normalize.New(loc),
		classifier: classifier,
		retention:  retentionTracker,
		conversion: conversionTracker,
	}, nil
}

// Run computes the full report for one snapshot at the injected reference
// time. The only fatal failure is a structural one (invalid clock);
// malformed rows are absorbed as skip counts.
func (e *Engine) Run(ctx context.Context, snap *Snapshot, now time.Time) (*Report, error) {
	tracer := otel.Tracer(tracerName)
	ctx, span := tracer.Start(ctx, "engine.Run",
		oteltrace.WithAttributes(attribute.Int("snapshot.rows", len(snap.Rows))))
	defer span.End()

	weekly, err := e.resolver.Resolve(now)
	if err != nil {
		return nil, fmt.Errorf("window resolution failed: %w", err)
	}

	_, normSpan := tracer.Start(ctx, "engine.Normalize")
	result := e.normalizer.Normalize(snap.Rows)
	services := result.ServiceTransactions()
	normSpan.SetAttributes(
		attribute.Int("rows.kept", len(result.Transactions)),
		attribute.Int("rows.skipped", result.SkippedCount),
	)
	normSpan.End()

	_, aggSpan := tracer.Start(ctx, "engine.Aggregate")
	report := &Report{
		GeneratedAt:      now.In(e.resolver.Location()),
		Normalization:    *result,
		CurrentWeek:      aggregate.ForWindow(services, weekly.CurrentWeek),
		LastCompleteWeek: aggregate.ForWindow(services, weekly.LastCompleteWeek),
		PreviousWeek:     aggregate.ForWindow(services, weekly.PreviousWeek),
		Lookbacks:        make(map[int]aggregate.Rollup, len(e.cfg.LookbackDays)),
	}
	for _, days := range e.cfg.LookbackDays {
		w, err := e.resolver.Lookback(now, days)
		if err != nil {
			return nil, fmt.Errorf("lookback resolution failed: %w", err)
		}
		report.Lookbacks[days] = aggregate.ForWindow(services, w)
	}
	aggSpan.End()

	report.Projection = projection.Project(
		report.CurrentWeek, report.LastCompleteWeek, weekly.CurrentWeek.DaysElapsed)

	_, riskSpan := tracer.Start(ctx, "engine.ClassifyRisk")
	report.Customers = risk.FoldCustomers(services, snap.Segments)
	report.RiskCounts = e.classifier.ClassifyAll(report.Customers, now)
	riskSpan.End()

	_, cohortSpan := tracer.Start(ctx, "engine.Cohorts")
	report.Retention = e.retention.Track(report.Customers, now)
	report.Conversion = e.conversion.Track(report.Customers, snap.Welcome, now)
	cohortSpan.End()

	logrus.Infof("engine run complete: %d transactions, %d customers, projected=%.2f (%s)",
		len(result.Transactions), len(report.Customers),
		report.Projection.ProjectedRevenue, report.Projection.Confidence)

	return report, nil
}
