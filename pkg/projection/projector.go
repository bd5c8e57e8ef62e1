// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

package projection

import (
	"math"

	"github.com/lavapop/lifecycle-analytics/pkg/aggregate"
	"github.com/sirupsen/logrus"
)

// Confidence tiers for a full-week projection. Early-week revenue is
// dominated by weekday mix (Sunday volume differs structurally from
// Saturday volume), so confidence degrades with fewer observed days
// instead of scaling linearly.
type Confidence string

const (
	ConfidenceNone    Confidence = ""
	ConfidenceVeryLow Confidence = "very_low"
	ConfidenceLow     Confidence = "low"
	ConfidenceMedium  Confidence = "medium"
	ConfidenceHigh    Confidence = "high"
)

// Trend of the projection against the last complete week.
const (
	TrendUp     = "up"
	TrendDown   = "down"
	TrendStable = "stable"
)

// Result is the full-week pace extrapolation of a partial week.
// RevenueVsLast is omitted when last week had no revenue to compare
// against; CanProject=false is a first-class insufficient-data state,
// not an error.
type Result struct {
	ProjectedRevenue  float64    `json:"projectedRevenue"`
	ProjectedServices int        `json:"projectedServices"`
	RevenueVsLast     *float64   `json:"revenueVsLast,omitempty"`
	Confidence        Confidence `json:"confidence,omitempty"`
	CanProject        bool       `json:"canProject"`
	Trend             string     `json:"trend,omitempty"`
	Message           string     `json:"message,omitempty"`
}

// Project extrapolates the current partial week to a full-week estimate
// at the observed per-day pace.
func Project(current, lastComplete aggregate.Rollup, daysElapsed int) Result {
	if daysElapsed <= 1 {
		return Result{
			CanProject: false,
			Message:    "too little data to extrapolate: fewer than two observed days",
		}
	}
	if daysElapsed > 7 {
		daysElapsed = 7
	}

	projectedRevenue := current.TotalRevenue / float64(daysElapsed) * 7
	projectedServices := int(math.Round(float64(current.ServiceCount()) / float64(daysElapsed) * 7))

	result := Result{
		ProjectedRevenue:  projectedRevenue,
		ProjectedServices: projectedServices,
		Confidence:        confidenceFor(daysElapsed),
		CanProject:        true,
		Trend:             TrendStable,
	}

	if lastComplete.TotalRevenue > 0 {
		vs := (projectedRevenue - lastComplete.TotalRevenue) / lastComplete.TotalRevenue * 100
		result.RevenueVsLast = &vs
		switch {
		case vs > 0:
			result.Trend = TrendUp
		case vs < 0:
			result.Trend = TrendDown
		}
	}

	logrus.Debugf("projected week: revenue=%.2f services=%d confidence=%s trend=%s",
		projectedRevenue, projectedServices, result.Confidence, result.Trend)

	return result
}

// confidenceFor maps observed days to a tier. Monotonically non-decreasing
// in daysElapsed.
func confidenceFor(daysElapsed int) Confidence {
	switch {
	case daysElapsed >= 6:
		return ConfidenceHigh
	case daysElapsed >= 4:
		return ConfidenceMedium
	case daysElapsed == 3:
		return ConfidenceLow
	default:
		return ConfidenceVeryLow
	}
}
