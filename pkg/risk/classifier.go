// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

package risk

import (
	"fmt"
	"time"

	"github.com/lavapop/lifecycle-analytics/pkg/timewindow"
	"github.com/sirupsen/logrus"
)

// Level is the recency/frequency risk category for a customer.
type Level string

const (
	LevelNew      Level = "New Customer"
	LevelHealthy  Level = "Healthy"
	LevelAtRisk   Level = "At Risk"
	LevelChurning Level = "Churning"
	LevelLost     Level = "Lost"
)

// Thresholds are the day-count cutoffs of the risk ladder. They are
// configuration, not constants: visit cadence differs per business, so
// every cutoff is named and overridable.
type Thresholds struct {
	// HealthyDays is the last day-since-visit still considered Healthy.
	HealthyDays int `yaml:"healthy_days"`
	// ChurningDays is the last day still considered At Risk; beyond it
	// the customer is Churning.
	ChurningDays int `yaml:"churning_days"`
	// LostDays is the last day still considered Churning; beyond it the
	// customer is Lost.
	LostDays int `yaml:"lost_days"`
	// NewCustomerDays is the single-visit conversion window during which
	// a first-time customer is New rather than anything else.
	NewCustomerDays int `yaml:"new_customer_days"`
}

// DefaultThresholds fit the roughly twice-a-month laundromat cadence:
// Healthy within two weeks, Churning across the 31-60 day retention
// eligibility slice, Lost beyond it.
func DefaultThresholds() Thresholds {
	return Thresholds{
		HealthyDays:     14,
		ChurningDays:    30,
		LostDays:        60,
		NewCustomerDays: 30,
	}
}

// Validate checks that the ladder is strictly increasing.
func (t Thresholds) Validate() error {
	if t.HealthyDays < 1 {
		return fmt.Errorf("healthy_days must be positive, got %d", t.HealthyDays)
	}
	if t.ChurningDays <= t.HealthyDays {
		return fmt.Errorf("churning_days (%d) must exceed healthy_days (%d)", t.ChurningDays, t.HealthyDays)
	}
	if t.LostDays <= t.ChurningDays {
		return fmt.Errorf("lost_days (%d) must exceed churning_days (%d)", t.LostDays, t.ChurningDays)
	}
	if t.NewCustomerDays < 1 {
		return fmt.Errorf("new_customer_days must be positive, got %d", t.NewCustomerDays)
	}
	return nil
}

// Classifier derives risk levels from days-since-last-visit and visit
// count. Stateless: levels are recomputed fresh each run, never stored as
// a transition machine.
type Classifier struct {
	thresholds Thresholds
	loc        *time.Location
}

// NewClassifier creates a classifier with the given cutoffs, interpreting
// calendar days in loc.
func NewClassifier(thresholds Thresholds, loc *time.Location) (*Classifier, error) {
	if err := thresholds.Validate(); err != nil {
		return nil, fmt.Errorf("invalid risk thresholds: %w", err)
	}
	if loc == nil {
		loc = time.UTC
	}
	return &Classifier{thresholds: thresholds, loc: loc}, nil
}

// Classify returns the risk level for one customer at the reference time.
func (c *Classifier) Classify(cust *Customer, now time.Time) Level {
	daysSince := timewindow.DaysBetween(cust.LastVisit, now, c.loc)

	if cust.VisitCount == 1 && daysSince <= c.thresholds.NewCustomerDays {
		return LevelNew
	}

	switch {
	case daysSince <= c.thresholds.HealthyDays:
		return LevelHealthy
	case daysSince <= c.thresholds.ChurningDays:
		return LevelAtRisk
	case daysSince <= c.thresholds.LostDays:
		return LevelChurning
	default:
		return LevelLost
	}
}

// ClassifyAll stamps every customer's RiskLevel in place and returns the
// per-level counts for the dashboard's segment confidence scoring.
func (c *Classifier) ClassifyAll(customers []*Customer, now time.Time) map[Level]int {
	counts := make(map[Level]int, 5)
	for _, cust := range customers {
		cust.RiskLevel = c.Classify(cust, now)
		counts[cust.RiskLevel]++
	}

	logrus.Debugf("classified %d customers: healthy=%d atRisk=%d churning=%d lost=%d new=%d",
		len(customers), counts[LevelHealthy], counts[LevelAtRisk],
		counts[LevelChurning], counts[LevelLost], counts[LevelNew])

	return counts
}
