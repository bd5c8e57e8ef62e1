// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

package retention

import (
	"fmt"
	"math"
	"time"

	"github.com/lavapop/lifecycle-analytics/pkg/risk"
	"github.com/lavapop/lifecycle-analytics/pkg/timewindow"
	"github.com/sirupsen/logrus"
)

// Segment names for the cohorts the dashboard tracks.
const (
	SegmentLoyalists = "Loyalists"
	SegmentNew       = "New"
)

// Status bands on the return rate.
const (
	StatusHealthy  = "Healthy"
	StatusModerate = "Moderate"
	StatusAtRisk   = "At Risk"
	StatusCritical = "Critical"
)

// Config holds the cohort window geometry and rate bands. The eligibility
// slice [EligibilityMinDays, EligibilityMaxDays] is strictly historical
// and must not overlap the [0, MeasurementDays] measurement slice, so a
// customer can never be counted as both about-to-churn and retained in
// the same evaluation.
type Config struct {
	EligibilityMinDays int      `yaml:"eligibility_min_days"`
	EligibilityMaxDays int      `yaml:"eligibility_max_days"`
	MeasurementDays    int      `yaml:"measurement_days"`
	OverdueDays        int      `yaml:"overdue_days"`
	NewCustomerDays    int      `yaml:"new_customer_days"`
	LoyalSegments      []string `yaml:"loyal_segments"`

	Bands Bands `yaml:"bands"`
}

// Bands are the minimum rates for each status tier.
type Bands struct {
	Healthy  float64 `yaml:"healthy"`
	Moderate float64 `yaml:"moderate"`
	AtRisk   float64 `yaml:"at_risk"`
}

// DefaultConfig returns the cohort geometry the dashboard has always used:
// eligible 31-60 days out, measured over the trailing 30, overdue past 21.
func DefaultConfig() Config {
	return Config{
		EligibilityMinDays: 31,
		EligibilityMaxDays: 60,
		MeasurementDays:    30,
		OverdueDays:        21,
		NewCustomerDays:    90,
		LoyalSegments:      []string{"VIP", "Frequente"},
		Bands:              Bands{Healthy: 70, Moderate: 50, AtRisk: 30},
	}
}

// Validate enforces the window disjointness invariant.
func (c Config) Validate() error {
	if c.MeasurementDays < 1 {
		return fmt.Errorf("measurement_days must be positive, got %d", c.MeasurementDays)
	}
	if c.EligibilityMinDays <= c.MeasurementDays {
		return fmt.Errorf("eligibility_min_days (%d) must exceed measurement_days (%d): the slices must not overlap",
			c.EligibilityMinDays, c.MeasurementDays)
	}
	if c.EligibilityMaxDays <= c.EligibilityMinDays {
		return fmt.Errorf("eligibility_max_days (%d) must exceed eligibility_min_days (%d)",
			c.EligibilityMaxDays, c.EligibilityMinDays)
	}
	if c.OverdueDays < 1 {
		return fmt.Errorf("overdue_days must be positive, got %d", c.OverdueDays)
	}
	return nil
}

// Cohort is the rolling return rate for one customer segment. NoData is
// set instead of a fabricated rate when nobody was eligible.
type Cohort struct {
	Segment       string   `json:"segment"`
	EligibleCount int      `json:"eligibleCount"`
	ReturnedCount int      `json:"returnedCount"`
	Rate          float64  `json:"rate"`
	NoData        bool     `json:"noData,omitempty"`
	Status        string   `json:"status"`
	Overdue       []string `json:"overdueCustomers"`
}

// Tracker computes per-segment retention cohorts over a fixed historical
// slice, never the live window.
type Tracker struct {
	cfg Config
	loc *time.Location
}

// NewTracker creates a tracker with the given window geometry.
func NewTracker(cfg Config, loc *time.Location) (*Tracker, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid retention config: %w", err)
	}
	if loc == nil {
		loc = time.UTC
	}
	return &Tracker{cfg: cfg, loc: loc}, nil
}

// Track evaluates the Loyalist and New cohorts at the reference time.
func (t *Tracker) Track(customers []*risk.Customer, now time.Time) []Cohort {
	loyal := make([]*risk.Customer, 0)
	fresh := make([]*risk.Customer, 0)

	for _, c := range customers {
		if t.isLoyal(c) {
			loyal = append(loyal, c)
		}
		if timewindow.DaysBetween(c.FirstVisit, now, t.loc) <= t.cfg.NewCustomerDays {
			fresh = append(fresh, c)
		}
	}

	return []Cohort{
		t.cohort(SegmentLoyalists, loyal, now),
		t.cohort(SegmentNew, fresh, now),
	}
}

// cohort evaluates one segment. A customer is eligible when some visit
// fell inside the historical eligibility slice; returned when any visit
// landed in the disjoint measurement slice.
func (t *Tracker) cohort(segment string, customers []*risk.Customer, now time.Time) Cohort {
	cohort := Cohort{Segment: segment, Overdue: []string{}}

	for _, c := range customers {
		eligible, returned := t.evaluate(c, now)
		if !eligible {
			continue
		}
		cohort.EligibleCount++
		if returned {
			cohort.ReturnedCount++
			continue
		}
		if timewindow.DaysBetween(c.LastVisit, now, t.loc) > t.cfg.OverdueDays {
			cohort.Overdue = append(cohort.Overdue, c.Doc)
		}
	}

	if cohort.EligibleCount == 0 {
		cohort.NoData = true
		cohort.Status = t.status(0)
		return cohort
	}

	cohort.Rate = math.Round(float64(cohort.ReturnedCount) / float64(cohort.EligibleCount) * 100)
	cohort.Status = t.status(cohort.Rate)

	logrus.Debugf("retention cohort %s: eligible=%d returned=%d rate=%.0f status=%s",
		segment, cohort.EligibleCount, cohort.ReturnedCount, cohort.Rate, cohort.Status)

	return cohort
}

func (t *Tracker) evaluate(c *risk.Customer, now time.Time) (eligible, returned bool) {
	for _, visit := range c.Visits {
		days := timewindow.DaysBetween(visit, now, t.loc)
		switch {
		case days >= t.cfg.EligibilityMinDays && days <= t.cfg.EligibilityMaxDays:
			eligible = true
		case days >= 0 && days <= t.cfg.MeasurementDays:
			returned = true
		}
	}
	// A return only counts for customers who were eligible to return.
	returned = eligible && returned
	return eligible, returned
}

func (t *Tracker) isLoyal(c *risk.Customer) bool {
	for _, s := range t.cfg.LoyalSegments {
		if c.RFMSegment == s {
			return true
		}
	}
	return false
}

func (t *Tracker) status(rate float64) string {
	switch {
	case rate >= t.cfg.Bands.Healthy:
		return StatusHealthy
	case rate >= t.cfg.Bands.Moderate:
		return StatusModerate
	case rate >= t.cfg.Bands.AtRisk:
		return StatusAtRisk
	default:
		return StatusCritical
	}
}
