// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

package conversion

import (
	"fmt"
	"math"
	"time"

	"github.com/lavapop/lifecycle-analytics/pkg/risk"
	"github.com/lavapop/lifecycle-analytics/pkg/timewindow"
	"github.com/sirupsen/logrus"
)

// Status bands on the conversion rate.
const (
	StatusExcellent = "excellent"
	StatusGood      = "good"
	StatusAttention = "attention"
	StatusCritical  = "critical"
)

// Config holds the conversion window geometry and rate bands.
type Config struct {
	// WindowDays is how long a new customer has to make a second visit
	// before counting as not converted.
	WindowDays int `yaml:"window_days"`
	// CohortDays bounds the trailing slice of first visits under
	// observation. Must cover at least one full conversion window.
	CohortDays int `yaml:"cohort_days"`

	Bands Bands `yaml:"bands"`
}

// Bands are the minimum rates for each status tier.
type Bands struct {
	Excellent float64 `yaml:"excellent"`
	Good      float64 `yaml:"good"`
	Attention float64 `yaml:"attention"`
}

// DefaultConfig is the 30-day conversion window over a 60-day cohort.
func DefaultConfig() Config {
	return Config{
		WindowDays: 30,
		CohortDays: 60,
		Bands:      Bands{Excellent: 30, Good: 15, Attention: 8},
	}
}

// Validate checks the window geometry.
func (c Config) Validate() error {
	if c.WindowDays < 1 {
		return fmt.Errorf("window_days must be positive, got %d", c.WindowDays)
	}
	if c.CohortDays < c.WindowDays {
		return fmt.Errorf("cohort_days (%d) must cover at least one conversion window (%d)",
			c.CohortDays, c.WindowDays)
	}
	return nil
}

// SubCohort is the conversion outcome for one attribution split.
type SubCohort struct {
	Total        int     `json:"total"`
	Converted    int     `json:"converted"`
	Pending      int     `json:"pending"`
	NotConverted int     `json:"notConverted"`
	Rate         float64 `json:"rate"`
	NoData       bool    `json:"noData,omitempty"`
}

// Cohort is the first-to-second-visit conversion summary with
// welcome-campaign attribution. Pending customers are excluded from the
// rate denominator: their outcome is not yet decidable, and counting them
// would bias the rate toward not-converted.
type Cohort struct {
	TotalNew       int       `json:"totalNew"`
	Converted      int       `json:"converted"`
	Pending        int       `json:"pending"`
	NotConverted   int       `json:"notConverted"`
	ConversionRate float64   `json:"conversionRate"`
	NoData         bool      `json:"noData,omitempty"`
	Status         string    `json:"status"`
	WithWelcome    SubCohort `json:"withWelcome"`
	WithoutWelcome SubCohort `json:"withoutWelcome"`
	WelcomeLift    float64   `json:"welcomeLift"`
	// NotConvertedDocs lists customers for outreach targeting.
	NotConvertedDocs []string `json:"notConvertedCustomers"`
}

// Tracker computes first-to-second-visit conversion for new customers.
type Tracker struct {
	cfg Config
	loc *time.Location
}

// NewTracker creates a tracker with the given window geometry.
func NewTracker(cfg Config, loc *time.Location) (*Tracker, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid conversion config: %w", err)
	}
	if loc == nil {
		loc = time.UTC
	}
	return &Tracker{cfg: cfg, loc: loc}, nil
}

type outcome int

const (
	outcomeConverted outcome = iota
	outcomePending
	outcomeNotConverted
)

// Track evaluates every customer whose first visit falls in the trailing
// cohort slice. welcome holds the normalized documents that received a
// welcome outreach.
func (t *Tracker) Track(customers []*risk.Customer, welcome map[string]bool, now time.Time) Cohort {
	cohort := Cohort{NotConvertedDocs: []string{}}

	for _, c := range customers {
		sinceFirst := timewindow.DaysBetween(c.FirstVisit, now, t.loc)
		if sinceFirst < 0 || sinceFirst > t.cfg.CohortDays {
			continue
		}
		cohort.TotalNew++

		out := t.outcomeFor(c, sinceFirst)
		sub := &cohort.WithoutWelcome
		if welcome[c.Doc] {
			sub = &cohort.WithWelcome
		}
		sub.Total++

		switch out {
		case outcomeConverted:
			cohort.Converted++
			sub.Converted++
		case outcomePending:
			cohort.Pending++
			sub.Pending++
		case outcomeNotConverted:
			cohort.NotConverted++
			sub.NotConverted++
			cohort.NotConvertedDocs = append(cohort.NotConvertedDocs, c.Doc)
		}
	}

	cohort.ConversionRate, cohort.NoData = rate(cohort.Converted, cohort.NotConverted)
	cohort.WithWelcome.Rate, cohort.WithWelcome.NoData = rate(cohort.WithWelcome.Converted, cohort.WithWelcome.NotConverted)
	cohort.WithoutWelcome.Rate, cohort.WithoutWelcome.NoData = rate(cohort.WithoutWelcome.Converted, cohort.WithoutWelcome.NotConverted)
	cohort.WelcomeLift = cohort.WithWelcome.Rate - cohort.WithoutWelcome.Rate
	cohort.Status = t.status(cohort.ConversionRate)

	logrus.Debugf("conversion cohort: new=%d converted=%d pending=%d notConverted=%d rate=%.1f lift=%.1f",
		cohort.TotalNew, cohort.Converted, cohort.Pending, cohort.NotConverted,
		cohort.ConversionRate, cohort.WelcomeLift)

	return cohort
}

// outcomeFor decides one customer's conversion state. Converted means a
// second visit within the window of the first; only a customer still
// inside the window with no second visit is pending.
func (t *Tracker) outcomeFor(c *risk.Customer, sinceFirst int) outcome {
	for _, visit := range c.Visits {
		if visit.Equal(c.FirstVisit) {
			continue
		}
		if timewindow.DaysBetween(c.FirstVisit, visit, t.loc) <= t.cfg.WindowDays {
			return outcomeConverted
		}
	}
	if sinceFirst < t.cfg.WindowDays {
		return outcomePending
	}
	return outcomeNotConverted
}

// rate is converted / (converted + notConverted) * 100, with an explicit
// no-data flag instead of NaN when the denominator is zero.
func rate(converted, notConverted int) (float64, bool) {
	decided := converted + notConverted
	if decided == 0 {
		return 0, true
	}
	return math.Round(float64(converted)/float64(decided)*1000) / 10, false
}

func (t *Tracker) status(rate float64) string {
	switch {
	case rate >= t.cfg.Bands.Excellent:
		return StatusExcellent
	case rate >= t.cfg.Bands.Good:
		return StatusGood
	case rate >= t.cfg.Bands.Attention:
		return StatusAttention
	default:
		return StatusCritical
	}
}
