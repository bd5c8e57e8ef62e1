// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

package conversion

import (
	"fmt"
	"testing"
	"time"

	"github.com/lavapop/lifecycle-analytics/pkg/risk"
)

var testNow = time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)

func testTracker(t *testing.T) *Tracker {
	t.Helper()
	tr, err := NewTracker(DefaultConfig(), time.UTC)
	if err != nil {
		t.Fatalf("NewTracker: %v", err)
	}
	return tr
}

// customer builds a fixture whose visits are the given day offsets back
// from the reference time, oldest first.
func customer(doc string, visitDaysAgo ...int) *risk.Customer {
	c := &risk.Customer{Doc: doc}
	for _, d := range visitDaysAgo {
		v := testNow.AddDate(0, 0, -d)
		c.Visits = append(c.Visits, v)
		if c.FirstVisit.IsZero() || v.Before(c.FirstVisit) {
			c.FirstVisit = v
		}
		if v.After(c.LastVisit) {
			c.LastVisit = v
		}
		c.VisitCount++
	}
	return c
}

func TestTrackRateExcludesPending(t *testing.T) {
	tr := testTracker(t)

	// 12 converted, 30 not converted, 8 still pending. Pending customers
	// stay out of the denominator: 12/42 = 28.6%.
	customers := make([]*risk.Customer, 0, 50)
	n := 0
	add := func(c *risk.Customer) {
		n++
		c.Doc = fmt.Sprintf("%011d", n)
		customers = append(customers, c)
	}
	for i := 0; i < 12; i++ {
		add(customer("", 50, 35)) // second visit 15 days after the first
	}
	for i := 0; i < 30; i++ {
		add(customer("", 50)) // window expired, no second visit
	}
	for i := 0; i < 8; i++ {
		add(customer("", 10)) // still inside the window
	}

	cohort := tr.Track(customers, nil, testNow)

	if cohort.TotalNew != 50 {
		t.Errorf("TotalNew = %d, want 50", cohort.TotalNew)
	}
	if cohort.Converted != 12 || cohort.NotConverted != 30 || cohort.Pending != 8 {
		t.Errorf("outcomes = (%d, %d, %d), want (12, 30, 8)",
			cohort.Converted, cohort.NotConverted, cohort.Pending)
	}
	if cohort.ConversionRate != 28.6 {
		t.Errorf("ConversionRate = %v, want 28.6", cohort.ConversionRate)
	}
	if cohort.Status != StatusGood {
		t.Errorf("Status = %q, want good", cohort.Status)
	}
	if len(cohort.NotConvertedDocs) != 30 {
		t.Errorf("NotConvertedDocs = %d entries, want 30", len(cohort.NotConvertedDocs))
	}
}

func TestTrackOutcomeBoundaries(t *testing.T) {
	tr := testTracker(t)

	testCases := []struct {
		name         string
		visitDaysAgo []int
		wantOutcome  outcome
	}{
		{
			name:         "second visit on window boundary converts",
			visitDaysAgo: []int{45, 15}, // 30 days apart
			wantOutcome:  outcomeConverted,
		},
		{
			name:         "second visit past the window does not convert",
			visitDaysAgo: []int{45, 14}, // 31 days apart
			wantOutcome:  outcomeNotConverted,
		},
		{
			name:         "no second visit with window open",
			visitDaysAgo: []int{29},
			wantOutcome:  outcomePending,
		},
		{
			name:         "no second visit with window closed",
			visitDaysAgo: []int{30},
			wantOutcome:  outcomeNotConverted,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			c := customer("00000000001", tc.visitDaysAgo...)
			cohort := tr.Track([]*risk.Customer{c}, nil, testNow)

			var got outcome
			switch {
			case cohort.Converted == 1:
				got = outcomeConverted
			case cohort.Pending == 1:
				got = outcomePending
			default:
				got = outcomeNotConverted
			}
			if got != tc.wantOutcome {
				t.Errorf("outcome = %d, want %d", got, tc.wantOutcome)
			}
		})
	}
}

func TestTrackCohortSlice(t *testing.T) {
	tr := testTracker(t)

	customers := []*risk.Customer{
		customer("00000000001", 60),      // on the cohort edge
		customer("00000000002", 61),      // first visit too old
		customer("00000000003", 200, 40), // old first visit: not a new customer
	}

	cohort := tr.Track(customers, nil, testNow)
	if cohort.TotalNew != 1 {
		t.Errorf("TotalNew = %d, want 1", cohort.TotalNew)
	}
}

func TestTrackWelcomeAttribution(t *testing.T) {
	tr := testTracker(t)

	customers := []*risk.Customer{
		customer("00000000001", 50, 40), // welcomed, converted
		customer("00000000002", 50),     // welcomed, not converted
		customer("00000000003", 50),     // not welcomed, not converted
		customer("00000000004", 50),     // not welcomed, not converted
	}
	welcome := map[string]bool{
		"00000000001": true,
		"00000000002": true,
	}

	cohort := tr.Track(customers, welcome, testNow)

	if cohort.WithWelcome.Total != 2 || cohort.WithWelcome.Converted != 1 {
		t.Errorf("WithWelcome = %+v, want 2 total, 1 converted", cohort.WithWelcome)
	}
	if cohort.WithoutWelcome.Total != 2 || cohort.WithoutWelcome.Converted != 0 {
		t.Errorf("WithoutWelcome = %+v, want 2 total, 0 converted", cohort.WithoutWelcome)
	}
	if cohort.WithWelcome.Rate != 50 {
		t.Errorf("WithWelcome.Rate = %v, want 50", cohort.WithWelcome.Rate)
	}
	if cohort.WelcomeLift != 50 {
		t.Errorf("WelcomeLift = %v, want 50", cohort.WelcomeLift)
	}
}

func TestTrackNoData(t *testing.T) {
	tr := testTracker(t)

	// Only pending customers: no decided outcome, so no rate.
	cohort := tr.Track([]*risk.Customer{customer("00000000001", 5)}, nil, testNow)

	if !cohort.NoData {
		t.Error("NoData = false with only pending customers")
	}
	if cohort.ConversionRate != 0 {
		t.Errorf("ConversionRate = %v, want 0", cohort.ConversionRate)
	}
	if cohort.Status != StatusCritical {
		t.Errorf("Status = %q, want critical", cohort.Status)
	}
}

func TestConfigValidate(t *testing.T) {
	cfg := DefaultConfig()
	cfg.CohortDays = cfg.WindowDays - 1
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for cohort smaller than window, got nil")
	}

	cfg = DefaultConfig()
	cfg.WindowDays = 0
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for zero window, got nil")
	}
}
