// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

package risk

import (
	"testing"
	"time"
)

func testClassifier(t *testing.T) *Classifier {
	t.Helper()
	c, err := NewClassifier(DefaultThresholds(), time.UTC)
	if err != nil {
		t.Fatalf("NewClassifier: %v", err)
	}
	return c
}

func TestClassifyLadder(t *testing.T) {
	c := testClassifier(t)
	now := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)

	testCases := []struct {
		name      string
		daysSince int
		visits    int
		want      Level
	}{
		{name: "visited today", daysSince: 0, visits: 5, want: LevelHealthy},
		{name: "healthy boundary", daysSince: 14, visits: 5, want: LevelHealthy},
		{name: "just past healthy", daysSince: 15, visits: 5, want: LevelAtRisk},
		{name: "at risk boundary", daysSince: 30, visits: 5, want: LevelAtRisk},
		{name: "just past at risk", daysSince: 31, visits: 5, want: LevelChurning},
		{name: "churning boundary", daysSince: 60, visits: 5, want: LevelChurning},
		{name: "lost", daysSince: 61, visits: 5, want: LevelLost},
		{name: "single visit inside conversion window", daysSince: 20, visits: 1, want: LevelNew},
		{name: "single visit on window boundary", daysSince: 30, visits: 1, want: LevelNew},
		{name: "single visit past window", daysSince: 31, visits: 1, want: LevelChurning},
		{name: "second visit leaves new status", daysSince: 5, visits: 2, want: LevelHealthy},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			cust := &Customer{
				Doc:        "00000000001",
				LastVisit:  now.AddDate(0, 0, -tc.daysSince),
				VisitCount: tc.visits,
			}
			if got := c.Classify(cust, now); got != tc.want {
				t.Errorf("Classify(%d days, %d visits) = %q, want %q",
					tc.daysSince, tc.visits, got, tc.want)
			}
		})
	}
}

func TestClassifyAllCountsAndStamps(t *testing.T) {
	c := testClassifier(t)
	now := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)

	customers := []*Customer{
		{Doc: "00000000001", LastVisit: now.AddDate(0, 0, -3), VisitCount: 4},
		{Doc: "00000000002", LastVisit: now.AddDate(0, 0, -20), VisitCount: 2},
		{Doc: "00000000003", LastVisit: now.AddDate(0, 0, -90), VisitCount: 6},
		{Doc: "00000000004", LastVisit: now.AddDate(0, 0, -10), VisitCount: 1},
	}

	counts := c.ClassifyAll(customers, now)

	want := map[Level]int{
		LevelHealthy: 1,
		LevelAtRisk:  1,
		LevelLost:    1,
		LevelNew:     1,
	}
	for level, n := range want {
		if counts[level] != n {
			t.Errorf("counts[%q] = %d, want %d", level, counts[level], n)
		}
	}

	if customers[0].RiskLevel != LevelHealthy {
		t.Errorf("customer 1 RiskLevel = %q, want Healthy", customers[0].RiskLevel)
	}
	if customers[3].RiskLevel != LevelNew {
		t.Errorf("customer 4 RiskLevel = %q, want New Customer", customers[3].RiskLevel)
	}
}

func TestThresholdsValidate(t *testing.T) {
	testCases := []struct {
		name    string
		mutate  func(*Thresholds)
		wantErr bool
	}{
		{name: "defaults valid", mutate: func(*Thresholds) {}},
		{name: "custom ladder valid", mutate: func(th *Thresholds) {
			th.HealthyDays, th.ChurningDays, th.LostDays = 7, 21, 45
		}},
		{name: "churning not above healthy", mutate: func(th *Thresholds) {
			th.ChurningDays = th.HealthyDays
		}, wantErr: true},
		{name: "lost not above churning", mutate: func(th *Thresholds) {
			th.LostDays = th.ChurningDays
		}, wantErr: true},
		{name: "zero healthy", mutate: func(th *Thresholds) {
			th.HealthyDays = 0
		}, wantErr: true},
		{name: "zero conversion window", mutate: func(th *Thresholds) {
			th.NewCustomerDays = 0
		}, wantErr: true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			th := DefaultThresholds()
			tc.mutate(&th)
			err := th.Validate()
			if tc.wantErr && err == nil {
				t.Error("expected error, got nil")
			}
			if !tc.wantErr && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

func TestClassifierRejectsInvalidThresholds(t *testing.T) {
	bad := Thresholds{HealthyDays: 30, ChurningDays: 14, LostDays: 60, NewCustomerDays: 30}
	if _, err := NewClassifier(bad, time.UTC); err == nil {
		t.Error("expected error for inverted ladder, got nil")
	}
}
