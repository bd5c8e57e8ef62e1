// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

package risk

import (
	"testing"
	"time"

	"github.com/lavapop/lifecycle-analytics/pkg/normalize"
)

func TestFoldCustomers(t *testing.T) {
	loc := time.UTC
	txs := []normalize.Transaction{
		{Doc: "00000000002", Date: time.Date(2026, 8, 20, 10, 0, 0, 0, loc), Revenue: 30, Name: "Bruna"},
		{Doc: "00000000001", Date: time.Date(2026, 8, 10, 10, 0, 0, 0, loc), Revenue: 40},
		{Doc: "00000000001", Date: time.Date(2026, 8, 1, 10, 0, 0, 0, loc), Revenue: 35, Name: "Ana", Phone: "11999990000"},
		{Doc: "00000000001", Date: time.Date(2026, 8, 25, 10, 0, 0, 0, loc), Revenue: 25},
	}
	segments := map[string]string{"00000000001": "VIP"}

	customers := FoldCustomers(txs, segments)
	if len(customers) != 2 {
		t.Fatalf("folded %d customers, want 2", len(customers))
	}

	// Output ordering is deterministic by document.
	ana := customers[0]
	if ana.Doc != "00000000001" {
		t.Fatalf("first customer = %q, want 00000000001", ana.Doc)
	}
	if ana.VisitCount != 3 {
		t.Errorf("VisitCount = %d, want 3", ana.VisitCount)
	}
	if ana.TotalSpend != 100 {
		t.Errorf("TotalSpend = %v, want 100", ana.TotalSpend)
	}
	if !ana.FirstVisit.Equal(time.Date(2026, 8, 1, 10, 0, 0, 0, loc)) {
		t.Errorf("FirstVisit = %v, want Aug 1", ana.FirstVisit)
	}
	if !ana.LastVisit.Equal(time.Date(2026, 8, 25, 10, 0, 0, 0, loc)) {
		t.Errorf("LastVisit = %v, want Aug 25", ana.LastVisit)
	}
	if ana.Name != "Ana" || ana.Phone != "11999990000" {
		t.Errorf("contact fields = (%q, %q), want first non-empty value kept", ana.Name, ana.Phone)
	}
	if ana.RFMSegment != "VIP" {
		t.Errorf("RFMSegment = %q, want VIP", ana.RFMSegment)
	}
	for i := 1; i < len(ana.Visits); i++ {
		if ana.Visits[i].Before(ana.Visits[i-1]) {
			t.Fatal("Visits not in ascending order")
		}
	}

	bruna := customers[1]
	if bruna.RFMSegment != "" {
		t.Errorf("unsegmented customer RFMSegment = %q, want empty", bruna.RFMSegment)
	}
}

func TestFoldCustomersEmpty(t *testing.T) {
	customers := FoldCustomers(nil, nil)
	if len(customers) != 0 {
		t.Errorf("folded %d customers from no transactions, want 0", len(customers))
	}
}
