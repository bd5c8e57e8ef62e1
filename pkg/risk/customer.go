// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

package risk

import (
	"sort"
	"time"

	"github.com/lavapop/lifecycle-analytics/pkg/normalize"
)

// Customer is the aggregate derived by folding all of a customer's
// transactions. RFMSegment is an externally assigned classification
// (VIP, Frequente, Promissor, Esfriando, Inativo) consumed as-is;
// RiskLevel is computed here.
type Customer struct {
	Doc        string    `json:"customerId"`
	Name       string    `json:"displayName,omitempty"`
	Phone      string    `json:"phone,omitempty"`
	FirstVisit time.Time `json:"firstVisitDate"`
	LastVisit  time.Time `json:"lastVisitDate"`
	VisitCount int       `json:"visitCount"`
	TotalSpend float64   `json:"totalSpend"`
	RFMSegment string    `json:"rfmSegment,omitempty"`
	RiskLevel  Level     `json:"riskLevel"`

	// Visits holds the customer's visit dates in ascending order, for
	// cohort trackers that need more than first/last.
	Visits []time.Time `json:"-"`
}

// FoldCustomers groups service transactions by normalized document and
// derives one Customer aggregate per document. The segments map, keyed by
// normalized document, attaches the externally computed RFM segment.
// Output is sorted by document for deterministic runs.
func FoldCustomers(txs []normalize.Transaction, segments map[string]string) []*Customer {
	byDoc := make(map[string]*Customer)

	for _, tx := range txs {
		c, ok := byDoc[tx.Doc]
		if !ok {
			c = &Customer{
				Doc:        tx.Doc,
				FirstVisit: tx.Date,
				LastVisit:  tx.Date,
				RFMSegment: segments[tx.Doc],
			}
			byDoc[tx.Doc] = c
		}

		if tx.Date.Before(c.FirstVisit) {
			c.FirstVisit = tx.Date
		}
		if tx.Date.After(c.LastVisit) {
			c.LastVisit = tx.Date
		}
		if c.Name == "" && tx.Name != "" {
			c.Name = tx.Name
		}
		if c.Phone == "" && tx.Phone != "" {
			c.Phone = tx.Phone
		}
		c.VisitCount++
		c.TotalSpend += tx.Revenue
		c.Visits = append(c.Visits, tx.Date)
	}

	customers := make([]*Customer, 0, len(byDoc))
	for _, c := range byDoc {
		sort.Slice(c.Visits, func(i, j int) bool { return c.Visits[i].Before(c.Visits[j]) })
		customers = append(customers, c)
	}
	sort.Slice(customers, func(i, j int) bool { return customers[i].Doc < customers[j].Doc })

	return customers
}
