// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

package aggregate

import (
	"github.com/lavapop/lifecycle-analytics/pkg/normalize"
	"github.com/lavapop/lifecycle-analytics/pkg/timewindow"
)

// Rollup is the per-window revenue and volume summary.
type Rollup struct {
	Window           timewindow.Window `json:"window"`
	TotalRevenue     float64           `json:"totalRevenue"`
	TransactionCount int               `json:"transactionCount"`
	WashCount        int               `json:"washCount"`
	DryCount         int               `json:"dryCount"`
	CouponCount      int               `json:"couponCount"`
	AverageTicket    float64           `json:"averageTicket"`
}

// ServiceCount is the total machine cycles in the window.
func (r Rollup) ServiceCount() int {
	return r.WashCount + r.DryCount
}

// ForWindow sums the transactions whose date falls within the window,
// bounds inclusive. It is a pure function of (transactions, window): no
// accumulator is shared across calls, so overlapping windows can be
// requested in any order without interference.
func ForWindow(txs []normalize.Transaction, w timewindow.Window) Rollup {
	rollup := Rollup{Window: w}

	for _, tx := range txs {
		if !w.Contains(tx.Date) {
			continue
		}
		rollup.TotalRevenue += tx.Revenue
		rollup.TransactionCount++
		rollup.WashCount += tx.WashCount
		rollup.DryCount += tx.DryCount
		if tx.CouponUsed {
			rollup.CouponCount++
		}
	}

	if rollup.TransactionCount > 0 {
		rollup.AverageTicket = rollup.TotalRevenue / float64(rollup.TransactionCount)
	}

	return rollup
}
