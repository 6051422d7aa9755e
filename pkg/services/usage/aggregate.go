package usage

import "github.com/de-tools/spend-watch/pkg/models/domain"

// AggregateTotals sums amount and quantity over items. Nil fields are skipped.
func AggregateTotals(items []domain.UsageLineItem) domain.UsageTotals {
	var totals domain.UsageTotals
	for _, item := range items {
		totals = totals.Add(itemTotals(item))
	}
	return totals
}

// AggregateByCategory groups items by service label. Every label seen gets a
// bucket, even when none of its items carry amount or quantity. Keys follow
// the order of first appearance; bucket values do not depend on item order.
func AggregateByCategory(items []domain.UsageLineItem) *domain.ServiceBreakdown {
	breakdown := domain.NewServiceBreakdown()
	for _, item := range items {
		breakdown.Add(item.Service, itemTotals(item))
	}
	return breakdown
}

func itemTotals(item domain.UsageLineItem) domain.UsageTotals {
	var t domain.UsageTotals
	if item.ComputedAmount != nil {
		t.Amount = *item.ComputedAmount
	}
	if item.ComputedQuantity != nil {
		t.Quantity = *item.ComputedQuantity
	}
	return t
}
