package usage

import (
	"testing"

	"github.com/de-tools/spend-watch/pkg/models/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func f(v float64) *float64 { return &v }

func item(service string, amount, quantity *float64) domain.UsageLineItem {
	return domain.UsageLineItem{Service: service, ComputedAmount: amount, ComputedQuantity: quantity}
}

func TestAggregateTotals_Empty(t *testing.T) {
	assert.Equal(t, domain.UsageTotals{}, AggregateTotals(nil))
	assert.Equal(t, domain.UsageTotals{}, AggregateTotals([]domain.UsageLineItem{}))
}

func TestAggregateByCategory_Empty(t *testing.T) {
	b := AggregateByCategory(nil)
	assert.Equal(t, 0, b.Len())
	assert.Empty(t, b.Keys())
}

func TestAggregate_ComputeAndStorage(t *testing.T) {
	items := []domain.UsageLineItem{
		item("Compute", f(10.0), f(2.0)),
		item("Storage", f(5.0), f(1.0)),
	}

	assert.Equal(t, domain.UsageTotals{Amount: 15.0, Quantity: 3.0}, AggregateTotals(items))

	b := AggregateByCategory(items)
	assert.Equal(t, []string{"Compute", "Storage"}, b.Keys())

	compute, ok := b.Get("Compute")
	require.True(t, ok)
	assert.Equal(t, domain.UsageTotals{Amount: 10.0, Quantity: 2.0}, compute)

	storage, ok := b.Get("Storage")
	require.True(t, ok)
	assert.Equal(t, domain.UsageTotals{Amount: 5.0, Quantity: 1.0}, storage)
}

func TestAggregateTotals_SkipsNilFields(t *testing.T) {
	items := []domain.UsageLineItem{
		item("Compute", f(1.5), nil),
		item("Compute", nil, f(4)),
		item("Network", nil, nil),
		item("Storage", f(2.25), f(1)),
	}

	totals := AggregateTotals(items)
	assert.Equal(t, 3.75, totals.Amount)
	assert.Equal(t, 5.0, totals.Quantity)
}

func TestAggregateByCategory_InitializesEmptyBuckets(t *testing.T) {
	items := []domain.UsageLineItem{
		item("Network", nil, nil),
		item("", f(3), nil),
	}

	b := AggregateByCategory(items)
	assert.Equal(t, []string{"Network", ""}, b.Keys())

	network, ok := b.Get("Network")
	require.True(t, ok)
	assert.Equal(t, domain.UsageTotals{}, network)

	unlabelled, ok := b.Get("")
	require.True(t, ok)
	assert.Equal(t, 3.0, unlabelled.Amount)
}

func TestAggregateByCategory_AccumulatesRepeatedLabels(t *testing.T) {
	items := []domain.UsageLineItem{
		item("Compute", f(1), f(1)),
		item("Storage", f(2), f(2)),
		item("Compute", f(3), f(3)),
	}

	b := AggregateByCategory(items)
	assert.Equal(t, 2, b.Len())
	compute, _ := b.Get("Compute")
	assert.Equal(t, domain.UsageTotals{Amount: 4, Quantity: 4}, compute)
}

func TestAggregateByCategory_ValuesIndependentOfOrder(t *testing.T) {
	forward := []domain.UsageLineItem{
		item("A", f(1), f(10)),
		item("B", f(2), f(20)),
		item("A", f(3), f(30)),
	}
	reversed := []domain.UsageLineItem{forward[2], forward[1], forward[0]}

	fb := AggregateByCategory(forward)
	rb := AggregateByCategory(reversed)

	assert.Equal(t, []string{"A", "B"}, fb.Keys())
	assert.Equal(t, []string{"A", "B"}, rb.Keys())
	for _, k := range fb.Keys() {
		fv, _ := fb.Get(k)
		rv, _ := rb.Get(k)
		assert.Equal(t, fv, rv, k)
	}
}

func TestAggregate_BreakdownSumMatchesTotals(t *testing.T) {
	cases := [][]domain.UsageLineItem{
		nil,
		{item("x", f(0.1), f(0.2))},
		{
			item("Compute", f(0.1), f(7)),
			item("Storage", f(0.2), nil),
			item("Compute", nil, f(0.3)),
			item("Network", f(12.345), f(1)),
			item("", f(99.99), f(2)),
		},
	}

	for _, items := range cases {
		totals := AggregateTotals(items)
		sum := AggregateByCategory(items).Sum()
		assert.InDelta(t, totals.Amount, sum.Amount, 1e-9)
		assert.InDelta(t, totals.Quantity, sum.Quantity, 1e-9)
	}
}

func TestServiceBreakdown_MarshalJSON_KeepsInsertionOrder(t *testing.T) {
	b := AggregateByCategory([]domain.UsageLineItem{
		item("Storage", f(5), f(1)),
		item("Compute", f(10), f(2)),
	})

	data, err := b.MarshalJSON()
	require.NoError(t, err)
	assert.Equal(t,
		`{"Storage":{"total_computed_amount":5,"total_computed_quantity":1},"Compute":{"total_computed_amount":10,"total_computed_quantity":2}}`,
		string(data))
}
