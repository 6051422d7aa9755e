package domain

import (
	"bytes"
	"encoding/json"
	"time"
)

// UsageLineItem is one billed record returned by a provider for the period.
// Nil amounts mean the provider returned no value for that field.
type UsageLineItem struct {
	Service          string   // compute, may be empty when the query was not grouped
	ComputedAmount   *float64 // 12.34
	ComputedQuantity *float64 // 744
	Currency         string   // USD
	StartTime        time.Time
	EndTime          time.Time
}

// UsageTotals holds summed amount and quantity.
type UsageTotals struct {
	Amount   float64 `json:"total_computed_amount"`
	Quantity float64 `json:"total_computed_quantity"`
}

// Add returns the element-wise sum of t and o.
func (t UsageTotals) Add(o UsageTotals) UsageTotals {
	return UsageTotals{
		Amount:   t.Amount + o.Amount,
		Quantity: t.Quantity + o.Quantity,
	}
}

// ServiceBreakdown maps a service label to its totals. Keys are kept in order
// of first appearance so that output is stable for a fixed input order.
type ServiceBreakdown struct {
	keys   []string
	totals map[string]UsageTotals
}

func NewServiceBreakdown() *ServiceBreakdown {
	return &ServiceBreakdown{totals: make(map[string]UsageTotals)}
}

// Init registers service with zero totals if it has not been seen yet.
func (b *ServiceBreakdown) Init(service string) {
	if _, ok := b.totals[service]; ok {
		return
	}
	b.keys = append(b.keys, service)
	b.totals[service] = UsageTotals{}
}

// Add accumulates delta into the bucket for service, creating it if needed.
func (b *ServiceBreakdown) Add(service string, delta UsageTotals) {
	b.Init(service)
	b.totals[service] = b.totals[service].Add(delta)
}

func (b *ServiceBreakdown) Get(service string) (UsageTotals, bool) {
	t, ok := b.totals[service]
	return t, ok
}

func (b *ServiceBreakdown) Keys() []string {
	keys := make([]string, len(b.keys))
	copy(keys, b.keys)
	return keys
}

func (b *ServiceBreakdown) Len() int {
	return len(b.keys)
}

// Sum adds up all buckets.
func (b *ServiceBreakdown) Sum() UsageTotals {
	var sum UsageTotals
	for _, k := range b.keys {
		sum = sum.Add(b.totals[k])
	}
	return sum
}

// MarshalJSON writes the breakdown as an object in insertion order.
func (b *ServiceBreakdown) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range b.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(b.totals[k])
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// BillingPeriod is a [Start, End) range of whole UTC days.
type BillingPeriod struct {
	Start time.Time
	End   time.Time
}

// Days returns the number of whole days in the period.
func (p BillingPeriod) Days() int {
	return int(p.End.Sub(p.Start).Hours() / 24)
}
