package usage

import (
	"context"
	"errors"

	"github.com/de-tools/spend-watch/pkg/models/domain"
)

// UngroupedLabel is the service label assigned to rows of an ungrouped query.
const UngroupedLabel = "total"

var ErrUnsupportedProvider = errors.New("unsupported provider")

// Query describes one cost-usage request. Granularity is always daily.
type Query struct {
	Tenant         string
	Period         domain.BillingPeriod
	GroupByService bool
}

// Client fetches raw cost line items from a billing API
type Client interface {
	// Provider returns the billing platform name, e.g. "oci"
	Provider() string
	// Tenant returns the account scope used when a Query leaves it empty
	Tenant() string
	// QueryUsage issues one cost query for the period. Errors are not retried.
	QueryUsage(ctx context.Context, q Query) ([]domain.UsageLineItem, error)
}
