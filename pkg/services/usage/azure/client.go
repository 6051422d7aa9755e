package azure

import (
	"context"
	"fmt"
	"strings"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore/to"
	"github.com/Azure/azure-sdk-for-go/sdk/resourcemanager/costmanagement/armcostmanagement"
	"github.com/de-tools/spend-watch/pkg/models/domain"
	"github.com/de-tools/spend-watch/pkg/services/config"
	"github.com/de-tools/spend-watch/pkg/services/usage"
)

const (
	columnCost     = "PreTaxCost"
	columnQuantity = "UsageQuantity"
	columnService  = "ServiceName"
	columnCurrency = "Currency"
)

type usageQuerier interface {
	Usage(
		ctx context.Context,
		scope string,
		parameters armcostmanagement.QueryDefinition,
		options *armcostmanagement.QueryClientUsageOptions,
	) (armcostmanagement.QueryClientUsageResponse, error)
}

type client struct {
	querier      usageQuerier
	subscription string
}

func ClientFactory(_ context.Context, settings *config.Settings) (usage.Client, error) {
	subscription := settings.Tenant
	if subscription == "" {
		subscription = settings.Azure.SubscriptionID
	}

	cfg, err := LoadConfig(settings.Profile, subscription)
	if err != nil {
		return nil, fmt.Errorf("failed to load Azure credentials: %w", err)
	}

	clientFactory, err := armcostmanagement.NewClientFactory(cfg.Credentials, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create cost management client factory: %w", err)
	}

	return NewClient(clientFactory.NewQueryClient(), cfg.SubscriptionID), nil
}

func NewClient(querier usageQuerier, subscription string) usage.Client {
	return &client{querier: querier, subscription: subscription}
}

func (c *client) Provider() string { return "azure" }

func (c *client) Tenant() string { return c.subscription }

func (c *client) QueryUsage(ctx context.Context, q usage.Query) ([]domain.UsageLineItem, error) {
	subscription := q.Tenant
	if subscription == "" {
		subscription = c.subscription
	}
	scope := fmt.Sprintf("/subscriptions/%s", subscription)

	timeFrom := q.Period.Start
	// the API treats To as inclusive
	timeTo := q.Period.End.Add(-1)

	exportType := armcostmanagement.ExportTypeActualCost
	granularity := armcostmanagement.GranularityTypeDaily
	timeframe := armcostmanagement.TimeframeTypeCustom
	sum := armcostmanagement.FunctionTypeSum

	dataset := &armcostmanagement.QueryDataset{
		Granularity: &granularity,
		Aggregation: map[string]*armcostmanagement.QueryAggregation{
			columnCost:     {Name: to.Ptr(columnCost), Function: &sum},
			columnQuantity: {Name: to.Ptr(columnQuantity), Function: &sum},
		},
	}
	if q.GroupByService {
		dimension := armcostmanagement.QueryColumnTypeDimension
		dataset.Grouping = []*armcostmanagement.QueryGrouping{
			{Name: to.Ptr(columnService), Type: &dimension},
		}
	}

	params := armcostmanagement.QueryDefinition{
		Type:      &exportType,
		Dataset:   dataset,
		Timeframe: &timeframe,
		TimePeriod: &armcostmanagement.QueryTimePeriod{
			From: &timeFrom,
			To:   &timeTo,
		},
	}

	result, err := c.querier.Usage(ctx, scope, params, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to query costs: %w", err)
	}

	return transformQueryResult(result.QueryResult, q.GroupByService), nil
}

func transformQueryResult(result armcostmanagement.QueryResult, grouped bool) []domain.UsageLineItem {
	if result.Properties == nil {
		return nil
	}

	index := make(map[string]int, len(result.Properties.Columns))
	for i, col := range result.Properties.Columns {
		if col != nil && col.Name != nil {
			index[strings.ToLower(*col.Name)] = i
		}
	}

	cell := func(row []any, name string) (any, bool) {
		i, ok := index[strings.ToLower(name)]
		if !ok || i >= len(row) {
			return nil, false
		}
		return row[i], true
	}

	items := make([]domain.UsageLineItem, 0, len(result.Properties.Rows))
	for _, row := range result.Properties.Rows {
		item := domain.UsageLineItem{Service: usage.UngroupedLabel}

		if v, ok := cell(row, columnCost); ok {
			item.ComputedAmount = toFloat(v)
		}
		if v, ok := cell(row, columnQuantity); ok {
			item.ComputedQuantity = toFloat(v)
		}
		if v, ok := cell(row, columnCurrency); ok {
			item.Currency, _ = v.(string)
		}
		if grouped {
			item.Service = ""
			if v, ok := cell(row, columnService); ok {
				item.Service, _ = v.(string)
			}
		}

		items = append(items, item)
	}
	return items
}

func toFloat(v any) *float64 {
	switch n := v.(type) {
	case float64:
		return &n
	case float32:
		f := float64(n)
		return &f
	case int:
		f := float64(n)
		return &f
	case int64:
		f := float64(n)
		return &f
	default:
		return nil
	}
}
