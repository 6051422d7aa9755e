package aws_ce

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/costexplorer"
	"github.com/aws/aws-sdk-go-v2/service/costexplorer/types"
	"github.com/de-tools/spend-watch/pkg/models/domain"
	"github.com/de-tools/spend-watch/pkg/services/config"
	"github.com/de-tools/spend-watch/pkg/services/usage"
)

const (
	dateLayout     = "2006-01-02"
	metricCost     = "UnblendedCost"
	metricQuantity = "UsageQuantity"
)

type costAndUsageAPI interface {
	GetCostAndUsage(
		ctx context.Context,
		params *costexplorer.GetCostAndUsageInput,
		optFns ...func(*costexplorer.Options),
	) (*costexplorer.GetCostAndUsageOutput, error)
}

type client struct {
	api    costAndUsageAPI
	tenant string
}

func ClientFactory(ctx context.Context, settings *config.Settings) (usage.Client, error) {
	cfg, err := LoadConfig(ctx, settings.Profile, settings.AWS.Region)
	if err != nil {
		return nil, err
	}

	return NewClient(costexplorer.NewFromConfig(*cfg), settings.Tenant), nil
}

// NewClient wraps a Cost Explorer API. A non-empty tenant restricts queries to
// that linked account.
func NewClient(api costAndUsageAPI, tenant string) usage.Client {
	return &client{api: api, tenant: tenant}
}

func (c *client) Provider() string { return "aws" }

func (c *client) Tenant() string { return c.tenant }

func (c *client) QueryUsage(ctx context.Context, q usage.Query) ([]domain.UsageLineItem, error) {
	tenant := q.Tenant
	if tenant == "" {
		tenant = c.tenant
	}

	input := &costexplorer.GetCostAndUsageInput{
		TimePeriod: &types.DateInterval{
			Start: aws.String(q.Period.Start.Format(dateLayout)),
			End:   aws.String(q.Period.End.Format(dateLayout)),
		},
		Granularity: types.GranularityDaily,
		Metrics:     []string{metricCost, metricQuantity},
	}

	if tenant != "" {
		input.Filter = &types.Expression{
			Dimensions: &types.DimensionValues{
				Key:    types.DimensionLinkedAccount,
				Values: []string{tenant},
			},
		}
	}

	if q.GroupByService {
		input.GroupBy = []types.GroupDefinition{
			{
				Type: types.GroupDefinitionTypeDimension,
				Key:  aws.String(string(types.DimensionService)),
			},
		}
	}

	var items []domain.UsageLineItem
	for {
		result, err := c.api.GetCostAndUsage(ctx, input)
		if err != nil {
			return nil, fmt.Errorf("failed to get cost and usage: %w", err)
		}

		page, err := transformCostAndUsageResult(result, q.GroupByService)
		if err != nil {
			return nil, err
		}
		items = append(items, page...)

		if result.NextPageToken == nil || *result.NextPageToken == "" {
			break
		}
		input.NextPageToken = result.NextPageToken
	}

	return items, nil
}

func transformCostAndUsageResult(
	result *costexplorer.GetCostAndUsageOutput,
	grouped bool,
) ([]domain.UsageLineItem, error) {
	var items []domain.UsageLineItem

	for _, resultByTime := range result.ResultsByTime {
		var startTime, endTime time.Time
		if resultByTime.TimePeriod != nil {
			var err error
			startTime, err = time.Parse(dateLayout, aws.ToString(resultByTime.TimePeriod.Start))
			if err != nil {
				return nil, fmt.Errorf("failed to parse start time: %w", err)
			}
			endTime, err = time.Parse(dateLayout, aws.ToString(resultByTime.TimePeriod.End))
			if err != nil {
				return nil, fmt.Errorf("failed to parse end time: %w", err)
			}
		}

		if !grouped {
			item, err := createLineItem(usage.UngroupedLabel, resultByTime.Total)
			if err != nil {
				return nil, err
			}
			item.StartTime, item.EndTime = startTime, endTime
			items = append(items, item)
			continue
		}

		for _, group := range resultByTime.Groups {
			var service string
			if len(group.Keys) > 0 {
				service = group.Keys[0]
			}
			item, err := createLineItem(service, group.Metrics)
			if err != nil {
				return nil, err
			}
			item.StartTime, item.EndTime = startTime, endTime
			items = append(items, item)
		}
	}

	return items, nil
}

func createLineItem(service string, metrics map[string]types.MetricValue) (domain.UsageLineItem, error) {
	item := domain.UsageLineItem{Service: service}

	if cost, ok := metrics[metricCost]; ok {
		amount, err := parseAmount(cost.Amount)
		if err != nil {
			return item, fmt.Errorf("failed to parse %s for %q: %w", metricCost, service, err)
		}
		item.ComputedAmount = amount
		item.Currency = aws.ToString(cost.Unit)
	}

	if quantity, ok := metrics[metricQuantity]; ok {
		value, err := parseAmount(quantity.Amount)
		if err != nil {
			return item, fmt.Errorf("failed to parse %s for %q: %w", metricQuantity, service, err)
		}
		item.ComputedQuantity = value
	}

	return item, nil
}

func parseAmount(s *string) (*float64, error) {
	if s == nil || *s == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(*s, 64)
	if err != nil {
		return nil, err
	}
	return &v, nil
}
