package oci

import (
	"context"
	"fmt"

	"github.com/de-tools/spend-watch/pkg/models/domain"
	"github.com/de-tools/spend-watch/pkg/services/config"
	"github.com/de-tools/spend-watch/pkg/services/usage"
	"github.com/oracle/oci-go-sdk/v65/common"
	"github.com/oracle/oci-go-sdk/v65/usageapi"
)

const groupByService = "service"

type summarizedUsagesAPI interface {
	RequestSummarizedUsages(
		ctx context.Context,
		request usageapi.RequestSummarizedUsagesRequest,
	) (usageapi.RequestSummarizedUsagesResponse, error)
}

type client struct {
	api    summarizedUsagesAPI
	tenant string
}

func ClientFactory(_ context.Context, settings *config.Settings) (usage.Client, error) {
	path, err := ResolveConfigPath(settings.OCI.ConfigPaths)
	if err != nil {
		return nil, err
	}

	profile, err := LoadProfile(path, settings.Profile)
	if err != nil {
		return nil, err
	}

	provider, err := common.ConfigurationProviderFromFileWithProfile(path, profile.Name, "")
	if err != nil {
		return nil, fmt.Errorf("unable to load OCI SDK config: %w", err)
	}

	api, err := usageapi.NewUsageapiClientWithConfigurationProvider(provider)
	if err != nil {
		return nil, fmt.Errorf("failed to create usage api client: %w", err)
	}

	tenant := settings.Tenant
	if tenant == "" {
		tenant = profile.Tenancy
	}
	return NewClient(api, tenant), nil
}

func NewClient(api summarizedUsagesAPI, tenant string) usage.Client {
	return &client{api: api, tenant: tenant}
}

func (c *client) Provider() string { return "oci" }

func (c *client) Tenant() string { return c.tenant }

func (c *client) QueryUsage(ctx context.Context, q usage.Query) ([]domain.UsageLineItem, error) {
	tenant := q.Tenant
	if tenant == "" {
		tenant = c.tenant
	}

	details := usageapi.RequestSummarizedUsagesDetails{
		TenantId:         common.String(tenant),
		TimeUsageStarted: &common.SDKTime{Time: q.Period.Start.UTC()},
		TimeUsageEnded:   &common.SDKTime{Time: q.Period.End.UTC()},
		Granularity:      usageapi.RequestSummarizedUsagesDetailsGranularityDaily,
		QueryType:        usageapi.RequestSummarizedUsagesDetailsQueryTypeCost,
	}
	if q.GroupByService {
		details.GroupBy = []string{groupByService}
	}

	var items []domain.UsageLineItem
	var page *string
	for {
		resp, err := c.api.RequestSummarizedUsages(ctx, usageapi.RequestSummarizedUsagesRequest{
			RequestSummarizedUsagesDetails: details,
			Page:                           page,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to request summarized usages: %w", err)
		}

		items = append(items, transformSummaries(resp.UsageAggregation.Items, q.GroupByService)...)

		if resp.OpcNextPage == nil || *resp.OpcNextPage == "" {
			break
		}
		page = resp.OpcNextPage
	}

	return items, nil
}

func transformSummaries(summaries []usageapi.UsageSummary, grouped bool) []domain.UsageLineItem {
	items := make([]domain.UsageLineItem, 0, len(summaries))
	for _, s := range summaries {
		item := domain.UsageLineItem{
			ComputedAmount:   float32Ptr(s.ComputedAmount),
			ComputedQuantity: float32Ptr(s.ComputedQuantity),
			Currency:         deref(s.Currency),
		}

		if grouped {
			item.Service = deref(s.Service)
		} else {
			item.Service = usage.UngroupedLabel
		}

		if s.TimeUsageStarted != nil {
			item.StartTime = s.TimeUsageStarted.Time
		}
		if s.TimeUsageEnded != nil {
			item.EndTime = s.TimeUsageEnded.Time
		}

		items = append(items, item)
	}
	return items
}

func float32Ptr(v *float32) *float64 {
	if v == nil {
		return nil
	}
	f := float64(*v)
	return &f
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
