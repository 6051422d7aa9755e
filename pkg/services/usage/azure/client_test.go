package azure

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore/to"
	"github.com/Azure/azure-sdk-for-go/sdk/resourcemanager/costmanagement/armcostmanagement"
	"github.com/de-tools/spend-watch/pkg/models/domain"
	"github.com/de-tools/spend-watch/pkg/services/usage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockQuerier struct{ mock.Mock }

func (m *mockQuerier) Usage(
	ctx context.Context,
	scope string,
	parameters armcostmanagement.QueryDefinition,
	options *armcostmanagement.QueryClientUsageOptions,
) (armcostmanagement.QueryClientUsageResponse, error) {
	args := m.Called(ctx, scope, parameters, options)
	return args.Get(0).(armcostmanagement.QueryClientUsageResponse), args.Error(1)
}

func columns(names ...string) []*armcostmanagement.QueryColumn {
	cols := make([]*armcostmanagement.QueryColumn, 0, len(names))
	for _, n := range names {
		cols = append(cols, &armcostmanagement.QueryColumn{Name: to.Ptr(n)})
	}
	return cols
}

var period = domain.BillingPeriod{
	Start: time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC),
	End:   time.Date(2026, 10, 17, 0, 0, 0, 0, time.UTC),
}

func TestQueryUsage_Grouped(t *testing.T) {
	q := new(mockQuerier)
	q.On("Usage", mock.Anything, "/subscriptions/sub-1", mock.MatchedBy(func(p armcostmanagement.QueryDefinition) bool {
		return *p.Type == armcostmanagement.ExportTypeActualCost &&
			*p.Dataset.Granularity == armcostmanagement.GranularityTypeDaily &&
			len(p.Dataset.Grouping) == 1 &&
			*p.Dataset.Grouping[0].Name == "ServiceName" &&
			p.TimePeriod.From.Equal(period.Start) &&
			p.TimePeriod.To.Before(period.End)
	}), mock.Anything).Return(armcostmanagement.QueryClientUsageResponse{
		QueryResult: armcostmanagement.QueryResult{
			Properties: &armcostmanagement.QueryProperties{
				Columns: columns("PreTaxCost", "UsageQuantity", "UsageDate", "ServiceName", "Currency"),
				Rows: [][]any{
					{12.5, 3.0, 20261001.0, "Virtual Machines", "EUR"},
					{0.5, nil, 20261001.0, "Storage", "EUR"},
				},
			},
		},
	}, nil)

	c := NewClient(q, "sub-1")
	items, err := c.QueryUsage(context.Background(), usage.Query{Period: period, GroupByService: true})
	require.NoError(t, err)

	require.Len(t, items, 2)
	assert.Equal(t, "Virtual Machines", items[0].Service)
	assert.Equal(t, 12.5, *items[0].ComputedAmount)
	assert.Equal(t, 3.0, *items[0].ComputedQuantity)
	assert.Equal(t, "EUR", items[0].Currency)
	assert.Equal(t, "Storage", items[1].Service)
	assert.Nil(t, items[1].ComputedQuantity)
	q.AssertExpectations(t)
}

func TestQueryUsage_UngroupedMissingColumns(t *testing.T) {
	q := new(mockQuerier)
	q.On("Usage", mock.Anything, "/subscriptions/other", mock.Anything, mock.Anything).
		Return(armcostmanagement.QueryClientUsageResponse{
			QueryResult: armcostmanagement.QueryResult{
				Properties: &armcostmanagement.QueryProperties{
					Columns: columns("PreTaxCost", "UsageDate"),
					Rows:    [][]any{{4.0, 20261001.0}, {6.0, 20261002.0}},
				},
			},
		}, nil)

	c := NewClient(q, "sub-1")
	items, err := c.QueryUsage(context.Background(), usage.Query{Tenant: "other", Period: period})
	require.NoError(t, err)

	require.Len(t, items, 2)
	assert.Equal(t, usage.UngroupedLabel, items[0].Service)
	assert.Nil(t, items[0].ComputedQuantity)
	assert.Equal(t, domain.UsageTotals{Amount: 10}, usage.AggregateTotals(items))
}

func TestQueryUsage_NoProperties(t *testing.T) {
	q := new(mockQuerier)
	q.On("Usage", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(armcostmanagement.QueryClientUsageResponse{}, nil)

	items, err := NewClient(q, "sub").QueryUsage(context.Background(), usage.Query{Period: period})
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestQueryUsage_ErrorPropagates(t *testing.T) {
	q := new(mockQuerier)
	q.On("Usage", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(armcostmanagement.QueryClientUsageResponse{}, errors.New("AuthorizationFailed"))

	_, err := NewClient(q, "sub").QueryUsage(context.Background(), usage.Query{Period: period})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "AuthorizationFailed")
}
