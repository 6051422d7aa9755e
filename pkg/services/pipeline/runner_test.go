package pipeline

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/de-tools/spend-watch/pkg/models/domain"
	"github.com/de-tools/spend-watch/pkg/services/notify"
	"github.com/de-tools/spend-watch/pkg/services/threshold"
	"github.com/de-tools/spend-watch/pkg/services/usage"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockUsageClient struct {
	mock.Mock
}

func (m *mockUsageClient) Provider() string { return "oci" }

func (m *mockUsageClient) Tenant() string { return "ocid1.tenancy.oc1..aaaa" }

func (m *mockUsageClient) QueryUsage(ctx context.Context, q usage.Query) ([]domain.UsageLineItem, error) {
	args := m.Called(ctx, q)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.UsageLineItem), args.Error(1)
}

type mockChannel struct {
	mock.Mock
	name string
}

func (m *mockChannel) Name() string { return m.name }

func (m *mockChannel) Send(ctx context.Context, alert domain.Alert) error {
	return m.Called(ctx, alert).Error(0)
}

type mockPinger struct {
	mock.Mock
}

func (m *mockPinger) Ping(ctx context.Context) bool {
	return m.Called(ctx).Bool(0)
}

func ptr(v float64) *float64 { return &v }

func grouped(q usage.Query) bool   { return q.GroupByService }
func ungrouped(q usage.Query) bool { return !q.GroupByService }

var fixedNow = time.Date(2024, time.March, 15, 9, 30, 0, 0, time.UTC)

func newTestRunner(
	client usage.Client,
	channels []notify.Channel,
	status []string,
	limit float64,
	pinger Pinger,
	opts Options,
) *Runner {
	all := notify.NewDispatcher(notify.AnyOK, channels...)
	evaluator := threshold.NewEvaluator("oci", "OCI Usage Cost", "USD", limit, all.Subset(notify.AnyOK, alertChannels(all.Channels(), status)...))
	r := NewRunner(client, all.Subset(notify.AnyOK, status...), evaluator, pinger, opts)
	r.now = func() time.Time { return fixedNow }
	return r
}

func usageItems() ([]domain.UsageLineItem, []domain.UsageLineItem) {
	total := []domain.UsageLineItem{
		{Service: usage.UngroupedLabel, ComputedAmount: ptr(150), ComputedQuantity: ptr(3)},
	}
	byService := []domain.UsageLineItem{
		{Service: "Compute", ComputedAmount: ptr(100), ComputedQuantity: ptr(2)},
		{Service: "Storage", ComputedAmount: ptr(50), ComputedQuantity: ptr(1)},
	}
	return total, byService
}

func TestRunner_RunOnce_ThresholdExceeded(t *testing.T) {
	total, byService := usageItems()

	client := new(mockUsageClient)
	client.On("QueryUsage", mock.Anything, mock.MatchedBy(ungrouped)).Return(total, nil).Once()
	client.On("QueryUsage", mock.Anything, mock.MatchedBy(grouped)).Return(byService, nil).Once()

	discord := &mockChannel{name: "discord"}
	discord.On("Send", mock.Anything, mock.MatchedBy(func(a domain.Alert) bool {
		return a.Kind == domain.AlertKindThreshold &&
			a.Message == "ATTENTION! OCI costs of 150.00 USD exceeds 100.0 USD!"
	})).Return(nil).Once()

	n8n := &mockChannel{name: "n8n"}
	n8n.On("Send", mock.Anything, mock.MatchedBy(func(a domain.Alert) bool {
		return a.Kind == domain.AlertKindStatus &&
			a.Message == "Total computed amount: 150.0\nTotal computed quantity: 3.0"
	})).Return(nil).Once()

	pinger := new(mockPinger)
	pinger.On("Ping", mock.Anything).Return(true).Once()

	var logs bytes.Buffer
	ctx := zerolog.New(&logs).WithContext(context.Background())

	r := newTestRunner(client, []notify.Channel{discord, n8n}, []string{"n8n"}, 100, pinger, Options{Currency: "USD"})
	result, err := r.RunOnce(ctx)
	require.NoError(t, err)

	assert.Equal(t, time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC), result.Period.Start)
	assert.Equal(t, time.Date(2024, time.March, 16, 0, 0, 0, 0, time.UTC), result.Period.End)
	assert.Equal(t, domain.UsageTotals{Amount: 150, Quantity: 3}, result.Totals)
	assert.Equal(t, []string{"Compute", "Storage"}, result.Breakdown.Keys())
	assert.True(t, result.Exceeded)
	assert.True(t, result.AlertOK)
	require.Len(t, result.Alert, 1)
	assert.Equal(t, "discord", result.Alert[0].Channel)
	assert.True(t, result.StatusOK)
	assert.True(t, result.HeartbeatOK)

	out := logs.String()
	assert.Contains(t, out, `"event":"usage_totals"`)
	assert.Equal(t, 2, strings.Count(out, `"event":"service_usage"`))
	assert.Contains(t, out, `"event":"status_notification_sent"`)
	assert.Contains(t, out, `"event":"run_finished"`)

	client.AssertExpectations(t)
	discord.AssertExpectations(t)
	n8n.AssertExpectations(t)
	pinger.AssertExpectations(t)
}

func TestRunner_RunOnce_NotExceeded(t *testing.T) {
	client := new(mockUsageClient)
	client.On("QueryUsage", mock.Anything, mock.MatchedBy(ungrouped)).
		Return([]domain.UsageLineItem{{Service: usage.UngroupedLabel, ComputedAmount: ptr(99.99)}}, nil)
	client.On("QueryUsage", mock.Anything, mock.MatchedBy(grouped)).
		Return([]domain.UsageLineItem{{Service: "Compute", ComputedAmount: ptr(99.99)}}, nil)

	discord := &mockChannel{name: "discord"}
	pinger := new(mockPinger)
	pinger.On("Ping", mock.Anything).Return(true)

	var logs bytes.Buffer
	ctx := zerolog.New(&logs).WithContext(context.Background())

	r := newTestRunner(client, []notify.Channel{discord}, nil, 100, pinger, Options{})
	result, err := r.RunOnce(ctx)
	require.NoError(t, err)

	assert.False(t, result.Exceeded)
	assert.Empty(t, result.Alert)
	assert.Empty(t, result.Status)
	assert.True(t, result.HeartbeatOK)
	assert.Contains(t, logs.String(), `"event":"threshold_not_exceeded"`)
	discord.AssertNotCalled(t, "Send", mock.Anything, mock.Anything)
}

func TestRunner_RunOnce_QueryFailureSkipsHeartbeat(t *testing.T) {
	client := new(mockUsageClient)
	client.On("QueryUsage", mock.Anything, mock.Anything).Return(nil, errors.New("dial tcp: i/o timeout"))

	discord := &mockChannel{name: "discord"}
	pinger := new(mockPinger)

	var logs bytes.Buffer
	ctx := zerolog.New(&logs).WithContext(context.Background())

	r := newTestRunner(client, []notify.Channel{discord}, nil, 100, pinger, Options{})
	result, err := r.RunOnce(ctx)

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUsageQuery)
	require.NotNil(t, result)
	assert.False(t, result.HeartbeatOK)
	assert.Contains(t, logs.String(), `"event":"run_failed"`)
	pinger.AssertNotCalled(t, "Ping", mock.Anything)
	discord.AssertNotCalled(t, "Send", mock.Anything, mock.Anything)
}

func TestRunner_RunOnce_QueryFailureWithDeferredHeartbeat(t *testing.T) {
	client := new(mockUsageClient)
	client.On("QueryUsage", mock.Anything, mock.MatchedBy(ungrouped)).Return([]domain.UsageLineItem{}, nil)
	client.On("QueryUsage", mock.Anything, mock.MatchedBy(grouped)).Return(nil, errors.New("401 NotAuthenticated"))

	pinger := new(mockPinger)
	pinger.On("Ping", mock.Anything).Return(true).Once()

	r := newTestRunner(client, nil, nil, 100, pinger, Options{HeartbeatOnQueryFailure: true})
	result, err := r.RunOnce(context.Background())

	assert.ErrorIs(t, err, ErrUsageQuery)
	assert.True(t, result.HeartbeatOK)
	pinger.AssertExpectations(t)
}

func TestRunner_RunOnce_AllChannelsFailStillPings(t *testing.T) {
	total, byService := usageItems()

	client := new(mockUsageClient)
	client.On("QueryUsage", mock.Anything, mock.MatchedBy(ungrouped)).Return(total, nil)
	client.On("QueryUsage", mock.Anything, mock.MatchedBy(grouped)).Return(byService, nil)

	discord := &mockChannel{name: "discord"}
	discord.On("Send", mock.Anything, mock.Anything).Return(&notify.StatusError{Code: 500})
	gotify := &mockChannel{name: "gotify"}
	gotify.On("Send", mock.Anything, mock.Anything).Return(errors.New("connection refused"))

	pinger := new(mockPinger)
	pinger.On("Ping", mock.Anything).Return(true).Once()

	var logs bytes.Buffer
	ctx := zerolog.New(&logs).WithContext(context.Background())

	r := newTestRunner(client, []notify.Channel{discord, gotify}, nil, 100, pinger, Options{})
	result, err := r.RunOnce(ctx)
	require.NoError(t, err)

	assert.True(t, result.Exceeded)
	assert.False(t, result.AlertOK)
	require.Len(t, result.Alert, 2)
	assert.False(t, result.Alert[0].OK)
	assert.False(t, result.Alert[1].OK)
	assert.True(t, result.HeartbeatOK)
	assert.Contains(t, logs.String(), `"event":"dispatch_failed"`)
	pinger.AssertExpectations(t)
}

func TestRunner_Collect_AppliesQueryTimeout(t *testing.T) {
	client := new(mockUsageClient)
	client.On("QueryUsage", mock.MatchedBy(func(ctx context.Context) bool {
		_, ok := ctx.Deadline()
		return ok
	}), mock.MatchedBy(func(q usage.Query) bool {
		return q.Tenant == "ocid1.tenancy.oc1..aaaa"
	})).Return([]domain.UsageLineItem{}, nil).Twice()

	r := newTestRunner(client, nil, nil, 0, new(mockPinger), Options{QueryTimeout: time.Minute})
	snapshot, err := r.Collect(context.Background())
	require.NoError(t, err)

	assert.Equal(t, domain.UsageTotals{}, snapshot.Totals)
	assert.Equal(t, 0, snapshot.Breakdown.Len())
	client.AssertExpectations(t)
}

func TestStatusMessage(t *testing.T) {
	assert.Equal(t,
		"Total computed amount: 15.25\nTotal computed quantity: 3.0",
		StatusMessage(domain.UsageTotals{Amount: 15.25, Quantity: 3}))
}
