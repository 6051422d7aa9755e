package terminal

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/de-tools/spend-watch/pkg/models/domain"
	"github.com/de-tools/spend-watch/pkg/services/config"
	"github.com/de-tools/spend-watch/pkg/services/usage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubClient struct {
	grouped   []domain.UsageLineItem
	ungrouped []domain.UsageLineItem
	err       error
}

func (s *stubClient) Provider() string { return "oci" }
func (s *stubClient) Tenant() string   { return "ocid1.tenancy.oc1..test" }

func (s *stubClient) QueryUsage(_ context.Context, q usage.Query) ([]domain.UsageLineItem, error) {
	if s.err != nil {
		return nil, s.err
	}
	if q.GroupByService {
		return s.grouped, nil
	}
	return s.ungrouped, nil
}

func ptr(v float64) *float64 { return &v }

func testSettings() *config.Settings {
	s := &config.Settings{
		Provider:   "oci",
		Threshold:  100,
		Currency:   "USD",
		AlertTitle: "OCI Usage Cost",
		Interval:   time.Hour,
	}
	s.Dispatch.Policy = "any"
	s.Status.Channels = []string{"n8n"}
	s.Logging.Level = "error"
	return s
}

func newTestCLI(t *testing.T, settings *config.Settings, client usage.Client) (*CLI, *bytes.Buffer) {
	t.Helper()
	var out bytes.Buffer
	cli := NewCLI(Options{
		Registry: usage.NewRegistry(map[string]usage.ClientFactory{
			"oci": func(context.Context, *config.Settings) (usage.Client, error) { return client, nil },
		}),
		Output:    &out,
		LogOutput: &bytes.Buffer{},
		Load:      func(string) (*config.Settings, error) { return settings, nil },
	})
	return cli, &out
}

func TestCLI_Report(t *testing.T) {
	client := &stubClient{
		ungrouped: []domain.UsageLineItem{{Service: usage.UngroupedLabel, ComputedAmount: ptr(15), ComputedQuantity: ptr(3)}},
		grouped: []domain.UsageLineItem{
			{Service: "Compute", ComputedAmount: ptr(10), ComputedQuantity: ptr(2)},
			{Service: "Storage", ComputedAmount: ptr(5), ComputedQuantity: ptr(1)},
		},
	}

	cli, out := newTestCLI(t, testSettings(), client)
	cli.SetArgs([]string{"report", "--format", "plain"})

	require.NoError(t, cli.Execute())
	assert.Contains(t, out.String(), "OCI month-to-date usage")
	assert.Contains(t, out.String(), "Total Amount: USD 15.00")
	assert.Contains(t, out.String(), "- Compute: 10.00 (2.00)")
	assert.Contains(t, out.String(), "- Storage: 5.00 (1.00)")
}

func TestCLI_ReportQueryError(t *testing.T) {
	cli, _ := newTestCLI(t, testSettings(), &stubClient{err: errors.New("NotAuthorizedOrNotFound")})
	cli.SetArgs([]string{"report"})

	err := cli.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "NotAuthorizedOrNotFound")
}

func TestCLI_Channels(t *testing.T) {
	settings := testSettings()
	settings.Channels.Discord.WebhookURL = "https://discord.example/hook"
	settings.Channels.Ntfy.URL = "https://ntfy.sh"
	settings.Channels.Ntfy.Topic = "costs"

	cli, out := newTestCLI(t, settings, &stubClient{})
	cli.SetArgs([]string{"channels"})

	require.NoError(t, cli.Execute())
	assert.Contains(t, out.String(), "discord\nntfy")
	assert.Contains(t, out.String(), "Dispatch policy: any")
	assert.Contains(t, out.String(), "Not configured, skipped: n8n")
	assert.Contains(t, out.String(), "Heartbeat: disabled")
}

func TestCLI_InvalidSettings(t *testing.T) {
	settings := testSettings()
	settings.Provider = "gcp"

	cli, _ := newTestCLI(t, settings, &stubClient{})
	cli.SetArgs([]string{"channels"})

	err := cli.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid settings")
}

func TestReporter_Handle(t *testing.T) {
	var out bytes.Buffer
	report := &domain.Report{
		Title:         "OCI month-to-date usage",
		Period:        domain.BillingPeriod{Start: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), End: time.Date(2024, 3, 16, 0, 0, 0, 0, time.UTC)},
		TotalAmount:   1.5,
		TotalQuantity: 2,
		Currency:      "USD",
		Sections: []domain.ReportSection{{
			Details: []domain.ReportDetail{{Name: "", Amount: 1.5, Quantity: 2}},
		}},
	}

	require.NoError(t, NewReporter(&out).Handle(report))
	assert.Contains(t, out.String(), "Period: 2024-03-01 to 2024-03-16")
	assert.Contains(t, out.String(), "- (unlabelled): 1.50 (2.00)")
}
