package adapters

import (
	"github.com/de-tools/spend-watch/pkg/models/api"
	"github.com/de-tools/spend-watch/pkg/models/domain"
)

func MapPeriodDomainToApi(p domain.BillingPeriod) api.TimePeriod {
	return api.TimePeriod{
		Start:    p.Start,
		End:      p.End,
		Duration: p.Days(),
	}
}

func MapTotalsDomainToApi(t domain.UsageTotals) api.UsageTotals {
	return api.UsageTotals{
		Amount:   t.Amount,
		Quantity: t.Quantity,
	}
}

func MapBreakdownDomainToApi(b *domain.ServiceBreakdown) []api.ServiceUsage {
	services := []api.ServiceUsage{}
	if b == nil {
		return services
	}

	for _, name := range b.Keys() {
		t, _ := b.Get(name)
		services = append(services, api.ServiceUsage{
			Service:  name,
			Amount:   t.Amount,
			Quantity: t.Quantity,
		})
	}
	return services
}

func MapOutcomesDomainToApi(outcomes []domain.NotificationOutcome) []api.NotificationOutcome {
	res := make([]api.NotificationOutcome, 0, len(outcomes))
	for _, o := range outcomes {
		res = append(res, api.NotificationOutcome{
			Channel: o.Channel,
			OK:      o.OK,
			Status:  o.Status,
			Error:   o.Error,
		})
	}
	return res
}

func MapRunResultDomainToApi(r *domain.RunResult) api.RunResult {
	return api.RunResult{
		Period:      MapPeriodDomainToApi(r.Period),
		Totals:      MapTotalsDomainToApi(r.Totals),
		Services:    MapBreakdownDomainToApi(r.Breakdown),
		Exceeded:    r.Exceeded,
		Status:      MapOutcomesDomainToApi(r.Status),
		StatusOK:    r.StatusOK,
		Alert:       MapOutcomesDomainToApi(r.Alert),
		AlertOK:     r.AlertOK,
		HeartbeatOK: r.HeartbeatOK,
	}
}
