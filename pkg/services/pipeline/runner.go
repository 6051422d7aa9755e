package pipeline

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/de-tools/spend-watch/pkg/models/domain"
	"github.com/de-tools/spend-watch/pkg/services/notify"
	"github.com/de-tools/spend-watch/pkg/services/threshold"
	"github.com/de-tools/spend-watch/pkg/services/usage"
	"github.com/rs/zerolog"
)

var ErrUsageQuery = errors.New("usage query failed")

type Dispatcher interface {
	Dispatch(ctx context.Context, alert domain.Alert) notify.Report
	Channels() []string
}

type Evaluator interface {
	Evaluate(ctx context.Context, totals domain.UsageTotals) (bool, *notify.Report)
}

type Pinger interface {
	Ping(ctx context.Context) bool
}

type Options struct {
	Title        string
	Currency     string
	QueryTimeout time.Duration
	// HeartbeatOnQueryFailure pings the liveness endpoint even when the usage
	// query aborts the run.
	HeartbeatOnQueryFailure bool
}

// Runner executes one month-to-date pass: query, aggregate, notify, ping.
// It owns no timer; see Scheduler. Concurrent RunOnce calls are serialized.
type Runner struct {
	mu sync.Mutex

	client    usage.Client
	status    Dispatcher
	evaluator Evaluator
	heartbeat Pinger
	opts      Options
	now       func() time.Time
}

func NewRunner(client usage.Client, status Dispatcher, evaluator Evaluator, heartbeat Pinger, opts Options) *Runner {
	return &Runner{
		client:    client,
		status:    status,
		evaluator: evaluator,
		heartbeat: heartbeat,
		opts:      opts,
		now:       time.Now,
	}
}

// Snapshot is the aggregated usage of one period.
type Snapshot struct {
	Period    domain.BillingPeriod
	Totals    domain.UsageTotals
	Breakdown *domain.ServiceBreakdown
}

// Collect queries the current period ungrouped for totals and grouped by
// service for the breakdown. It sends nothing.
func (r *Runner) Collect(ctx context.Context) (*Snapshot, error) {
	period := usage.CurrentPeriod(r.now())

	if r.opts.QueryTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.opts.QueryTimeout)
		defer cancel()
	}

	q := usage.Query{Tenant: r.client.Tenant(), Period: period}

	totalItems, err := r.client.QueryUsage(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("%w: totals: %w", ErrUsageQuery, err)
	}

	q.GroupByService = true
	serviceItems, err := r.client.QueryUsage(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("%w: by service: %w", ErrUsageQuery, err)
	}

	return &Snapshot{
		Period:    period,
		Totals:    usage.AggregateTotals(totalItems),
		Breakdown: usage.AggregateByCategory(serviceItems),
	}, nil
}

// RunOnce performs a full pass. On a query failure it returns the partial
// result together with an error wrapping ErrUsageQuery.
func (r *Runner) RunOnce(ctx context.Context) (result *domain.RunResult, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	logger := zerolog.Ctx(ctx)
	started := r.now()
	result = &domain.RunResult{Period: usage.CurrentPeriod(started)}

	logger.Info().
		Str("event", "run_started").
		Str("provider", r.client.Provider()).
		Str("start", usage.FormatTimestamp(result.Period.Start)).
		Str("end", usage.FormatTimestamp(result.Period.End)).
		Msg("starting usage run")

	if r.opts.HeartbeatOnQueryFailure {
		defer func() {
			result.HeartbeatOK = r.heartbeat.Ping(ctx)
		}()
	}

	snapshot, err := r.Collect(ctx)
	if err != nil {
		logger.Error().Str("event", "run_failed").Err(err).Msg("usage run aborted")
		return result, err
	}
	result.Period = snapshot.Period
	result.Totals = snapshot.Totals
	result.Breakdown = snapshot.Breakdown

	r.logUsage(logger, snapshot)

	result.Status, result.StatusOK = r.sendStatus(ctx, snapshot.Totals)

	exceeded, report := r.evaluator.Evaluate(ctx, snapshot.Totals)
	result.Exceeded = exceeded
	if report != nil {
		result.Alert = report.Outcomes
		result.AlertOK = report.OK
	}

	if !r.opts.HeartbeatOnQueryFailure {
		result.HeartbeatOK = r.heartbeat.Ping(ctx)
	}

	logger.Info().
		Str("event", "run_finished").
		Bool("exceeded", result.Exceeded).
		Bool("alert_ok", result.AlertOK).
		Bool("status_ok", result.StatusOK).
		Dur("duration", r.now().Sub(started)).
		Msg("usage run finished")
	return result, nil
}

func (r *Runner) logUsage(logger *zerolog.Logger, s *Snapshot) {
	logger.Info().
		Str("event", "usage_totals").
		Float64("total_computed_amount", s.Totals.Amount).
		Float64("total_computed_quantity", s.Totals.Quantity).
		Interface("by_service", s.Breakdown).
		Str("currency", r.opts.Currency).
		Msg("usage totals")

	for _, service := range s.Breakdown.Keys() {
		t, _ := s.Breakdown.Get(service)
		logger.Info().
			Str("event", "service_usage").
			Str("service", service).
			Float64("total_computed_amount", t.Amount).
			Float64("total_computed_quantity", t.Quantity).
			Msg("service usage")
	}
}

func (r *Runner) sendStatus(ctx context.Context, totals domain.UsageTotals) ([]domain.NotificationOutcome, bool) {
	if r.status == nil || len(r.status.Channels()) == 0 {
		return nil, false
	}

	logger := zerolog.Ctx(ctx)
	report := r.status.Dispatch(ctx, domain.Alert{
		Kind:     domain.AlertKindStatus,
		Title:    r.opts.Title,
		Message:  StatusMessage(totals),
		Totals:   totals,
		Currency: r.opts.Currency,
	})

	if report.OK {
		logger.Info().Str("event", "status_notification_sent").Strs("channels", r.status.Channels()).Msg("status summary sent")
	} else {
		logger.Error().Str("event", "status_notification_failed").Strs("channels", r.status.Channels()).Msg("status summary was not delivered")
	}
	return report.Outcomes, report.OK
}

// StatusMessage is the unconditional per-run summary.
func StatusMessage(totals domain.UsageTotals) string {
	return fmt.Sprintf("Total computed amount: %s\nTotal computed quantity: %s",
		threshold.FormatDecimal(totals.Amount), threshold.FormatDecimal(totals.Quantity))
}
