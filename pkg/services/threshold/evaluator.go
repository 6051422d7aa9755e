package threshold

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/de-tools/spend-watch/pkg/models/domain"
	"github.com/de-tools/spend-watch/pkg/services/notify"
	"github.com/rs/zerolog"
)

// Dispatcher delivers an alert to the configured channels.
type Dispatcher interface {
	Dispatch(ctx context.Context, alert domain.Alert) notify.Report
}

// Exceeded reports whether total is strictly above limit.
func Exceeded(total, limit float64) bool {
	return total > limit
}

type Evaluator struct {
	provider   string
	title      string
	currency   string
	limit      float64
	dispatcher Dispatcher
}

func NewEvaluator(provider, title, currency string, limit float64, dispatcher Dispatcher) *Evaluator {
	return &Evaluator{
		provider:   provider,
		title:      title,
		currency:   currency,
		limit:      limit,
		dispatcher: dispatcher,
	}
}

func (e *Evaluator) Limit() float64 { return e.limit }

// Message formats the alert text for a total above the limit.
func (e *Evaluator) Message(total float64) string {
	return fmt.Sprintf("ATTENTION! %s costs of %.2f %s exceeds %s %s!",
		strings.ToUpper(e.provider), total, e.currency, FormatDecimal(e.limit), e.currency)
}

// Evaluate dispatches an alert when totals exceed the limit. The returned
// report is nil when nothing was dispatched.
func (e *Evaluator) Evaluate(ctx context.Context, totals domain.UsageTotals) (bool, *notify.Report) {
	logger := zerolog.Ctx(ctx)

	if !Exceeded(totals.Amount, e.limit) {
		logger.Info().
			Str("event", "threshold_not_exceeded").
			Float64("amount", totals.Amount).
			Float64("threshold", e.limit).
			Msg("usage cost is within threshold")
		return false, nil
	}

	logger.Warn().
		Str("event", "threshold_exceeded").
		Float64("amount", totals.Amount).
		Float64("threshold", e.limit).
		Str("currency", e.currency).
		Msg("usage cost exceeds threshold")

	report := e.dispatcher.Dispatch(ctx, domain.Alert{
		Kind:      domain.AlertKindThreshold,
		Title:     e.title,
		Message:   e.Message(totals.Amount),
		Totals:    totals,
		Threshold: e.limit,
		Currency:  e.currency,
	})
	if !report.OK {
		logger.Error().
			Str("event", "dispatch_failed").
			Str("kind", string(domain.AlertKindThreshold)).
			Int("channels", len(report.Outcomes)).
			Msg("threshold alert was not delivered")
	}
	return true, &report
}

// FormatDecimal renders whole numbers with one decimal place ("100.0") and
// everything else with the shortest exact representation.
func FormatDecimal(v float64) string {
	if v == math.Trunc(v) && math.Abs(v) < 1e16 {
		return strconv.FormatFloat(v, 'f', 1, 64)
	}
	return strconv.FormatFloat(v, 'g', -1, 64)
}
