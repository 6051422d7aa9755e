package notify

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strconv"

	"github.com/de-tools/spend-watch/pkg/models/domain"
	"github.com/rs/zerolog"
)

// Report collects per-channel outcomes of one dispatch.
type Report struct {
	Outcomes []domain.NotificationOutcome
	OK       bool
}

// Dispatcher fans an alert out to its channels in order. A failing channel
// never stops the remaining ones from being attempted.
type Dispatcher struct {
	channels []Channel
	policy   SuccessPolicy
}

func NewDispatcher(policy SuccessPolicy, channels ...Channel) *Dispatcher {
	if policy == nil {
		policy = AnyOK
	}
	return &Dispatcher{channels: channels, policy: policy}
}

// Subset returns a dispatcher over the named channels that exist, keeping
// this dispatcher's order.
func (d *Dispatcher) Subset(policy SuccessPolicy, names ...string) *Dispatcher {
	var channels []Channel
	for _, ch := range d.channels {
		if slices.Contains(names, ch.Name()) {
			channels = append(channels, ch)
		}
	}
	return NewDispatcher(policy, channels...)
}

func (d *Dispatcher) Policy() SuccessPolicy { return d.policy }

func (d *Dispatcher) Channels() []string {
	names := make([]string, 0, len(d.channels))
	for _, ch := range d.channels {
		names = append(names, ch.Name())
	}
	return names
}

func (d *Dispatcher) Dispatch(ctx context.Context, alert domain.Alert) Report {
	outcomes := make([]domain.NotificationOutcome, 0, len(d.channels))
	for _, ch := range d.channels {
		outcomes = append(outcomes, d.send(ctx, ch, alert))
	}
	return Report{Outcomes: outcomes, OK: d.policy(outcomes)}
}

func (d *Dispatcher) send(ctx context.Context, ch Channel, alert domain.Alert) (outcome domain.NotificationOutcome) {
	logger := zerolog.Ctx(ctx)
	outcome.Channel = ch.Name()

	defer func() {
		if r := recover(); r != nil {
			outcome.OK = false
			outcome.Status = "failed"
			outcome.Error = fmt.Sprintf("panic: %v", r)
			logger.Error().
				Str("event", "notification_failed").
				Str("channel", outcome.Channel).
				Str("kind", string(alert.Kind)).
				Str("error", outcome.Error).
				Msg("notification channel panicked")
		}
	}()

	err := ch.Send(ctx, alert)
	if err != nil {
		outcome.Status = "failed"
		var statusErr *StatusError
		if errors.As(err, &statusErr) {
			outcome.Status = strconv.Itoa(statusErr.Code)
		}
		outcome.Error = err.Error()

		logger.Error().
			Str("event", "notification_failed").
			Str("channel", outcome.Channel).
			Str("kind", string(alert.Kind)).
			Str("status", outcome.Status).
			Err(err).
			Msg("failed to send notification")
		return outcome
	}

	outcome.OK = true
	outcome.Status = "sent"
	logger.Info().
		Str("event", "notification_sent").
		Str("channel", outcome.Channel).
		Str("kind", string(alert.Kind)).
		Float64("amount", alert.Totals.Amount).
		Msg("notification sent")
	return outcome
}
