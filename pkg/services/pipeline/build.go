package pipeline

import (
	"context"
	"fmt"
	"slices"

	"github.com/de-tools/spend-watch/pkg/services/config"
	"github.com/de-tools/spend-watch/pkg/services/heartbeat"
	"github.com/de-tools/spend-watch/pkg/services/notify"
	"github.com/de-tools/spend-watch/pkg/services/threshold"
	"github.com/de-tools/spend-watch/pkg/services/usage"
	"github.com/rs/zerolog"
)

// NewFromSettings wires a Runner for the configured provider. Status channels
// only receive the status summary; every other channel receives threshold
// alerts.
func NewFromSettings(ctx context.Context, registry usage.Registry, s *config.Settings) (*Runner, error) {
	client, err := registry.Create(ctx, s.Provider, s)
	if err != nil {
		return nil, fmt.Errorf("failed to create %s usage client: %w", s.Provider, err)
	}

	all, err := notify.NewDispatcherFromSettings(s)
	if err != nil {
		return nil, err
	}

	if missing := s.MissingStatusChannels(); len(missing) > 0 {
		zerolog.Ctx(ctx).Warn().
			Strs("channels", missing).
			Msg("status channels are not configured and will be skipped")
	}

	status := all.Subset(notify.AnyOK, s.Status.Channels...)
	alerts := all.Subset(all.Policy(), alertChannels(all.Channels(), s.Status.Channels)...)

	evaluator := threshold.NewEvaluator(client.Provider(), s.AlertTitle, s.Currency, s.Threshold, alerts)
	reporter := heartbeat.NewReporter(s.Heartbeat.URL, s.Timeouts.Heartbeat)

	return NewRunner(client, status, evaluator, reporter, Options{
		Title:                   s.AlertTitle,
		Currency:                s.Currency,
		QueryTimeout:            s.Timeouts.Query,
		HeartbeatOnQueryFailure: s.Heartbeat.OnQueryFailure,
	}), nil
}

func alertChannels(all, status []string) []string {
	var out []string
	for _, name := range all {
		if !slices.Contains(status, name) {
			out = append(out, name)
		}
	}
	return out
}
