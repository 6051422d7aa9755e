package heartbeat

import (
	"context"
	"net/http"
	"time"

	"github.com/rs/zerolog"
)

const DefaultTimeout = 10 * time.Second

// Reporter pings a liveness endpoint such as a healthchecks.io check URL.
type Reporter struct {
	url    string
	client *http.Client
}

func NewReporter(url string, timeout time.Duration) *Reporter {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Reporter{url: url, client: &http.Client{Timeout: timeout}}
}

func (r *Reporter) Enabled() bool { return r.url != "" }

// Ping sends one GET and reports whether it got a 2xx answer. Failures are
// logged and never returned.
func (r *Reporter) Ping(ctx context.Context) bool {
	logger := zerolog.Ctx(ctx)

	if !r.Enabled() {
		logger.Debug().Str("event", "healthcheck_ping_skipped").Msg("no heartbeat url configured")
		return false
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.url, nil)
	if err != nil {
		logger.Error().Str("event", "healthcheck_ping_failed").Err(err).Msg("failed to build heartbeat request")
		return false
	}

	resp, err := r.client.Do(req)
	if err != nil {
		logger.Error().Str("event", "healthcheck_ping_failed").Err(err).Msg("heartbeat ping failed")
		return false
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		logger.Error().
			Str("event", "healthcheck_ping_failed").
			Int("status", resp.StatusCode).
			Msg("heartbeat endpoint rejected ping")
		return false
	}

	logger.Info().Str("event", "healthcheck_ping_success").Int("status", resp.StatusCode).Msg("heartbeat sent")
	return true
}
