package pipeline

import (
	"context"
	"time"

	"github.com/de-tools/spend-watch/pkg/models/domain"
	"github.com/rs/zerolog"
)

type OnceRunner interface {
	RunOnce(ctx context.Context) (*domain.RunResult, error)
}

// Scheduler runs immediately and then on every interval tick. Runs never
// overlap: a tick that fires during a run is dropped by the ticker.
type Scheduler struct {
	runner   OnceRunner
	interval time.Duration
}

func NewScheduler(runner OnceRunner, interval time.Duration) *Scheduler {
	return &Scheduler{runner: runner, interval: interval}
}

// Start blocks until ctx is canceled. Failed runs are logged and the loop
// keeps going.
func (s *Scheduler) Start(ctx context.Context) error {
	logger := zerolog.Ctx(ctx)
	logger.Info().Dur("interval", s.interval).Msg("scheduler started")

	s.tick(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info().Msg("scheduler stopped")
			return ctx.Err()
		case <-ticker.C:
			s.tick(ctx)
		}
	}
}

func (s *Scheduler) tick(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}
	if _, err := s.runner.RunOnce(ctx); err != nil {
		zerolog.Ctx(ctx).Debug().Err(err).Msg("scheduled run returned an error")
	}
}
