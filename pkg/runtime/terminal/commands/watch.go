package commands

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/de-tools/spend-watch/pkg/services/pipeline"
	"github.com/spf13/cobra"
)

type WatchCmd struct {
	deps Deps
}

func NewWatchCmd(deps Deps) *cobra.Command {
	wc := &WatchCmd{deps: deps}
	return &cobra.Command{
		Use:   "watch",
		Short: "Run on the configured interval until interrupted",
		Args:  cobra.NoArgs,
		RunE:  wc.run,
	}
}

func (wc *WatchCmd) run(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	settings := wc.deps.Settings()
	runner, err := pipeline.NewFromSettings(ctx, wc.deps.Registry, settings)
	if err != nil {
		return err
	}

	err = pipeline.NewScheduler(runner, settings.Interval).Start(ctx)
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
