package commands

import (
	"fmt"

	"github.com/de-tools/spend-watch/pkg/services/pipeline"
	"github.com/spf13/cobra"
)

type RunCmd struct {
	deps Deps
}

func NewRunCmd(deps Deps) *cobra.Command {
	rc := &RunCmd{deps: deps}
	return &cobra.Command{
		Use:   "run",
		Short: "Query month-to-date usage once, notify and ping the heartbeat",
		Args:  cobra.NoArgs,
		RunE:  rc.run,
	}
}

func (rc *RunCmd) run(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	runner, err := pipeline.NewFromSettings(ctx, rc.deps.Registry, rc.deps.Settings())
	if err != nil {
		return err
	}

	result, err := runner.RunOnce(ctx)
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "total=%.2f quantity=%.2f exceeded=%t heartbeat=%t\n",
		result.Totals.Amount, result.Totals.Quantity, result.Exceeded, result.HeartbeatOK)
	return nil
}
