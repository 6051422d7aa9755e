package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

type ChannelsCmd struct {
	deps Deps
}

func NewChannelsCmd(deps Deps) *cobra.Command {
	cc := &ChannelsCmd{deps: deps}
	return &cobra.Command{
		Use:   "channels",
		Short: "List configured notification channels and the dispatch policy",
		Args:  cobra.NoArgs,
		RunE:  cc.run,
	}
}

func (cc *ChannelsCmd) run(cmd *cobra.Command, _ []string) error {
	settings := cc.deps.Settings()
	out := cmd.OutOrStdout()

	enabled := settings.EnabledChannels()
	if len(enabled) == 0 {
		fmt.Fprintln(out, "No notification channels configured")
	} else {
		fmt.Fprintf(out, "Configured channels:\n%s\n", strings.Join(enabled, "\n"))
	}

	policy := settings.Dispatch.Policy
	if policy == "required" {
		policy = fmt.Sprintf("%s (%s)", policy, strings.Join(settings.Dispatch.Required, ", "))
	}
	fmt.Fprintf(out, "Dispatch policy: %s\n", policy)
	fmt.Fprintf(out, "Status channels: %s\n", strings.Join(settings.Status.Channels, ", "))

	if missing := settings.MissingStatusChannels(); len(missing) > 0 {
		fmt.Fprintf(out, "Not configured, skipped: %s\n", strings.Join(missing, ", "))
	}
	if settings.Heartbeat.URL == "" {
		fmt.Fprintln(out, "Heartbeat: disabled")
	} else {
		fmt.Fprintln(out, "Heartbeat: enabled")
	}
	return nil
}
