package terminal

import (
	"fmt"
	"io"
	"os"

	"github.com/de-tools/spend-watch/pkg/runtime/terminal/commands"
	"github.com/de-tools/spend-watch/pkg/runtime/terminal/export"
	"github.com/de-tools/spend-watch/pkg/services/config"
	"github.com/de-tools/spend-watch/pkg/services/usage"
	"github.com/spf13/cobra"
)

// CLI represents the command-line interface
type CLI struct {
	registry usage.Registry
	output   io.Writer
	logOut   io.Writer
	cfgFile  string
	settings *config.Settings
	rootCmd  *cobra.Command
}

// Options contain configuration for the CLI
type Options struct {
	Registry usage.Registry
	// Output receives reports and listings
	Output io.Writer
	// LogOutput receives JSON log lines
	LogOutput io.Writer
	// Load overrides settings loading, mainly for tests
	Load func(cfgFile string) (*config.Settings, error)
}

// NewCLI creates a new CLI instance
func NewCLI(opts Options) *CLI {
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	if opts.LogOutput == nil {
		opts.LogOutput = os.Stdout
	}
	if opts.Load == nil {
		opts.Load = config.Load
	}

	cli := &CLI{
		registry: opts.Registry,
		output:   opts.Output,
		logOut:   opts.LogOutput,
	}

	cli.rootCmd = cli.newRootCmd(opts.Load)
	return cli
}

func (cli *CLI) Execute() error {
	return cli.rootCmd.Execute()
}

// SetArgs overrides os.Args, used by tests
func (cli *CLI) SetArgs(args []string) {
	cli.rootCmd.SetArgs(args)
}

func (cli *CLI) newRootCmd(load func(string) (*config.Settings, error)) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "spend-watch",
		Short:         "Month-to-date cloud spend monitor",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			settings, err := load(cli.cfgFile)
			if err != nil {
				return fmt.Errorf("failed to load settings: %w", err)
			}
			if err := settings.Validate(); err != nil {
				return fmt.Errorf("invalid settings: %w", err)
			}
			cli.settings = settings

			logger := settings.Logging.NewLogger(cli.logOut)
			cmd.SetContext(logger.WithContext(cmd.Context()))
			return nil
		},
	}

	cmd.PersistentFlags().StringVarP(&cli.cfgFile, "config", "c", "",
		"Path to a YAML settings file (default is ./spend-watch.yaml or $HOME/.config/spend-watch/spend-watch.yaml)")
	cmd.SetOut(cli.output)

	deps := commands.Deps{
		Registry: cli.registry,
		Settings: func() *config.Settings { return cli.settings },
	}

	cmd.AddCommand(commands.NewRunCmd(deps))
	cmd.AddCommand(commands.NewWatchCmd(deps))
	cmd.AddCommand(commands.NewReportCmd(deps, map[string]commands.ReportHandler{
		"table": export.NewReporter(cli.output),
		"plain": NewReporter(cli.output),
	}))
	cmd.AddCommand(commands.NewChannelsCmd(deps))

	return cmd
}
