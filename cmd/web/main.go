package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	handlers "github.com/de-tools/spend-watch/pkg/handlers/usage"
	"github.com/de-tools/spend-watch/pkg/server"
	"github.com/de-tools/spend-watch/pkg/services/config"
	"github.com/de-tools/spend-watch/pkg/services/pipeline"
	"github.com/de-tools/spend-watch/pkg/services/usage"
	"github.com/de-tools/spend-watch/pkg/services/usage/aws_ce"
	"github.com/de-tools/spend-watch/pkg/services/usage/azure"
	"github.com/de-tools/spend-watch/pkg/services/usage/oci"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

var (
	cfgPath string
	addr    string
	watch   bool
)

func main() {
	var rootCmd = &cobra.Command{
		Use:          "web",
		Short:        "Start the spend-watch web server",
		SilenceUsage: true,
		RunE:         runServer,
	}

	rootCmd.Flags().StringVarP(&cfgPath, "config", "c", "",
		"Path to a YAML settings file (default is ./spend-watch.yaml)")
	rootCmd.Flags().StringVar(&addr, "addr", "", "Listen address, overrides server.addr")
	rootCmd.Flags().BoolVar(&watch, "watch", false, "Also run the pipeline on the configured interval")

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func runServer(cmd *cobra.Command, _ []string) error {
	settings, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("failed to load settings: %w", err)
	}
	if err := settings.Validate(); err != nil {
		return fmt.Errorf("invalid settings: %w", err)
	}
	if addr != "" {
		settings.Server.Addr = addr
	}

	logger := settings.Logging.NewLogger(os.Stdout)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx = logger.WithContext(ctx)

	registry := usage.NewRegistry(map[string]usage.ClientFactory{
		"oci":   oci.ClientFactory,
		"aws":   aws_ce.ClientFactory,
		"azure": azure.ClientFactory,
	})

	runner, err := pipeline.NewFromSettings(ctx, registry, settings)
	if err != nil {
		return err
	}

	logger.Info().
		Str("provider", settings.Provider).
		Strs("channels", settings.EnabledChannels()).
		Str("policy", settings.Dispatch.Policy).
		Msg("settings loaded")

	webAPI := server.NewWebAPI(server.Config{
		Addr: settings.Server.Addr,
		Dependencies: server.Dependencies{
			Usage: runner,
			Info: handlers.Info{
				Provider:  settings.Provider,
				Currency:  settings.Currency,
				Threshold: settings.Threshold,
			},
			Logger: logger,
		},
	})

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return webAPI.Start(gctx)
	})
	if watch {
		g.Go(func() error {
			err := pipeline.NewScheduler(runner, settings.Interval).Start(gctx)
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		})
	}

	return g.Wait()
}
