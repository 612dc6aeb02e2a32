package daemon

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/orbitrollup/batch-submitter/batch-submitter/config"
	"github.com/orbitrollup/batch-submitter/batch-submitter/service"
	"github.com/orbitrollup/batch-submitter/log"
	"github.com/orbitrollup/batch-submitter/metrics"
)

func NewStartCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "start",
		Short: "Start the batch submitter daemon",
		Long:  "Start the batch submitter daemon and run it until shutdown.",
		RunE:  startFn,
	}

	cmd.Flags().String(homeFlag, config.DefaultBatchdDir, "The path to the batchd home directory")

	return cmd
}

func startFn(cmd *cobra.Command, _ []string) error {
	homePath, err := getHomePath(cmd)
	if err != nil {
		return fmt.Errorf("failed to load home flag: %w", err)
	}

	cfg, err := config.LoadConfig(homePath)
	if err != nil {
		return fmt.Errorf("failed to load config at %s: %w", homePath, err)
	}

	logger, err := log.NewRootLoggerWithFile(config.LogFile(homePath), cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("failed to load the logger: %w", err)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app, err := service.NewBatchSubmitterAppFromConfig(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to create batch submitter app: %w", err)
	}

	if err := app.Start(ctx); err != nil {
		return err
	}
	defer app.Stop()

	promAddr, err := cfg.Metrics.Address()
	if err != nil {
		return fmt.Errorf("failed to get prometheus address: %w", err)
	}
	metricsServer := metrics.Start(promAddr, app.Metrics().Registry(), logger)
	defer metricsServer.Stop(context.Background())

	<-ctx.Done()

	return nil
}
