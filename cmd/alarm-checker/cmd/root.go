package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/oshokin/alarm-clock/internal/config"
	"github.com/oshokin/alarm-clock/internal/logger"
	"github.com/oshokin/alarm-clock/internal/service/checker"
	"github.com/oshokin/alarm-clock/internal/service/common"
	"github.com/oshokin/alarm-clock/internal/version"
)

var (
	// configPath stores the path to the configuration YAML file.
	configPath string
	// pollInterval overrides the configured polling interval.
	pollInterval time.Duration
	// debug controls whether to skip shutdown when the switch trips.
	debug bool

	// rootCmd represents the base command for polling the switch.
	rootCmd = &cobra.Command{
		Use:   "alarm-checker [server-address]",
		Short: "Watch the dead man's switch and shut down when it trips.",
		Long: `Background service that watches the dead man's switch and shuts down this PC when it trips.

Polls the server at the configured interval (5 seconds by default).
When the server reports an expired countdown, or stays unreachable longer than
offline_timeout, the configured notification URLs are notified and this PC shuts down.
Server address can be provided as argument or loaded from configuration file.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			closeLog, err := common.SetupLogging(configPath)
			if err != nil {
				return err
			}

			defer closeLog()

			// Setup graceful shutdown handling.
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
			defer stop()

			logger.InfoKV(ctx, "Starting alarm-checker", version.KV()...)

			// Use server address argument if provided, otherwise rely on config.
			var serverAddress string
			if len(args) > 0 {
				serverAddress = args[0]
			}

			checkerOptions := &checker.Options{
				ConfigPath:    configPath,
				ServerAddress: serverAddress,
				PollInterval:  pollInterval,
				Debug:         debug,
			}

			return checker.Run(ctx, checkerOptions)
		},
	}
)

// Execute runs the alarm-checker CLI and exits with non-zero status on error.
func Execute() {
	version.AttachCobraVersionCommand(rootCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	// Setup command flags with consistent naming and descriptions.
	rootCmd.Flags().StringVarP(&configPath, "config", "c", config.DefaultConfigFilename, "path to configuration file")
	rootCmd.Flags().DurationVarP(&pollInterval, "interval", "i", 0, "polling interval (overrides config)")

	// Hidden debug flag to skip shutdown for debugging.
	rootCmd.Flags().BoolVarP(&debug, "debug", "d", false, "skip shutdown for debugging")

	err := rootCmd.Flags().MarkHidden("debug")
	if err != nil {
		panic(err)
	}
}
