package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/oshokin/alarm-clock/internal/config"
	"github.com/oshokin/alarm-clock/internal/service/common"
	"github.com/oshokin/alarm-clock/internal/service/kicker"
	"github.com/oshokin/alarm-clock/internal/version"
)

var (
	// cfgPath stores the configuration file path.
	cfgPath string
	// schedule is a cron spec for repeated kicks.
	schedule string

	// rootCmd represents the base command for kicking the switch.
	rootCmd = &cobra.Command{
		Use:   "alarm-kick [server-address]",
		Short: "Kick the dead man's switch.",
		Long: `Restarts the countdown of the dead man's switch on behalf of this user and host.

Sends kick requests to the server until one is confirmed.
With a cron schedule (--schedule or kick_schedule in config) it keeps running and
kicks on every tick, e.g. "@every 1m" or "*/5 9-18 * * 1-5".
Server address can be provided as argument or loaded from configuration file.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			closeLog, err := common.SetupLogging(cfgPath)
			if err != nil {
				return err
			}

			defer closeLog()

			// Setup graceful shutdown handling.
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
			defer stop()

			// Use server address argument if provided, otherwise rely on config.
			var serverAddress string
			if len(args) > 0 {
				serverAddress = args[0]
			}

			return kicker.Run(ctx, &kicker.Options{
				ConfigPath:    cfgPath,
				ServerAddress: serverAddress,
				Schedule:      schedule,
			})
		},
	}
)

// Execute runs the alarm-kick CLI and exits with non-zero status on error.
func Execute() {
	version.AttachCobraVersionCommand(rootCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	// Setup command flags with consistent naming and descriptions.
	rootCmd.Flags().StringVarP(&cfgPath, "config", "c", config.DefaultConfigFilename, "path to configuration file")
	rootCmd.Flags().StringVarP(&schedule, "schedule", "s", "", "cron schedule for repeated kicks (overrides config)")
}
