package checker

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/oshokin/alarm-clock/internal/alarmclock"
	"github.com/oshokin/alarm-clock/internal/config"
	"github.com/oshokin/alarm-clock/internal/logger"
	"github.com/oshokin/alarm-clock/internal/service/common"
	"github.com/oshokin/alarm-clock/internal/service/notify"
	"github.com/oshokin/alarm-clock/internal/service/power"
)

// Options controls the checker polling behavior and configuration.
type Options struct {
	// ConfigPath specifies the path to the settings YAML file.
	ConfigPath string
	// ServerAddress provides an optional gRPC server address override.
	ServerAddress string
	// PollInterval overrides the interval between status checks.
	PollInterval time.Duration
	// Timeout overrides the per-RPC timeout duration.
	Timeout time.Duration
	// Debug prevents shutdown when the switch trips, for testing purposes.
	Debug bool
}

// errShutdownInitiated indicates that a shutdown process has been initiated.
var errShutdownInitiated = errors.New("shutdown initiated")

// Run polls the switch status and reacts when it trips.
// The loop ends when ctx is canceled or after a shutdown was started.
func Run(ctx context.Context, opts *Options) error {
	// Set context with logger name for tracking.
	ctx = logger.WithName(ctx, "alarm-checker")

	// Load settings from configuration file.
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}

	// Command line arguments override config.
	serverAddress := valueOr(opts.ServerAddress, cfg.ServerAddress)
	pollInterval := valueOr(opts.PollInterval, cfg.PollInterval)
	timeout := valueOr(opts.Timeout, cfg.Timeout)

	// The interval override is checked again against the offline timeout.
	if err = config.ValidateOfflineTimeout(cfg.OfflineTimeout, pollInterval); err != nil {
		return err
	}

	ctx = logger.WithFields(ctx, "server_address", serverAddress)

	client, err := common.Dial(ctx, serverAddress, common.WithCallTimeout(timeout))
	if err != nil {
		return fmt.Errorf("dial server: %w", err)
	}

	// Ensure connection cleanup on function exit.
	defer func() {
		_ = client.Close()
	}()

	w := &watcher{
		source:   client,
		notifier: notify.New(cfg.NotifyURLs),
		shutdown: power.Shutdown,
		debug:    opts.Debug,
	}

	// The offline timer restarts on the first failed poll of an outage and
	// trips the checker when the server stays unreachable.
	if cfg.OfflineTimeout > 0 {
		w.offline, err = alarmclock.New(
			cfg.OfflineTimeout,
			alarmclock.WithLogger(logger.FromContext(ctx).Named("offline")),
		)
		if err != nil {
			return fmt.Errorf("offline timer: %w", err)
		}

		defer func() {
			_ = w.offline.Close()
		}()
	}

	logger.InfoKV(
		ctx,
		"Polling switch status",
		"interval", pollInterval.String(),
		"offline_timeout", cfg.OfflineTimeout.String(),
	)

	return w.watch(ctx, pollInterval)
}

func valueOr[T comparable](v, fallback T) T {
	var zero T
	if v == zero {
		return fallback
	}

	return v
}
