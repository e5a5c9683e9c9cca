package kicker

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/oshokin/alarm-clock/internal/config"
	"github.com/oshokin/alarm-clock/internal/logger"
	pb "github.com/oshokin/alarm-clock/internal/pb/v1"
	"github.com/oshokin/alarm-clock/internal/service/common"
)

// Options configures how the switch is kicked.
type Options struct {
	// ConfigPath to YAML settings file, defaults to standard filename if empty.
	ConfigPath string

	// ServerAddress overrides server address from config when specified.
	ServerAddress string

	// Schedule overrides the cron spec from config. Empty with an empty
	// config value means a single kick.
	Schedule string
}

// defaultRetryInterval defines the delay between kick attempts.
const defaultRetryInterval = 1 * time.Second

// kickTarget is the part of the gRPC client the kicker needs.
type kickTarget interface {
	Kick(ctx context.Context, actor *pb.SystemActor) (*pb.WatchdogStatus, error)
}

// Run kicks the switch once, or on every tick of the configured cron schedule
// until ctx is canceled.
func Run(ctx context.Context, opts *Options) error {
	// Set context with logger name for tracking.
	ctx = logger.WithName(ctx, "alarm-kick")

	// Load settings from configuration file.
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return err
	}

	// Use server address from options if provided, otherwise use config.
	serverAddress := cfg.ServerAddress
	if opts.ServerAddress != "" {
		serverAddress = opts.ServerAddress
	}

	schedule := cfg.KickSchedule
	if opts.Schedule != "" {
		schedule = opts.Schedule
	}

	// Identify current user and hostname for the kick record.
	actor, err := common.DetectActor()
	if err != nil {
		return err
	}

	client, err := common.Dial(ctx, serverAddress, common.WithCallTimeout(cfg.Timeout))
	if err != nil {
		return err
	}

	// Close connection on function exit.
	defer func() {
		_ = client.Close()
	}()

	ctx = logger.WithFields(ctx, "server_address", serverAddress, "actor", actor.GetUsername()+"@"+actor.GetHostname())

	k := &kicker{
		target:        client,
		actor:         actor,
		retryInterval: defaultRetryInterval,
	}

	if schedule == "" {
		logger.Info(ctx, "Kicking the switch")
		return k.kickUntilConfirmed(ctx)
	}

	logger.InfoKV(ctx, "Kicking the switch on schedule", "schedule", schedule)

	return k.runScheduled(ctx, schedule)
}

// kicker sends kicks for a single actor.
type kicker struct {
	target        kickTarget
	actor         *pb.SystemActor
	retryInterval time.Duration
}

// kickUntilConfirmed retries until the server acknowledges a kick or ctx ends.
func (k *kicker) kickUntilConfirmed(ctx context.Context) error {
	// Attempt immediately before starting retry loop.
	if k.attempt(ctx) {
		return nil
	}

	ticker := time.NewTicker(k.retryInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if k.attempt(ctx) {
				return nil
			}
		}
	}
}

// attempt kicks once and reports whether the server confirmed it.
func (k *kicker) attempt(ctx context.Context) bool {
	resp, err := k.target.Kick(ctx, k.actor)
	if err != nil {
		// Transient failures are retried.
		logger.ErrorKV(ctx, "Kick failed", "error", err)
		return false
	}

	// A confirmed kick leaves the countdown running.
	if resp == nil || resp.GetExpired() {
		logger.WarnKV(ctx, "Kick not confirmed", "status", formatStatus(resp))
		return false
	}

	logger.Infof(ctx, "Switch kicked: %s", formatStatus(resp))

	return true
}

// runScheduled kicks immediately and then on every cron tick until ctx ends.
// A tick is skipped while the previous kick is still retrying.
func (k *kicker) runScheduled(ctx context.Context, schedule string) error {
	log := cronLogger{log: logger.FromContext(ctx)}

	scheduler := cron.New(
		cron.WithLogger(log),
		cron.WithChain(cron.Recover(log), cron.SkipIfStillRunning(log)),
	)

	if _, err := scheduler.AddFunc(schedule, func() {
		_ = k.kickUntilConfirmed(ctx)
	}); err != nil {
		return fmt.Errorf("schedule %q: %w", schedule, err)
	}

	if err := k.kickUntilConfirmed(ctx); err != nil {
		return nil //nolint:nilerr // Only a canceled context ends the first kick.
	}

	scheduler.Start()

	<-ctx.Done()
	logger.Info(ctx, "Context canceled, stopping scheduler")

	// Wait for a running kick to return.
	<-scheduler.Stop().Done()

	return nil
}

// formatStatus converts a status response to a readable log message.
func formatStatus(status *pb.WatchdogStatus) string {
	if status == nil {
		return "<nil status>"
	}

	state := "armed"
	if status.GetExpired() {
		state = "tripped"
	}

	kick := status.GetLastKick()
	if kick == nil {
		return fmt.Sprintf("%s, countdown %s, never kicked", state, status.Countdown)
	}

	actor := "<unknown>"
	if a := kick.GetActor(); a != nil {
		actor = fmt.Sprintf("%s@%s", a.GetUsername(), a.GetHostname())
	}

	return fmt.Sprintf(
		"%s, countdown %s, kicked by %s (%s)",
		state,
		status.Countdown,
		actor,
		kick.Timestamp.Format(time.RFC3339),
	)
}
