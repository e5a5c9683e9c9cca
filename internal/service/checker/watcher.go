package checker

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/oshokin/alarm-clock/internal/alarmclock"
	"github.com/oshokin/alarm-clock/internal/logger"
	pb "github.com/oshokin/alarm-clock/internal/pb/v1"
	"github.com/oshokin/alarm-clock/internal/service/notify"
)

// statusSource is the part of the gRPC client the watcher needs.
type statusSource interface {
	GetStatus(ctx context.Context) (*pb.WatchdogStatus, error)
}

// watcher turns polled statuses into trip reactions.
type watcher struct {
	source   statusSource
	notifier *notify.Notifier
	shutdown func(ctx context.Context) error
	// offline is nil when the offline timeout is disabled.
	// It measures time since the first failed poll of an outage.
	offline *alarmclock.Timer
	debug   bool

	// reachable is true while the last poll succeeded.
	reachable bool

	// tripped suppresses repeated notifications until the switch recovers.
	tripped bool
}

// watch runs check on every tick until ctx ends or a shutdown starts.
func (w *watcher) watch(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info(ctx, "Context canceled, exiting")
			return nil
		case <-ticker.C:
			err := w.check(ctx)
			if errors.Is(err, errShutdownInitiated) {
				logger.Info(ctx, "Shutdown initiated, exiting")
				return nil
			}

			if err != nil {
				logger.ErrorKV(ctx, "Check status failed", "error", err)
			}
		}
	}
}

// check polls once. It returns errShutdownInitiated after starting a shutdown.
func (w *watcher) check(ctx context.Context) error {
	status, err := w.source.GetStatus(ctx)
	if err != nil {
		return w.unreachable(ctx, err)
	}

	w.reachable = true

	logger.DebugKV(
		ctx,
		"Switch status",
		"expired", status.GetExpired(),
		"expired_count", status.ExpiredCount,
		"last_kick", describeKick(status.GetLastKick()),
	)

	if !status.GetExpired() {
		if w.tripped {
			logger.Info(ctx, "Switch kicked again, disarming")
		}

		w.tripped = false

		return nil
	}

	return w.trip(ctx, fmt.Sprintf("no kick within %s, last %s", status.Countdown, describeKick(status.GetLastKick())))
}

// unreachable handles a failed poll. The first failure of an outage restarts
// the offline countdown, so only a server that stays unreachable longer than
// the offline timeout trips the switch, whatever the poll interval.
func (w *watcher) unreachable(ctx context.Context, err error) error {
	if w.offline == nil {
		return err
	}

	if w.reachable {
		w.reachable = false
		w.offline.Reset()

		return err
	}

	if w.offline.Expired() {
		return w.trip(ctx, fmt.Sprintf("server unreachable for more than %s", w.offline.Duration()))
	}

	return err
}

// trip notifies once per trip and powers the machine off unless debugging.
func (w *watcher) trip(ctx context.Context, reason string) error {
	if !w.tripped {
		w.tripped = true

		logger.WarnKV(ctx, "Dead man's switch tripped", "reason", reason)

		if err := w.notifier.Notify(ctx, "Dead man's switch tripped: "+reason); err != nil {
			logger.ErrorKV(ctx, "Notify failed", "error", err)
		}
	}

	if w.debug {
		logger.Warn(ctx, "Switch tripped but debug mode prevents shutdown")
		return nil
	}

	if err := w.shutdown(ctx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}

	return errShutdownInitiated
}

// describeKick renders a kick as "user@host at time".
func describeKick(kick *pb.KickInfo) string {
	if kick == nil {
		return "<never>"
	}

	actor := "<unknown>"
	if a := kick.GetActor(); a != nil {
		actor = a.GetUsername() + "@" + a.GetHostname()
	}

	return actor + " at " + kick.Timestamp.Format(time.RFC3339)
}
