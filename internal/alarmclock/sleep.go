package alarmclock

import (
	"context"
	"time"
)

// SleepFunc waits for d and reports whether the wait was interrupted.
//
// The worker cancels ctx whenever Reset or Close is requested. Implementations
// must return true as soon as ctx is done; returning false means the full
// duration elapsed. A strategy that ignores ctx keeps the worker busy until it
// returns on its own, and its result is discarded if a reset arrived meanwhile.
type SleepFunc func(ctx context.Context, d time.Duration) (interrupted bool)

// InterruptibleSleep is the default strategy: a single timed wait that ends
// early when ctx is done.
func InterruptibleSleep(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() != nil
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return true
	case <-timer.C:
		// Prefer the interruption when both became ready together.
		return ctx.Err() != nil
	}
}

// ImmediateSleep completes at once unless ctx is already done.
func ImmediateSleep(ctx context.Context, _ time.Duration) bool {
	return ctx.Err() != nil
}

// NeverCompleteSleep blocks until ctx is done and always reports an interruption.
func NeverCompleteSleep(ctx context.Context, _ time.Duration) bool {
	<-ctx.Done()

	return true
}
