package alarmclock

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/oshokin/alarm-clock/internal/logger"
)

// ErrNegativeDuration is returned by New when the countdown is negative.
var ErrNegativeDuration = errors.New("countdown duration must not be negative")

// Timer is a resettable countdown driven by a single background worker.
//
// The expiry counter and the request flags are atomics so Expired never blocks.
// mu and cond only coordinate the park/wake protocol between Reset, Close and
// the worker.
type Timer struct {
	// duration is the configured countdown.
	duration time.Duration
	// durationMs and durationUs are precomputed unit conversions of duration.
	durationMs int64
	durationUs int64

	// expired counts natural expirations since the last reset.
	expired atomic.Uint64
	// slept accumulates microseconds spent inside the sleep strategy.
	slept atomic.Int64
	// exit is set once by Close and never cleared.
	exit atomic.Bool
	// reset is set by Reset and consumed by the worker when a countdown starts.
	reset atomic.Bool

	// sleep is the strategy used to wait for one countdown.
	sleep SleepFunc
	// log receives worker lifecycle messages.
	log *zap.SugaredLogger

	mu   sync.Mutex
	cond *sync.Cond
	// cancelSleep interrupts the running sleep strategy, nil while parked.
	cancelSleep context.CancelFunc

	// done is closed when the worker returns.
	done chan struct{}
}

// New creates a Timer for d and starts counting down immediately.
// The worker goroutine is running when New returns; a zero duration expires
// on its first iteration.
func New(d time.Duration, opts ...Option) (*Timer, error) {
	if d < 0 {
		return nil, fmt.Errorf("new timer %s: %w", d, ErrNegativeDuration)
	}

	t := &Timer{
		duration:   d,
		durationMs: d.Milliseconds(),
		durationUs: d.Microseconds(),
		sleep:      InterruptibleSleep,
		log:        logger.Logger().Named("alarmclock"),
		done:       make(chan struct{}),
	}

	t.cond = sync.NewCond(&t.mu)

	for _, opt := range opts {
		opt(t)
	}

	go t.run()

	return t, nil
}

// Expired reports whether a countdown completed since the last reset.
// It is not ordered against a concurrent Reset.
func (t *Timer) Expired() bool {
	return t.expired.Load() != 0
}

// ExpiredCount returns the number of natural expirations since the last reset.
func (t *Timer) ExpiredCount() uint64 {
	return t.expired.Load()
}

// Reset clears the expiry and restarts the countdown from zero.
// It is safe to call from any goroutine, repeatedly, and after Close.
func (t *Timer) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.reset.Store(true)
	t.expired.Store(0)

	if t.cancelSleep != nil {
		t.cancelSleep()
	}

	// Wakes the worker if it is parked; if it is about to park it sees reset first.
	t.cond.Broadcast()
}

// SleptTime returns the total time the worker spent inside the sleep strategy.
// It is a diagnostic value only.
func (t *Timer) SleptTime() time.Duration {
	return time.Duration(t.slept.Load()) * time.Microsecond
}

// Duration returns the configured countdown.
func (t *Timer) Duration() time.Duration {
	return t.duration
}

// DurationMilliseconds returns the countdown in whole milliseconds.
func (t *Timer) DurationMilliseconds() int64 {
	return t.durationMs
}

// DurationMicroseconds returns the countdown in whole microseconds.
func (t *Timer) DurationMicroseconds() int64 {
	return t.durationUs
}

// Done returns a channel that is closed once the worker has exited.
func (t *Timer) Done() <-chan struct{} {
	return t.done
}

// Close stops the worker and waits until it has exited.
// It blocks for as long as a custom sleep strategy ignores its context.
func (t *Timer) Close() error {
	t.requestExit()
	<-t.done

	return nil
}

// Shutdown is Close with a bound on the wait.
// When ctx ends first the exit request stays in place and the worker still
// stops as soon as its sleep strategy returns.
func (t *Timer) Shutdown(ctx context.Context) error {
	t.requestExit()

	select {
	case <-t.done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("wait for alarm clock worker: %w", ctx.Err())
	}
}

// requestExit flags the worker to stop and wakes it wherever it is.
func (t *Timer) requestExit() {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.exit.Store(true)

	if t.cancelSleep != nil {
		t.cancelSleep()
	}

	t.cond.Broadcast()
}

// run is the worker loop: count down, record the expiry, park until reset or exit.
func (t *Timer) run() {
	defer close(t.done)

	t.log.Debugw("Worker started", "duration", t.duration.String())

	for {
		ctx, ok := t.beginCountdown()
		if !ok {
			break
		}

		started := time.Now()
		interrupted := t.sleep(ctx, t.duration)
		t.slept.Add(time.Since(started).Microseconds())

		if !t.settle(interrupted) {
			break
		}
	}

	t.log.Debug("Worker exited")
}

// beginCountdown consumes a pending reset and installs the cancellable context
// for the next sleep. It returns false when exit was requested.
func (t *Timer) beginCountdown() (context.Context, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.exit.Load() {
		return nil, false
	}

	// Resets that arrived before this point restart exactly this countdown.
	t.reset.Store(false)

	ctx, cancel := context.WithCancel(context.Background())
	t.cancelSleep = cancel

	return ctx, true
}

// settle records the outcome of one countdown and parks the worker until a
// reset or exit is pending. It returns false when the worker must exit.
func (t *Timer) settle(interrupted bool) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.cancelSleep()
	t.cancelSleep = nil

	if t.exit.Load() {
		return false
	}

	switch {
	case t.reset.Load():
		t.log.Debug("Countdown restarted")
	case interrupted:
		t.log.Debug("Countdown interrupted, waiting for reset")
	default:
		t.expired.Add(1)
		t.log.Debugw("Countdown expired", "duration", t.duration.String())
	}

	for !t.reset.Load() && !t.exit.Load() {
		t.cond.Wait()
	}

	return !t.exit.Load()
}
