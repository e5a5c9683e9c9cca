package alarmclock

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"testing/synctest"
	"time"

	"github.com/stretchr/testify/require"
)

// countingSleep wraps a strategy and counts how many countdowns were started.
func countingSleep(calls *atomic.Int32, next SleepFunc) SleepFunc {
	return func(ctx context.Context, d time.Duration) bool {
		calls.Add(1)

		return next(ctx, d)
	}
}

// TestNew_RejectsNegativeDuration ensures a negative countdown is refused.
func TestNew_RejectsNegativeDuration(t *testing.T) {
	t.Parallel()

	tm, err := New(-time.Millisecond)
	require.ErrorIs(t, err, ErrNegativeDuration)
	require.Nil(t, tm)
}

// TestTimer_DurationAccessors checks the precomputed unit conversions.
func TestTimer_DurationAccessors(t *testing.T) {
	t.Parallel()

	synctest.Test(t, func(t *testing.T) {
		tm, err := New(1500 * time.Microsecond)
		require.NoError(t, err)

		defer func() {
			require.NoError(t, tm.Close())
		}()

		require.Equal(t, 1500*time.Microsecond, tm.Duration())
		require.Equal(t, int64(1), tm.DurationMilliseconds())
		require.Equal(t, int64(1500), tm.DurationMicroseconds())
	})
}

// TestTimer_ExpiresAfterDuration verifies expiry after the full countdown and that it sticks until reset.
func TestTimer_ExpiresAfterDuration(t *testing.T) {
	t.Parallel()

	synctest.Test(t, func(t *testing.T) {
		tm, err := New(10 * time.Millisecond)
		require.NoError(t, err)

		defer func() {
			require.NoError(t, tm.Close())
		}()

		synctest.Wait()
		require.False(t, tm.Expired())

		time.Sleep(9 * time.Millisecond)
		synctest.Wait()
		require.False(t, tm.Expired())

		time.Sleep(2 * time.Millisecond)
		synctest.Wait()
		require.True(t, tm.Expired())
		require.Equal(t, uint64(1), tm.ExpiredCount())

		// Parked worker does not count again.
		time.Sleep(time.Hour)
		synctest.Wait()
		require.True(t, tm.Expired())
		require.Equal(t, uint64(1), tm.ExpiredCount())
		require.Equal(t, 10*time.Millisecond, tm.SleptTime())
	})
}

// TestTimer_Scenario walks through construct, expire, reset, expire again, close.
func TestTimer_Scenario(t *testing.T) {
	t.Parallel()

	synctest.Test(t, func(t *testing.T) {
		tm, err := New(10 * time.Millisecond)
		require.NoError(t, err)
		require.False(t, tm.Expired())

		time.Sleep(11 * time.Millisecond)
		synctest.Wait()
		require.True(t, tm.Expired())

		tm.Reset()
		require.False(t, tm.Expired())

		time.Sleep(11 * time.Millisecond)
		synctest.Wait()
		require.True(t, tm.Expired())

		require.NoError(t, tm.Close())
	})
}

// TestTimer_ZeroDurationExpiresImmediately checks that a zero countdown expires on the first iteration.
func TestTimer_ZeroDurationExpiresImmediately(t *testing.T) {
	t.Parallel()

	synctest.Test(t, func(t *testing.T) {
		tm, err := New(0)
		require.NoError(t, err)

		defer func() {
			require.NoError(t, tm.Close())
		}()

		synctest.Wait()
		require.True(t, tm.Expired())
	})
}

// TestTimer_ResetRestartsCountdownFromZero verifies a reset mid-countdown starts a fresh full countdown.
func TestTimer_ResetRestartsCountdownFromZero(t *testing.T) {
	t.Parallel()

	synctest.Test(t, func(t *testing.T) {
		tm, err := New(10 * time.Millisecond)
		require.NoError(t, err)

		defer func() {
			require.NoError(t, tm.Close())
		}()

		time.Sleep(6 * time.Millisecond)
		tm.Reset()

		time.Sleep(6 * time.Millisecond)
		synctest.Wait()
		require.False(t, tm.Expired())

		time.Sleep(5 * time.Millisecond)
		synctest.Wait()
		require.True(t, tm.Expired())
	})
}

// TestTimer_ResetWhileParkedWakesWorker asserts a parked worker starts a new countdown right after Reset.
func TestTimer_ResetWhileParkedWakesWorker(t *testing.T) {
	t.Parallel()

	synctest.Test(t, func(t *testing.T) {
		var calls atomic.Int32

		tm, err := New(10*time.Millisecond, WithSleepFunc(countingSleep(&calls, InterruptibleSleep)))
		require.NoError(t, err)

		defer func() {
			require.NoError(t, tm.Close())
		}()

		time.Sleep(11 * time.Millisecond)
		synctest.Wait()
		require.True(t, tm.Expired())
		require.Equal(t, int32(1), calls.Load())

		tm.Reset()
		synctest.Wait()
		require.False(t, tm.Expired())
		require.Equal(t, int32(2), calls.Load())

		time.Sleep(11 * time.Millisecond)
		synctest.Wait()
		require.True(t, tm.Expired())
	})
}

// TestTimer_ResetAtExpiryInstant resets exactly when the countdown completes and expects a fresh countdown.
func TestTimer_ResetAtExpiryInstant(t *testing.T) {
	t.Parallel()

	synctest.Test(t, func(t *testing.T) {
		tm, err := New(10 * time.Millisecond)
		require.NoError(t, err)

		defer func() {
			require.NoError(t, tm.Close())
		}()

		time.Sleep(10 * time.Millisecond)
		tm.Reset()

		time.Sleep(9 * time.Millisecond)
		synctest.Wait()
		require.False(t, tm.Expired())

		time.Sleep(2 * time.Millisecond)
		synctest.Wait()
		require.True(t, tm.Expired())
	})
}

// TestTimer_ConcurrentResetsNeverStrandWorker hammers Reset from many goroutines and expects the timer to expire afterwards.
func TestTimer_ConcurrentResetsNeverStrandWorker(t *testing.T) {
	t.Parallel()

	tm, err := New(time.Millisecond)
	require.NoError(t, err)

	defer func() {
		require.NoError(t, tm.Close())
	}()

	var wg sync.WaitGroup

	for range 8 {
		wg.Add(1)

		go func() {
			defer wg.Done()

			for range 500 {
				tm.Reset()
			}
		}()
	}

	wg.Wait()

	require.Eventually(t, tm.Expired, 2*time.Second, time.Millisecond)
}

// TestTimer_CloseTerminates closes the timer at different points of its lifecycle.
func TestTimer_CloseTerminates(t *testing.T) {
	t.Parallel()

	cases := map[string]func(tm *Timer){
		"immediately": func(*Timer) {},
		"mid countdown": func(*Timer) {
			time.Sleep(5 * time.Millisecond)
		},
		"after expiry": func(*Timer) {
			time.Sleep(11 * time.Millisecond)
			synctest.Wait()
		},
		"after reset": func(tm *Timer) {
			time.Sleep(11 * time.Millisecond)
			tm.Reset()
			synctest.Wait()
		},
	}

	for name, prepare := range cases {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			synctest.Test(t, func(t *testing.T) {
				tm, err := New(10 * time.Millisecond)
				require.NoError(t, err)

				prepare(tm)

				require.NoError(t, tm.Close())

				select {
				case <-tm.Done():
				default:
					t.Fatal("worker still running after Close")
				}

				// Second close is a no-op, reset after close is harmless.
				require.NoError(t, tm.Close())
				tm.Reset()
				require.False(t, tm.Expired())
			})
		})
	}
}

// TestTimer_ShutdownGivesUpOnStuckStrategy checks the bounded teardown with a strategy that ignores its context.
func TestTimer_ShutdownGivesUpOnStuckStrategy(t *testing.T) {
	t.Parallel()

	synctest.Test(t, func(t *testing.T) {
		release := make(chan struct{})
		stuck := func(context.Context, time.Duration) bool {
			<-release

			return false
		}

		tm, err := New(time.Millisecond, WithSleepFunc(stuck))
		require.NoError(t, err)

		// Let the worker enter the strategy before asking it to stop.
		synctest.Wait()

		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()

		err = tm.Shutdown(ctx)
		require.ErrorIs(t, err, context.DeadlineExceeded)

		close(release)
		<-tm.Done()

		require.False(t, tm.Expired())
		require.NoError(t, tm.Shutdown(context.Background()))
	})
}

// TestTimer_ImmediateStrategyCountsOncePerCountdown verifies an instant strategy expires once per reset.
func TestTimer_ImmediateStrategyCountsOncePerCountdown(t *testing.T) {
	t.Parallel()

	synctest.Test(t, func(t *testing.T) {
		var calls atomic.Int32

		tm, err := New(time.Hour, WithSleepFunc(countingSleep(&calls, ImmediateSleep)))
		require.NoError(t, err)

		defer func() {
			require.NoError(t, tm.Close())
		}()

		synctest.Wait()
		require.True(t, tm.Expired())
		require.Equal(t, uint64(1), tm.ExpiredCount())

		for i := 2; i <= 4; i++ {
			tm.Reset()
			synctest.Wait()
			require.Equal(t, uint64(1), tm.ExpiredCount())
			require.Equal(t, int32(i), calls.Load())
		}

		require.Zero(t, tm.SleptTime())
	})
}

// TestTimer_InterruptingStrategyNeverExpires verifies a strategy that always reports interruption keeps the count at zero.
func TestTimer_InterruptingStrategyNeverExpires(t *testing.T) {
	t.Parallel()

	synctest.Test(t, func(t *testing.T) {
		var calls atomic.Int32

		alwaysInterrupted := func(context.Context, time.Duration) bool { return true }

		tm, err := New(time.Millisecond, WithSleepFunc(countingSleep(&calls, alwaysInterrupted)))
		require.NoError(t, err)

		defer func() {
			require.NoError(t, tm.Close())
		}()

		time.Sleep(time.Second)
		synctest.Wait()
		require.False(t, tm.Expired())
		require.Equal(t, int32(1), calls.Load())

		tm.Reset()
		time.Sleep(time.Second)
		synctest.Wait()
		require.False(t, tm.Expired())
		require.Equal(t, int32(2), calls.Load())
	})
}

// TestTimer_UncooperativeStrategyResetDiscardsCompletion checks that a completion racing a reset is not counted.
func TestTimer_UncooperativeStrategyResetDiscardsCompletion(t *testing.T) {
	t.Parallel()

	synctest.Test(t, func(t *testing.T) {
		ignoresContext := func(_ context.Context, d time.Duration) bool {
			time.Sleep(d)

			return false
		}

		tm, err := New(10*time.Millisecond, WithSleepFunc(ignoresContext))
		require.NoError(t, err)

		defer func() {
			require.NoError(t, tm.Close())
		}()

		time.Sleep(5 * time.Millisecond)
		tm.Reset()

		// The first countdown ends at 10ms but the reset restarts it there.
		time.Sleep(10 * time.Millisecond)
		synctest.Wait()
		require.False(t, tm.Expired())

		time.Sleep(6 * time.Millisecond)
		synctest.Wait()
		require.True(t, tm.Expired())
	})
}
