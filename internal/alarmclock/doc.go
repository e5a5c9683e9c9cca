// Package alarmclock implements a resettable, interruptible countdown timer.
//
// A Timer owns one background goroutine that counts the configured duration
// down, records the expiry and then parks until it is either reset or closed.
// Expiry is a polled flag (Expired) rather than a callback:
//   - Reset clears the flag and restarts the countdown without replacing the worker,
//   - Close signals the worker to exit and waits for it,
//   - the sleep strategy is pluggable (WithSleepFunc) so tests can replace
//     wall-clock waiting with instant or instrumented behaviour.
package alarmclock
