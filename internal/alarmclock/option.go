package alarmclock

import "go.uber.org/zap"

// Option configures a Timer at construction time.
type Option func(*Timer)

// WithSleepFunc replaces the default sleep strategy.
// A nil function keeps the default.
func WithSleepFunc(fn SleepFunc) Option {
	return func(t *Timer) {
		if fn != nil {
			t.sleep = fn
		}
	}
}

// WithLogger sets the logger used for worker lifecycle messages.
func WithLogger(l *zap.SugaredLogger) Option {
	return func(t *Timer) {
		if l != nil {
			t.log = l
		}
	}
}
