package watchdog

import (
	"fmt"
	"time"
)

// Actor identifies who performed an action in the system.
type Actor struct {
	// Hostname is the machine name where the action was performed.
	Hostname string
	// Username is the system user who triggered the action.
	Username string
}

// Clone returns a deep copy of the actor.
func (a *Actor) Clone() *Actor {
	if a == nil {
		return nil
	}

	cloned := *a

	return &cloned
}

// String renders the actor as username@hostname.
func (a *Actor) String() string {
	if a == nil {
		return "<unknown>"
	}

	return fmt.Sprintf("%s@%s", a.Username, a.Hostname)
}

// Kick is a single reset of the countdown.
type Kick struct {
	// ID uniquely identifies the kick.
	ID string
	// Timestamp is when the server accepted the kick.
	Timestamp time.Time
	// Actor is who sent the kick.
	Actor *Actor
}

// Clone returns a deep copy of the kick.
func (k *Kick) Clone() *Kick {
	if k == nil {
		return nil
	}

	return &Kick{
		ID:        k.ID,
		Timestamp: k.Timestamp,
		Actor:     k.Actor.Clone(),
	}
}

// Status is the switch as observed at a point in time.
type Status struct {
	// Expired is true once the countdown ran out without a kick.
	Expired bool
	// ExpiredCount is the number of expirations since the last kick.
	ExpiredCount uint64
	// Countdown is the configured countdown.
	Countdown time.Duration
	// SleptTime is the total time the countdown worker spent waiting.
	SleptTime time.Duration
	// LastKick is the most recent kick, nil if there was none yet.
	LastKick *Kick
}

// Clone returns a copy of the status to avoid leaking internal references.
func (s *Status) Clone() *Status {
	if s == nil {
		return nil
	}

	cloned := *s
	cloned.LastKick = s.LastKick.Clone()

	return &cloned
}

// Remaining estimates the time left before expiry as seen at now.
// It is zero once expired and the full countdown when nothing was kicked yet.
func (s *Status) Remaining(now time.Time) time.Duration {
	if s.Expired {
		return 0
	}

	if s.LastKick == nil {
		return s.Countdown
	}

	remaining := s.Countdown - now.Sub(s.LastKick.Timestamp)
	if remaining < 0 {
		return 0
	}

	return remaining
}
