package server

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/oshokin/alarm-clock/internal/alarmclock"
	domain "github.com/oshokin/alarm-clock/internal/domain/watchdog"
	"github.com/oshokin/alarm-clock/internal/logger"
	"github.com/oshokin/alarm-clock/internal/metrics"
	repo "github.com/oshokin/alarm-clock/internal/repository/state"
)

// service encapsulates the dead man's switch: a countdown that kicks restart.
// It is unexported to keep the transport decoupled from the implementation.
type service struct {
	// clock is the countdown kicked by clients.
	clock *alarmclock.Timer
	// repo handles persistent storage of the last kick.
	repo repo.Repository
	// metrics counts kicks, nil when metrics are disabled.
	metrics *metrics.Metrics
	// lastKick is the most recent accepted kick.
	lastKick *domain.Kick
	// mu serialises kicks and protects lastKick.
	mu sync.RWMutex
}

// newService creates a service around clock, restoring the last kick from repository.
// The countdown itself always starts fresh with the process.
func newService(
	ctx context.Context,
	clock *alarmclock.Timer,
	repository repo.Repository,
	m *metrics.Metrics,
) (*service, error) {
	s := &service{
		clock:   clock,
		repo:    repository,
		metrics: m,
	}

	if repository == nil {
		return s, nil
	}

	kick, err := repository.Load(ctx)
	switch {
	case err == nil:
		s.lastKick = kick
	case errors.Is(err, repo.ErrNotFound):
		// Nothing kicked yet.
	default:
		return nil, fmt.Errorf("load state: %w", err)
	}

	return s, nil
}

// Kick restarts the countdown and records who did it.
// The countdown is restarted even when persisting the kick fails.
func (s *service) Kick(ctx context.Context, actor *domain.Actor) (*domain.Status, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	kick := &domain.Kick{
		ID:        uuid.NewString(),
		Timestamp: time.Now(),
		Actor:     actor.Clone(),
	}

	ctx = logger.WithKV(ctx, "kick_id", kick.ID)

	s.clock.Reset()
	s.lastKick = kick

	err := s.persist(ctx, kick)
	if s.metrics != nil {
		s.metrics.ObserveKick(err)
	}

	if err != nil {
		logger.Errorf(ctx, "Failed to persist kick: %v", err)

		return nil, fmt.Errorf("persist kick: %w", err)
	}

	logger.InfoKV(ctx, "Countdown kicked", "actor", kick.Actor.String())

	return s.snapshot(), nil
}

// Status returns the current state of the switch.
func (s *service) Status(ctx context.Context) *domain.Status {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := s.snapshot()

	if s.metrics != nil {
		s.metrics.ObserveStatus()
	}

	logger.DebugKV(ctx, "Status requested", "expired", result.Expired, "expired_count", result.ExpiredCount)

	return result
}

func (s *service) persist(ctx context.Context, kick *domain.Kick) error {
	if s.repo == nil {
		return nil
	}

	return s.repo.Save(ctx, kick)
}

// snapshot must be called with mu held.
func (s *service) snapshot() *domain.Status {
	return &domain.Status{
		Expired:      s.clock.Expired(),
		ExpiredCount: s.clock.ExpiredCount(),
		Countdown:    s.clock.Duration(),
		SleptTime:    s.clock.SleptTime(),
		LastKick:     s.lastKick.Clone(),
	}
}
