package watchdog

import (
	"context"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	domain "github.com/oshokin/alarm-clock/internal/domain/watchdog"
	pb "github.com/oshokin/alarm-clock/internal/pb/v1"
)

// Service abstracts the business operations the transport layer depends on.
type Service interface {
	Kick(ctx context.Context, actor *domain.Actor) (*domain.Status, error)
	Status(ctx context.Context) *domain.Status
}

var _ pb.WatchdogServiceServer = (*Server)(nil)

// Server implements the WatchdogService gRPC API.
type Server struct {
	// service provides the business logic for watchdog operations.
	service Service
}

// NewServer wires the provided service implementation into a gRPC handler.
func NewServer(service Service) *Server {
	return &Server{
		service: service,
	}
}

// Kick restarts the countdown on behalf of the calling actor.
func (s *Server) Kick(ctx context.Context, actor *pb.SystemActor) (*pb.WatchdogStatus, error) {
	if actor == nil {
		return nil, status.Error(codes.InvalidArgument, "actor is required")
	}

	if actor.GetHostname() == "" && actor.GetUsername() == "" {
		return nil, status.Error(codes.InvalidArgument, "actor must name a host or a user")
	}

	result, err := s.service.Kick(ctx, ToDomainActor(actor))
	if err != nil {
		return nil, status.Error(codes.Internal, "unable to record kick")
	}

	return ToProtoStatus(result), nil
}

// GetStatus returns the current state of the switch.
func (s *Server) GetStatus(ctx context.Context) (*pb.WatchdogStatus, error) {
	return ToProtoStatus(s.service.Status(ctx)), nil
}

// ToDomainActor converts a wire actor to a domain Actor.
func ToDomainActor(actor *pb.SystemActor) *domain.Actor {
	if actor == nil {
		return nil
	}

	return &domain.Actor{
		Hostname: actor.GetHostname(),
		Username: actor.GetUsername(),
	}
}

// ToProtoActor converts a domain Actor to a wire actor.
func ToProtoActor(actor *domain.Actor) *pb.SystemActor {
	if actor == nil {
		return nil
	}

	return &pb.SystemActor{
		Hostname: actor.Hostname,
		Username: actor.Username,
	}
}

// ToProtoStatus converts a domain Status to the wire status.
func ToProtoStatus(state *domain.Status) *pb.WatchdogStatus {
	if state == nil {
		return new(pb.WatchdogStatus)
	}

	result := &pb.WatchdogStatus{
		Expired:      state.Expired,
		ExpiredCount: state.ExpiredCount,
		Countdown:    state.Countdown,
		SleptTime:    state.SleptTime,
	}

	if kick := state.LastKick; kick != nil {
		result.LastKick = &pb.KickInfo{
			ID:        kick.ID,
			Timestamp: kick.Timestamp,
			Actor:     ToProtoActor(kick.Actor),
		}
	}

	return result
}

// ToDomainStatus converts a wire status to a domain Status.
func ToDomainStatus(state *pb.WatchdogStatus) *domain.Status {
	if state == nil {
		return nil
	}

	result := &domain.Status{
		Expired:      state.Expired,
		ExpiredCount: state.ExpiredCount,
		Countdown:    state.Countdown,
		SleptTime:    state.SleptTime,
	}

	if kick := state.GetLastKick(); kick != nil {
		result.LastKick = &domain.Kick{
			ID:        kick.ID,
			Timestamp: kick.Timestamp,
			Actor:     ToDomainActor(kick.GetActor()),
		}
	}

	return result
}
