package watchdogv1

import (
	"context"
	"fmt"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
)

// Fully-qualified names of the service and its methods.
const (
	WatchdogServiceName         = "alarmclock.v1.WatchdogService"
	WatchdogServiceKickMethod   = "/" + WatchdogServiceName + "/Kick"
	WatchdogServiceStatusMethod = "/" + WatchdogServiceName + "/GetStatus"
)

// WatchdogServiceClient is the client API for WatchdogService.
type WatchdogServiceClient interface {
	// Kick resets the countdown on behalf of actor.
	Kick(ctx context.Context, actor *SystemActor, opts ...grpc.CallOption) (*WatchdogStatus, error)
	// GetStatus returns the current state of the switch.
	GetStatus(ctx context.Context, opts ...grpc.CallOption) (*WatchdogStatus, error)
}

type watchdogServiceClient struct {
	cc grpc.ClientConnInterface
}

// NewWatchdogServiceClient creates a client on top of cc.
func NewWatchdogServiceClient(cc grpc.ClientConnInterface) WatchdogServiceClient { //nolint:ireturn // Mirrors generated clients.
	return &watchdogServiceClient{cc: cc}
}

func (c *watchdogServiceClient) Kick(
	ctx context.Context,
	actor *SystemActor,
	opts ...grpc.CallOption,
) (*WatchdogStatus, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, WatchdogServiceKickMethod, actor.ToStruct(), out, opts...); err != nil {
		return nil, err
	}

	return WatchdogStatusFromStruct(out)
}

func (c *watchdogServiceClient) GetStatus(ctx context.Context, opts ...grpc.CallOption) (*WatchdogStatus, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, WatchdogServiceStatusMethod, new(emptypb.Empty), out, opts...); err != nil {
		return nil, err
	}

	return WatchdogStatusFromStruct(out)
}

// WatchdogServiceServer is the server API for WatchdogService.
type WatchdogServiceServer interface {
	Kick(ctx context.Context, actor *SystemActor) (*WatchdogStatus, error)
	GetStatus(ctx context.Context) (*WatchdogStatus, error)
}

// RegisterWatchdogServiceServer registers srv on s.
func RegisterWatchdogServiceServer(s grpc.ServiceRegistrar, srv WatchdogServiceServer) {
	s.RegisterService(&WatchdogServiceDesc, srv)
}

// WatchdogServiceDesc is the grpc.ServiceDesc for WatchdogService.
//
//nolint:gochecknoglobals // grpc.ServiceRegistrar takes the descriptor by pointer.
var WatchdogServiceDesc = grpc.ServiceDesc{
	ServiceName: WatchdogServiceName,
	HandlerType: (*WatchdogServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "Kick",
			Handler:    kickHandler,
		},
		{
			MethodName: "GetStatus",
			Handler:    getStatusHandler,
		},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "alarmclock/v1/watchdog",
}

func kickHandler(
	srv any,
	ctx context.Context, //nolint:revive // Argument order is fixed by grpc.MethodHandler.
	dec func(any) error,
	interceptor grpc.UnaryServerInterceptor,
) (any, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}

	handler := func(ctx context.Context, req any) (any, error) {
		request, ok := req.(*structpb.Struct)
		if !ok {
			return nil, fmt.Errorf("%w: unexpected request %T", ErrMalformedMessage, req)
		}

		status, err := srv.(WatchdogServiceServer).Kick(ctx, SystemActorFromStruct(request))
		if err != nil {
			return nil, err
		}

		return status.ToStruct(), nil
	}

	if interceptor == nil {
		return handler(ctx, in)
	}

	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: WatchdogServiceKickMethod,
	}

	return interceptor(ctx, in, info, handler)
}

func getStatusHandler(
	srv any,
	ctx context.Context, //nolint:revive // Argument order is fixed by grpc.MethodHandler.
	dec func(any) error,
	interceptor grpc.UnaryServerInterceptor,
) (any, error) {
	in := new(emptypb.Empty)
	if err := dec(in); err != nil {
		return nil, err
	}

	handler := func(ctx context.Context, _ any) (any, error) {
		status, err := srv.(WatchdogServiceServer).GetStatus(ctx)
		if err != nil {
			return nil, err
		}

		return status.ToStruct(), nil
	}

	if interceptor == nil {
		return handler(ctx, in)
	}

	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: WatchdogServiceStatusMethod,
	}

	return interceptor(ctx, in, info, handler)
}
