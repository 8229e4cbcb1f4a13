package grpc

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/dmitrijs2005/walletkeeper/internal/common"
)

// DispatcherServer is the single unary RPC: one JSON-RPC envelope in, one
// response envelope out, both carried as google.protobuf.Struct.
type DispatcherServer interface {
	Call(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error)
}

func callHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(DispatcherServer).Call(ctx, in)
	}
	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: common.DispatcherCallMethod,
	}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(DispatcherServer).Call(ctx, req.(*structpb.Struct))
	}
	return interceptor(ctx, in, info, handler)
}

// ServiceDesc describes walletkeeper.v1.Dispatcher for grpc.Server.
var ServiceDesc = grpc.ServiceDesc{
	ServiceName: common.DispatcherService,
	HandlerType: (*DispatcherServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "Call",
			Handler:    callHandler,
		},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "walletkeeper/v1/dispatcher.proto",
}

func RegisterDispatcherServer(s grpc.ServiceRegistrar, srv DispatcherServer) {
	s.RegisterService(&ServiceDesc, srv)
}
