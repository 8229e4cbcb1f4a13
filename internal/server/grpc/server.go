package grpc

import (
	"context"
	"encoding/json"
	"errors"
	"net"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/dmitrijs2005/walletkeeper/internal/dispatch"
	"github.com/dmitrijs2005/walletkeeper/internal/logging"
)

// Server exposes a dispatch.Caller over gRPC.
type Server struct {
	address   string
	caller    dispatch.Caller
	logger    logging.Logger
	jwtSecret []byte
}

func NewServer(address string, caller dispatch.Caller, secretKey []byte, l logging.Logger) *Server {
	return &Server{
		address:   address,
		caller:    caller,
		logger:    l.With("module", "grpc_server"),
		jwtSecret: secretKey,
	}
}

// Run listens on the configured address and serves until ctx is done.
func (s *Server) Run(ctx context.Context) error {
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}
	return s.Serve(ctx, listen)
}

// Serve accepts connections on lis until ctx is done, then stops
// gracefully.
func (s *Server) Serve(ctx context.Context, lis net.Listener) error {
	srv := grpc.NewServer(grpc.ChainUnaryInterceptor(s.accessTokenInterceptor))
	RegisterDispatcherServer(srv, s)

	served := make(chan struct{})
	stopped := make(chan struct{})
	go func() {
		defer close(stopped)
		select {
		case <-ctx.Done():
			s.logger.Info(ctx, "Stopping gRPC server...")
			srv.GracefulStop()
		case <-served:
		}
	}()

	s.logger.Info(ctx, "Starting gRPC server", "address", lis.Addr().String())

	err := srv.Serve(lis)
	close(served)
	<-stopped
	return err
}

// Call decodes the envelope, runs it and encodes the response. Store
// failures become status errors; a method nobody handles is Unimplemented.
func (s *Server) Call(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	raw, err := in.MarshalJSON()
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, "malformed envelope")
	}

	req := &dispatch.Request{}
	if err := json.Unmarshal(raw, req); err != nil {
		return nil, status.Error(codes.InvalidArgument, "malformed envelope")
	}
	if req.Method == "" {
		return nil, status.Error(codes.InvalidArgument, "missing method")
	}
	if req.JSONRPC == "" {
		req.JSONRPC = dispatch.Version
	}

	resp, err := s.caller.Call(ctx, req)
	switch {
	case err == nil:
	case errors.Is(err, dispatch.ErrNotHandled):
		if req.IsNotification() {
			return &structpb.Struct{}, nil
		}
		s.logger.Debug(ctx, "method not handled", "method", req.Method)
		return nil, status.Errorf(codes.Unimplemented, "method %s not handled", req.Method)
	case errors.Is(err, dispatch.ErrBridgeClosed):
		return nil, status.Error(codes.Unavailable, err.Error())
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return nil, status.FromContextError(err).Err()
	default:
		s.logger.Error(ctx, "call failed", "method", req.Method, "error", err)
		return nil, status.Error(codes.Internal, "internal error")
	}

	if resp.Error != nil {
		return nil, statusFromRPCError(resp.Error)
	}

	encoded, err := json.Marshal(resp)
	if err != nil {
		return nil, status.Error(codes.Internal, "encode response")
	}
	out := &structpb.Struct{}
	if err := out.UnmarshalJSON(encoded); err != nil {
		return nil, status.Error(codes.Internal, "encode response")
	}
	return out, nil
}
