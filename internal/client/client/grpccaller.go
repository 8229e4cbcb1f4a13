package client

import (
	"context"
	"encoding/json"
	"fmt"

	"google.golang.org/genproto/googleapis/rpc/errdetails"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/dmitrijs2005/walletkeeper/internal/common"
	"github.com/dmitrijs2005/walletkeeper/internal/dispatch"
)

// FieldMetadataKey mirrors the server's ErrorInfo metadata key.
const FieldMetadataKey = "field"

type GRPCCaller struct {
	endpointURL string
	conn        *grpc.ClientConn
	accessToken string
}

func withAccessToken(ctx context.Context, token string) context.Context {
	md, _ := metadata.FromOutgoingContext(ctx)
	md = md.Copy()
	if md == nil {
		md = metadata.MD{}
	}
	md.Delete(common.AccessTokenHeaderName)
	md.Set(common.AccessTokenHeaderName, token)

	return metadata.NewOutgoingContext(ctx, md)
}

func (c *GRPCCaller) accessTokenInterceptor(
	ctx context.Context,
	method string,
	req, reply any,
	cc *grpc.ClientConn,
	invoker grpc.UnaryInvoker,
	opts ...grpc.CallOption,
) error {
	return invoker(withAccessToken(ctx, c.accessToken), method, req, reply, cc, opts...)
}

// NewGRPCCaller prepares a connection to endpointURL. No network traffic
// happens until the first call. Extra options are appended to the defaults
// (plaintext transport, token interceptor).
func NewGRPCCaller(endpointURL, accessToken string, opts ...grpc.DialOption) (*GRPCCaller, error) {
	c := &GRPCCaller{endpointURL: endpointURL, accessToken: accessToken}

	dialOpts := append([]grpc.DialOption{
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithUnaryInterceptor(c.accessTokenInterceptor),
	}, opts...)

	conn, err := grpc.NewClient(endpointURL, dialOpts...)
	if err != nil {
		return nil, err
	}
	c.conn = conn
	return c, nil
}

func (c *GRPCCaller) Close() error {
	return c.conn.Close()
}

// Call sends req and returns the server's response. A failed store call is
// returned as a response with Error set, not as err.
func (c *GRPCCaller) Call(ctx context.Context, req *dispatch.Request) (*dispatch.Response, error) {
	raw, err := json.Marshal(req)
	if err != nil {
		return nil, err
	}
	in := &structpb.Struct{}
	if err := in.UnmarshalJSON(raw); err != nil {
		return nil, fmt.Errorf("encode envelope: %w", err)
	}

	out := &structpb.Struct{}
	if err := c.conn.Invoke(ctx, common.DispatcherCallMethod, in, out); err != nil {
		return c.mapError(req, err)
	}

	if req.IsNotification() || len(out.GetFields()) == 0 {
		return nil, dispatch.ErrNotHandled
	}

	encoded, err := out.MarshalJSON()
	if err != nil {
		return nil, fmt.Errorf("decode envelope: %w", err)
	}
	resp := &dispatch.Response{}
	if err := json.Unmarshal(encoded, resp); err != nil {
		return nil, fmt.Errorf("decode envelope: %w", err)
	}
	return resp, nil
}

func errorInfo(st *status.Status) *errdetails.ErrorInfo {
	for _, d := range st.Details() {
		if info, ok := d.(*errdetails.ErrorInfo); ok && info.GetDomain() == common.ErrorDomain {
			return info
		}
	}
	return nil
}

func (c *GRPCCaller) mapError(req *dispatch.Request, err error) (*dispatch.Response, error) {
	st, ok := status.FromError(err)
	if !ok {
		return nil, fmt.Errorf("rpc error: %w", err)
	}

	if info := errorInfo(st); info != nil {
		kind := common.Kind(info.GetReason())
		code := dispatch.CodeServerError
		switch kind {
		case common.KindInvalidParams:
			code = dispatch.CodeInvalidParams
		case common.KindInternal:
			code = dispatch.CodeInternalError
		}
		return &dispatch.Response{
			JSONRPC: dispatch.Version,
			ID:      req.ID,
			Error: &dispatch.RPCError{
				Code:    code,
				Message: st.Message(),
				Data:    &dispatch.ErrorData{Kind: kind, Field: info.GetMetadata()[FieldMetadataKey]},
			},
		}, nil
	}

	switch st.Code() {
	case codes.Unimplemented:
		return nil, dispatch.ErrNotHandled
	case codes.Unauthenticated:
		return nil, fmt.Errorf("%w: %s", ErrUnauthorized, st.Message())
	case codes.Unavailable, codes.DeadlineExceeded:
		return nil, ErrUnavailable
	default:
		return nil, fmt.Errorf("rpc error: %w", err)
	}
}
