package grpc

import (
	"context"
	"errors"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	"github.com/dmitrijs2005/walletkeeper/internal/common"
	"github.com/dmitrijs2005/walletkeeper/internal/server/auth"
)

type ctxKey string

const clientIDKey ctxKey = "clientID"

// ClientID returns the token subject attached by the interceptor.
func ClientID(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(clientIDKey).(string)
	return id, ok
}

func (s *Server) accessTokenInterceptor(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
	var accessToken string
	if md, ok := metadata.FromIncomingContext(ctx); ok {
		values := md.Get(common.AccessTokenHeaderName)
		if len(values) > 0 {
			accessToken = values[0]
		}
	}
	if len(accessToken) == 0 {
		return nil, status.Error(codes.Unauthenticated, "missing token")
	}

	clientID, err := auth.ValidateToken(accessToken, s.jwtSecret)
	if err != nil {
		if errors.Is(err, auth.ErrTokenExpired) {
			return nil, status.Error(codes.Unauthenticated, auth.ErrTokenExpired.Error())
		}
		s.logger.Warn(ctx, "rejected access token", "method", info.FullMethod)
		return nil, status.Error(codes.Unauthenticated, auth.ErrTokenInvalid.Error())
	}

	ctx = context.WithValue(ctx, clientIDKey, clientID)

	return handler(ctx, req)
}
