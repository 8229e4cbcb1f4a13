package grpc

import (
	"context"
	"testing"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	"github.com/dmitrijs2005/walletkeeper/internal/common"
	"github.com/dmitrijs2005/walletkeeper/internal/logging"
	"github.com/dmitrijs2005/walletkeeper/internal/server/auth"
)

func newTestServer(secret string) *Server {
	return NewServer("127.0.0.1:0", nil, []byte(secret), logging.Nop{})
}

var callInfo = &grpc.UnaryServerInfo{FullMethod: common.DispatcherCallMethod}

func withToken(token string) context.Context {
	md := metadata.New(map[string]string{common.AccessTokenHeaderName: token})
	return metadata.NewIncomingContext(context.Background(), md)
}

func TestInterceptor_MissingToken(t *testing.T) {
	s := newTestServer("secret")

	h := func(ctx context.Context, req any) (any, error) {
		t.Fatal("handler should not be called when token missing")
		return nil, nil
	}

	_, err := s.accessTokenInterceptor(context.Background(), nil, callInfo, h)
	if status.Code(err) != codes.Unauthenticated {
		t.Fatalf("expected Unauthenticated, got %v", status.Code(err))
	}
	if status.Convert(err).Message() != "missing token" {
		t.Fatalf("expected 'missing token', got %q", status.Convert(err).Message())
	}
}

func TestInterceptor_InvalidToken(t *testing.T) {
	s := newTestServer("secret")

	h := func(ctx context.Context, req any) (any, error) {
		t.Fatal("handler should not be called for invalid token")
		return nil, nil
	}

	_, err := s.accessTokenInterceptor(withToken("not-a-valid-jwt"), nil, callInfo, h)
	if status.Code(err) != codes.Unauthenticated {
		t.Fatalf("expected Unauthenticated, got %v", status.Code(err))
	}
	if status.Convert(err).Message() != auth.ErrTokenInvalid.Error() {
		t.Fatalf("unexpected message %q", status.Convert(err).Message())
	}
}

func TestInterceptor_ExpiredToken(t *testing.T) {
	s := newTestServer("secret")

	token, err := auth.GenerateToken("cli", []byte("secret"), -time.Minute)
	if err != nil {
		t.Fatalf("GenerateToken error: %v", err)
	}

	h := func(ctx context.Context, req any) (any, error) {
		t.Fatal("handler should not be called for expired token")
		return nil, nil
	}

	_, err = s.accessTokenInterceptor(withToken(token), nil, callInfo, h)
	if status.Convert(err).Message() != auth.ErrTokenExpired.Error() {
		t.Fatalf("expected expiry message, got %v", err)
	}
}

func TestInterceptor_ValidToken_SetsClientID(t *testing.T) {
	secret := "super-secret"
	s := newTestServer(secret)

	token, err := auth.GenerateToken("cli-7", []byte(secret), time.Hour)
	if err != nil {
		t.Fatalf("GenerateToken error: %v", err)
	}

	var got string
	h := func(ctx context.Context, req any) (any, error) {
		got, _ = ClientID(ctx)
		return "ok", nil
	}

	resp, err := s.accessTokenInterceptor(withToken(token), nil, callInfo, h)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp != "ok" {
		t.Fatalf("unexpected handler resp: %v", resp)
	}
	if got != "cli-7" {
		t.Fatalf("client id not propagated in context: got %q", got)
	}
}
