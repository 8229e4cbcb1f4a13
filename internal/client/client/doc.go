// Package client talks to a remote walletkeeper server.
//
// GRPCCaller implements dispatch.Caller over the single Dispatcher/Call RPC,
// so front ends drive a remote store exactly as they drive the in-process
// bridge. The access token is attached by a unary interceptor.
//
// Store failures come back as failed responses carrying their kind, read
// from the ErrorInfo status detail. Transport conditions are exposed as
// sentinel errors: ErrUnavailable, ErrUnauthorized.
package client
