// Package common contains shared constants, error kinds and small helpers used
// across walletkeeper components.
package common

const (
	// AccessTokenHeaderName is the gRPC metadata key used to carry the
	// access token on outbound requests.
	AccessTokenHeaderName = "access_token"

	// DispatcherService is the fully qualified gRPC service name of the
	// remote command dispatcher.
	DispatcherService = "walletkeeper.v1.Dispatcher"

	// DispatcherCallMethod is the full method path of the single unary RPC
	// carrying JSON-RPC envelopes.
	DispatcherCallMethod = "/" + DispatcherService + "/Call"

	// ErrorDomain is reported in ErrorInfo details of transport errors.
	ErrorDomain = "walletkeeper"
)
