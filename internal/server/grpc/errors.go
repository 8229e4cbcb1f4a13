package grpc

import (
	"errors"

	"google.golang.org/genproto/googleapis/rpc/errdetails"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/dmitrijs2005/walletkeeper/internal/common"
	"github.com/dmitrijs2005/walletkeeper/internal/dispatch"
)

// FieldMetadataKey names the ErrorInfo metadata entry holding the missing
// builder field.
const FieldMetadataKey = "field"

func codeFor(kind common.Kind) codes.Code {
	switch kind {
	case common.KindNotAuthenticated:
		return codes.Unauthenticated
	case common.KindAuthenticationFailed, common.KindInvalidTotp:
		return codes.PermissionDenied
	case common.KindPrimaryAlreadyExists:
		return codes.AlreadyExists
	case common.KindSignupNotStarted, common.KindIncompleteBuilder, common.KindAlreadyBuilt:
		return codes.FailedPrecondition
	case common.KindNotFound:
		return codes.NotFound
	case common.KindInvalidWordCount, common.KindInvalidParams:
		return codes.InvalidArgument
	case common.KindRateLimited:
		return codes.ResourceExhausted
	case common.KindNotImplemented:
		return codes.Unimplemented
	default:
		return codes.Internal
	}
}

// statusFromRPCError turns a failed response into a status whose ErrorInfo
// reason is the failure kind.
func statusFromRPCError(e *dispatch.RPCError) error {
	ce := &common.Error{Kind: common.KindInternal}
	errors.As(e.Err(), &ce)

	st := status.New(codeFor(ce.Kind), e.Message)

	info := &errdetails.ErrorInfo{
		Reason: string(ce.Kind),
		Domain: common.ErrorDomain,
	}
	if ce.Field != "" {
		info.Metadata = map[string]string{FieldMetadataKey: ce.Field}
	}

	if withDetails, err := st.WithDetails(info); err == nil {
		st = withDetails
	}
	return st.Err()
}
