// Package dispatch maps JSON-RPC 2.0 requests onto the user store and
// ferries them from a front end to a single worker goroutine.
//
// A request naming an unknown method produces no response at all; callers
// treat that as "not handled", which is different from a failure.
package dispatch

import (
	"bytes"
	"encoding/json"
	"errors"

	"github.com/dmitrijs2005/walletkeeper/internal/common"
)

const Version = "2.0"

// JSON-RPC error codes.
const (
	CodeParseError     = -32700
	CodeInvalidRequest = -32600
	CodeInvalidParams  = -32602
	CodeInternalError  = -32603
	// CodeServerError is used for every store failure; the kind travels in
	// the error data.
	CodeServerError = -32000
)

// Request is a JSON-RPC request. A request without ID is a notification.
type Request struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id,omitempty"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
}

// NewRequest builds a request with a numeric id. params may be nil.
func NewRequest(id int64, method string, params any) (*Request, error) {
	req := &Request{JSONRPC: Version, Method: method}
	rawID, err := json.Marshal(id)
	if err != nil {
		return nil, err
	}
	req.ID = rawID
	if params != nil {
		raw, err := json.Marshal(params)
		if err != nil {
			return nil, err
		}
		req.Params = raw
	}
	return req, nil
}

// IsNotification reports whether the request expects no response.
func (r *Request) IsNotification() bool {
	return len(r.ID) == 0 || bytes.Equal(r.ID, []byte("null"))
}

// ErrorData carries the failure kind of a store error.
type ErrorData struct {
	Kind  common.Kind `json:"kind"`
	Field string      `json:"field,omitempty"`
}

// RPCError is the error member of a response.
type RPCError struct {
	Code    int        `json:"code"`
	Message string     `json:"message"`
	Data    *ErrorData `json:"data,omitempty"`
}

func (e *RPCError) Error() string { return e.Message }

// Err converts the wire error back into a common.Error.
func (e *RPCError) Err() error {
	kind := common.KindInternal
	field := ""
	switch {
	case e.Data != nil:
		kind, field = e.Data.Kind, e.Data.Field
	case e.Code == CodeInvalidParams || e.Code == CodeInvalidRequest || e.Code == CodeParseError:
		kind = common.KindInvalidParams
	}
	return &common.Error{Kind: kind, Msg: e.Message, Field: field}
}

// Response is a JSON-RPC response. Exactly one of Result and Error is
// meaningful; a nil Result on success encodes as null.
type Response struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id"`
	Result  json.RawMessage `json:"result,omitempty"`
	Error   *RPCError       `json:"error,omitempty"`
}

type responseWire struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id"`
	Result  json.RawMessage `json:"result"`
}

func (r *Response) MarshalJSON() ([]byte, error) {
	id := r.ID
	if len(id) == 0 {
		id = json.RawMessage("null")
	}
	if r.Error != nil {
		type plain Response
		p := plain(*r)
		p.ID, p.Result = id, nil
		return json.Marshal(p)
	}
	result := r.Result
	if len(result) == 0 {
		result = json.RawMessage("null")
	}
	return json.Marshal(responseWire{JSONRPC: r.JSONRPC, ID: id, Result: result})
}

// Decode unmarshals the result into v. A failed response returns its error
// as a common.Error.
func (r *Response) Decode(v any) error {
	if r.Error != nil {
		return r.Error.Err()
	}
	if v == nil || len(r.Result) == 0 {
		return nil
	}
	return json.Unmarshal(r.Result, v)
}

// IsNull reports whether a successful response carries a null result.
func (r *Response) IsNull() bool {
	return r.Error == nil && (len(r.Result) == 0 || bytes.Equal(r.Result, []byte("null")))
}

func resultResponse(id json.RawMessage, v any) *Response {
	raw, err := json.Marshal(v)
	if err != nil {
		return errorResponse(id, common.NewError(common.KindInternal, "encode result", err))
	}
	return &Response{JSONRPC: Version, ID: id, Result: raw}
}

func errorResponse(id json.RawMessage, err error) *Response {
	return &Response{JSONRPC: Version, ID: id, Error: toRPCError(err)}
}

func toRPCError(err error) *RPCError {
	var rpcErr *RPCError
	if errors.As(err, &rpcErr) {
		return rpcErr
	}

	kind := common.KindOf(err)
	e := &RPCError{
		Code:    CodeServerError,
		Message: err.Error(),
		Data:    &ErrorData{Kind: kind},
	}

	var ce *common.Error
	if errors.As(err, &ce) {
		e.Data.Field = ce.Field
	}

	switch kind {
	case common.KindInvalidParams:
		e.Code = CodeInvalidParams
	case common.KindInternal:
		e.Code = CodeInternalError
	}
	return e
}
