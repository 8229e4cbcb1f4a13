package dispatch

import (
	"context"
	"errors"
	"sync/atomic"
)

// ErrNotHandled means the receiver produced no response for the request.
var ErrNotHandled = errors.New("request not handled")

// Caller delivers a request and returns its response, or ErrNotHandled.
type Caller interface {
	Call(ctx context.Context, req *Request) (*Response, error)
}

// BridgeCaller sends requests through an in-process Bridge.
type BridgeCaller struct {
	b *Bridge
}

func NewBridgeCaller(b *Bridge) *BridgeCaller {
	return &BridgeCaller{b: b}
}

// Call waits for the completion. If ctx ends first the request still runs
// to completion on the worker; only the wait is abandoned.
func (c *BridgeCaller) Call(ctx context.Context, req *Request) (*Response, error) {
	done, err := c.b.Send(req)
	if err != nil {
		return nil, err
	}
	select {
	case comp := <-done:
		if comp.Response == nil {
			return nil, ErrNotHandled
		}
		return comp.Response, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Client numbers requests and decodes results.
type Client struct {
	c  Caller
	id atomic.Int64
}

func NewClient(c Caller) *Client {
	return &Client{c: c}
}

// Do calls method with params and decodes the result into out (which may
// be nil). ok is false when the result was null. Store failures come back
// as *common.Error.
func (cl *Client) Do(ctx context.Context, method string, params, out any) (ok bool, err error) {
	req, err := NewRequest(cl.id.Add(1), method, params)
	if err != nil {
		return false, err
	}
	resp, err := cl.c.Call(ctx, req)
	if err != nil {
		return false, err
	}
	if resp.Error != nil {
		return false, resp.Error.Err()
	}
	if resp.IsNull() {
		return false, nil
	}
	if err := resp.Decode(out); err != nil {
		return false, err
	}
	return true, nil
}
