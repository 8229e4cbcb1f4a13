package dispatch

import (
	"context"
	"errors"
	"sync"

	"github.com/dmitrijs2005/walletkeeper/internal/logging"
)

// ErrBridgeClosed is returned by Send after Close.
var ErrBridgeClosed = errors.New("bridge is closed")

// Handler executes one request. A nil response means "not handled".
type Handler interface {
	Handle(ctx context.Context, req *Request) *Response
}

// Completion is the outcome of one bridged request. Response is nil when
// the request was not handled.
type Completion struct {
	Response *Response
}

type job struct {
	req  *Request
	done chan Completion
}

// Bridge runs requests on one worker goroutine, away from the front end.
// Requests run to completion in arrival order; there is no cancellation.
type Bridge struct {
	h    Handler
	log  logging.Logger
	jobs chan job

	mu     sync.RWMutex
	closed bool
	wg     sync.WaitGroup
}

// NewBridge starts the worker. queue is the number of requests that may
// wait before Send blocks.
func NewBridge(h Handler, queue int, log logging.Logger) *Bridge {
	b := &Bridge{
		h:    h,
		log:  log.With("module", "bridge"),
		jobs: make(chan job, queue),
	}
	b.wg.Add(1)
	go b.run()
	return b
}

func (b *Bridge) run() {
	defer b.wg.Done()
	// commands are not cancellable once dispatched
	ctx := context.Background()
	for j := range b.jobs {
		j.done <- Completion{Response: b.h.Handle(ctx, j.req)}
		close(j.done)
	}
}

// Send queues req and returns a channel receiving exactly one Completion.
func (b *Bridge) Send(req *Request) (<-chan Completion, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.closed {
		return nil, ErrBridgeClosed
	}

	done := make(chan Completion, 1)
	b.jobs <- job{req: req, done: done}
	return done, nil
}

// Close stops accepting requests and waits for queued ones to finish.
func (b *Bridge) Close() {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return
	}
	b.closed = true
	close(b.jobs)
	b.mu.Unlock()

	b.wg.Wait()
	b.log.Debug(context.Background(), "bridge closed")
}
