package session

import (
	"context"

	"chatcal/pkg/calendar"
)

// Result is the outcome of one extraction request.
type Result struct {
	Token     uint64
	Candidate calendar.Event
	Err       error
}

// Request is a pending extraction. It completes exactly once.
type Request struct {
	token  uint64
	done   chan struct{}
	result Result
	cancel context.CancelFunc
}

func newRequest(token uint64, cancel context.CancelFunc) *Request {
	return &Request{
		token:  token,
		done:   make(chan struct{}),
		cancel: cancel,
	}
}

// Token identifies the request within its session.
func (r *Request) Token() uint64 {
	return r.token
}

// Done is closed once the result is available.
func (r *Request) Done() <-chan struct{} {
	return r.done
}

// Result returns the outcome without blocking. ok is false while the
// request is still running.
func (r *Request) Result() (res Result, ok bool) {
	select {
	case <-r.done:
		return r.result, true
	default:
		return Result{}, false
	}
}

// Wait blocks until the request completes or ctx is done.
func (r *Request) Wait(ctx context.Context) (Result, error) {
	select {
	case <-r.done:
		return r.result, nil
	case <-ctx.Done():
		return Result{}, ctx.Err()
	}
}

func (r *Request) complete(res Result) {
	r.result = res
	close(r.done)
}
