package client

import (
	"context"
	"errors"
	"fmt"
	"net/http/httptrace"
	"sync"
	"time"
)

// withHardTimeout bounds the whole call, body read included, by d.
func withHardTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeoutCause(ctx, d, ErrHardTimeout)
}

// withConnectionRequestTimeout cancels the returned context with
// [ErrConnectionRequestTimeout] when a connection is requested but
// neither reused nor being dialed within d. A non-positive d disables
// the bound. The returned func must be called once the call is done.
func withConnectionRequestTimeout(ctx context.Context, d time.Duration) (context.Context, func()) {
	ctx, cancel := context.WithCancelCause(ctx)
	if d <= 0 {
		return ctx, func() { cancel(nil) }
	}

	var (
		mu    sync.Mutex
		timer *time.Timer
	)
	disarm := func() {
		mu.Lock()
		defer mu.Unlock()
		if timer != nil {
			timer.Stop()
			timer = nil
		}
	}

	trace := &httptrace.ClientTrace{
		GetConn: func(string) {
			mu.Lock()
			defer mu.Unlock()
			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(d, func() { cancel(ErrConnectionRequestTimeout) })
		},
		GotConn:      func(httptrace.GotConnInfo) { disarm() },
		DNSStart:     func(httptrace.DNSStartInfo) { disarm() },
		ConnectStart: func(string, string) { disarm() },
	}

	stop := func() {
		disarm()
		cancel(nil)
	}

	return httptrace.WithClientTrace(ctx, trace), stop
}

// classify refines kind using the cancellation cause recorded on ctx.
func classify(ctx context.Context, kind Kind, err error) (Kind, error) {
	cause := context.Cause(ctx)
	switch {
	case cause == nil:
		return kind, err
	case errors.Is(cause, ErrConnectionRequestTimeout):
		return KindTransport, fmt.Errorf("%w: %w", cause, err)
	case errors.Is(cause, ErrHardTimeout):
		return KindCancelled, fmt.Errorf("%w: %w", cause, err)
	default:
		return KindCancelled, err
	}
}
