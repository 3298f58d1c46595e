package throttle

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"golang.org/x/time/rate"
)

var (
	ErrMustNotBeZero = errors.New("must be greater than zero")
	ErrWaitingFailed = errors.New("limiter waiting failed")
	ErrContextEnded  = errors.New("throttle context ended")
)

// Config defines the throttler's
// Requests Per Second and Burst Rate
type Config struct {
	RPS   int
	Burst int
}

// Limiter is a token bucket that can be shared by any number of round
// trippers, so the rate holds across transports that are created and
// discarded per call.
type Limiter struct {
	limiter *rate.Limiter
	rps     int
	burst   int
	logFn   func() *slog.Logger
}

// New returns a Limiter allowing rps requests per second with the given
// burst. logFn may return nil to disable logging.
func New(rps, burst int, logFn func() *slog.Logger) (*Limiter, error) {
	if rps <= 0 || burst <= 0 {
		return nil, fmt.Errorf("rps[%d] and burst[%d] %w", rps, burst, ErrMustNotBeZero)
	}
	if logFn == nil {
		logFn = func() *slog.Logger { return nil }
	}

	return &Limiter{
		limiter: rate.NewLimiter(rate.Limit(rps), burst),
		rps:     rps,
		burst:   burst,
		logFn:   logFn,
	}, nil
}

// Wrap returns an http.RoundTripper that waits on l before handing the
// request to next.
func (l *Limiter) Wrap(next http.RoundTripper) http.RoundTripper {
	if next == nil {
		next = http.DefaultTransport
	}

	return &throttle{Limiter: l, next: next}
}

// NewRoundTripper wraps next with a dedicated Limiter.
func NewRoundTripper(rps, burst int, logFn func() *slog.Logger, next http.RoundTripper) (http.RoundTripper, error) {
	l, err := New(rps, burst, logFn)
	if err != nil {
		return nil, err
	}

	return l.Wrap(next), nil
}

// throttle is an http.RoundTripper, using the time/rate token
// bucket limiter to restrict outbound calls.
type throttle struct {
	*Limiter
	next http.RoundTripper
}

func (t *throttle) RoundTrip(req *http.Request) (*http.Response, error) {
	ctx := req.Context()

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w early: %w", ErrContextEnded, err)
	}

	if err := t.limiter.Wait(ctx); err != nil {
		if logger := t.logFn(); logger != nil {
			logger.Warn("throttle wait failed", "rps", t.rps, "burst", t.burst, "url", req.URL.Redacted(), "error", err)
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, fmt.Errorf("%w: %w: %w", ErrWaitingFailed, ErrContextEnded, ctxErr)
		}

		return nil, fmt.Errorf("%w: %w", ErrWaitingFailed, err)
	}

	return t.next.RoundTrip(req)
}
