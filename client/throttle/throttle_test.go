package throttle

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestNew_Validation(t *testing.T) {
	testCases := []struct {
		name   string
		rps    int
		burst  int
		expErr error
	}{
		{name: "Invalid RPS (zero)", rps: 0, burst: 10, expErr: ErrMustNotBeZero},
		{name: "Invalid RPS (negative)", rps: -5, burst: 10, expErr: ErrMustNotBeZero},
		{name: "Invalid Burst (zero)", rps: 10, burst: 0, expErr: ErrMustNotBeZero},
		{name: "Invalid Burst (negative)", rps: 10, burst: -5, expErr: ErrMustNotBeZero},
		{name: "Valid input", rps: 10, burst: 20},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			l, err := New(tc.rps, tc.burst, nil)

			if tc.expErr != nil {
				if !errors.Is(err, tc.expErr) {
					t.Errorf("exp err %v; got: %v", tc.expErr, err)
				}
				return
			}

			if err != nil {
				t.Errorf("exp nil err, got: %v", err)
			}
			if l == nil {
				t.Error("exp non-nil Limiter")
			}
		})
	}
}

func newCountingServer(t *testing.T) (*httptest.Server, *int32) {
	t.Helper()

	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusOK)
	}))
	t.Cleanup(srv.Close)

	return srv, &calls
}

func do(ctx context.Context, rt http.RoundTripper, url string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}

	resp, err := (&http.Client{Transport: rt}).Do(req)
	if err != nil {
		return err
	}

	return resp.Body.Close()
}

func TestLimiter_SharedAcrossTransports(t *testing.T) {
	srv, calls := newCountingServer(t)

	l, err := New(10, 2, func() *slog.Logger { return nil })
	if err != nil {
		t.Fatal(err)
	}

	// Each request goes through a fresh transport, as with per call
	// transports; the bucket must still be shared.
	start := time.Now()
	for i := range 4 {
		tr := &http.Transport{}
		if err := do(context.Background(), l.Wrap(tr), srv.URL); err != nil {
			t.Fatalf("request %d: %v", i, err)
		}
		tr.CloseIdleConnections()
	}
	elapsed := time.Since(start)

	// 2 use burst, 2 wait 100ms each.
	if min := 150 * time.Millisecond; elapsed < min {
		t.Errorf("exp shared bucket to slow requests to >= %v, took %v", min, elapsed)
	}
	if got := atomic.LoadInt32(calls); got != 4 {
		t.Errorf("exp 4 server calls, got %d", got)
	}
}

func TestThrottleRoundTripper_Behavior(t *testing.T) {
	testCases := []struct {
		name          string
		rps           int
		burst         int
		numRequests   int
		reqTimeout    time.Duration
		preCancel     bool
		expectReqErrs int
		expErrs       []error
		maxDuration   time.Duration
		minDuration   time.Duration
	}{
		{
			name:        "High Limits - Concurrent Load",
			rps:         10000,
			burst:       100,
			numRequests: 50,
			maxDuration: 500 * time.Millisecond,
		},
		{
			name:          "Low Limit - Exceed Burst & Timeout Waiting",
			rps:           5,
			burst:         2,
			numRequests:   5,
			reqTimeout:    50 * time.Millisecond,
			expectReqErrs: 3,
			expErrs:       []error{ErrWaitingFailed},
		},
		{
			name:        "Low Limit - Exceed Burst - Succeed Waiting",
			rps:         10,
			burst:       5,
			numRequests: 8,
			reqTimeout:  500 * time.Millisecond,
			// (8-5) calls / 10 RPS
			minDuration: 300 * time.Millisecond,
		},
		{
			name:          "Pre-Cancelled Context Fails Early",
			rps:           20,
			burst:         10,
			numRequests:   1,
			preCancel:     true,
			expectReqErrs: 1,
			expErrs:       []error{ErrContextEnded, context.Canceled},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			srv, calls := newCountingServer(t)

			rt, err := NewRoundTripper(tc.rps, tc.burst, nil, http.DefaultTransport)
			if err != nil {
				t.Fatal(err)
			}

			var wg sync.WaitGroup
			errs := make([]error, tc.numRequests)

			start := time.Now()
			for i := range tc.numRequests {
				wg.Add(1)
				go func(idx int) {
					defer wg.Done()

					ctx := context.Background()
					if tc.reqTimeout > 0 {
						var cancel context.CancelFunc
						ctx, cancel = context.WithTimeout(ctx, tc.reqTimeout)
						defer cancel()
					}
					if tc.preCancel {
						var cancel context.CancelFunc
						ctx, cancel = context.WithCancel(ctx)
						cancel()
					}

					errs[idx] = do(ctx, rt, srv.URL)
				}(i)
			}
			wg.Wait()
			duration := time.Since(start)

			var failed int
			for i, err := range errs {
				if err == nil {
					continue
				}
				failed++
				t.Logf("request %d failed with: %v", i, err)
				for _, exp := range tc.expErrs {
					if !errors.Is(err, exp) {
						t.Errorf("exp err to wrap %v, got: %v", exp, err)
					}
				}
			}

			if failed != tc.expectReqErrs {
				t.Errorf("exp %d failed requests; got %d", tc.expectReqErrs, failed)
			}
			if exp, got := int32(tc.numRequests-failed), atomic.LoadInt32(calls); exp != got {
				t.Errorf("exp %d server calls, got %d", exp, got)
			}
			if tc.maxDuration > 0 && duration > tc.maxDuration {
				t.Errorf("should be fast (< %v); took %v", tc.maxDuration, duration)
			}
			if tc.minDuration > 0 && duration < tc.minDuration {
				t.Errorf("should be slowed down (>= %v); took %v", tc.minDuration, duration)
			}
		})
	}
}
