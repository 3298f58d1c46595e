// Package throttle provides a token-bucket rate limiter for outbound
// HTTP requests, built on [golang.org/x/time/rate].
//
// # Usage
//
// A [Limiter] is created once and can wrap any number of transports;
// all of them draw from the same bucket:
//
//	l, err := throttle.New(
//		10, // requests per second
//		5,  // burst capacity
//		func() *slog.Logger { return slog.Default() },
//	)
//	httpClient := &http.Client{Transport: l.Wrap(http.DefaultTransport)}
//
// [NewRoundTripper] is a shorthand for a single transport with its own
// bucket.
//
// When the rate limit is exceeded, outbound requests block until a
// token becomes available or the request context is cancelled.
package throttle
