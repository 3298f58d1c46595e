package client

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel/trace"

	"github.com/adamwoolhether/xhttp/client/throttle"
)

// Authorizer builds an Authorization header value from credentials.
type Authorizer func(username, password string) string

// Option is a functional option for configuring a [Client] via [Build].
type Option func(*options) error
type options struct {
	logger     *slog.Logger
	tracer     trace.Tracer
	transport  Transport
	authorizer Authorizer
	userAgent  string
	throttle   *throttle.Config
	registerer prometheus.Registerer
}

// WithLogger injects a custom [slog.Logger] into the [Client].
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) error {
		if logger == nil {
			return errors.New("logger must not be nil")
		}
		o.logger = logger
		return nil
	}
}

// WithTracer starts a span per call on the given tracer.
func WithTracer(tracer trace.Tracer) Option {
	return func(o *options) error {
		if tracer == nil {
			return errors.New("tracer must not be nil")
		}
		o.tracer = tracer
		return nil
	}
}

// WithTransport selects the adapter calls execute on. The default is
// [PerCallTransport].
func WithTransport(t Transport) Option {
	return func(o *options) error {
		if t == nil {
			return errors.New("transport must not be nil")
		}
		o.transport = t
		return nil
	}
}

// WithAuthorizer replaces the basic authentication header builder.
func WithAuthorizer(fn Authorizer) Option {
	return func(o *options) error {
		if fn == nil {
			return errors.New("authorizer must not be nil")
		}
		o.authorizer = fn
		return nil
	}
}

// WithUserAgent sets a User-Agent header on every outgoing request.
// Callers may still override it per call.
func WithUserAgent(header string) Option {
	return func(o *options) error {
		o.userAgent = header
		return nil
	}
}

// WithThrottle enables token-bucket rate limiting shared by every call
// made through the [Client].
func WithThrottle(rps, burst int) Option {
	return func(o *options) error {
		if rps <= 0 || burst <= 0 {
			return fmt.Errorf("rps[%d] and burst[%d] %w", rps, burst, throttle.ErrMustNotBeZero)
		}
		o.throttle = &throttle.Config{RPS: rps, Burst: burst}
		return nil
	}
}

// WithMetrics registers call counters and latency histograms on reg.
func WithMetrics(reg prometheus.Registerer) Option {
	return func(o *options) error {
		if reg == nil {
			return errors.New("registerer must not be nil")
		}
		o.registerer = reg
		return nil
	}
}

// CallOption is a functional option for [Client.Query].
type CallOption func(*callOpts) error

type callOpts struct {
	headers  map[string]string
	params   map[string]string
	body     *string
	useBasic bool
	username string
	password string
	jar      http.CookieJar
}

// WithHeaders sets request headers. They are applied after basic
// authentication, so an Authorization entry replaces the computed one.
func WithHeaders(headers map[string]string) CallOption {
	return func(opts *callOpts) error {
		opts.headers = headers
		return nil
	}
}

// WithParams sends params as a URL-form-encoded body on POST and PUT.
// A body set with [WithBody] takes precedence.
func WithParams(params map[string]string) CallOption {
	return func(opts *callOpts) error {
		opts.params = params
		return nil
	}
}

// WithBody sends body verbatim on POST and PUT, replacing any params.
func WithBody(body string) CallOption {
	return func(opts *callOpts) error {
		opts.body = &body
		return nil
	}
}

// WithBasicAuth enables basic authentication with the given credentials.
func WithBasicAuth(username, password string) CallOption {
	return func(opts *callOpts) error {
		opts.useBasic = true
		opts.username = username
		opts.password = password
		return nil
	}
}

// WithCookieJar attaches jar to the call. Without a jar no cookies
// persist between calls.
func WithCookieJar(jar http.CookieJar) CallOption {
	return func(opts *callOpts) error {
		opts.jar = jar
		return nil
	}
}
