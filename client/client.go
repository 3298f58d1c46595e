package client

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/adamwoolhether/xhttp/auth"
	"github.com/adamwoolhether/xhttp/client/download"
	"github.com/adamwoolhether/xhttp/client/throttle"
)

// HTTPClient is the set of calls a [Client] offers. Every call returns a
// [Result] and nothing else; failures are reported through Result.Err
// with the configured default status code.
type HTTPClient interface {
	Download(ctx context.Context, url, destPath string, optFns ...DownloadOption) Result
	Post(ctx context.Context, url string, headers map[string]string, body string) Result
	PostForm(ctx context.Context, url string, headers, params map[string]string) Result
	Query(ctx context.Context, method Method, url string, allowRedirect bool, optFns ...CallOption) Result
	QueryWithTimeout(ctx context.Context, url string, hardTimeout time.Duration, lazy bool) Result
	Upload(ctx context.Context, url string, headers, params map[string]string, filepath string) Result
}

var _ HTTPClient = (*Client)(nil)

// Client executes synchronous, fire-once calls. Config is copied at
// Build and never changes afterwards, so a Client is safe for
// concurrent use.
type Client struct {
	cfg        Config
	transport  Transport
	logger     *slog.Logger
	tracer     trace.Tracer
	authorizer Authorizer
	userAgent  string
	limiter    *throttle.Limiter
	metrics    *metrics
}

// Build validates cfg and returns a Client using it. Collaborators left
// unset default to [slog.Default], a no-op tracer, [PerCallTransport]
// and [auth.Basic].
func Build(cfg Config, optFns ...Option) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	var opts options
	for _, opt := range optFns {
		if err := opt(&opts); err != nil {
			return nil, fmt.Errorf("applying client option: %w", err)
		}
	}

	client := &Client{
		cfg:        cfg,
		transport:  PerCallTransport(),
		logger:     slog.Default(),
		tracer:     noop.NewTracerProvider().Tracer("no-op tracer"),
		authorizer: auth.Basic,
		userAgent:  opts.userAgent,
	}

	if opts.logger != nil {
		client.logger = opts.logger
	}
	if opts.tracer != nil {
		client.tracer = opts.tracer
	}
	if opts.transport != nil {
		client.transport = opts.transport
	}
	if opts.authorizer != nil {
		client.authorizer = opts.authorizer
	}

	if opts.throttle != nil {
		l, err := throttle.New(opts.throttle.RPS, opts.throttle.Burst, func() *slog.Logger { return client.logger })
		if err != nil {
			return nil, fmt.Errorf("configuring throttle: %w", err)
		}
		client.limiter = l
	}

	m, err := newMetrics(opts.registerer)
	if err != nil {
		return nil, fmt.Errorf("configuring metrics: %w", err)
	}
	client.metrics = m

	for _, name := range cfg.unbounded() {
		client.logger.Warn("timeout disabled, waits are unbounded", "timeout", name)
	}
	if _, ok := client.transport.(shared); ok {
		client.logger.Warn("shared transport in use, connect and socket timeouts are delegated to its round tripper")
	}

	return client, nil
}

// Config returns the configuration the Client was built with.
func (c *Client) Config() Config {
	return c.cfg
}

// Download GETs url, following redirects, and streams the entity into
// destPath. Only the status code is recorded. A failed transfer leaves
// the partially written file in place.
func (c *Client) Download(ctx context.Context, url, destPath string, optFns ...DownloadOption) Result {
	cl, err := newCall("download", MethodGet, url, true)
	if err == nil && destPath == "" {
		err = download.ErrNoDestination
	}
	if err == nil {
		var skip bool
		if skip, err = download.Skip(destPath, optFns...); err == nil && skip {
			c.logger.Info("skipping existing file", "url", redact(url), "path", destPath)
			return Result{StatusCode: c.cfg.DefaultStatusCode}
		}
	}

	return c.execute(ctx, cl, err, c.writeEntity(destPath, optFns...))
}

// Post sends body verbatim as text/plain unless headers set another
// Content-Type. Redirects are not followed.
func (c *Client) Post(ctx context.Context, url string, headers map[string]string, body string) Result {
	return c.Query(ctx, MethodPost, url, false, WithHeaders(headers), WithBody(body))
}

// PostForm sends params URL-form-encoded. Redirects are not followed.
func (c *Client) PostForm(ctx context.Context, url string, headers, params map[string]string) Result {
	return c.Query(ctx, MethodPost, url, false, WithHeaders(headers), WithParams(params))
}

// Query is the general call shape. allowRedirect controls whether
// redirects are followed; when false the first response is returned
// as is.
func (c *Client) Query(ctx context.Context, method Method, url string, allowRedirect bool, optFns ...CallOption) Result {
	cl, err := newCall("query", method, url, allowRedirect, optFns...)
	return c.execute(ctx, cl, err, c.readEntity)
}

// QueryWithTimeout GETs url, following redirects, and aborts the call
// once hardTimeout has elapsed regardless of progress. When lazy is
// true the body and headers are read into the Result; otherwise only
// the status is recorded.
func (c *Client) QueryWithTimeout(ctx context.Context, url string, hardTimeout time.Duration, lazy bool) Result {
	if ctx == nil {
		ctx = context.Background()
	}

	cl, err := newCall("query_with_timeout", MethodGet, url, true)
	if err == nil && hardTimeout <= 0 {
		err = fmt.Errorf("hard timeout must be positive, got %s", hardTimeout)
	}

	ctx, cancel := withHardTimeout(ctx, hardTimeout)
	defer cancel()

	materialize := c.readStatus
	if lazy {
		materialize = c.readEntity
	}

	return c.execute(ctx, cl, err, materialize)
}

// Upload POSTs headers and form params without following redirects.
// The file at filepath is not transmitted.
func (c *Client) Upload(ctx context.Context, url string, headers, params map[string]string, filepath string) Result {
	c.logger.Debug("upload sends form params only, file is not streamed", "url", redact(url), "file", filepath)

	cl, err := newCall("upload", MethodPost, url, false, WithHeaders(headers), WithParams(params))
	return c.execute(ctx, cl, err, c.readEntity)
}
