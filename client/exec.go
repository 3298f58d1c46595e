package client

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"runtime/debug"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

// execute runs cl and collapses its outcome into a Result. buildErr is
// the error, if any, hit while assembling cl. Every failure yields the
// configured default status with an empty body and nil headers.
func (c *Client) execute(ctx context.Context, cl call, buildErr error, materialize materializer) (res Result) {
	if ctx == nil {
		ctx = context.Background()
	}

	callID := uuid.NewString()
	log := c.logger.With("op", cl.op, "method", cl.method.String(), "url", redact(cl.url), "call_id", callID)

	ctx, span := c.tracer.Start(ctx, "xhttp."+cl.op,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("http.request.method", cl.method.String()),
			attribute.String("url.full", redact(cl.url)),
			attribute.String("xhttp.call_id", callID),
		),
	)
	defer span.End()

	start := time.Now()
	defer func() {
		if rec := recover(); rec != nil {
			res = c.failed(cl.fail(KindRequest, fmt.Errorf("PANIC [%v] TRACE[%s]", rec, string(debug.Stack()))))
		}

		elapsed := time.Since(start)
		if res.Err != nil {
			log.Error("call failed", "kind", KindOf(res.Err).String(), "elapsed", elapsed, "error", res.Err)
			if ce, ok := errors.AsType[*CallError](res.Err); ok && len(ce.stack) > 0 {
				log.Debug("call failed stack", "stack", string(ce.stack))
			}
			span.RecordError(res.Err)
			span.SetStatus(codes.Error, KindOf(res.Err).String())
		} else {
			log.Debug("call completed", "status", res.StatusCode, "elapsed", elapsed)
			span.SetAttributes(attribute.Int("http.response.status_code", res.StatusCode))
		}

		c.metrics.observe(cl, res, elapsed)
	}()

	if buildErr != nil {
		return c.failed(cl.fail(KindRequest, buildErr))
	}

	res, err := c.attempt(ctx, cl, materialize, log)
	if err != nil {
		return c.failed(err)
	}

	return res
}

func (c *Client) failed(err error) Result {
	return Result{StatusCode: c.cfg.DefaultStatusCode, Err: err}
}

// attempt performs the round trip. Everything acquired for the call is
// released before it returns, in reverse order: the response body, the
// transport, then the connection request watch.
func (c *Client) attempt(ctx context.Context, cl call, materialize materializer, log *slog.Logger) (Result, error) {
	ctx, stop := withConnectionRequestTimeout(ctx, c.cfg.ConnectionRequestTimeout)
	defer stop()

	req, err := c.newRequest(ctx, cl)
	if err != nil {
		return Result{}, cl.fail(KindRequest, err)
	}
	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(req.Header))

	rt, release := c.transport.RoundTripper(c.cfg)
	defer release()

	if c.limiter != nil {
		rt = c.limiter.Wrap(rt)
	}

	hc := &http.Client{
		Transport: rt,
		Jar:       cl.jar,
	}
	if !cl.allowRedirect {
		hc.CheckRedirect = func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		}
	}

	resp, err := hc.Do(req)
	if err != nil {
		kind, err := classify(ctx, KindTransport, err)
		return Result{}, cl.fail(kind, fmt.Errorf("exec http do: %w", err))
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			log.Error("failed to close response body", "error", err)
		}
	}()

	res, err := materialize(ctx, cl, resp)
	if err != nil {
		kind, err := classify(ctx, KindMaterialize, err)
		return Result{}, cl.fail(kind, err)
	}

	return res, nil
}

func (cl call) fail(kind Kind, err error) *CallError {
	return &CallError{
		Op:     cl.op,
		Method: cl.method,
		URL:    redact(cl.url),
		Kind:   kind,
		Err:    err,
		stack:  debug.Stack(),
	}
}

// redact masks any password in rawURL.
func redact(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}

	return u.Redacted()
}
