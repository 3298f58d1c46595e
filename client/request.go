package client

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
)

const (
	formContentType = "application/x-www-form-urlencoded"
	textContentType = "text/plain; charset=UTF-8"
)

// call describes one outbound request before it is built.
type call struct {
	op            string
	method        Method
	url           string
	allowRedirect bool
	callOpts
}

func newCall(op string, method Method, rawURL string, allowRedirect bool, optFns ...CallOption) (call, error) {
	cl := call{
		op:            op,
		method:        method,
		url:           rawURL,
		allowRedirect: allowRedirect,
	}
	for _, opt := range optFns {
		if err := opt(&cl.callOpts); err != nil {
			return cl, fmt.Errorf("applying call option: %w", err)
		}
	}

	return cl, nil
}

// newRequest turns cl into a transport ready request. Headers are applied
// in a fixed order: User-Agent, then basic authentication, then caller
// headers, so callers can override either. The entity's Content-Type is
// only set when the caller did not provide one.
func (c *Client) newRequest(ctx context.Context, cl call) (*http.Request, error) {
	if !cl.method.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedMethod, cl.method)
	}

	body, contentType := entity(cl)

	req, err := http.NewRequestWithContext(ctx, cl.method.String(), cl.url, body)
	if err != nil {
		return nil, fmt.Errorf("instantiating request: %w", err)
	}

	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	if cl.useBasic {
		req.Header.Set("Authorization", c.authorizer(cl.username, cl.password))
	}

	for k, v := range cl.headers {
		if http.CanonicalHeaderKey(k) == "Host" {
			req.Host = v
			continue
		}
		req.Header.Set(k, v)
	}

	if contentType != "" && req.Header.Get("Content-Type") == "" {
		req.Header.Set("Content-Type", contentType)
	}

	return req, nil
}

// entity returns the request body for cl. Only POST and PUT carry one;
// a raw body replaces form params when both are present.
func entity(cl call) (io.Reader, string) {
	if !cl.method.allowsBody() {
		return nil, ""
	}

	var (
		body        io.Reader
		contentType string
	)

	if cl.params != nil {
		form := make(url.Values, len(cl.params))
		for k, v := range cl.params {
			form.Set(k, v)
		}
		body, contentType = strings.NewReader(form.Encode()), formContentType
	}

	if cl.body != nil {
		body, contentType = strings.NewReader(*cl.body), textContentType
	}

	return body, contentType
}
