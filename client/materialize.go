package client

import (
	"context"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strings"

	"golang.org/x/text/encoding/htmlindex"

	"github.com/adamwoolhether/xhttp/client/download"
)

// materializer turns a response that arrived into the call's Result.
// The response body is closed by the caller.
type materializer func(ctx context.Context, cl call, resp *http.Response) (Result, error)

// hasEntity reports whether a response to method with status carries a
// message body.
func hasEntity(method Method, status int) bool {
	switch {
	case method == MethodHead:
		return false
	case status < http.StatusOK:
		return false
	case status == http.StatusNoContent, status == http.StatusNotModified:
		return false
	}

	return true
}

// readEntity records the status and, when there is an entity, the body
// decoded to UTF-8 and a copy of every header.
func (c *Client) readEntity(_ context.Context, cl call, resp *http.Response) (Result, error) {
	res := Result{StatusCode: resp.StatusCode}

	if !hasEntity(cl.method, resp.StatusCode) {
		c.logger.Info("response carried no entity", "op", cl.op, "method", cl.method.String(), "url", redact(cl.url), "status", resp.StatusCode)
		return res, nil
	}

	b, err := io.ReadAll(resp.Body)
	if err != nil {
		return Result{}, fmt.Errorf("reading body: %w", err)
	}

	body, err := toUTF8(b, resp.Header.Get("Content-Type"))
	if err != nil {
		return Result{}, err
	}

	res.Body = body
	res.Headers = resp.Header.Clone()

	return res, nil
}

// readStatus records the status only; the body is discarded on close.
func (c *Client) readStatus(_ context.Context, _ call, resp *http.Response) (Result, error) {
	return Result{StatusCode: resp.StatusCode}, nil
}

// writeEntity streams the entity to destPath and records the status.
func (c *Client) writeEntity(destPath string, optFns ...DownloadOption) materializer {
	return func(ctx context.Context, cl call, resp *http.Response) (Result, error) {
		if !hasEntity(cl.method, resp.StatusCode) {
			return Result{StatusCode: resp.StatusCode}, nil
		}

		if err := download.Write(ctx, resp.Body, resp.ContentLength, destPath, c.logger, optFns...); err != nil {
			return Result{}, fmt.Errorf("download: %w", err)
		}

		return Result{StatusCode: resp.StatusCode}, nil
	}
}

// toUTF8 decodes b using the charset declared in contentType. Bodies
// without a declared charset are taken as UTF-8.
func toUTF8(b []byte, contentType string) (string, error) {
	if contentType == "" {
		return string(b), nil
	}

	_, params, err := mime.ParseMediaType(contentType)
	if err != nil {
		return string(b), nil
	}

	charset := strings.ToLower(strings.TrimSpace(params["charset"]))
	if charset == "" || charset == "utf-8" || charset == "utf8" {
		return string(b), nil
	}

	enc, err := htmlindex.Get(charset)
	if err != nil {
		return "", fmt.Errorf("unsupported charset %q: %w", charset, err)
	}

	out, err := enc.NewDecoder().Bytes(b)
	if err != nil {
		return "", fmt.Errorf("decoding %s body: %w", charset, err)
	}

	return string(out), nil
}
