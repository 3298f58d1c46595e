// Package reqlog provides request logging middleware for servers that
// xhttp clients talk to. Parameters whose names look like credentials
// are masked.
package reqlog

import (
	"bytes"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"net/url"
	"slices"
	"strings"
	"time"
)

const masked = "*****"

// Logger logs every request before and after next handles it.
func Logger(log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			now := time.Now()

			params, err := parameters(r)
			if err != nil {
				log.Warn("reading request parameters", "error", err)
			}

			attrs := []any{
				"method", r.Method,
				"path", r.URL.Path,
				"params", params,
				"clientip", ClientIP(r),
			}
			log.Info("request started", attrs...)

			rw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(rw, r)

			log.Info("request completed", append(attrs, "statusCode", rw.status, "since", time.Since(now).String())...)
		})
	}
}

// ClientIP returns X-Forwarded-For when a proxy set it, or the peer
// address otherwise.
func ClientIP(r *http.Request) string {
	if ip := r.Header.Get("X-Forwarded-For"); ip != "" {
		return ip
	}

	return r.RemoteAddr
}

// Redact returns values encoded with credential-like parameters masked.
// Keys are sorted.
func Redact(values url.Values) string {
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	var b strings.Builder
	for _, k := range keys {
		for _, v := range values[k] {
			if b.Len() > 0 {
				b.WriteByte('&')
			}
			if sensitive(k) {
				v = masked
			}
			fmt.Fprintf(&b, "%s=%s", k, v)
		}
	}

	return b.String()
}

func sensitive(key string) bool {
	key = strings.ToLower(key)
	return strings.Contains(key, "pass") || strings.Contains(key, "pwd")
}

// parameters collects query and form parameters. A form body is read
// and replaced so next still sees it in full.
func parameters(r *http.Request) (string, error) {
	values := r.URL.Query()

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if r.Body == nil || mediaType != "application/x-www-form-urlencoded" {
		return Redact(values), nil
	}

	b, err := io.ReadAll(r.Body)
	r.Body = io.NopCloser(bytes.NewReader(b))
	if err != nil {
		return Redact(values), fmt.Errorf("reading form body: %w", err)
	}

	form, err := url.ParseQuery(string(b))
	if err != nil {
		return Redact(values), fmt.Errorf("parsing form body: %w", err)
	}
	for k, vs := range form {
		values[k] = append(values[k], vs...)
	}

	return Redact(values), nil
}

type statusWriter struct {
	http.ResponseWriter
	status      int
	wroteHeader bool
}

func (w *statusWriter) WriteHeader(code int) {
	if !w.wroteHeader {
		w.status = code
		w.wroteHeader = true
	}
	w.ResponseWriter.WriteHeader(code)
}

func (w *statusWriter) Unwrap() http.ResponseWriter {
	return w.ResponseWriter
}
