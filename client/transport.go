package client

import (
	"context"
	"crypto/tls"
	"net"
	"net/http"
	"sync"
	"time"
)

// Transport supplies the round tripper a single call executes on. It is
// chosen once at [Build], so call sites never depend on a concrete
// transport.
type Transport interface {
	// RoundTripper returns the round tripper for one call and a release
	// func that runs once the call has returned.
	RoundTripper(cfg Config) (http.RoundTripper, func())
}

// PerCallTransport returns the default adapter. Each call gets its own
// [http.Transport], limited to one connection per host and torn down
// when the call returns; nothing is pooled across calls. Connections it
// dials honour the connect and socket timeouts of the [Config].
func PerCallTransport() Transport {
	return perCall{}
}

type perCall struct{}

func (perCall) RoundTripper(cfg Config) (http.RoundTripper, func()) {
	dialer := &net.Dialer{Timeout: cfg.ConnectTimeout}

	tr := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: func(ctx context.Context, network, addr string) (net.Conn, error) {
			conn, err := dialer.DialContext(ctx, network, addr)
			if err != nil {
				return nil, err
			}
			if cfg.SocketTimeout > 0 {
				return &idleConn{Conn: conn, timeout: cfg.SocketTimeout}, nil
			}
			return conn, nil
		},
		TLSHandshakeTimeout: cfg.ConnectTimeout,
		MaxConnsPerHost:     1,
		// Non-nil and empty: HTTP/1.1 only.
		TLSNextProto: map[string]func(string, *tls.Conn) http.RoundTripper{},
	}

	return tr, tr.CloseIdleConnections
}

// SharedTransport executes every call on rt, typically a pooled
// [http.Transport] or one wrapped by throttle.NewRoundTripper. When rt
// is nil a clone of [http.DefaultTransport] restricted to HTTP/1.1 is
// used. Connect and socket timeouts, as well as any pooling, are
// whatever rt implements; only the connection request timeout is still
// enforced by the [Client].
func SharedTransport(rt http.RoundTripper) Transport {
	if rt == nil {
		tr := http.DefaultTransport.(*http.Transport).Clone()
		tr.ForceAttemptHTTP2 = false
		tr.TLSNextProto = map[string]func(string, *tls.Conn) http.RoundTripper{}
		rt = tr
	}

	return shared{rt: rt}
}

type shared struct {
	rt http.RoundTripper
}

func (s shared) RoundTripper(Config) (http.RoundTripper, func()) {
	return s.rt, func() {}
}

// idleConn fails reads that see no data for longer than timeout. The
// clock is paused while a write is in flight and restarts once it
// completes, so a slow peer draining a large request body does not
// count as read inactivity.
type idleConn struct {
	net.Conn
	timeout time.Duration

	mu      sync.Mutex
	writing int
}

// arm sets the read deadline for the current state of the connection.
// Callers hold mu.
func (c *idleConn) arm() error {
	if c.writing > 0 {
		return c.Conn.SetReadDeadline(time.Time{})
	}

	return c.Conn.SetReadDeadline(time.Now().Add(c.timeout))
}

func (c *idleConn) Read(p []byte) (int, error) {
	c.mu.Lock()
	err := c.arm()
	c.mu.Unlock()
	if err != nil {
		return 0, err
	}

	return c.Conn.Read(p)
}

func (c *idleConn) Write(p []byte) (int, error) {
	c.mu.Lock()
	c.writing++
	err := c.arm()
	c.mu.Unlock()
	if err != nil {
		c.mu.Lock()
		c.writing--
		c.mu.Unlock()
		return 0, err
	}

	n, err := c.Conn.Write(p)

	c.mu.Lock()
	c.writing--
	_ = c.arm()
	c.mu.Unlock()

	return n, err
}
