package client

import (
	"errors"
	"fmt"
	"net"
	"os"
)

var (
	// ErrHardTimeout is the cause attached to calls aborted by the
	// caller's wall-clock deadline.
	ErrHardTimeout = errors.New("hard timeout elapsed")
	// ErrConnectionRequestTimeout is the cause attached to calls that
	// waited too long for a connection to become available.
	ErrConnectionRequestTimeout = errors.New("connection request timeout elapsed")
	// ErrUnsupportedMethod is returned for methods outside [Method].
	ErrUnsupportedMethod = errors.New("unsupported method")
)

// Kind classifies why a call failed.
type Kind int

const (
	// KindRequest means the request could not be built.
	KindRequest Kind = iota + 1
	// KindTransport covers connection refusal, DNS failure and expiry of
	// the connect, socket or connection request timeouts.
	KindTransport
	// KindCancelled means the hard timeout or the caller's context ended
	// the call.
	KindCancelled
	// KindMaterialize means the response arrived but could not be read,
	// decoded or written out.
	KindMaterialize
)

func (k Kind) String() string {
	switch k {
	case KindRequest:
		return "request"
	case KindTransport:
		return "transport"
	case KindCancelled:
		return "cancelled"
	case KindMaterialize:
		return "materialize"
	default:
		return "unknown"
	}
}

// CallError describes a failed call. It is carried in [Result.Err].
type CallError struct {
	Op     string
	Method Method
	URL    string
	Kind   Kind
	Err    error

	stack []byte
}

func (e *CallError) Error() string {
	return fmt.Sprintf("%s %s %s: %s: %v", e.Op, e.Method, e.URL, e.Kind, e.Err)
}

func (e *CallError) Unwrap() error {
	return e.Err
}

// Timeout reports whether the failure was a network level timeout.
func (e *CallError) Timeout() bool {
	if errors.Is(e.Err, ErrConnectionRequestTimeout) || errors.Is(e.Err, os.ErrDeadlineExceeded) {
		return true
	}

	var netErr net.Error
	return errors.As(e.Err, &netErr) && netErr.Timeout()
}

// KindOf returns the Kind of err, or zero when err is not a *CallError.
func KindOf(err error) Kind {
	var ce *CallError
	if errors.As(err, &ce) {
		return ce.Kind
	}

	return 0
}
