package client

import "net/http"

// Method is the closed set of HTTP methods a [Client] issues.
type Method string

// Supported methods.
const (
	MethodGet    Method = http.MethodGet
	MethodPost   Method = http.MethodPost
	MethodPut    Method = http.MethodPut
	MethodDelete Method = http.MethodDelete
	MethodHead   Method = http.MethodHead
)

// Valid reports whether m is one of the supported methods.
func (m Method) Valid() bool {
	switch m {
	case MethodGet, MethodPost, MethodPut, MethodDelete, MethodHead:
		return true
	default:
		return false
	}
}

// allowsBody reports whether requests using m may carry an entity.
func (m Method) allowsBody() bool {
	return m == MethodPost || m == MethodPut
}

func (m Method) String() string { return string(m) }

// Result is the value every [Client] operation returns.
//
// StatusCode holds the configured default until a response is
// materialized. Body is the UTF-8 response text and Headers holds every
// response header value in arrival order; both are empty when the
// response carried no entity or the call failed. Err is nil when the call
// completed and a *[CallError] otherwise.
type Result struct {
	StatusCode int
	Body       string
	Headers    http.Header
	Err        error
}

// OK reports whether the call completed, regardless of status code.
func (r Result) OK() bool {
	return r.Err == nil
}
