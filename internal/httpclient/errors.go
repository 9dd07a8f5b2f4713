package httpclient

import "fmt"

// StatusError reports a non-2xx response on a request that did not allow
// one. The response is still returned alongside it.
type StatusError struct {
	Method     string
	URL        string
	StatusCode int
	Body       []byte
}

func (e *StatusError) Error() string {
	const limit = 512
	body := e.Body
	if len(body) > limit {
		body = body[:limit]
	}
	return fmt.Sprintf("%s %s: unexpected status %d: %s", e.Method, e.URL, e.StatusCode, body)
}

// TransportError wraps a failure to get any response at all: connection
// refused or reset, DNS, timeout, or an unreadable body.
type TransportError struct {
	Method string
	URL    string
	Err    error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Method, e.URL, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }
