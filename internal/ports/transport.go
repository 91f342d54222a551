package ports

import (
	"context"
	"net/http"
	"net/url"
)

// Request describes one API call. Body is held in memory so the call can be
// issued again after a credential refresh.
type Request struct {
	Method string
	Path   string
	Query  url.Values
	Header http.Header
	Body   []byte
}

func (r *Request) Clone() *Request {
	if r == nil {
		return nil
	}

	clone := *r
	if r.Query != nil {
		clone.Query = make(url.Values, len(r.Query))
		for k, v := range r.Query {
			clone.Query[k] = append([]string(nil), v...)
		}
	}
	clone.Header = r.Header.Clone()
	if r.Body != nil {
		clone.Body = append([]byte(nil), r.Body...)
	}

	return &clone
}

type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

func (r *Response) Success() bool {
	return r != nil && r.StatusCode >= http.StatusOK && r.StatusCode < http.StatusMultipleChoices
}

func (r *Response) Unauthorized() bool {
	return r != nil && r.StatusCode == http.StatusUnauthorized
}

// Transport performs exactly one request against the backend. Credentials are
// attached by the transport itself.
type Transport interface {
	Send(ctx context.Context, req *Request) (*Response, error)
}

// Executor is what call sites depend on: a Transport that may recover from
// expired credentials before answering.
type Executor interface {
	Execute(ctx context.Context, req *Request) (*Response, error)
}
