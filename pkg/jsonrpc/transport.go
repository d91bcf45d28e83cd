package jsonrpc

import (
	"bytes"
	"context"
	"encoding/json"
	"io/ioutil"
	"net"
	"net/http"
	"time"
)

// SharedHTTPTransport is reused by every HTTPTransport so concurrent
// clients pool their connections.
var SharedHTTPTransport = &http.Transport{
	Proxy: http.ProxyFromEnvironment,
	DialContext: (&net.Dialer{
		Timeout:   30 * time.Second,
		KeepAlive: 30 * time.Second,
	}).DialContext,
	MaxIdleConns:          100,
	MaxIdleConnsPerHost:   100,
	IdleConnTimeout:       90 * time.Second,
	TLSHandshakeTimeout:   10 * time.Second,
	ExpectContinueTimeout: 1 * time.Second,
}

// RequestOptions carries everything a Transport needs besides the URL.
// Hooks may swap any of it, method and body included.
type RequestOptions struct {
	Method string
	Header http.Header
	Body   []byte
}

// DefaultRequestOptions returns the base options every call starts from.
// Client-level headers are merged over these key-by-key.
func DefaultRequestOptions(body []byte) *RequestOptions {
	header := make(http.Header)
	header.Set("Content-Type", "application/json")
	return &RequestOptions{
		Method: http.MethodPost,
		Header: header,
		Body:   body,
	}
}

// Reply is the narrow view of an HTTP response the pipeline depends on.
type Reply struct {
	Status     int
	StatusText string
	Header     http.Header
	Body       []byte
}

func (r *Reply) OK() bool {
	return r.Status >= 200 && r.Status < 300
}

func (r *Reply) JSON(v interface{}) error {
	return json.Unmarshal(r.Body, v)
}

// Transport executes a single HTTP exchange. Implementations must not
// retain opts or the returned Reply across calls.
type Transport interface {
	Fetch(ctx context.Context, url string, opts *RequestOptions) (*Reply, error)
}

// TransportFunc adapts a bare function to the Transport interface.
type TransportFunc func(ctx context.Context, url string, opts *RequestOptions) (*Reply, error)

func (f TransportFunc) Fetch(ctx context.Context, url string, opts *RequestOptions) (*Reply, error) {
	return f(ctx, url, opts)
}

type HTTPTransport struct {
	client *http.Client
}

func NewHTTPTransport(timeout time.Duration) *HTTPTransport {
	return &HTTPTransport{
		client: &http.Client{
			Timeout:   timeout,
			Transport: SharedHTTPTransport,
		},
	}
}

func (t *HTTPTransport) Fetch(ctx context.Context, url string, opts *RequestOptions) (*Reply, error) {
	req, err := http.NewRequestWithContext(ctx, opts.Method, url, bytes.NewReader(opts.Body))
	if err != nil {
		return nil, err
	}
	for key, vals := range opts.Header {
		for _, val := range vals {
			req.Header.Add(key, val)
		}
	}

	res, err := t.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()
	body, err := ioutil.ReadAll(res.Body)
	if err != nil {
		return nil, err
	}

	return &Reply{
		Status:     res.StatusCode,
		StatusText: http.StatusText(res.StatusCode),
		Header:     res.Header,
		Body:       body,
	}, nil
}
