package jsonrpc

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/pkg/errors"
)

// RequestContext is handed to the BeforeFetch hook. The pipeline trusts
// whatever comes back, so a hook may redirect the call or rewrite the
// options wholesale. Each call owns its own context; they are never
// shared between concurrent calls.
type RequestContext struct {
	URL     string
	Options *RequestOptions
}

// ResponseContext is what a successful call resolves with. Data aliases
// the result field of the decoded response.
type ResponseContext struct {
	Response *Response
	Reply    *Reply
	Data     json.RawMessage
}

// Decode unmarshals the call result into v.
func (c *ResponseContext) Decode(v interface{}) error {
	if len(c.Data) == 0 {
		return errors.New("response carries no result")
	}

	return json.Unmarshal(c.Data, v)
}

type BeforeFetchFunc func(*RequestContext) (*RequestContext, error)
type OnResponseFunc func(*ResponseContext) (*ResponseContext, error)
type OnErrorFunc func(error) error

// IDFunc produces the id for an outbound request. A nil IDFunc on the
// client leaves the id null.
type IDFunc func() interface{}

// ClientOpts configures a Client. Every field is optional: hooks default
// to identity, the transport to HTTP with the configured timeout, and the
// id generator to none (null ids).
type ClientOpts struct {
	Timeout     time.Duration
	Transport   Transport
	Header      http.Header
	IDGenerator IDFunc
	BeforeFetch BeforeFetchFunc
	OnResponse  OnResponseFunc
	OnError     OnErrorFunc
}

const DefaultTimeout = 10 * time.Second

type Client struct {
	url         string
	transport   Transport
	header      http.Header
	idGen       IDFunc
	beforeFetch BeforeFetchFunc
	onResponse  OnResponseFunc
	onError     OnErrorFunc
}

func NewClient(url string, timeout time.Duration) *Client {
	return NewClientWithOpts(url, &ClientOpts{
		Timeout: timeout,
	})
}

func NewClientWithOpts(url string, opts *ClientOpts) *Client {
	if opts == nil {
		opts = &ClientOpts{}
	}

	c := &Client{
		url:         url,
		transport:   opts.Transport,
		header:      opts.Header,
		idGen:       opts.IDGenerator,
		beforeFetch: opts.BeforeFetch,
		onResponse:  opts.OnResponse,
		onError:     opts.OnError,
	}
	if c.transport == nil {
		timeout := opts.Timeout
		if timeout == 0 {
			timeout = DefaultTimeout
		}
		c.transport = NewHTTPTransport(timeout)
	}
	if c.beforeFetch == nil {
		c.beforeFetch = func(rctx *RequestContext) (*RequestContext, error) {
			return rctx, nil
		}
	}
	if c.onResponse == nil {
		c.onResponse = func(rctx *ResponseContext) (*ResponseContext, error) {
			return rctx, nil
		}
	}
	if c.onError == nil {
		c.onError = func(err error) error {
			return err
		}
	}

	return c
}

// Call performs one JSON-RPC exchange. Failures reject with *HTTPError
// when the transport reports a non-2xx status (the body is not trusted in
// that case), with *RPCError when a well-formed response carries an error
// object, and with a plain error for everything else (mal-formed bodies,
// transport faults, hook failures). Every failure is filtered through the
// OnError hook before it is returned. Within a call the hooks fire in a
// fixed order: BeforeFetch, then the transport, then exactly one of
// OnResponse or OnError.
func (c *Client) Call(ctx context.Context, method string, args ...interface{}) (*ResponseContext, error) {
	var id interface{}
	if c.idGen != nil {
		id = c.idGen()
	}

	req := NewRequest(method, id, args...)
	body, err := json.Marshal(req)
	if err != nil {
		return nil, c.onError(errors.Wrap(err, "failed to serialize request"))
	}

	opts := DefaultRequestOptions(body)
	for key, vals := range c.header {
		opts.Header[key] = vals
	}

	rctx, err := c.beforeFetch(&RequestContext{
		URL:     c.url,
		Options: opts,
	})
	if err != nil {
		return nil, c.onError(err)
	}

	reply, err := c.transport.Fetch(ctx, rctx.URL, rctx.Options)
	if err != nil {
		return nil, c.onError(err)
	}
	if !reply.OK() {
		return nil, c.onError(NewHTTPError(reply.Status, reply.StatusText))
	}

	var res Response
	if err := reply.JSON(&res); err != nil {
		return nil, c.onError(errors.Wrap(err, "mal-formed response body"))
	}
	if res.Error != nil {
		return nil, c.onError(res.Error.withDefaultMessage())
	}

	// OnError never sees an OnResponse failure: exactly one of the two
	// hooks runs per call.
	return c.onResponse(&ResponseContext{
		Response: &res,
		Reply:    reply,
		Data:     res.Result,
	})
}

// CallInto performs a call and decodes the result into out. A nil out
// discards the result.
func (c *Client) CallInto(ctx context.Context, out interface{}, method string, args ...interface{}) error {
	rctx, err := c.Call(ctx, method, args...)
	if err != nil {
		return err
	}
	if out == nil || len(rctx.Data) == 0 {
		return nil
	}

	return json.Unmarshal(rctx.Data, out)
}
