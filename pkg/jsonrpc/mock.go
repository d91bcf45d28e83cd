package jsonrpc

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/pkg/errors"
)

// MockHandler simulates a server-side method. Returning a *HTTPError as
// the error makes the mock report a transport-level failure with that
// status instead of a protocol response; any other error fails the fetch
// itself.
type MockHandler func(req *Request, opts *RequestOptions) (*Response, error)

// MockTransport stands in for a JSON-RPC server in tests. It decodes the
// outbound envelope, dispatches on the method name and produces replies
// with the same shape a real server would, including the method-not-found
// error for unregistered methods.
type MockTransport struct {
	handlers map[string]MockHandler
	delay    time.Duration
}

func NewMockTransport(handlers map[string]MockHandler, delay time.Duration) *MockTransport {
	return &MockTransport{
		handlers: handlers,
		delay:    delay,
	}
}

func (m *MockTransport) Fetch(ctx context.Context, url string, opts *RequestOptions) (*Reply, error) {
	if m.delay > 0 {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(m.delay):
		}
	}

	var req Request
	if err := json.Unmarshal(opts.Body, &req); err != nil {
		return nil, errors.Wrap(err, "mal-formed request body")
	}

	hdlr := m.handlers[req.Method]
	if hdlr == nil {
		return jsonReply(&Response{
			Jsonrpc: Version,
			Id:      req.Id,
			Error:   NewRPCError(CodeMethodNotFound, ""),
		})
	}

	res, err := hdlr(&req, opts)
	if err != nil {
		if httpErr, ok := err.(*HTTPError); ok {
			return &Reply{
				Status:     httpErr.Status,
				StatusText: httpErr.StatusText,
				Body:       []byte(httpErr.Error()),
			}, nil
		}

		return nil, err
	}

	// Stamp the caller's id onto whatever the handler produced. Only a
	// nil id means the caller didn't supply one; 0 and "" are stamped
	// like any other value.
	if req.Id != nil {
		res.Id = req.Id
	}

	return jsonReply(res)
}

func jsonReply(res *Response) (*Reply, error) {
	body, err := json.Marshal(res)
	if err != nil {
		return nil, err
	}

	header := make(http.Header)
	header.Set("Content-Type", "application/json")
	return &Reply{
		Status:     http.StatusOK,
		StatusText: http.StatusText(http.StatusOK),
		Header:     header,
		Body:       body,
	}, nil
}

// NewMockResponse wraps a result value in a success envelope. It panics
// on unserializable results since handlers are test code.
func NewMockResponse(result interface{}) *Response {
	body, err := json.Marshal(result)
	if err != nil {
		panic(err)
	}

	return &Response{
		Jsonrpc: Version,
		Result:  body,
	}
}

// NewMockErrorResponse wraps a protocol error in an envelope, applying
// the same message defaults as NewRPCError.
func NewMockErrorResponse(code int, message string) *Response {
	return &Response{
		Jsonrpc: Version,
		Error:   NewRPCError(code, message),
	}
}
