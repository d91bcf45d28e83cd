package jsonrpc

import (
	"context"
	"encoding/json"
	"errors"
	"io/ioutil"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

type ClientSuite struct {
	suite.Suite
	srv      *httptest.Server
	code     int
	resBody  []byte
	lastReq  *http.Request
	lastBody []byte
}

func (c *ClientSuite) SetupSuite() {
	c.srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := ioutil.ReadAll(r.Body)
		c.lastReq = r
		c.lastBody = body
		if c.code != 0 {
			w.WriteHeader(c.code)
		}
		w.Write(c.resBody)
	}))
}

func (c *ClientSuite) TearDownSuite() {
	c.srv.Close()
}

func (c *ClientSuite) SetupTest() {
	c.code = 0
	c.resBody = []byte(`{"jsonrpc":"2.0","result":true,"id":null}`)
	c.lastReq = nil
	c.lastBody = nil
}

func (c *ClientSuite) TestCall_Success() {
	c.resBody = []byte(`{"jsonrpc":"2.0","result":{"number":"0x1b4"},"id":null}`)
	client := NewClient(c.srv.URL, DefaultTimeout)

	rctx, err := client.Call(context.Background(), "eth_getBlockByNumber", "0x1b4", true)
	require.NoError(c.T(), err)
	require.JSONEq(c.T(), `{"number":"0x1b4"}`, string(rctx.Data))
	require.JSONEq(c.T(), string(rctx.Response.Result), string(rctx.Data))
	require.Equal(c.T(), 200, rctx.Reply.Status)

	require.Equal(c.T(), "POST", c.lastReq.Method)
	require.Equal(c.T(), "application/json", c.lastReq.Header.Get("Content-Type"))
	require.JSONEq(c.T(), `{"jsonrpc":"2.0","id":null,"method":"eth_getBlockByNumber","params":["0x1b4",true]}`, string(c.lastBody))
}

func (c *ClientSuite) TestCall_HTTPErrorIgnoresBody() {
	c.code = 503
	c.resBody = []byte(`{"jsonrpc":"2.0","error":{"code":-32000,"message":"should never be read"}}`)
	client := NewClient(c.srv.URL, DefaultTimeout)

	_, err := client.Call(context.Background(), "eth_blockNumber")
	var httpErr *HTTPError
	require.True(c.T(), errors.As(err, &httpErr))
	require.Equal(c.T(), 503, httpErr.Status)
	require.Equal(c.T(), "Service Unavailable", httpErr.StatusText)

	var rpcErr *RPCError
	require.False(c.T(), errors.As(err, &rpcErr))
}

func (c *ClientSuite) TestCall_RPCError() {
	c.resBody = []byte(`{"jsonrpc":"2.0","error":{"code":-32602,"data":["to"]},"id":null}`)
	client := NewClient(c.srv.URL, DefaultTimeout)

	_, err := client.Call(context.Background(), "eth_sendTransaction")
	var rpcErr *RPCError
	require.True(c.T(), errors.As(err, &rpcErr))
	require.Equal(c.T(), CodeInvalidParams, rpcErr.Code)
	require.Equal(c.T(), "invalid params", rpcErr.Message)
	require.JSONEq(c.T(), `["to"]`, string(rpcErr.Data))
}

func (c *ClientSuite) TestCall_MalformedBody() {
	c.resBody = []byte("upstream proxy says hi")
	client := NewClient(c.srv.URL, DefaultTimeout)

	_, err := client.Call(context.Background(), "eth_blockNumber")
	require.Error(c.T(), err)

	var httpErr *HTTPError
	var rpcErr *RPCError
	require.False(c.T(), errors.As(err, &httpErr))
	require.False(c.T(), errors.As(err, &rpcErr))
}

func (c *ClientSuite) TestCall_HookOrdering() {
	var order []string
	client := NewClientWithOpts(c.srv.URL, &ClientOpts{
		BeforeFetch: func(rctx *RequestContext) (*RequestContext, error) {
			order = append(order, "before")
			return rctx, nil
		},
		OnResponse: func(rctx *ResponseContext) (*ResponseContext, error) {
			order = append(order, "response")
			return rctx, nil
		},
		OnError: func(err error) error {
			order = append(order, "error")
			return err
		},
	})

	_, err := client.Call(context.Background(), "eth_blockNumber")
	require.NoError(c.T(), err)
	require.Equal(c.T(), []string{"before", "response"}, order)

	order = nil
	c.code = 500
	_, err = client.Call(context.Background(), "eth_blockNumber")
	require.Error(c.T(), err)
	require.Equal(c.T(), []string{"before", "error"}, order)
}

func (c *ClientSuite) TestCall_BeforeFetchRewritesRequest() {
	client := NewClientWithOpts("http://unreachable.test", &ClientOpts{
		BeforeFetch: func(rctx *RequestContext) (*RequestContext, error) {
			rctx.URL = c.srv.URL
			rctx.Options.Header.Set("X-Api-Key", "s3cret")
			return rctx, nil
		},
	})

	_, err := client.Call(context.Background(), "eth_blockNumber")
	require.NoError(c.T(), err)
	require.Equal(c.T(), "s3cret", c.lastReq.Header.Get("X-Api-Key"))
}

func (c *ClientSuite) TestCall_BeforeFetchFailureSkipsTransport() {
	client := NewClientWithOpts(c.srv.URL, &ClientOpts{
		BeforeFetch: func(rctx *RequestContext) (*RequestContext, error) {
			return nil, errors.New("signing failed")
		},
	})

	_, err := client.Call(context.Background(), "eth_blockNumber")
	require.EqualError(c.T(), err, "signing failed")
	require.Nil(c.T(), c.lastReq)
}

func (c *ClientSuite) TestCall_OnErrorTransforms() {
	c.code = 404
	sentinel := errors.New("endpoint misconfigured")
	client := NewClientWithOpts(c.srv.URL, &ClientOpts{
		OnError: func(err error) error {
			var httpErr *HTTPError
			if errors.As(err, &httpErr) && httpErr.Status == 404 {
				return sentinel
			}
			return err
		},
	})

	_, err := client.Call(context.Background(), "eth_blockNumber")
	require.Equal(c.T(), sentinel, err)
}

func (c *ClientSuite) TestCall_IDGenerator() {
	ids := []interface{}{"call-1", "call-2"}
	client := NewClientWithOpts(c.srv.URL, &ClientOpts{
		IDGenerator: func() interface{} {
			id := ids[0]
			ids = ids[1:]
			return id
		},
	})

	_, err := client.Call(context.Background(), "eth_blockNumber")
	require.NoError(c.T(), err)
	var req Request
	require.NoError(c.T(), json.Unmarshal(c.lastBody, &req))
	require.Equal(c.T(), "call-1", req.Id)

	_, err = client.Call(context.Background(), "eth_blockNumber")
	require.NoError(c.T(), err)
	require.NoError(c.T(), json.Unmarshal(c.lastBody, &req))
	require.Equal(c.T(), "call-2", req.Id)
}

func (c *ClientSuite) TestCall_HeaderMergeCallerWins() {
	header := make(http.Header)
	header.Set("Content-Type", "application/json-rpc")
	header.Set("Authorization", "Bearer tok")
	client := NewClientWithOpts(c.srv.URL, &ClientOpts{
		Header: header,
	})

	_, err := client.Call(context.Background(), "eth_blockNumber")
	require.NoError(c.T(), err)
	require.Equal(c.T(), "application/json-rpc", c.lastReq.Header.Get("Content-Type"))
	require.Equal(c.T(), "Bearer tok", c.lastReq.Header.Get("Authorization"))
}

func (c *ClientSuite) TestCallInto() {
	c.resBody = []byte(`{"jsonrpc":"2.0","result":{"number":"0x1b4"},"id":null}`)
	client := NewClient(c.srv.URL, DefaultTimeout)

	var block struct {
		Number string `json:"number"`
	}
	require.NoError(c.T(), client.CallInto(context.Background(), &block, "eth_getBlockByNumber", "0x1b4", false))
	require.Equal(c.T(), "0x1b4", block.Number)

	require.NoError(c.T(), client.CallInto(context.Background(), nil, "eth_getBlockByNumber", "0x1b4", false))
}

func TestClientSuite(t *testing.T) {
	suite.Run(t, new(ClientSuite))
}

func TestCall_TransportFaultGoesThroughOnError(t *testing.T) {
	var seen error
	client := NewClientWithOpts("http://backend.test", &ClientOpts{
		Transport: TransportFunc(func(ctx context.Context, url string, opts *RequestOptions) (*Reply, error) {
			return nil, errors.New("connection refused")
		}),
		OnError: func(err error) error {
			seen = err
			return err
		},
	})

	_, err := client.Call(context.Background(), "eth_blockNumber")
	require.EqualError(t, err, "connection refused")
	require.Equal(t, seen, err)
}
