package jsonrpc

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewRPCError_ReservedMessages(t *testing.T) {
	reserved := map[int]string{
		-32700: "parse error",
		-32600: "invalid request",
		-32601: "method not found",
		-32602: "invalid params",
		-32603: "internal error",
	}
	for code, message := range reserved {
		err := NewRPCError(code, "")
		require.Equal(t, message, err.Message)
		require.Equal(t, code, err.Code)
	}
}

func TestNewRPCError_ExplicitMessageWins(t *testing.T) {
	err := NewRPCError(CodeInvalidParams, "missing block tag")
	require.Equal(t, "missing block tag", err.Message)
}

func TestNewRPCError_UnreservedCodePlaceholder(t *testing.T) {
	err := NewRPCError(-32000, "")
	require.Equal(t, "unknown error", err.Message)
}

func TestRPCError_WireShape(t *testing.T) {
	var rpcErr RPCError
	raw := `{"code":-32001,"message":"rate limited","data":{"retry_after":3}}`
	require.NoError(t, json.Unmarshal([]byte(raw), &rpcErr))
	require.Equal(t, -32001, rpcErr.Code)
	require.Equal(t, "rate limited", rpcErr.Message)
	require.JSONEq(t, `{"retry_after":3}`, string(rpcErr.Data))
	require.Equal(t, "RPC error -32001: rate limited", rpcErr.Error())
}

func TestHTTPError(t *testing.T) {
	err := NewHTTPError(503, "Service Unavailable")
	require.Equal(t, "503 Service Unavailable", err.Error())
}

func TestErrorKindsAreDisjoint(t *testing.T) {
	var asRPC *RPCError
	var asHTTP *HTTPError

	var err error = NewRPCError(CodeMethodNotFound, "")
	require.True(t, errors.As(err, &asRPC))
	require.False(t, errors.As(err, &asHTTP))

	err = NewHTTPError(502, "Bad Gateway")
	require.True(t, errors.As(err, &asHTTP))
	require.False(t, errors.As(err, &asRPC))
}
