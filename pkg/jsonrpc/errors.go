package jsonrpc

import (
	"encoding/json"
	"fmt"
)

// Reserved error codes from the JSON-RPC 2.0 spec.
const (
	CodeParseError     = -32700
	CodeInvalidRequest = -32600
	CodeMethodNotFound = -32601
	CodeInvalidParams  = -32602
	CodeInternalError  = -32603
)

var reservedMessages = map[int]string{
	CodeParseError:     "parse error",
	CodeInvalidRequest: "invalid request",
	CodeMethodNotFound: "method not found",
	CodeInvalidParams:  "invalid params",
	CodeInternalError:  "internal error",
}

// RPCError is the error object carried inside a response body. It doubles
// as the Go error a call rejects with on a protocol failure, so it is
// deliberately a different type than HTTPError; callers branch on the two
// with errors.As instead of inspecting a shared hierarchy.
type RPCError struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data,omitempty"`
}

// NewRPCError builds a protocol error. An empty message is filled in from
// the code's symbolic name for the reserved codes, and with a generic
// placeholder otherwise.
func NewRPCError(code int, message string) *RPCError {
	return &RPCError{
		Code:    code,
		Message: messageForCode(code, message),
	}
}

func (e *RPCError) Error() string {
	return fmt.Sprintf("RPC error %d: %s", e.Code, messageForCode(e.Code, e.Message))
}

// withDefaultMessage normalizes a deserialized error object the same way
// NewRPCError normalizes a locally constructed one.
func (e *RPCError) withDefaultMessage() *RPCError {
	e.Message = messageForCode(e.Code, e.Message)
	return e
}

func messageForCode(code int, message string) string {
	if message != "" {
		return message
	}
	if msg, ok := reservedMessages[code]; ok {
		return msg
	}
	return "unknown error"
}

// HTTPError reports a non-success outcome at the transport level, before
// any response body is trusted as JSON-RPC.
type HTTPError struct {
	Status     int
	StatusText string
}

func NewHTTPError(status int, statusText string) *HTTPError {
	return &HTTPError{
		Status:     status,
		StatusText: statusText,
	}
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("%d %s", e.Status, e.StatusText)
}
