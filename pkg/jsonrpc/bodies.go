package jsonrpc

import (
	"encoding/json"
	"reflect"
)

const Version = "2.0"

type Request struct {
	Jsonrpc string      `json:"jsonrpc"`
	Id      interface{} `json:"id"`
	Method  string      `json:"method"`
	Params  interface{} `json:"params,omitempty"`
}

type Response struct {
	Jsonrpc string          `json:"jsonrpc"`
	Id      interface{}     `json:"id"`
	Result  json.RawMessage `json:"result,omitempty"`
	Error   *RPCError       `json:"error,omitempty"`
}

// NewRequest assembles an outbound envelope. The method name is taken
// as-is; validating it is the caller's job.
func NewRequest(method string, id interface{}, args ...interface{}) *Request {
	return &Request{
		Jsonrpc: Version,
		Id:      id,
		Method:  method,
		Params:  ShapeParams(args...),
	}
}

// ShapeParams folds variadic call arguments into the params value of the
// envelope. Servers expect either one object of named parameters or an
// array of positional ones, so a lone map or struct is sent unwrapped
// while everything else, including a lone slice, stays positional. Zero
// arguments return nil so the params key is omitted entirely.
func ShapeParams(args ...interface{}) interface{} {
	if len(args) == 0 {
		return nil
	}

	if len(args) == 1 && isNamedParams(args[0]) {
		return args[0]
	}

	return []interface{}(args)
}

func isNamedParams(arg interface{}) bool {
	if arg == nil {
		return false
	}

	v := reflect.ValueOf(arg)
	for v.Kind() == reflect.Ptr {
		if v.IsNil() {
			return false
		}
		v = v.Elem()
	}

	return v.Kind() == reflect.Map || v.Kind() == reflect.Struct
}
