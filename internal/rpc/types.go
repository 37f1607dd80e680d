package rpc

import (
	"encoding/json"

	"github.com/LeJamon/marketd/internal/core/market"
)

// JSON-RPC 2.0 Request
type JsonRpcRequest struct {
	JsonRpc string          `json:"jsonrpc"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
	ID      interface{}     `json:"id,omitempty"`
}

// JSON-RPC 2.0 Response
type JsonRpcResponse struct {
	JsonRpc string      `json:"jsonrpc"`
	Result  interface{} `json:"result,omitempty"`
	Error   *RpcError   `json:"error,omitempty"`
	ID      interface{} `json:"id,omitempty"`
}

// RpcError is a JSON-RPC 2.0 error object.
type RpcError struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

func (e *RpcError) Error() string { return e.Message }

// Standard JSON-RPC 2.0 error codes.
const (
	CodeParseError     = -32700
	CodeInvalidRequest = -32600
	CodeMethodNotFound = -32601
	CodeInvalidParams  = -32602
	CodeInternalError  = -32603

	// CodeMarketError carries a marketplace result code in Data
	CodeMarketError = -32000

	// CodeForbidden marks admin methods on a non-admin server
	CodeForbidden = -32001
)

func errParse() *RpcError {
	return &RpcError{Code: CodeParseError, Message: "parse error"}
}

func errInvalidRequest(msg string) *RpcError {
	return &RpcError{Code: CodeInvalidRequest, Message: msg}
}

func errMethodNotFound(method string) *RpcError {
	return &RpcError{Code: CodeMethodNotFound, Message: "method not found: " + method}
}

func errInvalidParams(msg string) *RpcError {
	return &RpcError{Code: CodeInvalidParams, Message: msg}
}

func errInternal(msg string) *RpcError {
	return &RpcError{Code: CodeInternalError, Message: msg}
}

func errForbidden() *RpcError {
	return &RpcError{Code: CodeForbidden, Message: "admin methods are disabled"}
}

// errMarket converts a non-success engine result into an RPC error carrying
// the typed result name.
func errMarket(result market.Result) *RpcError {
	return &RpcError{
		Code:    CodeMarketError,
		Message: result.Message(),
		Data:    result.String(),
	}
}
