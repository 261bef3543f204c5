/*
Package protocol implements the JSON-RPC 2.0 envelopes exchanged between
osamcp clients and servers, plus the payload shapes for each method.
*/
package protocol

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// Version is the protocol revision negotiated when a client does not request
// one explicitly.
const Version = "2024-10-30"

// JSONRPCVersion tags every envelope on the wire.
const JSONRPCVersion = "2.0"

// Error codes emitted by the server. The set is closed; nothing outside it
// is ever sent.
const (
	// CodeInvalidRequest rejects a repeated initialize.
	CodeInvalidRequest = -32600
	// CodeMethodNotFound rejects methods the server does not implement.
	CodeMethodNotFound = -32601
	// CodeInvalidParams rejects malformed params, unknown tools, and bad
	// script arguments.
	CodeInvalidParams = -32602
	// CodeToolExecFailed reports an interpreter run that started but did not
	// succeed. Protocol-level failures never use this code.
	CodeToolExecFailed = -32010
)

// RequestEnvelope is one incoming request or notification. A request without
// an id (or with a null id) is a notification and is never answered.
type RequestEnvelope struct {
	Protocol string          `json:"jsonrpc"`
	ID       any             `json:"id,omitempty"`
	Method   string          `json:"method"`
	Params   json.RawMessage `json:"params,omitempty"`
}

// DecodeRequest parses one request payload, applying protocol defaults:
// a missing jsonrpc field decodes as "2.0" and missing params decode as an
// empty object. A missing method is an error.
func DecodeRequest(data []byte) (*RequestEnvelope, error) {
	var request RequestEnvelope
	if err := json.Unmarshal(data, &request); err != nil {
		return nil, fmt.Errorf("error decoding request envelope: %w", err)
	}
	if request.Method == "" {
		return nil, errors.New("request envelope has no method")
	}
	if request.Protocol == "" {
		request.Protocol = JSONRPCVersion
	}
	if len(request.Params) == 0 || bytes.Equal(bytes.TrimSpace(request.Params), []byte("null")) {
		request.Params = json.RawMessage(`{}`)
	}
	return &request, nil
}

// IsNotification reports whether the request carries no answerable id.
func (r *RequestEnvelope) IsNotification() bool {
	return r.ID == nil
}

// ResponseEnvelope is one outgoing response. Exactly one of Result and Error
// is set; the other is omitted from the wire form entirely.
type ResponseEnvelope struct {
	Protocol string          `json:"jsonrpc"`
	ID       any             `json:"id"`
	Result   json.RawMessage `json:"result,omitempty"`
	Error    *ResponseError  `json:"error,omitempty"`
}

// NewSuccess builds a success envelope carrying result. The id is echoed
// verbatim from the request.
func NewSuccess(id any, result any) (*ResponseEnvelope, error) {
	payload, err := json.Marshal(result)
	if err != nil {
		return nil, fmt.Errorf("error encoding result: %w", err)
	}
	return &ResponseEnvelope{Protocol: JSONRPCVersion, ID: id, Result: payload}, nil
}

// NewError builds an error envelope. The id is echoed verbatim from the
// request.
func NewError(id any, rpcErr *ResponseError) *ResponseEnvelope {
	return &ResponseEnvelope{Protocol: JSONRPCVersion, ID: id, Error: rpcErr}
}

// Encode serializes the envelope to its wire payload.
func (e *ResponseEnvelope) Encode() (string, error) {
	data, err := json.Marshal(e)
	if err != nil {
		return "", fmt.Errorf("error encoding response envelope: %w", err)
	}
	return string(data), nil
}

// DecodeResponse parses one response payload.
func DecodeResponse(data []byte) (*ResponseEnvelope, error) {
	var response ResponseEnvelope
	if err := json.Unmarshal(data, &response); err != nil {
		return nil, fmt.Errorf("error decoding response envelope: %w", err)
	}
	return &response, nil
}

// ResponseError is the structured error object inside a response envelope.
type ResponseError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

// Error implements the error interface so clients can surface the structured
// object through ordinary error returns.
func (e *ResponseError) Error() string {
	return fmt.Sprintf("rpc error %d: %s", e.Code, e.Message)
}

// Errorf builds a ResponseError with a formatted message and no data.
func Errorf(code int, format string, args ...any) *ResponseError {
	return &ResponseError{Code: code, Message: fmt.Sprintf(format, args...)}
}
