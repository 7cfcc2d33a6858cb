package rpc

import (
	"encoding/json"
	"errors"
	"fmt"
)

const (
	jsonRPCVersion = "2.0"

	jsonRPCParseError          = -32700
	jsonRPCInvalidRequestError = -32600
	jsonRPCMethodNotFoundError = -32601
	jsonRPCInvalidParamError   = -32602
	jsonRPCInternalError       = -32603
)

// ErrSubscriptionClosed is returned by Next once a subscription is closed or has failed.
var ErrSubscriptionClosed = errors.New("subscription closed")

type JSONRPCRequest struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      uint64          `json:"id"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
}

func newRequest(id uint64, method string, params interface{}) (*JSONRPCRequest, error) {
	req := &JSONRPCRequest{
		JSONRPC: jsonRPCVersion,
		ID:      id,
		Method:  method,
	}
	if params != nil {
		encoded, err := json.Marshal(params)
		if err != nil {
			return nil, fmt.Errorf("encoding params of %s: %w", method, err)
		}
		req.Params = encoded
	}
	return req, nil
}

func (r *JSONRPCRequest) Validate() error {
	if r.JSONRPC != jsonRPCVersion {
		return fmt.Errorf("invalid json rpc version %s", r.JSONRPC)
	}
	if r.Method == "" {
		return fmt.Errorf("json RPC method must be specified")
	}
	return nil
}

// Error is the error object of a JSON-RPC response.
type Error struct {
	Message string          `json:"message"`
	Code    int             `json:"code"`
	Data    json.RawMessage `json:"data,omitempty"`
}

func (e *Error) Error() string {
	return fmt.Sprintf("json rpc error %d: %s", e.Code, e.Message)
}

type JSONRPCResponse struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      *uint64         `json:"id"`
	Result  json.RawMessage `json:"result,omitempty"`
	Error   *Error          `json:"error,omitempty"`
}

// decodeResult returns the response error or unmarshals the result into out.
func (r *JSONRPCResponse) decodeResult(out interface{}) error {
	if r.Error != nil {
		return r.Error
	}
	if out == nil {
		return nil
	}
	if len(r.Result) == 0 {
		return errors.New("json rpc response has neither result nor error")
	}
	return json.Unmarshal(r.Result, out)
}

// JSONRPCNotification is a server push of a subscription.
type JSONRPCNotification struct {
	JSONRPC string             `json:"jsonrpc"`
	Method  string             `json:"method"`
	Params  notificationParams `json:"params"`
}

type notificationParams struct {
	Result       json.RawMessage `json:"result"`
	Subscription uint64          `json:"subscription"`
}
