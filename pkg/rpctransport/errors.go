package rpctransport

import (
	"errors"
	"fmt"
)

// Standard JSON-RPC 2.0 error codes, plus the node-specific alternatives
// some clients return for "unknown method".
const (
	CodeMethodNotFound    = -32601
	CodeMethodNotFoundAlt = -32000 // some nodes use the generic server-error code instead
	CodeInvalidResponse   = -32700
	CodeCallTimeout       = -32001
	CodeNoResponse        = -32002
	CodeCallFailed        = -32003
	CodeConnectionClosed  = -32004
)

// Sentinel errors checked via errors.Is. RPCError.Is matches a sentinel
// when its Code corresponds to that sentinel's taxonomy slot.
var (
	ErrCallTimeout      = errors.New("rpctransport: call timed out")
	ErrNoResponse       = errors.New("rpctransport: no response received")
	ErrConnectionClosed = errors.New("rpctransport: connection closed")
	ErrInvalidResponse  = errors.New("rpctransport: invalid response")
	ErrMethodNotFound   = errors.New("rpctransport: method not found")
)

// RPCError is the application-level error shape returned by a JSON-RPC
// server, or synthesized by the transport for transport-level failures
// (timeouts, closed connections, non-2xx HTTP responses).
type RPCError struct {
	Code    int
	Message string
	Data    interface{}
}

func (e *RPCError) Error() string {
	if e.Data != nil {
		return fmt.Sprintf("rpc error %d: %s (data: %v)", e.Code, e.Message, e.Data)
	}
	return fmt.Sprintf("rpc error %d: %s", e.Code, e.Message)
}

// Is reports whether e belongs to the taxonomy slot target names, so
// callers can write errors.Is(err, rpctransport.ErrMethodNotFound) without
// caring which code ended up in Code.
func (e *RPCError) Is(target error) bool {
	switch target {
	case ErrMethodNotFound:
		return e.Code == CodeMethodNotFound || e.Code == CodeMethodNotFoundAlt
	case ErrInvalidResponse:
		return e.Code == CodeInvalidResponse
	case ErrCallTimeout:
		return e.Code == CodeCallTimeout
	case ErrNoResponse:
		return e.Code == CodeNoResponse
	case ErrConnectionClosed:
		return e.Code == CodeConnectionClosed
	}
	return false
}

func newRPCError(code int, message string, data interface{}) *RPCError {
	return &RPCError{Code: code, Message: message, Data: data}
}
