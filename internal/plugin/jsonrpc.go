package plugin

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"sync"
)

// JSON-RPC 2.0 error codes used by the host.
const (
	CodeParseError     = -32700
	CodeInvalidRequest = -32600
	CodeMethodNotFound = -32601
	CodeInvalidParams  = -32602
	CodeInternalError  = -32603
)

// Request is an incoming JSON-RPC request or notification.
// Notifications have no ID.
type Request struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id,omitempty"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
}

// IsNotification reports whether the request expects no response.
func (r *Request) IsNotification() bool {
	return len(r.ID) == 0 || bytes.Equal(r.ID, []byte("null"))
}

// Response is an outgoing JSON-RPC response.
type Response struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id"`
	Result  interface{}     `json:"result,omitempty"`
	Error   *RPCError       `json:"error,omitempty"`
}

// RPCError is the error member of a Response.
type RPCError struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

func (e *RPCError) Error() string {
	return fmt.Sprintf("rpc error %d: %s", e.Code, e.Message)
}

// Notification is an outgoing JSON-RPC notification.
type Notification struct {
	JSONRPC string      `json:"jsonrpc"`
	Method  string      `json:"method"`
	Params  interface{} `json:"params"`
}

// Stream reads requests from and writes messages to the lightningd pipe.
//
// Writes are serialized so log notifications and responses never interleave.
type Stream struct {
	dec *json.Decoder

	mu  sync.Mutex
	out io.Writer
}

// NewStream wraps the plugin's stdin and stdout.
func NewStream(in io.Reader, out io.Writer) *Stream {
	return &Stream{dec: json.NewDecoder(in), out: out}
}

// Read decodes the next request. Returns io.EOF when lightningd closes the pipe.
func (s *Stream) Read() (*Request, error) {
	var req Request
	if err := s.dec.Decode(&req); err != nil {
		return nil, err
	}
	return &req, nil
}

// Write encodes one message followed by the blank-line separator lightningd
// expects between messages.
func (s *Stream) Write(v interface{}) error {
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal message: %w", err)
	}
	b = append(b, '\n', '\n')

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.out.Write(b); err != nil {
		return fmt.Errorf("write message: %w", err)
	}
	return nil
}

// Reply writes a successful response.
func (s *Stream) Reply(id json.RawMessage, result interface{}) error {
	return s.Write(Response{JSONRPC: "2.0", ID: id, Result: result})
}

// ReplyError writes an error response.
func (s *Stream) ReplyError(id json.RawMessage, rpcErr *RPCError) error {
	return s.Write(Response{JSONRPC: "2.0", ID: id, Error: rpcErr})
}

// Notify writes a notification.
func (s *Stream) Notify(method string, params interface{}) error {
	return s.Write(Notification{JSONRPC: "2.0", Method: method, Params: params})
}
