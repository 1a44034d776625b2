// Package signalr implements a client for the server's push channel: a
// SignalR hub spoken with the JSON hub protocol over WebSockets or long
// polling, plus the reconnect policy that keeps it alive.
package signalr

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// RecordSeparator terminates every JSON hub protocol record.
const RecordSeparator byte = 0x1e

// Hub message types.
const (
	MessageInvocation       = 1
	MessageStreamItem       = 2
	MessageCompletion       = 3
	MessageStreamInvocation = 4
	MessageCancelInvocation = 5
	MessagePing             = 6
	MessageClose            = 7
)

// ErrHandshake is returned when the server rejects the protocol handshake.
var ErrHandshake = errors.New("signalr: handshake rejected")

// Message is a decoded hub message. Only the fields this client uses are
// kept.
type Message struct {
	Type         int               `json:"type"`
	Target       string            `json:"target,omitempty"`
	InvocationID string            `json:"invocationId,omitempty"`
	Arguments    []json.RawMessage `json:"arguments,omitempty"`
	Error        string            `json:"error,omitempty"`
}

// Handler receives the raw arguments of one invocation.
type Handler func(args []json.RawMessage) error

// Handlers maps invocation targets to handlers.
type Handlers map[string]Handler

type handshakeRequest struct {
	Protocol string `json:"protocol"`
	Version  int    `json:"version"`
}

type handshakeResponse struct {
	Error string `json:"error,omitempty"`
}

// handshakeRecord is the first record every client sends.
func handshakeRecord() []byte {
	b, _ := json.Marshal(handshakeRequest{Protocol: "json", Version: 1})
	return append(b, RecordSeparator)
}

func pingRecord() []byte {
	return []byte(`{"type":6}` + string(RecordSeparator))
}

// EncodeRecord marshals v and appends the record separator.
func EncodeRecord(v any) ([]byte, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return append(b, RecordSeparator), nil
}

// recordBuffer accumulates transport frames and yields complete records.
// A frame may carry several records, or end mid-record.
type recordBuffer struct {
	buf []byte
}

func (r *recordBuffer) write(p []byte) {
	r.buf = append(r.buf, p...)
}

// next returns the next complete record without its separator.
func (r *recordBuffer) next() ([]byte, bool) {
	i := bytes.IndexByte(r.buf, RecordSeparator)
	if i < 0 {
		return nil, false
	}
	rec := make([]byte, i)
	copy(rec, r.buf[:i])
	r.buf = r.buf[i+1:]
	return rec, true
}

func parseHandshake(rec []byte) error {
	var resp handshakeResponse
	if err := json.Unmarshal(rec, &resp); err != nil {
		return fmt.Errorf("signalr: decode handshake response: %w", err)
	}
	if resp.Error != "" {
		return fmt.Errorf("%w: %s", ErrHandshake, resp.Error)
	}
	return nil
}

func parseMessage(rec []byte) (Message, error) {
	var msg Message
	if err := json.Unmarshal(rec, &msg); err != nil {
		return Message{}, fmt.Errorf("signalr: decode message: %w", err)
	}
	return msg, nil
}
