package session

import (
	"context"

	"github.com/flowboard/flowboard/internal/model"
)

// MessageType names a message crossing the UI boundary.
type MessageType string

const (
	// MessageReady asks for the initial load (UI to core)
	MessageReady MessageType = "ready"

	// MessageUpdateData submits the full current document for persistence (UI to core)
	MessageUpdateData MessageType = "updateData"

	// MessageLoadData delivers the full document after a read (core to UI)
	MessageLoadData MessageType = "loadData"

	// MessageNoWorkspace reports that there is no storage root (core to UI)
	MessageNoWorkspace MessageType = "noWorkspace"

	// MessageError reports a write or other operational failure (core to UI)
	MessageError MessageType = "error"
)

// Message is one boundary message. Every data exchange carries the whole document.
type Message struct {
	Type    MessageType     `json:"type"`
	Data    *model.Document `json:"data,omitempty"`
	Message string          `json:"message,omitempty"`
}

// LoadData builds a loadData message.
func LoadData(doc model.Document) Message {
	return Message{Type: MessageLoadData, Data: &doc}
}

// ErrorMessage builds an error message.
func ErrorMessage(text string) Message {
	return Message{Type: MessageError, Message: text}
}

// Sink receives messages addressed to the UI.
type Sink interface {
	Send(ctx context.Context, msg Message) error
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(ctx context.Context, msg Message) error

// Send implements Sink.
func (f SinkFunc) Send(ctx context.Context, msg Message) error { return f(ctx, msg) }
