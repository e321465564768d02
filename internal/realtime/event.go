package realtime

import (
	"encoding/json"
	"fmt"
)

// EventType identifies a WebSocket event
type EventType string

const (
	// Inbound
	EventRegister    EventType = "register"
	EventSendMessage EventType = "sendMessage"

	// Outbound
	EventReceiveMessage EventType = "receiveMessage"
	EventError          EventType = "error"
)

// Error codes sent to clients
const (
	ErrCodeInvalidEvent    = "INVALID_EVENT"
	ErrCodeInvalidPayload  = "INVALID_PAYLOAD"
	ErrCodeDeliveryFailure = "DELIVERY_FAILURE"
)

// Event is the wire envelope for every WebSocket frame
type Event struct {
	Type EventType       `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

// RegisterData announces the connection's user identity. Registration is an
// explicit event rather than implied by connecting, because clients may
// connect before authentication context is available on the channel.
type RegisterData struct {
	UserID string `json:"userId"`
}

// SendMessageData carries one outgoing chat message. Exactly one of
// Receiver or Room must be set.
type SendMessageData struct {
	Sender   string `json:"sender"`
	Receiver string `json:"receiver,omitempty"`
	Room     string `json:"room,omitempty"`
	Content  string `json:"content"`
	Type     string `json:"type,omitempty"`
}

// Validate enforces the sendMessage payload contract
func (d *SendMessageData) Validate() error {
	if d.Sender == "" {
		return fmt.Errorf("sender is required")
	}
	if d.Content == "" {
		return fmt.Errorf("content is required")
	}
	if d.Receiver == "" && d.Room == "" {
		return fmt.Errorf("one of receiver or room is required")
	}
	if d.Receiver != "" && d.Room != "" {
		return fmt.Errorf("receiver and room are mutually exclusive")
	}
	return nil
}

// ErrorData is the payload of an error event pushed to the sender
type ErrorData struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// NewEvent marshals data into an event envelope
func NewEvent(eventType EventType, data interface{}) (*Event, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}
	return &Event{Type: eventType, Data: raw}, nil
}
