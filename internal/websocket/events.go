package websocket

import (
	"encoding/json"
	"time"

	"charla/server/internal/chat"
	"charla/server/internal/models"
)

// EventType represents different WebSocket event types
type EventType string

const (
	// Message events, used in both directions
	EventDirectMessage EventType = chat.EventDirectMessage
	EventGroupMessage  EventType = chat.EventGroupMessage

	// Error events, sent only to the connection whose request failed
	EventError EventType = "error"
)

// WSMessage represents an outbound WebSocket message
type WSMessage struct {
	Type      EventType   `json:"type"`
	Payload   interface{} `json:"payload"`
	Timestamp time.Time   `json:"timestamp"`
}

// IncomingMessage represents messages received from clients
type IncomingMessage struct {
	Type    EventType       `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// DirectMessagePayload is the inbound direct-message payload
type DirectMessagePayload struct {
	Sender    models.ID `json:"sender"`
	Recipient models.ID `json:"recipient"`
	Content   string    `json:"content"`
	Kind      string    `json:"kind"`
}

// GroupMessagePayload is the inbound group-message payload
type GroupMessagePayload struct {
	Sender  models.ID `json:"sender"`
	Group   models.ID `json:"group"`
	Content string    `json:"content"`
	Kind    string    `json:"kind"`
}

// ErrorPayload represents error event payload
type ErrorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Request converts the payload into a router request
func (p DirectMessagePayload) Request() chat.DirectSend {
	return chat.DirectSend{
		From:    chat.Identity{UserID: int64(p.Sender)},
		To:      int64(p.Recipient),
		Content: p.Content,
		Kind:    models.Kind(p.Kind),
	}
}

// Request converts the payload into a router request
func (p GroupMessagePayload) Request() chat.GroupSend {
	return chat.GroupSend{
		From:    chat.Identity{UserID: int64(p.Sender)},
		Group:   int64(p.Group),
		Content: p.Content,
		Kind:    models.Kind(p.Kind),
	}
}
