package websocket

import (
	"context"
	"encoding/json"
	"log"
	"sync/atomic"
	"time"

	"charla/server/internal/apperr"
	"charla/server/internal/chat"
	"charla/server/internal/models"

	"github.com/gofiber/contrib/websocket"
	"github.com/google/uuid"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = 54 * time.Second
	maxMessageSize = 64 * 1024
	sendBufferSize = 256
)

// State is the lifecycle state of a connection
type State int32

const (
	StateConnecting State = iota
	StateOpen
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateConnecting:
		return "connecting"
	case StateOpen:
		return "open"
	default:
		return "closed"
	}
}

// Dispatcher handles validated send requests
type Dispatcher interface {
	Dispatch(ctx context.Context, req chat.Request) (*models.EnrichedMessage, error)
}

// Client represents a WebSocket client connection. No user is bound to it;
// inbound events carry their own sender id.
type Client struct {
	ID     string
	Conn   *websocket.Conn
	Hub    *Hub
	Router Dispatcher
	Send   chan []byte

	state atomic.Int32
	done  chan struct{}
}

// NewClient creates a new WebSocket client in the connecting state
func NewClient(conn *websocket.Conn, hub *Hub, router Dispatcher) *Client {
	return &Client{
		ID:     uuid.NewString(),
		Conn:   conn,
		Hub:    hub,
		Router: router,
		Send:   make(chan []byte, sendBufferSize),
		done:   make(chan struct{}),
	}
}

// Done is closed once WritePump has returned. The connection must not be
// released before then.
func (c *Client) Done() <-chan struct{} {
	return c.done
}

// State returns the current lifecycle state
func (c *Client) State() State {
	return State(c.state.Load())
}

func (c *Client) setState(s State) {
	c.state.Store(int32(s))
}

// ReadPump handles incoming messages from the client
func (c *Client) ReadPump() {
	defer func() {
		c.Hub.Unregister(c)
		c.Conn.Close()
	}()

	c.Conn.SetReadLimit(maxMessageSize)
	c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error {
		c.Conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, message, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("WebSocket error: %v", err)
			}
			break
		}

		c.handleIncomingMessage(message)
	}
}

// WritePump handles outgoing messages to the client
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
		close(c.done)
	}()

	for {
		select {
		case message, ok := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := c.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
				log.Printf("Write error: %v", err)
				return
			}

		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// handleIncomingMessage decodes one frame and forwards it to the router.
// Frames are handled in arrival order; a send that was accepted completes
// even if the connection closes meanwhile.
func (c *Client) handleIncomingMessage(data []byte) {
	var incoming IncomingMessage
	if err := json.Unmarshal(data, &incoming); err != nil {
		log.Printf("Failed to parse message: %v", err)
		c.sendError(apperr.Validation("malformed message"))
		return
	}

	var req chat.Request
	switch incoming.Type {
	case EventDirectMessage:
		var payload DirectMessagePayload
		if err := json.Unmarshal(incoming.Payload, &payload); err != nil {
			c.sendError(apperr.Validation("malformed %s payload", incoming.Type))
			return
		}
		req = payload.Request()
	case EventGroupMessage:
		var payload GroupMessagePayload
		if err := json.Unmarshal(incoming.Payload, &payload); err != nil {
			c.sendError(apperr.Validation("malformed %s payload", incoming.Type))
			return
		}
		req = payload.Request()
	default:
		log.Printf("Unknown message type: %s", incoming.Type)
		return
	}

	if _, err := c.Router.Dispatch(context.Background(), req); err != nil {
		if apperr.Status(err) >= 500 {
			log.Printf("Failed to handle %s from client %s: %v", incoming.Type, c.ID, err)
		}
		c.sendError(err)
	}
}

func (c *Client) sendError(err error) {
	c.Hub.SendTo(c, WSMessage{
		Type: EventError,
		Payload: ErrorPayload{
			Code:    apperr.Code(err),
			Message: apperr.Message(err),
		},
		Timestamp: time.Now(),
	})
}
