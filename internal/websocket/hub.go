package websocket

import (
	"encoding/json"
	"log"
	"sync"
	"time"

	"charla/server/internal/models"
)

// Hub is the registry of live connections. Every broadcast goes to every
// open connection, the sender's included; clients filter by the ids in the
// record.
type Hub struct {
	// Registered clients mapped by connection ID
	clients map[string]*Client

	mu sync.RWMutex
}

// NewHub creates a new WebSocket hub
func NewHub() *Hub {
	return &Hub{
		clients: make(map[string]*Client),
	}
}

// Register adds a client to the hub and marks it open
func (h *Hub) Register(client *Client) {
	h.mu.Lock()
	h.clients[client.ID] = client
	client.setState(StateOpen)
	count := len(h.clients)
	h.mu.Unlock()

	log.Printf("Client connected: %s (%d open)", client.ID, count)
}

// Unregister removes a client from the hub. Closed is terminal; calling it
// again is a no-op.
func (h *Hub) Unregister(client *Client) {
	h.mu.Lock()
	if _, ok := h.clients[client.ID]; !ok {
		h.mu.Unlock()
		return
	}
	delete(h.clients, client.ID)
	client.setState(StateClosed)
	close(client.Send)
	count := len(h.clients)
	h.mu.Unlock()

	log.Printf("Client disconnected: %s (%d open)", client.ID, count)
}

// BroadcastDirect sends a direct-message event to every open connection
func (h *Hub) BroadcastDirect(msg *models.EnrichedMessage) {
	h.Broadcast(WSMessage{Type: EventDirectMessage, Payload: msg, Timestamp: time.Now()})
}

// BroadcastGroup sends a group-message event to every open connection
func (h *Hub) BroadcastGroup(msg *models.EnrichedMessage) {
	h.Broadcast(WSMessage{Type: EventGroupMessage, Payload: msg, Timestamp: time.Now()})
}

// Broadcast sends a message to all open clients. Clients whose send buffer
// is full are disconnected.
func (h *Hub) Broadcast(message WSMessage) {
	data, err := json.Marshal(message)
	if err != nil {
		log.Printf("Failed to marshal message: %v", err)
		return
	}

	var slow []*Client

	h.mu.RLock()
	for _, client := range h.clients {
		if client.State() != StateOpen {
			continue
		}
		select {
		case client.Send <- data:
		default:
			slow = append(slow, client)
		}
	}
	h.mu.RUnlock()

	for _, client := range slow {
		log.Printf("Dropping client %s: send buffer full", client.ID)
		h.Unregister(client)
	}
}

// SendTo delivers a message to a single client if it is still registered
func (h *Hub) SendTo(client *Client, message WSMessage) bool {
	data, err := json.Marshal(message)
	if err != nil {
		log.Printf("Failed to marshal message: %v", err)
		return false
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	if _, ok := h.clients[client.ID]; !ok {
		return false
	}
	select {
	case client.Send <- data:
		return true
	default:
		log.Printf("Failed to send message to client: %s", client.ID)
		return false
	}
}

// GetOnlineCount returns the number of currently open connections
func (h *Hub) GetOnlineCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	return len(h.clients)
}

// Shutdown closes every connection
func (h *Hub) Shutdown() {
	h.mu.RLock()
	clients := make([]*Client, 0, len(h.clients))
	for _, client := range h.clients {
		clients = append(clients, client)
	}
	h.mu.RUnlock()

	for _, client := range clients {
		h.Unregister(client)
	}
	log.Printf("Closed %d client connections", len(clients))
}
