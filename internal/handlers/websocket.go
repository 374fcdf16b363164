package handlers

import (
	ws "charla/server/internal/websocket"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
)

// WebSocketUpgrade checks if the request should be upgraded to WebSocket
func WebSocketUpgrade(c *fiber.Ctx) error {
	if websocket.IsWebSocketUpgrade(c) {
		return c.Next()
	}

	return c.Status(fiber.StatusUpgradeRequired).JSON(fiber.Map{
		"success": false,
		"error":   "WebSocket upgrade required",
	})
}

// WebSocket serves one realtime connection until it closes. It returns only
// after both pumps have stopped; the conn is recycled once it returns.
func (h *Handler) WebSocket(c *websocket.Conn) {
	client := ws.NewClient(c, h.Hub, h.Router)
	h.Hub.Register(client)

	go client.WritePump()
	client.ReadPump()
	<-client.Done()
}

// GetWebSocketStats returns WebSocket connection statistics
func (h *Handler) GetWebSocketStats(c *fiber.Ctx) error {
	if h.Hub == nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"success": false,
			"error":   "WebSocket hub not initialized",
		})
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data": fiber.Map{
			"connections": h.Hub.GetOnlineCount(),
		},
	})
}
