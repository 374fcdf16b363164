package routes

import (
	"charla/server/internal/handlers"
	"charla/server/internal/middleware"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
)

// SetupRoutes configures all application routes. Files written by the disk
// blob store are served from uploadDir when it is not empty.
func SetupRoutes(app *fiber.App, h *handlers.Handler, uploadDir string) {
	app.Get("/api/health", h.Health)

	// Accounts
	app.Post("/register", middleware.StrictRateLimiter(), h.Register)
	app.Post("/login", middleware.StrictRateLimiter(), h.Login)
	app.Post("/check-email", h.CheckEmail)
	app.Get("/users", h.GetUsers)

	// Groups
	app.Get("/groups", h.GetGroups)
	app.Post("/groups", h.CreateGroup)

	// Messages
	app.Get("/messages", h.GetMessages)
	app.Post("/messages", middleware.ModerateRateLimiter(), h.SendMessage)
	app.Get("/group-messages", h.GetGroupMessages)
	app.Post("/group-messages", middleware.ModerateRateLimiter(), h.SendGroupMessage)
	app.Post("/upload", middleware.UploadRateLimiter(), h.UploadFile)

	if uploadDir != "" {
		app.Static("/uploads", uploadDir)
	}

	// WebSocket
	app.Get("/ws", handlers.WebSocketUpgrade, websocket.New(h.WebSocket))
	app.Get("/ws/stats", h.GetWebSocketStats)
}
