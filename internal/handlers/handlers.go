// Package handlers contains the fiber HTTP handlers.
package handlers

import (
	"context"
	"log"

	"charla/server/internal/accounts"
	"charla/server/internal/apperr"
	"charla/server/internal/blob"
	"charla/server/internal/chat"
	"charla/server/internal/models"
	ws "charla/server/internal/websocket"

	"github.com/gofiber/fiber/v2"
)

// Accounts registers users and checks credentials.
type Accounts interface {
	Register(ctx context.Context, reg accounts.Registration) (*models.User, error)
	Login(ctx context.Context, email, password string) (*models.User, error)
	EmailExists(ctx context.Context, email string) (bool, error)
	ListUsers(ctx context.Context) ([]models.UserSummary, error)
}

// Groups creates and lists groups.
type Groups interface {
	CreateGroup(ctx context.Context, name string, photo *string, memberIDs []int64) (int64, error)
	GroupsForUser(ctx context.Context, userID int64) ([]models.Group, error)
}

// History reads stored conversations.
type History interface {
	FetchDirectHistory(ctx context.Context, userA, userB int64) ([]models.EnrichedMessage, error)
	FetchGroupHistory(ctx context.Context, groupID int64) ([]models.EnrichedMessage, error)
}

// Handler holds the dependencies shared by all HTTP handlers.
type Handler struct {
	Accounts Accounts
	Groups   Groups
	History  History
	Router   ws.Dispatcher
	Blobs    blob.Store
	Hub      *ws.Hub
}

// Health reports that the API is up.
func (h *Handler) Health(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":  "ok",
		"message": "Charla API is running",
	})
}

// Compile-time check that the router satisfies the dispatcher contract.
var _ ws.Dispatcher = (*chat.Router)(nil)

// fail writes err as a JSON error response. Server side failures are logged
// and reported generically.
func fail(c *fiber.Ctx, op string, err error) error {
	status := apperr.Status(err)
	if status >= fiber.StatusInternalServerError {
		log.Printf("%s failed: %v", op, err)
	}
	return c.Status(status).JSON(fiber.Map{
		"success": false,
		"error":   apperr.Message(err),
	})
}

// queryID parses a numeric query parameter. Missing values are rejected.
func queryID(c *fiber.Ctx, key string) (int64, error) {
	id, err := models.ParseID(c.Query(key))
	if err != nil || !id.Set() {
		return 0, apperr.Validation("%s must be a positive integer", key)
	}
	return int64(id), nil
}

// formID parses an optional numeric form field.
func formID(c *fiber.Ctx, key string) (int64, error) {
	id, err := models.ParseID(c.FormValue(key))
	if err != nil {
		return 0, apperr.Validation("%s must be a positive integer", key)
	}
	return int64(id), nil
}
