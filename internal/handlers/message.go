package handlers

import (
	"charla/server/internal/apperr"
	"charla/server/internal/chat"
	"charla/server/internal/models"

	"github.com/gofiber/fiber/v2"
)

// SendMessageRequest represents a direct message sent over REST
type SendMessageRequest struct {
	SenderID    models.ID `json:"sender_id"`
	RecipientID models.ID `json:"recipient_id"`
	Content     string    `json:"content"`
	Kind        string    `json:"kind"`
}

// SendGroupMessageRequest represents a group message sent over REST
type SendGroupMessageRequest struct {
	SenderID models.ID `json:"sender_id"`
	GroupID  models.ID `json:"group_id"`
	Content  string    `json:"content"`
	Kind     string    `json:"kind"`
}

// GetMessages returns the direct conversation between userA and userB
func (h *Handler) GetMessages(c *fiber.Ctx) error {
	userA, err := queryID(c, "userA")
	if err != nil {
		return fail(c, "direct history", err)
	}
	userB, err := queryID(c, "userB")
	if err != nil {
		return fail(c, "direct history", err)
	}

	messages, err := h.History.FetchDirectHistory(c.UserContext(), userA, userB)
	if err != nil {
		return fail(c, "direct history", err)
	}
	return c.JSON(messages)
}

// GetGroupMessages returns a group's conversation
func (h *Handler) GetGroupMessages(c *fiber.Ctx) error {
	groupID, err := queryID(c, "groupId")
	if err != nil {
		return fail(c, "group history", err)
	}

	messages, err := h.History.FetchGroupHistory(c.UserContext(), groupID)
	if err != nil {
		return fail(c, "group history", err)
	}
	return c.JSON(messages)
}

// SendMessage sends a direct text message and broadcasts it
func (h *Handler) SendMessage(c *fiber.Ctx) error {
	var req SendMessageRequest
	if err := c.BodyParser(&req); err != nil {
		return fail(c, "send message", apperr.Validation("Invalid request body"))
	}

	msg, err := h.Router.Dispatch(c.UserContext(), chat.DirectSend{
		From:    chat.Identity{UserID: int64(req.SenderID)},
		To:      int64(req.RecipientID),
		Content: req.Content,
		Kind:    models.Kind(req.Kind),
	})
	if err != nil {
		return fail(c, "send message", err)
	}
	return c.JSON(msg)
}

// SendGroupMessage sends a group text message and broadcasts it
func (h *Handler) SendGroupMessage(c *fiber.Ctx) error {
	var req SendGroupMessageRequest
	if err := c.BodyParser(&req); err != nil {
		return fail(c, "send group message", apperr.Validation("Invalid request body"))
	}

	msg, err := h.Router.Dispatch(c.UserContext(), chat.GroupSend{
		From:    chat.Identity{UserID: int64(req.SenderID)},
		Group:   int64(req.GroupID),
		Content: req.Content,
		Kind:    models.Kind(req.Kind),
	})
	if err != nil {
		return fail(c, "send group message", err)
	}
	return c.JSON(msg)
}
