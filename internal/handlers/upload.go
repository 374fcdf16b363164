package handlers

import (
	"charla/server/internal/chat"

	"github.com/gofiber/fiber/v2"
)

// UploadFile stores the uploaded file and sends it as a message to either
// recipient_id or group_id.
func (h *Handler) UploadFile(c *fiber.Ctx) error {
	senderID, err := formID(c, "sender_id")
	if err != nil {
		return fail(c, "upload", err)
	}
	recipientID, err := formID(c, "recipient_id")
	if err != nil {
		return fail(c, "upload", err)
	}
	groupID, err := formID(c, "group_id")
	if err != nil {
		return fail(c, "upload", err)
	}

	file, header, err := openForm(c, "file")
	if err != nil {
		return fail(c, "upload", err)
	}

	req := chat.Upload{
		From:  chat.Identity{UserID: senderID},
		To:    recipientID,
		Group: groupID,
	}
	if file != nil {
		defer file.Close()
		req.File, req.Filename, req.Size = file, header.Filename, header.Size
	}

	msg, err := h.Router.Dispatch(c.UserContext(), req)
	if err != nil {
		return fail(c, "upload", err)
	}
	return c.JSON(msg)
}
