package handlers

import (
	"encoding/json"
	"strings"

	"charla/server/internal/apperr"
	"charla/server/internal/models"

	"github.com/gofiber/fiber/v2"
)

// CreateGroup creates a group from a multipart form: name, member_ids as a
// JSON array and an optional group_photo file.
func (h *Handler) CreateGroup(c *fiber.Ctx) error {
	name := strings.TrimSpace(c.FormValue("name"))
	if name == "" {
		return fail(c, "create group", apperr.Validation("Group name is required"))
	}

	var members []models.ID
	if err := json.Unmarshal([]byte(c.FormValue("member_ids")), &members); err != nil {
		return fail(c, "create group", apperr.Validation("member_ids must be a JSON array of user ids"))
	}

	memberIDs := make([]int64, 0, len(members))
	for _, id := range members {
		if !id.Set() {
			return fail(c, "create group", apperr.Validation("member_ids must be a JSON array of user ids"))
		}
		memberIDs = append(memberIDs, int64(id))
	}
	if len(memberIDs) == 0 {
		return fail(c, "create group", apperr.Validation("At least one member is required"))
	}

	file, header, err := openForm(c, "group_photo")
	if err != nil {
		return fail(c, "create group", err)
	}

	var photo *string
	if file != nil {
		defer file.Close()
		ref, err := h.Blobs.Put(c.UserContext(), header.Filename, file, header.Size)
		if err != nil {
			return fail(c, "create group", apperr.Persistence("store group photo", err))
		}
		photo = &ref
	}

	groupID, err := h.Groups.CreateGroup(c.UserContext(), name, photo, memberIDs)
	if err != nil {
		return fail(c, "create group", err)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"groupId": groupID,
	})
}

// GetGroups lists the groups a user belongs to
func (h *Handler) GetGroups(c *fiber.Ctx) error {
	userID, err := queryID(c, "userId")
	if err != nil {
		return fail(c, "list groups", err)
	}

	groups, err := h.Groups.GroupsForUser(c.UserContext(), userID)
	if err != nil {
		return fail(c, "list groups", err)
	}
	return c.JSON(groups)
}
