package handlers

import (
	"errors"
	"mime/multipart"

	"charla/server/internal/accounts"
	"charla/server/internal/apperr"

	"github.com/gofiber/fiber/v2"
)

// LoginRequest represents login request body
type LoginRequest struct {
	Email    string `json:"email" form:"email"`
	Password string `json:"password" form:"password"`
}

// CheckEmailRequest represents check-email request body
type CheckEmailRequest struct {
	Email string `json:"email" form:"email"`
}

// Register handles user registration. The body is multipart with a
// mandatory profile_photo file.
func (h *Handler) Register(c *fiber.Ctx) error {
	reg := accounts.Registration{
		Name:     c.FormValue("name"),
		Email:    c.FormValue("email"),
		Password: c.FormValue("password"),
	}

	file, header, err := openForm(c, "profile_photo")
	if err != nil {
		return fail(c, "register", err)
	}
	if file != nil {
		defer file.Close()
		reg.Photo, reg.PhotoName, reg.PhotoSize = file, header.Filename, header.Size
	}

	user, err := h.Accounts.Register(c.UserContext(), reg)
	if err != nil {
		return fail(c, "register", err)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"user":    user.ToResponse(),
	})
}

// Login handles user login
func (h *Handler) Login(c *fiber.Ctx) error {
	var req LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"error":   "Invalid request body",
		})
	}

	user, err := h.Accounts.Login(c.UserContext(), req.Email, req.Password)
	if errors.Is(err, apperr.ErrAuth) {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"success": false,
			"message": apperr.Message(err),
		})
	}
	if err != nil {
		return fail(c, "login", err)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"user":    user.ToResponse(),
	})
}

// CheckEmail reports whether an email is already registered
func (h *Handler) CheckEmail(c *fiber.Ctx) error {
	var req CheckEmailRequest
	if err := c.BodyParser(&req); err != nil || req.Email == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"error":   "Email is required",
		})
	}

	exists, err := h.Accounts.EmailExists(c.UserContext(), req.Email)
	if err != nil {
		return fail(c, "check email", err)
	}

	return c.JSON(fiber.Map{"exists": exists})
}

// GetUsers lists every registered user
func (h *Handler) GetUsers(c *fiber.Ctx) error {
	users, err := h.Accounts.ListUsers(c.UserContext())
	if err != nil {
		return fail(c, "list users", err)
	}
	return c.JSON(users)
}

// openForm opens an optional multipart file field. A missing field yields a
// nil file and no error.
func openForm(c *fiber.Ctx, field string) (multipart.File, *multipart.FileHeader, error) {
	header, err := c.FormFile(field)
	if err != nil {
		return nil, nil, nil
	}
	file, err := header.Open()
	if err != nil {
		return nil, nil, apperr.Upload("Failed to read " + field)
	}
	return file, header, nil
}
