package middleware

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
)

// RateLimiter limits requests per client IP. Identities are claimed by the
// client, so they are not used as the key.
func RateLimiter(max int, expiration time.Duration) fiber.Handler {
	return limiter.New(limiter.Config{
		Max:        max,
		Expiration: expiration,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"success": false,
				"error":   "Too many requests, please try again later",
			})
		},
	})
}

// StrictRateLimiter for credential endpoints
func StrictRateLimiter() fiber.Handler {
	return RateLimiter(10, 15*time.Minute)
}

// ModerateRateLimiter for message sends
func ModerateRateLimiter() fiber.Handler {
	return RateLimiter(60, 1*time.Minute)
}

// UploadRateLimiter for file uploads
func UploadRateLimiter() fiber.Handler {
	return RateLimiter(20, 5*time.Minute)
}
