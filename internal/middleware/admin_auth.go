package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/otpworks/otp-backend/internal/services"
)

// RequireAdmin guards admin routes with a Bearer JWT. The resolved admin is
// stored in c.Locals("admin") for the handler.
func RequireAdmin(adminService *services.AdminService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		auth := c.Get("Authorization")
		if !strings.HasPrefix(auth, "Bearer ") {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Missing bearer token",
			})
		}

		admin, err := adminService.Authenticate(strings.TrimPrefix(auth, "Bearer "))
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Invalid authentication token",
			})
		}

		c.Locals("admin", admin)
		return c.Next()
	}
}
