package handlers

import "github.com/gofiber/fiber/v2"

// HealthHandler handles health check requests
type HealthHandler struct {
	Version string
	Ping    func() error
}

// NewHealthHandler creates a new health handler. Ping may be nil when no
// backing database is configured.
func NewHealthHandler(version string, ping func() error) *HealthHandler {
	return &HealthHandler{
		Version: version,
		Ping:    ping,
	}
}

// Check returns the health status of the service
func (h *HealthHandler) Check(c *fiber.Ctx) error {
	if h.Ping != nil {
		if err := h.Ping(); err != nil {
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
				"status": "unhealthy",
			})
		}
	}
	return c.JSON(fiber.Map{
		"status":  "healthy",
		"service": "WhatsApp OTP Service",
		"version": h.Version,
	})
}
