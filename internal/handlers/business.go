package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/otpworks/otp-backend/internal/models"
	"github.com/otpworks/otp-backend/internal/services"
)

// BusinessHandler handles client provisioning under a business.
type BusinessHandler struct {
	adminService *services.AdminService
}

// NewBusinessHandler creates a new business handler
func NewBusinessHandler(adminService *services.AdminService) *BusinessHandler {
	return &BusinessHandler{adminService: adminService}
}

type clientCreateRequest struct {
	Name   string `json:"name"`
	Scopes string `json:"scopes"`
}

// CreateClient provisions an API client under the business in the path.
// The API key is returned once, in this response only.
func (h *BusinessHandler) CreateClient(c *fiber.Ctx) error {
	admin, ok := c.Locals("admin").(*models.Admin)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Not authenticated",
		})
	}

	businessID, err := c.ParamsInt("id")
	if err != nil || businessID <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid business ID",
		})
	}

	var req clientCreateRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}
	if req.Name == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Client name is required",
		})
	}

	client, err := h.adminService.CreateClient(admin.ID, uint(businessID), req.Name, req.Scopes)
	if err != nil {
		switch {
		case errors.Is(err, models.ErrNotFound):
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Business not found",
			})
		case errors.Is(err, models.ErrPersistenceConflict):
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{
				"error": "Client could not be created",
			})
		default:
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "Failed to create client",
			})
		}
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"id":          client.ID,
		"name":        client.Name,
		"business_id": client.BusinessID,
		"scopes":      client.Scopes,
		"api_key":     client.APIKey,
		"created_at":  client.CreatedAt,
	})
}
