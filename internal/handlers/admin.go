package handlers

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/otpworks/otp-backend/internal/models"
	"github.com/otpworks/otp-backend/internal/services"
)

// AdminHandler handles admin registration, login and business provisioning.
type AdminHandler struct {
	adminService *services.AdminService
	adminSecret  string
}

// NewAdminHandler creates a new admin handler. adminSecret gates admin
// registration (X-Admin-Secret header).
func NewAdminHandler(adminService *services.AdminService, adminSecret string) *AdminHandler {
	return &AdminHandler{adminService: adminService, adminSecret: adminSecret}
}

type adminRegisterRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type businessCreateRequest struct {
	Name           string `json:"name"`
	MessagingSID   string `json:"messaging_sid"`
	MessagingToken string `json:"messaging_token"`
	SenderNumber   string `json:"sender_number"`
}

// Register creates a new admin account, gated by the super-admin secret.
func (h *AdminHandler) Register(c *fiber.Ctx) error {
	if h.adminSecret == "" || c.Get("X-Admin-Secret") != h.adminSecret {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"error": "Invalid admin secret",
		})
	}

	var req adminRegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}
	if !strings.Contains(req.Email, "@") || req.Password == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Email and password are required",
		})
	}

	admin, err := h.adminService.RegisterAdmin(req.Email, req.Password)
	if err != nil {
		if errors.Is(err, models.ErrPersistenceConflict) {
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{
				"error": "Admin with this email already exists",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to create admin",
		})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"email":      admin.Email,
		"created_at": admin.CreatedAt,
	})
}

// Login exchanges admin credentials for a bearer token.
func (h *AdminHandler) Login(c *fiber.Ctx) error {
	var req loginRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	token, expiresIn, err := h.adminService.Login(req.Email, req.Password)
	if err != nil {
		if errors.Is(err, services.ErrInvalidCredentials) {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Invalid email or password",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Login failed",
		})
	}

	return c.JSON(fiber.Map{
		"access_token": token,
		"token_type":   "bearer",
		"expires_in":   expiresIn,
	})
}

// CreateBusiness provisions a tenant under the authenticated admin.
func (h *AdminHandler) CreateBusiness(c *fiber.Ctx) error {
	admin, ok := c.Locals("admin").(*models.Admin)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Not authenticated",
		})
	}

	var req businessCreateRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}
	if len(req.Name) < 3 || req.MessagingSID == "" || req.MessagingToken == "" || req.SenderNumber == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Name, messaging credentials and sender number are required",
		})
	}

	business, err := h.adminService.CreateBusiness(
		admin.ID, req.Name, req.MessagingSID, req.MessagingToken, req.SenderNumber)
	if err != nil {
		if errors.Is(err, models.ErrPersistenceConflict) {
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{
				"error": "Business already exists",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to create business",
		})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"id":         business.ID,
		"name":       business.Name,
		"created_at": business.CreatedAt,
	})
}
