package handlers

import (
	"errors"
	"regexp"

	"github.com/gofiber/fiber/v2"

	"github.com/otpworks/otp-backend/internal/models"
	"github.com/otpworks/otp-backend/internal/services"
	"github.com/otpworks/otp-backend/internal/utils"
)

var phonePattern = regexp.MustCompile(`^\+?[0-9]+$`)

// OTPHandler handles the public send/verify endpoints. Authentication is
// the X-API-Key header; resolution happens inside the engine so that it
// always precedes any write.
type OTPHandler struct {
	otpService *services.OTPService
}

// NewOTPHandler creates a new OTP handler
func NewOTPHandler(otpService *services.OTPService) *OTPHandler {
	return &OTPHandler{otpService: otpService}
}

type sendOTPRequest struct {
	PhoneNumber string `json:"phone_number"`
	Length      int    `json:"length"`
}

type verifyOTPRequest struct {
	PhoneNumber string `json:"phone_number"`
	OTPCode     string `json:"otp_code"`
}

func validPhone(phone string) bool {
	return len(phone) >= 10 && len(phone) <= 15 && phonePattern.MatchString(phone)
}

// Send issues a new OTP to the requested phone number.
func (h *OTPHandler) Send(c *fiber.Ctx) error {
	var req sendOTPRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	if !validPhone(req.PhoneNumber) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Phone number must be 10-15 digits with an optional leading +",
		})
	}
	if req.Length == 0 {
		req.Length = 6
	}
	if req.Length < utils.MinCodeLength || req.Length > utils.MaxCodeLength {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Length must be between 4 and 10",
		})
	}

	otp, err := h.otpService.SendOTP(c.Get("X-API-Key"), req.PhoneNumber, req.Length)
	if err != nil {
		switch {
		case errors.Is(err, models.ErrUnknownClient):
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"error": "Invalid client or API key",
			})
		case errors.Is(err, models.ErrTooManyActiveOTPs):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Too many active OTPs for this phone number",
			})
		case errors.Is(err, models.ErrDeliveryFailed):
			return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{
				"error": "Failed to deliver OTP message",
			})
		default:
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "An unexpected error occurred while sending the OTP",
			})
		}
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message":    "OTP sent successfully",
		"otp_id":     otp.ID,
		"expires_at": otp.ExpiresAt,
	})
}

// Verify consumes a submitted code. The response carries the verification
// result taxonomy and never echoes sensitive data.
func (h *OTPHandler) Verify(c *fiber.Ctx) error {
	var req verifyOTPRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	if !validPhone(req.PhoneNumber) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Phone number must be 10-15 digits with an optional leading +",
		})
	}
	if len(req.OTPCode) < utils.MinCodeLength || len(req.OTPCode) > utils.MaxCodeLength {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Code must be between 4 and 10 characters",
		})
	}

	err := h.otpService.VerifyOTP(c.Get("X-API-Key"), req.PhoneNumber, req.OTPCode)
	result := services.ReportVerification(err)

	switch result {
	case services.ResultVerified:
		return c.JSON(fiber.Map{
			"message": "OTP verified successfully",
			"result":  result,
		})
	case services.ResultUnknownClient:
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"error":  "Invalid client or API key",
			"result": result,
		})
	case services.ResultInvalidCode:
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error":  "Invalid OTP or phone number",
			"result": result,
		})
	case services.ResultExpired:
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error":  "OTP has expired. Please request a new one",
			"result": result,
		})
	case services.ResultAlreadyUsed:
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error":  "OTP has already been used",
			"result": result,
		})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error":  "An unexpected error occurred during OTP verification",
			"result": result,
		})
	}
}
