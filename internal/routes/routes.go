package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/otpworks/otp-backend/internal/handlers"
	"github.com/otpworks/otp-backend/internal/middleware"
	"github.com/otpworks/otp-backend/internal/services"
)

// SetupRoutes configures all API routes
func SetupRoutes(app *fiber.App, otpService *services.OTPService, adminService *services.AdminService, adminSecret string) {
	otpHandler := handlers.NewOTPHandler(otpService)
	adminHandler := handlers.NewAdminHandler(adminService, adminSecret)
	businessHandler := handlers.NewBusinessHandler(adminService)

	api := app.Group("/api/v1")

	// Public OTP endpoints, authenticated by X-API-Key
	otp := api.Group("/otp")
	otp.Post("/send", otpHandler.Send)
	otp.Post("/verify", otpHandler.Verify)

	// Admin login
	api.Post("/token", adminHandler.Login)

	// Admin endpoints
	admin := api.Group("/admin")
	admin.Post("/register", adminHandler.Register)
	admin.Post("/business", middleware.RequireAdmin(adminService), adminHandler.CreateBusiness)

	// Business-scoped provisioning
	business := api.Group("/business", middleware.RequireAdmin(adminService))
	business.Post("/:id/clients", businessHandler.CreateClient)
}
