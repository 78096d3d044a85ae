package main

import (
	"log"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/joho/godotenv"

	"github.com/otpworks/otp-backend/database"
	"github.com/otpworks/otp-backend/internal/handlers"
	"github.com/otpworks/otp-backend/internal/models"
	"github.com/otpworks/otp-backend/internal/routes"
	"github.com/otpworks/otp-backend/internal/services"
	"github.com/otpworks/otp-backend/internal/storage"
	"github.com/otpworks/otp-backend/internal/utils"
)

func main() {
	// Load .env file for local development
	if os.Getenv("INSTANCE_CONNECTION_NAME") == "" {
		err := godotenv.Load(".env")
		if err != nil {
			err = godotenv.Load("environments/.env.development")
			if err != nil {
				log.Println("⚠️  No .env file found - checking environment variables")
			}
		}
	}

	jwtSecret := os.Getenv("JWT_SECRET")
	adminSecret := os.Getenv("SUPER_ADMIN_SECRET")
	if jwtSecret == "" || adminSecret == "" {
		log.Fatal("JWT_SECRET and SUPER_ADMIN_SECRET must be set")
	}

	// Initialize storage
	var store storage.Store

	if os.Getenv("USE_MEMORY_STORE") == "true" {
		log.Println("⚠️  Using in-memory storage (not for production!)")
		store = storage.NewMemoryStore()
	} else {
		log.Println("📦 Connecting to PostgreSQL database...")
		database.Connect()

		log.Println("🔄 Running database migrations...")
		err := database.DB.AutoMigrate(
			&models.Admin{},
			&models.Business{},
			&models.Client{},
			&models.User{},
			&models.OTP{},
		)
		if err != nil {
			log.Fatal("Failed to migrate database:", err)
		}
		log.Println("✅ Database migrations completed!")

		store = storage.NewDatabaseStore(database.DB)
	}
	storage.SetStore(store)

	// Initialize services
	gateway := services.NewTwilioGateway()
	otpService := services.NewOTPService(store, gateway, otpConfigFromEnv())
	adminService := services.NewAdminService(store, jwtSecret, time.Hour)

	// Create fiber app
	app := fiber.New(fiber.Config{
		AppName: "OTPWorks Backend v1.0.0",
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{
				"error": err.Error(),
			})
		},
	})

	// Middleware
	app.Use(logger.New(logger.Config{
		Format: "[${time}] ${status} - ${latency} ${method} ${path}\n",
	}))
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization, X-API-Key, X-Admin-Secret",
		AllowMethods: "GET, POST, PUT, DELETE, OPTIONS",
	}))

	// Service banner
	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"service": "WhatsApp OTP Service",
			"version": "1.0.0",
			"status":  "healthy",
			"storage": storageType(),
		})
	})

	// Health check endpoint for monitoring
	var ping func() error
	if database.DB != nil {
		ping = func() error {
			sqlDB, err := database.DB.DB()
			if err != nil {
				return err
			}
			return sqlDB.Ping()
		}
	}
	app.Get("/health", handlers.NewHealthHandler("1.0.0", ping).Check)

	routes.SetupRoutes(app, otpService, adminService, adminSecret)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	// Handle graceful shutdown
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-c
		log.Println("\n🛑 Gracefully shutting down...")
		_ = app.Shutdown()
	}()

	log.Println("========================================")
	log.Printf("🚀 OTP backend starting on port %s", port)
	log.Printf("📊 Storage: %s", storageType())
	log.Println("========================================")

	log.Fatal(app.Listen(":" + port))
}

func otpConfigFromEnv() services.OTPConfig {
	cfg := services.OTPConfig{}

	if v := os.Getenv("OTP_EXPIRY_MINUTES"); v != "" {
		if minutes, err := strconv.Atoi(v); err == nil && minutes > 0 {
			cfg.ExpiryWindow = time.Duration(minutes) * time.Minute
		}
	}
	if v := os.Getenv("OTP_MAX_PENDING"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil && n > 0 {
			cfg.MaxPending = n
		}
	}
	if os.Getenv("OTP_DISTINCT_DIGITS") == "true" {
		cfg.Policy = utils.CodePolicyDistinct
	}

	return cfg
}

func storageType() string {
	if os.Getenv("USE_MEMORY_STORE") == "true" {
		return "In-Memory (Testing)"
	}
	return "PostgreSQL Database"
}
