// Package routes defines the API routing configuration.
package routes

import (
	"log"
	"time"

	"ibank/internal/config"
	"ibank/internal/handlers"
	"ibank/internal/middleware"
	"ibank/internal/repositories"
	"ibank/internal/services/auth"
	"ibank/internal/services/lookup"
	"ibank/internal/services/mailer"
	"ibank/internal/services/payment"

	"github.com/gofiber/fiber/v2"
)

// SetupRoutes wires repositories, services and handlers, then registers all
// application routes.
func SetupRoutes(app *fiber.App) {
	userRepo := repositories.NewUserRepository(repositories.DB, repositories.CacheService)
	studentRepo := repositories.NewStudentRepository(repositories.DB)
	paymentRepo := repositories.NewPaymentRepository(repositories.DB)

	mailService := mailer.New(mailer.Config{
		Host:     config.GetEnv("SMTP_HOST", ""),
		Port:     config.GetEnv("SMTP_PORT", "587"),
		User:     config.GetEnv("SMTP_USER", ""),
		Password: config.GetEnv("SMTP_PASSWORD", ""),
		From:     config.GetEnv("SMTP_FROM", "no-reply@ibank.local"),
	})

	otpSecret := config.GetEnv("OTP_SECRET", "")
	if otpSecret == "" {
		if config.IsProduction() {
			log.Fatal("OTP_SECRET must be set in production")
		}
		otpSecret = "dev-otp-secret"
	}

	authService := auth.NewService(userRepo)
	lookupService := lookup.NewService(studentRepo)
	paymentService := payment.NewService(
		paymentRepo,
		studentRepo,
		userRepo,
		mailService,
		repositories.CacheService,
		otpSecret,
		payment.Config{
			OTPTTL:         time.Duration(config.GetIntEnv("OTP_TTL_MIN", 5)) * time.Minute,
			MaxOTPAttempts: config.GetIntEnv("OTP_MAX_ATTEMPTS", 3),
			HistoryLimit:   config.GetIntEnv("HISTORY_LIMIT", 100),
		},
	)

	authHandler := handlers.NewAuthHandler(authService)
	userHandler := handlers.NewUserHandler(userRepo)
	studentHandler := handlers.NewStudentHandler(lookupService)
	transactionHandler := handlers.NewTransactionHandler(paymentService)

	api := app.Group("/api")

	api.Post("/login", authHandler.LoginUser)
	api.Get("/health", handlers.HealthCheck)

	authMiddleware := middleware.NewAuthMiddleware(userRepo)
	protected := api.Use(authMiddleware.Handler)

	protected.Get("/profile", userHandler.GetProfile)
	protected.Get("/student/:studentId", studentHandler.GetStudent)

	protected.Post("/transactions/start", transactionHandler.StartTransaction)
	protected.Post("/transactions/verify", transactionHandler.VerifyTransaction)
	protected.Post("/transactions/resend", transactionHandler.ResendOTP)
	protected.Post("/transactions/cancel", transactionHandler.CancelTransaction)
	protected.Post("/transactions/delete", transactionHandler.DeleteTransaction)
	protected.Get("/transactions", transactionHandler.GetTransactions)
}
