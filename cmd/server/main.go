package main

import (
	"fmt"
	"log"

	"remindly/internal/auth"
	"remindly/internal/config"
	"remindly/internal/handlers"
	"remindly/internal/services"
	"remindly/internal/store"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load configuration: ", err)
	}

	emailService, err := services.NewEmailService(cfg)
	if err != nil {
		log.Fatal("Failed to initialize email service: ", err)
	}

	client := store.NewClient(cfg.AirtableToken)
	reminders := store.NewReminderStore(client, cfg.AirtableBaseID, cfg.RemindersTable, cfg.CacheTTL)
	companies := store.NewCompanyStore(client, cfg.AirtableBaseID, cfg.CompaniesTable, cfg.CacheTTL)

	authManager := auth.NewManager(cfg.AuthUsername, cfg.AuthPassword, cfg.AdminEmail, emailService)
	sweeper := services.NewSweeper(reminders, emailService)

	api := &handlers.API{
		Auth:      authManager,
		Reminders: reminders,
		Companies: companies,
		Sweeper:   sweeper,
	}

	// Initialize Gin router
	router := gin.Default()

	// Configure trusted proxies
	router.SetTrustedProxies([]string{"127.0.0.1"})

	if len(cfg.AllowedOrigins) > 0 {
		corsConfig := cors.DefaultConfig()
		corsConfig.AllowOrigins = cfg.AllowedOrigins
		corsConfig.AllowCredentials = true
		router.Use(cors.New(corsConfig))
	}

	// Basic routes
	router.GET("/", api.Home)
	router.GET("/health", api.Health)

	// External cron trigger (no auth: the uptime service has no session)
	router.GET("/cron", api.CronTrigger)

	// Auth routes (no auth required)
	router.POST("/auth/login", api.Login)
	router.POST("/auth/verify-otp", api.VerifyOTP)
	router.POST("/auth/resend-otp", api.ResendOTP)

	// Protected routes (auth required)
	protected := router.Group("")
	protected.Use(auth.AuthMiddleware(authManager))
	{
		protected.POST("/auth/logout", api.Logout)
		protected.GET("/auth/me", api.Me)

		protected.POST("/reminders", api.CreateReminder)
		protected.GET("/reminders", api.ListReminders)
		protected.POST("/reminders/sweep", api.SweepNow)
		protected.GET("/analytics", api.Analytics)

		protected.POST("/companies", api.CreateCompany)
		protected.GET("/companies", api.ListCompanies)
		protected.GET("/companies/:id", api.GetCompany)
		protected.PATCH("/companies/:id", api.UpdateCompany)
		protected.DELETE("/companies/:id", api.DeleteCompany)
	}

	// Most deployments lean on /cron or the manual sweep; the background
	// worker is opt-in.
	if cfg.SweepWorkerEnabled {
		worker := services.NewWorker(sweeper, cfg.SweepInterval)
		worker.Start()
		log.Printf("Sweep worker started, interval %s", cfg.SweepInterval)
	}

	// Start the server
	fmt.Printf("Server starting on port %s...\n", cfg.Port)
	if err := router.Run(":" + cfg.Port); err != nil {
		log.Fatal(err)
	}
}
