package main

import (
	"log"

	"github.com/gin-contrib/sessions"
	redisStore "github.com/gin-contrib/sessions/redis"
	"github.com/gin-gonic/gin"
	"github.com/volunhub/volunteer-api/internal/config"
	"github.com/volunhub/volunteer-api/internal/database"
	"github.com/volunhub/volunteer-api/internal/handlers"
	"github.com/volunhub/volunteer-api/internal/middleware"
	"github.com/volunhub/volunteer-api/internal/notifications"
	"github.com/volunhub/volunteer-api/internal/services"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Set Gin mode
	gin.SetMode(cfg.GinMode)

	// Connect to database
	if err := database.Connect(cfg); err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	// Run migrations
	if err := database.Migrate(); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	// Initialize Gin router
	r := gin.Default()

	// Setup session middleware with Redis
	redisAddr := cfg.RedisHost + ":" + cfg.RedisPort
	store, err := redisStore.NewStore(
		10,        // Redis pool size
		"tcp",     // network type
		redisAddr, // Redis address from config
		"",        // password (empty = no password)
		[]byte(cfg.SessionSecret), // authentication key
	)
	if err != nil {
		log.Fatalf("Failed to create Redis store: %v", err)
	}
	// Configure session options based on environment
	isProduction := cfg.GinMode == "release"
	store.Options(sessions.Options{
		Path:     "/",
		MaxAge:   86400 * 7, // 7 days
		HttpOnly: true,
		Secure:   isProduction,
		SameSite: 2, // SameSite=Lax (1=Strict, 2=Lax, 3=None)
	})
	r.Use(sessions.Sessions("volunteer_session", store))

	// Initialize services
	db := database.GetDB()
	notifier := notifications.NewDBDispatcher(db)
	lifecycleService := services.NewLifecycleService(db, notifier, cfg.UploadDir)
	applicationService := services.NewApplicationService(db, notifier)
	attendanceService := services.NewAttendanceService(db, notifier)
	matchService := services.NewMatchService(db)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler()
	opportunityHandler := handlers.NewOpportunityHandler(lifecycleService, matchService, cfg.UploadDir)
	applicationHandler := handlers.NewApplicationHandler(applicationService)
	attendanceHandler := handlers.NewAttendanceHandler(attendanceService)
	volunteerHandler := handlers.NewVolunteerHandler()
	notificationHandler := handlers.NewNotificationHandler()

	// Health check endpoint
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "ok",
			"message": "Volunteer Coordination API is running",
		})
	})

	// Stored opportunity images
	r.Static("/uploads", cfg.UploadDir)

	// API routes
	api := r.Group("/api")
	{
		// Auth routes (public)
		auth := api.Group("/auth")
		{
			auth.POST("/signup", authHandler.Signup)
			auth.POST("/login", authHandler.Login)
			auth.POST("/logout", authHandler.Logout)
			auth.GET("/me", middleware.RequireAuth(), authHandler.GetCurrentUser)
		}

		// Volunteer profile routes
		profile := api.Group("/profile")
		profile.Use(middleware.RequireAuth(), middleware.RequireVolunteer())
		{
			profile.GET("", volunteerHandler.GetMyProfile)
			profile.PUT("", volunteerHandler.UpdateMyProfile)
		}

		// Opportunity routes
		opps := api.Group("/opportunities")
		{
			// Public browsing
			opps.GET("", opportunityHandler.ListOpportunities)
			opps.GET("/:id", opportunityHandler.GetOpportunity)

			// Volunteer actions
			opps.POST("/:id/apply", middleware.RequireAuth(), middleware.RequireVolunteer(), applicationHandler.Apply)
			opps.POST("/:id/reviews/organization", middleware.RequireAuth(), middleware.RequireVolunteer(), attendanceHandler.RateOrganization)

			// Owner actions
			owner := opps.Group("")
			owner.Use(middleware.RequireAuth(), middleware.RequireOrganization())
			{
				owner.GET("/mine", opportunityHandler.ListMyOpportunities)
				owner.POST("", opportunityHandler.CreateOpportunity)

				owned := owner.Group("/:id")
				owned.Use(middleware.RequireOpportunityOwnership())
				{
					owned.PATCH("", opportunityHandler.UpdateOpportunity)
					owned.DELETE("", opportunityHandler.DeleteOpportunity)
					owned.POST("/publish", opportunityHandler.PublishOpportunity)
					owned.POST("/close", opportunityHandler.CloseOpportunity)
					owned.POST("/cancel", opportunityHandler.CancelOpportunity)
					owned.POST("/complete", opportunityHandler.CompleteOpportunity)
					owned.POST("/images", opportunityHandler.UploadImage)
					owned.GET("/candidates", opportunityHandler.GetCandidates)
					owned.GET("/applications", applicationHandler.ListOpportunityApplications)
					owned.GET("/attendance", attendanceHandler.ListAttendance)
					owned.PUT("/attendance/:volunteer_id", attendanceHandler.UpdateAttendance)
					owned.POST("/attendance-bulk", attendanceHandler.BulkUpdateAttendance)
					owned.POST("/attendance-mark-all", attendanceHandler.MarkAllAttended)
					owned.POST("/reviews/volunteer", attendanceHandler.RateVolunteer)
				}
			}
		}

		// Application routes
		apps := api.Group("/applications")
		apps.Use(middleware.RequireAuth())
		{
			apps.GET("/mine", middleware.RequireVolunteer(), applicationHandler.ListMyApplications)
			apps.POST("/:id/withdraw", middleware.RequireVolunteer(), applicationHandler.Withdraw)
			apps.POST("/:id/decision", middleware.RequireOrganization(), applicationHandler.Decide)
			apps.POST("/bulk-decision", middleware.RequireOrganization(), applicationHandler.BulkDecide)
		}

		// Notification routes
		notifs := api.Group("/notifications")
		notifs.Use(middleware.RequireAuth())
		{
			notifs.GET("", notificationHandler.ListNotifications)
			notifs.POST("/:id/read", notificationHandler.MarkNotificationRead)
		}
	}

	// Start server
	log.Println("Server starting on :8080")
	if err := r.Run(":8080"); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
