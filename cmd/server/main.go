package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/fourarental/rental-booking-backend/internal/config"
	"github.com/fourarental/rental-booking-backend/internal/database"
	"github.com/fourarental/rental-booking-backend/internal/handlers"
	"github.com/fourarental/rental-booking-backend/internal/middleware"
	"github.com/fourarental/rental-booking-backend/internal/services"
	"github.com/fourarental/rental-booking-backend/internal/wizard"
	"github.com/fourarental/rental-booking-backend/pkg/checkout"
	"github.com/fourarental/rental-booking-backend/pkg/jwt"
)

var (
	version   = "1.0.0"
	buildTime = "unknown"
)

// availabilityHorizonDays bounds how far ahead blocked dates are indexed
const availabilityHorizonDays = 365

func main() {
	// Initialize logger
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	logger.SetOutput(os.Stdout)

	logger.Info("Starting 4A Rental Booking Backend")
	logger.Infof("Version: %s, Build Time: %s", version, buildTime)

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("Failed to load configuration: %v", err)
	}

	// Set log level
	logLevel, err := logrus.ParseLevel(cfg.Server.LogLevel)
	if err != nil {
		logger.Warn("Invalid log level, using INFO")
		logLevel = logrus.InfoLevel
	}
	logger.SetLevel(logLevel)

	// Set Gin mode
	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	} else {
		gin.SetMode(gin.DebugMode)
	}

	// Initialize database connection
	logger.Info("Connecting to database...")
	db, err := database.NewConnection(cfg.Database)
	if err != nil {
		logger.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()
	logger.Info("Database connection established")

	if err := db.Ping(); err != nil {
		logger.Fatalf("Failed to ping database: %v", err)
	}

	// Initialize Redis. A missing Redis degrades caching and snapshot
	// reseeding but never blocks startup.
	var redisClient *redis.Client
	if cfg.Redis.Addr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		pingCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := redisClient.Ping(pingCtx).Err(); err != nil {
			logger.WithError(err).Warn("Redis unreachable, continuing without cache")
		} else {
			logger.Info("Redis connection established")
		}
		cancel()
	} else {
		logger.Warn("REDIS_ADDR not set, continuing without cache")
	}

	// Initialize repositories
	userRepository := database.NewUserRepository(db)
	vehicleRepository := database.NewVehicleRepository(db)
	bookingRepository := database.NewBookingRepository(db)
	availabilityRepository := database.NewAvailabilityRepository(db)
	deliveryLocationRepository := database.NewDeliveryLocationRepository(db)
	bookingConfigRepository := database.NewBookingConfigRepository(db)
	pricingRepository := database.NewPricingRepository(db)

	// Initialize services
	logger.Info("Initializing services...")
	jwtService := jwt.NewService(
		cfg.JWT.Secret,
		cfg.JWT.RefreshSecret,
		cfg.JWT.AccessTokenExpiry,
		cfg.JWT.RefreshTokenExpiry,
	)
	checkoutClient := checkout.NewClient(&cfg.Checkout, logger)
	auditService := services.NewAuditService(db)
	bookingConfigService := services.NewBookingConfigService(bookingConfigRepository, redisClient, cfg, logger)
	pricingService := services.NewPricingService(pricingRepository, logger)
	availabilityService := services.NewAvailabilityService(bookingRepository, availabilityRepository, availabilityHorizonDays, logger)
	deliveryService := services.NewDeliveryService(deliveryLocationRepository, logger)
	driverInfoStore := services.NewDriverInfoStore(redisClient, cfg.Redis.DriverInfoTTL, logger)
	submissionLimiter := services.NewSubmissionLimiter(cfg.RateLimit.SubmissionsPerMinute, cfg.RateLimit.SubmissionBurst)
	bookingService := services.NewBookingService(bookingRepository, checkoutClient, auditService, logger)
	receiptService := services.NewReceiptService(logger)

	// Wizard session manager with its idle sweeper
	sessionManager := wizard.NewManager(cfg.Wizard.SessionTTL, cfg.Wizard.SweepInterval, logger)

	wizardService := services.NewWizardService(
		sessionManager,
		vehicleRepository,
		userRepository,
		pricingService,
		availabilityService,
		deliveryService,
		bookingConfigService,
		driverInfoStore,
		logger,
	)
	checkoutService := services.NewCheckoutService(
		sessionManager,
		bookingRepository,
		userRepository,
		checkoutClient,
		bookingConfigService,
		driverInfoStore,
		submissionLimiter,
		auditService,
		logger,
	)
	logger.Info("Services initialized")

	// Initialize handlers
	vehicleHandler := handlers.NewVehicleHandler(vehicleRepository, availabilityService)
	deliveryHandler := handlers.NewDeliveryHandler(deliveryService)
	configHandler := handlers.NewConfigHandler(bookingConfigService)
	wizardHandler := handlers.NewWizardHandler(wizardService, checkoutService)
	bookingHandler := handlers.NewBookingHandler(bookingService, receiptService)
	profileHandler := handlers.NewProfileHandler(userRepository)
	webhookHandler := handlers.NewWebhookHandler(bookingService)

	// Initialize Gin router
	router := gin.New()

	// Middleware
	router.Use(gin.Recovery())
	router.Use(requestLogger(logger))

	// CORS configuration
	corsConfig := cors.Config{
		AllowOrigins:     cfg.CORS.AllowedOrigins,
		AllowMethods:     cfg.CORS.AllowedMethods,
		AllowHeaders:     cfg.CORS.AllowedHeaders,
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	router.Use(cors.New(corsConfig))

	// Health check endpoint
	router.GET("/health", healthCheckHandler(db))

	// API v1 routes
	v1 := router.Group("/api/v1")
	{
		// Vehicle catalog (public)
		vehicles := v1.Group("/vehicles")
		{
			vehicles.GET("", vehicleHandler.ListVehicles)
			vehicles.GET("/:id", vehicleHandler.GetVehicle)
			vehicles.GET("/:id/availability", vehicleHandler.GetVehicleAvailability)
		}

		// Delivery options (public)
		delivery := v1.Group("/delivery")
		{
			delivery.GET("/cities", deliveryHandler.GetCities)
			delivery.GET("/cities/:city/locations", deliveryHandler.GetCityLocations)
		}

		// Booking policy (public)
		v1.GET("/booking-config", configHandler.GetBookingConfig)

		// Payment webhook (signed, not JWT-authenticated)
		v1.POST("/payments/webhook", webhookHandler.PaymentWebhook)

		// Booking wizard sessions (protected)
		wizardRoutes := v1.Group("/wizard/sessions")
		wizardRoutes.Use(middleware.AuthMiddleware(jwtService))
		{
			wizardRoutes.POST("", wizardHandler.CreateSession)
			wizardRoutes.GET("/:id", wizardHandler.GetSession)
			wizardRoutes.DELETE("/:id", wizardHandler.DeleteSession)
			wizardRoutes.POST("/:id/actions", wizardHandler.ApplyAction)
			wizardRoutes.POST("/:id/continue", wizardHandler.Continue)
			wizardRoutes.POST("/:id/back", wizardHandler.Back)
			wizardRoutes.POST("/:id/submit", wizardHandler.Submit)
		}

		// My bookings (protected)
		bookings := v1.Group("/bookings")
		bookings.Use(middleware.AuthMiddleware(jwtService))
		{
			bookings.GET("", bookingHandler.ListBookings)
			bookings.GET("/:id", bookingHandler.GetBooking)
			bookings.POST("/:id/cancel", bookingHandler.CancelBooking)
			bookings.GET("/:id/receipt", bookingHandler.GetReceipt)
		}

		// User routes (protected)
		user := v1.Group("/user")
		user.Use(middleware.AuthMiddleware(jwtService))
		{
			user.GET("/profile", profileHandler.GetProfile)
			user.PUT("/profile", profileHandler.UpdateProfile)
		}
	}

	// HTTP server
	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		logger.Infof("Server starting on port %s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	// Stop the wizard session sweeper
	sessionManager.Stop()

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Errorf("Server forced to shutdown: %v", err)
	}

	if redisClient != nil {
		if err := redisClient.Close(); err != nil {
			logger.WithError(err).Warn("Failed to close Redis connection")
		}
	}

	logger.Info("Server exited successfully")
}

// requestLogger middleware for logging HTTP requests
func requestLogger(logger *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		query := c.Request.URL.RawQuery

		c.Next()

		latency := time.Since(start)

		fields := logrus.Fields{
			"status":     c.Writer.Status(),
			"method":     c.Request.Method,
			"path":       path,
			"query":      query,
			"ip":         c.ClientIP(),
			"latency_ms": latency.Milliseconds(),
			"user_agent": c.Request.UserAgent(),
		}

		// Record auth presence, never the token itself
		if authHeader := c.GetHeader("Authorization"); authHeader != "" {
			fields["has_auth"] = true
		} else {
			fields["has_auth"] = false
		}

		if userCtx, exists := middleware.GetUserContext(c); exists {
			fields["user_id"] = userCtx.UserID
		}

		entry := logger.WithFields(fields)

		if len(c.Errors) > 0 {
			for i, err := range c.Errors {
				entry = entry.WithField(fmt.Sprintf("error_%d", i), err.Error())
			}
			entry.Error("Request failed with errors")
		} else {
			status := c.Writer.Status()
			if status >= 500 {
				entry.Error("Request completed with server error")
			} else if status >= 400 {
				entry.Warn("Request completed with client error")
			} else {
				entry.Info("Request completed successfully")
			}
		}
	}
}

// healthCheckHandler returns a health check endpoint
func healthCheckHandler(db database.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		dbStatus := "healthy"
		if err := db.Ping(); err != nil {
			dbStatus = "unhealthy"
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":   "unhealthy",
				"database": dbStatus,
				"error":    err.Error(),
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"status":    "healthy",
			"database":  dbStatus,
			"version":   version,
			"timestamp": time.Now().Unix(),
		})
	}
}
