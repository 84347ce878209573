package main

import (
	"context"                            // context package is needed for Redis operations
	"log"                                // log package is needed for logging
	"railway_system/internal/api"        // Custom package for API handlers
	"railway_system/internal/auth"       // Authentication gate
	"railway_system/internal/backup"     // CSV backup sink
	"railway_system/internal/booking"    // Reservation engine
	"railway_system/internal/config"     // Custom package for configuration
	"railway_system/internal/db"         // Database connection helper
	"railway_system/internal/middleware" // Custom package for middleware
	"railway_system/internal/trains"     // Train inventory service

	"github.com/gin-gonic/gin"     // Gin web framework
	"github.com/redis/go-redis/v9" // Redis client
	"github.com/sirupsen/logrus"   // Logrus for structured logging
)

// Main function to set up and run the server
func main() {
	cfg := config.LoadConfig() // Load configuration

	// Setup logger
	logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	// Setup Data Source Name (DSN) and connect to the database.
	// clientFoundRows makes UPDATE report matched rows, so setting a
	// column to its current value still counts as affecting the row.
	dsn := cfg.DBUser + ":" + cfg.DBPassword + "@tcp(" + cfg.DBHost + ":" + cfg.DBPort + ")/" + cfg.DBName + "?parseTime=true&clientFoundRows=true"
	gdb, err := db.Open(dsn)
	if err != nil {
		logrus.Fatalf("failed to connect to DB: %v", err) // Fatal error if DB connection fails
	}

	// Setup Redis client
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr, // Redis server address
		Password: cfg.RedisPass, // Redis password
		DB:       cfg.RedisDB,   // Redis database number
	})

	// Test Redis connection
	_, err = redisClient.Ping(context.Background()).Result()
	if err != nil {
		logrus.Fatalf("failed to connect to Redis: %v", err)
	}

	// Set Mode to Release if in production
	if cfg.IsProd {
		gin.SetMode(gin.ReleaseMode)
	}

	// Wire the services around the shared store handle
	authSvc := auth.NewService(gdb)                  // Authentication gate
	engine := booking.NewEngine(gdb)                 // Reservation engine
	trainSvc := trains.NewService(gdb)               // Train inventory
	backupWriter := backup.NewWriter(cfg.BackupFile) // Best-effort user backup

	// Setup Gin
	r := gin.Default() // Gin router instance

	// Set trusted proxies for Gin
	if err := r.SetTrustedProxies([]string{"127.0.0.1"}); err != nil {
		logrus.Fatalf("failed to set trusted proxies: %v", err)
	}

	// Auth routes
	r.POST("/user", api.RegisterHandler(authSvc, backupWriter)) // Registration endpoint
	r.POST("/login", api.LoginHandler(authSvc, cfg.JWTSecret))  // Login endpoint

	// Public train listing
	r.GET("/trains", api.ListTrainsHandler(trainSvc, redisClient)) // List trains endpoint

	// injectRedis makes the Redis client available to write handlers for invalidation
	injectRedis := func(c *gin.Context) {
		c.Set("redisClient", redisClient)
		c.Next()
	}

	// Reservation routes (protected by JWT)
	reservationGroup := r.Group("/reservations")
	reservationGroup.Use(middleware.JWTAuthMiddleware(cfg.JWTSecret), injectRedis)
	reservationGroup.POST("", api.BookHandler(engine))                       // Book endpoint
	reservationGroup.DELETE("", api.CancelHandler(engine))                   // Cancel endpoint
	reservationGroup.GET("", api.MyReservationsHandler(engine, redisClient)) // My reservations endpoint
	reservationGroup.GET("/ticket", api.TicketHandler(engine, redisClient))  // Ticket endpoint

	// Train management routes (protected by JWT)
	trainGroup := r.Group("/trains")
	trainGroup.Use(middleware.JWTAuthMiddleware(cfg.JWTSecret), injectRedis)
	trainGroup.POST("", api.AddTrainHandler(trainSvc))               // Add train endpoint
	trainGroup.PATCH("/:trainNo", api.UpdateTrainHandler(trainSvc))  // Update train endpoint
	trainGroup.DELETE("/:trainNo", api.RemoveTrainHandler(trainSvc)) // Remove train endpoint

	// Profile routes (protected by JWT)
	profileGroup := r.Group("/profile")
	profileGroup.Use(middleware.JWTAuthMiddleware(cfg.JWTSecret))
	profileGroup.GET("", api.GetProfileHandler(authSvc))               // View profile endpoint
	profileGroup.PATCH("", api.UpdateProfileHandler(authSvc))          // Update profile endpoint
	profileGroup.POST("/password", api.ChangePasswordHandler(authSvc)) // Change password endpoint

	log.Println("Server running on " + cfg.AppPort) // Log server start
	r.Run(":" + cfg.AppPort)                        // Start the server on port cfg.AppPort
}
