package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"memoir/api/routes"
	"memoir/internal/activity"
	"memoir/internal/shared/config"
	"memoir/internal/shared/database"
	"memoir/pkg/cache"
	"memoir/pkg/logger"
	"memoir/pkg/ratelimit"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		if os.Getenv("GIN_MODE") != "release" {
			log.Println("Warning: .env file not found, using system environment variables")
		}
	}

	// Load configuration
	cfg := config.Load()

	// Set Gin mode
	gin.SetMode(cfg.GinMode)

	appLogger := logger.New()
	logger.SetDefault(appLogger)

	// Initialize database connections
	db, err := database.InitDB(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			appLogger.WithError(err).Error("Failed to close database connections")
		}
	}()

	cacheService := cache.NewService(db.GetRedis())

	rateLimiter := ratelimit.NewRateLimiter(db.GetRedis(), &ratelimit.Config{
		Enabled:          cfg.RateLimit.Enabled,
		WindowDuration:   cfg.RateLimit.WindowDuration,
		DefaultRequests:  cfg.RateLimit.DefaultRequests,
		PublicRequests:   cfg.RateLimit.PublicRequests,
		AuthRequests:     cfg.RateLimit.AuthRequests,
		MutationRequests: cfg.RateLimit.MutationRequests,
		HealthRequests:   cfg.RateLimit.HealthRequests,
		WhitelistedIPs:   cfg.RateLimit.WhitelistedIPs,
	})

	// Activity trail publisher. Runs without Kafka when no brokers are
	// configured.
	var publisher activity.Publisher
	if len(cfg.Kafka.Brokers) > 0 {
		publisherConfig := activity.DefaultKafkaPublisherConfig()
		publisherConfig.Brokers = cfg.Kafka.Brokers
		publisherConfig.Topic = cfg.Kafka.ActivityTopic

		publisher, err = activity.NewKafkaPublisher(publisherConfig)
		if err != nil {
			appLogger.WithError(err).Warn("Failed to connect to Kafka, activity trail disabled")
			publisher = activity.NewNoopPublisher()
		}
	} else {
		appLogger.Info("No Kafka brokers configured, activity trail disabled")
		publisher = activity.NewNoopPublisher()
	}
	defer func() {
		if err := publisher.Close(); err != nil {
			appLogger.WithError(err).Error("Failed to close activity publisher")
		}
	}()

	// Setup router
	router := setupRouter(cfg, db, cacheService, publisher, rateLimiter, appLogger)

	// Create HTTP server
	server := &http.Server{
		Addr:           cfg.GetServerAddress(),
		Handler:        router,
		ReadTimeout:    cfg.ReadTimeout,
		WriteTimeout:   cfg.WriteTimeout,
		IdleTimeout:    cfg.IdleTimeout,
		MaxHeaderBytes: cfg.MaxHeaderBytes,
	}

	// Start server in a goroutine
	go func() {
		appLogger.Info("Starting server",
			"address", cfg.GetServerAddress(),
			"mode", cfg.GinMode,
			"api_base", cfg.GetAPIBasePath(),
		)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	appLogger.Info("Shutting down server...")

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	appLogger.Info("Server exited")
}

func setupRouter(cfg *config.Config, db *database.DB, cacheService cache.Service, publisher activity.Publisher, rateLimiter *ratelimit.RateLimiter, appLogger *logger.Logger) *gin.Engine {
	router := gin.New()

	// Global middleware
	router.Use(requestLoggerMiddleware(appLogger))
	router.Use(gin.Recovery())

	// CORS middleware
	router.Use(cors.New(cors.Config{
		AllowOriginFunc: func(origin string) bool {
			return true
		},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length", "X-RateLimit-Limit", "X-RateLimit-Remaining", "X-RateLimit-Reset"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	// Rate limiting across all routes
	router.Use(ratelimit.Middleware(rateLimiter))

	// Setup application routes
	appRouter := routes.NewRouter(cfg, db, cacheService, publisher)
	appRouter.SetupRoutes(router)

	return router
}

func requestLoggerMiddleware(l *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		l.LogHTTPRequest(c, time.Since(start))
	}
}
