package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang-food-storefront/configs"
	"golang-food-storefront/internal/handlers"
	"golang-food-storefront/internal/middleware"
	"golang-food-storefront/internal/repositories"
	"golang-food-storefront/internal/services"
	"golang-food-storefront/pkg/auth"
	"golang-food-storefront/pkg/backend"
	"golang-food-storefront/pkg/cache"
	"golang-food-storefront/pkg/database"
	"golang-food-storefront/pkg/logger"
	"golang-food-storefront/pkg/messaging"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {
	// Load configuration
	config := configs.LoadConfig()

	log := logger.New(config.Log.Level, config.Log.Format)
	defer log.Sync()

	// Set Gin mode
	gin.SetMode(config.Server.Mode)

	// Session store: Redis when configured, process memory otherwise
	var sessionStore cache.Cache = cache.NewMemoryCache()
	if config.Redis.URL != "" {
		redisCache, err := cache.NewRedisCache(config.Redis.URL, config.Redis.Password, config.Redis.DB, log)
		if err != nil {
			log.Warn("Redis unavailable, keeping sessions in memory", zap.Error(err))
		} else {
			defer redisCache.Close()
			sessionStore = redisCache
		}
	}

	// MongoDB checkout log (optional)
	db := database.NewDatabase(config.Database.MongoURL, config.Database.MongoDBName, log)
	defer db.Close()

	// Kafka checkout events (optional)
	var events services.EventPublisher
	if len(config.Kafka.Brokers) > 0 {
		kafkaProducer := messaging.NewKafkaProducer(config.Kafka.Brokers)
		defer kafkaProducer.Close()
		events = kafkaProducer
	}

	jwtManager := auth.NewJWTManager(config.JWT.SecretKey, config.JWT.ExpiryHours)
	backendClient := backend.NewClient(config.Backend.BaseURL, config.Backend.Timeout)

	// Initialize repositories
	cartRepo := repositories.NewCartRepository(sessionStore, config.Session.TTL)
	draftRepo := repositories.NewOrderDraftRepository(sessionStore, config.Session.TTL)
	checkoutLogRepo := repositories.NewCheckoutLogRepository(db.MongoDB)

	// Initialize services
	pricing := services.NewPricingEngine(services.FeeSchedule{
		TierAThreshold: config.Pricing.TierAThreshold,
		TierBThreshold: config.Pricing.TierBThreshold,
		TierACharge:    config.Pricing.TierACharge,
		TierBCharge:    config.Pricing.TierBCharge,
		TierCCharge:    config.Pricing.TierCCharge,
		PackingFee:     config.Pricing.PackingFee,
	})
	cartService := services.NewCartService(cartRepo, log)
	vendorService := services.NewVendorService(backendClient, sessionStore, config.Session.VendorTTL, log)
	checkoutService := services.NewCheckoutService(
		cartService,
		vendorService,
		backendClient,
		pricing,
		draftRepo,
		checkoutLogRepo,
		events,
		config.Pricing.TxRefPrefix,
		config.Session.TTL,
		log,
	)

	// Initialize middleware
	sessionMiddleware := middleware.NewSessionMiddleware(jwtManager, middleware.SessionConfig{
		CookieName: config.Session.CookieName,
		Secure:     config.Session.CookieSecure,
		TTL:        config.Session.TTL,
	})

	// Initialize handlers
	vendorHandler := handlers.NewVendorHandler(vendorService, log)
	cartHandler := handlers.NewCartHandler(cartService, log)
	checkoutHandler := handlers.NewCheckoutHandler(checkoutService, log)

	// Initialize Gin router
	router := gin.New()

	// Global middleware
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.LoggerMiddleware(log))
	router.Use(middleware.RecoveryMiddleware(log))
	router.Use(middleware.CORSMiddleware(config.Server.CORSOrigins))

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"service": "golang-food-storefront",
		})
	})

	// API routes
	api := router.Group("/api/v1")
	api.Use(sessionMiddleware.Resolve())

	// Register routes
	vendorHandler.RegisterRoutes(api)
	cartHandler.RegisterRoutes(api)
	checkoutHandler.RegisterRoutes(api)

	srv := &http.Server{
		Addr:              ":" + config.Server.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info("server starting", zap.String("port", config.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error("graceful shutdown failed", zap.Error(err))
	}
}
