package main

import (
	"log"
	"time"

	"learning-api/internal/api"
	"learning-api/internal/config"
	"learning-api/internal/database"
	"learning-api/internal/services"
	"learning-api/pkg/logging"

	"github.com/gin-gonic/gin"
)

func main() {
	// Initialize configuration
	if err := config.InitConfig(); err != nil {
		log.Fatal("Failed to initialize config:", err)
	}

	// Initialize logging
	logging.InitLogging()

	// Open the storage handle; it is passed to the components explicitly.
	store, err := database.Open(config.AppConfig.DatabaseURL)
	if err != nil {
		log.Fatal("Failed to open database:", err)
	}
	defer store.Close()

	catalog := services.NewProductCatalog(
		config.AppConfig.SingleCourseProductID,
		config.AppConfig.SubscriptionProductID,
		config.AppConfig.LifetimeProductID,
		config.AppConfig.FreeLessonID,
	)
	verifier := services.NewWebhookVerifier(config.AppConfig.WebhookSecret)
	alerts := services.NewAlertService()
	reconciler := services.NewReconciler(store, catalog, alerts)
	entitlement := services.NewEntitlementService(store, catalog)
	progress := services.NewProgressService(store)

	var limiter *services.RateLimiter
	if config.AppConfig.RedisURL != "" {
		limiter, err = services.NewRateLimiter(config.AppConfig.RedisURL, config.AppConfig.AttemptsPerMinute)
		if err != nil {
			log.Fatal("Failed to connect to Redis:", err)
		}
		defer limiter.Close()
		logging.Infof("Redis connected, attempt throttling enabled")
	} else {
		logging.Infof("REDIS_URL not set, attempt throttling disabled")
	}

	// Defense in depth: expire subscriptions past their period end in case a
	// provider expiry event never arrives.
	stopSweep := make(chan struct{})
	defer close(stopSweep)
	reconciler.StartExpirySweep(time.Hour, stopSweep)

	// Set Gin mode
	gin.SetMode(config.AppConfig.Mode)

	// Create Gin engine
	r := gin.Default()

	// Setup routes
	api.SetupRoutes(r, &api.Handlers{
		Store:       store,
		Verifier:    verifier,
		Catalog:     catalog,
		Reconciler:  reconciler,
		Entitlement: entitlement,
		Progress:    progress,
		Limiter:     limiter,
	})

	// Start server
	port := config.AppConfig.Port
	logging.Infof("Starting server on port %s", port)

	if err := r.Run(":" + port); err != nil {
		log.Fatal("Failed to start server:", err)
	}
}
