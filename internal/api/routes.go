package api

import (
	"learning-api/internal/database"
	"learning-api/internal/middleware"
	"learning-api/internal/services"

	"github.com/gin-gonic/gin"
)

// Handlers carries the service dependencies for the HTTP layer.
type Handlers struct {
	Store       *database.Store
	Verifier    *services.WebhookVerifier
	Catalog     *services.ProductCatalog
	Reconciler  *services.Reconciler
	Entitlement *services.EntitlementService
	Progress    *services.ProgressService
	Limiter     *services.RateLimiter // nil when Redis is not configured
}

// SetupRoutes sets up all routes
func SetupRoutes(r *gin.Engine, h *Handlers) {
	api := r.Group("/api")
	{
		// Payment provider webhook (no user auth, the provider calls this;
		// authentication is the body signature)
		payment := api.Group("/payment")
		{
			payment.POST("/webhook", h.PaymentWebhook)
		}

		// Payment reads for the authenticated user
		paymentUser := api.Group("/payment")
		paymentUser.Use(middleware.UserAuthMiddleware())
		{
			paymentUser.GET("/permissions", h.GetPermissions)
			paymentUser.GET("/transactions", h.GetTransactions)
		}

		// Progress routes
		progress := api.Group("/progress")
		progress.Use(middleware.UserAuthMiddleware())
		{
			progress.POST("", h.RecordAttempt)
			progress.GET("", h.GetStats)
			progress.POST("/refresh", h.RefreshProgress)
		}

		// Lesson catalog routes
		lessons := api.Group("/lessons")
		lessons.Use(middleware.UserAuthMiddleware())
		{
			lessons.GET("/:lessonId", h.GetLesson)
		}
	}

	// Health check
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "ok",
			"service": "learning-service",
		})
	})
}
